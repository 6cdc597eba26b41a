package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeProjectionHash(t *testing.T) {
	base := ComputeProjectionHash("mu", []string{"design", "A", "group", "size"}, map[string]interface{}{"groups": []string{"1"}, "sizes": "1-2"})

	same := ComputeProjectionHash("mu", []string{"design", "A", "group", "size"}, map[string]interface{}{"sizes": "1-2", "groups": []string{"1"}})
	assert.Equal(t, base, same, "filter order does not matter")

	assert.NotEqual(t, base, ComputeProjectionHash("phi", []string{"design", "A", "group", "size"}, map[string]interface{}{"groups": []string{"1"}, "sizes": "1-2"}))
	assert.NotEqual(t, base, ComputeProjectionHash("mu", []string{"design", "A", "group", "size"}, map[string]interface{}{"groups": []string{"2"}, "sizes": "1-2"}))
	assert.NotEqual(t,
		ComputeProjectionHash("mu", []string{"ab", "c"}, nil),
		ComputeProjectionHash("mu", []string{"a", "bc"}, nil),
		"column boundaries are part of the key")
}

func TestHash_Short(t *testing.T) {
	h := NewHash([]byte("x"))
	assert.Len(t, h.String(), 64)
	assert.Equal(t, h.String()[:12], h.Short())
	assert.False(t, h.IsEmpty())
}
