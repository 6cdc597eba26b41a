package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Short returns the first 12 hex digits, enough for logs and ETags
func (h Hash) Short() string {
	if len(h) < 12 {
		return string(h)
	}
	return string(h[:12])
}

// ProjectionHash identifies a projection by table kind, column set and row
// predicate. Two projections with the same hash over unchanged files return
// the same rows.
type ProjectionHash Hash

func (h ProjectionHash) String() string { return Hash(h).String() }

// ComputeProjectionHash hashes the projection key. Columns keep their order
// since it is part of the output; filter keys are sorted.
func ComputeProjectionHash(kind string, columns []string, filters map[string]interface{}) ProjectionHash {
	var data strings.Builder
	data.WriteString(kind)
	data.WriteByte(0)
	for _, c := range columns {
		data.WriteString(c)
		data.WriteByte(0)
	}

	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		data.WriteString(key)
		data.WriteString(fmt.Sprintf("=%v", filters[key]))
		data.WriteByte(0)
	}

	return ProjectionHash(NewHash([]byte(data.String())))
}
