package testkit

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScreenDataGenerator_Shapes(t *testing.T) {
	cfg := DefaultScreenConfig()
	cfg.GeneCount = 25
	gen := NewScreenDataGenerator(cfg)

	mu := gen.GenerateMu()
	phi := gen.GeneratePhi()

	rows := cfg.GroupCount * cfg.CellLines
	assert.Len(t, mu.Header, cfg.GeneCount+1)
	assert.Len(t, phi.Header, cfg.GeneCount*cfg.SgRNAsPerGene+1)
	assert.Len(t, mu.Rows, rows)
	assert.Len(t, phi.Rows, rows)
	assert.Equal(t, "A1BG", mu.Header[1])
	assert.Equal(t, "G0020", mu.Header[21])

	guide := regexp.MustCompile(`^A1BG_[ACGT]{20}$`)
	assert.Regexp(t, guide, phi.Header[1])
}

func TestScreenDataGenerator_DesignLabels(t *testing.T) {
	gen := NewScreenDataGenerator(DefaultScreenConfig())
	pattern := regexp.MustCompile(`^Group_(\d+)_CL\d{2}_size_(\d+)$`)
	for _, d := range gen.Designs() {
		require.Regexp(t, pattern, d)
	}
}

func TestScreenDataGenerator_Deterministic(t *testing.T) {
	a := NewScreenDataGenerator(DefaultScreenConfig()).GeneratePhi()
	b := NewScreenDataGenerator(DefaultScreenConfig()).GeneratePhi()
	assert.Equal(t, a, b)
}

func TestScreenDataGenerator_QualifiedNames(t *testing.T) {
	cfg := DefaultScreenConfig()
	cfg.QualifiedNames = true
	gen := NewScreenDataGenerator(cfg)
	assert.Equal(t, "A1BG (1)", gen.GenerateMu().Header[1])
	assert.Regexp(t, `^ACO2 \(2\)_[ACGT]{20}$`, gen.GeneratePhi().Header[1+cfg.SgRNAsPerGene])
}
