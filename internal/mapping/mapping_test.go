package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeGene(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"A1BG (1)", "A1BG"},
		{"A1BG (2)", "A1BG"},
		{"A1BG", "A1BG"},
		{"HLA-A (12)", "HLA-A"},
		{"ABC(1)", "ABC(1)"}, // qualifier requires a leading space
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeGene(tt.in), tt.in)
	}
	assert.Equal(t, NormalizeGene("A1BG (1)"), NormalizeGene("A1BG (2)"))
}

func TestNormalizeSgRNA(t *testing.T) {
	assert.Equal(t, "A1BG_GGAAGTCTGGAGTCTCCAGG", NormalizeSgRNA("A1BG (1)_GGAAGTCTGGAGTCTCCAGG"))
	assert.Equal(t, "A1BG_AAA_(3)", NormalizeSgRNA("A1BG (3)_AAA_(3)"))
	assert.Equal(t, "CTRL", NormalizeSgRNA("CTRL (4)"))
}

func TestGeneOfSgRNA(t *testing.T) {
	assert.Equal(t, "A1BG", GeneOfSgRNA("A1BG_GGAAGTCTGGAGTCTCCAGG"))
	assert.Equal(t, "NONTARGET", GeneOfSgRNA("NONTARGET"))
	assert.Equal(t, "A", GeneOfSgRNA("A_B_C"))
}

func TestMapping(t *testing.T) {
	m := BuildMapping([]string{"B_1", "A_1", "B_2", "CTRL", "a_9", "A_2"})

	assert.Equal(t, 6, m.Len())
	assert.Equal(t, []string{"B", "A", "CTRL", "a"}, m.Genes())
	assert.Equal(t, []string{"A_1", "A_2"}, m.SgRNAsForGene("A"))
	assert.Equal(t, []string{"a_9"}, m.SgRNAsForGene("a"))
	assert.Equal(t, []string{"CTRL"}, m.SgRNAsForGene("CTRL"))
	assert.Empty(t, m.SgRNAsForGene("Z"))

	gene, ok := m.GeneOf("B_2")
	assert.True(t, ok)
	assert.Equal(t, "B", gene)
	_, ok = m.GeneOf("B")
	assert.False(t, ok)
}

func TestExpandGenes(t *testing.T) {
	m := BuildMapping([]string{"B_1", "A_1", "B_2", "C_1"})

	sgRNAs, unmapped := m.ExpandGenes([]string{"A", "B", "A", "Z", "Z"})
	assert.Equal(t, []string{"B_1", "A_1", "B_2"}, sgRNAs, "header order, no duplicates")
	assert.Equal(t, []string{"Z"}, unmapped)

	sgRNAs, unmapped = m.ExpandGenes(nil)
	assert.Empty(t, sgRNAs)
	assert.Empty(t, unmapped)
}

func TestDiagnose(t *testing.T) {
	geneCols := []string{"Aco2", "ACO1", "TP53"}
	m := BuildMapping([]string{"Aco2_GG", "ACOX1_TT", "TP53_AA"})

	d := Diagnose(geneCols, m, "ACO2")
	assert.False(t, d.InGeneTable)
	assert.Equal(t, []string{"Aco2"}, d.GeneCaseVariants)
	assert.Equal(t, []string{"ACO1"}, d.SimilarGenes)
	assert.Empty(t, d.SgRNAs)
	assert.Equal(t, []string{"Aco2_GG"}, d.SgRNACaseVariants)
	assert.Equal(t, []string{"ACOX1"}, d.SimilarSgRNAGenes)
	assert.False(t, d.Traceable())
	assert.Len(t, d.Warnings(), 2)

	d = Diagnose(geneCols, m, "TP53")
	assert.True(t, d.Traceable())
	assert.Equal(t, []string{"TP53_AA"}, d.SgRNAs)
	assert.Empty(t, d.Warnings())
}
