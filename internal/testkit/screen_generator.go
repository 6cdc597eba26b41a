package testkit

import (
	"fmt"
	"math/rand"
	"strconv"
)

// ScreenGeneratorConfig configures the synthetic CRISPR screen generator
type ScreenGeneratorConfig struct {
	GeneCount      int   `json:"gene_count"`
	SgRNAsPerGene  int   `json:"sgrnas_per_gene"`
	GroupCount     int   `json:"group_count"`
	MaxSize        int   `json:"max_size"`
	CellLines      int   `json:"cell_lines"`
	Seed           int64 `json:"seed"`
	QualifiedNames bool  `json:"qualified_names"` // emit raw "GENE (N)" headers
}

// DefaultScreenConfig returns a small screen suitable for local development
func DefaultScreenConfig() ScreenGeneratorConfig {
	return ScreenGeneratorConfig{
		GeneCount:     200,
		SgRNAsPerGene: 4,
		GroupCount:    3,
		MaxSize:       12,
		CellLines:     6,
		Seed:          42,
	}
}

var knownGenes = []string{
	"A1BG", "ACO2", "TP53", "BRCA1", "MYC", "EGFR", "KRAS", "PTEN", "GAPDH", "ACTB",
	"CDK4", "RB1", "SOX2", "NOTCH1", "PIK3CA", "ATM", "CHEK2", "MTOR", "BCL2", "VHL",
}

// ScreenDataGenerator produces raw (unprepared) screen tables. Design labels
// follow "Group_<g>_<cell line>_size_<n>" so group and size can be derived.
type ScreenDataGenerator struct {
	config ScreenGeneratorConfig
	rng    *rand.Rand
}

// NewScreenDataGenerator creates a new generator
func NewScreenDataGenerator(config ScreenGeneratorConfig) *ScreenDataGenerator {
	return &ScreenDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// RawTable is a header plus rows as produced by the upstream screen pipeline
type RawTable struct {
	Header []string
	Rows   [][]string
}

// Genes returns the gene symbols used by the generator
func (g *ScreenDataGenerator) Genes() []string {
	genes := make([]string, g.config.GeneCount)
	for i := range genes {
		if i < len(knownGenes) {
			genes[i] = knownGenes[i]
		} else {
			genes[i] = fmt.Sprintf("G%04d", i)
		}
	}
	return genes
}

// Designs returns the design labels, one per row
func (g *ScreenDataGenerator) Designs() []string {
	var designs []string
	for grp := 1; grp <= g.config.GroupCount; grp++ {
		for cl := 1; cl <= g.config.CellLines; cl++ {
			size := 1 + (grp*7+cl*3)%g.config.MaxSize
			designs = append(designs, fmt.Sprintf("Group_%d_CL%02d_size_%d", grp, cl, size))
		}
	}
	return designs
}

// GenerateMu builds the raw gene expression table
func (g *ScreenDataGenerator) GenerateMu() RawTable {
	header := []string{""}
	for i, gene := range g.Genes() {
		header = append(header, g.qualify(gene, i))
	}
	return g.fill(header)
}

// GeneratePhi builds the raw sgRNA activity table
func (g *ScreenDataGenerator) GeneratePhi() RawTable {
	header := []string{""}
	for i, gene := range g.Genes() {
		for j := 0; j < g.config.SgRNAsPerGene; j++ {
			header = append(header, g.qualify(gene, i)+"_"+g.guide())
		}
	}
	return g.fill(header)
}

func (g *ScreenDataGenerator) qualify(gene string, i int) string {
	if !g.config.QualifiedNames {
		return gene
	}
	return fmt.Sprintf("%s (%d)", gene, i%3+1)
}

func (g *ScreenDataGenerator) guide() string {
	const bases = "ACGT"
	b := make([]byte, 20)
	for i := range b {
		b[i] = bases[g.rng.Intn(len(bases))]
	}
	return string(b)
}

func (g *ScreenDataGenerator) fill(header []string) RawTable {
	designs := g.Designs()
	rows := make([][]string, len(designs))
	for i, d := range designs {
		row := make([]string, len(header))
		row[0] = d
		for j := 1; j < len(header); j++ {
			row[j] = strconv.FormatFloat(g.rng.NormFloat64(), 'f', 6, 64)
		}
		rows[i] = row
	}
	return RawTable{Header: header, Rows: rows}
}
