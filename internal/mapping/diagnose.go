package mapping

import (
	"fmt"
	"strings"
	"unicode"
)

// Diagnosis traces one gene through both tables without changing lookup
// semantics. It exists to surface upstream naming problems such as case
// mismatches between the gene and sgRNA tables.
type Diagnosis struct {
	Gene string `json:"gene"`

	InGeneTable      bool     `json:"in_gene_table"`
	GeneCaseVariants []string `json:"gene_case_variants,omitempty"`
	SimilarGenes     []string `json:"similar_genes,omitempty"`

	SgRNAs            []string `json:"sgrnas"`
	SgRNACaseVariants []string `json:"sgrna_case_variants,omitempty"`
	SimilarSgRNAGenes []string `json:"similar_sgrna_genes,omitempty"`
}

// Traceable reports whether the gene resolves exactly in both tables
func (d Diagnosis) Traceable() bool {
	return d.InGeneTable && len(d.SgRNAs) > 0
}

// Warnings describes every inconsistency found
func (d Diagnosis) Warnings() []string {
	var out []string
	if !d.InGeneTable {
		switch {
		case len(d.GeneCaseVariants) > 0:
			out = append(out, fmt.Sprintf("%s not in gene table; case variants: %s", d.Gene, strings.Join(d.GeneCaseVariants, ", ")))
		case len(d.SimilarGenes) > 0:
			out = append(out, fmt.Sprintf("%s not in gene table; similar: %s", d.Gene, strings.Join(d.SimilarGenes, ", ")))
		default:
			out = append(out, fmt.Sprintf("%s not in gene table", d.Gene))
		}
	}
	if len(d.SgRNAs) == 0 {
		switch {
		case len(d.SgRNACaseVariants) > 0:
			out = append(out, fmt.Sprintf("%s owns no sgRNA; case variants: %s", d.Gene, strings.Join(d.SgRNACaseVariants, ", ")))
		case len(d.SimilarSgRNAGenes) > 0:
			out = append(out, fmt.Sprintf("%s owns no sgRNA; similar genes: %s", d.Gene, strings.Join(d.SimilarSgRNAGenes, ", ")))
		default:
			out = append(out, fmt.Sprintf("%s owns no sgRNA", d.Gene))
		}
	}
	return out
}

// Diagnose checks gene against the gene table's entity columns and the sgRNA
// mapping
func Diagnose(geneCols []string, m Mapping, gene string) Diagnosis {
	d := Diagnosis{Gene: gene, SgRNAs: m.SgRNAsForGene(gene)}
	stem := strings.ToUpper(similarityStem(gene))

	for _, col := range geneCols {
		switch {
		case col == gene:
			d.InGeneTable = true
		case strings.EqualFold(col, gene):
			d.GeneCaseVariants = append(d.GeneCaseVariants, col)
		case stem != "" && strings.Contains(strings.ToUpper(col), stem):
			d.SimilarGenes = append(d.SimilarGenes, col)
		}
	}

	seen := make(map[string]struct{})
	for _, p := range m.pairs {
		switch {
		case p.Gene == gene:
		case strings.EqualFold(p.Gene, gene):
			d.SgRNACaseVariants = append(d.SgRNACaseVariants, p.SgRNA)
		case stem != "" && strings.Contains(strings.ToUpper(p.Gene), stem):
			if _, ok := seen[p.Gene]; !ok {
				seen[p.Gene] = struct{}{}
				d.SimilarSgRNAGenes = append(d.SimilarSgRNAGenes, p.Gene)
			}
		}
	}
	return d
}

// similarityStem drops trailing digits so ACO2 also finds ACO1 and ACOX1
func similarityStem(gene string) string {
	stem := strings.TrimRightFunc(gene, unicode.IsDigit)
	if stem == "" {
		return gene
	}
	return stem
}
