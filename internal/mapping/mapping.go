// Package mapping derives the one-to-many gene to sgRNA relation from sgRNA
// column names.
package mapping

// Pair associates one sgRNA column with its owning gene
type Pair struct {
	SgRNA string `json:"sgrna"`
	Gene  string `json:"gene"`
}

// Mapping is the sgRNA to gene relation in header order. Every sgRNA maps to
// exactly one gene.
type Mapping struct {
	pairs []Pair
}

// BuildMapping derives the mapping from the phi table's entity columns
func BuildMapping(sgRNACols []string) Mapping {
	pairs := make([]Pair, len(sgRNACols))
	for i, col := range sgRNACols {
		pairs[i] = Pair{SgRNA: col, Gene: GeneOfSgRNA(col)}
	}
	return Mapping{pairs: pairs}
}

// Len returns the number of sgRNAs
func (m Mapping) Len() int {
	return len(m.pairs)
}

// Pairs returns a copy of the underlying pairs
func (m Mapping) Pairs() []Pair {
	return append([]Pair(nil), m.pairs...)
}

// GeneOf looks up the gene that owns an sgRNA column
func (m Mapping) GeneOf(sgRNA string) (string, bool) {
	for _, p := range m.pairs {
		if p.SgRNA == sgRNA {
			return p.Gene, true
		}
	}
	return "", false
}

// Genes returns the distinct genes in first-seen order
func (m Mapping) Genes() []string {
	seen := make(map[string]struct{})
	var genes []string
	for _, p := range m.pairs {
		if _, ok := seen[p.Gene]; ok {
			continue
		}
		seen[p.Gene] = struct{}{}
		genes = append(genes, p.Gene)
	}
	return genes
}

// SgRNAsForGene returns the sgRNAs owned by gene, exact match, in header order
func (m Mapping) SgRNAsForGene(gene string) []string {
	var out []string
	for _, p := range m.pairs {
		if p.Gene == gene {
			out = append(out, p.SgRNA)
		}
	}
	return out
}

// ExpandGenes unions the sgRNAs of every gene in header order. Genes that own
// no sgRNA are returned as unmapped, once each, in input order.
func (m Mapping) ExpandGenes(genes []string) (sgRNAs []string, unmapped []string) {
	wanted := make(map[string]bool, len(genes))
	for _, g := range genes {
		wanted[g] = false
	}

	for _, p := range m.pairs {
		if _, ok := wanted[p.Gene]; ok {
			wanted[p.Gene] = true
			sgRNAs = append(sgRNAs, p.SgRNA)
		}
	}

	reported := make(map[string]struct{})
	for _, g := range genes {
		if wanted[g] {
			continue
		}
		if _, ok := reported[g]; ok {
			continue
		}
		reported[g] = struct{}{}
		unmapped = append(unmapped, g)
	}
	return sgRNAs, unmapped
}
