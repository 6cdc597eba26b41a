package mapping

import (
	"regexp"
	"strings"
)

// Separator splits an sgRNA name into owning gene and guide sequence
const Separator = "_"

// qualifierPattern matches the " (N)" suffix that marks duplicated gene columns
var qualifierPattern = regexp.MustCompile(` \(\d+\)`)

// NormalizeGene strips parenthetical numeric qualifiers: "A1BG (1)" -> "A1BG"
func NormalizeGene(name string) string {
	return qualifierPattern.ReplaceAllString(name, "")
}

// NormalizeSgRNA strips qualifiers from the gene prefix only, leaving the
// guide suffix untouched: "A1BG (1)_GGAA" -> "A1BG_GGAA"
func NormalizeSgRNA(name string) string {
	gene, rest, found := strings.Cut(name, Separator)
	gene = NormalizeGene(gene)
	if !found {
		return gene
	}
	return gene + Separator + rest
}

// GeneOfSgRNA returns the part of an sgRNA name before the first separator,
// or the whole name when there is none. Matching is case-sensitive.
func GeneOfSgRNA(sgRNA string) string {
	gene, _, _ := strings.Cut(sgRNA, Separator)
	return gene
}
