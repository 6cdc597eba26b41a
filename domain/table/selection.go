package table

// Selection is the immutable set of user choices driving a filter request.
// Use the With* methods to derive a changed copy.
type Selection struct {
	genes  []string
	groups []string
	sizes  *SizeRange
}

// NewSelection copies its inputs; a nil sizes pointer disables the size predicate
func NewSelection(genes, groups []string, sizes *SizeRange) Selection {
	s := Selection{
		genes:  append([]string(nil), genes...),
		groups: append([]string(nil), groups...),
	}
	if sizes != nil {
		r := *sizes
		s.sizes = &r
	}
	return s
}

// Genes returns a copy of the selected gene names
func (s Selection) Genes() []string { return append([]string(nil), s.genes...) }

// Groups returns a copy of the selected groups; empty means all groups
func (s Selection) Groups() []string { return append([]string(nil), s.groups...) }

// Sizes returns the size range and whether one is set
func (s Selection) Sizes() (SizeRange, bool) {
	if s.sizes == nil {
		return SizeRange{}, false
	}
	return *s.sizes, true
}

// Empty reports whether no genes are selected
func (s Selection) Empty() bool { return len(s.genes) == 0 }

func (s Selection) WithGenes(genes []string) Selection {
	return NewSelection(genes, s.groups, s.sizes)
}

func (s Selection) WithGroups(groups []string) Selection {
	return NewSelection(s.genes, groups, s.sizes)
}

func (s Selection) WithSizes(r *SizeRange) Selection {
	return NewSelection(s.genes, s.groups, r)
}

// MatchesGroup reports whether a row's group passes the group predicate
func (s Selection) MatchesGroup(group string) bool {
	if len(s.groups) == 0 {
		return true
	}
	for _, g := range s.groups {
		if g == group {
			return true
		}
	}
	return false
}

// MatchesSize reports whether a row's size passes the size predicate
func (s Selection) MatchesSize(size int) bool {
	if s.sizes == nil {
		return true
	}
	return s.sizes.Contains(size)
}
