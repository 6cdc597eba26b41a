package table

import (
	"fmt"
	"strconv"
	"strings"

	"genexplorer/domain/core"
)

// Kind identifies one of the two source tables
type Kind string

const (
	KindMu  Kind = "mu"  // gene expression by design
	KindPhi Kind = "phi" // sgRNA activity by design
)

// ParseKind validates a user supplied table kind
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindMu:
		return KindMu, nil
	case KindPhi:
		return KindPhi, nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnknownKind, s)
}

// Kinds lists the table kinds in display order
func Kinds() []Kind {
	return []Kind{KindMu, KindPhi}
}

// Well-known metadata column names
const (
	GroupColumn = "group"
	SizeColumn  = "size"
)

// Schema describes the semantic roles of a table header
type Schema struct {
	Header     []string
	Identifier string
	Entities   []string
	// Meta holds the trailing two metadata columns in header order
	Meta     []string
	GroupCol string
	SizeCol  string
}

// HasEntity reports whether name is one of the entity columns
func (s Schema) HasEntity(name string) bool {
	for _, e := range s.Entities {
		if e == name {
			return true
		}
	}
	return false
}

// SizeRange is an inclusive replicate-count interval
type SizeRange struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Contains reports whether size lies in [Min, Max]
func (r SizeRange) Contains(size int) bool {
	return size >= r.Min && size <= r.Max
}

// Validate rejects inverted ranges
func (r SizeRange) Validate() error {
	if r.Min > r.Max {
		return fmt.Errorf("%w: min %d > max %d", core.ErrInvalidSizeRange, r.Min, r.Max)
	}
	return nil
}

// Frame is a loaded, column-projected table. Cells keep their source text so
// an export reproduces the input values exactly.
type Frame struct {
	Kind    Kind       `json:"kind"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// NewFrame creates an empty frame with the given columns
func NewFrame(kind Kind, columns []string) *Frame {
	return &Frame{Kind: kind, Columns: columns, Rows: [][]string{}}
}

// Empty reports whether the frame has no rows
func (f *Frame) Empty() bool {
	return f == nil || len(f.Rows) == 0
}

// Len returns the number of rows
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Rows)
}

// ColumnIndex returns the position of a column or -1
func (f *Frame) ColumnIndex(name string) int {
	if f == nil {
		return -1
	}
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns all cells of a named column
func (f *Frame) Column(name string) ([]string, bool) {
	idx := f.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	out := make([]string, len(f.Rows))
	for i, row := range f.Rows {
		out[i] = row[idx]
	}
	return out, true
}

// Float parses a numeric cell. Empty and NaN-like cells report ok=false.
func Float(cell string) (float64, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" || strings.EqualFold(cell, "nan") || strings.EqualFold(cell, "na") {
		return 0, false
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Int parses a size cell, accepting integral floats such as "3.0"
func Int(cell string) (int, bool) {
	cell = strings.TrimSpace(cell)
	if v, err := strconv.Atoi(cell); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

// Warning is a non-fatal condition reported alongside a result
type Warning struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Names   []string `json:"names,omitempty"`
}
