// Package plot turns a filtered table into a grouped box plot description
// and renders it.
package plot

import (
	"fmt"
	"sort"
	"strings"

	"genexplorer/domain/table"
	"genexplorer/internal/schema"
)

const (
	xAxisTitle = "Number of Replicates"
	// NoGroupLabel stands in for rows without a group
	NoGroupLabel = "nan"
)

// Point is one row's value, tagged with the row identifier
type Point struct {
	Value  float64 `json:"value"`
	Design string  `json:"design"`
}

// Box is the distribution for one (size, group) combination
type Box struct {
	Category string   `json:"category"`
	Group    string   `json:"group,omitempty"`
	Points   []Point  `json:"points"`
	Stats    BoxStats `json:"stats"`
}

// Spec is a render-ready box plot. A spec with a Message is a placeholder.
type Spec struct {
	Kind       table.Kind `json:"kind"`
	Entity     string     `json:"entity,omitempty"`
	Title      string     `json:"title"`
	XAxisTitle string     `json:"x_axis_title,omitempty"`
	YAxisTitle string     `json:"y_axis_title,omitempty"`
	Message    string     `json:"message,omitempty"`
	Categories []string   `json:"categories"`
	Groups     []string   `json:"groups"`
	Boxes      []Box      `json:"boxes"`
	ShowLegend bool       `json:"show_legend"`
}

// Placeholder reports whether the spec only carries a prompt
func (s Spec) Placeholder() bool {
	return s.Message != ""
}

// Box returns the box for a category and group
func (s Spec) Box(category, group string) (Box, bool) {
	for _, b := range s.Boxes {
		if b.Category == category && b.Group == group {
			return b, true
		}
	}
	return Box{}, false
}

func placeholder(kind table.Kind, entity, message string) Spec {
	return Spec{
		Kind:       kind,
		Entity:     entity,
		Title:      message,
		Message:    message,
		Categories: []string{},
		Groups:     []string{},
		Boxes:      []Box{},
	}
}

// PromptFor returns the message shown before an entity is chosen
func PromptFor(kind table.Kind) string {
	if kind == table.KindPhi {
		return "Select an sgRNA to visualize"
	}
	return "Select a gene to visualize"
}

// BuildBoxPlot groups rows by (size, group) for the gene table and by size
// alone for the sgRNA table. Categories are ordered by the numeric value of
// size. Degenerate input yields a placeholder, never an error.
func BuildBoxPlot(frame *table.Frame, entity string, kind table.Kind) Spec {
	if entity == "" || frame.Empty() {
		return placeholder(kind, entity, PromptFor(kind))
	}

	sch, err := schema.Classify(frame.Columns)
	if err != nil || (sch.SizeCol != table.SizeColumn || (kind == table.KindMu && sch.GroupCol != table.GroupColumn)) {
		if kind == table.KindPhi {
			return placeholder(kind, entity, "Data does not contain size information")
		}
		return placeholder(kind, entity, "Data does not contain group or size information")
	}
	if !sch.HasEntity(entity) {
		return placeholder(kind, entity, fmt.Sprintf("%s is not in the filtered table", entity))
	}

	idIdx := frame.ColumnIndex(sch.Identifier)
	valIdx := frame.ColumnIndex(entity)
	sizeIdx := frame.ColumnIndex(sch.SizeCol)
	groupIdx := frame.ColumnIndex(sch.GroupCol)
	colorByGroup := kind == table.KindMu

	type key struct{ category, group string }
	points := make(map[key][]Point)
	categories := map[string]struct{}{}
	groups := map[string]struct{}{}

	for _, row := range frame.Rows {
		v, ok := table.Float(row[valIdx])
		if !ok {
			continue
		}
		k := key{category: sizeLabel(row[sizeIdx])}
		if colorByGroup {
			k.group = groupLabel(row[groupIdx])
			groups[k.group] = struct{}{}
		}
		categories[k.category] = struct{}{}
		points[k] = append(points[k], Point{Value: v, Design: row[idIdx]})
	}

	if len(points) == 0 {
		return placeholder(kind, entity, fmt.Sprintf("No numeric values for %s", entity))
	}

	spec := Spec{
		Kind:       kind,
		Entity:     entity,
		XAxisTitle: xAxisTitle,
		Categories: sortedNumeric(categories),
		Groups:     sortedNumeric(groups),
		Boxes:      []Box{},
	}
	if kind == table.KindPhi {
		spec.Title = fmt.Sprintf("Activity of sgRNA %s across cell lines", entity)
		spec.YAxisTitle = "sgRNA Activity"
		spec.Groups = []string{""}
	} else {
		spec.Title = fmt.Sprintf("Expression of %s across cell lines", entity)
		spec.YAxisTitle = "Expression Level"
	}

	for _, c := range spec.Categories {
		for _, g := range spec.Groups {
			pts, ok := points[key{category: c, group: g}]
			if !ok {
				continue
			}
			values := make([]float64, len(pts))
			for i, p := range pts {
				values[i] = p.Value
			}
			st, err := Summarize(values)
			if err != nil {
				continue
			}
			spec.Boxes = append(spec.Boxes, Box{Category: c, Group: g, Points: pts, Stats: st})
		}
	}
	return spec
}

// SortSizes orders size labels by numeric value; labels that are not
// integers follow, in lexical order
func SortSizes(labels []string) []string {
	out := append([]string(nil), labels...)
	sort.SliceStable(out, func(i, j int) bool {
		a, aok := table.Int(out[i])
		b, bok := table.Int(out[j])
		switch {
		case aok && bok:
			if a != b {
				return a < b
			}
			return out[i] < out[j]
		case aok:
			return true
		case bok:
			return false
		}
		return out[i] < out[j]
	})
	return out
}

func sortedNumeric(set map[string]struct{}) []string {
	labels := make([]string, 0, len(set))
	for l := range set {
		labels = append(labels, l)
	}
	return SortSizes(labels)
}

// sizeLabel renders sizes as strings; "3.0" and "3" share a category
func sizeLabel(cell string) string {
	if n, ok := table.Int(cell); ok {
		return fmt.Sprint(n)
	}
	return strings.TrimSpace(cell)
}

func groupLabel(cell string) string {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return NoGroupLabel
	}
	return cell
}
