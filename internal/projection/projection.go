// Package projection selects the minimal column set of a wide table for a
// user selection, loads only those columns and applies the row predicates.
package projection

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"genexplorer/domain/core"
	"genexplorer/domain/table"
	apperrors "genexplorer/internal/errors"
	"genexplorer/internal/mapping"
	"genexplorer/internal/schema"
	"genexplorer/ports"
)

// Result is one projected and filtered table
type Result struct {
	Kind  table.Kind   `json:"kind"`
	Frame *table.Frame `json:"frame"`
	// UsedColumns is [identifier] + selected entities in header order + metadata
	UsedColumns []string `json:"used_columns"`
	// Entities are the entity columns present in the result; they feed the
	// plot selector
	Entities []string        `json:"entities"`
	Warnings []table.Warning `json:"warnings,omitempty"`
	// Loaded is false when the request short-circuited without reading storage
	Loaded bool `json:"loaded"`
	// Fingerprint identifies the column set and row predicate that produced
	// the frame
	Fingerprint core.ProjectionHash `json:"fingerprint,omitempty"`
}

// Empty reports whether no rows survived
func (r *Result) Empty() bool {
	return r == nil || r.Frame.Empty()
}

// Filter projects tables from a store
type Filter struct {
	store ports.TableStore
	cache ports.HeaderCache
}

// NewFilter creates a projection filter; cache may be nil
func NewFilter(store ports.TableStore, cache ports.HeaderCache) *Filter {
	return &Filter{store: store, cache: cache}
}

// ResolveColumns computes [identifier] + (entities ∩ selected, header order) +
// metadata. Selected names absent from the header are returned as missing,
// once each, in selection order.
func ResolveColumns(s table.Schema, selected []string) (used []string, missing []string) {
	wanted := make(map[string]struct{}, len(selected))
	for _, name := range selected {
		wanted[name] = struct{}{}
	}

	used = make([]string, 0, len(s.Meta)+1+len(selected))
	used = append(used, s.Identifier)
	found := make(map[string]struct{}, len(selected))
	for _, e := range s.Entities {
		if _, ok := wanted[e]; ok {
			used = append(used, e)
			found[e] = struct{}{}
		}
	}
	used = append(used, s.Meta...)

	for _, name := range selected {
		if _, ok := found[name]; ok {
			continue
		}
		found[name] = struct{}{}
		missing = append(missing, name)
	}
	return used, missing
}

// Project loads one table for a selection. For the phi table the selected
// genes are first expanded to the sgRNAs they own.
func (f *Filter) Project(ctx context.Context, kind table.Kind, sel table.Selection) (*Result, error) {
	if sel.Empty() {
		return &Result{
			Kind:        kind,
			Frame:       table.NewFrame(kind, []string{}),
			UsedColumns: []string{},
			Entities:    []string{},
		}, nil
	}
	if sizes, ok := sel.Sizes(); ok {
		if err := sizes.Validate(); err != nil {
			return nil, apperrors.WithCode(apperrors.CodeInvalidInput, err)
		}
	}

	src, err := f.store.Source(kind)
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeInvalidInput, err)
	}
	sch, err := schema.Load(ctx, src, f.cache)
	if err != nil {
		return nil, err
	}

	var warnings []table.Warning
	selected := sel.Genes()
	if kind == table.KindPhi {
		sgRNAs, unmapped := mapping.BuildMapping(sch.Entities).ExpandGenes(selected)
		if len(unmapped) > 0 {
			warnings = append(warnings, table.Warning{
				Code:    apperrors.CodeColumnNotFound,
				Message: fmt.Sprintf("no sgRNA found for %d selected gene(s)", len(unmapped)),
				Names:   unmapped,
			})
		}
		selected = sgRNAs
	}

	used, missing := ResolveColumns(sch, selected)
	if len(missing) > 0 {
		warnings = append(warnings, table.Warning{
			Code:    apperrors.CodeColumnNotFound,
			Message: core.NewColumnNotFoundError(missing).Error(),
			Names:   missing,
		})
	}

	rows, err := src.LoadColumns(ctx, used, rowFilter(used, sch, sel))
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to load %s table", kind)
	}

	frame := &table.Frame{Kind: kind, Columns: used, Rows: rows}
	if frame.Empty() {
		warnings = append(warnings, table.Warning{
			Code:    apperrors.CodeEmptyResult,
			Message: core.ErrEmptyResult.Error(),
		})
	}

	return &Result{
		Kind:        kind,
		Frame:       frame,
		UsedColumns: used,
		Entities:    append([]string{}, used[1:len(used)-len(sch.Meta)]...),
		Warnings:    warnings,
		Loaded:      true,
		Fingerprint: fingerprint(kind, used, sel),
	}, nil
}

func fingerprint(kind table.Kind, used []string, sel table.Selection) core.ProjectionHash {
	groups := sel.Groups()
	sort.Strings(groups)
	sizes := "all"
	if r, ok := sel.Sizes(); ok {
		sizes = fmt.Sprintf("%d-%d", r.Min, r.Max)
	}
	return core.ComputeProjectionHash(string(kind), used, map[string]interface{}{
		"groups": groups,
		"sizes":  sizes,
	})
}

// rowFilter builds the size and group predicate over projected rows
func rowFilter(used []string, sch table.Schema, sel table.Selection) ports.RowFilter {
	sizeIdx, groupIdx := -1, -1
	for i, c := range used {
		switch c {
		case sch.SizeCol:
			sizeIdx = i
		case sch.GroupCol:
			groupIdx = i
		}
	}
	sizes, hasSizes := sel.Sizes()
	groups := len(sel.Groups()) > 0
	if !hasSizes && !groups {
		return nil
	}

	line := 0
	return func(row []string) (bool, error) {
		line++
		if hasSizes {
			size, ok := table.Int(row[sizeIdx])
			if !ok {
				return false, apperrors.WithCode(apperrors.CodeSchemaError, core.NewBadSizeError(line, row[sizeIdx]))
			}
			if !sizes.Contains(size) {
				return false, nil
			}
		}
		if groups && !sel.MatchesGroup(strings.TrimSpace(row[groupIdx])) {
			return false, nil
		}
		return true, nil
	}
}
