// Package prepare converts raw screen exports into the column layout the
// explorer reads: [design, entities..., group, size].
package prepare

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"

	"genexplorer/domain/core"
	"genexplorer/domain/table"
	"genexplorer/internal"
	apperrors "genexplorer/internal/errors"
	"genexplorer/internal/mapping"
)

// IdentifierColumn is the name given to the first column
const IdentifierColumn = "design"

var (
	sizePattern  = regexp.MustCompile(`.*_size_([0-9]+).*`)
	groupPattern = regexp.MustCompile(`Group_([0-9]+)_.*`)
)

// Report summarizes one preparation run
type Report struct {
	Kind    table.Kind `json:"kind"`
	Rows    int        `json:"rows"`
	Columns int        `json:"columns"`
	// Renamed maps raw header names to their normalized form
	Renamed map[string]string `json:"renamed,omitempty"`
	// Dropped lists columns whose normalized name repeated an earlier column
	Dropped []string `json:"dropped,omitempty"`
	// NoGroup counts rows whose design label carries no group
	NoGroup int `json:"no_group"`
}

// DeriveSize extracts n from a design label containing "_size_<n>"
func DeriveSize(design string) (int, bool) {
	m := sizePattern.FindStringSubmatch(design)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// DeriveGroup extracts n from a design label containing "Group_<n>_"
func DeriveGroup(design string) (string, bool) {
	m := groupPattern.FindStringSubmatch(design)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// normalizeHeader renames the first column and normalizes entity names.
// Existing group/size columns are dropped since they are re-derived.
func normalizeHeader(kind table.Kind, raw []string, report *Report) (keep []int, header []string) {
	normalize := mapping.NormalizeGene
	if kind == table.KindPhi {
		normalize = mapping.NormalizeSgRNA
	}

	seen := map[string]struct{}{IdentifierColumn: {}}
	keep = []int{0}
	header = []string{IdentifierColumn}
	for i := 1; i < len(raw); i++ {
		name := normalize(raw[i])
		if name == table.GroupColumn || name == table.SizeColumn {
			continue
		}
		if _, dup := seen[name]; dup {
			report.Dropped = append(report.Dropped, raw[i])
			continue
		}
		seen[name] = struct{}{}
		if name != raw[i] {
			report.Renamed[raw[i]] = name
		}
		keep = append(keep, i)
		header = append(header, name)
	}
	return keep, append(header, table.GroupColumn, table.SizeColumn)
}

// Prepare reads a raw CSV table from r and writes the prepared table to w.
// A row whose design label has no size is a schema error.
func Prepare(ctx context.Context, kind table.Kind, r io.Reader, w io.Writer) (*Report, error) {
	report := &Report{Kind: kind, Renamed: map[string]string{}}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	raw, err := cr.Read()
	if err == io.EOF {
		return nil, apperrors.WithCode(apperrors.CodeSchemaError, fmt.Errorf("%w: input has no header", core.ErrSchema))
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read header")
	}
	raw[0] = trimBOM(raw[0])

	keep, header := normalizeHeader(kind, raw, report)
	report.Columns = len(header)

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return nil, apperrors.Wrap(err, "failed to write header")
	}

	out := make([]string, len(header))
	for line := 2; ; line++ {
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.Wrapf(err, "line %d", line)
		}

		for j, idx := range keep {
			if idx < len(rec) {
				out[j] = rec[idx]
			} else {
				out[j] = ""
			}
		}
		design := out[0]
		size, ok := DeriveSize(design)
		if !ok {
			return nil, apperrors.WithCode(apperrors.CodeSchemaError, core.NewBadSizeError(line, design))
		}
		group, ok := DeriveGroup(design)
		if !ok {
			report.NoGroup++
		}
		out[len(out)-2] = group
		out[len(out)-1] = strconv.Itoa(size)

		if err := cw.Write(out); err != nil {
			return nil, apperrors.Wrapf(err, "failed to write line %d", line)
		}
		report.Rows++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, apperrors.Wrap(err, "failed to flush output")
	}
	return report, nil
}

// PrepareFile prepares the table at in and writes it to out
func PrepareFile(ctx context.Context, kind table.Kind, in, out string, logger *internal.Logger) (*Report, error) {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	src, err := os.Open(in)
	if err != nil {
		return nil, apperrors.StorageRead(in, err)
	}
	defer src.Close()

	dst, err := os.Create(out)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to create %s", out)
	}

	report, err := Prepare(ctx, kind, src, dst)
	if cerr := dst.Close(); err == nil && cerr != nil {
		err = apperrors.Wrapf(cerr, "failed to close %s", out)
	}
	if err != nil {
		os.Remove(out)
		return nil, apperrors.Wrapf(err, "prepare %s", in)
	}

	logger.Info("[Prepare] %s: %d rows, %d columns -> %s", kind, report.Rows, report.Columns, out)
	if len(report.Dropped) > 0 {
		logger.Warn("[Prepare] %s: dropped %d duplicate columns after normalization", kind, len(report.Dropped))
	}
	return report, nil
}

func trimBOM(s string) string {
	const bom = "\ufeff"
	if len(s) >= len(bom) && s[:len(bom)] == bom {
		return s[len(bom):]
	}
	return s
}
