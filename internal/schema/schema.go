// Package schema discovers the semantic roles of a table's columns from its
// header row alone.
package schema

import (
	"context"
	"fmt"

	"genexplorer/domain/core"
	"genexplorer/domain/table"
	apperrors "genexplorer/internal/errors"
	"genexplorer/ports"
)

// minColumns is identifier + group + size
const minColumns = 3

// ReadHeader returns the ordered column names of a source. When cache is
// non-nil the header is served from it.
func ReadHeader(ctx context.Context, src ports.TableSource, cache ports.HeaderCache) ([]string, error) {
	if cache != nil {
		return cache.Header(ctx, src)
	}
	return src.ReadHeader(ctx)
}

// Classify splits a header into identifier, entity and metadata columns.
// The identifier is the first column and the last two are metadata; group
// and size are located by name among those two, falling back to position.
func Classify(header []string) (table.Schema, error) {
	if len(header) < minColumns {
		return table.Schema{}, schemaError(fmt.Errorf("%w (got %d columns)", core.ErrShortHeader, len(header)))
	}

	seen := make(map[string]struct{}, len(header))
	for _, h := range header {
		if _, dup := seen[h]; dup {
			return table.Schema{}, schemaError(fmt.Errorf("%w %q", core.ErrDuplicateField, h))
		}
		seen[h] = struct{}{}
	}

	n := len(header)
	s := table.Schema{
		Header:     append([]string(nil), header...),
		Identifier: header[0],
		Entities:   append([]string{}, header[1:n-2]...),
		Meta:       append([]string(nil), header[n-2:]...),
	}

	s.GroupCol, s.SizeCol = s.Meta[0], s.Meta[1]
	if s.Meta[0] == table.SizeColumn && s.Meta[1] == table.GroupColumn {
		s.GroupCol, s.SizeCol = s.Meta[1], s.Meta[0]
	}
	return s, nil
}

// Load reads and classifies a source header in one step
func Load(ctx context.Context, src ports.TableSource, cache ports.HeaderCache) (table.Schema, error) {
	header, err := ReadHeader(ctx, src, cache)
	if err != nil {
		return table.Schema{}, err
	}
	s, err := Classify(header)
	if err != nil {
		return table.Schema{}, apperrors.Wrapf(err, "invalid header in %s", src.Path())
	}
	return s, nil
}

func schemaError(err error) error {
	return apperrors.WithCode(apperrors.CodeSchemaError, err)
}
