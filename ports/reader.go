package ports

import (
	"context"

	"genexplorer/domain/table"
)

// RowFilter decides whether a projected row is kept. Row cells follow the
// order of the requested columns.
type RowFilter func(row []string) (bool, error)

// TableSource provides read-only access to one source table
type TableSource interface {
	// Path identifies the backing file in error messages
	Path() string
	// ReadHeader returns the column names without reading data rows
	ReadHeader(ctx context.Context) ([]string, error)
	// LoadColumns reads only the named columns, in the given order, keeping
	// rows accepted by keep (nil keeps every row)
	LoadColumns(ctx context.Context, columns []string, keep RowFilter) ([][]string, error)
}

// TableStore resolves a table kind to its source
type TableStore interface {
	Source(kind table.Kind) (TableSource, error)
}

// HeaderCache memoizes table headers between requests
type HeaderCache interface {
	Header(ctx context.Context, src TableSource) ([]string, error)
}
