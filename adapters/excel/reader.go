package excel

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"genexplorer/domain/core"
	"genexplorer/internal"
	apperrors "genexplorer/internal/errors"
	"genexplorer/ports"

	"github.com/xuri/excelize/v2"
)

// cancelCheckInterval is how many rows are read between context checks
const cancelCheckInterval = 1024

const utf8BOM = "\ufeff"

// DataReader reads one table from a CSV or XLSX file
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	logger   *internal.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "csv"
	if ext == ".xlsx" {
		fileType = "xlsx"
	}
	return &DataReader{filePath: filePath, fileType: fileType, logger: internal.NewNopLogger()}
}

// WithLogger routes the reader's timing lines to logger
func (r *DataReader) WithLogger(logger *internal.Logger) *DataReader {
	if logger != nil {
		r.logger = logger
	}
	return r
}

var _ ports.TableSource = (*DataReader)(nil)

// Path returns the backing file path
func (r *DataReader) Path() string {
	return r.filePath
}

// ReadHeader reads only the first row of the file
func (r *DataReader) ReadHeader(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var header []string
	err := r.scan(ctx, func(record []string, isHeader bool) (bool, error) {
		header = normalizeHeader(record)
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	if header == nil {
		return nil, r.storageError(errors.New("file is empty"))
	}
	return header, nil
}

// LoadColumns streams the file, projecting each row onto columns and keeping
// rows accepted by keep
func (r *DataReader) LoadColumns(ctx context.Context, columns []string, keep ports.RowFilter) ([][]string, error) {
	startTime := time.Now()

	var (
		indices []int
		rows    = [][]string{}
		scanned int
	)

	err := r.scan(ctx, func(record []string, isHeader bool) (bool, error) {
		if isHeader {
			idx, err := resolveIndices(normalizeHeader(record), columns)
			if err != nil {
				return false, err
			}
			indices = idx
			return true, nil
		}

		scanned++
		row := make([]string, len(indices))
		for i, idx := range indices {
			if idx < len(record) {
				row[i] = record[idx]
			}
		}
		if keep != nil {
			ok, err := keep(row)
			if err != nil {
				return false, fmt.Errorf("%s line %d: %w", r.filePath, scanned+1, err)
			}
			if !ok {
				return true, nil
			}
		}
		rows = append(rows, row)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if indices == nil {
		return nil, r.storageError(errors.New("file is empty"))
	}

	r.logger.Debug("[DataReader] %s: projected %d of %d rows onto %d columns in %.2fms",
		filepath.Base(r.filePath), len(rows), scanned, len(columns), float64(time.Since(startTime).Nanoseconds())/1e6)

	return rows, nil
}

// scan feeds every record to fn until fn returns false or the file ends
func (r *DataReader) scan(ctx context.Context, fn func(record []string, isHeader bool) (bool, error)) error {
	switch r.fileType {
	case "xlsx":
		return r.scanExcel(ctx, fn)
	default:
		return r.scanCSV(ctx, fn)
	}
}

func (r *DataReader) scanCSV(ctx context.Context, fn func([]string, bool) (bool, error)) error {
	file, err := os.Open(r.filePath)
	if err != nil {
		return r.storageError(err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.ReuseRecord = true

	for n := 0; ; n++ {
		if n%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return r.storageError(err)
		}
		more, err := fn(record, n == 0)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// scanExcel reads the first sheet row by row
func (r *DataReader) scanExcel(ctx context.Context, fn func([]string, bool) (bool, error)) error {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return r.storageError(err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.Rows(sheet)
	if err != nil {
		return r.storageError(fmt.Errorf("failed to read %s: %w", sheet, err))
	}
	defer rows.Close()

	width := 0
	for n := 0; rows.Next(); n++ {
		if n%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		record, err := rows.Columns()
		if err != nil {
			return r.storageError(err)
		}
		if n == 0 {
			width = len(record)
		}
		// excelize trims trailing empty cells
		for len(record) < width {
			record = append(record, "")
		}
		more, err := fn(record, n == 0)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	if err := rows.Error(); err != nil {
		return r.storageError(err)
	}
	return nil
}

func (r *DataReader) storageError(err error) error {
	return apperrors.WithCode(apperrors.CodeStorageRead, core.NewStorageReadError(r.filePath, err))
}

// normalizeHeader copies and trims header cells, dropping a leading BOM
func normalizeHeader(record []string) []string {
	header := make([]string, len(record))
	for i, cell := range record {
		if i == 0 {
			cell = strings.TrimPrefix(cell, utf8BOM)
		}
		header[i] = strings.TrimSpace(cell)
	}
	return header
}

// resolveIndices maps requested column names to header positions
func resolveIndices(header, columns []string) ([]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}

	indices := make([]int, len(columns))
	var missing []string
	for i, c := range columns {
		idx, ok := pos[c]
		if !ok {
			missing = append(missing, c)
			continue
		}
		indices[i] = idx
	}
	if len(missing) > 0 {
		return nil, apperrors.WithCode(apperrors.CodeColumnNotFound, core.NewColumnNotFoundError(missing))
	}
	return indices, nil
}
