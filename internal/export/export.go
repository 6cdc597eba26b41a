// Package export serializes filtered tables for download.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"genexplorer/domain/core"
	"genexplorer/domain/table"
)

// FileName returns the stable download name for a table kind
func FileName(kind table.Kind) string {
	return fmt.Sprintf("selected_%s_data.csv", kind)
}

// WriteCSV writes the frame's columns as the header row followed by the raw
// cell values, without an index column. A frame with no rows writes nothing
// and returns core.ErrNothingToExport.
func WriteCSV(frame *table.Frame, w io.Writer) error {
	if frame.Empty() {
		return core.ErrNothingToExport
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(frame.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := cw.WriteAll(frame.Rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return nil
}

// CSVBytes renders the frame to memory
func CSVBytes(frame *table.Frame) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(frame, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
