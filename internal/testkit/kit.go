package testkit

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sync"

	"genexplorer/domain/core"
	"genexplorer/domain/table"
	"genexplorer/ports"
)

// MemorySource is an in-memory table source that records how it was read
type MemorySource struct {
	Name   string
	Header []string
	Rows   [][]string

	mu          sync.Mutex
	headerReads int
	loads       int
	lastColumns []string
}

// NewMemorySource creates a source from a header and rows
func NewMemorySource(name string, header []string, rows [][]string) *MemorySource {
	return &MemorySource{Name: name, Header: header, Rows: rows}
}

var _ ports.TableSource = (*MemorySource)(nil)

func (m *MemorySource) Path() string { return m.Name }

func (m *MemorySource) ReadHeader(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.headerReads++
	m.mu.Unlock()
	return append([]string(nil), m.Header...), nil
}

func (m *MemorySource) LoadColumns(ctx context.Context, columns []string, keep ports.RowFilter) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.loads++
	m.lastColumns = append([]string(nil), columns...)
	m.mu.Unlock()

	pos := make(map[string]int, len(m.Header))
	for i, h := range m.Header {
		pos[h] = i
	}
	var missing []string
	for _, c := range columns {
		if _, ok := pos[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, core.NewColumnNotFoundError(missing)
	}

	out := [][]string{}
	for _, rec := range m.Rows {
		row := make([]string, len(columns))
		for i, c := range columns {
			row[i] = rec[pos[c]]
		}
		if keep != nil {
			ok, err := keep(row)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		out = append(out, row)
	}
	return out, nil
}

// Loads returns how many times LoadColumns was called
func (m *MemorySource) Loads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loads
}

// HeaderReads returns how many times ReadHeader was called
func (m *MemorySource) HeaderReads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.headerReads
}

// LastColumns returns the columns requested by the latest load
func (m *MemorySource) LastColumns() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lastColumns...)
}

// MemoryStore serves MemorySources by kind
type MemoryStore struct {
	Sources map[table.Kind]*MemorySource
}

// NewMemoryStore creates a store over a mu and a phi source
func NewMemoryStore(mu, phi *MemorySource) *MemoryStore {
	return &MemoryStore{Sources: map[table.Kind]*MemorySource{
		table.KindMu:  mu,
		table.KindPhi: phi,
	}}
}

var _ ports.TableStore = (*MemoryStore)(nil)

func (s *MemoryStore) Source(kind table.Kind) (ports.TableSource, error) {
	src, ok := s.Sources[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownKind, kind)
	}
	return src, nil
}

// ExampleMu is the three-row gene table used across package tests
func ExampleMu() *MemorySource {
	return NewMemorySource("mu.csv",
		[]string{"design", "A", "B", "group", "size"},
		[][]string{
			{"Group_1_X_size_1", "0.5", "1.5", "1", "1"},
			{"Group_2_Y_size_2", "0.7", "1.7", "2", "2"},
			{"Group_1_Z_size_3", "0.9", "1.9", "1", "3"},
		})
}

// ExamplePhi is the sgRNA table matching ExampleMu
func ExamplePhi() *MemorySource {
	return NewMemorySource("phi.csv",
		[]string{"design", "A_AAA", "B_CCC", "A_GGG", "CTRL", "group", "size"},
		[][]string{
			{"Group_1_X_size_1", "0.1", "0.2", "0.3", "0.0", "1", "1"},
			{"Group_2_Y_size_2", "0.4", "0.5", "0.6", "0.0", "2", "2"},
			{"Group_1_Z_size_3", "0.7", "0.8", "0.9", "0.0", "1", "3"},
		})
}

// WriteCSV writes a header and rows to path
func WriteCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
