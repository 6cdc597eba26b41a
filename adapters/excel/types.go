package excel

import (
	"genexplorer/domain/table"
	"genexplorer/internal"
	"genexplorer/ports"
)

// Store maps each table kind to its file-backed reader
type Store struct {
	readers map[table.Kind]*DataReader
}

var _ ports.TableStore = (*Store)(nil)

// NewStore creates a store from a source configuration; logger may be nil
func NewStore(cfg SourceConfig, logger *internal.Logger) *Store {
	return &Store{
		readers: map[table.Kind]*DataReader{
			table.KindMu:  NewDataReader(cfg.MuPath).WithLogger(logger),
			table.KindPhi: NewDataReader(cfg.PhiPath).WithLogger(logger),
		},
	}
}

// Source returns the reader for a table kind
func (s *Store) Source(kind table.Kind) (ports.TableSource, error) {
	r, ok := s.readers[kind]
	if !ok {
		_, err := table.ParseKind(string(kind))
		return nil, err
	}
	return r, nil
}
