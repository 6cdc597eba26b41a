package core

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors - centralized error definitions
var (
	// Schema errors
	ErrSchema         = errors.New("malformed table schema")
	ErrShortHeader    = fmt.Errorf("%w: header needs an identifier, entities and two metadata columns", ErrSchema)
	ErrDuplicateField = fmt.Errorf("%w: duplicate column", ErrSchema)
	ErrBadSize        = fmt.Errorf("%w: size value is not an integer", ErrSchema)

	// Lookup errors
	ErrColumnNotFound = errors.New("column not found")
	ErrUnknownKind    = errors.New("unknown table kind")

	// Result states
	ErrEmptyResult      = errors.New("no rows matched the selection")
	ErrNothingToExport  = errors.New("nothing to export")
	ErrNoFilterApplied  = errors.New("no filter has been applied yet")
	ErrSuperseded       = errors.New("request superseded by a newer one")
	ErrInvalidSizeRange = errors.New("invalid size range")

	// Storage errors
	ErrStorageRead = errors.New("storage read failed")
)

// Error constructors with context
func NewColumnNotFoundError(names []string) error {
	return fmt.Errorf("%w: %s", ErrColumnNotFound, strings.Join(names, ", "))
}

func NewStorageReadError(path string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorageRead, path, err)
}

func NewBadSizeError(row int, value string) error {
	return fmt.Errorf("%w: row %d has %q", ErrBadSize, row, value)
}

// Error checking helpers
func IsSchemaError(err error) bool {
	return errors.Is(err, ErrSchema)
}

func IsStorageError(err error) bool {
	return errors.Is(err, ErrStorageRead)
}

func IsColumnNotFound(err error) bool {
	return errors.Is(err, ErrColumnNotFound)
}
