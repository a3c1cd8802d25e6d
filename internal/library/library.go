// Package library reads the e-reader's local library database and turns its
// rows into book records.
package library

import (
	"context"
	"errors"
)

// ErrSourceNotFound is returned when the library database file does not exist.
var ErrSourceNotFound = errors.New("library database not found")

// Row is one ZBOOK row reduced to the columns extraction needs.
type Row struct {
	DisplayTitle string
	Metadata     []byte
	// HasMetadata is false when the table has no metadata column at all.
	HasMetadata bool
}

// Source yields every library row.
type Source interface {
	Rows(ctx context.Context) ([]Row, error)
}
