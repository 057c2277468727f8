package sheet

import (
	"context"
	"errors"
	"slices"

	"github.com/dmitrymomot/mergeflow/pkg/recipient"
)

// Sheet errors.
var (
	ErrRowNotFound    = errors.New("sheet: row not found")
	ErrUnknownColumn  = errors.New("sheet: unknown column")
	ErrEmptyHeader    = errors.New("sheet: header row is empty")
	ErrDuplicateField = errors.New("sheet: duplicate column name")
)

// Store reads the whole table and writes single cells back.
type Store interface {
	Load(ctx context.Context) (*Table, error)
	// EnsureColumns appends the named columns that do not exist yet.
	EnsureColumns(ctx context.Context, names ...string) error
	SetCell(ctx context.Context, row int, column, value string) error
}

// Table is a snapshot of the recipient table.
type Table struct {
	Columns []string
	Records []*recipient.Record
}

// HasColumn reports whether name is a header column.
func (t *Table) HasColumn(name string) bool {
	return slices.Contains(t.Columns, name)
}

// Addressable returns records with a non-empty Email, in row order.
func (t *Table) Addressable() []*recipient.Record {
	out := make([]*recipient.Record, 0, len(t.Records))
	for _, r := range t.Records {
		if r.Addressable() {
			out = append(out, r)
		}
	}
	return out
}

// Record returns the record at the 1-based row position.
func (t *Table) Record(row int) (*recipient.Record, bool) {
	for _, r := range t.Records {
		if r.Row == row {
			return r, true
		}
	}
	return nil, false
}
