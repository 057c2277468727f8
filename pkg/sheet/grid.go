package sheet

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrymomot/mergeflow/pkg/recipient"
)

// grid is the in-memory form shared by the CSV and memory stores.
type grid struct {
	columns []string
	rows    [][]string
}

func newGrid(records [][]string) (*grid, error) {
	if len(records) == 0 {
		return nil, ErrEmptyHeader
	}
	header := make([]string, len(records[0]))
	seen := make(map[string]struct{}, len(header))
	for i, name := range records[0] {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateField, name)
		}
		seen[name] = struct{}{}
		header[i] = name
	}
	if len(seen) == 0 {
		return nil, ErrEmptyHeader
	}

	g := &grid{columns: header}
	for _, rec := range records[1:] {
		row := make([]string, len(header))
		copy(row, rec)
		g.rows = append(g.rows, row)
	}
	return g, nil
}

func (g *grid) table() *Table {
	t := &Table{Columns: make([]string, 0, len(g.columns))}
	for _, c := range g.columns {
		if c != "" {
			t.Columns = append(t.Columns, c)
		}
	}
	for i, row := range g.rows {
		r := recipient.New(i + 1)
		for j, c := range g.columns {
			if c == "" {
				continue
			}
			if j < len(row) {
				r.Set(c, row[j])
			} else {
				r.Set(c, "")
			}
		}
		t.Records = append(t.Records, r)
	}
	return t
}

// ensure appends missing columns and reports whether any were added.
func (g *grid) ensure(names ...string) bool {
	added := false
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || slices.Contains(g.columns, name) {
			continue
		}
		g.columns = append(g.columns, name)
		added = true
	}
	return added
}

func (g *grid) set(row int, column, value string) error {
	col := slices.Index(g.columns, column)
	if col < 0 || column == "" {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, column)
	}
	if row < 1 || row > len(g.rows) {
		return fmt.Errorf("%w: %d", ErrRowNotFound, row)
	}
	cells := g.rows[row-1]
	if col >= len(cells) {
		cells = append(cells, make([]string, col-len(cells)+1)...)
		g.rows[row-1] = cells
	}
	cells[col] = value
	return nil
}

func (g *grid) records() [][]string {
	out := make([][]string, 0, len(g.rows)+1)
	out = append(out, slices.Clone(g.columns))
	for _, row := range g.rows {
		padded := make([]string, len(g.columns))
		copy(padded, row)
		out = append(out, padded)
	}
	return out
}
