package sheet

import (
	"context"
	"sync"
)

// MemoryStore keeps the table in memory.
type MemoryStore struct {
	grid *grid
	mu   sync.Mutex
}

// NewMemoryStore builds a store from a header and data rows.
func NewMemoryStore(columns []string, rows ...[]string) (*MemoryStore, error) {
	g, err := newGrid(append([][]string{columns}, rows...))
	if err != nil {
		return nil, err
	}
	return &MemoryStore{grid: g}, nil
}

func (s *MemoryStore) Load(context.Context) (*Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.table(), nil
}

func (s *MemoryStore) EnsureColumns(_ context.Context, names ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grid.ensure(names...)
	return nil
}

func (s *MemoryStore) SetCell(_ context.Context, row int, column, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.set(row, column, value)
}

// Cell returns the current value at row and column.
func (s *MemoryStore) Cell(row int, column string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.grid.table()
	if r, ok := t.Record(row); ok {
		return r.Get(column)
	}
	return ""
}
