package sheet

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

var ErrReadCSV = errors.New("sheet: failed to read csv")

// CSVStore edits a CSV file whose first row is the header.
// Every write rewrites the file through a temporary file and rename.
type CSVStore struct {
	path string
	mu   sync.Mutex
}

// NewCSVStore returns a store for the file at path. The file is read lazily.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

func (s *CSVStore) Load(ctx context.Context) (*Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return g.table(), nil
}

func (s *CSVStore) EnsureColumns(ctx context.Context, names ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.read(ctx)
	if err != nil {
		return err
	}
	if !g.ensure(names...) {
		return nil
	}
	return s.write(g)
}

func (s *CSVStore) SetCell(ctx context.Context, row int, column, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.read(ctx)
	if err != nil {
		return err
	}
	if err := g.set(row, column, value); err != nil {
		return err
	}
	return s.write(g)
}

func (s *CSVStore) read(ctx context.Context) (*grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, errors.Join(ErrReadCSV, err)
	}
	defer f.Close()
	return readGrid(f)
}

func (s *CSVStore) write(g *grid) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".sheet-*.csv")
	if err != nil {
		return fmt.Errorf("sheet: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(g.records()); err != nil {
		tmp.Close()
		return fmt.Errorf("sheet: write csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("sheet: write csv: %w", err)
	}
	// Keep the permissions of the file being replaced.
	if info, err := os.Stat(s.path); err == nil {
		if err := os.Chmod(tmp.Name(), info.Mode().Perm()); err != nil {
			return fmt.Errorf("sheet: replace csv: %w", err)
		}
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("sheet: replace csv: %w", err)
	}
	return nil
}

// ReadCSV parses a header row followed by data rows. Short rows are padded.
func ReadCSV(r io.Reader) (*Table, error) {
	g, err := readGrid(r)
	if err != nil {
		return nil, err
	}
	return g.table(), nil
}

func readGrid(r io.Reader) (*grid, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Join(ErrReadCSV, err)
	}
	return newGrid(records)
}
