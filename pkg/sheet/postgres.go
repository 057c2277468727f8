package sheet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/mergeflow/pkg/db"
	"github.com/dmitrymomot/mergeflow/pkg/recipient"
)

// DefaultSheet names the table used when none is configured.
const DefaultSheet = "default"

// PostgresStore keeps one named recipient table in PostgreSQL.
type PostgresStore struct {
	pool  *pgxpool.Pool
	sheet string
}

// NewPostgresStore returns a store for the named sheet.
func NewPostgresStore(pool *pgxpool.Pool, sheet string) *PostgresStore {
	if sheet == "" {
		sheet = DefaultSheet
	}
	return &PostgresStore{pool: pool, sheet: sheet}
}

func (s *PostgresStore) Load(ctx context.Context) (*Table, error) {
	columns, err := s.columns(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT row_num, cells FROM recipients WHERE sheet = $1 ORDER BY row_num`, s.sheet)
	if err != nil {
		return nil, fmt.Errorf("sheet: query rows: %w", err)
	}
	defer rows.Close()

	t := &Table{Columns: columns}
	for rows.Next() {
		var (
			row   int
			cells map[string]string
		)
		if err := rows.Scan(&row, &cells); err != nil {
			return nil, fmt.Errorf("sheet: scan row: %w", err)
		}
		r := recipient.New(row)
		for _, c := range columns {
			r.Set(c, cells[c])
		}
		t.Records = append(t.Records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sheet: read rows: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) EnsureColumns(ctx context.Context, names ...string) error {
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		for _, name := range names {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO recipient_columns (sheet, name, position)
				SELECT $1, $2, COALESCE(MAX(position), 0) + 1 FROM recipient_columns WHERE sheet = $1
				ON CONFLICT (sheet, name) DO NOTHING`, s.sheet, name); err != nil {
				return fmt.Errorf("sheet: add column %s: %w", name, err)
			}
		}
		return nil
	})
}

func (s *PostgresStore) SetCell(ctx context.Context, row int, column, value string) error {
	var known bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM recipient_columns WHERE sheet = $1 AND name = $2)`,
		s.sheet, column).Scan(&known); err != nil {
		return fmt.Errorf("sheet: check column: %w", err)
	}
	if !known {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, column)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE recipients
		SET cells = jsonb_set(cells, ARRAY[$3::text], to_jsonb($4::text)), updated_at = now()
		WHERE sheet = $1 AND row_num = $2`, s.sheet, row, column, value)
	if err != nil {
		return fmt.Errorf("sheet: set cell: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", ErrRowNotFound, row)
	}
	return nil
}

// Import replaces the sheet's columns and rows with t in one transaction.
// Records are renumbered by position so rows stay dense and 1-based.
func (s *PostgresStore) Import(ctx context.Context, t *Table) error {
	if len(t.Columns) == 0 {
		return ErrEmptyHeader
	}
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM recipients WHERE sheet = $1`, s.sheet); err != nil {
			return fmt.Errorf("sheet: clear rows: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM recipient_columns WHERE sheet = $1`, s.sheet); err != nil {
			return fmt.Errorf("sheet: clear columns: %w", err)
		}

		batch := &pgx.Batch{}
		for i, name := range t.Columns {
			batch.Queue(`INSERT INTO recipient_columns (sheet, name, position) VALUES ($1, $2, $3)`,
				s.sheet, name, i+1)
		}
		for i, r := range t.Records {
			batch.Queue(`INSERT INTO recipients (sheet, row_num, cells) VALUES ($1, $2, $3)`,
				s.sheet, i+1, cellsOf(t.Columns, r))
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("sheet: import: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) columns(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT name FROM recipient_columns WHERE sheet = $1 ORDER BY position`, s.sheet)
	if err != nil {
		return nil, fmt.Errorf("sheet: query columns: %w", err)
	}
	columns, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("sheet: read columns: %w", err)
	}
	if len(columns) == 0 {
		return nil, errors.Join(ErrEmptyHeader, fmt.Errorf("sheet %q has no columns", s.sheet))
	}
	return columns, nil
}

func cellsOf(columns []string, r *recipient.Record) map[string]string {
	cells := make(map[string]string, len(columns))
	for _, c := range columns {
		if v, ok := r.Lookup(c); ok {
			cells[c] = v
		}
	}
	return cells
}
