package activity

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLog stores entries in the activity_log table.
type PostgresLog struct {
	pool *pgxpool.Pool
}

// NewPostgresLog returns a log appending entries to activity_log.
func NewPostgresLog(pool *pgxpool.Pool) *PostgresLog {
	return &PostgresLog{pool: pool}
}

func (l *PostgresLog) Append(ctx context.Context, e Entry) error {
	e = prepare(e)
	var row *int
	if e.Row > 0 {
		row = &e.Row
	}
	_, err := l.pool.Exec(ctx, `
		INSERT INTO activity_log (id, occurred_at, run_id, operation, outcome, row_num, email, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.Time, e.RunID, e.Operation, string(e.Outcome), row, e.Email, e.Message)
	if err != nil {
		return fmt.Errorf("activity: append: %w", err)
	}
	return nil
}

// Run returns the entries of one run in insertion order.
func (l *PostgresLog) Run(ctx context.Context, runID string) ([]Entry, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT id, occurred_at, run_id, operation, outcome, COALESCE(row_num, 0), email, message
		FROM activity_log WHERE run_id = $1 ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("activity: query run: %w", err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entry, error) {
		var (
			e       Entry
			outcome string
		)
		err := row.Scan(&e.ID, &e.Time, &e.RunID, &e.Operation, &outcome, &e.Row, &e.Email, &e.Message)
		e.Outcome = Outcome(outcome)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("activity: read run: %w", err)
	}
	return entries, nil
}
