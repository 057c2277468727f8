// Package activity records per-recipient outcomes and batch summaries.
package activity

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/mergeflow/pkg/id"
)

// Outcome classifies an entry.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeSummary   Outcome = "summary"
)

// Entry is one line of the activity log. Row is zero for batch summaries.
type Entry struct {
	Time      time.Time `json:"time"`
	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	Operation string    `json:"operation"`
	Outcome   Outcome   `json:"outcome"`
	Email     string    `json:"email,omitempty"`
	Message   string    `json:"message,omitempty"`
	Row       int       `json:"row,omitempty"`
}

// Log appends entries.
type Log interface {
	Append(ctx context.Context, e Entry) error
}

// prepare fills the id and time when unset.
func prepare(e Entry) Entry {
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	if e.ID == "" {
		e.ID = id.ULIDAt(e.Time)
	}
	return e
}

// Multi appends to every log and joins their errors.
type Multi []Log

func (m Multi) Append(ctx context.Context, e Entry) error {
	e = prepare(e)
	var errs []error
	for _, l := range m {
		if err := l.Append(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SlogLog writes entries as structured log records. Failed outcomes log at
// warn level, everything else at info.
type SlogLog struct {
	log *slog.Logger
}

// NewSlogLog returns a log writing entries to log.
func NewSlogLog(log *slog.Logger) *SlogLog {
	return &SlogLog{log: log}
}

func (l *SlogLog) Append(ctx context.Context, e Entry) error {
	e = prepare(e)
	level := slog.LevelInfo
	if e.Outcome == OutcomeFailed {
		level = slog.LevelWarn
	}
	attrs := []slog.Attr{
		slog.String("activity_id", e.ID),
		slog.String("run_id", e.RunID),
		slog.String("operation", e.Operation),
		slog.String("outcome", string(e.Outcome)),
	}
	if e.Row > 0 {
		attrs = append(attrs, slog.Int("row", e.Row), slog.String("email", e.Email))
	}
	l.log.LogAttrs(ctx, level, e.Message, attrs...)
	return nil
}
