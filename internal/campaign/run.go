package campaign

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mergeflow/pkg/activity"
	"github.com/dmitrymomot/mergeflow/pkg/logger"
	"github.com/dmitrymomot/mergeflow/pkg/recipient"
)

// Operation names a campaign operation.
type Operation string

const (
	OpValidate       Operation = "validate"
	OpCreateDocs     Operation = "docs.create"
	OpRegenerateDocs Operation = "docs.regenerate"
	OpCreatePDFs     Operation = "pdfs.create"
	OpRegeneratePDFs Operation = "pdfs.regenerate"
	OpSend           Operation = "send"
	OpResetStatus    Operation = "status.reset"
	OpPollBounces    Operation = "bounces.poll"
	OpPreviewOrphans Operation = "orphans.preview"
	OpDeleteOrphans  Operation = "orphans.delete"
)

// Operations lists every operation in display order.
var Operations = []Operation{
	OpValidate, OpCreateDocs, OpRegenerateDocs, OpCreatePDFs, OpRegeneratePDFs,
	OpSend, OpResetStatus, OpPollBounces, OpPreviewOrphans, OpDeleteOrphans,
}

// Run summarizes one operation.
type Run struct {
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	ID         string           `json:"id"`
	Operation  Operation        `json:"operation"`
	Errors     []RecipientError `json:"errors,omitempty"`
	Total      int              `json:"total"`
	Succeeded  int              `json:"succeeded"`
	Failed     int              `json:"failed"`
	Skipped    int              `json:"skipped"`
}

// RecipientError is a failure recorded for one recipient.
type RecipientError struct {
	Err       error  `json:"-"`
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
	Row       int    `json:"row"`
}

func newRun(op Operation) *Run {
	return &Run{
		ID:        uuid.NewString(),
		Operation: op,
		StartedAt: time.Now().UTC(),
	}
}

// Summary is a one-line description of the counts.
func (r *Run) Summary() string {
	return fmt.Sprintf("%s: %d total, %d succeeded, %d failed, %d skipped",
		r.Operation, r.Total, r.Succeeded, r.Failed, r.Skipped)
}

type runKey struct{}

type operationKey struct{}

// WithRunContext stores the run id and operation for log extraction.
func WithRunContext(ctx context.Context, run *Run) context.Context {
	ctx = context.WithValue(ctx, runKey{}, run.ID)
	return context.WithValue(ctx, operationKey{}, string(run.Operation))
}

// LogExtractors add run_id and operation to records logged with a run context.
func LogExtractors() []logger.ContextExtractor {
	return []logger.ContextExtractor{
		logger.StringExtractor("run_id", runKey{}),
		logger.StringExtractor("operation", operationKey{}),
	}
}

// batch records outcomes into a run, the activity log and the logger.
type batch struct {
	run      *Run
	activity activity.Log
	log      *slog.Logger
}

func (o *options) begin(ctx context.Context, op Operation) (context.Context, *batch) {
	run := newRun(op)
	ctx = WithRunContext(ctx, run)
	o.logger.InfoContext(ctx, "operation started")
	return ctx, &batch{run: run, activity: o.activity, log: o.logger}
}

func (b *batch) succeed(ctx context.Context, r *recipient.Record, msg string) {
	b.run.Succeeded++
	b.append(ctx, r, activity.OutcomeSucceeded, msg)
}

func (b *batch) fail(ctx context.Context, r *recipient.Record, err error) {
	b.run.Failed++
	b.run.Errors = append(b.run.Errors, RecipientError{
		Row:       r.Row,
		Recipient: r.Label(),
		Message:   err.Error(),
		Err:       err,
	})
	b.log.WarnContext(ctx, "recipient failed",
		slog.Int("row", r.Row),
		slog.String("recipient", r.Label()),
		slog.Any("error", err),
	)
	b.append(ctx, r, activity.OutcomeFailed, err.Error())
}

func (b *batch) skip(ctx context.Context, r *recipient.Record, reason string) {
	b.run.Skipped++
	b.append(ctx, r, activity.OutcomeSkipped, reason)
}

// finish closes the run. A non-nil err marks the operation as aborted.
func (b *batch) finish(ctx context.Context, err error) {
	b.run.FinishedAt = time.Now().UTC()
	msg := b.run.Summary()
	if err != nil {
		msg += ": aborted: " + err.Error()
		b.log.ErrorContext(ctx, "operation aborted", slog.Any("error", err))
	} else {
		b.log.InfoContext(ctx, "operation finished",
			slog.Int("total", b.run.Total),
			slog.Int("succeeded", b.run.Succeeded),
			slog.Int("failed", b.run.Failed),
			slog.Int("skipped", b.run.Skipped),
		)
	}
	b.appendEntry(ctx, activity.Entry{Outcome: activity.OutcomeSummary, Message: msg})
}

func (b *batch) append(ctx context.Context, r *recipient.Record, outcome activity.Outcome, msg string) {
	b.appendEntry(ctx, activity.Entry{
		Outcome: outcome,
		Row:     r.Row,
		Email:   r.Email(),
		Message: msg,
	})
}

func (b *batch) appendEntry(ctx context.Context, e activity.Entry) {
	if b.activity == nil {
		return
	}
	e.RunID = b.run.ID
	e.Operation = string(b.run.Operation)
	// Entries for an interrupted batch must still be written.
	if err := b.activity.Append(context.WithoutCancel(ctx), e); err != nil {
		b.log.ErrorContext(ctx, "activity log append failed", slog.Any("error", err))
	}
}
