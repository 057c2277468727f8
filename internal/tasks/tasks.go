// Package tasks dispatches campaign operations by name, for the CLI and
// for background jobs.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/mergeflow/internal/campaign"
	"github.com/dmitrymomot/mergeflow/pkg/logger"
	"github.com/dmitrymomot/mergeflow/pkg/recipient"
)

var (
	// ErrUnknownOperation is returned for an operation name the runner
	// does not dispatch.
	ErrUnknownOperation = errors.New("tasks: unknown operation")

	// ErrUnavailable is returned when the component an operation needs
	// was not built.
	ErrUnavailable = errors.New("tasks: operation is not configured")
)

// Payload carries operation arguments. Fields an operation does not use
// are ignored.
type Payload struct {
	Track    string   `json:"track,omitempty"`
	Rows     []int    `json:"rows,omitempty"`
	Statuses []string `json:"statuses,omitempty"`
	Force    bool     `json:"force,omitempty"`
}

type Generator interface {
	Validate(ctx context.Context) (*campaign.Run, error)
	CreateDocuments(ctx context.Context) (*campaign.Run, error)
	RegenerateDocuments(ctx context.Context) (*campaign.Run, error)
	CreatePDFs(ctx context.Context) (*campaign.Run, error)
	RegeneratePDFs(ctx context.Context) (*campaign.Run, error)
}

type Tracker interface {
	SendPending(ctx context.Context) (*campaign.Run, error)
	PollBounces(ctx context.Context) (*campaign.Run, error)
	ResetStatus(ctx context.Context, rows []int, statuses ...recipient.Status) (*campaign.Run, error)
}

type Reconciler interface {
	Preview(ctx context.Context, track campaign.Track) (*campaign.Partition, error)
	Delete(ctx context.Context, track campaign.Track, force bool) (*campaign.Partition, *campaign.Run, error)
}

// Result is what an operation produced. Partition is set for orphan
// operations, Run for everything else that processed recipients.
type Result struct {
	Run       *campaign.Run
	Partition *campaign.Partition
}

// Runner executes operations. Any component may be nil; operations that
// need it fail with ErrUnavailable.
type Runner struct {
	generator  Generator
	tracker    Tracker
	reconciler Reconciler
	logger     *slog.Logger
}

// NewRunner builds a runner over the given components. A nil log
// discards output.
func NewRunner(g Generator, t Tracker, r Reconciler, log *slog.Logger) *Runner {
	if log == nil {
		log = logger.NewNope()
	}
	return &Runner{generator: g, tracker: t, reconciler: r, logger: log}
}

// Execute runs op with p. The returned Result is populated even when the
// operation aborted part way.
func (r *Runner) Execute(ctx context.Context, op campaign.Operation, p Payload) (Result, error) {
	switch op {
	case campaign.OpValidate, campaign.OpCreateDocs, campaign.OpRegenerateDocs,
		campaign.OpCreatePDFs, campaign.OpRegeneratePDFs:
		if r.generator == nil {
			return Result{}, fmt.Errorf("%w: %s", ErrUnavailable, op)
		}
		run, err := r.generate(ctx, op)
		return Result{Run: run}, err

	case campaign.OpSend, campaign.OpPollBounces, campaign.OpResetStatus:
		if r.tracker == nil {
			return Result{}, fmt.Errorf("%w: %s", ErrUnavailable, op)
		}
		run, err := r.track(ctx, op, p)
		return Result{Run: run}, err

	case campaign.OpPreviewOrphans, campaign.OpDeleteOrphans:
		if r.reconciler == nil {
			return Result{}, fmt.Errorf("%w: %s", ErrUnavailable, op)
		}
		track, err := campaign.ParseTrack(p.Track)
		if err != nil {
			return Result{}, err
		}
		if op == campaign.OpPreviewOrphans {
			part, err := r.reconciler.Preview(ctx, track)
			return Result{Partition: part}, err
		}
		part, run, err := r.reconciler.Delete(ctx, track, p.Force)
		return Result{Run: run, Partition: part}, err
	}
	return Result{}, fmt.Errorf("%w: %q", ErrUnknownOperation, op)
}

func (r *Runner) generate(ctx context.Context, op campaign.Operation) (*campaign.Run, error) {
	switch op {
	case campaign.OpValidate:
		return r.generator.Validate(ctx)
	case campaign.OpCreateDocs:
		return r.generator.CreateDocuments(ctx)
	case campaign.OpRegenerateDocs:
		return r.generator.RegenerateDocuments(ctx)
	case campaign.OpCreatePDFs:
		return r.generator.CreatePDFs(ctx)
	default:
		return r.generator.RegeneratePDFs(ctx)
	}
}

func (r *Runner) track(ctx context.Context, op campaign.Operation, p Payload) (*campaign.Run, error) {
	switch op {
	case campaign.OpSend:
		return r.tracker.SendPending(ctx)
	case campaign.OpPollBounces:
		return r.tracker.PollBounces(ctx)
	default:
		statuses := make([]recipient.Status, 0, len(p.Statuses))
		for _, s := range p.Statuses {
			statuses = append(statuses, recipient.ParseStatus(s))
		}
		return r.tracker.ResetStatus(ctx, p.Rows, statuses...)
	}
}
