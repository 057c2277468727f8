package tasks

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/mergeflow/internal/campaign"
	"github.com/dmitrymomot/mergeflow/pkg/job"
)

// Scheduled task names.
const (
	TaskBouncePoll  = "schedule.bounces.poll"
	TaskOrphanAudit = "schedule.orphans.audit"
)

// Schedules holds five field cron expressions. Empty ones are not
// registered.
type Schedules struct {
	BouncePoll  string
	OrphanAudit string
}

// JobOptions registers one queued task per operation plus the schedules.
func (r *Runner) JobOptions(s Schedules) []job.Option {
	opts := make([]job.Option, 0, len(campaign.Operations)+2)
	for _, op := range campaign.Operations {
		opts = append(opts, job.WithTask[Payload](&operationTask{op: op, runner: r}))
	}
	if s.BouncePoll != "" {
		opts = append(opts, job.WithScheduledTask(&bouncePollTask{schedule: s.BouncePoll, runner: r}))
	}
	if s.OrphanAudit != "" {
		opts = append(opts, job.WithScheduledTask(&orphanAuditTask{schedule: s.OrphanAudit, runner: r}))
	}
	return opts
}

type operationTask struct {
	runner *Runner
	op     campaign.Operation
}

func (t *operationTask) Name() string { return string(t.op) }

func (t *operationTask) Handle(ctx context.Context, p Payload) error {
	res, err := t.runner.Execute(ctx, t.op, p)
	if res.Run != nil {
		t.runner.logger.InfoContext(ctx, "queued operation finished",
			slog.String("run_id", res.Run.ID),
			slog.String("summary", res.Run.Summary()),
		)
	}
	return err
}

type bouncePollTask struct {
	runner   *Runner
	schedule string
}

func (t *bouncePollTask) Name() string     { return TaskBouncePoll }
func (t *bouncePollTask) Schedule() string { return t.schedule }

func (t *bouncePollTask) Handle(ctx context.Context) error {
	_, err := t.runner.Execute(ctx, campaign.OpPollBounces, Payload{})
	return err
}

// orphanAuditTask previews both tracks and warns about suspicious ratios.
// It never deletes.
type orphanAuditTask struct {
	runner   *Runner
	schedule string
}

func (t *orphanAuditTask) Name() string     { return TaskOrphanAudit }
func (t *orphanAuditTask) Schedule() string { return t.schedule }

func (t *orphanAuditTask) Handle(ctx context.Context) error {
	var errs []error
	for _, track := range []campaign.Track{campaign.TrackDocuments, campaign.TrackPDFs} {
		res, err := t.runner.Execute(ctx, campaign.OpPreviewOrphans, Payload{Track: string(track)})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		p := res.Partition
		attrs := []any{
			slog.String("track", string(track)),
			slog.Int("orphans", len(p.Orphans)),
			slog.Float64("ratio", p.Ratio),
		}
		if p.Suspicious {
			t.runner.logger.WarnContext(ctx, "orphan ratio above threshold", attrs...)
			continue
		}
		t.runner.logger.InfoContext(ctx, "orphan audit", attrs...)
	}
	return errors.Join(errs...)
}
