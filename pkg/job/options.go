package job

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Option configures a Manager.
type Option func(*config)

type config struct {
	registry   *taskRegistry
	logger     *slog.Logger
	periodic   []periodic
	maxWorkers int
}

// periodic is a scheduled task waiting for its cron expression to be parsed.
type periodic struct {
	name string
	spec string
}

// WithTask registers a task. P, the payload type, is inferred from Handle.
func WithTask[P any, T interface {
	Name() string
	Handle(context.Context, P) error
}](task T) Option {
	return func(c *config) {
		c.registry.register(task.Name(), &typedTask[P, T]{task: task})
	}
}

// WithScheduledTask registers a task enqueued on a five field cron schedule.
// Scheduled tasks take no payload.
func WithScheduledTask[T interface {
	Name() string
	Schedule() string
	Handle(context.Context) error
}](task T) Option {
	return func(c *config) {
		c.registry.register(task.Name(), scheduledTask(task.Handle))
		c.periodic = append(c.periodic, periodic{name: task.Name(), spec: task.Schedule()})
	}
}

// WithLogger sets the logger. Nil keeps the discarding default.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxWorkers sets how many jobs run at once. The default of 1 keeps
// campaign operations from racing on the same recipient rows.
func WithMaxWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxWorkers = n
		}
	}
}

type scheduledTask func(context.Context) error

func (f scheduledTask) Execute(ctx context.Context, _ json.RawMessage) error {
	return f(ctx)
}
