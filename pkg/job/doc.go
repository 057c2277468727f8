// Package job runs campaign work in the background on River, a Postgres-native
// queue.
//
// Two kinds of work are supported:
//
//   - Tasks: typed handlers enqueued on demand with a JSON payload
//   - Scheduled tasks: handlers without payload triggered by a cron expression
//
// Tasks are plain structs; the package uses structural typing so no interface
// has to be imported:
//
//	type RunOperation struct{ ops *campaign.Operations }
//
//	func (t *RunOperation) Name() string { return "campaign.run" }
//
//	func (t *RunOperation) Handle(ctx context.Context, p RunPayload) error {
//		_, err := t.ops.Run(ctx, p.Operation, p.Force)
//		return err
//	}
//
//	type PollBounces struct{ tracker *campaign.Tracker }
//
//	func (t *PollBounces) Name() string     { return "campaign.bounces" }
//	func (t *PollBounces) Schedule() string { return "*/30 * * * *" }
//	func (t *PollBounces) Handle(ctx context.Context) error { ... }
//
// Register them when creating the manager:
//
//	m, err := job.NewManager(pool,
//		job.WithTask(&RunOperation{ops}),
//		job.WithScheduledTask(&PollBounces{tracker}),
//		job.WithLogger(log),
//	)
//	if err := m.Migrate(ctx); err != nil { ... }
//	if err := m.Start(ctx); err != nil { ... }
//	defer m.Stop(context.Background())
//
//	id, err := m.Enqueue(ctx, "campaign.run", RunPayload{Operation: "send"},
//		job.UniqueFor(time.Hour), job.MaxAttempts(1))
//
// Campaign operations assume a single invoker, so the default queue runs one
// worker unless WithMaxWorkers says otherwise.
//
// Cron expressions use five fields: minute hour day-of-month month day-of-week.
package job
