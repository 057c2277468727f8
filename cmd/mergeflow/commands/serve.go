package commands

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/mergeflow/internal/campaign"
	"github.com/dmitrymomot/mergeflow/internal/httpapi"
	"github.com/dmitrymomot/mergeflow/internal/printer"
	"github.com/dmitrymomot/mergeflow/internal/tasks"
	"github.com/dmitrymomot/mergeflow/pkg/activity"
	"github.com/dmitrymomot/mergeflow/pkg/db"
	"github.com/dmitrymomot/mergeflow/pkg/gotenberg"
	"github.com/dmitrymomot/mergeflow/pkg/health"
	"github.com/dmitrymomot/mergeflow/pkg/job"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the background job worker",
	Long: `Run the HTTP API and a job worker backed by Postgres.

Operations submitted over HTTP are queued and executed one at a time.
jobs.bounce_poll and jobs.orphan_audit schedule periodic bounce polling and
an orphan audit that only reports.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(httpapi.RequestIDExtractor())
	if err != nil {
		return err
	}
	defer e.close()

	keys := append([]string{"database.url", "campaign.template"}, storageKeys...)
	if err := e.require(keys...); err != nil {
		return err
	}

	ctx := cmd.Context()
	pool, err := e.database(ctx)
	if err != nil {
		return printer.Error("Cannot connect to the database", err.Error(), []string{"Check database.url"})
	}
	c, err := e.build(ctx, campaign.Operations...)
	if err != nil {
		return printer.Error("Cannot start server", err.Error(), nil)
	}

	cfg := e.cfg
	runner := c.runner(e.log)
	jobOpts := append(runner.JobOptions(tasks.Schedules{
		BouncePoll:  cfg.Jobs.BouncePoll,
		OrphanAudit: cfg.Jobs.OrphanAudit,
	}), job.WithLogger(e.log), job.WithMaxWorkers(cfg.Jobs.MaxWorkers))

	jobs, err := job.NewManager(pool, jobOpts...)
	if err != nil {
		return printer.Error("Cannot create job manager", err.Error(), []string{"Check the jobs section of the config"})
	}
	if err := jobs.Migrate(ctx); err != nil {
		return printer.Error("Cannot migrate job tables", err.Error(), nil)
	}

	checks := health.Checks{
		"database": db.Healthcheck(pool),
		"jobs":     job.Healthcheck(jobs),
	}
	if cfg.Gotenberg.URL != "" {
		if converter, err := gotenberg.New(cfg.Gotenberg); err == nil {
			checks["gotenberg"] = converter.Healthcheck
		}
	}

	handler := httpapi.New(httpapi.Deps{
		Jobs:     jobs,
		Orphans:  c.reconciler,
		Activity: activity.NewPostgresLog(pool),
		Checks:   checks,
		Logger:   e.log,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Workers outlive the signal until Stop drains them.
		if err := jobs.Start(context.WithoutCancel(gctx)); err != nil {
			return err
		}
		<-gctx.Done()
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		return jobs.Stop(stopCtx)
	})
	g.Go(func() error {
		return httpapi.Serve(gctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout, handler, e.log)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		e.log.Error("server stopped with error", slog.Any("error", err))
		return printer.Error("Server stopped", err.Error(), nil)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
