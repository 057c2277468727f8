package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/mergeflow/internal/artifacts"
	"github.com/dmitrymomot/mergeflow/internal/campaign"
	"github.com/dmitrymomot/mergeflow/internal/config"
	"github.com/dmitrymomot/mergeflow/internal/printer"
	"github.com/dmitrymomot/mergeflow/internal/tasks"
	"github.com/dmitrymomot/mergeflow/pkg/activity"
	"github.com/dmitrymomot/mergeflow/pkg/db"
	"github.com/dmitrymomot/mergeflow/pkg/gotenberg"
	"github.com/dmitrymomot/mergeflow/pkg/logger"
	"github.com/dmitrymomot/mergeflow/pkg/mailer"
	"github.com/dmitrymomot/mergeflow/pkg/mailer/graph"
	"github.com/dmitrymomot/mergeflow/pkg/mailer/resend"
	"github.com/dmitrymomot/mergeflow/pkg/sheet"
	"github.com/dmitrymomot/mergeflow/pkg/storage"
	"github.com/dmitrymomot/mergeflow/pkg/template"
)

const flushTimeout = 2 * time.Second

var storageKeys = []string{"storage.bucket", "storage.access_key", "storage.secret_key"}

// env holds the configuration and the lazily opened connections of one
// command invocation.
type env struct {
	cfg     *config.Config
	log     *slog.Logger
	pool    *pgxpool.Pool
	objects *storage.S3Storage
}

func loadEnv(extractors ...logger.ContextExtractor) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, printer.Error("Cannot load configuration", err.Error(), []string{
			"Pass --config with the path of mergeflow.yaml",
			"Set MERGEFLOW_CONFIG",
		})
	}
	log := logger.New(os.Stderr, cfg.Log, append(campaign.LogExtractors(), extractors...)...)
	return &env{cfg: cfg, log: log}, nil
}

func (e *env) close() {
	if e.pool != nil {
		e.pool.Close()
	}
	logger.Flush(flushTimeout)
}

// require prints a MissingKeyError with the key to set, and an
// OverlapError with the locations to separate.
func (e *env) require(keys ...string) error {
	err := e.cfg.Require(keys...)
	var missing *config.MissingKeyError
	if errors.As(err, &missing) {
		return printer.Error("Missing configuration", err.Error(), []string{
			fmt.Sprintf("Set %s in the config file", missing.Key),
		})
	}
	var overlap *config.OverlapError
	if errors.As(err, &overlap) {
		return printer.Error("Overlapping storage locations", err.Error(), []string{
			fmt.Sprintf("Move %s or %s to its own prefix", overlap.Key, overlap.Other),
		})
	}
	return err
}

// operationKeys lists the settings op cannot run without.
func (e *env) operationKeys(op campaign.Operation, p tasks.Payload) []string {
	keys := []string{"database.url"}
	if e.cfg.Recipients.Source == config.SourceCSV {
		keys = []string{"recipients.csv_path"}
	}

	switch op {
	case campaign.OpValidate:
		keys = append(keys, "campaign.template")
	case campaign.OpCreateDocs, campaign.OpRegenerateDocs:
		keys = append(keys, "campaign.template", "campaign.documents_location")
		keys = append(keys, storageKeys...)
	case campaign.OpCreatePDFs, campaign.OpRegeneratePDFs:
		keys = append(keys, "campaign.template", "campaign.pdfs_location", "gotenberg.url")
		keys = append(keys, storageKeys...)
	case campaign.OpSend:
		keys = append(keys, "campaign.template", "mail.resend.api_key", "mail.resend.sender_email")
		if e.cfg.Campaign.AttachPDF {
			keys = append(keys, storageKeys...)
		}
	case campaign.OpPreviewOrphans, campaign.OpDeleteOrphans:
		if track, err := campaign.ParseTrack(p.Track); err == nil && track == campaign.TrackPDFs {
			keys = append(keys, "campaign.pdfs_location")
		} else {
			keys = append(keys, "campaign.documents_location")
		}
		keys = append(keys, storageKeys...)
	}
	return slices.Compact(keys)
}

// database connects once and applies migrations.
func (e *env) database(ctx context.Context) (*pgxpool.Pool, error) {
	if e.pool != nil {
		return e.pool, nil
	}
	pool, err := db.Connect(ctx, e.cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx, pool, e.cfg.Database.MigrationsTable, e.log); err != nil {
		pool.Close()
		return nil, err
	}
	e.pool = pool
	return pool, nil
}

func (e *env) storage() (*storage.S3Storage, error) {
	if e.objects != nil {
		return e.objects, nil
	}
	objects, err := storage.New(e.cfg.Storage)
	if err != nil {
		return nil, err
	}
	e.objects = objects
	return objects, nil
}

func (e *env) recipients(ctx context.Context) (sheet.Store, error) {
	if e.cfg.Recipients.Source == config.SourceCSV {
		return sheet.NewCSVStore(e.cfg.Recipients.CSVPath), nil
	}
	pool, err := e.database(ctx)
	if err != nil {
		return nil, err
	}
	return sheet.NewPostgresStore(pool, e.cfg.Recipients.Sheet), nil
}

func (e *env) templates() (template.Store, error) {
	if e.cfg.Templates.Source != config.TemplatesStorage {
		return template.NewFSStore(os.DirFS(e.cfg.Templates.Dir)), nil
	}
	objects, err := e.storage()
	if err != nil {
		return nil, err
	}
	return template.NewObjectStore(objects, e.cfg.Templates.Prefix, storage.ErrNotFound), nil
}

// activityLog always logs through slog and also persists entries when a
// database is open.
func (e *env) activityLog() activity.Log {
	logs := activity.Multi{activity.NewSlogLog(e.log)}
	if e.pool != nil {
		logs = append(logs, activity.NewPostgresLog(e.pool))
	}
	return logs
}

// sender returns nil when Resend is not configured.
func (e *env) sender() (mailer.Sender, error) {
	if e.cfg.Mail.Resend.APIKey == "" {
		return nil, nil
	}
	transport, err := resend.New(e.cfg.Mail.Resend)
	if err != nil {
		return nil, err
	}
	var renderer *mailer.Renderer
	if e.cfg.Templates.Layouts != "" {
		renderer = mailer.NewRenderer(os.DirFS(e.cfg.Templates.Layouts))
	}
	return mailer.New(transport, renderer, e.cfg.Mail.Config), nil
}

// options wires the optional collaborators that are configured.
func (e *env) options(ctx context.Context) ([]campaign.Option, error) {
	opts := []campaign.Option{
		campaign.WithLogger(e.log),
		campaign.WithActivityLog(e.activityLog()),
	}

	if e.cfg.Gotenberg.URL != "" {
		converter, err := gotenberg.New(e.cfg.Gotenberg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, campaign.WithConverter(converter))
	}

	var mailbox *graph.Client
	if e.cfg.Graph.TenantID != "" && e.cfg.Graph.ClientID != "" {
		mailbox = graph.New(ctx, e.cfg.Graph)
		opts = append(opts, campaign.WithLocator(mailbox))
	}

	switch e.cfg.Mail.Bounces {
	case config.BouncesGraph:
		if mailbox != nil {
			opts = append(opts, campaign.WithBounceChecker(mailbox))
		}
	case config.BouncesResend:
		if e.cfg.Mail.Resend.APIKey != "" {
			checker, err := resend.New(e.cfg.Mail.Resend)
			if err != nil {
				return nil, err
			}
			opts = append(opts, campaign.WithBounceChecker(checker))
		}
	}
	return opts, nil
}

// components are the campaign services a command needs.
type components struct {
	generator  *campaign.Generator
	tracker    *campaign.Tracker
	reconciler *campaign.Reconciler
}

func (c *components) runner(log *slog.Logger) *tasks.Runner {
	// Typed nil pointers must not reach the runner's interfaces.
	var (
		g tasks.Generator
		t tasks.Tracker
		r tasks.Reconciler
	)
	if c.generator != nil {
		g = c.generator
	}
	if c.tracker != nil {
		t = c.tracker
	}
	if c.reconciler != nil {
		r = c.reconciler
	}
	return tasks.NewRunner(g, t, r, log)
}

// build creates the services for ops. The artifact store is opened only
// when an operation writes or lists files, or attaches PDFs.
func (e *env) build(ctx context.Context, ops ...campaign.Operation) (*components, error) {
	recipients, err := e.recipients(ctx)
	if err != nil {
		return nil, err
	}
	templates, err := e.templates()
	if err != nil {
		return nil, err
	}
	opts, err := e.options(ctx)
	if err != nil {
		return nil, err
	}

	needs := func(candidates ...campaign.Operation) bool {
		return slices.ContainsFunc(ops, func(op campaign.Operation) bool {
			return slices.Contains(candidates, op)
		})
	}

	var store campaign.ArtifactStore
	if needs(campaign.OpCreateDocs, campaign.OpRegenerateDocs, campaign.OpCreatePDFs,
		campaign.OpRegeneratePDFs, campaign.OpPreviewOrphans, campaign.OpDeleteOrphans) ||
		(needs(campaign.OpSend) && e.cfg.Campaign.AttachPDF) {
		objects, err := e.storage()
		if err != nil {
			return nil, err
		}
		store = artifacts.New(objects)
	}

	c := &components{}
	cfg := e.cfg.Campaign
	if needs(campaign.OpValidate, campaign.OpCreateDocs, campaign.OpRegenerateDocs,
		campaign.OpCreatePDFs, campaign.OpRegeneratePDFs) {
		c.generator = campaign.NewGenerator(cfg, recipients, templates, store, opts...)
	}
	if needs(campaign.OpSend, campaign.OpPollBounces, campaign.OpResetStatus) {
		var sender mailer.Sender
		if needs(campaign.OpSend) {
			if sender, err = e.sender(); err != nil {
				return nil, err
			}
		}
		c.tracker = campaign.NewTracker(cfg, recipients, templates, store, sender, opts...)
	}
	if needs(campaign.OpPreviewOrphans, campaign.OpDeleteOrphans) {
		c.reconciler = campaign.NewReconciler(cfg, recipients, store, opts...)
	}
	return c, nil
}
