// Package logger builds the process [log/slog] logger.
//
// Records are written as JSON (or text) to the given writer. Each
// [ContextExtractor] adds an attribute pulled from the record's context, so
// the campaign runner only has to put the run id on the context once:
//
//	log := logger.New(os.Stderr, cfg.Log,
//		logger.StringExtractor("run_id", runIDKey{}),
//	)
//	log.InfoContext(ctx, "recipient processed")
//
// When [SentryConfig.DSN] is set, errors also become Sentry events through
// [github.com/getsentry/sentry-go/slog]. Call [Flush] before exiting.
package logger
