// Package httpapi exposes health checks, orphan previews, queued
// operations and run activity over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/mergeflow/internal/campaign"
	"github.com/dmitrymomot/mergeflow/internal/tasks"
	"github.com/dmitrymomot/mergeflow/pkg/activity"
	"github.com/dmitrymomot/mergeflow/pkg/health"
	"github.com/dmitrymomot/mergeflow/pkg/job"
	"github.com/dmitrymomot/mergeflow/pkg/logger"
)

const (
	maxBodyBytes = 1 << 16
	// Repeated submissions of the same operation within this window are
	// collapsed into one job.
	enqueueDedupWindow = time.Minute
)

type Enqueuer interface {
	Enqueue(ctx context.Context, name string, payload any, opts ...job.EnqueueOption) (int64, error)
}

type OrphanPreviewer interface {
	Preview(ctx context.Context, track campaign.Track) (*campaign.Partition, error)
}

type ActivityReader interface {
	Run(ctx context.Context, runID string) ([]activity.Entry, error)
}

// Deps are the services behind the routes. Nil services answer 503.
type Deps struct {
	Jobs     Enqueuer
	Orphans  OrphanPreviewer
	Activity ActivityReader
	Checks   health.Checks
	Logger   *slog.Logger
}

type api struct {
	deps Deps
	log  *slog.Logger
}

// New builds the router.
func New(deps Deps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = logger.NewNope()
	}
	a := &api{deps: deps, log: log}

	r := chi.NewRouter()
	r.Use(RequestID, logRequests(log))

	r.Get("/health/live", health.LivenessHandler())
	r.Get("/health/ready", health.ReadinessHandler(deps.Checks, health.WithLogger(log)))

	r.Get("/orphans/{track}", a.handle(a.previewOrphans))
	r.Post("/operations/{operation}", a.handle(a.enqueueOperation))
	r.Get("/runs/{id}/activity", a.handle(a.runActivity))
	return r
}

// handle adapts h to http.HandlerFunc and renders returned errors as JSON.
func (a *api) handle(h HandlerFunc) http.HandlerFunc {
	h = Recover(a.log)(h)
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}
		code, msg := statusOf(err)
		if code >= http.StatusInternalServerError {
			a.log.ErrorContext(r.Context(), "request failed", slog.Any("error", err))
		}
		writeJSON(w, code, map[string]string{"error": msg})
	}
}

func (a *api) previewOrphans(w http.ResponseWriter, r *http.Request) error {
	if a.deps.Orphans == nil {
		return ErrServiceUnavailable("orphan preview is not configured", nil)
	}
	track, err := campaign.ParseTrack(chi.URLParam(r, "track"))
	if err != nil {
		return ErrNotFound("unknown track", err)
	}
	p, err := a.deps.Orphans.Preview(r.Context(), track)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, p)
	return nil
}

type enqueueResponse struct {
	Operation campaign.Operation `json:"operation"`
	JobID     int64              `json:"job_id"`
}

func (a *api) enqueueOperation(w http.ResponseWriter, r *http.Request) error {
	if a.deps.Jobs == nil {
		return ErrServiceUnavailable("job queue is not configured", nil)
	}
	op := campaign.Operation(chi.URLParam(r, "operation"))
	if !slices.Contains(campaign.Operations, op) {
		return ErrNotFound("unknown operation", nil)
	}

	var p tasks.Payload
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return ErrBadRequest("unreadable body", err)
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &p); err != nil {
			return ErrBadRequest("invalid payload", err)
		}
	}
	if op == campaign.OpPreviewOrphans || op == campaign.OpDeleteOrphans {
		if _, err := campaign.ParseTrack(p.Track); err != nil {
			return ErrBadRequest("unknown track", err)
		}
	}

	jobID, err := a.deps.Jobs.Enqueue(r.Context(), string(op), p,
		job.MaxAttempts(1),
		job.UniqueFor(enqueueDedupWindow),
	)
	if err != nil {
		if errors.Is(err, job.ErrUnknownTask) {
			return ErrConflict("operation is not registered", err)
		}
		return err
	}
	writeJSON(w, http.StatusAccepted, enqueueResponse{Operation: op, JobID: jobID})
	return nil
}

func (a *api) runActivity(w http.ResponseWriter, r *http.Request) error {
	if a.deps.Activity == nil {
		return ErrServiceUnavailable("activity log is not configured", nil)
	}
	entries, err := a.deps.Activity.Run(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return ErrNotFound("run not found", nil)
	}
	writeJSON(w, http.StatusOK, entries)
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
