package health

import (
	"encoding/json"
	"net/http"
)

// LivenessHandler answers 200 {"status":"healthy"} while the process serves
// requests. It runs no checks.
func LivenessHandler() http.HandlerFunc {
	live := &Response{Status: StatusHealthy}
	return func(w http.ResponseWriter, _ *http.Request) {
		respond(w, live)
	}
}

// ReadinessHandler runs checks on every request and answers 503 when any
// of them fails. The body lists each check's outcome.
func ReadinessHandler(checks Checks, opts ...Option) http.HandlerFunc {
	cfg := newConfig(opts...)
	return func(w http.ResponseWriter, r *http.Request) {
		respond(w, runChecks(r.Context(), checks, cfg))
	}
}

func respond(w http.ResponseWriter, resp *Response) {
	status := http.StatusOK
	if resp.Status != StatusHealthy {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
