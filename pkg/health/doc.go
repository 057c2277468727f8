// Package health runs named dependency checks and exposes them as HTTP probes.
//
// The serve command mounts:
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//		"postgres": db.Healthcheck(pool),
//		"jobs":     job.Healthcheck(manager),
//	}, health.WithLogger(log)))
//
// Probes answer plain text unless the client asks for JSON with an
// Accept header or ?format=json. [Run] is the same aggregation without HTTP.
package health
