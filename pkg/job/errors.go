package job

import "errors"

// Job errors.
var (
	// ErrUnknownTask is returned when a job names a task that was never
	// registered with the manager.
	ErrUnknownTask = errors.New("job: unknown task")

	// ErrInvalidPayload is returned when a job's arguments do not decode
	// into the task's payload type.
	ErrInvalidPayload = errors.New("job: invalid payload")

	// ErrAlreadyStarted is returned by Start on a running manager.
	ErrAlreadyStarted = errors.New("job: already started")

	// ErrNotStarted is returned by Stop, and by the health check, when the
	// manager is not running.
	ErrNotStarted = errors.New("job: not started")

	// ErrPoolRequired is returned by NewManager without a database pool.
	ErrPoolRequired = errors.New("job: pool is required")

	// ErrUnhealthy is returned by the health check when the queue schema
	// cannot be read.
	ErrUnhealthy = errors.New("job: unhealthy")
)
