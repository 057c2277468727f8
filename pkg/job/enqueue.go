package job

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/riverqueue/river"
)

// EnqueueOption adjusts a single Enqueue call.
type EnqueueOption func(*enqueue)

type enqueue struct {
	insert    river.InsertOpts
	delay     time.Duration
	uniqueFor time.Duration
	uniqueKey string
}

// MaxAttempts caps retries. Campaign operations use 1, since a retried
// send would mail recipients twice.
func MaxAttempts(n int) EnqueueOption {
	return func(e *enqueue) {
		if n > 0 {
			e.insert.MaxAttempts = n
		}
	}
}

// UniqueFor drops the job when one with the same task, payload and
// UniqueKey was inserted within d.
func UniqueFor(d time.Duration) EnqueueOption {
	return func(e *enqueue) { e.uniqueFor = d }
}

// UniqueKey narrows UniqueFor to jobs sharing key.
func UniqueKey(key string) EnqueueOption {
	return func(e *enqueue) { e.uniqueKey = key }
}

// ScheduledIn makes the job available after d.
func ScheduledIn(d time.Duration) EnqueueOption {
	return func(e *enqueue) { e.delay = d }
}

func buildJobArgs(name string, payload any, opts ...EnqueueOption) (*taskArgs, *river.InsertOpts, error) {
	args := &taskArgs{TaskName: name}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("job: marshal %s payload: %w", name, err)
		}
		args.Payload = raw
	}

	var e enqueue
	for _, opt := range opts {
		opt(&e)
	}
	if e.delay > 0 {
		e.insert.ScheduledAt = time.Now().Add(e.delay)
	}
	// UniqueKey is part of the args, so it only matters for ByArgs.
	if e.uniqueFor > 0 {
		e.insert.UniqueOpts = river.UniqueOpts{ByArgs: true, ByPeriod: e.uniqueFor}
		args.UniqueKey = e.uniqueKey
	}
	return args, &e.insert, nil
}
