package job

import (
	"context"
	"errors"
	"fmt"
)

// Healthcheck reports the manager unhealthy until Start succeeds, and when
// the River schema is missing from the database. Usable as a
// health.CheckFunc.
func Healthcheck(m *Manager) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		m.mu.Lock()
		started := m.started
		m.mu.Unlock()
		if !started {
			return fmt.Errorf("%w: %w", ErrUnhealthy, ErrNotStarted)
		}

		var version int
		err := m.pool.QueryRow(ctx, "SELECT max(version) FROM river_migration").Scan(&version)
		if err != nil {
			return errors.Join(ErrUnhealthy, err)
		}
		return nil
	}
}
