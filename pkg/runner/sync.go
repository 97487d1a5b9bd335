package runner

import (
	"context"
	"fmt"
)

// RunSynchronous drives meetingID's remaining rounds to completion (or
// cancellation via ctx) on the calling goroutine, for POST
// /meetings/{id}/run — the blocking counterpart to StartBackground. It
// shares the single-flight registry: a meeting already running in the
// background cannot also be run synchronously.
func (m *Manager) RunSynchronous(ctx context.Context, meetingID string) error {
	m.mu.Lock()
	if _, exists := m.active[meetingID]; exists {
		m.mu.Unlock()
		return ErrAlreadyRunning
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.active[meetingID] = cancel
	m.mu.Unlock()
	defer cancel()
	defer m.unregister(meetingID)

	if err := m.execute(runCtx, meetingID, ""); err != nil {
		return fmt.Errorf("runner: synchronous run: %w", err)
	}
	return nil
}
