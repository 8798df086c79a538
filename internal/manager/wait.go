package manager

import (
	"context"
	"time"

	"github.com/sharkusmanch/svcctl/internal/domain"
)

// waitForState polls the service until it reaches target or timeout
// elapses, and returns the last state read. Reaching the deadline is not
// an error; cancelling ctx is.
func (m *Manager) waitForState(ctx context.Context, ref domain.ServiceReference, target domain.ServiceState, timeout time.Duration) (domain.ServiceState, error) {
	if timeout <= 0 {
		timeout = m.defaults.Timeout
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		status, err := m.status(ctx, ref)
		if err != nil {
			return domain.ServiceStateUnknown, err
		}
		if status.State == target {
			return status.State, nil
		}

		select {
		case <-waitCtx.Done():
			if err := ctx.Err(); err != nil {
				return status.State, err
			}
			// Deadline reached; one final read.
			final, err := m.status(ctx, ref)
			if err != nil {
				return status.State, err
			}
			return final.State, nil
		case <-ticker.C:
		}
	}
}
