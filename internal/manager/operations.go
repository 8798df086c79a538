package manager

import (
	"context"
	"fmt"
	"time"

	"github.com/sharkusmanch/svcctl/internal/domain"
	"go.uber.org/zap"
)

// transition describes one idempotent, wait-bounded state change.
type transition struct {
	action       string
	done         string
	target       domain.ServiceState
	pending      domain.ServiceState
	capable      func(domain.ServiceStatus) bool
	precondition bool // capable is checked before the already-at-target shortcut
	issue        func(ctx context.Context) error
}

// run re-reads live status, issues the command unless the service is
// already at (or moving to) the target, then waits for the target.
// The capability check applies when a command would be issued, or
// always when the transition marks it as a precondition. It returns
// false without error when the service lacks the capability or the wait
// times out.
func (m *Manager) run(ctx context.Context, ref domain.ServiceReference, timeout time.Duration, t transition) (bool, error) {
	status, err := m.status(ctx, ref)
	if err != nil {
		return false, err
	}

	if t.precondition && !t.capable(status) {
		m.logger.Debug("service can't be "+t.done,
			zap.String("service", ref.String()),
			zap.Stringer("state", status.State))
		return false, nil
	}

	if status.State == t.target {
		m.logger.Debug("service already "+t.done,
			zap.String("service", ref.String()),
			zap.Stringer("state", status.State))
		return true, nil
	}

	switch {
	case status.State == t.pending:
		m.logger.Debug("service transition already in progress",
			zap.String("service", ref.String()),
			zap.Stringer("state", status.State))
	case t.capable != nil && !t.capable(status):
		m.logger.Debug("service can't be "+t.done,
			zap.String("service", ref.String()),
			zap.Stringer("state", status.State))
		return false, nil
	default:
		m.logger.Debug("attempting to "+t.action+" service", zap.String("service", ref.String()))
		if err := t.issue(ctx); err != nil {
			return false, fmt.Errorf("failed to %s service %s: %w", t.action, ref, err)
		}
	}

	state, err := m.waitForState(ctx, ref, t.target, timeout)
	if err != nil {
		return false, err
	}

	if state != t.target {
		m.logger.Debug("service could not be "+t.done,
			zap.String("service", ref.String()),
			zap.Stringer("state", state))
		return false, nil
	}

	m.logger.Debug("service has been "+t.done, zap.String("service", ref.String()))
	return true, nil
}

// Start starts the service with optional arguments and waits until it is
// Running. A timeout <= 0 uses the manager default.
func (m *Manager) Start(ctx context.Context, ref domain.ServiceReference, timeout time.Duration, args ...string) (bool, error) {
	return m.run(ctx, ref, timeout, transition{
		action:  "start",
		done:    "started",
		target:  domain.ServiceStateRunning,
		pending: domain.ServiceStateStartPending,
		issue: func(ctx context.Context) error {
			return m.registry.Start(ctx, ref, args...)
		},
	})
}

// Stop stops the service and waits until it is Stopped. It returns false
// if the service does not accept the stop control.
func (m *Manager) Stop(ctx context.Context, ref domain.ServiceReference, timeout time.Duration) (bool, error) {
	return m.run(ctx, ref, timeout, transition{
		action:  "stop",
		done:    "stopped",
		target:  domain.ServiceStateStopped,
		pending: domain.ServiceStateStopPending,
		capable: func(s domain.ServiceStatus) bool { return s.CanStop },
		issue: func(ctx context.Context) error {
			return m.registry.Control(ctx, ref, domain.ControlStop)
		},
	})
}

// Restart stops then starts the service, giving each step the full
// timeout. Start is not attempted when Stop fails, and a failed Start
// leaves the service stopped.
func (m *Manager) Restart(ctx context.Context, ref domain.ServiceReference, timeout time.Duration) (bool, error) {
	stopped, err := m.Stop(ctx, ref, timeout)
	if err != nil || !stopped {
		return false, err
	}
	return m.Start(ctx, ref, timeout)
}

// Pause pauses the service and waits until it is Paused. It returns false
// whenever the service does not accept pause and continue, even if it is
// already paused.
func (m *Manager) Pause(ctx context.Context, ref domain.ServiceReference, timeout time.Duration) (bool, error) {
	return m.run(ctx, ref, timeout, transition{
		action:       "pause",
		done:         "paused",
		target:       domain.ServiceStatePaused,
		pending:      domain.ServiceStatePausePending,
		capable:      func(s domain.ServiceStatus) bool { return s.CanPauseAndContinue },
		precondition: true,
		issue: func(ctx context.Context) error {
			return m.registry.Control(ctx, ref, domain.ControlPause)
		},
	})
}

// Continue resumes a paused service and waits until it is Running. Like
// Pause, it returns false when the service does not accept pause and
// continue.
func (m *Manager) Continue(ctx context.Context, ref domain.ServiceReference, timeout time.Duration) (bool, error) {
	return m.run(ctx, ref, timeout, transition{
		action:       "continue",
		done:         "continued",
		target:       domain.ServiceStateRunning,
		pending:      domain.ServiceStateContinuePending,
		capable:      func(s domain.ServiceStatus) bool { return s.CanPauseAndContinue },
		precondition: true,
		issue: func(ctx context.Context) error {
			return m.registry.Control(ctx, ref, domain.ControlContinue)
		},
	})
}

// ExecuteCommand sends a custom control code to a running service without
// waiting for any effect. It returns false if the service is not Running.
func (m *Manager) ExecuteCommand(ctx context.Context, ref domain.ServiceReference, command domain.ServiceControl) (bool, error) {
	status, err := m.status(ctx, ref)
	if err != nil {
		return false, err
	}

	if status.State != domain.ServiceStateRunning {
		m.logger.Debug("service is not running",
			zap.String("service", ref.String()),
			zap.Stringer("state", status.State))
		return false, nil
	}

	m.logger.Debug("sending command to service",
		zap.String("service", ref.String()),
		zap.Uint32("command", uint32(command)))
	if err := m.registry.Control(ctx, ref, command); err != nil {
		return false, fmt.Errorf("failed to send command %d to service %s: %w", command, ref, err)
	}
	return true, nil
}
