// Package manager implements the service manager: name resolution,
// wait-bounded state transitions, and sc.exe install/uninstall commands.
package manager

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sharkusmanch/svcctl/internal/config"
	"github.com/sharkusmanch/svcctl/internal/domain"
	"go.uber.org/zap"
)

// Manager queries and controls services through a Registry and installs
// them through a Runner. It holds no per-service state; every call reads
// live status.
type Manager struct {
	registry         domain.Registry
	runner           domain.Runner
	logger           *zap.Logger
	defaults         config.Defaults
	pollInterval     time.Duration
	remoteRoot       string
	workingDirectory string
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithDefaults sets the computer targeted when none is given and the wait
// timeout used when a call passes timeout <= 0. A zero Timeout keeps the
// current one.
func WithDefaults(d config.Defaults) Option {
	return func(m *Manager) {
		m.defaults.Computer = d.Computer
		if d.Timeout > 0 {
			m.defaults.Timeout = d.Timeout
		}
	}
}

// WithTimeout sets the default wait timeout used when a call passes timeout <= 0.
func WithTimeout(timeout time.Duration) Option {
	return func(m *Manager) {
		if timeout > 0 {
			m.defaults.Timeout = timeout
		}
	}
}

// WithPollInterval sets how often status is polled while waiting.
func WithPollInterval(interval time.Duration) Option {
	return func(m *Manager) {
		if interval > 0 {
			m.pollInterval = interval
		}
	}
}

// WithRemoteRoot sets the root used for remote path resolution.
func WithRemoteRoot(root string) Option {
	return func(m *Manager) {
		if root != "" {
			m.remoteRoot = root
		}
	}
}

// WithWorkingDirectory sets the local working directory.
func WithWorkingDirectory(dir string) Option {
	return func(m *Manager) {
		if dir != "" {
			m.workingDirectory = dir
		}
	}
}

// New creates a Manager. The working directory defaults to the process's.
func New(registry domain.Registry, runner domain.Runner, opts ...Option) *Manager {
	m := &Manager{
		registry:     registry,
		runner:       runner,
		logger:       zap.NewNop(),
		defaults:     config.DefaultDefaults(),
		pollInterval: config.DefaultPollInterval,
		remoteRoot:   config.DefaultRemoteRoot,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.workingDirectory == "" {
		if wd, err := os.Getwd(); err == nil {
			m.workingDirectory = wd
		}
	}

	return m
}

// Resolve validates name and returns a reference to it on computer, or on
// the default computer when computer is empty.
func (m *Manager) Resolve(name, computer string) (domain.ServiceReference, error) {
	return domain.NewServiceReference(name, m.computerOrDefault(computer))
}

// Defaults returns the computer and timeout the manager falls back to.
func (m *Manager) Defaults() config.Defaults {
	return m.defaults
}

func (m *Manager) computerOrDefault(computer string) string {
	if computer == "" {
		return m.defaults.Computer
	}
	return computer
}

// Exists enumerates the services on the reference's computer and reports
// whether one has exactly that name. On a remote computer this is a
// network round trip.
func (m *Manager) Exists(ctx context.Context, ref domain.ServiceReference) (bool, error) {
	if err := checkRef(ref); err != nil {
		return false, err
	}

	names, err := m.registry.ListServices(ctx, ref.Computer())
	if err != nil {
		return false, fmt.Errorf("failed to list services: %w", err)
	}

	for _, name := range names {
		if name == ref.Name() {
			m.logger.Debug("service exists", zap.String("service", ref.String()))
			return true, nil
		}
	}

	m.logger.Debug("service does not exist", zap.String("service", ref.String()))
	return false, nil
}

// IsInstalled looks the service up directly. A service that exists but
// cannot be opened counts as installed.
func (m *Manager) IsInstalled(ctx context.Context, ref domain.ServiceReference) (bool, error) {
	if err := checkRef(ref); err != nil {
		return false, err
	}

	result, err := m.registry.Query(ctx, ref)
	if err != nil {
		return false, fmt.Errorf("failed to query service %s: %w", ref, err)
	}

	switch result.Outcome {
	case domain.LookupFound, domain.LookupAccessDenied:
		return true, nil
	default:
		return false, nil
	}
}

// GetStatus returns the live status of the service.
func (m *Manager) GetStatus(ctx context.Context, ref domain.ServiceReference) (domain.ServiceStatus, error) {
	m.logger.Debug("getting service status", zap.String("service", ref.String()))
	return m.status(ctx, ref)
}

// IsRunning reports whether the service is Running.
func (m *Manager) IsRunning(ctx context.Context, ref domain.ServiceReference) (bool, error) {
	status, err := m.GetStatus(ctx, ref)
	if err != nil {
		return false, err
	}
	return status.State == domain.ServiceStateRunning, nil
}

// IsStopped reports whether the service is Stopped.
func (m *Manager) IsStopped(ctx context.Context, ref domain.ServiceReference) (bool, error) {
	status, err := m.GetStatus(ctx, ref)
	if err != nil {
		return false, err
	}
	return status.State == domain.ServiceStateStopped, nil
}

// CanPauseAndContinue reports whether the service accepts pause and continue.
func (m *Manager) CanPauseAndContinue(ctx context.Context, ref domain.ServiceReference) (bool, error) {
	status, err := m.GetStatus(ctx, ref)
	if err != nil {
		return false, err
	}
	return status.CanPauseAndContinue, nil
}

// CanStop reports whether the service accepts the stop control.
func (m *Manager) CanStop(ctx context.Context, ref domain.ServiceReference) (bool, error) {
	status, err := m.GetStatus(ctx, ref)
	if err != nil {
		return false, err
	}
	return status.CanStop, nil
}

// CanShutdown reports whether the service is notified at system shutdown.
func (m *Manager) CanShutdown(ctx context.Context, ref domain.ServiceReference) (bool, error) {
	status, err := m.GetStatus(ctx, ref)
	if err != nil {
		return false, err
	}
	return status.CanShutdown, nil
}

// status reads live status, turning the lookup outcome into an error.
func (m *Manager) status(ctx context.Context, ref domain.ServiceReference) (domain.ServiceStatus, error) {
	if err := checkRef(ref); err != nil {
		return domain.ServiceStatus{}, err
	}

	result, err := m.registry.Query(ctx, ref)
	if err != nil {
		return domain.ServiceStatus{}, fmt.Errorf("failed to query service %s: %w", ref, err)
	}

	switch result.Outcome {
	case domain.LookupFound:
		return result.Status, nil
	case domain.LookupNotFound:
		return domain.ServiceStatus{}, fmt.Errorf("%w: %s", domain.ErrServiceNotFound, ref)
	default:
		return domain.ServiceStatus{}, fmt.Errorf("%w: %s", domain.ErrAccessDenied, ref)
	}
}

// checkRef rejects zero-value references that bypassed Resolve.
func checkRef(ref domain.ServiceReference) error {
	if ref.Name() == "" {
		return fmt.Errorf("%w: service name is required", domain.ErrInvalidArgument)
	}
	return nil
}
