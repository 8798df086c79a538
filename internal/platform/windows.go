//go:build windows

package platform

import (
	"context"
	"errors"
	"fmt"

	"github.com/sharkusmanch/svcctl/internal/domain"
	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/svc"
	"golang.org/x/sys/windows/svc/mgr"
)

const supported = true

// WindowsRegistry talks to the Service Control Manager of the local or a
// remote computer. Every call opens and closes its own handles.
type WindowsRegistry struct{}

// NewRegistry creates a service registry for the current platform.
func NewRegistry() Registry {
	return &WindowsRegistry{}
}

// connect opens the SCM on computer, or locally when computer is empty.
func connect(computer string) (*mgr.Mgr, error) {
	if computer == "" {
		m, err := mgr.Connect()
		if err != nil {
			return nil, fmt.Errorf("failed to connect to service manager: %w", err)
		}
		return m, nil
	}

	m, err := mgr.ConnectRemote(computer)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to service manager on %s: %w", computer, err)
	}
	return m, nil
}

// openService connects and opens ref. The returned func closes both handles.
func openService(ref domain.ServiceReference) (*mgr.Service, func(), error) {
	m, err := connect(ref.Computer())
	if err != nil {
		return nil, nil, err
	}

	s, err := m.OpenService(ref.Name())
	if err != nil {
		m.Disconnect()
		return nil, nil, mapOpenError(ref, err)
	}

	return s, func() {
		s.Close()
		m.Disconnect()
	}, nil
}

func mapOpenError(ref domain.ServiceReference, err error) error {
	switch {
	case errors.Is(err, windows.ERROR_SERVICE_DOES_NOT_EXIST):
		return fmt.Errorf("%w: %s", domain.ErrServiceNotFound, ref)
	case errors.Is(err, windows.ERROR_ACCESS_DENIED):
		return fmt.Errorf("%w: %s", domain.ErrAccessDenied, ref)
	default:
		return fmt.Errorf("failed to open service %s: %w", ref, err)
	}
}

// ListServices returns all service names registered on computer.
func (w *WindowsRegistry) ListServices(ctx context.Context, computer string) ([]string, error) {
	m, err := connect(computer)
	if err != nil {
		return nil, err
	}
	defer m.Disconnect()

	names, err := m.ListServices()
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return names, nil
}

// Query reads the live status of ref.
func (w *WindowsRegistry) Query(ctx context.Context, ref domain.ServiceReference) (domain.QueryResult, error) {
	s, closeFn, err := openService(ref)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrServiceNotFound):
			return domain.NotFound(), nil
		case errors.Is(err, domain.ErrAccessDenied):
			return domain.AccessDenied(), nil
		default:
			return domain.QueryResult{}, err
		}
	}
	defer closeFn()

	status, err := s.Query()
	if err != nil {
		if errors.Is(err, windows.ERROR_ACCESS_DENIED) {
			return domain.AccessDenied(), nil
		}
		return domain.QueryResult{}, fmt.Errorf("failed to query service %s: %w", ref, err)
	}

	return domain.Found(mapWindowsStatus(status)), nil
}

// Start asks the SCM to start ref.
func (w *WindowsRegistry) Start(ctx context.Context, ref domain.ServiceReference, args ...string) error {
	s, closeFn, err := openService(ref)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := s.Start(args...); err != nil {
		return fmt.Errorf("failed to start service %s: %w", ref, err)
	}
	return nil
}

// Control sends control to ref.
func (w *WindowsRegistry) Control(ctx context.Context, ref domain.ServiceReference, control domain.ServiceControl) error {
	s, closeFn, err := openService(ref)
	if err != nil {
		return err
	}
	defer closeFn()

	if _, err := s.Control(svc.Cmd(control)); err != nil {
		return fmt.Errorf("failed to send control %d to service %s: %w", control, ref, err)
	}
	return nil
}

// mapWindowsStatus converts an SCM status to a domain status.
func mapWindowsStatus(status svc.Status) domain.ServiceStatus {
	return domain.ServiceStatus{
		State:               mapWindowsState(status.State),
		CanPauseAndContinue: status.Accepts&svc.AcceptPauseAndContinue != 0,
		CanStop:             status.Accepts&svc.AcceptStop != 0,
		CanShutdown:         status.Accepts&svc.AcceptShutdown != 0,
	}
}

func mapWindowsState(state svc.State) domain.ServiceState {
	switch state {
	case svc.Stopped:
		return domain.ServiceStateStopped
	case svc.StartPending:
		return domain.ServiceStateStartPending
	case svc.StopPending:
		return domain.ServiceStateStopPending
	case svc.Running:
		return domain.ServiceStateRunning
	case svc.ContinuePending:
		return domain.ServiceStateContinuePending
	case svc.PausePending:
		return domain.ServiceStatePausePending
	case svc.Paused:
		return domain.ServiceStatePaused
	default:
		return domain.ServiceStateUnknown
	}
}
