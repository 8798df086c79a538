// Package domain defines core service-control types and interfaces.
package domain

import (
	"context"
	"fmt"
	"strings"
)

// ServiceState represents the state of a Windows service.
// Values match the Win32 SERVICE_* state codes.
type ServiceState uint32

const (
	// ServiceStateUnknown indicates the state cannot be determined.
	ServiceStateUnknown ServiceState = 0
	// ServiceStateStopped indicates the service is stopped.
	ServiceStateStopped ServiceState = 1
	// ServiceStateStartPending indicates the service is starting.
	ServiceStateStartPending ServiceState = 2
	// ServiceStateStopPending indicates the service is stopping.
	ServiceStateStopPending ServiceState = 3
	// ServiceStateRunning indicates the service is running.
	ServiceStateRunning ServiceState = 4
	// ServiceStateContinuePending indicates the service is resuming from pause.
	ServiceStateContinuePending ServiceState = 5
	// ServiceStatePausePending indicates the service is pausing.
	ServiceStatePausePending ServiceState = 6
	// ServiceStatePaused indicates the service is paused.
	ServiceStatePaused ServiceState = 7
)

var stateNames = map[ServiceState]string{
	ServiceStateUnknown:         "Unknown",
	ServiceStateStopped:         "Stopped",
	ServiceStateStartPending:    "StartPending",
	ServiceStateStopPending:     "StopPending",
	ServiceStateRunning:         "Running",
	ServiceStateContinuePending: "ContinuePending",
	ServiceStatePausePending:    "PausePending",
	ServiceStatePaused:          "Paused",
}

// String returns the string representation of the service state.
func (s ServiceState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("ServiceState(%d)", uint32(s))
}

// IsPending reports whether the state is a transitional one.
func (s ServiceState) IsPending() bool {
	switch s {
	case ServiceStateStartPending, ServiceStateStopPending,
		ServiceStateContinuePending, ServiceStatePausePending:
		return true
	default:
		return false
	}
}

// ServiceStatus is a live snapshot of a service's state and accepted controls.
type ServiceStatus struct {
	// State is the current service state.
	State ServiceState `json:"state"`

	// CanPauseAndContinue is true if the service accepts pause and continue.
	CanPauseAndContinue bool `json:"can_pause_and_continue"`

	// CanStop is true if the service accepts the stop control.
	CanStop bool `json:"can_stop"`

	// CanShutdown is true if the service is notified on system shutdown.
	CanShutdown bool `json:"can_shutdown"`
}

// ServiceReference identifies a service on a computer.
// An empty Computer means the local machine.
type ServiceReference struct {
	name     string
	computer string
}

// NewServiceReference validates name and returns a reference to it.
func NewServiceReference(name, computer string) (ServiceReference, error) {
	if strings.TrimSpace(name) == "" {
		return ServiceReference{}, fmt.Errorf("%w: service name is required", ErrInvalidArgument)
	}
	return ServiceReference{name: name, computer: computer}, nil
}

// Name returns the service name.
func (r ServiceReference) Name() string {
	return r.name
}

// Computer returns the target computer, or "" for the local machine.
func (r ServiceReference) Computer() string {
	return r.computer
}

// IsLocal reports whether the reference targets the local machine.
func (r ServiceReference) IsLocal() bool {
	return r.computer == ""
}

// String returns name or name@computer.
func (r ServiceReference) String() string {
	if r.IsLocal() {
		return r.name
	}
	return r.name + "@" + r.computer
}

// LookupOutcome tags the result of a direct service lookup.
type LookupOutcome int

const (
	// LookupFound means the service exists and its status was read.
	LookupFound LookupOutcome = iota
	// LookupNotFound means no service with that name is registered.
	LookupNotFound
	// LookupAccessDenied means the service exists but cannot be opened.
	LookupAccessDenied
)

// QueryResult is the outcome of Registry.Query.
// Status is only meaningful when Outcome is LookupFound.
type QueryResult struct {
	Outcome LookupOutcome
	Status  ServiceStatus
}

// Found returns a QueryResult carrying status.
func Found(status ServiceStatus) QueryResult {
	return QueryResult{Outcome: LookupFound, Status: status}
}

// NotFound returns a QueryResult for a missing service.
func NotFound() QueryResult {
	return QueryResult{Outcome: LookupNotFound}
}

// AccessDenied returns a QueryResult for a service that could not be opened.
func AccessDenied() QueryResult {
	return QueryResult{Outcome: LookupAccessDenied}
}

// ServiceControl is a control code sent to a running service.
// Values match the Win32 SERVICE_CONTROL_* codes; custom codes are 128-255.
type ServiceControl uint32

const (
	// ControlStop asks the service to stop.
	ControlStop ServiceControl = 1
	// ControlPause asks the service to pause.
	ControlPause ServiceControl = 2
	// ControlContinue asks a paused service to resume.
	ControlContinue ServiceControl = 3
)

// Registry is the platform service registry.
// Implementations are platform-specific (Windows SCM, stub, mock).
type Registry interface {
	// ListServices returns the names of all services on computer ("" is local).
	ListServices(ctx context.Context, computer string) ([]string, error)

	// Query reads the live status of the referenced service.
	Query(ctx context.Context, ref ServiceReference) (QueryResult, error)

	// Start asks the SCM to start the service with optional arguments.
	Start(ctx context.Context, ref ServiceReference, args ...string) error

	// Control sends a control code to the service.
	Control(ctx context.Context, ref ServiceReference, control ServiceControl) error
}
