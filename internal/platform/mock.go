package platform

import (
	"context"
	"fmt"
	"sync"

	"github.com/sharkusmanch/svcctl/internal/domain"
)

// MockService is the state of one service held by a MockRegistry.
type MockService struct {
	Status domain.ServiceStatus

	// AccessDenied makes Query report the service as unreadable.
	AccessDenied bool

	// Stuck keeps pending states from ever settling.
	Stuck bool

	remaining int
}

// MockCall records one Start or Control call.
type MockCall struct {
	Ref     domain.ServiceReference
	Control domain.ServiceControl
	Args    []string
}

type mockKey struct {
	computer string
	name     string
}

// MockRegistry is an in-memory domain.Registry for testing. Start and
// Control move a service into the matching pending state, and the pending
// state settles after Transitions further Query calls.
type MockRegistry struct {
	mu       sync.Mutex
	services map[mockKey]*MockService

	// Transitions is how many Query calls a pending state lasts.
	Transitions int

	ListErr    error
	StartErr   error
	ControlErr error

	ListCalls    int
	QueryCalls   int
	StartCalls   []MockCall
	ControlCalls []MockCall
}

// NewMockRegistry returns an empty MockRegistry.
func NewMockRegistry() *MockRegistry {
	return &MockRegistry{services: make(map[mockKey]*MockService)}
}

// AddService registers a service on computer ("" is local).
func (m *MockRegistry) AddService(computer, name string, service MockService) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := service
	m.services[mockKey{computer, name}] = &s
}

// RemoveService unregisters a service.
func (m *MockRegistry) RemoveService(computer, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.services, mockKey{computer, name})
}

// State returns the current state of a service without advancing it.
func (m *MockRegistry) State(computer, name string) domain.ServiceState {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.services[mockKey{computer, name}]; ok {
		return s.Status.State
	}
	return domain.ServiceStateUnknown
}

// ControlCount returns how many times control was sent.
func (m *MockRegistry) ControlCount(control domain.ServiceControl) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.ControlCalls {
		if c.Control == control {
			n++
		}
	}
	return n
}

// StartCount returns how many times Start was called.
func (m *MockRegistry) StartCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.StartCalls)
}

// ListServices returns the service names registered for computer.
func (m *MockRegistry) ListServices(ctx context.Context, computer string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}

	var names []string
	for k := range m.services {
		if k.computer == computer {
			names = append(names, k.name)
		}
	}
	return names, nil
}

// Query returns the service status, settling pending states as configured.
func (m *MockRegistry) Query(ctx context.Context, ref domain.ServiceReference) (domain.QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueryCalls++

	s, ok := m.services[mockKey{ref.Computer(), ref.Name()}]
	if !ok {
		return domain.NotFound(), nil
	}
	if s.AccessDenied {
		return domain.AccessDenied(), nil
	}

	if s.Status.State.IsPending() && !s.Stuck {
		if s.remaining > 0 {
			s.remaining--
		} else {
			s.Status.State = settled(s.Status.State)
		}
	}

	return domain.Found(s.Status), nil
}

// Start records the call and moves the service to StartPending.
func (m *MockRegistry) Start(ctx context.Context, ref domain.ServiceReference, args ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartCalls = append(m.StartCalls, MockCall{Ref: ref, Args: args})
	if m.StartErr != nil {
		return m.StartErr
	}

	s, ok := m.services[mockKey{ref.Computer(), ref.Name()}]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrServiceNotFound, ref)
	}
	s.Status.State = domain.ServiceStateStartPending
	s.remaining = m.Transitions
	return nil
}

// Control records the call and moves the service to the matching pending state.
func (m *MockRegistry) Control(ctx context.Context, ref domain.ServiceReference, control domain.ServiceControl) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ControlCalls = append(m.ControlCalls, MockCall{Ref: ref, Control: control})
	if m.ControlErr != nil {
		return m.ControlErr
	}

	s, ok := m.services[mockKey{ref.Computer(), ref.Name()}]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrServiceNotFound, ref)
	}

	switch control {
	case domain.ControlStop:
		s.Status.State = domain.ServiceStateStopPending
	case domain.ControlPause:
		s.Status.State = domain.ServiceStatePausePending
	case domain.ControlContinue:
		s.Status.State = domain.ServiceStateContinuePending
	default:
		return nil
	}
	s.remaining = m.Transitions
	return nil
}

func settled(state domain.ServiceState) domain.ServiceState {
	switch state {
	case domain.ServiceStateStartPending, domain.ServiceStateContinuePending:
		return domain.ServiceStateRunning
	case domain.ServiceStateStopPending:
		return domain.ServiceStateStopped
	case domain.ServiceStatePausePending:
		return domain.ServiceStatePaused
	default:
		return state
	}
}

// Ensure MockRegistry implements domain.Registry.
var _ domain.Registry = (*MockRegistry)(nil)
