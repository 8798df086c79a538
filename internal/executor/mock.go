package executor

import (
	"context"
	"sync"

	"github.com/sharkusmanch/svcctl/internal/domain"
)

// MockCall records one MockRunner.Run invocation.
type MockCall struct {
	Script    string
	Arguments string
	Options   domain.RunOptions
}

// MockRunner is a mock implementation of domain.Runner for testing.
type MockRunner struct {
	RunFunc func(ctx context.Context, script string, opts domain.RunOptions) (*domain.RunResult, error)

	mu    sync.Mutex
	Calls []MockCall
}

// Run records the call and delegates to RunFunc when set.
func (m *MockRunner) Run(ctx context.Context, script string, opts domain.RunOptions) (*domain.RunResult, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{
		Script:    script,
		Arguments: opts.Arguments.Render(),
		Options:   opts,
	})
	m.mu.Unlock()

	if m.RunFunc != nil {
		return m.RunFunc(ctx, script, opts)
	}
	return &domain.RunResult{}, nil
}

// Ensure MockRunner implements domain.Runner.
var _ domain.Runner = (*MockRunner)(nil)
