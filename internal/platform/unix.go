//go:build !windows

package platform

import (
	"context"

	"github.com/sharkusmanch/svcctl/internal/domain"
)

const supported = false

// UnsupportedRegistry is a stub registry for platforms without an SCM.
type UnsupportedRegistry struct{}

// NewRegistry creates a service registry for the current platform.
func NewRegistry() Registry {
	return &UnsupportedRegistry{}
}

// ListServices is not available on non-Windows platforms.
func (u *UnsupportedRegistry) ListServices(ctx context.Context, computer string) ([]string, error) {
	return nil, domain.ErrUnsupportedPlatform
}

// Query is not available on non-Windows platforms.
func (u *UnsupportedRegistry) Query(ctx context.Context, ref domain.ServiceReference) (domain.QueryResult, error) {
	return domain.QueryResult{}, domain.ErrUnsupportedPlatform
}

// Start is not available on non-Windows platforms.
func (u *UnsupportedRegistry) Start(ctx context.Context, ref domain.ServiceReference, args ...string) error {
	return domain.ErrUnsupportedPlatform
}

// Control is not available on non-Windows platforms.
func (u *UnsupportedRegistry) Control(ctx context.Context, ref domain.ServiceReference, control domain.ServiceControl) error {
	return domain.ErrUnsupportedPlatform
}
