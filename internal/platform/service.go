// Package platform provides platform-specific service registries.
package platform

import (
	"github.com/sharkusmanch/svcctl/internal/domain"
)

// Registry is the platform service registry.
type Registry = domain.Registry

// Supported reports whether NewRegistry returns a working registry on
// this platform.
func Supported() bool {
	return supported
}
