package domain

import (
	"fmt"

	"github.com/sharkusmanch/svcctl/internal/args"
)

// InstallSettings describes a service to create or reconfigure with sc.exe.
//
// The With* methods return a modified copy and never touch the receiver,
// so one base value can be reused across several installs.
type InstallSettings struct {
	// ServiceName is the key name of the service. Required.
	ServiceName string `json:"service_name"`

	// ExecutablePath is the service binary. Relative paths are resolved
	// against the working directory (local) or the remote root. Required.
	ExecutablePath string `json:"executable_path"`

	// DisplayName is the friendly name shown in the services console.
	DisplayName string `json:"display_name,omitempty"`

	// StartMode is the sc.exe start= value (boot, system, auto, demand, disabled, delayed-auto).
	StartMode string `json:"start_mode,omitempty"`

	// Dependencies lists services this one depends on, separated by forward slashes.
	Dependencies string `json:"dependencies,omitempty"`

	// Description is set with a separate sc.exe description call.
	Description string `json:"description,omitempty"`

	// Username is the account the service runs as.
	Username string `json:"username,omitempty"`

	// Password is the account password. Never logged.
	Password string `json:"-"`

	// Arguments are passed to the executable when the service starts.
	Arguments *args.Builder `json:"-"`
}

// NewInstallSettings returns settings with the two required fields set.
func NewInstallSettings(serviceName, executablePath string) InstallSettings {
	return InstallSettings{
		ServiceName:    serviceName,
		ExecutablePath: executablePath,
	}
}

// Validate checks the required fields.
func (s InstallSettings) Validate() error {
	if s.ServiceName == "" {
		return fmt.Errorf("%w: install settings require a service name", ErrInvalidArgument)
	}
	if s.ExecutablePath == "" {
		return fmt.Errorf("%w: install settings require an executable path", ErrInvalidArgument)
	}
	return nil
}

// clone copies s including its argument builder.
func (s InstallSettings) clone() InstallSettings {
	s.Arguments = s.Arguments.Clone()
	return s
}

// WithArguments returns a copy whose Arguments have been extended by fn.
func (s InstallSettings) WithArguments(fn func(b *args.Builder)) InstallSettings {
	c := s.clone()
	if c.Arguments == nil {
		c.Arguments = args.New()
	}
	fn(c.Arguments)
	return c
}

// WithServiceName returns a copy with ServiceName set.
func (s InstallSettings) WithServiceName(name string) InstallSettings {
	c := s.clone()
	c.ServiceName = name
	return c
}

// WithDisplayName returns a copy with DisplayName set.
func (s InstallSettings) WithDisplayName(name string) InstallSettings {
	c := s.clone()
	c.DisplayName = name
	return c
}

// WithExecutablePath returns a copy with ExecutablePath set.
func (s InstallSettings) WithExecutablePath(path string) InstallSettings {
	c := s.clone()
	c.ExecutablePath = path
	return c
}

// WithStartMode returns a copy with StartMode set.
func (s InstallSettings) WithStartMode(mode string) InstallSettings {
	c := s.clone()
	c.StartMode = mode
	return c
}

// WithDependencies returns a copy with Dependencies set.
func (s InstallSettings) WithDependencies(deps string) InstallSettings {
	c := s.clone()
	c.Dependencies = deps
	return c
}

// WithDescription returns a copy with Description set.
func (s InstallSettings) WithDescription(desc string) InstallSettings {
	c := s.clone()
	c.Description = desc
	return c
}

// WithCredentials returns a copy with Username and Password set.
func (s InstallSettings) WithCredentials(username, password string) InstallSettings {
	c := s.clone()
	c.Username = username
	c.Password = password
	return c
}
