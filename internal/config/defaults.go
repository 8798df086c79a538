// Package config handles application configuration loading and validation.
package config

import "time"

// Default configuration values.
const (
	// DefaultComputer targets the local machine.
	DefaultComputer = ""

	DefaultTimeout      = 60 * time.Second
	DefaultPollInterval = 250 * time.Millisecond
	DefaultRemoteRoot   = "C:/"

	DefaultLogLevel      = "info"
	DefaultLogMaxSizeMB  = 10
	DefaultLogMaxBackups = 3
)

// Defaults are the values service operations fall back to when a caller
// passes none.
type Defaults struct {
	// Computer is the machine operations target. Empty means local.
	Computer string

	// Timeout bounds how long a transition waits for its target state.
	Timeout time.Duration
}

// DefaultDefaults returns the built-in operation defaults.
func DefaultDefaults() Defaults {
	return Defaults{
		Computer: DefaultComputer,
		Timeout:  DefaultTimeout,
	}
}
