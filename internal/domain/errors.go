package domain

import "errors"

var (
	// ErrInvalidArgument is returned for a missing service name or install setting.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrServiceNotFound is returned when the named service is not registered.
	ErrServiceNotFound = errors.New("service not found")

	// ErrAccessDenied is returned when the service exists but cannot be opened.
	ErrAccessDenied = errors.New("access denied")

	// ErrUnsupportedPlatform is returned by registries on platforms without an SCM.
	ErrUnsupportedPlatform = errors.New("service control is not supported on this platform")

	// ErrCommandFailed is returned when an external command exits non-zero.
	ErrCommandFailed = errors.New("external command failed")
)
