package domain

import (
	"context"

	"github.com/sharkusmanch/svcctl/internal/args"
)

// RunOptions controls a single external command invocation.
type RunOptions struct {
	// Arguments are appended to the script.
	Arguments *args.Builder

	// WorkingDirectory is where the command runs.
	WorkingDirectory string

	// ComputerName runs the command remotely when set.
	ComputerName string

	// FormatOutput pipes the output through Out-String.
	FormatOutput bool

	// LogOutput logs each output line.
	LogOutput bool
}

// RunResult holds the outcome of an external command.
type RunResult struct {
	// Output is the combined command output.
	Output string `json:"output"`

	// ExitCode is the process exit code, or -1 if it never ran.
	ExitCode int `json:"exit_code"`
}

// Runner executes shell command lines.
// This abstraction allows for different implementations (PowerShell, mock, etc.).
type Runner interface {
	// Run executes script followed by opts.Arguments.
	Run(ctx context.Context, script string, opts RunOptions) (*RunResult, error)
}
