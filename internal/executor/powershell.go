// Package executor provides implementations of the Runner interface.
package executor

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sharkusmanch/svcctl/internal/domain"
	"go.uber.org/zap"
)

// PowerShellRunner implements Runner by running command lines through
// powershell.exe -Command. Remote targets go through Invoke-Command.
type PowerShellRunner struct {
	binaryPath string
	logger     *zap.Logger
}

// PowerShellOption configures a PowerShellRunner.
type PowerShellOption func(*PowerShellRunner)

// WithBinaryPath sets the path to the PowerShell binary.
func WithBinaryPath(path string) PowerShellOption {
	return func(r *PowerShellRunner) {
		r.binaryPath = path
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) PowerShellOption {
	return func(r *PowerShellRunner) {
		r.logger = logger
	}
}

// NewPowerShellRunner creates a new PowerShellRunner.
func NewPowerShellRunner(opts ...PowerShellOption) *PowerShellRunner {
	r := &PowerShellRunner{
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run executes script followed by opts.Arguments.
func (r *PowerShellRunner) Run(ctx context.Context, script string, opts domain.RunOptions) (*domain.RunResult, error) {
	path, err := r.getBinaryPath()
	if err != nil {
		return &domain.RunResult{ExitCode: -1}, err
	}

	command := buildCommand(script, opts, false)

	r.logger.Debug("executing powershell",
		zap.String("path", path),
		zap.String("command", buildCommand(script, opts, true)),
		zap.String("computer", opts.ComputerName),
		zap.String("working_directory", opts.WorkingDirectory))

	// #nosec G204 -- command is assembled from quoted tokens, not raw user input
	cmd := exec.CommandContext(ctx, path, commandArgs(command)...)
	if opts.ComputerName == "" && opts.WorkingDirectory != "" {
		cmd.Dir = opts.WorkingDirectory
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	output := stdout.String()
	if stderr.Len() > 0 {
		if output != "" {
			output += "\n"
		}
		output += "STDERR:\n" + stderr.String()
	}

	if opts.LogOutput {
		r.logOutput(output)
	}

	if runErr != nil {
		if ctx.Err() != nil {
			return &domain.RunResult{Output: output, ExitCode: -1}, ctx.Err()
		}

		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			r.logger.Error("powershell command failed",
				zap.Int("exit_code", exitErr.ExitCode()),
				zap.String("stderr", strings.TrimSpace(stderr.String())))
			return &domain.RunResult{Output: output, ExitCode: exitErr.ExitCode()},
				fmt.Errorf("%w: exit code %d", domain.ErrCommandFailed, exitErr.ExitCode())
		}

		return &domain.RunResult{Output: output, ExitCode: -1}, fmt.Errorf("failed to execute powershell: %w", runErr)
	}

	return &domain.RunResult{Output: output, ExitCode: 0}, nil
}

func (r *PowerShellRunner) logOutput(output string) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		r.logger.Info("powershell", zap.String("output", line))
	}
}

// commandArgs returns the powershell.exe arguments for command.
func commandArgs(command string) []string {
	return []string{"-NoLogo", "-NoProfile", "-NonInteractive", "-ExecutionPolicy", "Bypass", "-Command", command}
}

// buildCommand assembles the -Command text. With safe set, secret
// arguments are redacted so the result can be logged.
func buildCommand(script string, opts domain.RunOptions, safe bool) string {
	rendered := opts.Arguments.Render()
	if safe {
		rendered = opts.Arguments.RenderSafe()
	}

	line := script
	if rendered != "" {
		line += " " + rendered
	}
	if opts.FormatOutput {
		line += " | Out-String -Stream"
	}

	if opts.ComputerName == "" {
		return line + "; exit $LASTEXITCODE"
	}

	// The remote block writes its output to the host and returns only the
	// native exit code, which the local session then exits with.
	block := line + " | Out-Host; $LASTEXITCODE"
	if opts.WorkingDirectory != "" {
		block = "Set-Location -LiteralPath " + quoteLiteral(opts.WorkingDirectory) + "; " + block
	}
	return fmt.Sprintf("$code = Invoke-Command -ComputerName %s -ErrorAction Stop -ScriptBlock { %s }; exit $code",
		quoteLiteral(opts.ComputerName), block)
}

// quoteLiteral returns s as a single-quoted PowerShell literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Validate checks that a PowerShell binary can be found and returns its path.
func (r *PowerShellRunner) Validate() (string, error) {
	return r.getBinaryPath()
}

// getBinaryPath returns the path to the PowerShell binary.
func (r *PowerShellRunner) getBinaryPath() (string, error) {
	// Use configured path if set
	if r.binaryPath != "" {
		return r.binaryPath, nil
	}

	for _, name := range []string{"powershell.exe", "powershell", "pwsh"} {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}

	for _, candidate := range r.getCommonPaths() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("powershell not found in PATH or common locations")
}

// getCommonPaths returns common installation paths for PowerShell.
func (r *PowerShellRunner) getCommonPaths() []string {
	switch runtime.GOOS {
	case "windows":
		systemRoot := os.Getenv("SystemRoot")
		if systemRoot == "" {
			systemRoot = `C:\Windows`
		}
		return []string{
			filepath.Join(systemRoot, "System32", "WindowsPowerShell", "v1.0", "powershell.exe"),
			filepath.Join(os.Getenv("ProgramFiles"), "PowerShell", "7", "pwsh.exe"),
		}
	case "darwin":
		return []string{
			"/usr/local/bin/pwsh",
			"/opt/homebrew/bin/pwsh",
		}
	default:
		return []string{
			"/usr/bin/pwsh",
			"/opt/microsoft/powershell/7/pwsh",
		}
	}
}

// Ensure PowerShellRunner implements domain.Runner.
var _ domain.Runner = (*PowerShellRunner)(nil)
