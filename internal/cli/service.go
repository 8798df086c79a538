package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sharkusmanch/svcctl/internal/domain"
	"github.com/spf13/cobra"
)

var startArgs []string

// NewExistsCmd creates the exists command.
func NewExistsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exists NAME",
		Short: "Check whether a service is listed by the service control manager",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, args[0], func(ctx context.Context, s *session, ref domain.ServiceReference) error {
				ok, err := s.manager.Exists(ctx, ref)
				if err != nil {
					return err
				}
				return report(cmd, ok, "true", fmt.Sprintf("service %s does not exist", ref))
			})
		},
	}
}

// NewInstalledCmd creates the installed command.
func NewInstalledCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "installed NAME",
		Short: "Check whether a service is installed",
		Long: `Check whether a service is installed by opening it directly.

A service that exists but cannot be read because access is denied counts
as installed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, args[0], func(ctx context.Context, s *session, ref domain.ServiceReference) error {
				ok, err := s.manager.IsInstalled(ctx, ref)
				if err != nil {
					return err
				}
				return report(cmd, ok, "true", fmt.Sprintf("service %s is not installed", ref))
			})
		},
	}
}

// NewStartCmd creates the start command.
func NewStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start NAME",
		Short: "Start a service and wait until it is running",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, args[0], func(ctx context.Context, s *session, ref domain.ServiceReference) error {
				ok, err := s.manager.Start(ctx, ref, 0, startArgs...)
				if err != nil {
					return err
				}
				return report(cmd, ok,
					fmt.Sprintf("Service %s is running.", ref),
					fmt.Sprintf("service %s did not reach Running within %s", ref, s.manager.Defaults().Timeout))
			})
		},
	}

	cmd.Flags().StringArrayVar(&startArgs, "arg", nil, "argument passed to the service (repeatable)")

	return cmd
}

// NewStopCmd creates the stop command.
func NewStopCmd() *cobra.Command {
	return transitionCmd("stop", "Stop a service and wait until it is stopped", "stopped",
		func(ctx context.Context, s *session, ref domain.ServiceReference) (bool, error) {
			return s.manager.Stop(ctx, ref, 0)
		})
}

// NewRestartCmd creates the restart command.
func NewRestartCmd() *cobra.Command {
	return transitionCmd("restart", "Stop then start a service", "restarted",
		func(ctx context.Context, s *session, ref domain.ServiceReference) (bool, error) {
			return s.manager.Restart(ctx, ref, 0)
		})
}

// NewPauseCmd creates the pause command.
func NewPauseCmd() *cobra.Command {
	return transitionCmd("pause", "Pause a service and wait until it is paused", "paused",
		func(ctx context.Context, s *session, ref domain.ServiceReference) (bool, error) {
			return s.manager.Pause(ctx, ref, 0)
		})
}

// NewContinueCmd creates the continue command.
func NewContinueCmd() *cobra.Command {
	return transitionCmd("continue", "Resume a paused service and wait until it is running", "continued",
		func(ctx context.Context, s *session, ref domain.ServiceReference) (bool, error) {
			return s.manager.Continue(ctx, ref, 0)
		})
}

// NewCommandCmd creates the command command.
func NewCommandCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "command NAME CODE",
		Short: "Send a custom control code (128-255) to a running service",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := parseControlCode(args[1])
			if err != nil {
				return err
			}

			return withService(cmd, args[0], func(ctx context.Context, s *session, ref domain.ServiceReference) error {
				ok, err := s.manager.ExecuteCommand(ctx, ref, code)
				if err != nil {
					return err
				}
				return report(cmd, ok,
					fmt.Sprintf("Command %d sent to service %s.", code, ref),
					fmt.Sprintf("service %s is not running", ref))
			})
		},
	}
}

func transitionCmd(use, short, done string, op func(context.Context, *session, domain.ServiceReference) (bool, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " NAME",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, args[0], func(ctx context.Context, s *session, ref domain.ServiceReference) error {
				ok, err := op(ctx, s, ref)
				if err != nil {
					return err
				}
				return report(cmd, ok,
					fmt.Sprintf("Service %s %s.", ref, done),
					fmt.Sprintf("service %s could not be %s", ref, done))
			})
		},
	}
}

// withService opens a session, resolves name against the configured
// computer and runs fn.
func withService(cmd *cobra.Command, name string, fn func(context.Context, *session, domain.ServiceReference) error) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ref, err := s.resolve(name)
	if err != nil {
		return err
	}

	return fn(cmd.Context(), s, ref)
}

// parseControlCode parses a user-defined service control code. Windows
// reserves codes below 128.
func parseControlCode(s string) (domain.ServiceControl, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil || n < 128 || n > 255 {
		return 0, fmt.Errorf("%w: control code must be between 128 and 255, got %q", domain.ErrInvalidArgument, s)
	}
	return domain.ServiceControl(n), nil
}

