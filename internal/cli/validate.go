package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/sharkusmanch/svcctl/internal/config"
	"github.com/sharkusmanch/svcctl/internal/executor"
	"github.com/sharkusmanch/svcctl/internal/platform"
	"github.com/spf13/cobra"
)

var validateInit bool

// NewValidateCmd creates the validate command.
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and test connectivity",
		Long: `Validate the configuration file and test the pieces svcctl depends on.

This checks:
- Config file syntax
- Platform support for the service control manager
- PowerShell binary availability (used for install and uninstall)
- Service control manager connectivity on the configured computer`,
		RunE: runValidate,
	}

	cmd.Flags().BoolVar(&validateInit, "init", false, "write an example config file to the default location first")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if validateInit {
		if err := initConfigFile(cmd); err != nil {
			return err
		}
	}

	fmt.Fprintln(out, "Configuration:")
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(out, "  ✗ Config file: %v\n", err)
		return err
	}
	fmt.Fprintf(out, "  ✓ Config file syntax valid\n")

	configPath, _ := config.DefaultConfigPath()
	if cfgFile != "" {
		configPath = cfgFile
	}
	target := cfg.Computer
	if target == "" {
		target = "(local)"
	}
	fmt.Fprintf(out, "  Config file: %s\n", configPath)
	fmt.Fprintf(out, "  Computer: %s\n", target)
	fmt.Fprintf(out, "  Timeout: %s\n", cfg.Timeout)
	fmt.Fprintf(out, "  Poll interval: %s\n", cfg.PollInterval)
	fmt.Fprintf(out, "  Remote root: %s\n", cfg.RemoteRoot)
	fmt.Fprintf(out, "  Log file: %s\n", cfg.Log.Output)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Checks:")
	failed := false

	if platform.Supported() {
		fmt.Fprintf(out, "  ✓ Service control manager supported\n")
	} else {
		fmt.Fprintf(out, "  ✗ Service control manager not supported on this platform\n")
		failed = true
	}

	execOpts := []executor.PowerShellOption{}
	if cfg.PowerShellPath != "" {
		execOpts = append(execOpts, executor.WithBinaryPath(cfg.PowerShellPath))
	}
	if path, err := executor.NewPowerShellRunner(execOpts...).Validate(); err != nil {
		fmt.Fprintf(out, "  ✗ PowerShell: %v\n", err)
		failed = true
	} else {
		fmt.Fprintf(out, "  ✓ PowerShell found: %s\n", path)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	if names, err := newRegistry().ListServices(ctx, cfg.Computer); err != nil {
		fmt.Fprintf(out, "  ✗ Service control manager on %s: %v\n", target, err)
		failed = true
	} else {
		fmt.Fprintf(out, "  ✓ Service control manager on %s reachable (%d services)\n", target, len(names))
	}

	fmt.Fprintln(out)
	if failed {
		return fmt.Errorf("validation failed")
	}
	fmt.Fprintln(out, "Validation complete.")
	return nil
}

func initConfigFile(cmd *cobra.Command) error {
	path := cfgFile
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	if err := config.WriteExampleConfig(path); err != nil {
		return fmt.Errorf("failed to write example config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote example config to %s\n\n", path)
	cfgFile = path
	return nil
}
