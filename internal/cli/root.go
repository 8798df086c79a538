// Package cli provides the command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sharkusmanch/svcctl/internal/config"
	"github.com/sharkusmanch/svcctl/internal/domain"
	"github.com/sharkusmanch/svcctl/internal/executor"
	"github.com/sharkusmanch/svcctl/internal/logging"
	"github.com/sharkusmanch/svcctl/internal/manager"
	"github.com/sharkusmanch/svcctl/internal/platform"
	"github.com/sharkusmanch/svcctl/pkg/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile  string
	computer string
	timeout  time.Duration
	logLevel string
)

// Replaced in tests.
var (
	newRegistry = platform.NewRegistry
	newRunner   = func(cfg *config.Config, logger *zap.Logger) domain.Runner {
		opts := []executor.PowerShellOption{executor.WithLogger(logger)}
		if cfg.PowerShellPath != "" {
			opts = append(opts, executor.WithBinaryPath(cfg.PowerShellPath))
		}
		return executor.NewPowerShellRunner(opts...)
	}
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "svcctl",
		Short: "Query, control and install Windows services",
		Long: `svcctl queries and controls Windows services on the local machine or a
remote computer through the Service Control Manager, and installs or
removes them with sc.exe.

Every command exits with status 1 when the operation fails or returns false.`,
		Version:      version.Get().String(),
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&computer, "computer", "", "remote computer name (default: local machine)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "how long to wait for a state change (default from config, 60s)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(NewExistsCmd())
	rootCmd.AddCommand(NewInstalledCmd())
	rootCmd.AddCommand(NewStatusCmd())
	rootCmd.AddCommand(NewStartCmd())
	rootCmd.AddCommand(NewStopCmd())
	rootCmd.AddCommand(NewRestartCmd())
	rootCmd.AddCommand(NewPauseCmd())
	rootCmd.AddCommand(NewContinueCmd())
	rootCmd.AddCommand(NewCommandCmd())
	rootCmd.AddCommand(NewInstallCmd())
	rootCmd.AddCommand(NewUninstallCmd())
	rootCmd.AddCommand(NewValidateCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads the application configuration.
func loadConfig() (*config.Config, error) {
	loader := config.NewLoader()

	if cfgFile != "" {
		loader = loader.WithConfigPath(cfgFile)
	}

	// Apply CLI flag overrides
	if computer != "" {
		loader.Set("computer", computer)
	}
	if timeout > 0 {
		loader.Set("timeout", timeout)
	}
	if logLevel != "" {
		loader.Set("log.level", logLevel)
	}

	return loader.Load()
}

// session is what every service command needs: config, logger and a
// manager wired to the platform registry and PowerShell runner.
type session struct {
	cfg      *config.Config
	logger   *zap.Logger
	manager  *manager.Manager
	closeLog func() error
}

func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, closeLog, err := logging.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	mgr := manager.New(newRegistry(), newRunner(cfg, logger),
		manager.WithLogger(logger),
		manager.WithDefaults(cfg.Defaults()),
		manager.WithPollInterval(cfg.PollInterval),
		manager.WithRemoteRoot(cfg.RemoteRoot),
	)

	return &session{cfg: cfg, logger: logger, manager: mgr, closeLog: closeLog}, nil
}

func (s *session) Close() {
	_ = s.closeLog()
}

// resolve binds name to the configured default computer.
func (s *session) resolve(name string) (domain.ServiceReference, error) {
	return s.manager.Resolve(name, "")
}

// report prints success when ok and otherwise returns failure as an error,
// which makes the process exit with status 1.
func report(cmd *cobra.Command, ok bool, success, failure string) error {
	if !ok {
		return errors.New(failure)
	}
	fmt.Fprintln(cmd.OutOrStdout(), success)
	return nil
}
