package cli

import (
	"fmt"
	"strings"

	"github.com/sharkusmanch/svcctl/internal/args"
	"github.com/sharkusmanch/svcctl/internal/domain"
	"github.com/spf13/cobra"
)

var (
	installPath         string
	installDisplayName  string
	installStartMode    string
	installDependencies string
	installDescription  string
	installUsername     string
	installPassword     string
	installArgs         []string
	installSecretArgs   []string
)

// NewInstallCmd creates the install command.
func NewInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install NAME",
		Short: "Create or reconfigure a service with sc.exe",
		Long: `Create a service with 'sc.exe create', or reconfigure it with
'sc.exe config' when it already exists. A description is applied with a
second 'sc.exe description' call.

Relative executable paths resolve against the current directory, or the
configured remote root when --computer is set. The command only reports
that sc.exe ran; use 'svcctl installed' to confirm.`,
		Example: `  svcctl install MyService --path C:\svc\bin.exe --start-mode auto \
    --arg CustomName=Bob --secret-arg ApiKey=s3cret`,
		Args: cobra.ExactArgs(1),
		RunE: runInstall,
	}

	cmd.Flags().StringVar(&installPath, "path", "", "service executable path (required)")
	cmd.Flags().StringVar(&installDisplayName, "display-name", "", "display name")
	cmd.Flags().StringVar(&installStartMode, "start-mode", "", "start mode (boot, system, auto, demand, disabled, delayed-auto)")
	cmd.Flags().StringVar(&installDependencies, "depend", "", "dependencies separated by '/'")
	cmd.Flags().StringVar(&installDescription, "description", "", "service description")
	cmd.Flags().StringVar(&installUsername, "username", "", "account the service runs as")
	cmd.Flags().StringVar(&installPassword, "password", "", "account password (never logged)")
	cmd.Flags().StringArrayVar(&installArgs, "arg", nil, "service argument as name=value, rendered -name \"value\" (repeatable)")
	cmd.Flags().StringArrayVar(&installSecretArgs, "secret-arg", nil, "like --arg but redacted in logs (repeatable)")
	_ = cmd.MarkFlagRequired("path")

	return cmd
}

func runInstall(cmd *cobra.Command, positional []string) error {
	settings, err := installSettings(positional[0])
	if err != nil {
		return err
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.manager.Install(cmd.Context(), "", settings); err != nil {
		return fmt.Errorf("failed to install service: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Install commands issued for service %s.\n", settings.ServiceName)
	return nil
}

func installSettings(name string) (domain.InstallSettings, error) {
	settings := domain.NewInstallSettings(name, installPath).
		WithDisplayName(installDisplayName).
		WithStartMode(installStartMode).
		WithDependencies(installDependencies).
		WithDescription(installDescription).
		WithCredentials(installUsername, installPassword)

	if len(installArgs) == 0 && len(installSecretArgs) == 0 {
		return settings, settings.Validate()
	}

	plain, err := parsePairs(installArgs)
	if err != nil {
		return settings, err
	}
	secret, err := parsePairs(installSecretArgs)
	if err != nil {
		return settings, err
	}

	settings = settings.WithArguments(func(b *args.Builder) {
		for _, p := range plain {
			b.AppendSwitch(p[0], p[1])
		}
		for _, p := range secret {
			b.AppendSwitchSecret(p[0], p[1])
		}
	})

	return settings, settings.Validate()
}

func parsePairs(raw []string) ([][2]string, error) {
	pairs := make([][2]string, 0, len(raw))
	for _, r := range raw {
		name, value, ok := strings.Cut(r, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: argument %q must be name=value", domain.ErrInvalidArgument, r)
		}
		pairs = append(pairs, [2]string{name, value})
	}
	return pairs, nil
}

// NewUninstallCmd creates the uninstall command.
func NewUninstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uninstall NAME",
		Short: "Delete a service with sc.exe",
		Long:  `Delete a service with 'sc.exe delete'. Exits with status 1 when the service does not exist.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runUninstall,
	}

	return cmd
}

func runUninstall(cmd *cobra.Command, positional []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ref, err := s.resolve(positional[0])
	if err != nil {
		return err
	}

	ok, err := s.manager.Uninstall(cmd.Context(), ref)
	if err != nil {
		return fmt.Errorf("failed to uninstall service: %w", err)
	}

	return report(cmd, ok,
		fmt.Sprintf("Delete command issued for service %s.", ref),
		fmt.Sprintf("service %s does not exist", ref))
}
