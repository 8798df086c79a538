package cli

import (
	"errors"
	"fmt"

	"github.com/ryanuber/columnize"
	"github.com/sharkusmanch/svcctl/internal/domain"
	"github.com/spf13/cobra"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status NAME...",
		Short: "Show service status",
		Long: `Display the live state and accepted controls of one or more services.

Services that are not installed or cannot be read are listed as such and
make the command exit with status 1.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runStatus,
	}

	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	out := []string{"Name|Computer|State|Stop|Pause/Continue|Shutdown"}
	missing := 0

	for _, name := range args {
		ref, err := s.resolve(name)
		if err != nil {
			return err
		}

		host := ref.Computer()
		if ref.IsLocal() {
			host = "(local)"
		}

		status, err := s.manager.GetStatus(cmd.Context(), ref)
		switch {
		case errors.Is(err, domain.ErrServiceNotFound):
			out = append(out, fmt.Sprintf("%s|%s|not installed|-|-|-", ref.Name(), host))
			missing++
			continue
		case errors.Is(err, domain.ErrAccessDenied):
			out = append(out, fmt.Sprintf("%s|%s|access denied|-|-|-", ref.Name(), host))
			missing++
			continue
		case err != nil:
			return err
		}

		out = append(out, fmt.Sprintf("%s|%s|%s|%t|%t|%t",
			ref.Name(),
			host,
			status.State,
			status.CanStop,
			status.CanPauseAndContinue,
			status.CanShutdown))
	}

	fmt.Fprintln(cmd.OutOrStdout(), columnize.SimpleFormat(out))

	if missing > 0 {
		return fmt.Errorf("%d of %d services could not be read", missing, len(args))
	}
	return nil
}
