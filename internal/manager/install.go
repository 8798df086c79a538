package manager

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/sharkusmanch/svcctl/internal/args"
	"github.com/sharkusmanch/svcctl/internal/domain"
	"go.uber.org/zap"
)

const (
	scCreate      = `& "sc.exe" create`
	scConfig      = `& "sc.exe" config`
	scDescription = `& "sc.exe" description`
	scDelete      = `& "sc.exe" delete`
)

// CreateInstallArguments renders settings as sc.exe create/config arguments:
//
//	"<name>" binPath= "<exe>" DisplayName= "..." depend= "..." start= "..." obj= "..." password= "..."
//
// Empty optional fields are omitted. When settings carry service
// arguments, binPath becomes '\"<exe>\" <args>' with inner quotes escaped.
func (m *Manager) CreateInstallArguments(computer string, settings domain.InstallSettings) (*args.Builder, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	exe := absolutePath(settings.ExecutablePath, m.rootFor(m.computerOrDefault(computer)))

	b := args.New().AppendQuoted(settings.ServiceName)

	if settings.Arguments.IsEmpty() {
		b.AppendNamed("binPath", exe)
	} else {
		b.AppendNamedMasked("binPath",
			embedArguments(exe, settings.Arguments.RenderEmbedded()),
			embedArguments(exe, settings.Arguments.RenderEmbeddedSafe()))
	}

	if settings.DisplayName != "" {
		b.AppendNamed("DisplayName", settings.DisplayName)
	}
	if settings.Dependencies != "" {
		b.AppendNamed("depend", settings.Dependencies)
	}
	if settings.StartMode != "" {
		b.AppendNamed("start", settings.StartMode)
	}
	if settings.Username != "" {
		b.AppendNamed("obj", settings.Username)
	}
	if settings.Password != "" {
		b.AppendNamedSecret("password", settings.Password)
	}

	return b, nil
}

// Install creates the service with sc.exe, or reconfigures it when it
// already exists, then sets its description in a second call. It reports
// that the commands were issued; callers confirm by querying afterwards.
func (m *Manager) Install(ctx context.Context, computer string, settings domain.InstallSettings) error {
	computer = m.computerOrDefault(computer)

	b, err := m.CreateInstallArguments(computer, settings)
	if err != nil {
		return err
	}

	ref, err := domain.NewServiceReference(settings.ServiceName, computer)
	if err != nil {
		return err
	}

	exists, err := m.Exists(ctx, ref)
	if err != nil {
		return err
	}

	script, verb := scCreate, "create"
	if exists {
		script, verb = scConfig, "config"
	}

	m.logger.Info("installing service",
		zap.String("service", ref.String()),
		zap.String("verb", verb),
		zap.String("arguments", b.RenderSafe()))

	if _, err := m.runner.Run(ctx, script, m.runOptions(computer, b)); err != nil {
		return fmt.Errorf("failed to %s service %s: %w", verb, ref, err)
	}

	if settings.Description != "" {
		desc := args.New().
			AppendQuoted(settings.ServiceName).
			AppendQuoted(settings.Description)

		if _, err := m.runner.Run(ctx, scDescription, m.runOptions(computer, desc)); err != nil {
			return fmt.Errorf("failed to set description of service %s: %w", ref, err)
		}
	}

	return nil
}

// Uninstall deletes the service with sc.exe. It returns false without
// running anything when the service does not exist.
func (m *Manager) Uninstall(ctx context.Context, ref domain.ServiceReference) (bool, error) {
	exists, err := m.Exists(ctx, ref)
	if err != nil || !exists {
		return false, err
	}

	m.logger.Info("uninstalling service", zap.String("service", ref.String()))

	b := args.New().AppendQuoted(ref.Name())
	if _, err := m.runner.Run(ctx, scDelete, m.runOptions(ref.Computer(), b)); err != nil {
		return false, fmt.Errorf("failed to delete service %s: %w", ref, err)
	}
	return true, nil
}

func (m *Manager) runOptions(computer string, b *args.Builder) domain.RunOptions {
	return domain.RunOptions{
		Arguments:        b,
		WorkingDirectory: m.rootFor(computer),
		ComputerName:     computer,
		FormatOutput:     true,
		LogOutput:        true,
	}
}

// rootFor returns the directory relative paths resolve against: the
// working directory locally, the remote root otherwise.
func (m *Manager) rootFor(computer string) string {
	if computer == "" {
		return m.workingDirectory
	}
	return m.remoteRoot
}

func embedArguments(exe, rendered string) string {
	return `\"` + exe + `\" ` + args.EscapeQuotes(rendered)
}

// absolutePath converts p to forward slashes and joins it onto root
// unless it already has a drive letter, a leading slash, or a UNC prefix.
func absolutePath(p, root string) string {
	p = strings.ReplaceAll(p, `\`, "/")

	switch {
	case strings.HasPrefix(p, "//"):
		return p
	case hasDriveLetter(p), strings.HasPrefix(p, "/"):
		return path.Clean(p)
	default:
		return path.Join(strings.ReplaceAll(root, `\`, "/"), p)
	}
}

func hasDriveLetter(p string) bool {
	if len(p) < 2 || p[1] != ':' {
		return false
	}
	c := p[0]
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
