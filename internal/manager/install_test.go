package manager

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sharkusmanch/svcctl/internal/args"
	"github.com/sharkusmanch/svcctl/internal/config"
	"github.com/sharkusmanch/svcctl/internal/domain"
	"github.com/sharkusmanch/svcctl/internal/executor"
	"github.com/sharkusmanch/svcctl/internal/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func fullSettings() domain.InstallSettings {
	return domain.NewInstallSettings("TestService", `C:\my\path\to\bin.exe`).
		WithDisplayName("Test Service Display Name").
		WithDependencies("TestDependencies").
		WithStartMode("TestStartMode").
		WithCredentials("TestUsername", "TestPasswordPassword")
}

func TestCreateInstallArguments(t *testing.T) {
	m := newTestManager(platform.NewMockRegistry(), &executor.MockRunner{})

	tests := []struct {
		name     string
		settings domain.InstallSettings
		want     string
	}{
		{
			name:     "all settings",
			settings: fullSettings(),
			want: `"TestService" binPath= "C:/my/path/to/bin.exe" DisplayName= "Test Service Display Name" ` +
				`depend= "TestDependencies" start= "TestStartMode" obj= "TestUsername" password= "TestPasswordPassword"`,
		},
		{
			name: "embedded service arguments",
			settings: domain.NewInstallSettings("TestService", "C:/my/path/to/bin.exe").
				WithArguments(func(b *args.Builder) { b.AppendSwitch("CustomName", "Bob") }),
			want: `"TestService" binPath= '\"C:/my/path/to/bin.exe\" -CustomName \"Bob\"'`,
		},
		{
			name:     "only required fields",
			settings: domain.NewInstallSettings("TestService", "C:/bin.exe"),
			want:     `"TestService" binPath= "C:/bin.exe"`,
		},
		{
			name:     "relative path resolves against working directory",
			settings: domain.NewInstallSettings("TestService", `tools\bin.exe`),
			want:     `"TestService" binPath= "C:/work/tools/bin.exe"`,
		},
		{
			name:     "unc path is kept",
			settings: domain.NewInstallSettings("TestService", `\\share\tools\bin.exe`),
			want:     `"TestService" binPath= "//share/tools/bin.exe"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := m.CreateInstallArguments("", tt.settings)
			require.NoError(t, err)
			assert.Equal(t, tt.want, b.Render())
		})
	}
}

func TestCreateInstallArguments_RemoteRoot(t *testing.T) {
	m := newTestManager(platform.NewMockRegistry(), &executor.MockRunner{}, WithRemoteRoot("D:/services"))

	b, err := m.CreateInstallArguments("build-01", domain.NewInstallSettings("svc", "agent/agent.exe"))

	require.NoError(t, err)
	assert.Equal(t, `"svc" binPath= "D:/services/agent/agent.exe"`, b.Render())
}

func TestCreateInstallArguments_RedactsSecrets(t *testing.T) {
	m := newTestManager(platform.NewMockRegistry(), &executor.MockRunner{})
	settings := fullSettings().WithArguments(func(b *args.Builder) {
		b.AppendSwitchSecret("ApiKey", "hunter2")
	})

	b, err := m.CreateInstallArguments("", settings)
	require.NoError(t, err)

	safe := b.RenderSafe()
	assert.NotContains(t, safe, "TestPasswordPassword")
	assert.NotContains(t, safe, "hunter2")
	assert.Contains(t, safe, args.Redacted)
	assert.Contains(t, b.Render(), "hunter2")
}

func TestCreateInstallArguments_EscapesPowerShellExpansion(t *testing.T) {
	m := newTestManager(platform.NewMockRegistry(), &executor.MockRunner{})

	settings := domain.NewInstallSettings("TestService", "C:/bin.exe").
		WithDisplayName("Costs $5").
		WithCredentials("svc", "pa$word`x")

	b, err := m.CreateInstallArguments("", settings)
	require.NoError(t, err)
	assert.Equal(t,
		"\"TestService\" binPath= \"C:/bin.exe\" DisplayName= \"Costs `$5\" obj= \"svc\" password= \"pa`$word``x\"",
		b.Render())

	withArgs := settings.WithArguments(func(b *args.Builder) { b.AppendSwitch("Name", "$Bob") })
	b, err = m.CreateInstallArguments("", withArgs)
	require.NoError(t, err)
	assert.Contains(t, b.Render(), `binPath= '\"C:/bin.exe\" -Name \"$Bob\"'`)
}

func TestManager_Install_DefaultComputer(t *testing.T) {
	runner := &executor.MockRunner{}
	reg := platform.NewMockRegistry()
	m := newTestManager(reg, runner, WithDefaults(config.Defaults{Computer: "build-01"}))

	err := m.Install(context.Background(), "", domain.NewInstallSettings("svc", "bin.exe"))

	require.NoError(t, err)
	require.Len(t, runner.Calls, 1)
	assert.Equal(t, "build-01", runner.Calls[0].Options.ComputerName)
	assert.Equal(t, `"svc" binPath= "C:/bin.exe"`, runner.Calls[0].Arguments)
}

func TestCreateInstallArguments_Invalid(t *testing.T) {
	m := newTestManager(platform.NewMockRegistry(), &executor.MockRunner{})

	_, err := m.CreateInstallArguments("", domain.NewInstallSettings("", "C:/bin.exe"))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.ErrorContains(t, err, "service name")

	_, err = m.CreateInstallArguments("", domain.NewInstallSettings("svc", ""))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.ErrorContains(t, err, "executable path")
}

func TestManager_Install(t *testing.T) {
	t.Run("absent service is created", func(t *testing.T) {
		runner := &executor.MockRunner{}
		m := newTestManager(platform.NewMockRegistry(), runner)

		err := m.Install(context.Background(), "", fullSettings())

		require.NoError(t, err)
		require.Len(t, runner.Calls, 1)
		assert.Equal(t, scCreate, runner.Calls[0].Script)
		assert.Equal(t, "C:/work", runner.Calls[0].Options.WorkingDirectory)
		assert.Empty(t, runner.Calls[0].Options.ComputerName)
		assert.True(t, runner.Calls[0].Options.FormatOutput)
	})

	t.Run("existing service is reconfigured", func(t *testing.T) {
		reg := platform.NewMockRegistry()
		reg.AddService("", "TestService", stopped())
		runner := &executor.MockRunner{}
		m := newTestManager(reg, runner)

		err := m.Install(context.Background(), "", fullSettings())

		require.NoError(t, err)
		require.Len(t, runner.Calls, 1)
		assert.Equal(t, scConfig, runner.Calls[0].Script)
	})

	t.Run("description is a second call", func(t *testing.T) {
		runner := &executor.MockRunner{}
		m := newTestManager(platform.NewMockRegistry(), runner)

		err := m.Install(context.Background(), "", fullSettings().WithDescription("Runs the tests"))

		require.NoError(t, err)
		require.Len(t, runner.Calls, 2)
		assert.Equal(t, scDescription, runner.Calls[1].Script)
		assert.Equal(t, `"TestService" "Runs the tests"`, runner.Calls[1].Arguments)
	})

	t.Run("remote install uses remote root", func(t *testing.T) {
		runner := &executor.MockRunner{}
		m := newTestManager(platform.NewMockRegistry(), runner)

		err := m.Install(context.Background(), "build-01", domain.NewInstallSettings("svc", "bin.exe"))

		require.NoError(t, err)
		require.Len(t, runner.Calls, 1)
		assert.Equal(t, "build-01", runner.Calls[0].Options.ComputerName)
		assert.Equal(t, config.DefaultRemoteRoot, runner.Calls[0].Options.WorkingDirectory)
		assert.Equal(t, `"svc" binPath= "C:/bin.exe"`, runner.Calls[0].Arguments)
	})

	t.Run("runner failure", func(t *testing.T) {
		runner := &executor.MockRunner{
			RunFunc: func(ctx context.Context, script string, opts domain.RunOptions) (*domain.RunResult, error) {
				return &domain.RunResult{ExitCode: 1060}, fmt.Errorf("%w: exit code 1060", domain.ErrCommandFailed)
			},
		}
		m := newTestManager(platform.NewMockRegistry(), runner)

		err := m.Install(context.Background(), "", fullSettings().WithDescription("ignored"))

		assert.ErrorIs(t, err, domain.ErrCommandFailed)
		assert.ErrorContains(t, err, "failed to create service TestService")
		assert.Len(t, runner.Calls, 1)
	})

	t.Run("invalid settings run nothing", func(t *testing.T) {
		reg := platform.NewMockRegistry()
		runner := &executor.MockRunner{}
		m := newTestManager(reg, runner)

		err := m.Install(context.Background(), "", domain.InstallSettings{})

		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		assert.Empty(t, runner.Calls)
		assert.Zero(t, reg.ListCalls)
	})

	t.Run("list failure runs nothing", func(t *testing.T) {
		reg := platform.NewMockRegistry()
		reg.ListErr = errors.New("access is denied")
		runner := &executor.MockRunner{}
		m := newTestManager(reg, runner)

		err := m.Install(context.Background(), "", fullSettings())

		assert.Error(t, err)
		assert.Empty(t, runner.Calls)
	})
}

func TestManager_Install_NeverLogsPassword(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	runner := &executor.MockRunner{}
	m := newTestManager(platform.NewMockRegistry(), runner, WithLogger(zap.New(core)))

	err := m.Install(context.Background(), "", fullSettings())
	require.NoError(t, err)

	require.NotZero(t, logs.Len())
	for _, entry := range logs.All() {
		assert.NotContains(t, entry.Message, "TestPasswordPassword")
		assert.NotContains(t, fmt.Sprint(entry.ContextMap()), "TestPasswordPassword")
	}

	assert.Contains(t, runner.Calls[0].Arguments, `password= "TestPasswordPassword"`)
}

func TestManager_Uninstall(t *testing.T) {
	t.Run("absent service runs nothing", func(t *testing.T) {
		runner := &executor.MockRunner{}
		m := newTestManager(platform.NewMockRegistry(), runner)

		ok, err := m.Uninstall(context.Background(), mustResolve(t, m, "ghost", ""))

		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, runner.Calls)
	})

	t.Run("present service is deleted", func(t *testing.T) {
		reg := platform.NewMockRegistry()
		reg.AddService("build-01", "svc", stopped())
		runner := &executor.MockRunner{}
		m := newTestManager(reg, runner)

		ok, err := m.Uninstall(context.Background(), mustResolve(t, m, "svc", "build-01"))

		require.NoError(t, err)
		assert.True(t, ok)
		require.Len(t, runner.Calls, 1)
		assert.Equal(t, scDelete, runner.Calls[0].Script)
		assert.Equal(t, `"svc"`, runner.Calls[0].Arguments)
		assert.Equal(t, "build-01", runner.Calls[0].Options.ComputerName)
	})
}

func TestAbsolutePath(t *testing.T) {
	tests := []struct {
		path string
		root string
		want string
	}{
		{path: `C:\a\b.exe`, root: "D:/x", want: "C:/a/b.exe"},
		{path: "c:/a/../b.exe", root: "D:/x", want: "c:/b.exe"},
		{path: "b.exe", root: `D:\x`, want: "D:/x/b.exe"},
		{path: "/opt/b.exe", root: "D:/x", want: "/opt/b.exe"},
		{path: `\\host\share\b.exe`, root: "D:/x", want: "//host/share/b.exe"},
		{path: "b.exe", root: "C:/", want: "C:/b.exe"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, absolutePath(tt.path, tt.root))
		})
	}
}
