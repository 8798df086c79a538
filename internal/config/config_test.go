package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	validConfig := func() *Config {
		return &Config{
			Computer:     "",
			Timeout:      60 * time.Second,
			PollInterval: 250 * time.Millisecond,
			RemoteRoot:   "C:/",
			Log: LogConfig{
				Level:      "info",
				MaxSizeMB:  10,
				MaxBackups: 3,
			},
		}
	}

	t.Run("valid config", func(t *testing.T) {
		cfg := validConfig()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("zero timeout", func(t *testing.T) {
		cfg := validConfig()
		cfg.Timeout = 0
		assert.ErrorContains(t, cfg.Validate(), "timeout must be positive")
	})

	t.Run("zero poll interval", func(t *testing.T) {
		cfg := validConfig()
		cfg.PollInterval = 0
		assert.ErrorContains(t, cfg.Validate(), "poll_interval must be positive")
	})

	t.Run("poll interval longer than timeout", func(t *testing.T) {
		cfg := validConfig()
		cfg.Timeout = time.Second
		cfg.PollInterval = 2 * time.Second
		assert.ErrorContains(t, cfg.Validate(), "poll_interval must be <= timeout")
	})

	t.Run("computer with whitespace", func(t *testing.T) {
		cfg := validConfig()
		cfg.Computer = " build-01"
		assert.ErrorContains(t, cfg.Validate(), "surrounding whitespace")
	})

	t.Run("empty remote root", func(t *testing.T) {
		cfg := validConfig()
		cfg.RemoteRoot = ""
		assert.ErrorContains(t, cfg.Validate(), "remote_root is required")
	})

	t.Run("invalid log level", func(t *testing.T) {
		cfg := validConfig()
		cfg.Log.Level = "invalid"
		assert.ErrorContains(t, cfg.Validate(), "log.level must be one of")
	})

	t.Run("log level is case insensitive", func(t *testing.T) {
		cfg := validConfig()
		cfg.Log.Level = "DEBUG"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("log max_size_mb less than 1", func(t *testing.T) {
		cfg := validConfig()
		cfg.Log.MaxSizeMB = 0
		assert.ErrorContains(t, cfg.Validate(), "log.max_size_mb must be at least 1")
	})

	t.Run("negative log max_backups", func(t *testing.T) {
		cfg := validConfig()
		cfg.Log.MaxBackups = -1
		assert.ErrorContains(t, cfg.Validate(), "log.max_backups cannot be negative")
	})

	t.Run("non-existent powershell path", func(t *testing.T) {
		cfg := validConfig()
		cfg.PowerShellPath = "/non/existent/path"
		assert.ErrorContains(t, cfg.Validate(), "powershell_path does not exist")
	})
}

func TestConfig_Defaults(t *testing.T) {
	cfg := &Config{Computer: "build-01", Timeout: 5 * time.Second}
	assert.Equal(t, Defaults{Computer: "build-01", Timeout: 5 * time.Second}, cfg.Defaults())

	d := DefaultDefaults()
	assert.Empty(t, d.Computer)
	assert.Equal(t, 60000*time.Millisecond, d.Timeout)
}

func TestLoader_Load_Defaults(t *testing.T) {
	loader := NewLoader().WithConfigPath(writeConfig(t, ""))
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultComputer, cfg.Computer)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultPollInterval, cfg.PollInterval)
	assert.Equal(t, DefaultRemoteRoot, cfg.RemoteRoot)
	assert.Empty(t, cfg.PowerShellPath)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultLogMaxSizeMB, cfg.Log.MaxSizeMB)
	assert.Equal(t, DefaultLogMaxBackups, cfg.Log.MaxBackups)
	assert.NotEmpty(t, cfg.Log.Output)
}

func TestLoader_Load_FromFile(t *testing.T) {
	path := writeConfig(t, `
computer = "build-01"
timeout = "2m"
poll_interval = "1s"
remote_root = "D:/services"

[log]
level = "debug"
output = "/tmp/svcctl-test.log"
max_size_mb = 20
max_backups = 5
`)

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "build-01", cfg.Computer)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
	assert.Equal(t, time.Second, cfg.PollInterval)
	assert.Equal(t, "D:/services", cfg.RemoteRoot)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/svcctl-test.log", cfg.Log.Output)
	assert.Equal(t, 20, cfg.Log.MaxSizeMB)
	assert.Equal(t, 5, cfg.Log.MaxBackups)
}

func TestLoader_Load_InvalidFile(t *testing.T) {
	path := writeConfig(t, `timeout = "-5s"`)

	_, err := NewLoader().WithConfigPath(path).Load()
	assert.ErrorContains(t, err, "invalid config")
}

func TestLoader_Load_UnreadableFile(t *testing.T) {
	path := writeConfig(t, "this is = = not toml")

	_, err := NewLoader().WithConfigPath(path).Load()
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoader_Load_EnvOverrides(t *testing.T) {
	t.Setenv("SVCCTL_COMPUTER", "build-02")
	t.Setenv("SVCCTL_TIMEOUT", "90s")
	t.Setenv("SVCCTL_LOG_LEVEL", "debug")

	cfg, err := NewLoader().WithConfigPath(writeConfig(t, "")).Load()
	require.NoError(t, err)

	assert.Equal(t, "build-02", cfg.Computer)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoader_Set(t *testing.T) {
	loader := NewLoader().WithConfigPath(writeConfig(t, `computer = "from-file"`))
	loader.Set("computer", "from-flag")
	loader.Set("log.level", "error")

	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "from-flag", cfg.Computer)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestWriteExampleConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "config.toml")

	err := WriteExampleConfig(configPath)
	require.NoError(t, err)

	_, err = os.Stat(configPath)
	require.NoError(t, err)

	loader := NewLoader().WithConfigPath(configPath)
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultPollInterval, cfg.PollInterval)
	assert.Equal(t, configPath, loader.ConfigFileUsed())
}

func TestDefaultConfigDir(t *testing.T) {
	dir, err := DefaultConfigDir()
	require.NoError(t, err)
	assert.NotEmpty(t, dir)
	assert.Contains(t, dir, AppName)
}

func TestDefaultConfigPath(t *testing.T) {
	path, err := DefaultConfigPath()
	require.NoError(t, err)
	assert.NotEmpty(t, path)
	assert.Contains(t, path, ConfigFileName)
}

func TestDefaultLogPath(t *testing.T) {
	path, err := DefaultLogPath()
	require.NoError(t, err)
	assert.Equal(t, AppName+".log", filepath.Base(path))
}

func TestPathEnv_Resolve(t *testing.T) {
	home := filepath.Join("home", "ops")
	env := func(goos string, vars map[string]string) pathEnv {
		return pathEnv{
			goos:    goos,
			getenv:  func(k string) string { return vars[k] },
			homeDir: func() (string, error) { return home, nil },
		}
	}

	tests := []struct {
		name string
		env  pathEnv
		dirs map[string]userDir
		want string
	}{
		{
			name: "windows config from APPDATA",
			env:  env("windows", map[string]string{"APPDATA": filepath.Join("C:", "Roaming")}),
			dirs: configDirs,
			want: filepath.Join("C:", "Roaming", AppName),
		},
		{
			name: "windows config without APPDATA",
			env:  env("windows", nil),
			dirs: configDirs,
			want: filepath.Join(home, "AppData", "Roaming", AppName),
		},
		{
			name: "windows logs",
			env:  env("windows", map[string]string{"LOCALAPPDATA": "local"}),
			dirs: logDirs,
			want: filepath.Join("local", AppName, "logs"),
		},
		{
			name: "darwin ignores XDG",
			env:  env("darwin", map[string]string{"XDG_CONFIG_HOME": "xdg"}),
			dirs: configDirs,
			want: filepath.Join(home, "Library", "Application Support", AppName),
		},
		{
			name: "linux config from XDG",
			env:  env("linux", map[string]string{"XDG_CONFIG_HOME": "xdg"}),
			dirs: configDirs,
			want: filepath.Join("xdg", AppName),
		},
		{
			name: "unknown os uses home fallback",
			env:  env("plan9", nil),
			dirs: logDirs,
			want: filepath.Join(home, ".local", "state", AppName),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.env.resolve(tt.dirs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPathEnv_Resolve_HomeError(t *testing.T) {
	e := pathEnv{
		goos:    "linux",
		getenv:  func(string) string { return "" },
		homeDir: func() (string, error) { return "", os.ErrNotExist },
	}

	_, err := e.resolve(configDirs)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}
