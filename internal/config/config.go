package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Computer       string        `mapstructure:"computer"`
	Timeout        time.Duration `mapstructure:"timeout"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	RemoteRoot     string        `mapstructure:"remote_root"`
	PowerShellPath string        `mapstructure:"powershell_path"`
	Log            LogConfig     `mapstructure:"log"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Output     string `mapstructure:"output"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// Defaults returns the operation defaults carried by c.
func (c *Config) Defaults() Defaults {
	return Defaults{
		Computer: c.Computer,
		Timeout:  c.Timeout,
	}
}

// Loader handles configuration loading from multiple sources.
type Loader struct {
	v          *viper.Viper
	configPath string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		v: viper.New(),
	}
}

// WithConfigPath sets a specific config file path.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// Load reads configuration from all sources and returns the merged config.
// Precedence (highest to lowest): CLI flags > environment > config file > defaults.
func (l *Loader) Load() (*Config, error) {
	l.setDefaults()
	l.setupEnvBindings()

	if err := l.loadConfigFile(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// The default log path depends on the OS, so it is filled in after loading.
	if cfg.Log.Output == "" {
		if logPath, err := DefaultLogPath(); err == nil {
			cfg.Log.Output = logPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for all configuration options.
func (l *Loader) setDefaults() {
	l.v.SetDefault("computer", DefaultComputer)
	l.v.SetDefault("timeout", DefaultTimeout)
	l.v.SetDefault("poll_interval", DefaultPollInterval)
	l.v.SetDefault("remote_root", DefaultRemoteRoot)
	l.v.SetDefault("powershell_path", "")

	l.v.SetDefault("log.level", DefaultLogLevel)
	l.v.SetDefault("log.output", "")
	l.v.SetDefault("log.max_size_mb", DefaultLogMaxSizeMB)
	l.v.SetDefault("log.max_backups", DefaultLogMaxBackups)
}

// setupEnvBindings configures environment variable bindings.
func (l *Loader) setupEnvBindings() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()
}

// loadConfigFile loads configuration from a file.
func (l *Loader) loadConfigFile() error {
	if l.configPath != "" {
		l.v.SetConfigFile(l.configPath)
	} else {
		configDir, err := DefaultConfigDir()
		if err != nil {
			return nil
		}

		l.v.SetConfigName("config")
		l.v.SetConfigType("toml")
		l.v.AddConfigPath(configDir)
		l.v.AddConfigPath(".")
	}

	if err := l.v.ReadInConfig(); err != nil {
		// Config file not found is not an error - use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}

// Set sets a configuration value (for CLI flag overrides).
func (l *Loader) Set(key string, value interface{}) {
	l.v.Set(key, value)
}

// ConfigFileUsed returns the path of the config file used, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	}

	if c.PollInterval > c.Timeout {
		return fmt.Errorf("poll_interval must be <= timeout")
	}

	if strings.TrimSpace(c.Computer) != c.Computer {
		return fmt.Errorf("computer must not have surrounding whitespace")
	}

	if c.RemoteRoot == "" {
		return fmt.Errorf("remote_root is required")
	}

	if c.PowerShellPath != "" {
		if _, err := os.Stat(c.PowerShellPath); err != nil {
			return fmt.Errorf("powershell_path does not exist: %s", c.PowerShellPath)
		}
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("log.level must be one of: debug, info, warn, error")
	}

	if c.Log.MaxSizeMB < 1 {
		return fmt.Errorf("log.max_size_mb must be at least 1")
	}

	if c.Log.MaxBackups < 0 {
		return fmt.Errorf("log.max_backups cannot be negative")
	}

	return nil
}

// WriteExampleConfig writes an example config file to the given path.
func WriteExampleConfig(path string) error {
	content := `# svcctl configuration

# Computer to target when --computer is not given (empty = local machine)
computer = ""

# How long start/stop/pause/continue wait for the target state
timeout = "60s"

# How often service status is re-read while waiting
poll_interval = "250ms"

# Root that relative executable paths resolve against on remote computers
remote_root = "C:/"

# Path to powershell.exe (auto-detected if empty)
powershell_path = ""

# Logging configuration
[log]
# Level: debug, info, warn, error
level = "info"
# Output file path (defaults to svcctl.log in the log directory)
# output = ""
# Max log file size before rotation (MB)
max_size_mb = 10
max_backups = 3
`
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, []byte(content), 0600)
}
