package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	// AppName names the per-user config and log directories.
	AppName = "svcctl"
	// ConfigFileName is the default config file name.
	ConfigFileName = "config.toml"
	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "SVCCTL"
)

// userDir locates per-user files on one OS. The base directory comes from
// env when set, otherwise from fallback under the home directory.
type userDir struct {
	env      string
	fallback []string
	suffix   []string
}

var (
	configDirs = map[string]userDir{
		"windows": {env: "APPDATA", fallback: []string{"AppData", "Roaming"}, suffix: []string{AppName}},
		"darwin":  {fallback: []string{"Library", "Application Support"}, suffix: []string{AppName}},
		"":        {env: "XDG_CONFIG_HOME", fallback: []string{".config"}, suffix: []string{AppName}},
	}
	logDirs = map[string]userDir{
		"windows": {env: "LOCALAPPDATA", fallback: []string{"AppData", "Local"}, suffix: []string{AppName, "logs"}},
		"darwin":  {fallback: []string{"Library", "Logs"}, suffix: []string{AppName}},
		"":        {env: "XDG_STATE_HOME", fallback: []string{".local", "state"}, suffix: []string{AppName}},
	}
)

// pathEnv is what directory resolution reads from the process.
type pathEnv struct {
	goos    string
	getenv  func(string) string
	homeDir func() (string, error)
}

func processEnv() pathEnv {
	return pathEnv{goos: runtime.GOOS, getenv: os.Getenv, homeDir: os.UserHomeDir}
}

func (e pathEnv) resolve(dirs map[string]userDir) (string, error) {
	d, ok := dirs[e.goos]
	if !ok {
		d = dirs[""]
	}

	base := ""
	if d.env != "" {
		base = e.getenv(d.env)
	}
	if base == "" {
		home, err := e.homeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(append([]string{home}, d.fallback...)...)
	}
	return filepath.Join(append([]string{base}, d.suffix...)...), nil
}

// DefaultConfigDir returns the per-user configuration directory.
func DefaultConfigDir() (string, error) {
	return processEnv().resolve(configDirs)
}

// DefaultConfigPath returns the full path to the default config file.
func DefaultConfigPath() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// DefaultLogPath returns the full path to the default log file.
func DefaultLogPath() (string, error) {
	dir, err := processEnv().resolve(logDirs)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName+".log"), nil
}
