// Package paths resolves the state file, settings, and data directory locations.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user directories.
const AppName = "dw"

// DefaultConfigFile is the state file location, relative to the working directory.
const DefaultConfigFile = "config/config.json"

// Environment variable names for overrides.
const (
	EnvConfigFile  = "DW_CONFIG"
	EnvSettingsDir = "DW_SETTINGS_DIR"
	EnvDataDir     = "DW_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
	getwd         func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
	getwd:         os.Getwd,
}

// DefaultSettingsDir returns the platform-specific directory for settings.yaml.
//
// Linux:   $XDG_CONFIG_HOME/dw (fallback ~/.config/dw)
// macOS:   ~/Library/Application Support/dw
// Windows: %APPDATA%/dw
func DefaultSettingsDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, AppName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", AppName), nil
	default:
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
}

// DefaultDataDir returns the platform-specific directory for history.db.
//
// Linux:   $XDG_DATA_HOME/dw (fallback ~/.local/share/dw)
// macOS:   ~/Library/Application Support/dw
// Windows: %APPDATA%/dw
func DefaultDataDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, AppName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share", AppName), nil
	default:
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
}

// ResolveSettingsDir returns the settings directory following the precedence
// chain: flag > DW_SETTINGS_DIR env > DefaultSettingsDir().
func ResolveSettingsDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvSettingsDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultSettingsDir()
}

// ResolveConfigFile returns the absolute state file path following the
// precedence chain: flag > settings value > DW_CONFIG env > DefaultConfigFile
// under the working directory.
func ResolveConfigFile(flag, settingsValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if settingsValue != "" {
		return filepath.Abs(settingsValue)
	}
	if env := os.Getenv(EnvConfigFile); env != "" {
		return filepath.Abs(env)
	}
	cwd, err := platformDir.getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, filepath.FromSlash(DefaultConfigFile)), nil
}

// ResolveDataDir returns the data directory: settings value > DW_DATA_DIR env
// > DefaultDataDir().
func ResolveDataDir(settingsValue string) (string, error) {
	if settingsValue != "" {
		return filepath.Abs(settingsValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultDataDir()
}
