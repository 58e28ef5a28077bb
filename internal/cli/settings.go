package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/dw/internal/shell"
)

const (
	settingsFileName = "settings"
	settingsFileType = "yaml"
	settingsFileExt  = "settings.yaml"

	keyConfigFile     = "config_file"
	keyCommandTimeout = "command_timeout"
	keyDesktop        = "desktop"
	keyWindowsHelper  = "windows_helper"
	keyLogLevel       = "log.level"
	keyLogFormat      = "log.format"
	keyHistoryEnabled = "history.enabled"
	keyHistoryPath    = "history.path"

	defaultLogLevel  = "warn"
	defaultLogFormat = "text"
)

// defaultSettingsYAML is written by `dw init` when settings.yaml is missing.
const defaultSettingsYAML = `# dw settings. Every key can also be set as DW_<KEY>, e.g. DW_LOG_LEVEL.

# State file (default: ./config/config.json)
# config_file:

# Timeout for desktop and scheduler commands
command_timeout: 10s

# Force a desktop: gnome, kde, xfce, macos, windows (default: detect)
# desktop:

log:
  level: warn
  format: text

history:
  enabled: true
  # path:
`

// loadSettings reads settings.yaml from dir with DW_ environment overrides.
// A missing file is not an error.
func loadSettings(dir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(keyCommandTimeout, shell.DefaultTimeout)
	v.SetDefault(keyLogLevel, defaultLogLevel)
	v.SetDefault(keyLogFormat, defaultLogFormat)
	v.SetDefault(keyHistoryEnabled, true)
	v.SetEnvPrefix("DW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(settingsFileName)
	v.SetConfigType(settingsFileType)
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read settings: %w", err)
		}
	}

	if d := v.GetDuration(keyCommandTimeout); d <= 0 {
		return nil, fmt.Errorf("read settings: %s must be a positive duration, got %q", keyCommandTimeout, v.GetString(keyCommandTimeout))
	}
	return v, nil
}

// writeSettingsIfMissing creates a default settings.yaml in dir. An existing
// file is left alone.
func writeSettingsIfMissing(dir string) (created bool, err error) {
	path := filepath.Join(dir, settingsFileExt)
	_, err = os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat settings file: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("create settings dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultSettingsYAML), 0o644); err != nil {
		return false, fmt.Errorf("write settings file: %w", err)
	}
	return true, nil
}
