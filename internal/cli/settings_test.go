package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_Defaults(t *testing.T) {
	v, err := loadSettings(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, v.GetDuration(keyCommandTimeout))
	assert.Equal(t, "warn", v.GetString(keyLogLevel))
	assert.Equal(t, "text", v.GetString(keyLogFormat))
	assert.True(t, v.GetBool(keyHistoryEnabled))
	assert.Empty(t, v.GetString(keyConfigFile))
}

func TestLoadSettings_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := "config_file: /srv/dw/config.json\ncommand_timeout: 3s\ndesktop: kde\nlog:\n  level: debug\nhistory:\n  enabled: false\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, settingsFileExt), []byte(yaml), 0o644))
	t.Setenv("DW_DESKTOP", "gnome")

	v, err := loadSettings(dir)
	require.NoError(t, err)
	assert.Equal(t, "/srv/dw/config.json", v.GetString(keyConfigFile))
	assert.Equal(t, 3*time.Second, v.GetDuration(keyCommandTimeout))
	assert.Equal(t, "gnome", v.GetString(keyDesktop), "env overrides file")
	assert.Equal(t, "debug", v.GetString(keyLogLevel))
	assert.False(t, v.GetBool(keyHistoryEnabled))
}

func TestLoadSettings_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, settingsFileExt)

	require.NoError(t, os.WriteFile(path, []byte("log: [unclosed\n"), 0o644))
	_, err := loadSettings(dir)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("command_timeout: -1s\n"), 0o644))
	_, err = loadSettings(dir)
	assert.ErrorContains(t, err, keyCommandTimeout)
}

func TestWriteSettingsIfMissing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dw")
	created, err := writeSettingsIfMissing(dir)
	require.NoError(t, err)
	assert.True(t, created)

	v, err := loadSettings(dir)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, v.GetDuration(keyCommandTimeout))

	path := filepath.Join(dir, settingsFileExt)
	require.NoError(t, os.WriteFile(path, []byte("desktop: xfce\n"), 0o644))
	created, err = writeSettingsIfMissing(dir)
	require.NoError(t, err)
	assert.False(t, created)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "desktop: xfce\n", string(data))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "info", "json", false)
	log.Debug("hidden")
	log.Info("shown", "path", "/a.png")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "/a.png", rec["path"])
	assert.NotEmpty(t, rec["invocation"])

	buf.Reset()
	log = newLogger(&buf, "nonsense", "text", true)
	log.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
	assert.Contains(t, buf.String(), "invocation=")

	buf.Reset()
	log = newLogger(&buf, "", "text", false)
	log.Info("quiet")
	assert.Empty(t, buf.String())
}
