package applier

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/dw/internal/shell"
	"github.com/mesh-intelligence/dw/internal/testfs"
	"github.com/mesh-intelligence/dw/pkg/types"
)

// recordingRunner records commands and fails the n-th one when failAt >= 0.
type recordingRunner struct {
	commands []shell.Command
	failAt   int
	err      error
}

func newRecordingRunner() *recordingRunner {
	return &recordingRunner{failAt: -1}
}

func (r *recordingRunner) Run(_ context.Context, cmd shell.Command) ([]byte, error) {
	r.commands = append(r.commands, cmd)
	if len(r.commands)-1 == r.failAt {
		return nil, r.err
	}
	return nil, nil
}

func TestDetectDesktop(t *testing.T) {
	tests := []struct {
		name    string
		env     Env
		want    string
		wantErr error
	}{
		{name: "darwin", env: Env{GOOS: "darwin"}, want: DesktopMacOS},
		{name: "windows", env: Env{GOOS: "windows"}, want: DesktopWindows},
		{name: "gnome", env: Env{GOOS: "linux", CurrentDesktop: "GNOME"}, want: DesktopGNOME},
		{name: "ubuntu session list", env: Env{GOOS: "linux", CurrentDesktop: "ubuntu:GNOME"}, want: DesktopGNOME},
		{name: "kde", env: Env{GOOS: "linux", CurrentDesktop: "KDE"}, want: DesktopKDE},
		{name: "xfce from session", env: Env{GOOS: "linux", Session: "xfce"}, want: DesktopXFCE},
		{name: "override wins", env: Env{GOOS: "linux", CurrentDesktop: "GNOME", Desktop: "XFCE"}, want: DesktopXFCE},
		{name: "unknown desktop", env: Env{GOOS: "linux", CurrentDesktop: "sway"}, wantErr: types.ErrUnsupportedEnvironment},
		{name: "no desktop", env: Env{GOOS: "linux"}, wantErr: types.ErrUnsupportedEnvironment},
		{name: "bad override", env: Env{GOOS: "linux", Desktop: "enlightenment"}, wantErr: types.ErrUnsupportedEnvironment},
		{name: "unknown os", env: Env{GOOS: "plan9"}, wantErr: types.ErrUnsupportedPlatform},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectDesktop(tt.env)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStrategyCommands(t *testing.T) {
	const img = "/home/me/Pictures/sea view.png"

	t.Run("gnome sets light and dark uris", func(t *testing.T) {
		cmds := GNOME{}.Commands(img)
		require.Len(t, cmds, 2)
		assert.Equal(t, []string{"set", "org.gnome.desktop.background", "picture-uri", "file:///home/me/Pictures/sea%20view.png"}, cmds[0].Args)
		assert.Equal(t, "picture-uri-dark", cmds[1].Args[2])
	})

	t.Run("kde script carries quoted uri", func(t *testing.T) {
		cmds := KDE{}.Commands(img)
		require.Len(t, cmds, 1)
		assert.Equal(t, "qdbus", cmds[0].Name)
		assert.Contains(t, cmds[0].Args[3], `d.writeConfig("Image", "file:///home/me/Pictures/sea%20view.png");`)
	})

	t.Run("xfce passes raw path", func(t *testing.T) {
		cmds := XFCE{}.Commands(img)
		require.Len(t, cmds, 1)
		assert.Equal(t, img, cmds[0].Args[len(cmds[0].Args)-1])
	})

	t.Run("macos quotes path", func(t *testing.T) {
		cmds := MacOS{}.Commands(`/Users/me/"odd".png`)
		require.Len(t, cmds, 1)
		assert.Equal(t, []string{"-e", `tell application "System Events" to tell every desktop to set picture to "/Users/me/\"odd\".png"`}, cmds[0].Args)
	})

	t.Run("windows helper default", func(t *testing.T) {
		cmds := Windows{}.Commands(`C:\walls\a.png`)
		require.Len(t, cmds, 1)
		assert.Equal(t, DefaultWindowsHelper, cmds[0].Name)
		assert.Equal(t, []string{`C:\walls\a.png`}, cmds[0].Args)
	})
}

func TestCommandApplier_Apply(t *testing.T) {
	dir := t.TempDir()
	img := testfs.PNG(t, dir, "a.png")
	text := testfs.Text(t, dir, "a.txt")

	t.Run("runs every command with extra env", func(t *testing.T) {
		r := newRecordingRunner()
		a := &CommandApplier{Strategy: GNOME{}, Runner: r, Env: []string{"DISPLAY=:0"}}

		require.NoError(t, a.Apply(context.Background(), img))
		require.Len(t, r.commands, 2)
		assert.Equal(t, []string{"DISPLAY=:0"}, r.commands[0].Env)
		assert.Contains(t, r.commands[0].Args[3], filepath.ToSlash(img))
	})

	t.Run("missing path", func(t *testing.T) {
		r := newRecordingRunner()
		a := &CommandApplier{Strategy: GNOME{}, Runner: r}
		err := a.Apply(context.Background(), filepath.Join(dir, "gone.png"))
		assert.ErrorIs(t, err, types.ErrPathNotFound)
		assert.Empty(t, r.commands)
	})

	t.Run("not an image", func(t *testing.T) {
		r := newRecordingRunner()
		a := &CommandApplier{Strategy: XFCE{}, Runner: r}
		assert.ErrorIs(t, a.Apply(context.Background(), text), types.ErrNotAnImage)
		assert.ErrorIs(t, a.Apply(context.Background(), dir), types.ErrNotAnImage)
		assert.Empty(t, r.commands)
	})

	t.Run("special file is not sniffed", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("no character device to stat")
		}
		r := newRecordingRunner()
		a := &CommandApplier{Strategy: GNOME{}, Runner: r}
		assert.ErrorIs(t, a.Apply(context.Background(), os.DevNull), types.ErrNotAnImage)
		assert.Empty(t, r.commands)
	})

	t.Run("command failure keeps exit status", func(t *testing.T) {
		r := newRecordingRunner()
		r.failAt = 0
		r.err = &shell.CommandError{Command: "gsettings", ExitStatus: 1, Stderr: "no schema"}
		a := &CommandApplier{Strategy: GNOME{}, Runner: r}

		err := a.Apply(context.Background(), img)
		assert.ErrorIs(t, err, types.ErrApplyCommandFailed)
		var cerr *shell.CommandError
		require.True(t, errors.As(err, &cerr))
		assert.Equal(t, 1, cerr.ExitStatus)
		assert.Len(t, r.commands, 1, "stops at the first failure")
	})

	t.Run("missing binary is an environment problem", func(t *testing.T) {
		r := newRecordingRunner()
		r.failAt = 0
		r.err = shell.ErrNotInstalled
		a := &CommandApplier{Strategy: KDE{}, Runner: r}

		assert.ErrorIs(t, a.Apply(context.Background(), img), types.ErrUnsupportedEnvironment)
	})
}

func TestSelect(t *testing.T) {
	r := newRecordingRunner()
	a, err := Select(Env{GOOS: "linux", CurrentDesktop: "KDE", ExtraEnv: []string{"X=1"}}, r)
	require.NoError(t, err)
	assert.Equal(t, DesktopKDE, a.Name())
	assert.Equal(t, []string{"X=1"}, a.Env)

	_, err = Select(Env{GOOS: "linux"}, r)
	assert.ErrorIs(t, err, types.ErrUnsupportedEnvironment)
}

func TestSessionEnv(t *testing.T) {
	empty := func(string) string { return "" }
	assert.Equal(t, []string{"DBUS_SESSION_BUS_ADDRESS=unix:path=/run/user/1000/bus", "DISPLAY=:0"}, SessionEnv("linux", empty, 1000))

	set := func(k string) string {
		return map[string]string{"DBUS_SESSION_BUS_ADDRESS": "unix:path=/x", "WAYLAND_DISPLAY": "wayland-0"}[k]
	}
	assert.Empty(t, SessionEnv("linux", set, 1000))
	assert.Nil(t, SessionEnv("darwin", empty, 501))
}
