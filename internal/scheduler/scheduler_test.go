package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/dw/internal/shell"
	"github.com/mesh-intelligence/dw/pkg/types"
)

// fakeRunner keeps a crontab in memory and answers schtasks and launchctl.
type fakeRunner struct {
	crontab  string
	noTab    bool
	task     bool
	failName string
	commands []shell.Command
}

func (r *fakeRunner) Run(_ context.Context, cmd shell.Command) ([]byte, error) {
	r.commands = append(r.commands, cmd)
	if cmd.Name == r.failName {
		return nil, &shell.CommandError{Command: cmd.String(), ExitStatus: 2, Stderr: "boom"}
	}
	switch cmd.Name {
	case "crontab":
		if cmd.Args[0] == "-l" {
			if r.noTab {
				return nil, &shell.CommandError{Command: cmd.String(), ExitStatus: 1, Stderr: "no crontab for me"}
			}
			return []byte(r.crontab), nil
		}
		r.noTab = false
		r.crontab = string(cmd.Stdin)
	case "schtasks":
		switch cmd.Args[0] {
		case "/create":
			r.task = true
		case "/delete":
			r.task = false
		case "/query":
			if !r.task {
				return nil, &shell.CommandError{Command: cmd.String(), ExitStatus: 1, Stderr: "ERROR: The system cannot find the file specified."}
			}
		}
	}
	return nil, nil
}

func (r *fakeRunner) names() []string {
	var out []string
	for _, c := range r.commands {
		out = append(out, c.String())
	}
	return out
}

var every5 = types.TimeConfig{Preset: types.PresetMinute, Interval: 5}

func TestForPlatform(t *testing.T) {
	runner := &fakeRunner{}
	tests := []struct {
		goos string
		want string
	}{
		{"linux", "cron"},
		{"freebsd", "cron"},
		{"darwin", "launchd"},
		{"windows", "schtasks"},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			s, err := For(tt.goos, runner, Options{HomeDir: "/home/me", UID: 501})
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Name())
		})
	}

	_, err := For("plan9", runner, Options{})
	assert.ErrorIs(t, err, types.ErrUnsupportedPlatform)

	s, err := For("darwin", runner, Options{HomeDir: "/Users/me"})
	require.NoError(t, err)
	assert.Equal(t, "/Users/me/Library/LaunchAgents/com.dw.rotation.plist", filepath.ToSlash(s.(*Launchd).PlistPath()))
}

func TestCronEnableKeepsOtherEntries(t *testing.T) {
	runner := &fakeRunner{crontab: "0 3 * * * /usr/bin/backup\n"}
	c := &Cron{Runner: runner}

	require.NoError(t, c.Enable(context.Background(), every5, NextAction("/w", "/bin/dw")))
	lines := strings.Split(strings.TrimSpace(runner.crontab), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "0 3 * * * /usr/bin/backup", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "*/5 * * * * "))

	enabled, err := c.Enabled(context.Background())
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestCronEnableReplacesPreviousLine(t *testing.T) {
	runner := &fakeRunner{}
	c := &Cron{Runner: runner}
	ctx := context.Background()

	require.NoError(t, c.Enable(ctx, every5, NextAction("/w", "/bin/dw")))
	require.NoError(t, c.Enable(ctx, types.TimeConfig{Preset: types.PresetHour, Interval: 2}, NextAction("/w", "/bin/dw")))

	assert.Equal(t, 1, strings.Count(runner.crontab, cronTag))
	assert.Contains(t, runner.crontab, "0 */2 * * * ")
	assert.NotContains(t, runner.crontab, "*/5")
}

func TestCronEmptyCrontab(t *testing.T) {
	runner := &fakeRunner{noTab: true}
	c := &Cron{Runner: runner}
	ctx := context.Background()

	enabled, err := c.Enabled(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)

	// Nothing to remove, nothing written.
	require.NoError(t, c.Disable(ctx))
	assert.Equal(t, []string{"crontab -l", "crontab -l"}, runner.names())

	require.NoError(t, c.Enable(ctx, every5, NextAction("/w", "/bin/dw")))
	assert.Equal(t, 1, strings.Count(runner.crontab, "\n"))
}

func TestCronDisable(t *testing.T) {
	runner := &fakeRunner{crontab: "@reboot /usr/bin/thing\n*/5 * * * * cd '/w' && '/bin/dw' 'next' # dw-rotation\n"}
	c := &Cron{Runner: runner}

	require.NoError(t, c.Disable(context.Background()))
	assert.Equal(t, "@reboot /usr/bin/thing\n", runner.crontab)

	enabled, err := c.Enabled(context.Background())
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestCronCommandFailure(t *testing.T) {
	runner := &fakeRunner{failName: "crontab"}
	c := &Cron{Runner: runner}

	err := c.Enable(context.Background(), every5, NextAction("/w", "/bin/dw"))
	assert.ErrorIs(t, err, types.ErrSchedulerCommandFailed)

	var cerr *shell.CommandError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "boom", cerr.Stderr)
}

func TestCronInvalidTimeConfig(t *testing.T) {
	runner := &fakeRunner{}
	c := &Cron{Runner: runner}
	err := c.Enable(context.Background(), types.TimeConfig{Preset: types.PresetHour, Interval: 24}, NextAction("/w", "/bin/dw"))
	assert.ErrorIs(t, err, types.ErrInvalidInterval)
	assert.Empty(t, runner.commands)
}

func TestSchtasks(t *testing.T) {
	runner := &fakeRunner{}
	s := &Schtasks{Runner: runner}
	ctx := context.Background()

	enabled, err := s.Enabled(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)

	require.NoError(t, s.Disable(ctx))

	require.NoError(t, s.Enable(ctx, every5, NextAction(`C:\w`, `C:\dw.exe`)))
	enabled, err = s.Enabled(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)

	require.NoError(t, s.Disable(ctx))
	assert.False(t, runner.task)
	assert.Contains(t, runner.names(), "schtasks /delete /tn dw-rotation /f")
}

func TestSchtasksFailure(t *testing.T) {
	runner := &fakeRunner{failName: "schtasks"}
	s := &Schtasks{Runner: runner}
	err := s.Enable(context.Background(), every5, NextAction(`C:\w`, `C:\dw.exe`))
	assert.ErrorIs(t, err, types.ErrSchedulerCommandFailed)

	_, err = s.Enabled(context.Background())
	assert.ErrorIs(t, err, types.ErrSchedulerCommandFailed)
}

func TestLaunchd(t *testing.T) {
	runner := &fakeRunner{}
	l := &Launchd{Runner: runner, AgentDir: filepath.Join(t.TempDir(), "LaunchAgents"), UID: 501}
	ctx := context.Background()

	enabled, err := l.Enabled(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)

	require.NoError(t, l.Enable(ctx, every5, NextAction("/Users/me", "/usr/local/bin/dw")))
	data, err := os.ReadFile(l.PlistPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "<integer>300</integer>")

	enabled, err = l.Enabled(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)
	assert.Equal(t, []string{
		"launchctl bootout gui/501 " + l.PlistPath(),
		"launchctl bootstrap gui/501 " + l.PlistPath(),
	}, runner.names())

	require.NoError(t, l.Disable(ctx))
	_, err = os.Stat(l.PlistPath())
	assert.True(t, os.IsNotExist(err))

	// Second disable is a no-op.
	require.NoError(t, l.Disable(ctx))
}

func TestLaunchdBootstrapFailure(t *testing.T) {
	runner := &fakeRunner{failName: "launchctl"}
	l := &Launchd{Runner: runner, AgentDir: t.TempDir(), UID: 501}
	err := l.Enable(context.Background(), every5, NextAction("/Users/me", "/usr/local/bin/dw"))
	assert.ErrorIs(t, err, types.ErrSchedulerCommandFailed)
}
