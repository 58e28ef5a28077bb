package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/dw/internal/applier"
	"github.com/mesh-intelligence/dw/internal/gallery"
	"github.com/mesh-intelligence/dw/internal/scheduler"
	"github.com/mesh-intelligence/dw/internal/shell"
	"github.com/mesh-intelligence/dw/internal/store"
	"github.com/mesh-intelligence/dw/pkg/types"
)

type fakeApplier struct {
	applied []string
	err     error
}

func (f *fakeApplier) Apply(_ context.Context, path string) error {
	if f.err != nil {
		return f.err
	}
	f.applied = append(f.applied, path)
	return nil
}

type fakeScheduler struct {
	enabled bool
	enables int
	tc      types.TimeConfig
	action  scheduler.Action
	err     error
}

func (f *fakeScheduler) Name() string { return "fake" }

func (f *fakeScheduler) Enable(_ context.Context, tc types.TimeConfig, action scheduler.Action) error {
	if f.err != nil {
		return f.err
	}
	f.enabled = true
	f.enables++
	f.tc = tc
	f.action = action
	return nil
}

func (f *fakeScheduler) Disable(context.Context) error {
	if f.err != nil {
		return f.err
	}
	f.enabled = false
	return nil
}

func (f *fakeScheduler) Enabled(context.Context) (bool, error) {
	return f.enabled, f.err
}

type nopRunner struct{}

func (nopRunner) Run(context.Context, shell.Command) ([]byte, error) { return nil, nil }

// testEnv is one isolated dw installation under a temp dir.
type testEnv struct {
	t           *testing.T
	dir         string
	configPath  string
	settingsDir string
	binary      string
	applier     *fakeApplier
	sched       *fakeScheduler
	schedErr    error
	lastEnv     applier.Env
	clock       time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DW_HISTORY_PATH", filepath.Join(dir, "data", "history.db"))
	return &testEnv{
		t:           t,
		dir:         dir,
		configPath:  filepath.Join(dir, "config", "config.json"),
		settingsDir: filepath.Join(dir, "settings"),
		binary:      filepath.Join(dir, "bin", "dw"),
		applier:     &fakeApplier{},
		sched:       &fakeScheduler{},
		clock:       time.Now().Truncate(time.Second),
	}
}

func (e *testEnv) deps() deps {
	return deps{
		goos:   "linux",
		runner: nopRunner{},
		newApplier: func(env applier.Env, _ shell.Runner) (applier.Applier, error) {
			e.lastEnv = env
			return e.applier, nil
		},
		newScheduler: func(string, shell.Runner, scheduler.Options) (scheduler.Scheduler, error) {
			if e.schedErr != nil {
				return nil, e.schedErr
			}
			return e.sched, nil
		},
		lister:     gallery.NewLister(),
		now:        func() time.Time { return e.clock },
		executable: func() (string, error) { return e.binary, nil },
		getwd:      func() (string, error) { return e.dir, nil },
		homeDir:    func() (string, error) { return e.dir, nil },
		uid:        1000,
	}
}

// run executes dw with the env's --config and --settings-dir.
func (e *testEnv) run(args ...string) (stdout, stderr string, res Result) {
	e.t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd(newApp(e.deps()))
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", e.configPath, "--settings-dir", e.settingsDir}, args...))
	res = execute(root)
	return out.String(), errOut.String(), res
}

// mustRun fails the test unless the command succeeds.
func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	stdout, stderr, res := e.run(args...)
	require.True(e.t, res.Success, "dw %v: exit %d: %s", args, res.ExitCode, stderr)
	return stdout
}

func (e *testEnv) load() types.Config {
	e.t.Helper()
	cfg, err := store.New(e.configPath).Load()
	require.NoError(e.t, err)
	return cfg
}
