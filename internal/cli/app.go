package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/dw/internal/applier"
	"github.com/mesh-intelligence/dw/internal/cycle"
	"github.com/mesh-intelligence/dw/internal/gallery"
	"github.com/mesh-intelligence/dw/internal/history"
	"github.com/mesh-intelligence/dw/internal/paths"
	"github.com/mesh-intelligence/dw/internal/scheduler"
	"github.com/mesh-intelligence/dw/internal/shell"
	"github.com/mesh-intelligence/dw/internal/store"
)

// deps are the host collaborators of a command run. Tests replace them.
type deps struct {
	goos         string
	runner       shell.Runner
	newApplier   func(env applier.Env, runner shell.Runner) (applier.Applier, error)
	newScheduler func(goos string, runner shell.Runner, opts scheduler.Options) (scheduler.Scheduler, error)
	lister       *gallery.Lister
	now          func() time.Time
	executable   func() (string, error)
	getwd        func() (string, error)
	homeDir      func() (string, error)
	uid          int
}

func defaultDeps() deps {
	return deps{
		goos: runtime.GOOS,
		newApplier: func(env applier.Env, runner shell.Runner) (applier.Applier, error) {
			a, err := applier.Select(env, runner)
			if err != nil {
				return nil, err
			}
			return a, nil
		},
		newScheduler: scheduler.For,
		lister:       gallery.NewLister(),
		now:          time.Now,
		executable:   os.Executable,
		getwd:        os.Getwd,
		homeDir:      os.UserHomeDir,
		uid:          os.Getuid(),
	}
}

// app holds the state of one invocation.
type app struct {
	deps
	flags       rootFlags
	settingsDir string
	settings    *viper.Viper
	log         *slog.Logger
	store       *store.Store
}

func newApp(d deps) *app {
	return &app{deps: d, log: slog.New(slog.DiscardHandler)}
}

// setup resolves settings, the logger, and the state file for cmd.
func (a *app) setup(cmd *cobra.Command) error {
	dir, err := paths.ResolveSettingsDir(a.flags.settingsDir)
	if err != nil {
		return fmt.Errorf("resolve settings dir: %w", err)
	}
	v, err := loadSettings(dir)
	if err != nil {
		return err
	}
	a.settingsDir = dir
	a.settings = v
	a.log = newLogger(cmd.ErrOrStderr(), v.GetString(keyLogLevel), v.GetString(keyLogFormat), a.flags.verbose)

	configPath, err := paths.ResolveConfigFile(a.flags.configFile, v.GetString(keyConfigFile))
	if err != nil {
		return fmt.Errorf("resolve config file: %w", err)
	}
	a.store = store.New(configPath)
	a.log.Debug("resolved paths", "config", configPath, "settings", dir, "command", cmd.Name())
	return nil
}

func (a *app) commandRunner() shell.Runner {
	if a.runner != nil {
		return a.runner
	}
	return shell.Exec{Timeout: a.settings.GetDuration(keyCommandTimeout)}
}

func (a *app) navigator() *cycle.Navigator {
	return cycle.New(a.lister, cycle.WithClock(a.now))
}

// apply sets path as the background and logs it to history. Only the apply
// can fail the command.
func (a *app) apply(ctx context.Context, path, source string) error {
	env := applier.EnvFromOS(a.goos)
	env.Desktop = a.settings.GetString(keyDesktop)
	env.WindowsHelper = a.settings.GetString(keyWindowsHelper)
	env.ExtraEnv = applier.SessionEnv(a.goos, os.Getenv, a.uid)

	ap, err := a.newApplier(env, a.commandRunner())
	if err != nil {
		return err
	}
	if err := ap.Apply(ctx, path); err != nil {
		return err
	}
	a.log.Info("wallpaper applied", "path", path, "source", source)
	a.record(path, source)
	return nil
}

func (a *app) record(path, source string) {
	if !a.settings.GetBool(keyHistoryEnabled) {
		return
	}
	dbPath, err := a.historyPath()
	if err != nil {
		a.log.Warn("history unavailable", "error", err)
		return
	}
	h, err := history.Open(dbPath)
	if err != nil {
		a.log.Warn("history unavailable", "error", err)
		return
	}
	defer h.Close()
	if _, err := h.Record(path, source); err != nil {
		a.log.Warn("history not recorded", "error", err)
	}
}

func (a *app) historyPath() (string, error) {
	if p := a.settings.GetString(keyHistoryPath); p != "" {
		return filepath.Abs(p)
	}
	dir, err := paths.ResolveDataDir("")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, history.DefaultFile), nil
}

func (a *app) scheduler() (scheduler.Scheduler, error) {
	home, err := a.homeDir()
	if err != nil && a.goos == "darwin" {
		return nil, fmt.Errorf("resolve home dir: %w", err)
	}
	return a.newScheduler(a.goos, a.commandRunner(), scheduler.Options{HomeDir: home, UID: a.uid})
}

// nextAction is the scheduled command. Flags given to this run are passed on
// so the job sees the same files.
func (a *app) nextAction() (scheduler.Action, error) {
	wd, err := a.getwd()
	if err != nil {
		return scheduler.Action{}, fmt.Errorf("resolve working dir: %w", err)
	}
	bin, err := a.executable()
	if err != nil {
		return scheduler.Action{}, fmt.Errorf("resolve executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(bin); err == nil {
		bin = resolved
	}

	var extra []string
	if a.flags.configFile != "" {
		extra = append(extra, "--config", a.store.Path())
	}
	if a.flags.settingsDir != "" {
		extra = append(extra, "--settings-dir", a.settingsDir)
	}
	return scheduler.NextAction(wd, bin, extra...), nil
}
