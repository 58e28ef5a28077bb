// Package applier sets the desktop background. One Strategy exists per
// desktop environment; Select picks it once from the running platform.
package applier

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/mesh-intelligence/dw/internal/gallery"
	"github.com/mesh-intelligence/dw/internal/shell"
	"github.com/mesh-intelligence/dw/pkg/types"
)

// Applier applies an image file as the desktop background.
type Applier interface {
	Apply(ctx context.Context, path string) error
}

// Strategy builds the commands that set the background on one desktop.
type Strategy interface {
	Name() string
	Commands(absPath string) []shell.Command
}

// Desktop names accepted by Select and the desktop setting.
const (
	DesktopGNOME   = "gnome"
	DesktopKDE     = "kde"
	DesktopXFCE    = "xfce"
	DesktopMacOS   = "macos"
	DesktopWindows = "windows"
)

// desktopAliases maps XDG_CURRENT_DESKTOP / DESKTOP_SESSION tokens to a desktop.
var desktopAliases = map[string]mapset.Set[string]{
	DesktopGNOME: mapset.NewSet("gnome", "ubuntu", "unity", "pop", "zorin", "gnome-xorg", "gnome-wayland"),
	DesktopKDE:   mapset.NewSet("kde", "plasma", "plasmawayland", "plasmax11"),
	DesktopXFCE:  mapset.NewSet("xfce", "xfce4", "xubuntu"),
}

// Env is the part of the environment that drives selection.
type Env struct {
	GOOS string
	// Desktop forces a desktop; empty means detect.
	Desktop string
	// CurrentDesktop and Session hold XDG_CURRENT_DESKTOP and DESKTOP_SESSION.
	CurrentDesktop string
	Session        string
	// WindowsHelper is the helper executable used on Windows.
	WindowsHelper string
	// ExtraEnv is passed to every command, e.g. a session bus address.
	ExtraEnv []string
}

// EnvFromOS reads selection inputs from the process environment.
func EnvFromOS(goos string) Env {
	return Env{
		GOOS:           goos,
		CurrentDesktop: os.Getenv("XDG_CURRENT_DESKTOP"),
		Session:        os.Getenv("DESKTOP_SESSION"),
	}
}

// DetectDesktop resolves the desktop name for env.
func DetectDesktop(env Env) (string, error) {
	if env.Desktop != "" {
		d := strings.ToLower(env.Desktop)
		switch d {
		case DesktopGNOME, DesktopKDE, DesktopXFCE, DesktopMacOS, DesktopWindows:
			return d, nil
		}
		return "", fmt.Errorf("%w: %q", types.ErrUnsupportedEnvironment, env.Desktop)
	}

	switch env.GOOS {
	case "darwin":
		return DesktopMacOS, nil
	case "windows":
		return DesktopWindows, nil
	case "linux", "freebsd", "openbsd", "netbsd":
	default:
		return "", fmt.Errorf("%w: %s", types.ErrUnsupportedPlatform, env.GOOS)
	}

	for _, raw := range []string{env.CurrentDesktop, env.Session} {
		for _, token := range strings.Split(strings.ToLower(raw), ":") {
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}
			for name, aliases := range desktopAliases {
				if aliases.Contains(token) {
					return name, nil
				}
			}
		}
	}
	return "", fmt.Errorf("%w: XDG_CURRENT_DESKTOP=%q DESKTOP_SESSION=%q", types.ErrUnsupportedEnvironment, env.CurrentDesktop, env.Session)
}

// StrategyFor returns the Strategy for a desktop name.
func StrategyFor(desktop string, env Env) (Strategy, error) {
	switch desktop {
	case DesktopGNOME:
		return GNOME{}, nil
	case DesktopKDE:
		return KDE{}, nil
	case DesktopXFCE:
		return XFCE{}, nil
	case DesktopMacOS:
		return MacOS{}, nil
	case DesktopWindows:
		return Windows{Helper: env.WindowsHelper}, nil
	}
	return nil, fmt.Errorf("%w: %q", types.ErrUnsupportedEnvironment, desktop)
}

// Select detects the desktop and returns an Applier running its commands
// through runner.
func Select(env Env, runner shell.Runner) (*CommandApplier, error) {
	desktop, err := DetectDesktop(env)
	if err != nil {
		return nil, err
	}
	strategy, err := StrategyFor(desktop, env)
	if err != nil {
		return nil, err
	}
	return &CommandApplier{Strategy: strategy, Runner: runner, Env: env.ExtraEnv}, nil
}

// CommandApplier validates the image and runs the strategy's commands.
type CommandApplier struct {
	Strategy Strategy
	Runner   shell.Runner
	Env      []string
}

// Apply checks that path exists and is an image, then runs every command of
// the strategy in order, stopping at the first failure.
func (a *CommandApplier) Apply(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", types.ErrPathNotFound, path)
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", types.ErrNotAnImage, path)
	}
	// Sniffing a FIFO or device would block.
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", types.ErrNotAnImage, path)
	}
	ok, err := gallery.IsImage(abs)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrNotAnImage, path)
	}

	for _, cmd := range a.Strategy.Commands(abs) {
		cmd.Env = append(cmd.Env, a.Env...)
		if _, err := a.Runner.Run(ctx, cmd); err != nil {
			if errors.Is(err, shell.ErrNotInstalled) {
				return fmt.Errorf("%w: %s: %w", types.ErrUnsupportedEnvironment, a.Strategy.Name(), err)
			}
			return fmt.Errorf("%w: %s: %w", types.ErrApplyCommandFailed, a.Strategy.Name(), err)
		}
	}
	return nil
}

// Name returns the strategy name.
func (a *CommandApplier) Name() string {
	return a.Strategy.Name()
}
