package applier

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"

	"github.com/mesh-intelligence/dw/internal/shell"
)

// DefaultWindowsHelper is the helper executable shipped next to the config
// directory on Windows.
const DefaultWindowsHelper = `external_builds\windows\WallpaperChanger.exe`

// fileURI renders an absolute path as a file:// URI.
func fileURI(absPath string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(absPath)}
	return u.String()
}

// GNOME sets both the light and dark picture URIs through gsettings.
type GNOME struct{}

func (GNOME) Name() string { return DesktopGNOME }

func (GNOME) Commands(absPath string) []shell.Command {
	uri := fileURI(absPath)
	return []shell.Command{
		{Name: "gsettings", Args: []string{"set", "org.gnome.desktop.background", "picture-uri", uri}},
		{Name: "gsettings", Args: []string{"set", "org.gnome.desktop.background", "picture-uri-dark", uri}},
	}
}

// KDE evaluates a Plasma shell script on every desktop.
type KDE struct{}

func (KDE) Name() string { return DesktopKDE }

func (KDE) Commands(absPath string) []shell.Command {
	script := fmt.Sprintf(`var ds = desktops();
for (var i = 0; i < ds.length; i++) {
    var d = ds[i];
    d.wallpaperPlugin = "org.kde.image";
    d.currentConfigGroup = Array("Wallpaper", "org.kde.image", "General");
    d.writeConfig("Image", %s);
}`, strconv.Quote(fileURI(absPath)))
	return []shell.Command{
		{Name: "qdbus", Args: []string{"org.kde.plasmashell", "/PlasmaShell", "org.kde.PlasmaShell.evaluateScript", script}},
	}
}

// XFCE sets the backdrop image path of the first monitor.
type XFCE struct{}

func (XFCE) Name() string { return DesktopXFCE }

func (XFCE) Commands(absPath string) []shell.Command {
	return []shell.Command{
		{Name: "xfconf-query", Args: []string{
			"--channel", "xfce4-desktop",
			"--property", "/backdrop/screen0/monitor0/image-path",
			"--set", absPath,
		}},
	}
}

// MacOS asks System Events to set the picture of every desktop.
type MacOS struct{}

func (MacOS) Name() string { return DesktopMacOS }

func (MacOS) Commands(absPath string) []shell.Command {
	script := `tell application "System Events" to tell every desktop to set picture to ` + strconv.Quote(absPath)
	return []shell.Command{{Name: "osascript", Args: []string{"-e", script}}}
}

// Windows calls the SystemParametersInfo helper executable.
type Windows struct {
	Helper string
}

func (Windows) Name() string { return DesktopWindows }

func (w Windows) Commands(absPath string) []shell.Command {
	helper := w.Helper
	if helper == "" {
		helper = DefaultWindowsHelper
	}
	return []shell.Command{{Name: helper, Args: []string{absPath}}}
}
