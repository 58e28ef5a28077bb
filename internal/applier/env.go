package applier

import "fmt"

// SessionEnv returns the variables a desktop command needs when dw runs
// outside the graphical session, e.g. from cron. Variables already set are
// left alone.
func SessionEnv(goos string, getenv func(string) string, uid int) []string {
	if goos != "linux" {
		return nil
	}
	var env []string
	if getenv("DBUS_SESSION_BUS_ADDRESS") == "" {
		env = append(env, fmt.Sprintf("DBUS_SESSION_BUS_ADDRESS=unix:path=/run/user/%d/bus", uid))
	}
	if getenv("DISPLAY") == "" && getenv("WAYLAND_DISPLAY") == "" {
		env = append(env, "DISPLAY=:0")
	}
	return env
}
