package scheduler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/dw/pkg/types"
)

// cronTag marks the line dw owns in a crontab.
const cronTag = "# " + JobName

// CronSchedule returns the five cron fields for tc.
//
//	MINUTE n: */n * * * *
//	HOUR n:   0 */n * * *
//	DAY n:    0 0 */n * *
func CronSchedule(tc types.TimeConfig) (string, error) {
	if err := tc.Validate(); err != nil {
		return "", err
	}
	switch tc.Preset {
	case types.PresetMinute:
		return fmt.Sprintf("*/%d * * * *", tc.Interval), nil
	case types.PresetHour:
		return fmt.Sprintf("0 */%d * * *", tc.Interval), nil
	default:
		return fmt.Sprintf("0 0 */%d * *", tc.Interval), nil
	}
}

// CronCommand renders action as a sh command line.
func CronCommand(action Action) string {
	parts := []string{shellQuote(action.Binary)}
	for _, a := range action.Args {
		parts = append(parts, shellQuote(a))
	}
	cmd := strings.Join(parts, " ")
	if action.WorkDir != "" {
		cmd = "cd " + shellQuote(action.WorkDir) + " && " + cmd
	}
	if action.LogFile != "" {
		cmd += " >> " + shellQuote(action.LogFile) + " 2>&1"
	}
	return cmd
}

// CronLine returns the tagged crontab line for tc and action.
func CronLine(tc types.TimeConfig, action Action) (string, error) {
	sched, err := CronSchedule(tc)
	if err != nil {
		return "", err
	}
	// cron turns a bare % into a newline.
	cmd := strings.ReplaceAll(CronCommand(action), "%", `\%`)
	return sched + " " + cmd + " " + cronTag, nil
}

// SchtasksCreateArgs returns the schtasks arguments that create (or replace)
// the task for tc.
func SchtasksCreateArgs(tc types.TimeConfig, task string, action Action) ([]string, error) {
	if err := tc.Validate(); err != nil {
		return nil, err
	}
	var sc string
	switch tc.Preset {
	case types.PresetMinute:
		sc = "MINUTE"
	case types.PresetHour:
		sc = "HOURLY"
	default:
		sc = "DAILY"
	}
	return []string{
		"/create", "/tn", task,
		"/tr", SchtasksCommand(action),
		"/sc", sc, "/mo", strconv.Itoa(tc.Interval),
		"/it", "/f",
	}, nil
}

// SchtasksCommand renders action for the /tr argument.
func SchtasksCommand(action Action) string {
	parts := []string{winQuote(action.Binary)}
	for _, a := range action.Args {
		parts = append(parts, winQuote(a))
	}
	cmd := strings.Join(parts, " ")
	if action.WorkDir != "" {
		cmd = "cmd /c cd /d " + winQuote(action.WorkDir) + " && " + cmd
	}
	if action.LogFile != "" {
		cmd += " >> " + winQuote(action.LogFile) + " 2>&1"
	}
	return cmd
}

func winQuote(s string) string {
	if s == "" || strings.ContainsAny(s, " \t&()^") {
		return `"` + s + `"`
	}
	return s
}

// StartInterval returns the launchd StartInterval in seconds for tc.
func StartInterval(tc types.TimeConfig) (int, error) {
	if err := tc.Validate(); err != nil {
		return 0, err
	}
	switch tc.Preset {
	case types.PresetMinute:
		return tc.Interval * 60, nil
	case types.PresetHour:
		return tc.Interval * 3600, nil
	default:
		return tc.Interval * 86400, nil
	}
}

// LaunchdPlist returns the LaunchAgent property list for tc and action.
func LaunchdPlist(tc types.TimeConfig, label string, action Action) ([]byte, error) {
	interval, err := StartInterval(tc)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">` + "\n")
	b.WriteString(`<plist version="1.0">` + "\n")
	b.WriteString("<dict>\n")
	writeKey(&b, "Label")
	writeString(&b, label)
	writeKey(&b, "ProgramArguments")
	writeArray(&b, append([]string{action.Binary}, action.Args...))
	if action.WorkDir != "" {
		writeKey(&b, "WorkingDirectory")
		writeString(&b, action.WorkDir)
	}
	writeKey(&b, "StartInterval")
	fmt.Fprintf(&b, "<integer>%d</integer>\n", interval)
	if action.LogFile != "" {
		writeKey(&b, "StandardOutPath")
		writeString(&b, action.LogFile)
		writeKey(&b, "StandardErrorPath")
		writeString(&b, action.LogFile)
	}
	writeKey(&b, "RunAtLoad")
	b.WriteString("<false/>\n")
	b.WriteString("</dict>\n</plist>\n")
	return []byte(b.String()), nil
}

func writeKey(b *strings.Builder, key string) {
	fmt.Fprintf(b, "<key>%s</key>\n", xmlEscape(key))
}

func writeString(b *strings.Builder, value string) {
	fmt.Fprintf(b, "<string>%s</string>\n", xmlEscape(value))
}

func writeArray(b *strings.Builder, values []string) {
	b.WriteString("<array>\n")
	for _, value := range values {
		writeString(b, value)
	}
	b.WriteString("</array>\n")
}

func xmlEscape(value string) string {
	replacer := strings.NewReplacer(
		`&`, "&amp;",
		`<`, "&lt;",
		`>`, "&gt;",
		`"`, "&quot;",
		`'`, "&apos;",
	)
	return replacer.Replace(value)
}
