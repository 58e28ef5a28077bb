package types

import (
	"fmt"
	"strings"
	"time"
)

// Preset is the unit used to express the automatic-rotation interval.
type Preset string

// Supported presets. The JSON form is the upper-case name.
const (
	PresetMinute Preset = "MINUTE"
	PresetHour   Preset = "HOUR"
	PresetDay    Preset = "DAY"
)

// presetRanges holds the inclusive interval bounds accepted per preset.
var presetRanges = map[Preset][2]int{
	PresetMinute: {1, 59},
	PresetHour:   {1, 23},
	PresetDay:    {1, 31},
}

// ParsePreset maps user input (minute, hour, day in any case) to a Preset.
func ParsePreset(s string) (Preset, error) {
	p := Preset(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := presetRanges[p]; !ok {
		return "", fmt.Errorf("%w: %q (want minute, hour or day)", ErrInvalidPreset, s)
	}
	return p, nil
}

// CurrentWallpaper records the wallpaper currently applied and where it sits
// in the cycle. When Child is false, Path equals Candidates[Index] and
// SubIndex is 0. When Child is true, Path is the SubIndex-th image of the
// sorted listing of the directory Candidates[Index].
type CurrentWallpaper struct {
	Path     string    `json:"path" yaml:"path" toml:"path"`
	DateSet  time.Time `json:"date_set" yaml:"date_set" toml:"date_set"`
	Child    bool      `json:"child" yaml:"child" toml:"child"`
	Index    int       `json:"index" yaml:"index" toml:"index"`
	SubIndex int       `json:"sub_index" yaml:"sub_index" toml:"sub_index"`
}

// IsUnset reports whether nothing has been applied from the cycle yet.
func (w CurrentWallpaper) IsUnset() bool {
	return w.Path == ""
}

// TimeConfig is the rotation schedule.
type TimeConfig struct {
	Preset   Preset `json:"preset" yaml:"preset" toml:"preset"`
	Interval int    `json:"interval" yaml:"interval" toml:"interval"`
}

// Validate checks that the preset is known and the interval lies inside the
// preset's range.
func (tc TimeConfig) Validate() error {
	r, ok := presetRanges[tc.Preset]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidPreset, tc.Preset)
	}
	if tc.Interval < r[0] || tc.Interval > r[1] {
		return fmt.Errorf("%w: %d for %s (want %d..%d)", ErrInvalidInterval, tc.Interval, tc.Preset, r[0], r[1])
	}
	return nil
}

// Config is the persisted root document.
type Config struct {
	ActualWallpaper CurrentWallpaper `json:"actual_wallpaper" yaml:"actual_wallpaper" toml:"actual_wallpaper"`
	TimeConfig      TimeConfig       `json:"time_config" yaml:"time_config" toml:"time_config"`
	Candidates      []string         `json:"candidates" yaml:"candidates" toml:"candidates"`
}

// NewDefaultConfig returns the document written by init: nothing applied,
// DAY/1 rotation and an empty cycle.
func NewDefaultConfig(now time.Time) Config {
	return Config{
		ActualWallpaper: CurrentWallpaper{DateSet: now},
		TimeConfig:      TimeConfig{Preset: PresetDay, Interval: 1},
		Candidates:      []string{},
	}
}

// Validate checks the structural invariants that do not need the file system.
func (c Config) Validate() error {
	if err := c.TimeConfig.Validate(); err != nil {
		return err
	}
	w := c.ActualWallpaper
	if w.Index < 0 || w.SubIndex < 0 {
		return fmt.Errorf("%w: negative index", ErrIndexOutOfRange)
	}
	if len(c.Candidates) > 0 && w.Index >= len(c.Candidates) {
		return fmt.Errorf("%w: index %d with %d candidates", ErrIndexOutOfRange, w.Index, len(c.Candidates))
	}
	return nil
}

// Clone returns a deep copy so callers can mutate the candidate list freely.
func (c Config) Clone() Config {
	out := c
	out.Candidates = append([]string{}, c.Candidates...)
	return out
}

// IndexOf returns the position of the first candidate equal to path, or -1.
func (c Config) IndexOf(path string) int {
	for i, cand := range c.Candidates {
		if cand == path {
			return i
		}
	}
	return -1
}
