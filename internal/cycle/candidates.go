package cycle

import (
	"fmt"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/mesh-intelligence/dw/pkg/types"
)

// Add returns cfg with path appended to the candidates. duplicate reports
// whether path was already listed; it is appended anyway.
func Add(cfg types.Config, path string) (out types.Config, duplicate bool) {
	out = cfg.Clone()
	duplicate = mapset.NewSet(cfg.Candidates...).Contains(path)
	out.Candidates = append(out.Candidates, path)
	return out, duplicate
}

// Remove returns cfg without the first candidate equal to path and with the
// current position adjusted:
//
//   - removed before the current index: the index shifts down by one.
//   - removed at the current index: the state points at the previous
//     candidate as a plain entry, so Next lands on the candidate that took
//     the removed slot. Previous from there goes one further back, skipping
//     the candidate the state points at.
//   - list emptied: the state is reset to nothing applied.
func Remove(cfg types.Config, path string, now time.Time) (types.Config, error) {
	at := cfg.IndexOf(path)
	if at < 0 {
		return types.Config{}, fmt.Errorf("%w: %s is not a candidate", types.ErrPathNotFound, path)
	}

	out := cfg.Clone()
	out.Candidates = append(out.Candidates[:at], out.Candidates[at+1:]...)
	cur := out.ActualWallpaper

	switch {
	case len(out.Candidates) == 0:
		out.ActualWallpaper = types.CurrentWallpaper{DateSet: now}
	case cur.IsUnset():
		out.ActualWallpaper.Index = 0
		out.ActualWallpaper.SubIndex = 0
	case at < cur.Index:
		out.ActualWallpaper.Index--
	case at == cur.Index:
		prev := (at - 1 + len(out.Candidates)) % len(out.Candidates)
		out.ActualWallpaper = types.CurrentWallpaper{
			Path:    out.Candidates[prev],
			DateSet: cur.DateSet,
			Index:   prev,
		}
	}
	return out, nil
}
