// Package cycle computes the next, previous, or first wallpaper of a cycle
// whose candidates are image files or directories of images.
//
// A Navigator never mutates the Config it is given and never touches the
// state file; it returns the new CurrentWallpaper and leaves persisting it to
// the caller.
package cycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/dw/internal/gallery"
	"github.com/mesh-intelligence/dw/pkg/types"
)

// Lister resolves candidates against the file system.
type Lister interface {
	// IsDir reports whether path is a directory. Returns
	// types.ErrPathNotFound when path does not exist.
	IsDir(path string) (bool, error)

	// Images returns the sorted image listing of dir.
	Images(dir string) ([]string, error)
}

// Navigator walks the cycle.
type Navigator struct {
	lister Lister
	now    func() time.Time
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithClock overrides the clock used for DateSet.
func WithClock(now func() time.Time) Option {
	return func(n *Navigator) { n.now = now }
}

// New returns a Navigator backed by lister. A nil lister uses the local file
// system.
func New(lister Lister, opts ...Option) *Navigator {
	if lister == nil {
		lister = gallery.NewLister()
	}
	n := &Navigator{lister: lister, now: time.Now}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

type direction int

const (
	forward  direction = 1
	backward direction = -1
)

// Next returns the wallpaper after the current one. Inside a directory it
// steps to the next image; past the last image it moves to the following
// candidate, wrapping from the last candidate to the first. A current
// directory that is gone or has been emptied counts as exhausted and is
// skipped rather than reported as types.ErrEmptyDirectory; that error is only
// returned when landing on an empty directory.
func (n *Navigator) Next(cfg types.Config) (types.CurrentWallpaper, error) {
	return n.step(cfg, forward)
}

// Previous returns the wallpaper before the current one. Moving back into a
// directory candidate lands on its last image.
func (n *Navigator) Previous(cfg types.Config) (types.CurrentWallpaper, error) {
	return n.step(cfg, backward)
}

// Reset returns the first wallpaper of the cycle: the first candidate, or
// the first image of it when it is a directory.
func (n *Navigator) Reset(cfg types.Config) (types.CurrentWallpaper, error) {
	if len(cfg.Candidates) == 0 {
		return types.CurrentWallpaper{}, types.ErrEmptyCycle
	}
	return n.land(cfg.Candidates, 0, forward)
}

func (n *Navigator) step(cfg types.Config, dir direction) (types.CurrentWallpaper, error) {
	count := len(cfg.Candidates)
	if count == 0 {
		return types.CurrentWallpaper{}, types.ErrEmptyCycle
	}

	cur := cfg.ActualWallpaper
	if cur.IsUnset() {
		return n.Reset(cfg)
	}
	if cur.Index < 0 || cur.Index >= count {
		return types.CurrentWallpaper{}, fmt.Errorf("%w: index %d with %d candidates", types.ErrIndexOutOfRange, cur.Index, count)
	}

	if cur.Child {
		listing, pos, ok, err := n.position(cfg.Candidates[cur.Index], cur)
		if err != nil {
			return types.CurrentWallpaper{}, err
		}
		if ok {
			target := pos + int(dir)
			if target >= 0 && target < len(listing) {
				return n.child(cur.Index, target, listing), nil
			}
		}
	}

	next := (cur.Index + int(dir) + count) % count
	return n.land(cfg.Candidates, next, dir)
}

// position re-derives where cur sits in its directory. ok is false when the
// directory is gone, no longer a directory, or empty; the caller then treats
// it as exhausted.
func (n *Navigator) position(dirPath string, cur types.CurrentWallpaper) (listing []string, pos int, ok bool, err error) {
	isDir, err := n.lister.IsDir(dirPath)
	if err != nil {
		if errors.Is(err, types.ErrPathNotFound) {
			return nil, 0, false, nil
		}
		return nil, 0, false, err
	}
	if !isDir {
		return nil, 0, false, nil
	}

	listing, err = n.lister.Images(dirPath)
	if err != nil {
		if errors.Is(err, types.ErrPathNotFound) {
			return nil, 0, false, nil
		}
		return nil, 0, false, err
	}
	if len(listing) == 0 {
		return nil, 0, false, nil
	}

	if idx, found := gallery.Locate(cur.Path, listing); found {
		return listing, idx, true, nil
	}
	return listing, clamp(cur.SubIndex, 0, len(listing)-1), true, nil
}

// land resolves candidates[idx]. Entering a directory going forward picks its
// first image, going backward its last.
func (n *Navigator) land(candidates []string, idx int, dir direction) (types.CurrentWallpaper, error) {
	path := candidates[idx]
	isDir, err := n.lister.IsDir(path)
	if err != nil {
		return types.CurrentWallpaper{}, err
	}
	if !isDir {
		return types.CurrentWallpaper{
			Path:    path,
			DateSet: n.now(),
			Index:   idx,
		}, nil
	}

	listing, err := n.lister.Images(path)
	if err != nil {
		return types.CurrentWallpaper{}, err
	}
	if len(listing) == 0 {
		return types.CurrentWallpaper{}, fmt.Errorf("%w: %s", types.ErrEmptyDirectory, path)
	}

	sub := 0
	if dir == backward {
		sub = len(listing) - 1
	}
	return n.child(idx, sub, listing), nil
}

func (n *Navigator) child(idx, sub int, listing []string) types.CurrentWallpaper {
	return types.CurrentWallpaper{
		Path:     listing[sub],
		DateSet:  n.now(),
		Child:    true,
		Index:    idx,
		SubIndex: sub,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
