// Package gallery implements the directory listing contract used by the
// wallpaper cycle: content-sniffed image detection, a deterministic sorted
// listing per directory, and lookup of an image inside a listing.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/dw/pkg/types"
)

// IsImage reports whether the file content is detected as an image/* type.
// The extension is ignored.
func IsImage(path string) (bool, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, fmt.Errorf("%w: %s", types.ErrPathNotFound, path)
		}
		return false, fmt.Errorf("detect type of %s: %w", path, err)
	}
	return isImageMIME(mt), nil
}

func isImageMIME(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "image/") {
			return true
		}
	}
	return false
}

// Lister lists directories on the local file system.
type Lister struct {
	// Workers bounds concurrent content sniffing. Zero means GOMAXPROCS.
	Workers int
}

// NewLister returns a Lister using one sniffing worker per CPU.
func NewLister() *Lister {
	return &Lister{}
}

// IsDir reports whether path is a directory. A missing path returns
// types.ErrPathNotFound.
func (l *Lister) IsDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, fmt.Errorf("%w: %s", types.ErrPathNotFound, path)
		}
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.IsDir(), nil
}

// Images returns the image files directly inside dir, sorted by path
// (byte-wise, case-sensitive). Subdirectories are not descended. Entries
// that vanish or are unreadable while sniffing are left out.
func (l *Lister) Images(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", types.ErrPathNotFound, dir)
		}
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	candidates := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		candidates = append(candidates, filepath.Join(dir, e.Name()))
	}

	keep := make([]bool, len(candidates))
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(l.workers())
	for i, p := range candidates {
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			ok, err := sniffRegular(p)
			if err != nil {
				return err
			}
			keep[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	images := make([]string, 0, len(candidates))
	for i, p := range candidates {
		if keep[i] {
			images = append(images, p)
		}
	}
	slices.Sort(images)
	return images, nil
}

func (l *Lister) workers() int {
	if l.Workers > 0 {
		return l.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// sniffRegular follows symlinks and sniffs regular files only.
func sniffRegular(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return false, nil
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return false, nil
		}
		return false, fmt.Errorf("detect type of %s: %w", path, err)
	}
	return isImageMIME(mt), nil
}

// ListImages lists dir with a default Lister.
func ListImages(dir string) ([]string, error) {
	return NewLister().Images(dir)
}

// Locate returns the index of the listing entry whose file name matches the
// file name of path. The directory part is ignored so a candidate written
// with or without a trailing separator still matches.
func Locate(path string, listing []string) (int, bool) {
	if path == "" {
		return 0, false
	}
	name := filepath.Base(path)
	for i, p := range listing {
		if filepath.Base(p) == name {
			return i, true
		}
	}
	return 0, false
}

// CheckCandidate validates path for the candidate list: it must exist, a file
// must be an image, and a directory must hold at least one image.
func (l *Lister) CheckCandidate(path string) error {
	isDir, err := l.IsDir(path)
	if err != nil {
		return err
	}
	if !isDir {
		ok, err := IsImage(path)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s", types.ErrNotAnImage, path)
		}
		return nil
	}
	images, err := l.Images(path)
	if err != nil {
		return err
	}
	if len(images) == 0 {
		return fmt.Errorf("%w: %s", types.ErrEmptyDirectory, path)
	}
	return nil
}
