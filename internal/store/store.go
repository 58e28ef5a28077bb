// Package store loads and persists the dw state document (config.json).
// Writes replace the whole file through a temp file, fsync, and rename, so a
// reader never sees a half-written document. There is no locking between
// processes: the last writer wins.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/mesh-intelligence/dw/pkg/types"
)

// Store is the state file at a fixed path.
type Store struct {
	path string
	now  func() time.Time
}

// New returns a Store for the file at path.
func New(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// Path returns the state file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads and validates the state file. A missing file returns
// types.ErrConfigNotFound; callers must run Init first.
func (s *Store) Load() (types.Config, error) {
	return readConfig(s.path)
}

// Save writes cfg as indented JSON, replacing the existing file.
func (s *Store) Save(cfg types.Config) error {
	if cfg.Candidates == nil {
		cfg.Candidates = []string{}
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return writeAtomic(s.path, data)
}

// Init creates the state file with the default document when it does not
// exist. An existing file is left untouched and created is false.
func (s *Store) Init() (created bool, err error) {
	_, err = os.Stat(s.path)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat config file: %w", err)
	}
	if err := s.Save(types.NewDefaultConfig(s.now())); err != nil {
		return false, err
	}
	return true, nil
}

// Import validates the document at src and installs it as the state file.
// Unlike Load, an index that does not fit the candidate list is rejected.
func (s *Store) Import(src string) (types.Config, error) {
	cfg, err := readConfig(src)
	if err != nil {
		return types.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("%w: %s: %v", types.ErrConfigParse, src, err)
	}
	if err := s.Save(cfg); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

func readConfig(path string) (types.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return types.Config{}, fmt.Errorf("%w: %s (run `dw init`)", types.ErrConfigNotFound, path)
		}
		return types.Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	var cfg types.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return types.Config{}, fmt.Errorf("%w: %s: %v", types.ErrConfigParse, path, err)
	}
	// Index drift is left to the navigator so `dw reset` can still repair it.
	if err := cfg.TimeConfig.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("%w: %s: %v", types.ErrConfigParse, path, err)
	}
	if cfg.Candidates == nil {
		cfg.Candidates = []string{}
	}
	return cfg, nil
}

// writeAtomic writes data to path using the temp-file, fsync, rename pattern.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing config: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
