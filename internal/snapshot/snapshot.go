// Package snapshot reads and writes the static JSON snapshot the dashboard is
// served from.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/naka-gawa/octotrends/internal/domain"
	"github.com/spf13/afero"
)

// File names inside a snapshot directory.
const (
	RepoDataFile       = "repo-data.json"
	LastUpdatedFile    = "last_updated.json"
	LanguageColorsFile = "language-colors.json"
)

// ErrNotFound is returned when a directory holds no repo-data.json.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is the content of a snapshot directory.
type Snapshot struct {
	Records     []domain.RawRepoRecord
	LastUpdated string
	// Colors maps a language name to its hex colour. It may be empty.
	Colors map[string]string
}

type lastUpdated struct {
	LastUpdated string `json:"last_updated"`
}

// Store reads and writes snapshots below a directory of a filesystem.
type Store struct {
	fs  afero.Fs
	dir string
}

// NewStore creates a Store on the OS filesystem.
func NewStore(dir string) *Store {
	return NewStoreFs(afero.NewOsFs(), dir)
}

// NewStoreFs creates a Store on fsys.
func NewStoreFs(fsys afero.Fs, dir string) *Store {
	return &Store{fs: fsys, dir: dir}
}

// Dir returns the snapshot directory.
func (s *Store) Dir() string { return s.dir }

// Load reads the snapshot. last_updated.json and language-colors.json are
// optional.
func (s *Store) Load() (*Snapshot, error) {
	snap := &Snapshot{Colors: map[string]string{}}

	if err := s.readJSON(RepoDataFile, &snap.Records); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", filepath.Join(s.dir, RepoDataFile), ErrNotFound)
		}
		return nil, err
	}

	var lu lastUpdated
	if err := s.readJSON(LastUpdatedFile, &lu); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	snap.LastUpdated = lu.LastUpdated

	if err := s.readJSON(LanguageColorsFile, &snap.Colors); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return snap, nil
}

// Write stores snap, creating the directory when needed. An empty
// LastUpdated is stamped with now in UTC.
func (s *Store) Write(snap *Snapshot, now time.Time) error {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot dir: %w", err)
	}
	records := snap.Records
	if records == nil {
		records = []domain.RawRepoRecord{}
	}
	if err := s.writeJSON(RepoDataFile, records); err != nil {
		return err
	}

	stamp := snap.LastUpdated
	if stamp == "" {
		stamp = now.UTC().Format(time.RFC3339)
	}
	if err := s.writeJSON(LastUpdatedFile, lastUpdated{LastUpdated: stamp}); err != nil {
		return err
	}

	colors := snap.Colors
	if colors == nil {
		colors = map[string]string{}
	}
	return s.writeJSON(LanguageColorsFile, colors)
}

func (s *Store) readJSON(name string, v any) error {
	b, err := afero.ReadFile(s.fs, filepath.Join(s.dir, name))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return nil
}

// writeJSON writes through a temporary file so readers never see half a file.
func (s *Store) writeJSON(name string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, b, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
