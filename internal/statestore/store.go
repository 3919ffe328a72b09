package statestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dreamware/orcd/internal/domain"
)

// snapshotFile is the on-disk shape of a persisted Desired-State Table: a
// self-describing record with the time it was written plus every entry, so
// a reader never has to guess the schema version from the entry count.
type snapshotFile struct {
	SavedAt time.Time              `json:"saved_at"`
	Entries []domain.DesiredState `json:"entries"`
}

// Store persists a DesiredStateTable snapshot to, and loads it back from, a
// single file on disk. Writes are atomic: Save always writes to a temp path
// in the same directory and renames over the canonical path, so a crash
// mid-write never leaves a torn file in its place.
type Store struct {
	path string
}

// New returns a Store backed by path. The containing directory is created
// on first Save if missing.
func New(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted snapshot. A missing file (first run) returns an
// empty entry slice and a nil error — there is nothing to restore yet, not
// a failure. A present-but-malformed file is returned as an error, so the
// caller can tell a corrupt snapshot from a first run; cmd/scheduler logs
// that error and starts with an empty table.
func (s *Store) Load() ([]domain.DesiredState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var snap snapshotFile
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("state file %s is corrupt: %w", s.path, err)
	}
	return snap.Entries, nil
}

// Save writes entries to the state file atomically: marshal, write to a
// temp file in the same directory, fsync, close, then rename over the
// canonical path. The temp file is removed if any step before the rename
// fails, so a failed Save never leaves stray temp files behind.
func (s *Store) Save(entries []domain.DesiredState) (err error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	snap := snapshotFile{SavedAt: time.Now(), Entries: entries}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".orcd-state-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpPath := tmp.Name()

	ok := false
	defer func() {
		if !ok {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("rename temp state file: %w", err)
	}

	ok = true
	return nil
}
