package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultTTL is how long a persisted snapshot stays valid.
const DefaultTTL = 24 * time.Hour

// Driver persists and restores session snapshots.
type Driver interface {
	// Save writes a snapshot, replacing any previous one.
	Save(ctx context.Context, snap *Snapshot) error

	// Load restores the latest snapshot. Returns nil, nil when no valid
	// snapshot exists (absent or expired).
	Load(ctx context.Context) (*Snapshot, error)

	// Clear removes the persisted snapshot, if any.
	Clear(ctx context.Context) error

	// Close releases driver resources.
	Close() error
}

// FileDriver implements Driver against a single JSON file.
type FileDriver struct {
	path string
	ttl  time.Duration
}

// NewFileDriver creates a file driver writing to path. A zero ttl falls
// back to DefaultTTL.
func NewFileDriver(path string, ttl time.Duration) *FileDriver {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &FileDriver{path: path, ttl: ttl}
}

// Path returns the snapshot file path.
func (d *FileDriver) Path() string {
	return d.path
}

// Save writes the snapshot to a temp file in the same directory and
// renames it into place, so readers only ever see complete snapshots.
func (d *FileDriver) Save(_ context.Context, snap *Snapshot) error {
	if snap == nil {
		return errors.New("cannot save nil snapshot")
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}

	dir := filepath.Dir(d.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(d.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), d.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing snapshot: %w", err)
	}

	return nil
}

// Load reads the snapshot file if it exists and is younger than the TTL.
// An expired file is deleted and treated as absent.
func (d *FileDriver) Load(_ context.Context) (*Snapshot, error) {
	info, err := os.Stat(d.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("checking snapshot: %w", err)
	}

	if time.Since(info.ModTime()) > d.ttl {
		if err := os.Remove(d.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("removing expired snapshot: %w", err)
		}
		return nil, nil
	}

	data, err := os.ReadFile(d.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	snap := &Snapshot{}
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}

	return snap, nil
}

// Clear removes the snapshot file. Returns nil if it doesn't exist.
func (d *FileDriver) Clear(_ context.Context) error {
	if err := os.Remove(d.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing snapshot: %w", err)
	}
	return nil
}

// Close is a no-op for the file driver.
func (d *FileDriver) Close() error {
	return nil
}
