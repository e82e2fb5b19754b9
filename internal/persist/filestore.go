// internal/persist/filestore.go
package persist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps the snapshot in a single JSON file with rolling backups
// next to it (snapshot.json.bak1 is the most recent previous generation).
type FileStore struct {
	path      string
	retention int
}

// NewFileStore writes snapshots to path and keeps up to retention backups.
func NewFileStore(path string, retention int) *FileStore {
	if retention < 0 {
		retention = 0
	}
	return &FileStore{path: path, retention: retention}
}

func (fs *FileStore) backupPath(n int) string {
	return fmt.Sprintf("%s.bak%d", fs.path, n)
}

// Save writes data to a temporary file, verifies the temp file deserializes
// to a well-formed document, rotates the previous snapshot into the backup
// chain, and atomically renames the temp file into place.
func (fs *FileStore) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fs.path), 0o755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot temp file: %w", err)
	}

	// Read back and verify before the previous good snapshot is touched.
	written, err := os.ReadFile(tmp)
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("re-reading snapshot temp file: %w", err)
	}
	if _, err := DecodeDocument(written); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("verifying snapshot temp file: %w", err)
	}

	fs.rotate()

	if err := os.Rename(tmp, fs.path); err != nil {
		return fmt.Errorf("replacing snapshot file: %w", err)
	}
	return nil
}

// rotate shifts the backup chain by one and slides the current snapshot into
// slot 1. Backups beyond the retention count are pruned.
func (fs *FileStore) rotate() {
	if fs.retention == 0 {
		return
	}
	os.Remove(fs.backupPath(fs.retention))
	for i := fs.retention - 1; i >= 1; i-- {
		os.Rename(fs.backupPath(i), fs.backupPath(i+1))
	}
	if _, err := os.Stat(fs.path); err == nil {
		os.Rename(fs.path, fs.backupPath(1))
	}
}

// Load returns the current snapshot followed by its backups, newest first.
// A missing snapshot file is not an error; it just yields fewer candidates.
func (fs *FileStore) Load(ctx context.Context) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out [][]byte
	paths := []string{fs.path}
	for i := 1; i <= fs.retention; i++ {
		paths = append(paths, fs.backupPath(i))
	}
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		out = append(out, data)
	}
	return out, nil
}
