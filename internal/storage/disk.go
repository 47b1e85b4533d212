// Package storage keeps transient uploads and generated artifacts on
// local disk, keyed by random names. It is not a durable store: every
// entry is owned by one request or job and removed once that owner is
// done with it.
package storage

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

type Store struct {
	uploadsDir string
	outputsDir string
}

// NewStore creates the uploads/ and outputs/ subdirectories under root.
func NewStore(root string) (*Store, error) {
	s := &Store{
		uploadsDir: filepath.Join(root, "uploads"),
		outputsDir: filepath.Join(root, "outputs"),
	}
	for _, dir := range []string{s.uploadsDir, s.outputsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return s, nil
}

// SaveUpload copies r to a uniquely named file with the given extension
// and returns its path.
func (s *Store) SaveUpload(r io.Reader, ext string) (string, error) {
	path := filepath.Join(s.uploadsDir, uuid.NewString()+ext)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close upload: %w", err)
	}
	return path, nil
}

// OutputPath returns the path an artifact with the given name is written to.
func (s *Store) OutputPath(name string) string {
	return filepath.Join(s.outputsDir, name)
}

// Remove is best-effort cleanup. Failures are logged, never returned, so
// they cannot mask the primary result of the owning request.
func (s *Store) Remove(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to remove scratch file", "path", path, "error", err)
	}
}
