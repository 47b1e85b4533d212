// Package archive packages per-chapter audio files into a single zip.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Bundle creates a zip at zipPath from files produced by write. write is
// handed a scratch directory (created next to zipPath) and returns the
// files to include; entries are stored by base filename only, so chapter
// files named by 1-based index keep their order on extraction. The scratch
// directory is removed on every exit path, and a partially written zip is
// removed on failure.
func Bundle(zipPath string, write func(scratchDir string) ([]string, error)) (err error) {
	dir, err := os.MkdirTemp(filepath.Dir(zipPath), "narrato_chapters_*")
	if err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			// Best-effort: never mask the primary error.
			slog.Warn("failed to remove scratch dir", "dir", dir, "error", rmErr)
		}
		if err != nil {
			os.Remove(zipPath)
		}
	}()

	files, err := write(dir)
	if err != nil {
		return err
	}

	out, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	for _, file := range files {
		if err = addEntry(zw, file); err != nil {
			zw.Close()
			return err
		}
	}
	if err = zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	return out.Close()
}

func addEntry(zw *zip.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	w, err := zw.Create(filepath.Base(path))
	if err != nil {
		return fmt.Errorf("add %s: %w", filepath.Base(path), err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
