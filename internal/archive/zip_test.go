package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundleCreatesFlatArchive(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "book.zip")

	err := Bundle(zipPath, func(scratch string) ([]string, error) {
		var files []string
		for i := 1; i <= 3; i++ {
			p := filepath.Join(scratch, fmt.Sprintf("chapter_%d.wav", i))
			require.NoError(t, os.WriteFile(p, []byte("audio"), 0o644))
			files = append(files, p)
		}
		return files, nil
	})
	require.NoError(t, err)

	zr, err := zip.OpenReader(zipPath)
	require.NoError(t, err)
	defer zr.Close()

	require.Len(t, zr.File, 3)
	for i, f := range zr.File {
		assert.Equal(t, fmt.Sprintf("chapter_%d.wav", i+1), f.Name)
	}

	assertNoScratchDirs(t, dir)
}

func TestBundleRemovesScratchOnFailure(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "book.zip")

	var scratchSeen string
	err := Bundle(zipPath, func(scratch string) ([]string, error) {
		scratchSeen = scratch
		return nil, errors.New("chapter synthesis failed")
	})
	require.Error(t, err)
	require.NotEmpty(t, scratchSeen)

	_, statErr := os.Stat(scratchSeen)
	assert.True(t, os.IsNotExist(statErr), "scratch dir should be gone")

	_, statErr = os.Stat(zipPath)
	assert.True(t, os.IsNotExist(statErr), "partial zip should be gone")

	assertNoScratchDirs(t, dir)
}

func assertNoScratchDirs(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, e.IsDir(), "leftover scratch dir %s", e.Name())
	}
}
