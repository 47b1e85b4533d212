package textextract

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFileRejectsUnsupportedExtension(t *testing.T) {
	_, err := ExtractFile("book.mobi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported(".txt"))
	assert.True(t, Supported(".EPUB"))
	assert.True(t, Supported(".pdf"))
	assert.False(t, Supported(".docx"))
	assert.False(t, Supported(""))
}

func TestExtractTXT(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("  Hello there.\nSecond line.  "), 0o644))

	doc, err := ExtractFile(path)
	require.NoError(t, err)
	require.Len(t, doc.Units, 1)
	assert.False(t, doc.Units[0].Heading)
	assert.Equal(t, "Hello there.\nSecond line.", doc.Units[0].Text)
	assert.Equal(t, "Hello there.\nSecond line.", doc.Text())
}

func TestExtractEPUB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.epub")
	writeEPUB(t, path, map[string]string{
		"OEBPS/ch1.xhtml": `<html><head><title>x</title></head><body>
			<h1>Chapter 1: The Start</h1>
			<p>First paragraph.</p>
			<p>Second   paragraph.</p>
			<h2>Chapter 2</h2>
			<p>More text.</p>
		</body></html>`,
		"OEBPS/style.css": "body {}",
	})

	doc, err := ExtractFile(path)
	require.NoError(t, err)
	require.Len(t, doc.Units, 4)

	assert.True(t, doc.Units[0].Heading)
	assert.Equal(t, "Chapter 1: The Start", doc.Units[0].Text)
	assert.False(t, doc.Units[1].Heading)
	assert.Equal(t, "First paragraph. Second paragraph.", doc.Units[1].Text)
	assert.True(t, doc.Units[2].Heading)
	assert.Equal(t, "Chapter 2", doc.Units[2].Text)
	assert.False(t, doc.Units[3].Heading)
	assert.Equal(t, "More text.", doc.Units[3].Text)
}

func writeEPUB(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}
