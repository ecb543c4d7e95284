package docmill

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestOpenMarkdown(t *testing.T) {
	path := writeDoc(t, "notes.md", "# Title\n\nSome body text.\n")

	md, err := Open(path).MediaDir(t.TempDir()).Markdown()
	require.NoError(t, err)
	assert.Contains(t, md, "# Title")
}

func TestOpenChunks(t *testing.T) {
	text := strings.Repeat("sentence about nothing in particular. ", 80)
	path := writeDoc(t, "long.txt", text)

	chunks, err := Open(path).MediaDir(t.TempDir()).Chunks()
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	assert.Equal(t, 0, chunks[0].Index)
	for _, c := range chunks {
		assert.NotEmpty(t, c.Text)
	}
}

func TestChunkSizeOption(t *testing.T) {
	text := strings.Repeat("word ", 300)
	path := writeDoc(t, "long.txt", text)

	small, err := Open(path).MediaDir(t.TempDir()).ChunkSize(200).ChunkOverlap(20).Chunks()
	require.NoError(t, err)
	large, err := Open(path).MediaDir(t.TempDir()).NoChunking().Chunks()
	require.NoError(t, err)

	assert.Greater(t, len(small), len(large))
	assert.Len(t, large, 1)
}

func TestChainsAreIndependent(t *testing.T) {
	base := Open("doc.txt").ChunkSize(500)
	a := base.ChunkOverlap(50)
	b := base.ChunkOverlap(100)

	assert.Equal(t, 50, a.options.chunk.ChunkOverlap)
	assert.Equal(t, 100, b.options.chunk.ChunkOverlap)
	// The shared parent keeps its default overlap.
	assert.Equal(t, 100, base.options.chunk.ChunkOverlap)
	assert.Equal(t, 500, a.options.chunk.ChunkSize)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.txt")).MediaDir(t.TempDir()).Markdown()
	assert.Error(t, err)
}

func TestOpenEmptyFilename(t *testing.T) {
	_, err := Open("").Markdown()
	assert.Error(t, err)
}

func TestMustPanics(t *testing.T) {
	assert.Panics(t, func() {
		Must(Open("").Markdown())
	})
	assert.Equal(t, 5, Must(5, nil))
}
