package walker

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/aleister1102/leakscout/internal/config"
	"github.com/aleister1102/leakscout/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func collect(t *testing.T, w *Walker, root string) []models.FileRecord {
	t.Helper()
	records := make(chan models.FileRecord, 64)
	errCh := make(chan error, 1)
	go func() { errCh <- w.Walk(context.Background(), root, records) }()

	var got []models.FileRecord
	for record := range records {
		got = append(got, record)
	}
	require.NoError(t, <-errCh)

	sort.Slice(got, func(i, j int) bool { return got[i].Path < got[j].Path })
	return got
}

func pathsOf(records []models.FileRecord) []string {
	paths := make([]string, len(records))
	for i, r := range records {
		paths[i] = r.Path
	}
	return paths
}

func TestWalk_Recursive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "top.txt", []byte("top level\n"))
	writeFile(t, dir, "nested/deep/inner.txt", []byte("nested\n"))
	writeFile(t, dir, ".git/config", []byte("[core]\n"))

	w, err := NewWalker(config.NewDefaultWalkerConfig(), zerolog.Nop())
	require.NoError(t, err)

	got := collect(t, w, dir)
	assert.Equal(t, []string{
		filepath.Join(dir, "nested/deep/inner.txt"),
		filepath.Join(dir, "top.txt"),
	}, pathsOf(got))
}

func TestWalk_NonRecursive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "top.txt", []byte("top level\n"))
	writeFile(t, dir, "nested/inner.txt", []byte("nested\n"))

	cfg := config.NewDefaultWalkerConfig()
	cfg.Recursive = false
	w, err := NewWalker(cfg, zerolog.Nop())
	require.NoError(t, err)

	got := collect(t, w, dir)
	assert.Equal(t, []string{filepath.Join(dir, "top.txt")}, pathsOf(got))
}

func TestWalk_ExcludePatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep.txt", []byte("keep\n"))
	writeFile(t, dir, "skip.log", []byte("skip\n"))
	writeFile(t, dir, "vendor/lib.go", []byte("vendored\n"))

	cfg := config.NewDefaultWalkerConfig()
	cfg.ExcludePatterns = []string{`\.log$`, `/vendor/`}
	w, err := NewWalker(cfg, zerolog.Nop())
	require.NoError(t, err)

	got := collect(t, w, dir)
	assert.Equal(t, []string{filepath.Join(dir, "keep.txt")}, pathsOf(got))
}

func TestNewWalker_InvalidExcludePattern(t *testing.T) {
	cfg := config.NewDefaultWalkerConfig()
	cfg.ExcludePatterns = []string{"([unclosed"}

	_, err := NewWalker(cfg, zerolog.Nop())
	require.Error(t, err)
}

func TestWalk_BinaryDetection(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "text.txt", []byte("just text content\n"))
	// PNG magic bytes make this unambiguously binary.
	writeFile(t, dir, "image.png", []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x01})

	w, err := NewWalker(config.NewDefaultWalkerConfig(), zerolog.Nop())
	require.NoError(t, err)

	got := collect(t, w, dir)
	require.Len(t, got, 2)
	assert.True(t, got[0].IsBinary, "png not detected as binary")
	assert.False(t, got[1].IsBinary, "text file detected as binary")
	assert.Equal(t, []byte("just text content\n"), got[1].Content)
}

func TestWalk_OversizedFileBecomesReadError(t *testing.T) {
	dir := t.TempDir()
	cfg := config.NewDefaultWalkerConfig()
	cfg.MaxFileSizeMB = 1
	writeFile(t, dir, "huge.txt", make([]byte, 2*1024*1024))
	writeFile(t, dir, "small.txt", []byte("fine\n"))

	w, err := NewWalker(cfg, zerolog.Nop())
	require.NoError(t, err)

	got := collect(t, w, dir)
	require.Len(t, got, 2)
	assert.NotEmpty(t, got[0].ReadError, "oversized file must carry a read error")
	assert.Nil(t, got[0].Content)
	assert.Empty(t, got[1].ReadError)
}

func TestWalk_MissingRoot(t *testing.T) {
	w, err := NewWalker(config.NewDefaultWalkerConfig(), zerolog.Nop())
	require.NoError(t, err)

	records := make(chan models.FileRecord, 1)
	err = w.Walk(context.Background(), filepath.Join(t.TempDir(), "absent"), records)
	require.Error(t, err)

	// The channel is closed even on failure so the consumer never blocks.
	_, open := <-records
	assert.False(t, open)
}

func TestWalk_FileRootRejected(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "file.txt", []byte("content\n"))

	w, err := NewWalker(config.NewDefaultWalkerConfig(), zerolog.Nop())
	require.NoError(t, err)

	records := make(chan models.FileRecord, 1)
	err = w.Walk(context.Background(), path, records)
	require.Error(t, err)
}

func TestWalk_CancelledContextStopsProduction(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 20; i++ {
		writeFile(t, dir, filepath.Join("sub", string(rune('a'+i))+".txt"), []byte("content\n"))
	}

	w, err := NewWalker(config.NewDefaultWalkerConfig(), zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// An unbuffered channel with no consumer would deadlock if production
	// ignored cancellation.
	records := make(chan models.FileRecord)
	require.NoError(t, w.Walk(ctx, dir, records))
	for range records {
	}
}
