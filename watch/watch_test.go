package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIgnoredPaths(t *testing.T) {
	dir := t.TempDir()
	w, err := New([]string{dir}, time.Millisecond, []string{
		filepath.Join(dir, "dist"),
		filepath.Join(dir, ".cache.db"),
	})
	require.NoError(t, err)
	defer w.watcher.Close()

	assert.True(t, w.ignored(filepath.Join(dir, "dist")))
	assert.True(t, w.ignored(filepath.Join(dir, "dist", "index.html")))
	assert.True(t, w.ignored(filepath.Join(dir, ".cache.db")))
	assert.False(t, w.ignored(filepath.Join(dir, "distant")))
	assert.False(t, w.ignored(filepath.Join(dir, "content", "a.md")))
}

func TestWatcherSkipsHiddenAndIgnoredDirs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git", "objects"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "dist", "assets"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "content"), 0o755))

	w, err := New([]string{dir}, time.Millisecond, []string{filepath.Join(dir, "dist")})
	require.NoError(t, err)
	defer w.watcher.Close()

	assert.True(t, w.watched.Has(dir))
	assert.True(t, w.watched.Has(filepath.Join(dir, "content")))
	assert.False(t, w.watched.Has(filepath.Join(dir, ".git")))
	assert.False(t, w.watched.Has(filepath.Join(dir, "dist")))
}

func TestWatcherDebouncedRebuild(t *testing.T) {
	dir := t.TempDir()
	w, err := New([]string{dir}, 50*time.Millisecond, nil)
	require.NoError(t, err)

	var rebuilds atomic.Int32
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx, func(context.Context) error {
			rebuilds.Add(1)
			cancel()
			return nil
		})
	}()

	// A burst of writes must coalesce into one rebuild.
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "page.md"), []byte("v"), 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	<-done
	assert.Equal(t, int32(1), rebuilds.Load())
}
