package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestRoots(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.h")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	roots, err := Roots([]string{dir, file})
	require.NoError(t, err)
	assert.Equal(t, []string{dir}, roots)

	_, err = Roots([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)
}

func TestIgnored(t *testing.T) {
	assert.True(t, ignored("/src/.a.h.swp"))
	assert.True(t, ignored("/src/.#a.h"))
	assert.True(t, ignored("/src/a.h~"))
	assert.False(t, ignored("/src/a.h"))
}

func TestHeaders(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	changes := make(chan []string, 4)
	done := make(chan error, 1)
	go func() {
		done <- Headers(ctx, discard, []string{dir}, Options{
			Debounce: 50 * time.Millisecond,
			Match:    func(p string) bool { return strings.HasSuffix(p, ".h") },
		}, func(changed []string) { changes <- changed })
	}()

	header := filepath.Join(dir, "vec3.h")
	// Give the watcher time to register the root.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(header, []byte("struct Vec3 {};"), 0o644))

	select {
	case changed := <-changes:
		assert.Equal(t, []string{header}, changed)
	case <-ctx.Done():
		t.Fatal("no change reported")
	}

	cancel()
	assert.NoError(t, <-done)
}
