package output

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	w := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	path := filepath.Join(t.TempDir(), "lua", "LuaUsertypesVec3.cpp")

	res, err := w.Write(path, []byte("a"))
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, Sum([]byte("a")), res.Digest)

	info, err := os.Stat(path)
	require.NoError(t, err)
	mod := info.ModTime()

	res, err = w.Write(path, []byte("a"))
	require.NoError(t, err)
	assert.False(t, res.Changed)
	info, err = os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, mod, info.ModTime())

	res, err = w.Write(path, []byte("b"))
	require.NoError(t, err)
	assert.True(t, res.Changed)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "b", string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteDryRun(t *testing.T) {
	w := New(nil)
	w.DryRun = true
	path := filepath.Join(t.TempDir(), "x.d.ts")
	res, err := w.Write(path, []byte("x"))
	require.NoError(t, err)
	assert.True(t, res.Changed)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestDigestString(t *testing.T) {
	d := Sum(nil)
	assert.Len(t, d.String(), 64)
}
