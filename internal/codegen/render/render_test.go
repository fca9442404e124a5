package render

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNames(t *testing.T) {
	assert.Equal(t, []string{
		"lua_aggregate.cpp",
		"lua_aggregate.h",
		"lua_unit.cpp",
		"teal.d.tl",
		"typescript.d.ts",
	}, Names())

	src, ok := Default("teal.d.tl")
	require.True(t, ok)
	assert.Contains(t, src, "{{.Header}}")
	_, ok = Default("python.py")
	assert.False(t, ok)
}

func TestRender(t *testing.T) {
	type testCase struct {
		name string
		run  func(t *testing.T)
	}

	tests := []testCase{
		{
			name: "override",
			run: func(t *testing.T) {
				file := filepath.Join(t.TempDir(), "unit.tmpl")
				require.NoError(t, os.WriteFile(file, []byte(`{{.Name}}:{{indent 2 .Body}}|{{join .Parts ","}}`), 0o644))
				r := New(map[string]string{"lua_unit.cpp": file})
				out, err := r.Render("lua_unit.cpp", map[string]any{
					"Name":  "Vec3",
					"Body":  "a\nb",
					"Parts": []string{"x", "y"},
				})
				require.NoError(t, err)
				assert.Equal(t, "Vec3:a\n  b|x,y", string(out))
			},
		},
		{
			name: "unknown template",
			run: func(t *testing.T) {
				_, err := New(nil).Render("python.py", nil)
				assert.ErrorIs(t, err, ErrNoTemplate)
				assert.ErrorContains(t, err, "python.py")
			},
		},
		{
			name: "missing override file",
			run: func(t *testing.T) {
				r := New(map[string]string{"teal.d.tl": filepath.Join(t.TempDir(), "gone.tmpl")})
				_, err := r.Render("teal.d.tl", nil)
				assert.ErrorIs(t, err, ErrNoTemplate)
				assert.ErrorIs(t, err, os.ErrNotExist)
			},
		},
		{
			name: "parse failure",
			run: func(t *testing.T) {
				file := filepath.Join(t.TempDir(), "bad.tmpl")
				require.NoError(t, os.WriteFile(file, []byte("{{.Name"), 0o644))
				_, err := New(map[string]string{"x": file}).Render("x", nil)
				assert.ErrorIs(t, err, ErrNoTemplate)
			},
		},
		{
			name: "execution failure",
			run: func(t *testing.T) {
				file := filepath.Join(t.TempDir(), "exec.tmpl")
				require.NoError(t, os.WriteFile(file, []byte("{{.Missing.Field}}"), 0o644))
				_, err := New(map[string]string{"x": file}).Render("x", struct{ Name string }{})
				require.Error(t, err)
				assert.NotErrorIs(t, err, ErrNoTemplate)
				assert.ErrorContains(t, err, "execute template x")
			},
		},
		{
			name: "concurrent use",
			run: func(t *testing.T) {
				r := New(nil)
				var wg sync.WaitGroup
				for range 8 {
					wg.Add(1)
					go func() {
						defer wg.Done()
						_, err := r.Render("typescript.d.ts", struct {
							Header                              string
							Enums, Classes, Namespaces, Globals []string
						}{Header: "//\n"})
						assert.NoError(t, err)
					}()
				}
				wg.Wait()
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, tc.run)
	}
}
