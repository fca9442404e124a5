package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	toml "github.com/pelletier/go-toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v3"

	"github.com/Alia5/luaexpose/internal/codegen/generator"
	"github.com/Alia5/luaexpose/internal/log"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

const vec3Header = `#pragma once
struct [[BIND_TYPE]] Vec3 {
	[[BIND_CTOR]] Vec3(float x, float y, float z);
	[[BIND_FUNC]] float Length() const;
	[[BIND_VAR]] float x;
};
namespace [[BIND_NAMESPACE]] world {
	enum class [[BIND_ENUM]] Phase { Early, Late };
}
[[BIND_FUNC]] int version();
`

func writeHeader(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "include", "vec3.h")
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(vec3Header), 0o644))
	return dir, p
}

func TestConfigTemplate(t *testing.T) {
	source := map[string]any{
		"sources":        []string{},
		"prefix":         "BIND_",
		"max_type_depth": int64(16),
		"strict":         false,
	}
	merge := func(extra map[string]any) map[string]any {
		out := map[string]any{}
		for k, v := range source {
			out[k] = v
		}
		for k, v := range extra {
			out[k] = v
		}
		return out
	}

	tests := []struct {
		command string
		want    map[string]any
	}{
		{
			command: "generate",
			want: merge(map[string]any{
				"output":       "./generated",
				"backend":      []string{},
				"namespace":    "bindings",
				"include_root": []string{},
				"external":     []string{},
				"template":     map[string]string{},
				"dry_run":      false,
				"watch":        false,
				"debounce":     "250ms",
			}),
		},
		{
			command: "dump",
			want:    merge(map[string]any{"format": "yaml", "output": ""}),
		},
	}
	for _, tc := range tests {
		t.Run(tc.command, func(t *testing.T) {
			got, err := templateFor(tc.command)
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("template mismatch (-want +got):\n%s", diff)
			}
		})
	}

	_, err := templateFor("server")
	assert.ErrorContains(t, err, `unknown command "server"`)
}

func TestConfigInit(t *testing.T) {
	type testCase struct {
		name string
		run  func(t *testing.T)
	}

	tests := []testCase{
		{
			name: "json",
			run: func(t *testing.T) {
				dest := filepath.Join(t.TempDir(), "cfg", "generate.json")
				require.NoError(t, (&ConfigInit{Command: "generate", Format: "json", Output: dest}).Run())
				var got map[string]any
				data, err := os.ReadFile(dest)
				require.NoError(t, err)
				require.NoError(t, json.Unmarshal(data, &got))
				assert.Equal(t, "bindings", got["namespace"])
				assert.Equal(t, float64(16), got["max_type_depth"])
			},
		},
		{
			name: "yaml",
			run: func(t *testing.T) {
				dest := filepath.Join(t.TempDir(), "dump.yaml")
				require.NoError(t, (&ConfigInit{Command: "dump", Format: "yml", Output: dest}).Run())
				var got map[string]any
				data, err := os.ReadFile(dest)
				require.NoError(t, err)
				require.NoError(t, yaml.Unmarshal(data, &got))
				assert.Equal(t, "yaml", got["format"])
				assert.Equal(t, "BIND_", got["prefix"])
			},
		},
		{
			name: "toml",
			run: func(t *testing.T) {
				dest := filepath.Join(t.TempDir(), "generate.toml")
				require.NoError(t, (&ConfigInit{Command: "generate", Format: "toml", Output: dest}).Run())
				tree, err := toml.LoadFile(dest)
				require.NoError(t, err)
				assert.Equal(t, "./generated", tree.Get("output"))
				assert.Equal(t, "250ms", tree.Get("debounce"))
			},
		},
		{
			name: "refuses to overwrite",
			run: func(t *testing.T) {
				dest := filepath.Join(t.TempDir(), "generate.json")
				require.NoError(t, os.WriteFile(dest, []byte("{}"), 0o644))
				err := (&ConfigInit{Command: "generate", Format: "json", Output: dest}).Run()
				assert.ErrorIs(t, err, ErrDestinationExists)

				require.NoError(t, (&ConfigInit{Command: "generate", Format: "json", Output: dest, Force: true}).Run())
				data, err := os.ReadFile(dest)
				require.NoError(t, err)
				assert.Contains(t, string(data), `"namespace": "bindings"`)
			},
		},
		{
			name: "unsupported format",
			run: func(t *testing.T) {
				err := (&ConfigInit{Command: "generate", Format: "ini"}).Run()
				assert.ErrorContains(t, err, "unsupported format: ini")
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, tc.run)
	}
}

func TestConfigKey(t *testing.T) {
	typ := struct {
		IncludeRoot  []string
		MaxTypeDepth int
		DryRun       bool
		Named        string `name:"log-file"`
	}{}
	got := buildMapFromStruct(reflect.TypeOf(typ))
	for _, k := range []string{"include_root", "max_type_depth", "dry_run", "log_file"} {
		assert.Contains(t, got, k)
	}
}

func TestGenerateRun(t *testing.T) {
	dir, header := writeHeader(t)
	out := filepath.Join(dir, "out")
	var dump bytes.Buffer
	c := &Generate{
		Source:      Source{Paths: []string{filepath.Join(dir, "include")}, Prefix: "BIND_", MaxTypeDepth: 16},
		Output:      out,
		Backend:     []string{"lua", "typescript"},
		Namespace:   "bindings",
		IncludeRoot: []string{filepath.Join(dir, "include")},
	}
	require.NoError(t, c.Run(context.Background(), discard, log.NewDumper(&dump)))

	assert.FileExists(t, filepath.Join(out, "lua", "LuaUsertypesVec3.cpp"))
	assert.FileExists(t, filepath.Join(out, "lua", "LuaUsertypes.h"))
	assert.FileExists(t, filepath.Join(out, "typescript", "Vec3.d.ts"))
	assert.NoDirExists(t, filepath.Join(out, "teal"))
	assert.Contains(t, dump.String(), "==> "+header)

	c.Backend = []string{"python"}
	assert.ErrorContains(t, c.Run(context.Background(), discard, nil), `unknown backend "python"`)
}

func TestSourceErrors(t *testing.T) {
	_, _, err := (&Source{}).load(discard, nil, generator.Options{})
	assert.ErrorContains(t, err, "no headers given")

	dir := t.TempDir()
	_, _, err = (&Source{Paths: []string{filepath.Join(dir, "*.h")}}).load(discard, nil, generator.Options{})
	assert.ErrorContains(t, err, "no headers matched")
}

func TestDumpRun(t *testing.T) {
	dir, _ := writeHeader(t)

	var buf bytes.Buffer
	c := &Dump{Source: Source{Paths: []string{dir}}, Format: "yaml", w: &buf}
	require.NoError(t, c.Run(discard, nil))
	var view struct {
		Units []dumpUnit `yaml:"units"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &view))
	require.Len(t, view.Units, 1)
	assert.Equal(t, "Vec3", view.Units[0].Group)
	assert.Equal(t, []string{"Vec3"}, view.Units[0].Classes)
	assert.Equal(t, []string{"world"}, view.Units[0].Namespaces)
	assert.Equal(t, []string{"version"}, view.Units[0].Functions)

	buf.Reset()
	c.Format = "json"
	require.NoError(t, c.Run(discard, nil))
	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.Contains(t, raw, "files")
	assert.Contains(t, raw, "units")

	dest := filepath.Join(t.TempDir(), "dump.yaml")
	c.Format, c.Output = "yaml", dest
	require.NoError(t, c.Run(discard, nil))
	assert.FileExists(t, dest)
}

func TestGlobDir(t *testing.T) {
	assert.Equal(t, "include", globDir("include/*.h"))
	assert.Equal(t, ".", globDir("*.h"))
	assert.Equal(t, "include/vec3.h", globDir("include/vec3.h"))
	assert.Equal(t, filepath.Join("a", "b"), globDir(filepath.Join("a", "b", "c?", "*.h")))
}
