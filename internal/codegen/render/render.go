// Package render turns unit contexts into text with text/template. Default
// templates are embedded; any of them can be replaced by a user file.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"
	"sync"
	"text/template"
)

//go:embed templates/*.tmpl
var defaults embed.FS

// ErrNoTemplate is returned when a template is neither embedded nor
// supplied, or cannot be read or parsed.
var ErrNoTemplate = errors.New("no usable template")

// Job is one file to render: the output file name relative to the backend
// directory, the template name and its data.
type Job struct {
	File     string
	Template string
	Data     any
}

// Renderer renders named templates. Safe for concurrent use.
type Renderer struct {
	overrides map[string]string

	mu    sync.Mutex
	cache map[string]*template.Template
}

// New creates a renderer. overrides maps template names to user template
// files.
func New(overrides map[string]string) *Renderer {
	return &Renderer{overrides: overrides, cache: map[string]*template.Template{}}
}

// Names lists the embedded template names.
func Names() []string {
	entries, _ := fs.ReadDir(defaults, "templates")
	var out []string
	for _, e := range entries {
		out = append(out, strings.TrimSuffix(e.Name(), ".tmpl"))
	}
	slices.Sort(out)
	return out
}

// Default returns the embedded source of a template.
func Default(name string) (string, bool) {
	b, err := defaults.ReadFile(path.Join("templates", name+".tmpl"))
	if err != nil {
		return "", false
	}
	return string(b), true
}

// Render executes template name with data.
func (r *Renderer) Render(name string, data any) ([]byte, error) {
	tmpl, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) lookup(name string) (*template.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.cache[name]; ok {
		return t, nil
	}

	var src string
	if file, ok := r.overrides[name]; ok {
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrNoTemplate, name, err)
		}
		src = string(b)
	} else if d, ok := Default(name); ok {
		src = d
	} else {
		return nil, fmt.Errorf("%w: %s", ErrNoTemplate, name)
	}

	t, err := template.New(name).Funcs(funcMap).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrNoTemplate, name, err)
	}
	r.cache[name] = t
	return t, nil
}

var funcMap = template.FuncMap{
	"indent": indent,
	"join":   strings.Join,
}

// indent prefixes every line but the first with n spaces, so a multi-line
// snippet lines up under the template's own indentation.
func indent(n int, s string) string {
	pad := strings.Repeat(" ", n)
	return strings.ReplaceAll(s, "\n", "\n"+pad)
}
