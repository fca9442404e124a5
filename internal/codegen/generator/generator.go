// Package generator scans headers, links them and drives every backend over
// the resulting units.
package generator

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"

	"github.com/Alia5/luaexpose/internal/codegen/generator/lua"
	"github.com/Alia5/luaexpose/internal/codegen/generator/teal"
	"github.com/Alia5/luaexpose/internal/codegen/generator/typescript"
	"github.com/Alia5/luaexpose/internal/codegen/linker"
	"github.com/Alia5/luaexpose/internal/codegen/meta"
	"github.com/Alia5/luaexpose/internal/codegen/output"
	"github.com/Alia5/luaexpose/internal/codegen/render"
	"github.com/Alia5/luaexpose/internal/codegen/scanner"
)

// ErrUnknownBackend is returned for a backend name not in the registry.
var ErrUnknownBackend = errors.New("unknown backend")

const (
	BackendLua        = "lua"
	BackendTypeScript = "typescript"
	BackendTeal       = "teal"
)

// Backend describes one output grammar: the jobs of a unit and, optionally,
// the jobs of an aggregate over all units.
type Backend struct {
	Name      string
	Unit      func(md *meta.Metadata, u *meta.Unit) ([]render.Job, error)
	Aggregate func(md *meta.Metadata) ([]render.Job, error)
}

// Options configures a Generator.
type Options struct {
	OutputDir string
	// Namespace is the root: the native registration namespace and the C++
	// namespace whose members bind on the globals.
	Namespace    string
	IncludeRoots []string
	External     []string
	// Templates maps template names to user template files.
	Templates map[string]string
	DryRun    bool

	Scanner scanner.Options
	Linker  linker.Options
}

type Generator struct {
	logger   *slog.Logger
	opts     Options
	renderer *render.Renderer
	writer   *output.Writer
	backends map[string]Backend
}

func New(logger *slog.Logger, opts Options) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Namespace == "" {
		opts.Namespace = lua.DefaultNamespace
	}
	w := output.New(logger)
	w.DryRun = opts.DryRun
	g := &Generator{
		logger:   logger,
		opts:     opts,
		renderer: render.New(opts.Templates),
		writer:   w,
		backends: map[string]Backend{},
	}

	luaOpts := lua.Options{Namespace: opts.Namespace, IncludeRoots: opts.IncludeRoots, External: opts.External}
	g.Register(Backend{
		Name:      BackendLua,
		Unit:      func(md *meta.Metadata, u *meta.Unit) ([]render.Job, error) { return lua.Unit(md, u, luaOpts) },
		Aggregate: func(md *meta.Metadata) ([]render.Job, error) { return lua.Aggregate(md, luaOpts) },
	})
	tsOpts := typescript.Options{Root: opts.Namespace}
	g.Register(Backend{
		Name: BackendTypeScript,
		Unit: func(md *meta.Metadata, u *meta.Unit) ([]render.Job, error) { return typescript.Unit(md, u, tsOpts) },
	})
	tlOpts := teal.Options{Root: opts.Namespace}
	g.Register(Backend{
		Name: BackendTeal,
		Unit: func(md *meta.Metadata, u *meta.Unit) ([]render.Job, error) { return teal.Unit(md, u, tlOpts) },
	})
	return g
}

// Register adds or replaces a backend.
func (g *Generator) Register(b Backend) { g.backends[b.Name] = b }

// Backends lists the registered backend names, sorted.
func (g *Generator) Backends() []string {
	names := make([]string, 0, len(g.backends))
	for n := range g.backends {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Load scans and links paths and groups the program into units.
func (g *Generator) Load(paths []string) (*meta.Metadata, error) {
	return g.LoadWith(scanner.New(g.logger, g.opts.Scanner), paths)
}

// LoadWith is Load with a caller-configured scanner.
func (g *Generator) LoadWith(sc *scanner.Scanner, paths []string) (*meta.Metadata, error) {
	g.logger.Info("Scanning headers", "count", len(paths))
	files, err := sc.ScanPaths(paths)
	if err != nil {
		return nil, err
	}
	prog, err := linker.Link(g.logger, files, g.opts.Linker)
	if err != nil {
		return nil, fmt.Errorf("link: %w", err)
	}
	md := meta.Build(prog)
	for _, d := range md.Diagnostics {
		d.Log(g.logger)
	}
	g.logger.Info("Linked headers",
		"files", len(prog.Files),
		"classes", len(prog.Classes),
		"namespaces", len(prog.Namespaces),
		"units", len(md.Units))
	return md, nil
}

// Run generates the named backends, every registered one when names is
// empty. A failing backend does not stop the others; all failures are
// joined.
func (g *Generator) Run(md *meta.Metadata, names ...string) ([]output.Result, error) {
	if len(names) == 0 {
		names = g.Backends()
	}
	var results []output.Result
	var errs []error
	for _, name := range names {
		res, err := g.GenerateBackend(md, name)
		results = append(results, res...)
		if err != nil {
			errs = append(errs, fmt.Errorf("generate %s: %w", name, err))
		}
	}
	return results, errors.Join(errs...)
}

// GenerateBackend renders and writes every unit of one backend into
// OutputDir/<name>. Units are processed concurrently; results keep unit
// order and the aggregate comes last.
func (g *Generator) GenerateBackend(md *meta.Metadata, name string) ([]output.Result, error) {
	b, ok := g.backends[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %v)", ErrUnknownBackend, name, g.Backends())
	}
	dir := filepath.Join(g.opts.OutputDir, name)
	g.logger.Info("Generating bindings", "backend", name, "units", len(md.Units), "output", dir)

	perUnit := make([][]output.Result, len(md.Units))
	unitErrs := make([]error, len(md.Units))
	var wg sync.WaitGroup
	for i, u := range md.Units {
		wg.Add(1)
		go func() {
			defer wg.Done()
			jobs, err := b.Unit(md, u)
			if err != nil {
				unitErrs[i] = fmt.Errorf("unit %s: %w", u.Group, err)
				return
			}
			perUnit[i], unitErrs[i] = g.emit(dir, jobs)
			if unitErrs[i] != nil {
				unitErrs[i] = fmt.Errorf("unit %s: %w", u.Group, unitErrs[i])
			}
		}()
	}
	wg.Wait()

	var results []output.Result
	for _, r := range perUnit {
		results = append(results, r...)
	}
	errs := unitErrs
	if b.Aggregate != nil {
		jobs, err := b.Aggregate(md)
		if err == nil {
			var res []output.Result
			res, err = g.emit(dir, jobs)
			results = append(results, res...)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("aggregate: %w", err))
		}
	}

	changed := 0
	for _, r := range results {
		if r.Changed {
			changed++
		}
	}
	g.logger.Info("Generated bindings", "backend", name, "files", len(results), "changed", changed)
	return results, errors.Join(errs...)
}

func (g *Generator) emit(dir string, jobs []render.Job) ([]output.Result, error) {
	var results []output.Result
	for _, j := range jobs {
		text, err := g.renderer.Render(j.Template, j.Data)
		if err != nil {
			return results, err
		}
		res, err := g.writer.Write(filepath.Join(dir, j.File), text)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}
