package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/Alia5/luaexpose/internal/codegen/generator"
	"github.com/Alia5/luaexpose/internal/codegen/linker"
	"github.com/Alia5/luaexpose/internal/codegen/meta"
	"github.com/Alia5/luaexpose/internal/codegen/output"
	"github.com/Alia5/luaexpose/internal/codegen/scanner"
	"github.com/Alia5/luaexpose/internal/log"
	"github.com/Alia5/luaexpose/internal/watch"
)

// Source selects the headers to scan and how markers are recognized.
type Source struct {
	Paths        []string `arg:"" optional:"" name:"path" help:"Header files, directories or glob patterns"`
	Sources      []string `help:"Additional header files, directories or globs" env:"LUAEXPOSE_SOURCES"`
	Prefix       string   `help:"Marker prefix, e.g. BIND_ for [[BIND_TYPE]]" default:"BIND_" env:"LUAEXPOSE_PREFIX"`
	MaxTypeDepth int      `help:"Maximum nesting depth of template type arguments" default:"16" env:"LUAEXPOSE_MAX_TYPE_DEPTH"`
	Strict       bool     `help:"Fail the run on error-severity diagnostics" env:"LUAEXPOSE_STRICT"`
}

func (s *Source) patterns() []string {
	return append(append([]string{}, s.Paths...), s.Sources...)
}

// load expands the sources and builds the run metadata.
func (s *Source) load(logger *slog.Logger, dumper log.SourceDumper, opts generator.Options) (*generator.Generator, *meta.Metadata, error) {
	patterns := s.patterns()
	if len(patterns) == 0 {
		return nil, nil, errors.New("no headers given; pass paths or set --sources")
	}
	paths, err := scanner.ExpandPaths(patterns)
	if err != nil {
		return nil, nil, err
	}
	if len(paths) == 0 {
		return nil, nil, fmt.Errorf("no headers matched %v", patterns)
	}

	opts.Scanner = scanner.Options{Prefix: s.Prefix}
	opts.Linker = linker.Options{MaxTypeDepth: s.MaxTypeDepth, Strict: s.Strict}
	g := generator.New(logger, opts)
	sc := scanner.New(logger, opts.Scanner)
	if dumper != nil {
		sc.WithDumper(dumper)
	}
	md, err := g.LoadWith(sc, paths)
	if err != nil {
		return nil, nil, err
	}
	return g, md, nil
}

// Generate scans headers and writes the bindings of every selected backend.
type Generate struct {
	Source `embed:""`

	Output      string            `help:"Output directory; each backend writes into <output>/<backend>" default:"./generated" env:"LUAEXPOSE_OUTPUT"`
	Backend     []string          `help:"Backends to run: lua, typescript, teal. All when empty" env:"LUAEXPOSE_BACKEND"`
	Namespace   string            `help:"Root namespace of the native registration code" default:"bindings" env:"LUAEXPOSE_NAMESPACE"`
	IncludeRoot []string          `help:"Directories stripped from header paths in generated #include lines" env:"LUAEXPOSE_INCLUDE_ROOT"`
	External    []string          `help:"Extra registration functions called from the aggregate unit" env:"LUAEXPOSE_EXTERNAL"`
	Template    map[string]string `help:"Template overrides as name=file, e.g. lua_unit.cpp=my.tmpl"`
	DryRun      bool              `help:"Render everything but write nothing" env:"LUAEXPOSE_DRY_RUN"`
	Watch       bool              `help:"Regenerate when headers change"`
	Debounce    time.Duration     `help:"Quiet period before a watched change regenerates" default:"250ms"`
}

func (c *Generate) options() generator.Options {
	return generator.Options{
		OutputDir:    c.Output,
		Namespace:    c.Namespace,
		IncludeRoots: c.IncludeRoot,
		External:     c.External,
		Templates:    c.Template,
		DryRun:       c.DryRun,
	}
}

// Run is called by Kong when the generate command is executed.
func (c *Generate) Run(ctx context.Context, logger *slog.Logger, dumper log.SourceDumper) error {
	logger.Info("Starting binding generation", "output", c.Output, "backends", c.Backend, "namespace", c.Namespace)
	err := c.once(logger, dumper)
	if !c.Watch {
		return err
	}
	if err != nil {
		logger.Error("Generation failed", "error", err)
	}

	roots, err := watch.Roots(c.patternRoots())
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	return watch.Headers(ctx, logger, roots, watch.Options{Debounce: c.Debounce, Match: scanner.IsHeader}, func(changed []string) {
		logger.Info("Headers changed, regenerating", "files", changed)
		if err := c.once(logger, dumper); err != nil {
			logger.Error("Generation failed", "error", err)
		}
	})
}

// patternRoots drops glob patterns, which cannot be watched themselves, in
// favor of their directory.
func (c *Generate) patternRoots() []string {
	var out []string
	for _, p := range c.patterns() {
		out = append(out, globDir(p))
	}
	return out
}

func (c *Generate) once(logger *slog.Logger, dumper log.SourceDumper) error {
	g, md, err := c.load(logger, dumper, c.options())
	if err != nil {
		return err
	}
	results, err := g.Run(md, c.Backend...)
	changed := countChanged(results)
	logger.Info("Generation finished", "files", len(results), "changed", changed, "unchanged", len(results)-changed)
	return err
}

func countChanged(results []output.Result) int {
	n := 0
	for _, r := range results {
		if r.Changed {
			n++
		}
	}
	return n
}

// globDir returns the longest leading part of pattern free of glob
// metacharacters, or the pattern itself when it has none.
func globDir(pattern string) string {
	i := strings.IndexAny(pattern, "*?[")
	if i < 0 {
		return pattern
	}
	return filepath.Dir(pattern[:i+1])
}
