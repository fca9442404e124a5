// Package linker merges per-file scan results into one program: class
// identities shared across files, merged namespaces, resolved bases and
// type references, and synthesized template specializations.
package linker

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Alia5/luaexpose/internal/codegen/ir"
)

// ErrStrict is returned by Link in strict mode when any error-severity
// diagnostic was produced while scanning or linking.
var ErrStrict = errors.New("error diagnostics in strict mode")

// DefaultMaxTypeDepth bounds type reference construction.
const DefaultMaxTypeDepth = 16

// Options configures a link run.
type Options struct {
	MaxTypeDepth int
	// Strict turns error-severity diagnostics into a Link failure.
	Strict bool
}

// Program is the linked view of every scanned file.
type Program struct {
	Files []*ir.File
	// Namespaces are the merged top-level namespaces in first-seen order.
	Namespaces []*ir.Namespace
	// Classes holds every registered class identity in registration order,
	// specializations included.
	Classes         []*ir.Class
	Specializations []*ir.Class
	Enums           []*ir.Enum
	Typedefs        []*ir.Typedef
	Diagnostics     []ir.Diagnostic

	classes  symbols[*ir.Class]
	enums    symbols[*ir.Enum]
	typedefs symbols[*ir.Typedef]
	opaque   map[string]*ir.Class
	homes    map[*ir.Namespace]string
	maxDepth int
}

// Home returns the file owning the namespace: for merged top-level
// namespaces the first file whose copy carries the namespace marker.
func (p *Program) Home(ns *ir.Namespace) (string, bool) {
	h, ok := p.homes[ns]
	return h, ok
}

// AllDiagnostics returns file diagnostics followed by link diagnostics.
func (p *Program) AllDiagnostics() []ir.Diagnostic {
	var out []ir.Diagnostic
	for _, f := range p.Files {
		out = append(out, f.Diagnostics...)
	}
	return append(out, p.Diagnostics...)
}

// linkCtx is the state of one Link call.
type linkCtx struct {
	prog     *Program
	logger   *slog.Logger
	opts     Options
	merged   map[string]*ir.Namespace
	stubbed  map[*ir.Class]*ir.Class
	maxDepth int
}

// Link runs stub registration, namespace merge and population, base
// resolution, specialization expansion and type resolution, in that order.
func Link(logger *slog.Logger, files []*ir.File, opts Options) (*Program, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxTypeDepth <= 0 {
		opts.MaxTypeDepth = DefaultMaxTypeDepth
	}
	lc := &linkCtx{
		prog: &Program{
			Files:    files,
			classes:  newSymbols[*ir.Class](),
			enums:    newSymbols[*ir.Enum](),
			typedefs: newSymbols[*ir.Typedef](),
			opaque:   map[string]*ir.Class{},
			homes:    map[*ir.Namespace]string{},
			maxDepth: opts.MaxTypeDepth,
		},
		logger:   logger,
		opts:     opts,
		merged:   map[string]*ir.Namespace{},
		stubbed:  map[*ir.Class]*ir.Class{},
		maxDepth: opts.MaxTypeDepth,
	}

	for _, f := range files {
		lc.registerStubs(f)
	}
	for _, f := range files {
		lc.mergeFile(f)
	}
	lc.resolveBases()
	lc.expandSpecializations()
	lc.resolveTypes()

	p := lc.prog
	logger.Debug("Linked program",
		"files", len(files),
		"namespaces", len(p.Namespaces),
		"classes", len(p.Classes),
		"specializations", len(p.Specializations),
		"diagnostics", len(p.Diagnostics))

	if opts.Strict {
		if n := countErrors(p.AllDiagnostics()); n > 0 {
			return p, fmt.Errorf("%w: %d error(s)", ErrStrict, n)
		}
	}
	return p, nil
}

func countErrors(diags []ir.Diagnostic) int {
	n := 0
	for _, d := range diags {
		if d.Severity >= ir.SeverityError {
			n++
		}
	}
	return n
}

func (lc *linkCtx) report(sev ir.Severity, kind ir.DiagKind, span ir.Span, format string, args ...any) {
	d := ir.Diagnostic{Severity: sev, Kind: kind, Message: fmt.Sprintf(format, args...), Span: span}
	lc.prog.Diagnostics = append(lc.prog.Diagnostics, d)
	d.Log(lc.logger)
}
