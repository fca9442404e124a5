// Package lua emits sol2 registration code: one registration function per
// unit plus an aggregate entry point calling all of them.
package lua

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/Alia5/luaexpose/internal/codegen/common"
	"github.com/Alia5/luaexpose/internal/codegen/ir"
	"github.com/Alia5/luaexpose/internal/codegen/meta"
	"github.com/Alia5/luaexpose/internal/codegen/render"
	"github.com/Alia5/luaexpose/internal/codegen/rules"
)

const (
	UnitTemplate            = "lua_unit.cpp"
	AggregateSourceTemplate = "lua_aggregate.cpp"
	AggregateHeaderTemplate = "lua_aggregate.h"

	AggregateSource = "LuaUsertypes.cpp"
	AggregateHeader = "LuaUsertypes.h"
)

// DefaultNamespace holds the generated registration functions when none is
// configured.
const DefaultNamespace = "bindings"

// Options configures the native backend.
type Options struct {
	// Namespace wraps the registration functions. A top-level C++
	// namespace of the same name binds directly on the state.
	Namespace string
	// IncludeRoots are stripped from header paths in #include lines.
	IncludeRoots []string
	// External names extra registration functions, taking a
	// sol::state_view&, that the aggregate entry point calls after the
	// generated ones.
	External []string
}

func (o Options) namespace() string {
	if o.Namespace == "" {
		return DefaultNamespace
	}
	return o.Namespace
}

// UnitContext is the data of one per-unit registration file.
type UnitContext struct {
	Header     string
	Includes   []string
	Usings     []string
	Namespace  string
	Ltype      string
	Namespaces []string
	Classes    []string
	Enums      []string
}

// AggregateContext is the data of the aggregate source and header.
type AggregateContext struct {
	Header    string
	Namespace string
	Units     []string
	External  []string
}

// FileName is the registration file of a unit.
func FileName(u *meta.Unit) string { return "LuaUsertypes" + u.Group + ".cpp" }

// Unit builds the registration job of u.
func Unit(md *meta.Metadata, u *meta.Unit, opts Options) ([]render.Job, error) {
	ctx := UnitContext{
		Header:    common.FileHeader("//"),
		Namespace: opts.namespace(),
		Ltype:     u.Group,
	}
	inc := newIncludeSet(opts.IncludeRoots)
	usings := map[string]bool{}

	em := newScopeEmitter(opts.namespace())
	if u.Globals != nil {
		if s := em.namespaceSnippet(rules.BuildScope(md.Program, u.Globals, "")); s != "" {
			ctx.Namespaces = append(ctx.Namespaces, s)
			inc.addScope(u.Globals)
		}
	}
	for _, ns := range u.Namespaces {
		bound := rules.BuildNamespace(md.Program, ns)
		if s := em.namespaceSnippet(bound); s != "" {
			ctx.Namespaces = append(ctx.Namespaces, s)
			inc.addScope(&ns.Scope)
			inc.addTemplates(bound.Templates)
			usings[ns.QualifiedName()] = true
		}
	}

	enums := append([]*ir.Enum(nil), u.Enums...)
	for _, c := range u.Classes {
		cls := rules.BuildClass(md.Program, c)
		ctx.Classes = append(ctx.Classes, classSnippet(cls))
		enums = append(enums, cls.Enums...)
		inc.add(c.Span.File)
		if c.Typedef != nil {
			inc.add(c.Typedef.Span.File)
		}
		for _, b := range cls.Bases {
			inc.add(b.Span.File)
		}
		inc.addTemplates(cls.Templates)
		if c.Namespace != "" {
			usings[c.Namespace] = true
		}
	}
	for _, e := range enums {
		ctx.Enums = append(ctx.Enums, enumSnippet(e))
		inc.add(e.Span.File)
		if e.Namespace != nil {
			usings[e.Namespace.QualifiedName()] = true
		}
	}

	ctx.Includes = inc.sorted()
	for ns := range usings {
		ctx.Usings = append(ctx.Usings, ns)
	}
	slices.Sort(ctx.Usings)
	return []render.Job{{File: FileName(u), Template: UnitTemplate, Data: ctx}}, nil
}

// Aggregate builds the entry point calling every unit's registration.
func Aggregate(md *meta.Metadata, opts Options) ([]render.Job, error) {
	ctx := AggregateContext{
		Header:    common.FileHeader("//"),
		Namespace: opts.namespace(),
		External:  opts.External,
	}
	for _, u := range md.Units {
		ctx.Units = append(ctx.Units, u.Group)
	}
	return []render.Job{
		{File: AggregateSource, Template: AggregateSourceTemplate, Data: ctx},
		{File: AggregateHeader, Template: AggregateHeaderTemplate, Data: ctx},
	}, nil
}

type includeSet struct {
	roots []string
	paths map[string]bool
}

func newIncludeSet(roots []string) *includeSet {
	return &includeSet{roots: roots, paths: map[string]bool{}}
}

func (s *includeSet) add(path string) {
	if path == "" {
		return
	}
	s.paths[IncludePath(path, s.roots)] = true
}

func (s *includeSet) addScope(sc *ir.Scope) {
	for _, f := range sc.Functions {
		if rules.IsExposed(f) || rules.IsTemplateFunction(f) {
			s.add(f.Span.File)
		}
	}
	for _, fd := range sc.Fields {
		if rules.IsBoundField(fd) {
			s.add(fd.Span.File)
		}
	}
}

func (s *includeSet) addTemplates(ts []rules.TemplateInstance) {
	for _, t := range ts {
		for _, c := range t.Classes {
			s.add(c.Span.File)
		}
	}
}

func (s *includeSet) sorted() []string {
	out := make([]string, 0, len(s.paths))
	for p := range s.paths {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// IncludePath spells path for an #include line: relative to the first
// root containing it, with forward slashes.
func IncludePath(path string, roots []string) string {
	clean := filepath.ToSlash(filepath.Clean(path))
	for _, r := range roots {
		root := strings.TrimSuffix(filepath.ToSlash(filepath.Clean(r)), "/") + "/"
		if rest, ok := strings.CutPrefix(clean, root); ok {
			return rest
		}
	}
	return clean
}
