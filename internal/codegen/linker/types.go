package linker

import (
	"slices"
	"strings"

	"github.com/Alia5/luaexpose/internal/codegen/cxxtype"
	"github.com/Alia5/luaexpose/internal/codegen/ir"
)

// ResolveType resolves a type spelling as seen from scope from. Names in
// tparams resolve as template parameters.
func (p *Program) ResolveType(spelling, from string, tparams []string) ir.TypeRef {
	return p.resolve(cxxtype.Parse(spelling), from, tparams, 0, p.maxDepth)
}

func (p *Program) resolve(d cxxtype.Descriptor, from string, tparams []string, depth, limit int) ir.TypeRef {
	ref := ir.TypeRef{Desc: d}
	if depth > limit || d.Opaque {
		ref.Kind = ir.TypeOpaque
		return ref
	}
	for _, a := range d.Args {
		ref.Args = append(ref.Args, p.resolve(a, from, tparams, depth+1, limit))
	}
	name := strings.ReplaceAll(d.Name, ".", "::")
	cat := d.Category()
	switch {
	case d.IsVoid() && d.Pointers == 0:
		ref.Kind = ir.TypeVoid
	case cat.IsPrimitive():
		ref.Kind = ir.TypePrimitive
	case cat != cxxtype.CategoryOther && cat != cxxtype.CategoryVoid:
		ref.Kind = ir.TypeLibrary
	case slices.Contains(tparams, name):
		ref.Kind = ir.TypeTemplateParam
	default:
		if c, ok := p.classes.lookup(name, from); ok {
			ref.Kind, ref.Class = ir.TypeClass, c
			break
		}
		if e, ok := p.enums.lookup(name, from); ok {
			ref.Kind, ref.Enum = ir.TypeEnum, e
			break
		}
		if td, ok := p.typedefs.lookup(name, from); ok {
			target := p.resolve(cxxtype.Parse(td.Target), td.Namespace, nil, depth+1, limit)
			ref.Kind, ref.Typedef, ref.Target = ir.TypeTypedef, td, &target
			break
		}
		if oc, ok := p.opaque[normalizeName(name)]; ok {
			ref.Kind, ref.Class = ir.TypeClass, oc
		}
	}
	return ref
}

// resolveTypes fills the TypeRefs of every bound function and field.
func (lc *linkCtx) resolveTypes() {
	p := lc.prog
	fn := func(f *ir.Function, from string, tparams []string) {
		tp := append(slices.Clone(tparams), f.TemplateParams...)
		f.Return = p.resolve(cxxtype.Parse(f.ReturnType), from, tp, 0, lc.maxDepth)
		for i := range f.Params {
			f.Params[i].Ref = p.resolve(cxxtype.Parse(f.Params[i].Type), from, tp, 0, lc.maxDepth)
		}
	}
	field := func(fd *ir.Field, from string, tparams []string) {
		fd.Ref = p.resolve(cxxtype.Parse(fd.Type), from, tparams, 0, lc.maxDepth)
	}

	for _, c := range p.Classes {
		if !c.Populated {
			continue
		}
		from := c.QualifiedName()
		for _, f := range c.Functions {
			fn(f, from, c.TemplateParams)
		}
		for _, fd := range c.Fields {
			field(fd, from, c.TemplateParams)
		}
	}
	scopes := func(s *ir.Scope, from string) {
		for _, f := range s.Functions {
			fn(f, from, nil)
		}
		for _, fd := range s.Fields {
			field(fd, from, nil)
		}
	}
	for _, f := range p.Files {
		scopes(&f.Global, "")
	}
	queue := append([]*ir.Namespace(nil), p.Namespaces...)
	for len(queue) > 0 {
		ns := queue[0]
		queue = queue[1:]
		scopes(&ns.Scope, ns.QualifiedName())
		queue = append(queue, ns.Namespaces...)
	}
}
