package linker

import (
	"github.com/Alia5/luaexpose/internal/codegen/ir"
)

// registerStubs is pass 1: one unpopulated identity per qualified class
// name, so references resolve before the defining file is merged.
func (lc *linkCtx) registerStubs(f *ir.File) {
	ir.WalkFile(f, func(d ir.Decl) bool {
		c, ok := d.(*ir.Class)
		if !ok {
			return true
		}
		stub := &ir.Class{
			Name:       c.Name,
			Namespace:  c.Namespace,
			Keyword:    c.Keyword,
			Span:       c.Span,
			Attributes: c.Attributes,
		}
		if lc.prog.classes.add(c.QualifiedName(), stub) {
			lc.prog.Classes = append(lc.prog.Classes, stub)
		}
		return false
	})
}

// mergeFile is pass 2 for one file: classes collapse onto their stubs,
// top-level namespaces merge by name and every enum and typedef is
// registered.
func (lc *linkCtx) mergeFile(f *ir.File) {
	lc.populateScope(&f.Global, nil)
	lc.registerScope(&f.Global)

	for _, ns := range f.Namespaces {
		m := lc.merged[ns.Name]
		if m == nil {
			m = &ir.Namespace{Name: ns.Name, Span: ns.Span}
			lc.merged[ns.Name] = m
			lc.prog.Namespaces = append(lc.prog.Namespaces, m)
		}
		m.Attributes = m.Attributes.Union(ns.Attributes)
		if _, ok := lc.prog.homes[m]; !ok && ns.Attributes.Has(ir.MarkerNamespace) {
			lc.prog.homes[m] = f.Path
		}

		lc.populateScope(&ns.Scope, m)
		lc.registerScope(&ns.Scope)
		regs := lc.registered(ns.Classes)
		m.Classes = append(m.Classes, regs...)
		m.Functions = append(m.Functions, ns.Functions...)
		m.Fields = append(m.Fields, ns.Fields...)
		m.Enums = append(m.Enums, ns.Enums...)
		m.Typedefs = append(m.Typedefs, ns.Typedefs...)
		for _, fn := range ns.Functions {
			fn.Namespace = m
		}
		for _, fd := range ns.Fields {
			fd.Namespace = m
		}
		for _, e := range ns.Enums {
			e.Namespace = m
		}

		// nested levels are scoped under the merged parent, never merged
		for _, child := range ns.Namespaces {
			child.Parent = m
			m.Namespaces = append(m.Namespaces, child)
		}
		lc.mergeNested(f, ns.Namespaces)
	}
}

func (lc *linkCtx) mergeNested(f *ir.File, roots []*ir.Namespace) {
	queue := append([]*ir.Namespace(nil), roots...)
	for len(queue) > 0 {
		ns := queue[0]
		queue = queue[1:]
		lc.prog.homes[ns] = f.Path
		lc.populateScope(&ns.Scope, ns)
		lc.registerScope(&ns.Scope)
		ns.Classes = lc.registered(ns.Classes)
		queue = append(queue, ns.Namespaces...)
	}
}

// populateScope replaces every class of s by its identity, populated in
// place from this definition. Later definitions of a populated identity
// stay in the file with a duplicate-class warning.
func (lc *linkCtx) populateScope(s *ir.Scope, owner *ir.Namespace) {
	for i, c := range s.Classes {
		q := c.QualifiedName()
		stub, ok := lc.prog.classes.qualified[q]
		switch {
		case !ok:
			continue
		case stub.Populated:
			if stub != c {
				lc.report(ir.SeverityWarning, ir.DiagDuplicateClass, c.Span,
					"class %s already defined at %s; this definition is not bound", q, stub.Span)
			}
			continue
		}
		stub.Keyword = c.Keyword
		stub.Bases = c.Bases
		stub.TemplateParams = c.TemplateParams
		stub.Attributes = stub.Attributes.Union(c.Attributes)
		stub.Span = c.Span
		stub.Final = c.Final
		stub.Owner = owner
		stub.Scope = c.Scope
		stub.Populated = true
		for _, fn := range stub.Functions {
			fn.Class = stub
		}
		for _, fd := range stub.Fields {
			fd.Class = stub
		}
		for _, e := range stub.Enums {
			e.Class = stub
		}
		for _, td := range stub.Typedefs {
			td.Class = stub
		}
		s.Classes[i] = stub
	}
}

// registered filters classes down to registered identities.
func (lc *linkCtx) registered(classes []*ir.Class) []*ir.Class {
	out := classes[:0:0]
	for _, c := range classes {
		if id, ok := lc.prog.classes.qualified[c.QualifiedName()]; ok && id == c {
			out = append(out, c)
		}
	}
	return out
}

// registerScope adds the enums and typedefs of s and of its classes.
func (lc *linkCtx) registerScope(s *ir.Scope) {
	scopes := []*ir.Scope{s}
	for _, c := range lc.registered(s.Classes) {
		scopes = append(scopes, &c.Scope)
	}
	for _, sc := range scopes {
		for _, e := range sc.Enums {
			if lc.prog.enums.add(e.QualifiedName(), e) {
				lc.prog.Enums = append(lc.prog.Enums, e)
			}
		}
		for _, td := range sc.Typedefs {
			if lc.prog.typedefs.add(td.QualifiedName(), td) {
				lc.prog.Typedefs = append(lc.prog.Typedefs, td)
			}
		}
	}
}
