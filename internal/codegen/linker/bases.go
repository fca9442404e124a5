package linker

import (
	"github.com/Alia5/luaexpose/internal/codegen/ir"
)

// resolveBases points every base name at its class identity. Names that
// resolve nowhere become opaque external classes.
func (lc *linkCtx) resolveBases() {
	for _, c := range lc.prog.Classes {
		c.BaseRefs = lc.baseRefs(c)
	}
}

func (lc *linkCtx) baseRefs(c *ir.Class) []*ir.Class {
	var refs []*ir.Class
	for _, base := range c.Bases {
		if ref, ok := lc.prog.classes.lookup(base, c.Namespace); ok && ref != c {
			refs = append(refs, ref)
			continue
		}
		refs = append(refs, lc.opaqueClass(base, c))
	}
	return refs
}

func (lc *linkCtx) opaqueClass(name string, from *ir.Class) *ir.Class {
	key := normalizeName(name)
	if oc, ok := lc.prog.opaque[key]; ok {
		return oc
	}
	lc.report(ir.SeverityWarning, ir.DiagUnresolvedBase, from.Span,
		"base %s of %s does not resolve to a scanned class", name, from.QualifiedName())
	oc := &ir.Class{
		Name:      lastSegment(key),
		Namespace: parentScope(key),
		Opaque:    true,
	}
	lc.prog.opaque[key] = oc
	return oc
}
