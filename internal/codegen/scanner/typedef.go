package scanner

import (
	"cmp"
	"regexp"
	"slices"

	"github.com/Alia5/luaexpose/internal/codegen/ir"
)

var (
	usingAliasRe = regexp.MustCompile(`\busing\s+([A-Za-z_]\w*)\s*=\s*([^;]+);`)
	typedefRe    = regexp.MustCompile(`\btypedef\s+([^;]+?)\s*\b([A-Za-z_]\w*)\s*;`)
)

// matchTypedefs records every alias of the scope. Aliases need no marker:
// the linker consults them for specializations and type resolution.
func (fs *fileScan) matchTypedefs(sc *scopeCtx) {
	flat := sc.bm.flat
	var found []*ir.Typedef
	add := func(m []int, nameGroup, targetGroup int) {
		td := &ir.Typedef{
			Name:      string(flat[m[2*nameGroup]:m[2*nameGroup+1]]),
			Target:    normSpace(string(sc.text[m[2*targetGroup]:m[2*targetGroup+1]])),
			Namespace: sc.qual,
			Span:      fs.span(sc.base+m[0], sc.base+m[1]),
			Class:     sc.cls,
		}
		found = append(found, td)
	}
	for _, m := range usingAliasRe.FindAllSubmatchIndex(flat, -1) {
		add(m, 1, 2)
	}
	for _, m := range typedefRe.FindAllSubmatchIndex(flat, -1) {
		add(m, 2, 1)
	}
	slices.SortFunc(found, func(a, b *ir.Typedef) int { return cmp.Compare(a.Span.Start, b.Span.Start) })
	sc.scope.Typedefs = append(sc.scope.Typedefs, found...)
}
