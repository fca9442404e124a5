package scanner

import (
	"strings"

	"github.com/Alia5/luaexpose/internal/codegen/cxxtype"
	"github.com/Alia5/luaexpose/internal/codegen/ir"
)

type classHeader struct {
	start, open, close, end int
	keyword, name           string
	final                   bool
	bases                   []string
	tparams                 []string
	attrs                   ir.Attributes
	runs                    []int
}

var classKeywords = []string{"class", "struct", "union"}

func classKeywordAt(b []byte, i int) string {
	for _, kw := range classKeywords {
		if wordAt(b, i, kw) {
			return kw
		}
	}
	return ""
}

// matchClasses finds class definitions. Marked ones are kept and their bodies
// parsed; every definition is blanked from the flat text so no member leaks
// into the enclosing scope.
func (fs *fileScan) matchClasses(sc *scopeCtx) {
	flat := sc.bm.flat
	for i := 0; i < len(flat); i++ {
		kw := classKeywordAt(flat, i)
		if kw == "" {
			continue
		}
		h, ok := fs.matchClassHeader(sc, i, kw)
		if !ok {
			i += len(kw) - 1
			continue
		}
		for _, idx := range h.runs {
			sc.runs.consume(idx)
		}
		marked := h.attrs.Has(ir.MarkerType, ir.MarkerTypeNoCtor, ir.MarkerTypeTemplate)
		switch {
		case sc.cls != nil && h.name == "":
			// anonymous union or struct: its members belong to the enclosing class
			fs.scanClassBody(sc, sc.cls, h, true)
		case sc.cls != nil:
			if marked {
				fs.reportf(ir.SeverityDebug, ir.DiagNestedClass, sc.base+h.start,
					"nested class %s::%s is not bound", sc.cls.Name, h.name)
			}
		case marked && h.name == "":
			fs.report(ir.SeverityWarning, ir.DiagOrphanMarker, sc.base+h.start, "anonymous class cannot be bound")
		case marked:
			cls := &ir.Class{
				Name:           h.name,
				Namespace:      sc.nsQual,
				Keyword:        h.keyword,
				Bases:          h.bases,
				TemplateParams: h.tparams,
				Attributes:     h.attrs,
				Span:           fs.span(sc.base+h.start, sc.base+h.end),
				Final:          h.final,
				Populated:      true,
				Owner:          sc.ns,
			}
			sc.scope.Classes = append(sc.scope.Classes, cls)
			fs.scanClassBody(sc, cls, h, false)
		}
		blank(flat, h.start, h.end)
		i = h.end - 1
	}
}

func (fs *fileScan) matchClassHeader(sc *scopeCtx, i int, kw string) (classHeader, bool) {
	flat := sc.bm.flat
	h := classHeader{start: i, keyword: kw}

	p := skipSpaceBack(flat, i)
	if p > 0 && strings.IndexByte("<,(", flat[p-1]) >= 0 {
		return h, false
	}
	switch w, _ := identBefore(flat, p); w {
	case "enum", "friend", "typename":
		return h, false
	}

	if run, idx, ok := sc.runs.before(flat, h.start); ok {
		h.attrs = append(h.attrs, run.attrs...)
		h.start = run.start
		h.runs = append(h.runs, idx)
	}
	if params, ts, ok := templateHeadBefore(flat, h.start); ok {
		h.tparams = params
		h.start = ts
		if run, idx, ok := sc.runs.before(flat, h.start); ok {
			h.attrs = append(h.attrs, run.attrs...)
			h.start = run.start
			h.runs = append(h.runs, idx)
		}
	}

	j := i + len(kw)
	var idents []string
	for {
		j = skipSpace(flat, j)
		if run, idx, ok := sc.runs.at(j); ok {
			h.attrs = append(h.attrs, run.attrs...)
			h.runs = append(h.runs, idx)
			j = run.end
			continue
		}
		if j < len(flat) && flat[j] == '(' && len(idents) > 0 {
			// export macro arguments such as __declspec(dllexport) or alignas(16)
			closeIdx := matchBrace(flat, j)
			if closeIdx < 0 {
				return h, false
			}
			idents = idents[:len(idents)-1]
			j = closeIdx + 1
			continue
		}
		name, next := readIdent(flat, j)
		if name == "" {
			break
		}
		idents = append(idents, name)
		j = next
	}
	if n := len(idents); n > 0 && idents[n-1] == "final" {
		h.final = true
		idents = idents[:n-1]
	}
	if n := len(idents); n > 0 {
		h.name = idents[n-1]
	}

	j = skipSpace(flat, j)
	if j >= len(flat) {
		return h, false
	}
	switch {
	case flat[j] == ':' && (j+1 >= len(flat) || flat[j+1] != ':'):
		k := j + 1
		for k < len(flat) && flat[k] != '{' && flat[k] != ';' {
			k++
		}
		if k >= len(flat) || flat[k] != '{' {
			return h, false
		}
		h.bases = parseBases(string(flat[j+1 : k]))
		j = k
	case flat[j] == '{':
	default:
		return h, false
	}
	closeIdx, ok := sc.bm.pairs[j]
	if !ok {
		return h, false
	}
	h.open, h.close, h.end = j, closeIdx, closeIdx+1

	k := skipSpace(flat, h.end)
	for k < len(flat) && (isIdentByte(flat[k]) || isSpace(flat[k]) || flat[k] == ',' || flat[k] == '*' || flat[k] == '&') {
		k++
	}
	if k < len(flat) && flat[k] == ';' {
		h.end = k + 1
	}
	return h, true
}

func parseBases(s string) []string {
	parts, ok := cxxtype.SplitTopLevel(s)
	if !ok {
		parts = strings.Split(s, ",")
	}
	var out []string
	for _, p := range parts {
		words := strings.Fields(p)
		for len(words) > 0 {
			switch words[0] {
			case "public", "protected", "private", "virtual":
				words = words[1:]
				continue
			}
			break
		}
		if base := strings.Join(words, " "); base != "" {
			out = append(out, base)
		}
	}
	return out
}

// templateHeadBefore finds "template <...>" ending right before pos.
func templateHeadBefore(flat []byte, pos int) ([]string, int, bool) {
	p := skipSpaceBack(flat, pos)
	if p == 0 || flat[p-1] != '>' {
		return nil, pos, false
	}
	open := matchAngleBack(flat, p-1)
	if open < 0 {
		return nil, pos, false
	}
	w, ws := identBefore(flat, skipSpaceBack(flat, open))
	if w != "template" {
		return nil, pos, false
	}
	return parseTemplateParams(string(flat[open+1 : p-1])), ws, true
}

// templateHeadAt parses "template <...>" starting at pos and returns the
// index after it.
func templateHeadAt(flat []byte, pos int) ([]string, int, bool) {
	if !wordAt(flat, pos, "template") {
		return nil, pos, false
	}
	open := skipSpace(flat, pos+len("template"))
	if open >= len(flat) || flat[open] != '<' {
		return nil, pos, false
	}
	closeIdx := matchBrace(flat, open)
	if closeIdx < 0 {
		return nil, pos, false
	}
	return parseTemplateParams(string(flat[open+1 : closeIdx])), closeIdx + 1, true
}

func parseTemplateParams(s string) []string {
	parts, ok := cxxtype.SplitTopLevel(s)
	if !ok {
		return nil
	}
	var out []string
	for _, p := range parts {
		lhs, _, _ := splitAssign(p)
		b := []byte(strings.TrimSpace(lhs))
		name, _ := identBefore(b, len(b))
		switch name {
		case "", "typename", "class":
			continue
		}
		out = append(out, name)
	}
	return out
}

// scanClassBody parses the members of a class definition into cls. Anonymous
// unions and structs pass the enclosing class with inline set.
func (fs *fileScan) scanClassBody(sc *scopeCtx, cls *ir.Class, h classHeader, inline bool) {
	depth := sc.depth + 1
	if depth > fs.s.opts.MaxNamespaceDepth {
		fs.reportf(ir.SeverityError, ir.DiagDepthExceeded, sc.base+h.start,
			"class nesting deeper than %d; members of %s left unexposed", fs.s.opts.MaxNamespaceDepth, cls.Name)
		return
	}
	body := make([]byte, h.close-h.open-1)
	copy(body, sc.text[h.open+1:h.close])
	bm := flatten(body)
	for _, open := range bm.unmatched {
		fs.report(ir.SeverityError, ir.DiagUnmatchedBrace, sc.base+h.open+1+open, "unmatched '{' in class body; rest of body skipped")
	}
	defaultAccess := ir.AccessPrivate
	if h.keyword != "class" {
		defaultAccess = ir.AccessPublic
	}
	if inline {
		defaultAccess = sc.accessAt(h.start)
	}
	csc := &scopeCtx{
		text:          body,
		base:          sc.base + h.open + 1,
		bm:            bm,
		runs:          fs.collectRuns(bm.flat),
		cls:           cls,
		scope:         &cls.Scope,
		qual:          cls.QualifiedName(),
		nsQual:        sc.nsQual,
		depth:         depth,
		access:        findAccess(bm.flat),
		defaultAccess: defaultAccess,
	}
	fs.scanScope(csc)
}
