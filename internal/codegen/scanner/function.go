package scanner

import (
	"strings"

	"github.com/Alia5/luaexpose/internal/codegen/cxxtype"
	"github.com/Alia5/luaexpose/internal/codegen/ir"
)

var functionModifiers = map[string]func(f *ir.Function){
	"static":    func(f *ir.Function) { f.Static = true },
	"virtual":   func(f *ir.Function) { f.Virtual = true },
	"inline":    func(f *ir.Function) { f.Inline = true },
	"constexpr": func(f *ir.Function) { f.Constexpr = true },
	"consteval": func(f *ir.Function) { f.Constexpr = true },
	"explicit":  func(f *ir.Function) { f.Explicit = true },
	"friend":    func(*ir.Function) {},
	"extern":    func(*ir.Function) {},
}

// matchFunction parses the declaration following a function marker run. A
// true ok with a nil function means the declaration was recognized and
// deliberately dropped (destructors, deleted functions).
func (fs *fileScan) matchFunction(sc *scopeCtx, run attrRun) (*ir.Function, bool) {
	flat := sc.bm.flat
	f := &ir.Function{Attributes: run.attrs}
	start := run.start

	if params, ts, ok := templateHeadBefore(flat, start); ok {
		f.TemplateParams = params
		start = ts
	}
	for {
		w, ws := identBefore(flat, skipSpaceBack(flat, start))
		apply, ok := functionModifiers[w]
		if !ok {
			break
		}
		apply(f)
		start = ws
	}

	j := skipSpace(flat, run.end)
	if params, next, ok := templateHeadAt(flat, j); ok {
		f.TemplateParams = append(f.TemplateParams, params...)
		j = skipSpace(flat, next)
	}

	paren, opName := findParamList(flat, j)
	if paren < 0 {
		return nil, false
	}
	closeP := matchBrace(flat, paren)
	if closeP < 0 {
		fs.report(ir.SeverityError, ir.DiagUnmatchedBrace, sc.base+paren, "unmatched '(' in function declaration")
		return nil, false
	}

	prefix := normSpace(string(flat[j:paren]))
	ret, name, ok := splitFunctionPrefix(prefix, opName)
	if !ok {
		return nil, false
	}
	for {
		w, rest, _ := strings.Cut(ret, " ")
		apply, isMod := functionModifiers[w]
		if !isMod {
			break
		}
		apply(f)
		ret = rest
	}
	f.Name = name
	f.ReturnType = ret

	suffixEnd, end := declarationEnd(flat, sc.bm.pairs, closeP+1)
	if end < 0 {
		return nil, false
	}
	suffix := normSpace(string(flat[closeP+1 : suffixEnd]))
	if applySuffix(f, suffix) {
		return nil, true
	}
	if strings.HasPrefix(name, "~") {
		return nil, true
	}

	f.Params = parseParams(string(sc.text[paren+1 : closeP]))
	if sc.cls != nil && f.ReturnType == "" && f.Name == sc.cls.Name {
		f.Constructor = true
	}
	if sc.cls != nil {
		f.Access = sc.accessAt(run.start)
	}
	sc.setOwner(f)
	f.Span = fs.span(sc.base+start, sc.base+end)
	return f, true
}

// findParamList returns the '(' opening the parameter list of the
// declaration starting at j, plus the operator name when the declaration
// declares one.
func findParamList(flat []byte, j int) (int, string) {
	angle := 0
	for k := j; k < len(flat); k++ {
		if wordAt(flat, k, "operator") {
			m := skipSpace(flat, k+len("operator"))
			sym := m
			if m+1 < len(flat) && flat[m] == '(' && flat[m+1] == ')' {
				sym = m + 2
			}
			for sym < len(flat) && flat[sym] != '(' && flat[sym] != ';' && flat[sym] != '{' {
				sym++
			}
			if sym >= len(flat) || flat[sym] != '(' {
				return -1, ""
			}
			symbol := normSpace(string(flat[m:sym]))
			if symbol != "" && isIdentStart(symbol[0]) {
				// conversion operator
				return sym, "operator " + symbol
			}
			return sym, "operator" + strings.ReplaceAll(symbol, " ", "")
		}
		switch flat[k] {
		case '<':
			angle++
		case '>':
			if angle > 0 {
				angle--
			}
		case '(':
			if angle == 0 {
				return k, ""
			}
		case ';', '{', '}', '=':
			if angle == 0 {
				return -1, ""
			}
		}
	}
	return -1, ""
}

// splitFunctionPrefix separates the return type from the function name.
func splitFunctionPrefix(prefix, opName string) (ret, name string, ok bool) {
	if opName != "" {
		idx := strings.LastIndex(prefix, "operator")
		if idx < 0 {
			return "", "", false
		}
		return stripQualifier(strings.TrimSpace(prefix[:idx])), opName, true
	}
	b := []byte(prefix)
	name, start := identBefore(b, len(b))
	if name == "" {
		return "", "", false
	}
	if start > 0 && b[start-1] == '~' {
		name = "~" + name
		start--
	}
	return stripQualifier(strings.TrimSpace(prefix[:start])), name, true
}

// stripQualifier drops an out-of-line qualification such as "Foo::" from
// the end of a return type.
func stripQualifier(rest string) string {
	for strings.HasSuffix(rest, "::") {
		rest = strings.TrimSpace(rest[:len(rest)-2])
		rb := []byte(rest)
		_, qs := identBefore(rb, len(rb))
		rest = strings.TrimSpace(rest[:qs])
	}
	return rest
}

// declarationEnd scans the text after a parameter list. suffixEnd is where
// the trailing qualifiers stop; end is just past the declaration.
func declarationEnd(flat []byte, pairs map[int]int, k int) (suffixEnd, end int) {
	for k < len(flat) {
		switch c := flat[k]; c {
		case ';':
			return k, k + 1
		case '{':
			closeIdx, ok := pairs[k]
			if !ok {
				return k, -1
			}
			return k, closeIdx + 1
		case '(':
			closeIdx := matchBrace(flat, k)
			if closeIdx < 0 {
				return k, -1
			}
			k = closeIdx + 1
			continue
		case ':':
			if k+1 < len(flat) && flat[k+1] == ':' {
				k += 2
				continue
			}
			// constructor initializer list runs up to the body
			for m := k + 1; m < len(flat); m++ {
				switch flat[m] {
				case '(':
					if closeIdx := matchBrace(flat, m); closeIdx > 0 {
						m = closeIdx
					}
				case '{':
					if closeIdx, ok := pairs[m]; ok {
						return k, closeIdx + 1
					}
					return k, -1
				case ';':
					return k, m + 1
				}
			}
			return k, -1
		case '}':
			return k, -1
		}
		k++
	}
	return k, -1
}

// applySuffix reads the qualifiers after the parameter list and reports
// whether the function is deleted.
func applySuffix(f *ir.Function, suffix string) bool {
	if arrow := strings.Index(suffix, "->"); arrow >= 0 {
		trailing := strings.TrimSpace(suffix[arrow+2:])
		for _, stop := range []string{" override", " final", " =", "="} {
			if i := strings.Index(trailing, stop); i >= 0 {
				trailing = strings.TrimSpace(trailing[:i])
			}
		}
		if f.ReturnType == "auto" || f.ReturnType == "" {
			f.ReturnType = trailing
		}
		suffix = suffix[:arrow]
	}
	lhs, rhs, hasAssign := splitAssign(suffix)
	for _, w := range strings.Fields(strings.NewReplacer("(", " ", ")", " ", "&", " ").Replace(lhs)) {
		switch w {
		case "const":
			f.Const = true
		case "override":
			f.Override = true
		}
	}
	if hasAssign {
		switch rhs {
		case "0":
			f.Pure = true
			f.Virtual = true
		case "delete":
			return true
		}
	}
	return false
}

func parseParams(raw string) []ir.Parameter {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "void" {
		return nil
	}
	parts, ok := cxxtype.SplitTopLevel(raw)
	if !ok {
		parts = []string{raw}
	}
	var out []ir.Parameter
	for _, p := range parts {
		if p = normSpace(p); p != "" {
			out = append(out, parseParam(p))
		}
	}
	return out
}

// parseParam parses "TYPE NAME [= DEFAULT]", falling back to a type-only
// parameter when no declarator name is present.
func parseParam(s string) ir.Parameter {
	if s == "..." {
		return ir.Parameter{Type: "...", Variadic: true}
	}
	decl, def, _ := splitAssign(s)
	p := ir.Parameter{Default: def}
	arr := ""
	if strings.HasSuffix(decl, "]") {
		if i := strings.LastIndexByte(decl, '['); i > 0 {
			arr = decl[i:]
			decl = strings.TrimSpace(decl[:i])
		}
	}
	typ, name, ok := splitDeclarator(decl)
	if ok {
		p.Type, p.Name = typ+arr, name
	} else {
		p.Type = decl + arr
	}
	p.Variadic = strings.HasSuffix(p.Type, "...")
	return p
}
