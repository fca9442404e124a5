package scanner

import (
	"strings"

	"github.com/Alia5/luaexpose/internal/codegen/cxxtype"
	"github.com/Alia5/luaexpose/internal/codegen/ir"
)

type fieldMods struct {
	static, constexpr bool
}

func (m *fieldMods) apply(w string) bool {
	switch w {
	case "static":
		m.static = true
	case "constexpr", "constinit":
		m.constexpr = true
	case "inline", "mutable", "thread_local", "extern":
	default:
		return false
	}
	return true
}

// matchField parses the variable declaration following a field marker run.
// "float x, y;" yields one field per declarator, all carrying the run's
// attributes.
func (fs *fileScan) matchField(sc *scopeCtx, run attrRun) []*ir.Field {
	flat := sc.bm.flat
	j := skipSpace(flat, run.end)
	end := j
	for end < len(flat) && flat[end] != ';' {
		switch flat[end] {
		case '{':
			closeIdx, ok := sc.bm.pairs[end]
			if !ok {
				return nil
			}
			end = closeIdx + 1
			continue
		case '}':
			return nil
		}
		end++
	}
	if end >= len(flat) || end == j {
		return nil
	}

	var mods fieldMods
	start := run.start
	for {
		w, ws := identBefore(flat, skipSpaceBack(flat, start))
		if w == "" || !mods.apply(w) {
			break
		}
		start = ws
	}

	decl := normSpace(string(sc.text[j:end]))
	for {
		w, rest, _ := strings.Cut(decl, " ")
		if !mods.apply(w) {
			break
		}
		decl = rest
	}
	parts, ok := cxxtype.SplitTopLevel(decl)
	if !ok || len(parts) == 0 {
		return nil
	}

	var out []*ir.Field
	var baseType string
	for i, part := range parts {
		lhs, init, found := splitDeclaratorInit(strings.TrimSpace(part))
		if !found {
			return nil
		}
		var typ, name string
		if i == 0 {
			t, n, ok := splitDeclarator(lhs)
			if !ok {
				return nil
			}
			typ, name = t, n
			baseType = strings.TrimSpace(strings.TrimRight(typ, "*& "))
		} else {
			stars := strings.TrimSpace(lhs[:len(lhs)-len(strings.TrimLeft(lhs, "*& "))])
			name = strings.TrimSpace(strings.TrimLeft(lhs, "*& "))
			typ = baseType + strings.ReplaceAll(stars, " ", "")
			if _, rest := readIdent([]byte(name), 0); name == "" || rest != len(name) {
				return nil
			}
		}
		if arr := arraySuffix(part); arr != "" {
			typ += arr
		}
		fd := &ir.Field{
			Name:        name,
			Type:        typ,
			Attributes:  run.attrs,
			Initializer: init,
			Static:      mods.static,
			Constexpr:   mods.constexpr,
			Const:       mods.constexpr || cxxtype.Parse(typ).Const,
			Span:        fs.span(sc.base+start, sc.base+end+1),
		}
		if sc.cls != nil {
			fd.Class = sc.cls
			fd.Access = sc.accessAt(run.start)
		} else {
			fd.Namespace = sc.ns
		}
		out = append(out, fd)
	}
	return out
}

// splitDeclaratorInit separates one declarator from its initializer and
// strips bitfield widths and array extents. found is false for function
// declarations.
func splitDeclaratorInit(part string) (lhs, init string, found bool) {
	lhs, init, _ = splitAssign(part)
	if k := topLevelIndex(lhs, '{'); k >= 0 {
		init = strings.TrimSpace(lhs[k:])
		lhs = strings.TrimSpace(lhs[:k])
	}
	if topLevelIndex(lhs, '(') >= 0 {
		return "", "", false
	}
	if k := bitfieldIndex(lhs); k >= 0 {
		lhs = strings.TrimSpace(lhs[:k])
	}
	if k := strings.IndexByte(lhs, '['); k >= 0 && strings.HasSuffix(lhs, "]") {
		lhs = strings.TrimSpace(lhs[:k])
	}
	return lhs, init, lhs != ""
}

func arraySuffix(part string) string {
	lhs, _, _ := splitAssign(part)
	if k := strings.IndexByte(lhs, '['); k >= 0 && strings.HasSuffix(lhs, "]") {
		return strings.ReplaceAll(lhs[k:], " ", "")
	}
	return ""
}

// bitfieldIndex finds a lone ':' that is not part of "::".
func bitfieldIndex(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] != ':' {
			continue
		}
		if i+1 < len(s) && s[i+1] == ':' {
			i++
			continue
		}
		return i
	}
	return -1
}
