package scanner

import (
	"fmt"
	"strings"

	"github.com/Alia5/luaexpose/internal/codegen/ir"
)

type accessMark struct {
	pos    int
	access ir.Access
}

// scopeCtx is one region being matched: a namespace body, the file-global
// text or a class body.
type scopeCtx struct {
	text   []byte
	base   int
	bm     braceMap
	runs   *runSet
	ns     *ir.Namespace
	cls    *ir.Class
	scope  *ir.Scope
	qual   string
	nsQual string
	depth  int

	access        []accessMark
	defaultAccess ir.Access
}

func (sc *scopeCtx) accessAt(pos int) ir.Access {
	a := sc.defaultAccess
	for _, m := range sc.access {
		if m.pos > pos {
			break
		}
		a = m.access
	}
	return a
}

// scanScope runs the per-construct matchers in their fixed order.
func (fs *fileScan) scanScope(sc *scopeCtx) {
	fs.matchTypedefs(sc)
	fs.matchClasses(sc)
	fs.matchRunDecls(sc, declFunction)
	fs.matchEnums(sc)
	fs.matchRunDecls(sc, declField)
	fs.reportRuns(sc.base, sc.runs)
}

type declKind int

const (
	declFunction declKind = iota
	declField
)

func (fs *fileScan) matchRunDecls(sc *scopeCtx, kind declKind) {
	for idx, run := range sc.runs.runs {
		if sc.runs.consumed[idx] {
			continue
		}
		switch kind {
		case declFunction:
			if !run.any(ir.Marker.IsFunctionMarker) {
				continue
			}
			f, ok := fs.matchFunction(sc, run)
			if !ok {
				continue
			}
			sc.runs.consume(idx)
			if f != nil {
				sc.scope.Functions = append(sc.scope.Functions, f)
			}
		case declField:
			if !run.any(ir.Marker.IsFieldMarker) {
				continue
			}
			fields := fs.matchField(sc, run)
			if len(fields) == 0 {
				continue
			}
			sc.runs.consume(idx)
			sc.scope.Fields = append(sc.scope.Fields, fields...)
		}
	}
}

func (sc *scopeCtx) setOwner(f *ir.Function) {
	if sc.cls != nil {
		f.Class = sc.cls
		return
	}
	f.Namespace = sc.ns
}

// findAccess records every access specifier of a class body.
func findAccess(flat []byte) []accessMark {
	var out []accessMark
	specs := []struct {
		word   string
		access ir.Access
	}{
		{"public", ir.AccessPublic},
		{"protected", ir.AccessProtected},
		{"private", ir.AccessPrivate},
	}
	for i := 0; i < len(flat); i++ {
		for _, s := range specs {
			if !wordAt(flat, i, s.word) {
				continue
			}
			j := skipSpace(flat, i+len(s.word))
			if j < len(flat) && flat[j] == ':' && (j+1 >= len(flat) || flat[j+1] != ':') {
				out = append(out, accessMark{pos: i, access: s.access})
			}
		}
	}
	return out
}

func normSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// topLevelIndex returns the index of the first ch outside any bracket pair.
func topLevelIndex(s string, ch byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if depth == 0 && c == ch {
			return i
		}
		switch c {
		case '<', '(', '[', '{':
			depth++
		case '>':
			if i > 0 && s[i-1] == '-' {
				continue
			}
			depth--
		case ')', ']', '}':
			depth--
		}
		if depth < 0 {
			depth = 0
		}
	}
	return -1
}

// splitAssign splits "lhs = rhs" on a top-level '=' that is not part of a
// comparison operator.
func splitAssign(s string) (string, string, bool) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(', '[', '{':
			depth++
		case '>':
			if i > 0 && s[i-1] == '-' {
				continue
			}
			depth--
		case ')', ']', '}':
			depth--
		case '=':
			if depth != 0 {
				continue
			}
			if i+1 < len(s) && s[i+1] == '=' {
				i++
				continue
			}
			if i > 0 && strings.IndexByte("!<>=", s[i-1]) >= 0 {
				continue
			}
			return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:]), true
		}
	}
	return strings.TrimSpace(s), "", false
}

var builtinTypeWords = map[string]bool{
	"void": true, "bool": true, "char": true, "int": true, "short": true,
	"long": true, "float": true, "double": true, "unsigned": true,
	"signed": true, "auto": true, "const": true, "volatile": true,
	"wchar_t": true, "char16_t": true, "char32_t": true,
}

// onlyQualifiers reports spellings such as "const" or "const volatile".
func onlyQualifiers(s string) bool {
	for _, w := range strings.Fields(s) {
		if w != "const" && w != "volatile" {
			return false
		}
	}
	return true
}

// splitDeclarator splits "TYPE NAME" into its parts. ok is false when the
// trailing identifier is not a declarator name (for "unsigned int" or
// "std::string").
func splitDeclarator(decl string) (typ, name string, ok bool) {
	decl = strings.TrimSpace(decl)
	b := []byte(decl)
	name, start := identBefore(b, len(b))
	if name == "" || builtinTypeWords[name] {
		return decl, "", false
	}
	typ = strings.TrimSpace(decl[:start])
	if typ == "" || onlyQualifiers(typ) || strings.HasSuffix(typ, "::") {
		return decl, "", false
	}
	return typ, name, true
}

func (fs *fileScan) reportf(sev ir.Severity, kind ir.DiagKind, off int, format string, args ...any) {
	fs.report(sev, kind, off, fmt.Sprintf(format, args...))
}
