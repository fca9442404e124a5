package scanner

import (
	"strconv"
	"strings"

	"github.com/Alia5/luaexpose/internal/codegen/cxxtype"
	"github.com/Alia5/luaexpose/internal/codegen/ir"
)

// matchEnums finds enum definitions. An enum needs an enum marker either
// before the enum keyword or between the keyword and its name; unmarked
// enums are blanked and skipped.
func (fs *fileScan) matchEnums(sc *scopeCtx) {
	flat := sc.bm.flat
	for i := 0; i < len(flat); i++ {
		if !wordAt(flat, i, "enum") {
			continue
		}
		e := &ir.Enum{Underlying: "int"}
		start := i
		var runs []int
		if run, idx, ok := sc.runs.before(flat, i); ok {
			e.Attributes = append(e.Attributes, run.attrs...)
			start = run.start
			runs = append(runs, idx)
		}

		j := skipSpace(flat, i+len("enum"))
		for _, kw := range []string{"class", "struct"} {
			if wordAt(flat, j, kw) {
				e.Scoped = true
				j = skipSpace(flat, j+len(kw))
				break
			}
		}
		if run, idx, ok := sc.runs.at(j); ok {
			e.Attributes = append(e.Attributes, run.attrs...)
			runs = append(runs, idx)
			j = skipSpace(flat, run.end)
		}
		e.Name, j = readIdent(flat, j)
		j = skipSpace(flat, j)
		if j < len(flat) && flat[j] == ':' {
			k := j + 1
			for k < len(flat) && flat[k] != '{' && flat[k] != ';' {
				k++
			}
			e.Underlying = cxxtype.NormalizeFixedWidth(normSpace(string(flat[j+1 : k])))
			j = k
		}
		if j >= len(flat) || flat[j] != '{' {
			// opaque declaration
			i = j
			continue
		}
		closeIdx, ok := sc.bm.pairs[j]
		if !ok {
			i = j
			continue
		}
		end := closeIdx + 1
		if k := skipSpace(flat, end); k < len(flat) && flat[k] == ';' {
			end = k + 1
		}
		for _, idx := range runs {
			sc.runs.consume(idx)
		}

		switch {
		case !e.Attributes.Has(ir.MarkerEnum):
			if len(e.Attributes) > 0 {
				fs.reportf(ir.SeverityWarning, ir.DiagOrphanMarker, sc.base+start, "enum %q carries no enum marker", e.Name)
			}
		case e.Name == "":
			fs.report(ir.SeverityWarning, ir.DiagOrphanMarker, sc.base+start, "anonymous enum cannot be bound")
		default:
			e.Values = parseEnumValues(string(sc.text[j+1 : closeIdx]))
			e.Class = sc.cls
			if sc.cls == nil {
				e.Namespace = sc.ns
			}
			e.Span = fs.span(sc.base+start, sc.base+end)
			sc.scope.Enums = append(sc.scope.Enums, e)
		}
		blank(flat, start, end)
		i = end - 1
	}
}

func parseEnumValues(body string) []ir.EnumValue {
	body = stripAttributeGroups(body)
	parts, ok := cxxtype.SplitTopLevel(body)
	if !ok {
		parts = strings.Split(body, ",")
	}
	var out []ir.EnumValue
	for _, p := range parts {
		name, raw, _ := splitAssign(normSpace(p))
		if name == "" {
			continue
		}
		v := ir.EnumValue{Name: name, Raw: raw}
		switch {
		case raw != "":
			v.Value, v.Integer = parseIntLiteral(raw)
		case len(out) == 0:
			v.Integer = true
		case out[len(out)-1].Integer:
			v.Value, v.Integer = out[len(out)-1].Value+1, true
		}
		out = append(out, v)
	}
	return out
}

// parseIntLiteral decodes C++ integer literals: digit separators, base
// prefixes and u/l suffixes.
func parseIntLiteral(s string) (int64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "'", "")
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = strings.TrimSpace(s[1:])
	case strings.HasPrefix(s, "+"):
		s = strings.TrimSpace(s[1:])
	}
	s = strings.TrimRight(s, "uUlL")
	if len(s) > 1 && s[0] == '0' && s[1] >= '0' && s[1] <= '9' {
		s = "0o" + s[1:]
	}
	u, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		return -int64(u), true
	}
	return int64(u), true
}

// stripAttributeGroups blanks every [[...]] group.
func stripAttributeGroups(s string) string {
	b := []byte(s)
	for i := 0; i+1 < len(b); i++ {
		if b[i] != '[' || b[i+1] != '[' {
			continue
		}
		end := findGroupEnd(b, i+2)
		if end < 0 {
			break
		}
		blank(b, i, end+2)
		i = end + 1
	}
	return string(b)
}
