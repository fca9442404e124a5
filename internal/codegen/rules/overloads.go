package rules

import "github.com/Alia5/luaexpose/internal/codegen/ir"

// Method is one script-visible name bound to one or more functions.
type Method struct {
	Name       string
	Candidates []*ir.Function
	// Overloaded groups need signature disambiguation: more than one
	// candidate, or any candidate marked FUNC_OVERLOAD.
	Overloaded bool
	// UseStatic asks for static_cast disambiguation, set by use_static or
	// by a static candidate sharing the name with a member candidate.
	UseStatic bool
	// Meta holds the meta-method name for META_FUNC groups.
	Meta string
	// Static is set when every candidate is static.
	Static bool
}

// First returns the first candidate.
func (m Method) First() *ir.Function { return m.Candidates[0] }

func groupKey(f *ir.Function) string {
	if IsMetaFunction(f) && !f.Attributes.Has(ir.MarkerFunc, ir.MarkerFuncOverload) {
		return "meta:" + MetaName(f)
	}
	return "name:" + ExposedName(f)
}

// GroupOverloads walks fns once in declaration order and groups exposed
// functions by exposed name. Functions already consumed by an earlier
// group are skipped, so each function appears in exactly one Method.
// Non-exposed functions are ignored.
func GroupOverloads(fns []*ir.Function) []Method {
	byKey := map[string][]*ir.Function{}
	for _, f := range fns {
		if !IsExposed(f) {
			continue
		}
		k := groupKey(f)
		byKey[k] = append(byKey[k], f)
	}

	emitted := map[string]bool{}
	var out []Method
	for _, f := range fns {
		if !IsExposed(f) {
			continue
		}
		k := groupKey(f)
		if emitted[k] {
			continue
		}
		emitted[k] = true
		out = append(out, newMethod(byKey[k]))
	}
	return out
}

func newMethod(cands []*ir.Function) Method {
	m := Method{Name: ExposedName(cands[0]), Candidates: cands, Static: true}
	hasStatic, hasMember := false, false
	for _, c := range cands {
		if IsOverloadMarked(c) {
			m.Overloaded = true
		}
		if UseStatic(c) {
			m.UseStatic = true
		}
		if c.Static {
			hasStatic = true
		} else {
			hasMember = true
			m.Static = false
		}
	}
	if len(cands) > 1 {
		m.Overloaded = true
	}
	if hasStatic && hasMember {
		m.UseStatic = true
	}
	if IsMetaFunction(cands[0]) {
		m.Meta = MetaName(cands[0])
	}
	return m
}
