package lua

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Alia5/luaexpose/internal/codegen/common"
	"github.com/Alia5/luaexpose/internal/codegen/ir"
	"github.com/Alia5/luaexpose/internal/codegen/rules"
)

// enumInlineLimit is the largest enum registered with the variadic
// new_enum form; larger enums use the initializer-list form.
const enumInlineLimit = 30

type member struct {
	name string
	key  string
	expr string
}

func quote(s string) string { return `"` + s + `"` }

// classSnippet registers one usertype and its members, sorted by exposed
// name.
func classSnippet(cls rules.Class) string {
	q := cls.Qualified
	args := []string{quote(cls.Name)}
	switch cls.Ctors.Kind {
	case rules.CtorNone:
		args = append(args, "sol::no_constructor")
	case rules.CtorFactories:
		parts := make([]string, len(cls.Ctors.Candidates))
		for i, f := range cls.Ctors.Candidates {
			if len(cls.Ctors.Candidates) == 1 {
				parts[i] = "&" + scoped(q, f.Name)
				continue
			}
			parts[i] = resolveExpr(f, q)
		}
		args = append(args, "sol::factories("+strings.Join(parts, ", ")+")")
	case rules.CtorList:
		parts := make([]string, len(cls.Ctors.Candidates))
		for i, f := range cls.Ctors.Candidates {
			parts[i] = q + "(" + paramList(f) + ")"
		}
		args = append(args, "sol::constructors<"+strings.Join(parts, ", ")+">()")
	}
	if len(cls.Bases) > 0 {
		names := make([]string, len(cls.Bases))
		for i, b := range cls.Bases {
			names[i] = b.QualifiedName()
		}
		args = append(args, "sol::base_classes", "sol::bases<"+strings.Join(names, ", ")+">()")
	}
	create := fmt.Sprintf("state.new_usertype<%s>(%s)", q, strings.Join(args, ", "))

	var members []member
	for _, m := range cls.Methods {
		key := quote(m.Name)
		if m.Meta != "" {
			key = "sol::meta_function::" + m.Meta
		}
		members = append(members, member{name: m.Name, key: key, expr: methodExpr(m, q, true)})
	}
	for _, t := range cls.Templates {
		members = append(members, member{name: t.Name, key: quote(t.Name), expr: templateExpr(t, q)})
	}
	for _, p := range cls.Properties {
		expr := "sol::property(&" + scoped(q, p.Getter.Name)
		if p.Setter != nil {
			expr += ", &" + scoped(q, p.Setter.Name)
		}
		members = append(members, member{name: p.Name, key: quote(p.Name), expr: expr + ")"})
	}
	for _, a := range cls.Forwards {
		members = append(members, member{name: a.Name, key: quote(a.Name), expr: forwardExpr(a, q)})
	}
	for _, fb := range cls.Fields {
		members = append(members, member{name: fb.Name, key: quote(fb.Name), expr: fieldExpr(fb, q)})
	}
	if len(members) == 0 {
		return create + ";"
	}
	slices.SortStableFunc(members, func(a, b member) int { return strings.Compare(a.name, b.name) })

	v := "ut_" + common.SanitizeIdentifier(cls.Name)
	lines := []string{fmt.Sprintf("auto %s = %s;", v, create)}
	for _, m := range members {
		lines = append(lines, fmt.Sprintf("%s[%s] = %s;", v, m.key, m.expr))
	}
	return strings.Join(lines, "\n")
}

func forwardExpr(a rules.ForwardAdapter, q string) string {
	var params strings.Builder
	params.WriteString(q + "& o")
	for i, name := range a.ArgNames() {
		params.WriteString(", " + collapse(a.Args[i]) + " " + name)
	}
	if a.Returns() {
		return fmt.Sprintf("[](%s) -> %s { return o.%s(%s); }", params.String(), collapse(a.Return), a.Function.Name, a.Call)
	}
	return fmt.Sprintf("[](%s) { o.%s(%s); }", params.String(), a.Function.Name, a.Call)
}

func fieldExpr(fb rules.FieldBinding, q string) string {
	target := scoped(q, fb.Field.Name)
	switch {
	case fb.Static && fb.Readonly:
		return "sol::var(" + target + ")"
	case fb.Static:
		return "sol::var(std::ref(" + target + "))"
	case fb.Readonly:
		return "sol::readonly(&" + target + ")"
	}
	return "&" + target
}

// scopeEmitter writes namespace tables, creating each table once per unit.
type scopeEmitter struct {
	root     string
	declared map[string]bool
}

func newScopeEmitter(root string) *scopeEmitter {
	return &scopeEmitter{root: root, declared: map[string]bool{}}
}

// table returns the variable holding ns, appending the statements that
// create it and any missing parent to lines.
func (e *scopeEmitter) table(ns *ir.Namespace, lines *[]string) string {
	if ns == nil || (ns.Parent == nil && ns.Name == e.root) {
		return "state"
	}
	v := "ns_" + common.SanitizeIdentifier(strings.ReplaceAll(ns.QualifiedName(), "::", "_"))
	if e.declared[v] {
		return v
	}
	parent := e.table(ns.Parent, lines)
	*lines = append(*lines, fmt.Sprintf("auto %s = %s[%s].get_or_create<sol::table>();", v, parent, quote(ns.Name)))
	e.declared[v] = true
	return v
}

// namespaceSnippet binds the functions and fields of one scope. A nil
// Decl binds directly on the state.
func (e *scopeEmitter) namespaceSnippet(ns rules.Namespace) string {
	if ns.Empty() {
		return ""
	}
	var lines []string
	tbl := e.table(ns.Decl, &lines)
	for _, m := range ns.Functions {
		lines = append(lines, fmt.Sprintf("%s.set_function(%s, %s);", tbl, quote(m.Name), methodExpr(m, ns.Qualified, false)))
	}
	for _, t := range ns.Templates {
		lines = append(lines, fmt.Sprintf("%s.set_function(%s, %s);", tbl, quote(t.Name), templateExpr(t, ns.Qualified)))
	}
	for _, fb := range ns.Fields {
		target := scoped(ns.Qualified, fb.Field.Name)
		ref := fb.Field.Ref.Final()
		if ref.Kind == ir.TypePrimitive || ref.Kind == ir.TypeEnum {
			lines = append(lines, fmt.Sprintf("%s.set(%s, %s);", tbl, quote(fb.Name), target))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s.set(%s, &%s);", tbl, quote(fb.Name), target))
	}
	return strings.Join(lines, "\n")
}

func enumSnippet(e *ir.Enum) string {
	q := e.QualifiedName()
	if len(e.Values) == 0 || len(e.Values) > enumInlineLimit {
		items := make([]string, len(e.Values))
		for i, v := range e.Values {
			items[i] = fmt.Sprintf("    { %s, %s::%s }", quote(v.Name), q, v.Name)
		}
		if len(items) == 0 {
			return fmt.Sprintf("state.new_enum<%s>(%s, {});", q, quote(e.Name))
		}
		return fmt.Sprintf("state.new_enum<%s>(%s, {\n%s\n});", q, quote(e.Name), strings.Join(items, ",\n"))
	}
	items := make([]string, len(e.Values))
	for i, v := range e.Values {
		items[i] = fmt.Sprintf("    %s, %s::%s", quote(v.Name), q, v.Name)
	}
	return fmt.Sprintf("state.new_enum(%s,\n%s);", quote(e.Name), strings.Join(items, ",\n"))
}
