package lua

import (
	"strings"

	"github.com/Alia5/luaexpose/internal/codegen/ir"
	"github.com/Alia5/luaexpose/internal/codegen/rules"
)

// spell renders a type for native code. Declarations the linker resolved
// to a class, enum or typedef are qualified so the spelling holds outside
// the declaring scope; everything else keeps its source spelling.
func spell(ref ir.TypeRef, raw string) string {
	if ref.Desc.Opaque || len(ref.Desc.Args) > 0 || ref.Desc.Variadic {
		return collapse(raw)
	}
	var q string
	switch ref.Kind {
	case ir.TypeClass:
		if ref.Class == nil || ref.Class.Opaque {
			return collapse(raw)
		}
		q = ref.Class.QualifiedName()
	case ir.TypeEnum:
		q = ref.Enum.QualifiedName()
	case ir.TypeTypedef:
		q = ref.Typedef.QualifiedName()
	default:
		return collapse(raw)
	}
	d := ref.Desc
	d.Name = q
	return d.String()
}

func collapse(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "void"
	}
	return s
}

func returnType(f *ir.Function) string { return spell(f.Return, f.ReturnType) }

func paramList(f *ir.Function) string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		if p.Variadic && p.Type == "" {
			parts[i] = "..."
			continue
		}
		parts[i] = spell(p.Ref, p.Type)
	}
	return strings.Join(parts, ", ")
}

// signature is R(P...) with a trailing const for const members.
func signature(f *ir.Function) string {
	s := returnType(f) + "(" + paramList(f) + ")"
	if f.Const && !f.Static {
		s += " const"
	}
	return s
}

// resolveExpr is a sol::resolve disambiguation of &owner::name.
func resolveExpr(f *ir.Function, owner string) string {
	return "sol::resolve<" + signature(f) + ">(&" + scoped(owner, f.Name) + ")"
}

// staticCastExpr casts &owner::name to its exact function pointer type.
func staticCastExpr(f *ir.Function, owner string, member bool) string {
	ptr := "(*)"
	if member && !f.Static {
		ptr = "(" + owner + "::*)"
	}
	t := returnType(f) + " " + ptr + "(" + paramList(f) + ")"
	if member && f.Const && !f.Static {
		t += " const"
	}
	return "static_cast<" + t + ">(&" + scoped(owner, f.Name) + ")"
}

func scoped(owner, name string) string {
	if owner == "" {
		return "::" + name
	}
	return owner + "::" + name
}

// methodExpr binds a method group: a plain address for unique names,
// sol::overload over resolved candidates otherwise.
func methodExpr(m rules.Method, owner string, member bool) string {
	one := func(f *ir.Function) string {
		switch {
		case m.UseStatic:
			return staticCastExpr(f, owner, member)
		case m.Overloaded:
			return resolveExpr(f, owner)
		}
		return "&" + scoped(owner, f.Name)
	}
	if len(m.Candidates) == 1 {
		return one(m.First())
	}
	parts := make([]string, len(m.Candidates))
	for i, c := range m.Candidates {
		parts[i] = one(c)
	}
	return "sol::overload(" + strings.Join(parts, ", ") + ")"
}

func templateExpr(t rules.TemplateInstance, owner string) string {
	if len(t.Args) == 1 {
		return "&" + scoped(owner, t.Function.Name) + "<" + t.Args[0] + ">"
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = "&" + scoped(owner, t.Function.Name) + "<" + a + ">"
	}
	return "sol::overload(" + strings.Join(parts, ", ") + ")"
}
