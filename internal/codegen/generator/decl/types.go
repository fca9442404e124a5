package decl

import (
	"fmt"
	"strings"

	"github.com/Alia5/luaexpose/internal/codegen/cxxtype"
	"github.com/Alia5/luaexpose/internal/codegen/ir"
	"github.com/Alia5/luaexpose/internal/codegen/linker"
	"github.com/Alia5/luaexpose/internal/codegen/rules"
)

type mapper struct {
	prog  *linker.Program
	table TypeTable
	// subst maps template parameter names to declared types while a
	// template instance is mapped.
	subst map[string]string
}

func newMapper(prog *linker.Program, table TypeTable) *mapper {
	return &mapper{prog: prog, table: table}
}

func (m *mapper) with(subst map[string]string) *mapper {
	return &mapper{prog: m.prog, table: m.table, subst: subst}
}

// typeOf maps a resolved reference. Pointers and references are dropped;
// smart pointers unwrap to their pointee.
func (m *mapper) typeOf(ref ir.TypeRef) string {
	t := m.table
	switch ref.Kind {
	case ir.TypeVoid:
		return t.Void
	case ir.TypeOpaque, ir.TypeUnresolved:
		return t.Any
	case ir.TypeTemplateParam:
		if s, ok := m.subst[strings.ReplaceAll(ref.Desc.Name, ".", "::")]; ok {
			return s
		}
		return t.Any
	case ir.TypeClass:
		if ref.Class == nil || ref.Class.Opaque || !rules.IsBindingType(ref.Class) {
			return t.Any
		}
		return ref.Class.Name
	case ir.TypeEnum:
		return t.Enum(ref.Enum.Name)
	case ir.TypeTypedef:
		if ref.Target == nil {
			return t.Any
		}
		return m.typeOf(*ref.Target)
	}

	d := ref.Desc
	arg := func(i int) string {
		if i < len(ref.Args) {
			return m.typeOf(ref.Args[i])
		}
		return t.Any
	}
	switch d.Category() {
	case cxxtype.CategoryBool:
		return t.Boolean
	case cxxtype.CategoryInteger, cxxtype.CategoryFloat:
		return t.Number
	case cxxtype.CategoryChar:
		if d.Pointers > 0 {
			return t.String
		}
		return t.Number
	case cxxtype.CategoryString:
		return t.String
	case cxxtype.CategorySequence:
		return t.Sequence(arg(0))
	case cxxtype.CategoryMap:
		return t.Map(arg(0), arg(1))
	case cxxtype.CategorySmartPointer:
		return arg(0)
	case cxxtype.CategoryOptional:
		return t.Optional(arg(0))
	case cxxtype.CategoryPair:
		return t.Tuple([]string{arg(0), arg(1)})
	case cxxtype.CategoryFunction:
		if len(d.Args) == 1 {
			return m.signature(d.Args[0].Raw)
		}
	}
	return t.Any
}

// signature maps the R(A, B) argument of std::function.
func (m *mapper) signature(spelling string) string {
	open := strings.IndexByte(spelling, '(')
	if open < 0 || !strings.HasSuffix(spelling, ")") {
		return m.table.Any
	}
	ret := m.resolved(spelling[:open])
	inner := strings.TrimSpace(spelling[open+1 : len(spelling)-1])
	var params []Param
	if inner != "" && inner != "void" {
		parts, ok := cxxtype.SplitTopLevel(inner)
		if !ok {
			return m.table.Any
		}
		for i, p := range parts {
			params = append(params, Param{Name: fmt.Sprintf("arg%d", i), Type: m.resolved(p)})
		}
	}
	return m.table.Function(params, ret)
}

func (m *mapper) resolved(spelling string) string {
	return m.typeOf(m.prog.ResolveType(spelling, "", nil))
}

func (m *mapper) paramName(name string, i int) string {
	if name == "" {
		return fmt.Sprintf("arg%d", i)
	}
	if m.table.Keywords[name] {
		return name + "_"
	}
	return name
}

// function maps f under the exposed name. Declared type overrides replace
// mapped types; with use_generic they become generic parameters.
func (m *mapper) function(f *ir.Function, name string) Function {
	out := Function{Name: name, Static: f.Static, Return: m.typeOf(f.Return)}
	overrides := rules.TypeOverrides(f)
	generic := rules.UseGeneric(f)
	seen := map[string]bool{}
	addGeneric := func(t string) {
		if generic && !seen[t] {
			seen[t] = true
			out.Generics = append(out.Generics, t)
		}
	}
	for i, p := range f.Params {
		if p.Ref.Desc.Name == "sol.this_state" || p.Ref.Desc.Name == "sol.this_environment" {
			continue
		}
		param := Param{Name: m.paramName(p.Name, i), Type: m.typeOf(p.Ref)}
		if p.Variadic || p.Ref.Desc.Name == "sol.variadic_args" {
			param.Variadic = true
			if p.Name == "" {
				param.Name = "args"
			}
			if param.Type == m.table.Void || p.Ref.Desc.Name == "sol.variadic_args" {
				param.Type = m.table.Any
			}
		}
		if o, ok := overrides[p.Name]; ok && p.Name != "" {
			param.Type = o
			addGeneric(o)
		}
		out.Params = append(out.Params, param)
	}
	if o, ok := overrides["return"]; ok {
		out.Return = o
		addGeneric(o)
	}
	return out
}

// template maps one instance per argument of a template binding.
func (m *mapper) template(t rules.TemplateInstance) []Function {
	f := t.Function
	from := ""
	if f.Class != nil {
		from = f.Class.QualifiedName()
	} else if f.Namespace != nil {
		from = f.Namespace.QualifiedName()
	}
	out := make([]Function, 0, len(t.Args))
	for _, a := range t.Args {
		subst := map[string]string{}
		mapped := m.typeOf(m.prog.ResolveType(a, from, nil))
		for _, tp := range f.TemplateParams {
			subst[tp] = mapped
		}
		if len(f.TemplateParams) == 0 {
			subst["T"] = mapped
		}
		out = append(out, m.with(subst).function(f, t.Name))
	}
	return out
}

// forward maps a forwarding adapter from its declared argument and return
// types.
func (m *mapper) forward(a rules.ForwardAdapter, owner string) Function {
	out := Function{Name: a.Name, Return: m.table.Void}
	for i, name := range a.ArgNames() {
		out.Params = append(out.Params, Param{Name: name, Type: m.typeOf(m.prog.ResolveType(a.Args[i], owner, nil))})
	}
	if a.Returns() {
		out.Return = m.typeOf(m.prog.ResolveType(a.Return, owner, nil))
	}
	return out
}
