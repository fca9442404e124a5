// Package decl builds the typed-declaration model shared by the TypeScript
// and Teal backends. Each backend supplies a TypeTable and formats the
// resulting model in its own syntax.
package decl

import (
	"slices"
	"strconv"

	"github.com/Alia5/luaexpose/internal/codegen/ir"
	"github.com/Alia5/luaexpose/internal/codegen/meta"
	"github.com/Alia5/luaexpose/internal/codegen/rules"
)

// TypeTable maps type categories to a target language.
type TypeTable struct {
	Number  string
	String  string
	Boolean string
	Any     string
	Void    string

	Sequence func(elem string) string
	Map      func(key, value string) string
	Optional func(t string) string
	Function func(params []Param, ret string) string
	Enum     func(name string) string
	Tuple    func(elems []string) string

	// Keywords are reserved words that cannot name a parameter.
	Keywords map[string]bool
}

// Param is one declared parameter.
type Param struct {
	Name     string
	Type     string
	Variadic bool
}

// Function is one declared signature. Overload groups produce one
// Function per distinct mapped signature.
type Function struct {
	Name     string
	Params   []Param
	Return   string
	Static   bool
	Generics []string
}

type Field struct {
	Name     string
	Type     string
	Optional bool
	Readonly bool
	Static   bool
}

type Property struct {
	Name     string
	Type     string
	Readonly bool
}

type Class struct {
	Name string
	// NoConstructor reports a type that scripts cannot construct.
	NoConstructor bool
	Constructors  []Function
	Methods       []Function
	Properties    []Property
	Fields        []Field
}

type EnumItem struct {
	Name string
	// Value is the decoded integer, empty when the initializer was not an
	// integer literal.
	Value string
}

type Enum struct {
	Name  string
	Items []EnumItem
}

// Namespace is a script-visible table. Path excludes the root namespace,
// which binds on the globals.
type Namespace struct {
	Name      string
	Path      []string
	Functions []Function
	Fields    []Field
	Children  []*Namespace
	// Detached reports a namespace whose parent is declared by another
	// unit.
	Detached bool
}

// Unit is the declaration model of one output grouping.
type Unit struct {
	Group      string
	Classes    []Class
	Enums      []Enum
	Namespaces []*Namespace
	Globals    Namespace
}

// Options configures Build.
type Options struct {
	// Root is the C++ namespace whose members bind on the globals.
	Root string
}

// Build maps one unit through table.
func Build(md *meta.Metadata, u *meta.Unit, table TypeTable, opts Options) Unit {
	b := &builder{m: newMapper(md.Program, table)}
	out := Unit{Group: u.Group}

	if u.Globals != nil {
		b.scope(&out.Globals, rules.BuildScope(md.Program, u.Globals, ""))
	}

	byNS := map[*ir.Namespace]*Namespace{}
	for _, ns := range u.Namespaces {
		bound := rules.BuildNamespace(md.Program, ns)
		if ns.Parent == nil && ns.Name == opts.Root {
			b.scope(&out.Globals, bound)
			continue
		}
		d := &Namespace{Name: ns.Name, Path: scriptPath(ns, opts.Root)}
		b.scope(d, bound)
		byNS[ns] = d
		if parent, ok := byNS[ns.Parent]; ok {
			parent.Children = append(parent.Children, d)
			continue
		}
		d.Detached = len(d.Path) > 1
		out.Namespaces = append(out.Namespaces, d)
	}

	enums := append([]*ir.Enum(nil), u.Enums...)
	for _, c := range u.Classes {
		cls := rules.BuildClass(md.Program, c)
		out.Classes = append(out.Classes, b.class(cls))
		enums = append(enums, cls.Enums...)
	}
	for _, e := range enums {
		out.Enums = append(out.Enums, enumOf(e))
	}
	return out
}

func scriptPath(ns *ir.Namespace, root string) []string {
	var path []string
	for cur := ns; cur != nil; cur = cur.Parent {
		if cur.Parent == nil && cur.Name == root {
			break
		}
		path = append([]string{cur.Name}, path...)
	}
	return path
}

type builder struct {
	m *mapper
}

func (b *builder) scope(d *Namespace, s rules.Namespace) {
	for _, m := range s.Functions {
		for _, f := range m.Candidates {
			fn := b.m.function(f, m.Name)
			fn.Static = true
			d.Functions = appendUnique(d.Functions, fn)
		}
	}
	for _, t := range s.Templates {
		for _, fn := range b.m.template(t) {
			fn.Static = true
			d.Functions = appendUnique(d.Functions, fn)
		}
	}
	for _, fb := range s.Fields {
		d.Fields = append(d.Fields, Field{
			Name:     fb.Name,
			Type:     b.m.typeOf(fb.Field.Ref),
			Optional: fb.Optional,
			Readonly: fb.Readonly,
		})
	}
}

func (b *builder) class(cls rules.Class) Class {
	out := Class{Name: cls.Name, NoConstructor: cls.Ctors.Kind == rules.CtorNone}
	for _, f := range cls.Ctors.Candidates {
		fn := b.m.function(f, "new")
		fn.Return = cls.Name
		out.Constructors = appendUnique(out.Constructors, fn)
	}
	for _, m := range cls.Methods {
		name := m.Name
		if m.Meta != "" {
			name = "__" + m.Meta
		}
		for _, f := range m.Candidates {
			out.Methods = appendUnique(out.Methods, b.m.function(f, name))
		}
	}
	for _, t := range cls.Templates {
		for _, fn := range b.m.template(t) {
			out.Methods = appendUnique(out.Methods, fn)
		}
	}
	for _, a := range cls.Forwards {
		out.Methods = appendUnique(out.Methods, b.m.forward(a, cls.Qualified))
	}
	for _, p := range cls.Properties {
		out.Properties = append(out.Properties, Property{
			Name:     p.Name,
			Type:     b.m.typeOf(p.Getter.Return),
			Readonly: p.ReadOnly(),
		})
	}
	for _, fb := range cls.Fields {
		out.Fields = append(out.Fields, Field{
			Name:     fb.Name,
			Type:     b.m.typeOf(fb.Field.Ref),
			Optional: fb.Optional,
			Readonly: fb.Readonly,
			Static:   fb.Static,
		})
	}
	return out
}

// appendUnique appends fn unless fns already declares the same signature.
// C++ overloads such as f(int) and f(float) collapse once mapped; the first
// candidate's parameter names win.
func appendUnique(fns []Function, fn Function) []Function {
	for _, have := range fns {
		if sameSignature(have, fn) {
			return fns
		}
	}
	return append(fns, fn)
}

func sameSignature(a, b Function) bool {
	if a.Name != b.Name || a.Return != b.Return || a.Static != b.Static {
		return false
	}
	if !slices.Equal(a.Generics, b.Generics) {
		return false
	}
	return slices.EqualFunc(a.Params, b.Params, func(x, y Param) bool {
		return x.Type == y.Type && x.Variadic == y.Variadic
	})
}

func enumOf(e *ir.Enum) Enum {
	out := Enum{Name: e.Name}
	for _, v := range e.Values {
		item := EnumItem{Name: v.Name}
		if v.Integer {
			item.Value = strconv.FormatInt(v.Value, 10)
		}
		out.Items = append(out.Items, item)
	}
	return out
}
