package rules

import (
	"github.com/Alia5/luaexpose/internal/codegen/ir"
	"github.com/Alia5/luaexpose/internal/codegen/linker"
)

// CtorKind is how a class is constructed from script.
type CtorKind int

const (
	// CtorOmitted leaves construction to the runtime default.
	CtorOmitted CtorKind = iota
	CtorNone
	CtorList
	CtorFactories
)

func (k CtorKind) String() string {
	switch k {
	case CtorNone:
		return "none"
	case CtorList:
		return "list"
	case CtorFactories:
		return "factories"
	}
	return "omitted"
}

// Constructors is the construction surface of a class.
type Constructors struct {
	Kind       CtorKind
	Candidates []*ir.Function
}

// ConstructorsOf picks the construction form: none for TYPE_NO_CTOR,
// factories when any static CTOR function exists, otherwise the list of
// constructor declarations, otherwise omitted.
func ConstructorsOf(c *ir.Class) Constructors {
	if IsNoConstructor(c) {
		return Constructors{Kind: CtorNone}
	}
	var factories, list []*ir.Function
	for _, f := range c.Functions {
		switch {
		case IsFactory(f):
			factories = append(factories, f)
		case IsConstructor(f) || f.Constructor:
			list = append(list, f)
		}
	}
	switch {
	case len(factories) > 0:
		return Constructors{Kind: CtorFactories, Candidates: factories}
	case len(list) > 0:
		return Constructors{Kind: CtorList, Candidates: list}
	}
	return Constructors{Kind: CtorOmitted}
}

// FieldBinding is one bound field.
type FieldBinding struct {
	Field     *ir.Field
	Name      string
	Readonly  bool
	Optional  bool
	Static    bool
	Inherited bool
}

func bindField(fd *ir.Field, inherited bool) FieldBinding {
	return FieldBinding{
		Field:     fd,
		Name:      fd.Name,
		Readonly:  IsReadonly(fd),
		Optional:  IsOptional(fd),
		Static:    fd.Static,
		Inherited: inherited,
	}
}

// Class is the backend-neutral binding of one class or specialization.
type Class struct {
	Decl      *ir.Class
	Name      string
	Qualified string
	Ctors     Constructors
	Bases     []*ir.Class
	// Methods cover inherited virtual functions first, then the class's
	// own, grouped by exposed name.
	Methods    []Method
	Properties []Property
	Templates  []TemplateInstance
	Forwards   []ForwardAdapter
	Fields     []FieldBinding
	Enums      []*ir.Enum
}

// BuildClass applies every class rule to c.
func BuildClass(prog *linker.Program, c *ir.Class) Class {
	out := Class{
		Decl:      c,
		Name:      c.Name,
		Qualified: c.QualifiedName(),
		Ctors:     ConstructorsOf(c),
		Bases:     FlattenBases(c),
	}
	inheritedFns, inheritedFields := InheritedMembers(c)

	var exposed []*ir.Function
	exposed = append(exposed, inheritedFns...)
	for _, f := range c.Functions {
		switch {
		case IsConstructor(f) || f.Constructor:
		case IsTemplateFunction(f):
			classes, lookup := templateScope(prog, out.Qualified)
			out.Templates = append(out.Templates, TemplateInstances(f, classes, lookup)...)
		case IsForwardFunction(f):
			if a, ok := ForwardAdapterOf(f); ok {
				out.Forwards = append(out.Forwards, a)
			}
		case IsExposed(f):
			exposed = append(exposed, f)
		}
	}
	props, rest := SynthesizeProperties(exposed)
	out.Properties = props
	out.Methods = GroupOverloads(rest)

	for _, fd := range inheritedFields {
		out.Fields = append(out.Fields, bindField(fd, true))
	}
	for _, fd := range c.Fields {
		if IsBoundField(fd) {
			out.Fields = append(out.Fields, bindField(fd, false))
		}
	}
	for _, e := range c.Enums {
		if IsBoundEnum(e) {
			out.Enums = append(out.Enums, e)
		}
	}
	return out
}

// Namespace is the backend-neutral binding of a namespace or of a file's
// global scope.
type Namespace struct {
	// Decl is nil for a file-global scope.
	Decl      *ir.Namespace
	Name      string
	Qualified string
	Functions []Method
	Templates []TemplateInstance
	Fields    []FieldBinding
	Enums     []*ir.Enum
}

// Empty reports a namespace with nothing to bind.
func (n Namespace) Empty() bool {
	return len(n.Functions)+len(n.Templates)+len(n.Fields)+len(n.Enums) == 0
}

// BuildNamespace applies the scope rules to ns.
func BuildNamespace(prog *linker.Program, ns *ir.Namespace) Namespace {
	out := BuildScope(prog, &ns.Scope, ns.QualifiedName())
	out.Decl = ns
	out.Name = ns.Name
	return out
}

// BuildScope applies the scope rules to s, qualified as qual.
func BuildScope(prog *linker.Program, s *ir.Scope, qual string) Namespace {
	out := Namespace{Qualified: qual}
	var fns []*ir.Function
	for _, f := range s.Functions {
		switch {
		case IsTemplateFunction(f):
			classes, lookup := templateScope(prog, qual)
			out.Templates = append(out.Templates, TemplateInstances(f, classes, lookup)...)
		case IsExposed(f):
			fns = append(fns, f)
		}
	}
	out.Functions = GroupOverloads(fns)
	for _, fd := range s.Fields {
		if IsBoundField(fd) {
			out.Fields = append(out.Fields, bindField(fd, false))
		}
	}
	for _, e := range s.Enums {
		if IsBoundEnum(e) {
			out.Enums = append(out.Enums, e)
		}
	}
	return out
}

func templateScope(prog *linker.Program, from string) ([]*ir.Class, func(string) (*ir.Class, bool)) {
	if prog == nil {
		return nil, nil
	}
	return prog.Classes, func(name string) (*ir.Class, bool) {
		return prog.LookupClass(name, from)
	}
}
