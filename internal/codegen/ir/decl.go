// Package ir holds the declaration model shared by the scanner, the linker
// and every generator backend.
package ir

import "fmt"

// Kind tags each declaration variant.
type Kind int

const (
	KindNamespace Kind = iota + 1
	KindClass
	KindFunction
	KindField
	KindEnum
	KindTypedef
)

func (k Kind) String() string {
	switch k {
	case KindNamespace:
		return "namespace"
	case KindClass:
		return "class"
	case KindFunction:
		return "function"
	case KindField:
		return "field"
	case KindEnum:
		return "enum"
	case KindTypedef:
		return "typedef"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Decl is the closed set of declaration nodes: *Namespace, *Class,
// *Function, *Field, *Enum and *Typedef.
type Decl interface {
	Kind() Kind
	DeclName() string
	DeclSpan() Span
	DeclAttributes() Attributes
	decl()
}

func (*Namespace) Kind() Kind { return KindNamespace }
func (*Class) Kind() Kind     { return KindClass }
func (*Function) Kind() Kind  { return KindFunction }
func (*Field) Kind() Kind     { return KindField }
func (*Enum) Kind() Kind      { return KindEnum }
func (*Typedef) Kind() Kind   { return KindTypedef }

func (n *Namespace) DeclName() string { return n.Name }
func (c *Class) DeclName() string     { return c.Name }
func (f *Function) DeclName() string  { return f.Name }
func (f *Field) DeclName() string     { return f.Name }
func (e *Enum) DeclName() string      { return e.Name }
func (t *Typedef) DeclName() string   { return t.Name }

func (n *Namespace) DeclSpan() Span { return n.Span }
func (c *Class) DeclSpan() Span     { return c.Span }
func (f *Function) DeclSpan() Span  { return f.Span }
func (f *Field) DeclSpan() Span     { return f.Span }
func (e *Enum) DeclSpan() Span      { return e.Span }
func (t *Typedef) DeclSpan() Span   { return t.Span }

func (n *Namespace) DeclAttributes() Attributes { return n.Attributes }
func (c *Class) DeclAttributes() Attributes     { return c.Attributes }
func (f *Function) DeclAttributes() Attributes  { return f.Attributes }
func (f *Field) DeclAttributes() Attributes     { return f.Attributes }
func (e *Enum) DeclAttributes() Attributes      { return e.Attributes }
func (*Typedef) DeclAttributes() Attributes     { return nil }

func (*Namespace) decl() {}
func (*Class) decl()     {}
func (*Function) decl()  {}
func (*Field) decl()     {}
func (*Enum) decl()      {}
func (*Typedef) decl()   {}

// Children returns the declarations directly nested under d.
func Children(d Decl) []Decl {
	switch n := d.(type) {
	case *Namespace:
		out := n.Scope.decls()
		for _, child := range n.Namespaces {
			out = append(out, child)
		}
		return out
	case *Class:
		return n.Scope.decls()
	case *Function, *Field, *Enum, *Typedef:
		return nil
	default:
		panic(fmt.Sprintf("ir: unknown declaration %T", d))
	}
}

// Walk visits root and its descendants depth first in declaration-list
// order. Returning false from visit skips the children of that node.
func Walk(root Decl, visit func(Decl) bool) {
	stack := []Decl{root}
	for len(stack) > 0 {
		d := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !visit(d) {
			continue
		}
		children := Children(d)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}

// WalkFile walks the file-global scope and then every top-level namespace.
func WalkFile(f *File, visit func(Decl) bool) {
	for _, d := range f.Global.decls() {
		Walk(d, visit)
	}
	for _, ns := range f.Namespaces {
		Walk(ns, visit)
	}
}
