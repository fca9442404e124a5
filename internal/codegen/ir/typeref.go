package ir

import "github.com/Alia5/luaexpose/internal/codegen/cxxtype"

// TypeKind classifies what a type spelling resolved to.
type TypeKind int

const (
	TypeUnresolved TypeKind = iota
	TypeVoid
	TypePrimitive
	TypeLibrary
	TypeClass
	TypeEnum
	TypeTypedef
	TypeTemplateParam
	TypeOpaque
)

func (k TypeKind) String() string {
	switch k {
	case TypeVoid:
		return "void"
	case TypePrimitive:
		return "primitive"
	case TypeLibrary:
		return "library"
	case TypeClass:
		return "class"
	case TypeEnum:
		return "enum"
	case TypeTypedef:
		return "typedef"
	case TypeTemplateParam:
		return "template-param"
	case TypeOpaque:
		return "opaque"
	}
	return "unresolved"
}

// TypeRef is a type spelling resolved against the linked program.
type TypeRef struct {
	Kind TypeKind
	Desc cxxtype.Descriptor
	Args []TypeRef

	Class   *Class
	Enum    *Enum
	Typedef *Typedef
	// Target is the resolved alias target when Kind is TypeTypedef.
	Target *TypeRef
}

// Final follows typedef targets to the underlying reference.
func (t TypeRef) Final() TypeRef {
	cur := t
	for i := 0; cur.Kind == TypeTypedef && cur.Target != nil && i < cxxtype.MaxDepth; i++ {
		cur = *cur.Target
	}
	return cur
}

// IsEnum reports an enum after typedef resolution.
func (t TypeRef) IsEnum() bool { return t.Final().Kind == TypeEnum }

// IsPrimitive reports a primitive after typedef resolution.
func (t TypeRef) IsPrimitive() bool { return t.Final().Kind == TypePrimitive }
