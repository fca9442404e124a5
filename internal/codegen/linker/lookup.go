package linker

import (
	"strings"

	"github.com/Alia5/luaexpose/internal/codegen/ir"
)

// symbols keys declarations by qualified and by simple name. The first
// registration of a name wins.
type symbols[T any] struct {
	qualified map[string]T
	simple    map[string]T
}

func newSymbols[T any]() symbols[T] {
	return symbols[T]{qualified: map[string]T{}, simple: map[string]T{}}
}

// add registers v and reports false when the qualified name is taken.
func (s symbols[T]) add(qualified string, v T) bool {
	if _, dup := s.qualified[qualified]; dup {
		return false
	}
	s.qualified[qualified] = v
	if simple := lastSegment(qualified); simple != "" {
		if _, taken := s.simple[simple]; !taken {
			s.simple[simple] = v
		}
	}
	return true
}

// lookup tries name qualified with each enclosing scope of from, inner to
// outer, then the name as given, then its simple name.
func (s symbols[T]) lookup(name, from string) (T, bool) {
	name = normalizeName(name)
	for scope := from; scope != ""; scope = parentScope(scope) {
		if v, ok := s.qualified[scope+"::"+name]; ok {
			return v, true
		}
	}
	if v, ok := s.qualified[name]; ok {
		return v, true
	}
	v, ok := s.simple[lastSegment(name)]
	return v, ok
}

// normalizeName strips a leading "::", template arguments and spaces.
func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "::")
	name = strings.ReplaceAll(name, ".", "::")
	if i := strings.IndexByte(name, '<'); i >= 0 {
		name = name[:i]
	}
	return strings.ReplaceAll(name, " ", "")
}

func lastSegment(q string) string {
	if i := strings.LastIndex(q, "::"); i >= 0 {
		return q[i+2:]
	}
	return q
}

func parentScope(q string) string {
	if i := strings.LastIndex(q, "::"); i >= 0 {
		return q[:i]
	}
	return ""
}

// LookupClass resolves a class name as seen from the scope from.
func (p *Program) LookupClass(name, from string) (*ir.Class, bool) {
	return p.classes.lookup(name, from)
}

// LookupTypedef resolves a typedef name as seen from the scope from.
func (p *Program) LookupTypedef(name, from string) (*ir.Typedef, bool) {
	return p.typedefs.lookup(name, from)
}

// LookupEnum resolves an enum name as seen from the scope from.
func (p *Program) LookupEnum(name, from string) (*ir.Enum, bool) {
	return p.enums.lookup(name, from)
}
