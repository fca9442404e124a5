package rules

import "github.com/Alia5/luaexpose/internal/codegen/ir"

// FlattenBases returns the binding-type bases of c, walked transitively in
// depth-first declaration order. Each base appears once and cycles stop.
func FlattenBases(c *ir.Class) []*ir.Class {
	var out []*ir.Class
	seen := map[*ir.Class]bool{c: true}
	var walk func(*ir.Class)
	walk = func(cur *ir.Class) {
		for _, b := range cur.BaseRefs {
			if seen[b] || !IsBindingType(b) {
				continue
			}
			seen[b] = true
			out = append(out, b)
			walk(b)
		}
	}
	walk(c)
	return out
}

// InheritedMembers collects what the derived class must bind itself: the
// virtual exposed functions and bound fields of every flattened base.
// Names already present in c, or in a nearer base, are skipped.
func InheritedMembers(c *ir.Class) (fns []*ir.Function, fields []*ir.Field) {
	fnNames := map[string]bool{}
	for _, f := range c.Functions {
		fnNames[ExposedName(f)] = true
	}
	fieldNames := map[string]bool{}
	for _, fd := range c.Fields {
		fieldNames[fd.Name] = true
	}
	for _, b := range FlattenBases(c) {
		for _, f := range b.Functions {
			if !IsExposed(f) || !f.Virtual || f.Static || IsConstructor(f) {
				continue
			}
			name := ExposedName(f)
			if fnNames[name] {
				continue
			}
			fns = append(fns, f)
		}
		for _, f := range fns {
			fnNames[ExposedName(f)] = true
		}
		for _, fd := range b.Fields {
			if !IsBoundField(fd) || fieldNames[fd.Name] {
				continue
			}
			fieldNames[fd.Name] = true
			fields = append(fields, fd)
		}
	}
	return fns, fields
}
