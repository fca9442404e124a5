package ir

import "slices"

// Clone copies f with fresh parameter, attribute and template slices. Owner
// references are copied as-is; callers re-point them.
func (f *Function) Clone() *Function {
	out := *f
	out.Params = slices.Clone(f.Params)
	out.Attributes = slices.Clone(f.Attributes)
	out.TemplateParams = slices.Clone(f.TemplateParams)
	return &out
}

// Clone copies fd with a fresh attribute slice.
func (fd *Field) Clone() *Field {
	out := *fd
	out.Attributes = slices.Clone(fd.Attributes)
	return &out
}

// Clone copies e with fresh value and attribute slices.
func (e *Enum) Clone() *Enum {
	out := *e
	out.Values = slices.Clone(e.Values)
	out.Attributes = slices.Clone(e.Attributes)
	return &out
}
