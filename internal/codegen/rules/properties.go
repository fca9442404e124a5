package rules

import "github.com/Alia5/luaexpose/internal/codegen/ir"

// Property is an accessor synthesized from get_X and an optional set_X.
type Property struct {
	Name   string
	Getter *ir.Function
	Setter *ir.Function
}

// ReadOnly reports a getter without a setter.
func (p Property) ReadOnly() bool { return p.Setter == nil }

// SynthesizeProperties pairs getters with setters of the same property
// name. Paired functions are removed from rest; a setter without a getter
// stays a plain method.
func SynthesizeProperties(fns []*ir.Function) (props []Property, rest []*ir.Function) {
	setters := map[string]*ir.Function{}
	for _, f := range fns {
		if IsSetter(f) {
			if _, dup := setters[PropertyName(f)]; !dup {
				setters[PropertyName(f)] = f
			}
		}
	}
	used := map[*ir.Function]bool{}
	seen := map[string]bool{}
	for _, f := range fns {
		if !IsGetter(f) {
			continue
		}
		name := PropertyName(f)
		if seen[name] {
			continue
		}
		seen[name] = true
		p := Property{Name: name, Getter: f, Setter: setters[name]}
		used[f] = true
		if p.Setter != nil {
			used[p.Setter] = true
		}
		props = append(props, p)
	}
	for _, f := range fns {
		if !used[f] {
			rest = append(rest, f)
		}
	}
	return props, rest
}
