package rules

import (
	"strings"

	"github.com/Alia5/luaexpose/internal/codegen/ir"
)

// TemplateInstance binds one exposed name to explicit instantiations of a
// member function template.
type TemplateInstance struct {
	Name     string
	Function *ir.Function
	// Args are the template argument spellings; more than one means the
	// instantiations share the name as an overload set.
	Args []string
	// Classes are the binding classes named by Args, for includes.
	Classes []*ir.Class
}

// TemplateInstances expands a FUNC_TEMPLATE marker. FUNC_TEMPLATE(A, B)
// binds both instantiations under the function name; FUNC_TEMPLATE(Base,
// ...) binds one instantiation per binding class deriving from Base, named
// the function name plus the derived name with Base removed.
func TemplateInstances(f *ir.Function, classes []*ir.Class, lookup func(name string) (*ir.Class, bool)) []TemplateInstance {
	attr, ok := f.Attributes.Find(ir.MarkerFuncTemplate)
	if !ok || len(attr.Args) == 0 {
		return nil
	}
	args := attr.Args
	if len(args) == 2 && args[1] == "..." {
		base := args[0]
		var out []TemplateInstance
		for _, c := range classes {
			if !IsBindingType(c) || !derivesFrom(c, base) {
				continue
			}
			out = append(out, TemplateInstance{
				Name:     f.Name + strings.Replace(c.Name, lastSegment(base), "", 1),
				Function: f,
				Args:     []string{c.QualifiedName()},
				Classes:  []*ir.Class{c},
			})
		}
		return out
	}

	inst := TemplateInstance{Name: f.Name, Function: f, Args: args}
	if lookup != nil {
		for _, a := range args {
			if c, ok := lookup(a); ok {
				inst.Classes = append(inst.Classes, c)
			}
		}
	}
	return []TemplateInstance{inst}
}

func derivesFrom(c *ir.Class, base string) bool {
	want := strings.TrimPrefix(base, "::")
	seen := map[*ir.Class]bool{}
	stack := append([]*ir.Class(nil), c.BaseRefs...)
	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[b] {
			continue
		}
		seen[b] = true
		if b.Name == want || b.QualifiedName() == want {
			return true
		}
		stack = append(stack, b.BaseRefs...)
	}
	return false
}

func lastSegment(q string) string {
	if i := strings.LastIndex(q, "::"); i >= 0 {
		return q[i+2:]
	}
	return q
}
