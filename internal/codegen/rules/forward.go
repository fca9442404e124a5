package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Alia5/luaexpose/internal/codegen/ir"
)

// ForwardAdapter describes a small lambda bridging a method whose native
// signature the runtime cannot bind directly.
type ForwardAdapter struct {
	Name     string
	Function *ir.Function
	// Args are the declared argument types, bound as arg0, arg1, ...
	Args   []string
	Return string
	// Call is the argument text passed to the real method.
	Call string
}

// Returns reports a non-void adapter.
func (a ForwardAdapter) Returns() bool { return a.Return != "" && a.Return != "void" }

// ArgNames returns arg0..argN-1.
func (a ForwardAdapter) ArgNames() []string {
	out := make([]string, len(a.Args))
	for i := range a.Args {
		out[i] = fmt.Sprintf("arg%d", i)
	}
	return out
}

var argsWord = regexp.MustCompile(`\bargs\b`)

// ForwardAdapterOf reads a FORWARD_FUNC(arg=T..., return=R, name=N,
// caller=EXPR) marker. In caller, the word args becomes the argument list
// and the first two '|' become '(' and ')'.
func ForwardAdapterOf(f *ir.Function) (ForwardAdapter, bool) {
	attr, ok := f.Attributes.Find(ir.MarkerForwardFunc)
	if !ok {
		return ForwardAdapter{}, false
	}
	a := ForwardAdapter{Name: f.Name, Function: f, Return: "void"}
	for _, kv := range attr.KV {
		switch kv.Key {
		case "arg":
			a.Args = append(a.Args, kv.Value)
		case "return":
			a.Return = kv.Value
		case "name", "$name":
			a.Name = kv.Value
		}
	}
	if len(attr.KV) == 0 && len(attr.Args) > 0 {
		a.Args = append(a.Args, attr.Args...)
	}

	list := strings.Join(a.ArgNames(), ", ")
	a.Call = list
	if caller, ok := attr.Value("caller"); ok && caller != "true" {
		caller = argsWord.ReplaceAllLiteralString(caller, list)
		caller = strings.Replace(caller, "|", "(", 1)
		caller = strings.Replace(caller, "|", ")", 1)
		a.Call = caller
	}
	return a, true
}
