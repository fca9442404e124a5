// Package teal emits Teal declaration files.
package teal

import (
	"strings"

	"github.com/Alia5/luaexpose/internal/codegen/common"
	"github.com/Alia5/luaexpose/internal/codegen/generator/decl"
	"github.com/Alia5/luaexpose/internal/codegen/meta"
	"github.com/Alia5/luaexpose/internal/codegen/render"
)

const Template = "teal.d.tl"

const indent = "    "

type Options struct {
	Root string
}

// Context is the data of one declaration file.
type Context struct {
	Header     string
	Group      string
	Enums      []string
	Classes    []string
	Namespaces []string
	Globals    []string
}

var keywords = map[string]bool{
	"and": true, "break": true, "do": true, "else": true, "elseif": true,
	"end": true, "false": true, "for": true, "function": true, "goto": true,
	"if": true, "in": true, "local": true, "nil": true, "not": true, "or": true,
	"repeat": true, "return": true, "then": true, "true": true, "until": true,
	"while": true, "record": true, "enum": true, "global": true,
}

// Table is the Teal type mapping. Teal admits nil for every type, so
// optionals keep their inner type.
var Table = decl.TypeTable{
	Number:   "number",
	String:   "string",
	Boolean:  "boolean",
	Any:      "any",
	Void:     "",
	Sequence: func(elem string) string { return "{" + elem + "}" },
	Map:      func(k, v string) string { return "{" + k + ":" + v + "}" },
	Optional: func(t string) string { return t },
	Function: func(params []decl.Param, ret string) string {
		return functionType(decl.Function{Params: params, Return: ret}, "")
	},
	Enum:     func(name string) string { return name },
	Tuple:    func(elems []string) string { return "{" + strings.Join(elems, ", ") + "}" },
	Keywords: keywords,
}

// FileName is the declaration file of a unit.
func FileName(u *meta.Unit) string { return u.Group + ".d.tl" }

// Unit builds the declaration job of u.
func Unit(md *meta.Metadata, u *meta.Unit, opts Options) ([]render.Job, error) {
	d := decl.Build(md, u, Table, decl.Options{Root: opts.Root})
	ctx := Context{Header: common.FileHeader("--"), Group: d.Group}
	for _, e := range d.Enums {
		ctx.Enums = append(ctx.Enums, enumDecl(e))
	}
	for _, c := range d.Classes {
		ctx.Classes = append(ctx.Classes, classDecl(c))
	}
	for _, ns := range d.Namespaces {
		ctx.Namespaces = append(ctx.Namespaces, namespaceDecl(ns))
	}
	for _, f := range d.Globals.Functions {
		ctx.Globals = append(ctx.Globals, "global "+f.Name+": "+functionType(f, ""))
	}
	for _, fd := range d.Globals.Fields {
		ctx.Globals = append(ctx.Globals, "global "+fd.Name+": "+fd.Type)
	}
	return []render.Job{{File: FileName(u), Template: Template, Data: ctx}}, nil
}

// functionType spells function<G>(self: S, a: A): R. An empty self omits
// the receiver, an empty return the result list.
func functionType(f decl.Function, self string) string {
	var b strings.Builder
	b.WriteString("function")
	if len(f.Generics) > 0 {
		b.WriteString("<" + strings.Join(f.Generics, ", ") + ">")
	}
	var parts []string
	if self != "" {
		parts = append(parts, "self: "+self)
	}
	for _, p := range f.Params {
		if p.Variadic {
			parts = append(parts, "...: "+p.Type)
			continue
		}
		parts = append(parts, p.Name+": "+p.Type)
	}
	b.WriteString("(" + strings.Join(parts, ", ") + ")")
	if f.Return != "" {
		b.WriteString(": " + f.Return)
	}
	return b.String()
}

func classDecl(c decl.Class) string {
	lines := []string{"global record " + c.Name}
	for _, f := range c.Constructors {
		lines = append(lines, indent+"new: "+functionType(f, ""))
	}
	for _, f := range c.Methods {
		self := c.Name
		if f.Static {
			self = ""
		}
		lines = append(lines, indent+f.Name+": "+functionType(f, self))
	}
	for _, p := range c.Properties {
		lines = append(lines, indent+p.Name+": "+p.Type)
	}
	for _, fd := range c.Fields {
		lines = append(lines, indent+fd.Name+": "+fd.Type)
	}
	lines = append(lines, "end")
	return strings.Join(lines, "\n")
}

func enumDecl(e decl.Enum) string {
	lines := []string{"global enum " + e.Name}
	for _, it := range e.Items {
		lines = append(lines, indent+`"`+it.Name+`"`)
	}
	lines = append(lines, "end")
	return strings.Join(lines, "\n")
}

// namespaceDecl declares ns as a global record with nested records for its
// children. A detached namespace is wrapped in records for the ancestors
// declared elsewhere.
func namespaceDecl(ns *decl.Namespace) string {
	body := namespaceBody(ns, 1)
	if !ns.Detached {
		return "global record " + ns.Name + "\n" + body + "end"
	}
	head := ns.Path[:len(ns.Path)-1]
	depth := len(head)
	var b strings.Builder
	b.WriteString("global record " + head[0] + "\n")
	for i, name := range head[1:] {
		b.WriteString(strings.Repeat(indent, i+1) + "record " + name + "\n")
	}
	b.WriteString(strings.Repeat(indent, depth) + "record " + ns.Name + "\n")
	b.WriteString(namespaceBody(ns, depth+1))
	b.WriteString(strings.Repeat(indent, depth) + "end\n")
	b.WriteString(strings.Repeat(indent, depth) + ns.Name + ": " + ns.Name + "\n")
	for i := depth - 1; i >= 1; i-- {
		b.WriteString(strings.Repeat(indent, i) + "end\n")
		b.WriteString(strings.Repeat(indent, i) + head[i] + ": " + head[i] + "\n")
	}
	b.WriteString("end")
	return b.String()
}

// namespaceBody lists the members of ns at depth, one per line, each
// nested record followed by the field holding it.
func namespaceBody(ns *decl.Namespace, depth int) string {
	pad := strings.Repeat(indent, depth)
	var b strings.Builder
	for _, f := range ns.Functions {
		b.WriteString(pad + f.Name + ": " + functionType(f, "") + "\n")
	}
	for _, fd := range ns.Fields {
		b.WriteString(pad + fd.Name + ": " + fd.Type + "\n")
	}
	for _, c := range ns.Children {
		b.WriteString(pad + "record " + c.Name + "\n")
		b.WriteString(namespaceBody(c, depth+1))
		b.WriteString(pad + "end\n")
		b.WriteString(pad + c.Name + ": " + c.Name + "\n")
	}
	return b.String()
}
