// Package typescript emits TypeScript declaration files following the
// TypeScriptToLua conventions: free and static functions take `this: void`
// and constructible classes carry a @customConstructor annotation.
package typescript

import (
	"fmt"
	"strings"

	"github.com/Alia5/luaexpose/internal/codegen/common"
	"github.com/Alia5/luaexpose/internal/codegen/generator/decl"
	"github.com/Alia5/luaexpose/internal/codegen/meta"
	"github.com/Alia5/luaexpose/internal/codegen/render"
)

const Template = "typescript.d.ts"

const indent = "    "

// Options configures the TypeScript backend.
type Options struct {
	// Root is the C++ namespace whose members are declared globally.
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
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true, "do": true,
	"else": true, "enum": true, "export": true, "extends": true, "false": true,
	"finally": true, "for": true, "function": true, "if": true, "import": true,
	"in": true, "instanceof": true, "let": true, "new": true, "null": true,
	"return": true, "static": true, "super": true, "switch": true, "this": true,
	"throw": true, "true": true, "try": true, "typeof": true, "var": true,
	"void": true, "while": true, "with": true, "yield": true,
}

// Table is the TypeScript type mapping.
var Table = decl.TypeTable{
	Number:   "number",
	String:   "string",
	Boolean:  "boolean",
	Any:      "any",
	Void:     "void",
	Sequence: sequence,
	Map:      func(k, v string) string { return "LuaTable<" + k + ", " + v + ">" },
	Optional: func(t string) string { return t + " | undefined" },
	Function: func(params []decl.Param, ret string) string {
		return "(" + paramList(params, false) + ") => " + ret
	},
	Enum:     func(name string) string { return name + " | number" },
	Tuple:    func(elems []string) string { return "LuaMultiReturn<[" + strings.Join(elems, ", ") + "]>" },
	Keywords: keywords,
}

func sequence(elem string) string {
	if strings.ContainsAny(elem, " |") {
		return "(" + elem + ")[]"
	}
	return elem + "[]"
}

// FileName is the declaration file of a unit.
func FileName(u *meta.Unit) string { return u.Group + ".d.ts" }

// Unit builds the declaration job of u.
func Unit(md *meta.Metadata, u *meta.Unit, opts Options) ([]render.Job, error) {
	d := decl.Build(md, u, Table, decl.Options{Root: opts.Root})
	ctx := Context{Header: common.FileHeader("//"), Group: d.Group}
	for _, e := range d.Enums {
		ctx.Enums = append(ctx.Enums, enumDecl(e))
	}
	for _, c := range d.Classes {
		ctx.Classes = append(ctx.Classes, classDecl(c))
	}
	for _, ns := range d.Namespaces {
		ctx.Namespaces = append(ctx.Namespaces, namespaceDecls(ns)...)
	}
	for _, f := range d.Globals.Functions {
		ctx.Globals = append(ctx.Globals, "declare "+functionDecl(f, true)+";")
	}
	for _, fd := range d.Globals.Fields {
		ctx.Globals = append(ctx.Globals, "declare "+variableDecl(fd)+";")
	}
	return []render.Job{{File: FileName(u), Template: Template, Data: ctx}}, nil
}

func paramList(params []decl.Param, noSelf bool) string {
	var parts []string
	if noSelf {
		parts = append(parts, "this: void")
	}
	for _, p := range params {
		if p.Variadic {
			parts = append(parts, "..."+p.Name+": "+sequence(p.Type))
			continue
		}
		parts = append(parts, p.Name+": "+p.Type)
	}
	return strings.Join(parts, ", ")
}

func generics(f decl.Function) string {
	if len(f.Generics) == 0 {
		return ""
	}
	return "<" + strings.Join(f.Generics, ", ") + ">"
}

// functionDecl spells a free or namespace function.
func functionDecl(f decl.Function, noSelf bool) string {
	return fmt.Sprintf("function %s%s(%s): %s", f.Name, generics(f), paramList(f.Params, noSelf), f.Return)
}

func variableDecl(fd decl.Field) string {
	kw := "let"
	if fd.Readonly {
		kw = "const"
	}
	t := fd.Type
	if fd.Optional {
		t = Table.Optional(t)
	}
	return kw + " " + fd.Name + ": " + t
}

func classDecl(c decl.Class) string {
	var lines []string
	if len(c.Constructors) > 0 {
		lines = append(lines, "/** @customConstructor "+c.Name+".new */")
	}
	lines = append(lines, "declare class "+c.Name+" {")
	if c.NoConstructor {
		lines = append(lines, indent+"private constructor();")
	}
	for _, f := range c.Constructors {
		lines = append(lines, indent+"constructor("+paramList(f.Params, false)+");")
	}
	for _, f := range c.Methods {
		if f.Static {
			lines = append(lines, fmt.Sprintf("%sstatic %s%s(%s): %s;", indent, f.Name, generics(f), paramList(f.Params, true), f.Return))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s%s%s(%s): %s;", indent, f.Name, generics(f), paramList(f.Params, false), f.Return))
	}
	for _, p := range c.Properties {
		prefix := ""
		if p.Readonly {
			prefix = "readonly "
		}
		lines = append(lines, indent+prefix+p.Name+": "+p.Type+";")
	}
	for _, fd := range c.Fields {
		var prefix string
		if fd.Static {
			prefix += "static "
		}
		if fd.Readonly {
			prefix += "readonly "
		}
		name := fd.Name
		if fd.Optional {
			name += "?"
		}
		lines = append(lines, indent+prefix+name+": "+fd.Type+";")
	}
	lines = append(lines, "}")
	return strings.Join(lines, "\n")
}

func enumDecl(e decl.Enum) string {
	lines := []string{"declare enum " + e.Name + " {"}
	for _, it := range e.Items {
		if it.Value != "" {
			lines = append(lines, indent+it.Name+" = "+it.Value+",")
			continue
		}
		lines = append(lines, indent+it.Name+",")
	}
	lines = append(lines, "}")
	return strings.Join(lines, "\n")
}

// namespaceDecls declares ns and its children as dotted namespace blocks,
// parents first.
func namespaceDecls(ns *decl.Namespace) []string {
	var lines []string
	for _, f := range ns.Functions {
		lines = append(lines, indent+functionDecl(f, true)+";")
	}
	for _, fd := range ns.Fields {
		lines = append(lines, indent+variableDecl(fd)+";")
	}
	var out []string
	if len(lines) > 0 || len(ns.Children) == 0 {
		block := "declare namespace " + strings.Join(ns.Path, ".") + " {\n" + strings.Join(lines, "\n")
		if len(lines) > 0 {
			block += "\n"
		}
		out = append(out, block+"}")
	}
	for _, c := range ns.Children {
		out = append(out, namespaceDecls(c)...)
	}
	return out
}
