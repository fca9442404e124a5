// Package meta groups a linked program into output units, one per
// originating header.
package meta

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Alia5/luaexpose/internal/codegen/common"
	"github.com/Alia5/luaexpose/internal/codegen/ir"
	"github.com/Alia5/luaexpose/internal/codegen/linker"
	"github.com/Alia5/luaexpose/internal/codegen/rules"
)

// Metadata holds everything the generator core and every backend read.
// It is immutable once built.
type Metadata struct {
	Program *linker.Program
	Units   []*Unit
	// Diagnostics are grouping problems, such as members of unmarked
	// namespaces that are not bound.
	Diagnostics []ir.Diagnostic
}

// Unit is the output grouping of one header.
type Unit struct {
	Path  string
	Group string
	// Classes are binding types and specializations whose binding marker
	// lives in Path, in registration order.
	Classes []*ir.Class
	// Namespaces are bound namespaces homed in Path, parents before
	// children.
	Namespaces []*ir.Namespace
	// Globals is the file-global scope of Path.
	Globals *ir.Scope
	// Enums are bound enums declared in Path outside binding classes.
	Enums []*ir.Enum
}

// Empty reports a unit with nothing to bind.
func (u *Unit) Empty() bool {
	return len(u.Classes)+len(u.Namespaces)+len(u.Enums) == 0 &&
		(u.Globals == nil || (len(u.Globals.Functions) == 0 && len(u.Globals.Fields) == 0))
}

// Build assigns every bindable declaration of prog to its unit. Units are
// sorted by group name; headers with the same stem get a numeric suffix in
// path order.
func Build(prog *linker.Program) *Metadata {
	md := &Metadata{Program: prog}
	byPath := map[string]*Unit{}
	var order []string
	unit := func(path string) *Unit {
		if u, ok := byPath[path]; ok {
			return u
		}
		u := &Unit{Path: path}
		byPath[path] = u
		order = append(order, path)
		return u
	}

	for _, f := range prog.Files {
		u := unit(f.Path)
		u.Globals = &f.Global
		for _, e := range f.Global.Enums {
			if rules.IsBoundEnum(e) {
				u.Enums = append(u.Enums, e)
			}
		}
	}

	for _, c := range prog.Classes {
		if !rules.IsBindingType(c) {
			continue
		}
		u := unit(c.Span.File)
		u.Classes = append(u.Classes, c)
	}

	queue := append([]*ir.Namespace(nil), prog.Namespaces...)
	for len(queue) > 0 {
		ns := queue[0]
		queue = queue[1:]
		queue = append(queue, ns.Namespaces...)
		for _, e := range ns.Enums {
			if rules.IsBoundEnum(e) {
				u := unit(e.Span.File)
				u.Enums = append(u.Enums, e)
			}
		}
		if !rules.IsBoundNamespace(ns) {
			if n := len(ns.Functions) + len(ns.Fields); n > 0 {
				md.Diagnostics = append(md.Diagnostics, ir.Diagnostic{
					Severity: ir.SeverityInfo,
					Kind:     ir.DiagSkipped,
					Message:  fmt.Sprintf("namespace %s carries no namespace marker; %d member(s) not bound", ns.QualifiedName(), n),
					Span:     ns.Span,
				})
			}
			continue
		}
		home, ok := prog.Home(ns)
		if !ok {
			home = ns.Span.File
		}
		u := unit(home)
		u.Namespaces = append(u.Namespaces, ns)
	}

	for _, path := range order {
		if u := byPath[path]; !u.Empty() {
			md.Units = append(md.Units, u)
		}
	}
	assignGroups(md.Units)
	return md
}

func assignGroups(units []*Unit) {
	slices.SortFunc(units, func(a, b *Unit) int { return strings.Compare(a.Path, b.Path) })
	used := map[string]int{}
	for _, u := range units {
		g := common.GroupName(u.Path)
		used[g]++
		if n := used[g]; n > 1 {
			g = fmt.Sprintf("%s_%d", g, n)
		}
		u.Group = g
	}
	slices.SortStableFunc(units, func(a, b *Unit) int { return strings.Compare(a.Group, b.Group) })
}

// Unit returns the unit of path.
func (md *Metadata) Unit(path string) (*Unit, bool) {
	for _, u := range md.Units {
		if u.Path == path {
			return u, true
		}
	}
	return nil, false
}
