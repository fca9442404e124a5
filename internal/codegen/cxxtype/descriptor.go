// Package cxxtype parses C++ type spellings into the structured descriptor
// every backend maps from.
package cxxtype

import (
	"strings"
)

// MaxDepth bounds template-argument nesting; deeper spellings parse as opaque.
const MaxDepth = 16

// Descriptor is a normalized C++ type: base name, template arguments and
// declarator shape. Namespace separators in Name are normalized to ".".
type Descriptor struct {
	Name      string       `json:"name" yaml:"name"`
	Args      []Descriptor `json:"args,omitempty" yaml:"args,omitempty"`
	Const     bool         `json:"const,omitempty" yaml:"const,omitempty"`
	Volatile  bool         `json:"volatile,omitempty" yaml:"volatile,omitempty"`
	Pointers  int          `json:"pointers,omitempty" yaml:"pointers,omitempty"`
	Reference bool         `json:"reference,omitempty" yaml:"reference,omitempty"`
	RValue    bool         `json:"rvalue,omitempty" yaml:"rvalue,omitempty"`
	Variadic  bool         `json:"variadic,omitempty" yaml:"variadic,omitempty"`
	// Opaque marks spellings the parser could not structure (unbalanced
	// brackets, nested member types, nesting past MaxDepth). Name then holds
	// the collapsed spelling.
	Opaque bool   `json:"opaque,omitempty" yaml:"opaque,omitempty"`
	Raw    string `json:"-" yaml:"-"`
}

// Parser carries the alias tables applied during parsing.
type Parser struct {
	Specializations map[string]string
	MaxDepth        int
}

// Default is the parser used by Parse.
var Default = Parser{Specializations: DefaultSpecializations, MaxDepth: MaxDepth}

// Parse parses raw with the default tables.
func Parse(raw string) Descriptor {
	return Default.Parse(raw)
}

// Parse normalizes raw into a Descriptor. Empty input yields "void".
func (p Parser) Parse(raw string) Descriptor {
	return p.parse(raw, 0)
}

func (p Parser) parse(raw string, depth int) Descriptor {
	d := Descriptor{Raw: strings.TrimSpace(raw)}
	s := collapseSpace(d.Raw)
	if s == "" {
		d.Name = "void"
		return d
	}
	limit := p.MaxDepth
	if limit <= 0 {
		limit = MaxDepth
	}
	if depth > limit {
		d.Name = s
		d.Opaque = true
		return d
	}

	if strings.HasSuffix(s, "...") {
		d.Variadic = true
		s = strings.TrimSpace(s[:len(s)-3])
	}
	s = stripDeclarators(&d, s)
	s = stripLeading(&d, s)
	s = strings.TrimPrefix(s, "::")
	if s == "" {
		d.Name = "void"
		return d
	}

	if open := strings.IndexByte(s, '<'); open >= 0 {
		closeIdx := matchAngle(s, open)
		if closeIdx != len(s)-1 {
			d.Name = strings.ReplaceAll(s, "::", ".")
			d.Opaque = true
			return d
		}
		parts, ok := SplitTopLevel(s[open+1 : closeIdx])
		if !ok {
			d.Name = strings.ReplaceAll(s, "::", ".")
			d.Opaque = true
			return d
		}
		for _, part := range parts {
			d.Args = append(d.Args, p.parse(part, depth+1))
		}
		s = strings.TrimSpace(s[:open])
	}

	name, args := aliasName(s, d.Args)
	d.Args = args
	if len(d.Args) > 0 {
		if v, ok := p.Specializations[specializationKey(name, d.Args)]; ok {
			name = v
			d.Args = nil
		}
	}
	d.Name = strings.ReplaceAll(name, "::", ".")
	return d
}

func stripDeclarators(d *Descriptor, s string) string {
	for {
		s = strings.TrimSpace(s)
		switch {
		case strings.HasSuffix(s, "&&"):
			d.RValue = true
			s = s[:len(s)-2]
		case strings.HasSuffix(s, "&"):
			d.Reference = true
			s = s[:len(s)-1]
		case strings.HasSuffix(s, "*"):
			d.Pointers++
			s = s[:len(s)-1]
		case hasWordSuffix(s, "const"):
			d.Const = true
			s = s[:len(s)-len("const")]
		case hasWordSuffix(s, "volatile"):
			d.Volatile = true
			s = s[:len(s)-len("volatile")]
		default:
			return s
		}
	}
}

func stripLeading(d *Descriptor, s string) string {
	for {
		s = strings.TrimSpace(s)
		switch {
		case hasWordPrefix(s, "const"):
			d.Const = true
			s = s[len("const"):]
		case hasWordPrefix(s, "volatile"):
			d.Volatile = true
			s = s[len("volatile"):]
		case hasWordPrefix(s, "typename"):
			s = s[len("typename"):]
		case hasWordPrefix(s, "struct"):
			s = s[len("struct"):]
		case hasWordPrefix(s, "class"):
			s = s[len("class"):]
		case hasWordPrefix(s, "enum"):
			s = s[len("enum"):]
		default:
			return s
		}
	}
}

// String renders the descriptor back into a canonical spelling.
func (d Descriptor) String() string {
	var b strings.Builder
	if d.Const {
		b.WriteString("const ")
	}
	if d.Volatile {
		b.WriteString("volatile ")
	}
	b.WriteString(d.Name)
	if len(d.Args) > 0 {
		b.WriteByte('<')
		for i, a := range d.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.String())
		}
		b.WriteByte('>')
	}
	b.WriteString(strings.Repeat("*", d.Pointers))
	switch {
	case d.RValue:
		b.WriteString("&&")
	case d.Reference:
		b.WriteByte('&')
	}
	if d.Variadic {
		b.WriteString("...")
	}
	return b.String()
}

// Base returns the last component of the normalized name.
func (d Descriptor) Base() string {
	if i := strings.LastIndexByte(d.Name, '.'); i >= 0 {
		return d.Name[i+1:]
	}
	return d.Name
}

// Arg returns the i-th template argument, or a void descriptor.
func (d Descriptor) Arg(i int) Descriptor {
	if i < 0 || i >= len(d.Args) {
		return Descriptor{Name: "void"}
	}
	return d.Args[i]
}

// IsVoid reports a plain void (not a void pointer).
func (d Descriptor) IsVoid() bool {
	return d.Name == "void" && d.Pointers == 0
}

// Category returns the category of the descriptor's base name.
func (d Descriptor) Category() Category {
	if d.Opaque {
		return CategoryOther
	}
	return CategoryOf(d.Name)
}
