package ir

import (
	"fmt"
	"strings"
)

// Span locates a declaration. Start and End are byte offsets into the
// preprocessed text, which keeps the line structure of the original file.
type Span struct {
	File  string `json:"file" yaml:"file"`
	Start int    `json:"start" yaml:"start"`
	End   int    `json:"end" yaml:"end"`
	Line  int    `json:"line" yaml:"line"`
}

func (s Span) String() string {
	return fmt.Sprintf("%s:%d", s.File, s.Line)
}

// Access is the access specifier a member was declared under.
type Access int

const (
	AccessPublic Access = iota
	AccessProtected
	AccessPrivate
)

func (a Access) String() string {
	switch a {
	case AccessProtected:
		return "protected"
	case AccessPrivate:
		return "private"
	}
	return "public"
}

func (a Access) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// Scope holds the declarations directly inside a file, namespace or class.
type Scope struct {
	Classes   []*Class    `json:"classes,omitempty" yaml:"classes,omitempty"`
	Functions []*Function `json:"functions,omitempty" yaml:"functions,omitempty"`
	Fields    []*Field    `json:"fields,omitempty" yaml:"fields,omitempty"`
	Enums     []*Enum     `json:"enums,omitempty" yaml:"enums,omitempty"`
	Typedefs  []*Typedef  `json:"typedefs,omitempty" yaml:"typedefs,omitempty"`
}

func (s *Scope) decls() []Decl {
	out := make([]Decl, 0, len(s.Typedefs)+len(s.Classes)+len(s.Enums)+len(s.Functions)+len(s.Fields))
	for _, d := range s.Typedefs {
		out = append(out, d)
	}
	for _, d := range s.Classes {
		out = append(out, d)
	}
	for _, d := range s.Enums {
		out = append(out, d)
	}
	for _, d := range s.Functions {
		out = append(out, d)
	}
	for _, d := range s.Fields {
		out = append(out, d)
	}
	return out
}

// Empty reports a scope without declarations.
func (s *Scope) Empty() bool {
	return len(s.Classes)+len(s.Functions)+len(s.Fields)+len(s.Enums)+len(s.Typedefs) == 0
}

// Macro is a collected object-like macro.
type Macro struct {
	Name string `json:"name" yaml:"name"`
	Body string `json:"body" yaml:"body"`
}

// File is the scan result of one header.
type File struct {
	Path        string       `json:"path" yaml:"path"`
	Global      Scope        `json:"global" yaml:"global"`
	Namespaces  []*Namespace `json:"namespaces,omitempty" yaml:"namespaces,omitempty"`
	Macros      []Macro      `json:"macros,omitempty" yaml:"macros,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// Namespace is a namespace block. Top-level namespaces of the same name merge
// into one node during linking.
type Namespace struct {
	Name       string       `json:"name" yaml:"name"`
	Attributes Attributes   `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Span       Span         `json:"span" yaml:"span"`
	Parent     *Namespace   `json:"-" yaml:"-"`
	Namespaces []*Namespace `json:"namespaces,omitempty" yaml:"namespaces,omitempty"`
	Scope      `yaml:",inline"`
}

// QualifiedName joins the enclosing namespace chain with "::".
func (n *Namespace) QualifiedName() string {
	if n == nil {
		return ""
	}
	var parts []string
	for cur := n; cur != nil; cur = cur.Parent {
		parts = append(parts, cur.Name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "::")
}

// Class is a class, struct or union definition. Identity is
// (Namespace, Name).
type Class struct {
	Name           string     `json:"name" yaml:"name"`
	Namespace      string     `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Keyword        string     `json:"keyword" yaml:"keyword"`
	Bases          []string   `json:"bases,omitempty" yaml:"bases,omitempty"`
	TemplateParams []string   `json:"templateParams,omitempty" yaml:"templateParams,omitempty"`
	Attributes     Attributes `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Span           Span       `json:"span" yaml:"span"`
	Final          bool       `json:"final,omitempty" yaml:"final,omitempty"`
	// Populated is false for linker stubs whose definition has not been
	// merged yet.
	Populated bool `json:"populated" yaml:"populated"`
	// Opaque marks external classes synthesized for unresolved bases.
	Opaque bool `json:"opaque,omitempty" yaml:"opaque,omitempty"`

	Owner           *Namespace `json:"-" yaml:"-"`
	BaseRefs        []*Class   `json:"-" yaml:"-"`
	SpecializedFrom *Class     `json:"-" yaml:"-"`
	Typedef         *Typedef   `json:"-" yaml:"-"`

	Scope `yaml:",inline"`
}

// QualifiedName is Namespace::Name.
func (c *Class) QualifiedName() string {
	if c.Namespace == "" {
		return c.Name
	}
	return c.Namespace + "::" + c.Name
}

// Parameter is one function parameter.
type Parameter struct {
	Name     string  `json:"name,omitempty" yaml:"name,omitempty"`
	Type     string  `json:"type" yaml:"type"`
	Default  string  `json:"default,omitempty" yaml:"default,omitempty"`
	Variadic bool    `json:"variadic,omitempty" yaml:"variadic,omitempty"`
	Ref      TypeRef `json:"-" yaml:"-"`
}

// Function is a free, namespace or member function. At most one of Class
// and Namespace is set; neither means file-global.
type Function struct {
	Name           string      `json:"name" yaml:"name"`
	ReturnType     string      `json:"returnType,omitempty" yaml:"returnType,omitempty"`
	Params         []Parameter `json:"params,omitempty" yaml:"params,omitempty"`
	Attributes     Attributes  `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	TemplateParams []string    `json:"templateParams,omitempty" yaml:"templateParams,omitempty"`
	Constructor    bool        `json:"constructor,omitempty" yaml:"constructor,omitempty"`
	Static         bool        `json:"static,omitempty" yaml:"static,omitempty"`
	Virtual        bool        `json:"virtual,omitempty" yaml:"virtual,omitempty"`
	Const          bool        `json:"const,omitempty" yaml:"const,omitempty"`
	Override       bool        `json:"override,omitempty" yaml:"override,omitempty"`
	Pure           bool        `json:"pure,omitempty" yaml:"pure,omitempty"`
	Inline         bool        `json:"inline,omitempty" yaml:"inline,omitempty"`
	Constexpr      bool        `json:"constexpr,omitempty" yaml:"constexpr,omitempty"`
	Explicit       bool        `json:"explicit,omitempty" yaml:"explicit,omitempty"`
	Access         Access      `json:"access" yaml:"access"`
	Span           Span        `json:"span" yaml:"span"`

	Return    TypeRef    `json:"-" yaml:"-"`
	Class     *Class     `json:"-" yaml:"-"`
	Namespace *Namespace `json:"-" yaml:"-"`
}

// Owner returns the owning class or namespace, or nil for file-global.
func (f *Function) Owner() Decl {
	if f.Class != nil {
		return f.Class
	}
	if f.Namespace != nil {
		return f.Namespace
	}
	return nil
}

// Field is a member or namespace variable.
type Field struct {
	Name        string     `json:"name" yaml:"name"`
	Type        string     `json:"type" yaml:"type"`
	Attributes  Attributes `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Initializer string     `json:"initializer,omitempty" yaml:"initializer,omitempty"`
	Static      bool       `json:"static,omitempty" yaml:"static,omitempty"`
	Const       bool       `json:"const,omitempty" yaml:"const,omitempty"`
	Constexpr   bool       `json:"constexpr,omitempty" yaml:"constexpr,omitempty"`
	Access      Access     `json:"access" yaml:"access"`
	Span        Span       `json:"span" yaml:"span"`

	Ref       TypeRef    `json:"-" yaml:"-"`
	Class     *Class     `json:"-" yaml:"-"`
	Namespace *Namespace `json:"-" yaml:"-"`
}

// EnumValue is one enumerator. Raw keeps the initializer text; Value is
// meaningful only when Integer is set.
type EnumValue struct {
	Name    string `json:"name" yaml:"name"`
	Raw     string `json:"raw,omitempty" yaml:"raw,omitempty"`
	Value   int64  `json:"value,omitempty" yaml:"value,omitempty"`
	Integer bool   `json:"integer" yaml:"integer"`
}

// Enum is an enumeration.
type Enum struct {
	Name       string      `json:"name" yaml:"name"`
	Underlying string      `json:"underlying" yaml:"underlying"`
	Scoped     bool        `json:"scoped,omitempty" yaml:"scoped,omitempty"`
	Values     []EnumValue `json:"values" yaml:"values"`
	Attributes Attributes  `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Span       Span        `json:"span" yaml:"span"`

	Class     *Class     `json:"-" yaml:"-"`
	Namespace *Namespace `json:"-" yaml:"-"`
}

// QualifiedName prefixes the owning class or namespace.
func (e *Enum) QualifiedName() string {
	switch {
	case e.Class != nil:
		return e.Class.QualifiedName() + "::" + e.Name
	case e.Namespace != nil:
		return e.Namespace.QualifiedName() + "::" + e.Name
	}
	return e.Name
}

// Typedef is a using or typedef alias.
type Typedef struct {
	Name      string `json:"name" yaml:"name"`
	Target    string `json:"target" yaml:"target"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Span      Span   `json:"span" yaml:"span"`

	Class *Class `json:"-" yaml:"-"`
}

// QualifiedName is Namespace::Name.
func (t *Typedef) QualifiedName() string {
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "::" + t.Name
}
