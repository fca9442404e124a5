package linker

import (
	"regexp"
	"strings"

	"github.com/Alia5/luaexpose/internal/codegen/cxxtype"
	"github.com/Alia5/luaexpose/internal/codegen/ir"
)

// defaultTemplateParam is substituted when a template class was scanned
// without a template head.
const defaultTemplateParam = "T"

// expandSpecializations synthesizes one concrete class per typedef named by
// a binding-template marker.
func (lc *linkCtx) expandSpecializations() {
	templates := make([]*ir.Class, 0)
	for _, c := range lc.prog.Classes {
		if c.Populated && c.Attributes.Has(ir.MarkerTypeTemplate) {
			templates = append(templates, c)
		}
	}
	for _, tmpl := range templates {
		attr, _ := tmpl.Attributes.Find(ir.MarkerTypeTemplate)
		for _, name := range attr.Args {
			td, ok := lc.prog.typedefs.lookup(name, tmpl.Namespace)
			if !ok {
				lc.report(ir.SeverityWarning, ir.DiagUnresolvedTypedef, tmpl.Span,
					"specialization %s of %s names no known typedef; skipped", name, tmpl.QualifiedName())
				continue
			}
			spec, ok := lc.specialize(tmpl, td)
			if !ok {
				continue
			}
			if !lc.prog.classes.add(spec.QualifiedName(), spec) {
				lc.report(ir.SeverityWarning, ir.DiagDuplicateClass, td.Span,
					"specialization %s collides with an existing class; skipped", spec.QualifiedName())
				continue
			}
			lc.prog.Classes = append(lc.prog.Classes, spec)
			lc.prog.Specializations = append(lc.prog.Specializations, spec)
			if spec.Owner != nil {
				spec.Owner.Classes = append(spec.Owner.Classes, spec)
			}
		}
	}
}

// templateArgs extracts the top-level arguments of the first template
// argument list in spelling, normalized to fixed-width aliases.
func templateArgs(spelling string) ([]string, bool) {
	open := strings.IndexByte(spelling, '<')
	if open < 0 {
		return nil, false
	}
	depth := 0
	closeIdx := -1
	for i := open; i < len(spelling) && closeIdx < 0; i++ {
		switch spelling[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				closeIdx = i
			}
		}
	}
	if closeIdx < 0 {
		return nil, false
	}
	parts, ok := cxxtype.SplitTopLevel(spelling[open+1 : closeIdx])
	if !ok || len(parts) == 0 {
		return nil, false
	}
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = cxxtype.NormalizeFixedWidth(p)
	}
	return out, true
}

// substituter rewrites member spellings of a template for one
// specialization.
type substituter struct {
	params   []*regexp.Regexp
	args     []string
	tmplName string
	specName string
}

func newSubstituter(tmpl *ir.Class, spec string, args []string) *substituter {
	params := tmpl.TemplateParams
	if len(params) == 0 {
		params = []string{defaultTemplateParam}
	}
	s := &substituter{tmplName: tmpl.Name, specName: spec}
	for i, p := range params {
		if i >= len(args) {
			break
		}
		s.params = append(s.params, regexp.MustCompile(`\b`+regexp.QuoteMeta(p)+`\b`))
		s.args = append(s.args, args[i])
	}
	return s
}

func (s *substituter) apply(text string) string {
	if text == "" {
		return text
	}
	text = replaceTemplateName(text, s.tmplName, s.specName)
	for i, re := range s.params {
		text = re.ReplaceAllLiteralString(text, s.args[i])
	}
	return text
}

// replaceTemplateName replaces whole-word occurrences of name, with or
// without a following template argument list, by spec.
func replaceTemplateName(text, name, spec string) string {
	var b strings.Builder
	for i := 0; i < len(text); {
		if !strings.HasPrefix(text[i:], name) || (i > 0 && isWordByte(text[i-1])) ||
			(i+len(name) < len(text) && isWordByte(text[i+len(name)])) {
			b.WriteByte(text[i])
			i++
			continue
		}
		b.WriteString(spec)
		j := i + len(name)
		k := j
		for k < len(text) && text[k] == ' ' {
			k++
		}
		if k < len(text) && text[k] == '<' {
			depth := 0
			for m := k; m < len(text); m++ {
				if text[m] == '<' {
					depth++
				} else if text[m] == '>' {
					depth--
					if depth == 0 {
						j = m + 1
						break
					}
				}
			}
		}
		i = j
	}
	return b.String()
}

func isWordByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func (lc *linkCtx) specialize(tmpl *ir.Class, td *ir.Typedef) (*ir.Class, bool) {
	args, ok := templateArgs(td.Target)
	if !ok {
		lc.report(ir.SeverityWarning, ir.DiagUnresolvedTypedef, td.Span,
			"typedef %s = %s has no template arguments; specialization skipped", td.Name, td.Target)
		return nil, false
	}
	sub := newSubstituter(tmpl, td.Name, args)

	spec := &ir.Class{
		Name:            td.Name,
		Namespace:       tmpl.Namespace,
		Keyword:         tmpl.Keyword,
		Span:            tmpl.Span,
		Final:           tmpl.Final,
		Populated:       true,
		Owner:           tmpl.Owner,
		SpecializedFrom: tmpl,
		Typedef:         td,
	}
	for _, b := range tmpl.Bases {
		spec.Bases = append(spec.Bases, sub.apply(b))
	}
	for _, a := range tmpl.Attributes {
		if a.Marker == ir.MarkerTypeTemplate {
			a = ir.NewAttribute(ir.MarkerType, strings.TrimSuffix(a.Name, "_TEMPLATE"), "")
		}
		spec.Attributes = append(spec.Attributes, a)
	}

	for _, fn := range tmpl.Functions {
		c := fn.Clone()
		c.Class = spec
		c.ReturnType = sub.apply(c.ReturnType)
		if c.Constructor {
			c.Name = spec.Name
		}
		for i := range c.Params {
			c.Params[i].Type = sub.apply(c.Params[i].Type)
			c.Params[i].Default = sub.apply(c.Params[i].Default)
		}
		spec.Functions = append(spec.Functions, c)
	}
	for _, fd := range tmpl.Fields {
		c := fd.Clone()
		c.Class = spec
		c.Type = sub.apply(c.Type)
		c.Initializer = sub.apply(c.Initializer)
		spec.Fields = append(spec.Fields, c)
	}
	for _, e := range tmpl.Enums {
		c := e.Clone()
		c.Class = spec
		spec.Enums = append(spec.Enums, c)
	}
	spec.BaseRefs = lc.baseRefs(spec)
	return spec, true
}
