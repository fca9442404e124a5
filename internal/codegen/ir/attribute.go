package ir

import (
	"strings"

	"github.com/Alia5/luaexpose/internal/codegen/cxxtype"
)

// KeyValue is one key=value argument. Keys keep their spelling, including a
// leading "$".
type KeyValue struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Attribute is one recognized marker occurrence. Args and KV are mutually
// exclusive: an "=" anywhere in Raw selects key/value parsing for the whole
// argument list.
type Attribute struct {
	Marker Marker     `json:"marker" yaml:"marker"`
	Name   string     `json:"name" yaml:"name"`
	Args   []string   `json:"args,omitempty" yaml:"args,omitempty"`
	KV     []KeyValue `json:"kv,omitempty" yaml:"kv,omitempty"`
	Raw    string     `json:"raw,omitempty" yaml:"raw,omitempty"`
}

// NewAttribute builds an attribute for marker m from its raw argument text.
func NewAttribute(m Marker, name, raw string) Attribute {
	a := Attribute{Marker: m, Name: name, Raw: strings.TrimSpace(raw)}
	a.Args, a.KV = ParseArgs(a.Raw)
	return a
}

// ParseArgs splits raw attribute arguments. Parts without "=" in key/value
// mode become flags with the value "true".
func ParseArgs(raw string) (args []string, kv []KeyValue) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts, ok := cxxtype.SplitTopLevel(raw)
	if !ok {
		parts = strings.Split(raw, ",")
	}
	if !strings.Contains(raw, "=") {
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				args = append(args, p)
			}
		}
		return args, nil
	}
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if k, v, found := strings.Cut(p, "="); found {
			kv = append(kv, KeyValue{Key: strings.TrimSpace(k), Value: strings.TrimSpace(v)})
			continue
		}
		kv = append(kv, KeyValue{Key: p, Value: "true"})
	}
	return nil, kv
}

// Arg returns the i-th positional argument or "".
func (a Attribute) Arg(i int) string {
	if i < 0 || i >= len(a.Args) {
		return ""
	}
	return a.Args[i]
}

// Value returns the first value stored under key or "$"+key.
func (a Attribute) Value(key string) (string, bool) {
	for _, p := range a.KV {
		if p.Key == key || p.Key == "$"+key {
			return p.Value, true
		}
	}
	return "", false
}

// Values returns every value stored under key in source order.
func (a Attribute) Values(key string) []string {
	var out []string
	for _, p := range a.KV {
		if p.Key == key || p.Key == "$"+key {
			out = append(out, p.Value)
		}
	}
	return out
}

// Flag reports a bare word either as a positional argument or as a flag.
func (a Attribute) Flag(name string) bool {
	for _, s := range a.Args {
		if s == name {
			return true
		}
	}
	v, ok := a.Value(name)
	return ok && v == "true"
}

func (a Attribute) key() string {
	return a.Name + "(" + a.Raw + ")"
}

// Attributes is an ordered attribute list.
type Attributes []Attribute

// Has reports whether any attribute carries one of ms.
func (as Attributes) Has(ms ...Marker) bool {
	_, ok := as.Find(ms...)
	return ok
}

// Find returns the first attribute carrying one of ms.
func (as Attributes) Find(ms ...Marker) (Attribute, bool) {
	for _, a := range as {
		for _, m := range ms {
			if a.Marker == m {
				return a, true
			}
		}
	}
	return Attribute{}, false
}

// Primary returns the first attribute; for functions and fields it decides
// argument-driven options such as "$name" and "use_static".
func (as Attributes) Primary() Attribute {
	if len(as) == 0 {
		return Attribute{}
	}
	return as[0]
}

// Union appends the attributes of other that as does not already hold.
func (as Attributes) Union(other Attributes) Attributes {
	seen := make(map[string]bool, len(as))
	for _, a := range as {
		seen[a.key()] = true
	}
	out := append(Attributes(nil), as...)
	for _, a := range other {
		if seen[a.key()] {
			continue
		}
		seen[a.key()] = true
		out = append(out, a)
	}
	return out
}
