package ir

import "strings"

// DefaultPrefix is the marker prefix used when none is configured.
const DefaultPrefix = "BIND_"

// Marker is one entry of the closed marker vocabulary.
type Marker int

const (
	MarkerUnknown Marker = iota
	MarkerType
	MarkerTypeNoCtor
	MarkerTypeTemplate
	MarkerCtor
	MarkerFunc
	MarkerFuncOverload
	MarkerFuncTemplate
	MarkerMetaFunc
	MarkerForwardFunc
	MarkerVar
	MarkerVarReadonly
	MarkerVarOptional
	MarkerNamespace
	MarkerEnum
)

var markerSuffixes = map[string]Marker{
	"TYPE":          MarkerType,
	"TYPE_NO_CTOR":  MarkerTypeNoCtor,
	"TYPE_TEMPLATE": MarkerTypeTemplate,
	"CTOR":          MarkerCtor,
	"FUNC":          MarkerFunc,
	"FUNC_OVERLOAD": MarkerFuncOverload,
	"FUNC_TEMPLATE": MarkerFuncTemplate,
	"META_FUNC":     MarkerMetaFunc,
	"FORWARD_FUNC":  MarkerForwardFunc,
	"VAR":           MarkerVar,
	"VAR_READONLY":  MarkerVarReadonly,
	"VAR_OPTIONAL":  MarkerVarOptional,
	"NAMESPACE":     MarkerNamespace,
	"ENUM":          MarkerEnum,

	// legacy spellings
	"USERTYPE":           MarkerType,
	"USERTYPE_NO_CTOR":   MarkerTypeNoCtor,
	"USERTYPE_TEMPLATE":  MarkerTypeTemplate,
	"USERTYPE_NAMESPACE": MarkerNamespace,
	"USERTYPE_ENUM":      MarkerEnum,
}

var markerNames = [...]string{
	MarkerUnknown:      "unknown",
	MarkerType:         "type",
	MarkerTypeNoCtor:   "type-no-ctor",
	MarkerTypeTemplate: "type-template",
	MarkerCtor:         "ctor",
	MarkerFunc:         "func",
	MarkerFuncOverload: "func-overload",
	MarkerFuncTemplate: "func-template",
	MarkerMetaFunc:     "meta-func",
	MarkerForwardFunc:  "forward-func",
	MarkerVar:          "var",
	MarkerVarReadonly:  "var-readonly",
	MarkerVarOptional:  "var-optional",
	MarkerNamespace:    "namespace",
	MarkerEnum:         "enum",
}

func (m Marker) String() string {
	if m < 0 || int(m) >= len(markerNames) {
		return "unknown"
	}
	return markerNames[m]
}

// MarshalText keeps dumps readable.
func (m Marker) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// LookupMarker resolves an attribute name such as "BIND_FUNC" against prefix.
// The second result is false for names without the prefix. Names carrying the
// prefix with an unknown suffix return MarkerUnknown, true.
func LookupMarker(prefix, name string) (Marker, bool) {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	suffix, ok := strings.CutPrefix(name, prefix)
	if !ok {
		return MarkerUnknown, false
	}
	return markerSuffixes[suffix], true
}

// IsClassMarker reports markers that opt a class in.
func (m Marker) IsClassMarker() bool {
	return m == MarkerType || m == MarkerTypeNoCtor || m == MarkerTypeTemplate
}

// IsFunctionMarker reports markers that opt a function in.
func (m Marker) IsFunctionMarker() bool {
	switch m {
	case MarkerCtor, MarkerFunc, MarkerFuncOverload, MarkerFuncTemplate, MarkerMetaFunc, MarkerForwardFunc:
		return true
	}
	return false
}

// IsFieldMarker reports markers that opt a field in.
func (m Marker) IsFieldMarker() bool {
	return m == MarkerVar || m == MarkerVarReadonly || m == MarkerVarOptional
}
