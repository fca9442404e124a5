// Package rules classifies marked declarations and applies the generation
// rules every backend shares: overload grouping, property synthesis, base
// flattening, forwarding adapters and template instances. The result is a
// backend-neutral binding model.
package rules

import (
	"strings"

	"github.com/Alia5/luaexpose/internal/codegen/ir"
)

func IsConstructor(f *ir.Function) bool { return f.Attributes.Has(ir.MarkerCtor) }

// IsFactory reports a static function tagged as a constructor.
func IsFactory(f *ir.Function) bool { return IsConstructor(f) && f.Static }

func IsPlainFunction(f *ir.Function) bool    { return f.Attributes.Has(ir.MarkerFunc) }
func IsOverloadMarked(f *ir.Function) bool   { return f.Attributes.Has(ir.MarkerFuncOverload) }
func IsTemplateFunction(f *ir.Function) bool { return f.Attributes.Has(ir.MarkerFuncTemplate) }
func IsMetaFunction(f *ir.Function) bool     { return f.Attributes.Has(ir.MarkerMetaFunc) }
func IsForwardFunction(f *ir.Function) bool  { return f.Attributes.Has(ir.MarkerForwardFunc) }

// IsExposed reports functions bound through method groups: plain,
// overloaded and meta functions.
func IsExposed(f *ir.Function) bool {
	return f.Attributes.Has(ir.MarkerFunc, ir.MarkerFuncOverload, ir.MarkerMetaFunc)
}

func exposedAttr(f *ir.Function) (ir.Attribute, bool) {
	return f.Attributes.Find(ir.MarkerFunc, ir.MarkerFuncOverload)
}

// UseStatic reports the use_static flag, asking for a static_cast
// disambiguation instead of a plain address.
func UseStatic(f *ir.Function) bool {
	a, ok := exposedAttr(f)
	return ok && a.Flag("use_static")
}

// UseGeneric reports the use_generic flag: typed backends declare the
// overridden parameter types as generic parameters.
func UseGeneric(f *ir.Function) bool {
	a, ok := exposedAttr(f)
	return ok && a.Flag("use_generic")
}

// MetaName returns the meta-method argument of a META_FUNC marker.
func MetaName(f *ir.Function) string {
	a, ok := f.Attributes.Find(ir.MarkerMetaFunc)
	if !ok {
		return ""
	}
	if len(a.Args) > 0 {
		return a.Arg(0)
	}
	if len(a.KV) > 0 {
		return a.KV[0].Key
	}
	return ""
}

// ExposedName is the script-visible name: the "$name" argument of a plain
// or overloaded function, the meta argument of a meta function, otherwise
// the C++ name.
func ExposedName(f *ir.Function) string {
	if IsMetaFunction(f) && !f.Attributes.Has(ir.MarkerFunc, ir.MarkerFuncOverload) {
		if m := MetaName(f); m != "" {
			return m
		}
	}
	if a, ok := exposedAttr(f); ok {
		if v, ok := a.Value("$name"); ok && v != "" {
			return v
		}
	}
	return f.Name
}

// TypeOverrides returns the "<param>=<type>" and "return=<type>" arguments
// used by typed backends, keyed by parameter name or "return".
func TypeOverrides(f *ir.Function) map[string]string {
	a, ok := f.Attributes.Find(ir.MarkerFunc, ir.MarkerFuncOverload, ir.MarkerCtor)
	if !ok || len(a.KV) == 0 {
		return nil
	}
	out := map[string]string{}
	for _, kv := range a.KV {
		if strings.HasPrefix(kv.Key, "$") || kv.Value == "true" {
			continue
		}
		out[kv.Key] = kv.Value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// IsGetter reports get_X() taking no parameters.
func IsGetter(f *ir.Function) bool {
	return IsExposed(f) && !IsMetaFunction(f) && !f.Static &&
		len(f.Name) > len("get_") && strings.HasPrefix(f.Name, "get_") && len(f.Params) == 0
}

// IsSetter reports set_X(v) taking exactly one parameter.
func IsSetter(f *ir.Function) bool {
	return IsExposed(f) && !IsMetaFunction(f) && !f.Static &&
		len(f.Name) > len("set_") && strings.HasPrefix(f.Name, "set_") && len(f.Params) == 1
}

// PropertyName strips the accessor prefix.
func PropertyName(f *ir.Function) string {
	if n, ok := strings.CutPrefix(f.Name, "get_"); ok {
		return n
	}
	if n, ok := strings.CutPrefix(f.Name, "set_"); ok {
		return n
	}
	return f.Name
}

// IsBoundField reports fields carrying any variable marker.
func IsBoundField(fd *ir.Field) bool {
	return fd.Attributes.Has(ir.MarkerVar, ir.MarkerVarReadonly, ir.MarkerVarOptional)
}

// IsReadonly reports VAR_READONLY fields and const or constexpr fields.
func IsReadonly(fd *ir.Field) bool {
	return fd.Attributes.Has(ir.MarkerVarReadonly) || fd.Const || fd.Constexpr
}

func IsOptional(fd *ir.Field) bool { return fd.Attributes.Has(ir.MarkerVarOptional) }

// IsBindingType reports populated classes carrying a class marker that are
// emitted as usertypes. Templates are emitted through their
// specializations only.
func IsBindingType(c *ir.Class) bool {
	return c != nil && c.Populated && !c.Opaque &&
		c.Attributes.Has(ir.MarkerType, ir.MarkerTypeNoCtor)
}

func IsNoConstructor(c *ir.Class) bool { return c.Attributes.Has(ir.MarkerTypeNoCtor) }

func IsBindingTemplate(c *ir.Class) bool { return c.Attributes.Has(ir.MarkerTypeTemplate) }

func IsBoundNamespace(ns *ir.Namespace) bool { return ns.Attributes.Has(ir.MarkerNamespace) }

func IsBoundEnum(e *ir.Enum) bool { return e.Attributes.Has(ir.MarkerEnum) }
