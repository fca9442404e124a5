package cxxtype

// Category classifies a normalized type name for backend type tables.
type Category int

const (
	CategoryOther Category = iota
	CategoryVoid
	CategoryBool
	CategoryInteger
	CategoryFloat
	CategoryChar
	CategoryString
	CategorySequence
	CategoryMap
	CategorySmartPointer
	CategoryOptional
	CategoryFunction
	CategoryPair
	CategoryRuntime
)

var categories = map[string]Category{
	"void":   CategoryVoid,
	"bool":   CategoryBool,
	"char":   CategoryChar,
	"String": CategoryString,

	"float":       CategoryFloat,
	"double":      CategoryFloat,
	"long double": CategoryFloat,

	"int":       CategoryInteger,
	"short":     CategoryInteger,
	"long":      CategoryInteger,
	"long int":  CategoryInteger,
	"short int": CategoryInteger,
	"size_t":    CategoryInteger,
	"int8_t":    CategoryInteger,
	"int16_t":   CategoryInteger,
	"int32_t":   CategoryInteger,
	"int64_t":   CategoryInteger,
	"uint8_t":   CategoryInteger,
	"uint16_t":  CategoryInteger,
	"uint32_t":  CategoryInteger,
	"uint64_t":  CategoryInteger,

	"vector":        CategorySequence,
	"array":         CategorySequence,
	"list":          CategorySequence,
	"deque":         CategorySequence,
	"set":           CategorySequence,
	"unordered_set": CategorySequence,

	"map":           CategoryMap,
	"unordered_map": CategoryMap,

	"shared_ptr": CategorySmartPointer,
	"unique_ptr": CategorySmartPointer,
	"weak_ptr":   CategorySmartPointer,

	"optional": CategoryOptional,
	"function": CategoryFunction,
	"pair":     CategoryPair,

	"sol.object":             CategoryRuntime,
	"sol.table":              CategoryRuntime,
	"sol.function":           CategoryRuntime,
	"sol.protected_function": CategoryRuntime,
	"sol.variadic_args":      CategoryRuntime,
	"sol.this_state":         CategoryRuntime,
}

// CategoryOf classifies a normalized name.
func CategoryOf(name string) Category {
	if c, ok := categories[name]; ok {
		return c
	}
	return CategoryOther
}

// IsPrimitive reports numbers, booleans, chars and strings.
func (c Category) IsPrimitive() bool {
	switch c {
	case CategoryBool, CategoryInteger, CategoryFloat, CategoryChar, CategoryString:
		return true
	}
	return false
}

// IsNumeric reports integer and floating point categories.
func (c Category) IsNumeric() bool {
	return c == CategoryInteger || c == CategoryFloat
}
