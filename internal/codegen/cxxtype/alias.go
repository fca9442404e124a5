package cxxtype

import "strings"

// fixedWidth maps builtin multi-word and std-qualified integer spellings to
// their fixed-width alias. Already fixed-width spellings are absent on purpose
// so they pass through unchanged.
var fixedWidth = map[string]string{
	"unsigned":               "uint32_t",
	"unsigned int":           "uint32_t",
	"unsigned long":          "uint64_t",
	"unsigned long int":      "uint64_t",
	"long unsigned int":      "uint64_t",
	"unsigned short":         "uint16_t",
	"unsigned short int":     "uint16_t",
	"unsigned char":          "uint8_t",
	"signed char":            "int8_t",
	"long long":              "int64_t",
	"long long int":          "int64_t",
	"unsigned long long":     "uint64_t",
	"unsigned long long int": "uint64_t",
	"std::int8_t":            "int8_t",
	"std::int16_t":           "int16_t",
	"std::int32_t":           "int32_t",
	"std::int64_t":           "int64_t",
	"std::uint8_t":           "uint8_t",
	"std::uint16_t":          "uint16_t",
	"std::uint32_t":          "uint32_t",
	"std::uint64_t":          "uint64_t",
	"std::size_t":            "size_t",
}

// libraryAliases drops the std:: qualifier from the library templates every
// backend knows how to map.
var libraryAliases = map[string]string{
	"std::string":        "String",
	"std::string_view":   "String",
	"std::vector":        "vector",
	"std::array":         "array",
	"std::list":          "list",
	"std::deque":         "deque",
	"std::set":           "set",
	"std::unordered_set": "unordered_set",
	"std::map":           "map",
	"std::unordered_map": "unordered_map",
	"std::pair":          "pair",
	"std::shared_ptr":    "shared_ptr",
	"std::unique_ptr":    "unique_ptr",
	"std::weak_ptr":      "weak_ptr",
	"std::optional":      "optional",
	"std::function":      "function",
}

// DefaultSpecializations collapses whole template instantiations into a
// single semantic type name.
var DefaultSpecializations = map[string]string{
	"Vec2<float>":  "Vector",
	"Vec2<double>": "Vector",
	"Vec3<float>":  "Vector3",
	"Vec3<double>": "Vector3",
	"Vec4<float>":  "Vector4",
	"Vec4<double>": "Vector4",
}

// NormalizeFixedWidth maps a single type spelling to its fixed-width alias
// ("unsigned int" to "uint32_t", "std::int64_t" to "int64_t"). Other
// spellings are returned with their whitespace collapsed.
func NormalizeFixedWidth(s string) string {
	c := collapseSpace(s)
	if v, ok := fixedWidth[c]; ok {
		return v
	}
	return c
}

func aliasName(name string, args []Descriptor) (string, []Descriptor) {
	if v, ok := fixedWidth[name]; ok {
		return v, args
	}
	if name == "std::basic_string" || name == "basic_string" {
		if len(args) == 0 || args[0].Name == "char" {
			return "String", nil
		}
	}
	if v, ok := libraryAliases[name]; ok {
		return v, args
	}
	return name, args
}

func specializationKey(name string, args []Descriptor) string {
	if i := strings.LastIndex(name, "::"); i >= 0 {
		name = name[i+2:]
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return name + "<" + strings.Join(parts, ",") + ">"
}
