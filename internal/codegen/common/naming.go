package common

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// FirstUpper upper-cases the first rune and keeps the rest as-is.
func FirstUpper(s string) string {
	if s == "" {
		return ""
	}
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[n:]
}

// GroupName is the output grouping name of a header: its file stem with
// the first character upper-cased ("vec3.h" -> "Vec3").
func GroupName(path string) string {
	base := filepath.Base(filepath.ToSlash(path))
	if i := strings.IndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return FirstUpper(SanitizeIdentifier(base))
}

// SanitizeIdentifier replaces characters that cannot appear in a C++ or
// script identifier with '_' and prefixes a leading digit with "Num".
func SanitizeIdentifier(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	out := b.String()
	if out != "" && out[0] >= '0' && out[0] <= '9' {
		return "Num" + out
	}
	return out
}
