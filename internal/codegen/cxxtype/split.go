package cxxtype

import "strings"

// SplitTopLevel splits s on commas that are not nested inside <>, (), [] or {}.
// Parts are trimmed; empty parts are kept so callers can detect "a,,b".
// ok is false when the brackets in s do not balance.
func SplitTopLevel(s string) (parts []string, ok bool) {
	if strings.TrimSpace(s) == "" {
		return nil, true
	}
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(', '[', '{':
			depth++
		case '>':
			if i > 0 && s[i-1] == '-' {
				continue
			}
			depth--
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
		if depth < 0 {
			return nil, false
		}
	}
	if depth != 0 {
		return nil, false
	}
	parts = append(parts, strings.TrimSpace(s[start:]))
	return parts, true
}

// matchAngle returns the index of the '>' closing the '<' at open, or -1.
func matchAngle(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '<', '(', '[', '{':
			depth++
		case '>':
			if i > 0 && s[i-1] == '-' {
				continue
			}
			depth--
			if depth == 0 {
				return i
			}
		case ')', ']', '}':
			depth--
		}
		if depth < 0 {
			return -1
		}
	}
	return -1
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func hasWordSuffix(s, w string) bool {
	if !strings.HasSuffix(s, w) {
		return false
	}
	rest := len(s) - len(w)
	return rest == 0 || !isIdentByte(s[rest-1])
}

func hasWordPrefix(s, w string) bool {
	if !strings.HasPrefix(s, w) {
		return false
	}
	return len(s) == len(w) || !isIdentByte(s[len(w)])
}

// collapseSpace folds runs of whitespace into one space and drops spaces next
// to punctuation, so "std::vector< int > &" becomes "std::vector<int>&".
func collapseSpace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	joined := strings.Join(fields, " ")
	var b strings.Builder
	b.Grow(len(joined))
	for i := 0; i < len(joined); i++ {
		c := joined[i]
		if c == ' ' {
			prev, next := joined[i-1], joined[i+1]
			if isPunct(prev) || isPunct(next) {
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isPunct(c byte) bool {
	switch c {
	case '<', '>', ',', '(', ')', '[', ']', '*', '&', ':':
		return true
	}
	return false
}
