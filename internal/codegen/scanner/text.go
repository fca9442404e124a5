package scanner

import "sort"

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdentByte(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func skipSpace(b []byte, i int) int {
	for i < len(b) && isSpace(b[i]) {
		i++
	}
	return i
}

func skipSpaceBack(b []byte, i int) int {
	for i > 0 && isSpace(b[i-1]) {
		i--
	}
	return i
}

// readIdent returns the identifier starting at i and the index after it.
func readIdent(b []byte, i int) (string, int) {
	if i >= len(b) || !isIdentStart(b[i]) {
		return "", i
	}
	j := i
	for j < len(b) && isIdentByte(b[j]) {
		j++
	}
	return string(b[i:j]), j
}

// readQualified reads a::b::c starting at i.
func readQualified(b []byte, i int) (string, int) {
	name, j := readIdent(b, i)
	if name == "" {
		return "", i
	}
	for j+1 < len(b) && b[j] == ':' && b[j+1] == ':' {
		next, k := readIdent(b, skipSpace(b, j+2))
		if next == "" {
			break
		}
		name += "::" + next
		j = k
	}
	return name, j
}

// identBefore returns the identifier ending at i (exclusive) and its start.
func identBefore(b []byte, i int) (string, int) {
	j := i
	for j > 0 && isIdentByte(b[j-1]) {
		j--
	}
	if j == i || !isIdentStart(b[j]) {
		return "", i
	}
	return string(b[j:i]), j
}

// wordAt reports whether word sits at i with identifier boundaries on both sides.
func wordAt(b []byte, i int, word string) bool {
	if i < 0 || i+len(word) > len(b) || string(b[i:i+len(word)]) != word {
		return false
	}
	if i > 0 && isIdentByte(b[i-1]) {
		return false
	}
	end := i + len(word)
	return end == len(b) || !isIdentByte(b[end])
}

// blank overwrites b[from:to] with spaces, keeping newlines.
func blank(b []byte, from, to int) {
	if from < 0 {
		from = 0
	}
	if to > len(b) {
		to = len(b)
	}
	for i := from; i < to; i++ {
		if b[i] != '\n' {
			b[i] = ' '
		}
	}
}

// skipLiteral returns the index of the quote closing the string or character
// literal that opens at i, or i when b[i] opens none. Escapes are honored and
// an unterminated literal ends at the line break. A quote inside a number is a
// digit separator (1'000), not a literal.
func skipLiteral(b []byte, i int) int {
	q := b[i]
	if q != '"' && q != '\'' {
		return i
	}
	if q == '\'' {
		j := i
		for j > 0 && isIdentByte(b[j-1]) {
			j--
		}
		if j < i && b[j] >= '0' && b[j] <= '9' {
			return i
		}
	}
	for j := i + 1; j < len(b); j++ {
		switch b[j] {
		case '\\':
			j++
		case q, '\n':
			return j
		}
	}
	return len(b) - 1
}

// braceMap is the result of flattening a region: flat holds the region with
// the interior of every top-level brace pair blanked, pairs maps each
// top-level '{' to its matching '}', and unmatched lists '{' offsets that
// never close.
type braceMap struct {
	flat      []byte
	pairs     map[int]int
	unmatched []int
}

func flatten(text []byte) braceMap {
	m := braceMap{flat: make([]byte, len(text)), pairs: map[int]int{}}
	copy(m.flat, text)
	depth := 0
	open := -1
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '"', '\'':
			i = skipLiteral(text, i)
		case '{':
			if depth == 0 {
				open = i
			}
			depth++
		case '}':
			if depth == 0 {
				// stray close brace, leave it for the matchers to ignore
				continue
			}
			depth--
			if depth == 0 {
				m.pairs[open] = i
				blank(m.flat, open+1, i)
			}
		}
	}
	if depth > 0 {
		m.unmatched = append(m.unmatched, open)
		blank(m.flat, open+1, len(text))
	}
	return m
}

// matchBrace returns the index of the bracket closing the one at open, or
// -1 when it never closes.
func matchBrace(b []byte, open int) int {
	if open < 0 || open >= len(b) {
		return -1
	}
	var closeCh byte
	switch b[open] {
	case '{':
		closeCh = '}'
	case '(':
		closeCh = ')'
	case '[':
		closeCh = ']'
	case '<':
		closeCh = '>'
	default:
		return -1
	}
	openCh := b[open]
	depth := 0
	for i := open; i < len(b); i++ {
		switch b[i] {
		case '"', '\'':
			i = skipLiteral(b, i)
		case openCh:
			depth++
		case closeCh:
			if closeCh == '>' && i > 0 && b[i-1] == '-' {
				continue
			}
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// matchAngleBack returns the index of the '<' opening the '>' at closeIdx, or -1.
func matchAngleBack(b []byte, closeIdx int) int {
	depth := 0
	for i := closeIdx; i >= 0; i-- {
		switch b[i] {
		case '>':
			depth++
		case '<':
			depth--
			if depth == 0 {
				return i
			}
		case ';', '{', '}':
			return -1
		}
	}
	return -1
}

// lineIndex maps byte offsets to 1-based line numbers.
type lineIndex []int

func newLineIndex(b []byte) lineIndex {
	idx := lineIndex{0}
	for i, c := range b {
		if c == '\n' {
			idx = append(idx, i+1)
		}
	}
	return idx
}

func (l lineIndex) line(off int) int {
	return sort.Search(len(l), func(i int) bool { return l[i] > off })
}
