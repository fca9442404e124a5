package scanner

import (
	"bytes"
	"strings"

	"github.com/Alia5/luaexpose/internal/codegen/ir"
)

// stripComments replaces line and block comments with spaces, keeping
// newlines so offsets and line numbers survive. Comment openers inside string
// and character literals are left alone.
func stripComments(src []byte) []byte {
	out := make([]byte, len(src))
	copy(out, src)
	for i := 0; i < len(out); i++ {
		if out[i] == '"' || out[i] == '\'' {
			i = skipLiteral(out, i)
			continue
		}
		if out[i] != '/' || i+1 >= len(out) {
			continue
		}
		switch out[i+1] {
		case '/':
			j := i
			for j < len(out) && out[j] != '\n' {
				j++
			}
			blank(out, i, j)
			i = j
		case '*':
			end := bytes.Index(out[i+2:], []byte("*/"))
			j := len(out)
			if end >= 0 {
				j = i + 2 + end + 2
			}
			blank(out, i, j)
			i = j - 1
		}
	}
	return out
}

// directive is one preprocessor line, continuation lines included.
type directive struct {
	start, end int
	text       string
}

func findDirectives(src []byte) []directive {
	var out []directive
	for i := 0; i < len(src); {
		lineStart := i
		j := skipSpaceInLine(src, i)
		if j < len(src) && src[j] == '#' {
			end := j
			for end < len(src) {
				if src[end] == '\n' {
					if end > 0 && src[end-1] == '\\' || end > 1 && src[end-1] == '\r' && src[end-2] == '\\' {
						end++
						continue
					}
					break
				}
				end++
			}
			out = append(out, directive{start: lineStart, end: end, text: string(src[j:end])})
			i = end
			continue
		}
		for i < len(src) && src[i] != '\n' {
			i++
		}
		i++
	}
	return out
}

func skipSpaceInLine(b []byte, i int) int {
	for i < len(b) && (b[i] == ' ' || b[i] == '\t') {
		i++
	}
	return i
}

// parseDefine extracts an object-like macro from a directive. Function-like
// macros report ok=false.
func parseDefine(text string) (ir.Macro, bool) {
	rest := strings.TrimSpace(strings.TrimPrefix(text, "#"))
	if !strings.HasPrefix(rest, "define") {
		return ir.Macro{}, false
	}
	rest = rest[len("define"):]
	if rest == "" || !isSpace(rest[0]) {
		return ir.Macro{}, false
	}
	rest = strings.TrimLeft(rest, " \t")
	b := []byte(rest)
	name, j := readIdent(b, 0)
	if name == "" {
		return ir.Macro{}, false
	}
	if j < len(b) && b[j] == '(' {
		return ir.Macro{}, false
	}
	body := strings.ReplaceAll(rest[j:], "\\\r\n", " ")
	body = strings.ReplaceAll(body, "\\\n", " ")
	return ir.Macro{Name: name, Body: strings.Join(strings.Fields(body), " ")}, true
}

// substituteMacro replaces every bare occurrence of name in src with body in
// one left-to-right pass. Substituted text is not rescanned, so a body naming
// another macro is only expanded when that macro's own pass comes later.
func substituteMacro(src []byte, name, body string) []byte {
	if !bytes.Contains(src, []byte(name)) {
		return src
	}
	var out bytes.Buffer
	out.Grow(len(src))
	lineStart := true
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c >= '0' && c <= '9':
			j := i
			for j < len(src) && (isIdentByte(src[j]) || src[j] == '.') {
				j++
			}
			out.Write(src[i:j])
			i = j
			lineStart = false
		case isIdentStart(c):
			ident, j := readIdent(src, i)
			if ident != name {
				out.WriteString(ident)
				i = j
				lineStart = false
				continue
			}
			out.WriteString(body)
			// a bare statement-style invocation swallows its trailing ';'
			if lineStart {
				k := skipSpaceInLine(src, j)
				if k < len(src) && src[k] == ';' {
					j = k + 1
				}
			}
			i = j
			lineStart = false
		default:
			out.WriteByte(c)
			if c == '\n' {
				lineStart = true
			} else if c != ' ' && c != '\t' {
				lineStart = false
			}
			i++
		}
	}
	return out.Bytes()
}

// preprocess strips comments, collects object-like macros, blanks every
// directive line and then runs one substitution pass per macro in definition
// order. A redefinition keeps the first position and the last body.
func (fs *fileScan) preprocess(src []byte) []byte {
	text := stripComments(src)
	table := map[string]string{}
	for _, d := range findDirectives(text) {
		if mac, ok := parseDefine(d.text); ok {
			if _, dup := table[mac.Name]; !dup {
				fs.file.Macros = append(fs.file.Macros, mac)
			}
			table[mac.Name] = mac.Body
		}
		blank(text, d.start, d.end)
	}
	for _, mac := range fs.file.Macros {
		text = substituteMacro(text, mac.Name, table[mac.Name])
	}
	return text
}
