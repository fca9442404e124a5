package scanner

import (
	"strings"

	"github.com/Alia5/luaexpose/internal/codegen/cxxtype"
	"github.com/Alia5/luaexpose/internal/codegen/ir"
)

// attrRun is a sequence of adjacent [[...]] groups. Offsets are relative to
// the region the run was found in; end is just past the last "]]".
type attrRun struct {
	start, end int
	attrs      ir.Attributes
	unknown    []string
}

func (r attrRun) any(pred func(ir.Marker) bool) bool {
	for _, a := range r.attrs {
		if pred(a.Marker) {
			return true
		}
	}
	return false
}

// runSet indexes the runs of one flattened region.
type runSet struct {
	runs     []attrRun
	byStart  map[int]int
	byEnd    map[int]int
	consumed []bool
}

func (fs *fileScan) collectRuns(flat []byte) *runSet {
	rs := &runSet{byStart: map[int]int{}, byEnd: map[int]int{}}
	for i := 0; i+1 < len(flat); i++ {
		if flat[i] != '[' || flat[i+1] != '[' {
			continue
		}
		run, ok := fs.parseRunAt(flat, i)
		if !ok {
			continue
		}
		rs.byStart[run.start] = len(rs.runs)
		rs.byEnd[run.end] = len(rs.runs)
		rs.runs = append(rs.runs, run)
		i = run.end - 1
	}
	rs.consumed = make([]bool, len(rs.runs))
	return rs
}

// before returns the run ending right before pos, whitespace aside.
func (rs *runSet) before(b []byte, pos int) (attrRun, int, bool) {
	idx, ok := rs.byEnd[skipSpaceBack(b, pos)]
	if !ok {
		return attrRun{}, -1, false
	}
	return rs.runs[idx], idx, true
}

// at returns the run starting at pos.
func (rs *runSet) at(pos int) (attrRun, int, bool) {
	idx, ok := rs.byStart[pos]
	if !ok {
		return attrRun{}, -1, false
	}
	return rs.runs[idx], idx, true
}

func (rs *runSet) consume(idx int) {
	if idx >= 0 && idx < len(rs.consumed) {
		rs.consumed[idx] = true
	}
}

// parseRunAt parses adjacent attribute groups starting at i.
func (fs *fileScan) parseRunAt(b []byte, i int) (attrRun, bool) {
	run := attrRun{start: i, end: i}
	j := i
	for {
		if j+1 >= len(b) || b[j] != '[' || b[j+1] != '[' {
			break
		}
		end := findGroupEnd(b, j+2)
		if end < 0 {
			break
		}
		fs.parseGroup(string(b[j+2:end]), &run)
		run.end = end + 2
		j = skipSpace(b, run.end)
	}
	return run, run.end > run.start
}

// findGroupEnd returns the index of the "]]" closing a group whose content
// starts at k.
func findGroupEnd(b []byte, k int) int {
	depth := 0
	for i := k; i < len(b); i++ {
		switch b[i] {
		case '(', '[':
			if depth == 0 && b[i] == '[' && i+1 < len(b) && b[i+1] == '[' {
				return -1
			}
			depth++
		case ')':
			depth--
		case ']':
			if depth == 0 && i+1 < len(b) && b[i+1] == ']' {
				return i
			}
			depth--
		case ';', '{', '}':
			if depth == 0 {
				return -1
			}
		}
	}
	return -1
}

func (fs *fileScan) parseGroup(content string, run *attrRun) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "using ") {
		if _, rest, ok := strings.Cut(content, ":"); ok {
			content = strings.TrimSpace(rest)
		}
	}
	items, ok := cxxtype.SplitTopLevel(content)
	if !ok {
		items = []string{content}
	}
	for _, item := range items {
		b := []byte(item)
		name, j := readQualified(b, 0)
		if name == "" {
			continue
		}
		marker, ours := ir.LookupMarker(fs.s.opts.Prefix, name)
		if !ours {
			continue
		}
		if marker == ir.MarkerUnknown {
			run.unknown = append(run.unknown, name)
			continue
		}
		args := ""
		j = skipSpace(b, j)
		if j < len(b) && b[j] == '(' {
			if closeIdx := matchBrace(b, j); closeIdx > j {
				args = item[j+1 : closeIdx]
			}
		}
		run.attrs = append(run.attrs, ir.NewAttribute(marker, name, args))
	}
}

// reportRuns emits diagnostics for runs no matcher claimed.
func (fs *fileScan) reportRuns(base int, rs *runSet) {
	for i, run := range rs.runs {
		for _, name := range run.unknown {
			fs.report(ir.SeverityDebug, ir.DiagUnknownMarker, base+run.start,
				"unknown marker "+name+" ignored")
		}
		if !rs.consumed[i] && len(run.attrs) > 0 {
			fs.report(ir.SeverityWarning, ir.DiagOrphanMarker, base+run.start,
				"marker "+run.attrs[0].Name+" is not attached to a supported declaration")
		}
	}
}
