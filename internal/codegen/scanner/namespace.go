package scanner

import (
	"fmt"
	"strings"

	"github.com/Alia5/luaexpose/internal/codegen/ir"
)

// region is a namespace body (or the whole file) awaiting its scan. Offsets
// inside text are relative to base.
type region struct {
	text  []byte
	base  int
	ns    *ir.Namespace
	scope *ir.Scope
	depth int
}

// scanNamespaces walks namespace blocks breadth first with an explicit queue.
// Each region blanks its child namespace blocks before its own declarations
// are matched, so nothing is attributed to two nesting levels.
func (fs *fileScan) scanNamespaces(src []byte) {
	root := make([]byte, len(src))
	copy(root, src)
	queue := []region{{text: root, scope: &fs.file.Global}}
	for len(queue) > 0 {
		r := queue[0]
		queue = queue[1:]
		queue = append(queue, fs.scanRegion(r)...)
	}
}

type nsBlock struct {
	start, open, close int
	names              []string
	attrs              ir.Attributes
}

func (fs *fileScan) scanRegion(r region) []region {
	bm := flatten(r.text)
	for _, open := range bm.unmatched {
		fs.report(ir.SeverityError, ir.DiagUnmatchedBrace, r.base+open, "unmatched '{'; rest of block skipped")
	}
	runs := fs.collectRuns(bm.flat)

	var children []region
	for i := 0; i < len(bm.flat); i++ {
		if !wordAt(bm.flat, i, "namespace") {
			continue
		}
		blk, ok := fs.matchNamespace(bm, runs, i)
		if !ok {
			i += len("namespace") - 1
			continue
		}
		if child, ok := fs.openNamespace(r, blk); ok {
			children = append(children, child)
		}
		blank(r.text, blk.start, blk.close+1)
		i = blk.close
	}

	// namespace blocks are gone from r.text; rescan what is left
	bm = flatten(r.text)
	runs = fs.collectRuns(bm.flat)
	sc := &scopeCtx{
		text:   r.text,
		base:   r.base,
		bm:     bm,
		runs:   runs,
		ns:     r.ns,
		scope:  r.scope,
		qual:   r.ns.QualifiedName(),
		nsQual: r.ns.QualifiedName(),
		depth:  r.depth,
	}
	fs.scanScope(sc)
	return children
}

func (fs *fileScan) matchNamespace(bm braceMap, runs *runSet, k int) (nsBlock, bool) {
	flat := bm.flat
	blk := nsBlock{start: k}
	if w, ws := identBefore(flat, skipSpaceBack(flat, k)); w == "using" {
		return blk, false
	} else if w == "inline" {
		blk.start = ws
	}
	if run, idx, ok := runs.before(flat, blk.start); ok {
		blk.attrs = append(blk.attrs, run.attrs...)
		blk.start = run.start
		runs.consume(idx)
	}

	j := skipSpace(flat, k+len("namespace"))
	if run, idx, ok := runs.at(j); ok {
		blk.attrs = append(blk.attrs, run.attrs...)
		runs.consume(idx)
		j = skipSpace(flat, run.end)
	}
	name, next := readQualified(flat, j)
	j = skipSpace(flat, next)
	if run, idx, ok := runs.at(j); ok {
		blk.attrs = append(blk.attrs, run.attrs...)
		runs.consume(idx)
		j = skipSpace(flat, run.end)
	}
	if j >= len(flat) || flat[j] != '{' {
		return blk, false
	}
	closeIdx, ok := bm.pairs[j]
	if !ok {
		return blk, false
	}
	blk.open, blk.close = j, closeIdx
	if name != "" {
		for _, part := range strings.Split(name, "::") {
			if part = strings.TrimSpace(part); part != "" && part != "inline" {
				blk.names = append(blk.names, part)
			}
		}
	}
	return blk, true
}

// openNamespace creates (or, at file top level, reuses) the namespace nodes of
// blk and returns the region of its body.
func (fs *fileScan) openNamespace(r region, blk nsBlock) (region, bool) {
	if len(blk.names) == 0 {
		fs.report(ir.SeverityDebug, ir.DiagSkipped, r.base+blk.start, "anonymous namespace skipped")
		return region{}, false
	}
	depth := r.depth + len(blk.names)
	if depth > fs.s.opts.MaxNamespaceDepth {
		fs.report(ir.SeverityError, ir.DiagDepthExceeded, r.base+blk.start,
			fmt.Sprintf("namespace nesting deeper than %d; block left unexposed", fs.s.opts.MaxNamespaceDepth))
		return region{}, false
	}

	sp := fs.span(r.base+blk.start, r.base+blk.close+1)
	parent := r.ns
	var node *ir.Namespace
	for _, name := range blk.names {
		if parent == nil {
			node = fs.topLevel[name]
			if node == nil {
				node = &ir.Namespace{Name: name, Span: sp}
				fs.topLevel[name] = node
				fs.file.Namespaces = append(fs.file.Namespaces, node)
			}
		} else {
			node = &ir.Namespace{Name: name, Span: sp, Parent: parent}
			parent.Namespaces = append(parent.Namespaces, node)
		}
		parent = node
	}
	node.Attributes = node.Attributes.Union(blk.attrs)

	body := make([]byte, blk.close-blk.open-1)
	copy(body, r.text[blk.open+1:blk.close])
	return region{
		text:  body,
		base:  r.base + blk.open + 1,
		ns:    node,
		scope: &node.Scope,
		depth: depth,
	}, true
}
