// Package scanner extracts marker-tagged declarations from C++ headers.
//
// The scanner is an allow-list matcher for a C++ subset, not a parser: it
// strips comments, expands object-like macros, walks namespace blocks with a
// depth-tracked brace matcher and runs one named matcher per construct.
// Declarations without a recognized marker never enter the IR.
package scanner

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/text/unicode/norm"

	"github.com/Alia5/luaexpose/internal/codegen/ir"
)

// ErrUnreadable wraps failures to read a source file.
var ErrUnreadable = errors.New("source file unreadable")

// DefaultMaxNamespaceDepth bounds namespace nesting.
const DefaultMaxNamespaceDepth = 32

// Options configures a Scanner.
type Options struct {
	// Prefix is the marker prefix, e.g. "BIND_" for [[BIND_TYPE]].
	Prefix            string
	MaxNamespaceDepth int
}

// SourceDumper receives the preprocessed text of every scanned file.
type SourceDumper interface {
	Dump(path string, text []byte)
}

// Scanner turns header text into per-file IR.
type Scanner struct {
	opts   Options
	logger *slog.Logger
	dumper SourceDumper
}

// New creates a scanner. A nil logger falls back to slog.Default.
func New(logger *slog.Logger, opts Options) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Prefix == "" {
		opts.Prefix = ir.DefaultPrefix
	}
	if opts.MaxNamespaceDepth <= 0 {
		opts.MaxNamespaceDepth = DefaultMaxNamespaceDepth
	}
	return &Scanner{opts: opts, logger: logger}
}

// WithDumper attaches a dumper for preprocessed text.
func (s *Scanner) WithDumper(d SourceDumper) *Scanner {
	s.dumper = d
	return s
}

// ScanPath reads and scans one file.
func (s *Scanner) ScanPath(path string) (*ir.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreadable, path, err)
	}
	return s.ScanFile(path, string(data)), nil
}

// ScanPaths scans files in order. Reading failures are fatal.
func (s *Scanner) ScanPaths(paths []string) ([]*ir.File, error) {
	files := make([]*ir.File, 0, len(paths))
	for _, p := range paths {
		f, err := s.ScanPath(p)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// ScanFile scans header text already in memory.
func (s *Scanner) ScanFile(path, text string) *ir.File {
	fs := &fileScan{
		s:        s,
		file:     &ir.File{Path: path},
		topLevel: map[string]*ir.Namespace{},
	}
	src := fs.preprocess([]byte(norm.NFC.String(text)))
	fs.lines = newLineIndex(src)
	if s.dumper != nil {
		s.dumper.Dump(path, src)
	}
	fs.scanNamespaces(src)

	s.logger.Debug("Scanned header",
		"file", path,
		"namespaces", len(fs.file.Namespaces),
		"classes", countClasses(fs.file),
		"diagnostics", len(fs.file.Diagnostics))
	return fs.file
}

func countClasses(f *ir.File) int {
	n := 0
	ir.WalkFile(f, func(d ir.Decl) bool {
		if d.Kind() == ir.KindClass {
			n++
		}
		return true
	})
	return n
}

// fileScan is the state of one ScanFile call.
type fileScan struct {
	s        *Scanner
	file     *ir.File
	lines    lineIndex
	topLevel map[string]*ir.Namespace
}

func (fs *fileScan) span(start, end int) ir.Span {
	line := 1
	if fs.lines != nil {
		line = fs.lines.line(start)
	}
	return ir.Span{File: fs.file.Path, Start: start, End: end, Line: line}
}

func (fs *fileScan) report(sev ir.Severity, kind ir.DiagKind, off int, msg string) {
	d := ir.Diagnostic{Severity: sev, Kind: kind, Message: msg, Span: fs.span(off, off)}
	fs.file.Diagnostics = append(fs.file.Diagnostics, d)
	d.Log(fs.s.logger)
}
