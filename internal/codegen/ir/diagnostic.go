package ir

import (
	"context"
	"fmt"
	"log/slog"
)

// Severity orders diagnostics.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	}
	return "error"
}

func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Level maps the severity onto slog.
func (s Severity) Level() slog.Level {
	switch s {
	case SeverityDebug:
		return slog.LevelDebug
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	}
	return slog.LevelError
}

// DiagKind names the condition a diagnostic reports.
type DiagKind string

const (
	DiagUnmatchedBrace    DiagKind = "unmatched-brace"
	DiagDepthExceeded     DiagKind = "depth-exceeded"
	DiagOrphanMarker      DiagKind = "orphan-marker"
	DiagUnknownMarker     DiagKind = "unknown-marker"
	DiagUnresolvedBase    DiagKind = "unresolved-base"
	DiagUnresolvedTypedef DiagKind = "unresolved-typedef"
	DiagDuplicateClass    DiagKind = "duplicate-class"
	DiagNestedClass       DiagKind = "nested-class"
	DiagSkipped           DiagKind = "skipped"
)

// Diagnostic is a recoverable problem found while scanning or linking.
type Diagnostic struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Kind     DiagKind `json:"kind" yaml:"kind"`
	Message  string   `json:"message" yaml:"message"`
	Span     Span     `json:"span" yaml:"span"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s [%s]", d.Span, d.Severity, d.Message, d.Kind)
}

// Log writes d to logger at its severity.
func (d Diagnostic) Log(logger *slog.Logger) {
	logger.Log(context.Background(), d.Severity.Level(), d.Message, "kind", string(d.Kind), "at", d.Span.String())
}

// HasErrors reports whether any diagnostic is error severity.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity >= SeverityError {
			return true
		}
	}
	return false
}
