package log

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"
)

// SourceDumper writes the preprocessed text of scanned headers, one framed
// block per file.
type SourceDumper interface {
	Dump(path string, text []byte)
}

type sourceDumper struct {
	w   io.Writer
	mu  sync.Mutex
	now func() time.Time
}

// NewDumper creates a SourceDumper. If w is nil, returns a no-op dumper.
func NewDumper(w io.Writer) SourceDumper {
	return &sourceDumper{w: w, now: time.Now}
}

// Dump emits a header line with timestamp, path and size, followed by the
// text with line numbers.
func (d *sourceDumper) Dump(path string, text []byte) {
	if d.w == nil {
		return
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s ==> %s (%d bytes)\n", d.now().Format("2006/01/02 15:04:05"), path, len(text))
	lines := bytes.Split(bytes.TrimSuffix(text, []byte("\n")), []byte("\n"))
	if len(text) == 0 {
		lines = nil
	}
	for i, line := range lines {
		fmt.Fprintf(&buf, "%5d | %s\n", i+1, line)
	}
	buf.WriteByte('\n')

	d.mu.Lock()
	_, _ = d.w.Write(buf.Bytes())
	d.mu.Unlock()
}
