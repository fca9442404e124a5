// Package output writes generated units, skipping files whose content is
// unchanged.
package output

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blake2b"
)

// Digest is the blake2b-256 content digest of a generated file.
type Digest [blake2b.Size256]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// Sum digests content.
func Sum(content []byte) Digest { return blake2b.Sum256(content) }

// Result describes one Write.
type Result struct {
	Path    string
	Digest  Digest
	Changed bool
}

// Writer writes generated files. Writes to distinct paths may run
// concurrently.
type Writer struct {
	logger *slog.Logger
	// DryRun computes results without touching the filesystem.
	DryRun bool
}

func New(logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{logger: logger}
}

// Write stores content at path unless the existing file already has the
// same digest. The file is replaced through a temporary sibling so readers
// never see partial output.
func (w *Writer) Write(path string, content []byte) (Result, error) {
	res := Result{Path: path, Digest: Sum(content)}

	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		if Sum(existing) == res.Digest {
			w.logger.Debug("Output unchanged", "file", path, "digest", res.Digest.String())
			return res, nil
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return res, fmt.Errorf("read existing %s: %w", path, err)
	}

	res.Changed = true
	if w.DryRun {
		w.logger.Info("Would write file", "file", path, "digest", res.Digest.String())
		return res, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return res, fmt.Errorf("create directory for %s: %w", path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return res, fmt.Errorf("create temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return res, fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return res, fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return res, fmt.Errorf("replace %s: %w", path, err)
	}
	w.logger.Info("Wrote file", "file", path, "bytes", len(content), "digest", res.Digest.String())
	return res, nil
}
