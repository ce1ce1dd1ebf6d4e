// Package output persists generated artifacts and renders analysis reports.
package output

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/PentesterFlow/mcpcreator/internal/errors"
	"github.com/PentesterFlow/mcpcreator/internal/logger"
	"github.com/PentesterFlow/mcpcreator/internal/metrics"
)

// Writer persists a set of artifacts.
type Writer interface {
	// WriteArtifacts writes every artifact and returns the written paths.
	WriteArtifacts(artifacts []Artifact) ([]string, error)
}

// DirWriter writes artifacts below a root directory, overwriting existing
// files. A failure stops the run; files already written are left in place.
type DirWriter struct {
	root    string
	log     *logger.Logger
	metrics *metrics.Collector
}

// NewDirWriter creates a writer rooted at dir. log and m may be nil.
func NewDirWriter(dir string, log *logger.Logger, m *metrics.Collector) *DirWriter {
	if log == nil {
		log = logger.Nop()
	}
	return &DirWriter{root: dir, log: log, metrics: m}
}

// Root returns the output directory.
func (w *DirWriter) Root() string {
	return w.root
}

// WriteArtifacts implements Writer.
func (w *DirWriter) WriteArtifacts(artifacts []Artifact) ([]string, error) {
	written := make([]string, 0, len(artifacts))

	for _, a := range artifacts {
		path := filepath.Join(w.root, filepath.FromSlash(a.Path))

		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return written, errors.NewGenerationError(path, "mkdir", err)
		}
		if err := os.WriteFile(path, a.Content, 0644); err != nil {
			return written, errors.NewGenerationError(path, "write", err)
		}

		w.log.ArtifactWritten(path, len(a.Content))
		if w.metrics != nil {
			w.metrics.RecordArtifact(len(a.Content))
		}
		written = append(written, path)
	}

	return written, nil
}

// MemoryWriter keeps artifacts in memory.
type MemoryWriter struct {
	mu    sync.Mutex
	files map[string][]byte
	order []string
}

// NewMemoryWriter creates an empty in-memory writer.
func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{files: make(map[string][]byte)}
}

// WriteArtifacts implements Writer.
func (w *MemoryWriter) WriteArtifacts(artifacts []Artifact) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	written := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		if _, ok := w.files[a.Path]; !ok {
			w.order = append(w.order, a.Path)
		}
		w.files[a.Path] = append([]byte(nil), a.Content...)
		written = append(written, a.Path)
	}
	return written, nil
}

// File returns the content stored for path.
func (w *MemoryWriter) File(path string) ([]byte, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	data, ok := w.files[path]
	return data, ok
}

// Paths returns stored paths in first-write order.
func (w *MemoryWriter) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.order...)
}
