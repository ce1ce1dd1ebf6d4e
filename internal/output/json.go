package output

import (
	"encoding/json"
	"io"
	"sync"
)

// JSONWriter writes reports and snapshots as JSON documents, one per call.
type JSONWriter struct {
	mu     sync.Mutex
	writer io.Writer
	pretty bool
}

// NewJSONWriter creates a new JSON writer.
func NewJSONWriter(w io.Writer, pretty bool) *JSONWriter {
	return &JSONWriter{
		writer: w,
		pretty: pretty,
	}
}

// WriteReport writes an analysis report.
func (j *JSONWriter) WriteReport(report *Report) error {
	return j.WriteValue(report)
}

// WriteValue writes any JSON-encodable value followed by a newline.
func (j *JSONWriter) WriteValue(v interface{}) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	enc := json.NewEncoder(j.writer)
	enc.SetEscapeHTML(false)
	if j.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// Flush flushes the writer.
func (j *JSONWriter) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if flusher, ok := j.writer.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}
	return nil
}
