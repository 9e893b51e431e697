package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/sentinelscan/sentinelscan/internal/model"
)

// JSONWriter outputs reports in JSON format for tool integration.
//
// Design decision: We use standard encoding/json rather than a
// third-party JSON library because it is sufficient for this output
// volume and keeps behavior consistent across Go versions.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed output.
	indent bool
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint enables two-space indented output.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Envelope is the serialized form: run metadata wrapping the
// per-module result mapping. The "report" object preserves the exact
// module and field names of the result model.
type Envelope struct {
	Version   string            `json:"version,omitempty"`
	Host      string            `json:"host"`
	Ports     string            `json:"ports"`
	ScannedAt string            `json:"scanned_at"`
	Report    *model.ScanReport `json:"report"`
}

// NewEnvelope wraps a report with its run metadata.
func NewEnvelope(header Header, report *model.ScanReport) *Envelope {
	return &Envelope{
		Version:   header.Version,
		Host:      header.Host,
		Ports:     header.Ports,
		ScannedAt: header.ScannedAt.UTC().Format(time.RFC3339),
		Report:    report,
	}
}

// Write outputs the report as a JSON envelope.
func (w *JSONWriter) Write(header Header, report *model.ScanReport) (int, error) {
	var data []byte
	var err error

	envelope := NewEnvelope(header, report)
	if w.indent {
		data, err = json.MarshalIndent(envelope, "", "  ")
	} else {
		data, err = json.Marshal(envelope)
	}
	if err != nil {
		return 0, err
	}

	// Trailing newline for terminal friendliness.
	data = append(data, '\n')
	return w.output.Write(data)
}
