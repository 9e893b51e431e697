package report

import (
	"io"
	"time"

	"github.com/sentinelscan/sentinelscan/internal/model"
)

// Header carries run metadata rendered alongside the module results.
type Header struct {
	// Host is the scanned target.
	Host string

	// Ports is the scanned range in "start-end" form.
	Ports string

	// ScannedAt is when the scan started.
	ScannedAt time.Time

	// Version is the sentinelscan version that produced the report.
	Version string
}

// Writer renders a scan report to a configured destination.
//
// Design decision: We use an interface so the CLI can write to
// terminal, file, or both with the same API, and so formats can be
// added without touching the callers.
type Writer interface {
	// Write renders the report. Returns the number of bytes written
	// and any error encountered.
	Write(header Header, report *model.ScanReport) (int, error)
}

// MultiWriter writes a report to several Writers, stopping on the
// first error. Useful for terminal plus file output.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write renders the report to every destination.
func (m *MultiWriter) Write(header Header, report *model.ScanReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(header, report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides the shared output destination for writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
