package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/sentinelscan/sentinelscan/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminals.
//
// Design decision: plain text with ASCII formatting rather than ANSI
// colors, so output pipes cleanly to files and other tools.
type SimpleWriter struct {
	baseWriter

	// showClosed includes closed ports in the TCP detail listing.
	// Off by default; full-range scans would drown the summary.
	showClosed bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowClosed includes closed and errored ports in the detail
// listing.
func WithShowClosed(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showClosed = show
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given
// writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders the report as readable text.
func (w *SimpleWriter) Write(header Header, report *model.ScanReport) (int, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Scan report for %s (ports %s)\n", header.Host, header.Ports)
	fmt.Fprintf(&sb, "Started %s\n", header.ScannedAt.Format("2006-01-02 15:04:05 MST"))

	if report.TCP != nil {
		w.writeTCP(&sb, report.TCP)
	}
	if report.HTTP != nil {
		w.writeHTTP(&sb, report.HTTP)
	}
	if report.SSL != nil {
		w.writeSSL(&sb, report.SSL)
	}

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeTCP(sb *strings.Builder, res *model.PortScanResult) {
	sb.WriteString("\n[tcp]\n")

	if len(res.OpenPorts) == 0 {
		sb.WriteString("No open ports found.\n")
	} else {
		sb.WriteString("Open ports:\n")
		for _, rec := range res.ScanResults {
			if rec.Status != model.StatusOpen {
				continue
			}
			service := ""
			if rec.Service != "" {
				service = " (" + rec.Service + ")"
			}
			fmt.Fprintf(sb, "  %d/tcp%s\n", rec.Port, service)
		}
	}

	if w.showClosed {
		for _, rec := range res.ScanResults {
			switch rec.Status {
			case model.StatusClosed:
				fmt.Fprintf(sb, "  %d/tcp closed\n", rec.Port)
			case model.StatusError:
				fmt.Fprintf(sb, "  %d/tcp error: %s\n", rec.Port, rec.Error)
			}
		}
	}

	fmt.Fprintf(sb, "Scan complete: %d ports scanned, %d open.\n",
		len(res.ScanResults), len(res.OpenPorts))
}

func (w *SimpleWriter) writeHTTP(sb *strings.Builder, res *model.HTTPScanResult) {
	sb.WriteString("\n[http]\n")

	if len(res.OpenPorts) == 0 {
		sb.WriteString("No web services found.\n")
		return
	}

	for _, rec := range res.ScanResults {
		if rec.Status != model.StatusOpen {
			continue
		}
		fmt.Fprintf(sb, "  %s -> %d %s (%s)\n", rec.URL, rec.StatusCode, rec.Server, rec.ContentType)
	}
	fmt.Fprintf(sb, "HTTP probe complete: %d ports probed, %d responding.\n",
		len(res.ScanResults), len(res.OpenPorts))
}

func (w *SimpleWriter) writeSSL(sb *strings.Builder, res *model.CertScanResult) {
	sb.WriteString("\n[ssl]\n")

	if !res.OK {
		fmt.Fprintf(sb, "Certificate probe failed: %s\n", res.Error)
		return
	}

	fmt.Fprintf(sb, "  Issued to:   %s\n", orDash(res.IssuedTo))
	fmt.Fprintf(sb, "  Issued by:   %s\n", orDash(res.IssuedBy))
	fmt.Fprintf(sb, "  Valid from:  %s\n", orDash(res.ValidFrom))
	fmt.Fprintf(sb, "  Valid until: %s\n", orDash(res.ValidUntil))

	if res.DaysLeft != nil {
		if res.Expired {
			fmt.Fprintf(sb, "  EXPIRED %d day(s) ago\n", -*res.DaysLeft)
		} else {
			fmt.Fprintf(sb, "  Expires in %d day(s)\n", *res.DaysLeft)
		}
	}
}

// orDash substitutes "-" for empty optional fields.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
