package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/sentinelscan/sentinelscan/internal/model"
)

// MarkdownWriter outputs reports in GitHub-flavored Markdown for
// documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent,
// type-safe markdown generation (tables, headings) instead of manual
// string assembly.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given
// writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write renders the report as Markdown.
func (w *MarkdownWriter) Write(header Header, report *model.ScanReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Scan Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Host", "`" + header.Host + "`"},
			{"Ports", header.Ports},
			{"Scan Date", header.ScannedAt.Format("2006-01-02 15:04:05 MST")},
			{"Modules", joinModules(report)},
		},
	})
	md.PlainText("")

	if report.TCP != nil {
		w.writeTCP(md, report.TCP)
	}
	if report.HTTP != nil {
		w.writeHTTP(md, report.HTTP)
	}
	if report.SSL != nil {
		w.writeSSL(md, report.SSL)
	}

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeTCP(md *markdown.Markdown, res *model.PortScanResult) {
	md.H2("TCP Connect")
	md.PlainText("")

	if len(res.OpenPorts) == 0 {
		md.PlainText("No open ports found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(res.OpenPorts))
	for _, rec := range res.ScanResults {
		if rec.Status != model.StatusOpen {
			continue
		}
		rows = append(rows, []string{strconv.Itoa(rec.Port), rec.Service})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Port", "Service"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeHTTP(md *markdown.Markdown, res *model.HTTPScanResult) {
	md.H2("HTTP")
	md.PlainText("")

	if len(res.ScanResults) == 0 {
		md.PlainText("No ports probed.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(res.ScanResults))
	for _, rec := range res.ScanResults {
		code := "-"
		if rec.StatusCode != 0 {
			code = strconv.Itoa(rec.StatusCode)
		}
		rows = append(rows, []string{
			strconv.Itoa(rec.Port),
			string(rec.Status),
			code,
			rec.Server,
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Port", "Status", "Code", "Server"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSSL(md *markdown.Markdown, res *model.CertScanResult) {
	md.H2("TLS Certificate")
	md.PlainText("")

	if !res.OK {
		md.PlainText("Certificate probe failed: " + res.Error)
		md.PlainText("")
		return
	}

	daysLeft := "-"
	if res.DaysLeft != nil {
		daysLeft = strconv.Itoa(*res.DaysLeft)
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Issued To", orDash(res.IssuedTo)},
			{"Issued By", orDash(res.IssuedBy)},
			{"Valid From", orDash(res.ValidFrom)},
			{"Valid Until", orDash(res.ValidUntil)},
			{"Days Left", daysLeft},
			{"Expired", strconv.FormatBool(res.Expired)},
		},
	})
	md.PlainText("")
}

// joinModules lists the modules present in the report.
func joinModules(report *model.ScanReport) string {
	names := report.Modules()
	if len(names) == 0 {
		return "-"
	}
	out := names[0]
	for _, n := range names[1:] {
		out += ", " + n
	}
	return out
}
