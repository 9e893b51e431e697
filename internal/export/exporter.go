package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sentinelscan/sentinelscan/internal/model"
	"github.com/sentinelscan/sentinelscan/internal/report"
)

// timestampLayout names exports by scan start time, filesystem-safe.
const timestampLayout = "2006-01-02_15-04-05"

// Exporter writes scan reports into the export directory and records
// them in the index.
type Exporter struct {
	// dir is the export directory, created on first use.
	dir string

	// index records export metadata; nil disables bookkeeping.
	index *Index

	// logger receives export telemetry.
	logger *slog.Logger

	// now supplies timestamps for generated filenames; tests pin it.
	now func() time.Time
}

// ExporterOption configures an Exporter.
type ExporterOption func(*Exporter)

// WithIndex attaches an export index for list/clean bookkeeping.
func WithIndex(index *Index) ExporterOption {
	return func(e *Exporter) {
		e.index = index
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ExporterOption {
	return func(e *Exporter) {
		e.logger = logger
	}
}

// NewExporter creates an Exporter rooted at dir.
func NewExporter(dir string, opts ...ExporterOption) *Exporter {
	e := &Exporter{
		dir: dir,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Dir returns the export directory.
func (e *Exporter) Dir() string {
	return e.dir
}

// WriteJSON exports the report envelope as pretty-printed JSON.
// An empty filename gets a timestamped default; provided names are
// sanitized and confined to the export directory. Returns the full
// path written.
func (e *Exporter) WriteJSON(ctx context.Context, header report.Header, rep *model.ScanReport, filename string) (string, error) {
	filename = e.exportFilename(filename, ".json")

	data, err := json.MarshalIndent(report.NewEnvelope(header, rep), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	data = append(data, '\n')

	path, err := e.write(filename, data)
	if err != nil {
		return "", err
	}

	e.record(ctx, header, rep, filename, "json")
	return path, nil
}

// WriteCSV exports the TCP module's detailed results as CSV with
// port/status/service/error columns. It fails when the report has no
// TCP results.
func (e *Exporter) WriteCSV(ctx context.Context, header report.Header, rep *model.ScanReport, filename string) (string, error) {
	if rep.TCP == nil {
		return "", fmt.Errorf("report for %s has no tcp results to export", header.Host)
	}

	filename = e.exportFilename(filename, ".csv")

	var sb strings.Builder
	cw := csv.NewWriter(&sb)
	if err := cw.Write([]string{"port", "status", "service", "error"}); err != nil {
		return "", err
	}
	for _, rec := range rep.TCP.ScanResults {
		row := []string{strconv.Itoa(rec.Port), string(rec.Status), rec.Service, rec.Error}
		if err := cw.Write(row); err != nil {
			return "", err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", err
	}

	path, err := e.write(filename, []byte(sb.String()))
	if err != nil {
		return "", err
	}

	e.record(ctx, header, rep, filename, "csv")
	return path, nil
}

// exportFilename resolves the output filename for one export format.
// An empty name gets the timestamped default; provided names are
// sanitized, and a recognized export extension is replaced rather than
// stacked so paired JSON/CSV exports of the same scan share a stem.
func (e *Exporter) exportFilename(name, ext string) string {
	if name == "" {
		return "scan_" + e.now().Format(timestampLayout) + ext
	}

	name = SafeFilename(name)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".csv":
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name + ext
}

// write persists data under the export directory after path
// confinement checks.
func (e *Exporter) write(filename string, data []byte) (string, error) {
	if err := os.MkdirAll(e.dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path, err := SanitizePath(filename, e.dir)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}

	e.logger.Info("results exported", "path", path)
	return path, nil
}

// record stores export metadata in the index, when one is attached.
// Index failures are logged, not fatal: the export itself succeeded.
func (e *Exporter) record(ctx context.Context, header report.Header, rep *model.ScanReport, filename, format string) {
	if e.index == nil {
		return
	}

	entry := Entry{
		Filename:  filename,
		Format:    format,
		Host:      header.Host,
		Modules:   strings.Join(rep.Modules(), ","),
		CreatedAt: e.now().UTC(),
	}
	if err := e.index.Record(ctx, entry); err != nil {
		e.logger.Warn("failed to index export", "file", filename, "error", err)
	}
}

// Clean deletes every indexed export file and clears the index,
// returning the number of files removed. Files already gone from disk
// are dropped from the index silently.
func (e *Exporter) Clean(ctx context.Context) (int, error) {
	if e.index == nil {
		return 0, fmt.Errorf("export index not configured")
	}

	entries, err := e.index.List(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, entry := range entries {
		path := filepath.Join(e.dir, entry.Filename)
		err := os.Remove(path)
		switch {
		case err == nil:
			deleted++
		case os.IsNotExist(err):
			// Already gone; still drop it from the index.
		default:
			e.logger.Warn("failed to delete export", "path", path, "error", err)
			continue
		}
		if err := e.index.Remove(ctx, entry.Filename); err != nil {
			e.logger.Warn("failed to deindex export", "file", entry.Filename, "error", err)
		}
	}

	return deleted, nil
}
