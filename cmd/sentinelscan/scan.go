package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sentinelscan/sentinelscan/internal/config"
	"github.com/sentinelscan/sentinelscan/internal/engine"
	"github.com/sentinelscan/sentinelscan/internal/export"
	"github.com/sentinelscan/sentinelscan/internal/log"
	"github.com/sentinelscan/sentinelscan/internal/model"
	"github.com/sentinelscan/sentinelscan/internal/pacing"
	"github.com/sentinelscan/sentinelscan/internal/report"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <host>",
		Short: "Probe a host across a port range",
		Long: `Scan probes a single target host (IP literal or domain name).

Modules:
  tcp   TCP connect scan over the port range with service name lookup
  http  HTTP GET probe per port with server family identification
  ssl   TLS handshake and certificate inspection on one port

Pacing presets control the delay between probes:
  stealth     1s between probes with randomized jitter
  normal      50ms between probes (default)
  aggressive  10ms between probes
  none        no delay (scans over 1000 ports are slowed automatically)

Examples:
  # TCP scan of the first 1024 ports
  sentinelscan scan 192.168.1.10

  # All three modules over a custom range
  sentinelscan scan -p 1-8080 -m tcp,http,ssl example.com

  # Slow scan through a SOCKS5 proxy
  sentinelscan scan --preset stealth --socks5 127.0.0.1:9050 example.com

  # JSON report, also exported to the data directory
  sentinelscan scan -j --export example.com

Configuration file (.sentinelscan) example:
  defaults:
    preset: normal
  hosts:
    example.com:
      ports: 1-8080
      modules: [tcp, http, ssl]
      timeout: 2.0`,
		Args: cobra.ExactArgs(1),
		RunE: runScanCmd,
	}

	// Scan behavior flags
	cmd.Flags().StringP("ports", "p", config.DefaultPortSpec,
		"Port range to scan in start-end form (e.g. 20-1024)")
	cmd.Flags().StringSliceP("modules", "m", nil,
		"Modules to run: tcp, http, ssl (default tcp)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each probe (100ms to 10s)")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Concurrent probes per module (1 = sequential)")

	// TLS module flags
	cmd.Flags().Int("tls-port", config.DefaultTLSPort,
		"Port probed by the ssl module")
	cmd.Flags().Bool("tls-verify", true,
		"Verify the certificate chain in the ssl module")

	// Pacing flags
	cmd.Flags().String("preset", pacing.PresetNormal,
		"Pacing preset: stealth, normal, aggressive, none")
	cmd.Flags().Duration("delay", 0,
		"Explicit delay between probes (overrides --preset)")

	// Proxy flag
	cmd.Flags().String("socks5", "",
		"Route tcp/ssl probes through a SOCKS5 proxy (host:port)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sentinelscan in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().Bool("markdown", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("show-closed", false,
		"Include closed ports in the text report")

	// Export flags
	cmd.Flags().Bool("export", false,
		"Export the JSON report to the data directory")
	cmd.Flags().String("export-name", "",
		"Filename for the export (default: scan_<timestamp>.json)")
	cmd.Flags().Bool("export-csv", false,
		"Additionally export tcp results as CSV")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags and config file
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	logger := setupLogger(getVerboseFlag(cmd))
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runScan(ctx, cmd, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags and the
// optional config file. Flags the user set explicitly win over
// per-host config file entries, which win over built-in defaults.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Host = args[0]

	var err error

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load per-host configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.HostConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.HostConfigs = &config.File{
			Hosts: make(map[string]config.HostConfig),
		}
	}

	// Apply the config file's entry for this host before the flags so
	// that explicitly set flags take precedence.
	hc := cfg.HostConfigs.GetHostConfig(cfg.Host)
	if err := applyHostConfig(cfg, hc); err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("ports") || cfg.Ports.Start == 0 {
		spec, err := cmd.Flags().GetString("ports")
		if err != nil {
			return nil, err
		}
		cfg.Ports, err = model.ParsePortRange(spec)
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("modules") || len(cfg.Modules) == 0 {
		cfg.Modules, err = cmd.Flags().GetStringSlice("modules")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("timeout") || cfg.Timeout == 0 {
		cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("preset") || cfg.Preset == "" {
		cfg.Preset, err = cmd.Flags().GetString("preset")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("tls-port") || cfg.TLSPort == 0 {
		cfg.TLSPort, err = cmd.Flags().GetInt("tls-port")
		if err != nil {
			return nil, err
		}
	}

	cfg.TLSVerify, err = cmd.Flags().GetBool("tls-verify")
	if err != nil {
		return nil, err
	}

	cfg.Workers, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("delay") {
		cfg.Delay, err = cmd.Flags().GetDuration("delay")
		if err != nil {
			return nil, err
		}
		cfg.DelaySet = true
	}

	cfg.SocksProxy, err = cmd.Flags().GetString("socks5")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.Export, err = cmd.Flags().GetBool("export")
	if err != nil {
		return nil, err
	}

	cfg.ExportName, err = cmd.Flags().GetString("export-name")
	if err != nil {
		return nil, err
	}

	cfg.ExportCSV, err = cmd.Flags().GetBool("export-csv")
	if err != nil {
		return nil, err
	}

	// --export-name or --export-csv alone implies --export
	if cfg.ExportName != "" || cfg.ExportCSV {
		cfg.Export = true
	}

	return cfg, nil
}

// applyHostConfig copies a config file entry's overrides onto cfg.
func applyHostConfig(cfg *config.Config, hc config.HostConfig) error {
	if hc.Ports != "" {
		ports, err := model.ParsePortRange(hc.Ports)
		if err != nil {
			return fmt.Errorf("invalid ports for host %s in config file: %w", cfg.Host, err)
		}
		cfg.Ports = ports
	}
	if len(hc.Modules) > 0 {
		cfg.Modules = hc.Modules
	}
	if hc.Timeout != 0 {
		cfg.Timeout = time.Duration(hc.Timeout * float64(time.Second))
	}
	if hc.Preset != "" {
		cfg.Preset = hc.Preset
	}
	if hc.TLSPort != 0 {
		cfg.TLSPort = hc.TLSPort
	}
	return nil
}

// setupLogger creates a structured logger based on verbosity setting.
// All records pass through the component handler so each subsystem
// tags its own log lines.
func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := log.NewComponentHandler(slog.NewTextHandler(os.Stderr, opts))
	return slog.New(handler)
}

// runScan executes the scan and renders the report.
func runScan(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	scanCtx := log.WithComponent(ctx, log.ComponentScan)

	logger.Info("starting scan",
		"host", cfg.Host,
		"ports", cfg.Ports.String(),
		"modules", cfg.Modules,
		"preset", cfg.Preset,
	)

	startedAt := time.Now()

	orch := engine.New(engine.WithLogger(logger))
	rep, err := orch.Run(scanCtx, engine.Request{
		Host:       cfg.Host,
		Ports:      cfg.Ports,
		Modules:    cfg.Modules,
		Timeout:    cfg.Timeout,
		TLSVerify:  cfg.TLSVerify,
		TLSPort:    cfg.TLSPort,
		Pacing:     cfg.PacingOptions(),
		SocksProxy: cfg.SocksProxy,
		Workers:    cfg.Workers,
	})
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	header := report.Header{
		Host:      cfg.Host,
		Ports:     cfg.Ports.String(),
		ScannedAt: startedAt,
		Version:   getVersion(),
	}

	if err := writeReport(cmd, cfg, header, rep); err != nil {
		return err
	}

	if cfg.Export {
		if err := exportReport(ctx, cfg, header, rep, logger); err != nil {
			return err
		}
	}

	return nil
}

// writeReport renders the report to stdout and, when requested, to a
// file.
func writeReport(cmd *cobra.Command, cfg *config.Config, header report.Header, rep *model.ScanReport) error {
	showClosed, err := cmd.Flags().GetBool("show-closed")
	if err != nil {
		return err
	}

	writers := []report.Writer{newReportWriter(cmd.OutOrStdout(), cfg, showClosed)}

	var reportFile *os.File
	if cfg.ReportFile != "" {
		if dir := filepath.Dir(cfg.ReportFile); dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create report directory: %w", err)
			}
		}
		reportFile, err = os.Create(cfg.ReportFile)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer func() { _ = reportFile.Close() }()
		writers = append(writers, newReportWriter(reportFile, cfg, showClosed))
	}

	if _, err := report.NewMultiWriter(writers...).Write(header, rep); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// newReportWriter picks the writer for the configured format.
func newReportWriter(w io.Writer, cfg *config.Config, showClosed bool) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(w, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(w)
	default:
		return report.NewSimpleWriter(w, report.WithShowClosed(showClosed))
	}
}

// exportReport writes the report into the XDG data directory and
// records it in the export index.
func exportReport(ctx context.Context, cfg *config.Config, header report.Header, rep *model.ScanReport, logger *slog.Logger) error {
	exportCtx := log.WithComponent(ctx, log.ComponentExport)

	idx, err := export.OpenIndex(config.ExportDir())
	if err != nil {
		return err
	}
	defer func() { _ = idx.Close() }()

	exporter := export.NewExporter(config.ExportDir(),
		export.WithIndex(idx),
		export.WithLogger(logger),
	)

	path, err := exporter.WriteJSON(exportCtx, header, rep, cfg.ExportName)
	if err != nil {
		return fmt.Errorf("failed to export report: %w", err)
	}
	fmt.Fprintf(os.Stderr, "exported report to %s\n", path)

	if cfg.ExportCSV {
		csvPath, err := exporter.WriteCSV(exportCtx, header, rep, cfg.ExportName)
		if err != nil {
			return fmt.Errorf("failed to export CSV: %w", err)
		}
		fmt.Fprintf(os.Stderr, "exported csv to %s\n", csvPath)
	}

	return nil
}
