package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sentinelscan/sentinelscan/internal/model"
	"github.com/sentinelscan/sentinelscan/internal/pacing"
	"github.com/sentinelscan/sentinelscan/internal/probe"
)

// Module names selectable by the caller, in canonical execution order.
const (
	ModuleTCP  = "tcp"
	ModuleHTTP = "http"
	ModuleSSL  = "ssl"
)

// moduleOrder fixes the execution (and report key) order regardless of
// how the caller listed the modules.
var moduleOrder = []string{ModuleTCP, ModuleHTTP, ModuleSSL}

// ErrUnknownModule is returned when the selection names a module that
// does not exist. This is a configuration error raised before any
// network activity.
var ErrUnknownModule = errors.New("unknown scan module")

// Request carries the validated inputs for one scan run. The CLI layer
// owns validation of value bounds; the orchestrator re-checks only
// what it needs to fail fast on unfiltered input.
type Request struct {
	// Host is a pre-validated IP literal or domain name.
	Host string

	// Ports is the inclusive port range to scan.
	Ports model.PortRange

	// Modules selects the probers to run. Empty defaults to tcp only.
	Modules []string

	// Timeout bounds each individual network operation.
	Timeout time.Duration

	// TLSVerify enables certificate verification in the ssl module.
	TLSVerify bool

	// TLSPort is the single port the ssl module probes (default 443).
	TLSPort int

	// Pacing is the operator's pacing request.
	Pacing pacing.Options

	// SocksProxy optionally routes TCP and TLS probes through a SOCKS5
	// proxy at this address.
	SocksProxy string

	// Workers bounds per-module probe concurrency. 1 (or 0) keeps the
	// baseline sequential behavior.
	Workers int
}

// Orchestrator fans a scan request out to the selected protocol
// modules and merges their results.
type Orchestrator struct {
	logger *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger used for run telemetry and safety
// notices.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// New creates an Orchestrator.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// Run executes one scan.
//
// Configuration errors (invalid range, unknown module or preset) and
// host-resolution failures abort the run with no report. A module
// whose probes fail per-unit still contributes its structured result;
// cancellation stops issuing probes and returns the partial report.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*model.ScanReport, error) {
	if err := req.Ports.Validate(); err != nil {
		return nil, err
	}

	selected, err := normalizeModules(req.Modules)
	if err != nil {
		return nil, err
	}

	pacer, err := pacing.Build(req.Pacing, req.Ports.Count(), o.logger)
	if err != nil {
		return nil, err
	}

	dialer, err := probe.NewDialer(req.Timeout, req.SocksProxy)
	if err != nil {
		return nil, err
	}

	report := &model.ScanReport{}
	for _, name := range moduleOrder {
		if !selected[name] {
			continue
		}

		select {
		case <-ctx.Done():
			o.logger.Warn("scan cancelled", "module", name, "reason", ctx.Err())
			return report, nil
		default:
		}

		o.logger.Info("executing module",
			"module", name,
			"host", req.Host,
			"ports", req.Ports.String(),
		)

		start := time.Now()
		if err := o.runModule(ctx, name, req, pacer, dialer, report); err != nil {
			o.logger.Error("module failed",
				"module", name,
				"host", req.Host,
				"error", err,
			)
			return nil, err
		}

		o.logger.Debug("module completed",
			"module", name,
			"host", req.Host,
			"elapsed", time.Since(start).Round(time.Millisecond),
		)
	}

	return report, nil
}

// runModule executes one protocol module and merges its result.
func (o *Orchestrator) runModule(
	ctx context.Context,
	name string,
	req Request,
	pacer *pacing.Pacer,
	dialer probe.ContextDialer,
	report *model.ScanReport,
) error {
	switch name {
	case ModuleTCP:
		prober := probe.NewTCPProber(pacer,
			probe.WithTCPTimeout(req.Timeout),
			probe.WithTCPDialer(dialer),
			probe.WithTCPWorkers(req.Workers),
			probe.WithTCPLogger(o.logger),
		)
		result, err := prober.Scan(ctx, req.Host, req.Ports)
		if err != nil {
			return err
		}
		report.TCP = result

	case ModuleHTTP:
		prober := probe.NewHTTPProber(pacer,
			probe.WithHTTPTimeout(req.Timeout),
			probe.WithHTTPLogger(o.logger),
		)
		report.HTTP = prober.Scan(ctx, req.Host, req.Ports.Ports())

	case ModuleSSL:
		port := req.TLSPort
		if port == 0 {
			port = probe.DefaultTLSPort
		}
		prober := probe.NewTLSProber(pacer,
			probe.WithTLSTimeout(req.Timeout),
			probe.WithTLSVerify(req.TLSVerify),
			probe.WithTLSDialer(dialer),
			probe.WithTLSLogger(o.logger),
		)
		report.SSL = prober.Scan(ctx, req.Host, port)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownModule, name)
	}

	return nil
}

// normalizeModules validates the selection and returns a set. An empty
// selection defaults to the tcp module only.
func normalizeModules(modules []string) (map[string]bool, error) {
	if len(modules) == 0 {
		return map[string]bool{ModuleTCP: true}, nil
	}

	selected := make(map[string]bool, len(modules))
	for _, name := range modules {
		switch name {
		case ModuleTCP, ModuleHTTP, ModuleSSL:
			selected[name] = true
		default:
			return nil, fmt.Errorf("%w: %q (valid: %s, %s, %s)",
				ErrUnknownModule, name, ModuleTCP, ModuleHTTP, ModuleSSL)
		}
	}
	return selected, nil
}
