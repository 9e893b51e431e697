package probe

import (
	"context"
	"log/slog"
	"net"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sentinelscan/sentinelscan/internal/model"
	"github.com/sentinelscan/sentinelscan/internal/pacing"
)

// DefaultTCPTimeout is the per-port connect timeout. Half a second is
// long enough for a listening service on any sane path while keeping
// full-range scans tolerable.
const DefaultTCPTimeout = 500 * time.Millisecond

// hostResolver resolves hostnames before scanning. *net.Resolver
// satisfies it; tests substitute fakes.
type hostResolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// TCPProber attempts a bounded-timeout TCP connection to every port in
// a range and classifies each outcome as open, closed, or error.
type TCPProber struct {
	// dialer establishes the probe connections.
	dialer ContextDialer

	// resolver checks host resolution before any per-port probing.
	resolver hostResolver

	// pacer is consulted before each connection attempt. Shared with
	// the other probers of the same run.
	pacer *pacing.Pacer

	// timeout bounds each connection attempt.
	timeout time.Duration

	// workers is the number of concurrent probe goroutines. 1 keeps
	// the baseline sequential behavior.
	workers int

	// logger receives structured scan telemetry.
	logger *slog.Logger
}

// TCPProberOption configures a TCPProber.
type TCPProberOption func(*TCPProber)

// WithTCPTimeout sets the per-port connect timeout.
func WithTCPTimeout(timeout time.Duration) TCPProberOption {
	return func(s *TCPProber) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithTCPDialer sets a custom dialer. Used for SOCKS5 proxying and for
// deterministic transports in tests.
func WithTCPDialer(dialer ContextDialer) TCPProberOption {
	return func(s *TCPProber) {
		s.dialer = dialer
	}
}

// WithTCPResolver sets a custom host resolver.
func WithTCPResolver(resolver hostResolver) TCPProberOption {
	return func(s *TCPProber) {
		s.resolver = resolver
	}
}

// WithTCPWorkers sets the number of concurrent probe workers. Values
// below 1 are treated as 1. The pacer remains a single shared gate, so
// raising the worker count never raises the attempt rate above the
// configured cadence.
func WithTCPWorkers(n int) TCPProberOption {
	return func(s *TCPProber) {
		if n > 1 {
			s.workers = n
		}
	}
}

// WithTCPLogger sets the logger.
func WithTCPLogger(logger *slog.Logger) TCPProberOption {
	return func(s *TCPProber) {
		s.logger = logger
	}
}

// NewTCPProber creates a TCP connect prober sharing the given pacer.
func NewTCPProber(pacer *pacing.Pacer, opts ...TCPProberOption) *TCPProber {
	s := &TCPProber{
		pacer:   pacer,
		timeout: DefaultTCPTimeout,
		workers: 1,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.dialer == nil {
		s.dialer = &net.Dialer{Timeout: s.timeout}
	}
	if s.resolver == nil {
		s.resolver = net.DefaultResolver
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// Scan probes every port in the range in ascending order.
//
// The host is resolved first; failure is returned as a
// *HostResolutionError before any per-port probing. Per-port failures
// never surface as errors — they are folded into the result records.
// Cancelling the context stops issuing new probes and returns the
// partial result collected so far.
func (s *TCPProber) Scan(ctx context.Context, host string, ports model.PortRange) (*model.PortScanResult, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.resolver.LookupHost(ctx, host); err != nil {
		return nil, &HostResolutionError{Host: host, Err: err}
	}

	s.logger.Debug("tcp scan starting",
		"host", host,
		"ports", ports.String(),
		"workers", s.workers,
	)

	portList := ports.Ports()
	var records []model.PortResult
	if s.workers > 1 {
		records = s.scanConcurrent(ctx, host, portList)
	} else {
		records = s.scanSequential(ctx, host, portList)
	}

	results := model.NewPortScanResult()
	for _, rec := range records {
		results.Add(rec)
	}

	s.logger.Debug("tcp scan finished",
		"host", host,
		"probed", len(results.ScanResults),
		"open", len(results.OpenPorts),
	)
	return results, nil
}

// scanSequential probes ports one at a time in ascending order.
func (s *TCPProber) scanSequential(ctx context.Context, host string, ports []int) []model.PortResult {
	records := make([]model.PortResult, 0, len(ports))
	for _, port := range ports {
		rec, ok := s.probePort(ctx, host, port)
		if !ok {
			break
		}
		records = append(records, rec)
	}
	return records
}

// scanConcurrent probes ports with a bounded worker pool. The detail
// list stays sorted by port number because results are written to a
// slice indexed by the ascending port list.
func (s *TCPProber) scanConcurrent(ctx context.Context, host string, ports []int) []model.PortResult {
	slots := make([]model.PortResult, len(ports))
	done := make([]bool, len(ports))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, port := range ports {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			rec, ok := s.probePort(gctx, host, port)
			if ok {
				slots[i] = rec
				done[i] = true
			}
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // Workers never return errors; partial results are kept.

	records := make([]model.PortResult, 0, len(ports))
	for i := range slots {
		if done[i] {
			records = append(records, slots[i])
		}
	}
	return records
}

// probePort issues a single paced connection attempt. The boolean is
// false when the attempt was abandoned because the scan was cancelled.
func (s *TCPProber) probePort(ctx context.Context, host string, port int) (model.PortResult, bool) {
	s.pacer.Wait(ctx)
	if ctx.Err() != nil {
		return model.PortResult{}, false
	}

	dialCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	conn, err := s.dialer.DialContext(dialCtx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err == nil {
		_ = conn.Close()

		service := ServiceName(port)
		if service == "" {
			service = "unknown"
		}
		return model.PortResult{Port: port, Status: model.StatusOpen, Service: service}, true
	}

	// Distinguish an interrupted scan from a genuine dial failure.
	if ctx.Err() != nil {
		return model.PortResult{}, false
	}

	switch ClassifyDialError(err) {
	case FailureTimeout, FailureRefused:
		return model.PortResult{Port: port, Status: model.StatusClosed}, true
	default:
		return model.PortResult{Port: port, Status: model.StatusError, Error: err.Error()}, true
	}
}
