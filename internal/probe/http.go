package probe

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sentinelscan/sentinelscan/internal/model"
	"github.com/sentinelscan/sentinelscan/internal/pacing"
)

// DefaultHTTPTimeout bounds each HTTP probe request.
const DefaultHTTPTimeout = 3 * time.Second

// HTTPProber issues a bounded-timeout GET against each port in an
// explicit list and classifies the responses.
//
// Design decision: the prober owns its http.Client rather than taking
// one per call so transport settings (disabled TLS verification,
// disabled keep-alives) stay consistent across a run, while tests can
// still inject a client via WithHTTPClient.
type HTTPProber struct {
	// client performs the probe requests.
	client *http.Client

	// pacer is consulted before each request.
	pacer *pacing.Pacer

	// timeout bounds each request end to end.
	timeout time.Duration

	// userAgent identifies the scanner in request headers.
	userAgent string

	// logger receives structured scan telemetry.
	logger *slog.Logger
}

// HTTPProberOption configures an HTTPProber.
type HTTPProberOption func(*HTTPProber)

// WithHTTPTimeout sets the per-request timeout.
func WithHTTPTimeout(timeout time.Duration) HTTPProberOption {
	return func(s *HTTPProber) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithHTTPClient sets a custom HTTP client. The client's own timeout,
// transport, and redirect policy are used as-is.
func WithHTTPClient(client *http.Client) HTTPProberOption {
	return func(s *HTTPProber) {
		s.client = client
	}
}

// WithHTTPUserAgent sets a custom User-Agent header.
func WithHTTPUserAgent(ua string) HTTPProberOption {
	return func(s *HTTPProber) {
		s.userAgent = ua
	}
}

// WithHTTPLogger sets the logger.
func WithHTTPLogger(logger *slog.Logger) HTTPProberOption {
	return func(s *HTTPProber) {
		s.logger = logger
	}
}

// NewHTTPProber creates an HTTP prober sharing the given pacer.
func NewHTTPProber(pacer *pacing.Pacer, opts ...HTTPProberOption) *HTTPProber {
	s := &HTTPProber{
		pacer:     pacer,
		timeout:   DefaultHTTPTimeout,
		userAgent: "sentinelscan (+https://github.com/sentinelscan/sentinelscan)",
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.client == nil {
		s.client = &http.Client{
			Timeout: s.timeout,
			Transport: &http.Transport{
				// The probe targets arbitrary ports that are rarely
				// valid HTTPS endpoints, so certificate verification
				// stays off.
				TLSClientConfig:   &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // Reconnaissance probe, not a trust decision.
				DisableKeepAlives: true,
			},
		}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// Scan probes each port in the list in order. Transport failures are
// folded into closed records; the method never fails. Cancelling the
// context stops issuing new requests and returns the partial result.
func (s *HTTPProber) Scan(ctx context.Context, host string, ports []int) *model.HTTPScanResult {
	s.logger.Debug("http scan starting", "host", host, "ports", len(ports))

	results := model.NewHTTPScanResult()
	for _, port := range ports {
		rec, ok := s.probePort(ctx, host, port)
		if !ok {
			break
		}
		results.Add(rec)
	}

	s.logger.Debug("http scan finished",
		"host", host,
		"probed", len(results.ScanResults),
		"open", len(results.OpenPorts),
	)
	return results
}

// probePort issues a single paced GET. The boolean is false when the
// scan was cancelled before the request completed.
func (s *HTTPProber) probePort(ctx context.Context, host string, port int) (model.HTTPPortResult, bool) {
	s.pacer.Wait(ctx)
	if ctx.Err() != nil {
		return model.HTTPPortResult{}, false
	}

	url := "http://" + net.JoinHostPort(host, strconv.Itoa(port)) + "/"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.HTTPPortResult{
			Port:   port,
			Status: model.StatusClosed,
			Server: "N/A",
			URL:    url,
			Error:  TrimErrnoSuffix(err.Error()),
		}, true
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return model.HTTPPortResult{}, false
		}
		return model.HTTPPortResult{
			Port:   port,
			Status: model.StatusClosed,
			Server: "N/A",
			URL:    url,
			Error:  TrimErrnoSuffix(err.Error()),
		}, true
	}
	defer resp.Body.Close()

	status := model.StatusClosed
	if resp.StatusCode < http.StatusBadRequest {
		status = model.StatusOpen
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "Unknown"
	}

	return model.HTTPPortResult{
		Port:        port,
		Status:      status,
		StatusCode:  resp.StatusCode,
		Server:      IdentifyServerFamily(resp.Header.Get("Server")),
		ContentType: contentType,
		URL:         url,
	}, true
}

// IdentifyServerFamily maps a Server response header onto a canonical
// server family name. Recognized substrings are matched
// case-insensitively; an unrecognized but present header falls back to
// its first "/"-delimited segment, title-cased. An absent header is
// "Unknown".
func IdentifyServerFamily(header string) string {
	if header == "" {
		return "Unknown"
	}

	h := strings.ToLower(header)
	switch {
	case strings.Contains(h, "apache"):
		return "Apache"
	case strings.Contains(h, "nginx"):
		return "Nginx"
	case strings.Contains(h, "iis"), strings.Contains(h, "microsoft"):
		return "Microsoft IIS"
	case strings.Contains(h, "lighttpd"):
		return "Lighttpd"
	case strings.Contains(h, "gunicorn"):
		return "Gunicorn"
	case strings.Contains(h, "caddy"):
		return "Caddy"
	}

	family, _, _ := strings.Cut(h, "/")
	return cases.Title(language.English).String(family)
}
