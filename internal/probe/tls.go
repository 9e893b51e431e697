package probe

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"log/slog"
	"math"
	"net"
	"strconv"
	"time"

	"github.com/sentinelscan/sentinelscan/internal/model"
	"github.com/sentinelscan/sentinelscan/internal/pacing"
)

// Defaults for the TLS certificate probe.
const (
	// DefaultTLSTimeout bounds the connection plus handshake.
	DefaultTLSTimeout = 5 * time.Second

	// DefaultTLSPort is the port probed when none is configured.
	DefaultTLSPort = 443
)

// certTimeLayouts are the accepted textual forms of certificate
// validity timestamps, as printed in validity fields: day-of-month
// padded with a second space, or with a single space.
var certTimeLayouts = []string{
	"Jan _2 15:04:05 2006 MST",
	"Jan 2 15:04:05 2006 MST",
}

// certTimeLayout is the form the prober emits when carrying timestamps
// out of a live handshake.
const certTimeLayout = "Jan _2 15:04:05 2006 MST"

// TLSProber establishes one TLS handshake and summarizes the peer
// certificate: subject/issuer common names, validity window, and
// expiry state.
type TLSProber struct {
	// dialer establishes the underlying TCP connection.
	dialer ContextDialer

	// pacer is consulted once before the connection attempt.
	pacer *pacing.Pacer

	// timeout bounds the dial and handshake together.
	timeout time.Duration

	// verify enables certificate-chain and hostname verification.
	// Disabled by operators probing self-signed or mismatched
	// endpoints.
	verify bool

	// logger receives structured scan telemetry.
	logger *slog.Logger

	// now supplies the current time; tests pin it.
	now func() time.Time
}

// TLSProberOption configures a TLSProber.
type TLSProberOption func(*TLSProber)

// WithTLSTimeout sets the dial-plus-handshake timeout.
func WithTLSTimeout(timeout time.Duration) TLSProberOption {
	return func(s *TLSProber) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithTLSVerify enables or disables certificate verification.
func WithTLSVerify(verify bool) TLSProberOption {
	return func(s *TLSProber) {
		s.verify = verify
	}
}

// WithTLSDialer sets a custom dialer.
func WithTLSDialer(dialer ContextDialer) TLSProberOption {
	return func(s *TLSProber) {
		s.dialer = dialer
	}
}

// WithTLSLogger sets the logger.
func WithTLSLogger(logger *slog.Logger) TLSProberOption {
	return func(s *TLSProber) {
		s.logger = logger
	}
}

// NewTLSProber creates a TLS certificate prober sharing the given
// pacer. Verification defaults to on.
func NewTLSProber(pacer *pacing.Pacer, opts ...TLSProberOption) *TLSProber {
	s := &TLSProber{
		pacer:   pacer,
		timeout: DefaultTLSTimeout,
		verify:  true,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.dialer == nil {
		s.dialer = &net.Dialer{Timeout: s.timeout}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// Scan performs one handshake against host:port and always returns a
// result, never an error. The three failure categories a caller can
// branch on via the error text: "no certificate presented" (handshake
// succeeded without a peer certificate), "SSL error: ..." (TLS-layer
// failure), and "Socket error: ..." (anything below TLS).
func (s *TLSProber) Scan(ctx context.Context, host string, port int) *model.CertScanResult {
	if port == 0 {
		port = DefaultTLSPort
	}

	s.pacer.Wait(ctx)

	dialCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.dialer.DialContext(dialCtx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return &model.CertScanResult{Error: "Socket error: " + err.Error()}
	}
	defer raw.Close()

	conn := tls.Client(raw, &tls.Config{
		ServerName:         host,
		InsecureSkipVerify: !s.verify, //nolint:gosec // Operator-selected for self-signed endpoints.
	})
	defer conn.Close()

	if err := conn.HandshakeContext(dialCtx); err != nil {
		return &model.CertScanResult{Error: "SSL error: " + err.Error()}
	}

	state := conn.ConnectionState()
	result := s.summarizeChain(state.PeerCertificates)
	if result.OK {
		s.logger.Debug("tls handshake complete",
			"host", host,
			"port", port,
			"subject", result.IssuedTo,
		)
	}
	return result
}

// summarizeChain converts a presented peer chain into a result. An
// empty chain (a handshake that produced no peer certificate) is a
// failed probe, not a panic.
func (s *TLSProber) summarizeChain(certs []*x509.Certificate) *model.CertScanResult {
	if len(certs) == 0 {
		return &model.CertScanResult{Error: "no certificate presented"}
	}

	cert := certs[0]
	return newCertResult(certFields{
		subjectCN: lastCommonName(cert.Subject),
		issuerCN:  lastCommonName(cert.Issuer),
		notBefore: cert.NotBefore.UTC().Format(certTimeLayout),
		notAfter:  cert.NotAfter.UTC().Format(certTimeLayout),
	}, s.now())
}

// certFields carries the extracted certificate attributes before
// interpretation. Validity timestamps are in the textual form of
// certificate validity fields so newCertResult is the single code path
// for date handling.
type certFields struct {
	subjectCN string
	issuerCN  string
	notBefore string
	notAfter  string
}

// newCertResult interprets extracted certificate fields. A timestamp
// matching neither accepted layout leaves the corresponding field
// absent rather than failing the probe; days_left and expired are
// derived only when notAfter parsed.
func newCertResult(f certFields, now time.Time) *model.CertScanResult {
	res := &model.CertScanResult{
		OK:       true,
		IssuedTo: f.subjectCN,
		IssuedBy: f.issuerCN,
	}

	if nb, ok := parseCertTime(f.notBefore); ok {
		res.ValidFrom = nb.Format(time.RFC3339)
	}
	if na, ok := parseCertTime(f.notAfter); ok {
		res.ValidUntil = na.Format(time.RFC3339)

		days := int(math.Floor(na.Sub(now.UTC()).Hours() / 24))
		res.DaysLeft = &days
		res.Expired = days < 0
	}

	return res
}

// parseCertTime parses a validity timestamp, accepting both day
// padding variants. The second return is false when the value matches
// neither layout.
func parseCertTime(s string) (time.Time, bool) {
	for _, layout := range certTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// oidCommonName is the X.500 commonName attribute type.
var oidCommonName = asn1.ObjectIdentifier{2, 5, 4, 3}

// lastCommonName extracts the commonName from a distinguished name,
// keeping the last occurrence when the attribute is duplicated across
// relative distinguished name groups.
func lastCommonName(name pkix.Name) string {
	cn := name.CommonName
	for _, atv := range name.Names {
		if !atv.Type.Equal(oidCommonName) {
			continue
		}
		if s, ok := atv.Value.(string); ok {
			cn = s
		}
	}
	return cn
}
