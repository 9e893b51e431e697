package model

// PortStatus is the outcome classification for a single port probe.
type PortStatus string

// Port probe outcomes.
//
// StatusOpen means the connection (or request) succeeded. StatusClosed
// covers timeouts and refusals, which are expected for unused ports.
// StatusError is reserved for unexpected socket-level failures such as
// an unreachable network.
const (
	StatusOpen   PortStatus = "open"
	StatusClosed PortStatus = "closed"
	StatusError  PortStatus = "error"
)

// PortResult is the outcome of probing a single TCP port.
// It is immutable once created.
type PortResult struct {
	// Port is the probed port number (1-65535).
	Port int `json:"port"`

	// Status classifies the probe outcome.
	Status PortStatus `json:"status"`

	// Service is a best-effort service label for open ports.
	// It is "unknown" when the port is open but not in the well-known
	// table, and empty for closed or errored ports.
	Service string `json:"service"`

	// Error holds the underlying failure message when Status is
	// StatusError, and is empty otherwise.
	Error string `json:"error"`
}

// PortScanResult aggregates the TCP prober's output for a port range.
//
// Design decision: OpenPorts is derived at insertion time rather than
// computed on demand because the output contract requires it as a
// serialized field, and deriving it lazily would complicate JSON
// marshaling for no benefit.
type PortScanResult struct {
	// OpenPorts lists ports with StatusOpen, in scan order.
	OpenPorts []int `json:"open_ports"`

	// ScanResults holds the detailed per-port records, in scan order.
	ScanResults []PortResult `json:"scan_results"`
}

// NewPortScanResult creates an empty PortScanResult with initialized
// slices so the JSON output contains [] rather than null.
func NewPortScanResult() *PortScanResult {
	return &PortScanResult{
		OpenPorts:   make([]int, 0),
		ScanResults: make([]PortResult, 0),
	}
}

// Add appends a per-port record and updates OpenPorts when the port
// is open. A single producer appends; Add is not safe for concurrent
// use.
func (r *PortScanResult) Add(pr PortResult) {
	r.ScanResults = append(r.ScanResults, pr)
	if pr.Status == StatusOpen {
		r.OpenPorts = append(r.OpenPorts, pr.Port)
	}
}

// HTTPPortResult is the outcome of an HTTP GET probe against one port.
type HTTPPortResult struct {
	// Port is the probed port number.
	Port int `json:"port"`

	// Status is StatusOpen when the response did not signal a client
	// or server error, StatusClosed otherwise (including transport
	// failures).
	Status PortStatus `json:"status"`

	// StatusCode is the HTTP response status. It is absent when the
	// request failed at the transport level.
	StatusCode int `json:"status_code,omitempty"`

	// Server is the identified server family ("Nginx", "Apache", ...),
	// "Unknown" when the header is absent, or "N/A" on transport
	// failure.
	Server string `json:"server"`

	// ContentType is the response Content-Type header, "Unknown" when
	// absent. Empty on transport failure.
	ContentType string `json:"content_type,omitempty"`

	// URL is the probe URL that produced this record.
	URL string `json:"url"`

	// Error holds a truncated transport failure message, empty on
	// success.
	Error string `json:"error,omitempty"`
}

// HTTPScanResult aggregates the HTTP prober's output.
type HTTPScanResult struct {
	// OpenPorts lists ports whose response was classified open,
	// in scan order.
	OpenPorts []int `json:"open_ports"`

	// ScanResults holds the detailed per-port records, in scan order.
	ScanResults []HTTPPortResult `json:"scan_results"`
}

// NewHTTPScanResult creates an empty HTTPScanResult with initialized
// slices.
func NewHTTPScanResult() *HTTPScanResult {
	return &HTTPScanResult{
		OpenPorts:   make([]int, 0),
		ScanResults: make([]HTTPPortResult, 0),
	}
}

// Add appends a per-port record and updates OpenPorts when the port
// is open.
func (r *HTTPScanResult) Add(pr HTTPPortResult) {
	r.ScanResults = append(r.ScanResults, pr)
	if pr.Status == StatusOpen {
		r.OpenPorts = append(r.OpenPorts, pr.Port)
	}
}

// CertScanResult is the single-record outcome of a TLS certificate
// probe against one host:port.
//
// Design decision: DaysLeft is a pointer because zero is a meaningful
// value (the certificate expires today) and the field must be absent
// when the notAfter timestamp could not be parsed.
type CertScanResult struct {
	// OK is true when a certificate was retrieved and summarized.
	OK bool `json:"ok"`

	// IssuedTo is the subject common name, when present.
	IssuedTo string `json:"issued_to,omitempty"`

	// IssuedBy is the issuer common name, when present.
	IssuedBy string `json:"issued_by,omitempty"`

	// ValidFrom is the notBefore timestamp in RFC 3339 form, absent
	// when unparseable.
	ValidFrom string `json:"valid_from,omitempty"`

	// ValidUntil is the notAfter timestamp in RFC 3339 form, absent
	// when unparseable.
	ValidUntil string `json:"valid_until,omitempty"`

	// DaysLeft is the signed day count until notAfter; negative when
	// the certificate has expired, nil when notAfter is unknown.
	DaysLeft *int `json:"days_left,omitempty"`

	// Expired is true iff DaysLeft is known and negative.
	Expired bool `json:"expired"`

	// Error describes the failure when OK is false.
	Error string `json:"error,omitempty"`
}

// ScanReport maps module names to their result objects for one
// orchestrator run. A field is populated only when the corresponding
// module was selected and executed; the struct field order matches the
// canonical module invocation order (tcp, http, ssl), so serialized
// key order equals invocation order.
type ScanReport struct {
	TCP  *PortScanResult `json:"tcp,omitempty"`
	HTTP *HTTPScanResult `json:"http,omitempty"`
	SSL  *CertScanResult `json:"ssl,omitempty"`
}

// Modules returns the names of the modules present in the report, in
// canonical order.
func (r *ScanReport) Modules() []string {
	names := make([]string, 0, 3)
	if r.TCP != nil {
		names = append(names, "tcp")
	}
	if r.HTTP != nil {
		names = append(names, "http")
	}
	if r.SSL != nil {
		names = append(names, "ssl")
	}
	return names
}
