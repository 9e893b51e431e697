package config

import (
	"net"
	"path/filepath"
	"regexp"
	"time"

	"github.com/adrg/xdg"

	"github.com/sentinelscan/sentinelscan/internal/model"
	"github.com/sentinelscan/sentinelscan/internal/pacing"
)

// Default configuration values. These mirror the probe defaults an
// operator gets with no flags at all: a conservative connect timeout
// over the first 1024 ports with moderate pacing.
const (
	// DefaultTimeout is the per-request network timeout.
	DefaultTimeout = 500 * time.Millisecond

	// DefaultPortSpec is the port range scanned when none is given.
	DefaultPortSpec = "1-1024"

	// DefaultTLSPort is the port the ssl module probes by default.
	DefaultTLSPort = 443

	// DefaultWorkers keeps the baseline sequential probe behavior.
	DefaultWorkers = 1

	// AppName is the application name used for XDG directory paths.
	AppName = "sentinelscan"
)

// Timeout validation bounds. Timeouts below MinTimeout miss slow
// services; above MaxTimeout a range scan becomes unusable.
const (
	MinTimeout = 100 * time.Millisecond
	MaxTimeout = 10 * time.Second
)

// hostPattern is a pragmatic domain-name check (labels of alphanumerics
// and hyphens, not starting or ending with a hyphen). IP literals are
// validated separately with net.ParseIP.
var hostPattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// ipLike matches digits-and-dots strings. Anything that looks like an
// IPv4 literal must actually parse as one; "999.1.2.3" is rejected
// instead of being accepted as a domain name.
var ipLike = regexp.MustCompile(`^[\d.]+$`)

// Config holds all options for one scan invocation.
//
// Design decision: We use a single flat struct instead of nested
// sub-configs. The number of options is manageable, and nesting would
// add complexity without significant benefit.
type Config struct {
	// Host is the target IP literal or domain name.
	Host string

	// Ports is the validated port range to scan.
	Ports model.PortRange

	// Modules selects the probers to run (subset of tcp, http, ssl).
	// Empty means tcp only.
	Modules []string

	// Timeout bounds each individual network operation.
	Timeout time.Duration

	// TLSVerify enables certificate verification in the ssl module.
	TLSVerify bool

	// TLSPort is the single port the ssl module probes.
	TLSPort int

	// Preset is the pacing preset name.
	Preset string

	// Delay is an explicit pacing delay override; DelaySet marks it as
	// provided. The override takes precedence over any preset and is
	// exempt from the large-scan safety substitution.
	Delay    time.Duration
	DelaySet bool

	// Workers bounds per-module probe concurrency.
	Workers int

	// SocksProxy optionally routes TCP/TLS probes through a SOCKS5
	// proxy in "host:port" form.
	SocksProxy string

	// JSONReport and MarkdownReport switch the report format printed
	// to stdout. Mutually exclusive; the default is the human-readable
	// text report.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile writes the report to a file path in addition to
	// stdout.
	ReportFile string

	// Export enables a JSON export into the export directory;
	// ExportName optionally overrides the timestamped filename.
	Export     bool
	ExportName string

	// ExportCSV additionally exports TCP results as CSV.
	ExportCSV bool

	// ConfigFilePath is an explicit .sentinelscan file path. Empty
	// means search the current and home directories.
	ConfigFilePath string

	// HostConfigs holds per-host overrides loaded from the config
	// file.
	HostConfigs *File
}

// NewConfig creates a Config with default values.
//
// Design decision: a constructor rather than zero values, because most
// defaults are non-zero and this documents what they are.
func NewConfig() *Config {
	ports, _ := model.ParsePortRange(DefaultPortSpec) //nolint:errcheck // Constant spec cannot fail.
	return &Config{
		Ports:   ports,
		Timeout: DefaultTimeout,
		TLSPort: DefaultTLSPort,
		Preset:  pacing.PresetNormal,
		Workers: DefaultWorkers,
	}
}

// Validate checks the configuration, returning the first problem
// found. It is called once after CLI parsing, before any scanning.
func (c *Config) Validate() error {
	if c.Host == "" {
		return ErrNoHost
	}
	if !ValidHost(c.Host) {
		return ErrInvalidHost
	}

	if err := c.Ports.Validate(); err != nil {
		return err
	}

	if c.Timeout < MinTimeout || c.Timeout > MaxTimeout {
		return ErrInvalidTimeout
	}

	if !model.ValidPort(c.TLSPort) {
		return ErrInvalidTLSPort
	}

	if c.Workers < 1 {
		return ErrInvalidWorkers
	}

	if c.DelaySet && c.Delay < 0 {
		return ErrInvalidDelay
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}

// PacingOptions converts the pacing-related fields into the options
// consumed by the pacing controller.
func (c *Config) PacingOptions() pacing.Options {
	return pacing.Options{
		Preset:   c.Preset,
		Delay:    c.Delay,
		DelaySet: c.DelaySet,
	}
}

// ValidHost reports whether host is an IP literal or a plausible
// domain name (including bare names such as "localhost").
func ValidHost(host string) bool {
	if net.ParseIP(host) != nil {
		return true
	}
	if ipLike.MatchString(host) {
		return false
	}
	return len(host) <= 253 && hostPattern.MatchString(host)
}

// XDGDataDir returns the XDG data directory for sentinelscan,
// following the XDG Base Directory Specification
// (~/.local/share/sentinelscan on Linux).
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// ExportDir returns the directory scan exports are written to.
func ExportDir() string {
	return filepath.Join(XDGDataDir(), "exports")
}
