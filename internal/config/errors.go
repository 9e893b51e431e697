package config

import "errors"

// Configuration validation errors.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). Callers can branch with
// errors.Is() while the messages stay human-readable. Configuration
// errors are fatal and abort the run before any network activity.
var (
	// ErrNoHost is returned when no target host is specified.
	ErrNoHost = errors.New("no target specified: provide a host (IP address or domain name)")

	// ErrInvalidHost is returned when the target is neither a valid IP
	// literal nor a plausible domain name.
	ErrInvalidHost = errors.New("invalid host: must be a valid IP address or domain name")

	// ErrInvalidTimeout is returned when the per-request timeout is
	// outside the practical bound [100ms, 10s]. Shorter timeouts miss
	// slow services; longer ones make range scans unusable.
	ErrInvalidTimeout = errors.New("invalid timeout: must be between 0.1 and 10 seconds")

	// ErrInvalidTLSPort is returned when the TLS probe port is out of
	// range.
	ErrInvalidTLSPort = errors.New("invalid tls port: must be between 1 and 65535")

	// ErrInvalidWorkers is returned when the worker count is not
	// positive.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used at
	// a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidDelay is returned when the explicit pacing delay is
	// negative. Zero is valid and means unrestricted.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")
)
