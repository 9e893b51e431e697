package probe

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// FailureCategory classifies a per-unit network failure.
//
// Design decision: classification is an explicit function over error
// values rather than string matching inside the probers, so the
// input-to-category mapping is testable without live network failures.
type FailureCategory int

// Failure categories for dial errors.
const (
	// FailureTimeout covers deadline exceeded and i/o timeouts. The
	// port is reported closed.
	FailureTimeout FailureCategory = iota

	// FailureRefused covers active connection refusals. The port is
	// reported closed.
	FailureRefused

	// FailureOther covers everything else (network unreachable, reset,
	// ...). The port is reported in the error state with the
	// underlying message.
	FailureOther
)

// ClassifyDialError maps a dial error onto a FailureCategory.
func ClassifyDialError(err error) FailureCategory {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return FailureRefused
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}

	return FailureOther
}

// TrimErrnoSuffix strips the parenthesized errno detail some transport
// errors carry, e.g. "connection failed (os error 111)" becomes
// "connection failed". Messages without the suffix pass through
// unchanged.
func TrimErrnoSuffix(msg string) string {
	if idx := strings.Index(msg, " ("); idx != -1 {
		return msg[:idx]
	}
	return msg
}
