package probe

import "fmt"

// HostResolutionError reports that the target host could not be
// resolved. It is raised by the TCP prober before any per-port probing
// begins, distinguishing a bad target from per-port connection
// failures.
type HostResolutionError struct {
	// Host is the name that failed to resolve.
	Host string

	// Err is the underlying resolver error.
	Err error
}

// Error implements the error interface.
func (e *HostResolutionError) Error() string {
	return fmt.Sprintf("could not resolve hostname %q: %v", e.Host, e.Err)
}

// Unwrap exposes the resolver error for errors.Is/As chains.
func (e *HostResolutionError) Unwrap() error {
	return e.Err
}
