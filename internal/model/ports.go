package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Port number bounds for TCP/UDP.
const (
	MinPort = 1
	MaxPort = 65535
)

// ErrInvalidPortRange is returned when a port range specification is
// malformed or out of bounds. Callers can use errors.Is to detect
// range problems regardless of the specific cause.
var ErrInvalidPortRange = errors.New("invalid port range")

// PortRange is an inclusive low-high port bound.
// It is validated at construction and immutable afterwards.
type PortRange struct {
	// Start is the first port in the range.
	Start int

	// End is the last port in the range (inclusive).
	End int
}

// NewPortRange creates a validated PortRange.
func NewPortRange(start, end int) (PortRange, error) {
	r := PortRange{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return PortRange{}, err
	}
	return r, nil
}

// ParsePortRange parses a "start-end" specification such as "20-80".
func ParsePortRange(spec string) (PortRange, error) {
	low, high, ok := strings.Cut(spec, "-")
	if !ok {
		return PortRange{}, fmt.Errorf("%w: %q is not in start-end form (e.g. 20-80)", ErrInvalidPortRange, spec)
	}

	start, err := strconv.Atoi(strings.TrimSpace(low))
	if err != nil {
		return PortRange{}, fmt.Errorf("%w: start %q is not a number", ErrInvalidPortRange, low)
	}
	end, err := strconv.Atoi(strings.TrimSpace(high))
	if err != nil {
		return PortRange{}, fmt.Errorf("%w: end %q is not a number", ErrInvalidPortRange, high)
	}

	return NewPortRange(start, end)
}

// Validate reports whether the range is within [MinPort, MaxPort] with
// Start <= End.
func (r PortRange) Validate() error {
	if !ValidPort(r.Start) || !ValidPort(r.End) {
		return fmt.Errorf("%w: ports must be between %d and %d, got %d-%d",
			ErrInvalidPortRange, MinPort, MaxPort, r.Start, r.End)
	}
	if r.Start > r.End {
		return fmt.Errorf("%w: start port %d is greater than end port %d",
			ErrInvalidPortRange, r.Start, r.End)
	}
	return nil
}

// Count returns the number of ports covered by the range.
func (r PortRange) Count() int {
	return r.End - r.Start + 1
}

// Ports expands the range into an ascending port list.
func (r PortRange) Ports() []int {
	ports := make([]int, 0, r.Count())
	for p := r.Start; p <= r.End; p++ {
		ports = append(ports, p)
	}
	return ports
}

// String returns the range in "start-end" form.
func (r PortRange) String() string {
	return strconv.Itoa(r.Start) + "-" + strconv.Itoa(r.End)
}

// ValidPort reports whether p is a usable TCP port number.
func ValidPort(p int) bool {
	return p >= MinPort && p <= MaxPort
}
