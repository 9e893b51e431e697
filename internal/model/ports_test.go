package model

import (
	"errors"
	"testing"
)

// TestParsePortRange covers the accepted spec form and the malformed
// inputs operators actually type.
func TestParsePortRange(t *testing.T) {
	t.Parallel()

	t.Run("valid specs", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			spec  string
			start int
			end   int
		}{
			{"20-80", 20, 80},
			{"1-65535", 1, 65535},
			{"443-443", 443, 443},
			{" 1 - 1024 ", 1, 1024},
		}
		for _, tt := range tests {
			r, err := ParsePortRange(tt.spec)
			if err != nil {
				t.Errorf("ParsePortRange(%q) returned error: %v", tt.spec, err)
				continue
			}
			if r.Start != tt.start || r.End != tt.end {
				t.Errorf("ParsePortRange(%q) = %d-%d, want %d-%d", tt.spec, r.Start, r.End, tt.start, tt.end)
			}
		}
	})

	t.Run("invalid specs return ErrInvalidPortRange", func(t *testing.T) {
		t.Parallel()

		for _, spec := range []string{"", "80", "abc-80", "80-xyz", "0-80", "80-70000", "100-50"} {
			if _, err := ParsePortRange(spec); !errors.Is(err, ErrInvalidPortRange) {
				t.Errorf("ParsePortRange(%q) = %v, want ErrInvalidPortRange", spec, err)
			}
		}
	})
}

// TestPortRangeValidate checks the bounds and ordering rules.
func TestPortRangeValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		r       PortRange
		wantErr bool
	}{
		{"full range is valid", PortRange{Start: 1, End: 65535}, false},
		{"single port is valid", PortRange{Start: 443, End: 443}, false},
		{"zero start is invalid", PortRange{Start: 0, End: 80}, true},
		{"end above max is invalid", PortRange{Start: 1, End: 65536}, true},
		{"inverted range is invalid", PortRange{Start: 100, End: 50}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.r.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidPortRange) {
				t.Errorf("expected ErrInvalidPortRange, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

// TestPortRangeExpansion checks Count and Ports agree.
func TestPortRangeExpansion(t *testing.T) {
	t.Parallel()

	r := PortRange{Start: 78, End: 82}
	if r.Count() != 5 {
		t.Errorf("expected count 5, got %d", r.Count())
	}

	ports := r.Ports()
	if len(ports) != 5 || ports[0] != 78 || ports[4] != 82 {
		t.Errorf("expected [78..82], got %v", ports)
	}

	if r.String() != "78-82" {
		t.Errorf("expected \"78-82\", got %q", r.String())
	}
}
