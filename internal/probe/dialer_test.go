package probe

import (
	"net"
	"testing"
	"time"
)

// TestNewDialer checks dialer construction for both transport modes.
func TestNewDialer(t *testing.T) {
	t.Parallel()

	t.Run("direct dialer without proxy", func(t *testing.T) {
		t.Parallel()

		d, err := NewDialer(time.Second, "")
		if err != nil {
			t.Fatalf("NewDialer returned error: %v", err)
		}
		if _, ok := d.(*net.Dialer); !ok {
			t.Errorf("expected *net.Dialer, got %T", d)
		}
	})

	t.Run("SOCKS5 dialer with proxy address", func(t *testing.T) {
		t.Parallel()

		d, err := NewDialer(time.Second, "127.0.0.1:9050")
		if err != nil {
			t.Fatalf("NewDialer returned error: %v", err)
		}
		if _, ok := d.(*net.Dialer); ok {
			t.Error("expected a proxied dialer, got a plain net.Dialer")
		}
	})
}
