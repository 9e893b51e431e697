package probe

import (
	"context"
	"fmt"
	"net"
	"time"

	"golang.org/x/net/proxy"
)

// ContextDialer establishes TCP connections for probes. net.Dialer
// satisfies it directly; tests substitute deterministic fakes.
type ContextDialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// NewDialer builds the dialer used by the TCP and TLS probers. When
// socksAddr is non-empty, connections are established through the
// SOCKS5 proxy at that address; otherwise a plain net.Dialer is used.
//
// Design decision: we accept a generic SOCKS5 address rather than
// anything Tor-specific. Operators scanning through Tor simply point
// this at their local SOCKS port.
func NewDialer(timeout time.Duration, socksAddr string) (ContextDialer, error) {
	base := &net.Dialer{Timeout: timeout}
	if socksAddr == "" {
		return base, nil
	}

	d, err := proxy.SOCKS5("tcp", socksAddr, nil, base)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer for %s: %w", socksAddr, err)
	}

	if cd, ok := d.(proxy.ContextDialer); ok {
		return contextDialerFunc(cd.DialContext), nil
	}
	return &legacyDialer{dialer: d}, nil
}

// contextDialerFunc adapts a function to the ContextDialer interface.
type contextDialerFunc func(ctx context.Context, network, address string) (net.Conn, error)

func (f contextDialerFunc) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	return f(ctx, network, address)
}

// legacyDialer adapts a context-less proxy.Dialer by running the dial
// in a goroutine and abandoning it on cancellation.
type legacyDialer struct {
	dialer proxy.Dialer
}

func (l *legacyDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	type dialResult struct {
		conn net.Conn
		err  error
	}

	resultCh := make(chan dialResult, 1)
	go func() {
		conn, err := l.dialer.Dial(network, address)
		resultCh <- dialResult{conn, err}
	}()

	select {
	case <-ctx.Done():
		go func() {
			// Close the late connection to avoid leaking it.
			if r := <-resultCh; r.conn != nil {
				_ = r.conn.Close()
			}
		}()
		return nil, ctx.Err()
	case r := <-resultCh:
		return r.conn, r.err
	}
}
