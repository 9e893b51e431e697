package probe

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/sentinelscan/sentinelscan/internal/model"
	"github.com/sentinelscan/sentinelscan/internal/pacing"
)

// serverHostPort extracts the host and port of an httptest server.
func serverHostPort(t *testing.T, server *httptest.Server) (string, int) {
	t.Helper()

	host, portStr, err := net.SplitHostPort(strings.TrimPrefix(server.URL, "http://"))
	if err != nil {
		t.Fatalf("failed to parse server URL %q: %v", server.URL, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("failed to parse server port %q: %v", portStr, err)
	}
	return host, port
}

// TestHTTPProberScan exercises the HTTP probe against local test
// servers.
func TestHTTPProberScan(t *testing.T) {
	t.Parallel()

	t.Run("successful response is open with identified server", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Server", "nginx/1.18.0")
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		host, port := serverHostPort(t, server)
		prober := NewHTTPProber(pacing.New(0, false))

		result := prober.Scan(context.Background(), host, []int{port})
		if len(result.OpenPorts) != 1 || result.OpenPorts[0] != port {
			t.Fatalf("expected open ports [%d], got %v", port, result.OpenPorts)
		}

		rec := result.ScanResults[0]
		if rec.StatusCode != http.StatusOK {
			t.Errorf("expected status code 200, got %d", rec.StatusCode)
		}
		if rec.Server != "Nginx" {
			t.Errorf("expected server Nginx, got %q", rec.Server)
		}
		if rec.ContentType != "text/html" {
			t.Errorf("expected content type text/html, got %q", rec.ContentType)
		}
		if !strings.HasPrefix(rec.URL, "http://") {
			t.Errorf("expected probe URL, got %q", rec.URL)
		}
	})

	t.Run("client error response is closed but keeps the status code", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		host, port := serverHostPort(t, server)
		prober := NewHTTPProber(pacing.New(0, false))

		result := prober.Scan(context.Background(), host, []int{port})
		if len(result.OpenPorts) != 0 {
			t.Errorf("expected no open ports, got %v", result.OpenPorts)
		}

		rec := result.ScanResults[0]
		if rec.Status != model.StatusClosed {
			t.Errorf("expected status closed, got %q", rec.Status)
		}
		if rec.StatusCode != http.StatusNotFound {
			t.Errorf("expected status code 404, got %d", rec.StatusCode)
		}
	})

	t.Run("missing headers fall back to Unknown", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header()["Content-Type"] = nil // suppress auto-detection
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		host, port := serverHostPort(t, server)
		prober := NewHTTPProber(pacing.New(0, false))

		rec := prober.Scan(context.Background(), host, []int{port}).ScanResults[0]
		if rec.Server != "Unknown" {
			t.Errorf("expected server Unknown, got %q", rec.Server)
		}
		if rec.ContentType != "Unknown" {
			t.Errorf("expected content type Unknown, got %q", rec.ContentType)
		}
	})

	t.Run("transport failure is closed with no status code", func(t *testing.T) {
		t.Parallel()

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to open listener: %v", err)
		}
		port := ln.Addr().(*net.TCPAddr).Port
		_ = ln.Close() // free the port so the connect is refused

		prober := NewHTTPProber(pacing.New(0, false))

		rec := prober.Scan(context.Background(), "127.0.0.1", []int{port}).ScanResults[0]
		if rec.Status != model.StatusClosed {
			t.Errorf("expected status closed, got %q", rec.Status)
		}
		if rec.StatusCode != 0 {
			t.Errorf("expected no status code, got %d", rec.StatusCode)
		}
		if rec.Server != "N/A" {
			t.Errorf("expected server N/A, got %q", rec.Server)
		}
		if rec.Error == "" {
			t.Error("expected an error message on transport failure")
		}
	})

	t.Run("cancelled context returns partial results", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		prober := NewHTTPProber(pacing.New(0, false))
		result := prober.Scan(ctx, "127.0.0.1", []int{80, 81, 82})
		if len(result.ScanResults) != 0 {
			t.Errorf("expected no records after immediate cancel, got %d", len(result.ScanResults))
		}
	})
}

// TestIdentifyServerFamily pins the Server header classification table.
func TestIdentifyServerFamily(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header string
		want   string
	}{
		{"", "Unknown"},
		{"Apache/2.4.41 (Ubuntu)", "Apache"},
		{"nginx/1.18.0", "Nginx"},
		{"NGINX", "Nginx"},
		{"Microsoft-IIS/10.0", "Microsoft IIS"},
		{"lighttpd/1.4.55", "Lighttpd"},
		{"gunicorn/20.1.0", "Gunicorn"},
		{"Caddy", "Caddy"},
		{"CustomThing/2.0", "Customthing"},
	}

	for _, tt := range tests {
		t.Run("header "+tt.header, func(t *testing.T) {
			t.Parallel()

			if got := IdentifyServerFamily(tt.header); got != tt.want {
				t.Errorf("IdentifyServerFamily(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}
