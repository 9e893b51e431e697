package engine

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/sentinelscan/sentinelscan/internal/model"
	"github.com/sentinelscan/sentinelscan/internal/pacing"
	"github.com/sentinelscan/sentinelscan/internal/probe"
)

// TestOrchestratorRun exercises module selection and the report shape.
func TestOrchestratorRun(t *testing.T) {
	t.Parallel()

	t.Run("default selection runs only the tcp module", func(t *testing.T) {
		t.Parallel()

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to open listener: %v", err)
		}
		t.Cleanup(func() { _ = ln.Close() })
		port := ln.Addr().(*net.TCPAddr).Port

		ports, err := model.NewPortRange(port, port)
		if err != nil {
			t.Fatalf("failed to build port range: %v", err)
		}

		report, err := New().Run(context.Background(), Request{
			Host:    "127.0.0.1",
			Ports:   ports,
			Timeout: time.Second,
			Pacing:  pacing.Options{Preset: pacing.PresetNone},
		})
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}

		if report.TCP == nil {
			t.Fatal("expected tcp results")
		}
		if report.HTTP != nil || report.SSL != nil {
			t.Error("expected only the tcp module to run")
		}
		if len(report.TCP.OpenPorts) != 1 || report.TCP.OpenPorts[0] != port {
			t.Errorf("expected open ports [%d], got %v", port, report.TCP.OpenPorts)
		}
	})

	t.Run("ssl-only selection populates only the ssl key", func(t *testing.T) {
		t.Parallel()

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to open listener: %v", err)
		}
		port := ln.Addr().(*net.TCPAddr).Port
		_ = ln.Close() // free the port so the probe fails fast

		ports, err := model.NewPortRange(1, 10)
		if err != nil {
			t.Fatalf("failed to build port range: %v", err)
		}

		report, err := New().Run(context.Background(), Request{
			Host:    "127.0.0.1",
			Ports:   ports,
			Modules: []string{ModuleSSL},
			Timeout: time.Second,
			TLSPort: port,
			Pacing:  pacing.Options{Preset: pacing.PresetNone},
		})
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}

		if report.SSL == nil {
			t.Fatal("expected ssl result")
		}
		if report.SSL.OK {
			t.Error("expected the probe against a closed port to fail")
		}
		if report.TCP != nil || report.HTTP != nil {
			t.Error("expected only the ssl module to run")
		}
	})

	t.Run("unknown module is rejected before any probing", func(t *testing.T) {
		t.Parallel()

		ports, err := model.NewPortRange(1, 10)
		if err != nil {
			t.Fatalf("failed to build port range: %v", err)
		}

		_, err = New().Run(context.Background(), Request{
			Host:    "127.0.0.1",
			Ports:   ports,
			Modules: []string{"tcp", "icmp"},
			Timeout: time.Second,
		})
		if !errors.Is(err, ErrUnknownModule) {
			t.Errorf("expected ErrUnknownModule, got %v", err)
		}
	})

	t.Run("invalid port range is rejected", func(t *testing.T) {
		t.Parallel()

		_, err := New().Run(context.Background(), Request{
			Host:  "127.0.0.1",
			Ports: model.PortRange{Start: 100, End: 50},
		})
		if !errors.Is(err, model.ErrInvalidPortRange) {
			t.Errorf("expected ErrInvalidPortRange, got %v", err)
		}
	})

	t.Run("unknown preset is rejected", func(t *testing.T) {
		t.Parallel()

		ports, err := model.NewPortRange(1, 10)
		if err != nil {
			t.Fatalf("failed to build port range: %v", err)
		}

		_, err = New().Run(context.Background(), Request{
			Host:   "127.0.0.1",
			Ports:  ports,
			Pacing: pacing.Options{Preset: "warp"},
		})
		if !errors.Is(err, pacing.ErrUnknownPreset) {
			t.Errorf("expected ErrUnknownPreset, got %v", err)
		}
	})

	t.Run("unresolvable host aborts the run", func(t *testing.T) {
		t.Parallel()

		ports, err := model.NewPortRange(80, 80)
		if err != nil {
			t.Fatalf("failed to build port range: %v", err)
		}

		_, err = New().Run(context.Background(), Request{
			Host:    "sentinelscan-no-such-host.invalid",
			Ports:   ports,
			Timeout: time.Second,
			Pacing:  pacing.Options{Preset: pacing.PresetNone},
		})
		var hostErr *probe.HostResolutionError
		if !errors.As(err, &hostErr) {
			t.Errorf("expected HostResolutionError, got %v", err)
		}
	})

	t.Run("cancelled context returns an empty partial report", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		ports, err := model.NewPortRange(1, 10)
		if err != nil {
			t.Fatalf("failed to build port range: %v", err)
		}

		report, err := New().Run(ctx, Request{
			Host:    "127.0.0.1",
			Ports:   ports,
			Modules: []string{ModuleTCP, ModuleHTTP},
			Timeout: time.Second,
		})
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
		if report == nil {
			t.Fatal("expected a report object even when cancelled")
		}
		if len(report.Modules()) != 0 {
			t.Errorf("expected no module results, got %v", report.Modules())
		}
	})
}

// TestNormalizeModules pins the selection semantics.
func TestNormalizeModules(t *testing.T) {
	t.Parallel()

	t.Run("empty selection defaults to tcp", func(t *testing.T) {
		t.Parallel()

		selected, err := normalizeModules(nil)
		if err != nil {
			t.Fatalf("normalizeModules returned error: %v", err)
		}
		if !selected[ModuleTCP] || len(selected) != 1 {
			t.Errorf("expected {tcp}, got %v", selected)
		}
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		t.Parallel()

		selected, err := normalizeModules([]string{"ssl", "ssl", "tcp"})
		if err != nil {
			t.Fatalf("normalizeModules returned error: %v", err)
		}
		if len(selected) != 2 || !selected[ModuleSSL] || !selected[ModuleTCP] {
			t.Errorf("expected {tcp ssl}, got %v", selected)
		}
	})

	t.Run("unknown name fails", func(t *testing.T) {
		t.Parallel()

		if _, err := normalizeModules([]string{"udp"}); !errors.Is(err, ErrUnknownModule) {
			t.Errorf("expected ErrUnknownModule, got %v", err)
		}
	})
}
