package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestLoadConfigFile exercises the YAML loader.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads hosts and defaults", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		content := `
defaults:
  preset: stealth
hosts:
  example.com:
    ports: 1-8080
    modules: [tcp, ssl]
    timeout: 2.5
    tlsPort: 8443
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("LoadConfigFile returned error: %v", err)
		}

		if cf.Defaults.Preset != "stealth" {
			t.Errorf("expected defaults preset stealth, got %q", cf.Defaults.Preset)
		}

		hc := cf.Hosts["example.com"]
		if hc.Ports != "1-8080" {
			t.Errorf("expected ports 1-8080, got %q", hc.Ports)
		}
		if len(hc.Modules) != 2 || hc.Modules[0] != "tcp" || hc.Modules[1] != "ssl" {
			t.Errorf("expected modules [tcp ssl], got %v", hc.Modules)
		}
		if hc.Timeout != 2.5 {
			t.Errorf("expected timeout 2.5, got %v", hc.Timeout)
		}
		if hc.TLSPort != 8443 {
			t.Errorf("expected tlsPort 8443, got %d", hc.TLSPort)
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("malformed yaml fails", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte("hosts: [not a map"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected a parse error")
		}
	})

	t.Run("empty file yields usable config", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, nil, 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("LoadConfigFile returned error: %v", err)
		}
		if cf.Hosts == nil {
			t.Error("expected Hosts map to be initialized")
		}
	})
}

// TestFindConfigFile checks the explicit-path branch; the cwd/home
// fallbacks depend on ambient state and are covered indirectly.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit existing path is returned", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("hosts: {}"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("explicit missing path yields empty", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "nope.yaml")); got != "" {
			t.Errorf("expected empty, got %q", got)
		}
	})
}

// TestGetHostConfig checks per-host merging over defaults.
func TestGetHostConfig(t *testing.T) {
	t.Parallel()

	cf := &File{
		Defaults: HostConfig{Preset: "stealth", Timeout: 1.0},
		Hosts: map[string]HostConfig{
			"example.com": {Ports: "1-100", Timeout: 2.0},
		},
	}

	t.Run("host entry overrides defaults field-wise", func(t *testing.T) {
		t.Parallel()

		hc := cf.GetHostConfig("example.com")
		if hc.Ports != "1-100" {
			t.Errorf("expected host ports, got %q", hc.Ports)
		}
		if hc.Timeout != 2.0 {
			t.Errorf("expected host timeout 2.0, got %v", hc.Timeout)
		}
		if hc.Preset != "stealth" {
			t.Errorf("expected inherited preset, got %q", hc.Preset)
		}
	})

	t.Run("unknown host gets the defaults", func(t *testing.T) {
		t.Parallel()

		hc := cf.GetHostConfig("other.com")
		if hc.Preset != "stealth" || hc.Timeout != 1.0 || hc.Ports != "" {
			t.Errorf("expected bare defaults, got %+v", hc)
		}
	})
}
