package main

import (
	"bytes"
	"strings"
	"testing"
)

// TestNewRootCmd tests the root command creation.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "sentinelscan" {
			t.Errorf("expected use 'sentinelscan', got %q", cmd.Use)
		}
	})

	t.Run("has descriptions", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" || cmd.Long == "" {
			t.Error("expected non-empty descriptions")
		}
	})

	t.Run("has version", func(t *testing.T) {
		t.Parallel()
		if cmd.Version == "" {
			t.Error("expected non-empty version")
		}
	})

	t.Run("has verbose flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.PersistentFlags().Lookup("verbose")
		if flag == nil {
			t.Fatal("expected verbose flag")
		}
		if flag.Shorthand != "v" {
			t.Errorf("expected shorthand 'v', got %q", flag.Shorthand)
		}
	})

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()

		hasScan := false
		hasExports := false
		hasVersion := false
		for _, sub := range cmd.Commands() {
			switch sub.Use {
			case "scan <host>":
				hasScan = true
			case "exports":
				hasExports = true
			case "version":
				hasVersion = true
			}
		}
		if !hasScan {
			t.Error("expected scan subcommand")
		}
		if !hasExports {
			t.Error("expected exports subcommand")
		}
		if !hasVersion {
			t.Error("expected version subcommand")
		}
	})
}

// TestVersionCmd tests the version command output.
func TestVersionCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "sentinelscan version") {
		t.Errorf("expected version line, got %q", got)
	}
	if !strings.Contains(got, "commit:") || !strings.Contains(got, "built:") {
		t.Errorf("expected commit and build date, got %q", got)
	}
}
