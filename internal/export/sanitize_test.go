package export

import (
	"errors"
	"path/filepath"
	"testing"
)

// TestSafeFilename pins the filename character replacement.
func TestSafeFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"scan_2026-03-01.json", "scan_2026-03-01.json"},
		{"my scan!.json", "my_scan_.json"},
		{"../../etc/passwd", ".._.._etc_passwd"},
		{"host:443.csv", "host_443.csv"},
	}

	for _, tt := range tests {
		if got := SafeFilename(tt.in); got != tt.want {
			t.Errorf("SafeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestSanitizePath verifies base directory confinement.
func TestSanitizePath(t *testing.T) {
	t.Parallel()

	base := t.TempDir()

	t.Run("plain filename resolves inside the base", func(t *testing.T) {
		t.Parallel()

		got, err := SanitizePath("scan.json", base)
		if err != nil {
			t.Fatalf("SanitizePath returned error: %v", err)
		}
		if got != filepath.Join(base, "scan.json") {
			t.Errorf("unexpected path %q", got)
		}
	})

	t.Run("parent-directory segments are rejected", func(t *testing.T) {
		t.Parallel()

		for _, path := range []string{"../escape.json", "a/../../escape.json", "..\\escape.json"} {
			if _, err := SanitizePath(path, base); !errors.Is(err, ErrPathTraversal) {
				t.Errorf("SanitizePath(%q) = %v, want ErrPathTraversal", path, err)
			}
		}
	})

	t.Run("null bytes are rejected", func(t *testing.T) {
		t.Parallel()

		if _, err := SanitizePath("scan\x00.json", base); !errors.Is(err, ErrPathTraversal) {
			t.Errorf("expected ErrPathTraversal, got %v", err)
		}
	})

	t.Run("absolute paths are reduced to their final component", func(t *testing.T) {
		t.Parallel()

		got, err := SanitizePath("/etc/passwd", base)
		if err != nil {
			t.Fatalf("SanitizePath returned error: %v", err)
		}
		if got != filepath.Join(base, "passwd") {
			t.Errorf("unexpected path %q", got)
		}
	})

	t.Run("empty path is rejected", func(t *testing.T) {
		t.Parallel()

		if _, err := SanitizePath("  ", base); err == nil {
			t.Error("expected an error for an empty path")
		}
	})
}
