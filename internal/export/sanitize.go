package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrPathTraversal is returned when an output path would escape the
// allowed base directory.
var ErrPathTraversal = errors.New("path traversal detected")

// unsafeFilenameChars matches everything outside the conservative
// filename alphabet.
var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9_\-.]`)

// SafeFilename replaces unsafe characters in a filename with
// underscores. Path separators are unsafe by definition, so the result
// never names a subdirectory.
func SafeFilename(name string) string {
	return unsafeFilenameChars.ReplaceAllString(name, "_")
}

// SanitizePath resolves path inside baseDir and guarantees the result
// cannot escape it. Absolute paths are reduced to their final
// component; ".." sequences and null bytes are rejected outright.
func SanitizePath(path, baseDir string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("file path cannot be empty")
	}

	if strings.ContainsRune(path, 0) {
		return "", fmt.Errorf("%w: null byte in path %q", ErrPathTraversal, path)
	}

	for _, segment := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if segment == ".." {
			return "", fmt.Errorf("%w: %q contains a parent-directory segment", ErrPathTraversal, path)
		}
	}

	if filepath.IsAbs(path) {
		path = filepath.Base(path)
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}

	full := filepath.Clean(filepath.Join(absBase, path))

	rel, err := filepath.Rel(absBase, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %q resolves outside %q", ErrPathTraversal, path, absBase)
	}

	return full, nil
}
