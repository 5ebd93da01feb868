package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amartel/scry/internal/scanner"
	"github.com/amartel/scry/pkg/config"
)

// TestCollectFiles verifies directory expansion through the scanner and
// direct file paths passing through untouched.
func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	pyFile := filepath.Join(dir, "app.py")
	txtFile := filepath.Join(dir, "notes.txt")
	for _, f := range []string{pyFile, txtFile} {
		if err := os.WriteFile(f, []byte("x = 1\n"), 0o644); err != nil {
			t.Fatalf("WriteFile(%s) error = %v", f, err)
		}
	}

	scan := scanner.New(config.DefaultConfig())

	files, err := collectFiles([]string{dir}, scan)
	if err != nil {
		t.Fatalf("collectFiles() error = %v", err)
	}
	if len(files) != 1 || !strings.HasSuffix(files[0], "app.py") {
		t.Errorf("collectFiles(dir) = %v, want just app.py", files)
	}

	files, err = collectFiles([]string{txtFile}, scan)
	if err != nil {
		t.Fatalf("collectFiles() error = %v", err)
	}
	if len(files) != 1 || !strings.HasSuffix(files[0], "notes.txt") {
		t.Errorf("collectFiles(file) = %v, want the explicit path kept", files)
	}
}
