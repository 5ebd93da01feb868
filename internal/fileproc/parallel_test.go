package fileproc

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/amartel/scry/pkg/analysis"
)

func writeFiles(t *testing.T, files map[string]string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, 0, len(files))
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		paths = append(paths, path)
	}
	return paths
}

func TestAnalyzeFiles(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		filepath.Join(dir, "a.py"),
		filepath.Join(dir, "b.js"),
		filepath.Join(dir, "c.c"),
	}
	contents := []string{
		"def f():\n    pass\n",
		"function g() { return 1; }\n",
		"int main() {\n    return 0;\n}\n",
	}
	for i, p := range paths {
		if err := os.WriteFile(p, []byte(contents[i]), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}

	var ticks atomic.Int32
	results := AnalyzeFiles(paths, analysis.DefaultThresholds(), func() { ticks.Add(1) }, nil)

	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	// Input order survives parallel execution.
	for i, r := range results {
		if r.Path != paths[i] {
			t.Errorf("results[%d].Path = %q, want %q", i, r.Path, paths[i])
		}
	}
	if results[0].Result.FunctionCount != 1 {
		t.Errorf("a.py FunctionCount = %d, want 1", results[0].Result.FunctionCount)
	}
	if !results[2].Result.Approximate {
		t.Error("c.c should be approximate")
	}
	if got := ticks.Load(); got != 3 {
		t.Errorf("progress ticks = %d, want 3", got)
	}
}

func TestAnalyzeFiles_SkipsFailures(t *testing.T) {
	paths := writeFiles(t, map[string]string{
		"bad.py":     "def broken(:\n",
		"notes.txt":  "not code",
		"missing.py": "",
	})
	// Point one path at a file that does not exist.
	paths = append(paths, filepath.Join(t.TempDir(), "ghost.py"))

	var errs ProcessingErrors
	results := AnalyzeFiles(paths, analysis.DefaultThresholds(), nil, errs.Add)

	for _, r := range results {
		if filepath.Base(r.Path) != "missing.py" {
			t.Errorf("unexpected surviving result: %s", r.Path)
		}
	}
	if !errs.HasErrors() {
		t.Fatal("expected collected errors")
	}
	if len(errs.Errors) != 3 {
		t.Errorf("len(errors) = %d, want 3: %v", len(errs.Errors), errs.Errors)
	}
}

func TestMapFiles_Empty(t *testing.T) {
	got := MapFiles(nil, analysis.DefaultThresholds(), func(*analysis.Engine, string) (int, error) {
		return 0, nil
	}, nil, nil)
	if got != nil {
		t.Errorf("MapFiles(nil) = %v, want nil", got)
	}
}

func TestMapFiles_ConcurrentSafety(t *testing.T) {
	paths := make([]string, 100)
	dir := t.TempDir()
	for i := range paths {
		paths[i] = filepath.Join(dir, "f.py")
	}

	var mu sync.Mutex
	seen := 0
	got := MapFiles(paths, analysis.DefaultThresholds(), func(_ *analysis.Engine, path string) (string, error) {
		mu.Lock()
		seen++
		mu.Unlock()
		return path, nil
	}, nil, nil)

	if len(got) != 100 || seen != 100 {
		t.Errorf("processed %d, returned %d, want 100", seen, len(got))
	}
}

func TestProcessingErrors(t *testing.T) {
	var errs ProcessingErrors
	if errs.HasErrors() {
		t.Error("new collection should be empty")
	}

	errs.Add("a.py", errors.New("boom"))
	if !errs.HasErrors() {
		t.Error("HasErrors = false after Add")
	}
	if errs.Error() != "a.py: boom" {
		t.Errorf("Error() = %q", errs.Error())
	}

	errs.Add("b.py", errors.New("bang"))
	if got := errs.Error(); got == "" {
		t.Error("Error() empty for multiple failures")
	}
}
