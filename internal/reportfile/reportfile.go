// Package reportfile saves rendered reports to timestamped files.
package reportfile

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

var ansiEscapes = regexp.MustCompile(`\x1B\[[0-?]*[ -/]*[@-~]`)

// Strip removes ANSI escape sequences so saved reports stay readable in
// plain editors.
func Strip(s string) string {
	return ansiEscapes.ReplaceAllString(s, "")
}

// Name returns the report file name for a timestamp.
func Name(at time.Time) string {
	return fmt.Sprintf("analysis_report_%s.txt", at.Format("2006-01-02_15-04-05"))
}

// Save writes the report content into dir under a timestamped name and
// returns the full path. ANSI color codes are stripped.
func Save(dir, content string, at time.Time) (string, error) {
	path := filepath.Join(dir, Name(at))
	if err := os.WriteFile(path, []byte(Strip(content)), 0644); err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}
	return path, nil
}
