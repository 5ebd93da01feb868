package analysis

import (
	"strings"

	"github.com/amartel/scry/pkg/parser"
)

// countLines computes total lines, comment lines, and the comment ratio as a
// percentage rounded to two decimals. Empty input yields all zeros.
func countLines(source []byte, lang parser.Language) (total, comment int, ratio float64) {
	lines := splitLines(source)
	total = len(lines)
	if total == 0 {
		return 0, 0, 0
	}

	switch lang {
	case parser.LangPython:
		for _, line := range lines {
			if strings.HasPrefix(strings.TrimSpace(line), "#") {
				comment++
			}
		}
	default:
		inBlock := false
		for _, line := range lines {
			t := strings.TrimSpace(line)
			switch {
			case inBlock:
				comment++
				if strings.Contains(t, "*/") {
					inBlock = false
				}
			case strings.HasPrefix(t, "//"):
				comment++
			case strings.HasPrefix(t, "/*"):
				comment++
				if !strings.Contains(t[2:], "*/") {
					inBlock = true
				}
			}
		}
	}

	ratio = round2(float64(comment) / float64(total) * 100)
	return total, comment, ratio
}

// splitLines splits source into lines without counting a trailing newline as
// an extra line.
func splitLines(source []byte) []string {
	if len(source) == 0 {
		return nil
	}
	lines := strings.Split(string(source), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
