package main

import (
	"fmt"
	"strings"

	"github.com/amartel/scry/internal/output"
	"github.com/amartel/scry/pkg/analysis"
	"github.com/fatih/color"
)

// Critical function cutoffs. These flag functions worth immediate attention
// and are deliberately tighter than the configurable suggestion thresholds.
const (
	criticalComplexity = 10
	criticalSizeLines  = 20
)

// buildReport assembles the text report for one analyzed file. Color is
// baked into section content, so colored must match the formatter.
func buildReport(path string, res *analysis.Result, colored bool) *output.Report {
	return &output.Report{
		Title: path,
		Sections: []output.Renderable{
			&output.Section{Content: fmt.Sprintf("Language Detected: %s", res.Language)},
			&output.Section{Title: "Critical Functions", Content: renderCritical(res, colored)},
			&output.Section{Title: "Function Complexity", Content: renderBars(res, colored)},
			&output.Section{Title: "Time Complexity Estimation", Content: renderTimeComplexity(res)},
			&output.Section{Title: "Analysis Report", Content: renderSummary(res, colored)},
			&output.Section{Title: "Dead Code Analysis", Content: renderDeadCode(res, colored)},
			&output.Section{Title: "Suggestions", Content: renderSuggestions(res, colored)},
		},
		Data: res,
	}
}

func renderCritical(res *analysis.Result, colored bool) string {
	var lines []string
	for _, fn := range res.Functions {
		if fn.Complexity > criticalComplexity || fn.SizeLines > criticalSizeLines {
			line := fmt.Sprintf(" - %s: complexity=%d, lines=%d", fn.Name, fn.Complexity, fn.SizeLines)
			if colored {
				line = color.RedString(line)
			}
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return paint(colored, color.FgGreen, "No critical functions detected!")
	}
	return strings.Join(lines, "\n")
}

func renderBars(res *analysis.Result, colored bool) string {
	if len(res.Functions) == 0 {
		return "No functions found."
	}
	lines := make([]string, 0, len(res.Functions))
	for _, fn := range res.Functions {
		width := fn.Complexity
		if width <= 0 {
			width = 2
		}
		bar := paint(colored, barColor(fn.Complexity), strings.Repeat("█", width))
		lines = append(lines, fmt.Sprintf("%-20s | %s %d", fn.Name, bar, fn.Complexity))
	}
	return strings.Join(lines, "\n")
}

func barColor(complexity int) color.Attribute {
	switch {
	case complexity <= 5:
		return color.FgGreen
	case complexity <= 10:
		return color.FgYellow
	default:
		return color.FgRed
	}
}

func renderTimeComplexity(res *analysis.Result) string {
	if len(res.TimeComplexity) == 0 {
		return "No functions found."
	}
	lines := make([]string, 0, len(res.TimeComplexity))
	for _, tc := range res.TimeComplexity {
		lines = append(lines, fmt.Sprintf(" - %s: %s", tc.Function, tc.Label))
	}
	return strings.Join(lines, "\n")
}

func renderSummary(res *analysis.Result, colored bool) string {
	var lines []string
	if res.MaintainabilityIndex != nil {
		mi := *res.MaintainabilityIndex
		miText := paint(colored, miColor(mi), fmt.Sprintf("%g", mi))
		lines = append(lines, fmt.Sprintf("Maintainability Index: %s", miText))
		lines = append(lines, fmt.Sprintf("Comment Lines: %d (%g%%)", res.CommentLines, res.CommentRatio))
	}
	lines = append(lines,
		fmt.Sprintf("Average Complexity: %g", res.AverageComplexity),
		fmt.Sprintf("Total Lines: %d", res.TotalLines),
		fmt.Sprintf("Number of Functions: %d", res.FunctionCount),
		fmt.Sprintf("Largest Function: %s (%d lines)", res.LargestFunction.Name, res.LargestFunction.SizeLines),
		fmt.Sprintf("Efficiency Grade: %s", res.EfficiencyGrade),
		fmt.Sprintf("Loops Detected: %d", res.LoopCount),
		fmt.Sprintf("Nested Loops: %d", res.NestedLoops),
	)
	return strings.Join(lines, "\n")
}

func miColor(mi float64) color.Attribute {
	switch {
	case mi >= 80:
		return color.FgGreen
	case mi >= 60:
		return color.FgYellow
	default:
		return color.FgRed
	}
}

func renderDeadCode(res *analysis.Result, colored bool) string {
	var lines []string
	if len(res.UnusedVariables) > 0 {
		lines = append(lines, paint(colored, color.FgYellow,
			fmt.Sprintf("Unused variables: %s", strings.Join(res.UnusedVariables, ", "))))
	} else {
		lines = append(lines, paint(colored, color.FgGreen, "No unused variables found!"))
	}
	if len(res.UnusedFunctions) > 0 {
		lines = append(lines, paint(colored, color.FgYellow,
			fmt.Sprintf("Unused functions: %s", strings.Join(res.UnusedFunctions, ", "))))
	} else {
		lines = append(lines, paint(colored, color.FgGreen, "No unused functions found!"))
	}
	return strings.Join(lines, "\n")
}

func renderSuggestions(res *analysis.Result, colored bool) string {
	if len(res.Suggestions) == 0 {
		return paint(colored, color.FgGreen, "No suggestions!")
	}
	lines := make([]string, 0, len(res.Suggestions))
	for _, s := range res.Suggestions {
		line := fmt.Sprintf(" - [%s] %s", s.Severity, s.Text)
		if colored {
			line = output.SeverityColor(s.Severity.String(), line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func paint(colored bool, attr color.Attribute, s string) string {
	if !colored {
		return s
	}
	return color.New(attr).Sprint(s)
}
