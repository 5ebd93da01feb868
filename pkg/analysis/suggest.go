package analysis

import (
	"fmt"
	"strings"
)

// suggest derives recommendations from the finished result. Ordering is
// stable: approximation notice, structure, documentation, maintainability,
// dead code, then per-function findings in source order.
func suggest(res *Result, th Thresholds) []Suggestion {
	var out []Suggestion

	add := func(sev Severity, format string, args ...any) {
		out = append(out, Suggestion{Severity: sev, Text: fmt.Sprintf(format, args...)})
	}

	if res.Approximate {
		add(SeverityInfo, "metrics for %s are approximate: results come from lexical matching, not a full parse", res.Language)
	}

	if res.NestedLoops > 0 {
		add(SeverityWarn, "found %d nested loop(s); consider flattening or extracting inner loops into helper functions", res.NestedLoops)
	}

	if res.TotalLines > 0 && res.CommentRatio < th.CommentRatio {
		add(SeverityWarn, "comment ratio is %.2f%% (below %.1f%%); add comments explaining intent", res.CommentRatio, th.CommentRatio)
	}

	if res.MaintainabilityIndex != nil && *res.MaintainabilityIndex < th.Maintainability {
		add(SeverityError, "maintainability index is %.2f (below %.1f); reduce function size and complexity", *res.MaintainabilityIndex, th.Maintainability)
	}

	if len(res.UnusedVariables) > 0 {
		add(SeverityWarn, "unused variable(s): %s; remove them or use the values", strings.Join(res.UnusedVariables, ", "))
	}

	if len(res.UnusedFunctions) > 0 {
		add(SeverityWarn, "unused function(s): %s; remove them if they are not entry points", strings.Join(res.UnusedFunctions, ", "))
	}

	for _, fn := range res.Functions {
		if fn.SizeLines > th.FunctionSize {
			add(SeverityWarn, "function %q spans %d lines (over %d); split it into smaller functions", fn.Name, fn.SizeLines, th.FunctionSize)
		}
		if fn.Complexity > th.Cyclomatic {
			add(SeverityError, "function %q has cyclomatic complexity %d (over %d); simplify its branching", fn.Name, fn.Complexity, th.Cyclomatic)
		}
	}

	return out
}
