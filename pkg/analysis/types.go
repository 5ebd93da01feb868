package analysis

import (
	"github.com/amartel/scry/pkg/parser"
)

// Request is the immutable input to one analysis run.
type Request struct {
	Source   []byte
	Language parser.Language
}

// Severity classifies a suggestion.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// String returns the string representation.
func (s Severity) String() string {
	return string(s)
}

// Function describes one declared function or method.
type Function struct {
	Name       string `json:"name" toon:"name"`
	StartLine  int    `json:"start_line" toon:"start_line"`
	EndLine    int    `json:"end_line" toon:"end_line"`
	Complexity int    `json:"cyclomatic_complexity" toon:"cyclomatic_complexity"`
	SizeLines  int    `json:"size_lines" toon:"size_lines"`
}

// Loop records a loop statement and its nesting depth. Depth counts the
// enclosing loop constructs including the loop itself.
type Loop struct {
	Line  int `json:"line" toon:"line"`
	Depth int `json:"nesting_depth" toon:"nesting_depth"`
}

// TimeComplexity is a qualitative per-function estimate derived from the
// maximum loop nesting depth inside the function body. It reflects syntactic
// nesting only, not loop bounds or early exits.
type TimeComplexity struct {
	Function string `json:"function_name" toon:"function_name"`
	Label    string `json:"label" toon:"label"`
	Line     int    `json:"line" toon:"line"`
}

// Suggestion is one advisory produced by the rule engine.
type Suggestion struct {
	Severity Severity `json:"severity" toon:"severity"`
	Text     string   `json:"text" toon:"text"`
}

// LargestFunction names the biggest function by size, ("None", 0) when the
// source declares no functions.
type LargestFunction struct {
	Name      string `json:"name" toon:"name"`
	SizeLines int    `json:"size_lines" toon:"size_lines"`
}

// Result aggregates every metric computed for one request. All fields are
// fully populated even for empty input; language-specific metrics that do
// not apply are nil.
type Result struct {
	Language parser.Language `json:"language" toon:"language"`

	TotalLines   int     `json:"total_lines" toon:"total_lines"`
	CommentLines int     `json:"comment_lines" toon:"comment_lines"`
	CommentRatio float64 `json:"comment_ratio" toon:"comment_ratio"`

	Functions       []Function      `json:"functions" toon:"functions"`
	FunctionCount   int             `json:"function_count" toon:"function_count"`
	LargestFunction LargestFunction `json:"largest_function" toon:"largest_function"`

	AverageComplexity    float64  `json:"average_complexity" toon:"average_complexity"`
	EfficiencyGrade      string   `json:"efficiency_grade" toon:"efficiency_grade"`
	MaintainabilityIndex *float64 `json:"maintainability_index,omitempty" toon:"maintainability_index,omitempty"`

	Loops       []Loop `json:"loops" toon:"loops"`
	LoopCount   int    `json:"loop_count" toon:"loop_count"`
	NestedLoops int    `json:"nested_loops" toon:"nested_loops"`

	TimeComplexity []TimeComplexity `json:"time_complexity" toon:"time_complexity"`

	UnusedVariables []string `json:"unused_variables" toon:"unused_variables"`
	UnusedFunctions []string `json:"unused_functions" toon:"unused_functions"`

	// Dependencies maps each declared function to its callees in call-site
	// order, duplicates and self-calls preserved. FunctionOrder carries the
	// declaration order of the keys for deterministic rendering.
	Dependencies  map[string][]string `json:"dependencies" toon:"dependencies"`
	FunctionOrder []string            `json:"-" toon:"-"`

	Suggestions []Suggestion `json:"suggestions" toon:"suggestions"`

	// Approximate is set by the lexical C/C++ path, which degrades to zero
	// matches on exotic syntax instead of failing.
	Approximate bool `json:"approximate" toon:"approximate"`
}

// Thresholds drives the suggestion rules.
type Thresholds struct {
	Cyclomatic      int
	FunctionSize    int
	CommentRatio    float64
	Maintainability float64
}

// DefaultThresholds returns the stock rule thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Cyclomatic:      10,
		FunctionSize:    50,
		CommentRatio:    5.0,
		Maintainability: 60.0,
	}
}
