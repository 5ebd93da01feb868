// Package analysis implements the multi-language source analysis engine:
// per-language syntax extraction, structural metrics, and refactoring
// suggestions, merged into one Result per request.
package analysis

import (
	"fmt"
	"math"

	"github.com/amartel/scry/pkg/parser"
)

// Engine runs the full analysis pipeline for single requests. An Engine is
// not safe for concurrent use; create one per goroutine.
type Engine struct {
	parser     *parser.Parser
	thresholds Thresholds
}

// Option is a functional option for configuring Engine.
type Option func(*Engine)

// WithThresholds overrides the suggestion rule thresholds.
func WithThresholds(t Thresholds) Option {
	return func(e *Engine) {
		e.thresholds = t
	}
}

// New creates a new analysis engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		parser:     parser.New(),
		thresholds: DefaultThresholds(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Close releases engine resources.
func (e *Engine) Close() {
	e.parser.Close()
}

// AnalyzeTag parses the language tag and analyzes the source. Unknown tags
// yield a *parser.UnsupportedLanguageError.
func (e *Engine) AnalyzeTag(source []byte, tag string) (*Result, error) {
	lang, err := parser.ParseTag(tag)
	if err != nil {
		return nil, err
	}
	return e.Analyze(Request{Source: source, Language: lang})
}

// Analyze runs one full analysis: parse, metrics, suggestions. Grammar-backed
// parse failures return *parser.ParseError with no partial metrics. The
// lexical C/C++ path never fails.
func (e *Engine) Analyze(req Request) (*Result, error) {
	var ext *extraction
	switch req.Language {
	case parser.LangPython, parser.LangJava, parser.LangJavaScript:
		parsed, err := e.parser.Parse(req.Source, req.Language)
		if err != nil {
			return nil, err
		}
		ext = extract(parsed)
	case parser.LangC, parser.LangCPP:
		ext = extractLexical(req.Source, req.Language)
	default:
		return nil, &parser.UnsupportedLanguageError{Tag: string(req.Language)}
	}

	res := e.aggregate(req, ext)
	res.Suggestions = suggest(res, e.thresholds)
	return res, nil
}

// aggregate computes every metric from the structural extraction.
func (e *Engine) aggregate(req Request, ext *extraction) *Result {
	res := &Result{
		Language:        req.Language,
		Functions:       make([]Function, 0, len(ext.functions)),
		Loops:           ext.loops,
		TimeComplexity:  make([]TimeComplexity, 0, len(ext.functions)),
		UnusedVariables: ext.unusedVariables(),
		UnusedFunctions: ext.unusedFunctions(),
		Dependencies:    ext.dependencies,
		FunctionOrder:   ext.functionOrder,
		LargestFunction: LargestFunction{Name: "None", SizeLines: 0},
		Approximate:     req.Language.Lexical(),
	}
	if res.Loops == nil {
		res.Loops = []Loop{}
	}

	res.TotalLines, res.CommentLines, res.CommentRatio = countLines(req.Source, req.Language)

	var totalComplexity int
	for _, fn := range ext.functions {
		rec := Function{
			Name:       fn.name,
			StartLine:  fn.startLine,
			EndLine:    fn.endLine,
			Complexity: fn.complexity,
			SizeLines:  fn.endLine - fn.startLine,
		}
		if rec.SizeLines < 0 {
			rec.SizeLines = 0
		}
		res.Functions = append(res.Functions, rec)
		totalComplexity += rec.Complexity

		if rec.SizeLines > res.LargestFunction.SizeLines || res.LargestFunction.Name == "None" {
			res.LargestFunction = LargestFunction{Name: rec.Name, SizeLines: rec.SizeLines}
		}

		res.TimeComplexity = append(res.TimeComplexity, TimeComplexity{
			Function: rec.Name,
			Label:    complexityLabel(fn.maxLoopDepth),
			Line:     rec.StartLine,
		})
	}

	res.FunctionCount = len(res.Functions)
	if res.FunctionCount > 0 {
		res.AverageComplexity = round2(float64(totalComplexity) / float64(res.FunctionCount))
	}
	res.EfficiencyGrade = efficiencyGrade(res.AverageComplexity)

	res.LoopCount = len(res.Loops)
	for _, l := range res.Loops {
		if l.Depth >= 2 {
			res.NestedLoops++
		}
	}

	if req.Language == parser.LangPython {
		mi := maintainabilityIndex(res.TotalLines, res.CommentRatio, res.AverageComplexity)
		res.MaintainabilityIndex = &mi
	}

	return res
}

// complexityLabel maps a maximum loop nesting depth to a qualitative label.
func complexityLabel(depth int) string {
	switch depth {
	case 0:
		return "O(1)"
	case 1:
		return "O(n)"
	case 2:
		return "O(n²)"
	default:
		return fmt.Sprintf("O(n^%d)", depth)
	}
}

// efficiencyGrade maps average complexity to a letter grade.
func efficiencyGrade(avg float64) string {
	switch {
	case avg <= 5:
		return "A"
	case avg <= 10:
		return "B"
	case avg <= 15:
		return "C"
	default:
		return "D"
	}
}

// maintainabilityIndex computes the SEI-style maintainability score from
// total lines, comment ratio, and average complexity, normalized to 0-100.
// Line count stands in for Halstead volume, which the engine does not
// compute.
func maintainabilityIndex(totalLines int, commentRatio, avgComplexity float64) float64 {
	if totalLines == 0 {
		return 100
	}
	loc := math.Max(1, float64(totalLines))
	mi := 171 -
		5.2*math.Log(loc) -
		0.23*avgComplexity -
		16.2*math.Log(loc) +
		50*math.Sin(math.Sqrt(2.4*commentRatio*math.Pi/180))
	mi = mi * 100 / 171
	if mi < 0 {
		mi = 0
	}
	if mi > 100 {
		mi = 100
	}
	return round2(mi)
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
