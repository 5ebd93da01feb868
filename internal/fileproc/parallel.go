// Package fileproc provides concurrent file analysis.
package fileproc

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/amartel/scry/pkg/analysis"
	"github.com/amartel/scry/pkg/parser"
)

// ProcessingError represents an error that occurred while processing a file.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// ProcessingErrors collects multiple file processing errors.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error to the collection. Safe for concurrent use.
func (e *ProcessingErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker
// count. 2x suits the mixed I/O and CGO workload.
const DefaultWorkerMultiplier = 2

// ProgressFunc is called after each file is processed.
type ProgressFunc func()

// ErrorFunc is called when a file fails. If nil, failures are skipped
// silently.
type ErrorFunc func(path string, err error)

// FileResult pairs a path with its analysis result.
type FileResult struct {
	Path   string
	Result *analysis.Result
}

// AnalyzeFiles analyzes files in parallel with a per-goroutine engine.
// Files whose language cannot be detected fail with an
// UnsupportedLanguageError. Results come back in input order with failed
// files omitted.
func AnalyzeFiles(files []string, th analysis.Thresholds, onProgress ProgressFunc, onError ErrorFunc) []FileResult {
	mapped := MapFiles(files, th, func(eng *analysis.Engine, path string) (*analysis.Result, error) {
		lang := parser.DetectLanguage(path)
		if lang == parser.LangUnknown {
			return nil, &parser.UnsupportedLanguageError{Tag: path}
		}
		source, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return eng.Analyze(analysis.Request{Source: source, Language: lang})
	}, onProgress, onError)

	out := make([]FileResult, len(mapped))
	for i, m := range mapped {
		out[i] = FileResult{Path: m.Path, Result: m.Value}
	}
	return out
}

// Mapped pairs a path with the value fn returned for it.
type Mapped[T any] struct {
	Path  string
	Value T
}

// MapFiles processes files in parallel, calling fn for each file with an
// engine owned by the calling goroutine. Results keep input order.
func MapFiles[T any](files []string, th analysis.Thresholds, fn func(*analysis.Engine, string) (T, error), onProgress ProgressFunc, onError ErrorFunc) []Mapped[T] {
	if len(files) == 0 {
		return nil
	}

	slots := make([]*Mapped[T], len(files))

	p := pool.New().WithMaxGoroutines(runtime.NumCPU() * DefaultWorkerMultiplier)
	for i, path := range files {
		p.Go(func() {
			eng := analysis.New(analysis.WithThresholds(th))
			defer eng.Close()

			value, err := fn(eng, path)
			if onProgress != nil {
				defer onProgress()
			}
			if err != nil {
				if onError != nil {
					onError(path, err)
				}
				return
			}
			slots[i] = &Mapped[T]{Path: path, Value: value}
		})
	}
	p.Wait()

	out := make([]Mapped[T], 0, len(files))
	for _, r := range slots {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}
