package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/amartel/scry/internal/fileproc"
	"github.com/amartel/scry/internal/output"
	"github.com/amartel/scry/internal/progress"
	"github.com/amartel/scry/internal/reportfile"
	"github.com/amartel/scry/internal/scanner"
	"github.com/amartel/scry/pkg/analysis"
	"github.com/amartel/scry/pkg/parser"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"an"},
		Usage:     "Analyze source files for complexity, dead code, and suggestions",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "language",
				Aliases: []string{"l"},
				Usage:   "Override language detection: python, java, js, c, cpp",
			},
			&cli.BoolFlag{
				Name:  "report",
				Usage: "Save a timestamped plain-text report in the working directory",
			},
		},
		Action: runAnalyzeCmd,
	}
}

func runAnalyzeCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	files, err := collectFiles(getPaths(c), scanner.New(cfg))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		color.Yellow("No source files found")
		return nil
	}

	results, procErrs, err := analyzeAll(files, cfg.AnalysisThresholds(), c.String("language"), "Analyzing...")
	if err != nil {
		return err
	}
	for _, pe := range procErrs.Errors {
		color.Yellow("Skipped %s: %v", pe.Path, pe.Err)
	}
	if len(results) == 0 {
		return fmt.Errorf("no files analyzed successfully")
	}

	formatter, err := output.NewFormatter(output.ParseFormat(getFormat(c, cfg)), c.String("output"), cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() != output.FormatText {
		if err := formatter.Output(analysisPayload(results)); err != nil {
			return err
		}
	} else {
		for i, fr := range results {
			report := buildReport(fr.Path, fr.Result, formatter.Colored())
			if err := report.RenderText(formatter.Writer(), formatter.Colored()); err != nil {
				return err
			}
			if i < len(results)-1 {
				fmt.Fprintln(formatter.Writer())
			}
		}
	}

	if c.Bool("report") {
		name, err := saveReport(results)
		if err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
		formatter.Success("Report saved as %s", name)
	}
	return nil
}

// collectFiles expands each path into source files, scanning directories
// through the configured exclusions.
func collectFiles(paths []string, scan *scanner.Scanner) ([]string, error) {
	var files []string
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("invalid path %s: %w", path, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, abs)
			continue
		}
		found, err := scan.ScanDir(abs)
		if err != nil {
			return nil, fmt.Errorf("failed to scan directory %s: %w", path, err)
		}
		files = append(files, found...)
	}
	return files, nil
}

// analyzeAll runs the parallel analysis over files, honoring an optional
// language tag override.
func analyzeAll(files []string, th analysis.Thresholds, langTag, label string) ([]fileproc.FileResult, *fileproc.ProcessingErrors, error) {
	var lang parser.Language
	if langTag != "" {
		var err error
		lang, err = parser.ParseTag(langTag)
		if err != nil {
			return nil, nil, err
		}
	}

	procErrs := &fileproc.ProcessingErrors{}
	tracker := progress.NewTracker(label, len(files))

	var results []fileproc.FileResult
	if langTag == "" {
		results = fileproc.AnalyzeFiles(files, th, tracker.Tick, procErrs.Add)
	} else {
		mapped := fileproc.MapFiles(files, th, func(eng *analysis.Engine, path string) (*analysis.Result, error) {
			source, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			return eng.Analyze(analysis.Request{Source: source, Language: lang})
		}, tracker.Tick, procErrs.Add)
		for _, m := range mapped {
			results = append(results, fileproc.FileResult{Path: m.Path, Result: m.Value})
		}
	}
	if len(results) == 0 && len(files) > 0 {
		tracker.FinishError(procErrs)
	} else {
		tracker.FinishSuccess()
	}
	return results, procErrs, nil
}

// fileAnalysis is the structured payload for one analyzed file.
type fileAnalysis struct {
	Path string `json:"path" toon:"path"`
	*analysis.Result
}

func analysisPayload(results []fileproc.FileResult) []fileAnalysis {
	out := make([]fileAnalysis, len(results))
	for i, fr := range results {
		out[i] = fileAnalysis{Path: fr.Path, Result: fr.Result}
	}
	return out
}

// saveReport writes the plain-text rendering of all reports to a timestamped
// file in the working directory and returns its name.
func saveReport(results []fileproc.FileResult) (string, error) {
	var sb strings.Builder
	for i, fr := range results {
		if i > 0 {
			sb.WriteString("\n")
		}
		report := buildReport(fr.Path, fr.Result, false)
		if err := report.RenderText(&sb, false); err != nil {
			return "", err
		}
	}
	return reportfile.Save(".", sb.String(), time.Now())
}
