package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/amartel/scry/internal/fileproc"
	"github.com/amartel/scry/internal/output"
	"github.com/amartel/scry/internal/scanner"
	"github.com/amartel/scry/pkg/analysis"
	"github.com/amartel/scry/pkg/graph"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

func graphCmd() *cli.Command {
	return &cli.Command{
		Name:      "graph",
		Aliases:   []string{"deps"},
		Usage:     "Build the function call dependency graph",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "language",
				Aliases: []string{"l"},
				Usage:   "Override language detection: python, java, js, c, cpp",
			},
			&cli.BoolFlag{
				Name:  "dot",
				Usage: "Emit Graphviz DOT instead of the summary",
			},
		},
		Action: runGraphCmd,
	}
}

func runGraphCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	scan := scanner.New(cfg)
	files, err := collectFiles(getPaths(c), scan)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		color.Yellow("No source files found")
		return nil
	}
	if c.String("language") == "" {
		if groups := scan.GroupByLanguage(files); len(groups) > 1 {
			color.Yellow("Mixing %d languages in one graph; same-named functions merge into a single node", len(groups))
		}
	}

	results, procErrs, err := analyzeAll(files, cfg.AnalysisThresholds(), c.String("language"), "Building call graph...")
	if err != nil {
		return err
	}
	for _, pe := range procErrs.Errors {
		color.Yellow("Skipped %s: %v", pe.Path, pe.Err)
	}
	if len(results) == 0 {
		return fmt.Errorf("no files analyzed successfully")
	}

	merged := mergeDependencies(results)
	g := graph.FromResult(merged)

	formatter, err := output.NewFormatter(output.ParseFormat(getFormat(c, cfg)), c.String("output"), cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if c.Bool("dot") {
		dot, err := g.DOT()
		if err != nil {
			return fmt.Errorf("failed to encode graph: %w", err)
		}
		if formatter.Format() == output.FormatText {
			fmt.Fprintln(formatter.Writer(), dot)
			return nil
		}
		return formatter.Output(graphPayload(g, merged, dot))
	}

	if formatter.Format() != output.FormatText {
		return formatter.Output(graphPayload(g, merged, ""))
	}
	return renderGraphSummary(formatter, g)
}

// mergeDependencies folds per-file call maps into a single result for graph
// construction. Functions sharing a name across files merge into one node.
func mergeDependencies(results []fileproc.FileResult) *analysis.Result {
	merged := &analysis.Result{Dependencies: map[string][]string{}}
	for _, fr := range results {
		for _, name := range fr.Result.FunctionOrder {
			if _, seen := merged.Dependencies[name]; !seen {
				merged.FunctionOrder = append(merged.FunctionOrder, name)
			}
			merged.Dependencies[name] = append(merged.Dependencies[name], fr.Result.Dependencies[name]...)
		}
	}
	return merged
}

// graphEdge is one weighted call relation in the structured payload.
type graphEdge struct {
	From  string `json:"from" toon:"from"`
	To    string `json:"to" toon:"to"`
	Count int    `json:"count" toon:"count"`
}

type graphData struct {
	Functions []string    `json:"functions" toon:"functions"`
	Edges     []graphEdge `json:"edges" toon:"edges"`
	Cycles    [][]string  `json:"cycles,omitempty" toon:"cycles,omitempty"`
	DOT       string      `json:"dot,omitempty" toon:"dot,omitempty"`
}

func graphPayload(g *graph.Graph, merged *analysis.Result, dot string) graphData {
	data := graphData{
		Functions: g.Nodes(),
		Edges:     []graphEdge{},
		Cycles:    g.Cycles(),
		DOT:       dot,
	}
	for _, from := range g.Nodes() {
		calls := merged.Dependencies[from]
		for _, to := range g.Callees(from) {
			count := 0
			for _, callee := range calls {
				if callee == to {
					count++
				}
			}
			data.Edges = append(data.Edges, graphEdge{From: from, To: to, Count: count})
		}
	}
	return data
}

func renderGraphSummary(formatter *output.Formatter, g *graph.Graph) error {
	nodes := g.Nodes()

	rows := make([][]string, 0, len(nodes))
	for _, name := range nodes {
		rows = append(rows, []string{
			name,
			strings.Join(g.Callees(name), ", "),
			strconv.Itoa(g.FanIn(name)),
		})
	}

	sections := []output.Renderable{
		&output.Table{
			Title:   "Call Graph",
			Headers: []string{"Function", "Calls", "Fan-In"},
			Rows:    rows,
			Footer:  []string{fmt.Sprintf("Functions: %d", len(nodes)), fmt.Sprintf("Call sites: %d", g.EdgeCount()), ""},
		},
	}

	if ranks := g.Ranks(); len(ranks) > 0 {
		lines := make([]string, 0, len(ranks))
		for i, r := range ranks {
			if i >= 5 {
				break
			}
			lines = append(lines, fmt.Sprintf(" %d. %s (%.4f)", i+1, r.Function, r.Score))
		}
		sections = append(sections, &output.Section{
			Title:   "Most Depended On",
			Content: strings.Join(lines, "\n"),
		})
	}

	cycleText := "No call cycles detected."
	if cycles := g.Cycles(); len(cycles) > 0 {
		lines := make([]string, 0, len(cycles))
		for _, cycle := range cycles {
			lines = append(lines, " - "+strings.Join(cycle, " -> "))
		}
		cycleText = strings.Join(lines, "\n")
	}
	sections = append(sections, &output.Section{Title: "Cycles", Content: cycleText})

	report := &output.Report{Title: "Dependency Analysis", Sections: sections}
	return report.RenderText(formatter.Writer(), formatter.Colored())
}
