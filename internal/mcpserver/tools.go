package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	toon "github.com/toon-format/toon-go"

	"github.com/amartel/scry/pkg/analysis"
	"github.com/amartel/scry/pkg/graph"
)

// AnalyzeSourceInput is the input for the analyze_source tool.
type AnalyzeSourceInput struct {
	Source   string `json:"source" jsonschema:"Source code to analyze."`
	Language string `json:"language" jsonschema:"Language tag: python, java, js, c, or cpp."`
	Format   string `json:"format,omitempty" jsonschema:"Output format: toon (default) or json."`
}

// DependencyGraphInput is the input for the dependency_graph tool.
type DependencyGraphInput struct {
	Source     string `json:"source" jsonschema:"Source code to analyze."`
	Language   string `json:"language" jsonschema:"Language tag: python, java, js, c, or cpp."`
	IncludeDOT bool   `json:"include_dot,omitempty" jsonschema:"Include Graphviz DOT rendering."`
	Format     string `json:"format,omitempty" jsonschema:"Output format: toon (default) or json."`
}

func formatOutput(data any, format string) (string, error) {
	if format == "json" {
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	out, err := toon.Marshal(data, toon.WithIndent(2))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func toolResult(data any, format string) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func (s *Server) handleAnalyzeSource(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeSourceInput) (*mcp.CallToolResult, any, error) {
	if input.Source == "" {
		return toolError("source is required")
	}

	eng := analysis.New(analysis.WithThresholds(s.thresholds))
	defer eng.Close()

	result, err := eng.AnalyzeTag([]byte(input.Source), input.Language)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(result, input.Format)
}

// graphEdge is an exported view of one call relation.
type graphEdge struct {
	From  string `json:"from" toon:"from"`
	To    string `json:"to" toon:"to"`
	Count int    `json:"count" toon:"count"`
}

func (s *Server) handleDependencyGraph(ctx context.Context, req *mcp.CallToolRequest, input DependencyGraphInput) (*mcp.CallToolResult, any, error) {
	if input.Source == "" {
		return toolError("source is required")
	}

	eng := analysis.New(analysis.WithThresholds(s.thresholds))
	defer eng.Close()

	result, err := eng.AnalyzeTag([]byte(input.Source), input.Language)
	if err != nil {
		return toolError(err.Error())
	}

	g := graph.FromResult(result)

	var edges []graphEdge
	for _, caller := range g.Nodes() {
		seen := make(map[string]int)
		for _, callee := range result.Dependencies[caller] {
			seen[callee]++
		}
		for _, callee := range g.Callees(caller) {
			edges = append(edges, graphEdge{From: caller, To: callee, Count: seen[callee]})
		}
	}

	out := struct {
		Functions []string    `json:"functions" toon:"functions"`
		Edges     []graphEdge `json:"edges" toon:"edges"`
		Cycles    [][]string  `json:"cycles,omitempty" toon:"cycles,omitempty"`
		DOT       string      `json:"dot,omitempty" toon:"dot,omitempty"`
	}{
		Functions: g.Nodes(),
		Edges:     edges,
		Cycles:    g.Cycles(),
	}

	if input.IncludeDOT {
		dot, err := g.DOT()
		if err != nil {
			return toolError(err.Error())
		}
		out.DOT = dot
	}

	return toolResult(out, input.Format)
}
