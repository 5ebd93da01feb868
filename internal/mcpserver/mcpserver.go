// Package mcpserver exposes the scry analysis engine over the Model Context
// Protocol so coding agents can run it against in-memory source.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/amartel/scry/pkg/analysis"
)

// Server wraps the MCP server and registers the scry tools.
type Server struct {
	server     *mcp.Server
	thresholds analysis.Thresholds
}

// NewServer creates a new MCP server with all scry tools registered.
func NewServer(version string, thresholds analysis.Thresholds) *Server {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "scry",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server, thresholds: thresholds}
	s.registerTools()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "analyze_source",
		Description: "Analyze a source snippet and return quality metrics: " +
			"cyclomatic complexity per function, loop nesting and time complexity " +
			"estimates, comment ratio, dead code (unused variables and functions), " +
			"maintainability index (python), and refactoring suggestions. " +
			"Supported languages: python, java, javascript, c, cpp. " +
			"C and C++ results are lexical approximations.",
	}, s.handleAnalyzeSource)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "dependency_graph",
		Description: "Build the function call graph of a source snippet. Returns " +
			"the declared functions, caller to callee edges with call counts, " +
			"recursion cycles, and optionally Graphviz DOT. " +
			"Supported languages: python, java, javascript, c, cpp.",
	}, s.handleDependencyGraph)
}
