package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/amartel/scry/internal/mcpserver"
	"github.com/urfave/cli/v2"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes the analyzer
as tools that LLMs can invoke.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "scry": {
        "command": "scry",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - analyze_source     Complexity, dead code, and suggestion metrics
  - dependency_graph   Function call graph with cycles and DOT output`,
		Action: runMCPCmd,
	}
}

func runMCPCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := mcpserver.NewServer(version, cfg.AnalysisThresholds())
	return server.Run(ctx)
}
