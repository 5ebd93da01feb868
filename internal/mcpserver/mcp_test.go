package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/amartel/scry/pkg/analysis"
)

func newTestServer() *Server {
	return NewServer("test", analysis.DefaultThresholds())
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content = %T, want *mcp.TextContent", res.Content[0])
	}
	return tc.Text
}

func TestHandleAnalyzeSource(t *testing.T) {
	s := newTestServer()

	res, _, err := s.handleAnalyzeSource(context.Background(), nil, AnalyzeSourceInput{
		Source:   "def f():\n    for i in x:\n        pass\n",
		Language: "python",
	})
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", textOf(t, res))
	}

	text := textOf(t, res)
	for _, want := range []string{"cyclomatic_complexity", "O(n)", "efficiency_grade"} {
		if !strings.Contains(text, want) {
			t.Errorf("result missing %q:\n%s", want, text)
		}
	}
}

func TestHandleAnalyzeSource_JSONFormat(t *testing.T) {
	s := newTestServer()

	res, _, err := s.handleAnalyzeSource(context.Background(), nil, AnalyzeSourceInput{
		Source:   "def f():\n    pass\n",
		Language: "py",
		Format:   "json",
	})
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	text := textOf(t, res)
	if !strings.HasPrefix(strings.TrimSpace(text), "{") {
		t.Errorf("json output should be an object:\n%s", text)
	}
}

func TestHandleAnalyzeSource_Errors(t *testing.T) {
	s := newTestServer()

	res, _, err := s.handleAnalyzeSource(context.Background(), nil, AnalyzeSourceInput{
		Source:   "x",
		Language: "cobol",
	})
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !res.IsError {
		t.Error("unsupported language should set IsError")
	}

	res, _, err = s.handleAnalyzeSource(context.Background(), nil, AnalyzeSourceInput{
		Language: "python",
	})
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !res.IsError {
		t.Error("missing source should set IsError")
	}

	res, _, err = s.handleAnalyzeSource(context.Background(), nil, AnalyzeSourceInput{
		Source:   "def broken(:\n",
		Language: "python",
	})
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !res.IsError {
		t.Error("syntax error should set IsError")
	}
	if !strings.Contains(textOf(t, res), "parse error") {
		t.Errorf("error text = %q, want parse error detail", textOf(t, res))
	}
}

func TestHandleDependencyGraph(t *testing.T) {
	s := newTestServer()

	res, _, err := s.handleDependencyGraph(context.Background(), nil, DependencyGraphInput{
		Source:     "def a():\n    b()\n    b()\n\ndef b():\n    pass\n",
		Language:   "python",
		IncludeDOT: true,
	})
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", textOf(t, res))
	}

	text := textOf(t, res)
	for _, want := range []string{"a", "b", "digraph"} {
		if !strings.Contains(text, want) {
			t.Errorf("result missing %q:\n%s", want, text)
		}
	}
}
