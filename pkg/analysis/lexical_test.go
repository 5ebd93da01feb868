package analysis

import (
	"reflect"
	"strings"
	"testing"

	"github.com/amartel/scry/pkg/parser"
)

func analyzeC(t *testing.T, source string) *Result {
	t.Helper()
	e := New()
	defer e.Close()

	res, err := e.Analyze(Request{Source: []byte(source), Language: parser.LangC})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	return res
}

func TestLexical_Functions(t *testing.T) {
	src := `int add(int a, int b) {
    return a + b;
}

int main() {
    int total = 0;
    for (int i = 0; i < 10; i++) {
        for (int j = 0; j < 10; j++) {
            total += add(i, j);
        }
    }
    return total;
}
`
	res := analyzeC(t, src)

	if !res.Approximate {
		t.Error("Approximate = false, want true for the lexical path")
	}
	if res.FunctionCount != 2 {
		t.Fatalf("FunctionCount = %d, want 2", res.FunctionCount)
	}

	add := res.Functions[0]
	if add.Name != "add" || add.StartLine != 1 || add.EndLine != 3 {
		t.Errorf("add = %+v, want lines 1-3", add)
	}
	if add.Complexity != 1 {
		t.Errorf("add.Complexity = %d, want 1", add.Complexity)
	}

	main := res.Functions[1]
	if main.Name != "main" {
		t.Fatalf("Functions[1].Name = %q, want main", main.Name)
	}
	if main.Complexity != 3 {
		t.Errorf("main.Complexity = %d, want 3", main.Complexity)
	}

	if res.LoopCount != 2 || res.NestedLoops != 1 {
		t.Errorf("LoopCount = %d NestedLoops = %d, want 2 and 1", res.LoopCount, res.NestedLoops)
	}
	if res.TimeComplexity[1].Label != "O(n²)" {
		t.Errorf("main label = %q, want O(n²)", res.TimeComplexity[1].Label)
	}

	if !reflect.DeepEqual(res.Dependencies["main"], []string{"add"}) {
		t.Errorf("Dependencies[main] = %v, want [add]", res.Dependencies["main"])
	}
	if !reflect.DeepEqual(res.UnusedFunctions, []string{"main"}) {
		t.Errorf("UnusedFunctions = %v, want [main]", res.UnusedFunctions)
	}
	if len(res.UnusedVariables) != 0 {
		t.Errorf("UnusedVariables = %v, want none for c", res.UnusedVariables)
	}
}

func TestLexical_DeclarationIsNotDefinition(t *testing.T) {
	res := analyzeC(t, "int add(int a, int b);\n\nint add(int a, int b) {\n    return a + b;\n}\n")

	if res.FunctionCount != 1 {
		t.Errorf("FunctionCount = %d, want 1 (prototype skipped)", res.FunctionCount)
	}
}

func TestLexical_DoWhileCountedOnce(t *testing.T) {
	src := `void spin(void) {
    do {
        step();
    } while (running);
}
`
	res := analyzeC(t, src)

	if res.LoopCount != 1 {
		t.Errorf("LoopCount = %d, want 1 (trailing while not double counted)", res.LoopCount)
	}
}

func TestLexical_BracelessBodyDoesNotLeakDepth(t *testing.T) {
	src := `void f(void) {
    while (x)
        g();
}

void h(void) {
    for (int i = 0; i < n; i++) {
        g();
    }
}
`
	res := analyzeC(t, src)

	if res.LoopCount != 2 {
		t.Fatalf("LoopCount = %d, want 2", res.LoopCount)
	}
	for _, l := range res.Loops {
		if l.Depth != 1 {
			t.Errorf("loop at line %d has depth %d, want 1", l.Line, l.Depth)
		}
	}
	if res.NestedLoops != 0 {
		t.Errorf("NestedLoops = %d, want 0", res.NestedLoops)
	}
	if res.TimeComplexity[1].Label != "O(n)" {
		t.Errorf("h label = %q, want O(n)", res.TimeComplexity[1].Label)
	}
}

func TestLexical_CommentsAndStringsIgnored(t *testing.T) {
	src := `void f(void) {
    // for (;;) { }
    const char *s = "while (1) { if (x) }";
    /* if (a && b) { for (;;) } */
    run(s);
}
`
	res := analyzeC(t, src)

	if res.LoopCount != 0 {
		t.Errorf("LoopCount = %d, want 0", res.LoopCount)
	}
	if res.Functions[0].Complexity != 1 {
		t.Errorf("Complexity = %d, want 1", res.Functions[0].Complexity)
	}
	if !reflect.DeepEqual(res.Dependencies["f"], []string{"run"}) {
		t.Errorf("Dependencies[f] = %v, want [run]", res.Dependencies["f"])
	}
}

func TestLexical_CPPQualifiedNames(t *testing.T) {
	e := New()
	defer e.Close()

	src := `int Counter::next() {
    return ++value;
}
`
	res, err := e.Analyze(Request{Source: []byte(src), Language: parser.LangCPP})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if res.FunctionCount != 1 {
		t.Fatalf("FunctionCount = %d, want 1", res.FunctionCount)
	}
	if res.Functions[0].Name != "Counter::next" {
		t.Errorf("name = %q, want Counter::next", res.Functions[0].Name)
	}
}

func TestLexical_NeverFails(t *testing.T) {
	e := New()
	defer e.Close()

	garbage := "@@@ not c at all {{{ ((( \"unterminated\n"
	res, err := e.Analyze(Request{Source: []byte(garbage), Language: parser.LangC})
	if err != nil {
		t.Fatalf("lexical analysis must not fail: %v", err)
	}
	if res.FunctionCount != 0 {
		t.Errorf("FunctionCount = %d, want 0", res.FunctionCount)
	}
	if !res.Approximate {
		t.Error("Approximate = false, want true")
	}
}

func TestLexical_ApproximateSuggestionFirst(t *testing.T) {
	res := analyzeC(t, "int f(void) {\n    for (;;) {\n        for (;;) {\n        }\n    }\n    return 0;\n}\n")

	if len(res.Suggestions) == 0 {
		t.Fatal("expected suggestions")
	}
	first := res.Suggestions[0]
	if first.Severity != SeverityInfo {
		t.Errorf("Suggestions[0].Severity = %q, want info", first.Severity)
	}
	if !strings.Contains(first.Text, "approximate") {
		t.Errorf("Suggestions[0].Text = %q, want approximation notice", first.Text)
	}
}

func TestStripCSource_PreservesLines(t *testing.T) {
	src := "a /* multi\nline */ b // tail\nc \"str\nd\n"
	clean := stripCSource(src)

	if strings.Count(clean, "\n") != strings.Count(src, "\n") {
		t.Error("stripCSource changed the line count")
	}
	if len(clean) != len(src) {
		t.Error("stripCSource changed the length")
	}
	if strings.Contains(clean, "multi") || strings.Contains(clean, "tail") || strings.Contains(clean, "str") {
		t.Errorf("comment or string text survived: %q", clean)
	}
}
