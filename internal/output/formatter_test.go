package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"toon", FormatTOON},
		{"text", FormatText},
		{"", FormatText},
		{"bogus", FormatText},
	}
	for _, tt := range tests {
		if got := ParseFormat(tt.in); got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatter_JSON(t *testing.T) {
	tmp := filepath.Join(t.TempDir(), "out.json")
	f, err := NewFormatter(FormatJSON, tmp, true)
	if err != nil {
		t.Fatalf("NewFormatter failed: %v", err)
	}

	if err := f.Output(map[string]int{"loops": 3}); err != nil {
		t.Fatalf("Output failed: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(tmp)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	var decoded map[string]int
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["loops"] != 3 {
		t.Errorf("loops = %d, want 3", decoded["loops"])
	}

	if f.Colored() {
		t.Error("file output must disable color")
	}
}

func TestFormatter_TOON(t *testing.T) {
	tmp := filepath.Join(t.TempDir(), "out.toon")
	f, err := NewFormatter(FormatTOON, tmp, false)
	if err != nil {
		t.Fatalf("NewFormatter failed: %v", err)
	}

	if err := f.Output(map[string]any{"language": "python"}); err != nil {
		t.Fatalf("Output failed: %v", err)
	}
	f.Close()

	data, err := os.ReadFile(tmp)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.Contains(string(data), "python") {
		t.Errorf("toon output missing value: %q", data)
	}
}

func TestTable_RenderText(t *testing.T) {
	var buf bytes.Buffer
	table := &Table{
		Title:   "Functions",
		Headers: []string{"Name", "Complexity"},
		Rows:    [][]string{{"main", "3"}, {"helper", "1"}},
	}

	if err := table.RenderText(&buf, false); err != nil {
		t.Fatalf("RenderText failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Functions", "=========", "main", "helper", "3"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTable_RenderData(t *testing.T) {
	table := &Table{
		Headers: []string{"name", "size"},
		Rows:    [][]string{{"f", "10"}},
	}

	data, ok := table.RenderData().([]map[string]string)
	if !ok {
		t.Fatalf("RenderData returned %T", table.RenderData())
	}
	if data[0]["name"] != "f" || data[0]["size"] != "10" {
		t.Errorf("RenderData = %v", data)
	}

	table.Data = 42
	if got := table.RenderData(); got != 42 {
		t.Errorf("RenderData = %v, want wrapped data", got)
	}
}

func TestSection_Nested(t *testing.T) {
	var buf bytes.Buffer
	s := &Section{
		Title:   "Summary",
		Content: "all good",
		Sections: []Section{
			{Title: "Detail", Content: "depth"},
		},
	}

	if err := s.RenderText(&buf, false); err != nil {
		t.Fatalf("RenderText failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "=======") {
		t.Error("top-level section should underline with =")
	}
	if !strings.Contains(out, "------") {
		t.Error("nested section should underline with -")
	}
}

func TestReport_RenderText(t *testing.T) {
	var buf bytes.Buffer
	r := &Report{
		Title: "Analysis",
		Sections: []Renderable{
			&Section{Title: "One", Content: "first"},
			&Section{Title: "Two", Content: "second"},
		},
	}

	if err := r.RenderText(&buf, false); err != nil {
		t.Fatalf("RenderText failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Analysis", "One", "first", "Two", "second"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestSeverityColor_PassThrough(t *testing.T) {
	if got := SeverityColor("unknown", "text"); got != "text" {
		t.Errorf("SeverityColor(unknown) = %q, want passthrough", got)
	}
}
