package analysis

import (
	"regexp"
	"strings"

	"github.com/amartel/scry/pkg/parser"
)

// The C/C++ path has no grammar. Function declarations are recognized by a
// small set of return-type keywords followed by an identifier and an opening
// parenthesis; loops by keyword alone. It never fails on malformed input, it
// just finds fewer matches.

var (
	cFuncRe = regexp.MustCompile(`(?m)^\s*(?:(?:static|inline|extern|const|struct|unsigned|signed)\s+)*(void|int|char|short|long|float|double|bool|size_t|unsigned|signed|[A-Za-z_]\w*_t)\b[\s*&]+((?:[A-Za-z_]\w*::)?[A-Za-z_]\w*)\s*\(`)
	cCallRe = regexp.MustCompile(`\b([A-Za-z_]\w*)\s*\(`)

	cKeywords = map[string]bool{
		"if": true, "else": true, "for": true, "while": true, "do": true,
		"switch": true, "case": true, "return": true, "sizeof": true,
		"break": true, "continue": true, "goto": true, "typedef": true,
		"struct": true, "union": true, "enum": true, "new": true,
		"delete": true, "throw": true, "catch": true, "try": true,
	}
)

// lexLoop is a loop keyword occurrence with its byte offset.
type lexLoop struct {
	pos   int
	line  int
	depth int
}

// extractLexical builds the structural representation for C/C++ source by
// lexical pattern matching.
func extractLexical(source []byte, lang parser.Language) *extraction {
	ext := newExtraction()
	clean := stripCSource(string(source))

	loops := scanLexLoops(clean)
	for _, l := range loops {
		ext.loops = append(ext.loops, Loop{Line: l.line, Depth: l.depth})
	}

	type span struct {
		name       string
		start, end int // byte offsets of the body
	}
	var spans []span

	for _, m := range cFuncRe.FindAllStringSubmatchIndex(clean, -1) {
		name := clean[m[4]:m[5]]
		if cKeywords[name] {
			continue
		}

		openParen := strings.IndexByte(clean[m[5]:], '(')
		if openParen < 0 {
			continue
		}
		closeParen := matchDelim(clean, m[5]+openParen, '(', ')')
		if closeParen < 0 {
			continue
		}

		rest := strings.TrimLeft(clean[closeParen+1:], " \t\r\n")
		if !strings.HasPrefix(rest, "{") {
			continue // declaration, not a definition
		}
		openBrace := closeParen + 1 + (len(clean[closeParen+1:]) - len(rest))
		closeBrace := matchDelim(clean, openBrace, '{', '}')
		if closeBrace < 0 {
			closeBrace = len(clean) - 1
		}

		startLine := lineAt(clean, m[0])
		endLine := lineAt(clean, closeBrace)

		ef := extractedFunction{
			name:       name,
			startLine:  startLine,
			endLine:    endLine,
			complexity: 1 + countLexBranches(clean[openBrace:closeBrace+1]),
		}
		for _, l := range loops {
			if l.pos >= openBrace && l.pos <= closeBrace && l.depth > ef.maxLoopDepth {
				ef.maxLoopDepth = l.depth
			}
		}
		ext.functions = append(ext.functions, ef)
		ext.defined[name] = true
		spans = append(spans, span{name: name, start: openBrace, end: closeBrace})
	}

	for _, sp := range spans {
		body := clean[sp.start : sp.end+1]
		if _, seen := ext.dependencies[sp.name]; !seen {
			ext.dependencies[sp.name] = []string{}
			ext.functionOrder = append(ext.functionOrder, sp.name)
		}
		for _, cm := range cCallRe.FindAllStringSubmatchIndex(body, -1) {
			callee := body[cm[2]:cm[3]]
			if cKeywords[callee] {
				continue
			}
			ext.dependencies[sp.name] = append(ext.dependencies[sp.name], callee)
			if callee != sp.name {
				ext.called[callee] = true
			}
		}
	}

	return ext
}

// scanLexLoops finds loop keywords and assigns each a nesting depth from the
// brace depth of enclosing loop bodies. Brace-less loop bodies go
// untracked, and the trailing while of a do-while is not counted again.
// A statement terminator at paren depth zero, or a closing brace, consumes
// any pending brace-less body so the next `{` is not misattributed.
func scanLexLoops(clean string) []lexLoop {
	var (
		loops      []lexLoop
		bodyStack  []int
		braceDepth int
		parenDepth int
		pending    int
		lastSig    byte
	)

	for i := 0; i < len(clean); i++ {
		c := clean[i]
		if isWordStart(c) {
			j := i + 1
			for j < len(clean) && isWordChar(clean[j]) {
				j++
			}
			word := clean[i:j]
			if word == "for" || word == "while" || word == "do" {
				if !(word == "while" && lastSig == '}') {
					loops = append(loops, lexLoop{pos: i, line: lineAt(clean, i), depth: len(bodyStack) + 1})
					pending++
				}
			}
			lastSig = clean[j-1]
			i = j - 1
			continue
		}

		switch c {
		case '(':
			parenDepth++
		case ')':
			if parenDepth > 0 {
				parenDepth--
			}
		case ';':
			if parenDepth == 0 {
				pending = 0
			}
		case '{':
			braceDepth++
			if pending > 0 {
				bodyStack = append(bodyStack, braceDepth)
				pending--
			}
		case '}':
			for len(bodyStack) > 0 && bodyStack[len(bodyStack)-1] == braceDepth {
				bodyStack = bodyStack[:len(bodyStack)-1]
			}
			if braceDepth > 0 {
				braceDepth--
			}
			pending = 0
		}
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			lastSig = c
		}
	}
	return loops
}

// countLexBranches counts branch keywords and short-circuit operators.
func countLexBranches(body string) int {
	count := strings.Count(body, "&&") + strings.Count(body, "||")
	for i := 0; i < len(body); i++ {
		if !isWordStart(body[i]) {
			continue
		}
		j := i + 1
		for j < len(body) && isWordChar(body[j]) {
			j++
		}
		switch body[i:j] {
		case "if", "for", "while", "case", "catch":
			count++
		}
		i = j - 1
	}
	return count
}

// matchDelim returns the offset of the delimiter closing the one at open,
// or -1 when unbalanced.
func matchDelim(s string, open int, openc, closec byte) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case openc:
			depth++
		case closec:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// lineAt returns the 1-based line number of a byte offset.
func lineAt(s string, pos int) int {
	return strings.Count(s[:pos], "\n") + 1
}

// stripCSource blanks out comments and string/char literals while keeping
// offsets and line breaks intact, so positions computed on the cleaned text
// map back to the original.
func stripCSource(src string) string {
	out := []byte(src)
	const (
		code = iota
		lineComment
		blockComment
		strLit
		charLit
	)
	state := code

	for i := 0; i < len(out); i++ {
		c := out[i]
		switch state {
		case code:
			switch {
			case c == '/' && i+1 < len(out) && out[i+1] == '/':
				state = lineComment
				out[i] = ' '
			case c == '/' && i+1 < len(out) && out[i+1] == '*':
				state = blockComment
				out[i] = ' '
			case c == '"':
				state = strLit
				out[i] = ' '
			case c == '\'':
				state = charLit
				out[i] = ' '
			}
		case lineComment:
			if c == '\n' {
				state = code
			} else {
				out[i] = ' '
			}
		case blockComment:
			if c == '*' && i+1 < len(out) && out[i+1] == '/' {
				out[i], out[i+1] = ' ', ' '
				i++
				state = code
			} else if c != '\n' {
				out[i] = ' '
			}
		case strLit:
			if c == '\\' && i+1 < len(out) {
				out[i] = ' '
				if out[i+1] != '\n' {
					out[i+1] = ' '
				}
				i++
			} else if c == '"' {
				out[i] = ' '
				state = code
			} else if c != '\n' {
				out[i] = ' '
			}
		case charLit:
			if c == '\\' && i+1 < len(out) {
				out[i], out[i+1] = ' ', ' '
				i++
			} else if c == '\'' {
				out[i] = ' '
				state = code
			} else {
				out[i] = ' '
			}
		}
	}
	return string(out)
}

func isWordStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWordChar(c byte) bool {
	return isWordStart(c) || (c >= '0' && c <= '9')
}
