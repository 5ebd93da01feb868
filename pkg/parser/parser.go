// Package parser wraps tree-sitter parsing for the grammar-backed languages
// and owns language tag/extension detection for all supported languages.
package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
)

// Language represents a supported programming language.
type Language string

const (
	LangPython     Language = "python"
	LangJava       Language = "java"
	LangJavaScript Language = "javascript"
	LangC          Language = "c"
	LangCPP        Language = "cpp"
	LangUnknown    Language = "unknown"
)

// String returns the canonical tag for the language.
func (l Language) String() string {
	return string(l)
}

// Lexical reports whether the language is analyzed by lexical pattern
// matching rather than a grammar.
func (l Language) Lexical() bool {
	return l == LangC || l == LangCPP
}

// UnsupportedLanguageError is returned when a language tag is not recognized.
type UnsupportedLanguageError struct {
	Tag string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported language: %q", e.Tag)
}

// ParseError is returned when a grammar-backed parse fails. It carries the
// position of the first syntax error found in the tree.
type ParseError struct {
	Language Language
	Line     int
	Column   int
	Message  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s parse error at line %d, column %d: %s", e.Language, e.Line, e.Column, e.Message)
}

// ParseTag normalizes a user-supplied language tag to a Language.
// Accepted tags: python, java, js, javascript, c, cpp.
func ParseTag(tag string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "python", "py":
		return LangPython, nil
	case "java":
		return LangJava, nil
	case "js", "javascript":
		return LangJavaScript, nil
	case "c":
		return LangC, nil
	case "cpp", "c++":
		return LangCPP, nil
	default:
		return LangUnknown, &UnsupportedLanguageError{Tag: tag}
	}
}

// DetectLanguage determines the language from a file path.
func DetectLanguage(path string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py", ".pyw", ".pyi":
		return LangPython
	case ".java":
		return LangJava
	case ".js", ".mjs", ".cjs":
		return LangJavaScript
	case ".c", ".h":
		return LangC
	case ".cpp", ".cc", ".cxx", ".hpp", ".hxx":
		return LangCPP
	default:
		return LangUnknown
	}
}

// GetTreeSitterLanguage returns the tree-sitter grammar for a Language.
// C and C++ have no grammar here; they go through the lexical path.
func GetTreeSitterLanguage(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangPython:
		return python.GetLanguage(), nil
	case LangJava:
		return java.GetLanguage(), nil
	case LangJavaScript:
		return javascript.GetLanguage(), nil
	default:
		return nil, &UnsupportedLanguageError{Tag: string(lang)}
	}
}

// Parser wraps tree-sitter for multi-language parsing. A Parser is not safe
// for concurrent use; create one per goroutine.
type Parser struct {
	parser *sitter.Parser
}

// ParseResult contains the parsed AST and metadata.
type ParseResult struct {
	Tree     *sitter.Tree
	Language Language
	Source   []byte
}

// New creates a new parser instance.
func New() *Parser {
	return &Parser{parser: sitter.NewParser()}
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// Parse parses source code with the specified grammar-backed language.
// A tree containing syntax errors yields a *ParseError and no result.
func (p *Parser) Parse(source []byte, lang Language) (*ParseResult, error) {
	tsLang, err := GetTreeSitterLanguage(lang)
	if err != nil {
		return nil, err
	}

	p.parser.SetLanguage(tsLang)
	tree, err := p.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}

	root := tree.RootNode()
	if root.HasError() {
		return nil, firstSyntaxError(root, lang)
	}

	return &ParseResult{
		Tree:     tree,
		Language: lang,
		Source:   source,
	}, nil
}

// firstSyntaxError locates the first ERROR or MISSING node in the tree.
func firstSyntaxError(root *sitter.Node, lang Language) *ParseError {
	var found *sitter.Node
	Walk(root, func(node *sitter.Node) bool {
		if found != nil {
			return false
		}
		if node.Type() == "ERROR" || node.IsMissing() {
			found = node
			return false
		}
		return node.HasError()
	})

	perr := &ParseError{Language: lang, Line: 1, Column: 1, Message: "invalid syntax"}
	if found != nil {
		perr.Line = int(found.StartPoint().Row) + 1
		perr.Column = int(found.StartPoint().Column) + 1
		if found.IsMissing() {
			perr.Message = fmt.Sprintf("missing %s", found.Type())
		} else {
			perr.Message = "unexpected token"
		}
	}
	return perr
}

// Visitor is a function that visits AST nodes. Returning false stops the
// descent into the node's children.
type Visitor func(node *sitter.Node) bool

// Walk traverses the AST depth-first, calling visitor for each node.
func Walk(node *sitter.Node, visitor Visitor) {
	if node == nil {
		return
	}
	if !visitor(node) {
		return
	}
	for i := range int(node.ChildCount()) {
		Walk(node.Child(i), visitor)
	}
}

// GetNodeText extracts the source text for a node.
func GetNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}

// FunctionNode represents a declared function or method.
type FunctionNode struct {
	Name      string
	StartLine int
	EndLine   int
	Body      *sitter.Node
	Node      *sitter.Node
}

// FunctionNodeTypes returns the AST node types that declare functions in
// each grammar-backed language.
func FunctionNodeTypes(lang Language) []string {
	switch lang {
	case LangPython:
		return []string{"function_definition"}
	case LangJava:
		return []string{"method_declaration", "constructor_declaration"}
	case LangJavaScript:
		return []string{"function_declaration", "function", "function_expression", "generator_function_declaration", "method_definition"}
	default:
		return nil
	}
}

// LoopNodeTypes returns the AST node types for loop statements.
func LoopNodeTypes(lang Language) []string {
	switch lang {
	case LangPython:
		return []string{"for_statement", "while_statement"}
	case LangJava:
		return []string{"for_statement", "enhanced_for_statement", "while_statement", "do_statement"}
	case LangJavaScript:
		return []string{"for_statement", "for_in_statement", "while_statement", "do_statement"}
	default:
		return nil
	}
}

// GetFunctions extracts all named function declarations from parsed code.
// The end bound is the last source line of the declaration node, so size
// computed as end minus start is never negative. Anonymous functions are
// skipped; their bodies still belong to the innermost named enclosing
// function for call attribution.
func GetFunctions(result *ParseResult) []FunctionNode {
	funcTypes := make(map[string]bool)
	for _, ft := range FunctionNodeTypes(result.Language) {
		funcTypes[ft] = true
	}

	var functions []FunctionNode
	Walk(result.Tree.RootNode(), func(node *sitter.Node) bool {
		if funcTypes[node.Type()] {
			if fn := extractFunction(node, result.Source); fn != nil {
				functions = append(functions, *fn)
			}
		}
		return true
	})
	return functions
}

// extractFunction builds a FunctionNode, or nil for anonymous functions.
func extractFunction(node *sitter.Node, source []byte) *FunctionNode {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	fn := &FunctionNode{
		Name:      GetNodeText(nameNode, source),
		StartLine: int(node.StartPoint().Row) + 1,
		EndLine:   int(node.EndPoint().Row) + 1,
		Node:      node,
	}
	if fn.Name == "" {
		return nil
	}
	if fn.EndLine < fn.StartLine {
		fn.EndLine = fn.StartLine
	}

	fn.Body = node.ChildByFieldName("body")
	if fn.Body == nil {
		fn.Body = node.ChildByFieldName("block")
	}
	return fn
}
