package analysis

import (
	"sort"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/amartel/scry/pkg/parser"
)

// extractedFunction is the structural view of one declared function before
// aggregation.
type extractedFunction struct {
	name         string
	startLine    int
	endLine      int
	complexity   int
	maxLoopDepth int
}

// extraction is the language-independent structural representation consumed
// by the metrics aggregator.
type extraction struct {
	functions     []extractedFunction
	loops         []Loop
	dependencies  map[string][]string
	functionOrder []string

	defined map[string]bool
	called  map[string]bool

	trackVariables bool
	assigned       map[string]bool
	read           map[string]bool
}

func newExtraction() *extraction {
	return &extraction{
		functions:    make([]extractedFunction, 0),
		loops:        make([]Loop, 0),
		dependencies: make(map[string][]string),
		defined:      make(map[string]bool),
		called:       make(map[string]bool),
		assigned:     make(map[string]bool),
		read:         make(map[string]bool),
	}
}

// unusedVariables returns assigned-but-never-read names, sorted. Only the
// Python path tracks variable references; other languages report none.
func (e *extraction) unusedVariables() []string {
	out := []string{}
	if !e.trackVariables {
		return out
	}
	for name := range e.assigned {
		if !e.read[name] {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// unusedFunctions returns declared functions whose name never appears as a
// call target, sorted. A call from a function to itself does not count as
// use, and the program entry point gets no exemption.
func (e *extraction) unusedFunctions() []string {
	out := []string{}
	for name := range e.defined {
		if !e.called[name] {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// extract builds the structural representation from a parsed tree.
func extract(parsed *parser.ParseResult) *extraction {
	ext := newExtraction()
	root := parsed.Tree.RootNode()

	loops := &loopVisitor{loopTypes: typeSet(parser.LoopNodeTypes(parsed.Language))}
	loops.walk(root)
	ext.loops = loops.loops

	for _, fn := range parser.GetFunctions(parsed) {
		ext.defined[fn.Name] = true

		ef := extractedFunction{
			name:       fn.Name,
			startLine:  fn.StartLine,
			endLine:    fn.EndLine,
			complexity: 1,
		}
		if fn.Body != nil {
			ef.complexity += countDecisionPoints(fn.Body, parsed.Source, parsed.Language)

			bodyLoops := &loopVisitor{loopTypes: loops.loopTypes}
			bodyLoops.walk(fn.Body)
			ef.maxLoopDepth = bodyLoops.maxDepth
		}
		ext.functions = append(ext.functions, ef)
	}

	calls := &callVisitor{
		lang:      parsed.Language,
		source:    parsed.Source,
		funcTypes: typeSet(parser.FunctionNodeTypes(parsed.Language)),
		deps:      ext.dependencies,
		called:    ext.called,
	}
	calls.walk(root)
	ext.functionOrder = calls.order

	if parsed.Language == parser.LangPython {
		ext.trackVariables = true
		usage := &usageVisitor{source: parsed.Source, skip: make(map[uint32]bool)}
		usage.collectTargets(root)
		usage.collectReads(root)
		ext.assigned = usage.assigned
		ext.read = usage.read
	}

	return ext
}

func typeSet(types []string) map[string]bool {
	set := make(map[string]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	return set
}

// loopVisitor walks a subtree recording every loop statement with its
// nesting depth. Depth increments on entry to a loop node and decrements on
// exit, so sibling loops do not inflate each other.
type loopVisitor struct {
	loopTypes map[string]bool
	depth     int
	maxDepth  int
	loops     []Loop
}

func (v *loopVisitor) walk(node *sitter.Node) {
	if node == nil {
		return
	}
	if v.loopTypes[node.Type()] {
		v.depth++
		if v.depth > v.maxDepth {
			v.maxDepth = v.depth
		}
		v.loops = append(v.loops, Loop{Line: int(node.StartPoint().Row) + 1, Depth: v.depth})
		for i := range int(node.ChildCount()) {
			v.walk(node.Child(i))
		}
		v.depth--
		return
	}
	for i := range int(node.ChildCount()) {
		v.walk(node.Child(i))
	}
}

// callVisitor attributes call sites to their innermost enclosing named
// function. Module-level calls produce no dependency edge but still mark the
// callee as used.
type callVisitor struct {
	lang      parser.Language
	source    []byte
	funcTypes map[string]bool
	stack     []string
	deps      map[string][]string
	order     []string
	called    map[string]bool
}

func (v *callVisitor) walk(node *sitter.Node) {
	if node == nil {
		return
	}

	pushed := false
	if v.funcTypes[node.Type()] {
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			name := parser.GetNodeText(nameNode, v.source)
			if name != "" {
				if _, seen := v.deps[name]; !seen {
					v.deps[name] = []string{}
					v.order = append(v.order, name)
				}
				v.stack = append(v.stack, name)
				pushed = true
			}
		}
	}

	if callee := calleeName(node, v.lang, v.source); callee != "" {
		if n := len(v.stack); n > 0 {
			enclosing := v.stack[n-1]
			v.deps[enclosing] = append(v.deps[enclosing], callee)
			if callee != enclosing {
				v.called[callee] = true
			}
		} else {
			v.called[callee] = true
		}
	}

	for i := range int(node.ChildCount()) {
		v.walk(node.Child(i))
	}
	if pushed {
		v.stack = v.stack[:len(v.stack)-1]
	}
}

// calleeName extracts the simple name of a call target, or "" when the node
// is not a call the engine attributes. Python and JavaScript attribute plain
// identifier calls; Java uses the method_invocation name and ignores the
// receiver.
func calleeName(node *sitter.Node, lang parser.Language, source []byte) string {
	switch lang {
	case parser.LangPython:
		if node.Type() != "call" {
			return ""
		}
		fn := node.ChildByFieldName("function")
		if fn == nil || fn.Type() != "identifier" {
			return ""
		}
		return parser.GetNodeText(fn, source)
	case parser.LangJavaScript:
		if node.Type() != "call_expression" {
			return ""
		}
		fn := node.ChildByFieldName("function")
		if fn == nil || fn.Type() != "identifier" {
			return ""
		}
		return parser.GetNodeText(fn, source)
	case parser.LangJava:
		if node.Type() != "method_invocation" {
			return ""
		}
		return parser.GetNodeText(node.ChildByFieldName("name"), source)
	default:
		return ""
	}
}

// countDecisionPoints counts branch constructs for cyclomatic complexity:
// one per conditional, loop, case, catch, or ternary node, plus one per
// short-circuit boolean operator.
func countDecisionPoints(body *sitter.Node, source []byte, lang parser.Language) int {
	decisions := typeSet(decisionNodeTypes(lang))

	count := 0
	parser.Walk(body, func(node *sitter.Node) bool {
		t := node.Type()
		if decisions[t] {
			count++
		}
		if t == "binary_expression" || t == "boolean_operator" {
			if op := operatorOf(node, source); op == "&&" || op == "||" || op == "and" || op == "or" {
				count++
			}
		}
		return true
	})
	return count
}

// decisionNodeTypes returns the AST node types that count as decision points.
func decisionNodeTypes(lang parser.Language) []string {
	switch lang {
	case parser.LangPython:
		return []string{
			"if_statement", "elif_clause",
			"for_statement", "while_statement",
			"except_clause", "case_clause",
			"conditional_expression",
			"list_comprehension", "set_comprehension",
			"dictionary_comprehension", "generator_expression",
		}
	case parser.LangJava:
		return []string{
			"if_statement",
			"for_statement", "enhanced_for_statement",
			"while_statement", "do_statement",
			"catch_clause", "ternary_expression",
			"switch_block_statement_group", "switch_rule",
		}
	case parser.LangJavaScript:
		return []string{
			"if_statement",
			"for_statement", "for_in_statement",
			"while_statement", "do_statement",
			"switch_case", "catch_clause",
			"ternary_expression",
		}
	default:
		return nil
	}
}

// operatorOf returns the operator token of a binary/boolean expression.
func operatorOf(node *sitter.Node, source []byte) string {
	if op := node.ChildByFieldName("operator"); op != nil {
		return parser.GetNodeText(op, source)
	}
	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		switch child.Type() {
		case "&&", "||", "and", "or":
			return child.Type()
		}
	}
	return ""
}

// usageVisitor tracks Python variable writes and reads at whole-file
// granularity, without shadowing awareness. An identifier is a read unless
// it sits in a store or declaration position.
type usageVisitor struct {
	source   []byte
	assigned map[string]bool
	read     map[string]bool
	skip     map[uint32]bool
}

// collectTargets records assignment targets and every identifier position
// that must not count as a read.
func (v *usageVisitor) collectTargets(root *sitter.Node) {
	v.assigned = make(map[string]bool)
	v.read = make(map[string]bool)

	parser.Walk(root, func(node *sitter.Node) bool {
		switch node.Type() {
		case "assignment":
			if left := node.ChildByFieldName("left"); left != nil {
				if left.Type() == "identifier" {
					v.assigned[parser.GetNodeText(left, v.source)] = true
				}
				v.skipIdentifiers(left)
			}
		case "augmented_assignment":
			if left := node.ChildByFieldName("left"); left != nil {
				v.skipIdentifiers(left)
			}
		case "for_statement":
			v.skipIdentifiers(node.ChildByFieldName("left"))
		case "function_definition", "class_definition":
			if name := node.ChildByFieldName("name"); name != nil {
				v.skip[name.StartByte()] = true
			}
			v.skipParameterNames(node.ChildByFieldName("parameters"))
		case "keyword_argument":
			if name := node.ChildByFieldName("name"); name != nil {
				v.skip[name.StartByte()] = true
			}
		case "attribute":
			if attr := node.ChildByFieldName("attribute"); attr != nil {
				v.skip[attr.StartByte()] = true
			}
		case "as_pattern":
			v.skipIdentifiers(node.ChildByFieldName("alias"))
		case "import_statement", "import_from_statement", "global_statement", "nonlocal_statement":
			v.skipIdentifiers(node)
			return false
		}
		return true
	})
}

// collectReads records every identifier occurrence outside a skipped
// position as a read reference.
func (v *usageVisitor) collectReads(root *sitter.Node) {
	parser.Walk(root, func(node *sitter.Node) bool {
		if node.Type() == "identifier" && !v.skip[node.StartByte()] {
			v.read[parser.GetNodeText(node, v.source)] = true
		}
		return true
	})
}

// skipParameterNames marks parameter name identifiers as non-reads while
// leaving default-value expressions readable.
func (v *usageVisitor) skipParameterNames(params *sitter.Node) {
	if params == nil {
		return
	}
	for i := range int(params.ChildCount()) {
		p := params.Child(i)
		switch p.Type() {
		case "identifier":
			v.skip[p.StartByte()] = true
		case "default_parameter", "typed_default_parameter", "typed_parameter", "keyword_separator":
			if name := p.ChildByFieldName("name"); name != nil {
				v.skip[name.StartByte()] = true
			} else if p.ChildCount() > 0 && p.Child(0).Type() == "identifier" {
				v.skip[p.Child(0).StartByte()] = true
			}
		case "list_splat_pattern", "dictionary_splat_pattern":
			v.skipIdentifiers(p)
		}
	}
}

// skipIdentifiers marks every identifier in the subtree as a non-read.
func (v *usageVisitor) skipIdentifiers(node *sitter.Node) {
	if node == nil {
		return
	}
	parser.Walk(node, func(n *sitter.Node) bool {
		if n.Type() == "identifier" {
			v.skip[n.StartByte()] = true
		}
		return true
	})
}
