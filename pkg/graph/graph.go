// Package graph builds the function dependency graph from an analysis
// result and renders it for export.
package graph

import (
	"fmt"
	"sort"

	gograph "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/amartel/scry/pkg/analysis"
)

// Graph is a directed function call graph. Nodes are declared functions,
// edges point from caller to callee with a weight equal to the number of
// call sites. Self-recursion is tracked separately because the simple graph
// rejects self-loops.
type Graph struct {
	directed *simple.DirectedGraph
	byName   map[string]*node
	order    []string
	selfLoop map[string]int
	edges    int
}

type node struct {
	id     int64
	name   string
	fanOut int
}

func (n *node) ID() int64     { return n.id }
func (n *node) DOTID() string { return n.name }

// Attributes colors the node by fan-out: leaves, moderate callers, and hubs
// each get their own fill.
func (n *node) Attributes() []encoding.Attribute {
	color := "skyblue"
	switch {
	case n.fanOut == 0:
		color = "palegreen"
	case n.fanOut > 2:
		color = "lightsalmon"
	}
	return []encoding.Attribute{
		{Key: "style", Value: "filled"},
		{Key: "fillcolor", Value: color},
	}
}

type edge struct {
	from, to *node
	count    int
}

func (e *edge) From() gograph.Node         { return e.from }
func (e *edge) To() gograph.Node           { return e.to }
func (e *edge) ReversedEdge() gograph.Edge { return &edge{from: e.to, to: e.from, count: e.count} }

func (e *edge) Attributes() []encoding.Attribute {
	if e.count <= 1 {
		return nil
	}
	return []encoding.Attribute{{Key: "label", Value: fmt.Sprintf("%d", e.count)}}
}

// FromResult builds the call graph from a result's dependency map. Only
// declared functions become nodes; calls to undeclared names (builtins,
// imports) are dropped.
func FromResult(res *analysis.Result) *Graph {
	g := &Graph{
		directed: simple.NewDirectedGraph(),
		byName:   make(map[string]*node),
		selfLoop: make(map[string]int),
	}

	order := res.FunctionOrder
	if order == nil {
		order = make([]string, 0, len(res.Dependencies))
		for name := range res.Dependencies {
			order = append(order, name)
		}
		sort.Strings(order)
	}

	for i, name := range order {
		n := &node{id: int64(i), name: name}
		g.byName[name] = n
		g.order = append(g.order, name)
		g.directed.AddNode(n)
	}

	for _, caller := range g.order {
		counts := make(map[string]int)
		for _, callee := range res.Dependencies[caller] {
			if _, declared := g.byName[callee]; declared {
				counts[callee]++
			}
		}
		from := g.byName[caller]
		for callee, count := range counts {
			if callee == caller {
				g.selfLoop[caller] = count
				continue
			}
			g.directed.SetEdge(&edge{from: from, to: g.byName[callee], count: count})
			g.edges += count
			from.fanOut++
		}
	}

	return g
}

// Nodes returns the function names in declaration order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// EdgeCount returns the number of resolved call sites between declared
// functions, self-recursion included.
func (g *Graph) EdgeCount() int {
	total := g.edges
	for _, c := range g.selfLoop {
		total += c
	}
	return total
}

// Callees returns the distinct declared functions a function calls, in
// name order, with self-recursion included.
func (g *Graph) Callees(name string) []string {
	n, ok := g.byName[name]
	if !ok {
		return nil
	}
	var out []string
	it := g.directed.From(n.ID())
	for it.Next() {
		out = append(out, it.Node().(*node).name)
	}
	if g.selfLoop[name] > 0 {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// FanIn returns the number of distinct declared callers of a function,
// ignoring self-recursion.
func (g *Graph) FanIn(name string) int {
	n, ok := g.byName[name]
	if !ok {
		return 0
	}
	count := 0
	it := g.directed.To(n.ID())
	for it.Next() {
		count++
	}
	return count
}

// Rank is a function paired with its PageRank score.
type Rank struct {
	Function string
	Score    float64
}

// Ranks scores every function by PageRank over the call graph, most
// depended-on first. Ties break on declaration order.
func (g *Graph) Ranks() []Rank {
	if len(g.order) == 0 {
		return nil
	}
	scores := network.PageRank(g.directed, 0.85, 1e-6)

	out := make([]Rank, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, Rank{Function: name, Score: scores[g.byName[name].id]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// Cycles returns the mutual recursion groups: strongly connected components
// with more than one member, plus single functions that call themselves.
// Members are in name order.
func (g *Graph) Cycles() [][]string {
	var out [][]string
	for _, scc := range topo.TarjanSCC(g.directed) {
		if len(scc) < 2 {
			continue
		}
		cycle := make([]string, 0, len(scc))
		for _, n := range scc {
			cycle = append(cycle, n.(*node).name)
		}
		sort.Strings(cycle)
		out = append(out, cycle)
	}
	for _, name := range g.order {
		if g.selfLoop[name] > 0 {
			out = append(out, []string{name})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i][0] < out[j][0]
	})
	return out
}

// DOT renders the graph in Graphviz DOT format. Self-recursion does not
// appear as an edge; it is listed by Cycles instead.
func (g *Graph) DOT() (string, error) {
	data, err := dot.Marshal(g.directed, "dependencies", "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to render dot: %w", err)
	}
	return string(data), nil
}
