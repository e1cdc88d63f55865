package graph

import (
	"go/token"
	"slices"
)

// Node represents a vertex in the feature graph.
type Node struct {
	ID        int
	Kind      NodeKind
	Contents  string
	Span      Span
	StartLine int
	EndLine   int
}

// Edge represents a directed, typed relationship between two nodes.
// Parallel edges and self-loops are allowed.
type Edge struct {
	Source *Node
	Dest   *Node
	Kind   EdgeKind

	removed bool
}

// Graph owns every node and edge built for one source unit.
type Graph struct {
	SourceFile string
	Root       *Node
	FirstToken *Node

	file  *token.File
	nodes []*Node // indexed by ID; nil once removed
	edges []*Edge
	out   [][]*Edge
	in    [][]*Edge
	live  int

	// byKey maps an underlying identity (ast.Node, types.Object) to its node.
	byKey map[any]*Node
}

// NewGraph creates an empty graph. file is used to derive line numbers
// and may be nil.
func NewGraph(sourceFile string, file *token.File) *Graph {
	return &Graph{
		SourceFile: sourceFile,
		file:       file,
		byKey:      make(map[any]*Node),
	}
}

// NewNode always creates a fresh node.
func (g *Graph) NewNode(kind NodeKind, contents string, span Span) *Node {
	n := &Node{
		ID:        len(g.nodes),
		Kind:      kind,
		Contents:  contents,
		Span:      span,
		StartLine: g.line(span.Start),
		EndLine:   g.line(span.End),
	}
	if !span.Valid() {
		n.Span = NoSpan
		n.StartLine, n.EndLine = -1, -1
	}
	g.nodes = append(g.nodes, n)
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	g.live++
	return n
}

// NodeFor returns the node registered for key, creating it on first use.
// The second result reports whether the node was created by this call.
func (g *Graph) NodeFor(key any, kind NodeKind, contents string, span Span) (*Node, bool) {
	if n, ok := g.byKey[key]; ok {
		return n, false
	}
	n := g.NewNode(kind, contents, span)
	g.byKey[key] = n
	return n, true
}

// Lookup returns the live node registered for key, or nil.
func (g *Graph) Lookup(key any) *Node {
	n, ok := g.byKey[key]
	if !ok || !g.Has(n) {
		return nil
	}
	return n
}

// Has reports whether n is a live node of g.
func (g *Graph) Has(n *Node) bool {
	return n != nil && n.ID < len(g.nodes) && g.nodes[n.ID] == n
}

// Node returns the live node with the given ID, or nil.
func (g *Graph) Node(id int) *Node {
	if id < 0 || id >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}

// NodeCount returns the number of live nodes.
func (g *Graph) NodeCount() int {
	return g.live
}

// AddEdge records a new edge. Nothing is recorded when either end is
// missing from the graph.
func (g *Graph) AddEdge(src, dst *Node, kind EdgeKind) *Edge {
	if !g.Has(src) || !g.Has(dst) {
		return nil
	}
	e := &Edge{Source: src, Dest: dst, Kind: kind}
	g.edges = append(g.edges, e)
	g.out[src.ID] = append(g.out[src.ID], e)
	g.in[dst.ID] = append(g.in[dst.ID], e)
	return e
}

// HasEdge reports whether at least one edge of kind joins src to dst.
func (g *Graph) HasEdge(src, dst *Node, kind EdgeKind) bool {
	if !g.Has(src) {
		return false
	}
	for _, e := range g.out[src.ID] {
		if e.Dest == dst && e.Kind == kind {
			return true
		}
	}
	return false
}

// RemoveEdge deletes a single edge.
func (g *Graph) RemoveEdge(e *Edge) {
	if e == nil || e.removed {
		return
	}
	e.removed = true
	g.out[e.Source.ID] = deleteEdge(g.out[e.Source.ID], e)
	g.in[e.Dest.ID] = deleteEdge(g.in[e.Dest.ID], e)
}

// ReplaceEdgeDest re-points e at dst, keeping its source and kind.
func (g *Graph) ReplaceEdgeDest(e *Edge, dst *Node) *Edge {
	if e == nil || e.removed || !g.Has(dst) {
		return e
	}
	src, kind := e.Source, e.Kind
	g.RemoveEdge(e)
	return g.AddEdge(src, dst, kind)
}

// RemoveNode deletes n together with all incident edges.
func (g *Graph) RemoveNode(n *Node) {
	if !g.Has(n) {
		return
	}
	for _, e := range slices.Clone(g.out[n.ID]) {
		g.RemoveEdge(e)
	}
	for _, e := range slices.Clone(g.in[n.ID]) {
		g.RemoveEdge(e)
	}
	g.nodes[n.ID] = nil
	g.live--
	if g.Root == n {
		g.Root = nil
	}
	if g.FirstToken == n {
		g.FirstToken = nil
	}
}

// Nodes returns live nodes of the given kinds (all kinds when none are
// given) in ID order.
func (g *Graph) Nodes(kinds ...NodeKind) []*Node {
	var out []*Node
	for _, n := range g.nodes {
		if n == nil {
			continue
		}
		if len(kinds) == 0 || slices.Contains(kinds, n.Kind) {
			out = append(out, n)
		}
	}
	return out
}

// Edges returns live edges of the given kinds in insertion order.
func (g *Graph) Edges(kinds ...EdgeKind) []*Edge {
	var out []*Edge
	for _, e := range g.edges {
		if e.removed {
			continue
		}
		if len(kinds) == 0 || slices.Contains(kinds, e.Kind) {
			out = append(out, e)
		}
	}
	return out
}

// OutEdges returns the outgoing edges of n filtered by kind.
func (g *Graph) OutEdges(n *Node, kinds ...EdgeKind) []*Edge {
	if !g.Has(n) {
		return nil
	}
	return filterEdges(g.out[n.ID], kinds)
}

// InEdges returns the incoming edges of n filtered by kind.
func (g *Graph) InEdges(n *Node, kinds ...EdgeKind) []*Edge {
	if !g.Has(n) {
		return nil
	}
	return filterEdges(g.in[n.ID], kinds)
}

// Successors returns the destinations of n's outgoing edges of the given
// kinds. A node appears once per connecting edge.
func (g *Graph) Successors(n *Node, kinds ...EdgeKind) []*Node {
	edges := g.OutEdges(n, kinds...)
	out := make([]*Node, 0, len(edges))
	for _, e := range edges {
		out = append(out, e.Dest)
	}
	return out
}

// Predecessors returns the sources of n's incoming edges of the given kinds.
func (g *Graph) Predecessors(n *Node, kinds ...EdgeKind) []*Node {
	edges := g.InEdges(n, kinds...)
	out := make([]*Node, 0, len(edges))
	for _, e := range edges {
		out = append(out, e.Source)
	}
	return out
}

// OutDegree counts every outgoing edge of n regardless of kind.
func (g *Graph) OutDegree(n *Node) int {
	if !g.Has(n) {
		return 0
	}
	return len(g.out[n.ID])
}

// IdentifierToken finds the nearest IDENTIFIER_TOKEN reachable from n by
// breadth-first search over AST_CHILD and ASSOCIATED_TOKEN edges.
func (g *Graph) IdentifierToken(n *Node) *Node {
	if !g.Has(n) {
		return nil
	}
	if n.Kind == KindIdentifierToken {
		return n
	}
	seen := map[*Node]bool{n: true}
	queue := []*Node{n}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.Successors(cur, EdgeASTChild, EdgeAssociatedToken) {
			if seen[next] {
				continue
			}
			if next.Kind == KindIdentifierToken {
				return next
			}
			seen[next] = true
			queue = append(queue, next)
		}
	}
	return nil
}

func (g *Graph) line(offset int) int {
	if g.file == nil || offset < 0 || offset > g.file.Size() {
		return -1
	}
	return g.file.Line(g.file.Pos(offset))
}

func filterEdges(edges []*Edge, kinds []EdgeKind) []*Edge {
	if len(kinds) == 0 {
		return slices.Clone(edges)
	}
	var out []*Edge
	for _, e := range edges {
		if slices.Contains(kinds, e.Kind) {
			out = append(out, e)
		}
	}
	return out
}

func deleteEdge(edges []*Edge, e *Edge) []*Edge {
	if i := slices.Index(edges, e); i >= 0 {
		return slices.Delete(edges, i, i+1)
	}
	return edges
}
