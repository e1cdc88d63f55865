package linker

import "featgraph/internal/graph"

// Prune repeatedly deletes AST_ELEMENT and FAKE_AST nodes without any
// outgoing edge until none remain. It returns the number of nodes removed.
func Prune(g *graph.Graph) int {
	var queue []*graph.Node
	for _, n := range g.Nodes(graph.KindASTElement, graph.KindFakeAST) {
		if g.OutDegree(n) == 0 {
			queue = append(queue, n)
		}
	}

	removed := 0
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if !g.Has(n) || g.OutDegree(n) != 0 {
			continue
		}
		parents := g.Predecessors(n, graph.EdgeASTChild)
		g.RemoveNode(n)
		removed++
		for _, p := range parents {
			if p.Kind.IsStructural() && g.OutDegree(p) == 0 {
				queue = append(queue, p)
			}
		}
	}
	return removed
}
