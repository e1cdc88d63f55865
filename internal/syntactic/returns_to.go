package syntactic

import (
	"go/ast"

	"featgraph/internal/graph"
	"featgraph/internal/resolver"
)

// AddReturnsTo links the variables returned by each function to the
// function itself, across all of its return statements. Returns inside
// a nested literal belong to that literal.
func AddReturnsTo(g *graph.Graph, u *resolver.Unit) int {
	n := 0
	for _, fn := range u.Functions() {
		target := g.Lookup(fn.Node)
		if target == nil {
			continue
		}
		ast.Inspect(fn.Body, func(node ast.Node) bool {
			switch node := node.(type) {
			case *ast.FuncLit:
				return false
			case *ast.ReturnStmt:
				for _, id := range collect(u, node.Results) {
					if g.AddEdge(tokenOf(g, id), target, graph.EdgeReturnsTo) != nil {
						n++
					}
				}
			}
			return true
		})
	}
	return n
}
