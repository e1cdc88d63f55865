package syntactic

import (
	"go/ast"

	"featgraph/internal/graph"
	"featgraph/internal/resolver"
)

// AddGuardedBy links the variables used in each branch of an if
// statement to its condition: GUARDED_BY for the then branch and
// GUARDED_BY_NEGATION for the else branch.
func AddGuardedBy(g *graph.Graph, u *resolver.Unit) int {
	n := 0
	guard := func(branch ast.Stmt, cond *graph.Node, kind graph.EdgeKind) {
		if branch == nil {
			return
		}
		for _, id := range Identifiers(u, branch) {
			if g.AddEdge(tokenOf(g, id), cond, kind) != nil {
				n++
			}
		}
	}
	ast.Inspect(u.File, func(node ast.Node) bool {
		ifs, ok := node.(*ast.IfStmt)
		if !ok {
			return true
		}
		cond := g.Lookup(ifs.Cond)
		if cond == nil {
			return true
		}
		guard(ifs.Body, cond, graph.EdgeGuardedBy)
		guard(ifs.Else, cond, graph.EdgeGuardedByNegation)
		return true
	})
	return n
}
