package syntactic

import (
	"go/ast"
	"go/types"

	"featgraph/internal/graph"
	"featgraph/internal/resolver"
)

// AddLastLexicalUse chains the occurrences of each variable in source
// order, declaration included. Occurrences inside function literals take
// part in their enclosing chain.
func AddLastLexicalUse(g *graph.Graph, u *resolver.Unit) int {
	last := make(map[*types.Var]*graph.Node)
	n := 0
	ast.Inspect(u.File, func(node ast.Node) bool {
		id, ok := node.(*ast.Ident)
		if !ok {
			return true
		}
		v := u.Var(id)
		if v == nil {
			return true
		}
		tok := tokenOf(g, id)
		if tok == nil {
			return true
		}
		if prev, ok := last[v]; ok && g.AddEdge(prev, tok, graph.EdgeLastLexicalUse) != nil {
			n++
		}
		last[v] = tok
		return true
	})
	return n
}
