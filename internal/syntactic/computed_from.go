package syntactic

import (
	"go/ast"
	"go/token"

	"featgraph/internal/graph"
	"featgraph/internal/resolver"
)

// AddComputedFrom links every variable on the left of a plain assignment
// or initialized declaration to every variable on its right. Compound
// assignments such as += are not linked.
func AddComputedFrom(g *graph.Graph, u *resolver.Unit) int {
	n := 0
	link := func(lhs, rhs []*ast.Ident) {
		for _, l := range lhs {
			src := tokenOf(g, l)
			for _, r := range rhs {
				if g.AddEdge(src, tokenOf(g, r), graph.EdgeComputedFrom) != nil {
					n++
				}
			}
		}
	}
	ast.Inspect(u.File, func(node ast.Node) bool {
		switch node := node.(type) {
		case *ast.AssignStmt:
			if node.Tok == token.ASSIGN || node.Tok == token.DEFINE {
				link(collect(u, node.Lhs), collect(u, node.Rhs))
			}
		case *ast.ValueSpec:
			if len(node.Values) > 0 {
				var names []*ast.Ident
				for _, id := range node.Names {
					if u.Var(id) != nil {
						names = append(names, id)
					}
				}
				link(names, collect(u, node.Values))
			}
		}
		return true
	})
	return n
}

func collect(u *resolver.Unit, exprs []ast.Expr) []*ast.Ident {
	var out []*ast.Ident
	for _, e := range exprs {
		out = append(out, Identifiers(u, e)...)
	}
	return out
}
