package semantic

import (
	"go/ast"
	"go/types"

	"featgraph/internal/graph"
	"featgraph/internal/resolver"
)

// SymbolKind maps a resolved object to its symbol node kind.
func SymbolKind(obj types.Object) graph.NodeKind {
	switch obj.(type) {
	case *types.Var:
		return graph.KindSymbolVar
	case *types.Func:
		return graph.KindSymbolMethod
	case *types.TypeName:
		return graph.KindSymbolType
	default:
		return graph.KindSymbol
	}
}

// AddSymbols mints one symbol node per resolved declaration and links it
// to the identifier tokens naming it. It returns the number of links.
func AddSymbols(g *graph.Graph, u *resolver.Unit) int {
	namer := NewNamer(u)
	links := 0
	ast.Inspect(u.File, func(n ast.Node) bool {
		id, ok := n.(*ast.Ident)
		if !ok {
			return true
		}
		obj := u.ObjectOf(id)
		if obj == nil {
			return true
		}
		tok := g.IdentifierToken(g.Lookup(id))
		if tok == nil {
			return true
		}
		sym, _ := g.NodeFor(obj, SymbolKind(obj), namer.Name(obj), graph.NoSpan)
		if g.HasEdge(sym, tok, graph.EdgeAssociatedSymbol) {
			return true
		}
		g.AddEdge(sym, tok, graph.EdgeAssociatedSymbol)
		links++
		return true
	})
	return links
}
