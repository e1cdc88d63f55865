package syntactic

import (
	"go/ast"
	"go/types"

	"featgraph/internal/graph"
	"featgraph/internal/resolver"
)

// Identifiers collects, in source order, the identifiers under n that
// refer to variables. Field names, including composite literal keys,
// and function literal bodies are left out.
func Identifiers(u *resolver.Unit, n ast.Node) []*ast.Ident {
	if n == nil {
		return nil
	}
	var out []*ast.Ident
	ast.Inspect(n, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.FuncLit:
			return false
		case *ast.SelectorExpr:
			// Package-qualified variables are still variables.
			if id := n.Sel; u.Var(id) != nil && isPackageRef(u, n.X) {
				out = append(out, id)
			}
			out = append(out, Identifiers(u, n.X)...)
			return false
		case *ast.Ident:
			if u.Var(n) != nil {
				out = append(out, n)
			}
		}
		return true
	})
	return out
}

func isPackageRef(u *resolver.Unit, x ast.Expr) bool {
	id, ok := x.(*ast.Ident)
	if !ok {
		return false
	}
	_, ok = u.Info.Uses[id].(*types.PkgName)
	return ok
}

// tokenOf returns the identifier token for a syntax node, or nil when
// the node did not survive into the graph.
func tokenOf(g *graph.Graph, n ast.Node) *graph.Node {
	return g.IdentifierToken(g.Lookup(n))
}

// Scanner is one syntactic edge pass.
type Scanner struct {
	Name string
	Run  func(g *graph.Graph, u *resolver.Unit) int
}

// Scanners lists every pass in the order the builder runs them.
func Scanners() []Scanner {
	return []Scanner{
		{Name: "ComputedFrom", Run: AddComputedFrom},
		{Name: "FormalArgName", Run: AddFormalArgNames},
		{Name: "GuardedBy", Run: AddGuardedBy},
		{Name: "LastLexicalUse", Run: AddLastLexicalUse},
		{Name: "ReturnsTo", Run: AddReturnsTo},
	}
}
