package finalize

import (
	"fmt"
	"go/ast"

	"featgraph/internal/fault"
	"featgraph/internal/graph"
	"featgraph/internal/resolver"
)

// Check validates the finished graph: the AST tree, the token path, the
// token ownership, the comment links, and that every identifier with a
// resolved object carries a symbol. The first violation is returned as
// a StructuralViolation.
func Check(g *graph.Graph, u *resolver.Unit) error {
	for _, check := range []func(*graph.Graph) error{
		graph.CheckTree,
		graph.CheckTokenPath,
		graph.CheckTokenAssociation,
		checkComments,
	} {
		if err := check(g); err != nil {
			return fault.New(fault.KindStructuralViolation, "check", err).WithUnit(g.SourceFile)
		}
	}
	if u != nil {
		if err := checkSymbols(g, u); err != nil {
			return fault.New(fault.KindStructuralViolation, "check", err).WithUnit(g.SourceFile)
		}
	}
	return nil
}

func checkComments(g *graph.Graph) error {
	for _, c := range g.Nodes(graph.KindCommentLine, graph.KindCommentBlock, graph.KindCommentDoc) {
		if n := len(g.OutEdges(c, graph.EdgeComment)); n != 1 {
			return fmt.Errorf("comment %d has %d targets", c.ID, n)
		}
	}
	return nil
}

func checkSymbols(g *graph.Graph, u *resolver.Unit) error {
	var err error
	ast.Inspect(u.File, func(n ast.Node) bool {
		if err != nil {
			return false
		}
		id, ok := n.(*ast.Ident)
		if !ok || id.Name == "_" || u.ObjectOf(id) == nil {
			return true
		}
		node := g.Lookup(id)
		if node == nil {
			return true
		}
		tok := g.IdentifierToken(node)
		if tok == nil {
			err = fmt.Errorf("identifier %q at offset %d has no token", id.Name, u.Offset(id.Pos()))
			return false
		}
		if len(g.Predecessors(tok, graph.EdgeAssociatedSymbol)) == 0 {
			err = fmt.Errorf("identifier token %d %q has no symbol", tok.ID, tok.Contents)
			return false
		}
		return true
	})
	return err
}
