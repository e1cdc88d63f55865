package extractor

import (
	"go/ast"
	"go/types"

	"featgraph/internal/fault"
	"featgraph/internal/graph"
	"featgraph/internal/resolver"
)

// ASTImporter walks a resolved file top-down and emits its structural
// nodes: one AST_ELEMENT per syntax node, FAKE_AST holders for sequence
// and scalar slots, and AST_LEAF values.
type ASTImporter struct {
	g *graph.Graph
	u *resolver.Unit
}

// AddAST imports the unit's syntax tree into g. The first node becomes
// the graph root.
func AddAST(g *graph.Graph, u *resolver.Unit) error {
	imp := &ASTImporter{g: g, u: u}
	return imp.visit(u.File, nil)
}

func (imp *ASTImporter) visit(n ast.Node, parent *graph.Node) error {
	if imp.synthetic(n) {
		return nil
	}
	kind, slots, err := schemaOf(n)
	if err != nil {
		return err
	}

	node, created := imp.g.NodeFor(n, graph.KindASTElement, kind, imp.span(n))
	if !created {
		// Shared sub-tree already imported under its first parent.
		return nil
	}
	if parent == nil {
		imp.g.Root = node
	} else {
		imp.g.AddEdge(parent, node, graph.EdgeASTChild)
	}

	for _, s := range slots {
		switch s.shape {
		case shapeNone:
		case shapeSingle:
			if err := imp.visit(s.node, node); err != nil {
				return err
			}
		case shapeSeq:
			if err := imp.visitSeq(s, node); err != nil {
				return err
			}
		case shapeScalar:
			holder := imp.g.NewNode(graph.KindFakeAST, s.name, graph.NoSpan)
			imp.g.AddEdge(node, holder, graph.EdgeASTChild)
			leaf := imp.g.NewNode(graph.KindASTLeaf, s.value, graph.NoSpan)
			imp.g.AddEdge(holder, leaf, graph.EdgeASTChild)
		default:
			return fault.Newf(fault.KindUnsupportedShape, "import", "slot %s of %s has shape %d", s.name, kind, s.shape)
		}
	}
	return nil
}

func (imp *ASTImporter) visitSeq(s slot, parent *graph.Node) error {
	span := graph.NoSpan
	for _, child := range s.nodes {
		if child == nil {
			return fault.Newf(fault.KindUnsupportedShape, "import", "sequence %s holds a nil element", s.name)
		}
		if imp.synthetic(child) {
			continue
		}
		cs := imp.span(child)
		if !span.Valid() {
			span.Start = cs.Start
		}
		span.End = cs.End
	}

	holder := imp.g.NewNode(graph.KindFakeAST, s.name, span)
	imp.g.AddEdge(parent, holder, graph.EdgeASTChild)
	for _, child := range s.nodes {
		if err := imp.visit(child, holder); err != nil {
			return err
		}
	}
	return nil
}

func (imp *ASTImporter) span(n ast.Node) graph.Span {
	start, end := imp.u.Offset(n.Pos()), imp.u.Offset(n.End())
	if start < 0 || end < start {
		return graph.NoSpan
	}
	return graph.Span{Start: start, End: end}
}

// synthetic reports nodes that have no source text of their own: nodes
// without a position, and declarations whose resolved object the type
// checker created without one.
func (imp *ASTImporter) synthetic(n ast.Node) bool {
	if !n.Pos().IsValid() || imp.u.Offset(n.Pos()) < 0 {
		return true
	}
	var name *ast.Ident
	switch d := n.(type) {
	case *ast.FuncDecl:
		name = d.Name
	case *ast.TypeSpec:
		name = d.Name
	default:
		return false
	}
	obj := imp.u.Info.Defs[name]
	return obj != nil && !declaredInSource(obj)
}

func declaredInSource(obj types.Object) bool {
	return obj.Pos().IsValid()
}
