package finalize

import (
	"cmp"
	"slices"

	"featgraph/internal/graph"
)

// AssociateComments refines the provisional comment-to-token links. A
// comment ending on the line its token starts keeps the link; any other
// comment moves to the AST element starting closest after it, preferring
// the widest element at that offset so a doc comment lands on the whole
// declaration. It returns the number of re-pointed edges.
func AssociateComments(g *graph.Graph) int {
	var elems []*graph.Node
	for _, n := range g.Nodes(graph.KindASTElement) {
		if n.Span.Valid() {
			elems = append(elems, n)
		}
	}
	slices.SortFunc(elems, func(a, b *graph.Node) int {
		if c := cmp.Compare(a.Span.Start, b.Span.Start); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Span.Len(), a.Span.Len()); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	moved := 0
	for _, e := range g.Edges(graph.EdgeComment) {
		comment, tok := e.Source, e.Dest
		if comment.EndLine >= 0 && comment.EndLine == tok.StartLine {
			continue
		}
		i, _ := slices.BinarySearchFunc(elems, comment.Span.End, func(n *graph.Node, end int) int {
			return cmp.Compare(n.Span.Start, end)
		})
		if i == len(elems) {
			continue
		}
		if target := elems[i]; target != tok {
			g.ReplaceEdgeDest(e, target)
			moved++
		}
	}
	return moved
}
