package linker

import (
	"cmp"
	"go/ast"
	"slices"
	"strings"

	"featgraph/internal/graph"
)

// LinkTokens associates every token with exactly one owning AST node via
// ASSOCIATED_TOKEN. decls lists the variable declarations whose names
// are fixed up first (pass 1); the remaining tokens take their smallest
// enclosing AST_ELEMENT (pass 2).
func LinkTokens(g *graph.Graph, decls []Decl) {
	items := sortedItems(g)
	linked := make(map[*graph.Node]bool)
	index := make(map[*graph.Node]int, len(items))
	for i, n := range items {
		index[n] = i
	}

	for _, d := range decls {
		i, ok := index[d.Node]
		if !ok {
			continue
		}
		for _, name := range d.Names {
			tok := findNameToken(items[i+1:], d.Node.Span.End, name, linked)
			if tok == nil {
				continue
			}
			target := findLeaf(g, d.Node, name, false, true)
			if target == nil {
				target = d.Node
			}
			g.AddEdge(target, tok, graph.EdgeAssociatedToken)
			linked[tok] = true
		}
	}

	var open []*graph.Node
	for _, n := range items {
		if n.Kind == graph.KindASTElement {
			open = append(open, n)
			continue
		}
		if !n.Kind.IsToken() {
			continue
		}
		// Tokens are disjoint and sorted, so a node ending before this
		// token can contain no later token either.
		open = slices.DeleteFunc(open, func(a *graph.Node) bool { return a.Span.End < n.Span.End })
		if linked[n] {
			continue
		}
		owner := smallest(open)
		if owner == nil {
			owner = g.Root
		}
		if owner == nil {
			continue
		}
		target := owner
		if leaf := findLeaf(g, owner, n.Contents, true, false); leaf != nil {
			target = leaf
		}
		g.AddEdge(target, n, graph.EdgeAssociatedToken)
		linked[n] = true
	}
}

// Decl is a variable declaration node together with its declared names.
type Decl struct {
	Node  *graph.Node
	Names []string
}

// VariableDecls collects the var/const specs and fields of file that
// were imported into g.
func VariableDecls(g *graph.Graph, file *ast.File) []Decl {
	var out []Decl
	add := func(key ast.Node, names []*ast.Ident) {
		n := g.Lookup(key)
		if n == nil || len(names) == 0 {
			return
		}
		d := Decl{Node: n}
		for _, id := range names {
			d.Names = append(d.Names, id.Name)
		}
		out = append(out, d)
	}
	ast.Inspect(file, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.ValueSpec:
			add(n, n.Names)
		case *ast.Field:
			add(n, n.Names)
		}
		return true
	})
	return out
}

// sortedItems orders AST nodes and tokens with a source span by start
// offset, tokens after AST nodes at the same offset, then id.
func sortedItems(g *graph.Graph) []*graph.Node {
	var items []*graph.Node
	for _, n := range g.Nodes(graph.KindASTElement, graph.KindFakeAST, graph.KindToken, graph.KindIdentifierToken) {
		if n.Span.Valid() {
			items = append(items, n)
		}
	}
	slices.SortFunc(items, func(a, b *graph.Node) int {
		if c := cmp.Compare(a.Span.Start, b.Span.Start); c != 0 {
			return c
		}
		if a.Kind.IsToken() != b.Kind.IsToken() {
			if a.Kind.IsToken() {
				return 1
			}
			return -1
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return items
}

func findNameToken(items []*graph.Node, end int, name string, linked map[*graph.Node]bool) *graph.Node {
	for _, n := range items {
		if n.Span.Start >= end {
			return nil
		}
		if n.Kind == graph.KindIdentifierToken && n.Contents == name && !linked[n] {
			return n
		}
	}
	return nil
}

// smallest picks the node with the shortest span, preferring the most
// recently created on ties.
func smallest(nodes []*graph.Node) *graph.Node {
	var best *graph.Node
	for _, n := range nodes {
		if best == nil || n.Span.Len() < best.Span.Len() ||
			(n.Span.Len() == best.Span.Len() && n.ID > best.ID) {
			best = n
		}
	}
	return best
}

// findLeaf looks for an AST_LEAF with the given text under n's FAKE_AST
// children. With descend set it also looks inside identifier elements
// held there, which is where declared names live.
func findLeaf(g *graph.Graph, n *graph.Node, text string, fold, descend bool) *graph.Node {
	match := func(s string) bool {
		if fold {
			return strings.EqualFold(s, text)
		}
		return s == text
	}
	for _, holder := range g.Successors(n, graph.EdgeASTChild) {
		if holder.Kind != graph.KindFakeAST {
			continue
		}
		for _, c := range g.Successors(holder, graph.EdgeASTChild) {
			switch {
			case c.Kind == graph.KindASTLeaf && match(c.Contents):
				return c
			case descend && c.Kind == graph.KindASTElement && c.Contents == "IDENT":
				if leaf := findLeaf(g, c, text, fold, false); leaf != nil {
					return leaf
				}
			}
		}
	}
	return nil
}
