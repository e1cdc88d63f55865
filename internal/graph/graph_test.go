package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_NodeFor(t *testing.T) {
	g := NewGraph("a.go", nil)

	key := struct{ name string }{"x"}
	first, created := g.NodeFor(key, KindASTElement, "IDENT", Span{Start: 0, End: 1})
	require.True(t, created)

	again, created := g.NodeFor(key, KindASTElement, "OTHER", Span{Start: 5, End: 6})
	assert.False(t, created)
	assert.Same(t, first, again)
	assert.Equal(t, "IDENT", again.Contents)
	assert.Equal(t, 1, g.NodeCount())
}

func TestGraph_Edges(t *testing.T) {
	g := NewGraph("a.go", nil)
	a := g.NewNode(KindASTElement, "A", NoSpan)
	b := g.NewNode(KindASTElement, "B", NoSpan)

	t.Run("Parallel edges and self loops", func(t *testing.T) {
		g.AddEdge(a, b, EdgeLastWrite)
		g.AddEdge(a, b, EdgeLastWrite)
		g.AddEdge(a, a, EdgeLastUse)

		assert.Len(t, g.Successors(a, EdgeLastWrite), 2)
		assert.Len(t, g.Successors(a, EdgeLastUse), 1)
		assert.Len(t, g.Successors(a), 3)
		assert.Len(t, g.Predecessors(b), 2)
		assert.True(t, g.HasEdge(a, a, EdgeLastUse))
	})

	t.Run("Replace destination", func(t *testing.T) {
		c := g.NewNode(KindASTElement, "C", NoSpan)
		e := g.AddEdge(a, b, EdgeComment)
		moved := g.ReplaceEdgeDest(e, c)
		assert.Equal(t, c, moved.Dest)
		assert.False(t, g.HasEdge(a, b, EdgeComment))
		assert.True(t, g.HasEdge(a, c, EdgeComment))
	})

	t.Run("Remove node drops incident edges", func(t *testing.T) {
		g.RemoveNode(b)
		assert.False(t, g.Has(b))
		assert.Empty(t, g.Successors(a, EdgeLastWrite))
		assert.Nil(t, g.AddEdge(a, b, EdgeLastWrite))
		for _, e := range g.Edges() {
			assert.NotEqual(t, b, e.Dest)
		}
	})
}

func TestGraph_KindsRoundTrip(t *testing.T) {
	for _, k := range EdgeKinds() {
		parsed, err := ParseEdgeKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	parsed, err := ParseNodeKind("SYMBOL_VAR")
	require.NoError(t, err)
	assert.Equal(t, KindSymbolVar, parsed)

	_, err = ParseNodeKind("NOPE")
	assert.Error(t, err)
}

func TestGraph_IdentifierToken(t *testing.T) {
	g := NewGraph("a.go", nil)
	ident := g.NewNode(KindASTElement, "IDENT", Span{Start: 0, End: 1})
	holder := g.NewNode(KindFakeAST, "NAME", NoSpan)
	leaf := g.NewNode(KindASTLeaf, "x", NoSpan)
	tok := g.NewNode(KindIdentifierToken, "x", Span{Start: 0, End: 1})
	g.AddEdge(ident, holder, EdgeASTChild)
	g.AddEdge(holder, leaf, EdgeASTChild)
	g.AddEdge(leaf, tok, EdgeAssociatedToken)

	assert.Equal(t, tok, g.IdentifierToken(ident))
	assert.Equal(t, tok, g.IdentifierToken(tok))
	assert.Nil(t, g.IdentifierToken(g.NewNode(KindASTElement, "EMPTY", NoSpan)))
}

func TestChecks(t *testing.T) {
	build := func() (*Graph, *Node, *Node) {
		g := NewGraph("a.go", nil)
		root := g.NewNode(KindASTElement, "FILE", Span{Start: 0, End: 3})
		child := g.NewNode(KindASTElement, "IDENT", Span{Start: 0, End: 1})
		g.Root = root
		g.AddEdge(root, child, EdgeASTChild)
		t1 := g.NewNode(KindIdentifierToken, "x", Span{Start: 0, End: 1})
		t2 := g.NewNode(KindToken, "SEMICOLON", Span{Start: 2, End: 3})
		g.FirstToken = t1
		g.AddEdge(t1, t2, EdgeNextToken)
		g.AddEdge(child, t1, EdgeAssociatedToken)
		g.AddEdge(root, t2, EdgeAssociatedToken)
		return g, root, child
	}

	t.Run("Valid graph", func(t *testing.T) {
		g, _, _ := build()
		assert.NoError(t, CheckTree(g))
		assert.NoError(t, CheckTokenPath(g))
		assert.NoError(t, CheckTokenAssociation(g))
	})

	t.Run("Second parent breaks the tree", func(t *testing.T) {
		g, root, child := build()
		other := g.NewNode(KindFakeAST, "X", NoSpan)
		g.AddEdge(root, other, EdgeASTChild)
		g.AddEdge(other, child, EdgeASTChild)
		assert.Error(t, CheckTree(g))
	})

	t.Run("Token cycle breaks the path", func(t *testing.T) {
		g, _, _ := build()
		toks := g.Nodes(KindToken, KindIdentifierToken)
		g.AddEdge(toks[1], toks[0], EdgeNextToken)
		assert.Error(t, CheckTokenPath(g))
	})

	t.Run("Doubly associated token", func(t *testing.T) {
		g, root, _ := build()
		g.AddEdge(root, g.FirstToken, EdgeAssociatedToken)
		assert.Error(t, CheckTokenAssociation(g))
	})
}
