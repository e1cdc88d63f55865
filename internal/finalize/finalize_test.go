package finalize

import (
	"go/ast"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"featgraph/internal/extractor"
	"featgraph/internal/fault"
	"featgraph/internal/graph"
	"featgraph/internal/linker"
	"featgraph/internal/resolver"
	"featgraph/internal/semantic"
)

func build(t *testing.T, src string) (*graph.Graph, *resolver.Unit) {
	t.Helper()
	u, err := resolver.ParseSource("p.go", []byte(src))
	require.NoError(t, err)
	g := graph.NewGraph(u.Path, u.TokFile)
	require.NoError(t, extractor.AddAST(g, u))
	extractor.AddTokens(g, u)
	linker.LinkTokens(g, linker.VariableDecls(g, u.File))
	linker.Prune(g)
	semantic.AddSymbols(g, u)
	return g, u
}

func commentTarget(t *testing.T, g *graph.Graph, c *graph.Node) *graph.Node {
	t.Helper()
	targets := g.Successors(c, graph.EdgeComment)
	require.Len(t, targets, 1)
	return targets[0]
}

func TestAssociateComments(t *testing.T) {
	src := `package p

// Sum adds.
func Sum(a, b int) int {
	x := /* inline */ a
	// tail
	return x + b
}
`
	g, u := build(t, src)
	AssociateComments(g)

	t.Run("Doc comment attaches to the declaration", func(t *testing.T) {
		docs := g.Nodes(graph.KindCommentDoc)
		require.Len(t, docs, 1)
		assert.Equal(t, g.Lookup(u.File.Decls[0]), commentTarget(t, g, docs[0]))
	})

	t.Run("Same-line comment keeps its token", func(t *testing.T) {
		blocks := g.Nodes(graph.KindCommentBlock)
		require.Len(t, blocks, 1)
		target := commentTarget(t, g, blocks[0])
		assert.Equal(t, graph.KindIdentifierToken, target.Kind)
		assert.Equal(t, "a", target.Contents)
	})

	t.Run("Line comment attaches to the next statement", func(t *testing.T) {
		lines := g.Nodes(graph.KindCommentLine)
		require.Len(t, lines, 1)
		ret := u.File.Decls[0].(*ast.FuncDecl).Body.List[1]
		assert.Equal(t, g.Lookup(ret), commentTarget(t, g, lines[0]))
	})

	assert.NoError(t, Check(g, u))
}

func TestAssociateComments_Idempotent(t *testing.T) {
	g, _ := build(t, "package p\n\n// V is a value.\nvar V = 1\n")
	assert.Equal(t, 1, AssociateComments(g))
	assert.Zero(t, AssociateComments(g))
}

func TestCheck(t *testing.T) {
	src := "package p\n\nfunc f(x int) int {\n\treturn x\n}\n"

	t.Run("Valid graph", func(t *testing.T) {
		g, u := build(t, src)
		assert.NoError(t, Check(g, u))
	})

	t.Run("Missing symbol", func(t *testing.T) {
		g, u := build(t, src)
		for _, e := range g.Edges(graph.EdgeAssociatedSymbol) {
			if e.Dest.Contents == "x" {
				g.RemoveEdge(e)
			}
		}
		err := Check(g, u)
		require.Error(t, err)
		assert.ErrorIs(t, err, fault.ErrStructuralViolation)
		assert.Contains(t, err.Error(), `"x"`)
	})

	t.Run("Broken token path", func(t *testing.T) {
		g, u := build(t, src)
		g.RemoveEdge(g.Edges(graph.EdgeNextToken)[2])
		err := Check(g, u)
		assert.ErrorIs(t, err, fault.ErrStructuralViolation)
		assert.Equal(t, fault.KindStructuralViolation, fault.KindOf(err))
	})

	t.Run("Doubly owned token", func(t *testing.T) {
		g, u := build(t, src)
		tok := g.FirstToken
		g.AddEdge(g.Root, tok, graph.EdgeAssociatedToken)
		assert.ErrorIs(t, Check(g, u), fault.ErrStructuralViolation)
	})
}
