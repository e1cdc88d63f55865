package analysis

import (
	"go/ast"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"featgraph/internal/extractor"
	"featgraph/internal/graph"
	"featgraph/internal/linker"
	"featgraph/internal/resolver"
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
	return g, u
}

func identTokens(g *graph.Graph, name string) []*graph.Node {
	var out []*graph.Node
	for _, n := range g.Nodes(graph.KindIdentifierToken) {
		if n.Contents == name {
			out = append(out, n)
		}
	}
	return out
}

func sources(g *graph.Graph, tok *graph.Node, kind graph.EdgeKind) []*graph.Node {
	return g.Predecessors(tok, kind)
}

func TestLower(t *testing.T) {
	_, u := build(t, `package p

func f(y int) {
	x := 0
	x += y
	x++
	var z int
	_ = z
}
`)
	fns := u.Functions()
	require.Len(t, fns, 1)
	c, err := Lower(u, fns[0])
	require.NoError(t, err)

	var got []string
	for _, op := range c.Blocks[0].Ops {
		got = append(got, op.Kind.String()+" "+op.Ident.Name)
	}
	assert.Equal(t, []string{
		"write x",
		"read x", "read y", "write x",
		"read x", "write x",
		"write z",
		"read z",
	}, got)
}

func TestLower_RangeAndSelect(t *testing.T) {
	_, u := build(t, `package p

func f(xs []int, ch chan int) int {
	total := 0
	for i, v := range xs {
		total += i + v
	}
	select {
	case n := <-ch:
		total += n
	}
	return total
}
`)
	c, err := Lower(u, u.Functions()[0])
	require.NoError(t, err)

	kinds := make(map[string][]OpKind)
	for _, b := range c.Blocks {
		for _, op := range b.Ops {
			kinds[op.Ident.Name] = append(kinds[op.Ident.Name], op.Kind)
		}
	}
	assert.Equal(t, Write, kinds["i"][0])
	assert.Equal(t, Write, kinds["v"][0])
	assert.Equal(t, Write, kinds["n"][0])
	assert.Contains(t, kinds["n"], Read)
}

func TestLower_SkipsFuncLitBodies(t *testing.T) {
	_, u := build(t, `package p

func f() {
	x := 1
	g := func() int { return x }
	_ = g
}
`)
	fns := u.Functions()
	require.Len(t, fns, 2)
	c, err := Lower(u, fns[0])
	require.NoError(t, err)
	for _, b := range c.Blocks {
		for _, op := range b.Ops {
			assert.False(t, op.Kind == Read && op.Ident.Name == "x", "captured read belongs to the literal")
		}
	}
}

func TestAddDataflow_LastWrite(t *testing.T) {
	g, u := build(t, `package p

func f() int {
	x := 0
	x = 1
	y := x
	return y
}
`)
	n, err := AddDataflow(g, u, nil)
	require.NoError(t, err)
	assert.NotZero(t, n)

	xs := identTokens(g, "x")
	require.Len(t, xs, 3)
	got := sources(g, xs[2], graph.EdgeLastWrite)
	require.Len(t, got, 1)
	assert.Equal(t, xs[1], got[0], "the read sees the reassignment, not the definition")

	ys := identTokens(g, "y")
	require.Len(t, ys, 2)
	assert.Equal(t, []*graph.Node{ys[0]}, sources(g, ys[1], graph.EdgeLastWrite))
}

func TestAddDataflow_Branches(t *testing.T) {
	g, u := build(t, `package p

func f(c bool) int {
	x := 0
	if c {
		x = 1
	}
	return x
}
`)
	_, err := AddDataflow(g, u, nil)
	require.NoError(t, err)

	xs := identTokens(g, "x")
	require.Len(t, xs, 3)
	got := sources(g, xs[2], graph.EdgeLastWrite)
	assert.ElementsMatch(t, []*graph.Node{xs[0], xs[1]}, got)

	cs := identTokens(g, "c")
	require.Len(t, cs, 2)
	assert.Equal(t, []*graph.Node{cs[0]}, sources(g, cs[1], graph.EdgeLastWrite), "parameters start at their declaration")
}

func TestAddDataflow_Loop(t *testing.T) {
	g, u := build(t, `package p

func f(n int) {
	for i := 0; i < n; i++ {
	}
}
`)
	_, err := AddDataflow(g, u, nil)
	require.NoError(t, err)

	is := identTokens(g, "i")
	require.Len(t, is, 3)
	// The condition sees both the init and the post statement.
	assert.ElementsMatch(t, []*graph.Node{is[0], is[2]}, sources(g, is[1], graph.EdgeLastWrite))
}

func TestAddDataflow_LastUse(t *testing.T) {
	g, u := build(t, `package p

func f(p int) int {
	a := p
	b := p
	return a + b
}
`)
	_, err := AddDataflow(g, u, nil)
	require.NoError(t, err)

	ps := identTokens(g, "p")
	require.Len(t, ps, 3)
	assert.Equal(t, []*graph.Node{ps[0]}, sources(g, ps[1], graph.EdgeLastUse))
	assert.Equal(t, []*graph.Node{ps[1]}, sources(g, ps[2], graph.EdgeLastUse))

	as := identTokens(g, "a")
	require.Len(t, as, 2)
	assert.Empty(t, sources(g, as[1], graph.EdgeLastUse), "a write is not a use")
}

func TestInitialStore(t *testing.T) {
	_, u := build(t, `package p

type T struct{}

func (t *T) m(a, b int) (r int) { return }
`)
	fn := u.Functions()[0]
	store := InitialStore(u, fn)
	assert.Len(t, store, 4)

	decl := fn.Node.(*ast.FuncDecl)
	a := decl.Type.Params.List[0].Names[0]
	assert.True(t, store[u.LocalVar(a)].Equal(NewTreeSet(a)))
}

func TestTreeSet(t *testing.T) {
	a, b := ast.NewIdent("a"), ast.NewIdent("b")
	a.NamePos, b.NamePos = 10, 5

	s := NewTreeSet(a)
	u := s.Union(NewTreeSet(b))
	assert.Len(t, s, 1, "union does not modify its receiver")
	assert.Equal(t, []*ast.Ident{b, a}, u.Sorted())
	assert.True(t, u.Equal(NewTreeSet(b, a)))
	assert.False(t, u.Equal(s))
	// Identity, not name, decides membership.
	assert.False(t, s.Equal(NewTreeSet(ast.NewIdent("a"))))
}
