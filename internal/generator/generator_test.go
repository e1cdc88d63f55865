package generator

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"featgraph/internal/graph"
	"featgraph/internal/ir"
)

func sampleRecord() *ir.Record {
	return &ir.Record{
		Version:    ir.Version,
		SourceFile: "p.go",
		Root:       0,
		FirstToken: 3,
		Nodes: []ir.Node{
			{ID: 0, Kind: graph.KindASTElement, Contents: "File"},
			{ID: 1, Kind: graph.KindASTElement, Contents: "FuncDecl"},
			{ID: 2, Kind: graph.KindASTLeaf, Contents: `"quoted"`},
			{ID: 3, Kind: graph.KindIdentifierToken, Contents: "x"},
			{ID: 4, Kind: graph.KindToken, Contents: "="},
			{ID: 5, Kind: graph.KindSymbolVar, Contents: "p.f().x@10"},
			{ID: 6, Kind: graph.KindCommentLine, Contents: "// note"},
		},
		Edges: []ir.Edge{
			{Source: 0, Dest: 1, Kind: graph.EdgeASTChild},
			{Source: 1, Dest: 2, Kind: graph.EdgeASTChild},
			{Source: 3, Dest: 4, Kind: graph.EdgeNextToken},
			{Source: 5, Dest: 3, Kind: graph.EdgeAssociatedSymbol},
			{Source: 3, Dest: 3, Kind: graph.EdgeLastWrite},
			{Source: 3, Dest: 1, Kind: graph.EdgeGuardedByNegation},
			{Source: 6, Dest: 1, Kind: graph.EdgeComment},
		},
	}
}

func TestLayers(t *testing.T) {
	layers := Layers(sampleRecord())
	assert.Equal(t, [][]int{{0}, {1}, {2}}, layers.AST)
	assert.Equal(t, []int{3, 4}, layers.Tokens)
	assert.Equal(t, []int{5, 6}, layers.Other)

	t.Run("No root", func(t *testing.T) {
		rec := sampleRecord()
		rec.Root = -1
		layers := Layers(rec)
		assert.Empty(t, layers.AST)
		assert.Contains(t, layers.Other, 0)
	})
}

func TestWriteDOT(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDOT(&buf, sampleRecord()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, `digraph "p.go" {`))
	assert.True(t, strings.HasSuffix(out, "}\n"))
	assert.Contains(t, out, "rankdir=LR;")
	assert.Contains(t, out, "{ rank=same; n0; }")
	assert.Contains(t, out, "{ rank=max; n3; n4; }")
	assert.Contains(t, out, `n3 -> n4 [label="NEXT_TOKEN",weight=1000];`)
	assert.Contains(t, out, `n3 -> n3 [label="LAST_WRITE",color=red];`)
	assert.Contains(t, out, `n3 -> n1 [label="GUARDED_BY_NEGATION",color=pink,style=dashed];`)
	assert.Contains(t, out, `n2 [label="AST_LEAF\n\"quoted\"", shape=ellipse];`)
	assert.Contains(t, out, "n5 [label=\"SYMBOL_VAR\\np.f().x@10\", shape=diamond];")
}

func TestWriteMermaid(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMermaid(&buf, sampleRecord()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "flowchart TD\n"))
	assert.Contains(t, out, "subgraph depth2")
	assert.Contains(t, out, `n2("AST_LEAF<br/>#quot;quoted#quot;")`)
	assert.Contains(t, out, `n5{"SYMBOL_VAR<br/>p.f().x@10"}`)
	assert.Contains(t, out, "n0 -->|AST_CHILD| n1")
	assert.Contains(t, out, "n3 -.->|LAST_WRITE| n3")
	assert.Equal(t, 1, strings.Count(out, "    n5"), "each node is declared once")
}
