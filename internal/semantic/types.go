package semantic

import (
	"go/ast"
	"go/types"

	"featgraph/internal/graph"
	"featgraph/internal/resolver"
)

// TypeNode is a canonical TYPE node together with the type it stands for.
type TypeNode struct {
	Node *graph.Node
	Type types.Type
}

type typeKey struct {
	name string
	n    int
}

// TypeTable interns types up to types.Identical. Candidates are bucketed
// by their printed form so lookups only compare within a bucket.
type TypeTable struct {
	g       *graph.Graph
	buckets map[string][]TypeNode
	order   []TypeNode
}

func NewTypeTable(g *graph.Graph) *TypeTable {
	return &TypeTable{g: g, buckets: make(map[string][]TypeNode)}
}

// Intern returns the TYPE node for t, creating it on first sight.
func (tt *TypeTable) Intern(t types.Type) *graph.Node {
	name := types.TypeString(t, nil)
	bucket := tt.buckets[name]
	for _, c := range bucket {
		if types.Identical(c.Type, t) {
			return c.Node
		}
	}
	n, _ := tt.g.NodeFor(typeKey{name: name, n: len(bucket)}, graph.KindType, name, graph.NoSpan)
	tn := TypeNode{Node: n, Type: t}
	tt.buckets[name] = append(bucket, tn)
	tt.order = append(tt.order, tn)
	return n
}

// Types lists the interned types in creation order.
func (tt *TypeTable) Types() []TypeNode {
	return tt.order
}

// AddTypes links every typed expression of the unit to its canonical TYPE
// node with HAS_TYPE. Type expressions, builtins and void calls carry no
// value type and are skipped.
func AddTypes(g *graph.Graph, u *resolver.Unit) *TypeTable {
	tt := NewTypeTable(g)
	ast.Inspect(u.File, func(n ast.Node) bool {
		e, ok := n.(ast.Expr)
		if !ok {
			return true
		}
		tv, ok := u.Info.Types[e]
		if !ok || tv.Type == nil || tv.IsVoid() || tv.IsBuiltin() || tv.IsType() {
			return true
		}
		if _, ok := tv.Type.(*types.Tuple); ok {
			return true
		}
		node := g.Lookup(e)
		if node == nil {
			return true
		}
		g.AddEdge(node, tt.Intern(tv.Type), graph.EdgeHasType)
		return true
	})
	return tt
}
