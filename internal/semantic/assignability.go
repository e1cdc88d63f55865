package semantic

import (
	"go/types"

	"featgraph/internal/graph"
)

// AddAssignability emits ASSIGNABLE_TO between every ordered pair of
// distinct interned types where the first is assignable to the second.
func AddAssignability(g *graph.Graph, tt *TypeTable) int {
	var candidates []TypeNode
	for _, tn := range tt.Types() {
		if comparableForAssignment(tn.Type) {
			candidates = append(candidates, tn)
		}
	}
	edges := 0
	for _, from := range candidates {
		for _, to := range candidates {
			if from.Node == to.Node {
				continue
			}
			if types.AssignableTo(from.Type, to.Type) {
				g.AddEdge(from.Node, to.Node, graph.EdgeAssignableTo)
				edges++
			}
		}
	}
	return edges
}

func comparableForAssignment(t types.Type) bool {
	switch t := t.(type) {
	case *types.Tuple, *types.Signature:
		return false
	case *types.Basic:
		return t.Info()&types.IsUntyped == 0
	}
	return true
}
