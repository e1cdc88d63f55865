package analysis

import (
	"go/ast"
	"log/slog"

	"featgraph/internal/fault"
	"featgraph/internal/graph"
	"featgraph/internal/resolver"
)

// InitialStore seeds every receiver, parameter and named result of fn
// with its declaring identifier.
func InitialStore(u *resolver.Unit, fn resolver.FuncBody) Store[TreeSet] {
	store := make(Store[TreeSet])
	for _, fl := range []*ast.FieldList{fn.Recv, fn.Type.Params, fn.Type.Results} {
		if fl == nil {
			continue
		}
		for _, field := range fl.List {
			for _, name := range field.Names {
				if v := u.LocalVar(name); v != nil {
					store[v] = NewTreeSet(name)
				}
			}
		}
	}
	return store
}

// AddDataflow runs the last-write and last-use analyses over every
// function in the unit and emits LAST_WRITE and LAST_USE edges between
// identifier tokens. Functions whose control flow cannot be built are
// skipped. It returns the number of edges added.
func AddDataflow(g *graph.Graph, u *resolver.Unit, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	edges := 0
	for _, fn := range u.Functions() {
		c, err := Lower(u, fn)
		if err != nil {
			if fault.KindOf(err) == fault.KindAnalysisUnavailable {
				logger.Debug("dataflow skipped",
					slog.String("unit", u.Path),
					slog.String("func", fn.String()),
					slog.String("error", err.Error()))
				continue
			}
			return edges, err
		}
		init := InitialStore(u, fn)
		edges += emit(g, Solve[TreeSet](c, LastWrite{}, init), graph.EdgeLastWrite)
		edges += emit(g, Solve[TreeSet](c, LastUse{}, init), graph.EdgeLastUse)
	}
	return edges, nil
}

func emit(g *graph.Graph, res *Result[TreeSet], kind graph.EdgeKind) int {
	reads := make(TreeSet, len(res.Reads))
	for id := range res.Reads {
		reads[id] = struct{}{}
	}
	n := 0
	for _, read := range reads.Sorted() {
		dst := g.IdentifierToken(g.Lookup(read))
		if dst == nil {
			continue
		}
		for _, src := range res.Reads[read].Sorted() {
			if g.AddEdge(g.IdentifierToken(g.Lookup(src)), dst, kind) != nil {
				n++
			}
		}
	}
	return n
}
