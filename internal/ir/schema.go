package ir

import "featgraph/internal/graph"

// Version identifies the record layout.
const Version = "1"

// Record is the serialized form of one unit's feature graph. Root and
// FirstToken are -1 when the graph has none.
type Record struct {
	Version    string `json:"version"`
	SourceFile string `json:"source_file"`
	Nodes      []Node `json:"nodes"`
	Edges      []Edge `json:"edges"`
	Root       int    `json:"root_id"`
	FirstToken int    `json:"first_token_id"`
}

// Node is a serialized graph node. Offsets and lines are -1 for
// synthetic nodes.
type Node struct {
	ID        int            `json:"id"`
	Kind      graph.NodeKind `json:"kind"`
	Contents  string         `json:"contents"`
	Start     int            `json:"start"`
	End       int            `json:"end"`
	StartLine int            `json:"start_line"`
	EndLine   int            `json:"end_line"`
}

type Edge struct {
	Source int            `json:"source"`
	Dest   int            `json:"dest"`
	Kind   graph.EdgeKind `json:"kind"`
}

// FromGraph snapshots the live nodes and edges of g in insertion order.
func FromGraph(g *graph.Graph) *Record {
	rec := &Record{
		Version:    Version,
		SourceFile: g.SourceFile,
		Root:       -1,
		FirstToken: -1,
	}
	if g.Root != nil {
		rec.Root = g.Root.ID
	}
	if g.FirstToken != nil {
		rec.FirstToken = g.FirstToken.ID
	}
	for _, n := range g.Nodes() {
		rec.Nodes = append(rec.Nodes, Node{
			ID:        n.ID,
			Kind:      n.Kind,
			Contents:  n.Contents,
			Start:     n.Span.Start,
			End:       n.Span.End,
			StartLine: n.StartLine,
			EndLine:   n.EndLine,
		})
	}
	for _, e := range g.Edges() {
		rec.Edges = append(rec.Edges, Edge{Source: e.Source.ID, Dest: e.Dest.ID, Kind: e.Kind})
	}
	return rec
}

// NodeByID indexes the record's nodes.
func (r *Record) NodeByID() map[int]*Node {
	out := make(map[int]*Node, len(r.Nodes))
	for i := range r.Nodes {
		out[r.Nodes[i].ID] = &r.Nodes[i]
	}
	return out
}
