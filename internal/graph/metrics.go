package graph

// EdgeKindCounts tallies live edges per kind.
func (g *Graph) EdgeKindCounts() map[EdgeKind]int {
	counts := make(map[EdgeKind]int)
	if g == nil {
		return counts
	}
	for _, e := range g.edges {
		if e.removed {
			continue
		}
		counts[e.Kind]++
	}
	return counts
}

// NodeKindCounts tallies live nodes per kind.
func (g *Graph) NodeKindCounts() map[NodeKind]int {
	counts := make(map[NodeKind]int)
	if g == nil {
		return counts
	}
	for _, n := range g.nodes {
		if n != nil {
			counts[n.Kind]++
		}
	}
	return counts
}
