package generator

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"featgraph/internal/graph"
	"featgraph/internal/ir"
)

// edgeStyle holds the DOT attributes drawn for one edge kind.
var edgeStyle = map[graph.EdgeKind]string{
	graph.EdgeNextToken:         "weight=1000",
	graph.EdgeLastWrite:         "color=red",
	graph.EdgeLastUse:           "color=green",
	graph.EdgeComputedFrom:      "color=purple",
	graph.EdgeLastLexicalUse:    "color=orange",
	graph.EdgeReturnsTo:         "color=blue",
	graph.EdgeFormalArgName:     "color=yellow",
	graph.EdgeGuardedBy:         "color=pink",
	graph.EdgeGuardedByNegation: "color=pink,style=dashed",
	graph.EdgeComment:           "color=gray",
	graph.EdgeAssociatedSymbol:  "color=brown",
	graph.EdgeHasType:           "color=cyan4",
	graph.EdgeAssignableTo:      "color=cyan4,style=dashed",
}

// WriteDOT renders rec as a Graphviz digraph. AST nodes are ranked by
// depth from the root; tokens share the last rank so the token path
// reads left to right under the tree.
func WriteDOT(w io.Writer, rec *ir.Record) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "digraph %s {\n", quote(rec.SourceFile))
	bw.WriteString("  rankdir=LR;\n  node [fontname=\"monospace\"];\n")

	layers := Layers(rec)
	for _, ids := range layers.AST {
		bw.WriteString("  { rank=same;")
		for _, id := range ids {
			fmt.Fprintf(bw, " n%d;", id)
		}
		bw.WriteString(" }\n")
	}
	if len(layers.Tokens) > 0 {
		bw.WriteString("  { rank=max;")
		for _, id := range layers.Tokens {
			fmt.Fprintf(bw, " n%d;", id)
		}
		bw.WriteString(" }\n")
	}

	for _, n := range rec.Nodes {
		fmt.Fprintf(bw, "  n%d [label=%s, shape=%s];\n", n.ID, quote(label(n)), shape(n.Kind))
	}
	for _, e := range rec.Edges {
		attrs := "label=" + quote(e.Kind.String())
		if style, ok := edgeStyle[e.Kind]; ok {
			attrs += "," + style
		}
		fmt.Fprintf(bw, "  n%d -> n%d [%s];\n", e.Source, e.Dest, attrs)
	}
	bw.WriteString("}\n")
	return bw.Flush()
}

// NodeLayers groups record nodes by drawing band.
type NodeLayers struct {
	AST    [][]int // by depth from the root
	Other  []int   // comments, symbols, types
	Tokens []int
}

// Layers computes the drawing bands of rec. AST nodes unreachable from
// the root land in Other.
func Layers(rec *ir.Record) NodeLayers {
	children := make(map[int][]int)
	for _, e := range rec.Edges {
		if e.Kind == graph.EdgeASTChild {
			children[e.Source] = append(children[e.Source], e.Dest)
		}
	}

	var layers NodeLayers
	seen := make(map[int]bool)
	if rec.Root >= 0 {
		frontier := []int{rec.Root}
		seen[rec.Root] = true
		for len(frontier) > 0 {
			layers.AST = append(layers.AST, frontier)
			var next []int
			for _, id := range frontier {
				for _, c := range children[id] {
					if !seen[c] {
						seen[c] = true
						next = append(next, c)
					}
				}
			}
			sort.Ints(next)
			frontier = next
		}
	}
	for _, n := range rec.Nodes {
		switch {
		case seen[n.ID]:
		case n.Kind.IsToken():
			layers.Tokens = append(layers.Tokens, n.ID)
		default:
			layers.Other = append(layers.Other, n.ID)
		}
	}
	return layers
}

func label(n ir.Node) string {
	if n.Contents == "" {
		return n.Kind.String()
	}
	return n.Kind.String() + "\n" + n.Contents
}

func shape(k graph.NodeKind) string {
	switch {
	case k.IsToken():
		return "box"
	case k.IsComment():
		return "note"
	case k.IsSymbol():
		return "diamond"
	case k == graph.KindType:
		return "hexagon"
	case k == graph.KindFakeAST:
		return "point"
	}
	return "ellipse"
}

func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}
