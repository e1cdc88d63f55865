package generator

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"featgraph/internal/graph"
	"featgraph/internal/ir"
)

// WriteMermaid renders rec as a Mermaid flowchart. Structural edges are
// drawn solid and analysis edges dotted.
func WriteMermaid(w io.Writer, rec *ir.Record) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("flowchart TD\n")

	layers := Layers(rec)
	byID := rec.NodeByID()
	for depth, ids := range layers.AST {
		fmt.Fprintf(bw, "  subgraph depth%d [\" \"]\n", depth)
		for _, id := range ids {
			if n, ok := byID[id]; ok {
				writeMermaidNode(bw, *n)
			}
		}
		bw.WriteString("  end\n")
	}
	inAST := make(map[int]bool)
	for _, ids := range layers.AST {
		for _, id := range ids {
			inAST[id] = true
		}
	}
	for _, n := range rec.Nodes {
		if !inAST[n.ID] {
			writeMermaidNode(bw, n)
		}
	}

	for _, e := range rec.Edges {
		arrow := "-.->"
		switch e.Kind {
		case graph.EdgeASTChild, graph.EdgeNextToken, graph.EdgeAssociatedToken:
			arrow = "-->"
		}
		fmt.Fprintf(bw, "  n%d %s|%s| n%d\n", e.Source, arrow, e.Kind, e.Dest)
	}
	return bw.Flush()
}

func writeMermaidNode(bw *bufio.Writer, n ir.Node) {
	text := mermaidText(label(n))
	switch {
	case n.Kind.IsToken():
		fmt.Fprintf(bw, "    n%d[\"%s\"]\n", n.ID, text)
	case n.Kind.IsSymbol():
		fmt.Fprintf(bw, "    n%d{\"%s\"}\n", n.ID, text)
	case n.Kind == graph.KindType:
		fmt.Fprintf(bw, "    n%d{{\"%s\"}}\n", n.ID, text)
	case n.Kind.IsComment():
		fmt.Fprintf(bw, "    n%d>\"%s\"]\n", n.ID, text)
	default:
		fmt.Fprintf(bw, "    n%d(\"%s\")\n", n.ID, text)
	}
}

// mermaidText escapes quotes and line breaks for a quoted Mermaid label.
func mermaidText(s string) string {
	r := strings.NewReplacer(`"`, "#quot;", "\n", "<br/>", "<", "#lt;", ">", "#gt;")
	return r.Replace(s)
}
