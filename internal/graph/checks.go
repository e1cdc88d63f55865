package graph

import "fmt"

// CheckTree verifies that AST_CHILD edges over the AST nodes form a tree
// rooted at g.Root.
func CheckTree(g *Graph) error {
	astNodes := g.Nodes(KindASTElement, KindFakeAST, KindASTLeaf)
	if len(astNodes) == 0 {
		if g.Root != nil {
			return fmt.Errorf("root %d set on a graph without AST nodes", g.Root.ID)
		}
		return nil
	}
	if g.Root == nil {
		return fmt.Errorf("graph has %d AST nodes but no root", len(astNodes))
	}
	for _, n := range astNodes {
		parents := len(g.InEdges(n, EdgeASTChild))
		switch {
		case n == g.Root && parents != 0:
			return fmt.Errorf("root %d has %d parents", n.ID, parents)
		case n != g.Root && parents != 1:
			return fmt.Errorf("node %d (%s %s) has %d parents", n.ID, n.Kind, n.Contents, parents)
		}
	}

	seen := make(map[*Node]bool, len(astNodes))
	stack := []*Node{g.Root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[n] {
			return fmt.Errorf("node %d reached twice from the root", n.ID)
		}
		seen[n] = true
		stack = append(stack, g.Successors(n, EdgeASTChild)...)
	}
	if len(seen) != len(astNodes) {
		return fmt.Errorf("%d of %d AST nodes unreachable from root", len(astNodes)-len(seen), len(astNodes))
	}
	return nil
}

// CheckTokenPath verifies that NEXT_TOKEN edges form one simple path over
// all tokens starting at g.FirstToken.
func CheckTokenPath(g *Graph) error {
	tokens := g.Nodes(KindToken, KindIdentifierToken)
	if len(tokens) == 0 {
		if g.FirstToken != nil {
			return fmt.Errorf("first token %d set on a graph without tokens", g.FirstToken.ID)
		}
		return nil
	}
	if g.FirstToken == nil {
		return fmt.Errorf("graph has %d tokens but no first token", len(tokens))
	}
	for _, t := range tokens {
		if n := len(g.OutEdges(t, EdgeNextToken)); n > 1 {
			return fmt.Errorf("token %d has %d successors", t.ID, n)
		}
		if n := len(g.InEdges(t, EdgeNextToken)); n > 1 {
			return fmt.Errorf("token %d has %d predecessors", t.ID, n)
		}
	}
	if n := len(g.InEdges(g.FirstToken, EdgeNextToken)); n != 0 {
		return fmt.Errorf("first token %d has a predecessor", g.FirstToken.ID)
	}

	seen := make(map[*Node]bool, len(tokens))
	for cur := g.FirstToken; cur != nil; {
		if seen[cur] {
			return fmt.Errorf("token path revisits %d", cur.ID)
		}
		if !cur.Kind.IsToken() {
			return fmt.Errorf("token path reaches non-token %d", cur.ID)
		}
		seen[cur] = true
		next := g.Successors(cur, EdgeNextToken)
		if len(next) == 0 {
			break
		}
		cur = next[0]
	}
	if len(seen) != len(tokens) {
		return fmt.Errorf("token path covers %d of %d tokens", len(seen), len(tokens))
	}
	return nil
}

// CheckTokenAssociation verifies that every token has exactly one
// ASSOCIATED_TOKEN predecessor.
func CheckTokenAssociation(g *Graph) error {
	for _, t := range g.Nodes(KindToken, KindIdentifierToken) {
		if n := len(g.InEdges(t, EdgeAssociatedToken)); n != 1 {
			return fmt.Errorf("token %d (%s) has %d associated AST nodes", t.ID, t.Contents, n)
		}
	}
	return nil
}
