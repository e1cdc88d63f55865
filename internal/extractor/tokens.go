package extractor

import (
	"go/ast"
	"go/scanner"
	"go/token"
	"strconv"
	"strings"

	"featgraph/internal/graph"
	"featgraph/internal/resolver"
)

var operatorNames = map[token.Token]string{
	token.ADD: "ADD", token.SUB: "SUB", token.MUL: "MUL", token.QUO: "QUO", token.REM: "REM",
	token.AND: "AND", token.OR: "OR", token.XOR: "XOR", token.SHL: "SHL", token.SHR: "SHR",
	token.AND_NOT: "AND_NOT",
	token.ADD_ASSIGN: "ADD_ASSIGN", token.SUB_ASSIGN: "SUB_ASSIGN", token.MUL_ASSIGN: "MUL_ASSIGN",
	token.QUO_ASSIGN: "QUO_ASSIGN", token.REM_ASSIGN: "REM_ASSIGN", token.AND_ASSIGN: "AND_ASSIGN",
	token.OR_ASSIGN: "OR_ASSIGN", token.XOR_ASSIGN: "XOR_ASSIGN", token.SHL_ASSIGN: "SHL_ASSIGN",
	token.SHR_ASSIGN: "SHR_ASSIGN", token.AND_NOT_ASSIGN: "AND_NOT_ASSIGN",
	token.LAND: "LAND", token.LOR: "LOR", token.ARROW: "ARROW", token.INC: "INC", token.DEC: "DEC",
	token.EQL: "EQL", token.LSS: "LSS", token.GTR: "GTR", token.ASSIGN: "ASSIGN", token.NOT: "NOT",
	token.NEQ: "NEQ", token.LEQ: "LEQ", token.GEQ: "GEQ", token.DEFINE: "DEFINE",
	token.ELLIPSIS: "ELLIPSIS", token.LPAREN: "LPAREN", token.LBRACK: "LBRACK", token.LBRACE: "LBRACE",
	token.COMMA: "COMMA", token.PERIOD: "PERIOD", token.RPAREN: "RPAREN", token.RBRACK: "RBRACK",
	token.RBRACE: "RBRACE", token.SEMICOLON: "SEMICOLON", token.COLON: "COLON", token.TILDE: "TILDE",
}

// TokenName renders a lexical kind the way token nodes and operator
// leaves spell it, e.g. ADD, LBRACE, FUNC, STRING.
func TokenName(tok token.Token) string {
	if name, ok := operatorNames[tok]; ok {
		return name
	}
	return strings.ToUpper(tok.String())
}

// AddTokens tokenizes the unit and appends its token sequence and raw
// comments to g.
func AddTokens(g *graph.Graph, u *resolver.Unit) {
	docs := docCommentOffsets(u)

	fset := token.NewFileSet()
	file := fset.AddFile(u.Path, -1, len(u.Src))
	var s scanner.Scanner
	s.Init(file, u.Src, nil, scanner.ScanComments)

	var prev *graph.Node
	var pending []*graph.Node
	for {
		pos, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}
		offset := file.Offset(pos)

		if tok == token.COMMENT {
			span := graph.Span{Start: offset, End: offset + len(lit)}
			pending = append(pending, g.NewNode(commentKind(lit, docs[offset]), lit, span))
			continue
		}
		// Semicolons inserted at line ends are not part of the source text.
		if tok == token.SEMICOLON && lit == "\n" {
			continue
		}

		node := g.NewNode(tokenKind(tok), tokenContents(tok, lit), graph.Span{Start: offset, End: offset + tokenLen(tok, lit)})
		if prev == nil {
			g.FirstToken = node
		} else {
			g.AddEdge(prev, node, graph.EdgeNextToken)
		}
		prev = node

		for _, c := range pending {
			g.AddEdge(c, node, graph.EdgeComment)
		}
		pending = pending[:0]
	}
	// Comments after the last token have nothing to attach to and are
	// dropped with their nodes.
	for _, c := range pending {
		g.RemoveNode(c)
	}
}

func tokenKind(tok token.Token) graph.NodeKind {
	if tok == token.IDENT {
		return graph.KindIdentifierToken
	}
	return graph.KindToken
}

func tokenContents(tok token.Token, lit string) string {
	switch tok {
	case token.IDENT, token.INT, token.FLOAT, token.IMAG:
		return lit
	case token.STRING, token.CHAR:
		if v, err := strconv.Unquote(lit); err == nil {
			return v
		}
		return lit
	}
	return TokenName(tok)
}

func tokenLen(tok token.Token, lit string) int {
	if lit != "" {
		return len(lit)
	}
	return len(tok.String())
}

func commentKind(text string, doc bool) graph.NodeKind {
	switch {
	case doc:
		return graph.KindCommentDoc
	case strings.HasPrefix(text, "/*"):
		return graph.KindCommentBlock
	default:
		return graph.KindCommentLine
	}
}

// docCommentOffsets collects the offsets of comments belonging to a doc
// comment group of the file, a declaration or a field.
func docCommentOffsets(u *resolver.Unit) map[int]bool {
	docs := make(map[int]bool)
	add := func(cg *ast.CommentGroup) {
		if cg == nil {
			return
		}
		for _, c := range cg.List {
			if off := u.Offset(c.Slash); off >= 0 {
				docs[off] = true
			}
		}
	}
	ast.Inspect(u.File, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.File:
			add(n.Doc)
		case *ast.FuncDecl:
			add(n.Doc)
		case *ast.GenDecl:
			add(n.Doc)
		case *ast.TypeSpec:
			add(n.Doc)
		case *ast.ValueSpec:
			add(n.Doc)
		case *ast.ImportSpec:
			add(n.Doc)
		case *ast.Field:
			add(n.Doc)
		}
		return true
	})
	return docs
}
