package graph

import "fmt"

// NodeKind classifies a feature graph node.
type NodeKind int

const (
	KindASTElement NodeKind = iota
	KindFakeAST
	KindASTLeaf
	KindToken
	KindIdentifierToken
	KindCommentLine
	KindCommentBlock
	KindCommentDoc
	KindSymbol
	KindSymbolType
	KindSymbolVar
	KindSymbolMethod
	KindType
)

var nodeKindNames = [...]string{
	KindASTElement:      "AST_ELEMENT",
	KindFakeAST:         "FAKE_AST",
	KindASTLeaf:         "AST_LEAF",
	KindToken:           "TOKEN",
	KindIdentifierToken: "IDENTIFIER_TOKEN",
	KindCommentLine:     "COMMENT_LINE",
	KindCommentBlock:    "COMMENT_BLOCK",
	KindCommentDoc:      "COMMENT_DOC",
	KindSymbol:          "SYMBOL",
	KindSymbolType:      "SYMBOL_TYP",
	KindSymbolVar:       "SYMBOL_VAR",
	KindSymbolMethod:    "SYMBOL_MTH",
	KindType:            "TYPE",
}

func (k NodeKind) String() string {
	if k >= 0 && int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return fmt.Sprintf("NodeKind(%d)", int(k))
}

// ParseNodeKind is the inverse of NodeKind.String.
func ParseNodeKind(s string) (NodeKind, error) {
	for i, name := range nodeKindNames {
		if name == s {
			return NodeKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown node kind %q", s)
}

func (k NodeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *NodeKind) UnmarshalText(b []byte) error {
	v, err := ParseNodeKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

func (k NodeKind) IsToken() bool {
	return k == KindToken || k == KindIdentifierToken
}

func (k NodeKind) IsComment() bool {
	return k == KindCommentLine || k == KindCommentBlock || k == KindCommentDoc
}

func (k NodeKind) IsSymbol() bool {
	switch k {
	case KindSymbol, KindSymbolType, KindSymbolVar, KindSymbolMethod:
		return true
	}
	return false
}

// IsStructural reports whether nodes of this kind are subject to pruning.
func (k NodeKind) IsStructural() bool {
	return k == KindASTElement || k == KindFakeAST
}

// IsAST reports whether nodes of this kind take part in the AST_CHILD tree.
func (k NodeKind) IsAST() bool {
	return k == KindASTElement || k == KindFakeAST || k == KindASTLeaf
}

// EdgeKind classifies a feature graph edge.
type EdgeKind int

const (
	EdgeASTChild EdgeKind = iota
	EdgeNextToken
	EdgeAssociatedToken
	EdgeAssociatedSymbol
	EdgeHasType
	EdgeAssignableTo
	EdgeLastWrite
	EdgeLastUse
	EdgeComputedFrom
	EdgeFormalArgName
	EdgeGuardedBy
	EdgeGuardedByNegation
	EdgeReturnsTo
	EdgeLastLexicalUse
	EdgeComment
)

var edgeKindNames = [...]string{
	EdgeASTChild:          "AST_CHILD",
	EdgeNextToken:         "NEXT_TOKEN",
	EdgeAssociatedToken:   "ASSOCIATED_TOKEN",
	EdgeAssociatedSymbol:  "ASSOCIATED_SYMBOL",
	EdgeHasType:           "HAS_TYPE",
	EdgeAssignableTo:      "ASSIGNABLE_TO",
	EdgeLastWrite:         "LAST_WRITE",
	EdgeLastUse:           "LAST_USE",
	EdgeComputedFrom:      "COMPUTED_FROM",
	EdgeFormalArgName:     "FORMAL_ARG_NAME",
	EdgeGuardedBy:         "GUARDED_BY",
	EdgeGuardedByNegation: "GUARDED_BY_NEGATION",
	EdgeReturnsTo:         "RETURNS_TO",
	EdgeLastLexicalUse:    "LAST_LEXICAL_USE",
	EdgeComment:           "COMMENT",
}

// EdgeKinds lists every edge kind in ordinal order.
func EdgeKinds() []EdgeKind {
	out := make([]EdgeKind, len(edgeKindNames))
	for i := range edgeKindNames {
		out[i] = EdgeKind(i)
	}
	return out
}

func (k EdgeKind) String() string {
	if k >= 0 && int(k) < len(edgeKindNames) {
		return edgeKindNames[k]
	}
	return fmt.Sprintf("EdgeKind(%d)", int(k))
}

// ParseEdgeKind is the inverse of EdgeKind.String.
func ParseEdgeKind(s string) (EdgeKind, error) {
	for i, name := range edgeKindNames {
		if name == s {
			return EdgeKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown edge kind %q", s)
}

func (k EdgeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *EdgeKind) UnmarshalText(b []byte) error {
	v, err := ParseEdgeKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Span is a half-open byte range in the unit's source.
type Span struct {
	Start int
	End   int
}

// NoSpan marks synthetic nodes.
var NoSpan = Span{Start: -1, End: -1}

func (s Span) Valid() bool {
	return s.Start >= 0 && s.End >= s.Start
}

func (s Span) Len() int {
	return s.End - s.Start
}

// Contains reports whether o lies entirely inside s.
func (s Span) Contains(o Span) bool {
	return s.Valid() && o.Valid() && s.Start <= o.Start && o.End <= s.End
}
