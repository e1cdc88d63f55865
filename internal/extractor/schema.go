package extractor

import (
	"go/ast"
	"go/token"
	"strconv"

	"featgraph/internal/fault"
)

type shape int

const (
	shapeNone shape = iota
	shapeSingle
	shapeSeq
	shapeScalar
)

// slot is one named child accessor of a syntax node.
type slot struct {
	name  string
	shape shape
	node  ast.Node
	nodes []ast.Node
	value string
}

func one[N ast.Node](name string, n N) slot {
	if any(n) == nil {
		return slot{}
	}
	return slot{name: name, shape: shapeSingle, node: n}
}

func ptr[T any, P interface {
	*T
	ast.Node
}](name string, p P) slot {
	if p == nil {
		return slot{}
	}
	return slot{name: name, shape: shapeSingle, node: p}
}

func many[N ast.Node](name string, xs []N) slot {
	if len(xs) == 0 {
		return slot{}
	}
	nodes := make([]ast.Node, len(xs))
	for i, x := range xs {
		nodes[i] = x
	}
	return slot{name: name, shape: shapeSeq, nodes: nodes}
}

func scalar(name, value string) slot {
	if value == "" {
		return slot{}
	}
	return slot{name: name, shape: shapeScalar, value: value}
}

func flag(name string, set bool) slot {
	if !set {
		return slot{}
	}
	return scalar(name, "true")
}

func tok(name string, t token.Token) slot {
	if t == token.ILLEGAL {
		return slot{}
	}
	return scalar(name, TokenName(t))
}

// schemaOf returns the syntax kind of n and its child slots in source
// order. Every go/ast node type the parser produces is listed; anything
// else is an unsupported shape.
func schemaOf(n ast.Node) (string, []slot, error) {
	switch n := n.(type) {
	case *ast.File:
		return "FILE", []slot{ptr("NAME", n.Name), many("DECLS", n.Decls)}, nil

	// Declarations and specs.
	case *ast.BadDecl:
		return "BAD_DECL", nil, nil
	case *ast.GenDecl:
		return "GEN_DECL", []slot{tok("TOK", n.Tok), many("SPECS", n.Specs)}, nil
	case *ast.FuncDecl:
		return "FUNC_DECL", []slot{ptr("RECV", n.Recv), ptr("NAME", n.Name), ptr("TYPE", n.Type), ptr("BODY", n.Body)}, nil
	case *ast.ImportSpec:
		return "IMPORT_SPEC", []slot{ptr("NAME", n.Name), ptr("PATH", n.Path)}, nil
	case *ast.ValueSpec:
		return "VALUE_SPEC", []slot{many("NAMES", n.Names), one("TYPE", n.Type), many("VALUES", n.Values)}, nil
	case *ast.TypeSpec:
		return "TYPE_SPEC", []slot{ptr("NAME", n.Name), ptr("TYPE_PARAMS", n.TypeParams), flag("ALIAS", n.Assign.IsValid()), one("TYPE", n.Type)}, nil
	case *ast.Field:
		return "FIELD", []slot{many("NAMES", n.Names), one("TYPE", n.Type), ptr("TAG", n.Tag)}, nil
	case *ast.FieldList:
		return "FIELD_LIST", []slot{many("LIST", n.List)}, nil

	// Expressions.
	case *ast.BadExpr:
		return "BAD_EXPR", nil, nil
	case *ast.Ident:
		return "IDENT", []slot{scalar("NAME", n.Name)}, nil
	case *ast.BasicLit:
		return "BASIC_LIT", []slot{scalar("VALUE", literalValue(n)), scalar("KIND", TokenName(n.Kind))}, nil
	case *ast.Ellipsis:
		return "ELLIPSIS", []slot{one("ELT", n.Elt)}, nil
	case *ast.FuncLit:
		return "FUNC_LIT", []slot{ptr("TYPE", n.Type), ptr("BODY", n.Body)}, nil
	case *ast.CompositeLit:
		return "COMPOSITE_LIT", []slot{one("TYPE", n.Type), many("ELTS", n.Elts)}, nil
	case *ast.ParenExpr:
		return "PAREN_EXPR", []slot{one("X", n.X)}, nil
	case *ast.SelectorExpr:
		return "SELECTOR_EXPR", []slot{one("X", n.X), ptr("SEL", n.Sel)}, nil
	case *ast.IndexExpr:
		return "INDEX_EXPR", []slot{one("X", n.X), one("INDEX", n.Index)}, nil
	case *ast.IndexListExpr:
		return "INDEX_LIST_EXPR", []slot{one("X", n.X), many("INDICES", n.Indices)}, nil
	case *ast.SliceExpr:
		return "SLICE_EXPR", []slot{one("X", n.X), one("LOW", n.Low), one("HIGH", n.High), one("MAX", n.Max), flag("SLICE3", n.Slice3)}, nil
	case *ast.TypeAssertExpr:
		return "TYPE_ASSERT_EXPR", []slot{one("X", n.X), one("TYPE", n.Type)}, nil
	case *ast.CallExpr:
		return "CALL_EXPR", []slot{one("FUN", n.Fun), many("ARGS", n.Args), flag("VARIADIC", n.Ellipsis.IsValid())}, nil
	case *ast.StarExpr:
		return "STAR_EXPR", []slot{one("X", n.X)}, nil
	case *ast.UnaryExpr:
		return "UNARY_EXPR", []slot{tok("OP", n.Op), one("X", n.X)}, nil
	case *ast.BinaryExpr:
		return "BINARY_EXPR", []slot{one("X", n.X), tok("OP", n.Op), one("Y", n.Y)}, nil
	case *ast.KeyValueExpr:
		return "KEY_VALUE_EXPR", []slot{one("KEY", n.Key), one("VALUE", n.Value)}, nil

	// Types.
	case *ast.ArrayType:
		return "ARRAY_TYPE", []slot{one("LEN", n.Len), one("ELT", n.Elt)}, nil
	case *ast.StructType:
		return "STRUCT_TYPE", []slot{ptr("FIELDS", n.Fields)}, nil
	case *ast.FuncType:
		return "FUNC_TYPE", []slot{ptr("TYPE_PARAMS", n.TypeParams), ptr("PARAMS", n.Params), ptr("RESULTS", n.Results)}, nil
	case *ast.InterfaceType:
		return "INTERFACE_TYPE", []slot{ptr("METHODS", n.Methods)}, nil
	case *ast.MapType:
		return "MAP_TYPE", []slot{one("KEY", n.Key), one("VALUE", n.Value)}, nil
	case *ast.ChanType:
		return "CHAN_TYPE", []slot{scalar("DIR", chanDir(n.Dir)), one("VALUE", n.Value)}, nil

	// Statements.
	case *ast.BadStmt:
		return "BAD_STMT", nil, nil
	case *ast.DeclStmt:
		return "DECL_STMT", []slot{one("DECL", n.Decl)}, nil
	case *ast.EmptyStmt:
		return "EMPTY_STMT", []slot{flag("IMPLICIT", n.Implicit)}, nil
	case *ast.LabeledStmt:
		return "LABELED_STMT", []slot{ptr("LABEL", n.Label), one("STMT", n.Stmt)}, nil
	case *ast.ExprStmt:
		return "EXPR_STMT", []slot{one("X", n.X)}, nil
	case *ast.SendStmt:
		return "SEND_STMT", []slot{one("CHAN", n.Chan), one("VALUE", n.Value)}, nil
	case *ast.IncDecStmt:
		return "INC_DEC_STMT", []slot{one("X", n.X), tok("TOK", n.Tok)}, nil
	case *ast.AssignStmt:
		return "ASSIGN_STMT", []slot{many("LHS", n.Lhs), tok("TOK", n.Tok), many("RHS", n.Rhs)}, nil
	case *ast.GoStmt:
		return "GO_STMT", []slot{ptr("CALL", n.Call)}, nil
	case *ast.DeferStmt:
		return "DEFER_STMT", []slot{ptr("CALL", n.Call)}, nil
	case *ast.ReturnStmt:
		return "RETURN_STMT", []slot{many("RESULTS", n.Results)}, nil
	case *ast.BranchStmt:
		return "BRANCH_STMT", []slot{tok("TOK", n.Tok), ptr("LABEL", n.Label)}, nil
	case *ast.BlockStmt:
		return "BLOCK_STMT", []slot{many("STMTS", n.List)}, nil
	case *ast.IfStmt:
		return "IF_STMT", []slot{one("INIT", n.Init), one("COND", n.Cond), ptr("BODY", n.Body), one("ELSE", n.Else)}, nil
	case *ast.CaseClause:
		return "CASE_CLAUSE", []slot{many("LIST", n.List), flag("DEFAULT", n.List == nil), many("BODY", n.Body)}, nil
	case *ast.SwitchStmt:
		return "SWITCH_STMT", []slot{one("INIT", n.Init), one("TAG", n.Tag), ptr("BODY", n.Body)}, nil
	case *ast.TypeSwitchStmt:
		return "TYPE_SWITCH_STMT", []slot{one("INIT", n.Init), one("ASSIGN", n.Assign), ptr("BODY", n.Body)}, nil
	case *ast.CommClause:
		return "COMM_CLAUSE", []slot{one("COMM", n.Comm), flag("DEFAULT", n.Comm == nil), many("BODY", n.Body)}, nil
	case *ast.SelectStmt:
		return "SELECT_STMT", []slot{ptr("BODY", n.Body)}, nil
	case *ast.ForStmt:
		return "FOR_STMT", []slot{one("INIT", n.Init), one("COND", n.Cond), one("POST", n.Post), ptr("BODY", n.Body)}, nil
	case *ast.RangeStmt:
		return "RANGE_STMT", []slot{one("KEY", n.Key), one("VALUE", n.Value), tok("TOK", n.Tok), one("X", n.X), ptr("BODY", n.Body)}, nil
	}
	return "", nil, fault.Newf(fault.KindUnsupportedShape, "schema", "no schema for %T", n)
}

// literalValue renders a literal the way the lexical importer renders
// its token, so the leaf and the token carry the same text.
func literalValue(lit *ast.BasicLit) string {
	if lit.Kind == token.STRING || lit.Kind == token.CHAR {
		if v, err := strconv.Unquote(lit.Value); err == nil {
			return v
		}
	}
	return lit.Value
}

func chanDir(dir ast.ChanDir) string {
	switch dir {
	case ast.SEND:
		return "SEND"
	case ast.RECV:
		return "RECV"
	}
	return "BOTH"
}
