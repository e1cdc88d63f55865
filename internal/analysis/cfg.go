package analysis

import (
	"go/ast"
	"go/token"
	"go/types"

	"featgraph/internal/resolver"
)

// OpKind distinguishes variable reads from writes.
type OpKind int

const (
	Read OpKind = iota
	Write
)

func (k OpKind) String() string {
	if k == Write {
		return "write"
	}
	return "read"
}

// Op is one access to a local variable at an identifier site.
type Op struct {
	Kind  OpKind
	Var   *types.Var
	Ident *ast.Ident
}

// Block is a basic block lowered to variable accesses in evaluation order.
type Block struct {
	Index int
	Ops   []Op
	Succs []*Block
	Preds []*Block
}

// CFG is the lowered control-flow graph of one function body. Blocks[0]
// is the entry.
type CFG struct {
	Fn     resolver.FuncBody
	Blocks []*Block
}

// Lower builds the control-flow graph of fn and rewrites each block's
// statements into read and write operations. Nested function literals
// are left out; they are lowered on their own.
func Lower(u *resolver.Unit, fn resolver.FuncBody) (*CFG, error) {
	raw, err := u.BuildCFG(fn.Body)
	if err != nil {
		return nil, err
	}

	l := &lowerer{u: u, writes: collectWriteSites(fn.Body)}
	c := &CFG{Fn: fn, Blocks: make([]*Block, len(raw.Blocks))}
	for i := range raw.Blocks {
		c.Blocks[i] = &Block{Index: i}
	}
	for i, rb := range raw.Blocks {
		b := c.Blocks[i]
		l.ops = nil
		for _, n := range rb.Nodes {
			l.node(n)
		}
		b.Ops = l.ops
		for _, s := range rb.Succs {
			succ := c.Blocks[s.Index]
			b.Succs = append(b.Succs, succ)
			succ.Preds = append(succ.Preds, b)
		}
	}
	return c, nil
}

// collectWriteSites marks the identifiers the CFG lists as bare
// expressions although they are assigned: range keys and values, and
// the left-hand side of select receive clauses.
func collectWriteSites(body *ast.BlockStmt) map[*ast.Ident]bool {
	writes := make(map[*ast.Ident]bool)
	mark := func(e ast.Expr) {
		if id, ok := ast.Unparen(e).(*ast.Ident); ok {
			writes[id] = true
		}
	}
	ast.Inspect(body, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.FuncLit:
			return false
		case *ast.RangeStmt:
			if n.Key != nil {
				mark(n.Key)
			}
			if n.Value != nil {
				mark(n.Value)
			}
		case *ast.CommClause:
			if as, ok := n.Comm.(*ast.AssignStmt); ok {
				for _, lhs := range as.Lhs {
					mark(lhs)
				}
			}
		}
		return true
	})
	return writes
}

type lowerer struct {
	u      *resolver.Unit
	writes map[*ast.Ident]bool
	ops    []Op
}

func (l *lowerer) node(n ast.Node) {
	switch n := n.(type) {
	case *ast.AssignStmt:
		if n.Tok == token.ASSIGN || n.Tok == token.DEFINE {
			for _, rhs := range n.Rhs {
				l.reads(rhs)
			}
			for _, lhs := range n.Lhs {
				l.assign(lhs)
			}
			return
		}
		// x op= y reads x before y and writes x last.
		for _, lhs := range n.Lhs {
			l.reads(lhs)
		}
		for _, rhs := range n.Rhs {
			l.reads(rhs)
		}
		for _, lhs := range n.Lhs {
			if id, ok := ast.Unparen(lhs).(*ast.Ident); ok {
				l.access(Write, id)
			}
		}
	case *ast.IncDecStmt:
		l.reads(n.X)
		if id, ok := ast.Unparen(n.X).(*ast.Ident); ok {
			l.access(Write, id)
		}
	case *ast.ValueSpec:
		for _, v := range n.Values {
			l.reads(v)
		}
		for _, name := range n.Names {
			l.access(Write, name)
		}
	case *ast.Ident:
		if l.writes[n] {
			l.access(Write, n)
		} else {
			l.access(Read, n)
		}
	default:
		l.reads(n)
	}
}

func (l *lowerer) assign(lhs ast.Expr) {
	if id, ok := ast.Unparen(lhs).(*ast.Ident); ok {
		l.access(Write, id)
		return
	}
	l.reads(lhs)
}

// reads records every local variable identifier under n as a read.
func (l *lowerer) reads(n ast.Node) {
	ast.Inspect(n, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.FuncLit:
			return false
		case *ast.SelectorExpr:
			l.reads(n.X)
			return false
		case *ast.Ident:
			l.access(Read, n)
		}
		return true
	})
}

func (l *lowerer) access(kind OpKind, id *ast.Ident) {
	if v := l.u.LocalVar(id); v != nil {
		l.ops = append(l.ops, Op{Kind: kind, Var: v, Ident: id})
	}
}
