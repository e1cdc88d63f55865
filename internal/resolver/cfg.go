package resolver

import (
	"fmt"
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/cfg"

	"featgraph/internal/fault"
)

// BuildCFG constructs the control-flow graph of one function body.
// Failures are reported as KindAnalysisUnavailable.
func (u *Unit) BuildCFG(body *ast.BlockStmt) (g *cfg.CFG, err error) {
	if body == nil {
		return nil, fault.Newf(fault.KindAnalysisUnavailable, "cfg", "function has no body")
	}
	defer func() {
		if r := recover(); r != nil {
			g = nil
			err = fault.Newf(fault.KindAnalysisUnavailable, "cfg", "%v", r).WithUnit(u.Path)
		}
	}()
	return cfg.New(body, u.mayReturn), nil
}

// mayReturn reports false for calls that never return control.
func (u *Unit) mayReturn(call *ast.CallExpr) bool {
	id, ok := ast.Unparen(call.Fun).(*ast.Ident)
	if !ok {
		return true
	}
	if b, ok := u.Info.Uses[id].(*types.Builtin); ok && b.Name() == "panic" {
		return false
	}
	return true
}

// FuncBody pairs a function declaration or literal with its body.
type FuncBody struct {
	Node ast.Node // *ast.FuncDecl or *ast.FuncLit
	Type *ast.FuncType
	Recv *ast.FieldList
	Body *ast.BlockStmt
}

func (f FuncBody) String() string {
	if d, ok := f.Node.(*ast.FuncDecl); ok {
		return d.Name.Name
	}
	return fmt.Sprintf("func literal at %d", f.Node.Pos())
}

// Functions lists every function with a body in source order, including
// nested function literals.
func (u *Unit) Functions() []FuncBody {
	var out []FuncBody
	ast.Inspect(u.File, func(n ast.Node) bool {
		switch fn := n.(type) {
		case *ast.FuncDecl:
			if fn.Body != nil {
				out = append(out, FuncBody{Node: fn, Type: fn.Type, Recv: fn.Recv, Body: fn.Body})
			}
		case *ast.FuncLit:
			out = append(out, FuncBody{Node: fn, Type: fn.Type, Body: fn.Body})
		}
		return true
	})
	return out
}
