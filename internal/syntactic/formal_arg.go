package syntactic

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/types/typeutil"

	"featgraph/internal/graph"
	"featgraph/internal/resolver"
)

// AddFormalArgNames links the variables in each argument of a call to a
// function declared in this unit to the matching parameter's name.
// Arguments and parameters are paired by position; unnamed parameters
// and surplus arguments get no edge.
func AddFormalArgNames(g *graph.Graph, u *resolver.Unit) int {
	formals := make(map[*types.Func][]*ast.Ident)
	for _, decl := range u.File.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}
		fn, ok := u.Info.Defs[fd.Name].(*types.Func)
		if !ok {
			continue
		}
		formals[fn] = flattenParams(fd.Type.Params)
	}

	n := 0
	ast.Inspect(u.File, func(node ast.Node) bool {
		call, ok := node.(*ast.CallExpr)
		if !ok {
			return true
		}
		callee := typeutil.StaticCallee(u.Info, call)
		if callee == nil {
			return true
		}
		params, ok := formals[callee.Origin()]
		if !ok {
			return true
		}
		for i := 0; i < len(call.Args) && i < len(params); i++ {
			if params[i] == nil {
				continue
			}
			dst := tokenOf(g, params[i])
			for _, id := range Identifiers(u, call.Args[i]) {
				if g.AddEdge(tokenOf(g, id), dst, graph.EdgeFormalArgName) != nil {
					n++
				}
			}
		}
		return true
	})
	return n
}

// flattenParams lists one entry per parameter; unnamed ones are nil.
func flattenParams(fl *ast.FieldList) []*ast.Ident {
	if fl == nil {
		return nil
	}
	var out []*ast.Ident
	for _, field := range fl.List {
		if len(field.Names) == 0 {
			out = append(out, nil)
			continue
		}
		out = append(out, field.Names...)
	}
	return out
}
