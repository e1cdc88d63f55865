package resolver

import (
	"errors"
	"fmt"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"

	"featgraph/internal/fault"
)

// Unit is one parsed and type-checked Go source file: the resolved program
// a feature graph is built from.
type Unit struct {
	Path    string
	Src     []byte
	Fset    *token.FileSet
	File    *ast.File
	TokFile *token.File
	Pkg     *types.Package
	Info    *types.Info

	// Err is set when the front end could not fully resolve the unit.
	Err error

	switches *typeSwitchVars
}

// typeSwitchVars canonicalizes the variable of `switch v := x.(type)`.
// go/types declares one implicit object per case clause and none for the
// header; all of them stand for the first clause's object.
type typeSwitchVars struct {
	header map[*ast.Ident]types.Object
	clause map[types.Object]types.Object
}

// NewInfo allocates a types.Info with every map the graph builder reads.
func NewInfo() *types.Info {
	return &types.Info{
		Types:      make(map[ast.Expr]types.TypeAndValue),
		Defs:       make(map[*ast.Ident]types.Object),
		Uses:       make(map[*ast.Ident]types.Object),
		Implicits:  make(map[ast.Node]types.Object),
		Selections: make(map[*ast.SelectorExpr]*types.Selection),
		Scopes:     make(map[ast.Node]*types.Scope),
		Instances:  make(map[*ast.Ident]types.Instance),
	}
}

// ParseSource parses and type-checks a single self-contained file.
// Imports are resolved with the default importer.
func ParseSource(filename string, src []byte) (*Unit, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, fault.New(fault.KindFrontEnd, "parse", err).WithUnit(filename)
	}

	var typeErrs []error
	conf := types.Config{
		Importer: importer.Default(),
		Error:    func(err error) { typeErrs = append(typeErrs, err) },
	}
	info := NewInfo()
	pkg, _ := conf.Check(file.Name.Name, fset, []*ast.File{file}, info)
	if len(typeErrs) > 0 {
		return nil, fault.New(fault.KindFrontEnd, "typecheck", errors.Join(typeErrs...)).WithUnit(filename)
	}

	return &Unit{
		Path:    filename,
		Src:     src,
		Fset:    fset,
		File:    file,
		TokFile: fset.File(file.Pos()),
		Pkg:     pkg,
		Info:    info,
	}, nil
}

// Offset converts a position in the unit's file to a byte offset, or -1
// when pos is invalid or belongs to another file.
func (u *Unit) Offset(pos token.Pos) int {
	if !pos.IsValid() || u.TokFile == nil {
		return -1
	}
	base := u.TokFile.Base()
	if int(pos) < base || int(pos) > base+u.TokFile.Size() {
		return -1
	}
	return int(pos) - base
}

// ObjectOf resolves an identifier through Defs, then Uses. Generic
// instantiations are mapped back to their origin.
//
// The per-clause variables of a type switch, and its header identifier,
// all resolve to one object.
func (u *Unit) ObjectOf(id *ast.Ident) types.Object {
	obj := u.Info.Defs[id]
	if obj == nil {
		obj = u.Info.Uses[id]
	}
	sw := u.typeSwitches()
	if obj == nil {
		obj = sw.header[id]
	} else if rep, ok := sw.clause[obj]; ok {
		obj = rep
	}
	return Origin(obj)
}

func (u *Unit) typeSwitches() *typeSwitchVars {
	if u.switches != nil {
		return u.switches
	}
	sw := &typeSwitchVars{
		header: make(map[*ast.Ident]types.Object),
		clause: make(map[types.Object]types.Object),
	}
	u.switches = sw
	if u.File == nil || u.Info == nil {
		return sw
	}
	ast.Inspect(u.File, func(n ast.Node) bool {
		ts, ok := n.(*ast.TypeSwitchStmt)
		if !ok {
			return true
		}
		assign, ok := ts.Assign.(*ast.AssignStmt)
		if !ok || len(assign.Lhs) != 1 {
			return true
		}
		header, ok := assign.Lhs[0].(*ast.Ident)
		if !ok {
			return true
		}
		var rep types.Object
		for _, stmt := range ts.Body.List {
			obj := u.Info.Implicits[stmt]
			if obj == nil {
				continue
			}
			if rep == nil {
				rep = obj
				sw.header[header] = obj
			}
			sw.clause[obj] = rep
		}
		return true
	})
	return sw
}

// Origin canonicalizes instantiated fields and methods.
func Origin(obj types.Object) types.Object {
	switch o := obj.(type) {
	case *types.Var:
		return o.Origin()
	case *types.Func:
		return o.Origin()
	}
	return obj
}

// IsLocal reports whether obj is declared inside a function or type
// declaration rather than at package or universe scope.
func IsLocal(obj types.Object) bool {
	if obj == nil || obj.Pkg() == nil {
		return false
	}
	parent := obj.Parent()
	return parent != nil && parent != types.Universe && parent != obj.Pkg().Scope()
}

// LocalVar returns the local variable an identifier refers to, or nil.
// Struct fields are never local variables.
func (u *Unit) LocalVar(id *ast.Ident) *types.Var {
	v, ok := u.ObjectOf(id).(*types.Var)
	if !ok || v.IsField() || !IsLocal(v) {
		return nil
	}
	return v
}

// Var returns the non-field variable an identifier refers to, or nil.
func (u *Unit) Var(id *ast.Ident) *types.Var {
	v, ok := u.ObjectOf(id).(*types.Var)
	if !ok || v.IsField() {
		return nil
	}
	return v
}

func (u *Unit) String() string {
	return fmt.Sprintf("unit(%s)", u.Path)
}
