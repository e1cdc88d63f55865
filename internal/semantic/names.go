package semantic

import (
	"go/ast"
	"go/token"
	"go/types"
	"strconv"
	"strings"

	"golang.org/x/tools/go/ast/astutil"

	"featgraph/internal/resolver"
)

// Namer renders stable, declaration-unique names for resolved objects.
//
// Block-scoped objects are named after their enclosing function plus the
// declaration offset, so two unrelated locals called x in sibling blocks
// get distinct names. Package-level objects use their package path;
// functions and methods append their parameter types.
type Namer struct {
	u          *resolver.Unit
	funcLits   map[*ast.FuncLit]string
	fieldOwner map[*types.Var]*types.TypeName
	cache      map[types.Object]string
}

func NewNamer(u *resolver.Unit) *Namer {
	n := &Namer{
		u:          u,
		funcLits:   make(map[*ast.FuncLit]string),
		fieldOwner: make(map[*types.Var]*types.TypeName),
		cache:      make(map[types.Object]string),
	}
	n.indexFuncLits()
	n.indexFieldOwners()
	return n
}

// Name returns the canonical name of obj.
func (n *Namer) Name(obj types.Object) string {
	obj = resolver.Origin(obj)
	if name, ok := n.cache[obj]; ok {
		return name
	}
	name := n.render(obj)
	n.cache[obj] = name
	return name
}

func (n *Namer) render(obj types.Object) string {
	switch o := obj.(type) {
	case *types.PkgName:
		return o.Imported().Path()
	case *types.Func:
		return n.funcName(o)
	case *types.Label:
		return n.localName(o)
	case *types.Var:
		if o.IsField() {
			return n.fieldName(o)
		}
	}
	if obj.Pkg() == nil {
		return obj.Name()
	}
	if resolver.IsLocal(obj) {
		return n.localName(obj)
	}
	name := obj.Pkg().Path() + "." + obj.Name()
	if obj.Name() == "_" {
		name += "@" + n.offset(obj.Pos())
	}
	return name
}

func (n *Namer) localName(obj types.Object) string {
	return n.ownerName(obj.Pos()) + "." + obj.Name() + "@" + n.offset(obj.Pos())
}

func (n *Namer) funcName(f *types.Func) string {
	sig, _ := f.Type().(*types.Signature)
	prefix := ""
	switch {
	case sig != nil && sig.Recv() != nil:
		prefix = n.recvName(sig.Recv().Type())
	case f.Pkg() != nil:
		prefix = f.Pkg().Path()
	}

	var sb strings.Builder
	if prefix != "" {
		sb.WriteString(prefix)
		sb.WriteByte('.')
	}
	sb.WriteString(f.Name())
	sb.WriteString(renderParams(sig))
	// init functions and blank functions may be declared repeatedly.
	if (f.Name() == "init" && sig != nil && sig.Recv() == nil) || f.Name() == "_" {
		sb.WriteString("@" + n.offset(f.Pos()))
	}
	return sb.String()
}

func (n *Namer) fieldName(v *types.Var) string {
	if owner := n.fieldOwner[v]; owner != nil {
		return n.Name(owner) + "." + v.Name()
	}
	prefix := "struct"
	if v.Pkg() != nil {
		prefix = v.Pkg().Path() + ".struct"
	}
	if off := n.u.Offset(v.Pos()); off >= 0 {
		prefix = n.ownerName(v.Pos()) + ".struct"
	}
	return prefix + "." + v.Name() + "@" + n.offset(v.Pos())
}

func (n *Namer) recvName(t types.Type) string {
	t = types.Unalias(t)
	if p, ok := t.(*types.Pointer); ok {
		t = types.Unalias(p.Elem())
	}
	if named, ok := t.(*types.Named); ok {
		return n.Name(named.Origin().Obj())
	}
	return types.TypeString(t, nil)
}

// ownerName names the innermost function or type declaration enclosing
// pos, falling back to the package path. A declaration whose own name
// sits at pos is the object being named, not its owner.
func (n *Namer) ownerName(pos token.Pos) string {
	path, _ := astutil.PathEnclosingInterval(n.u.File, pos, pos)
	for _, node := range path {
		switch node := node.(type) {
		case *ast.FuncLit:
			if name, ok := n.funcLits[node]; ok {
				return name
			}
		case *ast.FuncDecl:
			if node.Name.Pos() == pos {
				continue
			}
			if obj := n.u.Info.Defs[node.Name]; obj != nil {
				return n.Name(obj)
			}
		case *ast.TypeSpec:
			if node.Name.Pos() == pos {
				continue
			}
			if obj := n.u.Info.Defs[node.Name]; obj != nil {
				return n.Name(obj)
			}
		}
	}
	if n.u.Pkg != nil {
		return n.u.Pkg.Path()
	}
	return ""
}

func (n *Namer) offset(pos token.Pos) string {
	if off := n.u.Offset(pos); off >= 0 {
		return strconv.Itoa(off)
	}
	return strconv.Itoa(int(pos))
}

// indexFuncLits numbers function literals per top-level declaration in
// source order, the way the compiler does.
func (n *Namer) indexFuncLits() {
	pkgPath := ""
	if n.u.Pkg != nil {
		pkgPath = n.u.Pkg.Path()
	}
	globals := 0
	for _, decl := range n.u.File.Decls {
		prefix := pkgPath + ".glob."
		count := &globals
		local := 0
		if fd, ok := decl.(*ast.FuncDecl); ok {
			if obj := n.u.Info.Defs[fd.Name]; obj != nil {
				prefix = n.Name(obj)
				count = &local
			}
		}
		ast.Inspect(decl, func(node ast.Node) bool {
			if lit, ok := node.(*ast.FuncLit); ok {
				*count++
				n.funcLits[lit] = prefix + ".func" + strconv.Itoa(*count)
			}
			return true
		})
	}
}

// indexFieldOwners maps struct fields to the named type declaring them,
// visiting types in source order so the first declaration wins.
func (n *Namer) indexFieldOwners() {
	seen := make(map[*types.Named]bool)
	ast.Inspect(n.u.File, func(node ast.Node) bool {
		switch node := node.(type) {
		case *ast.Ident:
			if tn, ok := n.u.ObjectOf(node).(*types.TypeName); ok {
				n.registerFields(tn.Type(), seen)
			}
		case *ast.SelectorExpr:
			if sel := n.u.Info.Selections[node]; sel != nil {
				n.registerFields(sel.Recv(), seen)
			}
		}
		if e, ok := node.(ast.Expr); ok {
			if tv, ok := n.u.Info.Types[e]; ok && tv.Type != nil {
				n.registerFields(tv.Type, seen)
			}
		}
		return true
	})
}

func (n *Namer) registerFields(t types.Type, seen map[*types.Named]bool) {
	t = types.Unalias(t)
	if p, ok := t.(*types.Pointer); ok {
		t = types.Unalias(p.Elem())
	}
	named, ok := t.(*types.Named)
	if !ok {
		return
	}
	named = named.Origin()
	if seen[named] {
		return
	}
	seen[named] = true
	st, ok := named.Underlying().(*types.Struct)
	if !ok {
		return
	}
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if _, ok := n.fieldOwner[f]; !ok {
			n.fieldOwner[f] = named.Obj()
		}
		if f.Embedded() {
			n.registerFields(f.Type(), seen)
		}
	}
}

func renderParams(sig *types.Signature) string {
	if sig == nil {
		return "()"
	}
	params := sig.Params()
	parts := make([]string, params.Len())
	for i := 0; i < params.Len(); i++ {
		t := params.At(i).Type()
		if sig.Variadic() && i == params.Len()-1 {
			if s, ok := t.(*types.Slice); ok {
				parts[i] = "..." + types.TypeString(s.Elem(), nil)
				continue
			}
		}
		parts[i] = types.TypeString(t, nil)
	}
	return "(" + strings.Join(parts, ",") + ")"
}
