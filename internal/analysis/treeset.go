package analysis

import (
	"cmp"
	"go/ast"
	"slices"
)

// TreeSet is a set of identifier sites compared by identity. Values are
// treated as immutable once built.
type TreeSet map[*ast.Ident]struct{}

func NewTreeSet(ids ...*ast.Ident) TreeSet {
	s := make(TreeSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Union returns a new set holding the members of both.
func (s TreeSet) Union(o TreeSet) TreeSet {
	out := make(TreeSet, len(s)+len(o))
	for id := range s {
		out[id] = struct{}{}
	}
	for id := range o {
		out[id] = struct{}{}
	}
	return out
}

func (s TreeSet) Equal(o TreeSet) bool {
	if len(s) != len(o) {
		return false
	}
	for id := range s {
		if _, ok := o[id]; !ok {
			return false
		}
	}
	return true
}

// Sorted lists the members by source position.
func (s TreeSet) Sorted() []*ast.Ident {
	out := make([]*ast.Ident, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.SortFunc(out, func(a, b *ast.Ident) int { return cmp.Compare(a.Pos(), b.Pos()) })
	return out
}
