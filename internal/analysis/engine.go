package analysis

import (
	"go/ast"
	"go/types"
)

// Store maps each local variable to its abstract value. A missing entry
// stands for the analysis bottom.
type Store[V any] map[*types.Var]V

// Clone returns a shallow copy that can be updated without touching s.
func (s Store[V]) Clone() Store[V] {
	out := make(Store[V], len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Analysis is a forward may-analysis over lowered blocks. Transfer must
// not modify its input store.
type Analysis[V any] interface {
	Bottom() V
	Join(a, b V) V
	Equal(a, b V) bool
	Transfer(op Op, in Store[V]) Store[V]
}

// Result holds, for every read site, the value flowing into it.
type Result[V any] struct {
	Reads map[*ast.Ident]V
}

// Solve iterates a to a fixpoint over c, starting the entry block from
// init, then makes one annotation pass recording the value each read
// sees.
func Solve[V any](c *CFG, a Analysis[V], init Store[V]) *Result[V] {
	n := len(c.Blocks)
	out := make([]Store[V], n)
	queued := make([]bool, n)
	queue := make([]*Block, 0, n)
	for _, b := range c.Blocks {
		queue = append(queue, b)
		queued[b.Index] = true
	}

	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		queued[b.Index] = false

		store := flow(c, a, b, init, out)
		for _, op := range b.Ops {
			store = a.Transfer(op, store)
		}
		if out[b.Index] != nil && equalStores(a, out[b.Index], store) {
			continue
		}
		out[b.Index] = store
		for _, s := range b.Succs {
			if !queued[s.Index] {
				queue = append(queue, s)
				queued[s.Index] = true
			}
		}
	}

	res := &Result[V]{Reads: make(map[*ast.Ident]V)}
	for _, b := range c.Blocks {
		store := flow(c, a, b, init, out)
		for _, op := range b.Ops {
			if op.Kind == Read {
				v := get(a, store, op.Var)
				if prev, ok := res.Reads[op.Ident]; ok {
					v = a.Join(prev, v)
				}
				res.Reads[op.Ident] = v
			}
			store = a.Transfer(op, store)
		}
	}
	return res
}

// flow joins the predecessors' exit stores into b's entry store.
func flow[V any](c *CFG, a Analysis[V], b *Block, init Store[V], out []Store[V]) Store[V] {
	var in Store[V]
	if b.Index == 0 {
		in = init.Clone()
	} else {
		in = make(Store[V])
	}
	for _, p := range b.Preds {
		for k, v := range out[p.Index] {
			if cur, ok := in[k]; ok {
				in[k] = a.Join(cur, v)
			} else {
				in[k] = v
			}
		}
	}
	return in
}

func get[V any](a Analysis[V], s Store[V], v *types.Var) V {
	if val, ok := s[v]; ok {
		return val
	}
	return a.Bottom()
}

func equalStores[V any](a Analysis[V], x, y Store[V]) bool {
	for k, v := range x {
		if !a.Equal(v, get(a, y, k)) {
			return false
		}
	}
	for k, v := range y {
		if _, ok := x[k]; !ok && !a.Equal(a.Bottom(), v) {
			return false
		}
	}
	return true
}
