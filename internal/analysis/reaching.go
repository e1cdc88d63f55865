package analysis

// LastWrite tracks, per variable, the write sites that may reach a read.
type LastWrite struct{}

func (LastWrite) Bottom() TreeSet           { return TreeSet{} }
func (LastWrite) Join(a, b TreeSet) TreeSet { return a.Union(b) }
func (LastWrite) Equal(a, b TreeSet) bool   { return a.Equal(b) }

func (LastWrite) Transfer(op Op, in Store[TreeSet]) Store[TreeSet] {
	if op.Kind != Write {
		return in
	}
	out := in.Clone()
	out[op.Var] = NewTreeSet(op.Ident)
	return out
}

// LastUse tracks, per variable, the most recent accesses that may reach
// a read. Writes do not reset it.
type LastUse struct{}

func (LastUse) Bottom() TreeSet           { return TreeSet{} }
func (LastUse) Join(a, b TreeSet) TreeSet { return a.Union(b) }
func (LastUse) Equal(a, b TreeSet) bool   { return a.Equal(b) }

func (LastUse) Transfer(op Op, in Store[TreeSet]) Store[TreeSet] {
	if op.Kind != Read {
		return in
	}
	out := in.Clone()
	out[op.Var] = NewTreeSet(op.Ident)
	return out
}
