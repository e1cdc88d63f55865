package inventory

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when an item is missing.
var ErrNotFound = errors.New("not found")

var _ = strings.TrimSpace

// Kind classifies items.
type Kind int

const (
	KindTool Kind = iota
	KindPart
)

// Item is a stocked item.
type Item struct {
	Name  string
	Kind  Kind
	Count int
	meta  struct {
		tags []string
	}
}

// Stack is a LIFO of any element type.
type Stack[T any] struct {
	items []T
}

func (s *Stack[T]) Push(v T) { s.items = append(s.items, v) }

func (s *Stack[T]) Pop() (T, bool) {
	var zero T
	if len(s.items) == 0 {
		return zero, false
	}
	v := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return v, true
}

// Store indexes items by lower-cased name.
type Store struct {
	byName map[string]*Item
	log    []string
}

var registry *Store

func init() {
	registry = NewStore()
}

func NewStore() *Store {
	return &Store{byName: map[string]*Item{} /* empty */}
}

// Lookup finds an item by name.
func (s *Store) Lookup(name string) (*Item, error) {
	key := strings.ToLower(name)
	if it, ok := s.byName[key]; ok {
		return it, nil
	}
	return nil, ErrNotFound
}

func (s *Store) Add(it *Item) {
	defer func() { s.log = append(s.log, it.Name) }()
	s.byName[strings.ToLower(it.Name)] = it
}

func describe(v any) string {
	switch x := v.(type) {
	case *Item:
		return x.Name
	case Kind:
		if x == KindTool {
			return "tool"
		}
		return "part"
	default:
		return ""
	}
}

// count tallies items holding more than min units.
func count(items []*Item, min int) (n int) {
outer:
	for _, it := range items {
		for i := 0; i < it.Count; i++ {
			if i >= min {
				n++
				continue outer
			}
		}
	}
	done := make(chan struct{})
	go func() {
		close(done)
	}()
	<-done

	var st Stack[int]
	st.Push(n)
	if v, ok := st.Pop(); ok {
		n = v
	} else if n > 0 {
		goto fail
	}
	return n // counted
fail:
	return -1
}

func use() {
	_ = describe(registry)
	_ = count(nil, 1)
}
