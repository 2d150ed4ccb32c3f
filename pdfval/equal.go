package pdfval

import "bytes"

// Equal reports deep structural equality. Refs compare structurally on
// the (number, generation) pair, never by following them — callers
// that want to compare the objects a Ref points to must resolve it
// through a Context first.
func Equal(a, b Value) bool {
	if a == nil {
		a = Null{}
	}
	if b == nil {
		b = Null{}
	}
	switch av := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Int:
		bv, ok := b.(Int)
		return ok && av == bv
	case Real:
		bv, ok := b.(Real)
		return ok && av == bv
	case Name:
		bv, ok := b.(Name)
		return ok && av == bv
	case String:
		bv, ok := b.(String)
		return ok && bytes.Equal(av.Bytes, bv.Bytes)
	case Ref:
		bv, ok := b.(Ref)
		return ok && av == bv
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Dict:
		bv, ok := b.(Dict)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		equal := true
		av.Range(func(name Name, v Value) {
			if !bv.Has(name) || !Equal(v, bv.Get(name)) {
				equal = false
			}
		})
		return equal
	case Stream:
		bv, ok := b.(Stream)
		return ok && Equal(av.Dict, bv.Dict) && bytes.Equal(av.Content, bv.Content)
	default:
		return false
	}
}
