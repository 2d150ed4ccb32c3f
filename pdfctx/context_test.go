package pdfctx

import (
	"testing"

	"github.com/jlmessenger/pdf-lib/pdfval"
)

func TestRegisterAssignsIncreasingNumbers(t *testing.T) {
	c := New()
	r1 := c.Register(pdfval.Int(1))
	r2 := c.Register(pdfval.Int(2))
	if r1.Number != 1 || r2.Number != 2 {
		t.Fatalf("got %v, %v", r1, r2)
	}
	if c.Largest() != 2 {
		t.Errorf("Largest() = %d, want 2", c.Largest())
	}
}

func TestDeleteRecyclesNumber(t *testing.T) {
	c := New()
	r1 := c.Register(pdfval.Int(1))
	c.Delete(r1)
	r2 := c.NextRef()
	if r2.Number != r1.Number {
		t.Errorf("expected recycled number %d, got %d", r1.Number, r2.Number)
	}
}

func TestLookupResolvesRef(t *testing.T) {
	c := New()
	ref := c.Register(pdfval.Name("Page"))
	got := c.Lookup(ref)
	if got != pdfval.Name("Page") {
		t.Errorf("Lookup(ref) = %v", got)
	}
}

func TestLookupPassesThroughNonRef(t *testing.T) {
	c := New()
	got := c.Lookup(pdfval.Int(42))
	if got != pdfval.Int(42) {
		t.Errorf("Lookup(non-ref) = %v", got)
	}
}

func TestLookupDanglingResolvesToNull(t *testing.T) {
	c := New()
	ref := pdfval.Ref{Number: 99}
	c.MarkDangling(ref)
	if !pdfval.IsNull(c.Lookup(ref)) {
		t.Error("expected dangling ref to resolve to Null")
	}
}

func TestAssignToUnreservedNumberPanics(t *testing.T) {
	c := New()
	defer func() {
		if recover() == nil {
			t.Error("expected panic assigning to unreserved number")
		}
	}()
	c.Assign(pdfval.Ref{Number: 5}, pdfval.Int(1))
}

func TestAssignClearsDangling(t *testing.T) {
	c := New()
	ref := c.NextRef()
	c.MarkDangling(ref)
	c.Assign(ref, pdfval.Int(7))
	if got := c.Lookup(ref); got != pdfval.Int(7) {
		t.Errorf("Lookup after Assign = %v", got)
	}
}

func TestObjectsIteratesInAscendingOrder(t *testing.T) {
	c := New()
	r3 := c.Register(pdfval.Int(3))
	r1 := c.Register(pdfval.Int(1))
	_ = r1
	_ = r3
	var seen []uint32
	c.Objects(func(ref pdfval.Ref, v pdfval.Value) {
		seen = append(seen, ref.Number)
	})
	for i := 1; i < len(seen); i++ {
		if seen[i-1] > seen[i] {
			t.Fatalf("Objects not in ascending order: %v", seen)
		}
	}
}

func TestNoRefSharedAcrossContexts(t *testing.T) {
	a, b := New(), New()
	// A Ref is a plain (number, generation) pair, so a gets one more
	// object than b: ra's number is then one b never allocated.
	a.Register(pdfval.Int(0))
	ra := a.Register(pdfval.Int(1))
	rb := b.Register(pdfval.Int(1))
	if !a.Has(ra) || b.Has(ra) {
		t.Error("Context a's ref should not be visible in Context b")
	}
	_ = rb
}
