package pdfcopy

import (
	"testing"

	"github.com/jlmessenger/pdf-lib/pdfctx"
	"github.com/jlmessenger/pdf-lib/pdfval"
)

func TestCopyRefRenumbersAndPreservesStructure(t *testing.T) {
	src := pdfctx.New()
	childRef := src.Register(pdfval.NewDict())
	childDict := pdfval.NewDict()
	childDict.Set("Marker", pdfval.Int(7))
	src.Assign(childRef, childDict)

	parentDict := pdfval.NewDict()
	parentDict.Set("Child", childRef)
	parentRef := src.Register(parentDict)

	dst := pdfctx.New()
	// dst already owns an unrelated object, so a naive copy that
	// reused source numbers verbatim would collide with it.
	dst.Register(pdfval.NewDict())

	localParent := New(src, dst).CopyRef(parentRef)

	copiedParent, ok := dst.Lookup(localParent).(pdfval.Dict)
	if !ok {
		t.Fatalf("expected dict at copied parent ref")
	}
	childLocalRef, ok := copiedParent.Get("Child").(pdfval.Ref)
	if !ok {
		t.Fatalf("expected Child to remain a Ref after copy, got %v", copiedParent.Get("Child"))
	}
	if childLocalRef == childRef {
		t.Errorf("child ref was not renumbered: %v", childLocalRef)
	}

	copiedChild, ok := dst.Lookup(childLocalRef).(pdfval.Dict)
	if !ok || copiedChild.Get("Marker") != pdfval.Int(7) {
		t.Errorf("copied child has wrong content: %v", copiedChild)
	}
}

func TestCopyRefBreaksCycles(t *testing.T) {
	src := pdfctx.New()
	aRef := src.NextRef()
	bRef := src.NextRef()

	aDict := pdfval.NewDict()
	aDict.Set("Next", bRef)
	src.Assign(aRef, aDict)

	bDict := pdfval.NewDict()
	bDict.Set("Next", aRef)
	src.Assign(bRef, bDict)

	dst := pdfctx.New()
	c := New(src, dst)

	localA := c.CopyRef(aRef)

	copiedA := dst.Lookup(localA).(pdfval.Dict)
	localB, ok := copiedA.Get("Next").(pdfval.Ref)
	if !ok {
		t.Fatalf("expected Next to be a Ref")
	}
	copiedB := dst.Lookup(localB).(pdfval.Dict)
	backToA, ok := copiedB.Get("Next").(pdfval.Ref)
	if !ok || backToA != localA {
		t.Errorf("cycle was not closed back to the copied A: got %v, want %v", backToA, localA)
	}
}

func TestCopyRefSharesStructureOnRepeatedCalls(t *testing.T) {
	src := pdfctx.New()
	sharedRef := src.Register(pdfval.NewDict())

	arr1 := pdfval.NewDict()
	arr1.Set("A", sharedRef)
	ref1 := src.Register(arr1)

	arr2 := pdfval.NewDict()
	arr2.Set("B", sharedRef)
	ref2 := src.Register(arr2)

	dst := pdfctx.New()
	c := New(src, dst)

	local1 := c.CopyRef(ref1)
	local2 := c.CopyRef(ref2)

	shared1 := dst.Lookup(local1).(pdfval.Dict).Get("A").(pdfval.Ref)
	shared2 := dst.Lookup(local2).(pdfval.Dict).Get("B").(pdfval.Ref)
	if shared1 != shared2 {
		t.Errorf("shared source object was copied twice: %v != %v", shared1, shared2)
	}
}

func TestCopyRefLeavesSourceUntouched(t *testing.T) {
	src := pdfctx.New()
	dict := pdfval.NewDict()
	dict.Set("Name", pdfval.Name("Original"))
	ref := src.Register(dict)

	dst := pdfctx.New()
	local := New(src, dst).CopyRef(ref)

	mutated := dst.Lookup(local).(pdfval.Dict)
	mutated.Set("Name", pdfval.Name("Mutated"))
	dst.Assign(local, mutated)

	original := src.Lookup(ref).(pdfval.Dict)
	if original.Get("Name") != pdfval.Name("Original") {
		t.Errorf("mutating the copy affected the source: %v", original.Get("Name"))
	}
}

func TestCopyValueTranslatesRefsInArray(t *testing.T) {
	src := pdfctx.New()
	leafRef := src.Register(pdfval.NewDict())
	src.Assign(leafRef, pdfval.NewDict())

	dst := pdfctx.New()
	// dst already owns an unrelated object, so the translated Ref gets
	// a number different from the source's.
	dst.Register(pdfval.NewDict())
	c := New(src, dst)

	copied := c.CopyValue(pdfval.Array{pdfval.Int(1), leafRef, pdfval.Name("X")})
	arr, ok := copied.(pdfval.Array)
	if !ok || len(arr) != 3 {
		t.Fatalf("expected 3-element array, got %v", copied)
	}
	localLeaf, ok := arr[1].(pdfval.Ref)
	if !ok || localLeaf == leafRef {
		t.Errorf("array element Ref was not translated: %v", arr[1])
	}
}
