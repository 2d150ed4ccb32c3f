package pdfpage

import (
	"fmt"

	"github.com/jlmessenger/pdf-lib/pdfval"
)

// Insert places leafRef (already a /Page dict registered in the
// Context, but not yet linked into the tree) at rendering index, per
// spec section 4.4. It returns the Ref of whichever /Pages node ends
// up being leafRef's parent; the caller is responsible for setting
// that leaf's own /Parent entry to the returned Ref.
func (t *Tree) Insert(leafRef pdfval.Ref, index int) (pdfval.Ref, error) {
	total := t.Count()
	if index < 0 || index > total {
		return pdfval.Ref{}, fmt.Errorf("pdfpage: insert index %d out of range (count %d)", index, total)
	}

	path, localIndex, err := t.descendToLeafLevel(index)
	if err != nil {
		return pdfval.Ref{}, err
	}
	leafLevelRef := path[len(path)-1]
	ancestors := path[:len(path)-1]

	node := t.ctx.Lookup(leafLevelRef).(pdfval.Dict)
	kids, _ := node.Get("Kids").(pdfval.Array)
	if localIndex < 0 || localIndex > len(kids) {
		return pdfval.Ref{}, fmt.Errorf("pdfpage: insert index %d resolved out of range", index)
	}
	newKids := insertRef(kids, localIndex, leafRef)
	node.Set("Kids", newKids)
	node.Set("Count", pdfval.Int(len(newKids)))
	t.ctx.Assign(leafLevelRef, node)

	leafParent := leafLevelRef

	if len(newKids) > t.branchingFactor {
		rightRef, leafOnRight := t.splitNode(leafLevelRef, leafRef)
		if leafOnRight {
			leafParent = rightRef
		}
		if err := t.propagateSplit(ancestors, leafLevelRef, rightRef); err != nil {
			return pdfval.Ref{}, err
		}
	} else {
		t.recomputeCountsUpward(ancestors)
	}

	return leafParent, nil
}

// splitNode halves nodeRef's kids in place (keeping the left half on
// nodeRef) and registers a new node for the right half, fixing up the
// /Parent field of every kid that moved. watchedRef, when it is one of
// the moved kids, reports which side it ended up on (used by Insert to
// know the just-inserted leaf's real parent after a split).
func (t *Tree) splitNode(nodeRef pdfval.Ref, watchedRef pdfval.Ref) (pdfval.Ref, bool) {
	node := t.ctx.Lookup(nodeRef).(pdfval.Dict)
	kids, _ := node.Get("Kids").(pdfval.Array)
	mid := len(kids) / 2

	left := append(pdfval.Array(nil), kids[:mid]...)
	right := append(pdfval.Array(nil), kids[mid:]...)

	node.Set("Kids", left)
	node.Set("Count", t.sumCounts(left))
	t.ctx.Assign(nodeRef, node)

	rightNode := pdfval.NewDict()
	rightNode.Set("Type", pdfval.Name("Pages"))
	rightNode.Set("Kids", right)
	rightNode.Set("Count", t.sumCounts(right))
	rightRef := t.ctx.Register(rightNode)

	watchedOnRight := false
	for _, k := range right {
		kref, ok := k.(pdfval.Ref)
		if !ok {
			continue
		}
		t.setParentField(kref, rightRef)
		if kref == watchedRef {
			watchedOnRight = true
		}
	}

	return rightRef, watchedOnRight
}

// propagateSplit inserts rightRef as leftRef's new right sibling into
// the parent named by the innermost entry of ancestors, splitting that
// parent too if it overflows, cascading up to a new root if needed.
func (t *Tree) propagateSplit(ancestors []pdfval.Ref, leftRef, rightRef pdfval.Ref) error {
	for len(ancestors) > 0 {
		parentRef := ancestors[len(ancestors)-1]
		parentNode := t.ctx.Lookup(parentRef).(pdfval.Dict)
		parentKids, _ := parentNode.Get("Kids").(pdfval.Array)

		idx := indexOfRef(parentKids, leftRef)
		if idx == -1 {
			return fmt.Errorf("pdfpage: corrupt tree: %v not found in parent %v", leftRef, parentRef)
		}
		t.setParentField(rightRef, parentRef)
		newParentKids := insertRef(parentKids, idx+1, rightRef)
		parentNode.Set("Kids", newParentKids)
		parentNode.Set("Count", t.sumCounts(newParentKids))
		t.ctx.Assign(parentRef, parentNode)

		if len(newParentKids) <= t.branchingFactor {
			t.recomputeCountsUpward(ancestors[:len(ancestors)-1])
			return nil
		}

		// The parent itself overflowed; split it and keep cascading.
		newRightRef, _ := t.splitNode(parentRef, pdfval.Ref{})
		leftRef, rightRef = parentRef, newRightRef
		ancestors = ancestors[:len(ancestors)-1]
	}

	// Overflow reached past the root: the root itself split, so a new
	// root is needed to hold both halves.
	newRoot := pdfval.NewDict()
	newRoot.Set("Type", pdfval.Name("Pages"))
	newRoot.Set("Kids", pdfval.Array{leftRef, rightRef})
	newRoot.Set("Count", t.sumCounts(pdfval.Array{leftRef, rightRef}))
	newRootRef := t.ctx.Register(newRoot)
	t.setParentField(leftRef, newRootRef)
	t.setParentField(rightRef, newRootRef)
	t.root = newRootRef
	return nil
}

// recomputeCountsUpward recomputes /Count along ancestors, innermost
// (nearest the leaf) first, so each level sees its children's already
// up to date counts.
func (t *Tree) recomputeCountsUpward(ancestors []pdfval.Ref) {
	for i := len(ancestors) - 1; i >= 0; i-- {
		ref := ancestors[i]
		node := t.ctx.Lookup(ref).(pdfval.Dict)
		kids, _ := node.Get("Kids").(pdfval.Array)
		node.Set("Count", t.sumCounts(kids))
		t.ctx.Assign(ref, node)
	}
}

func insertRef(kids pdfval.Array, index int, ref pdfval.Ref) pdfval.Array {
	out := make(pdfval.Array, 0, len(kids)+1)
	out = append(out, kids[:index]...)
	out = append(out, ref)
	out = append(out, kids[index:]...)
	return out
}

func indexOfRef(kids pdfval.Array, ref pdfval.Ref) int {
	for i, k := range kids {
		if kref, ok := k.(pdfval.Ref); ok && kref == ref {
			return i
		}
	}
	return -1
}
