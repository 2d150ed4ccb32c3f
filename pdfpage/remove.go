package pdfpage

import (
	"fmt"

	"github.com/jlmessenger/pdf-lib/pdfval"
)

// Remove detaches the leaf at rendering index from the tree, rebalances
// any underflowing ancestors by borrowing from or merging with a
// sibling, and collapses the root if it is left with a single /Pages
// child. It returns the detached leaf's Ref; the caller decides
// whether to delete the underlying object from the Context.
func (t *Tree) Remove(index int) (pdfval.Ref, error) {
	total := t.Count()
	if index < 0 || index >= total {
		return pdfval.Ref{}, fmt.Errorf("pdfpage: remove index %d out of range (count %d)", index, total)
	}

	path, localIndex, err := t.descendToLeafLevel(index)
	if err != nil {
		return pdfval.Ref{}, err
	}
	leafLevelRef := path[len(path)-1]
	ancestors := path[:len(path)-1]

	node := t.ctx.Lookup(leafLevelRef).(pdfval.Dict)
	kids, _ := node.Get("Kids").(pdfval.Array)
	if localIndex < 0 || localIndex >= len(kids) {
		return pdfval.Ref{}, fmt.Errorf("pdfpage: remove index %d resolved out of range", index)
	}
	removed, ok := kids[localIndex].(pdfval.Ref)
	if !ok {
		return pdfval.Ref{}, fmt.Errorf("pdfpage: corrupt tree: kid %d is not a Ref", localIndex)
	}

	newKids := append(append(pdfval.Array(nil), kids[:localIndex]...), kids[localIndex+1:]...)
	node.Set("Kids", newKids)
	node.Set("Count", t.sumCounts(newKids))
	t.ctx.Assign(leafLevelRef, node)

	t.rebalanceAfterRemove(leafLevelRef, ancestors)
	return removed, nil
}

// minKids is the floor a non-root node's kid count may not drop below
// without triggering a borrow or merge, ceil(B/2) per spec section 4.4.
func (t *Tree) minKids() int {
	return (t.branchingFactor + 1) / 2
}

func (t *Tree) rebalanceAfterRemove(current pdfval.Ref, ancestors []pdfval.Ref) {
	for len(ancestors) > 0 {
		node := t.ctx.Lookup(current).(pdfval.Dict)
		kids, _ := node.Get("Kids").(pdfval.Array)
		if len(kids) >= t.minKids() {
			t.recomputeCountsUpward(ancestors)
			return
		}

		parentRef := ancestors[len(ancestors)-1]
		parentNode := t.ctx.Lookup(parentRef).(pdfval.Dict)
		parentKids, _ := parentNode.Get("Kids").(pdfval.Array)
		idx := indexOfRef(parentKids, current)
		if idx == -1 {
			return
		}

		var siblingIdx int
		mergeWithLeft := idx > 0
		if mergeWithLeft {
			siblingIdx = idx - 1
		} else {
			siblingIdx = idx + 1
		}
		siblingRef, ok := parentKids[siblingIdx].(pdfval.Ref)
		if !ok {
			return
		}
		siblingNode := t.ctx.Lookup(siblingRef).(pdfval.Dict)
		siblingKids, _ := siblingNode.Get("Kids").(pdfval.Array)

		if len(siblingKids) > t.minKids() {
			t.borrowFromSibling(current, siblingRef, mergeWithLeft)
			t.recomputeCountsUpward(ancestors)
			return
		}

		_, absorbed := t.mergeWithSibling(current, siblingRef, mergeWithLeft)
		parentNode = t.ctx.Lookup(parentRef).(pdfval.Dict)
		parentKids, _ = parentNode.Get("Kids").(pdfval.Array)
		newParentKids := removeRef(parentKids, absorbed)
		parentNode.Set("Kids", newParentKids)
		parentNode.Set("Count", t.sumCounts(newParentKids))
		t.ctx.Assign(parentRef, parentNode)
		t.ctx.Delete(absorbed)

		current = parentRef
		ancestors = ancestors[:len(ancestors)-1]
	}

	t.collapseRootIfNeeded()
}

// borrowFromSibling moves one kid across from siblingRef into current,
// keeping rendering order: if the sibling sits to current's left, its
// last kid is prepended to current; otherwise its first kid is
// appended.
func (t *Tree) borrowFromSibling(current, siblingRef pdfval.Ref, siblingOnLeft bool) {
	node := t.ctx.Lookup(current).(pdfval.Dict)
	kids, _ := node.Get("Kids").(pdfval.Array)
	siblingNode := t.ctx.Lookup(siblingRef).(pdfval.Dict)
	siblingKids, _ := siblingNode.Get("Kids").(pdfval.Array)

	var borrowed pdfval.Value
	var newSiblingKids, newKids pdfval.Array
	if siblingOnLeft {
		borrowed = siblingKids[len(siblingKids)-1]
		newSiblingKids = append(pdfval.Array(nil), siblingKids[:len(siblingKids)-1]...)
		newKids = append(pdfval.Array{borrowed}, kids...)
	} else {
		borrowed = siblingKids[0]
		newSiblingKids = append(pdfval.Array(nil), siblingKids[1:]...)
		newKids = append(append(pdfval.Array(nil), kids...), borrowed)
	}

	siblingNode.Set("Kids", newSiblingKids)
	siblingNode.Set("Count", t.sumCounts(newSiblingKids))
	t.ctx.Assign(siblingRef, siblingNode)

	node.Set("Kids", newKids)
	node.Set("Count", t.sumCounts(newKids))
	t.ctx.Assign(current, node)

	if bref, ok := borrowed.(pdfval.Ref); ok {
		t.setParentField(bref, current)
	}
}

// mergeWithSibling folds current and siblingRef's kids into whichever
// of the two sits on the left (preserving rendering order), deletes
// the other's node object, and returns (survivor, absorbed).
func (t *Tree) mergeWithSibling(current, siblingRef pdfval.Ref, siblingOnLeft bool) (pdfval.Ref, pdfval.Ref) {
	node := t.ctx.Lookup(current).(pdfval.Dict)
	kids, _ := node.Get("Kids").(pdfval.Array)
	siblingNode := t.ctx.Lookup(siblingRef).(pdfval.Dict)
	siblingKids, _ := siblingNode.Get("Kids").(pdfval.Array)

	var survivor, absorbed pdfval.Ref
	var merged pdfval.Array
	if siblingOnLeft {
		survivor, absorbed = siblingRef, current
		merged = append(append(pdfval.Array(nil), siblingKids...), kids...)
	} else {
		survivor, absorbed = current, siblingRef
		merged = append(append(pdfval.Array(nil), kids...), siblingKids...)
	}

	for _, k := range merged {
		if kref, ok := k.(pdfval.Ref); ok {
			t.setParentField(kref, survivor)
		}
	}

	survivorNode := t.ctx.Lookup(survivor).(pdfval.Dict)
	survivorNode.Set("Kids", merged)
	survivorNode.Set("Count", t.sumCounts(merged))
	t.ctx.Assign(survivor, survivorNode)

	return survivor, absorbed
}

// collapseRootIfNeeded removes a root that has decayed to a single
// /Pages child, promoting that child to be the new root.
func (t *Tree) collapseRootIfNeeded() {
	node, ok := t.ctx.Lookup(t.root).(pdfval.Dict)
	if !ok {
		return
	}
	kids, _ := node.Get("Kids").(pdfval.Array)
	if len(kids) != 1 {
		return
	}
	onlyRef, ok := kids[0].(pdfval.Ref)
	if !ok || t.isLeafRef(onlyRef) {
		return
	}

	oldRoot := t.root
	newRootNode := t.ctx.Lookup(onlyRef).(pdfval.Dict)
	newRootNode.Delete("Parent")
	t.ctx.Assign(onlyRef, newRootNode)
	t.root = onlyRef
	t.ctx.Delete(oldRoot)
}

func removeRef(kids pdfval.Array, ref pdfval.Ref) pdfval.Array {
	out := make(pdfval.Array, 0, len(kids))
	for _, k := range kids {
		if kref, ok := k.(pdfval.Ref); ok && kref == ref {
			continue
		}
		out = append(out, k)
	}
	return out
}
