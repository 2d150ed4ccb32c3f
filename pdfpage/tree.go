// Package pdfpage implements the page tree described by spec section
// 4.4: a bounded-branching B-tree of /Pages nodes over /Page leaves,
// addressed through a pdfctx.Context arena rather than Go pointers. The
// teacher's own model.PageTree (model/pages.go) is an unbounded,
// non-rebalancing n-ary tree built once at parse or construction time;
// this package adds the split-on-overflow / merge-on-underflow
// rebalancing a live, mutable document needs, in the same Dict+Ref
// idiom the rest of this module uses.
package pdfpage

import (
	"fmt"

	"github.com/jlmessenger/pdf-lib/pdfctx"
	"github.com/jlmessenger/pdf-lib/pdfval"
)

// DefaultBranchingFactor is the maximum number of kids a /Pages node
// may hold before it is split.
const DefaultBranchingFactor = 16

// Tree is a page tree rooted at a /Pages object inside ctx.
type Tree struct {
	ctx             *pdfctx.Context
	root            pdfval.Ref
	branchingFactor int
}

// New creates a fresh, empty page tree inside ctx and registers its
// root /Pages object. branchingFactor <= 1 falls back to
// DefaultBranchingFactor.
func New(ctx *pdfctx.Context, branchingFactor int) *Tree {
	if branchingFactor <= 1 {
		branchingFactor = DefaultBranchingFactor
	}
	root := pdfval.NewDict()
	root.Set("Type", pdfval.Name("Pages"))
	root.Set("Kids", pdfval.Array{})
	root.Set("Count", pdfval.Int(0))
	rootRef := ctx.Register(root)
	return &Tree{ctx: ctx, root: rootRef, branchingFactor: branchingFactor}
}

// Load wraps an existing /Pages object (typically discovered via
// Catalog -> /Pages after pdfparse.Parse) as a Tree.
func Load(ctx *pdfctx.Context, rootRef pdfval.Ref, branchingFactor int) *Tree {
	if branchingFactor <= 1 {
		branchingFactor = DefaultBranchingFactor
	}
	return &Tree{ctx: ctx, root: rootRef, branchingFactor: branchingFactor}
}

// Root returns the Ref of the tree's current /Pages root. It changes
// across Insert/Remove calls that split the root or collapse it.
func (t *Tree) Root() pdfval.Ref { return t.root }

// Count returns the number of leaves (/Page objects) in the tree.
func (t *Tree) Count() int {
	node, ok := t.ctx.Lookup(t.root).(pdfval.Dict)
	if !ok {
		return 0
	}
	c, _ := pdfval.AsNumber(node.Get("Count"))
	return int(c)
}

// Traverse visits every leaf in rendering order (pre-order DFS).
func (t *Tree) Traverse(f func(ref pdfval.Ref, leaf pdfval.Dict)) {
	t.traverseNode(t.root, f)
}

func (t *Tree) traverseNode(ref pdfval.Ref, f func(ref pdfval.Ref, leaf pdfval.Dict)) {
	node, ok := t.ctx.Lookup(ref).(pdfval.Dict)
	if !ok {
		return
	}
	kids, _ := node.Get("Kids").(pdfval.Array)
	for _, k := range kids {
		kref, ok := k.(pdfval.Ref)
		if !ok {
			continue
		}
		if t.isLeafRef(kref) {
			leaf, _ := t.ctx.Lookup(kref).(pdfval.Dict)
			f(kref, leaf)
		} else {
			t.traverseNode(kref, f)
		}
	}
}

// LeafAt returns the Ref and Dict of the leaf at the given 0-based
// rendering index.
func (t *Tree) LeafAt(index int) (pdfval.Ref, pdfval.Dict, error) {
	if index < 0 || index >= t.Count() {
		return pdfval.Ref{}, pdfval.Dict{}, fmt.Errorf("pdfpage: index %d out of range (count %d)", index, t.Count())
	}
	path, localIndex, err := t.descendToLeafLevel(index)
	if err != nil {
		return pdfval.Ref{}, pdfval.Dict{}, err
	}
	node := t.ctx.Lookup(path[len(path)-1]).(pdfval.Dict)
	kids, _ := node.Get("Kids").(pdfval.Array)
	ref, ok := kids[localIndex].(pdfval.Ref)
	if !ok {
		return pdfval.Ref{}, pdfval.Dict{}, fmt.Errorf("pdfpage: corrupt tree: kid %d is not a Ref", localIndex)
	}
	leaf, _ := t.ctx.Lookup(ref).(pdfval.Dict)
	return ref, leaf, nil
}

// Inherited resolves name for leafRef by walking /Parent until a Dict
// along the chain has it set, per spec section 4.4's inherited
// attribute rule (/MediaBox, /Resources, /Rotate, /CropBox).
func (t *Tree) Inherited(leafRef pdfval.Ref, name pdfval.Name) (pdfval.Value, bool) {
	current := leafRef
	for {
		d, ok := t.ctx.Lookup(current).(pdfval.Dict)
		if !ok {
			return nil, false
		}
		if d.Has(name) {
			return d.Get(name), true
		}
		parent, ok := d.Get("Parent").(pdfval.Ref)
		if !ok {
			return nil, false
		}
		current = parent
	}
}

func (t *Tree) isLeafRef(ref pdfval.Ref) bool {
	d, ok := t.ctx.Lookup(ref).(pdfval.Dict)
	return ok && d.Get("Type") == pdfval.Name("Page")
}

// sumCounts returns the /Count a node should carry given its (already
// up to date) kids: the number of kids if they are leaves themselves,
// else the sum of their own /Count entries.
func (t *Tree) sumCounts(kids pdfval.Array) pdfval.Int {
	if len(kids) == 0 {
		return 0
	}
	first, ok := kids[0].(pdfval.Ref)
	if ok && t.isLeafRef(first) {
		return pdfval.Int(len(kids))
	}
	var total int64
	for _, k := range kids {
		ref, ok := k.(pdfval.Ref)
		if !ok {
			continue
		}
		kd, _ := t.ctx.Lookup(ref).(pdfval.Dict)
		c, _ := pdfval.AsNumber(kd.Get("Count"))
		total += int64(c)
	}
	return pdfval.Int(total)
}

func (t *Tree) setParentField(ref pdfval.Ref, parentRef pdfval.Ref) {
	d, ok := t.ctx.Lookup(ref).(pdfval.Dict)
	if !ok {
		return
	}
	d.Set("Parent", parentRef)
	t.ctx.Assign(ref, d)
}

// descendToLeafLevel walks from the root towards the node whose kids
// are leaves themselves, following spec section 4.4's rule: at each
// Node pick the child whose subtree's cumulative count contains index,
// adjusting index by the counts of skipped kids. The returned path
// holds every node visited, root first, leaf-level node last; the
// returned int is index translated into that final node's local Kids
// space.
func (t *Tree) descendToLeafLevel(index int) ([]pdfval.Ref, int, error) {
	var path []pdfval.Ref
	current := t.root
	remaining := index
	for {
		path = append(path, current)
		node, ok := t.ctx.Lookup(current).(pdfval.Dict)
		if !ok {
			return nil, 0, fmt.Errorf("pdfpage: corrupt tree: %v is not a dict", current)
		}
		kids, _ := node.Get("Kids").(pdfval.Array)
		if len(kids) == 0 {
			return path, remaining, nil
		}
		first, ok := kids[0].(pdfval.Ref)
		if ok && t.isLeafRef(first) {
			return path, remaining, nil
		}

		cum := 0
		var next pdfval.Ref
		found := false
		for _, k := range kids {
			kref, ok := k.(pdfval.Ref)
			if !ok {
				continue
			}
			kd, _ := t.ctx.Lookup(kref).(pdfval.Dict)
			c, _ := pdfval.AsNumber(kd.Get("Count"))
			if remaining < cum+int(c) {
				next = kref
				remaining -= cum
				found = true
				break
			}
			cum += int(c)
		}
		if !found {
			// index at or beyond the tree's total count: clip into the
			// last kid, at the end of its own range.
			last, ok := kids[len(kids)-1].(pdfval.Ref)
			if !ok {
				return nil, 0, fmt.Errorf("pdfpage: corrupt tree: last kid is not a Ref")
			}
			kd, _ := t.ctx.Lookup(last).(pdfval.Dict)
			c, _ := pdfval.AsNumber(kd.Get("Count"))
			next = last
			remaining = int(c)
		}
		current = next
	}
}
