// Package pdfcopy implements the Object Copier described by spec
// section 4.3: copying a subgraph rooted at a foreign Value into a
// destination Context, renumbering every Ref it touches and leaving
// the source untouched. It plays the role the teacher's model
// cloneCache/checkOrClone pair plays for the typed object model, but
// operates directly on pdfval.Value trees and a pdfctx.Context arena
// instead of Go struct pointers.
package pdfcopy

import (
	"github.com/jlmessenger/pdf-lib/pdfctx"
	"github.com/jlmessenger/pdf-lib/pdflog"
	"github.com/jlmessenger/pdf-lib/pdfval"
)

// Copier copies objects from one Context into another, memoizing the
// foreignRef -> localRef mapping so that a subgraph shared in the
// source remains shared (not duplicated) in the destination, and so
// that cycles terminate.
type Copier struct {
	src  *pdfctx.Context
	dst  *pdfctx.Context
	refs map[pdfval.Ref]pdfval.Ref
}

// New returns a Copier that copies objects out of src and into dst.
// A single Copier should be reused across every CopyRef/CopyValue call
// that belongs to the same logical copy operation (e.g. copying a
// whole page with its resources), so that structure shared across
// those calls is preserved rather than duplicated once per call.
func New(src, dst *pdfctx.Context) *Copier {
	return &Copier{src: src, dst: dst, refs: make(map[pdfval.Ref]pdfval.Ref)}
}

// CopyRef copies the object that foreignRef points to (and everything
// it reaches) into the destination Context, and returns the local Ref
// standing in for it there. Calling CopyRef twice with the same
// foreignRef on the same Copier returns the same local Ref without
// copying again.
func (c *Copier) CopyRef(foreignRef pdfval.Ref) pdfval.Ref {
	if local, ok := c.refs[foreignRef]; ok {
		return local
	}

	local := c.dst.NextRef()
	// Seed the mapping before recursing: a cycle back to foreignRef
	// resolves to `local`, which by the time recursion unwinds holds
	// the fully copied value. This mirrors the cycle-safe resolution
	// pdfparse.resolveNumber uses for the opposite direction (foreign
	// file offsets instead of foreign Contexts).
	c.refs[foreignRef] = local

	foreignVal := c.src.Lookup(foreignRef)
	copied := c.CopyValue(foreignVal)
	c.dst.Assign(local, copied)

	pdflog.Copy.Printf("copied %s -> %s", foreignRef, local)
	return local
}

// CopyValue structurally duplicates v, translating every Ref it
// contains (recursively, through Array/Dict/Stream) via CopyRef. Use
// this directly for a value that is not itself behind an indirect
// reference (e.g. a page's inline content dict before it has been
// Registered).
func (c *Copier) CopyValue(v pdfval.Value) pdfval.Value {
	switch t := v.(type) {
	case pdfval.Ref:
		return c.CopyRef(t)
	case pdfval.Array:
		out := make(pdfval.Array, len(t))
		for i, elem := range t {
			out[i] = c.CopyValue(elem)
		}
		return out
	case pdfval.Dict:
		out := pdfval.NewDict()
		t.Range(func(name pdfval.Name, val pdfval.Value) {
			out.Set(name, c.CopyValue(val))
		})
		return out
	case pdfval.Stream:
		return pdfval.Stream{
			Dict:    c.CopyValue(t.Dict).(pdfval.Dict),
			Content: append([]byte(nil), t.Content...),
		}
	default:
		// Null, Bool, Int, Real, Name, String: no Refs to translate,
		// Clone() already deep-duplicates any backing byte slice.
		return v.Clone()
	}
}
