// Package pdfctx implements the per-document arena of indirect objects:
// the Context described by spec section 4.1. It plays the role the
// teacher's pdfWriter write-time cache and reader/file xRefTable play
// together, but as a single structure that exists for the whole
// document lifetime, not just during Write or during one parse.
package pdfctx

import (
	"fmt"

	"github.com/jlmessenger/pdf-lib/pdflog"
	"github.com/jlmessenger/pdf-lib/pdfval"
)

// Trailer carries the document-level pointers a Context owns, mirroring
// the teacher's model.Trailer but addressed through Refs instead of Go
// pointers.
type Trailer struct {
	Root     pdfval.Ref
	Info     pdfval.Ref
	HasInfo  bool
	Encrypt  pdfval.Ref
	HasEncrypt bool
	ID       [2][]byte
	HasID    bool
}

// Context owns every indirect object belonging to one document. No Ref
// is ever shared between two Contexts; moving part of a graph from one
// Context to another must go through pdfcopy.
type Context struct {
	objects  map[pdfval.Ref]pdfval.Value
	largest  uint32
	free     []uint32
	dangling map[pdfval.Ref]bool // known-dangling at parse time; tolerated
	Trailer  Trailer
}

// New returns an empty Context, as create() does in spec section 4.6.
func New() *Context {
	return &Context{
		objects:  make(map[pdfval.Ref]pdfval.Value),
		dangling: make(map[pdfval.Ref]bool),
	}
}

// Register allocates a fresh Ref (reusing a freed number if one is
// available, else largest+1) with generation 0, stores value under it,
// and returns the Ref.
func (c *Context) Register(value pdfval.Value) pdfval.Ref {
	ref := c.NextRef()
	c.objects[ref] = value
	return ref
}

// NextRef reserves a number without assigning a value. Embedders that
// must hand out a Ref before the object they describe exists use this,
// then Assign once the object is built (spec section 4.3: Font/Image
// hold an unresolved reserved Ref until embed()).
func (c *Context) NextRef() pdfval.Ref {
	var number uint32
	if n := len(c.free); n > 0 {
		number = c.free[n-1]
		c.free = c.free[:n-1]
	} else {
		c.largest++
		number = c.largest
	}
	if number > c.largest {
		c.largest = number
	}
	return pdfval.Ref{Number: number, Generation: 0}
}

// Assign inserts or overwrites the value stored under ref. ref's number
// must already have been reserved by Register/NextRef/a parsed object;
// assigning to an unreserved number is a programmer error, matching
// spec section 4.1's failure semantics.
func (c *Context) Assign(ref pdfval.Ref, value pdfval.Value) {
	if ref.Number == 0 || ref.Number > c.largest {
		panic(fmt.Sprintf("pdfctx: Assign to unreserved object number %d", ref.Number))
	}
	c.objects[ref] = value
	delete(c.dangling, ref)
}

// ReserveNumber is used by the parser to seed the arena with object
// numbers discovered in an xref table, before their values are known.
func (c *Context) ReserveNumber(n uint32) {
	if n > c.largest {
		c.largest = n
	}
}

// Lookup resolves v if it is a Ref, following exactly one hop, and
// returns v unchanged otherwise. If the referenced object's own value
// is a Ref, that Ref is returned unresolved; the parser stores such
// objects as they are. A dangling reference resolves to Null and is
// never an error.
func (c *Context) Lookup(v pdfval.Value) pdfval.Value {
	ref, ok := v.(pdfval.Ref)
	if !ok {
		return v
	}
	if val, ok := c.objects[ref]; ok {
		return val
	}
	if !c.dangling[ref] {
		pdflog.Parse.Printf("lookup: unrecorded dangling reference %s, treating as null", ref)
	}
	return pdfval.Null{}
}

// MarkDangling records ref as a known-dangling reference, tolerated at
// lookup time. The parser calls this when an xref entry points nowhere
// useful or a referenced object number was never defined.
func (c *Context) MarkDangling(ref pdfval.Ref) {
	c.dangling[ref] = true
}

// Delete releases ref's object number back to the free list. The
// caller is responsible for removing any remaining references to it.
func (c *Context) Delete(ref pdfval.Ref) {
	delete(c.objects, ref)
	c.free = append(c.free, ref.Number)
}

// Has reports whether ref currently has an assigned value (as opposed
// to being merely reserved or dangling).
func (c *Context) Has(ref pdfval.Ref) bool {
	_, ok := c.objects[ref]
	return ok
}

// Largest returns the highest object number ever allocated.
func (c *Context) Largest() uint32 { return c.largest }

// Objects calls f for every (ref, value) pair currently assigned, in
// ascending object-number order, matching the order the Writer walks
// the arena in.
func (c *Context) Objects(f func(ref pdfval.Ref, v pdfval.Value)) {
	refs := make([]pdfval.Ref, 0, len(c.objects))
	for ref := range c.objects {
		refs = append(refs, ref)
	}
	sortRefs(refs)
	for _, ref := range refs {
		f(ref, c.objects[ref])
	}
}

func sortRefs(refs []pdfval.Ref) {
	// insertion sort: object counts are small enough (thousands, not
	// millions) that this stays well under parsing/writing cost, and
	// it keeps this package free of a sort.Slice closure allocation
	// on every write.
	for i := 1; i < len(refs); i++ {
		for j := i; j > 0 && refs[j-1].Number > refs[j].Number; j-- {
			refs[j-1], refs[j] = refs[j], refs[j-1]
		}
	}
}
