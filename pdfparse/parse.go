package pdfparse

import (
	"fmt"

	tkn "github.com/benoitkugler/pstokenizer"
	"github.com/jlmessenger/pdf-lib/pdfctx"
	"github.com/jlmessenger/pdf-lib/pdflog"
	"github.com/jlmessenger/pdf-lib/pdfval"
)

// Options configures a Parse call.
type Options struct {
	// ObjectsPerYield controls how many objects are materialized
	// between cooperative-yield points. Zero or negative means
	// never yield. On this single-threaded runtime the yield point
	// only logs progress; it exists so callers porting a scheduler
	// abstraction have a hook to attach to.
	ObjectsPerYield int
}

// Parse turns a complete PDF byte buffer into a populated Context.
// Encryption is not rejected here: the caller (the Document facade)
// decides whether ctx.Trailer.HasEncrypt should abort the load.
func Parse(data []byte, opts Options) (*pdfctx.Context, error) {
	r := newReader(data)

	offset, err := locateStartXref(data)
	if err != nil {
		return recoverByScan(data)
	}

	if err := r.buildXrefChain(offset); err != nil {
		pdflog.Parse.Printf("xref chain failed (%s), attempting recovery scan", err)
		ctx, rerr := recoverByScan(data)
		if rerr != nil {
			return nil, err
		}
		return ctx, nil
	}
	if !r.hasRoot {
		return recoverByScan(data)
	}

	return r.materialize(opts)
}

// materialize resolves every in-use xref entry to a Value and
// populates a fresh Context, in ascending object-number order for
// deterministic yield-counting.
func (r *reader) materialize(opts Options) (*pdfctx.Context, error) {
	ctx := pdfctx.New()

	numbers := make([]uint32, 0, len(r.xref))
	for n, e := range r.xref {
		if e.free {
			continue
		}
		numbers = append(numbers, n)
	}
	insertionSort(numbers)

	for _, n := range numbers {
		ctx.ReserveNumber(n)
	}

	cache := make(map[uint32]pdfval.Value, len(numbers))
	var resolve func(pdfval.Value) pdfval.Value
	resolve = func(v pdfval.Value) pdfval.Value {
		ref, ok := v.(pdfval.Ref)
		if !ok {
			return v
		}
		return r.resolveNumber(ref.Number, cache, resolve)
	}

	yieldEvery := opts.ObjectsPerYield
	for i, n := range numbers {
		val := r.resolveNumber(n, cache, resolve)
		ctx.Assign(pdfval.Ref{Number: n, Generation: r.xref[n].generation}, val)

		if yieldEvery > 0 && (i+1)%yieldEvery == 0 {
			pdflog.Parse.Printf("materialized %d/%d objects", i+1, len(numbers))
		}
	}

	ctx.Trailer = r.trailer
	return ctx, nil
}

// resolveNumber materializes object number n, memoizing the result
// and seeding a Null placeholder before recursing so that a cyclic
// reference graph cannot cause infinite recursion.
func (r *reader) resolveNumber(n uint32, cache map[uint32]pdfval.Value, resolve func(pdfval.Value) pdfval.Value) pdfval.Value {
	if v, ok := cache[n]; ok {
		return v
	}
	entry, ok := r.xref[n]
	if !ok || entry.free {
		return pdfval.Null{}
	}

	cache[n] = pdfval.Null{} // break cycles

	var value pdfval.Value
	var err error
	if entry.compressed {
		value, err = r.resolveCompressed(entry, resolve)
	} else {
		value, err = r.resolveDirect(entry, resolve)
	}
	if err != nil {
		pdflog.Parse.Printf("object %d: %s, treating as null", n, err)
		value = pdfval.Null{}
	}

	cache[n] = value
	return value
}

func (r *reader) resolveCompressed(entry xrefEntry, resolve func(pdfval.Value) pdfval.Value) (pdfval.Value, error) {
	objs, err := r.decodeObjectStream(entry.streamNumber, resolve)
	if err != nil {
		return nil, err
	}
	if entry.streamIndex < 0 || entry.streamIndex >= len(objs) {
		return nil, fmt.Errorf("compressed object index %d out of range (%d objects)", entry.streamIndex, len(objs))
	}
	return objs[entry.streamIndex], nil
}

func (r *reader) resolveDirect(entry xrefEntry, resolve func(pdfval.Value) pdfval.Value) (pdfval.Value, error) {
	t := r.tokenizerAt(entry.offset)
	if _, _, err := ParseObjectHeader(t); err != nil {
		return nil, newErr(entry.offset, BadObjectHeader, err)
	}

	p := NewObjectParserFromTokenizer(t)
	value, err := p.ParseValue()
	if err != nil {
		return nil, newErr(entry.offset, BadObjectHeader, err)
	}

	dict, isDict := value.(pdfval.Dict)
	if !isDict {
		return value, nil
	}

	next, _ := t.NextToken()
	if !next.IsOther("stream") {
		return dict, nil
	}

	contentOffset := entry.offset + int64(t.StreamPosition())
	raw, err := r.extractRawContent(dict, contentOffset, resolve)
	if err != nil {
		return nil, err
	}
	return pdfval.Stream{Dict: dict, Content: raw}, nil
}

func insertionSort(a []uint32) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && a[j-1] > a[j]; j-- {
			a[j-1], a[j] = a[j], a[j-1]
		}
	}
}

// recoverByScan is the last-resort path for files with a missing or
// corrupt xref/trailer chain: it scans linearly for "n g obj"
// declarations and the final "trailer" keyword, trading exactness
// for tolerance of the kind of mild corruption real-world PDFs
// accumulate.
func recoverByScan(data []byte) (*pdfctx.Context, error) {
	r := newReader(data)

	t := tkn.NewTokenizer(data)
	for {
		save := t.CurrentPosition()
		peek, err := t.PeekToken()
		if err != nil || peek.Kind == tkn.EOF {
			break
		}
		if peek.Kind == tkn.Integer {
			headerStart := save
			if n, g, herr := ParseObjectHeader(t); herr == nil {
				r.xref[uint32(n)] = xrefEntry{offset: int64(headerStart), generation: uint16(g)}
				skipToEndobj(t)
				continue
			}
			t.SetPosition(save)
		}
		if peek.IsOther("trailer") {
			_, _ = t.NextToken()
			p := NewObjectParserFromTokenizer(t)
			if obj, terr := p.ParseValue(); terr == nil {
				if dict, ok := obj.(pdfval.Dict); ok {
					// a later trailer with a /Root supersedes earlier ones
					if _, ok := dict.Get("Root").(pdfval.Ref); ok {
						r.trailer, r.hasRoot, r.size = pdfctx.Trailer{}, false, 0
					}
					_, _ = r.absorbTrailer(dict)
				}
			}
			continue
		}
		if _, err := t.NextToken(); err != nil {
			break
		}
	}

	if !r.hasRoot {
		// last resort: find a /Type /Catalog object directly
		for n, e := range r.xref {
			if e.free {
				continue
			}
			tt := r.tokenizerAt(e.offset)
			if _, _, herr := ParseObjectHeader(tt); herr != nil {
				continue
			}
			p := NewObjectParserFromTokenizer(tt)
			v, verr := p.ParseValue()
			if verr != nil {
				continue
			}
			if d, ok := v.(pdfval.Dict); ok && d.Get("Type") == pdfval.Name("Catalog") {
				r.trailer.Root = pdfval.Ref{Number: n, Generation: e.generation}
				r.hasRoot = true
				break
			}
		}
	}
	if !r.hasRoot {
		return nil, newErr(0, BadXref, fmt.Errorf("could not locate a document catalog"))
	}

	return r.materialize(Options{})
}

func skipToEndobj(t *tkn.Tokenizer) {
	for {
		tok, err := t.NextToken()
		if err != nil || tok.Kind == tkn.EOF {
			return
		}
		if tok.IsOther("endobj") {
			return
		}
	}
}
