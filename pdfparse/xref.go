package pdfparse

import (
	"bytes"
	"fmt"
	"strconv"

	tkn "github.com/benoitkugler/pstokenizer"
	"github.com/jlmessenger/pdf-lib/pdfctx"
	"github.com/jlmessenger/pdf-lib/pdflog"
	"github.com/jlmessenger/pdf-lib/pdfval"
)

// maxPrevDepth bounds how many /Prev sections the chain walk follows
// before failing with DepthExceeded. A /Prev that points back to an
// already-visited section is caught separately and ends the walk
// without an error.
const maxPrevDepth = 1024

// xrefEntry describes one object's location, either in the file
// directly or compressed inside an object stream.
type xrefEntry struct {
	free       bool
	offset     int64
	generation uint16

	compressed   bool
	streamNumber uint32
	streamIndex  int
}

// xrefTable accumulates entries across all update sections; the
// newest section is always processed first, so an entry already
// present wins over anything discovered later (i.e. older).
type xrefTable map[uint32]xrefEntry

func (x xrefTable) setIfAbsent(number uint32, e xrefEntry) {
	if _, ok := x[number]; !ok {
		x[number] = e
	}
}

// reader walks a byte buffer, reconstructing the xref chain and
// trailer, and materializes every in-use object into a Context.
type reader struct {
	data    []byte
	xref    xrefTable
	trailer pdfctx.Trailer
	hasRoot bool
	size    int

	objStreams map[uint32][]pdfval.Value
}

func newReader(data []byte) *reader {
	return &reader{data: data, xref: make(xrefTable), objStreams: make(map[uint32][]pdfval.Value)}
}

func (r *reader) tokenizerAt(offset int64) *tkn.Tokenizer {
	if offset < 0 || offset >= int64(len(r.data)) {
		return tkn.NewTokenizer(nil)
	}
	return tkn.NewTokenizer(r.data[offset:])
}

// locateStartXref scans backward from the end of the file for the
// last "startxref\n<offset>\n%%EOF", matching the teacher's
// multi-chunk backward scan rather than assuming the marker is near
// the very end (some writers leave trailing junk).
func locateStartXref(data []byte) (int64, error) {
	const tail = 2048
	start := len(data) - tail
	if start < 0 {
		start = 0
	}
	for {
		window := data[start:]
		j := bytes.LastIndex(window, []byte("startxref"))
		if j == -1 {
			if start == 0 {
				return 0, newErr(int64(len(data)), MissingEOF, fmt.Errorf("no startxref marker found"))
			}
			start -= tail
			if start < 0 {
				start = 0
			}
			continue
		}
		rest := window[j+len("startxref"):]
		eof := bytes.Index(rest, []byte("%%EOF"))
		if eof == -1 {
			return 0, newErr(int64(len(data)), MissingEOF, fmt.Errorf("missing %%%%EOF after startxref"))
		}
		offset, err := strconv.ParseInt(string(bytes.TrimSpace(rest[:eof])), 10, 64)
		if err != nil || offset < 0 || offset >= int64(len(data)) {
			return 0, newErr(int64(len(data)), BadXref, fmt.Errorf("corrupt startxref offset"))
		}
		return offset, nil
	}
}

// buildXrefChain walks the xref/trailer chain starting at offset,
// following /Prev, filling r.xref and r.trailer.
func (r *reader) buildXrefChain(offset int64) error {
	seen := map[int64]bool{}
	for depth := 0; offset != 0; depth++ {
		if depth > maxPrevDepth {
			return newErr(offset, DepthExceeded, fmt.Errorf("too many /Prev sections"))
		}
		if seen[offset] {
			pdflog.Parse.Printf("xref: cyclic /Prev at offset %d, stopping", offset)
			return nil
		}
		seen[offset] = true

		t := r.tokenizerAt(offset)
		peek, err := t.PeekToken()
		if err != nil {
			return newErr(offset, BadXref, err)
		}

		var next int64
		if peek.IsOther("xref") {
			_, _ = t.NextToken()
			next, err = r.parseClassicalSection(t, offset)
		} else {
			next, err = r.parseXrefStream(offset)
		}
		if err != nil {
			return err
		}
		offset = next
	}
	return nil
}

// parseClassicalSection parses one or more subsections followed by a
// trailer dictionary, returning the /Prev offset (0 if none).
func (r *reader) parseClassicalSection(t *tkn.Tokenizer, sectionOffset int64) (int64, error) {
	for {
		if err := r.parseSubsection(t, sectionOffset); err != nil {
			return 0, err
		}
		peek, err := t.PeekToken()
		if err != nil {
			return 0, newErr(sectionOffset, BadXref, err)
		}
		if peek.IsOther("trailer") {
			_, _ = t.NextToken()
			break
		}
	}

	p := NewObjectParserFromTokenizer(t)
	obj, err := p.ParseValue()
	if err != nil {
		return 0, newErr(sectionOffset, BadXref, err)
	}
	dict, ok := obj.(pdfval.Dict)
	if !ok {
		return 0, newErr(sectionOffset, BadXref, fmt.Errorf("trailer is not a dictionary"))
	}
	return r.absorbTrailer(dict)
}

func (r *reader) parseSubsection(t *tkn.Tokenizer, sectionOffset int64) error {
	startTok, err := t.NextToken()
	if err != nil {
		return newErr(sectionOffset, BadXref, err)
	}
	start, err := startTok.Int()
	if err != nil {
		return newErr(sectionOffset, BadXref, err)
	}

	countTok, err := t.NextToken()
	if err != nil {
		return newErr(sectionOffset, BadXref, err)
	}
	count, err := countTok.Int()
	if err != nil {
		return newErr(sectionOffset, BadXref, err)
	}

	for i := 0; i < count; i++ {
		offTok, err := t.NextToken()
		if err != nil {
			return newErr(sectionOffset, BadXref, err)
		}
		offset, err := strconv.ParseInt(string(offTok.Value), 10, 64)
		if err != nil {
			return newErr(sectionOffset, BadXref, fmt.Errorf("invalid xref offset"))
		}

		genTok, err := t.NextToken()
		if err != nil {
			return newErr(sectionOffset, BadXref, err)
		}
		gen, err := genTok.Int()
		if err != nil {
			return newErr(sectionOffset, BadXref, fmt.Errorf("invalid xref generation"))
		}

		typeTok, err := t.NextToken()
		if err != nil {
			return newErr(sectionOffset, BadXref, err)
		}
		free := typeTok.IsOther("f")
		if !free && !typeTok.IsOther("n") {
			return newErr(sectionOffset, BadXref, fmt.Errorf("corrupt xref entry type"))
		}

		if !free && offset == 0 {
			continue
		}
		r.xref.setIfAbsent(uint32(start+i), xrefEntry{free: free, offset: offset, generation: uint16(gen)})
	}
	return nil
}

// absorbTrailer merges a trailer dictionary's fields, with
// already-known fields (from a newer section) winning, and returns
// the /Prev offset.
func (r *reader) absorbTrailer(d pdfval.Dict) (int64, error) {
	if !r.hasRoot {
		if ref, ok := d.Get("Root").(pdfval.Ref); ok {
			r.trailer.Root = ref
			r.hasRoot = true
		}
	}
	if !r.trailer.HasInfo {
		if ref, ok := d.Get("Info").(pdfval.Ref); ok {
			r.trailer.Info = ref
			r.trailer.HasInfo = true
		}
	}
	if !r.trailer.HasEncrypt {
		if ref, ok := d.Get("Encrypt").(pdfval.Ref); ok {
			r.trailer.Encrypt = ref
			r.trailer.HasEncrypt = true
		}
	}
	if !r.trailer.HasID {
		if arr, ok := d.Get("ID").(pdfval.Array); ok && len(arr) == 2 {
			ok1, ok2 := true, true
			var b [2][]byte
			if s, o := arr[0].(pdfval.String); o {
				b[0] = s.Bytes
			} else {
				ok1 = false
			}
			if s, o := arr[1].(pdfval.String); o {
				b[1] = s.Bytes
			} else {
				ok2 = false
			}
			if ok1 && ok2 {
				r.trailer.ID = b
				r.trailer.HasID = true
			}
		}
	}
	if r.size == 0 {
		if n, ok := pdfval.AsNumber(d.Get("Size")); ok {
			r.size = int(n)
		}
	}

	prev, _ := pdfval.AsNumber(d.Get("Prev"))
	return int64(prev), nil
}
