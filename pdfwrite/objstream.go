package pdfwrite

import (
	"bytes"
	"fmt"

	"github.com/jlmessenger/pdf-lib/pdfctx"
	"github.com/jlmessenger/pdf-lib/pdflog"
	"github.com/jlmessenger/pdf-lib/pdfval"
)

// xrefEntry is one cross-reference stream record, per spec section
// 4.7 step 3: type 0 free, type 1 classical in-use (f2=offset,
// f3=generation), type 2 compressed (f2=host /ObjStm number, f3=index
// within it).
type xrefEntry struct {
	typ int
	f2  uint32
	f3  uint32
}

// writeObjectStreams implements spec section 4.7's object-stream
// mode: streams, any generation != 0 object and the /Encrypt
// dictionary stay inline (a stream cannot itself live inside an
// /ObjStm, which only holds non-stream objects), everything else
// groups into /ObjStm objects of at most
// opts.ObjectsPerTick members each, and a cross-reference stream
// replaces the classical xref table.
func writeObjectStreams(ctx *pdfctx.Context, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	writeHeader(&buf)

	ticker := NewTicker(opts.ObjectsPerTick)
	groupSize := opts.ObjectsPerTick

	entries := make(map[uint32]xrefEntry)
	var maxNum uint32

	var inline, eligible []pdfval.Ref
	ctx.Objects(func(ref pdfval.Ref, v pdfval.Value) {
		if ref.Number > maxNum {
			maxNum = ref.Number
		}
		_, isStream := v.(pdfval.Stream)
		isEncrypt := ctx.Trailer.HasEncrypt && ref == ctx.Trailer.Encrypt
		if isStream || ref.Generation != 0 || isEncrypt {
			inline = append(inline, ref)
		} else {
			eligible = append(eligible, ref)
		}
	})

	for _, ref := range inline {
		offset := buf.Len()
		fmt.Fprintf(&buf, "%d %d obj\n", ref.Number, ref.Generation)
		buf.Write(writeIndirectBody(ctx.Lookup(ref)))
		buf.WriteString("\nendobj\n")
		entries[ref.Number] = xrefEntry{typ: 1, f2: uint32(offset), f3: uint32(ref.Generation)}
		ticker.Tick()
	}

	nextSynthetic := maxNum + 1
	for i := 0; i < len(eligible); i += groupSize {
		end := i + groupSize
		if end > len(eligible) {
			end = len(eligible)
		}
		group := eligible[i:end]

		var prelude, body bytes.Buffer
		for _, ref := range group {
			fmt.Fprintf(&prelude, "%d %d ", ref.Number, body.Len())
			body.WriteString(pdfval.Format(ctx.Lookup(ref)))
			body.WriteByte(' ')
		}
		first := prelude.Len()

		content := flateCompress(append(prelude.Bytes(), body.Bytes()...))
		d := pdfval.NewDict()
		d.Set("Type", pdfval.Name("ObjStm"))
		d.Set("N", pdfval.Int(len(group)))
		d.Set("First", pdfval.Int(first))
		d.Set("Filter", pdfval.Name("FlateDecode"))

		objStmNum := nextSynthetic
		nextSynthetic++
		offset := buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n", objStmNum)
		buf.Write(writeIndirectBody(pdfval.Stream{Dict: d, Content: content}))
		buf.WriteString("\nendobj\n")

		entries[objStmNum] = xrefEntry{typ: 1, f2: uint32(offset), f3: 0}
		for idx, ref := range group {
			entries[ref.Number] = xrefEntry{typ: 2, f2: objStmNum, f3: uint32(idx)}
		}
		ticker.Tick()
	}

	xrefStreamNum := nextSynthetic
	size := xrefStreamNum + 1

	rows := make([][]byte, size)
	for n := uint32(0); n < size; n++ {
		e, ok := entries[uint32(n)]
		if !ok {
			e = xrefEntry{typ: 0, f2: 0, f3: 65535}
		}
		rows[n] = encodeXrefRow(e)
	}

	// The xref stream object is the last object in the file, so its
	// own offset (needed inside its own entry) is simply buf.Len() at
	// this point.
	xrefOffset := buf.Len()
	rows[xrefStreamNum] = encodeXrefRow(xrefEntry{typ: 1, f2: uint32(xrefOffset), f3: 0})

	compressed := flateCompress(encodeUpPredictor(rows))

	trailer := buildTrailerDict(ctx, size)
	trailer.Set("Type", pdfval.Name("XRef"))
	trailer.Set("W", pdfval.Array{pdfval.Int(1), pdfval.Int(4), pdfval.Int(2)})
	trailer.Set("Filter", pdfval.Name("FlateDecode"))
	parms := pdfval.NewDict()
	parms.Set("Predictor", pdfval.Int(12))
	parms.Set("Columns", pdfval.Int(7))
	trailer.Set("DecodeParms", parms)

	fmt.Fprintf(&buf, "%d 0 obj\n", xrefStreamNum)
	buf.Write(writeIndirectBody(pdfval.Stream{Dict: trailer, Content: compressed}))
	buf.WriteString("\nendobj\n")
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xrefOffset)

	pdflog.Write.Printf("wrote object-stream PDF: %d objects, %d bytes", len(entries)+1, buf.Len())
	return buf.Bytes(), nil
}

func encodeXrefRow(e xrefEntry) []byte {
	row := make([]byte, 7)
	row[0] = byte(e.typ)
	row[1] = byte(e.f2 >> 24)
	row[2] = byte(e.f2 >> 16)
	row[3] = byte(e.f2 >> 8)
	row[4] = byte(e.f2)
	row[5] = byte(e.f3 >> 8)
	row[6] = byte(e.f3)
	return row
}
