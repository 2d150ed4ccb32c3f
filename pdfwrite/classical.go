package pdfwrite

import (
	"bytes"
	"fmt"

	"github.com/jlmessenger/pdf-lib/pdfctx"
	"github.com/jlmessenger/pdf-lib/pdflog"
	"github.com/jlmessenger/pdf-lib/pdfval"
)

// binaryMarker is the four bytes >= 0x80 spec section 4.7 step 1 calls
// for, signaling to naive byte-oriented tools that this is a binary
// file. "âãÏÓ" is the convention most PDF writers use.
var binaryMarker = []byte{0xe2, 0xe3, 0xcf, 0xd3}

func writeHeader(buf *bytes.Buffer) {
	buf.WriteString("%PDF-1.7\n%")
	buf.Write(binaryMarker)
	buf.WriteByte('\n')
}

// writeClassical implements spec section 4.7's classical mode: every
// object emitted inline in object-number order, followed by a
// traditional xref table and trailer.
func writeClassical(ctx *pdfctx.Context, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	writeHeader(&buf)

	ticker := NewTicker(opts.ObjectsPerTick)
	offsets := make(map[uint32]int)
	generations := make(map[uint32]uint16)
	ctx.Objects(func(ref pdfval.Ref, v pdfval.Value) {
		offsets[ref.Number] = buf.Len()
		generations[ref.Number] = ref.Generation
		fmt.Fprintf(&buf, "%d %d obj\n", ref.Number, ref.Generation)
		buf.Write(writeIndirectBody(v))
		buf.WriteString("\nendobj\n")
		ticker.Tick()
	})

	size := ctx.Largest() + 1
	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", size)
	buf.WriteString("0000000000 65535 f \n")
	for n := uint32(1); n < size; n++ {
		if off, ok := offsets[n]; ok {
			fmt.Fprintf(&buf, "%010d %05d n \n", off, generations[n])
		} else {
			buf.WriteString("0000000000 65535 f \n")
		}
	}

	trailer := buildTrailerDict(ctx, size)
	buf.WriteString("trailer\n")
	buf.WriteString(pdfval.Format(trailer))
	buf.WriteByte('\n')
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xrefOffset)

	pdflog.Write.Printf("wrote classical PDF: %d objects, %d bytes", len(offsets), buf.Len())
	return buf.Bytes(), nil
}

// buildTrailerDict assembles the /Size /Root /Info /ID trailer fields
// both writer modes share (the object-stream mode inlines the same
// fields into its cross-reference stream dict instead of a separate
// "trailer" keyword, per spec section 4.7 step 4).
func buildTrailerDict(ctx *pdfctx.Context, size uint32) pdfval.Dict {
	d := pdfval.NewDict()
	d.Set("Size", pdfval.Int(size))
	d.Set("Root", ctx.Trailer.Root)
	if ctx.Trailer.HasInfo {
		d.Set("Info", ctx.Trailer.Info)
	}
	if ctx.Trailer.HasID {
		d.Set("ID", pdfval.Array{
			pdfval.String{Bytes: ctx.Trailer.ID[0], Kind: pdfval.HexString},
			pdfval.String{Bytes: ctx.Trailer.ID[1], Kind: pdfval.HexString},
		})
	}
	return d
}
