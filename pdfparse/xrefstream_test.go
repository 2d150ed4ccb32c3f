package pdfparse

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"testing"

	"github.com/jlmessenger/pdf-lib/pdfval"
)

// buildObjectStreamPDF assembles a PDF using a cross-reference stream
// and an object stream: objects 1 (Catalog) and 2 (Pages) live
// compressed inside object stream 4; object 3 (the Page leaf) and
// object 5 (the xref stream itself) are stored directly.
func buildObjectStreamPDF(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")

	d1 := pdfval.NewDict()
	d1.Set("Type", pdfval.Name("Catalog"))
	d1.Set("Pages", pdfval.Ref{Number: 2})

	d2 := pdfval.NewDict()
	d2.Set("Type", pdfval.Name("Pages"))
	d2.Set("Kids", pdfval.Array{pdfval.Ref{Number: 3}})
	d2.Set("Count", pdfval.Int(1))

	body1 := pdfval.Format(d1)
	body2 := pdfval.Format(d2)
	prelude := fmt.Sprintf("1 0 2 %d ", len(body1)+1)
	objStmBody := prelude + body1 + " " + body2

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	zw.Write([]byte(objStmBody))
	zw.Close()

	offset4 := buf.Len()
	fmt.Fprintf(&buf, "4 0 obj\n<< /Type /ObjStm /N 2 /First %d /Filter /FlateDecode /Length %d >>\nstream\n",
		len(prelude), compressed.Len())
	buf.Write(compressed.Bytes())
	buf.WriteString("\nendstream\nendobj\n")

	offset3 := buf.Len()
	buf.WriteString("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595.28 841.89] >>\nendobj\n")

	// cross-reference stream, object 5, entries for objects 0..5
	// W = [1 4 2]: type(1 byte), field2(4 bytes), field3(2 bytes)
	entries := []struct {
		typ      byte
		f2       uint32
		f3       uint16
	}{
		{0, 0, 65535},             // 0: free list head
		{2, 4, 0},                 // 1: compressed, in objstm 4, index 0
		{2, 4, 1},                 // 2: compressed, in objstm 4, index 1
		{1, uint32(offset3), 0},   // 3: direct
		{0, 0, 0},                 // 4 placeholder overwritten below
		{1, 0, 0},                 // 5 placeholder overwritten below
	}
	offset5 := buf.Len()
	entries[4] = struct {
		typ byte
		f2  uint32
		f3  uint16
	}{1, uint32(offset4), 0}
	entries[5] = struct {
		typ byte
		f2  uint32
		f3  uint16
	}{1, uint32(offset5), 0}

	var raw bytes.Buffer
	for _, e := range entries {
		raw.WriteByte(e.typ)
		raw.WriteByte(byte(e.f2 >> 24))
		raw.WriteByte(byte(e.f2 >> 16))
		raw.WriteByte(byte(e.f2 >> 8))
		raw.WriteByte(byte(e.f2))
		raw.WriteByte(byte(e.f3 >> 8))
		raw.WriteByte(byte(e.f3))
	}
	var xcompressed bytes.Buffer
	xzw := zlib.NewWriter(&xcompressed)
	xzw.Write(raw.Bytes())
	xzw.Close()

	fmt.Fprintf(&buf, "5 0 obj\n<< /Type /XRef /Size 6 /W [1 4 2] /Root 1 0 R /Filter /FlateDecode /Length %d >>\nstream\n",
		xcompressed.Len())
	buf.Write(xcompressed.Bytes())
	buf.WriteString("\nendstream\nendobj\n")

	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", offset5)
	return buf.Bytes()
}

func TestParseObjectStreamAndXrefStream(t *testing.T) {
	ctx, err := Parse(buildObjectStreamPDF(t), Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	catalog, ok := ctx.Lookup(ctx.Trailer.Root).(pdfval.Dict)
	if !ok || catalog.Get("Type") != pdfval.Name("Catalog") {
		t.Fatalf("Root did not resolve to a Catalog: %v", catalog)
	}

	pages, ok := ctx.Lookup(catalog.Get("Pages")).(pdfval.Dict)
	if !ok || pages.Get("Count") != pdfval.Int(1) {
		t.Fatalf("Pages node wrong: %v", pages)
	}

	kids := pages.Get("Kids").(pdfval.Array)
	leaf, ok := ctx.Lookup(kids[0]).(pdfval.Dict)
	if !ok || leaf.Get("Type") != pdfval.Name("Page") {
		t.Fatalf("Page leaf wrong: %v", leaf)
	}
}
