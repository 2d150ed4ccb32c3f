package pdfwrite

import (
	"bytes"
	"compress/zlib"
	"io"
	"strings"
	"testing"

	"github.com/jlmessenger/pdf-lib/pdfctx"
	"github.com/jlmessenger/pdf-lib/pdfval"
)

func sampleContext() *pdfctx.Context {
	ctx := pdfctx.New()
	pagesRef := ctx.NextRef()
	pageDict := pdfval.NewDict()
	pageDict.Set("Type", pdfval.Name("Page"))
	pageDict.Set("Parent", pagesRef)
	pageDict.Set("MediaBox", pdfval.Array{pdfval.Real(0), pdfval.Real(0), pdfval.Real(612), pdfval.Real(792)})
	pageRef := ctx.Register(pageDict)

	pages := pdfval.NewDict()
	pages.Set("Type", pdfval.Name("Pages"))
	pages.Set("Kids", pdfval.Array{pageRef})
	pages.Set("Count", pdfval.Int(1))
	ctx.Assign(pagesRef, pages)

	catalog := pdfval.NewDict()
	catalog.Set("Type", pdfval.Name("Catalog"))
	catalog.Set("Pages", pagesRef)
	catalogRef := ctx.Register(catalog)
	ctx.Trailer.Root = catalogRef

	streamDict := pdfval.NewDict()
	streamDict.Set("Length", pdfval.Int(0))
	ctx.Register(pdfval.Stream{Dict: streamDict, Content: []byte("BT ET")})

	return ctx
}

func TestWriteClassicalProducesWellFormedFile(t *testing.T) {
	ctx := sampleContext()
	data, err := Write(ctx, Options{UseObjectStreams: false, ObjectsPerTick: 2})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	s := string(data)
	if !strings.HasPrefix(s, "%PDF-1.7\n%") {
		t.Fatalf("missing header: %q", s[:20])
	}
	if !strings.HasSuffix(s, "%%EOF\n") {
		t.Fatalf("missing trailing %%%%EOF: %q", s[len(s)-20:])
	}
	if !strings.Contains(s, "\nxref\n") {
		t.Error("expected a classical xref table")
	}
	if !strings.Contains(s, "trailer\n") {
		t.Error("expected a trailer keyword section")
	}

	xrefPos := strings.LastIndex(s, "\nxref\n") + 1
	// lines[0] is "xref", lines[1] the "0 N" subsection header; each
	// entry after them is 20 bytes including its end-of-line.
	lines := strings.SplitAfter(s[xrefPos:xrefPos+strings.Index(s[xrefPos:], "trailer")], "\n")
	for _, line := range lines[2:] {
		if line == "" {
			continue
		}
		if len(line) != 20 {
			t.Errorf("xref entry line %q is %d bytes, want 20", line, len(line))
		}
	}
}

func TestWriteObjectStreamsProducesXRefStream(t *testing.T) {
	ctx := sampleContext()
	data, err := Write(ctx, Options{UseObjectStreams: true, ObjectsPerTick: 2})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, "/Type/XRef") && !strings.Contains(s, "/Type /XRef") {
		t.Error("expected a /Type /XRef cross-reference stream")
	}
	if !strings.Contains(s, "/ObjStm") {
		t.Error("expected at least one /ObjStm object")
	}
	if strings.Contains(s, "\nxref\n") {
		t.Error("object-stream mode should not emit a classical xref table")
	}
}

func TestEncodeUpPredictorRoundTripsThroughPNGUpFilter(t *testing.T) {
	rows := [][]byte{
		{1, 0, 0, 0, 0, 0, 0},
		{0, 0, 0, 1, 0, 0, 5},
		{0, 0, 0, 0, 0, 0, 10},
	}
	encoded := encodeUpPredictor(rows)
	if len(encoded) != len(rows)*8 {
		t.Fatalf("encoded length = %d, want %d", len(encoded), len(rows)*8)
	}

	var prev [7]byte
	for i, row := range rows {
		chunk := encoded[i*8 : i*8+8]
		if chunk[0] != 2 {
			t.Fatalf("row %d: filter byte = %d, want 2 (Up)", i, chunk[0])
		}
		for j, want := range row {
			got := chunk[1+j] + prev[j]
			if got != want {
				t.Errorf("row %d col %d: decoded %d, want %d", i, j, got, want)
			}
		}
		copy(prev[:], row)
	}
}

func zlibDecompress(t *testing.T, data []byte) []byte {
	t.Helper()
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("zlib.NewReader: %v", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading zlib stream: %v", err)
	}
	return out
}

func TestFlateCompressRoundTrips(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog, repeatedly, repeatedly")
	compressed := flateCompress(data)
	if got := zlibDecompress(t, compressed); string(got) != string(data) {
		t.Errorf("round trip mismatch: got %q, want %q", got, data)
	}
}
