package pdfparse

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/jlmessenger/pdf-lib/pdfval"
)

// buildClassicalPDF assembles the smallest well-formed PDF with a
// classical xref table: one Catalog, one Pages node, one Page leaf.
func buildClassicalPDF() []byte {
	var buf bytes.Buffer
	offsets := make([]int, 4)

	buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")

	offsets[1] = buf.Len()
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	offsets[2] = buf.Len()
	buf.WriteString("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")

	offsets[3] = buf.Len()
	buf.WriteString("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595.28 841.89] >>\nendobj\n")

	xrefOffset := buf.Len()
	buf.WriteString("xref\n0 4\n")
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= 3; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	buf.WriteString("trailer\n<< /Size 4 /Root 1 0 R >>\n")
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xrefOffset)

	return buf.Bytes()
}

func TestParseClassicalXref(t *testing.T) {
	ctx, err := Parse(buildClassicalPDF(), Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !ctx.Trailer.HasID {
		// no ID in this fixture, that's fine; just exercise Root
	}
	catalog := ctx.Lookup(ctx.Trailer.Root)
	d, ok := catalog.(pdfval.Dict)
	if !ok {
		t.Fatalf("Root did not resolve to a dict: %v", catalog)
	}
	if d.Get("Type") != pdfval.Name("Catalog") {
		t.Errorf("Root is not a Catalog: %v", d)
	}

	pagesRef, ok := d.Get("Pages").(pdfval.Ref)
	if !ok {
		t.Fatalf("Catalog has no /Pages ref")
	}
	pages := ctx.Lookup(pagesRef).(pdfval.Dict)
	if pages.Get("Count") != pdfval.Int(1) {
		t.Errorf("expected Count 1, got %v", pages.Get("Count"))
	}

	kids := pages.Get("Kids").(pdfval.Array)
	leaf := ctx.Lookup(kids[0]).(pdfval.Dict)
	if leaf.Get("Type") != pdfval.Name("Page") {
		t.Errorf("expected Page leaf, got %v", leaf)
	}
}

func TestParseToleratesDanglingReference(t *testing.T) {
	raw := buildClassicalPDF()
	ctx, err := Parse(raw, Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	missing := ctx.Lookup(pdfval.Ref{Number: 999})
	if !pdfval.IsNull(missing) {
		t.Errorf("expected Null for unresolved ref, got %v", missing)
	}
}

func TestParseRecoversFromMissingStartxref(t *testing.T) {
	raw := buildClassicalPDF()
	idx := bytes.Index(raw, []byte("startxref"))
	if idx == -1 {
		t.Fatal("fixture has no startxref to corrupt")
	}
	corrupted := append([]byte(nil), raw[:idx]...)
	corrupted = append(corrupted, []byte("%%EOF\n")...)

	ctx, err := Parse(corrupted, Options{})
	if err != nil {
		t.Fatalf("Parse with corrupted startxref: %v", err)
	}
	catalog, ok := ctx.Lookup(ctx.Trailer.Root).(pdfval.Dict)
	if !ok || catalog.Get("Type") != pdfval.Name("Catalog") {
		t.Errorf("recovery scan did not find the catalog: %v", catalog)
	}
}
