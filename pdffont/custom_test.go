package pdffont

import (
	"testing"

	"github.com/jlmessenger/pdf-lib/pdfctx"
	"github.com/jlmessenger/pdf-lib/pdfval"
)

// fakeFontkit and fakeParsed let these tests exercise CustomFont
// without a real SFNT/CFF parser: every rune maps to its own code
// point as a glyph id, with a constant advance width.
type fakeFontkit struct{}

func (fakeFontkit) Parse(data []byte, name string) (ParsedFont, error) {
	return &fakeParsed{data: data}, nil
}

type fakeParsed struct{ data []byte }

func (p *fakeParsed) Metrics() FontMetrics {
	return FontMetrics{
		UnitsPerEm: 1000,
		FontBBox:   [4]float64{-100, -200, 1000, 900},
		Ascent:     800,
		Descent:    -200,
		CapHeight:  700,
		StemV:      80,
	}
}

func (p *fakeParsed) GlyphForRune(r rune) (GlyphID, bool) {
	if r == 0 {
		return 0, false
	}
	return GlyphID(r), true
}

func (p *fakeParsed) AdvanceWidth(gid GlyphID) float64 { return 500 }

func (p *fakeParsed) Subset(gids []GlyphID) ([]byte, error) {
	return append([]byte(nil), p.data...), nil
}

func (p *fakeParsed) Bytes() []byte { return p.data }

func TestCustomFontEmbedBuildsType0Graph(t *testing.T) {
	ctx := pdfctx.New()
	cf, err := NewCustomFont(ctx, fakeFontkit{}, []byte("fake-font-bytes"), "MyFace", true)
	if err != nil {
		t.Fatalf("NewCustomFont: %v", err)
	}
	for _, r := range "Hi" {
		if _, ok := cf.NoteRune(r); !ok {
			t.Fatalf("expected rune %q to be covered", r)
		}
	}
	if err := cf.Embed(ctx); err != nil {
		t.Fatalf("Embed: %v", err)
	}

	d := ctx.Lookup(cf.Ref()).(pdfval.Dict)
	if d.Get("Subtype") != pdfval.Name("Type0") {
		t.Errorf("Subtype = %v, want Type0", d.Get("Subtype"))
	}
	base, _ := d.Get("BaseFont").(pdfval.Name)
	if len(base) < 8 || base[6] != '+' {
		t.Errorf("BaseFont %q does not look like a TAG+Name subset tag", base)
	}

	descendants, ok := d.Get("DescendantFonts").(pdfval.Array)
	if !ok || len(descendants) != 1 {
		t.Fatal("expected a single-element DescendantFonts array")
	}
	cidFont := ctx.Lookup(descendants[0]).(pdfval.Dict)
	if cidFont.Get("Subtype") != pdfval.Name("CIDFontType2") {
		t.Errorf("descendant Subtype = %v, want CIDFontType2", cidFont.Get("Subtype"))
	}

	descRef, ok := cidFont.Get("FontDescriptor").(pdfval.Ref)
	if !ok {
		t.Fatal("expected FontDescriptor Ref")
	}
	desc := ctx.Lookup(descRef).(pdfval.Dict)
	if _, ok := desc.Get("FontFile2").(pdfval.Ref); !ok {
		t.Error("expected FontFile2 for a non-CFF font")
	}

	toUniRef, ok := d.Get("ToUnicode").(pdfval.Ref)
	if !ok {
		t.Fatal("expected ToUnicode Ref")
	}
	stream := ctx.Lookup(toUniRef).(pdfval.Stream)
	if len(stream.Content) == 0 {
		t.Error("expected a non-empty ToUnicode CMap stream")
	}
}

func TestCustomFontWithoutSubsetKeepsOriginalBaseFont(t *testing.T) {
	ctx := pdfctx.New()
	cf, err := NewCustomFont(ctx, fakeFontkit{}, []byte("bytes"), "FullFace", false)
	if err != nil {
		t.Fatalf("NewCustomFont: %v", err)
	}
	cf.NoteRune('A')
	if err := cf.Embed(ctx); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	d := ctx.Lookup(cf.Ref()).(pdfval.Dict)
	if d.Get("BaseFont") != pdfval.Name("FullFace") {
		t.Errorf("BaseFont = %v, want unmodified FullFace", d.Get("BaseFont"))
	}
}

func TestSubsetTagIsDeterministicPerName(t *testing.T) {
	a := subsetTag("SameFace")
	b := subsetTag("SameFace")
	if a != b {
		t.Errorf("subsetTag not deterministic: %q != %q", a, b)
	}
	if len(a) != 6 {
		t.Errorf("expected a 6-letter tag, got %q", a)
	}
}
