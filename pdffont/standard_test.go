package pdffont

import (
	"testing"

	"github.com/jlmessenger/pdf-lib/pdfctx"
	"github.com/jlmessenger/pdf-lib/pdfval"
)

func TestIsStandardRecognizesAllFourteenFaces(t *testing.T) {
	faces := []StandardFont{
		Courier, CourierBold, CourierOblique, CourierBoldOblique,
		Helvetica, HelveticaBold, HelveticaOblique, HelveticaBoldOblique,
		TimesRoman, TimesBold, TimesItalic, TimesBoldItalic,
		Symbol, ZapfDingbats,
	}
	for _, f := range faces {
		if !IsStandard(string(f)) {
			t.Errorf("IsStandard(%q) = false, want true", f)
		}
	}
	if IsStandard("Arial") {
		t.Error("IsStandard(\"Arial\") = true, want false")
	}
}

func TestWidthOfSumsHelveticaAFMWidths(t *testing.T) {
	// H=722 e=556 l=222 l=222 o=556, per the Helvetica AFM table.
	want := (722 + 556 + 222 + 222 + 556) * 12.0 / 1000
	got, err := Helvetica.WidthOf("Hello", 12)
	if err != nil {
		t.Fatalf("WidthOf: %v", err)
	}
	if got != want {
		t.Errorf("WidthOf(\"Hello\", 12) = %v, want %v", got, want)
	}
}

func TestWidthOfRejectsNonStandardFont(t *testing.T) {
	if _, err := StandardFont("Arial").WidthOf("x", 12); err == nil {
		t.Error("expected error for a non-standard face")
	}
}

func TestEmbedBuildsType1FontDict(t *testing.T) {
	ctx := pdfctx.New()
	ref, err := Helvetica.Embed(ctx)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	d := ctx.Lookup(ref).(pdfval.Dict)
	if d.Get("Subtype") != pdfval.Name("Type1") {
		t.Errorf("Subtype = %v, want Type1", d.Get("Subtype"))
	}
	if d.Get("BaseFont") != pdfval.Name("Helvetica") {
		t.Errorf("BaseFont = %v, want Helvetica", d.Get("BaseFont"))
	}
	widths, ok := d.Get("Widths").(pdfval.Array)
	if !ok || len(widths) == 0 {
		t.Fatal("expected a non-empty Widths array")
	}
	descRef, ok := d.Get("FontDescriptor").(pdfval.Ref)
	if !ok {
		t.Fatal("expected FontDescriptor to be a Ref")
	}
	desc := ctx.Lookup(descRef).(pdfval.Dict)
	if desc.Get("FontName") != pdfval.Name("Helvetica") {
		t.Errorf("descriptor FontName = %v, want Helvetica", desc.Get("FontName"))
	}
}

func TestEmbedTwiceRegistersTwoIndependentFontDicts(t *testing.T) {
	ctx := pdfctx.New()
	ref1, _ := Helvetica.Embed(ctx)
	ref2, _ := Helvetica.Embed(ctx)
	if ref1 == ref2 {
		t.Error("expected two distinct font dicts, Embed is not memoized across calls")
	}
}
