// Package pdffont implements the font embedders described by spec
// section 4.5: the 14 standard Type1 faces (bundled AFM metrics, no
// embedded font program) and custom TrueType/OpenType fonts (full or
// subset) embedded as Type0/CID composite fonts through a pluggable
// Fontkit.
package pdffont

import (
	"fmt"

	"github.com/jlmessenger/pdf-lib/pdfctx"
	"github.com/jlmessenger/pdf-lib/pdfval"
)

// StandardFont names one of the 14 standard PDF faces. It is the
// distinguished-string enumeration spec section 9's first Open
// Question calls for: recognized values fall through to this
// embedder; anything else is handled by the generic binary-font path.
type StandardFont string

const (
	Courier              StandardFont = "Courier"
	CourierBold          StandardFont = "Courier-Bold"
	CourierOblique       StandardFont = "Courier-Oblique"
	CourierBoldOblique   StandardFont = "Courier-BoldOblique"
	Helvetica            StandardFont = "Helvetica"
	HelveticaBold        StandardFont = "Helvetica-Bold"
	HelveticaOblique     StandardFont = "Helvetica-Oblique"
	HelveticaBoldOblique StandardFont = "Helvetica-BoldOblique"
	TimesRoman           StandardFont = "Times-Roman"
	TimesBold            StandardFont = "Times-Bold"
	TimesItalic          StandardFont = "Times-Italic"
	TimesBoldItalic      StandardFont = "Times-BoldItalic"
	Symbol               StandardFont = "Symbol"
	ZapfDingbats         StandardFont = "ZapfDingbats"
)

// IsStandard reports whether name is one of the 14 recognized faces.
func IsStandard(name string) bool {
	_, ok := standardMetrics[StandardFont(name)]
	return ok
}

// afmMetrics is the bundled subset of a face's AFM data this module
// needs: glyph widths (in 1000-unit glyph space, WinAnsiEncoding code
// order starting at FirstChar) plus the handful of FontDescriptor
// entries every standard-font PDF writer emits.
type afmMetrics struct {
	descriptor pdfval.Dict // template; BaseFont/FontName filled in by caller
	firstChar  byte
	widths     []int
}

// WidthOf returns the sum of this face's AFM advance widths for s
// (interpreted as WinAnsiEncoding bytes, one glyph per byte, matching
// the Type1 simple-font model), scaled by size/1000.
func (f StandardFont) WidthOf(s string, size float64) (float64, error) {
	m, ok := standardMetrics[f]
	if !ok {
		return 0, fmt.Errorf("pdffont: %q is not a standard font", f)
	}
	var total float64
	for i := 0; i < len(s); i++ {
		code := s[i]
		idx := int(code) - int(m.firstChar)
		w := 0
		if idx >= 0 && idx < len(m.widths) {
			w = m.widths[idx]
		}
		total += float64(w) * size / 1000
	}
	return total, nil
}

// Embed registers this face's /Type /Font /Subtype /Type1 dict into
// ctx and returns its Ref. No font-program bytes are embedded, per
// spec section 4.5.
func (f StandardFont) Embed(ctx *pdfctx.Context) (pdfval.Ref, error) {
	ref := ctx.NextRef()
	if err := f.EmbedInto(ctx, ref); err != nil {
		return pdfval.Ref{}, err
	}
	return ref, nil
}

// EmbedInto builds this face's font dict the same way Embed does, but
// assigns it to a Ref the caller already reserved (e.g. pdfdoc's
// deferred-embedder bookkeeping) instead of allocating a new one.
func (f StandardFont) EmbedInto(ctx *pdfctx.Context, ref pdfval.Ref) error {
	m, ok := standardMetrics[f]
	if !ok {
		return fmt.Errorf("pdffont: %q is not a standard font", f)
	}

	descriptor := m.descriptor.Clone().(pdfval.Dict)
	descriptor.Set("FontName", pdfval.Name(f))
	descriptorRef := ctx.Register(descriptor)

	widths := make(pdfval.Array, len(m.widths))
	for i, w := range m.widths {
		widths[i] = pdfval.Int(w)
	}

	d := pdfval.NewDict()
	d.Set("Type", pdfval.Name("Font"))
	d.Set("Subtype", pdfval.Name("Type1"))
	d.Set("BaseFont", pdfval.Name(f))
	d.Set("Encoding", pdfval.Name("WinAnsiEncoding"))
	d.Set("FirstChar", pdfval.Int(m.firstChar))
	d.Set("LastChar", pdfval.Int(int(m.firstChar)+len(m.widths)-1))
	d.Set("Widths", widths)
	d.Set("FontDescriptor", descriptorRef)

	ctx.Assign(ref, d)
	return nil
}

func descriptor(flags int, bbox [4]float64, italic, ascent, descent, capHeight, xHeight, stemV, stemH, avgWidth, maxWidth float64) pdfval.Dict {
	d := pdfval.NewDict()
	d.Set("Flags", pdfval.Int(flags))
	d.Set("FontBBox", pdfval.Array{pdfval.Real(bbox[0]), pdfval.Real(bbox[1]), pdfval.Real(bbox[2]), pdfval.Real(bbox[3])})
	d.Set("ItalicAngle", pdfval.Real(italic))
	d.Set("Ascent", pdfval.Real(ascent))
	d.Set("Descent", pdfval.Real(descent))
	d.Set("CapHeight", pdfval.Real(capHeight))
	d.Set("XHeight", pdfval.Real(xHeight))
	d.Set("StemV", pdfval.Real(stemV))
	d.Set("StemH", pdfval.Real(stemH))
	d.Set("AvgWidth", pdfval.Real(avgWidth))
	d.Set("MaxWidth", pdfval.Real(maxWidth))
	return d
}
