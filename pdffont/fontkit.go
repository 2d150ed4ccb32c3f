package pdffont

import "github.com/benoitkugler/textlayout/fonts"

// GlyphID is the font-program-internal glyph index (the "gid" the
// font's own glyph table indexes by), distinct from both the byte
// code drawText sees and the CID the embedded CIDFontType2 descendant
// assigns it. Aliased to the fontkit ecosystem's own glyph-id type so
// a Fontkit backed by github.com/benoitkugler/textlayout can return
// its GIDs directly, with no conversion layer.
type GlyphID = fonts.GID

// FontMetrics is the subset of a parsed font program pdffont needs to
// build the PDF object graph around it: whether the source bytes are
// TrueType/OpenType-TrueType outlines (-> /FontFile2) or CFF/OpenType
// -CFF outlines (-> /FontFile3), plus the FontDescriptor fields every
// embedded-font writer emits.
type FontMetrics struct {
	UnitsPerEm  uint16
	IsCFF       bool
	Flags       int
	FontBBox    [4]float64
	ItalicAngle float64
	Ascent      float64
	Descent     float64
	CapHeight   float64
	StemV       float64
}

// Fontkit parses a font program's binary bytes and answers the
// queries pdffont needs to build a Type0 composite font (CIDFontType2
// descendant for TrueType outlines, CIDFontType0 for CFF outlines)
// and, when asked, a subset containing only the glyphs actually used.
// The binary SFNT/CFF parsing and subsetting work is delegated
// entirely to the caller's implementation; pdffont only orchestrates
// the resulting PDF dictionaries.
type Fontkit interface {
	// Parse validates raw font-program bytes and returns a handle
	// usable for the rest of this interface's methods. name is a
	// caller-supplied label used only for error messages.
	Parse(data []byte, name string) (ParsedFont, error)
}

// ParsedFont is one successfully parsed font program.
type ParsedFont interface {
	// Metrics returns the FontDescriptor-relevant summary of this font.
	Metrics() FontMetrics

	// GlyphForRune returns the glyph the font uses to render r, and
	// whether the font covers r at all.
	GlyphForRune(r rune) (GlyphID, bool)

	// AdvanceWidth returns gid's advance width in 1000-unit glyph
	// space (already rescaled from UnitsPerEm).
	AdvanceWidth(gid GlyphID) float64

	// Subset returns a font program containing only the glyphs in
	// gids (plus whatever the format requires, e.g. glyph 0). The
	// BaseFont name and its subset tag are built by pdffont, not
	// returned here. When subsetting is not supported, implementations
	// may return the original bytes unchanged.
	Subset(gids []GlyphID) ([]byte, error)

	// Bytes returns the original, unmodified font program.
	Bytes() []byte
}
