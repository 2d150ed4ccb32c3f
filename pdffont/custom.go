package pdffont

import (
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/jlmessenger/pdf-lib/pdfctx"
	"github.com/jlmessenger/pdf-lib/pdflog"
	"github.com/jlmessenger/pdf-lib/pdfval"
)

// subsetTagLetters is the fixed alphabet spec section 4.5's subset tag
// draws from: six uppercase letters, "ABCDEF+BaseFont", one tag per
// distinct embedded subset of a face.
const subsetTagLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// CustomFont embeds a caller-supplied TrueType/OpenType font program
// as a Type0 composite font over a CIDFontType2 descendant
// (CIDFontType0 when the outlines are CFF). It is
// two-phase: construction parses and validates the font and reserves
// the Refs it will eventually occupy; callers accumulate glyph usage
// across any number of drawText calls via NoteRune/NoteGlyph, and
// Embed (idempotent) writes the final object graph — with a subset
// font program when Subset is true, containing only the glyphs
// actually used.
type CustomFont struct {
	name   string
	parsed ParsedFont
	subset bool
	tag    string

	fontRef, cidFontRef, descriptorRef, fontFileRef, toUnicodeRef pdfval.Ref

	used      map[GlyphID]rune // glyph -> representative rune, for ToUnicode
	runeToGID map[rune]GlyphID
	embedded  bool
}

// NewCustomFont parses data with kit and reserves this font's object
// numbers in ctx, ready for glyph usage to be recorded before the
// document is finally embedded with Embed. subset controls whether
// Embed writes only the glyphs actually used (true) or the whole font
// program (false).
func NewCustomFont(ctx *pdfctx.Context, kit Fontkit, data []byte, name string, subset bool) (*CustomFont, error) {
	parsed, err := kit.Parse(data, name)
	if err != nil {
		return nil, fmt.Errorf("pdffont: parsing %q: %w", name, err)
	}
	cf := &CustomFont{
		name:          name,
		parsed:        parsed,
		subset:        subset,
		fontRef:       ctx.NextRef(),
		cidFontRef:    ctx.NextRef(),
		descriptorRef: ctx.NextRef(),
		fontFileRef:   ctx.NextRef(),
		toUnicodeRef:  ctx.NextRef(),
		used:          make(map[GlyphID]rune),
		runeToGID:     make(map[rune]GlyphID),
	}
	if subset {
		cf.tag = subsetTag(name)
	}
	return cf, nil
}

// Ref returns the Ref this font's /Type0 dict will occupy, usable
// immediately in a page's /Resources /Font entry even before Embed
// has run.
func (cf *CustomFont) Ref() pdfval.Ref { return cf.fontRef }

// Embedded reports whether Embed has written this font's object graph
// at least once, so a document's deferred-embed queue can tell new
// fonts from ones already flushed.
func (cf *CustomFont) Embedded() bool { return cf.embedded }

// NoteRune records that r is drawn with this font, returning the
// glyph id to place in the content stream's text-showing operator. It
// is a no-op (returning false) if the font does not cover r.
func (cf *CustomFont) NoteRune(r rune) (GlyphID, bool) {
	gid, ok := cf.parsed.GlyphForRune(r)
	if !ok {
		return 0, false
	}
	cf.NoteGlyph(gid, r)
	return gid, true
}

// NoteGlyph records that gid is used, associated with r for the
// ToUnicode CMap (the first rune seen for a glyph wins; ligatures and
// other many-rune-to-one-glyph mappings are out of scope here).
func (cf *CustomFont) NoteGlyph(gid GlyphID, r rune) {
	if _, ok := cf.used[gid]; !ok {
		cf.used[gid] = r
	}
	cf.runeToGID[r] = gid
}

// Embed writes this font's object graph into ctx, reusing the Refs
// reserved at construction time. Safe to call again after further
// NoteGlyph calls (e.g. once per flush): it simply rewrites the same
// objects with the accumulated glyph set.
func (cf *CustomFont) Embed(ctx *pdfctx.Context) error {
	glyphs := cf.sortedGlyphs()

	fontBytes := cf.parsed.Bytes()
	if cf.subset {
		subsetBytes, err := cf.parsed.Subset(glyphs)
		if err != nil {
			return fmt.Errorf("pdffont: subsetting %q: %w", cf.name, err)
		}
		fontBytes = subsetBytes
	}

	metrics := cf.parsed.Metrics()
	baseFont := pdfval.Name(cf.name)
	if cf.subset {
		baseFont = pdfval.Name(cf.tag + "+" + cf.name)
	}

	cf.writeFontFile(ctx, metrics, fontBytes)
	cf.writeDescriptor(ctx, metrics, baseFont)
	cf.writeCIDFont(ctx, baseFont, glyphs)
	cf.writeToUnicode(ctx)
	cf.writeType0(ctx, baseFont)

	pdflog.Embed.Printf("embedded custom font %q (%d glyphs, subset=%v)", cf.name, len(glyphs), cf.subset)
	cf.embedded = true
	return nil
}

func (cf *CustomFont) writeFontFile(ctx *pdfctx.Context, m FontMetrics, data []byte) {
	d := pdfval.NewDict()
	d.Set("Length1", pdfval.Int(len(data)))
	if m.IsCFF {
		d.Set("Subtype", pdfval.Name("OpenType"))
	}
	stream := pdfval.Stream{Dict: d, Content: data}
	ctx.Assign(cf.fontFileRef, stream)
}

func (cf *CustomFont) writeDescriptor(ctx *pdfctx.Context, m FontMetrics, baseFont pdfval.Name) {
	d := pdfval.NewDict()
	d.Set("Type", pdfval.Name("FontDescriptor"))
	d.Set("FontName", baseFont)
	d.Set("Flags", pdfval.Int(m.Flags))
	d.Set("FontBBox", pdfval.Array{
		pdfval.Real(m.FontBBox[0]), pdfval.Real(m.FontBBox[1]),
		pdfval.Real(m.FontBBox[2]), pdfval.Real(m.FontBBox[3]),
	})
	d.Set("ItalicAngle", pdfval.Real(m.ItalicAngle))
	d.Set("Ascent", pdfval.Real(m.Ascent))
	d.Set("Descent", pdfval.Real(m.Descent))
	d.Set("CapHeight", pdfval.Real(m.CapHeight))
	d.Set("StemV", pdfval.Real(m.StemV))
	if m.IsCFF {
		d.Set("FontFile3", cf.fontFileRef)
	} else {
		d.Set("FontFile2", cf.fontFileRef)
	}
	ctx.Assign(cf.descriptorRef, d)
}

func (cf *CustomFont) writeCIDFont(ctx *pdfctx.Context, baseFont pdfval.Name, glyphs []GlyphID) {
	d := pdfval.NewDict()
	d.Set("Type", pdfval.Name("Font"))
	if cf.parsed.Metrics().IsCFF {
		d.Set("Subtype", pdfval.Name("CIDFontType0"))
	} else {
		d.Set("Subtype", pdfval.Name("CIDFontType2"))
	}
	d.Set("BaseFont", baseFont)
	sysInfo := pdfval.NewDict()
	sysInfo.Set("Registry", pdfval.String{Bytes: []byte("Adobe")})
	sysInfo.Set("Ordering", pdfval.String{Bytes: []byte("Identity")})
	sysInfo.Set("Supplement", pdfval.Int(0))
	d.Set("CIDSystemInfo", sysInfo)
	d.Set("FontDescriptor", cf.descriptorRef)
	d.Set("CIDToGIDMap", pdfval.Name("Identity"))
	d.Set("W", cf.widthsArray(glyphs))
	ctx.Assign(cf.cidFontRef, d)
}

// widthsArray builds the compact "c [w1 w2 ...]" /W array form, one
// run per contiguous stretch of glyph ids actually used.
func (cf *CustomFont) widthsArray(glyphs []GlyphID) pdfval.Array {
	var out pdfval.Array
	i := 0
	for i < len(glyphs) {
		start := i
		for i+1 < len(glyphs) && glyphs[i+1] == glyphs[i]+1 {
			i++
		}
		run := make(pdfval.Array, 0, i-start+1)
		for _, g := range glyphs[start : i+1] {
			run = append(run, pdfval.Real(cf.parsed.AdvanceWidth(g)))
		}
		out = append(out, pdfval.Int(glyphs[start]), run)
		i++
	}
	return out
}

func (cf *CustomFont) writeToUnicode(ctx *pdfctx.Context) {
	mapping := make(map[uint32][]rune, len(cf.used))
	for gid, r := range cf.used {
		mapping[uint32(gid)] = []rune{r}
	}
	content := writeAdobeIdentityUnicodeCMap(mapping)
	d := pdfval.NewDict()
	stream := pdfval.Stream{Dict: d, Content: content}
	ctx.Assign(cf.toUnicodeRef, stream)
}

func (cf *CustomFont) writeType0(ctx *pdfctx.Context, baseFont pdfval.Name) {
	d := pdfval.NewDict()
	d.Set("Type", pdfval.Name("Font"))
	d.Set("Subtype", pdfval.Name("Type0"))
	d.Set("BaseFont", baseFont)
	d.Set("Encoding", pdfval.Name("Identity-H"))
	d.Set("DescendantFonts", pdfval.Array{cf.cidFontRef})
	d.Set("ToUnicode", cf.toUnicodeRef)
	ctx.Assign(cf.fontRef, d)
}

func (cf *CustomFont) sortedGlyphs() []GlyphID {
	out := make([]GlyphID, 0, len(cf.used))
	for g := range cf.used {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// subsetTag derives the six-uppercase-letter prefix spec section 4.5
// requires ("ABCDEF+BaseFont"), deterministic from the font's own name
// so the same face always gets the same tag within a document.
func subsetTag(name string) string {
	h := fnv.New32a()
	h.Write([]byte(name))
	n := h.Sum32()
	letters := make([]byte, 6)
	for i := 5; i >= 0; i-- {
		letters[i] = subsetTagLetters[n%uint32(len(subsetTagLetters))]
		n /= uint32(len(subsetTagLetters))
	}
	return string(letters)
}
