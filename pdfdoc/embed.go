package pdfdoc

import (
	"fmt"

	"github.com/jlmessenger/pdf-lib/pdfctx"
	"github.com/jlmessenger/pdf-lib/pdffont"
	"github.com/jlmessenger/pdf-lib/pdfimage"
	"github.com/jlmessenger/pdf-lib/pdfval"
)

// FontHandle is the Ref an embed_font/embed_standard_font call hands
// back immediately, usable in a page's /Resources /Font entry before
// Flush has actually written the font's object graph.
type FontHandle struct {
	Ref pdfval.Ref
}

// ImageHandle is the analogous handle embed_jpg/embed_png return.
type ImageHandle struct {
	Ref pdfval.Ref
}

// EmbedFontOptions configures EmbedFont, mirroring spec section 6's
// option table for embed_font. Name is the BaseFont this font will be
// registered under; it has no bearing on parsing, only on what the
// PDF viewer shows as the font's name.
type EmbedFontOptions struct {
	Subset bool
	Name   string
}

// embedder is the uniform deferred-work item Flush drives: every
// EmbedFont/EmbedStandardFont/EmbedJPG/EmbedPNG call appends one to
// Document.pending, already holding its reserved Ref, per spec section
// 4.5's "construction reserves, embed_into(context) materializes".
type embedder interface {
	flush(ctx *pdfctx.Context) error
}

type standardFontEmbed struct {
	ref  pdfval.Ref
	face pdffont.StandardFont
	done bool
}

func (e *standardFontEmbed) flush(ctx *pdfctx.Context) error {
	if e.done {
		return nil
	}
	if err := e.face.EmbedInto(ctx, e.ref); err != nil {
		return err
	}
	e.done = true
	return nil
}

type jpegEmbed struct {
	ref  pdfval.Ref
	data []byte
	done bool
}

func (e *jpegEmbed) flush(ctx *pdfctx.Context) error {
	if e.done {
		return nil
	}
	if err := pdfimage.EmbedJPEGInto(ctx, e.ref, e.data); err != nil {
		return err
	}
	e.done = true
	return nil
}

type pngEmbed struct {
	ref  pdfval.Ref
	data []byte
	done bool
}

func (e *pngEmbed) flush(ctx *pdfctx.Context) error {
	if e.done {
		return nil
	}
	if err := pdfimage.EmbedPNGInto(ctx, e.ref, e.data); err != nil {
		return err
	}
	e.done = true
	return nil
}

// customFontEmbed defers to (*pdffont.CustomFont).Embed, which is
// naturally idempotent in effect: it rewrites the same Refs with
// whatever glyph set NoteRune/NoteGlyph has accumulated so far, so
// calling flush again after more glyphs were noted picks them up.
type customFontEmbed struct {
	cf *pdffont.CustomFont
}

func (e *customFontEmbed) flush(ctx *pdfctx.Context) error {
	return e.cf.Embed(ctx)
}

// RegisterFontkit stores the fontkit collaborator custom-font embeds
// need to parse font bytes, per spec section 4.6's register_fontkit.
func (d *Document) RegisterFontkit(kit pdffont.Fontkit) {
	d.fontkit = kit
}

// EmbedStandardFont reserves one of the 14 standard faces, per spec
// section 4.6's embed_standard_font(name).
func (d *Document) EmbedStandardFont(name string) (FontHandle, error) {
	if !pdffont.IsStandard(name) {
		return FontHandle{}, newError(InvalidInputType, fmt.Sprintf("%q is not a standard font name", name))
	}
	ref := d.ctx.NextRef()
	d.pending = append(d.pending, &standardFontEmbed{ref: ref, face: pdffont.StandardFont(name)})
	return FontHandle{Ref: ref}, nil
}

// EmbedFont reserves a font embedder, dispatching on input's shape per
// spec section 4.6's embed_font: a standard-face name routes to
// EmbedStandardFont; anything else is treated as font-program bytes
// (or a base64/data-URI encoding of them) and requires a fontkit
// registered via RegisterFontkit, whether or not opts.Subset is set,
// since even a full (non-subset) custom-font embed needs the fontkit
// to parse the glyph table and metrics in the first place.
func (d *Document) EmbedFont(input interface{}, opts EmbedFontOptions) (FontHandle, error) {
	if name, ok := input.(string); ok && pdffont.IsStandard(name) {
		return d.EmbedStandardFont(name)
	}
	if d.fontkit == nil {
		return FontHandle{}, newError(FontkitNotRegistered, "custom font embed requires RegisterFontkit")
	}
	data, err := DecodeInput(input)
	if err != nil {
		return FontHandle{}, err
	}
	name := opts.Name
	if name == "" {
		name = "CustomFont"
	}
	cf, err := pdffont.NewCustomFont(d.ctx, d.fontkit, data, name, opts.Subset)
	if err != nil {
		return FontHandle{}, wrapError(InvalidInputType, err)
	}
	d.pending = append(d.pending, &customFontEmbed{cf: cf})
	return FontHandle{Ref: cf.Ref()}, nil
}

// EmbedJPG reserves a JPEG image embedder, per spec section 4.6's
// embed_jpg(bytes). input accepts any of DecodeInput's shapes.
func (d *Document) EmbedJPG(input interface{}) (ImageHandle, error) {
	data, err := DecodeInput(input)
	if err != nil {
		return ImageHandle{}, err
	}
	ref := d.ctx.NextRef()
	d.pending = append(d.pending, &jpegEmbed{ref: ref, data: data})
	return ImageHandle{Ref: ref}, nil
}

// EmbedPNG reserves a PNG image embedder, per spec section 4.6's
// embed_png(bytes).
func (d *Document) EmbedPNG(input interface{}) (ImageHandle, error) {
	data, err := DecodeInput(input)
	if err != nil {
		return ImageHandle{}, err
	}
	ref := d.ctx.NextRef()
	d.pending = append(d.pending, &pngEmbed{ref: ref, data: data})
	return ImageHandle{Ref: ref}, nil
}

// Flush materializes every embedder reserved since the last Flush (or
// since Document creation), in insertion order, per spec section
// 4.6's flush(). Calling Flush repeatedly with no new embeds in
// between is a no-op for the standard-font/JPEG/PNG embedders and a
// harmless re-write for custom fonts, matching the "flush is
// idempotent" testable property.
func (d *Document) Flush() error {
	for _, e := range d.pending {
		if err := e.flush(d.ctx); err != nil {
			return err
		}
	}
	return nil
}
