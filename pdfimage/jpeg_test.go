package pdfimage

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/jlmessenger/pdf-lib/pdfctx"
	"github.com/jlmessenger/pdf-lib/pdfval"
)

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encoding test JPEG: %v", err)
	}
	return buf.Bytes()
}

func TestEmbedJPEGBuildsDCTDecodeImage(t *testing.T) {
	ctx := pdfctx.New()
	data := encodeJPEG(t, 16, 8)

	ref, err := EmbedJPEG(ctx, data)
	if err != nil {
		t.Fatalf("EmbedJPEG: %v", err)
	}
	stream := ctx.Lookup(ref).(pdfval.Stream)
	if stream.Dict.Get("Filter") != pdfval.Name("DCTDecode") {
		t.Errorf("Filter = %v, want DCTDecode", stream.Dict.Get("Filter"))
	}
	if stream.Dict.Get("Width") != pdfval.Int(16) {
		t.Errorf("Width = %v, want 16", stream.Dict.Get("Width"))
	}
	if stream.Dict.Get("Height") != pdfval.Int(8) {
		t.Errorf("Height = %v, want 8", stream.Dict.Get("Height"))
	}
	if stream.Dict.Get("ColorSpace") != pdfval.Name("DeviceRGB") {
		t.Errorf("ColorSpace = %v, want DeviceRGB", stream.Dict.Get("ColorSpace"))
	}
	if !bytes.Equal(stream.Content, data) {
		t.Error("expected the original JPEG bytes to be kept verbatim")
	}
}

func TestEmbedJPEGRejectsGarbage(t *testing.T) {
	ctx := pdfctx.New()
	if _, err := EmbedJPEG(ctx, []byte("not a jpeg")); err == nil {
		t.Error("expected an error for non-JPEG input")
	}
}
