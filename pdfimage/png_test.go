package pdfimage

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/jlmessenger/pdf-lib/pdfctx"
	"github.com/jlmessenger/pdf-lib/pdfval"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test PNG: %v", err)
	}
	return buf.Bytes()
}

func TestEmbedPNGOpaqueRGB(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 10; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 10), G: uint8(y * 10), B: 50, A: 255})
		}
	}
	ctx := pdfctx.New()
	ref, err := EmbedPNG(ctx, encodePNG(t, img))
	if err != nil {
		t.Fatalf("EmbedPNG: %v", err)
	}
	stream := ctx.Lookup(ref).(pdfval.Stream)
	if stream.Dict.Get("ColorSpace") != pdfval.Name("DeviceRGB") {
		t.Errorf("ColorSpace = %v, want DeviceRGB", stream.Dict.Get("ColorSpace"))
	}
	if stream.Dict.Has("SMask") {
		t.Error("opaque image should not get an SMask")
	}
	if stream.Dict.Get("Width") != pdfval.Int(10) || stream.Dict.Get("Height") != pdfval.Int(6) {
		t.Errorf("unexpected dimensions: %v x %v", stream.Dict.Get("Width"), stream.Dict.Get("Height"))
	}
}

func TestEmbedPNGWithAlphaProducesSMask(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: uint8(x * 30)})
		}
	}
	ctx := pdfctx.New()
	ref, err := EmbedPNG(ctx, encodePNG(t, img))
	if err != nil {
		t.Fatalf("EmbedPNG: %v", err)
	}
	stream := ctx.Lookup(ref).(pdfval.Stream)
	smaskRef, ok := stream.Dict.Get("SMask").(pdfval.Ref)
	if !ok {
		t.Fatal("expected an SMask Ref for a non-opaque image")
	}
	smask := ctx.Lookup(smaskRef).(pdfval.Stream)
	if smask.Dict.Get("ColorSpace") != pdfval.Name("DeviceGray") {
		t.Errorf("SMask ColorSpace = %v, want DeviceGray", smask.Dict.Get("ColorSpace"))
	}
	if len(smask.Content) == 0 {
		t.Error("expected a non-empty SMask stream")
	}
}

func TestEmbedPNGIndexedUsesIndexedColorSpace(t *testing.T) {
	pal := color.Palette{
		color.RGBA{0, 0, 0, 255},
		color.RGBA{255, 0, 0, 255},
		color.RGBA{0, 255, 0, 255},
		color.RGBA{0, 0, 255, 255},
	}
	img := image.NewPaletted(image.Rect(0, 0, 4, 4), pal)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetColorIndex(x, y, uint8((x+y)%len(pal)))
		}
	}
	ctx := pdfctx.New()
	ref, err := EmbedPNG(ctx, encodePNG(t, img))
	if err != nil {
		t.Fatalf("EmbedPNG: %v", err)
	}
	stream := ctx.Lookup(ref).(pdfval.Stream)
	cs, ok := stream.Dict.Get("ColorSpace").(pdfval.Array)
	if !ok || len(cs) != 4 || cs[0] != pdfval.Name("Indexed") {
		t.Fatalf("expected a 4-element Indexed color space array, got %v", stream.Dict.Get("ColorSpace"))
	}
}

func TestEmbedPNGRejectsGarbage(t *testing.T) {
	ctx := pdfctx.New()
	if _, err := EmbedPNG(ctx, []byte("not a png")); err == nil {
		t.Error("expected an error for non-PNG input")
	}
}
