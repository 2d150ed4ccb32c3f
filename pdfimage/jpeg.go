// Package pdfimage implements the JPEG and PNG embedders described by
// spec section 4.5: both re-wrap already-compressed pixel data in an
// Image XObject stream rather than re-encoding it, validating just
// enough of the source format (SOF marker / IHDR fields) to fill in
// the surrounding dictionary.
package pdfimage

import (
	"bytes"
	"fmt"
	"image/color"
	"image/jpeg"

	"github.com/jlmessenger/pdf-lib/pdfctx"
	"github.com/jlmessenger/pdf-lib/pdfval"
)

// cmykInvertDecode is the /Decode array Adobe-produced CMYK JPEGs
// need: the APP14 marker's inverted-CMYK convention means the raw DCT
// samples must be read back to front per component.
var cmykInvertDecode = pdfval.Array{
	pdfval.Real(1), pdfval.Real(0), pdfval.Real(1), pdfval.Real(0),
	pdfval.Real(1), pdfval.Real(0), pdfval.Real(1), pdfval.Real(0),
}

// EmbedJPEG registers data (a complete JFIF/EXIF JPEG byte stream) as
// an Image XObject, /DCTDecode-filtered, and returns its Ref. The
// compressed bytes are kept exactly as supplied; only the SOF/frame
// header is decoded, to recover width, height and color space.
func EmbedJPEG(ctx *pdfctx.Context, data []byte) (pdfval.Ref, error) {
	ref := ctx.NextRef()
	if err := EmbedJPEGInto(ctx, ref, data); err != nil {
		return pdfval.Ref{}, err
	}
	return ref, nil
}

// EmbedJPEGInto does what EmbedJPEG does, but assigns the resulting
// stream to a Ref the caller already reserved.
func EmbedJPEGInto(ctx *pdfctx.Context, ref pdfval.Ref, data []byte) error {
	config, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("pdfimage: decoding JPEG header: %w", err)
	}

	d := pdfval.NewDict()
	d.Set("Type", pdfval.Name("XObject"))
	d.Set("Subtype", pdfval.Name("Image"))
	d.Set("Width", pdfval.Int(config.Width))
	d.Set("Height", pdfval.Int(config.Height))
	d.Set("BitsPerComponent", pdfval.Int(8))
	d.Set("Filter", pdfval.Name("DCTDecode"))

	switch config.ColorModel {
	case color.GrayModel:
		d.Set("ColorSpace", pdfval.Name("DeviceGray"))
	case color.YCbCrModel:
		d.Set("ColorSpace", pdfval.Name("DeviceRGB"))
	case color.CMYKModel:
		d.Set("ColorSpace", pdfval.Name("DeviceCMYK"))
		d.Set("Decode", cmykInvertDecode)
	default:
		return fmt.Errorf("pdfimage: unsupported JPEG color model %T", config.ColorModel)
	}

	stream := pdfval.Stream{Dict: d, Content: append([]byte(nil), data...)}
	ctx.Assign(ref, stream)
	return nil
}
