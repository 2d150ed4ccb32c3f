package pdfimage

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/jlmessenger/pdf-lib/pdfctx"
	"github.com/jlmessenger/pdf-lib/pdfval"
)

var pngSignature = []byte("\x89PNG\x0d\x0a\x1a\x0a")

func beUint32(buf *bytes.Buffer) int {
	var raw [4]byte
	_, _ = buf.Read(raw[:])
	return int(binary.BigEndian.Uint32(raw[:]))
}

func zlibCompress(data []byte) []byte {
	var buf bytes.Buffer
	w, _ := zlib.NewWriterLevel(&buf, zlib.BestSpeed)
	w.Write(data)
	w.Close()
	return buf.Bytes()
}

func zlibDecompress(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// colorSpaceForType maps a PNG IHDR color type to a PDF color space
// and the "Colors" predictor parameter it implies. Color type 3
// (indexed) is reported with colorVal=1; its PLTE-derived Indexed
// array is filled in by the caller once the palette chunk is seen.
func colorSpaceForType(ct byte) (cs pdfval.Value, colorVal int, indexed bool, err error) {
	switch ct {
	case 0, 4:
		return pdfval.Name("DeviceGray"), 1, false, nil
	case 2, 6:
		return pdfval.Name("DeviceRGB"), 3, false, nil
	case 3:
		return nil, 1, true, nil
	default:
		return nil, 0, false, fmt.Errorf("pdfimage: unknown PNG color type %d", ct)
	}
}

// EmbedPNG registers data (a complete PNG byte stream) as an Image
// XObject, /FlateDecode-filtered with /Predictor 15: each scanline's
// own PNG filter byte is left in place in the stream content. Color types with
// an alpha channel (4, 6) are split into a color stream plus a
// separate /SMask image, since PDF image XObjects have no native
// alpha channel. Palette-based images (type 3) resolve to an Indexed
// color space with an inline hex-string lookup table, and a tRNS
// chunk becomes a color-key /Mask.
//
// Ported from the teacher's hand-rolled PNG chunk scanner
// (contentstream/images.go's parsePNG): the standard library's
// image/png decoder exposes neither the raw tRNS transparency chunk
// nor scanline filter bytes the way PDF's own Predictor 15 needs them,
// so this reads chunks directly rather than going through image/png.
func EmbedPNG(ctx *pdfctx.Context, data []byte) (pdfval.Ref, error) {
	ref := ctx.NextRef()
	if err := EmbedPNGInto(ctx, ref, data); err != nil {
		return pdfval.Ref{}, err
	}
	return ref, nil
}

// EmbedPNGInto does what EmbedPNG does, but assigns the resulting
// image (and, if one is produced, its /SMask) to a Ref the caller
// already reserved.
func EmbedPNGInto(ctx *pdfctx.Context, ref pdfval.Ref, data []byte) error {
	buf := bytes.NewBuffer(data)
	if !bytes.Equal(buf.Next(8), pngSignature) {
		return fmt.Errorf("pdfimage: not a PNG buffer")
	}
	_ = buf.Next(4) // IHDR length
	if string(buf.Next(4)) != "IHDR" {
		return fmt.Errorf("pdfimage: malformed PNG: missing IHDR")
	}
	width := beUint32(buf)
	height := beUint32(buf)

	bitDepth, err := buf.ReadByte()
	if err != nil {
		return err
	}
	if bitDepth > 8 {
		return fmt.Errorf("pdfimage: 16-bit PNG depth not supported")
	}
	colorType, err := buf.ReadByte()
	if err != nil {
		return err
	}
	cs, colorVal, isIndexed, err := colorSpaceForType(colorType)
	if err != nil {
		return err
	}
	if b, _ := buf.ReadByte(); b != 0 {
		return fmt.Errorf("pdfimage: unknown PNG compression method")
	}
	if b, _ := buf.ReadByte(); b != 0 {
		return fmt.Errorf("pdfimage: unknown PNG filter method")
	}
	if b, _ := buf.ReadByte(); b != 0 {
		return fmt.Errorf("pdfimage: interlaced PNG not supported")
	}
	_ = buf.Next(4) // IHDR CRC

	var palette []byte
	var idat []byte
	var trns []int
chunks:
	for {
		if buf.Len() < 8 {
			return fmt.Errorf("pdfimage: truncated PNG chunk stream")
		}
		n := beUint32(buf)
		tag := string(buf.Next(4))
		switch tag {
		case "PLTE":
			palette = buf.Next(n)
			_ = buf.Next(4)
		case "tRNS":
			t := buf.Next(n)
			switch colorType {
			case 0:
				if len(t) >= 2 {
					trns = []int{int(t[1])}
				}
			case 2:
				if len(t) >= 6 {
					trns = []int{int(t[1]), int(t[3]), int(t[5])}
				}
			default:
				if pos := strings.IndexByte(string(t), 0); pos >= 0 {
					trns = []int{pos}
				}
			}
			_ = buf.Next(4)
		case "IDAT":
			idat = append(idat, buf.Next(n)...)
			_ = buf.Next(4)
		case "IEND":
			_ = buf.Next(n + 4)
			break chunks
		default:
			_ = buf.Next(n + 4)
		}
	}

	if isIndexed {
		if len(palette) == 0 {
			return fmt.Errorf("pdfimage: indexed PNG missing PLTE chunk")
		}
		hival := len(palette)/3 - 1
		cs = pdfval.Array{
			pdfval.Name("Indexed"), pdfval.Name("DeviceRGB"), pdfval.Int(hival),
			pdfval.String{Bytes: append([]byte(nil), palette...), Kind: pdfval.HexString},
		}
	}

	var maskValue pdfval.Value
	if len(trns) > 0 {
		entries := make(pdfval.Array, 0, len(trns)*2)
		for _, v := range trns {
			entries = append(entries, pdfval.Int(v), pdfval.Int(v))
		}
		maskValue = entries
	}

	colorData := idat
	var smaskData []byte
	if colorType == 4 || colorType == 6 {
		var rawColor []byte
		rawColor, smaskData, err = splitAlpha(idat, width, height, colorType)
		if err != nil {
			return fmt.Errorf("pdfimage: splitting PNG alpha channel: %w", err)
		}
		colorData = zlibCompress(rawColor)
	}

	d := pdfval.NewDict()
	d.Set("Type", pdfval.Name("XObject"))
	d.Set("Subtype", pdfval.Name("Image"))
	d.Set("Width", pdfval.Int(width))
	d.Set("Height", pdfval.Int(height))
	d.Set("BitsPerComponent", pdfval.Int(bitDepth))
	d.Set("ColorSpace", cs)
	d.Set("Filter", pdfval.Name("FlateDecode"))
	decodeParms := pdfval.NewDict()
	decodeParms.Set("Predictor", pdfval.Int(15))
	decodeParms.Set("Colors", pdfval.Int(colorVal))
	decodeParms.Set("Columns", pdfval.Int(width))
	decodeParms.Set("BitsPerComponent", pdfval.Int(bitDepth))
	d.Set("DecodeParms", decodeParms)
	if maskValue != nil {
		d.Set("Mask", maskValue)
	}

	if smaskData != nil {
		smaskDict := pdfval.NewDict()
		smaskDict.Set("Type", pdfval.Name("XObject"))
		smaskDict.Set("Subtype", pdfval.Name("Image"))
		smaskDict.Set("Width", pdfval.Int(width))
		smaskDict.Set("Height", pdfval.Int(height))
		smaskDict.Set("BitsPerComponent", pdfval.Int(8))
		smaskDict.Set("ColorSpace", pdfval.Name("DeviceGray"))
		smaskDict.Set("Filter", pdfval.Name("FlateDecode"))
		smaskParms := pdfval.NewDict()
		smaskParms.Set("Predictor", pdfval.Int(15))
		smaskParms.Set("Colors", pdfval.Int(1))
		smaskParms.Set("Columns", pdfval.Int(width))
		smaskDict.Set("DecodeParms", smaskParms)
		smaskRef := ctx.Register(pdfval.Stream{Dict: smaskDict, Content: zlibCompress(smaskData)})
		d.Set("SMask", smaskRef)
	}

	stream := pdfval.Stream{Dict: d, Content: colorData}
	ctx.Assign(ref, stream)
	return nil
}

// splitAlpha separates an interleaved gray+alpha (colorType 4) or
// RGB+alpha (colorType 6) IDAT payload into a color-only buffer and an
// alpha-only buffer, both still uncompressed, preserving the leading
// scanline-filter byte in both so each half stays a valid Predictor-15
// input once re-flated.
func splitAlpha(idat []byte, width, height int, colorType byte) (colorOut, alphaOut []byte, err error) {
	raw, err := zlibDecompress(idat)
	if err != nil {
		return nil, nil, err
	}
	var color, alpha bytes.Buffer
	if colorType == 4 {
		rowLen := 1 + 2*width
		for row := 0; row < height; row++ {
			pos := rowLen * row
			if pos+rowLen > len(raw) {
				return nil, nil, fmt.Errorf("truncated gray+alpha scanline data")
			}
			color.WriteByte(raw[pos])
			alpha.WriteByte(raw[pos])
			base := pos + 1
			for x := 0; x < width; x++ {
				color.WriteByte(raw[base])
				alpha.WriteByte(raw[base+1])
				base += 2
			}
		}
	} else {
		rowLen := 1 + 4*width
		for row := 0; row < height; row++ {
			pos := rowLen * row
			if pos+rowLen > len(raw) {
				return nil, nil, fmt.Errorf("truncated RGBA scanline data")
			}
			color.WriteByte(raw[pos])
			alpha.WriteByte(raw[pos])
			base := pos + 1
			for x := 0; x < width; x++ {
				color.Write(raw[base : base+3])
				alpha.WriteByte(raw[base+3])
				base += 4
			}
		}
	}
	return color.Bytes(), alpha.Bytes(), nil
}
