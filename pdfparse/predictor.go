package pdfparse

import (
	"bytes"
	"fmt"
	"io"

	"github.com/jlmessenger/pdf-lib/pdfval"
)

// applyPredictor reverses the PNG or TIFF row predictor described by
// a FlateDecode stage's /DecodeParms, matching the post-processing a
// zlib-inflated stream needs before its samples are usable.
func applyPredictor(parms pdfval.Dict, r io.Reader) (io.Reader, error) {
	predictor, _ := intParm(parms, "Predictor")
	if predictor == 0 || predictor == 1 {
		return r, nil
	}

	colors, ok := intParm(parms, "Colors")
	if !ok {
		colors = 1
	}
	bpc, ok := intParm(parms, "BitsPerComponent")
	if !ok {
		bpc = 8
	}
	columns, ok := intParm(parms, "Columns")
	if !ok {
		columns = 1
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	rowSize := bpc * colors * columns / 8
	bytesPerPixel := (bpc*colors + 7) / 8

	readRowSize := rowSize
	if predictor != 2 {
		readRowSize++ // PNG rows are prefixed with a filter-type byte
	}

	cr := make([]byte, readRowSize)
	pr := make([]byte, readRowSize)
	src := bytes.NewReader(raw)

	var out []byte
	for {
		_, err := io.ReadFull(src, cr)
		if err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, err
		}
		decoded, err := predictRow(pr, cr, predictor, colors, bytesPerPixel)
		if err != nil {
			return nil, err
		}
		out = append(out, decoded...)
		pr, cr = cr, pr
	}

	if rowSize > 0 && len(out)%rowSize != 0 {
		return nil, fmt.Errorf("pdfparse: predictor postprocessing produced %d bytes, not a multiple of row size %d", len(out), rowSize)
	}
	return bytes.NewReader(out), nil
}

func predictRow(pr, cr []byte, predictor, colors, bpp int) ([]byte, error) {
	if predictor == 2 {
		return tiffHorizontalDiff(cr, colors), nil
	}

	cdat := cr[1:]
	pdat := pr[1:]
	switch cr[0] {
	case 0: // None
	case 1: // Sub
		for i := bpp; i < len(cdat); i++ {
			cdat[i] += cdat[i-bpp]
		}
	case 2: // Up
		for i, p := range pdat {
			cdat[i] += p
		}
	case 3: // Average
		for i := 0; i < bpp; i++ {
			cdat[i] += pdat[i] / 2
		}
		for i := bpp; i < len(cdat); i++ {
			cdat[i] += byte((int(cdat[i-bpp]) + int(pdat[i])) / 2)
		}
	case 4: // Paeth
		paethRow(cdat, pdat, bpp)
	default:
		return nil, fmt.Errorf("pdfparse: unknown PNG row filter byte %d", cr[0])
	}
	return cdat, nil
}

func tiffHorizontalDiff(row []byte, colors int) []byte {
	if colors <= 0 {
		return row
	}
	for i := 1; i < len(row)/colors; i++ {
		for j := 0; j < colors; j++ {
			row[i*colors+j] += row[(i-1)*colors+j]
		}
	}
	return row
}

func paethRow(cdat, pdat []byte, bpp int) {
	var a, b, c, pa, pb, pc int32
	for i := 0; i < bpp; i++ {
		a, c = 0, 0
		for j := i; j < len(cdat); j += bpp {
			b = int32(pdat[j])
			pa = abs32(b - c)
			pb = abs32(a - c)
			pc = abs32((b - c) + (a - c))
			switch {
			case pa <= pb && pa <= pc:
				// a unchanged
			case pb <= pc:
				a = b
			default:
				a = c
			}
			a += int32(cdat[j])
			a &= 0xff
			cdat[j] = byte(a)
			c = b
		}
	}
}

func abs32(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}
