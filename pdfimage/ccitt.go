package pdfimage

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/image/ccitt"

	"github.com/jlmessenger/pdf-lib/pdfval"
)

// DecodeCCITT decodes a CCITTFaxDecode-filtered stream's raw content
// into packed 1-bit-per-pixel rows (MSB first, each row byte-aligned),
// reading /Columns, /Rows, /K and /BlackIs1 out of parms the way a
// stream's own /DecodeParms dict carries them. Matches spec section
// 6's "CCITTFaxDecode (images, read-only)": this module only ever
// decodes a CCITT-filtered image for inspection, never re-encodes one.
func DecodeCCITT(parms pdfval.Dict, data []byte) ([]byte, error) {
	columns, rows, k, blackIs1 := ccittParams(parms)

	mode := ccitt.Group3
	if k < 0 {
		mode = ccitt.Group4
	}
	r := ccitt.NewReader(bytes.NewReader(data), ccitt.MSB, mode, columns, rows, &ccitt.Options{Invert: !blackIs1})
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("pdfimage: decoding CCITTFaxDecode stream: %w", err)
	}
	return out, nil
}

// ccittParams applies the PDF standard's defaults for a
// CCITTFaxDecode filter's parameters (7.4.6, Table 11): /Columns
// defaults to 1728, /K to 0 (pure Group 3 1-D), /BlackIs1 to false.
// /Rows has no PDF-level default; 0 here tells the decoder to trust
// EndOfBlock instead, matching the teacher's own hand-rolled decoder's
// "zero height means not known in advance" convention.
func ccittParams(parms pdfval.Dict) (columns, rows, k int, blackIs1 bool) {
	columns = 1728
	if v, ok := pdfval.AsNumber(parms.Get("Columns")); ok {
		columns = int(v)
	}
	if v, ok := pdfval.AsNumber(parms.Get("Rows")); ok {
		rows = int(v)
	}
	if v, ok := pdfval.AsNumber(parms.Get("K")); ok {
		k = int(v)
	}
	if b, ok := parms.Get("BlackIs1").(pdfval.Bool); ok {
		blackIs1 = bool(b)
	}
	return
}
