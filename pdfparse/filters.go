package pdfparse

import (
	"bytes"
	"compress/zlib"
	"encoding/ascii85"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/hhrutter/lzw"
	"github.com/jlmessenger/pdf-lib/pdfval"
)

// Filter names recognized in a /Filter entry, mirroring the PDF spec's
// standard filter table.
const (
	FlateDecode     = pdfval.Name("FlateDecode")
	ASCIIHexDecode  = pdfval.Name("ASCIIHexDecode")
	ASCII85Decode   = pdfval.Name("ASCII85Decode")
	LZWDecode       = pdfval.Name("LZWDecode")
	RunLengthDecode = pdfval.Name("RunLengthDecode")
	DCTDecode       = pdfval.Name("DCTDecode")
	CCITTFaxDecode  = pdfval.Name("CCITTFaxDecode")
	JBIG2Decode     = pdfval.Name("JBIG2Decode")
)

// Filter is one stage of a stream's filter pipeline.
type Filter struct {
	Name  pdfval.Name
	Parms pdfval.Dict
}

// ParseFilters normalizes a stream dict's /Filter and /DecodeParms
// entries (each either a single value or a parallel array) into an
// ordered pipeline, resolving indirect references through resolve.
func ParseFilters(filterVal, parmsVal pdfval.Value, resolve func(pdfval.Value) pdfval.Value) ([]Filter, error) {
	filterVal = resolve(filterVal)
	if pdfval.IsNull(filterVal) {
		return nil, nil
	}

	var names []pdfval.Name
	switch v := filterVal.(type) {
	case pdfval.Name:
		names = []pdfval.Name{v}
	case pdfval.Array:
		for _, e := range v {
			n, ok := resolve(e).(pdfval.Name)
			if !ok {
				return nil, fmt.Errorf("pdfparse: /Filter array element is not a name")
			}
			names = append(names, n)
		}
	default:
		return nil, fmt.Errorf("pdfparse: unexpected /Filter value %T", filterVal)
	}

	parmsVal = resolve(parmsVal)
	var parms []pdfval.Dict
	switch v := parmsVal.(type) {
	case pdfval.Dict:
		parms = []pdfval.Dict{v}
	case pdfval.Array:
		for _, e := range v {
			d, _ := resolve(e).(pdfval.Dict)
			parms = append(parms, d)
		}
	}

	out := make([]Filter, len(names))
	for i, n := range names {
		out[i].Name = n
		if i < len(parms) {
			out[i].Parms = parms[i]
		}
	}
	return out, nil
}

// imagePassthrough is the set of filters whose decoded form is not a
// generic byte pipeline stage: the Stream's raw content stays
// filtered, and the image embedders interpret it directly.
func imagePassthrough(name pdfval.Name) bool {
	switch name {
	case DCTDecode, CCITTFaxDecode, JBIG2Decode:
		return true
	}
	return false
}

// DecodePipeline runs data through every stage of filters in order,
// used only for the internal contents of object streams and
// cross-reference streams, never for a generic Stream value (whose
// Content stays filtered per the value model's invariants).
func DecodePipeline(filters []Filter, data []byte) ([]byte, error) {
	for _, f := range filters {
		if imagePassthrough(f.Name) {
			return nil, fmt.Errorf("pdfparse: filter %s not supported in this context", f.Name)
		}
		r, err := decodeOne(f, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		data, err = io.ReadAll(r)
		if err != nil {
			return nil, err
		}
	}
	return data, nil
}

func decodeOne(f Filter, src io.Reader) (io.Reader, error) {
	switch f.Name {
	case FlateDecode:
		zr, err := zlib.NewReader(src)
		if err != nil {
			return nil, err
		}
		return applyPredictor(f.Parms, zr)
	case ASCIIHexDecode:
		return decodeASCIIHex(src)
	case ASCII85Decode:
		b, err := io.ReadAll(src)
		if err != nil {
			return nil, err
		}
		b = bytes.TrimSuffix(bytes.TrimSpace(b), []byte("~>"))
		return ascii85.NewDecoder(bytes.NewReader(b)), nil
	case LZWDecode:
		early := true
		if v, ok := intParm(f.Parms, "EarlyChange"); ok {
			early = v != 0
		}
		return lzw.NewReader(src, early), nil
	case RunLengthDecode:
		b, err := io.ReadAll(src)
		if err != nil {
			return nil, err
		}
		out, err := decodeRunLength(b)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(out), nil
	default:
		return nil, fmt.Errorf("pdfparse: unsupported filter: %s", f.Name)
	}
}

func intParm(d pdfval.Dict, key pdfval.Name) (int, bool) {
	v, ok := pdfval.AsNumber(d.Get(key))
	return int(v), ok
}

// decodeASCIIHex decodes up to the '>' end-of-data marker, ignoring
// whitespace and padding a trailing odd nibble with 0, per 7.4.2.
func decodeASCIIHex(src io.Reader) (io.Reader, error) {
	raw, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	var clean []byte
	for _, c := range raw {
		if c == '>' {
			break
		}
		if isHexDigit(c) {
			clean = append(clean, c)
		}
	}
	if len(clean)%2 == 1 {
		clean = append(clean, '0')
	}
	out := make([]byte, hex.DecodedLen(len(clean)))
	n, err := hex.Decode(out, clean)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(out[:n]), nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// decodeRunLength implements the PackBits-style RunLengthDecode
// algorithm (7.4.5): no ecosystem library exposes this, so it is
// hand-rolled from the filter's two-line algebraic definition.
func decodeRunLength(src []byte) ([]byte, error) {
	var out bytes.Buffer
	for i := 0; i < len(src); {
		length := src[i]
		i++
		switch {
		case length == 128:
			return out.Bytes(), nil
		case length < 128:
			n := int(length) + 1
			if i+n > len(src) {
				return nil, fmt.Errorf("pdfparse: RunLengthDecode: truncated literal run")
			}
			out.Write(src[i : i+n])
			i += n
		default:
			if i >= len(src) {
				return nil, fmt.Errorf("pdfparse: RunLengthDecode: truncated repeat run")
			}
			n := 257 - int(length)
			for j := 0; j < n; j++ {
				out.WriteByte(src[i])
			}
			i++
		}
	}
	return nil, fmt.Errorf("pdfparse: RunLengthDecode: missing EOD marker")
}
