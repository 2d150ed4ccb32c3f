package pdfparse

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jlmessenger/pdf-lib/pdfval"
)

// decodeObjectStream parses and caches the N objects carried by the
// object stream hosted at object number streamNumber.
func (r *reader) decodeObjectStream(streamNumber uint32, resolve func(pdfval.Value) pdfval.Value) ([]pdfval.Value, error) {
	if objs, ok := r.objStreams[streamNumber]; ok {
		return objs, nil
	}

	entry, ok := r.xref[streamNumber]
	if !ok || entry.compressed {
		return nil, fmt.Errorf("pdfparse: object stream %d has no direct xref entry", streamNumber)
	}

	hdr, err := r.parseStreamHeaderAt(entry.offset)
	if err != nil {
		return nil, err
	}

	filters, err := ParseFilters(hdr.dict.Get("Filter"), hdr.dict.Get("DecodeParms"), resolve)
	if err != nil {
		return nil, err
	}

	raw, err := r.extractRawContent(hdr.dict, hdr.contentOffset, resolve)
	if err != nil {
		return nil, err
	}
	decoded, err := DecodePipeline(filters, raw)
	if err != nil {
		return nil, err
	}

	n, ok := pdfval.AsNumber(resolve(hdr.dict.Get("N")))
	if !ok {
		return nil, fmt.Errorf("pdfparse: object stream %d missing /N", streamNumber)
	}
	first, ok := pdfval.AsNumber(resolve(hdr.dict.Get("First")))
	if !ok || int(first) > len(decoded) {
		return nil, fmt.Errorf("pdfparse: object stream %d has invalid /First", streamNumber)
	}

	prelude := decoded[:int(first)]
	fields := bytes.Fields(bytes.ReplaceAll(prelude, []byte{0}, []byte{' '}))
	if len(fields)%2 != 0 {
		return nil, fmt.Errorf("pdfparse: object stream %d prelude has odd field count", streamNumber)
	}

	count := int(n)
	if len(fields)/2 < count {
		count = len(fields) / 2
	}
	offsets := make([]int, count)
	for i := 0; i < count; i++ {
		off, err := strconv.Atoi(string(fields[2*i+1]))
		if err != nil {
			return nil, fmt.Errorf("pdfparse: object stream %d prelude offset %d invalid", streamNumber, i)
		}
		offsets[i] = off + int(first)
		if offsets[i] > len(decoded) {
			return nil, fmt.Errorf("pdfparse: object stream %d offset out of range", streamNumber)
		}
	}

	objects := make([]pdfval.Value, count)
	for i := range objects {
		start, end := offsets[i], len(decoded)
		if i+1 < len(offsets) {
			end = offsets[i+1]
		}
		p := NewObjectParser(decoded[start:end])
		v, err := p.ParseValue()
		if err != nil {
			return nil, fmt.Errorf("pdfparse: object stream %d object %d: %w", streamNumber, i, err)
		}
		objects[i] = v
	}

	r.objStreams[streamNumber] = objects
	return objects, nil
}
