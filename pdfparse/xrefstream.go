package pdfparse

import (
	"fmt"

	"github.com/jlmessenger/pdf-lib/pdfval"
)

// xrefStreamShape is the decoded /W, /Index, /Size of a cross-reference
// stream dictionary, per 7.5.8.2.
type xrefStreamShape struct {
	w     [3]int
	index [][2]int
}

func (s xrefStreamShape) entrySize() int { return s.w[0] + s.w[1] + s.w[2] }

func (s xrefStreamShape) count() int {
	n := 0
	for _, sub := range s.index {
		n += sub[1]
	}
	return n
}

func parseXrefStreamShape(d pdfval.Dict) (xrefStreamShape, error) {
	var out xrefStreamShape

	w, ok := d.Get("W").(pdfval.Array)
	if !ok || len(w) < 3 {
		return out, fmt.Errorf("pdfparse: xref stream missing valid /W")
	}
	for i := 0; i < 3; i++ {
		n, ok := pdfval.AsNumber(w[i])
		if !ok || n < 0 {
			return out, fmt.Errorf("pdfparse: xref stream /W entry %d invalid", i)
		}
		out.w[i] = int(n)
	}

	if arr, ok := d.Get("Index").(pdfval.Array); ok && len(arr) > 0 {
		if len(arr)%2 != 0 {
			return out, fmt.Errorf("pdfparse: xref stream /Index has odd length")
		}
		for i := 0; i+1 < len(arr); i += 2 {
			start, ok1 := pdfval.AsNumber(arr[i])
			count, ok2 := pdfval.AsNumber(arr[i+1])
			if !ok1 || !ok2 {
				return out, fmt.Errorf("pdfparse: xref stream /Index entries must be integers")
			}
			out.index = append(out.index, [2]int{int(start), int(count)})
		}
	} else {
		size, _ := pdfval.AsNumber(d.Get("Size"))
		out.index = [][2]int{{0, int(size)}}
	}

	return out, nil
}

func bufToUint(buf []byte) uint64 {
	var v uint64
	for _, b := range buf {
		v = v<<8 | uint64(b)
	}
	return v
}

// parseXrefStream parses the cross-reference stream object at offset,
// folds its entries into r.xref, absorbs its dict as a trailer, and
// returns the /Prev offset.
func (r *reader) parseXrefStream(offset int64) (int64, error) {
	hdr, err := r.parseStreamHeaderAt(offset)
	if err != nil {
		return 0, err
	}

	shape, err := parseXrefStreamShape(hdr.dict)
	if err != nil {
		return 0, newErr(offset, BadXref, err)
	}

	filters, err := ParseFilters(hdr.dict.Get("Filter"), hdr.dict.Get("DecodeParms"), identity)
	if err != nil {
		return 0, newErr(offset, UnsupportedFilter, err)
	}

	raw, err := r.extractRawContent(hdr.dict, hdr.contentOffset, identity)
	if err != nil {
		return 0, err
	}
	decoded, err := DecodePipeline(filters, raw)
	if err != nil {
		return 0, newErr(offset, UnsupportedFilter, err)
	}

	if err := r.foldXrefStreamEntries(decoded, shape); err != nil {
		return 0, newErr(offset, BadXref, err)
	}

	prevOffset, err := r.absorbTrailer(hdr.dict)
	if err != nil {
		return 0, err
	}

	r.xref.setIfAbsent(uint32(hdr.number), xrefEntry{offset: offset, generation: uint16(hdr.generation)})

	return prevOffset, nil
}

func (r *reader) foldXrefStreamEntries(buf []byte, shape xrefStreamShape) error {
	entrySize, count := shape.entrySize(), shape.count()
	needed := entrySize * count
	if len(buf) < needed {
		return fmt.Errorf("corrupt xref stream: have %d bytes, need %d", len(buf), needed)
	}
	buf = buf[:needed]

	w0, w1, w2 := shape.w[0], shape.w[1], shape.w[2]
	j := 0
	for _, sub := range shape.index {
		first, n := sub[0], sub[1]
		for i := 0; i < n; i++ {
			number := uint32(first + i)
			base := j * entrySize
			typeField := 1
			if w0 > 0 {
				typeField = int(bufToUint(buf[base : base+w0]))
			}
			f2 := bufToUint(buf[base+w0 : base+w0+w1])
			f3 := bufToUint(buf[base+w0+w1 : base+w0+w1+w2])

			var entry xrefEntry
			switch typeField {
			case 0:
				entry = xrefEntry{free: true, offset: int64(f2), generation: uint16(f3)}
			case 1:
				entry = xrefEntry{offset: int64(f2), generation: uint16(f3)}
			case 2:
				entry = xrefEntry{compressed: true, streamNumber: uint32(f2), streamIndex: int(f3)}
			default:
				return fmt.Errorf("unsupported xref stream entry type %d", typeField)
			}
			r.xref.setIfAbsent(number, entry)
			j++
		}
	}
	return nil
}
