package pdfparse

import (
	"bytes"
	"fmt"

	"github.com/jlmessenger/pdf-lib/pdflog"
	"github.com/jlmessenger/pdf-lib/pdfval"
)

// streamHeader is what's known about a stream object immediately
// after its dictionary and the "stream" keyword have been consumed.
type streamHeader struct {
	number, generation int
	dict               pdfval.Dict
	contentOffset      int64 // absolute offset of the first content byte
}

// parseStreamHeaderAt parses "n g obj <<dict>> stream" starting at
// offset and returns the header, positioned right after the keyword.
func (r *reader) parseStreamHeaderAt(offset int64) (streamHeader, error) {
	var out streamHeader
	t := r.tokenizerAt(offset)

	number, generation, err := ParseObjectHeader(t)
	if err != nil {
		return out, newErr(offset, BadObjectHeader, err)
	}

	p := NewObjectParserFromTokenizer(t)
	obj, err := p.ParseValue()
	if err != nil {
		return out, newErr(offset, BadObjectHeader, err)
	}
	dict, ok := obj.(pdfval.Dict)
	if !ok {
		return out, newErr(offset, BadObjectHeader, fmt.Errorf("stream object is not a dictionary"))
	}

	kw, err := t.NextToken()
	if err != nil || !kw.IsOther("stream") {
		return out, newErr(offset, BadObjectHeader, fmt.Errorf("expected \"stream\" keyword"))
	}

	out.number, out.generation = number, generation
	out.dict = dict
	out.contentOffset = offset + int64(t.StreamPosition())
	return out, nil
}

// extractRawContent returns the still-filtered bytes of a stream
// object given its dict and content offset, resolving /Length (which
// may itself be an indirect reference) against resolve, falling back
// to an "endstream" scan when the declared length is missing or
// clearly wrong.
func (r *reader) extractRawContent(dict pdfval.Dict, contentOffset int64, resolve func(pdfval.Value) pdfval.Value) ([]byte, error) {
	lengthVal := resolve(dict.Get("Length"))
	length, ok := pdfval.AsNumber(lengthVal)

	if !ok || int(length) < 0 || contentOffset+int64(length) > int64(len(r.data)) {
		pdflog.Parse.Printf("stream at %d: bad /Length, scanning for endstream", contentOffset)
		return r.scanForEndstream(contentOffset)
	}

	end := contentOffset + int64(length)

	// "endstream" should follow shortly; some writers insert an extra
	// EOL first. If it's nowhere nearby the declared length has
	// drifted (a common real-world PDF defect), so fall back to a
	// scan instead of trusting it.
	lookahead := r.data[end:min64(end+32, int64(len(r.data)))]
	if !bytes.Contains(lookahead, []byte("endstream")) {
		if scanned, err := r.scanForEndstream(contentOffset); err == nil {
			return scanned, nil
		}
	}
	return r.data[contentOffset:end], nil
}

func (r *reader) scanForEndstream(offset int64) ([]byte, error) {
	if offset < 0 || offset > int64(len(r.data)) {
		return nil, newErr(offset, BadStreamLength, fmt.Errorf("stream offset out of range"))
	}
	idx := bytes.Index(r.data[offset:], []byte("endstream"))
	if idx == -1 {
		return nil, newErr(offset, BadStreamLength, fmt.Errorf("missing endstream marker"))
	}
	content := r.data[offset : offset+int64(idx)]
	content = bytes.TrimRight(content, "\r\n")
	return content, nil
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// identity resolves nothing; used where /Length must already be a
// direct integer (xref streams, whose dict entries are required to
// be direct per 7.5.8.2).
func identity(v pdfval.Value) pdfval.Value { return v }
