package pdfwrite

import "github.com/jlmessenger/pdf-lib/pdfval"

// writeIndirectBody renders v (an object's value, not its "n g obj"
// wrapper) the way an indirect object's body must look: a stream's
// dictionary gets its /Length filled in from the actual content length
// and is followed by the literal "stream"/"endstream" body, matching
// spec section 4.7's numeric/string emission rules and pdfval.Format's
// documented contract that it never emits a stream body itself.
func writeIndirectBody(v pdfval.Value) []byte {
	stream, ok := v.(pdfval.Stream)
	if !ok {
		return []byte(pdfval.Format(v))
	}
	d := stream.Dict.Clone().(pdfval.Dict)
	d.Set("Length", pdfval.Int(len(stream.Content)))

	out := make([]byte, 0, len(stream.Content)+64)
	out = append(out, pdfval.Format(d)...)
	out = append(out, "\nstream\n"...)
	out = append(out, stream.Content...)
	out = append(out, "\nendstream"...)
	return out
}
