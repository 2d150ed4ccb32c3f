package pdfpage

import "github.com/jlmessenger/pdf-lib/pdfval"

// NewLeaf builds a bare /Page dict with the given media box, ready to
// be Register()ed and Insert()ed. width/height are in PDF points; the
// caller still owns setting /Resources, /Contents and friends.
func NewLeaf(width, height float64) pdfval.Dict {
	d := pdfval.NewDict()
	d.Set("Type", pdfval.Name("Page"))
	d.Set("MediaBox", pdfval.Array{pdfval.Real(0), pdfval.Real(0), pdfval.Real(width), pdfval.Real(height)})
	return d
}
