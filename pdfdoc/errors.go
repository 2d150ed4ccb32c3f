package pdfdoc

import "fmt"

// ErrorKind enumerates the Document-facade failures spec section 7
// names, distinct from pdfparse.Kind (malformed bytes) and pdfimage's
// decode-time errors (which surface wrapped, not re-typed).
type ErrorKind string

const (
	// EncryptedPdf: Load found /Encrypt and the caller did not opt in
	// via LoadOptions.IgnoreEncryption.
	EncryptedPdf ErrorKind = "encrypted-pdf"
	// ForeignPage: a Page owned by another Document was passed to
	// AddPage/InsertPage without going through CopyPages first.
	ForeignPage ErrorKind = "foreign-page"
	// RemovePageFromEmptyDocument: RemovePage called on a Document
	// whose page tree currently has zero leaves.
	RemovePageFromEmptyDocument ErrorKind = "remove-page-from-empty-document"
	// FontkitNotRegistered: a custom-font embed (full or subset) was
	// requested before RegisterFontkit.
	FontkitNotRegistered ErrorKind = "fontkit-not-registered"
	// InvalidInputType: an argument failed shape/range validation
	// (e.g. a bytes-bearing input that decodes to neither raw bytes,
	// base64, nor a data URI).
	InvalidInputType ErrorKind = "invalid-input-type"
)

// Error is the typed error the Document facade surfaces for the
// conditions spec section 7 enumerates. pdfparse.Error and pdfimage's
// errors are not wrapped in it: Load and Flush return them as they
// come. Err holds an underlying cause where there is one (e.g. a font
// parse failure under InvalidInputType), reachable with
// errors.Unwrap/errors.As.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("pdfdoc: %s: %s", e.Kind, e.Msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("pdfdoc: %s: %s", e.Kind, e.Err)
	}
	return fmt.Sprintf("pdfdoc: %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func wrapError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}
