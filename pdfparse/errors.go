package pdfparse

import "fmt"

// Kind enumerates the ways a byte buffer can fail to be a valid PDF,
// surfaced alongside the byte offset where detection happened.
type Kind string

const (
	MissingEOF      Kind = "missing-eof"
	BadXref         Kind = "bad-xref"
	BadObjectHeader Kind = "bad-object-header"
	BadStreamLength Kind = "bad-stream-length"
	UnsupportedFilter Kind = "unsupported-filter"
	DepthExceeded   Kind = "depth-exceeded"
)

// Error is the fatal error surfaced when parsing cannot continue.
type Error struct {
	Offset int64
	Kind   Kind
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pdfparse: %s at offset %d: %s", e.Kind, e.Offset, e.Err)
	}
	return fmt.Sprintf("pdfparse: %s at offset %d", e.Kind, e.Offset)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(offset int64, kind Kind, err error) *Error {
	return &Error{Offset: offset, Kind: kind, Err: err}
}
