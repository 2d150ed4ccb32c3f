package pdfdoc

import (
	"encoding/base64"

	"github.com/jlmessenger/pdf-lib/pdfwrite"
)

// SaveOptions controls Document.Save, per spec section 6's option
// table. Zero value is not valid on its own; use DefaultSaveOptions.
type SaveOptions struct {
	UseObjectStreams bool
	AddDefaultPage   bool
	ObjectsPerTick   int
}

func DefaultSaveOptions() SaveOptions {
	return SaveOptions{UseObjectStreams: true, AddDefaultPage: true, ObjectsPerTick: 50}
}

// Save flushes any pending embedders and serializes the document to
// PDF bytes. If opts.AddDefaultPage is set and the document currently
// has no pages, a blank A4 page is added first, so the file a reader
// opens is never empty.
func (d *Document) Save(opts SaveOptions) ([]byte, error) {
	if opts.AddDefaultPage && d.GetPageCount() == 0 {
		if _, err := d.AddPage(); err != nil {
			return nil, err
		}
	}
	if err := d.Flush(); err != nil {
		return nil, err
	}
	return pdfwrite.Write(d.ctx, pdfwrite.Options{
		UseObjectStreams: opts.UseObjectStreams,
		ObjectsPerTick:   opts.ObjectsPerTick,
	})
}

// SaveAsBase64Options extends SaveOptions with the data-URI framing
// described by spec section 6.
type SaveAsBase64Options struct {
	SaveOptions
	DataURI bool
}

func DefaultSaveAsBase64Options() SaveAsBase64Options {
	return SaveAsBase64Options{SaveOptions: DefaultSaveOptions()}
}

// SaveAsBase64 does what Save does, then base64-encodes the result,
// optionally prepending a "data:application/pdf;base64," prefix.
func (d *Document) SaveAsBase64(opts SaveAsBase64Options) (string, error) {
	data, err := d.Save(opts.SaveOptions)
	if err != nil {
		return "", err
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	if opts.DataURI {
		return "data:application/pdf;base64," + encoded, nil
	}
	return encoded, nil
}
