package pdfwrite

import "github.com/jlmessenger/pdf-lib/pdfctx"

// Write serializes ctx as a complete PDF file, choosing classical or
// object-stream mode per opts.UseObjectStreams, matching spec section
// 4.7's two writer modes sharing a common object-number-ordered walk.
func Write(ctx *pdfctx.Context, opts Options) ([]byte, error) {
	if opts.ObjectsPerTick <= 0 {
		opts.ObjectsPerTick = DefaultOptions().ObjectsPerTick
	}
	if opts.UseObjectStreams {
		return writeObjectStreams(ctx, opts)
	}
	return writeClassical(ctx, opts)
}
