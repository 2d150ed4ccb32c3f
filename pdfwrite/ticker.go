package pdfwrite

import "runtime"

// Ticker implements the cooperative yielding spec section 4.7 and
// SPEC_FULL section 5 call for: every `every` objects Tick is called,
// it yields to the Go scheduler. On this single-threaded synchronous
// runtime this is a no-op in effect (SPEC_FULL section 5's note), but
// it keeps the yield point visible at the exact call sites the
// spec'd runtime model expects them, rather than silently never
// yielding.
type Ticker struct {
	every int
	count int
}

// NewTicker returns a Ticker yielding every `every` calls to Tick.
// every <= 0 disables yielding entirely.
func NewTicker(every int) *Ticker {
	return &Ticker{every: every}
}

// Tick counts one emitted object, yielding once every `every` calls.
func (t *Ticker) Tick() {
	if t.every <= 0 {
		return
	}
	t.count++
	if t.count >= t.every {
		t.count = 0
		runtime.Gosched()
	}
}
