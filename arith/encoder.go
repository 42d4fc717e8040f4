package arith

import (
	"github.com/ChristopherOosthuizen/llama-zip/internal/bitstream"
	"github.com/mewkiz/pkg/errutil"
)

// Encoder turns a sequence of (cumulative-frequency-vector, symbol) steps
// into a byte-packed, MSB-first arithmetic-coded bitstream.
type Encoder struct {
	coder
	bw           *bitstream.Writer
	numUnderflow uint64
}

// NewEncoder returns an Encoder that packs its output into bw.
func NewEncoder(bw *bitstream.Writer) *Encoder {
	return &Encoder{coder: newCoder(), bw: bw}
}

// Encode narrows the coder's range to the interval cumFreqs assigns to
// symbol and emits any bits that are now fully determined.
//
// cumFreqs must be non-decreasing, cumFreqs[len(cumFreqs)-1] > 0, and symbol
// must be a valid index into cumFreqs.
func (e *Encoder) Encode(cumFreqs []uint64, symbol int) error {
	e.update(e, cumFreqs, symbol)
	return errutil.Err(e.bw.Err())
}

// Finish appends the single terminator bit that, together with the
// decoder's zero-padding-past-EOF behavior, resolves the final interval
// unambiguously (spec.md §4.2 Finalization).
func (e *Encoder) Finish() error {
	e.bw.WriteBit(1)
	if err := e.bw.Err(); err != nil {
		return errutil.Err(err)
	}
	return errutil.Err(e.bw.Close())
}

// onShift emits the bit now common to low and high, then flushes any bits
// deferred by preceding underflow (E3) iterations, complemented.
func (e *Encoder) onShift() {
	bit := e.low >> 63
	e.bw.WriteBit(bit)
	e.bw.WriteFlood(bit^1, e.numUnderflow)
	e.numUnderflow = 0
}

// onUnderflow defers one bit of output whose value depends on the next
// differing top bit.
func (e *Encoder) onUnderflow() {
	e.numUnderflow++
}
