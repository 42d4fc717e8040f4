// Package arith implements the bit-exact 64-bit arithmetic coder that
// drives llama-zip's compressed bitstream. Encoder and Decoder share a
// single update routine (see coder.update); the source's
// ArithmeticCoderBase/Encoder/Decoder inheritance has no natural analogue in
// Go, so the shared routine is instead parameterized by a hooks value
// supplying the two points (onShift, onUnderflow) where encoding and
// decoding diverge.
package arith

import "math/bits"

const (
	// half is 2^63, the midpoint of the 64-bit state space.
	half = uint64(1) << 63
	// quarter is 2^62.
	quarter = uint64(1) << 62
)

// hooks is implemented by Encoder and Decoder to supply the bit-level side
// effects of renormalization: emitting bits (encoder) or consuming them
// (decoder).
type hooks interface {
	onShift()
	onUnderflow()
}

// coder holds the 64-bit range state shared by Encoder and Decoder.
type coder struct {
	low, high uint64
}

func newCoder() coder {
	return coder{low: 0, high: ^uint64(0)}
}

// EncodingInvariantError reports that the coder's range state became
// inverted (low > high), which spec.md §7 treats as an assertion failure
// rather than a recoverable error: it can only happen from a bug in this
// package.
type EncodingInvariantError struct {
	Low, High uint64
}

func (e *EncodingInvariantError) Error() string {
	return "arith: invariant violated, low > high after update"
}

// update narrows [low, high] to the sub-interval cumFreqs assigns to symbol,
// then renormalizes, calling h.onShift/h.onUnderflow once per bit the
// renormalization consumes or produces.
//
// cumFreqs[i] is the cumulative frequency through symbol i inclusive, with
// cumFreqs[-1] implicitly 0 and cumFreqs[len(cumFreqs)-1] the (necessarily
// positive) total.
func (c *coder) update(h hooks, cumFreqs []uint64, symbol int) {
	total := cumFreqs[len(cumFreqs)-1]
	// width = range-1; range itself (high-low+1) overflows to 0 in exactly
	// one legitimate state (low=0, high=MaxUint64, the initial full range),
	// so it is never materialized as its own uint64.
	width := c.high - c.low

	var symLow uint64
	if symbol > 0 {
		symLow = cumFreqs[symbol-1]
	}
	symHigh := cumFreqs[symbol]

	newHigh := c.low + mulDivFloorRange(symHigh, width, total) - 1
	newLow := c.low + mulDivFloorRange(symLow, width, total)
	c.low, c.high = newLow, newHigh

	if c.low > c.high {
		panic(&EncodingInvariantError{Low: c.low, High: c.high})
	}

	// E1/E2: the interval lies entirely within the lower or upper half.
	for (c.low^c.high)&half == 0 {
		h.onShift()
		c.low = c.low << 1
		c.high = (c.high << 1) | 1
	}

	// E3: the interval straddles the midpoint but is confined to the middle
	// half (low's top two bits are 01, high's are 10).
	for c.low&^c.high&quarter != 0 {
		h.onUnderflow()
		c.low = (c.low << 1) ^ half
		c.high = ((c.high ^ half) << 1) | half | 1
	}
}

// mulDivFloorRange returns floor(a*(width+1)/total), i.e. a cumulative
// frequency scaled by the coder's [low, high] range and floor-divided by the
// CDF total. range = width+1 is folded in as a 128-bit add (a*width + a)
// rather than ever formed as a standalone uint64, since width+1 overflows to
// 0 exactly when width == MaxUint64 (range == 2^64).
//
// a (a cumulative frequency) is always <= total, so hi <= total; the one
// case where hi == total is a == total exactly (the last symbol claims the
// whole range), for which the quotient is range itself -- range mod 2^64,
// via plain uint64 wraparound, is exactly what low + quotient - 1 needs to
// land back on high. Every other case has hi < total, satisfying
// bits.Div64's precondition.
func mulDivFloorRange(a, width, total uint64) uint64 {
	hi, lo := bits.Mul64(a, width)
	lo, carry := bits.Add64(lo, a, 0)
	hi += carry
	if hi == total {
		return width + 1
	}
	q, _ := bits.Div64(hi, lo, total)
	return q
}
