package arith

import (
	"fmt"
	"math/bits"
	"sort"

	"github.com/ChristopherOosthuizen/llama-zip/internal/bitstream"
)

// DecodeError reports that the CDF upper-bound search failed to find a
// symbol, which is impossible given a well-formed CDF (every entry floored
// to at least 1, per spec.md §3) and an uncorrupted bitstream produced by
// the same model. Observing it indicates a corrupted or mismatched-model
// bitstream.
type DecodeError struct {
	Value uint64
	Total uint64
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("arith: no symbol found for value %d (total %d); corrupted bitstream", e.Value, e.Total)
}

// Decoder reconstructs the symbol sequence an Encoder produced, one symbol
// at a time, given the same sequence of cumulative-frequency vectors.
type Decoder struct {
	coder
	br   *bitstream.Reader
	code uint64
}

// NewDecoder returns a Decoder primed from the first 64 bits read from br.
func NewDecoder(br *bitstream.Reader) *Decoder {
	d := &Decoder{coder: newCoder(), br: br}
	for i := 0; i < 64; i++ {
		d.code = (d.code << 1) | br.ReadBit()
	}
	return d
}

// Decode returns the next symbol encoded against cumFreqs, and narrows the
// coder's range state to match the Encoder's state after encoding it.
//
// It is a strict upper-bound search: the returned symbol is the smallest s
// with cumFreqs[s] > value, so ties among repeated cumulative values (from
// zero-frequency entries in a hand-built CDF; cdf.Build floors every
// frequency to 1 and never produces them) resolve deterministically to the
// first such symbol.
func (d *Decoder) Decode(cumFreqs []uint64) (int, error) {
	total := cumFreqs[len(cumFreqs)-1]
	// offsetWidth and rangeWidth are both one less than the true (possibly
	// 2^64, unrepresentable) offset/range; see scaledOffset.
	offsetWidth := d.code - d.low
	rangeWidth := d.high - d.low
	value := scaledOffset(offsetWidth, total, rangeWidth)

	symbol := sort.Search(len(cumFreqs), func(i int) bool {
		return cumFreqs[i] > value
	})
	if symbol == len(cumFreqs) {
		return 0, &DecodeError{Value: value, Total: total}
	}

	d.update(d, cumFreqs, symbol)
	return symbol, nil
}

// scaledOffset returns floor((offset*total - 1) / range), the source's
// `((code - low + 1) * total - 1) // range`, where offset = offsetWidth+1 =
// code-low+1 and range = rangeWidth+1 = high-low+1. Both offset and range
// can legitimately equal 2^64 (when code == high, respectively when low=0
// and high=MaxUint64), so they are never formed as standalone uint64s:
// offsetWidth and rangeWidth (each exactly representable, being one less)
// stand in, and the "+1" is folded into the surrounding arithmetic instead.
//
// offset*total is built as a 128-bit value via offsetWidth*total + total (a
// 128-bit add). The final division by range is the one place a 2^64 divisor
// would otherwise reach bits.Div64: when rangeWidth == MaxUint64, dividing by
// 2^64 is just taking the high limb, so that case is short-circuited rather
// than passed to Div64.
func scaledOffset(offsetWidth, total, rangeWidth uint64) uint64 {
	hi, lo := bits.Mul64(total, offsetWidth)
	lo, carry := bits.Add64(lo, total, 0)
	hi += carry

	if lo == 0 {
		hi--
	}
	lo--

	if rangeWidth == ^uint64(0) {
		return hi
	}
	q, _ := bits.Div64(hi, lo, rangeWidth+1)
	return q
}

// onShift feeds one freshly read bit into the low end of code.
func (d *Decoder) onShift() {
	d.code = (d.code << 1) | d.br.ReadBit()
}

// onUnderflow rewrites the next-to-top bit of code, mirroring the
// coder-state rewrite applied to low/high during E3 renormalization.
func (d *Decoder) onUnderflow() {
	d.code = (d.code & half) | ((d.code << 1) & (^uint64(0) >> 1)) | d.br.ReadBit()
}
