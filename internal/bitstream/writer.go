// Package bitstream provides the MSB-first bit packing and zero-padded bit
// reading primitives shared by the arithmetic coder. Both are built on top
// of github.com/icza/bitio, the way the teacher's internal/bits package adds
// FLAC-specific unary coding primitives on top of the same library.
package bitstream

import (
	"io"

	"github.com/icza/bitio"
)

// Writer packs single bits MSB-first into an underlying io.Writer. Besides
// single-bit writes it offers WriteFlood, which writes a long run of
// identical bits in chunks of up to 64 bits per underlying call instead of
// one bitio call per bit — the arithmetic coder's underflow counter can
// require many thousands of repeated bits after a long E3 straddle.
type Writer struct {
	bw  *bitio.Writer
	err error
}

// NewWriter returns a Writer that packs bits into w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bitio.NewWriter(w)}
}

// WriteBit writes a single 0/1 bit. Once an error has been recorded, further
// writes are no-ops.
func (w *Writer) WriteBit(bit uint64) {
	if w.err != nil {
		return
	}
	w.err = w.bw.WriteBits(bit, 1)
}

// WriteFlood writes n copies of bit (which must be 0 or 1).
func (w *Writer) WriteFlood(bit uint64, n uint64) {
	if n == 0 || w.err != nil {
		return
	}
	pattern := uint64(0)
	if bit != 0 {
		pattern = ^uint64(0)
	}
	for n > 0 {
		chunk := uint8(64)
		if n < 64 {
			chunk = uint8(n)
		}
		if w.err = w.bw.WriteBits(pattern, chunk); w.err != nil {
			return
		}
		n -= uint64(chunk)
	}
}

// Err returns the first error recorded by WriteBit or WriteFlood, if any.
func (w *Writer) Err() error {
	return w.err
}

// Close flushes the final, possibly partially filled byte (zero-padded in
// its low bits) to the underlying writer.
func (w *Writer) Close() error {
	if w.err != nil {
		return w.err
	}
	return w.bw.Close()
}
