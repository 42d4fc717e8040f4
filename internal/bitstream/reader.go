package bitstream

import (
	"io"

	"github.com/icza/bitio"
)

// Reader reads single bits MSB-first from an underlying io.Reader. Reads
// past end-of-stream yield the bit 0 rather than an error, so that a
// decoder primed from a Reader can keep shifting in bits after the
// bitstream's final byte has been consumed; this is what lets the encoder's
// single terminator bit (see arith.Encoder.Finish) suffice.
type Reader struct {
	br *bitio.Reader
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bitio.NewReader(r)}
}

// ReadBit returns the next bit, or 0 once the underlying reader is
// exhausted.
func (r *Reader) ReadBit() uint64 {
	bit, err := r.br.ReadBits(1)
	if err != nil {
		return 0
	}
	return bit
}
