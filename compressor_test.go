package llamazip

import (
	"bytes"
	"context"
	"testing"

	"github.com/ChristopherOosthuizen/llama-zip/model/refmodel"
)

func newTestCompressor(t *testing.T, windowOverlap int) *Compressor {
	t.Helper()
	oracle := refmodel.New(64)
	var tok refmodel.Tokenizer
	c, err := New(oracle, tok, windowOverlap)
	if err != nil {
		t.Fatalf("New: unexpected error: %v", err)
	}
	return c
}

// TestRoundTripConcreteScenarios exercises spec.md §8's concrete scenarios
// 1-3 against the in-repo reference oracle.
func TestRoundTripConcreteScenarios(t *testing.T) {
	golden := [][]byte{
		[]byte(""),
		[]byte("The quick brown fox jumps over the lazy dog."),
		allBytes(),
	}
	c := newTestCompressor(t, 8)
	ctx := context.Background()
	for _, data := range golden {
		compressed, err := c.Compress(ctx, data)
		if err != nil {
			t.Errorf("data len %d: Compress: %v", len(data), err)
			continue
		}
		got, err := c.Decompress(ctx, compressed)
		if err != nil {
			t.Errorf("data len %d: Decompress: %v", len(data), err)
			continue
		}
		if !bytes.Equal(got, data) {
			t.Errorf("round-trip mismatch: expected % X, got % X", data, got)
		}
	}
}

func allBytes() []byte {
	b := make([]byte, 256)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

// TestRoundTripSingleBytes checks every single-byte value round-trips.
func TestRoundTripSingleBytes(t *testing.T) {
	c := newTestCompressor(t, 4)
	ctx := context.Background()
	for b := 0; b < 256; b++ {
		data := []byte{byte(b)}
		compressed, err := c.Compress(ctx, data)
		if err != nil {
			t.Errorf("byte 0x%02X: Compress: %v", b, err)
			continue
		}
		got, err := c.Decompress(ctx, compressed)
		if err != nil {
			t.Errorf("byte 0x%02X: Decompress: %v", b, err)
			continue
		}
		if !bytes.Equal(got, data) {
			t.Errorf("byte 0x%02X: round-trip mismatch, got % X", b, got)
		}
	}
}

// TestRoundTripPUACollision exercises spec.md §8 scenario 4.
func TestRoundTripPUACollision(t *testing.T) {
	data := append([]byte{0xEE, 0x81, 0x82}, 0x42) // UTF-8 of U+E042, then raw 0x42
	c := newTestCompressor(t, 8)
	ctx := context.Background()
	compressed, err := c.Compress(ctx, data)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	got, err := c.Decompress(ctx, compressed)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("round-trip mismatch: expected % X, got % X", data, got)
	}
}

// TestRoundTripInvalidUTF8 exercises spec.md §8's invalid-UTF-8 requirement.
func TestRoundTripInvalidUTF8(t *testing.T) {
	golden := [][]byte{
		{0x80, 0x81, 0x82},
		{'h', 'i', 0xFF, 0xFE, 'h', 'i'},
	}
	c := newTestCompressor(t, 8)
	ctx := context.Background()
	for _, data := range golden {
		compressed, err := c.Compress(ctx, data)
		if err != nil {
			t.Errorf("data=% X: Compress: %v", data, err)
			continue
		}
		got, err := c.Decompress(ctx, compressed)
		if err != nil {
			t.Errorf("data=% X: Decompress: %v", data, err)
			continue
		}
		if !bytes.Equal(got, data) {
			t.Errorf("data=% X: round-trip mismatch, got % X", data, got)
		}
	}
}

// TestRoundTripSpansContextWindow feeds input many times longer than the
// reference oracle's small max-context, so the window-overlap rule slides
// the model window forward at almost every step.
func TestRoundTripSpansContextWindow(t *testing.T) {
	oracle := refmodel.New(16)
	var tok refmodel.Tokenizer
	c, err := New(oracle, tok, 4)
	if err != nil {
		t.Fatalf("New: unexpected error: %v", err)
	}
	data := bytes.Repeat([]byte("abcdefgh "), 20)
	ctx := context.Background()
	compressed, err := c.Compress(ctx, data)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	got, err := c.Decompress(ctx, compressed)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("round-trip mismatch over %d bytes", len(data))
	}
}

// TestDifferentWindowOverlapsBothDecodeCorrectly exercises spec.md §8
// scenario 5: compressed bytes may differ across window_overlap values but
// both must decompress to the original input (each compressor is used for
// both its own compress and decompress, since the overlap is a shared
// parameter both sides must agree on).
func TestDifferentWindowOverlapsBothDecodeCorrectly(t *testing.T) {
	data := []byte("repeat repeat repeat repeat repeat")
	ctx := context.Background()
	var compressedNoOverlap, compressedOverlap []byte

	c0 := newTestCompressor(t, 0)
	var err error
	compressedNoOverlap, err = c0.Compress(ctx, data)
	if err != nil {
		t.Fatalf("Compress (overlap 0): %v", err)
	}

	c8 := newTestCompressor(t, 8)
	compressedOverlap, err = c8.Compress(ctx, data)
	if err != nil {
		t.Fatalf("Compress (overlap 8): %v", err)
	}

	got0, err := c0.Decompress(ctx, compressedNoOverlap)
	if err != nil {
		t.Fatalf("Decompress (overlap 0): %v", err)
	}
	if !bytes.Equal(got0, data) {
		t.Fatalf("overlap 0: round-trip mismatch, got % X", got0)
	}

	got8, err := c8.Decompress(ctx, compressedOverlap)
	if err != nil {
		t.Fatalf("Decompress (overlap 8): %v", err)
	}
	if !bytes.Equal(got8, data) {
		t.Fatalf("overlap 8: round-trip mismatch, got % X", got8)
	}
}

// TestCancellationDuringCompressProducesWellFormedArtifact exercises
// spec.md §4.5's Interrupt policy: a context cancelled before compression
// starts must still yield a self-terminating (EOS-only) artifact that
// decompresses to the empty string, never a hang or a decode error.
func TestCancellationDuringCompressProducesWellFormedArtifact(t *testing.T) {
	c := newTestCompressor(t, 4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	compressed, err := c.Compress(ctx, []byte("this will be cut short"))
	if err != nil {
		t.Fatalf("Compress: unexpected error: %v", err)
	}

	decompressCtx := context.Background()
	got, err := c.Decompress(decompressCtx, compressed)
	if err != nil {
		t.Fatalf("Decompress: unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty output for immediately-cancelled compress, got % X", got)
	}
}

// TestNewRejectsOutOfRangeWindowOverlap checks the ConfigurationError path.
func TestNewRejectsOutOfRangeWindowOverlap(t *testing.T) {
	oracle := refmodel.New(16)
	var tok refmodel.Tokenizer
	if _, err := New(oracle, tok, 16); err == nil {
		t.Errorf("expected error for window_overlap == max_context")
	}
	if _, err := New(oracle, tok, -1); err == nil {
		t.Errorf("expected error for negative window_overlap")
	}
}
