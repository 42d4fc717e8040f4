package bitstream

import (
	"bytes"
	"testing"
)

func TestWriterWriteBit(t *testing.T) {
	golden := []struct {
		bits []uint64
		want []byte
	}{
		{bits: []uint64{1, 0, 1, 0, 1, 0, 1, 0}, want: []byte{0xAA}},
		{bits: []uint64{0, 0, 0, 0, 0, 0, 0, 1}, want: []byte{0x01}},
		{bits: []uint64{1}, want: []byte{0x80}},
	}
	for _, g := range golden {
		buf := new(bytes.Buffer)
		w := NewWriter(buf)
		for _, bit := range g.bits {
			w.WriteBit(bit)
		}
		if err := w.Close(); err != nil {
			t.Errorf("bits=%v: unexpected error; %v", g.bits, err)
			continue
		}
		if !bytes.Equal(buf.Bytes(), g.want) {
			t.Errorf("bits=%v: content mismatch; expected % X, got % X", g.bits, g.want, buf.Bytes())
		}
	}
}

func TestWriterWriteFlood(t *testing.T) {
	buf := new(bytes.Buffer)
	w := NewWriter(buf)
	w.WriteBit(1)
	w.WriteFlood(0, 130)
	if err := w.Close(); err != nil {
		t.Fatalf("unexpected error; %v", err)
	}
	want := append([]byte{0x80}, make([]byte, 16)...)
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("content mismatch; expected % X, got % X", want, buf.Bytes())
	}
}

func TestReaderZeroPadPastEOF(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0xC0}))
	got := make([]uint64, 10)
	for i := range got {
		got[i] = r.ReadBit()
	}
	want := []uint64{1, 1, 0, 0, 0, 0, 0, 0, 0, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("bit %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestReaderRoundTrip(t *testing.T) {
	buf := new(bytes.Buffer)
	w := NewWriter(buf)
	bits := []uint64{1, 0, 1, 1, 0, 0, 1, 0, 1, 1, 1, 0}
	for _, bit := range bits {
		w.WriteBit(bit)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("unexpected error; %v", err)
	}
	r := NewReader(buf)
	for i, want := range bits {
		if got := r.ReadBit(); got != want {
			t.Errorf("bit %d: expected %d, got %d", i, want, got)
		}
	}
}
