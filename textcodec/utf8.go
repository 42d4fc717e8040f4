// Package textcodec implements the byte↔text escape that lets arbitrary,
// possibly non-UTF-8 byte sequences pass through a tokenizer that expects
// valid text. Raw bytes and valid code points in the Private-Use-Area range
// U+E000..U+E0FF are both mapped through that same range, so the mapping
// must re-escape any genuine PUA code point it encounters to keep it
// distinguishable from an escaped raw byte (spec.md §4.4).
package textcodec

import (
	"strings"
	"unicode/utf8"
)

const (
	// puaStart is the first Private-Use-Area code point used as an escape
	// alias; puaStart+b aliases raw byte b for b in 0x00..0xFF.
	puaStart rune = 0xE000
	puaEnd   rune = puaStart + 0xFF
)

func safeGet(data []byte, i int) byte {
	if i < len(data) {
		return data[i]
	}
	return 0
}

// nextChunk scans data for the longest valid-UTF-8 prefix, returning it as
// valid, the invalid byte run immediately following it as invalid (which
// the caller must escape byte-by-byte), and the remainder of data still to
// be scanned as rest. It implements the same validation DFA as
// unicode/utf8, broken out explicitly (rather than calling
// utf8.DecodeRune in a loop) so that an invalid run is recognized as
// exactly the bytes a conforming UTF-8 decoder would reject before
// resynchronizing — mirroring Rust's str::Utf8Chunks, which the reference
// implementation this package is ported from is itself modeled on.
func nextChunk(data []byte) (valid, invalid, rest []byte) {
	i := 0
	validUpTo := 0
scan:
	for i < len(data) {
		b := data[i]
		i++
		switch {
		case b < 0x80:
			// ASCII.
		case b >= 0xC2 && b <= 0xDF:
			if safeGet(data, i)&0xC0 != 0x80 {
				break scan
			}
			i++
		case b >= 0xE0 && b <= 0xEF:
			next := safeGet(data, i)
			switch {
			case b == 0xE0 && next >= 0xA0 && next <= 0xBF:
			case b >= 0xE1 && b <= 0xEC && next >= 0x80 && next <= 0xBF:
			case b == 0xED && next >= 0x80 && next <= 0x9F: // excludes surrogates
			case b >= 0xEE && b <= 0xEF && next >= 0x80 && next <= 0xBF:
			default:
				break scan
			}
			i++
			if safeGet(data, i)&0xC0 != 0x80 {
				break scan
			}
			i++
		case b >= 0xF0 && b <= 0xF4:
			next := safeGet(data, i)
			switch {
			case b == 0xF0 && next >= 0x90 && next <= 0xBF:
			case b >= 0xF1 && b <= 0xF3 && next >= 0x80 && next <= 0xBF:
			case b == 0xF4 && next >= 0x80 && next <= 0x8F:
			default:
				break scan
			}
			i++
			if safeGet(data, i)&0xC0 != 0x80 {
				break scan
			}
			i++
			if safeGet(data, i)&0xC0 != 0x80 {
				break scan
			}
			i++
		default:
			break scan
		}
		validUpTo = i
	}
	return data[:validUpTo], data[validUpTo:i], data[i:]
}

// ToText maps an arbitrary byte sequence to valid UTF-8 text: valid UTF-8
// runs pass through unchanged except that code points already in
// U+E000..U+E0FF are re-escaped byte-by-byte, and every byte of an invalid
// run is escaped as puaStart+b. ToText(data) is always valid UTF-8, and
// FromText(ToText(data)) == data for any data.
func ToText(data []byte) string {
	var sb strings.Builder
	var buf [utf8.UTFMax]byte
	for len(data) > 0 {
		valid, invalid, rest := nextChunk(data)
		for _, r := range string(valid) {
			if r >= puaStart && r <= puaEnd {
				n := utf8.EncodeRune(buf[:], r)
				for _, b := range buf[:n] {
					sb.WriteRune(puaStart + rune(b))
				}
				continue
			}
			sb.WriteRune(r)
		}
		for _, b := range invalid {
			sb.WriteRune(puaStart + rune(b))
		}
		data = rest
	}
	return sb.String()
}

// FromText reverses ToText: each code point in U+E000..U+E0FF becomes the
// single raw byte it aliases, and every other code point is re-encoded as
// UTF-8.
func FromText(text string) []byte {
	out := make([]byte, 0, len(text))
	var buf [utf8.UTFMax]byte
	for _, r := range text {
		if r >= puaStart && r <= puaEnd {
			out = append(out, byte(r-puaStart))
			continue
		}
		n := utf8.EncodeRune(buf[:], r)
		out = append(out, buf[:n]...)
	}
	return out
}
