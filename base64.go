package llamazip

import "encoding/base64"

// RobustB64Decode decodes s as standard base64 after first discarding any
// byte outside the standard alphabet and padding the result with 'A'
// characters to a multiple of 4 (spec.md §6 "Base64 framing"). This
// tolerates whitespace, line wrapping, or missing padding in a human-pasted
// artifact (spec.md §8 scenario 6). encoding/base64 is the standard
// library's fixed implementation of an external, unchanging format, not a
// domain concern this module owns (see DESIGN.md).
func RobustB64Decode(s string) ([]byte, error) {
	filtered := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if isBase64Char(s[i]) {
			filtered = append(filtered, s[i])
		}
	}
	if rem := len(filtered) % 4; rem != 0 {
		for i := rem; i < 4; i++ {
			filtered = append(filtered, 'A')
		}
	}
	return base64.StdEncoding.DecodeString(string(filtered))
}

// isBase64Char reports membership in the 64-character standard alphabet,
// deliberately excluding '=': robust_b64decode discards any padding
// present in the input and recomputes it itself, rather than trying to
// validate where the caller placed it.
func isBase64Char(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z':
		return true
	case b >= 'a' && b <= 'z':
		return true
	case b >= '0' && b <= '9':
		return true
	case b == '+' || b == '/':
		return true
	}
	return false
}

// isBase64OrPadChar is the wider alphabet (including '=') used to probe
// whether a line of REPL input is plausibly base64 rather than raw text to
// compress (spec.md §11 supplemented interactive mode).
func isBase64OrPadChar(b byte) bool {
	return isBase64Char(b) || b == '='
}
