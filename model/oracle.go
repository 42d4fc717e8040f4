// Package model defines the boundary between llama-zip's coder/driver and
// the concrete language model runtime, which spec.md §1 treats as an
// external collaborator: an oracle with a defined interface, not something
// this module implements. The compressor depends only on Oracle and
// Tokenizer; tests exercise the driver against the reference oracle in
// model/refmodel.
package model

import (
	"context"
	"fmt"
)

// Oracle is a pure function from a token-id prefix to the next token's
// pre-softmax scores ("logits"). Implementations must be deterministic:
// identical inputs must produce bit-identical output vectors (or at
// minimum, vectors identical after cdf.Build's integer quantization),
// since the compressor and decompressor depend on this for the symmetry
// invariant (spec.md §4.5, §6, §9).
type Oracle interface {
	// Logits returns the next-token scores conditioned on tokenIDs, which
	// is never empty. len(result) == VocabSize().
	Logits(ctx context.Context, tokenIDs []int32) ([]float64, error)

	// VocabSize is the size of the symbol alphabet.
	VocabSize() int

	// BOSTokenID is prepended to every model input.
	BOSTokenID() int32

	// EOSTokenID returns the end-of-stream token id, if the tokenizer
	// declares one.
	EOSTokenID() (id int32, ok bool)

	// SepTokenID returns the separator token id, if the tokenizer declares
	// one. Used as a fallback end-of-stream marker when EOSTokenID is
	// absent (spec.md §3).
	SepTokenID() (id int32, ok bool)

	// MaxContextLength is the model's maximum input length, in tokens.
	MaxContextLength() int
}

// Tokenizer converts between text and an Oracle's token alphabet. Encode
// and Decode never add or strip special tokens or clean up whitespace; the
// compressor manages BOS/EOS placement itself (spec.md §6).
type Tokenizer interface {
	Encode(text string) []int32
	Decode(tokenIDs []int32) string
}

// ConfigurationError reports a problem detectable only once, at
// compressor construction (spec.md §7): a missing EOS/SEP token, or a
// window_overlap outside [0, max_context).
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "llamazip: configuration error: " + e.Reason
}

// ModelError wraps a failed Oracle call, or a non-finite logits vector
// (spec.md §7).
type ModelError struct {
	Err error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("llamazip: model error: %v", e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// EndTokenID returns o's EOS token id, falling back to its SEP token id,
// and a ConfigurationError if o declares neither (spec.md §3, §7).
func EndTokenID(o Oracle) (int32, error) {
	if id, ok := o.EOSTokenID(); ok {
		return id, nil
	}
	if id, ok := o.SepTokenID(); ok {
		return id, nil
	}
	return 0, &ConfigurationError{Reason: "tokenizer declares neither an EOS nor a SEP token"}
}

// AddsSpacePrefix reports whether t injects a leading-space artifact: an
// encode-then-decode round trip of a single space yields two spaces. The
// driver uses this to decide whether the first detokenized token of a
// decompression needs one leading space stripped (spec.md §4.5 step 4, §9
// Open Question; the source calls this tokenizer_adds_space_prefix).
func AddsSpacePrefix(t Tokenizer) bool {
	return t.Decode(t.Encode(" ")) == "  "
}
