// Package refmodel provides a small, deterministic Oracle and Tokenizer
// usable in place of a real LLM runtime, which spec.md §1 places outside
// this module's scope. It exists so the compressor's driver, window-overlap
// logic, and symmetry invariant can be exercised by tests without a network
// call or a multi-gigabyte model file.
//
// The tokenizer is byte-level (via textcodec, so any byte sequence round
// trips), and the oracle is an order-1 adaptive frequency table: the
// probability of the next token is estimated from how often it followed
// the current last token earlier in the same context. This is a real,
// if weak, language model — not a stub — so it exercises the coder with a
// genuinely skewed, context-dependent distribution instead of a uniform
// one.
package refmodel

import (
	"context"
	"fmt"
	"math"

	"github.com/ChristopherOosthuizen/llama-zip/model"
	"github.com/ChristopherOosthuizen/llama-zip/textcodec"
)

const (
	// BOSID and EOSID sit just past the 256 byte-valued token ids.
	BOSID = int32(256)
	EOSID = int32(257)

	vocabSize = 258
)

// Oracle is a stateless, order-1 adaptive frequency model over the
// byte-token alphabet. The same tokenIDs prefix always yields the same
// logits, satisfying the determinism the compressor's symmetry invariant
// requires (spec.md §4.5, §6).
type Oracle struct {
	maxContext int
}

// New returns an Oracle with the given maximum context length in tokens.
func New(maxContext int) *Oracle {
	return &Oracle{maxContext: maxContext}
}

func (o *Oracle) VocabSize() int          { return vocabSize }
func (o *Oracle) BOSTokenID() int32       { return BOSID }
func (o *Oracle) MaxContextLength() int   { return o.maxContext }
func (o *Oracle) EOSTokenID() (int32, bool) { return EOSID, true }
func (o *Oracle) SepTokenID() (int32, bool) { return 0, false }

// Logits implements model.Oracle. It counts, within tokenIDs itself, how
// often each symbol followed the final token, Laplace-smooths the counts,
// and returns their logarithms as logits (cdf.BuildFromLogits re-applies
// softmax, recovering the original smoothed distribution).
func (o *Oracle) Logits(ctx context.Context, tokenIDs []int32) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(tokenIDs) == 0 {
		return nil, fmt.Errorf("refmodel: empty context")
	}

	last := tokenIDs[len(tokenIDs)-1]
	counts := make([]float64, vocabSize)
	for i := range counts {
		counts[i] = 1 // Laplace smoothing: every symbol stays codeable.
	}
	for i := 0; i+1 < len(tokenIDs); i++ {
		if tokenIDs[i] == last {
			counts[tokenIDs[i+1]]++
		}
	}

	logits := make([]float64, vocabSize)
	for i, c := range counts {
		logits[i] = math.Log(c)
	}
	return logits, nil
}

// Tokenizer is a byte-level tokenizer: one token per raw byte, routed
// through textcodec so every byte sequence, valid UTF-8 or not, round
// trips exactly.
type Tokenizer struct{}

func (Tokenizer) Encode(text string) []int32 {
	data := textcodec.FromText(text)
	ids := make([]int32, len(data))
	for i, b := range data {
		ids[i] = int32(b)
	}
	return ids
}

func (Tokenizer) Decode(tokenIDs []int32) string {
	data := make([]byte, 0, len(tokenIDs))
	for _, id := range tokenIDs {
		if id >= 0 && id < 256 {
			data = append(data, byte(id))
		}
	}
	return textcodec.ToText(data)
}

var _ model.Oracle = (*Oracle)(nil)
var _ model.Tokenizer = Tokenizer{}
