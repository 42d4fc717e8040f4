// Package cdf builds the integer cumulative-frequency vectors the
// arithmetic coder consumes from a model's raw logits.
package cdf

import (
	"fmt"
	"math"
)

// Scale is the fixed-point scale factor applied to each probability before
// flooring to an integer frequency (spec.md §3: freq[s] = max(1,
// round(Scale * prob[s]))).
const Scale = 1 << 32

// BuildFromLogits converts a raw next-token logits vector into a
// cumulative-frequency vector, via a numerically stable softmax followed by
// Build. It reports an error if any logit is non-finite, which the model
// oracle contract forbids (spec.md §6, §7 ModelError) — the caller is
// expected to wrap it as a ModelError.
func BuildFromLogits(logits []float64) ([]uint64, error) {
	for _, v := range logits {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("cdf: non-finite logit %v", v)
		}
	}
	return Build(softmax(logits)), nil
}

// softmax returns a numerically stable softmax of logits.
func softmax(logits []float64) []float64 {
	maxLogit := logits[0]
	for _, v := range logits[1:] {
		if v > maxLogit {
			maxLogit = v
		}
	}
	exps := make([]float64, len(logits))
	var sum float64
	for i, v := range logits {
		e := math.Exp(v - maxLogit)
		exps[i] = e
		sum += e
	}
	for i := range exps {
		exps[i] /= sum
	}
	return exps
}

// Build turns probs, a probability distribution over the vocabulary
// (assumed to already sum to ~1, e.g. the output of a softmax), into a
// non-decreasing cumulative-frequency vector of the same length suitable
// for arith.Encoder/arith.Decoder.
//
// Every entry is floored to at least 1 so every symbol remains codeable
// even if its rounded probability underflows to 0 — without this floor a
// token the model assigns near-zero probability could never be encoded
// (spec.md §3).
func Build(probs []float64) []uint64 {
	cumFreqs := make([]uint64, len(probs))
	var total uint64
	for i, p := range probs {
		freq := uint64(math.Round(Scale * p))
		if freq < 1 {
			freq = 1
		}
		total += freq
		cumFreqs[i] = total
	}
	return cumFreqs
}
