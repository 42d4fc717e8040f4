// Package llamazip drives an arithmetic coder with the next-token
// probabilities of a causal language model to losslessly compress and
// decompress arbitrary byte sequences. The model is an external
// collaborator, supplied by the caller through the model.Oracle and
// model.Tokenizer interfaces; this package owns only the coder, the
// byte↔text codec, and the context-window orchestration between them.
package llamazip

import (
	"bytes"
	"context"
	"strings"

	"github.com/mewkiz/pkg/errutil"
	"github.com/pkg/errors"

	"github.com/ChristopherOosthuizen/llama-zip/arith"
	"github.com/ChristopherOosthuizen/llama-zip/cdf"
	"github.com/ChristopherOosthuizen/llama-zip/internal/bitstream"
	"github.com/ChristopherOosthuizen/llama-zip/model"
	"github.com/ChristopherOosthuizen/llama-zip/textcodec"
)

// Compressor couples a model oracle and tokenizer with a fixed
// window-overlap policy. One Compressor may be reused for any number of
// independent Compress/Decompress calls; it holds no per-call state.
type Compressor struct {
	oracle        model.Oracle
	tokenizer     model.Tokenizer
	windowOverlap int
	endTokenID    int32
	addsSpace     bool
}

// New constructs a Compressor. windowOverlap is the number of trailing
// tokens retained from the previous context when a fresh model window is
// formed (spec.md §4.5); it must satisfy 0 <= windowOverlap <
// oracle.MaxContextLength(). Returns a *model.ConfigurationError if the
// oracle declares neither an EOS nor a SEP token, or if windowOverlap is
// out of range.
func New(oracle model.Oracle, tokenizer model.Tokenizer, windowOverlap int) (*Compressor, error) {
	endTokenID, err := model.EndTokenID(oracle)
	if err != nil {
		return nil, err
	}
	maxContext := oracle.MaxContextLength()
	if windowOverlap < 0 || windowOverlap >= maxContext {
		return nil, &model.ConfigurationError{
			Reason: errors.Errorf("window_overlap %d outside [0, %d)", windowOverlap, maxContext).Error(),
		}
	}
	return &Compressor{
		oracle:        oracle,
		tokenizer:     tokenizer,
		windowOverlap: windowOverlap,
		endTokenID:    endTokenID,
		addsSpace:     model.AddsSpacePrefix(tokenizer),
	}, nil
}

// windowFor builds the model input for the token at position i of a
// growing-or-fixed token sequence tokens, per the shared window-overlap and
// max-context-truncation rule that both Compress and Decompress must apply
// identically to preserve the symmetry invariant (spec.md §4.5).
func (c *Compressor) windowFor(tokens []int32, upto int) []int32 {
	start := upto - c.windowOverlap
	if start < 0 {
		start = 0
	}
	window := make([]int32, 0, 1+(upto-start))
	window = append(window, c.oracle.BOSTokenID())
	window = append(window, tokens[start:upto]...)

	maxContext := c.oracle.MaxContextLength()
	if len(window) > maxContext {
		window = window[len(window)-maxContext:]
	}
	return window
}

// Compress encodes data into a headerless, MSB-first packed bitstream
// (spec.md §4.5, §6). ctx is polled between coding steps; on cancellation
// the driver forces the remaining input to end early at the next EOS,
// producing a well-formed, self-terminating truncated artifact rather than
// propagating the cancellation as an error (spec.md §4.5 Interrupt
// policy, §5).
func (c *Compressor) Compress(ctx context.Context, data []byte) ([]byte, error) {
	text := textcodec.ToText(data)
	tokens := append(c.tokenizer.Encode(text), c.endTokenID)

	var buf bytes.Buffer
	bw := bitstream.NewWriter(&buf)
	enc := arith.NewEncoder(bw)
	// The oracle never sees the cancellation, so the forced EOS can still be
	// encoded after ctx is done.
	oracleCtx := context.WithoutCancel(ctx)

	for i := 0; i < len(tokens); i++ {
		if ctx.Err() != nil {
			tokens = tokens[:i]
			tokens = append(tokens, c.endTokenID)
		}

		window := c.windowFor(tokens, i)
		logits, err := c.oracle.Logits(oracleCtx, window)
		if err != nil {
			return nil, &model.ModelError{Err: err}
		}
		cumFreqs, err := cdf.BuildFromLogits(logits)
		if err != nil {
			return nil, &model.ModelError{Err: err}
		}
		if err := enc.Encode(cumFreqs, int(tokens[i])); err != nil {
			return nil, errutil.Err(err)
		}
		if tokens[i] == c.endTokenID {
			break
		}
	}

	if err := enc.Finish(); err != nil {
		return nil, errutil.Err(err)
	}
	return buf.Bytes(), nil
}

// Decompress is the mirror of Compress: it reads tokens from compressed
// until the end token is decoded, detokenizing and unescaping each one as
// it arrives. ctx is polled between coding steps; on cancellation,
// Decompress stops and returns the bytes reconstructed so far along with
// ctx.Err() (spec.md §5: "cancellation discards partial output" — callers
// that want the partial bytes anyway may still inspect the returned slice,
// but must treat a non-nil error as failure).
func (c *Compressor) Decompress(ctx context.Context, compressed []byte) ([]byte, error) {
	br := bitstream.NewReader(bytes.NewReader(compressed))
	dec := arith.NewDecoder(br)

	var tokens []int32
	var out bytes.Buffer
	first := true

	for {
		if err := ctx.Err(); err != nil {
			return out.Bytes(), err
		}

		window := c.windowFor(tokens, len(tokens))
		logits, err := c.oracle.Logits(ctx, window)
		if err != nil {
			return out.Bytes(), &model.ModelError{Err: err}
		}
		cumFreqs, err := cdf.BuildFromLogits(logits)
		if err != nil {
			return out.Bytes(), &model.ModelError{Err: err}
		}
		token, err := dec.Decode(cumFreqs)
		if err != nil {
			return out.Bytes(), errutil.Err(err)
		}

		if int32(token) == c.endTokenID {
			break
		}
		tokens = append(tokens, int32(token))

		piece := c.tokenizer.Decode([]int32{int32(token)})
		if first {
			first = false
			if c.addsSpace {
				piece = strings.TrimPrefix(piece, " ")
			}
		}
		out.Write(textcodec.FromText(piece))
	}

	return out.Bytes(), nil
}
