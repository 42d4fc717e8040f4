// Command llamazip is a CLI front end for the llamazip package: compress or
// decompress a string, a file on stdin, or run an interactive prompt. The
// concrete language-model runtime is outside this project's scope (spec.md
// §1), so this binary drives the package's reference oracle
// (model/refmodel) rather than loading real model weights — everything
// downstream of the Oracle/Tokenizer boundary behaves exactly as it would
// against a real model binding.
package main

import (
	"bufio"
	"context"
	"encoding/base64"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/ChristopherOosthuizen/llama-zip"
	"github.com/ChristopherOosthuizen/llama-zip/model/refmodel"
)

func main() {
	var (
		compress    bool
		decompress  bool
		interactive bool
		format      string
		overlapArg  string
		nCtx        int
		verbose     bool
	)
	flag.BoolVar(&compress, "c", false, "compress argument string (or stdin if no argument is provided)")
	flag.BoolVar(&decompress, "d", false, "decompress argument string (or stdin if no argument is provided)")
	flag.BoolVar(&interactive, "i", false, "show a prompt for interactive compression and decompression")
	flag.StringVar(&format, "f", "", "format of compressed data: binary or base64 (default: binary, except for interactive mode, which only supports base64)")
	flag.StringVar(&overlapArg, "w", "0%", "how much model context (as a token count or a percentage of model context length) to maintain after filling the window")
	flag.IntVar(&nCtx, "n-ctx", 512, "model context length used by the reference oracle")
	flag.BoolVar(&verbose, "v", false, "enable verbose output during compression/decompression")
	flag.Parse()

	modeCount := 0
	for _, b := range []bool{compress, decompress, interactive} {
		if b {
			modeCount++
		}
	}
	if modeCount != 1 {
		fmt.Fprintln(os.Stderr, "exactly one of -c, -d, -i is required")
		flag.Usage()
		os.Exit(2)
	}

	if format == "" {
		format = "binary"
		if interactive {
			format = "base64"
		}
	} else if interactive && format != "base64" {
		log.Fatal("interactive mode only supports base64 compressed data")
	}

	oracle := refmodel.New(nCtx)
	windowOverlap, err := parseWindowOverlap(overlapArg, oracle.MaxContextLength())
	if err != nil {
		log.Fatalf("%+v", err)
	}

	c, err := llamazip.New(oracle, refmodel.Tokenizer{}, windowOverlap)
	if err != nil {
		log.Fatalf("%+v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		cancel()
	}()

	switch {
	case compress:
		if err := runCompress(ctx, c, format, verbose); err != nil {
			log.Fatalf("%+v", err)
		}
	case decompress:
		if err := runDecompress(ctx, c, format, verbose); err != nil {
			log.Fatalf("%+v", err)
		}
	case interactive:
		runInteractive(ctx, c, verbose)
	}
}

// parseWindowOverlap accepts either a raw token count (possibly negative,
// meaning "this many tokens short of maxContext") or a percentage of
// maxContext-1, mirroring the reference implementation's -w flag (spec.md
// §11 supplemented feature).
func parseWindowOverlap(arg string, maxContext int) (int, error) {
	if strings.HasSuffix(arg, "%") {
		percent, err := strconv.ParseFloat(strings.TrimSuffix(arg, "%"), 64)
		if err != nil {
			return 0, errors.Errorf("window overlap must be an integer (number of tokens) or a percentage: %q", arg)
		}
		if percent < 0 || percent > 100 {
			return 0, errors.Errorf("window overlap percentage must be in [0%%, 100%%], got %q", arg)
		}
		return int(percent / 100 * float64(maxContext-1)), nil
	}
	overlap, err := strconv.Atoi(arg)
	if err != nil {
		return 0, errors.Errorf("window overlap must be an integer (number of tokens) or a percentage: %q", arg)
	}
	if overlap < 0 {
		overlap += maxContext
	}
	if overlap < 0 || overlap >= maxContext {
		return 0, errors.Errorf("window overlap must be in the range [%d, %d]", -maxContext, maxContext-1)
	}
	return overlap, nil
}

func readArgOrStdin(args []string) ([]byte, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		return data, errors.WithStack(err)
	}
	return []byte(strings.Join(args, " ")), nil
}

func runCompress(ctx context.Context, c *llamazip.Compressor, format string, verbose bool) error {
	data, err := readArgOrStdin(flag.Args())
	if err != nil {
		return err
	}
	compressed, err := c.Compress(ctx, data)
	if err != nil {
		return errors.WithStack(err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "compressed %d bytes to %d bytes\n", len(data), len(compressed))
	}
	if format == "base64" {
		compressed = []byte(base64.StdEncoding.EncodeToString(compressed))
	}
	_, err = os.Stdout.Write(compressed)
	return errors.WithStack(err)
}

func runDecompress(ctx context.Context, c *llamazip.Compressor, format string, verbose bool) error {
	args := flag.Args()
	var data []byte
	var err error
	if len(args) == 0 {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data = []byte(args[0])
	}
	if err != nil {
		return errors.WithStack(err)
	}
	if format == "base64" {
		data, err = llamazip.RobustB64Decode(string(data))
		if err != nil {
			return errors.WithStack(err)
		}
	}
	decompressed, err := c.Decompress(ctx, data)
	if err != nil {
		return errors.WithStack(err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "decompressed %d bytes to %d bytes\n", len(data), len(decompressed))
	}
	_, err = os.Stdout.Write(decompressed)
	return errors.WithStack(err)
}

// runInteractive implements the "≥≥≥ " prompt loop (spec.md §11): each
// line is decompressed if it looks like base64, otherwise compressed and
// printed as base64.
func runInteractive(ctx context.Context, c *llamazip.Compressor, verbose bool) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(os.Stderr, "≥≥≥ ")
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()

		if looksLikeBase64(line) {
			compressed, err := llamazip.RobustB64Decode(line)
			if err != nil {
				log.Printf("%+v", err)
				continue
			}
			decompressed, err := c.Decompress(ctx, compressed)
			if err != nil {
				log.Printf("%+v", err)
				continue
			}
			os.Stdout.Write(decompressed)
		} else {
			compressed, err := c.Compress(ctx, []byte(line))
			if err != nil {
				log.Printf("%+v", err)
				continue
			}
			fmt.Println(base64.StdEncoding.EncodeToString(compressed))
		}
		fmt.Fprintln(os.Stderr)
	}
}

// looksLikeBase64 reports whether every byte of line is in the standard
// base64-with-padding alphabet, the same heuristic the reference
// implementation uses to decide whether a REPL line is compressed data or
// plain text to compress.
func looksLikeBase64(line string) bool {
	if line == "" {
		return false
	}
	for i := 0; i < len(line); i++ {
		if !isBase64OrPadByte(line[i]) {
			return false
		}
	}
	return true
}

func isBase64OrPadByte(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z', b >= '0' && b <= '9':
		return true
	case b == '+' || b == '/' || b == '=':
		return true
	}
	return false
}
