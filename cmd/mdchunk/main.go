package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"learnify-go/internal/chunking"
	"learnify-go/internal/diagram"
	"learnify-go/internal/streaming"
)

const usage = "usage: mdchunk chunks|stream|repair [-n N] [file]"

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fail(err)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	mode := strings.ToLower(args[0])

	fs := flag.NewFlagSet("mdchunk "+mode, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	n := fs.Int("n", 15, "target chunk count")
	format := fs.String("format", "ndjson", "stream framing: ndjson | sse")
	level := fs.String("level", "targeted", "repair level: targeted | aggressive")
	errMsg := fs.String("error", "", "renderer error message guiding the aggressive pass")
	markdown := fs.Bool("markdown", false, "repair every mermaid fence of a markdown document")
	timeout := fs.Duration("timeout", 30*time.Second, "stream timeout")
	if err := fs.Parse(args[1:]); err != nil {
		return fmt.Errorf("%s: %w", usage, err)
	}
	if *n < 1 {
		return fmt.Errorf("-n must be at least 1, got %d", *n)
	}

	text, err := readInput(fs.Arg(0), stdin)
	if err != nil {
		return err
	}

	switch mode {
	case "chunks":
		return runChunks(stdout, text, *n)
	case "stream":
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		defer cancel()
		return runStream(ctx, stdout, text, *n, streaming.Format(strings.ToLower(*format)))
	case "repair":
		return runRepair(stdout, text, *level, *errMsg, *markdown)
	default:
		return fmt.Errorf("unknown mode %q (expected chunks|stream|repair)", mode)
	}
}

func readInput(path string, stdin io.Reader) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// runChunks prints one JSON string per chunk so whitespace stays visible.
func runChunks(w io.Writer, text string, n int) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, chunk := range chunking.SplitMarkdown(text, n) {
		if err := enc.Encode(chunk); err != nil {
			return fmt.Errorf("write chunk: %w", err)
		}
	}
	return nil
}

func runStream(ctx context.Context, w io.Writer, text string, n int, format streaming.Format) error {
	if format != streaming.FormatNDJSON && format != streaming.FormatSSE {
		return fmt.Errorf("unknown format %q (expected ndjson|sse)", format)
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	em := streaming.NewEmitter(streaming.EmitterConfig{
		TargetChunks: n,
		Delay:        streaming.NoDelay{},
	})
	_, err := streaming.Write(ctx, w, nil, format, em.Stream(ctx, text))
	return err
}

func runRepair(w io.Writer, text, levelName, errMsg string, markdown bool) error {
	var out string
	if markdown {
		out = diagram.RepairMarkdown(text)
	} else {
		level, err := diagram.ParseLevel(levelName)
		if err != nil {
			return err
		}
		out = diagram.Repair(text, level, errMsg)
	}
	_, err := io.WriteString(w, out)
	return err
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
