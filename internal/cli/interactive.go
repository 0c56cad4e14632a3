package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"qrgen/internal/engine/qr"
)

const (
	SourceCLI = "cli"

	DefaultSize      = "512x512"
	DefaultFormat    = "png"
	DefaultOutputDir = qr.DefaultOutputDir

	promptSize = "512"
)

var (
	ErrCancelled = errors.New("operation cancelled by user")
	ErrEmptyURL  = errors.New("url cannot be empty")
)

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	noteColor    = color.New(color.FgYellow)
)

// Generator is the pipeline behind both CLI modes.
type Generator interface {
	Generate(ctx context.Context, req qr.Request) (*qr.Result, error)
}

// Interactive asks for the URL, size, format and output folder on in, then generates the
// QR code. Every outcome is reported on out; the returned error is for callers that care.
func Interactive(ctx context.Context, in io.Reader, out io.Writer, gen Generator) (*qr.Result, error) {
	titleColor.Fprintln(out, "QR Code Generator")
	fmt.Fprintln(out, strings.Repeat("=", 50))

	p := &prompter{lines: readLines(ctx, in), ctx: ctx, out: out}

	res, err := p.run(gen)
	switch {
	case errors.Is(err, ErrCancelled):
		errorColor.Fprintln(out, "\n\nOperation cancelled by user")
	case errors.Is(err, ErrEmptyURL):
		errorColor.Fprintln(out, "URL cannot be empty!")
	case err != nil:
		errorColor.Fprintf(out, "\nError: %v\n", err)
	default:
		successColor.Fprintf(out, "\nQR code saved to: %s\n", res.Path)
	}
	return res, err
}

type prompter struct {
	lines <-chan string
	ctx   context.Context
	out   io.Writer
}

func (p *prompter) run(gen Generator) (*qr.Result, error) {
	raw, err := p.ask("Enter the URL to encode: ", "")
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, ErrEmptyURL
	}
	target := qr.NormalizeURL(raw)
	if target != raw {
		noteColor.Fprintf(p.out, "Added https:// protocol: %s\n", target)
	}

	size, err := p.ask("Enter size (e.g., '512', '512x512', or '300x400'): ", promptSize)
	if err != nil {
		return nil, err
	}
	format, err := p.ask("Enter format (png, svg, eps, pdf) [default: png]: ", DefaultFormat)
	if err != nil {
		return nil, err
	}
	dir, err := p.ask("Enter output folder [default: ./qr-codes]: ", DefaultOutputDir)
	if err != nil {
		return nil, err
	}

	return gen.Generate(p.ctx, qr.Request{
		URL:        target,
		Size:       size,
		Format:     format,
		Background: true,
		OutputDir:  dir,
		Source:     SourceCLI,
	})
}

// ask prints prompt and returns the trimmed answer, or fallback when it is blank.
func (p *prompter) ask(prompt, fallback string) (string, error) {
	fmt.Fprint(p.out, prompt)
	select {
	case <-p.ctx.Done():
		return "", ErrCancelled
	case line, ok := <-p.lines:
		if !ok {
			return "", ErrCancelled
		}
		if answer := strings.TrimSpace(line); answer != "" {
			return answer, nil
		}
		return fallback, nil
	}
}

// readLines feeds lines from in until EOF or until ctx is done.
func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}
