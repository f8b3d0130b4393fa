// Package senses provides the conversation inputs: a line-oriented
// terminal and a Discord channel.
package senses

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

type line struct {
	text string
	err  error
}

// Terminal reads one utterance per line and writes prompts without a
// trailing newline
type Terminal struct {
	scanner *bufio.Scanner
	out     io.Writer
	style   func(string) string

	readOnce sync.Once
	lines    chan line
}

// NewTerminal reads from r and shows prompts on w
func NewTerminal(r io.Reader, w io.Writer) *Terminal {
	return &Terminal{
		scanner: bufio.NewScanner(r),
		out:     w,
		lines:   make(chan line),
	}
}

// SetStyle renders prompts through style
func (t *Terminal) SetStyle(style func(string) string) {
	t.style = style
}

// read feeds lines to Prompt until the reader is exhausted. A blocked
// read cannot be interrupted, so it runs apart from Prompt.
func (t *Terminal) read() {
	defer close(t.lines)
	for t.scanner.Scan() {
		t.lines <- line{text: strings.TrimRight(t.scanner.Text(), "\r")}
	}
	if err := t.scanner.Err(); err != nil {
		t.lines <- line{err: fmt.Errorf("read line: %w", err)}
	}
}

// Prompt shows the prompt and blocks for the next line or until ctx is
// done. It returns io.EOF once the reader is exhausted. A line that
// arrives after cancellation is kept for the next Prompt.
func (t *Terminal) Prompt(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if prompt != "" {
		if t.style != nil {
			prompt = t.style(prompt)
		}
		if _, err := fmt.Fprint(t.out, prompt); err != nil {
			return "", fmt.Errorf("write prompt: %w", err)
		}
	}
	t.readOnce.Do(func() { go t.read() })

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l, ok := <-t.lines:
		if !ok {
			return "", io.EOF
		}
		return l.text, l.err
	}
}
