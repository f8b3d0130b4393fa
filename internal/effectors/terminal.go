// Package effectors provides the conversation outputs: a terminal and a
// Discord channel.
package effectors

import (
	"context"
	"fmt"
	"io"
)

// Terminal writes each line of bot text to w
type Terminal struct {
	w     io.Writer
	style func(string) string
}

// NewTerminal creates a terminal output
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

// SetStyle renders every line through style, e.g. BotStyle
func (t *Terminal) SetStyle(style func(string) string) {
	t.style = style
}

// Emit writes text followed by a newline
func (t *Terminal) Emit(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.style != nil {
		text = t.style(text)
	}
	_, err := fmt.Fprintln(t.w, text)
	return err
}
