package senses

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminal_Prompt(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(strings.NewReader("blue milk\r\nquit\n"), &out)
	ctx := context.Background()

	line, err := term.Prompt(ctx, "How can I help you? ")
	require.NoError(t, err)
	assert.Equal(t, "blue milk", line)

	line, err = term.Prompt(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "quit", line)

	_, err = term.Prompt(ctx, "Anything else? ")
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "How can I help you? Anything else? ", out.String())
}

func TestTerminal_Style(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(strings.NewReader("hi\n"), &out)
	term.SetStyle(strings.ToUpper)

	_, err := term.Prompt(context.Background(), "why? ")
	require.NoError(t, err)
	assert.Equal(t, "WHY? ", out.String())
}

func TestTerminal_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	_, err := NewTerminal(strings.NewReader("hi\n"), &out).Prompt(ctx, "? ")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String())
}

func TestTerminal_CanceledWhileBlocked(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	var out bytes.Buffer
	term := NewTerminal(pr, &out)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	done := make(chan error, 1)
	go func() {
		_, err := term.Prompt(ctx, "name? ")
		done <- err
	}()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Prompt ignored cancellation while waiting for input")
	}

	// the pending read still delivers to the next prompt
	go pw.Write([]byte("late\n"))
	got, err := term.Prompt(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "late", got)
}

func TestTerminal_ReadError(t *testing.T) {
	pr, pw := io.Pipe()
	pw.CloseWithError(errors.New("tty gone"))
	_, err := NewTerminal(pr, io.Discard).Prompt(context.Background(), "")
	assert.ErrorContains(t, err, "tty gone")
	assert.NotErrorIs(t, err, io.EOF)
}

type recordPrompter struct {
	prompts []string
	err     error
}

func (r *recordPrompter) Emit(_ context.Context, text string) error {
	if r.err != nil {
		return r.err
	}
	r.prompts = append(r.prompts, text)
	return nil
}

func message(channel, author, content string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ChannelID: channel,
		Content:   content,
		Author:    &discordgo.User{ID: author, Username: author},
	}}
}

func TestDiscordSense_Filters(t *testing.T) {
	d := newDiscordSense(DiscordConfig{ChannelID: "chan", OwnerID: "owner"})
	d.botID = "bot"
	p := &recordPrompter{}
	d.SetPrompter(p)

	d.handleMessage(nil, message("chan", "bot", "my own reply"))
	d.handleMessage(nil, message("other", "owner", "wrong channel"))
	d.handleMessage(nil, message("chan", "stranger", "not the owner"))
	d.handleMessage(nil, message("chan", "owner", ""))
	d.handleMessage(nil, message("chan", "owner", "why are you here"))

	got, err := d.Prompt(context.Background(), "Why are you here? ")
	require.NoError(t, err)
	assert.Equal(t, "why are you here", got)
	assert.Equal(t, []string{"Why are you here? "}, p.prompts)
	assert.Empty(t, d.messages)
}

func TestDiscordSense_StopEndsPrompt(t *testing.T) {
	d := newDiscordSense(DiscordConfig{ChannelID: "chan"})
	go func() {
		time.Sleep(10 * time.Millisecond)
		d.Stop()
	}()
	_, err := d.Prompt(context.Background(), "")
	assert.ErrorIs(t, err, io.EOF)
	assert.NoError(t, d.Stop(), "stop is idempotent")
}

func TestDiscordSense_ContextAndPromptErrors(t *testing.T) {
	d := newDiscordSense(DiscordConfig{ChannelID: "chan"})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := d.Prompt(ctx, "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	broken := errors.New("rate limited")
	d.SetPrompter(&recordPrompter{err: broken})
	_, err = d.Prompt(context.Background(), "hello? ")
	assert.ErrorIs(t, err, broken)
}

func TestNewDiscordSense_NeedsChannel(t *testing.T) {
	_, err := NewDiscordSense(DiscordConfig{Token: "x"})
	assert.Error(t, err)
}
