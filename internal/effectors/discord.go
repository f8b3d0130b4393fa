package effectors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/vthunder/parley/internal/logging"
)

const (
	// DefaultMaxRetryDuration bounds how long one message is retried
	DefaultMaxRetryDuration = 30 * time.Second

	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 5 * time.Second

	// Discord rejects messages longer than this
	maxMessageLen = 2000
)

// DiscordEffector posts bot text to one channel
type DiscordEffector struct {
	send             func(channelID, content string) error
	channelID        string
	maxRetryDuration time.Duration
	initialBackoff   time.Duration
}

// NewDiscordEffector shares the session with the sense
func NewDiscordEffector(session *discordgo.Session, channelID string) *DiscordEffector {
	return newDiscordEffector(func(channelID, content string) error {
		_, err := session.ChannelMessageSend(channelID, content)
		return err
	}, channelID)
}

func newDiscordEffector(send func(channelID, content string) error, channelID string) *DiscordEffector {
	return &DiscordEffector{
		send:             send,
		channelID:        channelID,
		maxRetryDuration: DefaultMaxRetryDuration,
		initialBackoff:   initialBackoff,
	}
}

// Emit sends text, split into Discord-sized chunks. Server errors and
// network failures are retried with backoff; 4xx responses are not.
func (e *DiscordEffector) Emit(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	for _, chunk := range splitMessage(text, maxMessageLen) {
		if err := e.sendWithRetry(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (e *DiscordEffector) sendWithRetry(ctx context.Context, content string) error {
	start := time.Now()
	backoff := e.initialBackoff
	for attempt := 1; ; attempt++ {
		err := e.send(e.channelID, content)
		if err == nil {
			return nil
		}
		if isNonRetryableError(err) {
			return fmt.Errorf("discord send: %w", err)
		}
		if time.Since(start)+backoff > e.maxRetryDuration {
			return fmt.Errorf("discord send: giving up after %d attempts: %w", attempt, err)
		}
		logging.Info("discord-effector", "send failed (attempt %d), retrying in %s: %v", attempt, backoff, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

// isNonRetryableError reports client errors that a retry cannot fix
func isNonRetryableError(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Response == nil {
		return false
	}
	code := restErr.Response.StatusCode
	return code >= 400 && code < 500
}

// splitMessage cuts text into pieces of at most limit runes, preferring
// to break after a newline or space
func splitMessage(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}
	var chunks []string
	for len(runes) > limit {
		cut := limit
		for i := limit - 1; i > limit/2; i-- {
			if runes[i] == '\n' || runes[i] == ' ' {
				cut = i + 1
				break
			}
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}
