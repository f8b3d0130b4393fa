package senses

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/vthunder/parley/internal/logging"
)

// Prompter shows a prompt to the user on the other end
type Prompter interface {
	Emit(ctx context.Context, text string) error
}

// DiscordSense turns messages in one channel into utterances
type DiscordSense struct {
	session   *discordgo.Session
	channelID string
	ownerID   string
	botID     string

	prompter Prompter
	messages chan string
	done     chan struct{}
	stopOnce sync.Once
}

// DiscordConfig holds Discord connection settings
type DiscordConfig struct {
	Token     string
	ChannelID string
	OwnerID   string // when set, only this user is listened to
}

// NewDiscordSense creates the session and registers the message handler.
// Call Start to connect.
func NewDiscordSense(cfg DiscordConfig) (*DiscordSense, error) {
	if cfg.ChannelID == "" {
		return nil, fmt.Errorf("discord sense needs a channel id")
	}
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	sense := newDiscordSense(cfg)
	sense.session = session
	session.AddHandler(sense.handleMessage)
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent
	return sense, nil
}

func newDiscordSense(cfg DiscordConfig) *DiscordSense {
	return &DiscordSense{
		channelID: cfg.ChannelID,
		ownerID:   cfg.OwnerID,
		messages:  make(chan string, 16),
		done:      make(chan struct{}),
	}
}

// SetPrompter routes prompts to out, usually the Discord effector sharing
// this session
func (d *DiscordSense) SetPrompter(out Prompter) {
	d.prompter = out
}

// Start connects to Discord
func (d *DiscordSense) Start() error {
	if err := d.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}
	d.botID = d.session.State.User.ID
	logging.Info("discord-sense", "Connected as %s", d.session.State.User.Username)
	return nil
}

// Stop ends any pending Prompt with io.EOF and disconnects
func (d *DiscordSense) Stop() error {
	d.stopOnce.Do(func() { close(d.done) })
	if d.session == nil {
		return nil
	}
	return d.session.Close()
}

// Session returns the underlying Discord session (for sharing with effector)
func (d *DiscordSense) Session() *discordgo.Session {
	return d.session
}

// ChannelID returns the channel the sense listens on
func (d *DiscordSense) ChannelID() string {
	return d.channelID
}

// Prompt posts the prompt and waits for the next accepted message
func (d *DiscordSense) Prompt(ctx context.Context, prompt string) (string, error) {
	if prompt != "" && d.prompter != nil {
		if err := d.prompter.Emit(ctx, prompt); err != nil {
			return "", fmt.Errorf("send prompt: %w", err)
		}
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-d.done:
		return "", io.EOF
	case msg := <-d.messages:
		return msg, nil
	}
}

func (d *DiscordSense) handleMessage(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == d.botID || m.Author.Bot {
		return
	}
	if m.ChannelID != d.channelID {
		return
	}
	if d.ownerID != "" && m.Author.ID != d.ownerID {
		return
	}
	if m.Content == "" {
		return
	}

	logging.Debug("discord-sense", "message from %s: %s", m.Author.Username, logging.Truncate(m.Content, 50))
	select {
	case d.messages <- m.Content:
	default:
		logging.Info("discord-sense", "dropping message from %s, backlog full", m.Author.Username)
	}
}
