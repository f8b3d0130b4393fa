// Package corpus loads the immutable bot definitions: prompts, exit and
// negative words, the intent table and the candidate responses.
package corpus

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vthunder/parley/internal/intent"
)

//go:embed bots/*.yaml
var builtin embed.FS

// ErrUnknownBot is returned by Load for names without a built-in definition
var ErrUnknownBot = errors.New("unknown bot")

// Strategy selects how a bot turns an utterance into a response
type Strategy string

const (
	StrategyRegex   Strategy = "regex"
	StrategyOverlap Strategy = "overlap"
)

// Greeting configures the opt-in exchange before the first turn
type Greeting struct {
	NamePrompt    string   `yaml:"name_prompt"`
	OptInPrompt   string   `yaml:"opt_in_prompt"` // {name} is replaced with the answer to NamePrompt
	NegativeWords []string `yaml:"negative_words"`
}

// Bot is one complete bot definition
type Bot struct {
	Name           string                   `yaml:"name"`
	Strategy       Strategy                 `yaml:"strategy"`
	Greeting       *Greeting                `yaml:"greeting,omitempty"`
	OpeningPrompts []string                 `yaml:"opening_prompts"`
	FollowUpPrompt string                   `yaml:"follow_up_prompt,omitempty"`
	ReplyAsPrompt  bool                     `yaml:"reply_as_prompt,omitempty"` // show each reply as the next prompt
	ExitWords      []string                 `yaml:"exit_words"`
	Farewell       string                   `yaml:"farewell"`
	Fallback       string                   `yaml:"fallback"`
	Intents        intent.Table             `yaml:"intents,omitempty"`
	Replies        map[intent.Kind][]string `yaml:"replies,omitempty"`
	Responses      []string                 `yaml:"responses,omitempty"`
	Placeholder    string                   `yaml:"placeholder,omitempty"`
	Lemmatize      bool                     `yaml:"lemmatize,omitempty"`
}

// Names lists the built-in bots
func Names() []string {
	entries, err := builtin.ReadDir("bots")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Load returns the built-in bot with the given name
func Load(name string) (*Bot, error) {
	data, err := builtin.ReadFile(path.Join("bots", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("%w %q (have %s)", ErrUnknownBot, name, strings.Join(Names(), ", "))
	}
	return Parse(data)
}

// LoadFile reads a bot definition from disk
func LoadFile(filename string) (*Bot, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read bot: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML bot definition
func Parse(data []byte) (*Bot, error) {
	var bot Bot
	if err := yaml.Unmarshal(data, &bot); err != nil {
		return nil, fmt.Errorf("parse bot: %w", err)
	}
	if err := bot.Validate(); err != nil {
		return nil, err
	}
	return &bot, nil
}

// Validate checks that the definition has what its strategy needs
func (b *Bot) Validate() error {
	if b.Name == "" {
		return fmt.Errorf("bot without name")
	}
	if len(b.ExitWords) == 0 {
		return fmt.Errorf("bot %s: no exit words", b.Name)
	}
	for _, w := range b.ExitWords {
		if strings.TrimSpace(w) == "" {
			return fmt.Errorf("bot %s: blank exit word", b.Name)
		}
	}
	if b.Farewell == "" {
		return fmt.Errorf("bot %s: no farewell", b.Name)
	}
	if b.Greeting != nil && len(b.Greeting.NegativeWords) == 0 {
		return fmt.Errorf("bot %s: greeting without negative words", b.Name)
	}

	switch b.Strategy {
	case StrategyRegex:
		if len(b.Replies[intent.KindNoMatch]) == 0 {
			return fmt.Errorf("bot %s: no %s replies", b.Name, intent.KindNoMatch)
		}
		for _, e := range b.Intents.Entries {
			if len(b.Replies[e.Kind]) == 0 {
				return fmt.Errorf("bot %s: intent %s has no %s replies", b.Name, e.Name, e.Kind)
			}
		}
	case StrategyOverlap:
		if len(b.Responses) == 0 {
			return fmt.Errorf("bot %s: no responses", b.Name)
		}
		if b.Placeholder == "" {
			return fmt.Errorf("bot %s: no placeholder", b.Name)
		}
	default:
		return fmt.Errorf("bot %s: unknown strategy %q", b.Name, b.Strategy)
	}
	return nil
}

// Fill replaces the first {} in a response template with entity
func Fill(template, entity string) string {
	return strings.Replace(template, "{}", entity, 1)
}
