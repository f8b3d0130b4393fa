package bots

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/vthunder/parley/internal/conversation"
	"github.com/vthunder/parley/internal/corpus"
	"github.com/vthunder/parley/internal/embedding"
	"github.com/vthunder/parley/internal/extract"
)

// Deps are the optional collaborators a responder may need
type Deps struct {
	Tagger   extract.Tagger
	Provider embedding.Provider
	Rand     *rand.Rand
}

// NewResponder builds the responder matching the bot's strategy
func NewResponder(bot *corpus.Bot, deps Deps) (conversation.Responder, error) {
	switch bot.Strategy {
	case corpus.StrategyRegex:
		return NewAlien(bot, deps.Rand)
	case corpus.StrategyOverlap:
		return NewCantina(bot, deps.Tagger, deps.Provider)
	default:
		return nil, fmt.Errorf("bot %s: unknown strategy %q", bot.Name, bot.Strategy)
	}
}

// SessionConfig derives the loop configuration from a bot definition,
// choosing one opening prompt at random
func SessionConfig(bot *corpus.Bot, rng *rand.Rand) conversation.Config {
	if rng == nil {
		rng = NewRand(0)
	}
	cfg := conversation.Config{
		FollowUpPrompt: bot.FollowUpPrompt,
		ReplyAsPrompt:  bot.ReplyAsPrompt,
		ExitWords:      bot.ExitWords,
		Farewell:       bot.Farewell,
		Fallback:       bot.Fallback,
	}
	if n := len(bot.OpeningPrompts); n > 0 {
		cfg.OpeningPrompt = bot.OpeningPrompts[rng.Intn(n)]
	}
	if g := bot.Greeting; g != nil {
		cfg.Greeting = &conversation.GreetingConfig{
			NamePrompt:    g.NamePrompt,
			OptInPrompt:   g.OptInPrompt,
			NegativeWords: g.NegativeWords,
		}
	}
	return cfg
}

// NewRand returns a reply picker; zero seeds from the clock
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
