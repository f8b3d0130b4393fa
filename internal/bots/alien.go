// Package bots turns bot definitions into conversation responders: the
// regex-intent alien and the overlap-ranked cantina.
package bots

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/vthunder/parley/internal/corpus"
	"github.com/vthunder/parley/internal/intent"
	"github.com/vthunder/parley/internal/logging"
)

type handler func(m intent.Match) (string, error)

// Alien answers with canned replies chosen by intent
type Alien struct {
	matcher  *intent.Matcher
	replies  map[intent.Kind][]string
	handlers map[intent.Kind]handler

	mu  sync.Mutex
	rng *rand.Rand
}

// NewAlien compiles the bot's intent table. rng picks among replies; nil
// seeds one from the clock.
func NewAlien(bot *corpus.Bot, rng *rand.Rand) (*Alien, error) {
	if bot.Strategy != corpus.StrategyRegex {
		return nil, fmt.Errorf("bot %s: alien needs strategy %s, got %s", bot.Name, corpus.StrategyRegex, bot.Strategy)
	}
	matcher, err := intent.NewMatcher(bot.Intents)
	if err != nil {
		return nil, fmt.Errorf("bot %s: %w", bot.Name, err)
	}
	if rng == nil {
		rng = NewRand(0)
	}

	a := &Alien{
		matcher: matcher,
		replies: bot.Replies,
		rng:     rng,
	}
	a.handlers = map[intent.Kind]handler{
		intent.KindDescribePlanet: a.canned(intent.KindDescribePlanet),
		intent.KindAnswerWhy:      a.canned(intent.KindAnswerWhy),
		intent.KindCubed:          a.cubed,
		intent.KindNoMatch:        a.canned(intent.KindNoMatch),
	}
	return a, nil
}

// Match classifies an utterance without producing a reply
func (a *Alien) Match(utterance string) intent.Match {
	return a.matcher.Match(utterance)
}

// Respond classifies the utterance and runs the handler for its kind. A
// cubed match whose group is not a usable integer returns a
// *intent.ParseError.
func (a *Alien) Respond(_ context.Context, utterance string) (string, error) {
	m := a.matcher.Match(utterance)
	h, ok := a.handlers[m.Kind]
	if !ok {
		return "", fmt.Errorf("no handler for intent kind %s", m.Kind)
	}
	logging.Debug("alien", "%q -> %s", logging.Truncate(utterance, 40), m.Intent)
	return h(m)
}

func (a *Alien) canned(kind intent.Kind) handler {
	return func(intent.Match) (string, error) {
		return a.pick(a.replies[kind]), nil
	}
}

func (a *Alien) cubed(m intent.Match) (string, error) {
	group := m.Extracted["number"]
	if group == "" && len(m.Groups) > 0 {
		group = m.Groups[0]
	}
	n, err := intent.ParseCount(group)
	if err != nil {
		return "", err
	}
	reply := a.pick(a.replies[intent.KindCubed])
	reply = strings.ReplaceAll(reply, "{number}", fmt.Sprint(n))
	reply = strings.ReplaceAll(reply, "{cube}", intent.Cube(n).String())
	return reply, nil
}

func (a *Alien) pick(options []string) string {
	if len(options) == 0 {
		return ""
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return options[a.rng.Intn(len(options))]
}
