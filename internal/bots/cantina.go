package bots

import (
	"context"
	"fmt"

	"github.com/vthunder/parley/internal/corpus"
	"github.com/vthunder/parley/internal/embedding"
	"github.com/vthunder/parley/internal/extract"
	"github.com/vthunder/parley/internal/overlap"
	"github.com/vthunder/parley/internal/tokenize"
)

// Cantina picks the candidate response with the largest word overlap and
// fills its slot with the entity closest to the placeholder
type Cantina struct {
	tokenizer *tokenize.Tokenizer
	scorer    *overlap.Scorer
	extractor *extract.EntityExtractor
}

// NewCantina builds the scorer and extractor for an overlap bot. A nil
// tagger or provider is allowed; every entity then falls back to the
// placeholder.
func NewCantina(bot *corpus.Bot, tagger extract.Tagger, provider embedding.Provider) (*Cantina, error) {
	if bot.Strategy != corpus.StrategyOverlap {
		return nil, fmt.Errorf("bot %s: cantina needs strategy %s, got %s", bot.Name, corpus.StrategyOverlap, bot.Strategy)
	}
	tok := TokenizerFor(bot)
	return &Cantina{
		tokenizer: tok,
		scorer:    overlap.NewScorer(tok, bot.Responses),
		extractor: extract.NewEntityExtractor(tok, tagger, provider, bot.Placeholder),
	}, nil
}

// TokenizerFor returns the tokenizer a bot's definition asks for
func TokenizerFor(bot *corpus.Bot) *tokenize.Tokenizer {
	if bot.Lemmatize {
		return tokenize.New(tokenize.WithLemmatizer())
	}
	return tokenize.New()
}

// Tokenizer returns the tokenizer shared by the scorer and extractor
func (c *Cantina) Tokenizer() *tokenize.Tokenizer {
	return c.tokenizer
}

// Scorer exposes the overlap ranking
func (c *Cantina) Scorer() *overlap.Scorer {
	return c.scorer
}

// Extractor exposes the entity extraction
func (c *Cantina) Extractor() *extract.EntityExtractor {
	return c.extractor
}

// Respond selects the best candidate and substitutes the entity
func (c *Cantina) Respond(ctx context.Context, utterance string) (string, error) {
	best := c.scorer.Best(utterance)
	if best.Index < 0 {
		return "", fmt.Errorf("no candidate responses")
	}
	entity := c.extractor.Extract(ctx, utterance)
	return corpus.Fill(best.Response, entity), nil
}
