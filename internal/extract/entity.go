package extract

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/vthunder/parley/internal/embedding"
	"github.com/vthunder/parley/internal/logging"
	"github.com/vthunder/parley/internal/tokenize"
)

// ErrNoNouns is returned by Rank when the utterance has no nouns
var ErrNoNouns = errors.New("no nouns in utterance")

// Candidate is a noun with its similarity to the placeholder concept
type Candidate struct {
	Noun       string  `json:"noun"`
	Similarity float64 `json:"similarity"`
}

// EntityExtractor picks the noun in an utterance closest to a fixed
// placeholder/category concept
type EntityExtractor struct {
	tokenizer   *tokenize.Tokenizer
	tagger      Tagger
	provider    embedding.Provider
	placeholder string
}

// NewEntityExtractor wires the extractor to its collaborators
func NewEntityExtractor(tok *tokenize.Tokenizer, tagger Tagger, provider embedding.Provider, placeholder string) *EntityExtractor {
	return &EntityExtractor{
		tokenizer:   tok,
		tagger:      tagger,
		provider:    provider,
		placeholder: placeholder,
	}
}

// Placeholder returns the fallback entity
func (e *EntityExtractor) Placeholder() string {
	return e.placeholder
}

// Nouns tokenizes and tags the utterance and returns its nouns in order
func (e *EntityExtractor) Nouns(ctx context.Context, utterance string) ([]string, error) {
	tokens := e.tokenizer.Tokens(utterance)
	if len(tokens) == 0 {
		return nil, nil
	}
	if e.tagger == nil {
		return nil, ErrTaggerUnavailable
	}
	tagged, err := e.tagger.Tag(ctx, tokens)
	if err != nil {
		return nil, err
	}
	return Nouns(tagged), nil
}

// Rank embeds each noun on its own, scores it against the placeholder
// embedding and returns the candidates sorted ascending by similarity.
// Equal similarities keep their utterance order, so the best candidate
// is the last element and, among ties, the later noun.
func (e *EntityExtractor) Rank(ctx context.Context, utterance string) ([]Candidate, error) {
	nouns, err := e.Nouns(ctx, utterance)
	if err != nil {
		return nil, err
	}
	if len(nouns) == 0 {
		return nil, ErrNoNouns
	}
	if e.provider == nil {
		return nil, embedding.ErrUnavailable
	}

	category, err := e.provider.Embed(ctx, strings.Fields(strings.ToLower(e.placeholder)))
	if err != nil {
		return nil, fmt.Errorf("embed placeholder %q: %w", e.placeholder, err)
	}

	candidates := make([]Candidate, 0, len(nouns))
	for _, noun := range nouns {
		vec, err := e.provider.Embed(ctx, []string{noun})
		if err != nil {
			return nil, fmt.Errorf("embed %q: %w", noun, err)
		}
		candidates = append(candidates, Candidate{
			Noun:       noun,
			Similarity: e.provider.Similarity(vec, category),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Similarity < candidates[j].Similarity
	})
	return candidates, nil
}

// Extract returns the noun most similar to the placeholder. It never
// fails: no nouns, tagger errors and embedding errors all yield the
// placeholder.
func (e *EntityExtractor) Extract(ctx context.Context, utterance string) string {
	ranked, err := e.Rank(ctx, utterance)
	if errors.Is(err, ErrNoNouns) || (err == nil && len(ranked) == 0) {
		return e.placeholder
	}
	if err != nil {
		logging.Info("extract", "falling back to %q: %v", e.placeholder, err)
		return e.placeholder
	}
	best := ranked[len(ranked)-1]
	logging.Debug("extract", "entity %q (%.3f) from %q", best.Noun, best.Similarity, logging.Truncate(utterance, 60))
	return best.Noun
}
