package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tsawler/prose/v3"
)

// ErrTaggerUnavailable is returned when POS tagging fails
var ErrTaggerUnavailable = errors.New("pos tagger unavailable")

// TaggedToken is a token with its Penn Treebank part-of-speech tag
type TaggedToken struct {
	Text string
	Tag  string
}

// Tagger assigns part-of-speech tags to a token sequence
type Tagger interface {
	Tag(ctx context.Context, tokens []string) ([]TaggedToken, error)
}

// ProseTagger uses the prose NLP library's averaged perceptron tagger
type ProseTagger struct{}

// NewProseTagger creates a new prose-based tagger
func NewProseTagger() *ProseTagger {
	return &ProseTagger{}
}

// Tag joins the tokens into one sentence and tags it
func (t *ProseTagger) Tag(ctx context.Context, tokens []string) ([]TaggedToken, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := prose.NewDocument(strings.Join(tokens, " "))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTaggerUnavailable, err)
	}

	var tagged []TaggedToken
	for _, tok := range doc.Tokens() {
		tagged = append(tagged, TaggedToken{Text: tok.Text, Tag: tok.Tag})
	}
	return tagged, nil
}

// IsNoun reports whether tag marks a common or proper noun
func IsNoun(tag string) bool {
	switch tag {
	case "NN", "NNS", "NNP", "NNPS":
		return true
	default:
		return false
	}
}

// Nouns keeps the noun tokens in utterance order
func Nouns(tagged []TaggedToken) []string {
	var nouns []string
	for _, tok := range tagged {
		if IsNoun(tok.Tag) {
			nouns = append(nouns, tok.Text)
		}
	}
	return nouns
}
