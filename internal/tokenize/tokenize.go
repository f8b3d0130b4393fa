// Package tokenize turns raw utterances into normalized token sequences.
package tokenize

import (
	"errors"
	"strings"
	"unicode"
)

// ErrEmptyInput marks an utterance that is empty or only whitespace.
// Callers recover from it locally (no-match / zero score).
var ErrEmptyInput = errors.New("empty input")

// Tokenizer lowercases, strips punctuation, drops stop-words and
// optionally lemmatizes. It is immutable once built and safe to share.
type Tokenizer struct {
	stopwords map[string]bool
	lemmatize bool
}

// Option configures a Tokenizer
type Option func(*Tokenizer)

// WithLemmatizer reduces inflected nouns to their base form
func WithLemmatizer() Option {
	return func(t *Tokenizer) { t.lemmatize = true }
}

// WithStopwords replaces the default stop-word list
func WithStopwords(words []string) Option {
	return func(t *Tokenizer) {
		t.stopwords = make(map[string]bool, len(words))
		for _, w := range words {
			t.stopwords[strings.ToLower(w)] = true
		}
	}
}

// New creates a tokenizer with the default English stop-words
func New(opts ...Option) *Tokenizer {
	t := &Tokenizer{}
	WithStopwords(englishStopwords)(t)
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Check returns ErrEmptyInput for blank utterances
func Check(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyInput
	}
	return nil
}

// Tokens returns the ordered, normalized tokens of text. Duplicates are kept.
func (t *Tokenizer) Tokens(text string) []string {
	words := strings.Fields(StripPunctuation(strings.ToLower(text)))
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if t.stopwords[w] {
			continue
		}
		if t.lemmatize {
			w = Lemma(w)
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// StripPunctuation removes every rune that is not a letter, digit,
// underscore or whitespace. Apostrophes are removed, not split on.
func StripPunctuation(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
