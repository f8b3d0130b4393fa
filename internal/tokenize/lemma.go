package tokenize

import (
	"strings"
	"sync"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"

	"github.com/vthunder/parley/internal/logging"
)

var (
	dictOnce sync.Once
	dict     *golem.Lemmatizer
)

// englishDict loads the English lemma dictionary on first use. It returns
// nil if the dictionary cannot be loaded.
func englishDict() *golem.Lemmatizer {
	dictOnce.Do(func() {
		l, err := golem.New(en.New())
		if err != nil {
			logging.Info("tokenize", "lemma dictionary unavailable, using suffix rules: %v", err)
			return
		}
		dict = l
	})
	return dict
}

// nouns whose plural-looking form is also the singular
var invariantNouns = map[string]bool{
	"news":    true,
	"species": true,
	"series":  true,
	"means":   true,
}

// words ending in s that are already singular
var keepSuffixes = []string{"ss", "us", "is", "os", "as"}

// Lemma reduces a lowercase word to its base form. Dictionary words use
// the English lemma list; unknown words only lose a regular plural s
// ("droids" -> "droid").
func Lemma(word string) string {
	if invariantNouns[word] {
		return word
	}
	if d := englishDict(); d != nil && d.InDict(word) {
		return d.Lemma(word)
	}
	return regularSingular(word)
}

func regularSingular(word string) string {
	if len(word) <= 3 || !strings.HasSuffix(word, "s") {
		return word
	}
	for _, keep := range keepSuffixes {
		if strings.HasSuffix(word, keep) {
			return word
		}
	}
	return strings.TrimSuffix(word, "s")
}
