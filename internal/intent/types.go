package intent

import (
	"fmt"
	"regexp"
)

// Kind identifies what a matched intent does. Responders dispatch on Kind,
// never on the intent's display name.
type Kind string

const (
	KindDescribePlanet Kind = "describe_planet"
	KindAnswerWhy      Kind = "answer_why"
	KindCubed          Kind = "cubed"
	KindNoMatch        Kind = "no_match"
)

// Kinds lists every matchable kind (KindNoMatch is the sentinel, not a table entry)
var Kinds = []Kind{KindDescribePlanet, KindAnswerWhy, KindCubed}

func (k Kind) valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// ScanMode controls how far the matcher walks the table
type ScanMode string

const (
	// ScanFirst evaluates only the first entry: a failed first comparison
	// ends the search with NoMatch. This is the default.
	ScanFirst ScanMode = "first"
	// ScanAll walks the table in order and returns the first entry that matches.
	ScanAll ScanMode = "all"
)

// Entry is one row of the intent table
type Entry struct {
	Name    string   `yaml:"name"`
	Kind    Kind     `yaml:"kind"`
	Pattern string   `yaml:"pattern"`
	Extract []string `yaml:"extract,omitempty"` // names for positional capture groups
}

// Table is the ordered intent table. Order is priority.
type Table struct {
	Scan    ScanMode `yaml:"scan,omitempty"`
	Entries []Entry  `yaml:"entries"`
}

// Match is the outcome of matching one utterance
type Match struct {
	Intent    string
	Kind      Kind
	Groups    []string          // positional capture groups, group 1 first
	Extracted map[string]string // Groups keyed by Entry.Extract names
}

// Matched reports whether an intent other than the sentinel was found
func (m Match) Matched() bool {
	return m.Kind != KindNoMatch
}

// NoMatch is returned when no entry matches
var NoMatch = Match{Intent: "no_match_intent", Kind: KindNoMatch}

type compiledEntry struct {
	Entry
	re *regexp.Regexp
}

// compile anchors the pattern at the start of the input, like a prefix match
func (e Entry) compile() (compiledEntry, error) {
	if e.Name == "" {
		return compiledEntry{}, fmt.Errorf("intent entry without name")
	}
	if !e.Kind.valid() {
		return compiledEntry{}, fmt.Errorf("intent %s: unknown kind %q", e.Name, e.Kind)
	}
	re, err := regexp.Compile(`^(?:` + e.Pattern + `)`)
	if err != nil {
		return compiledEntry{}, fmt.Errorf("intent %s: %w", e.Name, err)
	}
	if e.Kind == KindCubed && re.NumSubexp() < 1 {
		return compiledEntry{}, fmt.Errorf("intent %s: cubed pattern needs a capture group", e.Name)
	}
	return compiledEntry{Entry: e, re: re}, nil
}
