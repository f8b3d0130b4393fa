// Package intent matches raw utterances against an ordered table of
// regular-expression intents.
package intent

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vthunder/parley/internal/logging"
)

// Matcher evaluates an immutable, compiled intent table
type Matcher struct {
	scan    ScanMode
	entries []compiledEntry
}

// NewMatcher compiles the table. Names must be unique.
func NewMatcher(table Table) (*Matcher, error) {
	scan := table.Scan
	switch scan {
	case "":
		scan = ScanFirst
	case ScanFirst, ScanAll:
	default:
		return nil, fmt.Errorf("unknown scan mode %q", scan)
	}

	m := &Matcher{scan: scan, entries: make([]compiledEntry, 0, len(table.Entries))}
	seen := make(map[string]bool)
	for _, e := range table.Entries {
		if seen[e.Name] {
			return nil, fmt.Errorf("duplicate intent %q", e.Name)
		}
		seen[e.Name] = true

		ce, err := e.compile()
		if err != nil {
			return nil, err
		}
		m.entries = append(m.entries, ce)
	}
	return m, nil
}

// ScanMode returns the configured scan mode
func (m *Matcher) ScanMode() ScanMode {
	return m.scan
}

// Kinds returns the distinct kinds present in the table, in table order
func (m *Matcher) Kinds() []Kind {
	var kinds []Kind
	seen := make(map[Kind]bool)
	for _, e := range m.entries {
		if !seen[e.Kind] {
			seen[e.Kind] = true
			kinds = append(kinds, e.Kind)
		}
	}
	return kinds
}

// Match lowercases the raw utterance and walks the table in order.
//
// With ScanFirst the decision depends on the first entry alone: a miss
// there returns NoMatch without trying the rest. With ScanAll the first
// matching entry wins. Blank input is NoMatch.
func (m *Matcher) Match(utterance string) Match {
	text := strings.ToLower(utterance)
	if strings.TrimSpace(text) == "" {
		return NoMatch
	}

	for _, e := range m.entries {
		groups := e.re.FindStringSubmatch(text)
		if groups == nil {
			if m.scan == ScanFirst {
				logging.Debug("intent", "first entry %s missed, stopping", e.Name)
				return NoMatch
			}
			continue
		}

		match := Match{
			Intent:    e.Name,
			Kind:      e.Kind,
			Groups:    groups[1:],
			Extracted: make(map[string]string),
		}
		for i, name := range e.Extract {
			if i+1 < len(groups) {
				match.Extracted[name] = groups[i+1]
			}
		}
		logging.Debug("intent", "matched %s groups=%v", e.Name, match.Groups)
		return match
	}
	return NoMatch
}

// ParseTable decodes a YAML intent table
func ParseTable(data []byte) (Table, error) {
	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return Table{}, fmt.Errorf("parse intent table: %w", err)
	}
	return table, nil
}

// LoadTable reads a YAML intent table from disk
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("read intent table: %w", err)
	}
	return ParseTable(data)
}
