package overlap

import (
	"github.com/vthunder/parley/internal/logging"
	"github.com/vthunder/parley/internal/tokenize"
)

// Scorer holds a fixed candidate set with its bags computed once
type Scorer struct {
	tokenizer  *tokenize.Tokenizer
	candidates []string
	bags       []map[string]int
}

// Result is the outcome of ranking one utterance
type Result struct {
	Index    int
	Response string
	Scores   []int
}

// NewScorer tokenizes every candidate up front. The candidate slice is
// copied so later changes by the caller do not leak in.
func NewScorer(tok *tokenize.Tokenizer, candidates []string) *Scorer {
	s := &Scorer{
		tokenizer:  tok,
		candidates: append([]string(nil), candidates...),
		bags:       make([]map[string]int, len(candidates)),
	}
	for i, c := range s.candidates {
		s.bags[i] = Bag(tok.Tokens(c))
	}
	return s
}

// Len returns the number of candidates
func (s *Scorer) Len() int {
	return len(s.candidates)
}

// Best ranks the candidates against the utterance. Blank utterances
// score zero everywhere and so select the first candidate. With no
// candidates the result index is -1.
func (s *Scorer) Best(utterance string) Result {
	bag := Bag(s.tokenizer.Tokens(utterance))
	scores := make([]int, len(s.bags))
	for i, b := range s.bags {
		scores[i] = Score(b, bag)
	}

	idx := ArgMax(scores)
	res := Result{Index: idx, Scores: scores}
	if idx >= 0 {
		res.Response = s.candidates[idx]
	}
	logging.Debug("overlap", "scores=%v best=%d", scores, idx)
	return res
}
