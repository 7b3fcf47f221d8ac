package trainer

import (
	"cmp"
	"slices"
	"strings"

	"github.com/jamesainslie/go-unigram/tokenizer"
)

// Candidate is a multi-character seed piece with its raw corpus frequency.
type Candidate struct {
	Piece string
	Freq  int64
	runes int
}

// CandidateSet is the ranked seed vocabulary. It is built once per training
// run and not modified afterwards.
type CandidateSet struct {
	candidates []Candidate
}

// Len returns the number of candidates.
func (s *CandidateSet) Len() int { return len(s.candidates) }

// Candidates returns the candidates by descending frequency, longer pieces
// first among equal frequencies, then lexical order.
func (s *CandidateSet) Candidates() []Candidate {
	return slices.Clone(s.candidates)
}

// BuildSeeds counts every substring of two to maxPieceLength code points
// and keeps the limit most frequent. A substring qualifies when the space
// symbol appears only as its first character, every character is covered,
// and it does not mix Unicode scripts.
func BuildSeeds(corpus *Corpus, coverage *Coverage, maxPieceLength, limit int) (*CandidateSet, error) {
	if corpus.Len() == 0 {
		return nil, ErrCorpusEmpty
	}

	counts := make(map[string]int64)
	var runes []rune
	for _, s := range corpus.Sentences() {
		runes = append(runes[:0], []rune(s.Text)...)
		for i, first := range runes {
			if !coverage.Covers(first) {
				continue
			}

			script := ""
			if first != tokenizer.SpaceSymbol {
				script, _ = joinScript("", coverage.script(first))
			}

			for j := i + 1; j < len(runes) && j-i < maxPieceLength; j++ {
				r := runes[j]
				if r == tokenizer.SpaceSymbol || !coverage.Covers(r) {
					break
				}
				var ok bool
				if script, ok = joinScript(script, coverage.script(r)); !ok {
					break
				}
				counts[string(runes[i:j+1])] += s.Freq
			}
		}
	}

	candidates := make([]Candidate, 0, len(counts))
	for piece, freq := range counts {
		candidates = append(candidates, Candidate{Piece: piece, Freq: freq, runes: len([]rune(piece))})
	}
	slices.SortFunc(candidates, func(a, b Candidate) int {
		if c := cmp.Compare(b.Freq, a.Freq); c != 0 {
			return c
		}
		if c := cmp.Compare(b.runes, a.runes); c != 0 {
			return c
		}
		return strings.Compare(a.Piece, b.Piece)
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	return &CandidateSet{candidates: candidates}, nil
}
