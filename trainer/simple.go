package trainer

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jamesainslie/go-unigram/tokenizer"
)

// charTrainer builds a vocabulary of single characters.
type charTrainer struct {
	cfg Config
}

func (t *charTrainer) Train(_ context.Context, corpus *Corpus) (*tokenizer.Model, error) {
	if err := checkCorpus(corpus, t.cfg); err != nil {
		return nil, err
	}

	coverage := ComputeCoverage(corpus, t.cfg.CharacterCoverage)
	required := coverage.Required()
	if size := t.cfg.reservedPieces() + len(required); size != t.cfg.VocabSize {
		return nil, &TrainError{
			Stage: StageSeed, VocabSize: size, Target: t.cfg.VocabSize,
			Err: fmt.Errorf("%w: char model has %d pieces at coverage %g", ErrConvergence, size, t.cfg.CharacterCoverage),
		}
	}

	texts, freqs := splitCounts(required)
	return finalize(t.cfg, logShares(texts, freqs))
}

// wordTrainer builds a vocabulary of covered characters plus whole words.
type wordTrainer struct {
	cfg Config
}

func (t *wordTrainer) Train(_ context.Context, corpus *Corpus) (*tokenizer.Model, error) {
	if err := checkCorpus(corpus, t.cfg); err != nil {
		return nil, err
	}

	coverage := ComputeCoverage(corpus, t.cfg.CharacterCoverage)
	required := coverage.Required()
	words := countWords(corpus, coverage)

	reserved := t.cfg.reservedPieces()
	capacity := t.cfg.VocabSize - reserved - len(required)
	if capacity < 0 || capacity > len(words) {
		return nil, &TrainError{
			Stage: StageSeed, VocabSize: reserved + len(required) + len(words), Target: t.cfg.VocabSize,
			Err: fmt.Errorf("%w: %d characters and %d words available", ErrConvergence, len(required), len(words)),
		}
	}

	texts, freqs := splitCounts(required)
	for _, w := range words[:capacity] {
		texts = append(texts, w.Piece)
		freqs = append(freqs, w.Freq)
	}
	return finalize(t.cfg, logShares(texts, freqs))
}

// countWords returns the distinct space-prefixed words of the corpus by
// descending frequency, ties in lexical order. Words holding an uncovered
// character are left out.
func countWords(corpus *Corpus, coverage *Coverage) []Candidate {
	counts := make(map[string]int64)
	space := string(tokenizer.SpaceSymbol)
	for _, s := range corpus.Sentences() {
		for _, w := range strings.SplitAfter(s.Text[len(space):], space) {
			w = space + strings.TrimSuffix(w, space)
			if runeLen(w) > 1 && coverage.CoversString(w) {
				counts[w] += s.Freq
			}
		}
	}

	words := make([]Candidate, 0, len(counts))
	for w, f := range counts {
		words = append(words, Candidate{Piece: w, Freq: f})
	}
	slices.SortFunc(words, func(a, b Candidate) int {
		if c := cmp.Compare(b.Freq, a.Freq); c != 0 {
			return c
		}
		return strings.Compare(a.Piece, b.Piece)
	})
	return words
}

func splitCounts(chars []CharCount) ([]string, []int64) {
	texts := make([]string, len(chars))
	freqs := make([]int64, len(chars))
	for i, c := range chars {
		texts[i] = string(c.Char)
		freqs[i] = c.Freq
	}
	return texts, freqs
}
