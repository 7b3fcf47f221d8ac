package trainer

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jamesainslie/go-unigram/pool"
	"github.com/jamesainslie/go-unigram/tokenizer"
)

// sentenceFunc processes one sentence on a private lattice, adding to a
// private accumulator indexed by piece id, and returns its contribution
// to the corpus log-likelihood.
type sentenceFunc func(lat *tokenizer.Lattice, s Sentence, acc []float64) float64

// corpusPass runs fn over every sentence, sharded across the lattices of p.
// Each shard owns its accumulator; shards are reduced in order after all
// complete, so results depend only on the shard count.
func corpusPass(ctx context.Context, p *pool.Pool, corpus *Corpus, vocab *tokenizer.Vocabulary, fn sentenceFunc) ([]float64, float64, error) {
	sentences := corpus.Sentences()
	bounds := shardBounds(len(sentences), p.Size())
	partial := make([][]float64, len(bounds))
	logLik := make([]float64, len(bounds))

	g, gctx := errgroup.WithContext(ctx)
	for s, b := range bounds {
		g.Go(func() error {
			lat, err := p.Acquire(gctx)
			if err != nil {
				return fmt.Errorf("acquiring lattice: %w", err)
			}
			defer p.Release(lat)

			acc := make([]float64, vocab.Size())
			var ll float64
			for _, sent := range sentences[b[0]:b[1]] {
				lat.Reset(vocab, sent.Text, -1)
				ll += fn(lat, sent, acc)
			}
			partial[s], logLik[s] = acc, ll
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	total := make([]float64, vocab.Size())
	var ll float64
	for s := range partial {
		for id, c := range partial[s] {
			total[id] += c
		}
		ll += logLik[s]
	}
	return total, ll, nil
}

// expectedCounts is the E-step: posterior piece counts summed over all
// segmentations, plus the corpus log marginal likelihood.
func expectedCounts(ctx context.Context, p *pool.Pool, corpus *Corpus, vocab *tokenizer.Vocabulary) ([]float64, float64, error) {
	return corpusPass(ctx, p, corpus, vocab, func(lat *tokenizer.Lattice, s Sentence, acc []float64) float64 {
		f := float64(s.Freq)
		return f * lat.ForwardBackward(f, acc)
	})
}

// viterbiFrequencies counts piece uses on the best segmentation of each
// sentence, plus the corpus Viterbi log-likelihood.
func viterbiFrequencies(ctx context.Context, p *pool.Pool, corpus *Corpus, vocab *tokenizer.Vocabulary) ([]float64, float64, error) {
	return corpusPass(ctx, p, corpus, vocab, func(lat *tokenizer.Lattice, s Sentence, acc []float64) float64 {
		f := float64(s.Freq)
		path, score := lat.Viterbi()
		for _, e := range path {
			acc[e.ID] += f
		}
		return f * score
	})
}

// shardBounds splits n items into at most parts contiguous, non-empty ranges.
func shardBounds(n, parts int) [][2]int {
	if parts > n {
		parts = n
	}
	if parts < 1 {
		return nil
	}

	bounds := make([][2]int, parts)
	for i := range bounds {
		bounds[i] = [2]int{i * n / parts, (i + 1) * n / parts}
	}
	return bounds
}
