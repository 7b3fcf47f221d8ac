package trainer

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/jamesainslie/go-unigram/pool"
	"github.com/jamesainslie/go-unigram/tokenizer"
)

type unigramTrainer struct {
	cfg    Config
	logger *slog.Logger
}

// run holds the state of one unigram training run.
type run struct {
	cfg    Config
	logger *slog.Logger
	corpus *Corpus
	pool   *pool.Pool
	model  *unigramModel
	round  int
}

func (t *unigramTrainer) Train(ctx context.Context, corpus *Corpus) (*tokenizer.Model, error) {
	if err := checkCorpus(corpus, t.cfg); err != nil {
		return nil, err
	}

	budgeted, cancel := withBudget(ctx, t.cfg)
	defer cancel()

	coverage := ComputeCoverage(corpus, t.cfg.CharacterCoverage)
	seeds, err := BuildSeeds(corpus, coverage, t.cfg.MaxPieceLength, t.cfg.SeedSizeMultiplier*t.cfg.VocabSize)
	if err != nil {
		return nil, &TrainError{Stage: StageSeed, Target: t.cfg.VocabSize, Err: err}
	}

	reserved := t.cfg.reservedPieces()
	required := len(coverage.Required())
	available := reserved + required + seeds.Len()
	switch {
	case reserved+required > t.cfg.VocabSize:
		return nil, &TrainError{
			Stage: StageSeed, VocabSize: available, Target: t.cfg.VocabSize,
			Err: fmt.Errorf("%w: %d covered characters need %d pieces", ErrConvergence, required, reserved+required),
		}
	case available < t.cfg.VocabSize:
		return nil, &TrainError{
			Stage: StageSeed, VocabSize: available, Target: t.cfg.VocabSize,
			Err: fmt.Errorf("%w: only %d pieces available at coverage %g", ErrConvergence, available, t.cfg.CharacterCoverage),
		}
	}

	t.logger.Info("seeded vocabulary",
		"sentences", corpus.Len(),
		"characters", coverage.Distinct(),
		"required", required,
		"coverage", coverage.Ratio(),
		"candidates", seeds.Len(),
	)

	m := newUnigramModel(reserved)
	m.initialize(coverage, seeds)

	p := pool.New(t.cfg.threads())
	defer func() { _ = p.Close() }()

	r := &run{cfg: t.cfg, logger: t.logger, corpus: corpus, pool: p, model: m}
	if err := r.loop(ctx, budgeted); err != nil {
		return nil, err
	}

	return finalize(t.cfg, m.finalPieces())
}

// loop alternates EM and pruning until the model reaches the target size.
func (r *run) loop(parent, ctx context.Context) error {
	target := r.cfg.VocabSize
	for r.round = 1; ; r.round++ {
		if ctxErr(ctx) != nil {
			return r.fail(StageEM, interrupted(parent, ctx, r.cfg))
		}
		if r.round > r.cfg.MaxRounds {
			return r.fail(StageEM, fmt.Errorf("%w: %d rounds exhausted", ErrConvergence, r.cfg.MaxRounds))
		}

		lls, err := r.em(ctx)
		if err != nil {
			return r.fail(StageEM, r.cause(parent, ctx, err))
		}
		ll := lls[len(lls)-1]

		if r.model.size() == target {
			r.logger.Info("training round", "round", r.round, "vocab_size", r.model.size(), "target", target,
				"log_likelihood", ll, "removed", 0)
			return nil
		}

		vocab, err := r.model.vocabulary()
		if err != nil {
			return r.fail(StagePrune, err)
		}
		freq, _, err := viterbiFrequencies(ctx, r.pool, r.corpus, vocab)
		if err != nil {
			return r.fail(StagePrune, r.cause(parent, ctx, err))
		}

		maxRemove := max(1, int(math.Floor(r.cfg.PruneFraction*float64(r.model.size()))))
		removed := r.model.pruneToSize(vocab, freq, target, maxRemove)
		if len(removed) == 0 {
			return r.fail(StagePrune, fmt.Errorf("%w: no removable pieces left", ErrConvergence))
		}

		r.logger.Info("training round", "round", r.round, "vocab_size", r.model.size(), "target", target,
			"log_likelihood", ll, "removed", len(removed))
	}
}

// em runs up to NumSubIterations E/M steps and returns the corpus
// log-likelihood measured by each E-step.
func (r *run) em(ctx context.Context) ([]float64, error) {
	chars := float64(r.corpus.Chars())
	lls := make([]float64, 0, r.cfg.NumSubIterations)

	for iter := 0; iter < r.cfg.NumSubIterations; iter++ {
		vocab, err := r.model.vocabulary()
		if err != nil {
			return lls, err
		}
		counts, ll, err := expectedCounts(ctx, r.pool, r.corpus, vocab)
		if err != nil {
			return lls, err
		}
		r.model.reestimate(counts, r.cfg.Smoothing)
		lls = append(lls, ll)

		r.logger.Debug("em iteration", "round", r.round, "iteration", iter+1,
			"log_likelihood", ll, "per_char", ll/chars, "vocab_size", r.model.size())

		if iter > 0 && (ll-lls[iter-1])/chars < r.cfg.MinLossThreshold {
			break
		}
	}

	return lls, nil
}

// cause prefers the context's explanation for a pass that was cut short.
func (r *run) cause(parent, ctx context.Context, err error) error {
	if ctxErr(ctx) != nil {
		return interrupted(parent, ctx, r.cfg)
	}
	return err
}

func (r *run) fail(stage Stage, err error) error {
	return &TrainError{
		Stage:     stage,
		VocabSize: r.model.size(),
		Target:    r.cfg.VocabSize,
		Round:     r.round,
		Err:       err,
	}
}
