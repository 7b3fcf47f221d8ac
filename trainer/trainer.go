// Package trainer learns a subword vocabulary from a corpus.
//
// The unigram strategy seeds candidate pieces from frequent substrings, then
// alternates EM re-estimation of piece probabilities with loss-based
// pruning until the vocabulary reaches its target size. The char and word
// strategies build their vocabulary in one pass over the same corpus.
//
// Every strategy returns a tokenizer.Model with controls at ids 0-3 (pad,
// unk, bos, eos), byte pieces next when byte fallback is enabled, and the
// learned pieces after that by descending score.
package trainer

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/jamesainslie/go-unigram/tokenizer"
)

// Trainer produces a model from a corpus.
type Trainer interface {
	Train(ctx context.Context, corpus *Corpus) (*tokenizer.Model, error)
}

// New validates cfg and returns the trainer for cfg.ModelType.
func New(cfg Config) (Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.ModelType {
	case tokenizer.ModelChar:
		return &charTrainer{cfg: cfg}, nil
	case tokenizer.ModelWord:
		return &wordTrainer{cfg: cfg}, nil
	default:
		return &unigramTrainer{cfg: cfg, logger: cfg.logger()}, nil
	}
}

// Train is shorthand for New(cfg) followed by Train.
func Train(ctx context.Context, cfg Config, corpus *Corpus) (*tokenizer.Model, error) {
	t, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return t.Train(ctx, corpus)
}

// withBudget bounds ctx by the configured time budget.
func withBudget(ctx context.Context, cfg Config) (context.Context, context.CancelFunc) {
	if cfg.TimeBudget > 0 {
		return context.WithTimeout(ctx, cfg.TimeBudget)
	}
	return context.WithCancel(ctx)
}

// interrupted explains why ctx ended: an expired time budget is a
// convergence failure, anything else is the caller's cancellation.
func interrupted(parent, ctx context.Context, cfg Config) error {
	err := ctxErr(ctx)
	if parent.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: time budget %s exhausted: %w", ErrConvergence, cfg.TimeBudget, err)
	}
	return err
}

// ctxErr is ctx.Err that also reports a deadline which has passed before
// its timer fired.
func ctxErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok && !time.Now().Before(deadline) {
		return context.DeadlineExceeded
	}
	return nil
}

func checkCorpus(corpus *Corpus, cfg Config) error {
	if corpus.Len() == 0 {
		return &TrainError{Stage: StageCorpus, Target: cfg.VocabSize, Err: ErrCorpusEmpty}
	}
	return nil
}

// finalize assigns ids and records the training parameters. The finished
// model must hold exactly cfg.VocabSize pieces that index into a valid
// vocabulary.
//
// Control and byte pieces are stored with score 0, as SentencePiece stores
// them. They never compete on probability: controls are not segmentation
// candidates and byte pieces only replace unknown characters. The learned
// pieces alone form the distribution whose probabilities sum to 1.
func finalize(cfg Config, learned []scoredPiece) (*tokenizer.Model, error) {
	slices.SortFunc(learned, func(a, b scoredPiece) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return strings.Compare(a.text, b.text)
	})

	pieces := controlPieces()
	if cfg.ByteFallback {
		for b := 0; b < numBytes; b++ {
			pieces = append(pieces, tokenizer.Piece{Piece: tokenizer.BytePiece(byte(b)), Type: tokenizer.PieceByte})
		}
	}
	for _, p := range learned {
		pieces = append(pieces, tokenizer.Piece{Piece: p.text, Score: float32(p.score), Type: tokenizer.PieceNormal})
	}

	ids := tokenizer.DefaultControlIDs()
	if n := len(pieces); n != cfg.VocabSize {
		return nil, &TrainError{
			Stage: StageFinalize, VocabSize: n, Target: cfg.VocabSize,
			Err: fmt.Errorf("%w: finished with %d pieces", ErrConvergence, n),
		}
	}
	if _, err := tokenizer.NewVocabulary(pieces, ids, cfg.ByteFallback); err != nil {
		return nil, &TrainError{Stage: StageFinalize, VocabSize: len(pieces), Target: cfg.VocabSize, Err: err}
	}

	return &tokenizer.Model{
		Pieces: pieces,
		TrainerSpec: tokenizer.TrainerSpec{
			ModelType:         cfg.ModelType,
			VocabSize:         int32(len(pieces)),
			CharacterCoverage: float32(cfg.CharacterCoverage),
			SeedSize:          int32(cfg.SeedSizeMultiplier * cfg.VocabSize),
			ShrinkingFactor:   float32(1 - cfg.PruneFraction),
			NumThreads:        int32(cfg.threads()),
			NumSubIterations:  int32(cfg.NumSubIterations),
			MaxPieceLength:    int32(cfg.MaxPieceLength),
			ByteFallback:      cfg.ByteFallback,
			UnkID:             ids.Unk,
			BOSID:             ids.BOS,
			EOSID:             ids.EOS,
			PadID:             ids.Pad,
			UnkSurface:        tokenizer.UnknownSurface,
			UnkPiece:          tokenizer.UnkPiece,
			BOSPiece:          tokenizer.BOSPiece,
			EOSPiece:          tokenizer.EOSPiece,
			PadPiece:          tokenizer.PadPiece,
		},
		NormalizerSpec: tokenizer.NormalizerSpec{
			Name:                   string(cfg.scheme()),
			AddDummyPrefix:         true,
			RemoveExtraWhitespaces: true,
			EscapeWhitespaces:      true,
		},
	}, nil
}

// logShares scores each piece by its share of the total frequency.
func logShares(texts []string, freqs []int64) []scoredPiece {
	var total float64
	for _, f := range freqs {
		total += float64(f)
	}
	logTotal := math.Log(total)

	out := make([]scoredPiece, len(texts))
	for i := range texts {
		out[i] = scoredPiece{text: texts[i], score: math.Log(float64(freqs[i])) - logTotal}
	}
	return out
}
