package trainer

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/jamesainslie/go-unigram/tokenizer"
)

// numControls is the number of reserved control pieces: pad, unk, bos, eos.
const numControls = 4

// numBytes is the number of byte-fallback pieces.
const numBytes = 256

// minCount floors expected counts in the M-step so that no piece gets a
// log probability of -Inf.
const minCount = 1e-6

// Config controls a training run. Start from DefaultConfig.
type Config struct {
	ModelType tokenizer.ModelType

	// VocabSize is the exact final size, control and byte pieces included.
	VocabSize int

	// CharacterCoverage is the fraction of corpus characters guaranteed a
	// single-character piece. Rarer characters map to unk or byte pieces.
	CharacterCoverage float64

	MaxPieceLength     int // in code points
	SeedSizeMultiplier int // seeds kept = SeedSizeMultiplier * VocabSize

	MaxRounds     int
	PruneFraction float64 // share of the vocabulary removed per round, at most

	// MinLossThreshold ends EM sub-iterations early once the per-character
	// log-likelihood gain drops below it.
	MinLossThreshold float64
	NumSubIterations int

	// Smoothing is an additive pseudo-count applied in the M-step.
	Smoothing float64

	Threads      int
	ByteFallback bool

	Normalization     tokenizer.Scheme
	MaxSentenceLength int           // bytes; longer lines are skipped, 0 disables
	TimeBudget        time.Duration // 0 means unlimited

	Logger *slog.Logger
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		ModelType:          tokenizer.ModelUnigram,
		VocabSize:          40000,
		CharacterCoverage:  0.9995,
		MaxPieceLength:     16,
		SeedSizeMultiplier: 10,
		MaxRounds:          64,
		PruneFraction:      0.2,
		MinLossThreshold:   1e-4,
		NumSubIterations:   2,
		Threads:            runtime.NumCPU(),
		Normalization:      tokenizer.SchemeNFKC,
		MaxSentenceLength:  4192,
		Logger:             slog.Default(),
	}
}

// Validate reports the first invalid field. Errors wrap
// tokenizer.ErrInvalidConfiguration.
func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", tokenizer.ErrInvalidConfiguration, fmt.Sprintf(format, args...))
	}

	switch c.ModelType {
	case tokenizer.ModelUnigram, tokenizer.ModelChar, tokenizer.ModelWord:
	case tokenizer.ModelBPE:
		return invalid("model type %s has no trainer", c.ModelType)
	default:
		return invalid("unknown model type %d", int32(c.ModelType))
	}

	if reserved := c.reservedPieces(); c.VocabSize <= reserved {
		return invalid("vocab size %d must exceed the %d reserved pieces", c.VocabSize, reserved)
	}
	if c.CharacterCoverage <= 0 || c.CharacterCoverage > 1 {
		return invalid("character coverage %g outside (0, 1]", c.CharacterCoverage)
	}
	if c.MaxPieceLength < 1 {
		return invalid("max piece length %d < 1", c.MaxPieceLength)
	}
	if c.SeedSizeMultiplier < 1 {
		return invalid("seed size multiplier %d < 1", c.SeedSizeMultiplier)
	}
	if c.MaxRounds < 1 {
		return invalid("max rounds %d < 1", c.MaxRounds)
	}
	if c.PruneFraction <= 0 || c.PruneFraction >= 1 {
		return invalid("prune fraction %g outside (0, 1)", c.PruneFraction)
	}
	if c.MinLossThreshold < 0 {
		return invalid("min loss threshold %g < 0", c.MinLossThreshold)
	}
	if c.NumSubIterations < 1 {
		return invalid("sub-iterations %d < 1", c.NumSubIterations)
	}
	if c.Smoothing < 0 {
		return invalid("smoothing %g < 0", c.Smoothing)
	}
	if c.Threads < 0 {
		return invalid("threads %d < 0", c.Threads)
	}
	if c.MaxSentenceLength < 0 {
		return invalid("max sentence length %d < 0", c.MaxSentenceLength)
	}
	if c.TimeBudget < 0 {
		return invalid("time budget %s < 0", c.TimeBudget)
	}
	if _, err := tokenizer.ParseScheme(string(c.Normalization)); err != nil {
		return err
	}

	return nil
}

// reservedPieces counts the pieces that are present regardless of the corpus.
func (c Config) reservedPieces() int {
	if c.ByteFallback {
		return numControls + numBytes
	}
	return numControls
}

func (c Config) scheme() tokenizer.Scheme {
	s, err := tokenizer.ParseScheme(string(c.Normalization))
	if err != nil {
		return tokenizer.SchemeNFKC
	}
	return s
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c Config) threads() int {
	if c.Threads > 0 {
		return c.Threads
	}
	return runtime.NumCPU()
}
