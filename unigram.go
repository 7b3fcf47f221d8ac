package unigram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/jamesainslie/go-unigram/pool"
	"github.com/jamesainslie/go-unigram/tokenizer"
	"github.com/jamesainslie/go-unigram/trainer"
)

// Processor encodes and decodes text with a trained unigram model.
// It is safe for concurrent use.
type Processor struct {
	tokenizer *tokenizer.Tokenizer
	pool      *pool.Pool
	logger    *slog.Logger
}

// New loads a Processor from a .model file.
func New(modelPath string, opts ...Option) (*Processor, error) {
	if _, err := os.Stat(modelPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, modelPath)
		}
		return nil, fmt.Errorf("checking model file: %w", err)
	}

	model, err := tokenizer.LoadModel(modelPath)
	if err != nil {
		return nil, err
	}
	return FromModel(model, opts...)
}

// FromModel wraps an in-memory model.
func FromModel(model *tokenizer.Model, opts ...Option) (*Processor, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	tok, err := tokenizer.FromModel(model)
	if err != nil {
		return nil, err
	}
	if cfg.addBOS || cfg.addEOS {
		tok = tok.WithSequenceMarkers(cfg.addBOS, cfg.addEOS)
	}

	return &Processor{
		tokenizer: tok,
		pool:      pool.New(cfg.poolSize),
		logger:    cfg.logger,
	}, nil
}

// Train learns a model from in-memory lines.
func Train(ctx context.Context, lines []string, cfg trainer.Config, opts ...Option) (*Processor, error) {
	cfg = withLogger(cfg, opts)
	corpus, err := trainer.NewCorpus(lines, cfg)
	if err != nil {
		return nil, err
	}
	return train(ctx, corpus, cfg, nil, opts)
}

// TrainFiles learns a model from text files with one sentence per line.
func TrainFiles(ctx context.Context, paths []string, cfg trainer.Config, opts ...Option) (*Processor, error) {
	cfg = withLogger(cfg, opts)
	corpus, err := trainer.LoadCorpus(cfg, paths...)
	if err != nil {
		return nil, err
	}
	return train(ctx, corpus, cfg, paths, opts)
}

func train(ctx context.Context, corpus *trainer.Corpus, cfg trainer.Config, inputs []string, opts []Option) (*Processor, error) {
	model, err := trainer.Train(ctx, cfg, corpus)
	if err != nil {
		return nil, err
	}
	model.TrainerSpec.Input = inputs
	return FromModel(model, opts...)
}

// withLogger gives the trainer the Processor logger unless cfg names one.
func withLogger(cfg trainer.Config, opts []Option) trainer.Config {
	if cfg.Logger == nil {
		c := defaultConfig()
		for _, opt := range opts {
			opt(&c)
		}
		cfg.Logger = c.logger
	}
	return cfg
}

// Encode returns the piece ids of text.
func (p *Processor) Encode(text string) ([]int32, error) {
	if p == nil || p.tokenizer == nil {
		return nil, ErrModelNotTrained
	}
	return p.tokenizer.Encode(text)
}

// EncodePieces returns the pieces of text with offsets into its escaped form.
func (p *Processor) EncodePieces(text string) ([]tokenizer.Token, error) {
	if p == nil || p.tokenizer == nil {
		return nil, ErrModelNotTrained
	}
	return p.tokenizer.EncodePieces(text)
}

// EncodeBatch encodes texts concurrently over the workspace pool. Results
// are in input order.
func (p *Processor) EncodeBatch(ctx context.Context, texts []string) ([][]int32, error) {
	if p == nil || p.tokenizer == nil {
		return nil, ErrModelNotTrained
	}

	out := make([][]int32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.pool.Size())
	for i, text := range texts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lat, err := p.pool.Acquire(gctx)
			if err != nil {
				return err
			}
			defer p.pool.Release(lat)

			ids, err := p.tokenizer.EncodeWith(lat, text)
			if err != nil {
				return fmt.Errorf("encoding text %d: %w", i, err)
			}
			out[i] = ids
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// Decode converts ids back to text. Ids outside the vocabulary fail with
// ErrUnknownID.
func (p *Processor) Decode(ids []int32) (string, error) {
	if p == nil || p.tokenizer == nil {
		return "", ErrModelNotTrained
	}
	return p.tokenizer.Decode(ids)
}

// Normalize returns the form of text that Decode(Encode(text)) reproduces.
func (p *Processor) Normalize(text string) string {
	if p == nil || p.tokenizer == nil {
		return text
	}
	return p.tokenizer.Normalize(text)
}

// VocabSize returns the number of pieces, control pieces included.
func (p *Processor) VocabSize() int {
	if p == nil || p.tokenizer == nil {
		return 0
	}
	return p.tokenizer.VocabSize()
}

// PieceToID returns the id of piece, or the unknown id.
func (p *Processor) PieceToID(piece string) int32 {
	if p == nil || p.tokenizer == nil {
		return -1
	}
	return p.tokenizer.PieceToID(piece)
}

// IDToPiece returns the surface of id.
func (p *Processor) IDToPiece(id int32) (string, error) {
	if p == nil || p.tokenizer == nil {
		return "", ErrModelNotTrained
	}
	return p.tokenizer.IDToPiece(id)
}

// Tokenizer returns the underlying codec.
func (p *Processor) Tokenizer() *tokenizer.Tokenizer {
	if p == nil {
		return nil
	}
	return p.tokenizer
}

// Model returns the trained or loaded model.
func (p *Processor) Model() *tokenizer.Model {
	if p == nil || p.tokenizer == nil {
		return nil
	}
	return p.tokenizer.Model()
}

// Save writes {prefix}.model and {prefix}.vocab.
func (p *Processor) Save(prefix string) error {
	model := p.Model()
	if model == nil {
		return ErrModelNotTrained
	}

	model.TrainerSpec.ModelPrefix = prefix
	if err := model.Save(prefix + ".model"); err != nil {
		return fmt.Errorf("saving model: %w", err)
	}
	if err := model.SaveVocab(prefix + ".vocab"); err != nil {
		return fmt.Errorf("saving vocabulary: %w", err)
	}

	p.logger.Info("saved model", "prefix", prefix, "vocab_size", len(model.Pieces))
	return nil
}

// Close releases all resources.
func (p *Processor) Close() error {
	if p == nil {
		return nil
	}

	var errs []error

	if p.pool != nil {
		if err := p.pool.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if p.tokenizer != nil {
		if err := p.tokenizer.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
