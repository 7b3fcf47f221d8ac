package unigram

import (
	"errors"

	"github.com/jamesainslie/go-unigram/tokenizer"
	"github.com/jamesainslie/go-unigram/trainer"
)

// Sentinel errors for conditions callers may need to handle differently.
var (
	// ErrModelNotFound indicates the model file does not exist.
	ErrModelNotFound = errors.New("unigram: model file not found")

	// ErrInvalidModel indicates the model file exists but is malformed.
	ErrInvalidModel = tokenizer.ErrInvalidModel

	// ErrModelNotTrained indicates a Processor without a trained or loaded model.
	ErrModelNotTrained = tokenizer.ErrModelNotTrained

	// ErrUnknownID indicates Decode received an id outside the vocabulary.
	ErrUnknownID = tokenizer.ErrUnknownID

	// ErrInvalidConfiguration indicates training parameters that cannot work.
	ErrInvalidConfiguration = tokenizer.ErrInvalidConfiguration

	// ErrCorpusEmpty indicates the training corpus has no usable text.
	ErrCorpusEmpty = trainer.ErrCorpusEmpty

	// ErrConvergence indicates the target vocabulary size was unreachable.
	ErrConvergence = trainer.ErrConvergence
)

// TrainError describes where a training run failed; see trainer.TrainError.
type TrainError = trainer.TrainError
