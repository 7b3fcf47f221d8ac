package trainer

import (
	"errors"
	"fmt"
)

var (
	// ErrCorpusEmpty indicates the corpus holds no text after normalization.
	ErrCorpusEmpty = errors.New("trainer: corpus contains no trainable text")

	// ErrConvergence indicates the target vocabulary size cannot be reached
	// with the available candidates, coverage or round budget.
	ErrConvergence = errors.New("trainer: target vocabulary size unreachable")
)

// Stage names the part of a training run that failed.
type Stage string

const (
	StageCorpus   Stage = "corpus"
	StageSeed     Stage = "seed"
	StageEM       Stage = "em"
	StagePrune    Stage = "prune"
	StageFinalize Stage = "finalize"
)

// TrainError carries the state of a training run at the point it failed.
type TrainError struct {
	Stage     Stage
	VocabSize int // pieces in the model when the failure occurred
	Target    int
	Round     int
	Err       error
}

func (e *TrainError) Error() string {
	return fmt.Sprintf("trainer: %s failed at round %d (vocabulary %d, target %d): %v",
		e.Stage, e.Round, e.VocabSize, e.Target, e.Err)
}

func (e *TrainError) Unwrap() error { return e.Err }
