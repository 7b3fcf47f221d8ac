package tokenizer

import "errors"

// Sentinel errors for conditions callers may need to handle differently.
var (
	// ErrUnknownID indicates Decode was given an id outside [0, VocabSize).
	ErrUnknownID = errors.New("tokenizer: unknown piece id")

	// ErrModelNotTrained indicates a Tokenizer was used before a model was trained or loaded.
	ErrModelNotTrained = errors.New("tokenizer: model not trained or loaded")

	// ErrInvalidConfiguration indicates an option or model field outside its valid range.
	ErrInvalidConfiguration = errors.New("tokenizer: invalid configuration")

	// ErrInvalidModel indicates the model file exists but is malformed.
	ErrInvalidModel = errors.New("tokenizer: invalid model format")
)
