package bench

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultBaseline is the GPT-2 byte-level BPE encoding.
const DefaultBaseline = "r50k_base"

// TiktokenBaseline counts tokens with an OpenAI BPE encoding.
type TiktokenBaseline struct {
	encoding *tiktoken.Tiktoken
	name     string
}

// NewTiktokenBaseline loads the named encoding ("r50k_base", "p50k_base",
// "cl100k_base", ...). The encoding tables are downloaded on first use and
// cached by tiktoken-go.
func NewTiktokenBaseline(name string) (*TiktokenBaseline, error) {
	encoding, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken encoding %q: %w", name, err)
	}
	return &TiktokenBaseline{encoding: encoding, name: name}, nil
}

// Name returns the encoding name.
func (b *TiktokenBaseline) Name() string { return b.name }

// Count returns the number of tokens in text.
func (b *TiktokenBaseline) Count(text string) (int, error) {
	return len(b.encoding.Encode(text, nil, nil)), nil
}
