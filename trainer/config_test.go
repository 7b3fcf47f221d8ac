package trainer

import (
	"errors"
	"testing"

	"github.com/jamesainslie/go-unigram/tokenizer"
)

func TestDefaultConfig_Valid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"vocab at control count", func(c *Config) { c.VocabSize = 4 }},
		{"vocab below byte pieces", func(c *Config) { c.VocabSize = 200; c.ByteFallback = true }},
		{"zero coverage", func(c *Config) { c.CharacterCoverage = 0 }},
		{"coverage above one", func(c *Config) { c.CharacterCoverage = 1.5 }},
		{"zero piece length", func(c *Config) { c.MaxPieceLength = 0 }},
		{"zero seed multiplier", func(c *Config) { c.SeedSizeMultiplier = 0 }},
		{"zero rounds", func(c *Config) { c.MaxRounds = 0 }},
		{"prune fraction one", func(c *Config) { c.PruneFraction = 1 }},
		{"negative loss threshold", func(c *Config) { c.MinLossThreshold = -1 }},
		{"zero sub-iterations", func(c *Config) { c.NumSubIterations = 0 }},
		{"negative smoothing", func(c *Config) { c.Smoothing = -0.5 }},
		{"negative threads", func(c *Config) { c.Threads = -1 }},
		{"negative sentence length", func(c *Config) { c.MaxSentenceLength = -1 }},
		{"negative time budget", func(c *Config) { c.TimeBudget = -1 }},
		{"unknown normalization", func(c *Config) { c.Normalization = "nfd" }},
		{"bpe", func(c *Config) { c.ModelType = tokenizer.ModelBPE }},
		{"unknown model type", func(c *Config) { c.ModelType = 42 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tokenizer.ErrInvalidConfiguration) {
				t.Errorf("Validate() = %v, want ErrInvalidConfiguration", err)
			}
		})
	}
}

func TestConfig_ValidEdges(t *testing.T) {
	cfg := DefaultConfig()
	cfg.VocabSize = 5
	cfg.CharacterCoverage = 1
	cfg.Threads = 0
	cfg.Normalization = tokenizer.SchemeIdentity
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	if cfg.threads() < 1 {
		t.Errorf("threads() = %d, want at least 1", cfg.threads())
	}
}
