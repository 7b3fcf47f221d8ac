// Package config loads CLI settings from defaults, an optional config file,
// UNIGRAM_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jamesainslie/go-unigram/tokenizer"
	"github.com/jamesainslie/go-unigram/trainer"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Keys double as flag names, config file keys and, upper-cased with
// dashes turned into underscores, UNIGRAM_* environment variable suffixes.
const (
	KeyLogLevel           = "log-level"
	KeyModel              = "model"
	KeyModelPrefix        = "model-prefix"
	KeyModelType          = "model-type"
	KeyVocabSize          = "vocab-size"
	KeyCharacterCoverage  = "character-coverage"
	KeyMaxPieceLength     = "max-piece-length"
	KeySeedSizeMultiplier = "seed-size-multiplier"
	KeyMaxRounds          = "max-rounds"
	KeyPruneFraction      = "prune-fraction"
	KeyMinLossThreshold   = "min-loss-threshold"
	KeyNumSubIterations   = "num-sub-iterations"
	KeySmoothing          = "smoothing"
	KeyThreads            = "threads"
	KeyByteFallback       = "byte-fallback"
	KeyNormalization      = "normalization"
	KeyMaxSentenceLength  = "max-sentence-length"
	KeyTimeBudget         = "time-budget"
	KeyBaseline           = "baseline"
)

// EnvPrefix prefixes environment overrides, e.g. UNIGRAM_VOCAB_SIZE.
const EnvPrefix = "UNIGRAM"

// Config is the flattened CLI configuration.
type Config struct {
	LogLevel string `mapstructure:"log-level"`

	// Model is the .model file read by encode, decode, info and validate.
	Model string `mapstructure:"model"`

	Training TrainingConfig `mapstructure:",squash"`

	// Baseline is the tiktoken encoding benchmarks compare against.
	Baseline string `mapstructure:"baseline"`
}

// TrainingConfig mirrors trainer.Config with text-friendly types.
type TrainingConfig struct {
	ModelPrefix        string        `mapstructure:"model-prefix"`
	ModelType          string        `mapstructure:"model-type"`
	VocabSize          int           `mapstructure:"vocab-size"`
	CharacterCoverage  float64       `mapstructure:"character-coverage"`
	MaxPieceLength     int           `mapstructure:"max-piece-length"`
	SeedSizeMultiplier int           `mapstructure:"seed-size-multiplier"`
	MaxRounds          int           `mapstructure:"max-rounds"`
	PruneFraction      float64       `mapstructure:"prune-fraction"`
	MinLossThreshold   float64       `mapstructure:"min-loss-threshold"`
	NumSubIterations   int           `mapstructure:"num-sub-iterations"`
	Smoothing          float64       `mapstructure:"smoothing"`
	Threads            int           `mapstructure:"threads"`
	ByteFallback       bool          `mapstructure:"byte-fallback"`
	Normalization      string        `mapstructure:"normalization"`
	MaxSentenceLength  int           `mapstructure:"max-sentence-length"`
	TimeBudget         time.Duration `mapstructure:"time-budget"`
}

// LoadOptions controls Load.
type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

// DefaultConfig returns the CLI defaults, derived from trainer.DefaultConfig.
func DefaultConfig() Config {
	tc := trainer.DefaultConfig()
	return Config{
		LogLevel: "info",
		Model:    "tokenizer.model",
		Training: TrainingConfig{
			ModelPrefix:        "tokenizer",
			ModelType:          tc.ModelType.String(),
			VocabSize:          tc.VocabSize,
			CharacterCoverage:  tc.CharacterCoverage,
			MaxPieceLength:     tc.MaxPieceLength,
			SeedSizeMultiplier: tc.SeedSizeMultiplier,
			MaxRounds:          tc.MaxRounds,
			PruneFraction:      tc.PruneFraction,
			MinLossThreshold:   tc.MinLossThreshold,
			NumSubIterations:   tc.NumSubIterations,
			Smoothing:          tc.Smoothing,
			Threads:            tc.Threads,
			ByteFallback:       tc.ByteFallback,
			Normalization:      "nfkc",
			MaxSentenceLength:  tc.MaxSentenceLength,
			TimeBudget:         tc.TimeBudget,
		},
		Baseline: "r50k_base",
	}
}

// RegisterLogFlags registers the flags every command shares.
func RegisterLogFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String(KeyLogLevel, defaults.LogLevel, "Log level (debug|info|warn|error)")
}

// RegisterModelFlags registers the flag naming the model to load.
func RegisterModelFlags(fs *pflag.FlagSet, defaults Config) {
	fs.StringP(KeyModel, "m", defaults.Model, "Path to a .model file")
}

// RegisterTrainingFlags registers the trainer settings.
func RegisterTrainingFlags(fs *pflag.FlagSet, defaults Config) {
	t := defaults.Training
	fs.StringP(KeyModelPrefix, "o", t.ModelPrefix, "Output prefix; writes <prefix>.model and <prefix>.vocab")
	fs.String(KeyModelType, t.ModelType, "Model type (unigram|char|word)")
	fs.IntP(KeyVocabSize, "v", t.VocabSize, "Exact vocabulary size, control pieces included")
	fs.Float64(KeyCharacterCoverage, t.CharacterCoverage, "Fraction of corpus characters guaranteed a piece")
	fs.Int(KeyMaxPieceLength, t.MaxPieceLength, "Longest piece, in code points")
	fs.Int(KeySeedSizeMultiplier, t.SeedSizeMultiplier, "Seed candidates kept per final piece")
	fs.Int(KeyMaxRounds, t.MaxRounds, "Maximum EM and pruning rounds")
	fs.Float64(KeyPruneFraction, t.PruneFraction, "Largest share of the vocabulary removed per round")
	fs.Float64(KeyMinLossThreshold, t.MinLossThreshold, "Per-character likelihood gain that ends EM early")
	fs.Int(KeyNumSubIterations, t.NumSubIterations, "EM iterations per round")
	fs.Float64(KeySmoothing, t.Smoothing, "Additive pseudo-count in the M-step")
	fs.Int(KeyThreads, t.Threads, "Worker goroutines for corpus passes")
	fs.Bool(KeyByteFallback, t.ByteFallback, "Add the 256 byte pieces and encode unknown characters as bytes")
	fs.String(KeyNormalization, t.Normalization, "Normalization (nfkc|none)")
	fs.Int(KeyMaxSentenceLength, t.MaxSentenceLength, "Skip corpus lines longer than this many bytes (0 disables)")
	fs.Duration(KeyTimeBudget, t.TimeBudget, "Training time limit (0 means unlimited)")
}

// RegisterBenchFlags registers benchmark settings.
func RegisterBenchFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String(KeyBaseline, defaults.Baseline, "tiktoken encoding to compare against (empty disables)")
}

// Load merges defaults, the config file, the environment and flags.
func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := v.BindPFlags(opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("unigram")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	t := c.Training
	v.SetDefault(KeyLogLevel, c.LogLevel)
	v.SetDefault(KeyModel, c.Model)
	v.SetDefault(KeyBaseline, c.Baseline)
	v.SetDefault(KeyModelPrefix, t.ModelPrefix)
	v.SetDefault(KeyModelType, t.ModelType)
	v.SetDefault(KeyVocabSize, t.VocabSize)
	v.SetDefault(KeyCharacterCoverage, t.CharacterCoverage)
	v.SetDefault(KeyMaxPieceLength, t.MaxPieceLength)
	v.SetDefault(KeySeedSizeMultiplier, t.SeedSizeMultiplier)
	v.SetDefault(KeyMaxRounds, t.MaxRounds)
	v.SetDefault(KeyPruneFraction, t.PruneFraction)
	v.SetDefault(KeyMinLossThreshold, t.MinLossThreshold)
	v.SetDefault(KeyNumSubIterations, t.NumSubIterations)
	v.SetDefault(KeySmoothing, t.Smoothing)
	v.SetDefault(KeyThreads, t.Threads)
	v.SetDefault(KeyByteFallback, t.ByteFallback)
	v.SetDefault(KeyNormalization, t.Normalization)
	v.SetDefault(KeyMaxSentenceLength, t.MaxSentenceLength)
	v.SetDefault(KeyTimeBudget, t.TimeBudget)
}

// Trainer converts the training settings. The result is not validated;
// trainer.Train does that.
func (c TrainingConfig) Trainer(logger *slog.Logger) (trainer.Config, error) {
	modelType, err := tokenizer.ParseModelType(c.ModelType)
	if err != nil {
		return trainer.Config{}, err
	}
	scheme, err := tokenizer.ParseScheme(c.Normalization)
	if err != nil {
		return trainer.Config{}, err
	}

	return trainer.Config{
		ModelType:          modelType,
		VocabSize:          c.VocabSize,
		CharacterCoverage:  c.CharacterCoverage,
		MaxPieceLength:     c.MaxPieceLength,
		SeedSizeMultiplier: c.SeedSizeMultiplier,
		MaxRounds:          c.MaxRounds,
		PruneFraction:      c.PruneFraction,
		MinLossThreshold:   c.MinLossThreshold,
		NumSubIterations:   c.NumSubIterations,
		Smoothing:          c.Smoothing,
		Threads:            c.Threads,
		ByteFallback:       c.ByteFallback,
		Normalization:      scheme,
		MaxSentenceLength:  c.MaxSentenceLength,
		TimeBudget:         c.TimeBudget,
		Logger:             logger,
	}, nil
}

// ParseLogLevel converts a case-insensitive level string to slog.Level.
// An empty string returns slog.LevelInfo. Unknown strings return an error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}
