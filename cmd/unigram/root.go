package main

import (
	"errors"
	"log/slog"
	"os"

	unigram "github.com/jamesainslie/go-unigram"
	"github.com/jamesainslie/go-unigram/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	activeCfg config.Config
	loaded    bool
)

func NewRootCmd() *cobra.Command {
	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:           "unigram",
		Short:         "Train and apply unigram subword tokenizers",
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(config.LoadOptions{
				Cmd:        cmd,
				ConfigFile: cfgFile,
				Defaults:   defaults,
			})
			if err != nil {
				return err
			}
			activeCfg = cfg
			loaded = true
			setupLogger(cfg.LogLevel)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Optional config file (yaml|toml|json)")
	config.RegisterLogFlags(cmd.PersistentFlags(), defaults)

	cmd.AddCommand(newTrainCmd(defaults))
	cmd.AddCommand(newEncodeCmd(defaults))
	cmd.AddCommand(newDecodeCmd(defaults))
	cmd.AddCommand(newInfoCmd(defaults))
	cmd.AddCommand(newValidateCmd(defaults))

	return cmd
}

// setupLogger configures the process-wide slog default logger.
func setupLogger(levelStr string) {
	lvl, err := config.ParseLogLevel(levelStr)
	if err != nil {
		lvl = slog.LevelInfo
	}
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(h))
}

func requireConfig() (config.Config, error) {
	if !loaded {
		return config.Config{}, errors.New("configuration not loaded")
	}
	return activeCfg, nil
}

// openModel loads the model named by the --model flag.
func openModel(opts ...unigram.Option) (*unigram.Processor, error) {
	cfg, err := requireConfig()
	if err != nil {
		return nil, err
	}
	return unigram.New(cfg.Model, append([]unigram.Option{unigram.WithLogger(slog.Default())}, opts...)...)
}
