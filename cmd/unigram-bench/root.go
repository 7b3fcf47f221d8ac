package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jamesainslie/go-unigram/internal/bench"
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
		Use:           "unigram-bench",
		Short:         "Measure tokens per word of unigram tokenizers",
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

	cmd.AddCommand(newReportCmd(defaults))
	cmd.AddCommand(newSweepCmd(defaults))

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

// sampleFlags selects the benchmark texts and the output format.
type sampleFlags struct {
	dir    string
	format string
}

func (f *sampleFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dir, "samples", "", "Directory of .txt sample files (default: built-in English and Bengali texts)")
	cmd.Flags().StringVar(&f.format, "format", "table", "Output format (table|json)")
}

func (f *sampleFlags) load() ([]*bench.SampleSet, error) {
	if f.format != "table" && f.format != "json" {
		return nil, fmt.Errorf("unknown format %q (want table|json)", f.format)
	}
	if f.dir == "" {
		return bench.DefaultSamples(), nil
	}
	return bench.LoadSamples(f.dir)
}

func (f *sampleFlags) write(w io.Writer, v any, table func() error) error {
	if f.format == "json" {
		return bench.WriteJSON(w, v)
	}
	return table()
}
