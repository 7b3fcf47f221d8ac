package main

import (
	"fmt"
	"log/slog"

	"github.com/jamesainslie/go-unigram/internal/bench"
	"github.com/jamesainslie/go-unigram/internal/config"
	"github.com/jamesainslie/go-unigram/trainer"
	"github.com/spf13/cobra"
)

func newSweepCmd(defaults config.Config) *cobra.Command {
	var (
		samples            sampleFlags
		sweepMin, sweepMax int
		sweepStep          int
	)

	cmd := &cobra.Command{
		Use:   "sweep FILE...",
		Short: "Train one model per vocabulary size and rank them by tokens per word",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			sets, err := samples.load()
			if err != nil {
				return err
			}
			sizes := bench.SweepVocabSizes(sweepMin, sweepMax, sweepStep)
			if len(sizes) == 0 {
				return fmt.Errorf("empty sweep range %d..%d step %d", sweepMin, sweepMax, sweepStep)
			}

			tc, err := cfg.Training.Trainer(slog.Default())
			if err != nil {
				return err
			}
			corpus, err := trainer.LoadCorpus(tc, args...)
			if err != nil {
				return err
			}
			slog.Info("loaded corpus", "sentences", corpus.Len(), "lines", corpus.Lines(), "sizes", len(sizes))

			results, err := bench.Sweep(cmd.Context(), corpus, tc, sizes, sets)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			return samples.write(out, results, func() error {
				return bench.WriteSweep(out, results)
			})
		},
	}

	config.RegisterTrainingFlags(cmd.Flags(), defaults)
	cmd.Flags().IntVar(&sweepMin, "sweep-min", 1000, "Smallest vocabulary size")
	cmd.Flags().IntVar(&sweepMax, "sweep-max", 8000, "Largest vocabulary size")
	cmd.Flags().IntVar(&sweepStep, "sweep-step", 1000, "Vocabulary size step")
	samples.register(cmd)

	return cmd
}
