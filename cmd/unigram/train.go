package main

import (
	"fmt"
	"log/slog"

	unigram "github.com/jamesainslie/go-unigram"
	"github.com/jamesainslie/go-unigram/internal/config"
	"github.com/spf13/cobra"
)

func newTrainCmd(defaults config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train FILE...",
		Short: "Train a model from text files with one sentence per line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			tc, err := cfg.Training.Trainer(slog.Default())
			if err != nil {
				return err
			}

			proc, err := unigram.TrainFiles(cmd.Context(), args, tc, unigram.WithLogger(slog.Default()))
			if err != nil {
				return err
			}
			defer func() { _ = proc.Close() }()

			prefix := cfg.Training.ModelPrefix
			if err := proc.Save(prefix); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s.model and %s.vocab (%d pieces)\n", prefix, prefix, proc.VocabSize())
			return err
		},
	}

	config.RegisterTrainingFlags(cmd.Flags(), defaults)

	return cmd
}
