package main

import (
	"fmt"

	"github.com/jamesainslie/go-unigram/internal/bench"
	"github.com/jamesainslie/go-unigram/internal/config"
	"github.com/spf13/cobra"
)

func newValidateCmd(defaults config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Report tokens per word on an English and a Bengali sentence",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			proc, err := openModel()
			if err != nil {
				return err
			}
			defer func() { _ = proc.Close() }()

			var sets []*bench.SampleSet
			for _, set := range bench.DefaultSamples() {
				set.Samples = set.Samples[:1]
				sets = append(sets, set)
			}

			report, err := bench.Evaluate(proc, sets, nil)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Vocabulary size: %d\n", report.VocabSize)
			for _, lang := range report.Languages {
				s := lang.Samples[0]
				ids, err := proc.Encode(s.Text)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "\n%s test:\n", lang.Language)
				fmt.Fprintf(out, "  Text: %s\n", s.Text)
				fmt.Fprintf(out, "  Tokens: [%s]\n", formatIDs(ids))
				fmt.Fprintf(out, "  Words: %d, Tokens: %d\n", s.Words, s.Tokens)
				fmt.Fprintf(out, "  Tokens/word: %.2f\n", s.Ratio)
			}
			return nil
		},
	}

	config.RegisterModelFlags(cmd.Flags(), defaults)

	return cmd
}
