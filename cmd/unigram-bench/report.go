package main

import (
	"fmt"
	"log/slog"

	unigram "github.com/jamesainslie/go-unigram"
	"github.com/jamesainslie/go-unigram/internal/bench"
	"github.com/jamesainslie/go-unigram/internal/config"
	"github.com/spf13/cobra"
)

func newReportCmd(defaults config.Config) *cobra.Command {
	var samples sampleFlags

	cmd := &cobra.Command{
		Use:   "report [MODEL...]",
		Short: "Report tokens per word for one or more models",
		Long:  "Report tokens per word for each MODEL, or for the --model file when none is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			sets, err := samples.load()
			if err != nil {
				return err
			}

			var baseline bench.Baseline
			if cfg.Baseline != "" {
				b, err := bench.NewTiktokenBaseline(cfg.Baseline)
				if err != nil {
					return err
				}
				baseline = b
			}

			paths := args
			if len(paths) == 0 {
				paths = []string{cfg.Model}
			}

			reports := make([]*bench.Report, 0, len(paths))
			for _, path := range paths {
				report, err := evaluateModel(path, sets, baseline)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				reports = append(reports, report)
			}

			out := cmd.OutOrStdout()
			var v any = reports
			if len(reports) == 1 {
				v = reports[0]
			}
			return samples.write(out, v, func() error {
				for i, report := range reports {
					if len(reports) > 1 {
						fmt.Fprintf(out, "== %s\n", paths[i])
					}
					if err := bench.WriteTable(out, report); err != nil {
						return err
					}
					if i < len(reports)-1 {
						fmt.Fprintln(out)
					}
				}
				return nil
			})
		},
	}

	config.RegisterModelFlags(cmd.Flags(), defaults)
	config.RegisterBenchFlags(cmd.Flags(), defaults)
	samples.register(cmd)

	return cmd
}

func evaluateModel(path string, sets []*bench.SampleSet, baseline bench.Baseline) (*bench.Report, error) {
	proc, err := unigram.New(path, unigram.WithLogger(slog.Default()))
	if err != nil {
		return nil, err
	}
	defer func() { _ = proc.Close() }()

	return bench.Evaluate(proc, sets, baseline)
}
