package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/jamesainslie/go-unigram/internal/config"
	"github.com/jamesainslie/go-unigram/tokenizer"
	"github.com/spf13/cobra"
)

func newInfoCmd(defaults config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Describe a model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			proc, err := openModel()
			if err != nil {
				return err
			}
			defer func() { _ = proc.Close() }()

			model := proc.Model()
			spec := model.TrainerSpec
			types := make(map[tokenizer.PieceType]int)
			for _, p := range model.Pieces {
				types[p.Type]++
			}
			tok := proc.Tokenizer()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "model type:\t%s\n", spec.ModelType)
			fmt.Fprintf(tw, "vocab size:\t%d\n", proc.VocabSize())
			fmt.Fprintf(tw, "normal pieces:\t%d\n", types[tokenizer.PieceNormal])
			fmt.Fprintf(tw, "byte pieces:\t%d\n", types[tokenizer.PieceByte])
			fmt.Fprintf(tw, "byte fallback:\t%t\n", spec.ByteFallback)
			fmt.Fprintf(tw, "character coverage:\t%g\n", spec.CharacterCoverage)
			fmt.Fprintf(tw, "max piece length:\t%d\n", spec.MaxPieceLength)
			fmt.Fprintf(tw, "normalizer:\t%s\n", model.NormalizerSpec.Name)
			fmt.Fprintf(tw, "pad/unk/bos/eos:\t%d %d %d %d\n", tok.PadID(), tok.UnkID(), tok.BOSID(), tok.EOSID())
			return tw.Flush()
		},
	}

	config.RegisterModelFlags(cmd.Flags(), defaults)

	return cmd
}
