package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	unigram "github.com/jamesainslie/go-unigram"
	"github.com/jamesainslie/go-unigram/internal/config"
	"github.com/spf13/cobra"
)

// maxLineBytes bounds lines read from standard input.
const maxLineBytes = 1 << 20

func newEncodeCmd(defaults config.Config) *cobra.Command {
	var (
		pieces bool
		bos    bool
		eos    bool
	)

	cmd := &cobra.Command{
		Use:   "encode [TEXT...]",
		Short: "Encode text into piece ids; reads lines from stdin when no text is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			proc, err := openModel(unigram.WithBOS(bos), unigram.WithEOS(eos))
			if err != nil {
				return err
			}
			defer func() { _ = proc.Close() }()

			out := cmd.OutOrStdout()
			encode := func(text string) error {
				if pieces {
					tokens, err := proc.EncodePieces(text)
					if err != nil {
						return err
					}
					surfaces := make([]string, len(tokens))
					for i, tok := range tokens {
						surfaces[i] = tok.Text
					}
					_, err = fmt.Fprintln(out, strings.Join(surfaces, " "))
					return err
				}

				ids, err := proc.Encode(text)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, formatIDs(ids))
				return err
			}

			if len(args) > 0 {
				return encode(strings.Join(args, " "))
			}
			return eachLine(cmd.InOrStdin(), encode)
		},
	}

	config.RegisterModelFlags(cmd.Flags(), defaults)
	cmd.Flags().BoolVar(&pieces, "pieces", false, "Print piece surfaces instead of ids")
	cmd.Flags().BoolVar(&bos, "bos", false, "Prepend the beginning-of-sequence id")
	cmd.Flags().BoolVar(&eos, "eos", false, "Append the end-of-sequence id")

	return cmd
}

func formatIDs(ids []int32) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, " ")
}

// eachLine calls fn for every line of r.
func eachLine(r io.Reader, fn func(string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		if err := fn(scanner.Text()); err != nil {
			return err
		}
	}
	return scanner.Err()
}
