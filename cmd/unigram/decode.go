package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jamesainslie/go-unigram/internal/config"
	"github.com/spf13/cobra"
)

func newDecodeCmd(defaults config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode [ID...]",
		Short: "Decode piece ids into text; reads id lines from stdin when no ids are given",
		RunE: func(cmd *cobra.Command, args []string) error {
			proc, err := openModel()
			if err != nil {
				return err
			}
			defer func() { _ = proc.Close() }()

			decode := func(fields []string) error {
				ids, err := parseIDs(fields)
				if err != nil {
					return err
				}
				text, err := proc.Decode(ids)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
				return err
			}

			if len(args) > 0 {
				return decode(args)
			}
			return eachLine(cmd.InOrStdin(), func(line string) error {
				return decode(strings.Fields(line))
			})
		},
	}

	config.RegisterModelFlags(cmd.Flags(), defaults)

	return cmd
}

func parseIDs(fields []string) ([]int32, error) {
	ids := make([]int32, 0, len(fields))
	for _, f := range fields {
		id, err := strconv.ParseInt(f, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", f, err)
		}
		ids = append(ids, int32(id))
	}
	return ids, nil
}
