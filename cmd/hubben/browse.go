package main

import (
	"strings"

	"github.com/example/hubben/internal/tui"
	"github.com/spf13/cobra"
)

func newBrowseCommand(g *globals) *cobra.Command {
	var kommun string
	cmd := &cobra.Command{
		Use:   "browse [SLUG]",
		Short: "Browse news and reports in an interactive terminal UI",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBackend(cmd.Context(), g, nil)
			if err != nil {
				return err
			}
			defer closeQuietly(b)

			opts := tui.Options{Kommun: strings.TrimSpace(kommun)}
			if len(args) == 1 {
				opts.Slug = strings.TrimSpace(args[0])
			}
			return tui.Run(cmd.Context(), b, opts)
		},
	}
	cmd.Flags().StringVar(&kommun, "kommun", "", "Kommun to load when a report SLUG is given")
	return cmd
}
