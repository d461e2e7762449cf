package main

import (
	"fmt"

	"github.com/example/hubben/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print hubben build information",
		Args:  cobra.NoArgs,
		// Skip backend validation; version must work without configuration.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := validateOutput(output)
			if err != nil {
				return err
			}
			info := version.Get()
			if format == outputText {
				fmt.Fprintln(cmd.OutOrStdout(), info.String())
				return nil
			}
			return writeStructured(cmd.OutOrStdout(), format, info)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "Output format: text, json, or yaml")
	return cmd
}
