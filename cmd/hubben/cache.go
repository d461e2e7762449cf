package main

import (
	"fmt"
	"time"

	"github.com/example/hubben/internal/cache"
	"github.com/spf13/cobra"
)

func newCacheCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Maintain the local response cache",
	}
	var olderThan time.Duration
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete cached responses older than --older-than",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if g.opts.CacheDB == "" {
				return fmt.Errorf("--cache-db is required")
			}
			store, err := cache.Open(g.opts.CacheDB)
			if err != nil {
				return err
			}
			defer closeQuietly(store)
			n, err := store.Prune(cmd.Context(), olderThan)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d cached responses from %s\n", n, store.Path())
			return nil
		},
	}
	prune.Flags().DurationVar(&olderThan, "older-than", 7*24*time.Hour, "Age above which entries are deleted (0 deletes everything)")
	cmd.AddCommand(prune)
	return cmd
}
