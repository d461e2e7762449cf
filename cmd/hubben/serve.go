package main

import (
	"context"
	"fmt"
	"time"

	"github.com/example/hubben/internal/cache"
	"github.com/example/hubben/internal/config"
	"github.com/example/hubben/internal/portal"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const pruneInterval = time.Hour

func newServeCommand(g *globals) *cobra.Command {
	opts := config.NewServeOptions()
	var cacheMaxAge time.Duration
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the news and report pages as a web portal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.Validate(); err != nil {
				return err
			}
			return runServe(cmd.Context(), g, opts, cacheMaxAge)
		},
	}
	opts.BindFlags(cmd.Flags())
	cmd.Flags().DurationVar(&cacheMaxAge, "cache-max-age", 7*24*time.Hour, "Drop cached responses older than this (0 keeps everything)")
	return cmd
}

func runServe(ctx context.Context, g *globals, opts *config.ServeOptions, cacheMaxAge time.Duration) error {
	metrics := portal.NewMetrics()
	b, err := openBackend(ctx, g, metrics.ObserveUpstream)
	if err != nil {
		return err
	}
	defer closeQuietly(b)

	srv, err := portal.New(portal.Config{
		ListenAddr:      opts.ListenAddr,
		LiveFilter:      opts.LiveFilter,
		ShutdownTimeout: opts.ShutdownTimeout,
		Logger:          g.log.WithName("portal"),
		Metrics:         metrics,
	}, b)
	if err != nil {
		return err
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := srv.Run(gctx); err != nil {
			return fmt.Errorf("portal: %w", err)
		}
		return nil
	})
	if b.store != nil && cacheMaxAge > 0 {
		group.Go(func() error {
			pruneLoop(gctx, b.store, cacheMaxAge, g.log.WithName("cache"))
			return nil
		})
	}
	return group.Wait()
}

// pruneLoop trims the cache once at start and then every pruneInterval.
func pruneLoop(ctx context.Context, store *cache.Store, maxAge time.Duration, log logr.Logger) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		n, err := store.Prune(ctx, maxAge)
		switch {
		case err != nil && ctx.Err() == nil:
			log.Error(err, "prune cache", "path", store.Path())
		case n > 0:
			log.Info("pruned cache", "removed", n, "maxAge", maxAge.String())
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
