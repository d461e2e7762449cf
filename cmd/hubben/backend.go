package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/example/hubben/internal/api"
	"github.com/example/hubben/internal/cache"
	"github.com/example/hubben/internal/featureflags"
	"github.com/example/hubben/internal/telemetry"
)

// backend is an API client plus the cache it owns.
type backend struct {
	*api.Client
	store *cache.Store
}

func (b *backend) Close() error {
	if b.store == nil {
		return nil
	}
	return b.store.Close()
}

// openBackend builds the API client from the global options. observe may be
// nil.
func openBackend(ctx context.Context, g *globals, observe api.Observer) (*backend, error) {
	apiOpts := api.DefaultOptions()
	apiOpts.BaseURL = g.opts.BackendURL
	apiOpts.Timeout = g.opts.Timeout
	apiOpts.Retries = g.opts.Retries
	apiOpts.CacheTTL = g.opts.CacheTTL
	apiOpts.Logger = g.log.WithName("api")
	apiOpts.Observer = chainObservers(observe, g.rec)
	apiOpts.OfflineFallback = featureflags.FromContext(ctx).Enabled(featureflags.FeatureOfflineFallback)

	b := &backend{}
	if g.opts.CacheDB != "" {
		store, err := cache.Open(g.opts.CacheDB)
		if err != nil {
			return nil, err
		}
		b.store = store
		apiOpts.Cache = store
	} else if apiOpts.OfflineFallback {
		g.log.Info("offline-fallback has no effect without --cache-db")
	}

	client, err := api.New(apiOpts)
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("configure backend client: %w", err)
	}
	b.Client = client
	g.log.V(1).Info("backend configured", "url", client.BaseURL(), "cache", g.opts.CacheDB, "offlineFallback", apiOpts.OfflineFallback)
	return b, nil
}

func chainObservers(observe api.Observer, rec *telemetry.Recorder) api.Observer {
	switch {
	case rec == nil:
		return observe
	case observe == nil:
		return rec.ObserveRequest
	}
	return func(endpoint string, status int, elapsed time.Duration) {
		observe(endpoint, status, elapsed)
		rec.ObserveRequest(endpoint, status, elapsed)
	}
}

func closeQuietly(c io.Closer) {
	_ = c.Close()
}
