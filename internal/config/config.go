// Package config defines the flag plumbing and runtime options shared by the
// hubben commands, translating Cobra/Viper flag values into a strongly typed
// struct that the API client, the portal and the terminal browser consume.
package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
)

// Options holds the backend connection and cache settings.
type Options struct {
	BackendURL string
	Timeout    time.Duration
	Retries    int
	CacheDB    string
	CacheTTL   time.Duration
}

// ServeOptions holds settings for the web portal.
type ServeOptions struct {
	ListenAddr      string
	ShutdownTimeout time.Duration
	LiveFilter      bool
}

const (
	DefaultBackendURL = "http://localhost:8000"
	DefaultListenAddr = "localhost:8080"
)

// NewOptions returns Options with defaults applied.
func NewOptions() *Options {
	return &Options{
		BackendURL: DefaultBackendURL,
		Timeout:    15 * time.Second,
		Retries:    2,
	}
}

// NewServeOptions returns ServeOptions with defaults applied.
func NewServeOptions() *ServeOptions {
	return &ServeOptions{
		ListenAddr:      DefaultListenAddr,
		ShutdownTimeout: 3 * time.Second,
		LiveFilter:      true,
	}
}

// BindFlags attaches backend flags to fs and returns their names.
func (o *Options) BindFlags(fs *pflag.FlagSet) []string {
	fs.StringVar(&o.BackendURL, "backend", o.BackendURL, "Base URL of the Hubben backend API")
	fs.DurationVar(&o.Timeout, "timeout", o.Timeout, "Per-request timeout including retries (0 disables)")
	fs.IntVar(&o.Retries, "retries", o.Retries, "Retries for failed GET requests (transport errors and 5xx)")
	fs.StringVar(&o.CacheDB, "cache-db", o.CacheDB, "Path to a SQLite response cache (empty disables caching)")
	fs.DurationVar(&o.CacheTTL, "cache-ttl", o.CacheTTL, "Serve cached responses younger than this without asking the backend")
	return []string{"backend", "timeout", "retries", "cache-db", "cache-ttl"}
}

// BindFlags attaches portal flags to fs and returns their names.
func (o *ServeOptions) BindFlags(fs *pflag.FlagSet) []string {
	fs.StringVarP(&o.ListenAddr, "listen", "l", o.ListenAddr, "Address the portal listens on")
	fs.DurationVar(&o.ShutdownTimeout, "shutdown-timeout", o.ShutdownTimeout, "Grace period for in-flight requests on shutdown")
	fs.BoolVar(&o.LiveFilter, "live-filter", o.LiveFilter, "Filter reports on every keystroke over a websocket")
	return []string{"listen", "shutdown-timeout", "live-filter"}
}

// Validate normalises and checks the options.
func (o *Options) Validate() error {
	o.BackendURL = strings.TrimSpace(o.BackendURL)
	if o.BackendURL == "" {
		return fmt.Errorf("--backend is required")
	}
	u, err := url.Parse(o.BackendURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("--backend must be an http(s) URL, got %q", o.BackendURL)
	}
	if o.Timeout < 0 {
		return fmt.Errorf("--timeout must be >= 0")
	}
	if o.Retries < 0 {
		return fmt.Errorf("--retries must be >= 0")
	}
	if o.CacheTTL < 0 {
		return fmt.Errorf("--cache-ttl must be >= 0")
	}
	o.CacheDB = strings.TrimSpace(o.CacheDB)
	if o.CacheDB != "" {
		expanded, err := homedir.Expand(o.CacheDB)
		if err != nil {
			return fmt.Errorf("expand --cache-db: %w", err)
		}
		o.CacheDB = expanded
	}
	if o.CacheTTL > 0 && o.CacheDB == "" {
		return fmt.Errorf("--cache-ttl requires --cache-db")
	}
	return nil
}

// Validate checks the portal options.
func (o *ServeOptions) Validate() error {
	o.ListenAddr = strings.TrimSpace(o.ListenAddr)
	if o.ListenAddr == "" {
		return fmt.Errorf("--listen is required")
	}
	if _, _, err := net.SplitHostPort(o.ListenAddr); err != nil {
		return fmt.Errorf("--listen %q: %w", o.ListenAddr, err)
	}
	if o.ShutdownTimeout <= 0 {
		return fmt.Errorf("--shutdown-timeout must be > 0")
	}
	return nil
}
