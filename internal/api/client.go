// File: internal/api/client.go
// Brief: HTTP client for the public news and report endpoints.

// Package api talks to the Hubben backend. It exposes the three read-only
// endpoints the views need and turns every failure into an explicit error:
// transport problems, non-2xx statuses and malformed bodies.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
)

const (
	NewsPath    = "/public/news"
	ReportsPath = "/public/reports"

	maxBodyBytes   = 8 << 20
	maxErrorBody   = 512
	defaultTimeout = 15 * time.Second
)

// Cache stores raw response bodies keyed by backend URL plus request path and
// query.
type Cache interface {
	Get(ctx context.Context, key string) (body []byte, storedAt time.Time, ok bool, err error)
	Put(ctx context.Context, key string, body []byte) error
}

// Observer is called once per request, after retries are exhausted or a
// response is accepted; elapsed spans every attempt. Status is 0 when no
// response was received.
type Observer func(endpoint string, status int, elapsed time.Duration)

// Options configures a Client.
type Options struct {
	BaseURL string
	// Timeout bounds one call including retries. Zero disables it.
	Timeout      time.Duration
	Retries      int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Logger       logr.Logger

	Cache    Cache
	CacheTTL time.Duration
	// OfflineFallback serves any cached body, regardless of age, when the
	// backend is unreachable or answers 5xx.
	OfflineFallback bool

	Observer Observer
}

// DefaultOptions returns the options used by the CLI when nothing is set.
func DefaultOptions() Options {
	return Options{
		Timeout:      defaultTimeout,
		Retries:      2,
		RetryWaitMin: 200 * time.Millisecond,
		RetryWaitMax: 2 * time.Second,
		Logger:       logr.Discard(),
	}
}

// Client fetches news and reports from the backend.
type Client struct {
	base     string
	http     *http.Client
	log      logr.Logger
	cache    Cache
	cacheTTL time.Duration
	fallback bool
	observe  Observer
	now      func() time.Time
}

// New validates the options and builds a Client.
func New(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		return nil, errors.New("backend url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Wrap(err, "parse backend url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend url %q must use http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("backend url %q has no host", raw)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return nil, fmt.Errorf("backend url %q must not carry a query or fragment", raw)
	}
	if opts.Retries < 0 {
		return nil, fmt.Errorf("retries must be >= 0 (got %d)", opts.Retries)
	}
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.Retries
	if opts.RetryWaitMin > 0 {
		rc.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		rc.RetryWaitMax = opts.RetryWaitMax
	}
	rc.Logger = retryLogger{log: log.WithName("http")}
	// Hand the last response back instead of an opaque "giving up" error so
	// the status can be reported.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	hc := rc.StandardClient()
	hc.Timeout = opts.Timeout

	return &Client{
		base:     strings.TrimRight(u.String(), "/"),
		http:     hc,
		log:      log,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		fallback: opts.OfflineFallback,
		observe:  opts.Observer,
		now:      time.Now,
	}, nil
}

// BaseURL returns the normalised backend URL.
func (c *Client) BaseURL() string {
	return c.base
}

// ListNews fetches GET /public/news.
func (c *Client) ListNews(ctx context.Context) ([]NewsItem, error) {
	var env newsEnvelope
	if err := c.get(ctx, "news", NewsPath, &env); err != nil {
		return nil, err
	}
	if env.News == nil {
		return []NewsItem{}, nil
	}
	return env.News, nil
}

// ListReports fetches GET /public/reports.
func (c *Client) ListReports(ctx context.Context) ([]Report, error) {
	var env reportsEnvelope
	if err := c.get(ctx, "reports", ReportsPath, &env); err != nil {
		return nil, err
	}
	if env.Reports == nil {
		return []Report{}, nil
	}
	return env.Reports, nil
}

// ReportPath builds /reports/{slug}?kommun={kommun} with both parts escaped.
func ReportPath(slug, kommun string) string {
	q := url.Values{}
	q.Set("kommun", kommun)
	return ReportPathPrefix + url.PathEscape(slug) + "?" + q.Encode()
}

// GetReport fetches GET /reports/{slug}?kommun={kommun}.
func (c *Client) GetReport(ctx context.Context, slug, kommun string) (ReportPayload, error) {
	if slug == "" {
		return ReportPayload{}, errors.New("report slug is required")
	}
	var env reportEnvelope
	if err := c.get(ctx, "report", ReportPath(slug, kommun), &env); err != nil {
		return ReportPayload{}, err
	}
	if env.Payload == nil {
		return ReportPayload{}, &DecodeError{Endpoint: ReportPathPrefix + slug, Err: errMissingPayload}
	}
	p := *env.Payload
	if p.Blocks == nil {
		p.Blocks = []Block{}
	}
	if p.CuratedTexts == nil {
		p.CuratedTexts = []string{}
	}
	return p, nil
}

func (c *Client) get(ctx context.Context, endpoint, ref string, out any) error {
	key := c.cacheKey(ref)
	if c.cache != nil && c.cacheTTL > 0 {
		body, storedAt, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			c.log.V(1).Info("cache lookup failed", "key", key, "error", err.Error())
		} else if ok && c.now().Sub(storedAt) <= c.cacheTTL {
			c.log.V(1).Info("serving fresh cache entry", "key", key, "age", c.now().Sub(storedAt).String())
			return decodeBody(ref, body, out)
		}
	}

	body, err := c.fetch(ctx, endpoint, ref)
	if err != nil {
		if c.fallback && c.cache != nil && isUnavailable(err) {
			if cached, storedAt, ok, cerr := c.cache.Get(ctx, key); cerr == nil && ok {
				c.log.Info("backend unavailable, serving cached copy", "key", key, "storedAt", storedAt.Format(time.RFC3339), "error", err.Error())
				return decodeBody(ref, cached, out)
			}
		}
		return err
	}
	if err := decodeBody(ref, body, out); err != nil {
		return err
	}
	if c.cache != nil {
		if err := c.cache.Put(ctx, key, body); err != nil {
			c.log.V(1).Info("cache store failed", "key", key, "error", err.Error())
		}
	}
	return nil
}

// cacheKey scopes ref to the backend so one cache file can serve several.
func (c *Client) cacheKey(ref string) string {
	return c.base + ref
}

func (c *Client) fetch(ctx context.Context, endpoint, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+ref, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "build request for %s", ref)
	}
	req.Header.Set("Accept", "application/json")

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.record(endpoint, 0, start)
		return nil, errors.Wrapf(err, "GET %s", ref)
	}
	defer resp.Body.Close()
	c.record(endpoint, resp.StatusCode, start)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrapf(err, "read %s response", ref)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := body
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, &StatusError{Endpoint: ref, StatusCode: resp.StatusCode, Body: string(snippet)}
	}
	return body, nil
}

func (c *Client) record(endpoint string, status int, start time.Time) {
	if c.observe == nil {
		return
	}
	c.observe(endpoint, status, c.now().Sub(start))
}

func decodeBody(ref string, body []byte, out any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return &DecodeError{Endpoint: ref, Err: io.ErrUnexpectedEOF}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &DecodeError{Endpoint: ref, Err: err}
	}
	return nil
}

func isUnavailable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500
	}
	var de *DecodeError
	return !errors.As(err, &de)
}

// retryLogger adapts logr to retryablehttp.LeveledLogger.
type retryLogger struct {
	log logr.Logger
}

func (l retryLogger) Error(msg string, kv ...interface{}) {
	l.log.Error(nil, msg, kv...)
}

func (l retryLogger) Info(msg string, kv ...interface{}) {
	l.log.V(1).Info(msg, kv...)
}

func (l retryLogger) Debug(msg string, kv ...interface{}) {
	l.log.V(2).Info(msg, kv...)
}

func (l retryLogger) Warn(msg string, kv ...interface{}) {
	l.log.Info(msg, kv...)
}
