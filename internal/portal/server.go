// Package portal serves the list and report pages as server-rendered HTML on
// top of the backend API, plus a websocket that filters the report list on
// every keystroke.
package portal

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/example/hubben/internal/view"
	"github.com/go-logr/logr"
	"github.com/gorilla/websocket"
)

// LiveFilterPath is the websocket endpoint for live report filtering.
const LiveFilterPath = "/ui/ws/reports"

// Config configures a Server.
type Config struct {
	ListenAddr      string
	LiveFilter      bool
	ShutdownTimeout time.Duration
	Logger          logr.Logger
	// Metrics may be shared with the API client observer; nil creates a
	// private registry.
	Metrics *Metrics
}

// Server is the portal HTTP server.
type Server struct {
	cfg     Config
	fetch   view.Fetcher
	log     logr.Logger
	metrics *Metrics

	httpServer *http.Server
	handler    http.Handler
	upgrader   websocket.Upgrader

	mu   sync.Mutex
	live map[*websocket.Conn]struct{}
}

// New builds a Server that reads from fetch.
func New(cfg Config, fetch view.Fetcher) (*Server, error) {
	if fetch == nil {
		return nil, fmt.Errorf("backend fetcher is required")
	}
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		return nil, fmt.Errorf("listen address is required")
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 3 * time.Second
	}
	log := cfg.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	m := cfg.Metrics
	if m == nil {
		m = NewMetrics()
	}

	s := &Server{
		cfg:     cfg,
		fetch:   fetch,
		log:     log,
		metrics: m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		live: make(map[*websocket.Conn]struct{}),
	}
	mux := http.NewServeMux()
	s.routes(mux)
	s.handler = s.middleware(mux)
	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
			return
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()
	s.log.Info("portal listening", "addr", ln.Addr().String(), "liveFilter", s.cfg.LiveFilter)
	err := s.httpServer.Serve(ln)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and closes live filter sessions.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for conn := range s.live {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(time.Second))
		_ = conn.Close()
	}
	s.mu.Unlock()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) track(conn *websocket.Conn) func() {
	s.mu.Lock()
	s.live[conn] = struct{}{}
	s.mu.Unlock()
	s.metrics.liveSessions.Inc()
	return func() {
		s.mu.Lock()
		delete(s.live, conn)
		s.mu.Unlock()
		s.metrics.liveSessions.Dec()
	}
}
