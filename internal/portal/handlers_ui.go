package portal

import (
	"bytes"
	"context"
	"net/http"

	"github.com/example/hubben/internal/api"
	"github.com/example/hubben/internal/render"
	"github.com/example/hubben/internal/view"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	l := view.NewList()
	l.Update(view.FilterChanged{Text: r.URL.Query().Get("filter")})
	for _, msg := range s.runAll(r.Context(), l.Init()) {
		l.Update(msg)
	}

	opts := render.ListOptions{}
	if s.cfg.LiveFilter {
		opts.LiveFilterURL = LiveFilterPath
	}
	s.writePage(w, r, http.StatusOK, render.ListPage(l.State(), opts))
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	d := view.NewDetail(q)
	cmd := d.Init()
	if q.Get("submit") != "" {
		// Form submits carry the raw field value; the superseded initial
		// command is discarded unrun.
		cmd = d.Update(view.SubmitRegion{Text: q.Get("kommun")})
	}

	status := http.StatusOK
	if msg := view.Run(r.Context(), s.fetch, cmd); msg != nil {
		if failed, ok := msg.(view.ReportFailed); ok {
			status = http.StatusBadGateway
			if api.IsNotFound(failed.Err) {
				status = http.StatusNotFound
			}
			s.log.Info("report fetch failed", "slug", d.Slug(), "error", failed.Err.Error(), "requestID", requestIDFrom(r.Context()))
		}
		d.Update(msg)
	}
	s.writePage(w, r, status, render.DetailPage(d.State()))
}

// runAll executes independent view commands concurrently and returns their
// messages in command order.
func (s *Server) runAll(ctx context.Context, cmds []view.Cmd) []view.Msg {
	msgs := make([]view.Msg, len(cmds))
	var g errgroup.Group
	for i, cmd := range cmds {
		g.Go(func() error {
			msgs[i] = view.Run(ctx, s.fetch, cmd)
			return nil
		})
	}
	_ = g.Wait()
	return msgs
}

func (s *Server) writePage(w http.ResponseWriter, r *http.Request, status int, page *html.Node) {
	var buf bytes.Buffer
	if err := render.Write(&buf, page); err != nil {
		s.log.Error(err, "render page", "path", r.URL.Path)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
