package portal

import (
	"net/http"
	"time"

	"github.com/example/hubben/internal/render"
	"github.com/example/hubben/internal/view"
	"github.com/gorilla/websocket"
)

const (
	liveReadLimit    = 4096
	liveWriteTimeout = 5 * time.Second
	liveIdleTimeout  = 10 * time.Minute
)

type liveFilterRequest struct {
	Filter string `json:"filter"`
}

type liveFilterResponse struct {
	HTML  string `json:"html"`
	Count int    `json:"count"`
	Total int    `json:"total"`
	Error string `json:"error,omitempty"`
}

// handleLiveFilter keeps one list view per connection. The report list is
// fetched once on connect; every filter message re-renders from that copy.
func (s *Server) handleLiveFilter(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.V(1).Info("websocket upgrade failed", "error", err.Error())
		return
	}
	defer conn.Close()
	defer s.track(conn)()

	l := view.NewList()
	l.Update(view.Run(r.Context(), s.fetch, view.FetchReports))

	conn.SetReadLimit(liveReadLimit)
	for {
		_ = conn.SetReadDeadline(time.Now().Add(liveIdleTimeout))
		var in liveFilterRequest
		if err := conn.ReadJSON(&in); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				s.log.V(1).Info("live filter session ended", "error", err.Error())
			}
			return
		}
		l.Update(view.FilterChanged{Text: in.Filter})
		st := l.State().Reports
		fragment, err := render.String(render.ReportItems(st.Links)...)
		if err != nil {
			s.log.Error(err, "render live filter fragment")
			return
		}
		_ = conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
		out := liveFilterResponse{HTML: fragment, Count: len(st.Links), Total: st.Total, Error: st.Error}
		if err := conn.WriteJSON(out); err != nil {
			return
		}
		s.metrics.liveFilterEvents.Inc()
	}
}
