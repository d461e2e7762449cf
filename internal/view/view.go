// Package view holds the two page view models. They own all page state and
// change only through Update, so front-ends (web portal, terminal browser,
// tests) drive them with messages and render the resulting state.
package view

import (
	"context"

	"github.com/example/hubben/internal/api"
)

// Fetcher is the subset of the backend client the views need.
type Fetcher interface {
	ListNews(ctx context.Context) ([]api.NewsItem, error)
	ListReports(ctx context.Context) ([]api.Report, error)
	GetReport(ctx context.Context, slug, kommun string) (api.ReportPayload, error)
}

// Msg is any input a view accepts.
type Msg interface{}

// Cmd performs I/O on behalf of a view and returns the message to feed back
// into Update. A nil Cmd means nothing to do.
type Cmd func(ctx context.Context, f Fetcher) Msg

// Run executes cmd and returns its message, or nil when cmd is nil.
func Run(ctx context.Context, f Fetcher, cmd Cmd) Msg {
	if cmd == nil {
		return nil
	}
	return cmd(ctx, f)
}

// Placeholder and label texts shown in both front-ends.
const (
	NoNewsText        = "Inga nyheter än."
	NoReportsText     = "Inga rapporter matchar filtret."
	MissingTitle      = "Rapport saknas"
	MissingSubtitle   = "Ange rapport-id och kommun för att läsa rapporten."
	SmallNBannerText  = "Underlaget är för litet för att visa exakta siffror."
	LoadingText       = "Laddar…"
	NewsErrorPrefix   = "Kunde inte hämta nyheter"
	ReportErrorPrefix = "Kunde inte hämta rapporter"
	DetailErrorPrefix = "Kunde inte hämta rapporten"
)

func errorText(prefix string, err error) string {
	if err == nil {
		return ""
	}
	return prefix + ": " + err.Error()
}
