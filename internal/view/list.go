// File: internal/view/list.go
// Brief: News and report list view model with slug filtering.

package view

import (
	"context"
	"net/url"
	"strings"

	"github.com/example/hubben/internal/api"
	"golang.org/x/text/cases"
)

// ReportPagePath is where report links point.
const ReportPagePath = "/ui/report.html"

// NewsLoaded carries a successful GET /public/news.
type NewsLoaded struct{ Items []api.NewsItem }

// NewsFailed carries a failed GET /public/news.
type NewsFailed struct{ Err error }

// ReportsLoaded carries a successful GET /public/reports.
type ReportsLoaded struct{ Reports []api.Report }

// ReportsFailed carries a failed GET /public/reports.
type ReportsFailed struct{ Err error }

// FilterChanged is sent on every edit of the report filter input.
type FilterChanged struct{ Text string }

// List is the news and reports page. The zero value is not usable; call NewList.
type List struct {
	news       []api.NewsItem
	newsLoaded bool
	newsErr    error

	// reports is replaced wholesale by ReportsLoaded and read only by State.
	reports       []api.Report
	reportsLoaded bool
	reportsErr    error

	filter string
}

// NewList returns an empty list view with no filter.
func NewList() *List {
	return &List{reports: []api.Report{}}
}

// Init returns the two initial fetches. They are independent and may run
// concurrently.
func (l *List) Init() []Cmd {
	return []Cmd{FetchNews, FetchReports}
}

// FetchNews loads the news list.
func FetchNews(ctx context.Context, f Fetcher) Msg {
	items, err := f.ListNews(ctx)
	if err != nil {
		return NewsFailed{Err: err}
	}
	return NewsLoaded{Items: items}
}

// FetchReports loads the report list.
func FetchReports(ctx context.Context, f Fetcher) Msg {
	reports, err := f.ListReports(ctx)
	if err != nil {
		return ReportsFailed{Err: err}
	}
	return ReportsLoaded{Reports: reports}
}

// Update applies msg. Unknown messages are ignored.
func (l *List) Update(msg Msg) {
	switch msg := msg.(type) {
	case NewsLoaded:
		l.news = append([]api.NewsItem(nil), msg.Items...)
		l.newsLoaded = true
		l.newsErr = nil
	case NewsFailed:
		l.newsErr = msg.Err
	case ReportsLoaded:
		l.reports = append([]api.Report{}, msg.Reports...)
		l.reportsLoaded = true
		l.reportsErr = nil
	case ReportsFailed:
		l.reportsErr = msg.Err
	case FilterChanged:
		l.filter = msg.Text
	}
}

// Filter returns the current filter text.
func (l *List) Filter() string {
	return l.filter
}

// ListState is what a front-end renders for the list page.
type ListState struct {
	News    NewsSection
	Reports ReportsSection
}

// NewsSection is the rendered news region.
type NewsSection struct {
	Loaded bool
	// Placeholder is set when the backend returned no news.
	Placeholder bool
	Cards       []NewsCard
	Error       string
}

// NewsCard is one rendered news entry.
type NewsCard struct {
	Title string
	Body  string
}

// ReportsSection is the rendered report region.
type ReportsSection struct {
	Loaded bool
	Filter string
	Links  []ReportLink
	// Total counts fetched reports before filtering.
	Total int
	Error string
}

// ReportLink is one rendered report entry.
type ReportLink struct {
	Slug string
	Href string
}

// State derives the render state from the stored data and filter.
func (l *List) State() ListState {
	var st ListState

	st.News.Loaded = l.newsLoaded
	st.News.Error = errorText(NewsErrorPrefix, l.newsErr)
	if l.newsLoaded {
		if len(l.news) == 0 {
			st.News.Placeholder = true
		}
		for _, item := range l.news {
			st.News.Cards = append(st.News.Cards, NewsCard{Title: item.Title, Body: item.Body})
		}
	}

	st.Reports.Loaded = l.reportsLoaded
	st.Reports.Filter = l.filter
	st.Reports.Total = len(l.reports)
	st.Reports.Error = errorText(ReportErrorPrefix, l.reportsErr)
	for _, r := range FilterReports(l.reports, l.filter) {
		slug := r.Slug()
		st.Reports.Links = append(st.Reports.Links, ReportLink{Slug: slug, Href: ReportHref(slug)})
	}
	return st
}

// FilterReports keeps reports whose slug contains text, ignoring case.
// Empty text keeps everything. Source order is preserved.
func FilterReports(reports []api.Report, text string) []api.Report {
	// Casers carry state, so each call gets its own.
	fold := cases.Fold()
	needle := fold.String(text)
	out := make([]api.Report, 0, len(reports))
	for _, r := range reports {
		if needle == "" || strings.Contains(fold.String(r.Slug()), needle) {
			out = append(out, r)
		}
	}
	return out
}

// ReportHref links to the detail page for slug.
func ReportHref(slug string) string {
	return ReportPagePath + "?slug=" + url.QueryEscape(slug)
}
