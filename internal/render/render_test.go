package render

import (
	"net/url"
	"strings"
	"testing"

	"github.com/example/hubben/internal/api"
	"github.com/example/hubben/internal/view"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"
)

func parse(t *testing.T, n *html.Node) *html.Node {
	t.Helper()
	out, err := String(n)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	doc, err := html.Parse(strings.NewReader(out))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func byID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode && attrOf(n, "id") == id {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := byID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func attrOf(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func elementChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

func mustByID(t *testing.T, doc *html.Node, id string) *html.Node {
	t.Helper()
	n := byID(doc, id)
	if n == nil {
		t.Fatalf("element #%s not found", id)
	}
	return n
}

func listState(news []api.NewsItem, reports []api.Report, filter string) view.ListState {
	l := view.NewList()
	l.Update(view.NewsLoaded{Items: news})
	l.Update(view.ReportsLoaded{Reports: reports})
	l.Update(view.FilterChanged{Text: filter})
	return l.State()
}

func TestListPageEmptyNewsHasSinglePlaceholder(t *testing.T) {
	t.Parallel()
	doc := parse(t, ListPage(listState(nil, nil, ""), ListOptions{}))
	items := elementChildren(mustByID(t, doc, "news-list"))
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if textOf(items[0]) != view.NoNewsText || attrOf(items[0], "class") == "card" {
		t.Fatalf("unexpected placeholder %q class=%q", textOf(items[0]), attrOf(items[0], "class"))
	}
}

func TestListPageRendersNewsCardsAsText(t *testing.T) {
	t.Parallel()
	news := []api.NewsItem{
		{Title: "Hej", Body: "Välkommen"},
		{Title: "<img src=x onerror=alert(1)>", Body: "<b>fet</b>"},
	}
	doc := parse(t, ListPage(listState(news, nil, ""), ListOptions{}))
	items := elementChildren(mustByID(t, doc, "news-list"))
	if len(items) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(items))
	}
	for i, item := range items {
		if attrOf(item, "class") != "card" {
			t.Fatalf("item %d is not a card", i)
		}
		if got := textOf(item); got != news[i].Title+news[i].Body {
			t.Fatalf("item %d text = %q", i, got)
		}
	}
	// Markup in backend fields must stay text: no img or b elements.
	for _, child := range elementChildren(items[1]) {
		for c := child.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				t.Fatalf("backend markup became element <%s>", c.Data)
			}
		}
	}
}

func TestListPageReportLinks(t *testing.T) {
	t.Parallel()
	reports := []api.Report{{CanonicalURL: "/reports/Alpha"}, {CanonicalURL: "/reports/beta"}, {CanonicalURL: "/reports/år 2024"}}
	doc := parse(t, ListPage(listState(nil, reports, ""), ListOptions{}))
	items := elementChildren(mustByID(t, doc, "report-list"))
	var slugs []string
	for _, li := range items {
		a := elementChildren(li)[0]
		slug := textOf(a)
		slugs = append(slugs, slug)
		u, err := url.Parse(attrOf(a, "href"))
		if err != nil {
			t.Fatalf("bad href: %v", err)
		}
		if u.Path != view.ReportPagePath || u.Query().Get("slug") != slug {
			t.Fatalf("href %q does not carry slug %q", attrOf(a, "href"), slug)
		}
	}
	if diff := cmp.Diff([]string{"Alpha", "beta", "år 2024"}, slugs); diff != "" {
		t.Fatalf("slugs mismatch (-want +got):\n%s", diff)
	}
}

func TestListPageFilterKeepsOrderAndShowsEmptyNotice(t *testing.T) {
	t.Parallel()
	reports := []api.Report{{CanonicalURL: "/reports/gamma"}, {CanonicalURL: "/reports/Echo"}, {CanonicalURL: "/reports/Alpha"}}
	doc := parse(t, ListPage(listState(nil, reports, "a"), ListOptions{}))
	var got []string
	for _, li := range elementChildren(mustByID(t, doc, "report-list")) {
		got = append(got, textOf(li))
	}
	if diff := cmp.Diff([]string{"gamma", "Alpha"}, got); diff != "" {
		t.Fatalf("filtered mismatch (-want +got):\n%s", diff)
	}
	if attrOf(mustByID(t, doc, "report-filter"), "value") != "a" {
		t.Fatalf("filter input lost its value")
	}
	if byID(doc, "report-empty") != nil {
		t.Fatalf("empty notice shown while results exist")
	}

	doc = parse(t, ListPage(listState(nil, reports, "zzz"), ListOptions{}))
	if n := len(elementChildren(mustByID(t, doc, "report-list"))); n != 0 {
		t.Fatalf("expected no items, got %d", n)
	}
	mustByID(t, doc, "report-empty")
}

func TestListPageLiveFilterWiring(t *testing.T) {
	t.Parallel()
	doc := parse(t, ListPage(listState(nil, nil, ""), ListOptions{LiveFilterURL: "/ui/ws/reports"}))
	if got := attrOf(mustByID(t, doc, "report-filter"), "data-live"); got != "/ui/ws/reports" {
		t.Fatalf("data-live = %q", got)
	}
	out, _ := String(ListPage(listState(nil, nil, ""), ListOptions{LiveFilterURL: "/ui/ws/reports"}))
	if !strings.Contains(out, LiveScriptPath) {
		t.Fatalf("live script not linked")
	}
}

func TestListPageErrorSlots(t *testing.T) {
	t.Parallel()
	st := view.ListState{
		News:    view.NewsSection{Error: "Kunde inte hämta nyheter: boom"},
		Reports: view.ReportsSection{Error: "Kunde inte hämta rapporter: boom"},
	}
	doc := parse(t, ListPage(st, ListOptions{}))
	if attrOf(mustByID(t, doc, "news-error"), "role") != "alert" {
		t.Fatalf("news error is not an alert")
	}
	mustByID(t, doc, "report-error")
}

func loadedDetail(p api.ReportPayload) view.DetailState {
	d := view.NewDetailFor("abc", "Stad")
	d.Init()
	d.Update(view.ReportLoaded{Seq: 1, Kommun: "Stad", Payload: p})
	return d.State()
}

func TestDetailPageRendersPayload(t *testing.T) {
	t.Parallel()
	st := loadedDetail(api.ReportPayload{
		Kommun:          "Stad",
		SmallNBanner:    true,
		Metrics:         api.Metrics{Total: api.NewTotal(42)},
		Blocks:          []api.Block{{Content: "x"}},
		CuratedTexts:    []string{"y"},
		DataVersionHash: "h1",
	})
	doc := parse(t, DetailPage(st))

	if got := textOf(mustByID(t, doc, "report-title")); !strings.Contains(got, "abc") {
		t.Fatalf("title = %q", got)
	}
	if got := textOf(mustByID(t, doc, "report-subtitle")); !strings.Contains(got, "Stad") {
		t.Fatalf("subtitle = %q", got)
	}
	banner := mustByID(t, doc, "small-n-banner")
	if hasAttr(banner, "hidden") || strings.Contains(attrOf(banner, "class"), "hidden") {
		t.Fatalf("banner hidden although small_n_banner is true")
	}
	if got := textOf(mustByID(t, doc, "report-total")); !strings.Contains(got, "42") {
		t.Fatalf("total = %q", got)
	}
	blocks := elementChildren(mustByID(t, doc, "report-blocks"))
	if len(blocks) != 1 || textOf(blocks[0]) != "x" {
		t.Fatalf("blocks = %d", len(blocks))
	}
	curated := elementChildren(mustByID(t, doc, "curated-texts"))
	if len(curated) != 1 || textOf(curated[0]) != "y" {
		t.Fatalf("curated = %d", len(curated))
	}
	if got := attrOf(mustByID(t, doc, "kommun-input"), "value"); got != "Stad" {
		t.Fatalf("kommun input = %q", got)
	}
	mustByID(t, doc, "kommun-submit")
	mustByID(t, doc, "report-version")

	out, _ := String(DetailPage(st))
	if !strings.Contains(out, "<title>Rapport abc</title>") {
		t.Fatalf("document title not set:\n%s", out)
	}
}

func TestDetailPageHidesBannerAndShowsPlaceholder(t *testing.T) {
	t.Parallel()
	d := view.NewDetailFor("", "")
	d.Init()
	doc := parse(t, DetailPage(d.State()))
	if got := textOf(mustByID(t, doc, "report-title")); got != view.MissingTitle {
		t.Fatalf("title = %q", got)
	}
	if got := textOf(mustByID(t, doc, "report-subtitle")); got != view.MissingSubtitle {
		t.Fatalf("subtitle = %q", got)
	}
	if !hasAttr(mustByID(t, doc, "small-n-banner"), "hidden") {
		t.Fatalf("banner visible without payload")
	}
	if byID(doc, "report-version") != nil {
		t.Fatalf("version footer rendered without hash")
	}
}
