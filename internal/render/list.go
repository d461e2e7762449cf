package render

import (
	"github.com/example/hubben/internal/view"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ListOptions tunes the list page.
type ListOptions struct {
	// LiveFilterURL, when set, is the websocket endpoint the filter input
	// streams keystrokes to.
	LiveFilterURL string
}

// ListPage renders the news and reports page.
func ListPage(st view.ListState, opts ListOptions) *html.Node {
	var scripts []string
	if opts.LiveFilterURL != "" {
		scripts = append(scripts, LiveScriptPath)
	}
	return document("NPF Hubben", scripts,
		add(el(atom.Header), textEl(atom.H1, "NPF Hubben")),
		add(el(atom.Main),
			newsSection(st.News),
			reportsSection(st.Reports, opts),
		),
	)
}

func newsSection(st view.NewsSection) *html.Node {
	list := el(atom.Ul, attr("id", "news-list"))
	switch {
	case st.Placeholder:
		list.AppendChild(textEl(atom.Li, view.NoNewsText))
	default:
		for _, card := range st.Cards {
			list.AppendChild(NewsCard(card))
		}
	}
	return add(el(atom.Section, attr("id", "news")),
		textEl(atom.H2, "Nyheter"),
		alert("news-error", st.Error),
		list,
	)
}

// NewsCard renders one news entry as a card list item.
func NewsCard(card view.NewsCard) *html.Node {
	return add(el(atom.Li, attr("class", "card")),
		textEl(atom.Strong, card.Title),
		textEl(atom.P, card.Body),
	)
}

func reportsSection(st view.ReportsSection, opts ListOptions) *html.Node {
	input := el(atom.Input,
		attr("id", "report-filter"),
		attr("type", "search"),
		attr("name", "filter"),
		attr("value", st.Filter),
		attr("placeholder", "Filtrera rapporter"),
		attr("autocomplete", "off"),
	)
	if opts.LiveFilterURL != "" {
		input.Attr = append(input.Attr, attr("data-live", opts.LiveFilterURL))
	}
	form := add(el(atom.Form, attr("method", "get"), attr("action", "/ui/"), attr("role", "search")),
		add(el(atom.Label, attr("for", "report-filter")), text("Sök rapport")),
		input,
		textEl(atom.Button, "Filtrera", attr("type", "submit")),
	)

	list := add(el(atom.Ul, attr("id", "report-list")), ReportItems(st.Links)...)

	var empty *html.Node
	if st.Loaded && st.Total > 0 && len(st.Links) == 0 {
		empty = textEl(atom.P, view.NoReportsText, attr("id", "report-empty"))
	}
	return add(el(atom.Section, attr("id", "reports")),
		textEl(atom.H2, "Rapporter"),
		form,
		alert("report-error", st.Error),
		list,
		empty,
	)
}

// ReportItems renders report links as list items.
func ReportItems(links []view.ReportLink) []*html.Node {
	items := make([]*html.Node, 0, len(links))
	for _, l := range links {
		a := textEl(atom.A, l.Slug, attr("class", "report-link"), attr("href", l.Href))
		items = append(items, add(el(atom.Li), a))
	}
	return items
}
