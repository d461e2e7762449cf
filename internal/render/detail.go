package render

import (
	"github.com/example/hubben/internal/view"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DetailPage renders the report page.
func DetailPage(st view.DetailState) *html.Node {
	title := st.Title
	if title == "" {
		title = view.LoadingText
	}

	bannerClass := "banner"
	if !st.Banner {
		bannerClass += " hidden"
	}
	banner := textEl(atom.Div, view.SmallNBannerText,
		attr("id", "small-n-banner"), attr("class", bannerClass), attr("role", "status"))
	if !st.Banner {
		banner.Attr = append(banner.Attr, attr("hidden", ""))
	}

	form := add(el(atom.Form, attr("method", "get"), attr("action", view.ReportPagePath)),
		el(atom.Input, attr("type", "hidden"), attr("name", "slug"), attr("value", st.Slug)),
		add(el(atom.Label, attr("for", "kommun-input")), text("Kommun")),
		el(atom.Input,
			attr("id", "kommun-input"),
			attr("type", "text"),
			attr("name", "kommun"),
			attr("value", st.RegionField),
		),
		textEl(atom.Button, "Visa",
			attr("id", "kommun-submit"), attr("type", "submit"), attr("name", "submit"), attr("value", "1")),
	)

	blocks := el(atom.Div, attr("id", "report-blocks"))
	for _, b := range st.Blocks {
		blocks.AppendChild(textEl(atom.Div, b.Content, attr("class", "card block-"+b.Type)))
	}
	curated := el(atom.Ul, attr("id", "curated-texts"))
	for _, c := range st.Curated {
		curated.AppendChild(textEl(atom.Li, c))
	}

	var footer *html.Node
	if st.DataVersion != "" {
		footer = add(el(atom.Footer),
			textEl(atom.Small, "Dataversion: "+st.DataVersion, attr("id", "report-version")))
	}

	return document(title, nil,
		add(el(atom.Header),
			textEl(atom.A, "← Till startsidan", attr("href", "/ui/")),
			textEl(atom.H1, title, attr("id", "report-title")),
			textEl(atom.P, st.Subtitle, attr("id", "report-subtitle")),
		),
		add(el(atom.Main),
			form,
			alert("report-error", st.Error),
			banner,
			textEl(atom.P, st.TotalLine, attr("id", "report-total")),
			blocks,
			textEl(atom.H2, "Röster från föräldrar"),
			curated,
		),
		footer,
	)
}
