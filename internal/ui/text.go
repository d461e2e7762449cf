package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/example/hubben/internal/view"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

const defaultTextWidth = 80

// TextOptions controls plain terminal output.
type TextOptions struct {
	Width int
	Color bool
	// Markdown renders report blocks through glamour.
	Markdown bool
}

// TextRenderer prints view state as terminal text.
type TextRenderer struct {
	out  io.Writer
	opts TextOptions
	md   *glamour.TermRenderer

	heading *color.Color
	muted   *color.Color
	warn    *color.Color
	fail    *color.Color
	link    *color.Color
}

// NewTextRenderer builds a renderer writing to out.
func NewTextRenderer(out io.Writer, opts TextOptions) (*TextRenderer, error) {
	if opts.Width <= 0 {
		opts.Width = defaultTextWidth
	}
	r := &TextRenderer{
		out:     out,
		opts:    opts,
		heading: color.New(color.Bold, color.FgCyan),
		muted:   color.New(color.Faint),
		warn:    color.New(color.FgYellow, color.Bold),
		fail:    color.New(color.FgRed),
		link:    color.New(color.FgBlue),
	}
	for _, c := range []*color.Color{r.heading, r.muted, r.warn, r.fail, r.link} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	if opts.Markdown {
		style := glamour.WithStandardStyle("notty")
		if opts.Color {
			style = glamour.WithAutoStyle()
		}
		md, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(opts.Width))
		if err != nil {
			return nil, fmt.Errorf("markdown renderer: %w", err)
		}
		r.md = md
	}
	return r, nil
}

// News prints the news section.
func (r *TextRenderer) News(st view.NewsSection) {
	r.heading.Fprintln(r.out, "Nyheter")
	if st.Error != "" {
		r.fail.Fprintln(r.out, st.Error)
	}
	if st.Placeholder {
		r.muted.Fprintln(r.out, "  "+view.NoNewsText)
	}
	for _, card := range st.Cards {
		fmt.Fprintf(r.out, "  • %s\n", trimToWidth(card.Title, r.opts.Width-4))
		for _, line := range wrap(card.Body, r.opts.Width-4) {
			fmt.Fprintf(r.out, "    %s\n", line)
		}
	}
}

// Reports prints the (filtered) report list with one slug per row.
func (r *TextRenderer) Reports(st view.ReportsSection) {
	title := "Rapporter"
	if st.Filter != "" {
		title = fmt.Sprintf("Rapporter (%d av %d, filter %q)", len(st.Links), st.Total, st.Filter)
	}
	r.heading.Fprintln(r.out, title)
	if st.Error != "" {
		r.fail.Fprintln(r.out, st.Error)
	}
	if st.Loaded && st.Total > 0 && len(st.Links) == 0 {
		r.muted.Fprintln(r.out, "  "+view.NoReportsText)
		return
	}
	col := 0
	for _, l := range st.Links {
		if w := runewidth.StringWidth(l.Slug); w > col {
			col = w
		}
	}
	if limit := r.opts.Width / 2; col > limit {
		col = limit
	}
	for _, l := range st.Links {
		slug := runewidth.FillRight(trimToWidth(l.Slug, col), col)
		fmt.Fprintf(r.out, "  %s  %s\n", slug, r.link.Sprint(l.Href))
	}
}

// Report prints the report page.
func (r *TextRenderer) Report(st view.DetailState) error {
	r.heading.Fprintln(r.out, st.Title)
	if st.Subtitle != "" {
		r.muted.Fprintln(r.out, st.Subtitle)
	}
	if st.Error != "" {
		r.fail.Fprintln(r.out, st.Error)
	}
	if st.Missing || !st.Loaded {
		return nil
	}
	fmt.Fprintln(r.out)
	if st.Banner {
		r.warn.Fprintln(r.out, "! "+view.SmallNBannerText)
	}
	fmt.Fprintln(r.out, st.TotalLine)
	for _, b := range st.Blocks {
		fmt.Fprintln(r.out)
		if err := r.block(b); err != nil {
			return err
		}
	}
	if len(st.Curated) > 0 {
		fmt.Fprintln(r.out)
		r.heading.Fprintln(r.out, "Röster från föräldrar")
		for _, c := range st.Curated {
			lines := wrap(c, r.opts.Width-4)
			for i, line := range lines {
				prefix := "    "
				if i == 0 {
					prefix = "  – "
				}
				fmt.Fprintln(r.out, prefix+line)
			}
		}
	}
	if st.DataVersion != "" {
		fmt.Fprintln(r.out)
		r.muted.Fprintln(r.out, "Dataversion: "+st.DataVersion)
	}
	return nil
}

func (r *TextRenderer) block(b view.BlockItem) error {
	if r.md == nil {
		for _, line := range wrap(b.Content, r.opts.Width) {
			fmt.Fprintln(r.out, line)
		}
		return nil
	}
	out, err := r.md.Render(b.Content)
	if err != nil {
		return fmt.Errorf("render %s block: %w", b.Type, err)
	}
	_, err = io.WriteString(r.out, strings.TrimRight(out, "\n")+"\n")
	return err
}

// trimToWidth cuts s to width display columns, marking the cut with an
// ellipsis.
func trimToWidth(s string, width int) string {
	s = strings.TrimSpace(s)
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return runewidth.Truncate(s, width, "…")
}

// wrap breaks s into lines of at most width display columns on word
// boundaries. Words wider than width get their own line.
func wrap(s string, width int) []string {
	if width <= 0 {
		width = defaultTextWidth
	}
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			continue
		}
		line := words[0]
		w := runewidth.StringWidth(line)
		for _, word := range words[1:] {
			ww := runewidth.StringWidth(word)
			if w+1+ww > width {
				lines = append(lines, line)
				line, w = word, ww
				continue
			}
			line += " " + word
			w += 1 + ww
		}
		lines = append(lines, line)
	}
	return lines
}
