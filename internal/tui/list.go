package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/example/hubben/internal/view"
)

// listPage wraps view.List with a live filter input and a cursor.
type listPage struct {
	view      *view.List
	filter    textinput.Model
	filtering bool
	cursor    int
}

func newListPage() listPage {
	fi := textinput.New()
	fi.Placeholder = "Filtrera rapporter..."
	fi.Prompt = "/ "
	fi.CharLimit = 80
	fi.Width = 40
	return listPage{view: view.NewList(), filter: fi}
}

// update handles a key press. open is the slug to show when the user picks a
// report.
func (p listPage) update(msg tea.KeyMsg) (listPage, tea.Cmd, string) {
	if p.filtering {
		switch msg.Type {
		case tea.KeyEsc, tea.KeyEnter:
			p.filtering = false
			p.filter.Blur()
			return p, nil, ""
		}
		var cmd tea.Cmd
		p.filter, cmd = p.filter.Update(msg)
		// Every keystroke refilters.
		p.view.Update(view.FilterChanged{Text: p.filter.Value()})
		p.clampCursor()
		return p, cmd, ""
	}

	switch msg.String() {
	case "/":
		p.filtering = true
		cmd := p.filter.Focus()
		return p, cmd, ""
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.view.State().Reports.Links)-1 {
			p.cursor++
		}
	case "esc":
		p.filter.SetValue("")
		p.view.Update(view.FilterChanged{Text: ""})
		p.clampCursor()
	case "enter":
		links := p.view.State().Reports.Links
		if p.cursor < len(links) {
			return p, nil, links[p.cursor].Slug
		}
	}
	return p, nil, ""
}

func (p *listPage) clampCursor() {
	n := len(p.view.State().Reports.Links)
	if p.cursor >= n {
		p.cursor = n - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

func (p listPage) render(s Styles, width int) string {
	st := p.view.State()
	var b strings.Builder

	b.WriteString(s.Title.Render("NPF Hubben"))
	b.WriteString("\n")

	b.WriteString(s.Section.Render("Nyheter"))
	b.WriteString("\n")
	switch {
	case !st.News.Loaded && st.News.Error == "":
		b.WriteString(s.Muted.Render(view.LoadingText) + "\n")
	case st.News.Placeholder:
		b.WriteString(s.Muted.Render(view.NoNewsText) + "\n")
	}
	if st.News.Error != "" {
		b.WriteString(s.Error.Render(st.News.Error) + "\n")
	}
	cardWidth := width - 4
	if cardWidth < 20 {
		cardWidth = 20
	}
	for _, c := range st.News.Cards {
		b.WriteString(s.Card.Width(cardWidth).Render(c.Title+"\n"+s.Subtitle.Render(c.Body)) + "\n")
	}

	b.WriteString("\n" + s.Section.Render("Rapporter") + "\n")
	b.WriteString(p.filter.View() + "\n")
	if st.Reports.Error != "" {
		b.WriteString(s.Error.Render(st.Reports.Error) + "\n")
	}
	if !st.Reports.Loaded && st.Reports.Error == "" {
		b.WriteString(s.Muted.Render(view.LoadingText) + "\n")
	}
	if st.Reports.Loaded && st.Reports.Total > 0 && len(st.Reports.Links) == 0 {
		b.WriteString(s.Muted.Render(view.NoReportsText) + "\n")
	}
	for i, l := range st.Reports.Links {
		if i == p.cursor && !p.filtering {
			b.WriteString(s.Selected.Render("> "+l.Slug) + "\n")
			continue
		}
		b.WriteString(s.Item.Render(l.Slug) + "\n")
	}

	help := "↑/↓ välj • enter öppna • / filtrera • esc rensa • q avsluta"
	if p.filtering {
		help = "enter/esc klar"
	}
	b.WriteString(s.Help.Render(help))
	return b.String()
}
