package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/example/hubben/internal/view"
)

// detailPage wraps view.Detail with the kommun input. gen identifies the
// page instance so results for a closed page are dropped.
type detailPage struct {
	gen   int
	view  *view.Detail
	input textinput.Model
}

func newDetailPage(gen int, slug, kommun string) detailPage {
	in := textinput.New()
	in.Placeholder = "Kommun"
	in.Prompt = "Kommun: "
	in.CharLimit = 80
	in.Width = 30
	in.SetValue(kommun)
	in.Focus()
	return detailPage{gen: gen, view: view.NewDetailFor(slug, kommun), input: in}
}

// update handles a key press. The returned view.Cmd must be lifted by the
// caller; back reports that the user left the page.
func (p detailPage) update(msg tea.KeyMsg) (detailPage, tea.Cmd, view.Cmd, bool) {
	switch msg.Type {
	case tea.KeyEsc:
		return p, nil, nil, true
	case tea.KeyEnter:
		cmd := p.view.Update(view.SubmitRegion{Text: p.input.Value()})
		p.input.SetValue(p.view.State().RegionField)
		return p, nil, cmd, false
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd, nil, false
}

func (p detailPage) render(s Styles, width int) string {
	st := p.view.State()
	var b strings.Builder

	title := st.Title
	if title == "" {
		title = view.LoadingText
	}
	b.WriteString(s.Title.Render(title) + "\n")
	if st.Subtitle != "" {
		b.WriteString(s.Subtitle.Render(st.Subtitle) + "\n")
	}
	b.WriteString("\n" + p.input.View() + "\n")
	if st.Loading {
		b.WriteString(s.Muted.Render(view.LoadingText) + "\n")
	}
	if st.Error != "" {
		b.WriteString(s.Error.Render(st.Error) + "\n")
	}

	if st.Loaded {
		b.WriteString("\n")
		if st.Banner {
			b.WriteString(s.Banner.Render(view.SmallNBannerText) + "\n")
		}
		b.WriteString(st.TotalLine + "\n")
		cardWidth := width - 4
		if cardWidth < 20 {
			cardWidth = 20
		}
		for _, blk := range st.Blocks {
			b.WriteString(s.Card.Width(cardWidth).Render(blk.Content) + "\n")
		}
		if len(st.Curated) > 0 {
			b.WriteString("\n" + s.Section.Render("Röster från föräldrar") + "\n")
			for _, c := range st.Curated {
				b.WriteString(s.Item.Render("– "+c) + "\n")
			}
		}
		if st.DataVersion != "" {
			b.WriteString(s.Muted.Render("Dataversion: "+st.DataVersion) + "\n")
		}
	}

	b.WriteString(s.Help.Render("enter visa • esc tillbaka • ctrl+c avsluta"))
	return b.String()
}
