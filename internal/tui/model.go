// Package tui is the interactive terminal browser. It drives the same view
// models as the web portal and renders them with lipgloss.
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/example/hubben/internal/view"
)

// Options selects the starting page. A non-empty Slug opens that report
// directly.
type Options struct {
	Slug   string
	Kommun string
}

// detailMsg carries a detail view message tagged with its page instance.
type detailMsg struct {
	gen int
	msg view.Msg
}

// Model is the root bubbletea model.
type Model struct {
	ctx    context.Context
	fetch  view.Fetcher
	styles Styles

	list      listPage
	detail    *detailPage
	detailGen int
	width     int
}

// New builds the root model.
func New(ctx context.Context, fetch view.Fetcher, opts Options) Model {
	m := Model{
		ctx:    ctx,
		fetch:  fetch,
		styles: DefaultStyles(),
		list:   newListPage(),
		width:  80,
	}
	if opts.Slug != "" {
		m.detailGen++
		d := newDetailPage(m.detailGen, opts.Slug, opts.Kommun)
		m.detail = &d
	}
	return m
}

// Init starts the list fetches and, when opened directly, the report fetch.
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	for _, c := range m.list.view.Init() {
		cmds = append(cmds, m.lift(c))
	}
	if m.detail != nil {
		cmds = append(cmds, m.liftDetail(m.detail.gen, m.detail.view.Init()))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case view.NewsLoaded, view.NewsFailed, view.ReportsLoaded, view.ReportsFailed:
		m.list.view.Update(msg)
		m.list.clampCursor()
		return m, nil
	case detailMsg:
		if m.detail == nil || msg.gen != m.detail.gen {
			return m, nil
		}
		next := m.detail.view.Update(msg.msg)
		return m, m.liftDetail(msg.gen, next)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.detail != nil {
			d, cmd, vcmd, back := m.detail.update(msg)
			if back {
				m.detail = nil
				return m, nil
			}
			m.detail = &d
			return m, tea.Batch(cmd, m.liftDetail(d.gen, vcmd))
		}
		if !m.list.filtering && msg.String() == "q" {
			return m, tea.Quit
		}
		list, cmd, open := m.list.update(msg)
		m.list = list
		if open != "" {
			m.detailGen++
			d := newDetailPage(m.detailGen, open, "")
			m.detail = &d
			// Without a kommun this settles on the placeholder state.
			return m, tea.Batch(cmd, m.liftDetail(d.gen, d.view.Init()))
		}
		return m, cmd
	}
	if m.list.filtering {
		var cmd tea.Cmd
		m.list.filter, cmd = m.list.filter.Update(msg)
		return m, cmd
	}
	if m.detail != nil {
		var cmd tea.Cmd
		m.detail.input, cmd = m.detail.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.detail != nil {
		return m.detail.render(m.styles, m.width)
	}
	return m.list.render(m.styles, m.width)
}

func (m Model) lift(c view.Cmd) tea.Cmd {
	if c == nil {
		return nil
	}
	ctx, fetch := m.ctx, m.fetch
	return func() tea.Msg {
		return c(ctx, fetch)
	}
}

func (m Model) liftDetail(gen int, c view.Cmd) tea.Cmd {
	if c == nil {
		return nil
	}
	ctx, fetch := m.ctx, m.fetch
	return func() tea.Msg {
		return detailMsg{gen: gen, msg: c(ctx, fetch)}
	}
}

// Run starts the browser on the alternate screen and blocks until the user
// quits or ctx is done.
func Run(ctx context.Context, fetch view.Fetcher, opts Options) error {
	p := tea.NewProgram(New(ctx, fetch, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
