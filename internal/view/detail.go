// File: internal/view/detail.go
// Brief: Report detail view model driven by slug and kommun.

package view

import (
	"context"
	"net/url"
	"strings"

	"github.com/example/hubben/internal/api"
)

// SubmitRegion is the manual submit of the region field.
type SubmitRegion struct{ Text string }

// ReportLoaded carries a successful report fetch for load Seq.
type ReportLoaded struct {
	Seq     uint64
	Kommun  string
	Payload api.ReportPayload
}

// ReportFailed carries a failed report fetch for load Seq.
type ReportFailed struct {
	Seq uint64
	Err error
}

// Detail is the report page for one fixed slug.
//
// Every load gets a sequence number and only the result of the latest load is
// applied, so when submits overlap the most recently submitted region wins.
type Detail struct {
	slug          string
	initialKommun string
	seq           uint64
	state         DetailState
}

// DetailState is what a front-end renders for the report page.
type DetailState struct {
	Slug string
	// RegionField is the current value of the editable kommun input.
	RegionField string

	Title    string
	Subtitle string
	// Missing is set when slug or kommun is absent and nothing was fetched.
	Missing bool
	Loading bool
	Loaded  bool

	Banner      bool
	TotalLine   string
	Blocks      []BlockItem
	Curated     []string
	DataVersion string

	Error string
}

// BlockItem is one rendered content block.
type BlockItem struct {
	Type    string
	Content string
}

// NewDetail reads slug and kommun from a page query string.
func NewDetail(query url.Values) *Detail {
	return NewDetailFor(query.Get("slug"), query.Get("kommun"))
}

// NewDetailFor builds the view for a known slug and initial kommun.
func NewDetailFor(slug, kommun string) *Detail {
	d := &Detail{slug: slug, initialKommun: kommun}
	d.state.Slug = slug
	d.state.RegionField = kommun
	return d
}

// Slug returns the fixed report slug.
func (d *Detail) Slug() string {
	return d.slug
}

// Init loads the report for the kommun from the query string.
func (d *Detail) Init() Cmd {
	return d.load(d.initialKommun)
}

// Update applies msg and returns the follow-up command, if any.
func (d *Detail) Update(msg Msg) Cmd {
	switch msg := msg.(type) {
	case SubmitRegion:
		kommun := strings.TrimSpace(msg.Text)
		d.state.RegionField = kommun
		return d.load(kommun)
	case ReportLoaded:
		if msg.Seq != d.seq {
			return nil
		}
		d.apply(msg.Payload)
	case ReportFailed:
		if msg.Seq != d.seq {
			return nil
		}
		d.state.Loading = false
		d.state.Error = errorText(DetailErrorPrefix, msg.Err)
	}
	return nil
}

func (d *Detail) load(kommun string) Cmd {
	d.seq++
	if d.slug == "" || kommun == "" {
		d.state = DetailState{
			Slug:        d.slug,
			RegionField: d.state.RegionField,
			Title:       MissingTitle,
			Subtitle:    MissingSubtitle,
			Missing:     true,
		}
		return nil
	}
	d.state.Missing = false
	d.state.Loading = true
	d.state.Error = ""
	seq, slug := d.seq, d.slug
	return func(ctx context.Context, f Fetcher) Msg {
		payload, err := f.GetReport(ctx, slug, kommun)
		if err != nil {
			return ReportFailed{Seq: seq, Err: err}
		}
		return ReportLoaded{Seq: seq, Kommun: kommun, Payload: payload}
	}
}

func (d *Detail) apply(p api.ReportPayload) {
	st := &d.state
	st.Loading = false
	st.Loaded = true
	st.Error = ""
	st.Title = "Rapport " + d.slug
	st.Subtitle = "Kommun: " + p.Kommun
	st.Banner = p.SmallNBanner
	st.TotalLine = "Antal respondenter: " + p.Metrics.Total.String()
	st.Blocks = make([]BlockItem, 0, len(p.Blocks))
	for _, b := range p.Blocks {
		kind := b.Type
		if kind == "" {
			kind = "text"
		}
		st.Blocks = append(st.Blocks, BlockItem{Type: kind, Content: b.Content})
	}
	st.Curated = append([]string{}, p.CuratedTexts...)
	st.DataVersion = p.DataVersionHash
}

// State returns a copy of the current render state.
func (d *Detail) State() DetailState {
	st := d.state
	st.Blocks = append([]BlockItem(nil), d.state.Blocks...)
	st.Curated = append([]string(nil), d.state.Curated...)
	return st
}
