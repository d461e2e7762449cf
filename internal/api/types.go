// File: internal/api/types.go
// Brief: Wire types for the public news and report endpoints.

package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ReportPathPrefix is the literal prefix of every canonical report URL.
const ReportPathPrefix = "/reports/"

// NewsItem is one entry of GET /public/news.
type NewsItem struct {
	ID    int    `json:"id,omitempty" yaml:"id,omitempty"`
	Title string `json:"title" yaml:"title"`
	Body  string `json:"body" yaml:"body"`
}

// Report is one entry of GET /public/reports.
type Report struct {
	CanonicalURL string `json:"canonical_url" yaml:"canonical_url"`
}

// Slug strips the /reports/ prefix from the canonical URL.
func (r Report) Slug() string {
	return strings.TrimPrefix(r.CanonicalURL, ReportPathPrefix)
}

// Block is a rendered template block of a report.
type Block struct {
	Type    string `json:"type,omitempty" yaml:"type,omitempty"`
	Content string `json:"content" yaml:"content"`
}

// Metrics carries the aggregated respondent count.
type Metrics struct {
	Total Total `json:"total" yaml:"total"`
}

// Total is the respondent count. The backend sends a number, or the string
// "X" when the sample is too small to disclose.
type Total struct {
	raw string
}

// NewTotal returns a numeric Total.
func NewTotal(n int64) Total {
	return Total{raw: strconv.FormatInt(n, 10)}
}

// MaskedTotal returns a Total holding the backend mask value.
func MaskedTotal(mask string) Total {
	return Total{raw: mask}
}

// String returns the total as it should be displayed.
func (t Total) String() string {
	return t.raw
}

// Equal compares the displayed values.
func (t Total) Equal(o Total) bool {
	return t.raw == o.raw
}

// Int reports the numeric value when the total is not masked.
func (t Total) Int() (int64, bool) {
	n, err := strconv.ParseInt(t.raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (t Total) MarshalJSON() ([]byte, error) {
	if n, ok := t.Int(); ok {
		return []byte(strconv.FormatInt(n, 10)), nil
	}
	return json.Marshal(t.raw)
}

func (t *Total) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		t.raw = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		t.raw = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	t.raw = n.String()
	return nil
}

// MarshalYAML keeps the numeric form in YAML output.
func (t Total) MarshalYAML() (any, error) {
	if n, ok := t.Int(); ok {
		return n, nil
	}
	return t.raw, nil
}

// ReportPayload is the body of GET /reports/{slug}.
type ReportPayload struct {
	Kommun          string   `json:"kommun" yaml:"kommun"`
	SmallNBanner    bool     `json:"small_n_banner" yaml:"small_n_banner"`
	Metrics         Metrics  `json:"metrics" yaml:"metrics"`
	Blocks          []Block  `json:"blocks" yaml:"blocks"`
	CuratedTexts    []string `json:"curated_texts" yaml:"curated_texts"`
	DataVersionHash string   `json:"data_version_hash,omitempty" yaml:"data_version_hash,omitempty"`
}

type newsEnvelope struct {
	News []NewsItem `json:"news"`
}

type reportsEnvelope struct {
	Reports []Report `json:"reports"`
}

type reportEnvelope struct {
	Payload *ReportPayload `json:"payload"`
}
