// Package telemetry summarises where a one-shot command spent its time: named
// phases plus the backend round trips reported by the API client.
package telemetry

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

type Summary struct {
	Total      time.Duration
	Phases     map[string]time.Duration
	Requests   int
	Failures   int
	RequestAvg time.Duration
	RequestMax time.Duration
	ByEndpoint map[string]int
}

func (s Summary) Line() string {
	var parts []string
	if s.Total > 0 {
		parts = append(parts, fmt.Sprintf("total=%s", formatDuration(s.Total)))
	}
	if len(s.Phases) > 0 {
		parts = append(parts, fmt.Sprintf("phases %s", formatCounts(s.Phases, formatDuration)))
	}
	if s.Requests > 0 {
		req := fmt.Sprintf("backend %d req avg=%s max=%s", s.Requests, formatDuration(s.RequestAvg), formatDuration(s.RequestMax))
		if s.Failures > 0 {
			req += fmt.Sprintf(" failed=%d", s.Failures)
		}
		if len(s.ByEndpoint) > 1 {
			req += " (" + formatCounts(s.ByEndpoint, func(n int) string { return fmt.Sprint(n) }) + ")"
		}
		parts = append(parts, req)
	} else if s.Total > 0 {
		parts = append(parts, "backend 0 req (cache)")
	}
	if len(parts) == 0 {
		return ""
	}
	return "Telemetry: " + strings.Join(parts, " · ")
}

func formatCounts[V any](m map[string]V, format func(V) string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", key, format(m[key])))
	}
	return strings.Join(parts, ", ")
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	rounded := d.Round(10 * time.Millisecond)
	if rounded <= 0 {
		rounded = d
	}
	return rounded.String()
}

// Recorder collects phases and backend calls. A nil Recorder is a no-op.
type Recorder struct {
	mu       sync.Mutex
	started  time.Time
	phases   map[string]time.Duration
	requests int
	failures int
	sum      time.Duration
	max      time.Duration
	byEP     map[string]int
}

func NewRecorder() *Recorder {
	return &Recorder{
		started: time.Now(),
		phases:  map[string]time.Duration{},
		byEP:    map[string]int{},
	}
}

func (r *Recorder) Track(name string, fn func() error) error {
	if r == nil {
		return fn()
	}
	start := time.Now()
	err := fn()
	r.Add(name, time.Since(start))
	return err
}

func (r *Recorder) Add(name string, d time.Duration) {
	if r == nil {
		return
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	r.mu.Lock()
	r.phases[name] += d
	r.mu.Unlock()
}

// ObserveRequest matches api.Observer. Status 0 and >= 400 count as failures.
func (r *Recorder) ObserveRequest(endpoint string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests++
	if status == 0 || status >= 400 {
		r.failures++
	}
	r.sum += elapsed
	if elapsed > r.max {
		r.max = elapsed
	}
	r.byEP[endpoint]++
}

func (r *Recorder) Summary() Summary {
	if r == nil {
		return Summary{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s := Summary{
		Total:      time.Since(r.started),
		Phases:     make(map[string]time.Duration, len(r.phases)),
		Requests:   r.requests,
		Failures:   r.failures,
		RequestMax: r.max,
		ByEndpoint: make(map[string]int, len(r.byEP)),
	}
	for k, v := range r.phases {
		s.Phases[k] = v
	}
	for k, v := range r.byEP {
		s.ByEndpoint[k] = v
	}
	if r.requests > 0 {
		s.RequestAvg = r.sum / time.Duration(r.requests)
	}
	return s
}
