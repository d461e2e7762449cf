package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/hubben/internal/api"
	"github.com/example/hubben/internal/version"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/public/news", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"news":[{"id":1,"title":"Ny enkät","body":"Öppen till maj"}]}`)
	})
	mux.HandleFunc("/public/reports", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"reports":[{"canonical_url":"/reports/alpha"},{"canonical_url":"/reports/beta"},{"canonical_url":"/reports/gamma"}]}`)
	})
	mux.HandleFunc("/reports/", func(w http.ResponseWriter, r *http.Request) {
		slug := strings.TrimPrefix(r.URL.Path, "/reports/")
		if slug == "missing" {
			http.Error(w, `{"detail":"not found"}`, http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, `{"payload":{"kommun":%q,"small_n_banner":true,"metrics":{"total":"X"},"blocks":[{"type":"text","content":"Om %s"}],"curated_texts":["Bra stöd"]}}`,
			r.URL.Query().Get("kommun"), slug)
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func isolateConfig(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HUBBEN_CONFIG", "")
	t.Setenv("HUBBEN_BACKEND", "")
	t.Setenv("HUBBEN_FEATURE_OFFLINE_FALLBACK", "")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestReportsCommandFiltersJSON(t *testing.T) {
	isolateConfig(t)
	ts := fakeBackend(t)
	out, err := execute(t, "--backend", ts.URL, "reports", "--filter", "AM", "-o", "json")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	var rows []reportRow
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	want := []reportRow{{Slug: "gamma", CanonicalURL: "/reports/gamma", Href: "/ui/report.html?slug=gamma"}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestReportsCommandText(t *testing.T) {
	isolateConfig(t)
	ts := fakeBackend(t)
	out, err := execute(t, "--backend", ts.URL, "reports")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	for _, slug := range []string{"alpha", "beta", "gamma"} {
		if !strings.Contains(out, slug) {
			t.Fatalf("missing %s in:\n%s", slug, out)
		}
	}
}

func TestNewsCommandText(t *testing.T) {
	isolateConfig(t)
	ts := fakeBackend(t)
	out, err := execute(t, "--backend", ts.URL, "news")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "Ny enkät") || !strings.Contains(out, "Öppen till maj") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestReportCommandYAML(t *testing.T) {
	isolateConfig(t)
	ts := fakeBackend(t)
	out, err := execute(t, "--backend", ts.URL, "report", "alpha", "--kommun", " Lund ", "-o", "yaml")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	var doc struct {
		Slug    string `yaml:"slug"`
		Kommun  string `yaml:"kommun"`
		Payload struct {
			SmallNBanner bool `yaml:"small_n_banner"`
			Metrics      struct {
				Total string `yaml:"total"`
			} `yaml:"metrics"`
		} `yaml:"payload"`
	}
	if err := yaml.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if doc.Slug != "alpha" || doc.Kommun != "Lund" || !doc.Payload.SmallNBanner || doc.Payload.Metrics.Total != "X" {
		t.Fatalf("unexpected document %+v", doc)
	}
}

func TestReportCommandText(t *testing.T) {
	isolateConfig(t)
	ts := fakeBackend(t)
	out, err := execute(t, "--backend", ts.URL, "report", "beta", "--kommun", "Malmö")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	for _, want := range []string{"Rapport beta", "Kommun: Malmö", "Antal respondenter: X", "Om beta", "Bra stöd"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestReportCommandErrors(t *testing.T) {
	isolateConfig(t)
	ts := fakeBackend(t)
	if _, err := execute(t, "--backend", ts.URL, "report", "alpha"); err == nil {
		t.Fatalf("expected error without --kommun")
	}
	_, err := execute(t, "--backend", ts.URL, "report", "missing", "--kommun", "Lund")
	if !api.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUnknownOutputFormat(t *testing.T) {
	isolateConfig(t)
	if _, err := execute(t, "news", "-o", "xml"); err == nil || !strings.Contains(err.Error(), "unknown output format") {
		t.Fatalf("expected output format error, got %v", err)
	}
}

func TestBackendFromEnvironment(t *testing.T) {
	isolateConfig(t)
	ts := fakeBackend(t)
	t.Setenv("HUBBEN_BACKEND", ts.URL)
	out, err := execute(t, "news", "-o", "json")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "Ny enkät") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestBackendFromConfigFile(t *testing.T) {
	isolateConfig(t)
	ts := fakeBackend(t)
	path := filepath.Join(t.TempDir(), "hubben.yaml")
	if err := os.WriteFile(path, []byte("backend: "+ts.URL+"\nretries: 0\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("HUBBEN_CONFIG", path)
	if _, err := execute(t, "reports", "-o", "yaml"); err != nil {
		t.Fatalf("execute: %v", err)
	}
}

func TestInvalidBackendRejected(t *testing.T) {
	isolateConfig(t)
	if _, err := execute(t, "--backend", "ftp://example", "news"); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestUnknownFeatureRejected(t *testing.T) {
	isolateConfig(t)
	if _, err := execute(t, "--feature", "warp-drive", "version"); err != nil {
		t.Fatalf("version must not resolve features: %v", err)
	}
	if _, err := execute(t, "--feature", "warp-drive", "news"); err == nil {
		t.Fatalf("expected unknown feature error")
	}
}

func TestUnknownFeatureFromEnvironmentIsSkipped(t *testing.T) {
	isolateConfig(t)
	ts := fakeBackend(t)
	t.Setenv("HUBBEN_FEATURE_WARP_DRIVE", "1")
	out, err := execute(t, "--backend", ts.URL, "news", "-o", "json")
	if err != nil {
		t.Fatalf("unknown env feature must not fail the command: %v", err)
	}
	if !strings.Contains(out, "Ny enkät") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestVersionCommand(t *testing.T) {
	isolateConfig(t)
	out, err := execute(t, "version", "-o", "json")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	var info version.Info
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Version != version.Version {
		t.Fatalf("version=%q", info.Version)
	}
}

func TestCachePrune(t *testing.T) {
	isolateConfig(t)
	ts := fakeBackend(t)
	db := filepath.Join(t.TempDir(), "cache.db")
	if _, err := execute(t, "--backend", ts.URL, "--cache-db", db, "news", "-o", "json"); err != nil {
		t.Fatalf("prime cache: %v", err)
	}
	out, err := execute(t, "--cache-db", db, "cache", "prune", "--older-than", "0s")
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if !strings.Contains(out, "removed 1 cached responses") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestHandleErrorHints(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "help", err: pflag.ErrHelp, want: ""},
		{name: "timeout", err: fmt.Errorf("GET /public/news: %w", context.DeadlineExceeded), want: "increase --timeout"},
		{name: "not found", err: &api.StatusError{Endpoint: "/reports/x", StatusCode: 404}, want: "hubben reports"},
		{name: "server", err: &api.StatusError{Endpoint: "/public/news", StatusCode: 503}, want: "offline-fallback"},
		{name: "dial", err: fmt.Errorf("GET: %w", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}), want: "is the backend running"},
		{name: "plain", err: errors.New("boom"), want: "Error: boom\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			handleError(&buf, tc.err)
			if tc.want == "" {
				if buf.Len() != 0 {
					t.Fatalf("expected no output, got %q", buf.String())
				}
				return
			}
			if !strings.Contains(buf.String(), tc.want) {
				t.Fatalf("output %q does not contain %q", buf.String(), tc.want)
			}
		})
	}
}

func TestStatsSummaryOnStderr(t *testing.T) {
	isolateConfig(t)
	ts := fakeBackend(t)
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"--log-level", "error", "--stats", "--backend", ts.URL, "news", "-o", "json"})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(errOut.String(), "backend 1 req") {
		t.Fatalf("stderr %q lacks telemetry line", errOut.String())
	}
	if strings.Contains(out.String(), "Telemetry") {
		t.Fatalf("telemetry leaked into stdout")
	}
}
