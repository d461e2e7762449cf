package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/hubben/internal/api"
	"github.com/example/hubben/internal/ui"
	"github.com/example/hubben/internal/view"
	"github.com/spf13/cobra"
)

type reportRow struct {
	Slug         string `json:"slug" yaml:"slug"`
	CanonicalURL string `json:"canonical_url" yaml:"canonical_url"`
	Href         string `json:"href" yaml:"href"`
}

type reportDocument struct {
	Slug    string            `json:"slug" yaml:"slug"`
	Kommun  string            `json:"kommun" yaml:"kommun"`
	Payload api.ReportPayload `json:"payload" yaml:"payload"`
}

// fetchWithSpinner runs one view command while a spinner spins on stderr.
func fetchWithSpinner(cmd *cobra.Command, g *globals, f view.Fetcher, label string, c view.Cmd) view.Msg {
	stop := ui.StartSpinner(cmd.ErrOrStderr(), label)
	var msg view.Msg
	_ = g.rec.Track("fetch", func() error {
		msg = view.Run(cmd.Context(), f, c)
		return nil
	})
	stop(!isFailure(msg))
	return msg
}

func isFailure(msg view.Msg) bool {
	switch msg.(type) {
	case view.NewsFailed, view.ReportsFailed, view.ReportFailed:
		return true
	}
	return false
}

func newNewsCommand(g *globals) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "news",
		Short: "Print the public news feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := validateOutput(output)
			if err != nil {
				return err
			}
			b, err := openBackend(cmd.Context(), g, nil)
			if err != nil {
				return err
			}
			defer closeQuietly(b)

			msg := fetchWithSpinner(cmd, g, b, "Hämtar nyheter", view.FetchNews)
			switch msg := msg.(type) {
			case view.NewsFailed:
				return msg.Err
			case view.NewsLoaded:
				if format != outputText {
					return writeStructured(cmd.OutOrStdout(), format, msg.Items)
				}
				l := view.NewList()
				l.Update(msg)
				r, err := newTextRenderer(cmd.OutOrStdout())
				if err != nil {
					return err
				}
				r.News(l.State().News)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "Output format: text, json, or yaml")
	return cmd
}

func newReportsCommand(g *globals) *cobra.Command {
	var output, filter string
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "List published reports, optionally filtered by slug",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := validateOutput(output)
			if err != nil {
				return err
			}
			b, err := openBackend(cmd.Context(), g, nil)
			if err != nil {
				return err
			}
			defer closeQuietly(b)

			l := view.NewList()
			l.Update(view.FilterChanged{Text: filter})
			msg := fetchWithSpinner(cmd, g, b, "Hämtar rapporter", view.FetchReports)
			if failed, ok := msg.(view.ReportsFailed); ok {
				return failed.Err
			}
			l.Update(msg)
			st := l.State().Reports

			if format != outputText {
				rows := make([]reportRow, 0, len(st.Links))
				for _, link := range st.Links {
					rows = append(rows, reportRow{Slug: link.Slug, CanonicalURL: api.ReportPathPrefix + link.Slug, Href: link.Href})
				}
				return writeStructured(cmd.OutOrStdout(), format, rows)
			}
			r, err := newTextRenderer(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			r.Reports(st)
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "Keep reports whose slug contains this text (case-insensitive)")
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "Output format: text, json, or yaml")
	return cmd
}

func newReportCommand(g *globals) *cobra.Command {
	var output, kommun string
	cmd := &cobra.Command{
		Use:   "report SLUG --kommun KOMMUN",
		Short: "Print one report for a kommun",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := validateOutput(output)
			if err != nil {
				return err
			}
			slug := strings.TrimSpace(args[0])
			d := view.NewDetailFor(slug, strings.TrimSpace(kommun))
			load := d.Init()
			if load == nil {
				return errors.New(view.MissingSubtitle)
			}
			b, err := openBackend(cmd.Context(), g, nil)
			if err != nil {
				return err
			}
			defer closeQuietly(b)

			msg := fetchWithSpinner(cmd, g, b, fmt.Sprintf("Hämtar %s", slug), load)
			switch msg := msg.(type) {
			case view.ReportFailed:
				return msg.Err
			case view.ReportLoaded:
				if format != outputText {
					return writeStructured(cmd.OutOrStdout(), format, reportDocument{Slug: slug, Kommun: msg.Kommun, Payload: msg.Payload})
				}
				d.Update(msg)
			}
			r, err := newTextRenderer(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return r.Report(d.State())
		},
	}
	cmd.Flags().StringVar(&kommun, "kommun", "", "Kommun (municipality) to read the report for")
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "Output format: text, json, or yaml")
	return cmd
}

var _ view.Fetcher = (*backend)(nil)
