package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/example/hubben/internal/ui"
	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func validateOutput(format string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "", outputText:
		return outputText, nil
	case outputJSON, outputYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected text, json, or yaml)", format)
	}
}

// writeStructured encodes v as JSON or YAML.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported structured format %q", format)
}

func newTextRenderer(w io.Writer) (*ui.TextRenderer, error) {
	opts := ui.TextOptions{Markdown: true}
	if ui.IsTerminal(w) && !color.NoColor {
		opts.Color = true
	}
	if cols, ok := ui.TerminalWidth(w); ok {
		opts.Width = cols
	}
	return ui.NewTextRenderer(w, opts)
}
