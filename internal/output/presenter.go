// Package output renders command results for humans (tables, one-line
// messages) and for machines (JSON and YAML envelopes).
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rileyhilliard/terminus/internal/ui"
)

// Format selects how results are written.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat accepts the names used by the config file.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", s)
	}
}

// Raw reports whether f is a machine-readable format.
func (f Format) Raw() bool {
	return f == FormatJSON || f == FormatYAML
}

// Envelope wraps machine-readable output in a consistent structure.
// All --json and --yaml output uses it.
type Envelope struct {
	Success bool       `json:"success" yaml:"success"`
	Data    any        `json:"data,omitempty" yaml:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty" yaml:"error,omitempty"`
}

// ErrorBody provides structured error information for machine parsing.
type ErrorBody struct {
	Code       string `json:"code" yaml:"code"`
	Message    string `json:"message" yaml:"message"`
	Suggestion string `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	Details    any    `json:"details,omitempty" yaml:"details,omitempty"`
}

// Presenter writes results in one format.
type Presenter struct {
	out    io.Writer
	format Format
}

// NewPresenter creates a presenter writing to w.
func NewPresenter(w io.Writer, format Format) *Presenter {
	if format == "" {
		format = FormatTable
	}
	return &Presenter{out: w, format: format}
}

// Format returns the presenter's output format.
func (p *Presenter) Format() Format {
	return p.format
}

// Records writes tabular data. In table mode headers relabel the columns
// Normalize derives, in order; extra headers are ignored and missing ones
// keep the field name.
func (p *Presenter) Records(data any, headers []string) error {
	if p.format.Raw() {
		return p.envelope(Envelope{Success: true, Data: data})
	}

	columns, rows, err := Normalize(data)
	if err != nil {
		return err
	}
	if len(columns) == 0 {
		_, err := fmt.Fprintln(p.out, ui.MutedStyle().Render("No records to display."))
		return err
	}

	labels := make([]string, len(columns))
	copy(labels, columns)
	for i := 0; i < len(labels) && i < len(headers); i++ {
		if headers[i] != "" {
			labels[i] = headers[i]
		}
	}

	_, err = fmt.Fprintln(p.out, ui.RenderTable(labels, rows))
	return err
}

// Message writes a single line of text.
func (p *Presenter) Message(msg string) error {
	if p.format.Raw() {
		return p.envelope(Envelope{Success: true, Data: map[string]string{"message": msg}})
	}
	_, err := fmt.Fprintln(p.out, msg)
	return err
}

// Error writes a failure envelope. Table mode has no failure rendering of
// its own; callers print the error text instead.
func (p *Presenter) Error(body *ErrorBody) error {
	return p.envelope(Envelope{Success: false, Error: body})
}

func (p *Presenter) envelope(env Envelope) error {
	if p.format == FormatYAML {
		enc := yaml.NewEncoder(p.out)
		enc.SetIndent(2)
		if err := enc.Encode(env); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}
