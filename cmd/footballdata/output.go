package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/iTrooz/footballdata/internal/api"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow, color.Bold)
	red    = color.New(color.FgRed)
)

// printer writes command results to stdout and diagnostics to stderr
type printer struct {
	stdout io.Writer
	stderr io.Writer
}

func newPrinter(stdout, stderr io.Writer) *printer {
	return &printer{stdout: stdout, stderr: stderr}
}

// Error prints an error message
func (p *printer) Error(text string) {
	_, _ = red.Fprintf(p.stderr, "Error: %s\n", text)
}

// Warning prints a warning message
func (p *printer) Warning(text string) {
	_, _ = yellow.Fprintf(p.stderr, "Warning: %s\n", text)
}

// Success prints a success message
func (p *printer) Success(text string) {
	_, _ = green.Fprintf(p.stdout, "%s\n", text)
}

// JSON prints v as indented JSON
func (p *printer) JSON(v any) error {
	enc := json.NewEncoder(p.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// emit prints the value of res, flagging values served from an outdated cache
func emit[T any](p *printer, res api.Result[T]) error {
	if !res.OK() {
		return res.Err
	}
	if res.Origin == api.OriginStale && res.Fallback != nil {
		p.Warning(fmt.Sprintf("showing cached data, refresh failed: %s", res.Fallback.Message))
	}
	return p.JSON(res.Value)
}
