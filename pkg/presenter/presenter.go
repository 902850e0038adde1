// Package presenter renders user-facing console output: per-skill migration
// commentary, the run summary and generic status messages, with color
// support and a quiet mode.
package presenter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/jingkaihe/skillmigrate/pkg/migrate"
)

// Presenter defines the console output used by the CLI
type Presenter interface {
	Error(err error, context string)
	Success(message string)
	Warning(message string)
	Info(message string)
	Section(title string)
	Result(r migrate.Result)
	Summary(stats *migrate.Stats)
	SetQuiet(quiet bool)
	IsQuiet() bool
}

// ColorMode represents the color output modes
type ColorMode int

const (
	// ColorAuto lets the color package detect terminal support
	ColorAuto ColorMode = iota
	// ColorAlways forces colored output
	ColorAlways
	// ColorNever disables colored output
	ColorNever
)

// TerminalPresenter implements Presenter for terminal output
type TerminalPresenter struct {
	output      io.Writer
	errorOutput io.Writer
	colorMode   ColorMode
	quiet       bool
}

// New creates a TerminalPresenter writing to stdout and stderr
func New() *TerminalPresenter {
	return NewWithOptions(os.Stdout, os.Stderr, detectColorMode())
}

// NewWithOptions creates a TerminalPresenter with custom writers and color mode
func NewWithOptions(output, errorOutput io.Writer, colorMode ColorMode) *TerminalPresenter {
	switch colorMode {
	case ColorAlways:
		color.NoColor = false
	case ColorNever:
		color.NoColor = true
	}

	return &TerminalPresenter{
		output:      output,
		errorOutput: errorOutput,
		colorMode:   colorMode,
	}
}

func detectColorMode() ColorMode {
	if os.Getenv("NO_COLOR") != "" {
		return ColorNever
	}

	switch os.Getenv("SKILLMIGRATE_COLOR") {
	case "always", "force":
		return ColorAlways
	case "never", "off":
		return ColorNever
	default:
		return ColorAuto
	}
}

// Error displays an error message to the error output
func (p *TerminalPresenter) Error(err error, context string) {
	if err == nil {
		return
	}

	errorColor := color.New(color.FgRed, color.Bold)
	if context != "" {
		errorColor.Fprintf(p.errorOutput, "[ERROR] %s: %v\n", context, err)
	} else {
		errorColor.Fprintf(p.errorOutput, "[ERROR] %v\n", err)
	}
}

// Success displays a success message
func (p *TerminalPresenter) Success(message string) {
	if p.quiet {
		return
	}
	color.New(color.FgGreen, color.Bold).Fprintf(p.output, "✓ %s\n", message)
}

// Warning displays a warning message
func (p *TerminalPresenter) Warning(message string) {
	if p.quiet {
		return
	}
	color.New(color.FgYellow, color.Bold).Fprintf(p.output, "⚠ %s\n", message)
}

// Info displays an informational message
func (p *TerminalPresenter) Info(message string) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.output, "%s\n", message)
}

// Section displays an underlined header
func (p *TerminalPresenter) Section(title string) {
	if p.quiet {
		return
	}

	headerColor := color.New(color.Bold)
	headerColor.Fprintf(p.output, "%s\n", title)
	headerColor.Fprintf(p.output, "%s\n", strings.Repeat("-", len(title)))
}

// Result displays the one-line commentary for a migrated, skipped or failed skill.
// Failures are written to the error output even in quiet mode.
func (p *TerminalPresenter) Result(r migrate.Result) {
	switch r.Outcome {
	case migrate.OutcomeMigrated:
		p.Success(fmt.Sprintf("Migrated %s -> %s", r.Name, r.Destination))
		if r.TransformErr != nil {
			p.Warning(fmt.Sprintf("Post-copy transform for %s failed: %v", r.Name, r.TransformErr))
		}
	case migrate.OutcomeSkipped:
		p.Warning(fmt.Sprintf("Skipped %s: %s already exists", r.Name, r.Destination))
	case migrate.OutcomeFailed:
		p.Error(r.Err, "Failed to migrate "+r.Name)
	}
}

// Summary displays the aggregate counters of a run
func (p *TerminalPresenter) Summary(stats *migrate.Stats) {
	if p.quiet || stats == nil {
		return
	}

	fmt.Fprintln(p.output)
	p.Section("Migration summary")
	fmt.Fprintf(p.output, "Total:    %d\n", stats.Total)
	color.New(color.FgGreen).Fprintf(p.output, "Migrated: %d\n", stats.Migrated)
	color.New(color.FgRed).Fprintf(p.output, "Failed:   %d\n", stats.Failed)
	color.New(color.FgYellow).Fprintf(p.output, "Skipped:  %d\n", stats.Skipped)
}

// SetQuiet enables or disables quiet mode
func (p *TerminalPresenter) SetQuiet(quiet bool) {
	p.quiet = quiet
}

// IsQuiet returns whether quiet mode is enabled
func (p *TerminalPresenter) IsQuiet() bool {
	return p.quiet
}

var defaultPresenter = New()

// Error displays an error message using the default presenter.
func Error(err error, context string) {
	defaultPresenter.Error(err, context)
}

// SetQuiet enables or disables quiet mode for the default presenter.
func SetQuiet(quiet bool) {
	defaultPresenter.SetQuiet(quiet)
}
