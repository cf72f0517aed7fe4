// Package presenter writes findskill's user-facing output: result listings,
// document separators, warnings and errors, with optional color.
package presenter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// SeparatorWidth is the width of the rule printed between fetched documents
const SeparatorWidth = 60

// TerminalPresenter writes to a terminal or any pair of writers. Results go to
// output; errors and warnings go to errorOutput so that machine-readable
// output stays clean.
type TerminalPresenter struct {
	output      io.Writer
	errorOutput io.Writer
	colorMode   ColorMode
}

// ColorMode represents different color output modes
type ColorMode int

const (
	// ColorAuto automatically detects whether to use colored output based on terminal capabilities
	ColorAuto ColorMode = iota
	// ColorAlways forces colored output regardless of terminal capabilities
	ColorAlways
	// ColorNever disables colored output regardless of terminal capabilities
	ColorNever
)

// New creates a new TerminalPresenter with default settings
func New() *TerminalPresenter {
	return NewWithOptions(os.Stdout, os.Stderr, DetectColorMode())
}

// NewWithOptions creates a TerminalPresenter with custom settings
func NewWithOptions(output, errorOutput io.Writer, colorMode ColorMode) *TerminalPresenter {
	presenter := &TerminalPresenter{
		output:      output,
		errorOutput: errorOutput,
		colorMode:   colorMode,
	}

	switch colorMode {
	case ColorAlways:
		color.NoColor = false
	case ColorNever:
		color.NoColor = true
	case ColorAuto:
		// Let color package auto-detect
	}

	return presenter
}

// DetectColorMode determines the appropriate color mode based on environment
func DetectColorMode() ColorMode {
	if os.Getenv("NO_COLOR") != "" {
		return ColorNever
	}

	switch os.Getenv("FINDSKILL_COLOR") {
	case "always", "force":
		return ColorAlways
	case "never", "off":
		return ColorNever
	default:
		return ColorAuto
	}
}

// Output returns the writer used for results
func (p *TerminalPresenter) Output() io.Writer {
	return p.output
}

// Error displays an error message to stderr
func (p *TerminalPresenter) Error(err error, context string) {
	if err == nil {
		return
	}

	errorColor := color.New(color.FgRed, color.Bold)
	if context != "" {
		errorColor.Fprintf(p.errorOutput, "[error] %s: %v\n", context, err)
	} else {
		errorColor.Fprintf(p.errorOutput, "[error] %v\n", err)
	}
}

// Warning displays a warning message to stderr
func (p *TerminalPresenter) Warning(message string) {
	warningColor := color.New(color.FgYellow)
	warningColor.Fprintf(p.errorOutput, "[warn] %s\n", message)
}

// Info displays an informational message
func (p *TerminalPresenter) Info(message string) {
	fmt.Fprintf(p.output, "%s\n", message)
}

// Section displays a bold header
func (p *TerminalPresenter) Section(title string) {
	headerColor := color.New(color.Bold)
	headerColor.Fprintf(p.output, "%s\n", title)
}

// Separator displays a visual separator
func (p *TerminalPresenter) Separator() {
	separatorColor := color.New(color.Faint)
	separatorColor.Fprintf(p.output, "%s\n", strings.Repeat("=", SeparatorWidth))
}

var defaultPresenter = New()

// Error reports a fatal error using a presenter over stdout and stderr.
func Error(err error, context string) {
	defaultPresenter.Error(err, context)
}
