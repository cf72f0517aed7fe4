package presenter

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	presenter := New()
	assert.NotNil(t, presenter)
	assert.Equal(t, os.Stdout, presenter.output)
	assert.Equal(t, os.Stderr, presenter.errorOutput)
}

func TestNewWithOptions(t *testing.T) {
	var output, errorOutput bytes.Buffer
	presenter := NewWithOptions(&output, &errorOutput, ColorNever)

	assert.Equal(t, &output, presenter.output)
	assert.Equal(t, &errorOutput, presenter.errorOutput)
	assert.Equal(t, ColorNever, presenter.colorMode)
	assert.Equal(t, &output, presenter.Output())
}

func TestDetectColorMode(t *testing.T) {
	tests := []struct {
		name           string
		noColor        string
		findskillColor string
		expected       ColorMode
	}{
		{"NO_COLOR set", "1", "always", ColorNever},
		{"FINDSKILL_COLOR always", "", "always", ColorAlways},
		{"FINDSKILL_COLOR force", "", "force", ColorAlways},
		{"FINDSKILL_COLOR never", "", "never", ColorNever},
		{"FINDSKILL_COLOR off", "", "off", ColorNever},
		{"FINDSKILL_COLOR auto", "", "auto", ColorAuto},
		{"default", "", "", ColorAuto},
		{"invalid value", "", "invalid", ColorAuto},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", tt.noColor)
			t.Setenv("FINDSKILL_COLOR", tt.findskillColor)

			assert.Equal(t, tt.expected, DetectColorMode())
		})
	}
}

func TestError(t *testing.T) {
	var errorOutput bytes.Buffer
	presenter := NewWithOptions(nil, &errorOutput, ColorNever)

	err := errors.New("test error")
	presenter.Error(err, "test context")
	assert.Equal(t, "[error] test context: test error\n", errorOutput.String())

	errorOutput.Reset()
	presenter.Error(err, "")
	assert.Equal(t, "[error] test error\n", errorOutput.String())

	errorOutput.Reset()
	presenter.Error(nil, "context")
	assert.Empty(t, errorOutput.String())
}

func TestWarningGoesToErrorOutput(t *testing.T) {
	var output, errorOutput bytes.Buffer
	presenter := NewWithOptions(&output, &errorOutput, ColorNever)

	presenter.Warning("remote-topic: search failed: rate limited")

	assert.Empty(t, output.String())
	assert.Equal(t, "[warn] remote-topic: search failed: rate limited\n", errorOutput.String())
}

func TestInfo(t *testing.T) {
	var output bytes.Buffer
	presenter := NewWithOptions(&output, nil, ColorNever)

	presenter.Info("Information message")
	assert.Equal(t, "Information message\n", output.String())
}

func TestSection(t *testing.T) {
	var output bytes.Buffer
	presenter := NewWithOptions(&output, nil, ColorNever)

	presenter.Section("Found 2 skill(s) for: pdf")
	assert.Equal(t, "Found 2 skill(s) for: pdf\n", output.String())
}

func TestSeparator(t *testing.T) {
	var output bytes.Buffer
	presenter := NewWithOptions(&output, nil, ColorNever)

	presenter.Separator()
	assert.Equal(t, strings.Repeat("=", SeparatorWidth)+"\n", output.String())
}

func TestColorModeConfiguration(t *testing.T) {
	oldNoColor := color.NoColor
	t.Cleanup(func() { color.NoColor = oldNoColor })

	NewWithOptions(&bytes.Buffer{}, &bytes.Buffer{}, ColorNever)
	assert.True(t, color.NoColor)

	NewWithOptions(&bytes.Buffer{}, &bytes.Buffer{}, ColorAlways)
	assert.False(t, color.NoColor)
}

func TestGlobalError(t *testing.T) {
	originalPresenter := defaultPresenter
	t.Cleanup(func() { defaultPresenter = originalPresenter })

	var output, errorOutput bytes.Buffer
	defaultPresenter = NewWithOptions(&output, &errorOutput, ColorNever)

	Error(errors.New("test error"), "error context")
	assert.Equal(t, "[error] error context: test error\n", errorOutput.String())
	assert.Empty(t, output.String())
}
