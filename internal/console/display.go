// Package console renders the translation session in a terminal.
package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
	labelStyle      = lipgloss.NewStyle().Bold(true).Width(12)
	originalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB"))
	translatedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98")).Bold(true)
	hintStyle       = lipgloss.NewStyle().Faint(true)
)

// SpeakHint is shown when the speak control becomes visible
const SpeakHint = "Type /speak to hear the translation"

// Display writes each sink update as a styled line
type Display struct {
	mu  sync.Mutex
	out io.Writer

	status       string
	original     string
	translated   string
	speakVisible bool
}

// NewDisplay creates a display writing to out
func NewDisplay(out io.Writer) *Display {
	return &Display{out: out}
}

// SetStatus renders the session status line
func (d *Display) SetStatus(status string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status = status
	fmt.Fprintln(d.out, statusStyle.Render(status))
}

// SetOriginalText renders the recognized speech
func (d *Display) SetOriginalText(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.original = text
	fmt.Fprintln(d.out, labelStyle.Render("Original:")+originalStyle.Render(text))
}

// SetTranslatedText renders a translation or a failure text
func (d *Display) SetTranslatedText(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.translated = text
	fmt.Fprintln(d.out, labelStyle.Render("Translated:")+translatedStyle.Render(text))
}

// TranslatedText returns the last rendered translation
func (d *Display) TranslatedText() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.translated
}

// SetSpeakVisible prints the hint when the control first appears
func (d *Display) SetSpeakVisible(visible bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if visible && !d.speakVisible {
		fmt.Fprintln(d.out, hintStyle.Render(SpeakHint))
	}
	d.speakVisible = visible
}

// SpeakVisible reports whether the speak control is shown
func (d *Display) SpeakVisible() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.speakVisible
}

// Status returns the current status line
func (d *Display) Status() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// OriginalText returns the displayed transcript
func (d *Display) OriginalText() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.original
}
