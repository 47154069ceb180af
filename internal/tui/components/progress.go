// Package components provides terminal rendering components.
package components

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}

	stepStyle    = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	messageStyle = lipgloss.NewStyle().Foreground(colorMuted)
)

// Progress displays a step counter with a progress bar and message.
type Progress struct {
	current int
	total   int
	message string
	width   int
}

// NewProgress creates a new progress component.
func NewProgress() Progress {
	return Progress{width: 40}
}

// Percent returns the current percentage (0.0 to 1.0).
func (p Progress) Percent() float64 {
	if p.total <= 0 {
		return 0
	}
	return float64(p.current) / float64(p.total)
}

// Current returns the number of steps taken.
func (p Progress) Current() int {
	return p.current
}

// Total returns the total number of steps.
func (p Progress) Total() int {
	return p.total
}

// Message returns the current message.
func (p Progress) Message() string {
	return p.message
}

// Width returns the progress bar width.
func (p Progress) Width() int {
	return p.width
}

// SetTotal sets the total number of steps.
func (p Progress) SetTotal(total int) Progress {
	if total < 0 {
		total = 0
	}
	p.total = total
	if p.current > total {
		p.current = total
	}
	return p
}

// SetCurrent sets the number of steps taken, clamped to the total.
func (p Progress) SetCurrent(current int) Progress {
	if current < 0 {
		current = 0
	}
	if current > p.total {
		current = p.total
	}
	p.current = current
	return p
}

// IncrementCurrent advances by one step.
func (p Progress) IncrementCurrent() Progress {
	return p.SetCurrent(p.current + 1)
}

// SetMessage sets the status message.
func (p Progress) SetMessage(message string) Progress {
	p.message = message
	return p
}

// WithWidth sets the progress bar width.
func (p Progress) WithWidth(width int) Progress {
	p.width = width
	return p
}

// View renders "current/total [bar] message".
func (p Progress) View() string {
	bar := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(p.width),
	)

	var b strings.Builder
	width := len(fmt.Sprint(p.total))
	b.WriteString(stepStyle.Render(fmt.Sprintf("%*d/%d", width, p.current, p.total)))
	b.WriteString(" ")
	b.WriteString(bar.ViewAs(p.Percent()))
	if p.message != "" {
		b.WriteString(" ")
		b.WriteString(messageStyle.Render(p.message))
	}
	return b.String()
}

// ProgressBar draws a Progress on a terminal line, redrawing it on every step.
type ProgressBar struct {
	out      io.Writer
	progress Progress
}

// NewProgressBar creates a progress bar writing to out.
func NewProgressBar(out io.Writer) *ProgressBar {
	return &ProgressBar{out: out, progress: NewProgress()}
}

// WithWidth sets the bar width.
func (b *ProgressBar) WithWidth(width int) *ProgressBar {
	b.progress = b.progress.WithWidth(width)
	return b
}

// Start resets the bar to zero of total steps.
func (b *ProgressBar) Start(total int) {
	b.progress = b.progress.SetTotal(total).SetCurrent(0).SetMessage("")
	b.draw()
}

// Advance moves the bar one step and shows message.
func (b *ProgressBar) Advance(message string) {
	b.progress = b.progress.IncrementCurrent().SetMessage(message)
	b.draw()
}

// Finish fills the bar, shows message and ends the line.
func (b *ProgressBar) Finish(message string) {
	b.progress = b.progress.SetCurrent(b.progress.Total()).SetMessage(message)
	b.draw()
	_, _ = fmt.Fprintln(b.out)
}

// Progress returns the current state.
func (b *ProgressBar) Progress() Progress {
	return b.progress
}

func (b *ProgressBar) draw() {
	_, _ = fmt.Fprint(b.out, "\r\x1b[2K", b.progress.View())
}
