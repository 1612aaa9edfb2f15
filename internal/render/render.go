// Package render draws tutor output as titled terminal panels.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Panel titles.
const (
	TitleCorrection = "Correction"
	TitleResponse   = "Response"
	TitleAccountant = "Accountant"
)

var (
	colorCorrection = lipgloss.Color("#F4D03F")
	colorResponse   = lipgloss.Color("#20B9B4")
	colorAccountant = lipgloss.Color("#2C4A54")
	colorError      = lipgloss.Color("#E74C3C")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorAccountant)
	errorStyle  = lipgloss.NewStyle().Foreground(colorError)
	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorResponse).
			Padding(0, 1)
)

const defaultWidth = 80

// Renderer writes panels to out, wrapped to width columns.
type Renderer struct {
	out   io.Writer
	width int
}

func New(out io.Writer, width int) *Renderer {
	if width <= 0 {
		width = defaultWidth
	}
	return &Renderer{out: out, width: width}
}

// Panel returns body in a rounded box under a bold title.
func (r *Renderer) Panel(title, body string, color lipgloss.Color) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1).
		Width(r.width - 2)

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Foreground(color).Render(title),
		box.Render(strings.TrimSpace(body)),
	)
}

// Turn writes the Correction, Response and Accountant panels.
func (r *Renderer) Turn(correction, response, accountant string) error {
	out := lipgloss.JoinVertical(lipgloss.Left,
		r.Panel(TitleCorrection, correction, colorCorrection),
		r.Panel(TitleResponse, response, colorResponse),
		r.Panel(TitleAccountant, accountant, colorAccountant),
	)
	_, err := fmt.Fprintln(r.out, out)
	return err
}

// Banner writes the conversation topic and starter.
func (r *Renderer) Banner(title, topic, starter string) error {
	body := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		"",
		"Your conversation topic is: "+titleStyle.Render(topic),
		"",
		"\""+starter+"\"",
	)
	_, err := fmt.Fprintln(r.out, bannerStyle.Width(r.width-2).Render(body))
	return err
}

// Info writes a muted line.
func (r *Renderer) Info(text string) error {
	_, err := fmt.Fprintln(r.out, mutedStyle.Render(text))
	return err
}

func (r *Renderer) Error(err error) error {
	_, werr := fmt.Fprintln(r.out, errorStyle.Render("Error: "+err.Error()))
	return werr
}
