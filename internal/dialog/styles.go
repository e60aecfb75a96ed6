package dialog

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

var (
	cPrimary = lipgloss.AdaptiveColor{Light: "#5A3FD6", Dark: "#7D56F4"}
	cAccent  = lipgloss.AdaptiveColor{Light: "#C2187A", Dark: "#FF79C6"}
	cDim     = lipgloss.AdaptiveColor{Light: "#6B6F85", Dark: "#6272A4"}
	cText    = lipgloss.AdaptiveColor{Light: "#1F1F28", Dark: "#F8F8F2"}
	cSuccess = lipgloss.AdaptiveColor{Light: "#1E8C45", Dark: "#50FA7B"}
)

// palette holds the rendered styles for one dialog style.
type palette struct {
	frame         lipgloss.Style
	title         lipgloss.Style
	body          lipgloss.Style
	notesHeader   lipgloss.Style
	button        lipgloss.Style
	buttonFocused lipgloss.Style
	notice        lipgloss.Style
	hint          lipgloss.Style
	textAlign     lipgloss.Position
	buttonAlign   lipgloss.Position
}

func newPalette(r *lipgloss.Renderer, style Style) palette {
	p := palette{
		title:       r.NewStyle().Bold(true).Foreground(cPrimary),
		body:        r.NewStyle().Foreground(cText),
		notesHeader: r.NewStyle().Bold(true).Foreground(cAccent),
		notice:      r.NewStyle().Foreground(cSuccess).Italic(true),
		hint:        r.NewStyle().Foreground(cDim),
	}

	switch style {
	case StyleCupertino:
		p.frame = r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(cDim).
			Padding(1, 2)
		p.button = r.NewStyle().Foreground(cPrimary).Padding(0, 2)
		p.buttonFocused = r.NewStyle().Foreground(cPrimary).Bold(true).Underline(true).Padding(0, 2)
		p.textAlign = lipgloss.Center
		p.buttonAlign = lipgloss.Center
	default:
		p.frame = r.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(cPrimary).
			Padding(1, 3)
		p.button = r.NewStyle().Foreground(cPrimary).Padding(0, 1)
		p.buttonFocused = r.NewStyle().Foreground(cText).Background(cPrimary).Bold(true).Padding(0, 1)
		p.textAlign = lipgloss.Left
		p.buttonAlign = lipgloss.Right
	}
	return p
}

// buildNotesRenderer renders release notes as markdown, falling back to
// plain word wrapping.
func buildNotesRenderer(format string, width int, dark bool) func(string) string {
	fallback := func(input string) string {
		return wordwrap.String(input, width)
	}

	style := strings.ToLower(strings.TrimSpace(format))
	switch style {
	case "plain":
		return fallback
	case "", "auto":
		style = "light"
		if dark {
			style = "dark"
		}
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fallback
	}
	return func(input string) string {
		out, err := renderer.Render(input)
		if err != nil {
			return fallback(input)
		}
		return strings.Trim(out, "\n")
	}
}
