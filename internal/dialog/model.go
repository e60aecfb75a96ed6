package dialog

import (
	"strings"

	"storecheck/internal/resolver"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/wordwrap"
)

const (
	maxDialogWidth = 64
	minDialogWidth = 24
)

// Outcome is how the user left the dialog.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeUpdate
	OutcomeDismiss
	OutcomeAbort
)

// String returns the lower-case name of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeUpdate:
		return "update"
	case OutcomeDismiss:
		return "dismiss"
	case OutcomeAbort:
		return "abort"
	default:
		return "none"
	}
}

type focus int

const (
	focusUpdate focus = iota
	focusDismiss
)

// model is the bubbletea model of the update dialog.
type model struct {
	cfg     Config
	status  resolver.Status
	style   Style
	keys    keyMap
	help    help.Model
	palette palette

	notesFormat string
	dark        bool
	copyLink    func(string) error

	width   int
	focus   focus
	notice  string
	outcome Outcome
}

func newModel(cfg Config, status resolver.Status, r *lipgloss.Renderer, notesFormat string, copyLink func(string) error) *model {
	cfg = cfg.withDefaults()
	style := cfg.Style.Resolve(cfg.Platform)
	h := help.New()
	h.ShortSeparator = "  "
	return &model{
		cfg:         cfg,
		status:      status,
		style:       style,
		keys:        newKeyMap(cfg.AllowDismissal),
		help:        h,
		palette:     newPalette(r, style),
		notesFormat: notesFormat,
		dark:        r.HasDarkBackground(),
		copyLink:    copyLink,
		width:       maxDialogWidth,
	}
}

// Init implements tea.Model.
func (m *model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = clampWidth(msg.Width - 2)
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Abort):
		return m.finish(OutcomeAbort)
	case key.Matches(msg, m.keys.Update):
		return m.finish(OutcomeUpdate)
	case key.Matches(msg, m.keys.Dismiss):
		return m.finish(OutcomeDismiss)
	case key.Matches(msg, m.keys.Confirm):
		if m.focus == focusDismiss && m.cfg.AllowDismissal {
			return m.finish(OutcomeDismiss)
		}
		return m.finish(OutcomeUpdate)
	case key.Matches(msg, m.keys.Focus):
		if m.focus == focusUpdate {
			m.focus = focusDismiss
		} else {
			m.focus = focusUpdate
		}
		return m, nil
	case key.Matches(msg, m.keys.Copy):
		m.notice = m.copyToClipboard()
		return m, nil
	}
	return m, nil
}

func (m *model) finish(o Outcome) (tea.Model, tea.Cmd) {
	m.outcome = o
	return m, tea.Quit
}

func (m *model) copyToClipboard() string {
	if m.copyLink == nil {
		return "Clipboard unavailable"
	}
	if err := m.copyLink(m.status.AppStoreLink()); err != nil {
		return "Could not copy link: " + err.Error()
	}
	return "Link copied to clipboard"
}

// View implements tea.Model.
func (m *model) View() string {
	if m.outcome != OutcomeNone {
		return ""
	}
	p := m.palette
	inner := m.width - p.frame.GetHorizontalFrameSize()
	if inner < 10 {
		inner = 10
	}

	var sections []string

	title := ansi.Truncate(m.cfg.Title, inner, "…")
	sections = append(sections, lipgloss.PlaceHorizontal(inner, p.textAlign, p.title.Render(title)))

	body := wordwrap.String(m.cfg.BodyText(m.status), inner)
	sections = append(sections, lipgloss.PlaceHorizontal(inner, p.textAlign, p.body.Render(body)))

	if notes, ok := m.status.ReleaseNotes(); ok && strings.TrimSpace(notes) != "" {
		render := buildNotesRenderer(m.notesFormat, inner, m.dark)
		sections = append(sections,
			p.notesHeader.Render("Release notes")+"\n"+render(notes))
	}

	sections = append(sections, lipgloss.PlaceHorizontal(inner, p.buttonAlign, m.buttons()))

	if m.notice != "" {
		sections = append(sections, lipgloss.PlaceHorizontal(inner, p.textAlign, p.notice.Render(m.notice)))
	}

	content := strings.Join(sections, "\n\n")
	return p.frame.Render(content) + "\n" + p.hint.Render(m.help.ShortHelpView(m.keys.ShortHelp())) + "\n"
}

func (m *model) buttons() string {
	p := m.palette
	render := func(label string, f focus) string {
		if m.style == StyleMaterial {
			label = strings.ToUpper(label)
		}
		if m.focus == f {
			return p.buttonFocused.Render(label)
		}
		return p.button.Render(label)
	}

	update := render(m.cfg.UpdateLabel, focusUpdate)
	if !m.cfg.AllowDismissal {
		return update
	}
	dismiss := render(m.cfg.DismissLabel, focusDismiss)
	if m.style == StyleCupertino {
		return lipgloss.JoinHorizontal(lipgloss.Top, dismiss, p.hint.Render("│"), update)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, dismiss, " ", update)
}

func clampWidth(w int) int {
	if w > maxDialogWidth {
		return maxDialogWidth
	}
	if w < minDialogWidth {
		return minDialogWidth
	}
	return w
}
