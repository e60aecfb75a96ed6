// Package dialog presents the "update available" prompt in the terminal.
//
// TerminalPresenter satisfies resolver.Presenter. It runs a small bubbletea
// program showing the configured title, body, release notes and the update
// and dismiss actions, and hands the store link to a launch.Opener when the
// user picks update.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"storecheck/internal/launch"
	"storecheck/internal/resolver"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// ErrAborted is returned when the user interrupts the dialog with ctrl+c.
var ErrAborted = errors.New("update dialog aborted")

// runFunc runs a model to completion and returns the final model.
type runFunc func(ctx context.Context, m tea.Model, in io.Reader, out io.Writer) (tea.Model, error)

// TerminalPresenter shows the update dialog on a terminal.
type TerminalPresenter struct {
	cfg         Config
	opener      launch.Opener
	in          io.Reader
	out         io.Writer
	profile     *termenv.Profile
	notesFormat string
	copyLink    func(string) error
	run         runFunc
}

// Option configures a TerminalPresenter.
type Option func(*TerminalPresenter)

// WithInput sets the terminal input. Defaults to os.Stdin.
func WithInput(r io.Reader) Option {
	return func(p *TerminalPresenter) {
		p.in = r
	}
}

// WithOutput sets the terminal output. Defaults to os.Stderr so stdout
// stays free for machine-readable output.
func WithOutput(w io.Writer) Option {
	return func(p *TerminalPresenter) {
		p.out = w
	}
}

// WithColorProfile forces a color profile instead of detecting one.
func WithColorProfile(profile termenv.Profile) Option {
	return func(p *TerminalPresenter) {
		p.profile = &profile
	}
}

// WithNotesFormat selects the glamour style for release notes
// ("auto", "dark", "light", "notty", "plain").
func WithNotesFormat(format string) Option {
	return func(p *TerminalPresenter) {
		p.notesFormat = format
	}
}

// New creates a presenter with the given dialog configuration. The opener
// handles the update action.
func New(cfg Config, opener launch.Opener, opts ...Option) *TerminalPresenter {
	p := &TerminalPresenter{
		cfg:         cfg,
		opener:      opener,
		in:          os.Stdin,
		out:         os.Stderr,
		notesFormat: "auto",
		copyLink:    clipboard.WriteAll,
		run:         runProgram,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func runProgram(ctx context.Context, m tea.Model, in io.Reader, out io.Writer) (tea.Model, error) {
	prog := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	return prog.Run()
}

func (p *TerminalPresenter) renderer() *lipgloss.Renderer {
	if p.profile == nil {
		return lipgloss.NewRenderer(p.out)
	}
	r := lipgloss.NewRenderer(p.out, termenv.WithProfile(*p.profile))
	r.SetColorProfile(*p.profile)
	return r
}

// Present shows the dialog for s and blocks until the user chooses. On
// update it opens the store link; launch errors are returned to the caller.
func (p *TerminalPresenter) Present(ctx context.Context, s resolver.Status) error {
	outcome, err := p.Prompt(ctx, s)
	if err != nil {
		return err
	}
	switch outcome {
	case OutcomeUpdate:
		if p.opener == nil {
			return fmt.Errorf("no link opener configured")
		}
		return p.opener.Open(ctx, s.AppStoreLink())
	case OutcomeAbort:
		return ErrAborted
	default:
		return nil
	}
}

// Prompt shows the dialog and returns the user's choice without acting on it.
func (p *TerminalPresenter) Prompt(ctx context.Context, s resolver.Status) (Outcome, error) {
	m := newModel(p.cfg, s, p.renderer(), p.notesFormat, p.copyLink)
	final, err := p.run(ctx, m, p.in, p.out)
	if err != nil {
		return OutcomeNone, fmt.Errorf("run update dialog: %w", err)
	}
	fm, ok := final.(*model)
	if !ok {
		return OutcomeNone, fmt.Errorf("run update dialog: unexpected model %T", final)
	}
	return fm.outcome, nil
}
