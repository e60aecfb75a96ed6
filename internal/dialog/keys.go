package dialog

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the dialog's keyboard shortcuts.
type keyMap struct {
	Update  key.Binding
	Dismiss key.Binding
	Confirm key.Binding
	Focus   key.Binding
	Copy    key.Binding
	Abort   key.Binding
}

func newKeyMap(allowDismissal bool) keyMap {
	km := keyMap{
		Update: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "update"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("esc", "q", "d"),
			key.WithHelp("esc", "dismiss"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "choose"),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab", "shift+tab", "left", "right", "h", "l"),
			key.WithHelp("tab", "switch"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy link"),
		),
		Abort: key.NewBinding(
			key.WithKeys("ctrl+c"),
		),
	}
	if !allowDismissal {
		km.Dismiss.SetEnabled(false)
		km.Focus.SetEnabled(false)
	}
	return km
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Focus, k.Update, k.Dismiss, k.Copy}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
