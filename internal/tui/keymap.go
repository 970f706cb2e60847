package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/batalabs/promptpad/internal/editor"
)

// KeyMap holds the bindings the host handles itself. Everything else is
// forwarded to the editor.
type KeyMap struct {
	Submit       key.Binding
	Newline      key.Binding
	Toggle       key.Binding
	Paste        key.Binding
	Copy         key.Binding
	Complete     key.Binding
	CompletePrev key.Binding
	Dismiss      key.Binding
	Quit         key.Binding
	EOF          key.Binding
}

// DefaultKeyMap is the default set of host bindings.
var DefaultKeyMap = KeyMap{
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "submit"),
	),
	Newline: key.NewBinding(
		key.WithKeys("alt+enter", "ctrl+j"),
		key.WithHelp("ctrl+j", "newline"),
	),
	Toggle: key.NewBinding(
		key.WithKeys("ctrl+o"),
		key.WithHelp("ctrl+o", "expand/collapse paste"),
	),
	Paste: key.NewBinding(
		key.WithKeys("ctrl+v", "insert"),
		key.WithHelp("ctrl+v", "paste"),
	),
	Copy: key.NewBinding(
		key.WithKeys("ctrl+y"),
		key.WithHelp("ctrl+y", "copy input"),
	),
	Complete: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "complete /command"),
	),
	CompletePrev: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "previous completion"),
	),
	Dismiss: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "close menu"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	EOF: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("ctrl+d", "quit when empty"),
	),
}

// ShortHelp is shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Newline, k.Toggle, k.Paste, k.Quit}
}

// FullHelp is shown by /help.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Newline, k.Toggle},
		{k.Paste, k.Copy, k.Complete, k.CompletePrev},
		{k.Dismiss, k.Quit, k.EOF},
	}
}

// toEditorKey translates a terminal key event into the editor's key model.
func toEditorKey(msg tea.KeyMsg) editor.Key {
	switch msg.Type {
	case tea.KeyRunes:
		text := filterNulls(msg.Runes)
		k := editor.Key{Meta: msg.Alt, Sequence: text}
		// only a single rune can name a key; longer runs are plain text
		if len(msg.Runes) == 1 {
			k.Name = text
		}
		return k
	case tea.KeySpace:
		return editor.Key{Name: "space", Meta: msg.Alt, Sequence: " "}
	}

	name := msg.String()
	k := editor.Key{}
	if rest, ok := strings.CutPrefix(name, "alt+"); ok {
		k.Meta = true
		name = rest
	}
	if rest, ok := strings.CutPrefix(name, "ctrl+"); ok {
		k.Ctrl = true
		name = rest
	}
	if rest, ok := strings.CutPrefix(name, "shift+"); ok {
		k.Shift = true
		name = rest
	}
	switch name {
	case "pgup":
		name = "pageup"
	case "pgdown":
		name = "pagedown"
	}
	k.Name = name
	return k
}
