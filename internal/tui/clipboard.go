package tui

import (
	"fmt"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

// PasteMsg carries clipboard read results to the TUI model.
type PasteMsg struct {
	Text string
	Err  error
}

// ClipboardWriteMsg carries clipboard write results to the TUI model.
type ClipboardWriteMsg struct {
	OK  bool
	Err error
}

// clipboardRead and clipboardWrite are swapped out in tests.
var (
	clipboardRead  = clipboard.ReadAll
	clipboardWrite = clipboard.WriteAll
)

// ReadClipboardCmd returns a Bubble Tea Cmd that reads the system clipboard
// and delivers the contents as a PasteMsg.
func ReadClipboardCmd() tea.Cmd {
	return func() tea.Msg {
		if clipboard.Unsupported {
			return PasteMsg{Err: fmt.Errorf("clipboard read not available")}
		}
		text, err := clipboardRead()
		if err != nil {
			return PasteMsg{Err: fmt.Errorf("read clipboard: %w", err)}
		}
		return PasteMsg{Text: text}
	}
}

// WriteClipboardCmd returns a Bubble Tea Cmd that writes text to the system
// clipboard and delivers a ClipboardWriteMsg on completion.
func WriteClipboardCmd(text string) tea.Cmd {
	return func() tea.Msg {
		if text == "" {
			return ClipboardWriteMsg{Err: fmt.Errorf("nothing to copy")}
		}
		if clipboard.Unsupported {
			return ClipboardWriteMsg{Err: fmt.Errorf("clipboard write not available")}
		}
		if err := clipboardWrite(text); err != nil {
			return ClipboardWriteMsg{Err: fmt.Errorf("write clipboard: %w", err)}
		}
		return ClipboardWriteMsg{OK: true}
	}
}
