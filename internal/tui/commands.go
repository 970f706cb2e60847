package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/batalabs/promptpad/internal/config"
	"github.com/batalabs/promptpad/internal/domain"
	"github.com/batalabs/promptpad/internal/editor"
)

// ---------------------------------------------------------------------------
// Slash commands
// ---------------------------------------------------------------------------

func (m Model) handleSlashCommand(input string) (tea.Model, tea.Cmd) {
	clean := strings.Map(func(r rune) rune {
		if r < 32 && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, strings.TrimSpace(input))

	parts := strings.Fields(clean)
	if len(parts) == 0 {
		return m, nil
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]
	m.logger.Printf("command: %s", summarizeForLog(clean))

	switch cmd {
	case "/help":
		return m, m.print(m.helpText())

	case "/clear":
		m.editor = m.editor.SetText("")
		m.resetHistory()
		return m, nil

	case "/expand":
		return m.handleBlockCommand(true, args)

	case "/collapse":
		return m.handleBlockCommand(false, args)

	case "/blocks":
		return m, m.print(FormatBlocks(m.editor.Snapshot().Blocks))

	case "/history":
		return m.handleHistoryCommand(args)

	case "/config":
		out, err := config.ExecuteConfigAction(&m.Prefs, args)
		if err != nil {
			return m, m.print(m.renderError(err.Error()))
		}
		m.applyPreferences()
		return m, m.print(out)

	case "/exit", "/quit":
		return m.quit()

	default:
		return m, m.print(m.renderError(fmt.Sprintf("Unknown command: %s. Type /help for commands.", cmd)))
	}
}

// handleBlockCommand expands or collapses one block by id, or all of them.
func (m Model) handleBlockCommand(expand bool, args []string) (tea.Model, tea.Cmd) {
	blocks := m.editor.State().Blocks()
	if len(blocks) == 0 {
		return m, m.print(WelcomeStyle.Render("No pasted blocks."))
	}
	if len(args) == 0 || strings.EqualFold(args[0], "all") {
		m.editor = m.editor.SetBlocksExpanded(expand)
		return m, nil
	}

	id, err := strconv.Atoi(strings.TrimPrefix(args[0], "#"))
	if err != nil {
		return m, m.print(m.renderError(fmt.Sprintf("Invalid block id: %s", args[0])))
	}
	if _, ok := m.editor.State().Block(id); !ok {
		return m, m.print(m.renderError(fmt.Sprintf("No pasted block #%d.", id)))
	}
	if expand {
		m.editor = m.editor.ExpandBlock(id).End()
	} else {
		m.editor = m.editor.CollapseBlock(id).End()
	}
	m.logger.Printf("block: set #%d expanded=%v", id, expand)
	return m, nil
}

func (m Model) handleHistoryCommand(args []string) (tea.Model, tea.Cmd) {
	if len(args) > 0 && strings.EqualFold(args[0], "clear") {
		m.history = nil
		m.resetHistory()
		if m.Store != nil {
			if err := m.Store.ClearSubmissions(m.projectPath); err != nil {
				m.logger.Printf("history: clear: %v", err)
				return m, m.print(m.renderError("Could not clear history: " + err.Error()))
			}
		}
		return m, m.print(WelcomeStyle.Render("History cleared."))
	}
	if len(args) > 0 && strings.EqualFold(args[0], "pick") {
		return m.openHistoryPicker()
	}

	n := defaultHistoryShown
	if len(args) > 0 {
		v, err := config.ParseBoundedInt(args[0], 1, 1000)
		if err != nil {
			return m, m.print(m.renderError("usage: /history [count|clear|pick]"))
		}
		n = v
	}

	var subs []domain.Submission
	if m.historyEnabled() {
		var err error
		subs, err = m.Store.RecentSubmissions(m.projectPath, n)
		if err != nil {
			m.logger.Printf("history: list: %v", err)
			return m, m.print(m.renderError("Could not read history: " + err.Error()))
		}
	} else {
		start := max(0, len(m.history)-n)
		for _, text := range m.history[start:] {
			subs = append(subs, domain.Submission{Text: text})
		}
	}
	return m, m.print(FormatHistory(subs, m.width))
}

// openHistoryPicker shows every remembered submission in the picker.
func (m Model) openHistoryPicker() (tea.Model, tea.Cmd) {
	var subs []domain.Submission
	if m.historyEnabled() {
		var err error
		subs, err = m.Store.RecentSubmissions(m.projectPath, m.Prefs.HistoryLimit)
		if err != nil {
			m.logger.Printf("history: list: %v", err)
			return m, m.print(m.renderError("Could not read history: " + err.Error()))
		}
	} else {
		for _, text := range m.history {
			subs = append(subs, domain.Submission{Text: text})
		}
	}
	if len(subs) == 0 {
		return m, m.print(WelcomeStyle.Render("No history yet."))
	}
	m.dismissCompletions()
	m.picker = NewHistoryPicker(subs)
	return m, nil
}

// applyPreferences pushes changed preferences into the editor and the paste
// coalescer.
func (m *Model) applyPreferences() {
	m.editor = m.editor.WithCollapseThreshold(m.Prefs.CollapseThreshold).
		Resize(m.inputWidth(), m.inputHeight())
	m.paste = m.paste.WithInterval(m.Prefs.PasteDebounce())
	m.trimHistory()
}

// helpText lists the slash commands by group, then the key bindings.
func (m Model) helpText() string {
	var b strings.Builder
	for i, g := range domain.CommandGroups {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(HeadingStyle.Render(g.Label))
		b.WriteString("\n")
		for _, c := range domain.CommandDefs {
			if c.Group != g.Key {
				continue
			}
			fmt.Fprintf(&b, "  %s %s\n", BulletStyle.Render(fmt.Sprintf("%-10s", c.Name)), c.Description)
		}
	}
	b.WriteString("\n")
	b.WriteString(HeadingStyle.Render("Keys"))
	b.WriteString("\n")
	b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	b.WriteString("\n")
	b.WriteString(FooterMeta.Render("ctrl+a/e line start/end · ctrl+w delete word · alt+←/→ word motion · pgup/pgdn page"))
	b.WriteString("\n")
	b.WriteString(FooterMeta.Render("A command on the last line acts on the lines above it."))
	return b.String()
}

// FormatBlocks lists pasted blocks for /blocks.
func FormatBlocks(blocks []editor.BlockInfo) string {
	if len(blocks) == 0 {
		return WelcomeStyle.Render("No pasted blocks.")
	}
	lines := []string{HeadingStyle.Render("Pasted blocks")}
	for _, b := range blocks {
		state := "collapsed"
		if b.Expanded {
			state = "expanded"
		}
		lines = append(lines, fmt.Sprintf("  #%d  %d lines  %s at line %d", b.ID, b.LineCount, state, b.StartLine+1))
	}
	return strings.Join(lines, "\n")
}

// FormatHistory lists submissions oldest first for /history.
func FormatHistory(subs []domain.Submission, width int) string {
	if len(subs) == 0 {
		return WelcomeStyle.Render("No history yet.")
	}
	preview := max(20, width-12)
	lines := []string{HeadingStyle.Render("History")}
	for i, s := range subs {
		line := fmt.Sprintf("  %3d  %s", i+1, s.Preview(preview))
		if !s.CreatedAt.IsZero() {
			line += FooterMeta.Render("  " + TimeAgo(s.CreatedAt))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
