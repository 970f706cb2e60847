package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/batalabs/promptpad/internal/editor"
	"github.com/batalabs/promptpad/internal/layout"
	"github.com/batalabs/promptpad/internal/textwidth"
)

// View renders the input rows, the history picker or completion menu, and
// the footer.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder

	snap := m.editor.Snapshot()
	b.WriteString(m.renderInput(snap))

	if m.picker.IsActive() {
		b.WriteString("\n")
		b.WriteString(m.picker.View(m.width))
	} else if m.completionOn && len(m.completions) > 0 {
		b.WriteString("\n")
		b.WriteString(RenderCompletionMenu(m.completions, m.completionIdx, max(40, m.width)))
	} else {
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter(snap))

	if m.fullscreen && m.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(m.notice)
	}
	return b.String()
}

// visibleRows is the number of viewport rows that hold content. Rows past
// the end of the buffer are not drawn so a short prompt stays short.
func (m Model) visibleRows(snap editor.Snapshot) int {
	return max(0, min(len(snap.VisualLines), snap.TotalRows-snap.ScrollRow))
}

func (m Model) renderInput(snap editor.Snapshot) string {
	prompt := m.Prefs.Prompt
	indent := strings.Repeat(" ", textwidth.StringWidth(prompt))

	var b strings.Builder
	for i := 0; i < m.visibleRows(snap); i++ {
		vrow := snap.ScrollRow + i
		if i > 0 {
			b.WriteString("\n")
		}
		if vrow == 0 {
			b.WriteString(PromptStyle.Render(prompt))
		} else {
			b.WriteString(PromptStyle.Render(indent))
		}

		row, start := m.editor.RowSource(vrow)
		cursor := -1
		if vrow == snap.VisualCursor.Row {
			cursor = snap.Cursor.Col - start
		}
		spans := placeholderSpans(snap.Lines[row], row, snap.Blocks)
		b.WriteString(renderRow(snap.VisualLines[i], start, spans, cursor))
	}
	return b.String()
}

// span is a half-open codepoint range within a logical line.
type span struct{ start, end int }

// placeholderSpans returns where collapsed placeholders sit on line row.
func placeholderSpans(line string, row int, blocks []editor.BlockInfo) []span {
	var out []span
	for _, b := range blocks {
		if b.Expanded || b.StartLine != row {
			continue
		}
		idx := strings.Index(line, b.Placeholder)
		if idx < 0 {
			continue
		}
		s := textwidth.Len(line[:idx])
		out = append(out, span{s, s + textwidth.Len(b.Placeholder)})
	}
	return out
}

// cellClass selects the style of one rendered codepoint.
type cellClass int

const (
	cellText cellClass = iota
	cellPlaceholder
	cellCursor
	cellPlaceholderCursor
)

func (c cellClass) style() lipgloss.Style {
	switch c {
	case cellPlaceholder:
		return PlaceholderStyle
	case cellCursor:
		return CursorStyle
	case cellPlaceholderCursor:
		return PlaceholderCursorStyle
	}
	return InputStyle
}

// renderRow styles one visual row. start is the row's first codepoint
// offset within its logical line; cursor is the cursor offset within the
// row, or -1 when the cursor is elsewhere.
func renderRow(seg string, start int, spans []span, cursor int) string {
	var b strings.Builder
	var run []rune
	class := cellText
	flush := func() {
		if len(run) > 0 {
			b.WriteString(class.style().Render(string(run)))
			run = run[:0]
		}
	}

	n := 0
	for i, r := range []rune(seg) {
		n++
		if r == '\t' {
			r = ' '
		}
		c := cellText
		for _, s := range spans {
			if start+i >= s.start && start+i < s.end {
				c = cellPlaceholder
				break
			}
		}
		if i == cursor {
			c += cellCursor
		}
		if c != class {
			flush()
			class = c
		}
		run = append(run, r)
	}
	flush()

	if cursor >= n {
		b.WriteString(CursorStyle.Render(" "))
	}
	return b.String()
}

func (m Model) renderFooter(snap editor.Snapshot) string {
	parts := []string{"promptpad"}
	if m.version != "" {
		parts[0] += " " + m.version
	}
	if m.Prefs.FooterPosition {
		parts = append(parts, fmt.Sprintf("ln %d, col %d", snap.Cursor.Row+1, snap.Cursor.Col+1))
	}
	collapsed := 0
	for _, b := range snap.Blocks {
		if !b.Expanded {
			collapsed++
		}
	}
	if n := len(snap.Blocks); n > 0 {
		parts = append(parts, fmt.Sprintf("pasted: %d (%d collapsed)", n, collapsed))
	}
	if m.paste.Pending() {
		parts = append(parts, "pasting…")
	}
	if m.historyIdx != -1 {
		parts = append(parts, fmt.Sprintf("history %d/%d", m.historyIdx+1, len(m.history)))
	}

	var b strings.Builder
	b.WriteString(FooterHead.Render(strings.Join(parts, " · ")))
	if m.Prefs.FooterKeybindings {
		b.WriteString("\n")
		b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	}
	return b.String()
}

// FormatSubmission renders a submitted prompt for the scrollback.
func FormatSubmission(text string, width int) string {
	if width < 20 {
		width = 80
	}
	var lines []string
	first := true
	for _, line := range strings.Split(text, "\n") {
		for _, seg := range layout.Wrap(strings.ReplaceAll(line, "\t", " "), width-2).Segments {
			if first {
				lines = append(lines, UserIconStyle.Render("❯ ")+seg)
				first = false
				continue
			}
			lines = append(lines, "  "+seg)
		}
	}
	return strings.Join(lines, "\n")
}

// WrapWords splits s into lines that fit within width cells, breaking at
// word boundaries. Words longer than width are hard-broken.
func WrapWords(s string, width int) []string {
	if width < 10 {
		width = 10
	}
	parts := strings.Fields(s)
	if len(parts) == 0 {
		return []string{""}
	}
	lines := make([]string, 0, 8)
	cur := ""
	for _, word := range parts {
		next := word
		if cur != "" {
			next = cur + " " + word
		}
		if textwidth.StringWidth(next) <= width {
			cur = next
			continue
		}
		if cur != "" {
			lines = append(lines, cur)
		}
		segs := layout.Wrap(word, width).Segments
		lines = append(lines, segs[:len(segs)-1]...)
		cur = segs[len(segs)-1]
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

// TimeAgo returns a human-readable time-ago string.
func TimeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
