package tui

import (
	"fmt"
	"strings"

	"github.com/batalabs/promptpad/internal/domain"
)

// pickerMode represents the current interaction mode of the picker.
type pickerMode int

const (
	pickerBrowse        pickerMode = iota // normal browsing
	pickerConfirmDelete                   // waiting for y/n
)

// HistoryPicker is an interactive selector over past submissions. Items are
// listed newest first.
type HistoryPicker struct {
	items       []domain.Submission
	filtered    []domain.Submission
	selectedIdx int
	filter      string
	active      bool

	mode pickerMode
}

// NewHistoryPicker creates a picker over subs, which are given oldest first
// as the store returns them.
func NewHistoryPicker(subs []domain.Submission) *HistoryPicker {
	items := make([]domain.Submission, len(subs))
	for i, s := range subs {
		items[len(subs)-1-i] = s
	}
	return &HistoryPicker{
		items:    items,
		filtered: items,
		active:   true,
	}
}

// IsActive reports whether the picker is currently shown.
func (p *HistoryPicker) IsActive() bool {
	return p != nil && p.active
}

// Dismiss closes the picker.
func (p *HistoryPicker) Dismiss() {
	p.active = false
}

// Mode returns the current picker mode.
func (p *HistoryPicker) Mode() pickerMode {
	return p.mode
}

// Selected returns the highlighted submission, or nil.
func (p *HistoryPicker) Selected() *domain.Submission {
	if len(p.filtered) == 0 {
		return nil
	}
	return &p.filtered[p.selectedIdx]
}

// MoveUp moves the selection up.
func (p *HistoryPicker) MoveUp() {
	if p.selectedIdx > 0 {
		p.selectedIdx--
	}
}

// MoveDown moves the selection down.
func (p *HistoryPicker) MoveDown() {
	if p.selectedIdx < len(p.filtered)-1 {
		p.selectedIdx++
	}
}

// Filter returns the current filter string.
func (p *HistoryPicker) Filter() string {
	return p.filter
}

// SetFilter replaces the filter string and re-filters.
func (p *HistoryPicker) SetFilter(f string) {
	p.filter = f
	p.applyFilter()
}

// AppendFilter adds a rune to the filter.
func (p *HistoryPicker) AppendFilter(r rune) {
	p.filter += string(r)
	p.applyFilter()
}

// BackspaceFilter removes the last rune from the filter.
func (p *HistoryPicker) BackspaceFilter() {
	if len(p.filter) > 0 {
		runes := []rune(p.filter)
		p.filter = string(runes[:len(runes)-1])
		p.applyFilter()
	}
}

// StartDelete enters delete confirmation mode.
func (p *HistoryPicker) StartDelete() {
	if p.Selected() != nil {
		p.mode = pickerConfirmDelete
	}
}

// CancelMode returns to browse mode.
func (p *HistoryPicker) CancelMode() {
	p.mode = pickerBrowse
}

// RemoveSelected removes the highlighted submission and returns it.
func (p *HistoryPicker) RemoveSelected() (domain.Submission, bool) {
	sel := p.Selected()
	p.mode = pickerBrowse
	if sel == nil {
		return domain.Submission{}, false
	}
	removed := *sel
	for i := range p.items {
		if sameSubmission(p.items[i], removed) {
			p.items = append(p.items[:i:i], p.items[i+1:]...)
			break
		}
	}
	idx := p.selectedIdx
	p.applyFilter()
	p.selectedIdx = min(idx, max(0, len(p.filtered)-1))
	return removed, true
}

func sameSubmission(a, b domain.Submission) bool {
	if a.ID != "" || b.ID != "" {
		return a.ID == b.ID
	}
	return a.Text == b.Text
}

func (p *HistoryPicker) applyFilter() {
	if p.filter == "" {
		p.filtered = p.items
	} else {
		lower := strings.ToLower(p.filter)
		p.filtered = nil
		for _, s := range p.items {
			if strings.Contains(strings.ToLower(s.Text), lower) {
				p.filtered = append(p.filtered, s)
			}
		}
	}
	p.selectedIdx = 0
}

// View renders the picker as a string.
func (p *HistoryPicker) View(width int) string {
	if width < 40 {
		width = 40
	}

	var b strings.Builder
	b.WriteString(FooterHead.Render("History"))
	b.WriteString("\n")

	switch p.mode {
	case pickerConfirmDelete:
		preview := ""
		if sel := p.Selected(); sel != nil {
			preview = sel.Preview(30)
		}
		b.WriteString(ErrorLineStyle.Render(fmt.Sprintf("  Delete \"%s\"? (y/n)", preview)))
		b.WriteString("\n\n")
	default:
		b.WriteString(FooterMeta.Render("  Filter: " + p.filter))
		b.WriteString(CursorStyle.Render(" "))
		b.WriteString("\n\n")
	}

	if len(p.filtered) == 0 {
		b.WriteString(FooterMeta.Render("  No matching submissions."))
		b.WriteString("\n")
	} else {
		const maxVisible = 10
		start := 0
		if p.selectedIdx >= maxVisible {
			start = p.selectedIdx - maxVisible + 1
		}
		end := min(start+maxVisible, len(p.filtered))

		preview := max(20, width-16)
		for i := start; i < end; i++ {
			s := p.filtered[i]
			indicator := "  "
			if i == p.selectedIdx {
				indicator = "> "
			}
			line := indicator + s.Preview(preview)
			if !s.CreatedAt.IsZero() {
				line += "  " + TimeAgo(s.CreatedAt)
			}
			if i == p.selectedIdx {
				b.WriteString(CompletionSelStyle.Render(line))
			} else {
				b.WriteString(FooterMeta.Render(line))
			}
			b.WriteString("\n")
		}

		if len(p.filtered) > maxVisible {
			b.WriteString(FooterMeta.Render(fmt.Sprintf("  ... %d total", len(p.filtered))))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if p.mode == pickerConfirmDelete {
		b.WriteString(FooterMeta.Render("  y=delete  n/Esc=cancel"))
	} else {
		b.WriteString(FooterMeta.Render("  Enter=load  d=delete  Esc=cancel"))
	}
	return b.String()
}
