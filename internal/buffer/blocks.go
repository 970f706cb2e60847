package buffer

import (
	"fmt"
	"slices"
	"strings"

	"github.com/batalabs/promptpad/internal/textwidth"
)

// Block is a folded paste. While collapsed, the line at StartLine holds
// Placeholder; while expanded, the LineCount lines from StartLine hold
// Content, with any text that surrounded the placeholder kept before the
// first line and after the last.
type Block struct {
	ID          int
	StartLine   int
	LineCount   int
	Content     []string
	Expanded    bool
	Placeholder string

	// context that surrounded the placeholder, set while expanded
	lead, trail string
}

// PlaceholderText returns the placeholder shown for block id folding n lines.
func PlaceholderText(id, n int) string {
	return fmt.Sprintf("[Pasted text #%d +%d lines]", id, n)
}

// Blocks returns the registered blocks in id order.
func (s State) Blocks() []Block {
	out := make([]Block, len(s.blocks))
	for i, b := range s.blocks {
		b.Content = slices.Clone(b.Content)
		out[i] = b
	}
	return out
}

// Block returns the block with the given id.
func (s State) Block(id int) (Block, bool) {
	i := s.blockIndex(id)
	if i < 0 {
		return Block{}, false
	}
	b := s.blocks[i]
	b.Content = slices.Clone(b.Content)
	return b, true
}

func (s State) blockIndex(id int) int {
	for i, b := range s.blocks {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// span is the codepoint range of a collapsed placeholder on one line.
type span struct {
	id         int
	start, end int
}

// placeholderSpans returns the collapsed placeholders on row.
func (s State) placeholderSpans(row int) []span {
	line := s.Line(row)
	var spans []span
	for _, b := range s.blocks {
		if b.Expanded || b.StartLine != row {
			continue
		}
		idx := strings.Index(line, b.Placeholder)
		if idx < 0 {
			continue
		}
		start := textwidth.Len(line[:idx])
		spans = append(spans, span{id: b.ID, start: start, end: start + textwidth.Len(b.Placeholder)})
	}
	return spans
}

// placeholderContaining returns the placeholder the cursor sits strictly
// inside of, if any.
func (s State) placeholderContaining(c Cursor) (span, bool) {
	for _, sp := range s.placeholderSpans(c.Row) {
		if c.Col > sp.start && c.Col < sp.end {
			return sp, true
		}
	}
	return span{}, false
}

// InsidePlaceholder reports whether the cursor is strictly inside a
// collapsed placeholder, where edits are rejected.
func (s State) InsidePlaceholder() bool {
	_, ok := s.placeholderContaining(s.cursor)
	return ok
}

// BlockAtCursor returns the block a toggle at the cursor would act on.
func (s State) BlockAtCursor() (Block, bool) {
	if id, ok := s.toggleTarget(); ok {
		return s.Block(id)
	}
	return Block{}, false
}

func (s State) insertCollapsed(parts []string) State {
	id := s.nextID
	if id < 1 {
		id = 1
	}
	ph := PlaceholderText(id, len(parts))
	c := s.cursor
	before, after := runeSplit(s.lines[c.Row], c.Col)
	cur := Cursor{Row: c.Row, Col: textwidth.Len(before) + textwidth.Len(ph)}
	ns := s.splice(c.Row, c.Row, []string{before + ph + after}, cur)
	ns.blocks = append(slices.Clone(ns.blocks), Block{
		ID:          id,
		StartLine:   c.Row,
		LineCount:   len(parts),
		Content:     slices.Clone(parts),
		Placeholder: ph,
	})
	ns.nextID = id + 1
	return ns
}

// toggleTarget picks the block a toggle acts on: a collapsed placeholder
// under the cursor, else the expanded block whose span holds the cursor,
// else the collapsed placeholder on the cursor row nearest before the cursor
// (or the first one after it).
func (s State) toggleTarget() (int, bool) {
	c := s.cursor
	spans := s.placeholderSpans(c.Row)
	for _, sp := range spans {
		if c.Col >= sp.start && c.Col <= sp.end {
			return sp.id, true
		}
	}
	for _, b := range s.blocks {
		if b.Expanded && c.Row >= b.StartLine && c.Row < b.StartLine+b.LineCount {
			return b.ID, true
		}
	}
	if len(spans) == 0 {
		return 0, false
	}
	best, found := spans[0], false
	for _, sp := range spans {
		switch {
		case sp.start <= c.Col && (!found || sp.start > best.start):
			best, found = sp, true
		case !found && sp.start < best.start:
			best = sp
		}
	}
	return best.id, true
}

// ToggleBlockAtCursor expands the collapsed block on the cursor row or
// collapses the expanded block around the cursor.
func (s State) ToggleBlockAtCursor() State {
	s = s.clampCursor()
	id, ok := s.toggleTarget()
	if !ok {
		return s
	}
	if b, _ := s.Block(id); b.Expanded {
		return s.CollapseBlock(id)
	}
	return s.ExpandBlock(id)
}

// ExpandBlock replaces the placeholder of a collapsed block with its
// content. The cursor must be on the placeholder's line.
func (s State) ExpandBlock(id int) State {
	s = s.clampCursor()
	i := s.blockIndex(id)
	if i < 0 {
		return s
	}
	b := s.blocks[i]
	c := s.cursor
	if b.Expanded || b.StartLine != c.Row || len(b.Content) == 0 {
		return s
	}
	line := s.lines[b.StartLine]
	idx := strings.Index(line, b.Placeholder)
	if idx < 0 {
		return s
	}
	lead, trail := line[:idx], line[idx+len(b.Placeholder):]
	phStart := textwidth.Len(lead)
	phEnd := phStart + textwidth.Len(b.Placeholder)

	n := len(b.Content)
	repl := slices.Clone(b.Content)
	repl[0] = lead + repl[0]
	contentEnd := textwidth.Len(repl[n-1])
	repl[n-1] = repl[n-1] + trail

	cur := Cursor{Row: b.StartLine + n - 1, Col: contentEnd}
	switch {
	case c.Col <= phStart:
		cur = Cursor{Row: b.StartLine, Col: c.Col}
	case c.Col >= phEnd:
		cur.Col = contentEnd + c.Col - phEnd
	}

	ns := s.withoutBlock(id).splice(b.StartLine, b.StartLine, repl, cur)
	b.Expanded = true
	b.LineCount = n
	b.lead, b.trail = lead, trail
	return ns.withBlock(b)
}

// CollapseBlock folds an expanded block back into its placeholder. The
// cursor must be inside the block's span.
func (s State) CollapseBlock(id int) State {
	s = s.clampCursor()
	i := s.blockIndex(id)
	if i < 0 {
		return s
	}
	b := s.blocks[i]
	c := s.cursor
	first, last := b.StartLine, b.StartLine+b.LineCount-1
	if !b.Expanded || c.Row < first || c.Row > last || last >= len(s.lines) {
		return s
	}
	firstLine, lastLine := s.lines[first], s.lines[last]
	if !strings.HasPrefix(firstLine, b.lead) || !strings.HasSuffix(lastLine, b.trail) {
		return s
	}

	leadLen := textwidth.Len(b.lead)
	phEnd := leadLen + textwidth.Len(b.Placeholder)
	contentEnd := textwidth.Len(lastLine) - textwidth.Len(b.trail)

	cur := Cursor{Row: first, Col: phEnd}
	switch {
	case c.Row == first && c.Col <= leadLen:
		cur.Col = c.Col
	case c.Row == last && c.Col >= contentEnd:
		cur.Col = phEnd + c.Col - contentEnd
	}

	line := b.lead + b.Placeholder + b.trail
	ns := s.withoutBlock(id).splice(first, last, []string{line}, cur)
	b.Expanded = false
	b.lead, b.trail = "", ""
	return ns.withBlock(b)
}

// DeleteBlock removes a collapsed block and its placeholder. The cursor must
// be on the placeholder's line and ends up where the placeholder was.
func (s State) DeleteBlock(id int) State {
	s = s.clampCursor()
	i := s.blockIndex(id)
	if i < 0 {
		return s
	}
	b := s.blocks[i]
	if b.Expanded || b.StartLine != s.cursor.Row {
		return s
	}
	line := s.lines[b.StartLine]
	idx := strings.Index(line, b.Placeholder)
	if idx < 0 {
		return s
	}
	joined := line[:idx] + line[idx+len(b.Placeholder):]
	cur := Cursor{Row: b.StartLine, Col: textwidth.Len(line[:idx])}
	return s.withoutBlock(id).splice(b.StartLine, b.StartLine, []string{joined}, cur)
}

// ExpandedText returns the content with every collapsed placeholder replaced
// by the text it stands for. The state is not modified.
func (s State) ExpandedText() string {
	lines := slices.Clone(s.lines)
	for _, b := range s.blocks {
		if b.Expanded || b.StartLine < 0 || b.StartLine >= len(lines) {
			continue
		}
		lines[b.StartLine] = strings.Replace(lines[b.StartLine], b.Placeholder, strings.Join(b.Content, "\n"), 1)
	}
	return strings.Join(lines, "\n")
}

func (s State) withoutBlock(id int) State {
	s.blocks = slices.DeleteFunc(slices.Clone(s.blocks), func(b Block) bool { return b.ID == id })
	return s
}

func (s State) withBlock(b Block) State {
	blocks := append(slices.Clone(s.blocks), b)
	slices.SortFunc(blocks, func(a, b Block) int { return a.ID - b.ID })
	s.blocks = blocks
	return s
}

// reconcile updates the registry after lines [r0, r1] of the old buffer were
// replaced by k lines, producing lines. Collapsed blocks are re-located by
// their placeholder and dropped when it is gone. Expanded blocks below the
// edit shift. An expanded block the edit touched survives only while its
// content is still intact; otherwise it is dissolved into plain text.
func reconcile(blocks []Block, lines []string, r0, r1, k int) []Block {
	if len(blocks) == 0 {
		return nil
	}
	delta := k - (r1 - r0 + 1)
	out := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		if b.Expanded {
			end := b.StartLine + b.LineCount - 1
			switch {
			case end < r0:
			case b.StartLine > r1:
				b.StartLine += delta
			default:
				starts := []int{b.StartLine, b.StartLine + delta}
				if r0 <= b.StartLine {
					starts[0], starts[1] = starts[1], starts[0]
				}
				kept := false
				for _, start := range starts {
					if nb, ok := intactAt(lines, start, b); ok {
						b, kept = nb, true
						break
					}
				}
				if !kept {
					continue
				}
			}
			out = append(out, b)
			continue
		}
		expected := b.StartLine
		switch {
		case b.StartLine > r1:
			expected += delta
		case b.StartLine >= r0:
			expected = r0
		}
		row := locate(lines, b.Placeholder, expected)
		if row < 0 {
			continue
		}
		b.StartLine = row
		out = append(out, b)
	}
	return out
}

// intactAt reports whether the content of expanded block b still sits in
// lines starting at row start. Inner lines must match exactly; the first
// line may gain text before the content and the last line text after it,
// which become the block's new lead and trail.
func intactAt(lines []string, start int, b Block) (Block, bool) {
	n := len(b.Content)
	if n < 2 || start < 0 || start+n > len(lines) {
		return b, false
	}
	first, last := lines[start], lines[start+n-1]
	if !strings.HasSuffix(first, b.Content[0]) || !strings.HasPrefix(last, b.Content[n-1]) {
		return b, false
	}
	for i := 1; i < n-1; i++ {
		if lines[start+i] != b.Content[i] {
			return b, false
		}
	}
	b.StartLine = start
	b.lead = first[:len(first)-len(b.Content[0])]
	b.trail = last[len(b.Content[n-1]):]
	return b, true
}

// locate finds the line holding ph, searching outward from expected.
func locate(lines []string, ph string, expected int) int {
	expected = clamp(expected, 0, len(lines)-1)
	for d := 0; d < len(lines); d++ {
		if r := expected + d; r >= 0 && r < len(lines) && strings.Contains(lines[r], ph) {
			return r
		}
		if d == 0 {
			continue
		}
		if r := expected - d; r >= 0 && r < len(lines) && strings.Contains(lines[r], ph) {
			return r
		}
	}
	return -1
}
