// Package buffer is the logical text model behind the prompt editor.
//
// A State is an immutable snapshot: every operation returns a new State and
// leaves its receiver untouched, so callers can keep old snapshots around
// freely. Columns are codepoint offsets. Invalid positions are clamped and
// unknown block ids are ignored; no operation fails.
package buffer

import (
	"slices"
	"strings"

	"github.com/batalabs/promptpad/internal/textwidth"
)

// DefaultCollapseThreshold is the largest line count inserted literally.
// Anything longer is folded into a collapsed block.
const DefaultCollapseThreshold = 5

// Cursor is a logical position: Row indexes the lines, Col is a codepoint
// offset into that line (0 <= Col <= line length).
type Cursor struct {
	Row int
	Col int
}

// State is one snapshot of the buffer.
type State struct {
	lines     []string
	cursor    Cursor
	blocks    []Block
	nextID    int
	threshold int
}

// New returns a buffer holding text with the cursor at its end.
func New(text string) State {
	s := State{nextID: 1, threshold: DefaultCollapseThreshold}
	return s.SetText(text)
}

// WithCollapseThreshold returns a copy that folds inserts of more than n
// lines. n is clamped to at least 1.
func (s State) WithCollapseThreshold(n int) State {
	if n < 1 {
		n = 1
	}
	s.threshold = n
	return s
}

// CollapseThreshold returns the current fold threshold.
func (s State) CollapseThreshold() int {
	if s.threshold < 1 {
		return DefaultCollapseThreshold
	}
	return s.threshold
}

// SetText replaces all content, drops every block and puts the cursor at the
// end of the last line.
func (s State) SetText(text string) State {
	s.lines = strings.Split(Normalize(text), "\n")
	s.blocks = nil
	if s.nextID < 1 {
		s.nextID = 1
	}
	last := len(s.lines) - 1
	s.cursor = Cursor{Row: last, Col: textwidth.Len(s.lines[last])}
	return s
}

// Normalize converts CRLF and CR line endings to LF and strips control
// characters other than tab and newline.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7F || (r >= 0x80 && r <= 0x9F) {
			return -1
		}
		return r
	}, text)
}

// Lines returns a copy of the logical lines.
func (s State) Lines() []string {
	if len(s.lines) == 0 {
		return []string{""}
	}
	return slices.Clone(s.lines)
}

// Line returns logical line i, or "" if i is out of range.
func (s State) Line(i int) string {
	if i < 0 || i >= len(s.lines) {
		return ""
	}
	return s.lines[i]
}

// LineCount returns the number of logical lines (always at least 1).
func (s State) LineCount() int {
	if len(s.lines) == 0 {
		return 1
	}
	return len(s.lines)
}

// Text returns the raw content, placeholders included.
func (s State) Text() string {
	return strings.Join(s.lines, "\n")
}

// IsEmpty reports whether the buffer holds no text at all.
func (s State) IsEmpty() bool {
	return len(s.lines) <= 1 && s.Line(0) == ""
}

// Cursor returns the logical cursor.
func (s State) Cursor() Cursor {
	return s.cursor
}

// MoveCursor moves the cursor by (dRow, dCol), clamping the row to the
// buffer and then the column to the target line.
func (s State) MoveCursor(dRow, dCol int) State {
	return s.MoveTo(s.cursor.Row+dRow, s.cursor.Col+dCol)
}

// MoveTo places the cursor at (row, col), clamped.
func (s State) MoveTo(row, col int) State {
	s.cursor = Cursor{Row: row, Col: col}
	return s.clampCursor()
}

// Left moves one codepoint back, wrapping to the end of the previous line.
func (s State) Left() State {
	c := s.cursor
	if c.Col > 0 {
		return s.MoveTo(c.Row, c.Col-1)
	}
	if c.Row > 0 {
		return s.MoveTo(c.Row-1, s.lineLen(c.Row-1))
	}
	return s
}

// Right moves one codepoint forward, wrapping to the start of the next line.
func (s State) Right() State {
	c := s.cursor
	if c.Col < s.lineLen(c.Row) {
		return s.MoveTo(c.Row, c.Col+1)
	}
	if c.Row < len(s.lines)-1 {
		return s.MoveTo(c.Row+1, 0)
	}
	return s
}

// LineStart moves the cursor to column 0.
func (s State) LineStart() State {
	return s.MoveTo(s.cursor.Row, 0)
}

// LineEnd moves the cursor to the end of its line.
func (s State) LineEnd() State {
	return s.MoveTo(s.cursor.Row, s.lineLen(s.cursor.Row))
}

func (s State) lineLen(row int) int {
	return textwidth.Len(s.Line(row))
}

func (s State) clampCursor() State {
	if len(s.lines) == 0 {
		s.lines = []string{""}
	}
	c := s.cursor
	c.Row = clamp(c.Row, 0, len(s.lines)-1)
	c.Col = clamp(c.Col, 0, s.lineLen(c.Row))
	s.cursor = c
	return s
}

// splice replaces lines [r0, r1] with repl, moves the cursor to cur and
// reconciles the block registry against the new lines.
func (s State) splice(r0, r1 int, repl []string, cur Cursor) State {
	lines := make([]string, 0, len(s.lines)-(r1-r0+1)+len(repl))
	lines = append(lines, s.lines[:r0]...)
	lines = append(lines, repl...)
	lines = append(lines, s.lines[r1+1:]...)
	s.blocks = reconcile(s.blocks, lines, r0, r1, len(repl))
	s.lines = lines
	s.cursor = cur
	return s.clampCursor()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// runeSplit splits line at codepoint offset col.
func runeSplit(line string, col int) (string, string) {
	rs := []rune(line)
	col = clamp(col, 0, len(rs))
	return string(rs[:col]), string(rs[col:])
}
