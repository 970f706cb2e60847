package buffer

import (
	"strings"
	"unicode"

	"github.com/rivo/uniseg"

	"github.com/batalabs/promptpad/internal/textwidth"
)

// Insert types or pastes text at the cursor. Inserts of more lines than the
// collapse threshold become a collapsed block. Inserting while the cursor is
// strictly inside a collapsed placeholder is a no-op.
func (s State) Insert(text string) State {
	s = s.clampCursor()
	text = Normalize(text)
	if text == "" {
		return s
	}
	if _, ok := s.placeholderContaining(s.cursor); ok {
		return s
	}
	parts := strings.Split(text, "\n")
	if len(parts) > s.CollapseThreshold() {
		return s.insertCollapsed(parts)
	}

	c := s.cursor
	before, after := runeSplit(s.lines[c.Row], c.Col)
	repl := make([]string, len(parts))
	copy(repl, parts)
	last := len(repl) - 1
	endCol := textwidth.Len(repl[last])
	if last == 0 {
		endCol += textwidth.Len(before)
	}
	repl[0] = before + repl[0]
	repl[last] = repl[last] + after
	return s.splice(c.Row, c.Row, repl, Cursor{Row: c.Row + last, Col: endCol})
}

// Backspace deletes the codepoint before the cursor, joining lines at a line
// start. At the end of a collapsed placeholder the whole block goes.
func (s State) Backspace() State {
	s = s.clampCursor()
	c := s.cursor
	for _, span := range s.placeholderSpans(c.Row) {
		if c.Col == span.end {
			return s.DeleteBlock(span.id)
		}
		if c.Col > span.start && c.Col < span.end {
			return s
		}
	}
	if c.Col > 0 {
		rs := []rune(s.lines[c.Row])
		line := string(rs[:c.Col-1]) + string(rs[c.Col:])
		return s.splice(c.Row, c.Row, []string{line}, Cursor{Row: c.Row, Col: c.Col - 1})
	}
	if c.Row == 0 {
		return s
	}
	prev := s.lines[c.Row-1]
	joined := prev + s.lines[c.Row]
	return s.splice(c.Row-1, c.Row, []string{joined}, Cursor{Row: c.Row - 1, Col: textwidth.Len(prev)})
}

// Delete removes the codepoint under the cursor, joining the next line at a
// line end. At the start of a collapsed placeholder the whole block goes.
func (s State) Delete() State {
	s = s.clampCursor()
	c := s.cursor
	for _, span := range s.placeholderSpans(c.Row) {
		if c.Col == span.start {
			return s.DeleteBlock(span.id)
		}
		if c.Col > span.start && c.Col < span.end {
			return s
		}
	}
	rs := []rune(s.lines[c.Row])
	if c.Col < len(rs) {
		line := string(rs[:c.Col]) + string(rs[c.Col+1:])
		return s.splice(c.Row, c.Row, []string{line}, c)
	}
	if c.Row >= len(s.lines)-1 {
		return s
	}
	joined := s.lines[c.Row] + s.lines[c.Row+1]
	return s.splice(c.Row, c.Row+1, []string{joined}, c)
}

// WordLeft moves to the start of the previous word, or to the end of the
// previous line from column 0.
func (s State) WordLeft() State {
	s = s.clampCursor()
	c := s.cursor
	if c.Col == 0 {
		return s.Left()
	}
	return s.MoveTo(c.Row, s.wordStartBefore(c.Row, c.Col))
}

// WordRight moves to the end of the next word, or to the start of the next
// line from the end of a line.
func (s State) WordRight() State {
	s = s.clampCursor()
	c := s.cursor
	if c.Col >= s.lineLen(c.Row) {
		return s.Right()
	}
	for _, w := range lineWords(s.lines[c.Row]) {
		if w.end > c.Col && !w.space {
			return s.MoveTo(c.Row, w.end)
		}
	}
	return s.LineEnd()
}

// DeleteWordBackward deletes from the start of the previous word to the
// cursor. A placeholder is never cut in half: at its end boundary the block is
// deleted, and a word start inside it is pushed to its end.
func (s State) DeleteWordBackward() State {
	s = s.clampCursor()
	c := s.cursor
	if c.Col == 0 {
		return s.Backspace()
	}
	target := s.wordStartBefore(c.Row, c.Col)
	for _, span := range s.placeholderSpans(c.Row) {
		if c.Col == span.end {
			return s.DeleteBlock(span.id)
		}
		if c.Col > span.start && c.Col < span.end {
			return s
		}
		if target > span.start && target < span.end {
			target = span.end
		}
	}
	if target >= c.Col {
		return s.Backspace()
	}
	rs := []rune(s.lines[c.Row])
	line := string(rs[:target]) + string(rs[c.Col:])
	return s.splice(c.Row, c.Row, []string{line}, Cursor{Row: c.Row, Col: target})
}

// wordStartBefore returns the start of the last non-space word that begins
// before col on row.
func (s State) wordStartBefore(row, col int) int {
	target := 0
	for _, w := range lineWords(s.lines[row]) {
		if w.start >= col {
			break
		}
		if !w.space {
			target = w.start
		}
	}
	return target
}

type word struct {
	start, end int
	space      bool
}

// lineWords splits line into Unicode word segments with codepoint offsets.
func lineWords(line string) []word {
	var words []word
	state := -1
	offset := 0
	rest := line
	for len(rest) > 0 {
		var w string
		w, rest, state = uniseg.FirstWordInString(rest, state)
		n := textwidth.Len(w)
		words = append(words, word{
			start: offset,
			end:   offset + n,
			space: strings.TrimFunc(w, unicode.IsSpace) == "",
		})
		offset += n
	}
	return words
}
