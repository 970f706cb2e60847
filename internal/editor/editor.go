// Package editor is the prompt editing surface. It owns one buffer snapshot,
// keeps a layout of it wrapped to the viewport width, and keeps the
// viewport scrolled so the cursor is always on screen.
package editor

import (
	"strings"

	"github.com/batalabs/promptpad/internal/buffer"
	"github.com/batalabs/promptpad/internal/layout"
	"github.com/batalabs/promptpad/internal/viewport"
)

// Key is one keystroke or text event. Name is the logical key ("left",
// "backspace", "a", ...); Sequence is the raw text the key produces.
type Key struct {
	Name     string
	Ctrl     bool
	Meta     bool
	Shift    bool
	Sequence string
}

// Editor is a value type: every method returns the updated copy.
type Editor struct {
	state buffer.State
	lay   layout.Layout
	vp    viewport.Viewport

	// visual column kept across consecutive vertical moves, -1 when unset
	goal int
}

// New returns an empty editor with a width x height viewport.
func New(width, height int) Editor {
	e := Editor{
		state: buffer.New(""),
		vp:    viewport.New(width, height),
		goal:  -1,
	}
	return e.apply(e.state)
}

// WithCollapseThreshold sets the number of lines above which inserts fold
// into a collapsed block.
func (e Editor) WithCollapseThreshold(n int) Editor {
	e.state = e.state.WithCollapseThreshold(n)
	return e
}

// State returns the current buffer snapshot.
func (e Editor) State() buffer.State { return e.state }

// Viewport returns the current viewport.
func (e Editor) Viewport() viewport.Viewport { return e.vp }

// Text returns the raw buffer text, placeholders included.
func (e Editor) Text() string { return e.state.Text() }

// IsEmpty reports whether the buffer is empty.
func (e Editor) IsEmpty() bool { return e.state.IsEmpty() }

// Cursor returns the logical cursor.
func (e Editor) Cursor() buffer.Cursor { return e.state.Cursor() }

// VisualCursor returns the cursor's absolute visual position.
func (e Editor) VisualCursor() (row, col int) {
	c := e.state.Cursor()
	return e.lay.ToVisual(c.Row, c.Col)
}

// RowSource returns the logical line and starting column of visual row vrow.
func (e Editor) RowSource(vrow int) (row, col int) {
	return e.lay.RowStart(vrow)
}

// OnFirstRow reports whether the cursor is on the first visual row.
func (e Editor) OnFirstRow() bool {
	r, _ := e.VisualCursor()
	return r == 0
}

// OnLastRow reports whether the cursor is on the last visual row.
func (e Editor) OnLastRow() bool {
	r, _ := e.VisualCursor()
	return r >= e.lay.TotalRows()-1
}

// SetText replaces all content and drops every block.
func (e Editor) SetText(text string) Editor {
	return e.apply(e.state.SetText(text))
}

// Resize changes the viewport and rewraps the content.
func (e Editor) Resize(width, height int) Editor {
	e.vp = e.vp.Resize(width, height)
	e.goal = -1
	return e.apply(e.state)
}

// Insert inserts text at the cursor.
func (e Editor) Insert(text string) Editor {
	return e.apply(e.state.Insert(text))
}

// InsertAt moves the cursor to c and inserts text there as one edit.
func (e Editor) InsertAt(c buffer.Cursor, text string) Editor {
	return e.apply(e.state.MoveTo(c.Row, c.Col).Insert(text))
}

// ToggleBlockAtCursor expands or collapses the block at the cursor.
func (e Editor) ToggleBlockAtCursor() Editor {
	return e.apply(e.state.ToggleBlockAtCursor())
}

// End moves the cursor to the end of the buffer.
func (e Editor) End() Editor {
	s := e.state
	return e.apply(s.MoveTo(s.LineCount()-1, 0).LineEnd())
}

// ExpandBlock expands block id and leaves the cursor on its first line.
func (e Editor) ExpandBlock(id int) Editor {
	return e.apply(expandBlock(e.state, id))
}

// CollapseBlock folds block id back into its placeholder and leaves the
// cursor on the placeholder line.
func (e Editor) CollapseBlock(id int) Editor {
	return e.apply(collapseBlock(e.state, id))
}

// SetBlocksExpanded expands or collapses every block, then parks the cursor
// at the end of the buffer.
func (e Editor) SetBlocksExpanded(expanded bool) Editor {
	s := e.state
	for _, b := range s.Blocks() {
		if b.Expanded == expanded {
			continue
		}
		if expanded {
			s = expandBlock(s, b.ID)
		} else {
			s = collapseBlock(s, b.ID)
		}
	}
	return e.apply(s).End()
}

func expandBlock(s buffer.State, id int) buffer.State {
	b, ok := s.Block(id)
	if !ok || b.Expanded {
		return s
	}
	return s.MoveTo(b.StartLine, 0).ExpandBlock(id)
}

func collapseBlock(s buffer.State, id int) buffer.State {
	b, ok := s.Block(id)
	if !ok || !b.Expanded {
		return s
	}
	return s.MoveTo(b.StartLine, 0).CollapseBlock(id)
}

// CommandLine returns the last logical line, leading blanks removed, when
// it starts with "/".
func (e Editor) CommandLine() (string, bool) {
	last := strings.TrimLeft(e.state.Line(e.state.LineCount()-1), " \t")
	if !strings.HasPrefix(last, "/") {
		return "", false
	}
	return last, true
}

// DropLastLine deletes the last logical line together with the line break
// before it. Blocks above it are untouched.
func (e Editor) DropLastLine() Editor {
	s := e.state
	row := s.LineCount() - 1
	s = s.MoveTo(row, 0).LineEnd()
	for s.Cursor().Col > 0 {
		next := s.Backspace()
		if next.Cursor() == s.Cursor() && next.Text() == s.Text() {
			break
		}
		s = next
	}
	if row > 0 {
		s = s.Backspace()
	}
	return e.apply(s)
}

// ExpandAllBlocks returns the text with every placeholder replaced by its
// content. The editor is not modified.
func (e Editor) ExpandAllBlocks() string {
	return e.state.ExpandedText()
}

// Click moves the cursor to the content under a screen position relative to
// the top-left of the viewport.
func (e Editor) Click(screenRow, screenCol int) Editor {
	vrow, vcol := e.vp.ToVisual(screenRow, screenCol)
	row, col := e.lay.ToLogical(vrow, vcol)
	return e.apply(e.state.MoveTo(row, col))
}

// Scroll moves the viewport n visual rows and drags the cursor along when
// it would leave the window.
func (e Editor) Scroll(n int) Editor {
	total := e.lay.TotalRows()
	e.vp = e.vp.ScrollBy(n, total)
	vrow, vcol := e.VisualCursor()
	if e.vp.Height == 0 || e.vp.Contains(vrow) {
		return e
	}
	target := clamp(vrow, e.vp.ScrollRow, e.vp.ScrollRow+e.vp.Height-1)
	row, col := e.lay.ToLogical(target, vcol)
	return e.apply(e.state.MoveTo(row, col))
}

// moveVisual moves the cursor dRows visual rows, keeping the visual column
// of the first vertical move in a run.
func (e Editor) moveVisual(dRows int) Editor {
	vrow, vcol := e.VisualCursor()
	goal := e.goal
	if goal < 0 {
		goal = vcol
	}
	target := clamp(vrow+dRows, 0, e.lay.TotalRows()-1)
	if target == vrow {
		return e
	}
	row, col := e.lay.ToLogical(target, goal)
	e = e.apply(e.state.MoveTo(row, col))
	e.goal = goal
	return e
}

// apply installs s, rewraps and scrolls to the cursor. Any transition
// through apply resets the vertical goal column.
func (e Editor) apply(s buffer.State) Editor {
	e.state = s
	e.lay = layout.New(s.Lines(), e.vp.Width)
	vrow, _ := e.VisualCursor()
	e.vp = e.vp.Follow(vrow, e.lay.TotalRows())
	e.goal = -1
	return e
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
