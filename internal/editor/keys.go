package editor

import "github.com/batalabs/promptpad/internal/buffer"

// HandleKey applies one editing key. Keys the editor does not know are
// ignored.
func (e Editor) HandleKey(k Key) Editor {
	s := e.state
	switch {
	case k.Ctrl:
		switch k.Name {
		case "a":
			return e.apply(s.LineStart())
		case "e":
			return e.apply(s.LineEnd())
		case "w", "backspace":
			return e.apply(s.DeleteWordBackward())
		case "o":
			return e.ToggleBlockAtCursor()
		case "left":
			return e.apply(s.WordLeft())
		case "right":
			return e.apply(s.WordRight())
		case "b":
			return e.apply(s.Left())
		case "f":
			return e.apply(s.Right())
		case "h":
			return e.apply(s.Backspace())
		case "d":
			return e.apply(s.Delete())
		case "k":
			return e.apply(killToLineEnd(s))
		case "u":
			return e.apply(killToLineStart(s))
		case "j", "return", "enter":
			return e.Insert("\n")
		case "p":
			return e.moveVisual(-1)
		case "n":
			return e.moveVisual(1)
		}
		return e
	case k.Meta:
		switch k.Name {
		case "left", "b":
			return e.apply(s.WordLeft())
		case "right", "f":
			return e.apply(s.WordRight())
		case "backspace":
			return e.apply(s.DeleteWordBackward())
		case "return", "enter":
			return e.Insert("\n")
		}
		return e
	}

	switch k.Name {
	case "left":
		return e.apply(s.Left())
	case "right":
		return e.apply(s.Right())
	case "up":
		return e.moveVisual(-1)
	case "down":
		return e.moveVisual(1)
	case "home":
		return e.apply(s.LineStart())
	case "end":
		return e.apply(s.LineEnd())
	case "backspace":
		return e.apply(s.Backspace())
	case "delete":
		return e.apply(s.Delete())
	case "return", "enter":
		return e.Insert("\n")
	case "tab":
		return e.Insert("\t")
	case "space":
		return e.Insert(" ")
	case "pageup":
		return e.page(-1)
	case "pagedown":
		return e.page(1)
	}
	if k.Sequence != "" {
		return e.Insert(k.Sequence)
	}
	return e
}

// page moves the cursor one viewport height up or down.
func (e Editor) page(dir int) Editor {
	n := max(1, e.vp.Height)
	return e.moveVisual(dir * n)
}

// killToLineEnd deletes from the cursor to the end of its line. A collapsed
// placeholder in the way is deleted whole.
func killToLineEnd(s buffer.State) buffer.State {
	c := s.Cursor()
	end := s.LineEnd().Cursor().Col
	for s.Cursor().Row == c.Row && s.Cursor().Col == c.Col && end > c.Col && !s.InsidePlaceholder() {
		next := s.Delete()
		if next.Text() == s.Text() {
			break
		}
		s = next
		end = s.LineEnd().Cursor().Col
	}
	return s
}

// killToLineStart deletes from the start of the line to the cursor.
func killToLineStart(s buffer.State) buffer.State {
	row := s.Cursor().Row
	for s.Cursor().Col > 0 && s.Cursor().Row == row && !s.InsidePlaceholder() {
		next := s.Backspace()
		if next.Text() == s.Text() {
			break
		}
		s = next
	}
	return s
}
