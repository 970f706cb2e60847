// Package viewport keeps a fixed-size window over the visual rows of a
// layout and translates screen positions back to the content.
package viewport

// Viewport is the visible window. ScrollRow is the topmost visible visual
// row and stays within [0, max(0, total-Height)].
type Viewport struct {
	Width     int
	Height    int
	ScrollRow int
}

// New returns a viewport of the given size scrolled to the top. Width is
// clamped to at least 1 and Height to at least 0.
func New(width, height int) Viewport {
	return Viewport{}.Resize(width, height)
}

// Resize changes the window size, keeping the scroll row.
func (v Viewport) Resize(width, height int) Viewport {
	if width < 1 {
		width = 1
	}
	if height < 0 {
		height = 0
	}
	v.Width, v.Height = width, height
	return v
}

// MaxScroll returns the largest valid scroll row for total visual rows.
func (v Viewport) MaxScroll(total int) int {
	return max(0, total-v.Height)
}

// Follow scrolls the least amount needed to show cursorRow, then clamps
// the scroll row to the content.
func (v Viewport) Follow(cursorRow, total int) Viewport {
	if cursorRow < v.ScrollRow {
		v.ScrollRow = cursorRow
	}
	if v.Height > 0 && cursorRow >= v.ScrollRow+v.Height {
		v.ScrollRow = cursorRow - v.Height + 1
	}
	v.ScrollRow = clamp(v.ScrollRow, 0, v.MaxScroll(total))
	return v
}

// ScrollBy moves the window n rows down (up for negative n), clamped.
func (v Viewport) ScrollBy(n, total int) Viewport {
	v.ScrollRow = clamp(v.ScrollRow+n, 0, v.MaxScroll(total))
	return v
}

// Contains reports whether visual row vrow is on screen.
func (v Viewport) Contains(vrow int) bool {
	return vrow >= v.ScrollRow && vrow < v.ScrollRow+v.Height
}

// Slice returns exactly Height rows of lines starting at ScrollRow, padded
// with empty rows past the end of the content.
func (v Viewport) Slice(lines []string) []string {
	out := make([]string, v.Height)
	for i := range out {
		if r := v.ScrollRow + i; r >= 0 && r < len(lines) {
			out[i] = lines[r]
		}
	}
	return out
}

// ToVisual converts a screen position inside the window to an absolute
// visual coordinate. The position is clamped to the window first.
func (v Viewport) ToVisual(screenRow, screenCol int) (vrow, vcol int) {
	screenRow = clamp(screenRow, 0, max(0, v.Height-1))
	screenCol = clamp(screenCol, 0, max(0, v.Width-1))
	return v.ScrollRow + screenRow, screenCol
}

// ToScreen converts an absolute visual row to a window-relative one.
func (v Viewport) ToScreen(vrow, vcol int) (row, col int) {
	return vrow - v.ScrollRow, vcol
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
