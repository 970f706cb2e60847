// Package layout wraps logical lines into visual rows and maps cursor
// positions between the two coordinate systems.
package layout

import "github.com/batalabs/promptpad/internal/textwidth"

// Wrapped is one logical line split into visual segments. Starts[i] is the
// codepoint offset of Segments[i] within the logical line.
type Wrapped struct {
	Segments []string
	Starts   []int

	runes  []rune
	prefix []int
	ends   []int
}

// Wrap splits line into segments no wider than maxWidth cells, preferring to
// break at spaces. A single codepoint wider than maxWidth is emitted on its
// own. maxWidth is clamped to at least 1.
func Wrap(line string, maxWidth int) Wrapped {
	if maxWidth < 1 {
		maxWidth = 1
	}
	rs := textwidth.Codepoints(line)
	prefix := textwidth.PrefixWidths(rs)
	w := Wrapped{runes: rs, prefix: prefix}
	if len(rs) == 0 {
		w.emit(0, 0)
		return w
	}

	n := len(rs)
	start := 0
	for start < n {
		end := start
		for end < n && prefix[end+1]-prefix[start] <= maxWidth {
			end++
		}
		if end == n {
			w.emit(start, n)
			break
		}
		if end == start {
			// hard break: one codepoint wider than the viewport
			w.emit(start, start+1)
			start++
			continue
		}
		// only a space strictly inside the window is a break point; the
		// codepoint at end did not fit and is never consulted
		brk := -1
		for i := end - 1; i > start; i-- {
			if rs[i] == ' ' {
				brk = i
				break
			}
		}
		if brk < 0 {
			w.emit(start, end)
			start = end
			continue
		}
		w.emit(start, brk)
		start = brk + 1
	}
	return w
}

func (w *Wrapped) emit(start, end int) {
	w.Segments = append(w.Segments, string(w.runes[start:end]))
	w.Starts = append(w.Starts, start)
	w.ends = append(w.ends, end)
}

// Len returns the codepoint length of the logical line.
func (w Wrapped) Len() int {
	return len(w.runes)
}

// segmentFor returns the index of the last segment whose start is <= col.
func (w Wrapped) segmentFor(col int) int {
	seg := 0
	for i, s := range w.Starts {
		if s <= col {
			seg = i
		} else {
			break
		}
	}
	return seg
}

// colAt returns the largest codepoint offset inside segment seg whose width
// from the segment start does not exceed vcol.
func (w Wrapped) colAt(seg, vcol int) int {
	start, end := w.Starts[seg], w.ends[seg]
	col := start
	for i := start; i < end; i++ {
		if w.prefix[i+1]-w.prefix[start] > vcol {
			break
		}
		col = i + 1
	}
	return col
}
