package layout

// Layout is the wrapped form of a whole buffer at a fixed width. It is derived
// data: rebuild it whenever the lines or the width change.
type Layout struct {
	width    int
	lines    []Wrapped
	rowStart []int
	total    int
}

// New wraps every logical line independently at width.
func New(lines []string, width int) Layout {
	if width < 1 {
		width = 1
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	l := Layout{
		width:    width,
		lines:    make([]Wrapped, len(lines)),
		rowStart: make([]int, len(lines)),
	}
	for i, line := range lines {
		l.lines[i] = Wrap(line, width)
		l.rowStart[i] = l.total
		l.total += len(l.lines[i].Segments)
	}
	return l
}

// Width returns the wrap width.
func (l Layout) Width() int { return l.width }

// TotalRows returns the number of visual rows.
func (l Layout) TotalRows() int { return l.total }

// RowOf returns the first visual row of logical line row.
func (l Layout) RowOf(row int) int {
	return l.rowStart[clamp(row, 0, len(l.lines)-1)]
}

// Line returns the wrapped form of logical line row.
func (l Layout) Line(row int) Wrapped {
	return l.lines[clamp(row, 0, len(l.lines)-1)]
}

// VisualLines returns every visual row in order.
func (l Layout) VisualLines() []string {
	out := make([]string, 0, l.total)
	for _, w := range l.lines {
		out = append(out, w.Segments...)
	}
	return out
}

// ToVisual maps a logical cursor to a visual row and cell column. Out of
// range input is clamped.
func (l Layout) ToVisual(row, col int) (vrow, vcol int) {
	row = clamp(row, 0, len(l.lines)-1)
	w := l.lines[row]
	col = clamp(col, 0, w.Len())
	seg := w.segmentFor(col)
	start := w.Starts[seg]
	return l.rowStart[row] + seg, w.prefix[col] - w.prefix[start]
}

// ToLogical maps a visual row and cell column back to a logical cursor.
// A column past the end of a row lands on the row's last offset; a column in
// the middle of a wide codepoint lands before it.
func (l Layout) ToLogical(vrow, vcol int) (row, col int) {
	vrow = clamp(vrow, 0, l.total-1)
	if vcol < 0 {
		vcol = 0
	}
	row = l.lineAtRow(vrow)
	w := l.lines[row]
	seg := vrow - l.rowStart[row]
	return row, w.colAt(seg, vcol)
}

// RowStart returns the logical line owning visual row vrow and the codepoint
// offset where that row's segment begins. vrow is clamped.
func (l Layout) RowStart(vrow int) (row, col int) {
	vrow = clamp(vrow, 0, l.total-1)
	row = l.lineAtRow(vrow)
	return row, l.lines[row].Starts[vrow-l.rowStart[row]]
}

// lineAtRow returns the logical line that owns visual row vrow.
func (l Layout) lineAtRow(vrow int) int {
	lo, hi := 0, len(l.rowStart)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if l.rowStart[mid] <= vrow {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
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
