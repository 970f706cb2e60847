package editor

// Position is a row/column pair.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// BlockInfo describes one collapsed block.
type BlockInfo struct {
	ID          int    `json:"id"`
	StartLine   int    `json:"start_line"`
	LineCount   int    `json:"line_count"`
	Expanded    bool   `json:"expanded"`
	Placeholder string `json:"placeholder"`
}

// Snapshot is a read-only view of the editor for rendering.
type Snapshot struct {
	Text         string      `json:"text"`
	Empty        bool        `json:"empty"`
	VisualLines  []string    `json:"visual_lines"`
	VisualCursor Position    `json:"visual_cursor"`
	ViewCursor   Position    `json:"view_cursor"`
	Cursor       Position    `json:"cursor"`
	LineCount    int         `json:"line_count"`
	Lines        []string    `json:"lines"`
	Blocks       []BlockInfo `json:"blocks"`
	ScrollRow    int         `json:"scroll_row"`
	TotalRows    int         `json:"total_rows"`
}

// Snapshot returns the current view. VisualLines always holds exactly the
// viewport height in rows.
func (e Editor) Snapshot() Snapshot {
	c := e.state.Cursor()
	vrow, vcol := e.VisualCursor()
	srow, scol := e.vp.ToScreen(vrow, vcol)
	blocks := e.state.Blocks()
	infos := make([]BlockInfo, len(blocks))
	for i, b := range blocks {
		infos[i] = BlockInfo{
			ID:          b.ID,
			StartLine:   b.StartLine,
			LineCount:   b.LineCount,
			Expanded:    b.Expanded,
			Placeholder: b.Placeholder,
		}
	}
	return Snapshot{
		Text:         e.state.Text(),
		Empty:        e.state.IsEmpty(),
		VisualLines:  e.vp.Slice(e.lay.VisualLines()),
		VisualCursor: Position{Row: vrow, Col: vcol},
		ViewCursor:   Position{Row: srow, Col: scol},
		Cursor:       Position{Row: c.Row, Col: c.Col},
		LineCount:    e.state.LineCount(),
		Lines:        e.state.Lines(),
		Blocks:       infos,
		ScrollRow:    e.vp.ScrollRow,
		TotalRows:    e.lay.TotalRows(),
	}
}
