// Package paste merges the fragments of one paste into a single insertion.
//
// Terminals often deliver a large paste as several input events. A
// Coalescer accumulates those fragments at one anchor cursor and releases
// them as one Flush once no fragment has arrived for the debounce interval,
// so the buffer sees one coherent paste instead of several small ones.
package paste

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/batalabs/promptpad/internal/buffer"
)

// DefaultInterval is the quiet period after the last fragment before the
// accumulated text is flushed.
const DefaultInterval = 150 * time.Millisecond

// FlushMsg is delivered by the debounce tick. Seq identifies the generation
// that scheduled it; a tick from an older generation is ignored.
type FlushMsg struct {
	Seq uint64
}

// Flush is accumulated text ready to be inserted at At in one step.
type Flush struct {
	At        buffer.Cursor
	Text      string
	Fragments int
}

// Lines returns the number of lines the flushed text spans.
func (f Flush) Lines() int {
	return strings.Count(f.Text, "\n") + 1
}

// Coalescer is a value type; every method returns the updated copy.
// The generation counter is the handle of the single pending timer: bumping
// it cancels whatever tick is in flight.
type Coalescer struct {
	interval  time.Duration
	seq       uint64
	pending   bool
	at        buffer.Cursor
	text      string
	fragments int
}

// New returns an idle coalescer. A non-positive interval uses DefaultInterval.
func New(interval time.Duration) Coalescer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return Coalescer{interval: interval}
}

// Interval returns the debounce interval.
func (c Coalescer) Interval() time.Duration {
	if c.interval <= 0 {
		return DefaultInterval
	}
	return c.interval
}

// WithInterval changes the debounce interval for ticks scheduled from now on.
func (c Coalescer) WithInterval(d time.Duration) Coalescer {
	if d <= 0 {
		d = DefaultInterval
	}
	c.interval = d
	return c
}

// Pending reports whether fragments are waiting to be flushed.
func (c Coalescer) Pending() bool { return c.pending }

// Anchor returns the cursor the pending text will be inserted at.
func (c Coalescer) Anchor() buffer.Cursor { return c.at }

// Seq returns the current generation.
func (c Coalescer) Seq() uint64 { return c.seq }

// Add records a fragment arriving while the cursor is at at. A fragment at
// the pending anchor continues the accumulation. A fragment anywhere else
// starts a new one, and the previous accumulation is returned so the caller
// can apply it right away. Either way the timer is rescheduled: the caller
// must run Schedule on the returned coalescer.
func (c Coalescer) Add(fragment string, at buffer.Cursor) (Coalescer, *Flush) {
	var prev *Flush
	if c.pending && c.at != at {
		c, prev = c.take()
	}
	if !c.pending {
		c.pending = true
		c.at = at
		c.text = ""
		c.fragments = 0
	}
	c.text += fragment
	c.fragments++
	c.seq++
	return c, prev
}

// Schedule returns a command that delivers FlushMsg for the current
// generation after the debounce interval.
func (c Coalescer) Schedule() tea.Cmd {
	seq := c.seq
	return tea.Tick(c.Interval(), func(time.Time) tea.Msg {
		return FlushMsg{Seq: seq}
	})
}

// Fire handles a debounce tick. It flushes only when msg belongs to the
// current generation.
func (c Coalescer) Fire(msg FlushMsg) (Coalescer, *Flush) {
	if !c.pending || msg.Seq != c.seq {
		return c, nil
	}
	return c.take()
}

// Take flushes the pending text immediately, for example when a regular key
// arrives while a paste is still settling. It returns nil when idle.
func (c Coalescer) Take() (Coalescer, *Flush) {
	if !c.pending {
		return c, nil
	}
	return c.take()
}

// Cancel drops any pending text and invalidates the scheduled tick.
func (c Coalescer) Cancel() Coalescer {
	c.pending = false
	c.text = ""
	c.fragments = 0
	c.seq++
	return c
}

func (c Coalescer) take() (Coalescer, *Flush) {
	f := &Flush{
		At:        c.at,
		Text:      trimTrailingNewlines(c.text),
		Fragments: c.fragments,
	}
	c.pending = false
	c.text = ""
	c.fragments = 0
	c.seq++
	return c, f
}

// trimTrailingNewlines drops the line break most terminals append to a
// copied selection, so a paste does not end on an empty line.
func trimTrailingNewlines(s string) string {
	return strings.TrimRight(s, "\r\n")
}
