// Package textwidth measures terminal display width in codepoint units.
//
// All column arithmetic in promptpad is done on codepoints ([]rune indices),
// never on byte offsets. A codepoint occupies 0, 1 or 2 terminal cells.
package textwidth

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mattn/go-runewidth"
)

const (
	// cacheSize bounds the number of cached non-ASCII widths.
	cacheSize = 1024
	// cacheMaxLen is the longest string (in bytes) that is cached. Longer
	// strings, typically pasted content, are measured every time.
	cacheMaxLen = 256
)

// cond is a fixed runewidth condition: ambiguous-width runes are narrow
// regardless of the user's locale so layout is reproducible.
var cond = func() *runewidth.Condition {
	c := runewidth.NewCondition()
	c.EastAsianWidth = false
	return c
}()

var widthCache = func() *lru.Cache[string, int] {
	c, err := lru.New[string, int](cacheSize)
	if err != nil {
		// only fails for a non-positive size
		panic(err)
	}
	return c
}()

// Codepoints decomposes s into Unicode scalar values. Invalid UTF-8 bytes
// decode to U+FFFD.
func Codepoints(s string) []rune {
	return []rune(s)
}

// Len returns the number of codepoints in s.
func Len(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}

// RuneWidth returns the number of terminal cells r occupies: 0, 1 or 2.
func RuneWidth(r rune) int {
	if r < 0x7F {
		return 1
	}
	if isZeroWidth(r) {
		return 0
	}
	switch cond.RuneWidth(r) {
	case 2:
		return 2
	case 0:
		// C1 controls and other non-printing runes count as one cell;
		// only combining/format runes are zero width.
		if r >= 0xA0 && r != 0xAD {
			return 0
		}
	}
	return 1
}

// isZeroWidth reports whether r is a combining mark, variation selector,
// zero-width joiner/non-joiner/space or a lone surrogate.
func isZeroWidth(r rune) bool {
	switch {
	case r >= 0x0300 && r <= 0x036F,
		r >= 0x1AB0 && r <= 0x1AFF,
		r >= 0x1DC0 && r <= 0x1DFF,
		r >= 0x200B && r <= 0x200D,
		r >= 0x20D0 && r <= 0x20FF,
		r >= 0xD800 && r <= 0xDFFF,
		r >= 0xFE00 && r <= 0xFE0F,
		r >= 0xFE20 && r <= 0xFE2F,
		r >= 0xE0100 && r <= 0xE01EF:
		return true
	}
	return false
}

// StringWidth returns the display width of s.
func StringWidth(s string) int {
	if isASCII(s) {
		return len(s)
	}
	if len(s) > cacheMaxLen {
		return measure(s)
	}
	if w, ok := widthCache.Get(s); ok {
		return w
	}
	w := measure(s)
	widthCache.Add(s, w)
	return w
}

// RunesWidth returns the display width of a codepoint slice.
func RunesWidth(rs []rune) int {
	w := 0
	for _, r := range rs {
		w += RuneWidth(r)
	}
	return w
}

// PrefixWidths returns p with len(rs)+1 entries where p[i] is the width of
// rs[:i].
func PrefixWidths(rs []rune) []int {
	p := make([]int, len(rs)+1)
	for i, r := range rs {
		p[i+1] = p[i] + RuneWidth(r)
	}
	return p
}

func measure(s string) int {
	w := 0
	for _, r := range s {
		w += RuneWidth(r)
	}
	return w
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
