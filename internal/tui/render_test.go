package tui

import (
	"reflect"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/batalabs/promptpad/internal/buffer"
	"github.com/batalabs/promptpad/internal/editor"
)

var ansiSeq = regexp.MustCompile("\x1b\\[[0-9;]*m")

func plain(s string) string { return ansiSeq.ReplaceAllString(s, "") }

func TestWrapWords(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  []string
	}{
		{"fits", "hello world", 20, []string{"hello world"}},
		{"breaks at word", "hello world foo", 10, []string{"hello", "world foo"}},
		{"hard breaks long word", "abcdefghijklmno", 10, []string{"abcdefghij", "klmno"}},
		{"empty", "", 20, []string{""}},
		{"narrow width clamps to 10", "aaaa bbbb cccc", 3, []string{"aaaa bbbb", "cccc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapWords(tt.in, tt.width)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("WrapWords(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
			}
		})
	}
}

func TestTimeAgo(t *testing.T) {
	now := time.Now()
	tests := []struct {
		at   time.Time
		want string
	}{
		{now.Add(-30 * time.Second), "just now"},
		{now.Add(-5*time.Minute - time.Second), "5m ago"},
		{now.Add(-3*time.Hour - time.Second), "3h ago"},
		{now.Add(-50 * time.Hour), "2d ago"},
	}
	for _, tt := range tests {
		if got := TimeAgo(tt.at); got != tt.want {
			t.Errorf("TimeAgo(%v) = %q, want %q", now.Sub(tt.at), got, tt.want)
		}
	}
}

func TestPlaceholderSpans(t *testing.T) {
	ph := buffer.PlaceholderText(1, 6)
	blocks := []editor.BlockInfo{
		{ID: 1, StartLine: 0, LineCount: 6, Placeholder: ph},
		{ID: 2, StartLine: 0, LineCount: 7, Expanded: true, Placeholder: buffer.PlaceholderText(2, 7)},
	}
	got := placeholderSpans("see "+ph+" x", 0, blocks)
	want := []span{{4, 4 + len([]rune(ph))}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("placeholderSpans() = %v, want %v", got, want)
	}
	if got := placeholderSpans(ph, 1, blocks); len(got) != 0 {
		t.Errorf("placeholderSpans on another row = %v, want none", got)
	}
}

func TestRenderRow(t *testing.T) {
	tests := []struct {
		name   string
		seg    string
		cursor int
		want   string
	}{
		{"no cursor", "abc", -1, "abc"},
		{"cursor inside", "abc", 1, "abc"},
		{"cursor past end adds a cell", "abc", 3, "abc "},
		{"tab renders as space", "a\tb", -1, "a b"},
		{"empty row with cursor", "", 0, " "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := plain(renderRow(tt.seg, 0, nil, tt.cursor))
			if got != tt.want {
				t.Errorf("renderRow(%q, cursor=%d) = %q, want %q", tt.seg, tt.cursor, got, tt.want)
			}
		})
	}
}

func TestFormatSubmission(t *testing.T) {
	got := plain(FormatSubmission("first\nsecond", 40))
	lines := strings.Split(got, "\n")
	if len(lines) != 2 || !strings.HasSuffix(lines[0], "first") || lines[1] != "  second" {
		t.Errorf("FormatSubmission() = %q", got)
	}
}
