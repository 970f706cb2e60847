package buffer

import (
	"reflect"
	"strings"
	"testing"
)

func sixLines() string {
	return "l1\nl2\nl3\nl4\nl5\nl6"
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"crlf", "a\r\nb", "a\nb"},
		{"bare cr", "a\rb\rc", "a\nb\nc"},
		{"keeps tab", "a\tb", "a\tb"},
		{"strips nul and escape", "a\x00b\x1bc", "abc"},
		{"strips del and c1", "a\x7fb\u0085c", "abc"},
		{"unicode untouched", "你好 é", "你好 é"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	s := New("first\r\nsecond\x00!")
	if got := s.Lines(); !reflect.DeepEqual(got, []string{"first", "second!"}) {
		t.Errorf("Lines() = %q", got)
	}
	if got := s.Cursor(); got != (Cursor{Row: 1, Col: 7}) {
		t.Errorf("Cursor() = %+v, want {1 7}", got)
	}
	if !New("").IsEmpty() {
		t.Error("expected empty buffer to report IsEmpty")
	}
	if New("x").IsEmpty() || New("\n").IsEmpty() {
		t.Error("expected non-empty buffers to not report IsEmpty")
	}
}

func TestInsert(t *testing.T) {
	t.Run("wide text into empty buffer", func(t *testing.T) {
		s := New("").Insert("你好")
		if s.Text() != "你好" {
			t.Errorf("Text() = %q, want %q", s.Text(), "你好")
		}
		if got := s.Cursor(); got != (Cursor{Row: 0, Col: 2}) {
			t.Errorf("Cursor() = %+v, want {0 2}", got)
		}
	})

	t.Run("mid-line", func(t *testing.T) {
		s := New("ad").MoveTo(0, 1).Insert("bc")
		if s.Text() != "abcd" {
			t.Errorf("Text() = %q, want %q", s.Text(), "abcd")
		}
		if got := s.Cursor(); got != (Cursor{Row: 0, Col: 3}) {
			t.Errorf("Cursor() = %+v, want {0 3}", got)
		}
	})

	t.Run("multi-line below threshold", func(t *testing.T) {
		s := New("ab").MoveTo(0, 1).Insert("x\r\ny")
		if got := s.Lines(); !reflect.DeepEqual(got, []string{"ax", "yb"}) {
			t.Errorf("Lines() = %q", got)
		}
		if got := s.Cursor(); got != (Cursor{Row: 1, Col: 1}) {
			t.Errorf("Cursor() = %+v, want {1 1}", got)
		}
		if len(s.Blocks()) != 0 {
			t.Errorf("expected no blocks, got %d", len(s.Blocks()))
		}
	})

	t.Run("exactly threshold lines stays literal", func(t *testing.T) {
		s := New("").Insert("1\n2\n3\n4\n5")
		if s.LineCount() != 5 || len(s.Blocks()) != 0 {
			t.Errorf("LineCount() = %d, blocks = %d, want 5 lines and no blocks", s.LineCount(), len(s.Blocks()))
		}
	})

	t.Run("leaves receiver untouched", func(t *testing.T) {
		s := New("abc")
		_ = s.Insert("zzz")
		if s.Text() != "abc" {
			t.Errorf("receiver mutated: %q", s.Text())
		}
	})

	t.Run("only control characters is a no-op", func(t *testing.T) {
		s := New("abc")
		if got := s.Insert("\x00\x1b"); !reflect.DeepEqual(got, s) {
			t.Error("expected no change")
		}
	})
}

func TestBackspaceDelete(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		at       Cursor
		op       func(State) State
		want     []string
		wantCurs Cursor
	}{
		{"backspace char", "abc", Cursor{0, 2}, State.Backspace, []string{"ac"}, Cursor{0, 1}},
		{"backspace wide char", "你好", Cursor{0, 1}, State.Backspace, []string{"好"}, Cursor{0, 0}},
		{"backspace joins lines", "ab\ncd", Cursor{1, 0}, State.Backspace, []string{"abcd"}, Cursor{0, 2}},
		{"backspace at start", "ab", Cursor{0, 0}, State.Backspace, []string{"ab"}, Cursor{0, 0}},
		{"delete char", "abc", Cursor{0, 1}, State.Delete, []string{"ac"}, Cursor{0, 1}},
		{"delete joins lines", "ab\ncd", Cursor{0, 2}, State.Delete, []string{"abcd"}, Cursor{0, 2}},
		{"delete at end", "ab", Cursor{0, 2}, State.Delete, []string{"ab"}, Cursor{0, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.op(New(tt.text).MoveTo(tt.at.Row, tt.at.Col))
			if got := s.Lines(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Lines() = %q, want %q", got, tt.want)
			}
			if got := s.Cursor(); got != tt.wantCurs {
				t.Errorf("Cursor() = %+v, want %+v", got, tt.wantCurs)
			}
		})
	}
}

func TestMoveCursor(t *testing.T) {
	s := New("abc\nde")
	tests := []struct {
		name       string
		from       Cursor
		dRow, dCol int
		want       Cursor
	}{
		{"down clamps column", Cursor{0, 3}, 1, 0, Cursor{1, 2}},
		{"up and left past origin", Cursor{1, 1}, -5, -9, Cursor{0, 0}},
		{"below last row", Cursor{0, 0}, 10, 1, Cursor{1, 1}},
		{"right past end", Cursor{0, 0}, 0, 42, Cursor{0, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.MoveTo(tt.from.Row, tt.from.Col).MoveCursor(tt.dRow, tt.dCol).Cursor()
			if got != tt.want {
				t.Errorf("Cursor() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLeftRight(t *testing.T) {
	s := New("ab\ncd").MoveTo(1, 0)
	if got := s.Left().Cursor(); got != (Cursor{0, 2}) {
		t.Errorf("Left() from line start = %+v, want {0 2}", got)
	}
	if got := s.MoveTo(0, 2).Right().Cursor(); got != (Cursor{1, 0}) {
		t.Errorf("Right() from line end = %+v, want {1 0}", got)
	}
	if got := s.MoveTo(0, 0).Left().Cursor(); got != (Cursor{0, 0}) {
		t.Errorf("Left() at origin = %+v, want {0 0}", got)
	}
	if got := s.MoveTo(1, 2).Right().Cursor(); got != (Cursor{1, 2}) {
		t.Errorf("Right() at end = %+v, want {1 2}", got)
	}
	if got := s.MoveTo(1, 1).LineStart().Cursor(); got != (Cursor{1, 0}) {
		t.Errorf("LineStart() = %+v", got)
	}
	if got := s.MoveTo(0, 0).LineEnd().Cursor(); got != (Cursor{0, 2}) {
		t.Errorf("LineEnd() = %+v", got)
	}
}

func TestWordMotion(t *testing.T) {
	s := New("hello brave world")

	if got := s.WordLeft().Cursor().Col; got != 12 {
		t.Errorf("WordLeft() col = %d, want 12", got)
	}
	if got := s.WordLeft().WordLeft().Cursor().Col; got != 6 {
		t.Errorf("WordLeft() twice col = %d, want 6", got)
	}
	if got := s.MoveTo(0, 0).WordRight().Cursor().Col; got != 5 {
		t.Errorf("WordRight() col = %d, want 5", got)
	}
	if got := s.MoveTo(0, 5).WordRight().Cursor().Col; got != 11 {
		t.Errorf("WordRight() from space col = %d, want 11", got)
	}

	d := s.DeleteWordBackward()
	if d.Text() != "hello brave " {
		t.Errorf("DeleteWordBackward() text = %q, want %q", d.Text(), "hello brave ")
	}
	if d.Cursor().Col != 12 {
		t.Errorf("DeleteWordBackward() col = %d, want 12", d.Cursor().Col)
	}

	joined := New("ab\ncd").MoveTo(1, 0).DeleteWordBackward()
	if joined.Text() != "abcd" {
		t.Errorf("DeleteWordBackward() at line start = %q, want %q", joined.Text(), "abcd")
	}
}

func TestWithCollapseThreshold(t *testing.T) {
	s := New("").WithCollapseThreshold(2).Insert("a\nb\nc")
	if got := s.Text(); got != "[Pasted text #1 +3 lines]" {
		t.Errorf("Text() = %q", got)
	}
	if got := New("").WithCollapseThreshold(-4).CollapseThreshold(); got != 1 {
		t.Errorf("CollapseThreshold() = %d, want 1", got)
	}
	if got := (State{}).CollapseThreshold(); got != DefaultCollapseThreshold {
		t.Errorf("zero State CollapseThreshold() = %d, want %d", got, DefaultCollapseThreshold)
	}
}

func TestZeroState(t *testing.T) {
	var s State
	s = s.Insert("hi").Backspace().Delete().MoveCursor(3, 3)
	if s.Text() != "h" {
		t.Errorf("Text() = %q, want %q", s.Text(), "h")
	}
	if strings.Contains(s.Text(), "\n") || s.LineCount() != 1 {
		t.Errorf("LineCount() = %d, want 1", s.LineCount())
	}
}
