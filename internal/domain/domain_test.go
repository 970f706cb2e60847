package domain

import (
	"regexp"
	"testing"
)

func TestNewUUID(t *testing.T) {
	re := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := NewUUID()
		if !re.MatchString(id) {
			t.Fatalf("NewUUID() = %q, not a v4 UUID", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestSubmissionPreview(t *testing.T) {
	tests := []struct {
		text string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello world", 6, "hello…"},
		{"first\nsecond\nthird", 20, "first (+2 lines)"},
		{"你好世界", 3, "你好…"},
	}
	for _, tt := range tests {
		if got := (Submission{Text: tt.text}).Preview(tt.n); got != tt.want {
			t.Errorf("Preview(%q, %d) = %q, want %q", tt.text, tt.n, got, tt.want)
		}
	}
}

func TestCommandDefs(t *testing.T) {
	seen := map[string]bool{}
	groups := map[string]bool{}
	for _, g := range CommandGroups {
		groups[g.Key] = true
	}
	for _, c := range CommandDefs {
		if seen[c.Name] {
			t.Errorf("duplicate command %s", c.Name)
		}
		seen[c.Name] = true
		if !groups[c.Group] {
			t.Errorf("command %s has unknown group %q", c.Name, c.Group)
		}
	}
	if c, ok := LookupCommand("/config"); !ok || !c.Args {
		t.Errorf("LookupCommand(/config) = %+v, %v", c, ok)
	}
	if _, ok := LookupCommand("/nope"); ok {
		t.Error("expected unknown command lookup to fail")
	}
}
