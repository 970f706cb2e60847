package store

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"
)

// testStore returns a Store backed by an in-memory SQLite database.
func testStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	s, err := NewFromDB(db)
	if err != nil {
		db.Close()
		t.Fatalf("new store from db: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func texts(t *testing.T, s *Store, project string, limit int) []string {
	t.Helper()
	subs, err := s.RecentSubmissions(project, limit)
	if err != nil {
		t.Fatalf("RecentSubmissions: %v", err)
	}
	out := make([]string, len(subs))
	for i, sub := range subs {
		out[i] = sub.Text
	}
	return out
}

func TestStore_AppendSubmission(t *testing.T) {
	s := testStore(t)

	t.Run("records fields", func(t *testing.T) {
		sub, err := s.AppendSubmission("/tmp/project", "hello\nworld")
		if err != nil {
			t.Fatalf("AppendSubmission: %v", err)
		}
		if sub == nil || sub.ID == "" {
			t.Fatal("expected a stored submission with an id")
		}
		if sub.ProjectPath != "/tmp/project" || sub.Text != "hello\nworld" {
			t.Errorf("submission = %+v", sub)
		}
		if sub.CreatedAt.IsZero() {
			t.Error("expected CreatedAt to be set")
		}
	})

	t.Run("skips blank text", func(t *testing.T) {
		sub, err := s.AppendSubmission("/tmp/project", "  \n\t")
		if err != nil || sub != nil {
			t.Errorf("AppendSubmission(blank) = %+v, %v", sub, err)
		}
	})

	t.Run("skips consecutive duplicates", func(t *testing.T) {
		sub, err := s.AppendSubmission("/tmp/project", "hello\nworld")
		if err != nil || sub != nil {
			t.Errorf("AppendSubmission(duplicate) = %+v, %v", sub, err)
		}
		n, err := s.CountSubmissions("/tmp/project")
		if err != nil || n != 1 {
			t.Errorf("CountSubmissions() = %d, %v, want 1", n, err)
		}
	})
}

func TestStore_RecentSubmissions(t *testing.T) {
	s := testStore(t)
	for _, text := range []string{"one", "two", "three", "four"} {
		if _, err := s.AppendSubmission("/a", text); err != nil {
			t.Fatalf("AppendSubmission(%q): %v", text, err)
		}
	}
	if _, err := s.AppendSubmission("/b", "other"); err != nil {
		t.Fatal(err)
	}

	if got := strings.Join(texts(t, s, "/a", 2), ","); got != "three,four" {
		t.Errorf("RecentSubmissions(2) = %s, want three,four", got)
	}
	if got := strings.Join(texts(t, s, "/a", 0), ","); got != "one,two,three,four" {
		t.Errorf("RecentSubmissions(0) = %s", got)
	}
	if got := strings.Join(texts(t, s, "/b", 10), ","); got != "other" {
		t.Errorf("RecentSubmissions(/b) = %s", got)
	}
	if got := texts(t, s, "/missing", 10); len(got) != 0 {
		t.Errorf("expected no submissions, got %q", got)
	}
}

func TestStore_TrimAndClear(t *testing.T) {
	s := testStore(t)
	for _, text := range []string{"a", "b", "c", "d", "e"} {
		if _, err := s.AppendSubmission("/p", text); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.AppendSubmission("/q", "keep me"); err != nil {
		t.Fatal(err)
	}

	removed, err := s.TrimSubmissions("/p", 2)
	if err != nil {
		t.Fatalf("TrimSubmissions: %v", err)
	}
	if removed != 3 {
		t.Errorf("removed = %d, want 3", removed)
	}
	if got := strings.Join(texts(t, s, "/p", 0), ","); got != "d,e" {
		t.Errorf("after trim = %s, want d,e", got)
	}

	if err := s.ClearSubmissions("/p"); err != nil {
		t.Fatalf("ClearSubmissions: %v", err)
	}
	if n, _ := s.CountSubmissions("/p"); n != 0 {
		t.Errorf("CountSubmissions(/p) = %d after clear", n)
	}
	if n, _ := s.CountSubmissions("/q"); n != 1 {
		t.Errorf("ClearSubmissions removed other projects: %d left", n)
	}
}

func TestOpen_fileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := s.AppendSubmission("/x", "persisted"); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if got := texts(t, reopened, "/x", 5); len(got) != 1 || got[0] != "persisted" {
		t.Errorf("after reopen = %q", got)
	}
}

func TestStore_DeleteSubmission(t *testing.T) {
	s := testStore(t)
	keep, err := s.AppendSubmission("/p", "keep")
	if err != nil {
		t.Fatalf("AppendSubmission: %v", err)
	}
	drop, err := s.AppendSubmission("/p", "drop")
	if err != nil {
		t.Fatalf("AppendSubmission: %v", err)
	}
	if err := s.DeleteSubmission(drop.ID); err != nil {
		t.Fatalf("DeleteSubmission: %v", err)
	}
	if err := s.DeleteSubmission("no-such-id"); err != nil {
		t.Errorf("DeleteSubmission(unknown) = %v, want nil", err)
	}
	got := texts(t, s, "/p", 0)
	if len(got) != 1 || got[0] != keep.Text {
		t.Errorf("texts after delete = %q, want [%q]", got, keep.Text)
	}
}
