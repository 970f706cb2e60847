package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/batalabs/promptpad/internal/config"
	"github.com/batalabs/promptpad/internal/domain"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database holding the submission history.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the history database in the promptpad data
// directory.
func OpenStore() (*Store, error) {
	dsn, err := config.HistoryPath()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}
	return Open(dsn)
}

// Open opens (or creates) the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(2000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewFromDB creates a Store from an existing *sql.DB and runs migrations.
// This is useful for testing with an in-memory database.
func NewFromDB(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS submissions (
			id TEXT PRIMARY KEY,
			project_path TEXT NOT NULL DEFAULT '',
			text TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
			seq INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_submissions_project ON submissions(project_path, seq);
	`); err != nil {
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// Submissions
// ---------------------------------------------------------------------------

// AppendSubmission records text as the newest submission for projectPath.
// Blank text is not recorded. A submission identical to the newest one is
// not recorded twice.
func (s *Store) AppendSubmission(projectPath, text string) (*domain.Submission, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	var last string
	err := s.db.QueryRow(
		`SELECT text FROM submissions WHERE project_path = ? ORDER BY seq DESC LIMIT 1`,
		projectPath).Scan(&last)
	switch {
	case err == nil && last == text:
		return nil, nil
	case err != nil && err != sql.ErrNoRows:
		return nil, fmt.Errorf("latest submission: %w", err)
	}

	sub := &domain.Submission{
		ID:          domain.NewUUID(),
		ProjectPath: projectPath,
		Text:        text,
		CreatedAt:   time.Now().UTC(),
	}
	_, err = s.db.Exec(
		`INSERT INTO submissions (id, project_path, text, created_at, seq)
		 VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM submissions))`,
		sub.ID, sub.ProjectPath, sub.Text, sub.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert submission: %w", err)
	}
	return sub, nil
}

// RecentSubmissions returns up to limit of the newest submissions for
// projectPath, oldest first. A non-positive limit returns all of them.
func (s *Store) RecentSubmissions(projectPath string, limit int) ([]domain.Submission, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(
		`SELECT id, project_path, text, created_at FROM (
			SELECT id, project_path, text, created_at, seq FROM submissions
			WHERE project_path = ? ORDER BY seq DESC LIMIT ?
		 ) ORDER BY seq ASC`,
		projectPath, limit)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var subs []domain.Submission
	for rows.Next() {
		var sub domain.Submission
		var created string
		if err := rows.Scan(&sub.ID, &sub.ProjectPath, &sub.Text, &created); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			sub.CreatedAt = t
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// TrimSubmissions deletes all but the newest keep submissions for
// projectPath and returns the number removed.
func (s *Store) TrimSubmissions(projectPath string, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.Exec(
		`DELETE FROM submissions WHERE project_path = ? AND id NOT IN (
			SELECT id FROM submissions WHERE project_path = ? ORDER BY seq DESC LIMIT ?
		 )`,
		projectPath, projectPath, keep)
	if err != nil {
		return 0, fmt.Errorf("trim submissions: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// ClearSubmissions deletes every submission for projectPath.
func (s *Store) ClearSubmissions(projectPath string) error {
	if _, err := s.db.Exec(`DELETE FROM submissions WHERE project_path = ?`, projectPath); err != nil {
		return fmt.Errorf("clear submissions: %w", err)
	}
	return nil
}

// DeleteSubmission deletes one submission by id. Deleting an unknown id is
// not an error.
func (s *Store) DeleteSubmission(id string) error {
	if _, err := s.db.Exec(`DELETE FROM submissions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	return nil
}

// CountSubmissions returns the number of stored submissions for projectPath.
func (s *Store) CountSubmissions(projectPath string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM submissions WHERE project_path = ?`, projectPath).Scan(&n)
	return n, err
}
