package domain

import (
	"strconv"
	"strings"
	"time"
)

// Submission is one prompt the user sent, stored fully expanded.
type Submission struct {
	ID          string    `json:"id"`
	ProjectPath string    `json:"project_path"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
}

// Preview returns the first line of the submission, truncated to n
// codepoints with a trailing ellipsis, and notes how many lines follow.
func (s Submission) Preview(n int) string {
	first, rest, multi := strings.Cut(s.Text, "\n")
	rs := []rune(first)
	if n > 1 && len(rs) > n {
		first = string(rs[:n-1]) + "…"
	}
	if multi {
		return first + " (+" + strconv.Itoa(strings.Count(rest, "\n")+1) + " lines)"
	}
	return first
}
