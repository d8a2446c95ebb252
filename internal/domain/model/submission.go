package model

import "time"

// Submission is one evaluation attempt. Passed is nil until the verdict is
// written; a submission is never mutated after that. UserID is nil for
// anonymous submissions, which are persisted but excluded from statistics
// and the leaderboard.
type Submission struct {
	ID        string       `json:"id"`
	UserID    *string      `json:"user_id,omitempty"`
	ProblemID string       `json:"problem_id"`
	Code      string       `json:"code"`
	Passed    *bool        `json:"passed"`
	Output    string       `json:"output"` // Human-readable transcript, one line per test
	Error     string       `json:"error"`  // Launch failures and other systemic diagnostics
	CreatedAt time.Time    `json:"created_at"`
	Results   []TestResult `json:"results,omitempty"`

	UserUsername *string `json:"user_username,omitempty"` // For display
	ProblemTitle *string `json:"problem_title,omitempty"` // For display
}

// TestResult is owned by its Submission and stored embedded in it; it is
// never addressable on its own. Index matches the problem's test-case order,
// starting at 1. A nil ExitCode means the trial never produced an exit
// status (timeout or launch failure).
type TestResult struct {
	Index    int    `json:"index"`
	Input    string `json:"input"`
	Expected string `json:"expected"` // Normalized (trimmed)
	Actual   string `json:"actual"`   // Normalized (trimmed)
	Passed   bool   `json:"passed"`
	Stderr   string `json:"stderr"`
	ExitCode *int   `json:"exit_code,omitempty"`
}
