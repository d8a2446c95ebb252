package model

import "time"

// Solution is the user's current accepted code for a problem: at most one
// per (user, problem), overwritten by every new fully-passing submission.
// It is a "latest accepted answer" record, not a history.
type Solution struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	ProblemID    string    `json:"problem_id"`
	SubmissionID string    `json:"submission_id"`
	Code         string    `json:"code"`
	UpdatedAt    time.Time `json:"updated_at"`
}
