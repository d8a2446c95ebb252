package model

import "time"

// UserProblemStat tracks one user's standing on one problem. Attempts only
// grows, Passed never reverts to false, and FirstAcceptedAt is written by
// exactly one submission (the first accepted one).
type UserProblemStat struct {
	UserID           string     `json:"user_id"`
	ProblemID        string     `json:"problem_id"`
	Attempts         int        `json:"attempts"`
	Passed           bool       `json:"passed"`
	FirstAcceptedAt  *time.Time `json:"first_accepted_at,omitempty"`
	LastSubmissionAt time.Time  `json:"last_submission_at"`
}

// UserAggregate is the per-user rollup of all UserProblemStat rows, the
// input to leaderboard ranking.
type UserAggregate struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Completed int    `json:"completed"`
	Attempts  int    `json:"attempts"`
}
