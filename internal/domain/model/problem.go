package model

import "time"

type Problem struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	CreatedByID *string    `json:"created_by_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	TestCases   []TestCase `json:"test_cases,omitempty"` // Ordered; expected outputs hidden in public views
}

// TestCase ordering is fixed at creation (sort_order, then id) and drives the
// stable 1-based numbering of per-test results.
type TestCase struct {
	ID             string    `json:"id"`
	ProblemID      string    `json:"problem_id"`
	InputData      string    `json:"input_data"`
	ExpectedOutput string    `json:"expected_output,omitempty"`
	SortOrder      int       `json:"sort_order"`
	CreatedAt      time.Time `json:"created_at"`
}
