package model

type LeaderboardEntry struct {
	Rank      int     `json:"rank"`
	Username  string  `json:"username"`
	Completed int     `json:"completed"`
	Attempts  int     `json:"attempts"`
	Percent   float64 `json:"percent"`
}

type Leaderboard struct {
	TotalProblems int                `json:"total_problems"`
	Entries       []LeaderboardEntry `json:"entries"`
}
