package judge

import (
	"sort"
	"strings"

	"minijudge/internal/domain/model"
)

// Rank orders per-user aggregates into leaderboard entries. Sort key, in
// priority order: completion percent descending, total attempts ascending,
// username ascending case-insensitively. Remaining ties keep input order,
// so equal inputs always produce the same output. Pure function; safe to
// recompute on every request.
func Rank(aggregates []model.UserAggregate, totalProblems int) []model.LeaderboardEntry {
	entries := make([]model.LeaderboardEntry, 0, len(aggregates))
	for _, a := range aggregates {
		percent := 0.0
		if totalProblems > 0 {
			percent = float64(a.Completed) * 100 / float64(totalProblems)
		}
		entries = append(entries, model.LeaderboardEntry{
			Username:  a.Username,
			Completed: a.Completed,
			Attempts:  a.Attempts,
			Percent:   percent,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Percent != entries[j].Percent {
			return entries[i].Percent > entries[j].Percent
		}
		if entries[i].Attempts != entries[j].Attempts {
			return entries[i].Attempts < entries[j].Attempts
		}
		return strings.ToLower(entries[i].Username) < strings.ToLower(entries[j].Username)
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
