package judge

import (
	"testing"

	"minijudge/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankFewerAttemptsWinOnEqualPercent(t *testing.T) {
	aggregates := []model.UserAggregate{
		{UserID: "a", Username: "alice", Completed: 2, Attempts: 3},
		{UserID: "b", Username: "bob", Completed: 2, Attempts: 2},
		{UserID: "c", Username: "carol", Completed: 1, Attempts: 1},
	}

	entries := Rank(aggregates, 2)

	require.Len(t, entries, 3)
	assert.Equal(t, "bob", entries[0].Username)
	assert.Equal(t, "alice", entries[1].Username)
	assert.Equal(t, "carol", entries[2].Username, "lower percent ranks below regardless of attempts")

	assert.Equal(t, 100.0, entries[0].Percent)
	assert.Equal(t, 100.0, entries[1].Percent)
	assert.Equal(t, 50.0, entries[2].Percent)
	for i, e := range entries {
		assert.Equal(t, i+1, e.Rank)
	}
}

func TestRankUsernameTieBreakIsCaseInsensitive(t *testing.T) {
	aggregates := []model.UserAggregate{
		{Username: "Zoe", Completed: 1, Attempts: 1},
		{Username: "adam", Completed: 1, Attempts: 1},
		{Username: "Bea", Completed: 1, Attempts: 1},
	}

	entries := Rank(aggregates, 4)

	assert.Equal(t, "adam", entries[0].Username)
	assert.Equal(t, "Bea", entries[1].Username)
	assert.Equal(t, "Zoe", entries[2].Username)
}

func TestRankZeroProblemsMeansZeroPercent(t *testing.T) {
	aggregates := []model.UserAggregate{
		{Username: "alice", Completed: 0, Attempts: 5},
	}

	entries := Rank(aggregates, 0)

	require.Len(t, entries, 1)
	assert.Equal(t, 0.0, entries[0].Percent)
}

func TestRankStableForEqualInputs(t *testing.T) {
	aggregates := []model.UserAggregate{
		{Username: "same", Completed: 1, Attempts: 2},
		{Username: "same", Completed: 1, Attempts: 2},
		{Username: "other", Completed: 2, Attempts: 2},
	}

	first := Rank(aggregates, 2)
	second := Rank(aggregates, 2)
	assert.Equal(t, first, second)
}

func TestRankEmptyInput(t *testing.T) {
	entries := Rank(nil, 10)
	assert.Empty(t, entries)
}
