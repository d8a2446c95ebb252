package service

import (
	"context"
	"testing"
	"time"

	"minijudge/internal/domain/model"
	"minijudge/internal/domain/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStatRepo struct {
	repository.StatRepository
	aggregates []model.UserAggregate
}

func (f *fakeStatRepo) AggregateByUser(_ context.Context) ([]model.UserAggregate, error) {
	return f.aggregates, nil
}

type fakeProblemRepo struct {
	repository.ProblemRepository
	count int
}

func (f *fakeProblemRepo) CountProblems(_ context.Context) (int, error) {
	return f.count, nil
}

func newTestLeaderboard(t *testing.T, withRedis bool) (*LeaderboardService, *fakeStatRepo, *fakeProblemRepo) {
	t.Helper()
	stats := &fakeStatRepo{aggregates: []model.UserAggregate{
		{UserID: "u1", Username: "alice", Completed: 2, Attempts: 3},
		{UserID: "u2", Username: "bob", Completed: 2, Attempts: 2},
	}}
	problems := &fakeProblemRepo{count: 2}

	var rdb *redis.Client
	if withRedis {
		mr := miniredis.RunT(t)
		rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	}
	return NewLeaderboardService(stats, problems, rdb, time.Minute), stats, problems
}

func TestLeaderboardGetRanksCurrentStats(t *testing.T) {
	svc, _, _ := newTestLeaderboard(t, false)

	board, err := svc.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, board.TotalProblems)
	require.Len(t, board.Entries, 2)
	assert.Equal(t, "bob", board.Entries[0].Username)
	assert.Equal(t, "alice", board.Entries[1].Username)
}

func TestLeaderboardCacheServesUntilInvalidated(t *testing.T) {
	svc, stats, _ := newTestLeaderboard(t, true)
	ctx := context.Background()

	first, err := svc.Get(ctx)
	require.NoError(t, err)
	require.Len(t, first.Entries, 2)

	// A stats change without invalidation is not yet visible.
	stats.aggregates = append(stats.aggregates, model.UserAggregate{
		UserID: "u3", Username: "carol", Completed: 1, Attempts: 1,
	})
	cached, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Len(t, cached.Entries, 2)

	// Invalidation (as done after every stats write) exposes it.
	svc.Invalidate(ctx)
	fresh, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Len(t, fresh.Entries, 3)
}

func TestLeaderboardWorksWithoutRedis(t *testing.T) {
	svc, _, _ := newTestLeaderboard(t, false)

	svc.Invalidate(context.Background()) // must be a no-op, not a panic
	board, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Len(t, board.Entries, 2)
}
