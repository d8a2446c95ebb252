package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"minijudge/internal/app/judge"
	"minijudge/internal/common"
	"minijudge/internal/domain/model"
	"minijudge/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

const leaderboardCacheKey = "leaderboard:v1"

// LeaderboardService recomputes the ranking from current statistics on
// every miss; the redis cache is a pure optimization, invalidated on each
// stats write, and the service works without it (nil client).
type LeaderboardService struct {
	statRepo    repository.StatRepository
	problemRepo repository.ProblemRepository
	rdb         *redis.Client
	cacheTTL    time.Duration
}

func NewLeaderboardService(
	statRepo repository.StatRepository,
	problemRepo repository.ProblemRepository,
	rdb *redis.Client,
	cacheTTL time.Duration,
) *LeaderboardService {
	return &LeaderboardService{
		statRepo:    statRepo,
		problemRepo: problemRepo,
		rdb:         rdb,
		cacheTTL:    cacheTTL,
	}
}

func (s *LeaderboardService) Get(ctx context.Context) (*model.Leaderboard, error) {
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, leaderboardCacheKey).Bytes()
		if err == nil {
			var board model.Leaderboard
			if jsonErr := json.Unmarshal(cached, &board); jsonErr == nil {
				return &board, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("WARN: Leaderboard cache read failed: %v", err)
		}
	}

	totalProblems, err := s.problemRepo.CountProblems(ctx)
	if err != nil {
		return nil, common.Errorf("failed to count problems: %w", err)
	}
	aggregates, err := s.statRepo.AggregateByUser(ctx)
	if err != nil {
		return nil, common.Errorf("failed to aggregate statistics: %w", err)
	}

	board := &model.Leaderboard{
		TotalProblems: totalProblems,
		Entries:       judge.Rank(aggregates, totalProblems),
	}

	if s.rdb != nil {
		if payload, err := json.Marshal(board); err == nil {
			if err := s.rdb.Set(ctx, leaderboardCacheKey, payload, s.cacheTTL).Err(); err != nil {
				log.Printf("WARN: Leaderboard cache write failed: %v", err)
			}
		}
	}
	return board, nil
}

// Invalidate drops the cached board; called after every stats write so the
// next read reflects it. Cache errors are logged, never propagated.
func (s *LeaderboardService) Invalidate(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, leaderboardCacheKey).Err(); err != nil {
		log.Printf("WARN: Leaderboard cache invalidation failed: %v", err)
	}
}
