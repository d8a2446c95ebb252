package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"minijudge/internal/common"
	"minijudge/internal/domain/model"
)

type StatRepository interface {
	// RecordSubmission applies one completed submission to the (user,
	// problem) stat row: attempts += 1, last_submission_at updated, and on
	// an accepted submission passed flips to true with first_accepted_at
	// set once. The whole read-modify-write is a single upsert statement,
	// so concurrent submissions by the same user for the same problem
	// serialize on the row's unique key and no increment is ever lost.
	RecordSubmission(ctx context.Context, tx *sql.Tx, userID, problemID string, passed bool, submittedAt time.Time) (*model.UserProblemStat, error)
	GetStat(ctx context.Context, userID, problemID string) (*model.UserProblemStat, error)
	// AggregateByUser rolls all stat rows up per user for leaderboard
	// ranking. Users with no submissions do not appear.
	AggregateByUser(ctx context.Context) ([]model.UserAggregate, error)
}

type pgStatRepository struct {
	db *sql.DB
}

func NewPgStatRepository(db *sql.DB) StatRepository {
	return &pgStatRepository{db: db}
}

func (r *pgStatRepository) RecordSubmission(ctx context.Context, tx *sql.Tx, userID, problemID string, passed bool, submittedAt time.Time) (*model.UserProblemStat, error) {
	query := `INSERT INTO user_problem_stats (user_id, problem_id, attempts, passed, first_accepted_at, last_submission_at)
	          VALUES ($1, $2, 1, $3, CASE WHEN $3 THEN $4 END, $4)
	          ON CONFLICT (user_id, problem_id) DO UPDATE SET
	              attempts = user_problem_stats.attempts + 1,
	              passed = user_problem_stats.passed OR EXCLUDED.passed,
	              first_accepted_at = COALESCE(user_problem_stats.first_accepted_at, EXCLUDED.first_accepted_at),
	              last_submission_at = EXCLUDED.last_submission_at
	          RETURNING attempts, passed, first_accepted_at, last_submission_at`

	stat := &model.UserProblemStat{UserID: userID, ProblemID: problemID}
	var row *sql.Row
	if tx != nil {
		row = tx.QueryRowContext(ctx, query, userID, problemID, passed, submittedAt)
	} else {
		row = r.db.QueryRowContext(ctx, query, userID, problemID, passed, submittedAt)
	}
	if err := row.Scan(&stat.Attempts, &stat.Passed, &stat.FirstAcceptedAt, &stat.LastSubmissionAt); err != nil {
		return nil, fmt.Errorf("pgStatRepository.RecordSubmission: %w", err)
	}
	return stat, nil
}

func (r *pgStatRepository) GetStat(ctx context.Context, userID, problemID string) (*model.UserProblemStat, error) {
	query := `SELECT user_id, problem_id, attempts, passed, first_accepted_at, last_submission_at
	          FROM user_problem_stats WHERE user_id = $1 AND problem_id = $2`
	stat := &model.UserProblemStat{}
	err := r.db.QueryRowContext(ctx, query, userID, problemID).Scan(
		&stat.UserID, &stat.ProblemID, &stat.Attempts, &stat.Passed, &stat.FirstAcceptedAt, &stat.LastSubmissionAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgStatRepository.GetStat: %w", err)
	}
	return stat, nil
}

func (r *pgStatRepository) AggregateByUser(ctx context.Context) ([]model.UserAggregate, error) {
	query := `SELECT u.id, u.username,
	                 COUNT(*) FILTER (WHERE s.passed) AS completed,
	                 COALESCE(SUM(s.attempts), 0) AS attempts
	          FROM users u
	          JOIN user_problem_stats s ON s.user_id = u.id
	          GROUP BY u.id, u.username`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgStatRepository.AggregateByUser query: %w", err)
	}
	defer rows.Close()

	var aggregates []model.UserAggregate
	for rows.Next() {
		var a model.UserAggregate
		if err := rows.Scan(&a.UserID, &a.Username, &a.Completed, &a.Attempts); err != nil {
			return nil, fmt.Errorf("pgStatRepository.AggregateByUser scan: %w", err)
		}
		aggregates = append(aggregates, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgStatRepository.AggregateByUser rows.Err: %w", err)
	}
	return aggregates, nil
}
