package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"minijudge/internal/common"
	"minijudge/internal/domain/model"
)

type SolutionRepository interface {
	// Upsert creates or overwrites the single (user, problem) solution so
	// it always references the latest accepted submission and its code.
	Upsert(ctx context.Context, tx *sql.Tx, sol *model.Solution) error
	GetByUserAndProblem(ctx context.Context, userID, problemID string) (*model.Solution, error)
}

type pgSolutionRepository struct {
	db *sql.DB
}

func NewPgSolutionRepository(db *sql.DB) SolutionRepository {
	return &pgSolutionRepository{db: db}
}

func (r *pgSolutionRepository) Upsert(ctx context.Context, tx *sql.Tx, sol *model.Solution) error {
	query := `INSERT INTO solutions (id, user_id, problem_id, submission_id, code)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (user_id, problem_id) DO UPDATE SET
	              submission_id = EXCLUDED.submission_id,
	              code = EXCLUDED.code,
	              updated_at = CURRENT_TIMESTAMP`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, sol.ID, sol.UserID, sol.ProblemID, sol.SubmissionID, sol.Code)
	} else {
		_, err = r.db.ExecContext(ctx, query, sol.ID, sol.UserID, sol.ProblemID, sol.SubmissionID, sol.Code)
	}
	if err != nil {
		return fmt.Errorf("pgSolutionRepository.Upsert: %w", err)
	}
	return nil
}

func (r *pgSolutionRepository) GetByUserAndProblem(ctx context.Context, userID, problemID string) (*model.Solution, error) {
	query := `SELECT id, user_id, problem_id, submission_id, code, updated_at
	          FROM solutions WHERE user_id = $1 AND problem_id = $2`
	sol := &model.Solution{}
	err := r.db.QueryRowContext(ctx, query, userID, problemID).Scan(
		&sol.ID, &sol.UserID, &sol.ProblemID, &sol.SubmissionID, &sol.Code, &sol.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSolutionRepository.GetByUserAndProblem: %w", err)
	}
	return sol, nil
}
