package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"minijudge/internal/common"
	"minijudge/internal/domain/model"
)

type SubmissionRepository interface {
	// CreateSubmission persists the submission together with its embedded
	// per-test results in one write. Submissions are immutable afterwards.
	CreateSubmission(ctx context.Context, tx *sql.Tx, sub *model.Submission) error
	GetSubmissionByID(ctx context.Context, id string) (*model.Submission, error)
	ListSubmissionsForUser(ctx context.Context, userID string, limit, offset int) ([]model.Submission, int, error)
	ListSubmissionsForUserProblem(ctx context.Context, userID, problemID string, limit, offset int) ([]model.Submission, int, error)
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

func (r *pgSubmissionRepository) CreateSubmission(ctx context.Context, tx *sql.Tx, sub *model.Submission) error {
	results, err := json.Marshal(sub.Results)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.CreateSubmission marshal results: %w", err)
	}

	query := `INSERT INTO submissions (id, user_id, problem_id, code, passed, output, error, results, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	if tx != nil {
		_, err = tx.ExecContext(ctx, query, sub.ID, sub.UserID, sub.ProblemID, sub.Code, sub.Passed, sub.Output, sub.Error, results, sub.CreatedAt)
	} else {
		_, err = r.db.ExecContext(ctx, query, sub.ID, sub.UserID, sub.ProblemID, sub.Code, sub.Passed, sub.Output, sub.Error, results, sub.CreatedAt)
	}
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.CreateSubmission: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) GetSubmissionByID(ctx context.Context, id string) (*model.Submission, error) {
	query := `SELECT s.id, s.user_id, s.problem_id, s.code, s.passed, s.output, s.error, s.results, s.created_at,
	                 u.username, p.title
	          FROM submissions s
	          LEFT JOIN users u ON s.user_id = u.id
	          JOIN problems p ON s.problem_id = p.id
	          WHERE s.id = $1`

	sub := &model.Submission{}
	var results []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&sub.ID, &sub.UserID, &sub.ProblemID, &sub.Code, &sub.Passed, &sub.Output, &sub.Error, &results, &sub.CreatedAt,
		&sub.UserUsername, &sub.ProblemTitle,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSubmissionRepository.GetSubmissionByID: %w", err)
	}
	if len(results) > 0 {
		if err := json.Unmarshal(results, &sub.Results); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.GetSubmissionByID unmarshal results: %w", err)
		}
	}
	return sub, nil
}

func (r *pgSubmissionRepository) ListSubmissionsForUser(ctx context.Context, userID string, limit, offset int) ([]model.Submission, int, error) {
	return r.list(ctx, `s.user_id = $1`, []interface{}{userID}, limit, offset)
}

func (r *pgSubmissionRepository) ListSubmissionsForUserProblem(ctx context.Context, userID, problemID string, limit, offset int) ([]model.Submission, int, error) {
	return r.list(ctx, `s.user_id = $1 AND s.problem_id = $2`, []interface{}{userID, problemID}, limit, offset)
}

// list returns summaries (no code, no embedded results) for history views.
func (r *pgSubmissionRepository) list(ctx context.Context, where string, args []interface{}, limit, offset int) ([]model.Submission, int, error) {
	countQuery := `SELECT COUNT(*) FROM submissions s WHERE ` + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgSubmissionRepository.list count: %w", err)
	}

	query := fmt.Sprintf(`SELECT s.id, s.user_id, s.problem_id, s.passed, s.created_at, p.title
	          FROM submissions s
	          JOIN problems p ON s.problem_id = p.id
	          WHERE %s
	          ORDER BY s.created_at DESC LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgSubmissionRepository.list query: %w", err)
	}
	defer rows.Close()

	subs := []model.Submission{}
	for rows.Next() {
		var s model.Submission
		if err := rows.Scan(&s.ID, &s.UserID, &s.ProblemID, &s.Passed, &s.CreatedAt, &s.ProblemTitle); err != nil {
			return nil, 0, fmt.Errorf("pgSubmissionRepository.list scan: %w", err)
		}
		subs = append(subs, s)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgSubmissionRepository.list rows.Err: %w", err)
	}
	return subs, total, nil
}
