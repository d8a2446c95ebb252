package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"minijudge/internal/common"
	"minijudge/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type ProblemRepository interface {
	CreateProblem(ctx context.Context, tx *sql.Tx, problem *model.Problem) error
	UpdateProblem(ctx context.Context, tx *sql.Tx, problem *model.Problem) error
	FindProblemByID(ctx context.Context, id string) (*model.Problem, error)
	FindProblemBySlug(ctx context.Context, slug string) (*model.Problem, error)
	ListProblems(ctx context.Context, limit, offset int, searchTerm string) ([]model.Problem, int, error)
	CountProblems(ctx context.Context) (int, error)

	// AddTestCases inserts the cases with their SortOrder; cases without
	// one are numbered 1..N in slice order (problem creation). Assigned
	// orders are written back into the slice.
	AddTestCases(ctx context.Context, tx *sql.Tx, problemID string, testCases []model.TestCase) error
	// GetTestCasesByProblemID returns the problem's test cases in their
	// fixed evaluation order (sort_order, then id).
	GetTestCasesByProblemID(ctx context.Context, problemID string) ([]model.TestCase, error)
}

type pgProblemRepository struct {
	db *sql.DB
}

func NewPgProblemRepository(db *sql.DB) ProblemRepository {
	return &pgProblemRepository{db: db}
}

func (r *pgProblemRepository) CreateProblem(ctx context.Context, tx *sql.Tx, p *model.Problem) error {
	query := `INSERT INTO problems (id, title, slug, description, created_by)
	          VALUES ($1, $2, $3, $4, $5)`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, p.ID, p.Title, p.Slug, p.Description, p.CreatedByID)
	} else {
		_, err = r.db.ExecContext(ctx, query, p.ID, p.Title, p.Slug, p.Description, p.CreatedByID)
	}

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint for slug
			return fmt.Errorf("problem with this slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgProblemRepository.CreateProblem: %w", err)
	}
	return nil
}

func (r *pgProblemRepository) UpdateProblem(ctx context.Context, tx *sql.Tx, p *model.Problem) error {
	query := `UPDATE problems SET
                title = $1, slug = $2, description = $3, updated_at = CURRENT_TIMESTAMP
              WHERE id = $4`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, p.Title, p.Slug, p.Description, p.ID)
	} else {
		_, err = r.db.ExecContext(ctx, query, p.Title, p.Slug, p.Description, p.ID)
	}
	if err != nil {
		return fmt.Errorf("pgProblemRepository.UpdateProblem: %w", err)
	}
	return nil
}

func (r *pgProblemRepository) FindProblemByID(ctx context.Context, id string) (*model.Problem, error) {
	return r.findOne(ctx, "id", id)
}

func (r *pgProblemRepository) FindProblemBySlug(ctx context.Context, slug string) (*model.Problem, error) {
	return r.findOne(ctx, "slug", slug)
}

func (r *pgProblemRepository) findOne(ctx context.Context, column, value string) (*model.Problem, error) {
	query := fmt.Sprintf(`SELECT id, title, slug, description, created_by, created_at, updated_at
              FROM problems WHERE %s = $1`, column)

	problem := &model.Problem{}
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&problem.ID, &problem.Title, &problem.Slug, &problem.Description,
		&problem.CreatedByID, &problem.CreatedAt, &problem.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProblemRepository.findOne(%s): %w", column, err)
	}
	return problem, nil
}

func (r *pgProblemRepository) ListProblems(ctx context.Context, limit, offset int, searchTerm string) ([]model.Problem, int, error) {
	countQuery := `SELECT COUNT(*) FROM problems p`
	listQuery := `SELECT p.id, p.title, p.slug, p.description, p.created_by, p.created_at, p.updated_at
	              FROM problems p`

	var args []interface{}
	if searchTerm != "" {
		where := ` WHERE (p.title ILIKE $1 OR p.description ILIKE $1)`
		countQuery += where
		listQuery += where
		args = append(args, "%"+searchTerm+"%")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgProblemRepository.ListProblems count: %w", err)
	}

	listQuery += fmt.Sprintf(" ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgProblemRepository.ListProblems query: %w", err)
	}
	defer rows.Close()

	problems := []model.Problem{}
	for rows.Next() {
		var p model.Problem
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.Description, &p.CreatedByID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("pgProblemRepository.ListProblems scan: %w", err)
		}
		problems = append(problems, p)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgProblemRepository.ListProblems rows.Err: %w", err)
	}

	return problems, total, nil
}

func (r *pgProblemRepository) CountProblems(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM problems`).Scan(&total); err != nil {
		return 0, fmt.Errorf("pgProblemRepository.CountProblems: %w", err)
	}
	return total, nil
}

func (r *pgProblemRepository) AddTestCases(ctx context.Context, tx *sql.Tx, problemID string, testCases []model.TestCase) error {
	if len(testCases) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO test_cases (id, problem_id, input_data, expected_output, sort_order)
	                                     VALUES ($1, $2, $3, $4, $5)`)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.AddTestCases prepare: %w", err)
	}
	defer stmt.Close()

	for i := range testCases {
		tc := &testCases[i]
		if tc.SortOrder == 0 {
			tc.SortOrder = i + 1 // Fixed from now on; appended batches arrive pre-numbered
		}
		_, err := stmt.ExecContext(ctx, tc.ID, problemID, tc.InputData, tc.ExpectedOutput, tc.SortOrder)
		if err != nil {
			return fmt.Errorf("pgProblemRepository.AddTestCases exec for case %s: %w", tc.ID, err)
		}
	}
	return nil
}

func (r *pgProblemRepository) GetTestCasesByProblemID(ctx context.Context, problemID string) ([]model.TestCase, error) {
	query := `SELECT id, problem_id, input_data, expected_output, sort_order, created_at
              FROM test_cases WHERE problem_id = $1 ORDER BY sort_order ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, problemID)
	if err != nil {
		return nil, fmt.Errorf("pgProblemRepository.GetTestCasesByProblemID query: %w", err)
	}
	defer rows.Close()

	var testCases []model.TestCase
	for rows.Next() {
		var tc model.TestCase
		if err := rows.Scan(&tc.ID, &tc.ProblemID, &tc.InputData, &tc.ExpectedOutput, &tc.SortOrder, &tc.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgProblemRepository.GetTestCasesByProblemID scan: %w", err)
		}
		testCases = append(testCases, tc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProblemRepository.GetTestCasesByProblemID rows.Err: %w", err)
	}
	return testCases, nil
}
