package service

import (
	"context"
	"database/sql"
	"log"

	"minijudge/internal/common"
	"minijudge/internal/domain/model"
	"minijudge/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type ProblemService struct {
	problemRepo repository.ProblemRepository
	db          *sql.DB // For transactions
}

func NewProblemService(problemRepo repository.ProblemRepository, db *sql.DB) *ProblemService {
	return &ProblemService{problemRepo: problemRepo, db: db}
}

type TestCaseInput struct {
	InputData      string `json:"input_data"`
	ExpectedOutput string `json:"expected_output"`
}

type CreateProblemRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	TestCases   []TestCaseInput `json:"test_cases"`
}

func (s *ProblemService) CreateProblem(ctx context.Context, creatorID string, req CreateProblemRequest) (*model.Problem, error) {
	if req.Title == "" || req.Description == "" {
		return nil, common.Errorf("title and description are required: %w", common.ErrValidation)
	}

	problem := &model.Problem{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Slug:        slug.Make(req.Title),
		Description: req.Description,
		CreatedByID: &creatorID,
	}

	testCases := make([]model.TestCase, 0, len(req.TestCases))
	for _, tc := range req.TestCases {
		testCases = append(testCases, model.TestCase{
			ID:             uuid.NewString(),
			ProblemID:      problem.ID,
			InputData:      tc.InputData,
			ExpectedOutput: tc.ExpectedOutput,
		})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.problemRepo.CreateProblem(ctx, tx, problem); err != nil {
		return nil, common.Errorf("failed to create problem: %w", err)
	}
	if err := s.problemRepo.AddTestCases(ctx, tx, problem.ID, testCases); err != nil {
		return nil, common.Errorf("failed to add test cases: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("Problem %s (%s) created with %d test cases.", problem.ID, problem.Slug, len(testCases))
	problem.TestCases = testCases
	return problem, nil
}

type UpdateProblemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (s *ProblemService) UpdateProblem(ctx context.Context, problemID string, req UpdateProblemRequest) (*model.Problem, error) {
	problem, err := s.problemRepo.FindProblemByID(ctx, problemID)
	if err != nil {
		return nil, common.Errorf("problem not found: %w", err)
	}

	if req.Title != "" {
		problem.Title = req.Title
		problem.Slug = slug.Make(req.Title)
	}
	if req.Description != "" {
		problem.Description = req.Description
	}

	if err := s.problemRepo.UpdateProblem(ctx, nil, problem); err != nil {
		return nil, common.Errorf("failed to update problem: %w", err)
	}
	return problem, nil
}

// AddTestCases appends further test cases after the existing ones. Cases
// already used by submissions are never edited; stored submission results
// keep the outputs they were judged against.
func (s *ProblemService) AddTestCases(ctx context.Context, problemID string, inputs []TestCaseInput) ([]model.TestCase, error) {
	if len(inputs) == 0 {
		return nil, common.Errorf("no test cases given: %w", common.ErrValidation)
	}
	problem, err := s.problemRepo.FindProblemByID(ctx, problemID)
	if err != nil {
		return nil, common.Errorf("problem not found: %w", err)
	}
	existing, err := s.problemRepo.GetTestCasesByProblemID(ctx, problem.ID)
	if err != nil {
		return nil, common.Errorf("failed to fetch existing test cases: %w", err)
	}

	testCases := make([]model.TestCase, 0, len(inputs))
	for i, tc := range inputs {
		testCases = append(testCases, model.TestCase{
			ID:             uuid.NewString(),
			ProblemID:      problem.ID,
			InputData:      tc.InputData,
			ExpectedOutput: tc.ExpectedOutput,
			SortOrder:      len(existing) + i + 1,
		})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.problemRepo.AddTestCases(ctx, tx, problem.ID, testCases); err != nil {
		return nil, common.Errorf("failed to add test cases: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit transaction: %w", err)
	}
	return testCases, nil
}

func (s *ProblemService) ListProblems(ctx context.Context, limit, offset int, searchTerm string) ([]model.Problem, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.problemRepo.ListProblems(ctx, limit, offset, searchTerm)
}

// GetProblemBySlug is the public detail view: test-case inputs are shown as
// examples but expected outputs stay hidden.
func (s *ProblemService) GetProblemBySlug(ctx context.Context, slugOrID string, includeExpected bool) (*model.Problem, error) {
	problem, err := s.problemRepo.FindProblemBySlug(ctx, slugOrID)
	if err != nil {
		return nil, common.Errorf("problem not found: %w", err)
	}
	testCases, err := s.problemRepo.GetTestCasesByProblemID(ctx, problem.ID)
	if err != nil {
		return nil, common.Errorf("failed to fetch test cases: %w", err)
	}
	if !includeExpected {
		for i := range testCases {
			testCases[i].ExpectedOutput = ""
		}
	}
	problem.TestCases = testCases
	return problem, nil
}
