package service

import (
	"context"
	"database/sql"
	"log"
	"time"

	"minijudge/internal/app/judge"
	"minijudge/internal/common"
	"minijudge/internal/domain/model"
	"minijudge/internal/domain/repository"

	"github.com/google/uuid"
)

type SubmissionService struct {
	submissionRepo repository.SubmissionRepository
	problemRepo    repository.ProblemRepository
	statRepo       repository.StatRepository
	solutionRepo   repository.SolutionRepository
	evaluator      *judge.Evaluator
	leaderboard    *LeaderboardService
	db             *sql.DB // For transactions
}

func NewSubmissionService(
	subRepo repository.SubmissionRepository,
	probRepo repository.ProblemRepository,
	statRepo repository.StatRepository,
	solutionRepo repository.SolutionRepository,
	evaluator *judge.Evaluator,
	leaderboard *LeaderboardService,
	db *sql.DB,
) *SubmissionService {
	return &SubmissionService{
		submissionRepo: subRepo,
		problemRepo:    probRepo,
		statRepo:       statRepo,
		solutionRepo:   solutionRepo,
		evaluator:      evaluator,
		leaderboard:    leaderboard,
		db:             db,
	}
}

type CreateSubmissionRequest struct {
	ProblemID string `json:"problem_id"`
	Code      string `json:"code"`
}

// Submit evaluates the code against the problem's test cases and persists
// exactly one Submission with the verdict, transcripts and per-test
// breakdown. userID is nil for anonymous submitters, whose submissions are
// stored but never touch statistics, solutions or the leaderboard. For
// authenticated users the submission write and the stat update commit in
// one transaction; a persistence failure surfaces as an error, never as a
// fabricated verdict.
func (s *SubmissionService) Submit(ctx context.Context, userID *string, req CreateSubmissionRequest) (*model.Submission, error) {
	if req.Code == "" {
		return nil, common.Errorf("code is required: %w", common.ErrBadRequest)
	}

	problem, err := s.problemRepo.FindProblemByID(ctx, req.ProblemID)
	if err != nil {
		return nil, common.Errorf("problem not found: %w", err)
	}
	testCases, err := s.problemRepo.GetTestCasesByProblemID(ctx, problem.ID)
	if err != nil {
		return nil, common.Errorf("failed to fetch test cases: %w", err)
	}

	evaluation := s.evaluator.Evaluate(ctx, req.Code, testCases)
	passed := judge.Verdict(evaluation.Results)

	submission := &model.Submission{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProblemID: problem.ID,
		Code:      req.Code,
		Passed:    &passed,
		Output:    evaluation.Transcript,
		Error:     evaluation.ErrTranscript,
		CreatedAt: time.Now().UTC(),
		Results:   evaluation.Results,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.submissionRepo.CreateSubmission(ctx, tx, submission); err != nil {
		return nil, common.Errorf("failed to store submission: %w", err)
	}

	if userID != nil {
		if _, err := s.statRepo.RecordSubmission(ctx, tx, *userID, problem.ID, passed, submission.CreatedAt); err != nil {
			return nil, common.Errorf("failed to record statistics: %w", err)
		}
		if passed {
			solution := &model.Solution{
				ID:           uuid.NewString(),
				UserID:       *userID,
				ProblemID:    problem.ID,
				SubmissionID: submission.ID,
				Code:         req.Code,
			}
			if err := s.solutionRepo.Upsert(ctx, tx, solution); err != nil {
				return nil, common.Errorf("failed to store solution: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit submission: %w", err)
	}

	if userID != nil {
		s.leaderboard.Invalidate(ctx)
	}

	if evaluation.ErrTranscript != "" {
		log.Printf("WARN: Submission %s had launch failures: %s", submission.ID, evaluation.ErrTranscript)
	}
	log.Printf("Submission %s for problem %s judged: passed=%t (%d tests)", submission.ID, problem.ID, passed, len(evaluation.Results))
	return submission, nil
}

func (s *SubmissionService) GetSubmission(ctx context.Context, id string) (*model.Submission, error) {
	sub, err := s.submissionRepo.GetSubmissionByID(ctx, id)
	if err != nil {
		return nil, common.Errorf("submission not found: %w", err)
	}
	return sub, nil
}

func (s *SubmissionService) ListMySubmissions(ctx context.Context, userID string, limit, offset int) ([]model.Submission, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.submissionRepo.ListSubmissionsForUser(ctx, userID, limit, offset)
}

func (s *SubmissionService) ListMySubmissionsForProblem(ctx context.Context, userID, problemID string, limit, offset int) ([]model.Submission, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.submissionRepo.ListSubmissionsForUserProblem(ctx, userID, problemID, limit, offset)
}

func (s *SubmissionService) GetMySolution(ctx context.Context, userID, problemID string) (*model.Solution, error) {
	sol, err := s.solutionRepo.GetByUserAndProblem(ctx, userID, problemID)
	if err != nil {
		return nil, common.Errorf("no accepted solution: %w", err)
	}
	return sol, nil
}
