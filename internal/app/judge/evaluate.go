package judge

import (
	"context"
	"fmt"
	"strings"

	"minijudge/internal/domain/model"

	"golang.org/x/sync/errgroup"
)

const (
	timeoutStderr = "Time limit exceeded"
	launchStderr  = "Could not execute program"

	timeoutMarker = "TIMEOUT"
	launchMarker  = "ERROR"
)

// Evaluation is the full outcome of judging one submission's code against a
// problem's test cases, before the verdict is written.
type Evaluation struct {
	Results       []model.TestResult
	Transcript    string // one "#<i> -> <actual-or-marker>" line per test, in order
	ErrTranscript string // launch failures, one line per affected test
}

// Evaluator drives the Runner across a problem's ordered test cases.
// workers bounds how many trials run at once; 1 (the default) keeps trials
// strictly sequential so they never compete for machine resources.
type Evaluator struct {
	runner  Runner
	workers int
}

func NewEvaluator(runner Runner, workers int) *Evaluator {
	if workers < 1 {
		workers = 1
	}
	return &Evaluator{runner: runner, workers: workers}
}

// Evaluate runs every test case to completion; there is no short-circuit on
// the first failure because the full per-test breakdown is required output.
// Test cases are numbered 1..N in the order given, and results come back in
// that order regardless of completion order. All per-trial failures
// (timeouts, nonzero exits, launch errors) are recovered into failing
// records; Evaluate itself never fails.
func (e *Evaluator) Evaluate(ctx context.Context, code string, cases []model.TestCase) Evaluation {
	results := make([]model.TestResult, len(cases))
	lines := make([]string, len(cases))
	launchErrs := make([]string, len(cases))

	g := &errgroup.Group{}
	g.SetLimit(e.workers)
	for i, tc := range cases {
		i, tc := i, tc
		g.Go(func() error {
			results[i], lines[i], launchErrs[i] = e.runCase(ctx, code, i+1, tc)
			return nil
		})
	}
	g.Wait()

	var errLines []string
	for _, l := range launchErrs {
		if l != "" {
			errLines = append(errLines, l)
		}
	}

	return Evaluation{
		Results:       results,
		Transcript:    strings.Join(lines, "\n"),
		ErrTranscript: strings.Join(errLines, "\n"),
	}
}

func (e *Evaluator) runCase(ctx context.Context, code string, index int, tc model.TestCase) (model.TestResult, string, string) {
	result := model.TestResult{
		Index:    index,
		Input:    tc.InputData,
		Expected: Normalize(tc.ExpectedOutput),
	}

	res, err := e.runner.Run(ctx, code, tc.InputData)
	switch {
	case err != nil:
		// The detail goes to the submission error transcript, not the
		// per-test stderr; remaining test cases still run.
		result.Stderr = launchStderr
		return result, transcriptLine(index, launchMarker), fmt.Sprintf("test %d: %v", index, err)
	case res.TimedOut:
		result.Stderr = timeoutStderr
		return result, transcriptLine(index, timeoutMarker), ""
	default:
		result.Actual = Normalize(res.Stdout)
		result.Stderr = strings.TrimSpace(res.Stderr)
		result.ExitCode = res.ExitCode
		result.Passed = Passed(res.Stdout, tc.ExpectedOutput, res.ExitCode)
		return result, transcriptLine(index, result.Actual), ""
	}
}

func transcriptLine(index int, out string) string {
	return fmt.Sprintf("#%d -> %s", index, out)
}

// Verdict reduces per-test results to the overall submission verdict: the
// AND over all per-test flags. An empty test-case set is vacuously true.
func Verdict(results []model.TestResult) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
