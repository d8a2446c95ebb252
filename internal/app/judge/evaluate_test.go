package judge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"minijudge/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRunner returns a canned outcome per stdin value.
type scriptedRunner struct {
	outcomes map[string]scriptedOutcome
	delay    time.Duration
}

type scriptedOutcome struct {
	res *RunResult
	err error
}

func (r *scriptedRunner) Run(_ context.Context, _ string, stdin string) (*RunResult, error) {
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	out, ok := r.outcomes[stdin]
	if !ok {
		return nil, fmt.Errorf("unexpected stdin %q", stdin)
	}
	return out.res, out.err
}

func makeCases(inputs ...string) []model.TestCase {
	cases := make([]model.TestCase, 0, len(inputs))
	for i, in := range inputs {
		cases = append(cases, model.TestCase{
			ID:             fmt.Sprintf("tc-%d", i+1),
			InputData:      in,
			ExpectedOutput: "ok",
			SortOrder:      i + 1,
		})
	}
	return cases
}

func okResult(stdout string) scriptedOutcome {
	zero := 0
	return scriptedOutcome{res: &RunResult{Stdout: stdout, ExitCode: &zero}}
}

func TestEvaluateAllPassing(t *testing.T) {
	runner := &scriptedRunner{outcomes: map[string]scriptedOutcome{
		"a": okResult("ok\n"),
		"b": okResult("  ok"),
	}}
	e := NewEvaluator(runner, 1)

	eval := e.Evaluate(context.Background(), "code", makeCases("a", "b"))

	require.Len(t, eval.Results, 2)
	for i, r := range eval.Results {
		assert.Equal(t, i+1, r.Index)
		assert.True(t, r.Passed)
		assert.Equal(t, "ok", r.Actual)
		assert.Equal(t, "ok", r.Expected)
	}
	assert.Equal(t, "#1 -> ok\n#2 -> ok", eval.Transcript)
	assert.Empty(t, eval.ErrTranscript)
	assert.True(t, Verdict(eval.Results))
}

func TestEvaluateTimeoutRecord(t *testing.T) {
	runner := &scriptedRunner{outcomes: map[string]scriptedOutcome{
		"a": okResult("ok"),
		"b": {res: &RunResult{TimedOut: true}},
	}}
	e := NewEvaluator(runner, 1)

	eval := e.Evaluate(context.Background(), "code", makeCases("a", "b"))

	require.Len(t, eval.Results, 2)
	slow := eval.Results[1]
	assert.False(t, slow.Passed)
	assert.Nil(t, slow.ExitCode)
	assert.Empty(t, slow.Actual)
	assert.Equal(t, "Time limit exceeded", slow.Stderr)
	assert.Contains(t, eval.Transcript, "#2 -> TIMEOUT")
	assert.False(t, Verdict(eval.Results))
}

func TestEvaluateLaunchErrorContinuesWithRemainingCases(t *testing.T) {
	runner := &scriptedRunner{outcomes: map[string]scriptedOutcome{
		"a": {err: errors.New("launch sh: file not found")},
		"b": okResult("ok"),
	}}
	e := NewEvaluator(runner, 1)

	eval := e.Evaluate(context.Background(), "code", makeCases("a", "b"))

	require.Len(t, eval.Results, 2)
	assert.False(t, eval.Results[0].Passed)
	assert.Nil(t, eval.Results[0].ExitCode)
	assert.Equal(t, "Could not execute program", eval.Results[0].Stderr)
	assert.True(t, eval.Results[1].Passed, "a launch error on one trial must not abort the others")
	assert.Contains(t, eval.ErrTranscript, "test 1:")
	assert.Contains(t, eval.ErrTranscript, "file not found")
	assert.Contains(t, eval.Transcript, "#1 -> ERROR")
	assert.False(t, Verdict(eval.Results))
}

func TestEvaluateRuntimeFailureRecordsStderrAndExit(t *testing.T) {
	one := 1
	runner := &scriptedRunner{outcomes: map[string]scriptedOutcome{
		"a": {res: &RunResult{Stdout: "ok", Stderr: "traceback\n", ExitCode: &one}},
	}}
	e := NewEvaluator(runner, 1)

	eval := e.Evaluate(context.Background(), "code", makeCases("a"))

	r := eval.Results[0]
	assert.False(t, r.Passed, "matching output with nonzero exit is a fail")
	require.NotNil(t, r.ExitCode)
	assert.Equal(t, 1, *r.ExitCode)
	assert.Equal(t, "traceback", r.Stderr)
}

func TestEvaluateConcurrentResultsStayInTestOrder(t *testing.T) {
	inputs := make([]string, 16)
	outcomes := make(map[string]scriptedOutcome, len(inputs))
	for i := range inputs {
		inputs[i] = fmt.Sprintf("in-%02d", i)
		outcomes[inputs[i]] = okResult(fmt.Sprintf("out-%02d", i))
	}
	runner := &scriptedRunner{outcomes: outcomes, delay: time.Millisecond}
	e := NewEvaluator(runner, 8)

	eval := e.Evaluate(context.Background(), "code", makeCases(inputs...))

	require.Len(t, eval.Results, len(inputs))
	lines := strings.Split(eval.Transcript, "\n")
	for i, r := range eval.Results {
		assert.Equal(t, i+1, r.Index)
		assert.Equal(t, inputs[i], r.Input)
		assert.Equal(t, fmt.Sprintf("out-%02d", i), r.Actual)
		assert.Equal(t, fmt.Sprintf("#%d -> out-%02d", i+1, i), lines[i])
	}
}

func TestEvaluateNumberingStableAcrossRuns(t *testing.T) {
	runner := &scriptedRunner{outcomes: map[string]scriptedOutcome{
		"a": okResult("ok"),
		"b": okResult("nope"),
		"c": okResult("ok"),
	}}
	e := NewEvaluator(runner, 4)
	cases := makeCases("a", "b", "c")

	first := e.Evaluate(context.Background(), "code", cases)
	second := e.Evaluate(context.Background(), "code", cases)

	require.Equal(t, len(first.Results), len(second.Results))
	for i := range first.Results {
		assert.Equal(t, first.Results[i].Index, second.Results[i].Index)
		assert.Equal(t, first.Results[i].Input, second.Results[i].Input)
		assert.Equal(t, first.Results[i].Passed, second.Results[i].Passed)
	}
}

func TestVerdictEmptyResultSetIsVacuouslyTrue(t *testing.T) {
	assert.True(t, Verdict(nil))
	assert.True(t, Verdict([]model.TestResult{}))
}

func TestVerdictIsANDOverAllResults(t *testing.T) {
	assert.True(t, Verdict([]model.TestResult{{Passed: true}, {Passed: true}}))
	assert.False(t, Verdict([]model.TestResult{{Passed: true}, {Passed: false}, {Passed: true}}))
}
