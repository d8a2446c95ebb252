package judge

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"minijudge/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The runner tests drive real subprocesses through /bin/sh so they work on
// any POSIX host without a Python toolchain.
func newShRunner(t *testing.T, limit time.Duration) *ProcessRunner {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	return NewProcessRunner("sh", ".sh", limit)
}

func TestProcessRunnerCapturesStdoutAndExitZero(t *testing.T) {
	r := newShRunner(t, 5*time.Second)

	res, err := r.Run(context.Background(), `read a b; echo $((a + b))`, "2 3\n")
	require.NoError(t, err)
	require.NotNil(t, res.ExitCode)
	assert.Equal(t, 0, *res.ExitCode)
	assert.Equal(t, "5\n", res.Stdout)
	assert.False(t, res.TimedOut)
}

func TestProcessRunnerNonzeroExitIsNotAnError(t *testing.T) {
	r := newShRunner(t, 5*time.Second)

	res, err := r.Run(context.Background(), `echo out; echo oops >&2; exit 3`, "")
	require.NoError(t, err)
	require.NotNil(t, res.ExitCode)
	assert.Equal(t, 3, *res.ExitCode)
	assert.Equal(t, "out\n", res.Stdout)
	assert.Contains(t, res.Stderr, "oops")
}

func TestProcessRunnerTimeout(t *testing.T) {
	r := newShRunner(t, 300*time.Millisecond)

	start := time.Now()
	res, err := r.Run(context.Background(), `echo partial; sleep 30`, "")
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.True(t, res.TimedOut)
	assert.Nil(t, res.ExitCode)
	assert.Empty(t, res.Stdout) // partial output is not trusted
	assert.Less(t, elapsed, 5*time.Second, "forced termination must not wait for the program")
}

func TestProcessRunnerLaunchError(t *testing.T) {
	r := NewProcessRunner("definitely-not-an-interpreter-xyz", ".sh", time.Second)

	res, err := r.Run(context.Background(), `echo hi`, "")
	assert.Error(t, err)
	assert.Nil(t, res)
}

func TestProcessRunnerReadsStdinInFull(t *testing.T) {
	r := newShRunner(t, 5*time.Second)

	res, err := r.Run(context.Background(), `cat`, "line1\nline2\n")
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2\n", res.Stdout)
}

func TestEvaluateEndToEndSumProblem(t *testing.T) {
	r := newShRunner(t, 5*time.Second)
	e := NewEvaluator(r, 1)

	cases := []model.TestCase{
		{ID: "tc-1", InputData: "2 3", ExpectedOutput: "5", SortOrder: 1},
	}
	eval := e.Evaluate(context.Background(), `read a b; echo $((a + b))`, cases)

	require.Len(t, eval.Results, 1)
	assert.True(t, eval.Results[0].Passed)
	assert.Equal(t, "5", eval.Results[0].Actual)
	assert.Equal(t, "#1 -> 5", eval.Transcript)
	assert.True(t, Verdict(eval.Results))
}
