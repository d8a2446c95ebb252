package judge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// RunResult is the outcome of one trial. ExitCode is nil when the process
// never produced an exit status (forced kill on timeout).
type RunResult struct {
	Stdout   string
	Stderr   string
	ExitCode *int
	TimedOut bool
}

// Runner executes one code-against-one-input trial. A non-nil error means
// the program could not be launched at all; a nonzero exit status is a
// normal trial outcome, not an error.
type Runner interface {
	Run(ctx context.Context, code, stdin string) (*RunResult, error)
}

// ProcessRunner materializes the code as a temp file and runs it with a
// single trusted interpreter in a fresh process. Each call uses its own
// temp file, so concurrent trials never collide.
type ProcessRunner struct {
	Interpreter string
	FileExt     string
	TimeLimit   time.Duration
}

func NewProcessRunner(interpreter, fileExt string, timeLimit time.Duration) *ProcessRunner {
	return &ProcessRunner{Interpreter: interpreter, FileExt: fileExt, TimeLimit: timeLimit}
}

func (r *ProcessRunner) Run(ctx context.Context, code, stdin string) (*RunResult, error) {
	tmp, err := os.CreateTemp("", "trial-*"+r.FileExt)
	if err != nil {
		return nil, fmt.Errorf("create code file: %w", err)
	}
	// The file lives for this trial only, on every exit path.
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(code); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write code file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close code file: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, r.TimeLimit)
	defer cancel()

	cmd := exec.CommandContext(runCtx, r.Interpreter, tmp.Name())
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Ensure Wait returns even if the process leaves pipe readers behind
	// after the kill.
	cmd.WaitDelay = time.Second

	runErr := cmd.Run()

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		// Forcibly terminated; partial stdout is not trusted.
		return &RunResult{TimedOut: true}, nil
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode := exitErr.ExitCode()
			return &RunResult{
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
				ExitCode: &exitCode,
			}, nil
		}
		// Interpreter missing, fork failure etc. Distinct from a user-code
		// runtime failure.
		return nil, fmt.Errorf("launch %s: %w", r.Interpreter, runErr)
	}

	exitCode := 0
	return &RunResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: &exitCode,
	}, nil
}
