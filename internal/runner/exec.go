package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"
)

// ExecSolver runs the solver's command as a local process.
type ExecSolver struct{}

func (ExecSolver) Solve(ctx context.Context, req Request) (Outcome, error) {
	if len(req.Solver.Command) == 0 {
		return Outcome{}, errors.New("exec solver has no command")
	}
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	scorePath := filepath.Join(req.OutputDir, ScoreFileName)
	cmd := exec.CommandContext(ctx, req.Solver.Command[0], req.Solver.Command[1:]...)
	cmd.Env = append(os.Environ(),
		EnvScoreFile+"="+scorePath,
		EnvDataset+"="+absOrEmpty(req.Problem.Dataset),
		EnvProblem+"="+req.Problem.Name,
		EnvOutputDir+"="+req.OutputDir,
		EnvWarmUp+"="+strconv.FormatBool(req.WarmUp),
	)
	for k, v := range req.Solver.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	cmd.WaitDelay = time.Second

	if err := cmd.Run(); err != nil {
		timedOut := errors.Is(ctx.Err(), context.DeadlineExceeded)
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return Outcome{}, fmt.Errorf("%s (exit %d): %s: %w", ExitReasonFromCode(code, timedOut), code, tail(out.String(), 20), err)
	}
	return ReadScoreFile(scorePath, req.ScoreKind)
}

func absOrEmpty(path string) string {
	if path == "" {
		return ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
