package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/signalnine/solverbench/internal/docker"
)

const containerDatasetDir = "/dataset"

// DockerSolver runs the solver's image as a one-shot container. The dataset
// is mounted read-only under /dataset and the score is read from /output.
type DockerSolver struct {
	CPULimit    float64
	MemoryLimit int64
}

func (d DockerSolver) Solve(ctx context.Context, req Request) (Outcome, error) {
	env := map[string]string{
		EnvScoreFile: "/output/" + ScoreFileName,
		EnvProblem:   req.Problem.Name,
		EnvOutputDir: "/output",
		EnvWarmUp:    strconv.FormatBool(req.WarmUp),
	}
	var mounts []docker.Mount
	if req.Problem.Dataset != "" {
		abs, err := filepath.Abs(req.Problem.Dataset)
		if err != nil {
			return Outcome{}, fmt.Errorf("resolving dataset path: %w", err)
		}
		target := containerDatasetDir + "/" + filepath.Base(abs)
		mounts = append(mounts, docker.Mount{Source: abs, Target: target, ReadOnly: true})
		env[EnvDataset] = target
	}
	for k, v := range req.Solver.Env {
		env[k] = v
	}

	res, err := docker.RunContainer(ctx, &docker.RunOpts{
		Image:     req.Solver.Image,
		Command:   req.Solver.Command,
		OutputDir: req.OutputDir,
		Env:       env,
		Labels: map[string]string{
			"solverbench.solver":  req.Solver.Name,
			"solverbench.problem": req.Problem.Name,
			"solverbench.sub_run": strconv.Itoa(req.SubRun),
		},
		Timeout:     req.Timeout,
		Mounts:      mounts,
		CPULimit:    d.CPULimit,
		MemoryLimit: d.MemoryLimit,
		UserID:      fmt.Sprintf("%d:%d", os.Getuid(), os.Getgid()),
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("running container: %w", err)
	}
	if res.ExitCode != 0 {
		return Outcome{}, fmt.Errorf("%s (exit %d): %s", ExitReasonFromCode(res.ExitCode, res.TimedOut), res.ExitCode, tail(res.Logs, 20))
	}
	return ReadScoreFile(filepath.Join(req.OutputDir, ScoreFileName), req.ScoreKind)
}

// tail keeps the last n lines of s.
func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
