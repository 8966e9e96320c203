package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/signalnine/solverbench/internal/config"
	"github.com/signalnine/solverbench/internal/score"
)

// ScoreFileName is the file a solver writes its outcome to, inside the request's
// output directory.
const ScoreFileName = "score"

// Environment variables handed to every solver process.
const (
	EnvScoreFile = "SOLVERBENCH_SCORE_FILE"
	EnvDataset   = "SOLVERBENCH_DATASET"
	EnvProblem   = "SOLVERBENCH_PROBLEM"
	EnvOutputDir = "SOLVERBENCH_OUTPUT_DIR"
	EnvWarmUp    = "SOLVERBENCH_WARM_UP"
)

// ErrNoScore is returned when a solver exits cleanly without writing a score.
var ErrNoScore = errors.New("solver produced no score")

// Request is one execution of a solver against a problem.
type Request struct {
	Solver    config.Solver
	Problem   config.Problem
	SubRun    int
	WarmUp    bool
	OutputDir string
	Timeout   time.Duration
	ScoreKind score.Kind
}

// Outcome is what a successful solve reports back.
type Outcome struct {
	Score        score.Score
	ProblemScale *int64
}

// Solver executes requests. A returned error marks the sub-run as failed;
// it does not abort the benchmark.
type Solver interface {
	Solve(ctx context.Context, req Request) (Outcome, error)
}

// SolverFunc adapts a function to Solver.
type SolverFunc func(ctx context.Context, req Request) (Outcome, error)

func (f SolverFunc) Solve(ctx context.Context, req Request) (Outcome, error) { return f(ctx, req) }

// DriverSolver dispatches each request to the driver its solver is configured with.
type DriverSolver struct {
	Exec   Solver
	Docker Solver
}

func NewDriverSolver() *DriverSolver {
	return &DriverSolver{Exec: ExecSolver{}, Docker: DockerSolver{}}
}

func (d *DriverSolver) Solve(ctx context.Context, req Request) (Outcome, error) {
	switch req.Solver.Driver {
	case config.DriverDocker:
		return d.Docker.Solve(ctx, req)
	case config.DriverExec, "":
		return d.Exec.Solve(ctx, req)
	default:
		return Outcome{}, fmt.Errorf("unknown solver driver %q", req.Solver.Driver)
	}
}

func ExitReasonFromCode(code int, timedOut bool) string {
	if timedOut {
		return "timeout"
	}
	switch code {
	case 0:
		return "completed"
	case 2:
		return "gave_up"
	default:
		return "crashed"
	}
}

type scoreFile struct {
	Score        string `yaml:"score"`
	ProblemScale *int64 `yaml:"problem_scale"`
}

// ReadScoreFile parses a solver's score file. The file is either a bare score
// such as "0hard/-12soft" or a YAML document with score and problem_scale keys.
func ReadScoreFile(path string, kind score.Kind) (Outcome, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Outcome{}, ErrNoScore
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("reading score file: %w", err)
	}

	var doc scoreFile
	if err := yaml.Unmarshal(data, &doc); err != nil || doc.Score == "" {
		doc = scoreFile{Score: strings.TrimSpace(string(data))}
	}
	if doc.Score == "" {
		return Outcome{}, ErrNoScore
	}
	s, err := score.Parse(kind, doc.Score)
	if err != nil {
		return Outcome{}, fmt.Errorf("score file %s: %w", filepath.Base(path), err)
	}
	return Outcome{Score: s, ProblemScale: doc.ProblemScale}, nil
}
