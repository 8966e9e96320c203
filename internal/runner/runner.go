// Package runner executes a configured benchmark: it warms the solvers up,
// runs every solver against every problem on a bounded pool and rolls the
// outcomes into a finalized result.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalnine/solverbench/internal/config"
	"github.com/signalnine/solverbench/internal/ranking"
	"github.com/signalnine/solverbench/internal/result"
)

const tracerName = "github.com/signalnine/solverbench/internal/runner"

type Options struct {
	Logger      *slog.Logger
	Environment result.Environment
	// WorkDir holds solver output directories. A temporary directory is used
	// and removed afterwards when empty.
	WorkDir string
	Metrics *Metrics
	Tracer  trace.Tracer
	Now     func() time.Time
}

type outcome struct {
	sub   result.SubRun
	scale *int64
}

// Execute runs cfg against solver and returns the accumulated result. Failed
// solves are recorded as failed sub-runs; only a cancelled context or an
// unusable configuration aborts the benchmark.
func Execute(ctx context.Context, cfg *config.Config, solver Solver, opts Options) (*result.BenchmarkResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	ranker, err := ranking.ByName(cfg.Ranking.Policy())
	if err != nil {
		return nil, err
	}

	workDir := opts.WorkDir
	if workDir == "" {
		tmp, err := os.MkdirTemp("", "solverbench-*")
		if err != nil {
			return nil, fmt.Errorf("creating work dir: %w", err)
		}
		defer os.RemoveAll(tmp)
		workDir = tmp
	}

	ctx, span := tracer.Start(ctx, "solverbench.benchmark", trace.WithAttributes(
		attribute.Int("benchmark.solvers", len(cfg.Solvers)),
		attribute.Int("benchmark.problems", len(cfg.Problems)),
		attribute.Int("benchmark.sub_runs", cfg.SubRunCount),
	))
	defer span.End()

	started := now()
	if warm := cfg.WarmUp(); warm > 0 {
		logger.Info("warming up", "budget", warm)
		warmUp(ctx, cfg, solver, workDir, warm, logger)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("benchmark interrupted: %w", err)
	}

	outcomes := make([][][]outcome, len(cfg.Solvers))
	var jobs []Job
	for i := range cfg.Solvers {
		outcomes[i] = make([][]outcome, len(cfg.Problems))
		for j := range cfg.Problems {
			outcomes[i][j] = make([]outcome, cfg.SubRunCount)
			for k := range cfg.SubRunCount {
				req := newRequest(cfg, i, j, k, false, workDir)
				dst := &outcomes[i][j][k]
				jobs = append(jobs, func(ctx context.Context) error {
					*dst = solve(ctx, tracer, solver, req, opts.Metrics, logger)
					return ctx.Err()
				})
			}
		}
	}
	logger.Info("running benchmark", "jobs", len(jobs), "parallel", cfg.ParallelBenchmarkCount)
	if errs := RunPool(ctx, cfg.ParallelBenchmarkCount, jobs); len(errs) > 0 {
		span.SetStatus(codes.Error, "interrupted")
		return nil, fmt.Errorf("benchmark interrupted: %w", errs[0])
	}

	r := result.NewBenchmarkResult(cfg.Name)
	r.Environment = opts.Environment
	parallel := cfg.ParallelBenchmarkCount
	r.ParallelBenchmarkCount = &parallel
	warm := cfg.WarmUp()
	r.WarmUpTimeSpentLimit = &warm
	r.StartingTimestamp = &started

	problems := make([]*result.ProblemResult, len(cfg.Problems))
	for j, p := range cfg.Problems {
		problems[j] = r.AddProblem(p.Name, p.Dataset, problemScale(p, outcomes, j))
	}
	for i, s := range cfg.Solvers {
		solverResult := r.AddSolver(s.Name, s.Mode())
		for j, p := range problems {
			subRuns := make([]result.SubRun, len(outcomes[i][j]))
			var scale *int64
			for k, o := range outcomes[i][j] {
				subRuns[k] = o.sub
				if o.scale != nil {
					scale = o.scale
				}
			}
			result.NewRunRecord(solverResult, p, scale, subRuns)
		}
	}
	spent := now().Sub(started)
	r.BenchmarkTimeSpent = &spent

	if err := r.AccumulateResults(ranker); err != nil {
		return nil, fmt.Errorf("accumulating results: %w", err)
	}
	logger.Info("benchmark finished", "duration", spent, "failures", r.FailureCount())
	return r, nil
}

// warmUp repeats every request until the budget is spent, discarding outcomes.
func warmUp(ctx context.Context, cfg *config.Config, solver Solver, workDir string, budget time.Duration, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()
	for round := 0; ctx.Err() == nil; round++ {
		var jobs []Job
		for i := range cfg.Solvers {
			for j := range cfg.Problems {
				req := newRequest(cfg, i, j, 0, true, workDir)
				req.SubRun = round
				jobs = append(jobs, func(ctx context.Context) error {
					if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
						return err
					}
					if _, err := solver.Solve(ctx, req); err != nil && ctx.Err() == nil {
						logger.Debug("warm-up solve failed", "solver", req.Solver.Name, "problem", req.Problem.Name, "error", err)
					}
					return nil
				})
			}
		}
		RunPool(ctx, cfg.ParallelBenchmarkCount, jobs)
	}
}

func newRequest(cfg *config.Config, solver, problem, subRun int, warmUp bool, workDir string) Request {
	s, p := cfg.Solvers[solver], cfg.Problems[problem]
	phase := "run"
	if warmUp {
		phase = "warmup"
	}
	return Request{
		Solver:    s,
		Problem:   p,
		SubRun:    subRun,
		WarmUp:    warmUp,
		OutputDir: filepath.Join(workDir, phase, strconv.Itoa(solver), strconv.Itoa(problem), strconv.Itoa(subRun)),
		Timeout:   cfg.Timeout(),
		ScoreKind: cfg.ScoreKind,
	}
}

func solve(ctx context.Context, tracer trace.Tracer, solver Solver, req Request, metrics *Metrics, logger *slog.Logger) outcome {
	ctx, span := tracer.Start(ctx, "solverbench.solve", trace.WithAttributes(
		attribute.String("solver.name", req.Solver.Name),
		attribute.String("problem.name", req.Problem.Name),
		attribute.Int("sub_run", req.SubRun),
	))
	defer span.End()

	start := time.Now()
	var out Outcome
	err := os.MkdirAll(req.OutputDir, 0o755)
	if err == nil {
		out, err = solver.Solve(ctx, req)
	}
	elapsed := time.Since(start)
	if err == nil && out.Score == nil {
		err = ErrNoScore
	}
	metrics.observe(req.Solver.Name, req.Problem.Name, err != nil, elapsed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "solve failed")
		logger.Warn("solve failed", "solver", req.Solver.Name, "problem", req.Problem.Name, "sub_run", req.SubRun, "error", err)
		return outcome{sub: result.Failed(err.Error(), elapsed)}
	}
	logger.Debug("solved", "solver", req.Solver.Name, "problem", req.Problem.Name, "sub_run", req.SubRun, "score", out.Score, "elapsed", elapsed)
	return outcome{sub: result.Succeeded(out.Score, elapsed), scale: out.ProblemScale}
}

// problemScale prefers the configured scale, then the first one a solver
// reported for the problem.
func problemScale(p config.Problem, outcomes [][][]outcome, problem int) *int64 {
	if p.ProblemScale != nil {
		return p.ProblemScale
	}
	for i := range outcomes {
		for _, o := range outcomes[i][problem] {
			if o.scale != nil {
				return o.scale
			}
		}
	}
	return nil
}
