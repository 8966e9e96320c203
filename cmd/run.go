package cmd

import (
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/signalnine/solverbench/internal/config"
	"github.com/signalnine/solverbench/internal/docker"
	"github.com/signalnine/solverbench/internal/hostinfo"
	"github.com/signalnine/solverbench/internal/logging"
	"github.com/signalnine/solverbench/internal/report"
	"github.com/signalnine/solverbench/internal/result"
	"github.com/signalnine/solverbench/internal/runner"
)

type runFlags struct {
	solver            string
	problem           string
	subRuns           int
	parallel          int
	format            string
	cleanupAggressive bool
}

func newRunCmd(a *app) *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a benchmark run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBenchmark(cmd, a, &f)
		},
	}
	cmd.Flags().StringVar(&f.solver, "solver", "", "filter to a single solver (trailing * matches a prefix)")
	cmd.Flags().StringVar(&f.problem, "problem", "", "filter to a single problem (trailing * matches a prefix)")
	cmd.Flags().IntVar(&f.subRuns, "sub-runs", 0, "override sub-run count")
	cmd.Flags().IntVar(&f.parallel, "parallel", 0, "override parallel benchmark count")
	cmd.Flags().StringVar(&f.format, "format", report.FormatTable, "output format (table, markdown, json)")
	cmd.Flags().BoolVar(&f.cleanupAggressive, "cleanup-aggressive", false, "remove all solverbench Docker containers after the run")
	return cmd
}

func runBenchmark(cmd *cobra.Command, a *app, f *runFlags) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if f.subRuns > 0 {
		cfg.SubRunCount = f.subRuns
	}
	if f.parallel > 0 {
		cfg.ParallelBenchmarkCount = f.parallel
	}
	cfg.Solvers = filterSolvers(cfg.Solvers, f.solver)
	cfg.Problems = filterProblems(cfg.Problems, f.problem)
	if len(cfg.Solvers) == 0 || len(cfg.Problems) == 0 {
		return fmt.Errorf("no solver or problem matches the filters")
	}

	ctx := cmd.Context()
	metrics := runner.NewMetrics()
	r, err := runner.Execute(ctx, cfg, runner.NewDriverSolver(), runner.Options{
		Logger:      logging.New("runner"),
		Environment: hostinfo.Collect(ctx, a.logLevel()),
		Metrics:     metrics,
	})
	if f.cleanupAggressive {
		cleanupDocker()
	}
	if err != nil {
		return err
	}

	dir, err := r.InitReportDirectory(cfg.Results.Dir, *r.StartingTimestamp)
	if err != nil {
		return err
	}
	if err := result.WriteResult(dir, r); err != nil {
		return err
	}
	if err := report.WriteProblemReports(dir, r); err != nil {
		return err
	}
	if err := metrics.WriteTextfile(filepath.Join(dir, runner.MetricsFileName)); err != nil {
		slog.Warn("writing metrics", "error", err)
	}
	if err := result.UpdateLatestLink(cfg.Results.Dir, dir); err != nil {
		slog.Warn("updating latest link", "error", err)
	}
	slog.Info("benchmark stored", "dir", dir)
	return report.Generate(r, f.format, cmd.OutOrStdout())
}

func cleanupDocker() {
	// Best-effort removal of exited solver containers.
	slog.Info("cleaning up Docker artifacts")
	run := func(args ...string) {
		if out, err := newExecCmd(args...).CombinedOutput(); err != nil {
			slog.Warn("docker cleanup", "error", err, "output", string(out))
		}
	}
	run("docker", "container", "prune", "-f", "--filter", "label="+docker.LabelManaged+"=true")
}

func filterSolvers(solvers []config.Solver, pattern string) []config.Solver {
	if pattern == "" {
		return solvers
	}
	var filtered []config.Solver
	for _, s := range solvers {
		if matchName(s.Name, pattern) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

func filterProblems(problems []config.Problem, pattern string) []config.Problem {
	if pattern == "" {
		return problems
	}
	var filtered []config.Problem
	for _, p := range problems {
		if matchName(p.Name, pattern) || (p.Dataset != "" && matchName(filepath.Base(p.Dataset), pattern)) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func matchName(name, pattern string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(name, prefix)
	}
	return name == pattern
}

func newExecCmd(args ...string) *exec.Cmd {
	return exec.Command(args[0], args[1:]...)
}
