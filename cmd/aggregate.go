package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/signalnine/solverbench/internal/config"
	"github.com/signalnine/solverbench/internal/ranking"
	"github.com/signalnine/solverbench/internal/report"
	"github.com/signalnine/solverbench/internal/result"
)

type aggregateFlags struct {
	all        bool
	solver     string
	problem    string
	ranking    string
	resultsDir string
	format     string
}

func newAggregateCmd(a *app) *cobra.Command {
	var f aggregateFlags
	cmd := &cobra.Command{
		Use:   "aggregate [result-dir...]",
		Short: "Merge stored results into a new aggregation report",
		Long: "Merge the runs of one or more stored results into a single report, ranked anew. " +
			"Solvers and problems keep their identity per source result; duplicate names are " +
			"qualified with the source result's name.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return aggregate(cmd, a, &f, args)
		},
	}
	cmd.Flags().BoolVar(&f.all, "all", false, "merge every result under the results directory")
	cmd.Flags().StringVar(&f.solver, "solver", "", "only merge runs of matching solvers (trailing * matches a prefix)")
	cmd.Flags().StringVar(&f.problem, "problem", "", "only merge runs on matching problems (trailing * matches a prefix)")
	cmd.Flags().StringVar(&f.ranking, "ranking", "", "ranking policy (default from config, else total_score)")
	cmd.Flags().StringVar(&f.resultsDir, "results-dir", "", "where to store the aggregation (default from config, else results)")
	cmd.Flags().StringVar(&f.format, "format", report.FormatTable, "output format (table, markdown, json)")
	return cmd
}

func aggregate(cmd *cobra.Command, a *app, f *aggregateFlags, args []string) error {
	cfg, err := a.optionalConfig()
	if err != nil {
		return err
	}
	resultsDir, policy := defaults(cfg, f.resultsDir, f.ranking)
	ranker, err := ranking.ByName(policy)
	if err != nil {
		return err
	}

	var sources []source
	for _, path := range args {
		sources = append(sources, source{path: path})
	}
	if f.all {
		found, err := result.FindResults(resultsDir)
		if err != nil {
			return fmt.Errorf("finding results: %w", err)
		}
		for _, path := range found {
			sources = append(sources, source{path: path, discovered: true})
		}
	}
	if len(sources) == 0 {
		return errors.New("nothing to aggregate: pass result directories or --all")
	}

	loaded, err := loadSources(sources)
	if err != nil {
		return err
	}
	var runs []*result.RunRecord
	for _, r := range loaded {
		selected := selectRuns(r.Runs(), f.solver, f.problem)
		slog.Debug("loaded result", "name", r.Name, "dir", r.ReportDirectory, "runs", len(selected))
		runs = append(runs, selected...)
	}

	merged, err := result.Merge(runs, ranker)
	if err != nil {
		return err
	}
	dir, err := merged.InitReportDirectory(resultsDir, time.Now())
	if err != nil {
		return err
	}
	if err := result.WriteResult(dir, merged); err != nil {
		return err
	}
	if err := report.WriteProblemReports(dir, merged); err != nil {
		return err
	}
	slog.Info("aggregation stored", "dir", dir, "sources", len(loaded), "runs", len(runs))
	return report.Generate(merged, f.format, cmd.OutOrStdout())
}

// source is a result to aggregate. Discovered sources were found by walking
// the results directory rather than named on the command line.
type source struct {
	path       string
	discovered bool
}

// loadSources reads every source once. Discovered aggregations are skipped so
// their runs are not merged a second time, and a discovered result that cannot
// be read is replaced by an empty placeholder. Named sources must be readable.
func loadSources(sources []source) ([]*result.BenchmarkResult, error) {
	var loaded []*result.BenchmarkResult
	seen := make(map[string]bool, len(sources))
	for _, src := range sources {
		file, err := resultFile(src.path)
		if err != nil {
			return nil, err
		}
		if seen[file] {
			continue
		}
		seen[file] = true

		r, err := readResultFile(file)
		switch {
		case err != nil && !src.discovered:
			return nil, err
		case err != nil:
			slog.Warn("skipping unreadable result", "path", file, "error", err)
			r = result.UnmarshallingFailedResult(filepath.Dir(file))
		case src.discovered && r.IsAggregation():
			slog.Debug("skipping aggregation", "dir", r.ReportDirectory)
			continue
		}
		loaded = append(loaded, r)
	}
	return loaded, nil
}

func selectRuns(runs []*result.RunRecord, solver, problem string) []*result.RunRecord {
	var selected []*result.RunRecord
	for _, run := range runs {
		if solver != "" && !matchName(run.Solver().Name(), solver) {
			continue
		}
		if problem != "" && !matchName(run.Problem().Name(), problem) {
			continue
		}
		selected = append(selected, run)
	}
	return selected
}

// defaults fills the results dir and ranking policy from flags, then the
// config, then built-in defaults.
func defaults(cfg *config.Config, resultsDir, policy string) (string, string) {
	if resultsDir == "" && cfg != nil {
		resultsDir = cfg.Results.Dir
	}
	if resultsDir == "" {
		resultsDir = "results"
	}
	if policy == "" && cfg != nil {
		policy = cfg.Ranking.Policy()
	}
	if policy == "" {
		policy = ranking.PolicyTotalScore
	}
	return resultsDir, policy
}
