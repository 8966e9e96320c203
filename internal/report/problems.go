package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/signalnine/solverbench/internal/result"
)

// ProblemFileName is the per-problem report written into each problem
// directory of a report.
const ProblemFileName = "problem-result.json"

type RunSummary struct {
	Solver        string `json:"solver"`
	Rank          *int   `json:"rank,omitempty"`
	Score         string `json:"score,omitempty"`
	SubRuns       int    `json:"sub_runs"`
	Failures      int    `json:"failures"`
	AverageTimeMs int64  `json:"average_time_ms"`
}

type ProblemReport struct {
	ProblemSummary
	Dataset string       `json:"dataset,omitempty"`
	Runs    []RunSummary `json:"runs"`
}

// SummarizeProblem lists every run on p in solver order, next to the
// problem's winner and worst run.
func SummarizeProblem(p *result.ProblemResult) ProblemReport {
	pr := ProblemReport{ProblemSummary: summarizeProblem(p), Dataset: p.Dataset(), Runs: []RunSummary{}}
	for _, run := range p.Runs() {
		rs := RunSummary{
			Solver:        run.Solver().Name(),
			Score:         scoreString(run.Score()),
			SubRuns:       run.SubRunCount(),
			Failures:      run.FailureCount(),
			AverageTimeMs: run.TimeSpent().Milliseconds(),
		}
		if rank, ok := run.Ranking(); ok {
			rs.Rank = &rank
		}
		pr.Runs = append(pr.Runs, rs)
	}
	return pr
}

// WriteProblemReports writes ProblemFileName into the directory of every
// problem of r under reportDir.
func WriteProblemReports(reportDir string, r *result.BenchmarkResult) error {
	for _, p := range r.Problems() {
		dir := result.ProblemDir(reportDir, p)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating problem dir: %w", err)
		}
		data, err := json.MarshalIndent(SummarizeProblem(p), "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling problem %s: %w", p.Name(), err)
		}
		if err := os.WriteFile(filepath.Join(dir, ProblemFileName), data, 0o644); err != nil {
			return fmt.Errorf("writing problem %s: %w", p.Name(), err)
		}
	}
	return nil
}
