// Package result holds the benchmark result model: runs, their roll-up into
// per-problem and per-solver statistics, solver ranking, merging of stored
// reports and allocation of report directories.
//
// A BenchmarkResult is raw until AccumulateResults succeeds and finalized
// afterwards. Derived accessors return zero values on a raw result. None of
// the types here are safe for concurrent mutation.
package result

import (
	"slices"
	"time"

	"github.com/signalnine/solverbench/internal/score"
)

// Environment describes the host a benchmark ran on. Every field is optional;
// a merged report clears the fields its sources disagree on.
type Environment struct {
	AvailableProcessors *int    `json:"available_processors,omitempty"`
	MaxMemory           *int64  `json:"max_memory,omitempty"`
	Version             *string `json:"version,omitempty"`
	GoVersion           *string `json:"go_version,omitempty"`
	OperatingSystem     *string `json:"operating_system,omitempty"`
	LogLevel            *string `json:"log_level,omitempty"`
}

// BenchmarkResult is the top-level result of one benchmark session, or of
// several merged sessions when IsAggregation is true.
type BenchmarkResult struct {
	Name            string
	Environment     Environment
	ReportDirectory string

	ParallelBenchmarkCount *int
	WarmUpTimeSpentLimit   *time.Duration
	StartingTimestamp      *time.Time
	BenchmarkTimeSpent     *time.Duration

	aggregation     bool
	environmentMode *EnvironmentMode
	solvers         []*SolverResult
	problems        []*ProblemResult
	runs            []*RunRecord

	accumulated         bool
	failureCount        int
	averageProblemScale *int64
	averageScore        score.Score
	favorite            *SolverResult
}

// NewBenchmarkResult creates an empty raw result.
func NewBenchmarkResult(name string) *BenchmarkResult {
	return &BenchmarkResult{Name: name}
}

// AddSolver creates a solver owned by the report. mode may be nil.
func (r *BenchmarkResult) AddSolver(name string, mode *EnvironmentMode) *SolverResult {
	s := &SolverResult{report: r, name: name, environmentMode: clonePtr(mode)}
	r.solvers = append(r.solvers, s)
	return s
}

// AddProblem creates a problem owned by the report. problemScale may be nil
// when the scale is unknown.
func (r *BenchmarkResult) AddProblem(name, dataset string, problemScale *int64) *ProblemResult {
	p := &ProblemResult{report: r, name: name, dataset: dataset, problemScale: clonePtr(problemScale)}
	r.problems = append(r.problems, p)
	return p
}

// IsAggregation reports whether the result was produced by Merge.
func (r *BenchmarkResult) IsAggregation() bool { return r.aggregation }

// EnvironmentMode is the mode shared by every solver, if they agree.
func (r *BenchmarkResult) EnvironmentMode() (EnvironmentMode, bool) { return deref(r.environmentMode) }

func (r *BenchmarkResult) Solvers() []*SolverResult   { return slices.Clone(r.solvers) }
func (r *BenchmarkResult) Problems() []*ProblemResult { return slices.Clone(r.problems) }

// Runs returns every run of the report in creation order.
func (r *BenchmarkResult) Runs() []*RunRecord { return slices.Clone(r.runs) }

// IsAccumulated reports whether the result has been finalized.
func (r *BenchmarkResult) IsAccumulated() bool { return r.accumulated }

func (r *BenchmarkResult) FailureCount() int   { return r.failureCount }
func (r *BenchmarkResult) HasAnyFailure() bool { return r.failureCount > 0 }

// AverageProblemScale is the truncated mean of the known problem scales.
func (r *BenchmarkResult) AverageProblemScale() (int64, bool) { return deref(r.averageProblemScale) }

// AverageScore is the mean of the solvers' average scores, nil when no solver
// has one or the solvers' scores are not arithmetically compatible.
func (r *BenchmarkResult) AverageScore() score.Score { return r.averageScore }

// Favorite is the solver ranked first, nil when no solver is rankable.
func (r *BenchmarkResult) Favorite() *SolverResult { return r.favorite }

// HasMultipleParallelBenchmarks reports whether runs may have overlapped.
func (r *BenchmarkResult) HasMultipleParallelBenchmarks() bool {
	return r.ParallelBenchmarkCount == nil || *r.ParallelBenchmarkCount > 1
}

// MaximumSubSingleCount is the largest sub-run count of any run.
func (r *BenchmarkResult) MaximumSubSingleCount() int {
	maximum := 0
	for _, p := range r.problems {
		maximum = max(maximum, p.MaximumSubSingleCount())
	}
	return maximum
}

// TotalSubSingleCount is the number of sub-runs across the whole report.
func (r *BenchmarkResult) TotalSubSingleCount() int {
	total := 0
	for _, p := range r.problems {
		total += p.TotalSubSingleCount()
	}
	return total
}

// AccumulateResults finalizes the result: every problem and solver computes
// its own statistics, the report totals are derived from them and the solvers
// are ranked with ranker. It runs once per result.
func (r *BenchmarkResult) AccumulateResults(ranker Ranker) error {
	if ranker == nil {
		return ErrNoRankingStrategy
	}
	if r.accumulated {
		return ErrAlreadyAccumulated
	}
	r.accumulateStatistics()
	r.determineRanking(ranker)
	r.accumulated = true
	return nil
}

func (r *BenchmarkResult) accumulateStatistics() {
	for _, p := range r.problems {
		p.accumulate()
	}
	for _, s := range r.solvers {
		s.accumulate()
	}
	r.determineTotalsAndAverages()
}

func (r *BenchmarkResult) determineTotalsAndAverages() {
	r.failureCount = 0
	var totalProblemScale int64
	problemScaleCount := 0
	for _, p := range r.problems {
		if scale, ok := p.ProblemScale(); ok && scale >= 0 {
			totalProblemScale += scale
			problemScaleCount++
		}
		r.failureCount += p.FailureCount()
	}
	r.averageProblemScale = nil
	if problemScaleCount > 0 {
		avg := totalProblemScale / int64(problemScaleCount)
		r.averageProblemScale = &avg
	}

	var totalScore score.Score
	solverCount := 0
	seeded, compatible := false, true
	for _, s := range r.solvers {
		mode := s.environmentMode
		if !seeded && mode != nil {
			r.environmentMode = clonePtr(mode)
			seeded = true
		} else if seeded && !equalPtr(mode, r.environmentMode) {
			r.environmentMode = nil
		}

		avg := s.AverageScore()
		if avg == nil || !compatible {
			continue
		}
		if totalScore != nil && !totalScore.IsCompatibleArithmeticArgument(avg) {
			// Mixing use cases with different score definitions.
			totalScore, compatible = nil, false
			continue
		}
		totalScore = addScore(totalScore, avg)
		solverCount++
	}
	r.averageScore = nil
	if totalScore != nil {
		r.averageScore = totalScore.Divide(solverCount)
	}
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
