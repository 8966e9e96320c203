package result

import (
	"slices"
	"time"

	"github.com/signalnine/solverbench/internal/score"
)

// EnvironmentMode is the assertion/reproducibility mode a solver ran under.
type EnvironmentMode string

const (
	EnvironmentModeReproducible    EnvironmentMode = "reproducible"
	EnvironmentModeNonReproducible EnvironmentMode = "non_reproducible"
	EnvironmentModeFastAssert      EnvironmentMode = "fast_assert"
	EnvironmentModeFullAssert      EnvironmentMode = "full_assert"
)

// SolverResult aggregates the runs of one solver configuration across every
// problem it was run against.
type SolverResult struct {
	report          *BenchmarkResult
	name            string
	environmentMode *EnvironmentMode
	runs            []*RunRecord

	accumulated      bool
	failureCount     int
	successCount     int
	totalScore       score.Score
	averageScore     score.Score
	worstScore       score.Score
	averageTimeSpent time.Duration
	ranking          *int
}

func (s *SolverResult) Report() *BenchmarkResult { return s.report }
func (s *SolverResult) Name() string              { return s.name }

// EnvironmentMode returns the mode the solver ran under, if known.
func (s *SolverResult) EnvironmentMode() (EnvironmentMode, bool) { return deref(s.environmentMode) }

// Runs returns the solver's runs in creation order.
func (s *SolverResult) Runs() []*RunRecord { return slices.Clone(s.runs) }

func (s *SolverResult) FailureCount() int   { return s.failureCount }
func (s *SolverResult) HasAnyFailure() bool { return s.failureCount > 0 }

// SuccessCount is the number of runs without a failed sub-run.
func (s *SolverResult) SuccessCount() int { return s.successCount }

// TotalScore is the sum of the successful run scores, nil when there are
// none or they are not arithmetically compatible.
func (s *SolverResult) TotalScore() score.Score { return s.totalScore }

// AverageScore is TotalScore divided by SuccessCount.
func (s *SolverResult) AverageScore() score.Score { return s.averageScore }

// WorstScore is the lowest successful run score.
func (s *SolverResult) WorstScore() score.Score { return s.worstScore }

// AverageTimeSpent is the mean time spent over successful runs.
func (s *SolverResult) AverageTimeSpent() time.Duration { return s.averageTimeSpent }

// Ranking returns the solver's rank. Solvers with failures are never ranked.
func (s *SolverResult) Ranking() (int, bool) { return deref(s.ranking) }

// IsFavorite reports whether the solver is its report's favorite.
func (s *SolverResult) IsFavorite() bool {
	return s.report != nil && s.report.favorite == s
}

// RunOn returns the solver's run on the given problem, or nil.
func (s *SolverResult) RunOn(problem *ProblemResult) *RunRecord {
	for _, run := range s.runs {
		if run.problem == problem {
			return run
		}
	}
	return nil
}

func (s *SolverResult) accumulate() {
	s.failureCount, s.successCount = 0, 0
	s.totalScore, s.averageScore, s.worstScore = nil, nil, nil
	s.ranking = nil

	var timeSpent time.Duration
	compatible := true
	for _, run := range s.runs {
		s.failureCount += run.FailureCount()
		if run.Failed() {
			continue
		}
		s.successCount++
		timeSpent += run.TimeSpent()
		if s.worstScore == nil || score.Compare(run.score, s.worstScore) < 0 {
			s.worstScore = run.score
		}
		if !compatible {
			continue
		}
		if s.totalScore != nil && !s.totalScore.IsCompatibleArithmeticArgument(run.score) {
			// Runs against problems of different score definitions.
			compatible = false
			s.totalScore = nil
			continue
		}
		s.totalScore = addScore(s.totalScore, run.score)
	}
	if s.successCount > 0 {
		s.averageTimeSpent = timeSpent / time.Duration(s.successCount)
		if s.totalScore != nil {
			s.averageScore = s.totalScore.Divide(s.successCount)
		}
	} else {
		s.averageTimeSpent = 0
	}
	s.accumulated = true
}

func addScore(total, s score.Score) score.Score {
	if total == nil {
		return s
	}
	return total.Add(s)
}
