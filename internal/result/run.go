package result

import (
	"slices"
	"time"

	"github.com/signalnine/solverbench/internal/score"
)

// SubRun is the outcome of one execution of a solver against a problem.
// A sub-run without a score is a failure.
type SubRun struct {
	Score     score.Score
	Failure   string
	TimeSpent time.Duration
}

// Succeeded builds a successful sub-run.
func Succeeded(s score.Score, timeSpent time.Duration) SubRun {
	return SubRun{Score: s, TimeSpent: timeSpent}
}

// Failed builds a failed sub-run.
func Failed(reason string, timeSpent time.Duration) SubRun {
	return SubRun{Failure: reason, TimeSpent: timeSpent}
}

// Failed reports whether the sub-run produced no score.
func (s SubRun) Failed() bool { return s.Score == nil }

// RunRecord is one solver configuration run against one problem instance,
// possibly repeated as several sub-runs. It is immutable once created; the
// only field written afterwards is its rank within the problem.
type RunRecord struct {
	solver       *SolverResult
	problem      *ProblemResult
	problemScale *int64
	subRuns      []SubRun

	score        score.Score
	failureCount int
	timeSpent    time.Duration

	ranking *int
}

// NewRunRecord creates a run and attaches it to both of its parents. The
// representative outcome is derived immediately: any failed sub-run fails the
// whole run, otherwise the median sub-run score is used.
//
// It panics if either parent is nil, the parents belong to different reports,
// or subRuns is empty.
func NewRunRecord(solver *SolverResult, problem *ProblemResult, problemScale *int64, subRuns []SubRun) *RunRecord {
	if solver == nil || problem == nil {
		panic("result: run record needs a solver and a problem")
	}
	if solver.report != problem.report {
		panic("result: solver and problem belong to different reports")
	}
	if len(subRuns) == 0 {
		panic("result: run record needs at least one sub-run")
	}
	run := &RunRecord{
		solver:       solver,
		problem:      problem,
		problemScale: clonePtr(problemScale),
		subRuns:      slices.Clone(subRuns),
	}
	run.deriveOutcome()

	solver.runs = append(solver.runs, run)
	problem.runs = append(problem.runs, run)
	if solver.report != nil {
		solver.report.runs = append(solver.report.runs, run)
	}
	return run
}

func (r *RunRecord) deriveOutcome() {
	var total time.Duration
	scores := make([]score.Score, 0, len(r.subRuns))
	for _, sub := range r.subRuns {
		total += sub.TimeSpent
		if sub.Failed() {
			r.failureCount++
			continue
		}
		scores = append(scores, sub.Score)
	}
	r.timeSpent = total / time.Duration(len(r.subRuns))
	if r.failureCount > 0 {
		return
	}
	slices.SortStableFunc(scores, score.Compare)
	r.score = scores[len(scores)/2]
}

func (r *RunRecord) Solver() *SolverResult   { return r.solver }
func (r *RunRecord) Problem() *ProblemResult { return r.problem }

// SubRuns returns a copy of the sub-run outcomes in execution order.
func (r *RunRecord) SubRuns() []SubRun { return slices.Clone(r.subRuns) }

func (r *RunRecord) SubRunCount() int { return len(r.subRuns) }

// Score is the median sub-run score, or nil when the run failed.
func (r *RunRecord) Score() score.Score { return r.score }

// Failed reports whether any sub-run failed.
func (r *RunRecord) Failed() bool { return r.failureCount > 0 }

// FailureCount is the number of failed sub-runs.
func (r *RunRecord) FailureCount() int { return r.failureCount }

// TimeSpent is the mean sub-run duration.
func (r *RunRecord) TimeSpent() time.Duration { return r.timeSpent }

// ProblemScale returns the scale the solver reported, if known.
func (r *RunRecord) ProblemScale() (int64, bool) { return deref(r.problemScale) }

// Ranking is the run's rank among the successful runs of its problem. It is
// only set after the problem accumulated its results.
func (r *RunRecord) Ranking() (int, bool) { return deref(r.ranking) }

func deref[T any](p *T) (T, bool) {
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}
