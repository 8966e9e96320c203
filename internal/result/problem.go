package result

import (
	"slices"

	"github.com/signalnine/solverbench/internal/score"
)

// ProblemResult aggregates the runs of every solver against one problem
// instance.
type ProblemResult struct {
	report       *BenchmarkResult
	name         string
	dataset      string
	problemScale *int64
	runs         []*RunRecord

	accumulated  bool
	failureCount int
	winningRun   *RunRecord
	worstRun     *RunRecord
}

func (p *ProblemResult) Report() *BenchmarkResult { return p.report }
func (p *ProblemResult) Name() string              { return p.name }
func (p *ProblemResult) Dataset() string           { return p.dataset }

// ProblemScale returns the externally supplied scale, if known.
func (p *ProblemResult) ProblemScale() (int64, bool) { return deref(p.problemScale) }

// Runs returns the problem's runs in creation order.
func (p *ProblemResult) Runs() []*RunRecord { return slices.Clone(p.runs) }

func (p *ProblemResult) FailureCount() int   { return p.failureCount }
func (p *ProblemResult) HasAnyFailure() bool { return p.failureCount > 0 }

// WinningRun is the best successful run, nil before accumulation or when no
// run succeeded.
func (p *ProblemResult) WinningRun() *RunRecord { return p.winningRun }

// WorstRun is the worst successful run.
func (p *ProblemResult) WorstRun() *RunRecord { return p.worstRun }

// MaximumSubSingleCount is the largest number of sub-runs of any run.
func (p *ProblemResult) MaximumSubSingleCount() int {
	maximum := 0
	for _, run := range p.runs {
		maximum = max(maximum, run.SubRunCount())
	}
	return maximum
}

// TotalSubSingleCount is the number of sub-runs across all runs.
func (p *ProblemResult) TotalSubSingleCount() int {
	total := 0
	for _, run := range p.runs {
		total += run.SubRunCount()
	}
	return total
}

// RunOf returns the run of the given solver on this problem, or nil.
func (p *ProblemResult) RunOf(solver *SolverResult) *RunRecord {
	for _, run := range p.runs {
		if run.solver == solver {
			return run
		}
	}
	return nil
}

func (p *ProblemResult) accumulate() {
	p.failureCount = 0
	successful := make([]*RunRecord, 0, len(p.runs))
	for _, run := range p.runs {
		p.failureCount += run.FailureCount()
		run.ranking = nil
		if !run.Failed() {
			successful = append(successful, run)
		}
	}

	// Best first; runs with equal scores share a rank and the next distinct
	// score skips past all of them.
	slices.SortStableFunc(successful, func(a, b *RunRecord) int {
		return score.Compare(b.score, a.score)
	})
	rank := 0
	for i, run := range successful {
		if i > 0 && score.Compare(successful[i-1].score, run.score) != 0 {
			rank = i
		}
		r := rank
		run.ranking = &r
	}

	p.winningRun, p.worstRun = nil, nil
	if len(successful) > 0 {
		p.winningRun = successful[0]
		p.worstRun = successful[len(successful)-1]
	}
	p.accumulated = true
}
