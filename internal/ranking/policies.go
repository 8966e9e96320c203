package ranking

import (
	"cmp"
	"slices"

	"github.com/signalnine/solverbench/internal/result"
	"github.com/signalnine/solverbench/internal/score"
)

// TotalScore ranks the solver with fewer failures first, then the higher
// total score, then falls back to WorstScore.
func TotalScore(a, b *result.SolverResult) int {
	if c := cmp.Compare(a.FailureCount(), b.FailureCount()); c != 0 {
		return c
	}
	if c := score.Compare(b.TotalScore(), a.TotalScore()); c != 0 {
		return c
	}
	return WorstScore(a, b)
}

// WorstScore compares the solvers' run scores from worst to best; the first
// difference decides, so the solver with the better worst case ranks ahead.
func WorstScore(a, b *result.SolverResult) int {
	if c := cmp.Compare(a.FailureCount(), b.FailureCount()); c != 0 {
		return c
	}
	as, bs := ascendingScores(a), ascendingScores(b)
	for i := range min(len(as), len(bs)) {
		if c := score.Compare(bs[i], as[i]); c != 0 {
			return c
		}
	}
	return 0
}

func ascendingScores(s *result.SolverResult) []score.Score {
	var scores []score.Score
	for _, run := range s.Runs() {
		if !run.Failed() {
			scores = append(scores, run.Score())
		}
	}
	slices.SortStableFunc(scores, score.Compare)
	return scores
}

// TotalRankWeight counts, over every problem, how the solver's run fared
// against the other rankable solvers' runs on the same problem.
type TotalRankWeight struct {
	solver      *result.SolverResult
	BetterCount int
	EqualCount  int
	LowerCount  int
}

// Compare prefers more wins, then more draws, then fewer losses, and finally
// the higher TotalScore.
func (w TotalRankWeight) Compare(other Weight) int {
	o := other.(TotalRankWeight)
	if c := cmp.Compare(w.BetterCount, o.BetterCount); c != 0 {
		return c
	}
	if c := cmp.Compare(w.EqualCount, o.EqualCount); c != 0 {
		return c
	}
	if c := cmp.Compare(o.LowerCount, w.LowerCount); c != 0 {
		return c
	}
	return -TotalScore(w.solver, o.solver)
}

// TotalRank is a WeightFactory producing TotalRankWeight.
func TotalRank(rankable []*result.SolverResult, solver *result.SolverResult) Weight {
	w := TotalRankWeight{solver: solver}
	for _, run := range solver.Runs() {
		for _, other := range rankable {
			if other == solver {
				continue
			}
			otherRun := other.RunOn(run.Problem())
			if otherRun == nil {
				continue
			}
			switch c := score.Compare(run.Score(), otherRun.Score()); {
			case c > 0:
				w.BetterCount++
			case c == 0:
				w.EqualCount++
			default:
				w.LowerCount++
			}
		}
	}
	return w
}
