package result_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalnine/solverbench/internal/ranking"
	"github.com/signalnine/solverbench/internal/result"
	"github.com/signalnine/solverbench/internal/score"
)

func TestRunRecordOutcome(t *testing.T) {
	r := result.NewBenchmarkResult("run")
	s := r.AddSolver("s", nil)
	p := r.AddProblem("p", "", nil)

	median := result.NewRunRecord(s, p, ptr(int64(7)), []result.SubRun{simple(-9), simple(-1), simple(-5)})
	assert.Equal(t, score.Simple{Value: -5}, median.Score())
	assert.False(t, median.Failed())
	assert.Equal(t, 3, median.SubRunCount())
	scale, ok := median.ProblemScale()
	assert.True(t, ok)
	assert.Equal(t, int64(7), scale)

	failed := result.NewRunRecord(s, p, nil, []result.SubRun{simple(-1), failure(), failure()})
	assert.Nil(t, failed.Score())
	assert.True(t, failed.Failed())
	assert.Equal(t, 2, failed.FailureCount())
	assert.Equal(t, time.Second, failed.TimeSpent())
}

func TestRunRecordPanicsOnMissingParents(t *testing.T) {
	r := result.NewBenchmarkResult("run")
	s := r.AddSolver("s", nil)
	p := result.NewBenchmarkResult("other").AddProblem("p", "", nil)

	assert.Panics(t, func() { result.NewRunRecord(nil, p, nil, []result.SubRun{simple(1)}) })
	assert.Panics(t, func() { result.NewRunRecord(s, p, nil, []result.SubRun{simple(1)}) })
	assert.Panics(t, func() { result.NewRunRecord(s, r.AddProblem("q", "", nil), nil, nil) })
}

func TestAccumulateAverageScoreCompatible(t *testing.T) {
	r := newReport(t, "avg", []*int64{nil}, []result.SubRun{simple(-10)}, []result.SubRun{simple(-20)})
	require.NoError(t, r.AccumulateResults(totalScoreRanker(t)))

	assert.Equal(t, score.Simple{Value: -15}, r.AverageScore())
}

func TestAccumulateAverageScoreIncompatible(t *testing.T) {
	r := newReport(t, "mixed", []*int64{nil}, []result.SubRun{simple(-10)}, []result.SubRun{hardSoft(0, -20)})
	require.NoError(t, r.AccumulateResults(totalScoreRanker(t)))

	assert.Nil(t, r.AverageScore(), "incompatible score definitions degrade to no average")
	assert.NotNil(t, r.Favorite(), "ranking still happens")
}

func TestAccumulateSkipsSolversWithoutScore(t *testing.T) {
	r := newReport(t, "partial", []*int64{nil},
		[]result.SubRun{simple(-4)},
		[]result.SubRun{failure()},
		[]result.SubRun{simple(-8)},
	)
	require.NoError(t, r.AccumulateResults(totalScoreRanker(t)))

	assert.Equal(t, score.Simple{Value: -6}, r.AverageScore())
	assert.Nil(t, r.Solvers()[1].AverageScore())
}

func TestAverageProblemScale(t *testing.T) {
	tests := []struct {
		name   string
		scales []*int64
		want   int64
		known  bool
	}{
		{"unknown excluded", []*int64{ptr(int64(10)), ptr(int64(20)), nil}, 15, true},
		{"truncated", []*int64{ptr(int64(10)), ptr(int64(11))}, 10, true},
		{"all unknown", []*int64{nil, nil}, 0, false},
		{"no problems", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newReport(t, tt.name, tt.scales)
			require.NoError(t, r.AccumulateResults(totalScoreRanker(t)))
			got, ok := r.AverageProblemScale()
			assert.Equal(t, tt.known, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFailureCount(t *testing.T) {
	clean := newReport(t, "clean", []*int64{nil, nil},
		[]result.SubRun{simple(1), simple(2)},
	)
	failing := newReport(t, "failing", []*int64{nil, nil},
		[]result.SubRun{simple(1), failure()},
		[]result.SubRun{failure(), failure()},
	)
	for _, r := range []*result.BenchmarkResult{clean, failing} {
		require.NoError(t, r.AccumulateResults(totalScoreRanker(t)))
		assert.Equal(t, r.FailureCount() > 0, r.HasAnyFailure())
	}
	assert.Equal(t, 0, clean.FailureCount())
	assert.Equal(t, 3, failing.FailureCount())
	assert.Equal(t, 2, failing.Problems()[1].FailureCount())
}

func TestEnvironmentModeConsensus(t *testing.T) {
	repro := result.EnvironmentModeReproducible
	fast := result.EnvironmentModeFastAssert
	tests := []struct {
		name  string
		modes []*result.EnvironmentMode
		want  *result.EnvironmentMode
	}{
		{"agree", []*result.EnvironmentMode{&repro, &repro}, &repro},
		{"disagree", []*result.EnvironmentMode{&repro, &fast}, nil},
		{"leading unknown seeds later", []*result.EnvironmentMode{nil, &fast, &fast}, &fast},
		{"trailing unknown clears", []*result.EnvironmentMode{&repro, nil}, nil},
		{"disagreement is permanent", []*result.EnvironmentMode{&repro, &fast, &repro}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := result.NewBenchmarkResult(tt.name)
			for _, mode := range tt.modes {
				r.AddSolver("s", mode)
			}
			require.NoError(t, r.AccumulateResults(totalScoreRanker(t)))
			got, ok := r.EnvironmentMode()
			if tt.want == nil {
				assert.False(t, ok)
				return
			}
			assert.True(t, ok)
			assert.Equal(t, *tt.want, got)
		})
	}
}

func TestAccumulateResultsErrors(t *testing.T) {
	r := newReport(t, "errors", []*int64{nil}, []result.SubRun{simple(1)})

	require.ErrorIs(t, r.AccumulateResults(nil), result.ErrNoRankingStrategy)
	assert.False(t, r.IsAccumulated(), "a rejected call leaves the result raw")
	assert.Zero(t, r.Solvers()[0].SuccessCount())

	require.NoError(t, r.AccumulateResults(totalScoreRanker(t)))
	require.ErrorIs(t, r.AccumulateResults(totalScoreRanker(t)), result.ErrAlreadyAccumulated)
}

func TestFailedSolversAreNeverRanked(t *testing.T) {
	r := newReport(t, "rank", []*int64{nil, nil},
		[]result.SubRun{simple(100), failure()},
		[]result.SubRun{simple(-5), simple(-5)},
		[]result.SubRun{simple(-9), simple(-9)},
	)
	require.NoError(t, r.AccumulateResults(totalScoreRanker(t)))

	solvers := r.Solvers()
	_, ranked := solvers[0].Ranking()
	assert.False(t, ranked)
	assert.False(t, solvers[0].IsFavorite())

	rank, ok := solvers[1].Ranking()
	require.True(t, ok)
	assert.Equal(t, 0, rank)
	assert.Same(t, solvers[1], r.Favorite())

	rank, ok = solvers[2].Ranking()
	require.True(t, ok)
	assert.Equal(t, 1, rank)
}

func TestFavoriteAbsentWhenNothingRankable(t *testing.T) {
	r := newReport(t, "none", []*int64{nil},
		[]result.SubRun{failure()},
		[]result.SubRun{failure()},
	)
	require.NoError(t, r.AccumulateResults(totalScoreRanker(t)))
	assert.Nil(t, r.Favorite())

	empty := result.NewBenchmarkResult("empty")
	require.NoError(t, empty.AccumulateResults(totalScoreRanker(t)))
	assert.Nil(t, empty.Favorite())
}

func TestProblemStatistics(t *testing.T) {
	r := result.NewBenchmarkResult("problem")
	p := r.AddProblem("p", "data/p.json", ptr(int64(120)))
	a, b, c, d := r.AddSolver("a", nil), r.AddSolver("b", nil), r.AddSolver("c", nil), r.AddSolver("d", nil)
	runA := result.NewRunRecord(a, p, nil, []result.SubRun{simple(-3), simple(-3)})
	runB := result.NewRunRecord(b, p, nil, []result.SubRun{simple(-1)})
	runC := result.NewRunRecord(c, p, nil, []result.SubRun{simple(-3), simple(-2), simple(-4)})
	runD := result.NewRunRecord(d, p, nil, []result.SubRun{failure()})
	require.NoError(t, r.AccumulateResults(totalScoreRanker(t)))

	assert.Equal(t, 3, p.MaximumSubSingleCount())
	assert.Equal(t, 7, p.TotalSubSingleCount())
	assert.Equal(t, 3, r.MaximumSubSingleCount())
	assert.Equal(t, 7, r.TotalSubSingleCount())
	assert.Equal(t, 1, p.FailureCount())
	assert.Same(t, runB, p.WinningRun())
	assert.Equal(t, score.Simple{Value: -3}, p.WorstRun().Score())
	assert.Same(t, runC, p.RunOf(c))
	assert.Same(t, runC, c.RunOn(p))

	for run, want := range map[*result.RunRecord]int{runB: 0, runA: 1, runC: 1} {
		got, ok := run.Ranking()
		require.True(t, ok)
		assert.Equal(t, want, got, run.Solver().Name())
	}
	_, ok := runD.Ranking()
	assert.False(t, ok)
}

func TestSolverStatistics(t *testing.T) {
	r := newReport(t, "solver", []*int64{nil, nil, nil},
		[]result.SubRun{simple(-2), simple(-6), failure()},
	)
	require.NoError(t, r.AccumulateResults(totalScoreRanker(t)))

	s := r.Solvers()[0]
	assert.Equal(t, 1, s.FailureCount())
	assert.Equal(t, 2, s.SuccessCount())
	assert.Equal(t, score.Simple{Value: -8}, s.TotalScore())
	assert.Equal(t, score.Simple{Value: -4}, s.AverageScore())
	assert.Equal(t, score.Simple{Value: -6}, s.WorstScore())
	assert.Equal(t, time.Second, s.AverageTimeSpent())
}

func TestHasMultipleParallelBenchmarks(t *testing.T) {
	r := result.NewBenchmarkResult("parallel")
	assert.True(t, r.HasMultipleParallelBenchmarks())
	r.ParallelBenchmarkCount = ptr(1)
	assert.False(t, r.HasMultipleParallelBenchmarks())
	r.ParallelBenchmarkCount = ptr(4)
	assert.True(t, r.HasMultipleParallelBenchmarks())
}

func TestRerank(t *testing.T) {
	r := newReport(t, "rerank", []*int64{nil, nil},
		[]result.SubRun{simple(-1), simple(-8)},
		[]result.SubRun{simple(-5), simple(-5)},
	)
	worst, err := ranking.ByName(ranking.PolicyWorstScore)
	require.NoError(t, err)
	require.ErrorIs(t, r.Rerank(worst), result.ErrNotAccumulated)

	require.NoError(t, r.AccumulateResults(totalScoreRanker(t)))
	assert.Equal(t, "solver-a", r.Favorite().Name())
	average := r.AverageScore()

	require.ErrorIs(t, r.Rerank(nil), result.ErrNoRankingStrategy)
	require.NoError(t, r.Rerank(worst))
	assert.Equal(t, "solver-b", r.Favorite().Name())
	rank, ok := r.Solvers()[0].Ranking()
	require.True(t, ok)
	assert.Equal(t, 1, rank)
	assert.Equal(t, average, r.AverageScore())
}
