package result_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/signalnine/solverbench/internal/ranking"
	"github.com/signalnine/solverbench/internal/result"
	"github.com/signalnine/solverbench/internal/score"
)

func ptr[T any](v T) *T { return &v }

func simple(v int64) result.SubRun {
	return result.Succeeded(score.Simple{Value: v}, time.Second)
}

func hardSoft(hard, soft int64) result.SubRun {
	return result.Succeeded(score.HardSoft{Hard: hard, Soft: soft}, time.Second)
}

func failure() result.SubRun {
	return result.Failed("solver crashed", time.Second)
}

func totalScoreRanker(t *testing.T) result.Ranker {
	t.Helper()
	r, err := ranking.New(ranking.Options{Comparator: ranking.TotalScore})
	require.NoError(t, err)
	return r
}

// newReport builds a report with one problem per scale and one solver per
// row of scores; each solver gets one run per problem.
func newReport(t *testing.T, name string, scales []*int64, scores ...[]result.SubRun) *result.BenchmarkResult {
	t.Helper()
	r := result.NewBenchmarkResult(name)
	problems := make([]*result.ProblemResult, len(scales))
	for i, scale := range scales {
		problems[i] = r.AddProblem("problem-"+string(rune('a'+i)), "", scale)
	}
	for i, row := range scores {
		require.Len(t, row, len(problems))
		s := r.AddSolver("solver-"+string(rune('a'+i)), nil)
		for j, sub := range row {
			result.NewRunRecord(s, problems[j], nil, []result.SubRun{sub})
		}
	}
	return r
}
