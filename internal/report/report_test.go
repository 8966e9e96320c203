package report_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalnine/solverbench/internal/ranking"
	"github.com/signalnine/solverbench/internal/report"
	"github.com/signalnine/solverbench/internal/result"
	"github.com/signalnine/solverbench/internal/score"
)

func ptr[T any](v T) *T { return &v }

func sampleResult(t *testing.T) *result.BenchmarkResult {
	t.Helper()
	r := result.NewBenchmarkResult("nightly")
	r.Environment = result.Environment{OperatingSystem: ptr("linux"), AvailableProcessors: ptr(8), MaxMemory: ptr(int64(16 << 30))}
	small := r.AddProblem("small", "", ptr(int64(1200)))
	large := r.AddProblem("large", "", nil)
	tabu := r.AddSolver("tabu", nil)
	greedy := r.AddSolver("greedy", nil)
	flaky := r.AddSolver("flaky", nil)

	run := func(s *result.SolverResult, p *result.ProblemResult, subs ...result.SubRun) {
		result.NewRunRecord(s, p, nil, subs)
	}
	ok := func(v int64) result.SubRun { return result.Succeeded(score.Simple{Value: v}, 2*time.Second) }
	run(tabu, small, ok(-10))
	run(tabu, large, ok(-30))
	run(greedy, small, ok(-12))
	run(greedy, large, ok(-50))
	run(flaky, small, ok(-1))
	run(flaky, large, result.Failed("crashed", time.Second))

	s, err := ranking.ByName(ranking.PolicyTotalScore)
	require.NoError(t, err)
	require.NoError(t, r.AccumulateResults(s))
	return r
}

func TestSummarize(t *testing.T) {
	got := report.Summarize(sampleResult(t))

	want := report.Summary{
		Name:                "nightly",
		Environment:         got.Environment,
		SubRuns:             6,
		Failures:            1,
		AverageProblemScale: ptr(int64(1200)),
		AverageScore:        "-18",
		Favorite:            "tabu",
		TimingsMayOverlap:   true,
		Solvers: []report.SolverSummary{
			{Rank: ptr(0), Name: "tabu", Favorite: true, AverageScore: "-20", TotalScore: "-40", WorstScore: "-30", Successes: 2, AverageTimeMs: 2000},
			{Rank: ptr(1), Name: "greedy", AverageScore: "-31", TotalScore: "-62", WorstScore: "-50", Successes: 2, AverageTimeMs: 2000},
			{Name: "flaky", AverageScore: "-1", TotalScore: "-1", WorstScore: "-1", Successes: 1, Failures: 1, AverageTimeMs: 2000},
		},
		Problems: []report.ProblemSummary{
			{Name: "small", Scale: ptr(int64(1200)), Winner: "flaky", WinningScore: "-1", Feasible: ptr(true), WorstSolver: "greedy", WorstScore: "-12"},
			{Name: "large", Winner: "tabu", WinningScore: "-30", Feasible: ptr(true), WorstSolver: "greedy", WorstScore: "-50", Failures: 1},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Summarize mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateTable(t *testing.T) {
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	var buf bytes.Buffer
	require.NoError(t, report.Generate(sampleResult(t), report.FormatTable, &buf))

	out := buf.String()
	for _, want := range []string{"nightly", "tabu *", "greedy", "flaky", "1,200", "16 GiB", "8 CPUs", "-50 (greedy)", "timings are not comparable"} {
		assert.Contains(t, out, want)
	}
}

func TestGenerateMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.Generate(sampleResult(t), report.FormatMarkdown, &buf))

	out := buf.String()
	assert.Contains(t, out, "# nightly")
	assert.Contains(t, out, "- Favorite: **tabu**")
	assert.Contains(t, out, "| Rank |")
}

func TestGenerateJSON(t *testing.T) {
	r := sampleResult(t)
	var buf bytes.Buffer
	require.NoError(t, report.Generate(r, report.FormatJSON, &buf))

	var decoded report.Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	if diff := cmp.Diff(report.Summarize(r), decoded); diff != "" {
		t.Errorf("JSON report mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateUnknownFormat(t *testing.T) {
	require.Error(t, report.Generate(sampleResult(t), "html", &bytes.Buffer{}))
}

func TestGenerateSequentialHasNoOverlapNote(t *testing.T) {
	r := sampleResult(t)
	r.ParallelBenchmarkCount = ptr(1)

	var buf bytes.Buffer
	require.NoError(t, report.Generate(r, report.FormatMarkdown, &buf))
	assert.NotContains(t, buf.String(), "timings are not comparable")

	r.ParallelBenchmarkCount = ptr(4)
	buf.Reset()
	require.NoError(t, report.Generate(r, report.FormatMarkdown, &buf))
	assert.Contains(t, buf.String(), "> Note: 4 benchmarks ran in parallel")
}

func TestSummarizeInfeasibleWinner(t *testing.T) {
	r := result.NewBenchmarkResult("constrained")
	p := r.AddProblem("tight", "", nil)
	s := r.AddSolver("tabu", nil)
	result.NewRunRecord(s, p, nil, []result.SubRun{result.Succeeded(score.HardSoft{Hard: -2, Soft: -10}, time.Second)})
	ranker, err := ranking.ByName(ranking.PolicyTotalScore)
	require.NoError(t, err)
	require.NoError(t, r.AccumulateResults(ranker))

	got := report.Summarize(r).Problems
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Feasible)
	assert.False(t, *got[0].Feasible)
	assert.Equal(t, "-2hard/-10soft", got[0].WinningScore)
}

func TestWriteProblemReports(t *testing.T) {
	r := sampleResult(t)
	dir := t.TempDir()
	require.NoError(t, report.WriteProblemReports(dir, r))

	var large *result.ProblemResult
	for _, p := range r.Problems() {
		assert.FileExists(t, filepath.Join(result.ProblemDir(dir, p), report.ProblemFileName))
		if p.Name() == "large" {
			large = p
		}
	}
	require.NotNil(t, large)

	data, err := os.ReadFile(filepath.Join(result.ProblemDir(dir, large), report.ProblemFileName))
	require.NoError(t, err)
	var got report.ProblemReport
	require.NoError(t, json.Unmarshal(data, &got))

	want := report.ProblemReport{
		ProblemSummary: report.ProblemSummary{Name: "large", Winner: "tabu", WinningScore: "-30", Feasible: ptr(true), WorstSolver: "greedy", WorstScore: "-50", Failures: 1},
		Runs: []report.RunSummary{
			{Solver: "tabu", Rank: ptr(0), Score: "-30", SubRuns: 1, AverageTimeMs: 2000},
			{Solver: "greedy", Rank: ptr(1), Score: "-50", SubRuns: 1, AverageTimeMs: 2000},
			{Solver: "flaky", SubRuns: 1, Failures: 1, AverageTimeMs: 1000},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("problem report mismatch (-want +got):\n%s", diff)
	}
}
