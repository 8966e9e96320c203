// Package report renders a finalized benchmark result as a terminal table,
// Markdown or JSON.
package report

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/signalnine/solverbench/internal/result"
	"github.com/signalnine/solverbench/internal/score"
)

// Formats accepted by Generate.
const (
	FormatTable    = "table"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

type SolverSummary struct {
	Rank          *int   `json:"rank,omitempty"`
	Name          string `json:"name"`
	Favorite      bool   `json:"favorite,omitempty"`
	AverageScore  string `json:"average_score,omitempty"`
	TotalScore    string `json:"total_score,omitempty"`
	WorstScore    string `json:"worst_score,omitempty"`
	Successes     int    `json:"successes"`
	Failures      int    `json:"failures"`
	AverageTimeMs int64  `json:"average_time_ms"`
}

type ProblemSummary struct {
	Name         string `json:"name"`
	Scale        *int64 `json:"scale,omitempty"`
	Winner       string `json:"winner,omitempty"`
	WinningScore string `json:"winning_score,omitempty"`
	Feasible     *bool  `json:"feasible,omitempty"`
	WorstSolver  string `json:"worst_solver,omitempty"`
	WorstScore   string `json:"worst_score,omitempty"`
	Failures     int    `json:"failures"`
}

type Summary struct {
	Name                string             `json:"name"`
	Aggregation         bool               `json:"aggregation,omitempty"`
	Directory           string             `json:"directory,omitempty"`
	StartingTimestamp   *time.Time         `json:"starting_timestamp,omitempty"`
	BenchmarkTimeMs     *int64             `json:"benchmark_time_ms,omitempty"`
	Environment         result.Environment `json:"environment"`
	EnvironmentMode     string             `json:"environment_mode,omitempty"`
	ParallelBenchmarks  *int               `json:"parallel_benchmark_count,omitempty"`
	TimingsMayOverlap   bool               `json:"timings_may_overlap,omitempty"`
	SubRuns             int                `json:"sub_runs"`
	Failures            int                `json:"failures"`
	AverageProblemScale *int64             `json:"average_problem_scale,omitempty"`
	AverageScore        string             `json:"average_score,omitempty"`
	Favorite            string             `json:"favorite,omitempty"`
	Solvers             []SolverSummary    `json:"solvers"`
	Problems            []ProblemSummary   `json:"problems"`
}

// Summarize flattens a result into its reportable statistics. Ranked solvers
// come first in rank order, followed by the unranked ones.
func Summarize(r *result.BenchmarkResult) Summary {
	s := Summary{
		Name:               r.Name,
		Aggregation:        r.IsAggregation(),
		Directory:          r.ReportDirectory,
		StartingTimestamp:  r.StartingTimestamp,
		Environment:        r.Environment,
		ParallelBenchmarks: r.ParallelBenchmarkCount,
		TimingsMayOverlap:  r.HasMultipleParallelBenchmarks(),
		SubRuns:            r.TotalSubSingleCount(),
		Failures:           r.FailureCount(),
		AverageScore:       scoreString(r.AverageScore()),
		Solvers:            []SolverSummary{},
		Problems:           []ProblemSummary{},
	}
	if r.BenchmarkTimeSpent != nil {
		ms := r.BenchmarkTimeSpent.Milliseconds()
		s.BenchmarkTimeMs = &ms
	}
	if mode, ok := r.EnvironmentMode(); ok {
		s.EnvironmentMode = string(mode)
	}
	if scale, ok := r.AverageProblemScale(); ok {
		s.AverageProblemScale = &scale
	}
	if fav := r.Favorite(); fav != nil {
		s.Favorite = fav.Name()
	}

	for _, solver := range r.Solvers() {
		ss := SolverSummary{
			Name:          solver.Name(),
			Favorite:      solver.IsFavorite(),
			AverageScore:  scoreString(solver.AverageScore()),
			TotalScore:    scoreString(solver.TotalScore()),
			WorstScore:    scoreString(solver.WorstScore()),
			Successes:     solver.SuccessCount(),
			Failures:      solver.FailureCount(),
			AverageTimeMs: solver.AverageTimeSpent().Milliseconds(),
		}
		if rank, ok := solver.Ranking(); ok {
			ss.Rank = &rank
		}
		s.Solvers = append(s.Solvers, ss)
	}
	slices.SortStableFunc(s.Solvers, func(a, b SolverSummary) int {
		switch {
		case a.Rank == nil && b.Rank == nil:
			return 0
		case a.Rank == nil:
			return 1
		case b.Rank == nil:
			return -1
		}
		return cmp.Compare(*a.Rank, *b.Rank)
	})

	for _, p := range r.Problems() {
		s.Problems = append(s.Problems, summarizeProblem(p))
	}
	return s
}

func summarizeProblem(p *result.ProblemResult) ProblemSummary {
	ps := ProblemSummary{Name: p.Name(), Failures: p.FailureCount()}
	if scale, ok := p.ProblemScale(); ok {
		ps.Scale = &scale
	}
	if win := p.WinningRun(); win != nil {
		ps.Winner = win.Solver().Name()
		ps.WinningScore = scoreString(win.Score())
		feasible := win.Score().IsFeasible()
		ps.Feasible = &feasible
	}
	if worst := p.WorstRun(); worst != nil {
		ps.WorstSolver = worst.Solver().Name()
		ps.WorstScore = scoreString(worst.Score())
	}
	return ps
}

// Generate writes the report for r in the given format.
func Generate(r *result.BenchmarkResult, format string, w io.Writer) error {
	s := Summarize(r)
	switch format {
	case FormatMarkdown:
		return writeMarkdown(s, w)
	case FormatJSON:
		return writeJSON(s, w)
	case FormatTable, "":
		return writeTable(s, w)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

func solverTable(s Summary) table.Writer {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Rank", "Solver", "Average score", "Worst score", "Runs", "Failures", "Average time"})
	favorite := color.New(color.FgGreen, color.Bold)
	for _, ss := range s.Solvers {
		rank := "-"
		if ss.Rank != nil {
			rank = fmt.Sprint(*ss.Rank)
		}
		name := ss.Name
		if ss.Favorite {
			name = favorite.Sprint(name + " *")
		}
		t.AppendRow(table.Row{rank, name, orDash(ss.AverageScore), orDash(ss.WorstScore),
			ss.Successes + ss.Failures, ss.Failures, formatMillis(ss.AverageTimeMs)})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	return t
}

func problemTable(s Summary) table.Writer {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Problem", "Scale", "Winner", "Winning score", "Feasible", "Worst score", "Failures"})
	for _, ps := range s.Problems {
		scale := "-"
		if ps.Scale != nil {
			scale = humanize.Comma(*ps.Scale)
		}
		feasible := "-"
		if ps.Feasible != nil {
			feasible = "no"
			if *ps.Feasible {
				feasible = "yes"
			}
		}
		worst := "-"
		if ps.WorstScore != "" {
			worst = fmt.Sprintf("%s (%s)", ps.WorstScore, ps.WorstSolver)
		}
		t.AppendRow(table.Row{ps.Name, scale, orDash(ps.Winner), orDash(ps.WinningScore), feasible, worst, ps.Failures})
	}
	return t
}

func writeTable(s Summary, w io.Writer) error {
	title := s.Name
	if s.Aggregation {
		title += " (aggregation)"
	}
	fmt.Fprintln(w, color.New(color.Bold).Sprint(title))
	if s.StartingTimestamp != nil {
		fmt.Fprintf(w, "Started:     %s (%s)\n", s.StartingTimestamp.Format(time.RFC3339), humanize.Time(*s.StartingTimestamp))
	}
	if s.BenchmarkTimeMs != nil {
		fmt.Fprintf(w, "Duration:    %s\n", formatMillis(*s.BenchmarkTimeMs))
	}
	fmt.Fprintf(w, "Sub-runs:    %d (%d failed)\n", s.SubRuns, s.Failures)
	if s.AverageProblemScale != nil {
		fmt.Fprintf(w, "Avg. scale:  %s\n", humanize.Comma(*s.AverageProblemScale))
	}
	fmt.Fprintf(w, "Avg. score:  %s\n", orDash(s.AverageScore))
	fmt.Fprintf(w, "Host:        %s\n", describeEnvironment(s.Environment))
	if s.TimingsMayOverlap {
		fmt.Fprintln(w, color.New(color.FgYellow).Sprint(overlapNote(s)))
	}
	fmt.Fprintln(w)

	solvers := solverTable(s)
	solvers.SetStyle(table.StyleLight)
	fmt.Fprintln(w, solvers.Render())
	fmt.Fprintln(w)
	problems := problemTable(s)
	problems.SetStyle(table.StyleLight)
	_, err := fmt.Fprintln(w, problems.Render())
	return err
}

func writeMarkdown(s Summary, w io.Writer) error {
	fmt.Fprintf(w, "# %s\n\n", s.Name)
	fmt.Fprintf(w, "- Sub-runs: %d (%d failed)\n", s.SubRuns, s.Failures)
	fmt.Fprintf(w, "- Average score: %s\n", orDash(s.AverageScore))
	if s.Favorite != "" {
		fmt.Fprintf(w, "- Favorite: **%s**\n", s.Favorite)
	}
	fmt.Fprintf(w, "- Host: %s\n", describeEnvironment(s.Environment))
	if s.TimingsMayOverlap {
		fmt.Fprintf(w, "\n> %s\n", overlapNote(s))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "## Solvers")
	fmt.Fprintln(w)
	fmt.Fprintln(w, solverTable(s).RenderMarkdown())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "## Problems")
	fmt.Fprintln(w)
	_, err := fmt.Fprintln(w, problemTable(s).RenderMarkdown())
	return err
}

func writeJSON(s Summary, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

func overlapNote(s Summary) string {
	if s.ParallelBenchmarks == nil {
		return "Note: benchmarks may have run in parallel; timings are not comparable."
	}
	return fmt.Sprintf("Note: %d benchmarks ran in parallel; timings are not comparable.", *s.ParallelBenchmarks)
}

func describeEnvironment(e result.Environment) string {
	desc := "unknown"
	if e.OperatingSystem != nil {
		desc = *e.OperatingSystem
	}
	if e.AvailableProcessors != nil {
		desc += fmt.Sprintf(", %d CPUs", *e.AvailableProcessors)
	}
	if e.MaxMemory != nil && *e.MaxMemory > 0 {
		desc += ", " + humanize.IBytes(uint64(*e.MaxMemory))
	}
	if e.GoVersion != nil {
		desc += ", " + *e.GoVersion
	}
	return desc
}

func scoreString(s score.Score) string {
	if s == nil {
		return ""
	}
	return s.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatMillis(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).String()
}
