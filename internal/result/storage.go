package result

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/signalnine/solverbench/internal/score"
)

// ResultFileName is the file a report is persisted to inside its directory.
const ResultFileName = "benchmark-result.json"

// ErrCorruptResult indicates a stored result references solvers or problems
// it does not contain.
var ErrCorruptResult = errors.New("corrupt benchmark result")

type scoreDoc struct {
	Kind  score.Kind `json:"kind"`
	Value string     `json:"value"`
}

type subRunDoc struct {
	Score          *scoreDoc `json:"score,omitempty"`
	Failure        string    `json:"failure,omitempty"`
	TimeSpentNanos int64     `json:"time_spent_ns"`
}

type runDoc struct {
	Solver       int         `json:"solver"`
	Problem      int         `json:"problem"`
	ProblemScale *int64      `json:"problem_scale,omitempty"`
	SubRuns      []subRunDoc `json:"sub_runs"`
	Score        *scoreDoc   `json:"score,omitempty"`
	FailureCount int         `json:"failure_count"`
	Ranking      *int        `json:"ranking,omitempty"`
}

type problemDoc struct {
	Name         string `json:"name"`
	Dataset      string `json:"dataset,omitempty"`
	ProblemScale *int64 `json:"problem_scale,omitempty"`
	FailureCount int    `json:"failure_count"`
}

type solverDoc struct {
	Name            string           `json:"name"`
	EnvironmentMode *EnvironmentMode `json:"environment_mode,omitempty"`
	FailureCount    int              `json:"failure_count"`
	TotalScore      *scoreDoc        `json:"total_score,omitempty"`
	AverageScore    *scoreDoc        `json:"average_score,omitempty"`
	Ranking         *int             `json:"ranking,omitempty"`
}

type benchmarkDoc struct {
	Name                      string           `json:"name"`
	Aggregation               bool             `json:"aggregation"`
	Environment               Environment      `json:"environment"`
	ParallelBenchmarkCount    *int             `json:"parallel_benchmark_count,omitempty"`
	WarmUpTimeSpentLimitNanos *int64           `json:"warm_up_time_spent_limit_ns,omitempty"`
	EnvironmentMode           *EnvironmentMode `json:"environment_mode,omitempty"`
	StartingTimestamp         *time.Time       `json:"starting_timestamp,omitempty"`
	BenchmarkTimeSpentNanos   *int64           `json:"benchmark_time_spent_ns,omitempty"`

	Accumulated         bool      `json:"accumulated"`
	FailureCount        int       `json:"failure_count"`
	AverageProblemScale *int64    `json:"average_problem_scale,omitempty"`
	AverageScore        *scoreDoc `json:"average_score,omitempty"`
	Favorite            *int      `json:"favorite,omitempty"`

	Problems []problemDoc `json:"problems"`
	Solvers  []solverDoc  `json:"solvers"`
	Runs     []runDoc     `json:"runs"`
}

// WriteResult stores the report as ResultFileName inside dir.
func WriteResult(dir string, r *BenchmarkResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating result dir: %w", err)
	}
	data, err := json.MarshalIndent(r.toDoc(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, ResultFileName), data, 0o644)
}

// ReadResult loads a report written by WriteResult. A report that was
// finalized when written is finalized again: its statistics are recomputed
// from the runs and its ranking and favorite are restored as stored.
func ReadResult(path string) (*BenchmarkResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result: %w", err)
	}
	var doc benchmarkDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing result %s: %w", path, err)
	}
	r, err := fromDoc(&doc)
	if err != nil {
		return nil, fmt.Errorf("loading result %s: %w", path, err)
	}
	return r, nil
}

// UnmarshallingFailedResult is the empty placeholder standing in for a stored
// report under dir that could not be read. It has no runs.
func UnmarshallingFailedResult(dir string) *BenchmarkResult {
	return NewBenchmarkResult("Failed unmarshalling " + dir)
}

// FindResults returns the path of every stored report below root.
func FindResults(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == ResultFileName {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}

func (r *BenchmarkResult) toDoc() *benchmarkDoc {
	doc := &benchmarkDoc{
		Name:                      r.Name,
		Aggregation:               r.aggregation,
		Environment:               r.Environment,
		ParallelBenchmarkCount:    r.ParallelBenchmarkCount,
		WarmUpTimeSpentLimitNanos: durationNanos(r.WarmUpTimeSpentLimit),
		EnvironmentMode:           r.environmentMode,
		StartingTimestamp:         r.StartingTimestamp,
		BenchmarkTimeSpentNanos:   durationNanos(r.BenchmarkTimeSpent),
		Accumulated:               r.accumulated,
		FailureCount:              r.failureCount,
		AverageProblemScale:       r.averageProblemScale,
		AverageScore:              encodeScore(r.averageScore),
		Problems:                  make([]problemDoc, 0, len(r.problems)),
		Solvers:                   make([]solverDoc, 0, len(r.solvers)),
		Runs:                      make([]runDoc, 0, len(r.runs)),
	}

	problemIndex := make(map[*ProblemResult]int, len(r.problems))
	for i, p := range r.problems {
		problemIndex[p] = i
		doc.Problems = append(doc.Problems, problemDoc{
			Name:         p.name,
			Dataset:      p.dataset,
			ProblemScale: p.problemScale,
			FailureCount: p.failureCount,
		})
	}
	solverIndex := make(map[*SolverResult]int, len(r.solvers))
	for i, s := range r.solvers {
		solverIndex[s] = i
		if s == r.favorite {
			doc.Favorite = &i
		}
		doc.Solvers = append(doc.Solvers, solverDoc{
			Name:            s.name,
			EnvironmentMode: s.environmentMode,
			FailureCount:    s.failureCount,
			TotalScore:      encodeScore(s.totalScore),
			AverageScore:    encodeScore(s.averageScore),
			Ranking:         s.ranking,
		})
	}
	for _, run := range r.runs {
		subRuns := make([]subRunDoc, 0, len(run.subRuns))
		for _, sub := range run.subRuns {
			subRuns = append(subRuns, subRunDoc{
				Score:          encodeScore(sub.Score),
				Failure:        sub.Failure,
				TimeSpentNanos: sub.TimeSpent.Nanoseconds(),
			})
		}
		doc.Runs = append(doc.Runs, runDoc{
			Solver:       solverIndex[run.solver],
			Problem:      problemIndex[run.problem],
			ProblemScale: run.problemScale,
			SubRuns:      subRuns,
			Score:        encodeScore(run.score),
			FailureCount: run.failureCount,
			Ranking:      run.ranking,
		})
	}
	return doc
}

func fromDoc(doc *benchmarkDoc) (*BenchmarkResult, error) {
	r := NewBenchmarkResult(doc.Name)
	r.aggregation = doc.Aggregation
	r.Environment = doc.Environment
	r.ParallelBenchmarkCount = doc.ParallelBenchmarkCount
	r.WarmUpTimeSpentLimit = nanosDuration(doc.WarmUpTimeSpentLimitNanos)
	r.environmentMode = doc.EnvironmentMode
	r.StartingTimestamp = doc.StartingTimestamp
	r.BenchmarkTimeSpent = nanosDuration(doc.BenchmarkTimeSpentNanos)

	for _, p := range doc.Problems {
		r.AddProblem(p.Name, p.Dataset, p.ProblemScale)
	}
	for _, s := range doc.Solvers {
		r.AddSolver(s.Name, s.EnvironmentMode)
	}
	for i, rd := range doc.Runs {
		if rd.Solver < 0 || rd.Solver >= len(r.solvers) || rd.Problem < 0 || rd.Problem >= len(r.problems) {
			return nil, fmt.Errorf("%w: run %d references solver %d, problem %d", ErrCorruptResult, i, rd.Solver, rd.Problem)
		}
		if len(rd.SubRuns) == 0 {
			return nil, fmt.Errorf("%w: run %d has no sub-runs", ErrCorruptResult, i)
		}
		subRuns := make([]SubRun, 0, len(rd.SubRuns))
		for _, sd := range rd.SubRuns {
			s, err := decodeScore(sd.Score)
			if err != nil {
				return nil, fmt.Errorf("run %d: %w", i, err)
			}
			subRuns = append(subRuns, SubRun{Score: s, Failure: sd.Failure, TimeSpent: time.Duration(sd.TimeSpentNanos)})
		}
		NewRunRecord(r.solvers[rd.Solver], r.problems[rd.Problem], rd.ProblemScale, subRuns)
	}

	if !doc.Accumulated {
		return r, nil
	}
	// Statistics are a pure function of the runs; ranks depend on the
	// strategy that produced them and are restored verbatim.
	r.accumulateStatistics()
	for i, s := range doc.Solvers {
		r.solvers[i].ranking = clonePtr(s.Ranking)
	}
	if doc.Favorite != nil {
		if *doc.Favorite < 0 || *doc.Favorite >= len(r.solvers) {
			return nil, fmt.Errorf("%w: favorite %d", ErrCorruptResult, *doc.Favorite)
		}
		r.favorite = r.solvers[*doc.Favorite]
	}
	r.environmentMode = doc.EnvironmentMode
	r.accumulated = true
	return r, nil
}

func encodeScore(s score.Score) *scoreDoc {
	if s == nil {
		return nil
	}
	return &scoreDoc{Kind: s.Kind(), Value: s.String()}
}

func decodeScore(d *scoreDoc) (score.Score, error) {
	if d == nil {
		return nil, nil
	}
	if d.Kind == "" {
		// Hand-edited documents may omit the kind.
		return score.ParseAny(d.Value)
	}
	return score.Parse(d.Kind, d.Value)
}

func durationNanos(d *time.Duration) *int64 {
	if d == nil {
		return nil
	}
	ns := d.Nanoseconds()
	return &ns
}

func nanosDuration(ns *int64) *time.Duration {
	if ns == nil {
		return nil
	}
	d := time.Duration(*ns)
	return &d
}
