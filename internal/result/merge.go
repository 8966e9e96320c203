package result

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// Merge builds a new aggregation report from runs of one or more finalized
// reports. Source reports, solvers and problems are deduplicated by identity:
// two runs that point at the same source solver land on the same merged
// solver, while two structurally identical solvers from different sources
// stay distinct. The merged report is accumulated and ranked with ranker.
//
// Scalar metadata of the first source seeds the merged report; each further
// source keeps a field only if it agrees, otherwise the field becomes nil.
func Merge(runs []*RunRecord, ranker Ranker) (*BenchmarkResult, error) {
	if len(runs) == 0 {
		return nil, ErrEmptyMerge
	}
	if ranker == nil {
		return nil, ErrNoRankingStrategy
	}
	for i, run := range runs {
		if run == nil || run.solver == nil || run.problem == nil || run.solver.report == nil || run.problem.report == nil {
			return nil, fmt.Errorf("%w: run %d", ErrDetachedRun, i)
		}
	}

	merged := mergeSingleton(runs)
	labels := sourceLabels(runs)
	solverMap := mergeSolvers(merged, runs, labels)
	problemMap := mergeProblems(merged, runs, labels)
	for _, run := range runs {
		NewRunRecord(solverMap[run.solver], problemMap[run.problem], run.problemScale, run.subRuns)
	}
	if err := merged.AccumulateResults(ranker); err != nil {
		return nil, fmt.Errorf("accumulating merged result: %w", err)
	}
	return merged, nil
}

func mergeSingleton(runs []*RunRecord) *BenchmarkResult {
	var merged *BenchmarkResult
	seen := make(map[*BenchmarkResult]struct{})
	for _, run := range runs {
		source := run.solver.report
		if _, ok := seen[source]; ok {
			continue
		}
		seen[source] = struct{}{}
		if merged == nil {
			merged = &BenchmarkResult{
				aggregation:            true,
				Environment:            cloneEnvironment(source.Environment),
				ParallelBenchmarkCount: clonePtr(source.ParallelBenchmarkCount),
				WarmUpTimeSpentLimit:   clonePtr(source.WarmUpTimeSpentLimit),
				environmentMode:        clonePtr(source.environmentMode),
			}
			continue
		}
		merged.Environment = mergeEnvironment(merged.Environment, source.Environment)
		merged.ParallelBenchmarkCount = mergeProperty(merged.ParallelBenchmarkCount, source.ParallelBenchmarkCount)
		merged.WarmUpTimeSpentLimit = mergeProperty(merged.WarmUpTimeSpentLimit, source.WarmUpTimeSpentLimit)
		merged.environmentMode = mergeProperty(merged.environmentMode, source.environmentMode)
	}
	return merged
}

func mergeSolvers(merged *BenchmarkResult, runs []*RunRecord, labels map[*BenchmarkResult]string) map[*SolverResult]*SolverResult {
	var sources []*SolverResult
	seen := make(map[*SolverResult]struct{})
	nameCount := make(map[string]int)
	for _, run := range runs {
		if _, ok := seen[run.solver]; ok {
			continue
		}
		seen[run.solver] = struct{}{}
		sources = append(sources, run.solver)
		nameCount[run.solver.name]++
	}
	mergeMap := make(map[*SolverResult]*SolverResult, len(sources))
	for _, old := range sources {
		name := old.name
		if nameCount[name] > 1 {
			name = fmt.Sprintf("%s (%s)", name, labels[old.report])
		}
		mergeMap[old] = merged.AddSolver(name, old.environmentMode)
	}
	return mergeMap
}

func mergeProblems(merged *BenchmarkResult, runs []*RunRecord, labels map[*BenchmarkResult]string) map[*ProblemResult]*ProblemResult {
	var sources []*ProblemResult
	seen := make(map[*ProblemResult]struct{})
	nameCount := make(map[string]int)
	for _, run := range runs {
		if _, ok := seen[run.problem]; ok {
			continue
		}
		seen[run.problem] = struct{}{}
		sources = append(sources, run.problem)
		nameCount[run.problem.name]++
	}
	mergeMap := make(map[*ProblemResult]*ProblemResult, len(sources))
	for _, old := range sources {
		name := old.name
		if nameCount[name] > 1 {
			name = fmt.Sprintf("%s (%s)", name, labels[old.report])
		}
		mergeMap[old] = merged.AddProblem(name, old.dataset, old.problemScale)
	}
	return mergeMap
}

// sourceLabels names every source report for qualifying duplicate solver and
// problem names. A report's name is used unless another source shares it; then
// the report directory, the starting timestamp or the source position is
// added until the label is unique.
func sourceLabels(runs []*RunRecord) map[*BenchmarkResult]string {
	var sources []*BenchmarkResult
	nameCount := make(map[string]int)
	for _, run := range runs {
		source := run.solver.report
		if slices.Contains(sources, source) {
			continue
		}
		sources = append(sources, source)
		nameCount[source.Name]++
	}

	labels := make(map[*BenchmarkResult]string, len(sources))
	taken := make(map[string]bool, len(sources))
	for i, source := range sources {
		label := source.Name
		if nameCount[label] > 1 || label == "" {
			label = strings.TrimSpace(label + " " + sourceQualifier(source, i))
		}
		if taken[label] {
			label = fmt.Sprintf("%s #%d", label, i+1)
		}
		taken[label] = true
		labels[source] = label
	}
	return labels
}

func sourceQualifier(source *BenchmarkResult, index int) string {
	if source.ReportDirectory != "" {
		if base := filepath.Base(source.ReportDirectory); base != "." && base != string(filepath.Separator) {
			return base
		}
	}
	if source.StartingTimestamp != nil {
		return source.StartingTimestamp.Format(TimestampLayout)
	}
	return fmt.Sprintf("#%d", index+1)
}

// mergeProperty keeps a value only when both sides hold the same value.
func mergeProperty[T comparable](a, b *T) *T {
	if a == nil || b == nil || *a != *b {
		return nil
	}
	return clonePtr(a)
}

func mergeEnvironment(a, b Environment) Environment {
	return Environment{
		AvailableProcessors: mergeProperty(a.AvailableProcessors, b.AvailableProcessors),
		MaxMemory:           mergeProperty(a.MaxMemory, b.MaxMemory),
		Version:             mergeProperty(a.Version, b.Version),
		GoVersion:           mergeProperty(a.GoVersion, b.GoVersion),
		OperatingSystem:     mergeProperty(a.OperatingSystem, b.OperatingSystem),
		LogLevel:            mergeProperty(a.LogLevel, b.LogLevel),
	}
}

func cloneEnvironment(e Environment) Environment {
	return Environment{
		AvailableProcessors: clonePtr(e.AvailableProcessors),
		MaxMemory:           clonePtr(e.MaxMemory),
		Version:             clonePtr(e.Version),
		GoVersion:           clonePtr(e.GoVersion),
		OperatingSystem:     clonePtr(e.OperatingSystem),
		LogLevel:            clonePtr(e.LogLevel),
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
