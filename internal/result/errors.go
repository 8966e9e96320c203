package result

import "errors"

// Configuration errors. These abort the operation before any shared state is
// mutated and are never retried.
var (
	// ErrNoRankingStrategy indicates ranking was requested without a Ranker.
	ErrNoRankingStrategy = errors.New("ranking is impossible: no ranking strategy configured")

	// ErrAlreadyAccumulated indicates AccumulateResults ran twice on one report.
	ErrAlreadyAccumulated = errors.New("results already accumulated")

	// ErrNotAccumulated indicates an operation that needs a finalized result
	// was given a raw one.
	ErrNotAccumulated = errors.New("results not accumulated yet")

	// ErrEmptyMerge indicates Merge was given no runs to seed a report from.
	ErrEmptyMerge = errors.New("cannot merge an empty run list")

	// ErrDetachedRun indicates a run that does not belong to a solver, problem
	// and report, so its origin cannot be resolved.
	ErrDetachedRun = errors.New("run is not attached to a report")

	// ErrBaseNotDirectory indicates the report base path exists as a file.
	ErrBaseNotDirectory = errors.New("benchmark directory exists but is not a directory")

	// ErrBaseNotWritable indicates the report base path cannot be written to.
	ErrBaseNotWritable = errors.New("benchmark directory exists but is not writable")
)
