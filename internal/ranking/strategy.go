// Package ranking provides the interchangeable solver ranking strategies: a
// best-first comparator or a weight factory. A Strategy binds exactly one.
package ranking

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/signalnine/solverbench/internal/result"
)

var (
	// ErrNoStrategy indicates neither a comparator nor a weight factory was given.
	ErrNoStrategy = errors.New("ranking needs a comparator or a weight factory")

	// ErrAmbiguousStrategy indicates both a comparator and a weight factory were given.
	ErrAmbiguousStrategy = errors.New("ranking accepts a comparator or a weight factory, not both")

	// ErrUnknownPolicy indicates a ranking policy name that is not registered.
	ErrUnknownPolicy = errors.New("unknown ranking policy")
)

// Comparator orders solvers best first: it returns a negative number when a
// ranks ahead of b and zero when they tie.
type Comparator func(a, b *result.SolverResult) int

// Weight is an orderable ranking weight. Higher weights rank ahead.
type Weight interface {
	Compare(other Weight) int
}

// WeightFactory derives a solver's weight relative to the whole rankable set.
type WeightFactory func(rankable []*result.SolverResult, solver *result.SolverResult) Weight

// Options selects the ranking strategy. Exactly one field must be set.
type Options struct {
	Comparator    Comparator
	WeightFactory WeightFactory
}

// Strategy is a result.Ranker bound to exactly one ranking strategy.
type Strategy struct {
	comparator    Comparator
	weightFactory WeightFactory
}

var _ result.Ranker = (*Strategy)(nil)

// New validates opts and builds a Strategy.
func New(opts Options) (*Strategy, error) {
	switch {
	case opts.Comparator == nil && opts.WeightFactory == nil:
		return nil, ErrNoStrategy
	case opts.Comparator != nil && opts.WeightFactory != nil:
		return nil, ErrAmbiguousStrategy
	}
	return &Strategy{comparator: opts.Comparator, weightFactory: opts.WeightFactory}, nil
}

// TieGroups implements result.Ranker.
func (s *Strategy) TieGroups(rankable []*result.SolverResult) [][]*result.SolverResult {
	if s.comparator != nil {
		return comparatorGroups(rankable, s.comparator)
	}
	return weightGroups(rankable, s.weightFactory)
}

// comparatorGroups stable-sorts best first and starts a new group whenever
// two neighbours do not compare equal.
func comparatorGroups(rankable []*result.SolverResult, compare Comparator) [][]*result.SolverResult {
	sorted := slices.Clone(rankable)
	slices.SortStableFunc(sorted, compare)

	var groups [][]*result.SolverResult
	for i, solver := range sorted {
		if i == 0 || compare(sorted[i-1], solver) != 0 {
			groups = append(groups, nil)
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], solver)
	}
	return groups
}

// weightGroups buckets solvers by equal weight, highest weight first. Input
// order is kept inside a bucket.
func weightGroups(rankable []*result.SolverResult, factory WeightFactory) [][]*result.SolverResult {
	type weighted struct {
		solver *result.SolverResult
		weight Weight
	}
	entries := make([]weighted, len(rankable))
	for i, solver := range rankable {
		entries[i] = weighted{solver: solver, weight: factory(rankable, solver)}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].weight.Compare(entries[j].weight) > 0
	})

	var groups [][]*result.SolverResult
	for i, e := range entries {
		if i == 0 || entries[i-1].weight.Compare(e.weight) != 0 {
			groups = append(groups, nil)
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], e.solver)
	}
	return groups
}

// Policy names accepted by ByName.
const (
	PolicyTotalScore = "total_score"
	PolicyWorstScore = "worst_score"
	PolicyTotalRank  = "total_rank"
)

// Names lists the registered policy names.
func Names() []string {
	return []string{PolicyTotalScore, PolicyWorstScore, PolicyTotalRank}
}

// ByName builds a Strategy from a registered policy name.
func ByName(name string) (*Strategy, error) {
	switch name {
	case PolicyTotalScore:
		return New(Options{Comparator: TotalScore})
	case PolicyWorstScore:
		return New(Options{Comparator: WorstScore})
	case PolicyTotalRank:
		return New(Options{WeightFactory: TotalRank})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
}
