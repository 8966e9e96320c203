package result

// Ranker groups rankable solvers into tie groups, best group first. Every
// solver passed in must appear in exactly one group. The slice handed to
// TieGroups is a private copy and may be reordered.
type Ranker interface {
	TieGroups(rankable []*SolverResult) [][]*SolverResult
}

// Rerank replaces the ranking of a finalized result. Statistics are kept;
// only solver ranks and the favorite change.
func (r *BenchmarkResult) Rerank(ranker Ranker) error {
	if ranker == nil {
		return ErrNoRankingStrategy
	}
	if !r.accumulated {
		return ErrNotAccumulated
	}
	r.determineRanking(ranker)
	return nil
}

// determineRanking excludes solvers with failures, ranks the rest and picks
// the favorite. A solver's rank is the number of solvers in strictly better
// groups, so a two-way tie for first is followed by rank 2.
func (r *BenchmarkResult) determineRanking(ranker Ranker) {
	rankable := make([]*SolverResult, 0, len(r.solvers))
	for _, s := range r.solvers {
		s.ranking = nil
		if !s.HasAnyFailure() {
			rankable = append(rankable, s)
		}
	}

	r.favorite = nil
	if len(rankable) == 0 {
		return
	}
	groups := ranker.TieGroups(rankable)
	ranking := 0
	for _, group := range groups {
		for _, s := range group {
			rank := ranking
			s.ranking = &rank
		}
		ranking += len(group)
	}
	if len(groups) > 0 && len(groups[0]) > 0 {
		r.favorite = groups[0][0]
	}
}
