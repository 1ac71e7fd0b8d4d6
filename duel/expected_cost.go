package duel

import (
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"wordduel/word"
)

// ExpectedCostSelector minimizes adjusted cost plus the probability-weighted
// penalty of losing the round, using a trained predictor.
type ExpectedCostSelector struct {
	predictor *SuccessPredictor
}

func NewExpectedCostSelector(predictor *SuccessPredictor) *ExpectedCostSelector {
	return &ExpectedCostSelector{predictor: predictor}
}

func (s *ExpectedCostSelector) Mode() Mode { return ModeExpectedCost }

func (s *ExpectedCostSelector) score(view View, w word.Word) CandidateScore {
	cfg := view.Config
	prob := s.predictor.Predict(view.System, w)
	adjusted := view.Costs.AdjustedCost(w)
	expected := adjusted + (1-prob)*cfg.Penalty
	bonus := 1.0
	if cfg.inSafeRange(w.Cost) {
		bonus = cfg.SafeBonus
	}
	return CandidateScore{
		Word:         w,
		Probability:  prob,
		AdjustedCost: adjusted,
		ExpectedCost: expected,
		FinalScore:   expected / bonus,
	}
}

// Rank returns the viable candidates (probability above the floor) sorted by
// final score, then probability descending, then adjusted cost. When nothing
// is viable every candidate is returned.
func (s *ExpectedCostSelector) Rank(view View) []CandidateScore {
	words := view.Catalog.Words()
	scores := make([]CandidateScore, len(words))

	threshold := view.Config.ParallelThreshold
	if threshold > 0 && len(words) >= threshold {
		var g errgroup.Group
		g.SetLimit(runtime.GOMAXPROCS(0))
		for i, w := range words {
			g.Go(func() error {
				scores[i] = s.score(view, w)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, w := range words {
			scores[i] = s.score(view, w)
		}
	}

	viable := make([]CandidateScore, 0, len(scores))
	for _, c := range scores {
		if c.Probability > view.Config.ViabilityFloor {
			viable = append(viable, c)
		}
	}
	if len(viable) == 0 {
		viable = scores
	}

	sort.SliceStable(viable, func(i, j int) bool {
		a, b := viable[i], viable[j]
		if a.FinalScore != b.FinalScore {
			return a.FinalScore < b.FinalScore
		}
		if a.Probability != b.Probability {
			return a.Probability > b.Probability
		}
		return a.AdjustedCost < b.AdjustedCost
	})
	return viable
}

// Pick takes rank 1, except against "war" where the first peace word among
// the top candidates wins.
func (s *ExpectedCostSelector) Pick(view View, ranked []CandidateScore) CandidateScore {
	top := ranked
	if k := view.Config.TopK; len(top) > k {
		top = top[:k]
	}
	if word.Key(view.System) == "war" {
		for _, c := range top {
			if c.Word.Category == word.CategoryPeace {
				return c
			}
		}
	}
	return top[0]
}
