package duel

import (
	"math"
	"sort"

	"wordduel/word"
)

// AffinitySelector scores candidates from the learned relationship matrix,
// the tier counter table, learned cost and a log-damped usage penalty. It is
// used when no trained predictor is available.
type AffinitySelector struct{}

func NewAffinitySelector() *AffinitySelector { return &AffinitySelector{} }

func (s *AffinitySelector) Mode() Mode { return ModeAffinity }

// Rank scores every candidate other than the system word, highest total first.
// Equal totals keep catalog order.
func (s *AffinitySelector) Rank(view View) []CandidateScore {
	cfg := view.Config
	sysKey := word.Key(view.System)
	sysTier := view.Catalog.TierOf(view.System)

	words := view.Catalog.Words()
	ranked := make([]CandidateScore, 0, len(words))
	for _, w := range words {
		if w.Key() == sysKey {
			continue
		}
		affinity := view.Affinity.Score(view.System, w.Text)
		bonus := 0.0
		if word.Counters(w.Tier(), sysTier) {
			bonus = cfg.ClusterBonus
		}
		learned := view.Costs.LearnedCost(w)
		usagePenalty := math.Log(float64(view.Costs.Usage(w)) + 1)
		ranked = append(ranked, CandidateScore{
			Word:         w,
			AdjustedCost: view.Costs.AdjustedCost(w),
			Affinity:     affinity,
			ClusterBonus: bonus,
			LearnedCost:  learned,
			Total:        affinity*cfg.AffinityWeight + bonus - learned/2 - usagePenalty,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Total > ranked[j].Total
	})
	return ranked
}

func (s *AffinitySelector) Pick(_ View, ranked []CandidateScore) CandidateScore {
	return ranked[0]
}
