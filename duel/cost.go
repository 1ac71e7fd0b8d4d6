package duel

import (
	"math"

	"wordduel/word"
)

// CostModel tracks per-word usage and a learned, decaying cost correction.
// It is not safe for concurrent mutation; Engine serializes access.
type CostModel struct {
	usage      map[string]int
	adjustment map[string]float64

	usageStep    float64
	usageCap     float64
	learningRate float64
	decay        float64
}

func NewCostModel(cfg Config) *CostModel {
	return &CostModel{
		usage:        make(map[string]int),
		adjustment:   make(map[string]float64),
		usageStep:    cfg.UsageStep,
		usageCap:     cfg.UsageCap,
		learningRate: cfg.LearningRate,
		decay:        cfg.DecayFactor,
	}
}

// AdjustedCost inflates the base cost by usage, capped at usageCap of base.
func (m *CostModel) AdjustedCost(w word.Word) float64 {
	uses := float64(m.usage[w.Key()])
	return w.Cost * (1 + math.Min(m.usageCap, uses*m.usageStep))
}

// LearnedCost applies the learned adjustment: cost × (1 − adjustment).
func (m *CostModel) LearnedCost(w word.Word) float64 {
	return w.Cost * (1 - m.adjustment[w.Key()])
}

func (m *CostModel) Usage(w word.Word) int { return m.usage[w.Key()] }

func (m *CostModel) Adjustment(w word.Word) float64 { return m.adjustment[w.Key()] }

// Use records one more choice of w.
func (m *CostModel) Use(w word.Word) {
	m.usage[w.Key()]++
}

type tally struct {
	successes int
	failures  int
}

// Adjust recomputes the adjustment of every word from the full history.
// Words without observations are left untouched.
func (m *CostModel) Adjust(words []word.Word, history []RoundOutcome) {
	tallies := make(map[string]*tally)
	for _, h := range history {
		key := word.Key(h.ChosenWord)
		t := tallies[key]
		if t == nil {
			t = &tally{}
			tallies[key] = t
		}
		if h.Success {
			t.successes++
		} else {
			t.failures++
		}
	}

	for _, w := range words {
		t := tallies[w.Key()]
		if t == nil || t.successes+t.failures == 0 {
			continue
		}
		rate := float64(t.successes) / float64(t.successes+t.failures)
		delta := (rate - 0.5) * m.learningRate
		m.adjustment[w.Key()] = (m.adjustment[w.Key()] + delta) * m.decay
	}
}
