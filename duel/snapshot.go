package duel

// WordState is the diagnostic view of one catalog word.
type WordState struct {
	ID           int     `json:"id"`
	Text         string  `json:"text"`
	Cost         float64 `json:"cost"`
	Category     string  `json:"category"`
	Tier         string  `json:"tier"`
	Usage        int     `json:"usage"`
	Adjustment   float64 `json:"adjustment"`
	AdjustedCost float64 `json:"adjusted_cost"`
	LearnedCost  float64 `json:"learned_cost"`
}

// Snapshot is a read-only copy of the engine's adaptive state.
type Snapshot struct {
	Mode          Mode                          `json:"mode"`
	Rounds        int                           `json:"rounds"`
	Successes     int                           `json:"successes"`
	Words         []WordState                   `json:"words"`
	Relationships map[string]map[string]float64 `json:"relationships"`
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		Mode:          e.selector.Mode(),
		Rounds:        len(e.history),
		Relationships: e.affinity.Rows(),
	}
	for _, h := range e.history {
		if h.Success {
			snap.Successes++
		}
	}
	for _, w := range e.catalog.Words() {
		snap.Words = append(snap.Words, WordState{
			ID:           w.ID,
			Text:         w.Text,
			Cost:         w.Cost,
			Category:     w.Category.String(),
			Tier:         w.Tier().String(),
			Usage:        e.costs.Usage(w),
			Adjustment:   e.costs.Adjustment(w),
			AdjustedCost: e.costs.AdjustedCost(w),
			LearnedCost:  e.costs.LearnedCost(w),
		})
	}
	return snap
}
