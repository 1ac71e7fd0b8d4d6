package duel

import "wordduel/word"

// Mode names the selection strategy an engine runs with.
type Mode string

const (
	ModeExpectedCost Mode = "expected_cost"
	ModeAffinity     Mode = "affinity"
)

// RoundOutcome is the only unit of feedback.
type RoundOutcome struct {
	SystemWord string `json:"system_word"`
	ChosenWord string `json:"chosen_word"`
	Success    bool   `json:"success"`
}

// CandidateScore is the per-round evaluation of one catalog word. It is
// recomputed on every call and never persisted.
type CandidateScore struct {
	Word         word.Word `json:"word"`
	Probability  float64   `json:"probability"`
	AdjustedCost float64   `json:"adjusted_cost"`
	ExpectedCost float64   `json:"expected_cost"`
	FinalScore   float64   `json:"final_score"`

	// Affinity scoring only.
	Affinity     float64 `json:"affinity,omitempty"`
	ClusterBonus float64 `json:"cluster_bonus,omitempty"`
	LearnedCost  float64 `json:"learned_cost,omitempty"`
	Total        float64 `json:"total,omitempty"`
}

// Decision is what Engine.Decide returns.
type Decision struct {
	System string           `json:"system"`
	Choice word.Word        `json:"choice"`
	Score  CandidateScore   `json:"score"`
	Ranked []CandidateScore `json:"ranked"`
	Mode   Mode             `json:"mode"`
}
