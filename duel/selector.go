package duel

import "wordduel/word"

// View is the read-only state a Selector scores against. It is only valid
// for the duration of one Engine call.
type View struct {
	System   string
	Catalog  *word.Catalog
	Costs    *CostModel
	Affinity *RelationshipMatrix
	Config   Config
}

// Selector is the contract both selection strategies implement.
type Selector interface {
	// Rank scores the candidates for view.System, best first. It must not
	// mutate any state reachable from view.
	Rank(view View) []CandidateScore
	// Pick chooses one of the ranked candidates. ranked is never empty.
	Pick(view View, ranked []CandidateScore) CandidateScore
	// Mode identifies the strategy for diagnostics.
	Mode() Mode
}
