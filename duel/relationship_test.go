package duel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReinforceIsInvertible(t *testing.T) {
	c := scenarioCatalog(t)
	m := NewRelationshipMatrix(c, DefaultConfig())

	for _, cand := range []string{"Diplomacy", "Rock", "Shield"} {
		before := m.Score("war", cand)
		m.Reinforce("War", cand, true)
		require.InDelta(t, before+1, m.Score("war", cand), 1e-12)
		m.Reinforce("War", cand, false)
		require.InDelta(t, before, m.Score("war", cand), 1e-12)
	}
}

func TestReinforcePropagatesToTierMates(t *testing.T) {
	c := scenarioCatalog(t)
	m := NewRelationshipMatrix(c, DefaultConfig())

	// Rock and Shield are both neutral; Diplomacy is high_power.
	m.Reinforce("War", "Rock", true)
	assert.InDelta(t, 1.0, m.Score("War", "Rock"), 1e-12)
	assert.InDelta(t, 0.2, m.Score("War", "Shield"), 1e-12)
	assert.Zero(t, m.Score("War", "Diplomacy"))

	m.Reinforce("War", "Shield", false)
	assert.InDelta(t, 0.8, m.Score("War", "Rock"), 1e-12)
	assert.InDelta(t, -0.8, m.Score("War", "Shield"), 1e-12)

	// direction matters
	assert.Zero(t, m.Score("Rock", "War"))
	assert.Zero(t, m.Score("Flood", "Rock"))
}

func TestAffinityPriorSeedsCounterPairs(t *testing.T) {
	c := scenarioCatalog(t)
	cfg := DefaultConfig()
	cfg.AffinityPrior = 0.5
	m := NewRelationshipMatrix(c, cfg)

	// neutral counters high_power; high_power counters neutral.
	assert.Equal(t, 0.5, m.Score("Rock", "Diplomacy"))
	assert.Equal(t, 0.5, m.Score("Diplomacy", "Shield"))
	assert.Zero(t, m.Score("Rock", "Shield"))
	// unknown system words have no prior
	assert.Zero(t, m.Score("War", "Diplomacy"))
}

func TestRowsAreCopies(t *testing.T) {
	m := NewRelationshipMatrix(scenarioCatalog(t), DefaultConfig())
	m.Reinforce("War", "Rock", true)
	rows := m.Rows()
	rows["war"]["rock"] = 99
	assert.InDelta(t, 1.0, m.Score("War", "Rock"), 1e-12)
}
