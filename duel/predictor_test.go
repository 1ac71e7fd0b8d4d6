package duel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordduel/word"
)

func newPredictor(t *testing.T, b Backend) *SuccessPredictor {
	t.Helper()
	p, err := NewSuccessPredictor(b, DefaultConfig(), nil)
	require.NoError(t, err)
	return p
}

func TestNewSuccessPredictorRequiresBackend(t *testing.T) {
	_, err := NewSuccessPredictor(nil, DefaultConfig(), nil)
	require.ErrorIs(t, err, ErrNilBackend)
}

func TestPredictFallbackIsDeterministic(t *testing.T) {
	p := newPredictor(t, newStubBackend([]string{"Hammer"}, []string{"Rock"}, constProb(0.99)))

	cases := map[float64]float64{
		16.99: 0.5,
		17:    0.7,
		24:    0.7,
		32:    0.7,
		32.5:  0.5,
		0:     0.5,
	}
	for cost, want := range cases {
		unknown := word.Word{Text: "Unlisted", Cost: cost}
		for i := 0; i < 3; i++ {
			require.Equal(t, want, p.Predict("Hammer", unknown), "cost %v", cost)
		}
	}
	// unknown system word with a known candidate also falls back
	require.Equal(t, 0.5, p.Predict("Meteor", word.Word{Text: "Rock", Cost: 5}))
}

func TestPredictBoostsNaturalAgainstMedical(t *testing.T) {
	b := newStubBackend([]string{"Flood"}, []string{"Vaccine", "Rock"}, constProb(0.6))
	p := newPredictor(t, b)

	assert.InDelta(t, 0.78, p.Predict("Flood", word.Word{Text: "Vaccine", Cost: 20}), 1e-12)
	assert.InDelta(t, 0.6, p.Predict("Flood", word.Word{Text: "Rock", Cost: 5}), 1e-12)

	b.prob = constProb(0.9)
	assert.Equal(t, 0.95, p.Predict("flood", word.Word{Text: "vaccine", Cost: 20}))
}

func TestPredictCapsEveryProbability(t *testing.T) {
	p := newPredictor(t, newStubBackend([]string{"Hammer"}, []string{"Rock"}, constProb(1)))
	assert.Equal(t, 0.95, p.Predict("Hammer", word.Word{Text: "Rock", Cost: 5}))
}

func TestPredictWarOverrides(t *testing.T) {
	b := newStubBackend(
		[]string{"War", "Tank"},
		[]string{"Peace", "Diplomacy", "Truce", "Rock"},
		constProb(0.2),
	)
	p := newPredictor(t, b)

	assert.Equal(t, 0.9, p.Predict("War", word.Word{Text: "Peace", Cost: 30}))
	assert.Equal(t, 0.9, p.Predict("WAR", word.Word{Text: "Diplomacy", Cost: 25}))
	assert.InDelta(t, 0.3, p.Predict("war", word.Word{Text: "Truce", Cost: 20}), 1e-12)
	assert.InDelta(t, 0.2, p.Predict("War", word.Word{Text: "Rock", Cost: 5}), 1e-12)

	// Tank is in the war category but is not literally "war": plain pair boost.
	assert.InDelta(t, 0.3, p.Predict("Tank", word.Word{Text: "Diplomacy", Cost: 25}), 1e-12)
}

func TestPredictBackendErrorFallsBack(t *testing.T) {
	b := newStubBackend([]string{"Hammer"}, []string{"Rock"}, constProb(0.9))
	b.err = errors.New("session closed")
	p := newPredictor(t, b)
	assert.Equal(t, 0.7, p.Predict("Hammer", word.Word{Text: "Rock", Cost: 20}))
}
