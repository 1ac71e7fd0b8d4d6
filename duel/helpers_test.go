package duel

import (
	"testing"

	"github.com/stretchr/testify/require"

	"wordduel/word"
)

// stubBackend knows every word it was built with and scores pairs with prob.
type stubBackend struct {
	system []string
	player []string
	prob   func(system, player string) float64
	err    error
}

func newStubBackend(system, player []string, prob func(system, player string) float64) *stubBackend {
	return &stubBackend{system: system, player: player, prob: prob}
}

func (b *stubBackend) IndexOf(space Space, text string) (int, bool) {
	vocab := b.player
	if space == SpaceSystem {
		vocab = b.system
	}
	key := word.Key(text)
	for i, w := range vocab {
		if word.Key(w) == key {
			return i, true
		}
	}
	return 0, false
}

func (b *stubBackend) PredictProbability(systemIdx, playerIdx int) (float64, error) {
	if b.err != nil {
		return 0, b.err
	}
	return b.prob(b.system[systemIdx], b.player[playerIdx]), nil
}

func constProb(p float64) func(string, string) float64 {
	return func(string, string) float64 { return p }
}

func mustCatalog(t *testing.T, entries ...word.Word) *word.Catalog {
	t.Helper()
	c, err := word.NewCatalog(entries)
	require.NoError(t, err)
	return c
}

func texts(c *word.Catalog) []string {
	out := make([]string, 0, c.Len())
	for _, w := range c.Words() {
		out = append(out, w.Text)
	}
	return out
}

func scenarioCatalog(t *testing.T) *word.Catalog {
	return mustCatalog(t,
		word.Word{Text: "Shield", Cost: 10},
		word.Word{Text: "Diplomacy", Cost: 25},
		word.Word{Text: "Rock", Cost: 5},
	)
}

func mustLookup(t *testing.T, c *word.Catalog, text string) word.Word {
	t.Helper()
	w, ok := c.Lookup(text)
	require.True(t, ok, "word %q not in catalog", text)
	return w
}
