package match

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"wordduel/duel"
	"wordduel/internal/codec"
	"wordduel/internal/gameclient"
	"wordduel/internal/ledger"
	"wordduel/word"
)

type fakeGame struct {
	words     []string
	verdicts  []bool
	submitted []int
	last      int
}

func (f *fakeGame) WaitForRound(_ context.Context, round int) (gameclient.RoundWord, error) {
	if round > len(f.words) {
		return gameclient.RoundWord{}, gameclient.ErrRoundPassed
	}
	f.last = round
	return gameclient.RoundWord{Round: round, Word: f.words[round-1]}, nil
}

func (f *fakeGame) Submit(_ context.Context, round, wordID int) error {
	f.submitted = append(f.submitted, wordID)
	return nil
}

func (f *fakeGame) Status(context.Context) (gameclient.Status, error) {
	won := json.RawMessage("false")
	if f.verdicts[f.last-1] {
		won = json.RawMessage("true")
	}
	return gameclient.Status{P1Word: json.RawMessage(`"x"`), P1Won: won}, nil
}

type recordingPublisher struct {
	mu    sync.Mutex
	types []string
}

func (p *recordingPublisher) Publish(typ string, _ *structpb.Struct) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, typ)
}

func newEngine(t *testing.T) *duel.Engine {
	t.Helper()
	catalog, err := word.NewCatalog([]word.Word{
		{Text: "Shield", Cost: 10},
		{Text: "Diplomacy", Cost: 25},
		{Text: "Rock", Cost: 5},
	})
	require.NoError(t, err)
	e, err := duel.New(catalog, nil, duel.DefaultConfig(), nil)
	require.NoError(t, err)
	return e
}

func TestPlayChargesPenaltyOnLoss(t *testing.T) {
	engine := newEngine(t)
	game := &fakeGame{words: []string{"War", "Flood"}, verdicts: []bool{false, true}}
	store := ledger.NewMemoryService(10)
	pub := &recordingPublisher{}

	r := NewRunner(engine, game, store, pub, 30, nil)
	summary, err := r.Play(context.Background(), 2)
	require.NoError(t, err)

	require.Len(t, summary.Rounds, 2)
	first, second := summary.Rounds[0], summary.Rounds[1]
	assert.False(t, first.Won)
	assert.Equal(t, first.Chosen.Cost+30, first.Cost)
	assert.True(t, second.Won)
	assert.Equal(t, second.Chosen.Cost, second.Cost)
	assert.Equal(t, first.Cost+second.Cost, summary.TotalCost)
	assert.Equal(t, 1, summary.Wins)
	assert.Equal(t, r.SessionID(), summary.SessionID)

	assert.Equal(t, []int{first.Chosen.ID, second.Chosen.ID}, game.submitted)
	assert.Len(t, engine.History(), 2)
	assert.Equal(t, []string{codec.TypeDecision, codec.TypeOutcome, codec.TypeDecision, codec.TypeOutcome}, pub.types)

	rounds, err := store.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rounds, 2)
	assert.Equal(t, "Flood", rounds[0].SystemWord)
	assert.Equal(t, r.SessionID(), rounds[0].SessionID)
	assert.Equal(t, 2, rounds[0].Round)
}

func TestPlayStopsOnPollError(t *testing.T) {
	engine := newEngine(t)
	game := &fakeGame{words: []string{"War"}, verdicts: []bool{true}}

	summary, err := NewRunner(engine, game, nil, nil, 30, nil).Play(context.Background(), 3)
	if !errors.Is(err, gameclient.ErrRoundPassed) {
		t.Fatalf("expected ErrRoundPassed, got %v", err)
	}
	assert.Len(t, summary.Rounds, 1)
}

func TestPlayWithoutClient(t *testing.T) {
	_, err := NewRunner(newEngine(t), nil, nil, nil, 30, nil).Play(context.Background(), 1)
	require.Error(t, err)
}

func TestSimulateDemoScript(t *testing.T) {
	engine := newEngine(t)
	summary, err := NewRunner(engine, nil, nil, nil, 30, nil).Simulate(context.Background(), DemoScript())
	require.NoError(t, err)
	require.Len(t, summary.Rounds, 3)
	assert.Equal(t, 2, summary.Wins)
	assert.Equal(t, "Virus", summary.Rounds[1].System)
	assert.False(t, summary.Rounds[1].Won)

	history := engine.History()
	require.Len(t, history, 3)
	assert.Equal(t, "Lion", history[0].SystemWord)
	assert.True(t, history[0].Success)
	assert.NotZero(t, engine.Relationship("Lion", history[0].ChosenWord))
}

func TestWarmStartSkipsUnknownWords(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryService(10)
	rounds := []ledger.Round{
		{ID: "a", Round: 1, SystemWord: "War", ChosenWord: "Diplomacy", Success: true},
		{ID: "b", Round: 2, SystemWord: "War", ChosenWord: "Catapult", Success: true},
		{ID: "c", Round: 3, SystemWord: "War", ChosenWord: "Rock", Success: false},
	}
	for _, r := range rounds {
		require.NoError(t, store.Append(ctx, r))
	}

	engine := newEngine(t)
	n, err := WarmStart(ctx, engine, store, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, engine.History(), 2)
	assert.Greater(t, engine.Relationship("War", "Diplomacy"), engine.Relationship("War", "Rock"))

	n, err = WarmStart(ctx, engine, nil, 0, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPlayAgainstHTTPServer(t *testing.T) {
	var mu sync.Mutex
	round := 1
	var lastWord int
	mux := http.NewServeMux()
	mux.HandleFunc("/get-word", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"round": round, "word": "War"})
	})
	mux.HandleFunc("/submit-word", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			WordID  int `json:"word_id"`
			RoundID int `json:"round_id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		lastWord = body.WordID
		mu.Unlock()
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		// Diplomacy (id 2) wins, everything else loses.
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": map[string]any{"p1_word": "x", "p1_won": lastWord == 2},
		})
		round++
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := gameclient.DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.PlayerID = "tester"
	cfg.PollInterval = 5 * time.Millisecond
	client, err := gameclient.New(cfg, nil)
	require.NoError(t, err)

	engine := newEngine(t)
	summary, err := NewRunner(engine, client, nil, nil, 30, nil).Play(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, summary.Rounds, 3)
	for _, rr := range summary.Rounds {
		assert.Equal(t, rr.Chosen.Text == "Diplomacy", rr.Won)
	}
}
