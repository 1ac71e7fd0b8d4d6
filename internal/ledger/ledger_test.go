package ledger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordduel/duel"
)

func sampleRounds() []Round {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []Round{
		{ID: "r1", SessionID: "s", Round: 1, SystemWord: "Lion", ChosenWord: "Cage", Success: true, Cost: 12, PlayedAt: base},
		{ID: "r2", SessionID: "s", Round: 2, SystemWord: "Virus", ChosenWord: "Rock", Success: false, Cost: 42, PlayedAt: base.Add(time.Second)},
		{ID: "r3", SessionID: "s", Round: 3, SystemWord: "Earthquake", ChosenWord: "Shield", Success: true, Cost: 17, PlayedAt: base.Add(2 * time.Second)},
	}
}

func exerciseService(t *testing.T, svc Service) {
	t.Helper()
	ctx := context.Background()
	for _, r := range sampleRounds() {
		require.NoError(t, svc.Append(ctx, r))
	}
	// duplicate ids are ignored
	require.NoError(t, svc.Append(ctx, sampleRounds()[0]))

	recent, err := svc.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "r3", recent[0].ID)
	assert.Equal(t, "r2", recent[1].ID)
	assert.Equal(t, 42.0, recent[1].Cost)
	assert.False(t, recent[1].Success)
	assert.True(t, recent[0].PlayedAt.Equal(sampleRounds()[2].PlayedAt))

	all, err := svc.Outcomes(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []duel.RoundOutcome{
		{SystemWord: "Lion", ChosenWord: "Cage", Success: true},
		{SystemWord: "Virus", ChosenWord: "Rock", Success: false},
		{SystemWord: "Earthquake", ChosenWord: "Shield", Success: true},
	}, all)

	tail, err := svc.Outcomes(ctx, 2)
	require.NoError(t, err)
	require.Len(t, tail, 2)
	assert.Equal(t, "Virus", tail[0].SystemWord)
	assert.Equal(t, "Earthquake", tail[1].SystemWord)

	err = svc.Append(ctx, Round{ID: "bad", SystemWord: " ", ChosenWord: "Rock"})
	if !errors.Is(err, ErrInvalidRound) {
		t.Fatalf("expected ErrInvalidRound, got %v", err)
	}
}

func TestMemoryService(t *testing.T) {
	svc := NewMemoryService(100)
	defer svc.Close()
	exerciseService(t, svc)
}

func TestMemoryServiceTrimsToLimit(t *testing.T) {
	svc := NewMemoryService(2)
	ctx := context.Background()
	for _, r := range sampleRounds() {
		require.NoError(t, svc.Append(ctx, r))
	}
	out, err := svc.Outcomes(ctx, 0)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Virus", out[0].SystemWord)
}

func TestSQLiteService(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "rounds.db")
	svc, err := NewSQLiteService(path, 100, nil)
	require.NoError(t, err)
	defer svc.Close()
	exerciseService(t, svc)
}

func TestSQLiteServiceSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rounds.db")
	ctx := context.Background()

	svc, err := NewSQLiteService(path, 2, nil)
	require.NoError(t, err)
	for _, r := range sampleRounds() {
		require.NoError(t, svc.Append(ctx, r))
	}
	require.NoError(t, svc.Close())

	reopened, err := NewSQLiteService(path, 2, nil)
	require.NoError(t, err)
	defer reopened.Close()

	out, err := reopened.Outcomes(ctx, 0)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Virus", out[0].SystemWord)
	assert.Equal(t, "Earthquake", out[1].SystemWord)
}

func TestPostgresService(t *testing.T) {
	dsn := os.Getenv("DUEL_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("DUEL_TEST_POSTGRES_DSN not set")
	}
	svc, err := NewPostgresService(dsn, 0, nil)
	require.NoError(t, err)
	defer svc.Close()
	_, err = svc.db.Exec(`TRUNCATE duel_rounds`)
	require.NoError(t, err)
	exerciseService(t, svc)
}

func TestNewServiceModes(t *testing.T) {
	svc, mode, err := NewService(Config{Mode: "mem"}, nil)
	require.NoError(t, err)
	assert.Equal(t, ModeMemory, mode)
	require.NoError(t, svc.Close())

	svc, mode, err = NewService(Config{Mode: "sqlite", Path: filepath.Join(t.TempDir(), "x.db")}, nil)
	require.NoError(t, err)
	assert.Equal(t, ModeSQLite, mode)
	require.NoError(t, svc.Close())

	_, _, err = NewService(Config{Mode: "redis"}, nil)
	require.Error(t, err)
}
