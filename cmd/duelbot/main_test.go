package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordduel/internal/match"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	catalog := filepath.Join(dir, "words.json")
	require.NoError(t, os.WriteFile(catalog, []byte(`[
  {"text": "Shield", "cost": 10},
  {"text": "Diplomacy", "cost": 25},
  {"text": "Rock", "cost": 5}
]`), 0o644))

	cfg := filepath.Join(dir, "duelbot.yaml")
	body := "catalog_path: " + catalog + "\n" +
		"ledger:\n  mode: memory\n" +
		"simulate:\n  - {system: War, win: false}\n  - {system: War, win: true}\n"
	require.NoError(t, os.WriteFile(cfg, []byte(body), 0o644))
	return cfg
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSimulateCommand(t *testing.T) {
	cfg := writeTestConfig(t)
	out, err := execute(t, "--config", cfg, "simulate")
	require.NoError(t, err)
	assert.Contains(t, out, "ROUND")
	assert.Contains(t, out, "1/2 won")
	assert.Contains(t, out, `relationships for "War"`)
}

func TestRankCommand(t *testing.T) {
	cfg := writeTestConfig(t)
	out, err := execute(t, "--config", cfg, "rank", "War")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, `affinity vs "War"`), out)
	for _, w := range []string{"Shield", "Diplomacy", "Rock"} {
		assert.Contains(t, out, w)
	}
}

func TestTokenHashCommand(t *testing.T) {
	out, err := execute(t, "token-hash", "s3cret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "$2"), out)
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, match.Summary{
		SessionID: "abc",
		Rounds: []match.RoundResult{
			{Round: 1, System: "Virus", Won: false, Cost: 35, TotalCost: 35},
		},
		TotalCost: 35,
	})
	assert.Contains(t, buf.String(), "lost")
	assert.Contains(t, buf.String(), "session abc: 0/1 won, total cost 35")
}
