package backend

import (
	"encoding/json"
	"fmt"
	"os"
)

// TableBackend serves probabilities from a dense grid exported from the
// trained model: probabilities[systemIdx][playerIdx].
type TableBackend struct {
	*Vocabulary
	probabilities [][]float64
}

type tableFile struct {
	SystemWords   []string    `json:"system_words"`
	PlayerWords   []string    `json:"player_words"`
	Probabilities [][]float64 `json:"probabilities"`
}

func NewTableBackend(vocab *Vocabulary, probabilities [][]float64) (*TableBackend, error) {
	if len(probabilities) != len(vocab.SystemWords) {
		return nil, fmt.Errorf("%d rows for %d system words: %w", len(probabilities), len(vocab.SystemWords), ErrShapeMismatch)
	}
	for i, row := range probabilities {
		if len(row) != len(vocab.PlayerWords) {
			return nil, fmt.Errorf("row %d has %d columns for %d player words: %w", i, len(row), len(vocab.PlayerWords), ErrShapeMismatch)
		}
		for j, p := range row {
			if p < 0 || p > 1 {
				return nil, fmt.Errorf("probability[%d][%d] = %g outside [0,1]", i, j, p)
			}
		}
	}
	return &TableBackend{Vocabulary: vocab, probabilities: probabilities}, nil
}

// LoadTableFile reads a probability grid export.
func LoadTableFile(path string) (*TableBackend, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read probability table: %w", err)
	}
	var f tableFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse probability table: %w", err)
	}
	vocab, err := NewVocabulary(f.SystemWords, f.PlayerWords)
	if err != nil {
		return nil, err
	}
	return NewTableBackend(vocab, f.Probabilities)
}

func (t *TableBackend) PredictProbability(systemIdx, playerIdx int) (float64, error) {
	if systemIdx < 0 || systemIdx >= len(t.probabilities) {
		return 0, fmt.Errorf("system index %d out of range", systemIdx)
	}
	row := t.probabilities[systemIdx]
	if playerIdx < 0 || playerIdx >= len(row) {
		return 0, fmt.Errorf("player index %d out of range", playerIdx)
	}
	return row[playerIdx], nil
}

func (t *TableBackend) Close() error { return nil }
