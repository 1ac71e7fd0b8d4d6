// Package backend holds the predictor backends that wrap an offline-trained
// success classifier behind duel.Backend.
package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"wordduel/duel"
	"wordduel/word"
)

var (
	ErrEmptyVocabulary = errors.New("vocabulary is empty")
	ErrShapeMismatch   = errors.New("probability table shape does not match vocabulary")
)

// Vocabulary maps system and player words to the indexes the classifier was
// trained with. The file layout is the word_indexes.json written by training.
type Vocabulary struct {
	SystemWords []string `json:"system_words"`
	PlayerWords []string `json:"player_words"`

	system map[string]int
	player map[string]int
}

func NewVocabulary(systemWords, playerWords []string) (*Vocabulary, error) {
	if len(systemWords) == 0 || len(playerWords) == 0 {
		return nil, ErrEmptyVocabulary
	}
	v := &Vocabulary{SystemWords: systemWords, PlayerWords: playerWords}
	v.build()
	return v, nil
}

// LoadVocabularyFile reads word_indexes.json.
func LoadVocabularyFile(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read word indexes: %w", err)
	}
	var v Vocabulary
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse word indexes: %w", err)
	}
	return NewVocabulary(v.SystemWords, v.PlayerWords)
}

func (v *Vocabulary) build() {
	v.system = indexWords(v.SystemWords)
	v.player = indexWords(v.PlayerWords)
}

// indexWords keeps the first index of every key.
func indexWords(words []string) map[string]int {
	idx := make(map[string]int, len(words))
	for i, w := range words {
		key := word.Key(w)
		if _, seen := idx[key]; !seen {
			idx[key] = i
		}
	}
	return idx
}

func (v *Vocabulary) IndexOf(space duel.Space, text string) (int, bool) {
	idx := v.player
	if space == duel.SpaceSystem {
		idx = v.system
	}
	i, ok := idx[word.Key(text)]
	return i, ok
}

func (v *Vocabulary) Size(space duel.Space) int {
	if space == duel.SpaceSystem {
		return len(v.SystemWords)
	}
	return len(v.PlayerWords)
}
