package word

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
)

// Catalog is the fixed, ordered list of words a player may choose from.
// It is immutable once built.
type Catalog struct {
	words []Word
	index map[string]int
}

// NewCatalog validates entries and builds a catalog. Entries keep their
// order; a zero ID is replaced by the 1-based position.
func NewCatalog(entries []Word) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyCatalog
	}
	c := &Catalog{
		words: make([]Word, 0, len(entries)),
		index: make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		e.Text = strings.TrimSpace(e.Text)
		if e.Text == "" {
			return nil, fmt.Errorf("entry %d: blank text: %w", i, ErrInvalidWord)
		}
		if e.Cost < 0 || math.IsNaN(e.Cost) || math.IsInf(e.Cost, 0) {
			return nil, fmt.Errorf("entry %d (%s): cost %v: %w", i, e.Text, e.Cost, ErrInvalidWord)
		}
		key := Key(e.Text)
		if _, dup := c.index[key]; dup {
			return nil, fmt.Errorf("entry %d (%s): %w", i, e.Text, ErrDuplicateWord)
		}
		if e.ID == 0 {
			e.ID = i + 1
		}
		e.Category = CategoryOf(e.Text)
		c.index[key] = len(c.words)
		c.words = append(c.words, e)
	}
	return c, nil
}

// LoadCatalogFile reads a player_words.json style array of {text, cost}.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return LoadCatalogJSON(data)
}

// LoadCatalogJSON parses a catalog from raw JSON bytes.
func LoadCatalogJSON(data []byte) (*Catalog, error) {
	var entries []Word
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse catalog JSON: %w", err)
	}
	return NewCatalog(entries)
}

// Words returns a copy of the catalog in load order.
func (c *Catalog) Words() []Word {
	out := make([]Word, len(c.words))
	copy(out, c.words)
	return out
}

func (c *Catalog) Len() int { return len(c.words) }

// At returns the i-th word in load order.
func (c *Catalog) At(i int) Word { return c.words[i] }

// Lookup finds a word by text, case-insensitively.
func (c *Catalog) Lookup(text string) (Word, bool) {
	i, ok := c.index[Key(text)]
	if !ok {
		return Word{}, false
	}
	return c.words[i], true
}

// Contains reports whether text names a catalog word, case-insensitively.
func (c *Catalog) Contains(text string) bool {
	_, ok := c.index[Key(text)]
	return ok
}

// TierOf returns the tier of a catalog word, or the length-only tier for a
// word the catalog does not price.
func (c *Catalog) TierOf(text string) Tier {
	if w, ok := c.Lookup(text); ok {
		return w.Tier()
	}
	return TierOfUnpriced(text)
}
