package word

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Word is one playable catalog entry.
type Word struct {
	ID       int      `json:"id"`
	Text     string   `json:"text"`
	Cost     float64  `json:"cost"`
	Category Category `json:"-"`
}

// Key returns the identity of a word: NFKC-normalized, trimmed and case-folded.
func Key(text string) string {
	normed := strings.TrimSpace(norm.NFKC.String(text))
	return cases.Fold().String(normed)
}

// Length counts the runes of the word key.
func Length(text string) int {
	return utf8.RuneCountInString(Key(text))
}

func (w Word) Key() string { return Key(w.Text) }

func (w Word) Tier() Tier {
	return TierOf(w.Cost, Length(w.Text))
}

// InRange reports whether the base cost lies in the closed interval [lo, hi].
func (w Word) InRange(lo, hi float64) bool {
	return w.Cost >= lo && w.Cost <= hi
}

func (w Word) String() string {
	return fmt.Sprintf("%s(%g)", w.Text, w.Cost)
}
