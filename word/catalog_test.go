package word

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCatalogJSONAssignsIDsAndCategories(t *testing.T) {
	c, err := LoadCatalogJSON([]byte(`[
		{"text": "Shield", "cost": 10},
		{"text": "Diplomacy", "cost": 25},
		{"text": "Rock", "cost": 5}
	]`))
	if err != nil {
		t.Fatalf("LoadCatalogJSON: %v", err)
	}
	if c.Len() != 3 {
		t.Fatalf("len = %d, want 3", c.Len())
	}
	d, ok := c.Lookup("DIPLOMACY")
	if !ok {
		t.Fatalf("Diplomacy not found")
	}
	if d.ID != 2 || d.Category != CategoryPeace || d.Tier() != TierHighPower {
		t.Fatalf("unexpected Diplomacy entry: %+v tier=%v", d, d.Tier())
	}
	if got := c.At(0).Text; got != "Shield" {
		t.Fatalf("order not kept: first = %s", got)
	}
}

func TestNewCatalogRejectsBadInput(t *testing.T) {
	if _, err := NewCatalog(nil); !errors.Is(err, ErrEmptyCatalog) {
		t.Fatalf("empty: got %v, want ErrEmptyCatalog", err)
	}
	if _, err := NewCatalog([]Word{{Text: "Rock", Cost: 1}, {Text: "rock", Cost: 2}}); !errors.Is(err, ErrDuplicateWord) {
		t.Fatalf("duplicate: got %v, want ErrDuplicateWord", err)
	}
	if _, err := NewCatalog([]Word{{Text: "  ", Cost: 1}}); !errors.Is(err, ErrInvalidWord) {
		t.Fatalf("blank: got %v, want ErrInvalidWord", err)
	}
	if _, err := NewCatalog([]Word{{Text: "Rock", Cost: -1}}); !errors.Is(err, ErrInvalidWord) {
		t.Fatalf("negative cost: got %v, want ErrInvalidWord", err)
	}
}

func TestLoadCatalogFileErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadCatalogFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"text":`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCatalogFile(bad); err == nil {
		t.Fatalf("expected error for malformed file")
	}
}

func TestCatalogTierOfUnknownWord(t *testing.T) {
	c, err := NewCatalog([]Word{{Text: "Rock", Cost: 5}})
	if err != nil {
		t.Fatal(err)
	}
	if got := c.TierOf("War"); got != TierNeutral {
		t.Fatalf("TierOf(War) = %v, want neutral", got)
	}
	if got := c.TierOf("rock"); got != TierNeutral {
		t.Fatalf("TierOf(rock) = %v, want neutral", got)
	}
}

func TestCatalogContainsFoldsCase(t *testing.T) {
	c, err := NewCatalog([]Word{{Text: "Diplomacy", Cost: 25}, {Text: "Nuclear Bomb", Cost: 45}})
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}
	for _, text := range []string{"diplomacy", " DIPLOMACY ", "nuclear bomb"} {
		if !c.Contains(text) {
			t.Fatalf("expected Contains(%q) to be true", text)
		}
	}
	if c.Contains("Catapult") {
		t.Fatalf("expected Contains(Catapult) to be false")
	}
}
