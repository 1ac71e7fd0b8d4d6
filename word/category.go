package word

// Category is the coarse semantic tag that drives rule-based probability boosts.
type Category byte

const (
	CategoryOther   Category = 0
	CategoryNatural Category = 1
	CategoryWeapon  Category = 2
	CategoryAnimal  Category = 3
	CategoryMedical Category = 4
	CategoryWar     Category = 5
	CategoryPeace   Category = 6
)

var CategoryDictionary = map[Category]string{
	CategoryOther:   "other",
	CategoryNatural: "natural",
	CategoryWeapon:  "weapon",
	CategoryAnimal:  "animal",
	CategoryMedical: "medical",
	CategoryWar:     "war",
	CategoryPeace:   "peace",
}

func (c Category) String() string {
	if s, ok := CategoryDictionary[c]; ok {
		return s
	}
	return "other"
}

// categoryMembers is the closed membership table. Keys are word keys.
var categoryMembers = map[Category][]string{
	CategoryNatural: {"flood", "earthquake", "tornado"},
	CategoryWeapon:  {"sword", "gun", "nuclear bomb"},
	CategoryAnimal:  {"lion", "whale", "bacteria"},
	CategoryMedical: {"vaccine", "virus", "cure"},
	CategoryWar:     {"war", "tank", "soldier"},
	CategoryPeace:   {"peace", "diplomacy", "truce"},
}

var categoryIndex = buildCategoryIndex()

func buildCategoryIndex() map[string]Category {
	idx := make(map[string]Category)
	for cat, members := range categoryMembers {
		for _, m := range members {
			idx[Key(m)] = cat
		}
	}
	return idx
}

// CategoryOf maps a word to its category, or CategoryOther when it is not
// listed. Matching is case-insensitive and exact.
func CategoryOf(text string) Category {
	if cat, ok := categoryIndex[Key(text)]; ok {
		return cat
	}
	return CategoryOther
}

// Members returns the words listed under a category.
func Members(c Category) []string {
	out := make([]string, len(categoryMembers[c]))
	copy(out, categoryMembers[c])
	return out
}
