package word

// Tier is the coarse cost/length bucket used by the affinity scorer.
type Tier byte

const (
	TierNeutral   Tier = 0
	TierLowCost   Tier = 1
	TierHighPower Tier = 2
	TierComplex   Tier = 3
)

var TierDictionary = map[Tier]string{
	TierNeutral:   "neutral",
	TierLowCost:   "low_cost",
	TierHighPower: "high_power",
	TierComplex:   "complex",
}

func (t Tier) String() string {
	if s, ok := TierDictionary[t]; ok {
		return s
	}
	return "?"
}

const (
	lowCostBelow    = 5
	highPowerAbove  = 15
	complexLongerBy = 7
)

// TierOf buckets a word by cost first, then by length.
func TierOf(cost float64, length int) Tier {
	switch {
	case cost < lowCostBelow:
		return TierLowCost
	case cost > highPowerAbove:
		return TierHighPower
	case length > complexLongerBy:
		return TierComplex
	default:
		return TierNeutral
	}
}

// TierOfUnpriced tiers a word with no known cost by length alone.
func TierOfUnpriced(text string) Tier {
	if Length(text) > complexLongerBy {
		return TierComplex
	}
	return TierNeutral
}

var counterTable = map[Tier][]Tier{
	TierLowCost:   {TierHighPower, TierComplex},
	TierHighPower: {TierNeutral, TierComplex},
	TierComplex:   {TierLowCost},
	TierNeutral:   {TierHighPower},
}

// Counters reports whether tier a counters tier b. The relation is not symmetric.
func Counters(a, b Tier) bool {
	for _, t := range counterTable[a] {
		if t == b {
			return true
		}
	}
	return false
}
