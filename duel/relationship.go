package duel

import "wordduel/word"

// RelationshipMatrix is a directional system→candidate affinity table learned
// from round outcomes. Unseen pairs score 0.
type RelationshipMatrix struct {
	catalog       *word.Catalog
	rows          map[string]map[string]float64
	pairReward    float64
	clusterReward float64
}

func NewRelationshipMatrix(catalog *word.Catalog, cfg Config) *RelationshipMatrix {
	m := &RelationshipMatrix{
		catalog:       catalog,
		rows:          make(map[string]map[string]float64),
		pairReward:    cfg.PairReward,
		clusterReward: cfg.ClusterReward,
	}
	if cfg.AffinityPrior != 0 {
		m.seed(cfg.AffinityPrior)
	}
	return m
}

// seed gives every catalog word, as a system row, a prior toward the
// catalog words whose tier it counters.
func (m *RelationshipMatrix) seed(prior float64) {
	words := m.catalog.Words()
	for _, sys := range words {
		for _, other := range words {
			if word.Counters(sys.Tier(), other.Tier()) {
				m.add(sys.Key(), other.Key(), prior)
			}
		}
	}
}

func (m *RelationshipMatrix) Score(system, candidate string) float64 {
	return m.rows[word.Key(system)][word.Key(candidate)]
}

// Reinforce moves the pair by ±pairReward and every other word in the
// candidate's tier by ±clusterReward.
func (m *RelationshipMatrix) Reinforce(system, candidate string, success bool) {
	sign := 1.0
	if !success {
		sign = -1.0
	}
	sysKey, candKey := word.Key(system), word.Key(candidate)
	m.add(sysKey, candKey, sign*m.pairReward)

	tier := m.catalog.TierOf(candidate)
	for _, other := range m.catalog.Words() {
		if other.Key() == candKey || other.Tier() != tier {
			continue
		}
		m.add(sysKey, other.Key(), sign*m.clusterReward)
	}
}

func (m *RelationshipMatrix) add(sysKey, candKey string, delta float64) {
	row := m.rows[sysKey]
	if row == nil {
		row = make(map[string]float64)
		m.rows[sysKey] = row
	}
	row[candKey] += delta
}

// Row returns a copy of the learned affinities for one system word.
func (m *RelationshipMatrix) Row(system string) map[string]float64 {
	src := m.rows[word.Key(system)]
	out := make(map[string]float64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Rows returns a deep copy of the whole matrix.
func (m *RelationshipMatrix) Rows() map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(m.rows))
	for sys := range m.rows {
		out[sys] = m.Row(sys)
	}
	return out
}
