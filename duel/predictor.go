package duel

import (
	"math"

	"go.uber.org/zap"

	"wordduel/word"
)

// Space selects which vocabulary a word is looked up in.
type Space byte

const (
	SpaceSystem Space = 0
	SpacePlayer Space = 1
)

func (s Space) String() string {
	if s == SpaceSystem {
		return "system"
	}
	return "player"
}

// Backend is an externally trained classifier scoring (system, player) pairs.
// Implementations must be safe for concurrent use.
type Backend interface {
	// IndexOf returns the vocabulary index of text, or false when unknown.
	IndexOf(space Space, text string) (int, bool)
	// PredictProbability returns P(player word beats system word) in [0,1].
	PredictProbability(systemIdx, playerIdx int) (float64, error)
}

type categoryPair [2]word.Category

var categoryBoosts = map[categoryPair]float64{
	{word.CategoryNatural, word.CategoryMedical}: 1.3,
	{word.CategoryAnimal, word.CategoryWeapon}:   1.3,
	{word.CategoryWar, word.CategoryPeace}:       1.5,
}

const warPeaceBoost = 1.5

// forcedAgainstWar are the counters that always score 0.9 against "war".
var forcedAgainstWar = map[string]float64{
	"peace":     0.9,
	"diplomacy": 0.9,
}

// SuccessPredictor turns backend output into a capped, rule-adjusted probability.
type SuccessPredictor struct {
	backend Backend
	cfg     Config
	logger  *zap.Logger
}

func NewSuccessPredictor(backend Backend, cfg Config, logger *zap.Logger) (*SuccessPredictor, error) {
	if backend == nil {
		return nil, ErrNilBackend
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SuccessPredictor{backend: backend, cfg: cfg, logger: logger}, nil
}

// Predict returns the probability that candidate beats system, in [0, cap].
func (p *SuccessPredictor) Predict(system string, candidate word.Word) float64 {
	sysIdx, sysOK := p.backend.IndexOf(SpaceSystem, system)
	candIdx, candOK := p.backend.IndexOf(SpacePlayer, candidate.Text)
	if !sysOK || !candOK {
		prob := p.Fallback(candidate)
		p.logger.Debug("unknown vocabulary, using fallback",
			zap.String("system", system),
			zap.String("candidate", candidate.Text),
			zap.Bool("system_known", sysOK),
			zap.Bool("candidate_known", candOK),
			zap.Float64("probability", prob))
		return prob
	}

	raw, err := p.backend.PredictProbability(sysIdx, candIdx)
	if err != nil || math.IsNaN(raw) {
		prob := p.Fallback(candidate)
		p.logger.Warn("backend prediction failed, using fallback",
			zap.String("system", system),
			zap.String("candidate", candidate.Text),
			zap.Error(err),
			zap.Float64("probability", prob))
		return prob
	}
	return p.shape(system, candidate, clamp01(raw))
}

// Fallback is the deterministic probability for words the backend cannot score.
func (p *SuccessPredictor) Fallback(candidate word.Word) float64 {
	if p.cfg.inSafeRange(candidate.Cost) {
		return p.cfg.FallbackSafe
	}
	return p.cfg.FallbackDefault
}

func (p *SuccessPredictor) shape(system string, candidate word.Word, raw float64) float64 {
	candCat := word.CategoryOf(candidate.Text)
	if word.Key(system) == "war" {
		if forced, ok := forcedAgainstWar[candidate.Key()]; ok {
			return forced
		}
		if candCat == word.CategoryPeace {
			return math.Min(p.cfg.ProbabilityCap, raw*warPeaceBoost)
		}
	}

	boost, ok := categoryBoosts[categoryPair{word.CategoryOf(system), candCat}]
	if !ok {
		boost = 1.0
	}
	return math.Min(p.cfg.ProbabilityCap, raw*boost)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
