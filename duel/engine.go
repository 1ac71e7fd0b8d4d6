package duel

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"wordduel/word"
)

// Engine owns all adaptive state for one playing session: usage counts,
// learned cost adjustments, the relationship matrix and the outcome history.
// Every public method is serialized by one mutex, so a round's feedback is
// fully applied before the next round is scored.
type Engine struct {
	mu sync.Mutex

	cfg      Config
	catalog  *word.Catalog
	costs    *CostModel
	affinity *RelationshipMatrix
	selector Selector
	history  []RoundOutcome

	logger *zap.Logger
}

// New builds an engine over a loaded catalog. With a nil backend the engine
// runs the affinity strategy; otherwise it runs the expected-cost strategy.
func New(catalog *word.Catalog, backend Backend, cfg Config, logger *zap.Logger) (*Engine, error) {
	if catalog == nil {
		return nil, ErrNilCatalog
	}
	if catalog.Len() == 0 {
		return nil, word.ErrEmptyCatalog
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("engine")

	var selector Selector = NewAffinitySelector()
	if backend != nil {
		predictor, err := NewSuccessPredictor(backend, cfg, logger.Named("predictor"))
		if err != nil {
			return nil, err
		}
		selector = NewExpectedCostSelector(predictor)
	}

	e := &Engine{
		cfg:      cfg,
		catalog:  catalog,
		costs:    NewCostModel(cfg),
		affinity: NewRelationshipMatrix(catalog, cfg),
		selector: selector,
		logger:   logger,
	}
	logger.Info("engine ready",
		zap.String("mode", string(selector.Mode())),
		zap.Int("catalog", catalog.Len()))
	return e, nil
}

func (e *Engine) Mode() Mode { return e.selector.Mode() }

func (e *Engine) Catalog() *word.Catalog { return e.catalog }

func (e *Engine) view(system string) View {
	return View{
		System:   system,
		Catalog:  e.catalog,
		Costs:    e.costs,
		Affinity: e.affinity,
		Config:   e.cfg,
	}
}

// ChooseWord picks the counter word for this round and records its use.
func (e *Engine) ChooseWord(system string) word.Word {
	return e.Decide(system).Choice
}

// Decide is ChooseWord with the full ranking attached.
func (e *Engine) Decide(system string) Decision {
	e.mu.Lock()
	defer e.mu.Unlock()

	v := e.view(system)
	ranked := e.selector.Rank(v)

	var chosen CandidateScore
	if len(ranked) == 0 {
		// Only reachable in affinity mode when the catalog holds nothing but
		// the system word itself.
		chosen = CandidateScore{Word: e.catalog.At(0), AdjustedCost: e.costs.AdjustedCost(e.catalog.At(0))}
		e.logger.Warn("no candidate besides the system word", zap.String("system", system))
	} else {
		chosen = e.selector.Pick(v, ranked)
	}

	e.costs.Use(chosen.Word)

	e.logger.Debug("chose word",
		zap.String("system", system),
		zap.String("choice", chosen.Word.Text),
		zap.Float64("probability", chosen.Probability),
		zap.Float64("final_score", chosen.FinalScore),
		zap.Float64("total", chosen.Total),
		zap.Int("usage", e.costs.Usage(chosen.Word)))

	return Decision{
		System: system,
		Choice: chosen.Word,
		Score:  chosen,
		Ranked: ranked,
		Mode:   e.selector.Mode(),
	}
}

// Rank scores the candidates for system without touching any state.
func (e *Engine) Rank(system string) []CandidateScore {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selector.Rank(e.view(system))
}

// RecordOutcome feeds a finished round back: the outcome joins the history,
// the relationship matrix is reinforced and every cost adjustment is
// recomputed from the full history.
func (e *Engine) RecordOutcome(o RoundOutcome) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	o, err := e.check(o)
	if err != nil {
		return err
	}
	e.apply(o)
	e.logger.Debug("recorded outcome",
		zap.String("system", o.SystemWord),
		zap.String("chosen", o.ChosenWord),
		zap.Bool("success", o.Success),
		zap.Int("history", len(e.history)))
	return nil
}

// Restore replays persisted outcomes in order. Every outcome is checked
// before any is applied, so a rejected batch leaves the engine untouched.
// Usage counts are session scoped and stay untouched.
func (e *Engine) Restore(outcomes []RoundOutcome) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	checked := make([]RoundOutcome, 0, len(outcomes))
	for i, o := range outcomes {
		o, err := e.check(o)
		if err != nil {
			return fmt.Errorf("restore outcome %d: %w", i, err)
		}
		checked = append(checked, o)
	}
	for _, o := range checked {
		e.apply(o)
	}
	if len(checked) > 0 {
		e.logger.Info("restored history", zap.Int("outcomes", len(checked)))
	}
	return nil
}

// check validates o and canonicalizes its chosen word to the catalog text.
func (e *Engine) check(o RoundOutcome) (RoundOutcome, error) {
	if strings.TrimSpace(o.SystemWord) == "" {
		return o, ErrBlankSystem
	}
	chosen, ok := e.catalog.Lookup(o.ChosenWord)
	if !ok {
		return o, fmt.Errorf("chosen %q: %w", o.ChosenWord, ErrUnknownWord)
	}
	o.ChosenWord = chosen.Text
	return o, nil
}

func (e *Engine) apply(o RoundOutcome) {
	e.history = append(e.history, o)
	e.affinity.Reinforce(o.SystemWord, o.ChosenWord, o.Success)
	e.costs.Adjust(e.catalog.Words(), e.history)
}

// History returns a copy of every recorded outcome.
func (e *Engine) History() []RoundOutcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]RoundOutcome, len(e.history))
	copy(out, e.history)
	return out
}

// Relationship reads one learned affinity.
func (e *Engine) Relationship(system, candidate string) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.affinity.Score(system, candidate)
}
