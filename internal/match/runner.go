// Package match drives full games: it waits for each system word, asks the
// engine for a counter word, submits it, reads the verdict and feeds it back.
package match

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"

	"wordduel/duel"
	"wordduel/internal/codec"
	"wordduel/internal/gameclient"
	"wordduel/internal/ledger"
	"wordduel/word"
)

// GameClient is the part of gameclient.Client the runner uses.
type GameClient interface {
	WaitForRound(ctx context.Context, round int) (gameclient.RoundWord, error)
	Submit(ctx context.Context, round, wordID int) error
	Status(ctx context.Context) (gameclient.Status, error)
}

// Publisher receives feed frames. gateway.Gateway implements it.
type Publisher interface {
	Publish(typ string, payload *structpb.Struct)
}

// RoundResult is one played round with its charged cost.
type RoundResult struct {
	Round     int       `json:"round"`
	System    string    `json:"system"`
	Chosen    word.Word `json:"chosen"`
	Won       bool      `json:"won"`
	Cost      float64   `json:"cost"`
	TotalCost float64   `json:"total_cost"`
}

type Summary struct {
	SessionID string        `json:"session_id"`
	Rounds    []RoundResult `json:"rounds"`
	Wins      int           `json:"wins"`
	TotalCost float64       `json:"total_cost"`
}

// ScriptedRound is an offline round with a predetermined verdict.
type ScriptedRound struct {
	System string `yaml:"system" json:"system"`
	Win    bool   `yaml:"win" json:"win"`
}

// DemoScript is the default offline session.
func DemoScript() []ScriptedRound {
	return []ScriptedRound{
		{System: "Lion", Win: true},
		{System: "Virus", Win: false},
		{System: "Earthquake", Win: true},
	}
}

type Runner struct {
	engine    *duel.Engine
	game      GameClient
	ledger    ledger.Service
	publisher Publisher
	penalty   float64
	topN      int

	sessionID string
	summary   Summary
	seq       int
	logger    *zap.Logger
}

// NewRunner builds a runner for one session. game, store and publisher may
// be nil; Play needs a game client.
func NewRunner(engine *duel.Engine, game GameClient, store ledger.Service, publisher Publisher, penalty float64, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	sessionID := uuid.NewString()
	return &Runner{
		engine:    engine,
		game:      game,
		ledger:    store,
		publisher: publisher,
		penalty:   penalty,
		topN:      5,
		sessionID: sessionID,
		summary:   Summary{SessionID: sessionID, Rounds: []RoundResult{}},
		logger:    logger.Named("match").With(zap.String("session", sessionID)),
	}
}

func (r *Runner) SessionID() string { return r.sessionID }

func (r *Runner) Summary() Summary {
	out := r.summary
	out.Rounds = append([]RoundResult(nil), r.summary.Rounds...)
	return out
}

// Play runs rounds 1..rounds against the game server.
func (r *Runner) Play(ctx context.Context, rounds int) (Summary, error) {
	if r.game == nil {
		return r.Summary(), fmt.Errorf("no game client configured")
	}
	for round := 1; round <= rounds; round++ {
		if _, err := r.PlayRound(ctx, round); err != nil {
			return r.Summary(), fmt.Errorf("round %d: %w", round, err)
		}
	}
	return r.Summary(), nil
}

// PlayRound plays a single server round.
func (r *Runner) PlayRound(ctx context.Context, round int) (RoundResult, error) {
	rw, err := r.game.WaitForRound(ctx, round)
	if err != nil {
		return RoundResult{}, err
	}
	decision := r.decide(rw.Word)

	if err := r.game.Submit(ctx, round, decision.Choice.ID); err != nil {
		return RoundResult{}, fmt.Errorf("submit %q: %w", decision.Choice.Text, err)
	}
	status, err := r.game.Status(ctx)
	if err != nil {
		return RoundResult{}, fmt.Errorf("status: %w", err)
	}
	return r.settle(ctx, round, decision, status.Won())
}

// Simulate plays scripted rounds without a server.
func (r *Runner) Simulate(ctx context.Context, script []ScriptedRound) (Summary, error) {
	for i, step := range script {
		if err := ctx.Err(); err != nil {
			return r.Summary(), err
		}
		decision := r.decide(step.System)
		if _, err := r.settle(ctx, i+1, decision, step.Win); err != nil {
			return r.Summary(), fmt.Errorf("round %d: %w", i+1, err)
		}
	}
	return r.Summary(), nil
}

func (r *Runner) decide(system string) duel.Decision {
	decision := r.engine.Decide(system)
	if payload, err := codec.DecisionToProto(decision, r.topN); err != nil {
		r.logger.Warn("encode decision failed", zap.Error(err))
	} else {
		r.publish(codec.TypeDecision, payload)
	}
	return decision
}

func (r *Runner) settle(ctx context.Context, round int, decision duel.Decision, won bool) (RoundResult, error) {
	outcome := duel.RoundOutcome{SystemWord: decision.System, ChosenWord: decision.Choice.Text, Success: won}
	if err := r.engine.RecordOutcome(outcome); err != nil {
		return RoundResult{}, err
	}

	cost := decision.Choice.Cost
	if !won {
		cost += r.penalty
	}
	r.summary.TotalCost += cost
	if won {
		r.summary.Wins++
	}
	result := RoundResult{
		Round:     round,
		System:    decision.System,
		Chosen:    decision.Choice,
		Won:       won,
		Cost:      cost,
		TotalCost: r.summary.TotalCost,
	}
	r.summary.Rounds = append(r.summary.Rounds, result)

	r.logger.Info("round settled",
		zap.Int("round", round),
		zap.String("system", decision.System),
		zap.String("chosen", decision.Choice.Text),
		zap.Bool("won", won),
		zap.Float64("probability", decision.Score.Probability),
		zap.Float64("cost", cost),
		zap.Float64("total_cost", r.summary.TotalCost))

	if r.ledger != nil {
		rec := ledger.Round{
			ID:         uuid.NewString(),
			SessionID:  r.sessionID,
			Round:      round,
			SystemWord: decision.System,
			ChosenWord: decision.Choice.Text,
			Success:    won,
			Cost:       cost,
			PlayedAt:   time.Now().UTC(),
		}
		if err := r.ledger.Append(ctx, rec); err != nil {
			r.logger.Warn("ledger append failed", zap.Int("round", round), zap.Error(err))
		}
	}

	if payload, err := codec.OutcomeToProto(round, outcome, cost, r.summary.TotalCost); err != nil {
		r.logger.Warn("encode outcome failed", zap.Error(err))
	} else {
		r.publish(codec.TypeOutcome, payload)
	}
	return result, nil
}

func (r *Runner) publish(typ string, payload *structpb.Struct) {
	if r.publisher == nil {
		return
	}
	r.publisher.Publish(typ, payload)
}

// WarmStart replays up to limit persisted outcomes into the engine.
func WarmStart(ctx context.Context, engine *duel.Engine, store ledger.Service, limit int, logger *zap.Logger) (int, error) {
	if store == nil {
		return 0, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	outcomes, err := store.Outcomes(ctx, limit)
	if err != nil {
		return 0, err
	}
	// Rounds played with words since dropped from the catalog are skipped.
	kept := outcomes[:0]
	for _, o := range outcomes {
		if engine.Catalog().Contains(o.ChosenWord) {
			kept = append(kept, o)
		}
	}
	if skipped := len(outcomes) - len(kept); skipped > 0 {
		logger.Warn("skipped outcomes for unknown words", zap.Int("skipped", skipped))
	}
	if len(kept) == 0 {
		return 0, nil
	}
	if err := engine.Restore(kept); err != nil {
		return 0, err
	}
	logger.Info("engine warm started", zap.Int("outcomes", len(kept)))
	return len(kept), nil
}
