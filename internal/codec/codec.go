// Package codec turns engine values into protobuf frames for the
// diagnostics feed. Payloads are google.protobuf.Struct messages so the
// feed needs no generated code on either side.
package codec

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"wordduel/duel"
	"wordduel/word"
)

const (
	TypeDecision = "decision"
	TypeOutcome  = "outcome"
	TypeSnapshot = "snapshot"
)

var ErrMalformedFrame = errors.New("malformed frame")

// Envelope is one frame of the feed.
type Envelope struct {
	Type    string
	Seq     uint64
	TsMs    int64
	Payload *structpb.Struct
}

// Wrap stamps a payload with the current time.
func Wrap(typ string, seq uint64, payload *structpb.Struct) Envelope {
	return Envelope{Type: typ, Seq: seq, TsMs: time.Now().UnixMilli(), Payload: payload}
}

func Encode(env Envelope) ([]byte, error) {
	payload := env.Payload
	if payload == nil {
		payload = &structpb.Struct{Fields: map[string]*structpb.Value{}}
	}
	frame := &structpb.Struct{Fields: map[string]*structpb.Value{
		"type":    structpb.NewStringValue(env.Type),
		"seq":     structpb.NewNumberValue(float64(env.Seq)),
		"ts_ms":   structpb.NewNumberValue(float64(env.TsMs)),
		"payload": structpb.NewStructValue(payload),
	}}
	return proto.Marshal(frame)
}

func Decode(data []byte) (Envelope, error) {
	var frame structpb.Struct
	if err := proto.Unmarshal(data, &frame); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	fields := frame.GetFields()
	typ := fields["type"].GetStringValue()
	if typ == "" {
		return Envelope{}, fmt.Errorf("%w: missing type", ErrMalformedFrame)
	}
	return Envelope{
		Type:    typ,
		Seq:     uint64(fields["seq"].GetNumberValue()),
		TsMs:    int64(fields["ts_ms"].GetNumberValue()),
		Payload: fields["payload"].GetStructValue(),
	}, nil
}

func wordToMap(w word.Word) map[string]any {
	return map[string]any{
		"id":       w.ID,
		"text":     w.Text,
		"cost":     w.Cost,
		"category": w.Category.String(),
		"tier":     w.Tier().String(),
	}
}

func scoreToMap(s duel.CandidateScore) map[string]any {
	return map[string]any{
		"word":          wordToMap(s.Word),
		"probability":   s.Probability,
		"adjusted_cost": s.AdjustedCost,
		"expected_cost": s.ExpectedCost,
		"final_score":   s.FinalScore,
		"affinity":      s.Affinity,
		"cluster_bonus": s.ClusterBonus,
		"learned_cost":  s.LearnedCost,
		"total":         s.Total,
	}
}

// DecisionToProto keeps the choice and at most topN ranked candidates.
func DecisionToProto(d duel.Decision, topN int) (*structpb.Struct, error) {
	ranked := d.Ranked
	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	rows := make([]any, 0, len(ranked))
	for _, s := range ranked {
		rows = append(rows, scoreToMap(s))
	}
	return structpb.NewStruct(map[string]any{
		"system": d.System,
		"mode":   string(d.Mode),
		"choice": wordToMap(d.Choice),
		"score":  scoreToMap(d.Score),
		"ranked": rows,
	})
}

// OutcomeToProto carries the outcome plus the round bookkeeping of the play
// loop.
func OutcomeToProto(round int, o duel.RoundOutcome, cost, total float64) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"round":       round,
		"system_word": o.SystemWord,
		"chosen_word": o.ChosenWord,
		"success":     o.Success,
		"cost":        cost,
		"total_cost":  total,
	})
}

func SnapshotToProto(s duel.Snapshot) (*structpb.Struct, error) {
	words := make([]any, 0, len(s.Words))
	for _, w := range s.Words {
		words = append(words, map[string]any{
			"id":            w.ID,
			"text":          w.Text,
			"cost":          w.Cost,
			"category":      w.Category,
			"tier":          w.Tier,
			"usage":         w.Usage,
			"adjustment":    w.Adjustment,
			"adjusted_cost": w.AdjustedCost,
			"learned_cost":  w.LearnedCost,
		})
	}

	relationships := make(map[string]any, len(s.Relationships))
	for sys, cands := range s.Relationships {
		row := make(map[string]any, len(cands))
		for cand, v := range cands {
			row[cand] = v
		}
		relationships[sys] = row
	}

	return structpb.NewStruct(map[string]any{
		"mode":          string(s.Mode),
		"rounds":        s.Rounds,
		"successes":     s.Successes,
		"words":         words,
		"relationships": relationships,
	})
}
