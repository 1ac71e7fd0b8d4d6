package backend

import (
	"fmt"
	"strings"

	"wordduel/duel"
)

const (
	KindNone  = "none"
	KindTable = "table"
	KindONNX  = "onnx"
)

// Config selects and locates the predictor artifacts.
type Config struct {
	Kind        string     `yaml:"kind" env:"KIND"`
	IndexesPath string     `yaml:"indexes_path" env:"INDEXES_PATH"`
	TablePath   string     `yaml:"table_path" env:"TABLE_PATH"`
	ONNX        ONNXConfig `yaml:"onnx" envPrefix:"ONNX_"`
}

// Closer is a duel.Backend that holds resources.
type Closer interface {
	duel.Backend
	Close() error
}

// Open loads the configured backend. KindNone returns nil, which puts the
// engine in affinity mode.
func Open(cfg Config) (Closer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Kind)) {
	case "", KindNone:
		return nil, nil
	case KindTable:
		table, err := LoadTableFile(cfg.TablePath)
		if err != nil {
			return nil, err
		}
		return table, nil
	case KindONNX:
		vocab, err := LoadVocabularyFile(cfg.IndexesPath)
		if err != nil {
			return nil, err
		}
		model, err := NewONNXBackend(vocab, cfg.ONNX)
		if err != nil {
			return nil, err
		}
		return model, nil
	default:
		return nil, fmt.Errorf("invalid backend kind %q (supported: %s, %s, %s)", cfg.Kind, KindNone, KindTable, KindONNX)
	}
}
