// Package config loads the duelbot configuration: built-in defaults, then an
// optional YAML file, then DUEL_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"wordduel/duel"
	"wordduel/duel/backend"
	"wordduel/internal/diag"
	"wordduel/internal/gameclient"
	"wordduel/internal/ledger"
	"wordduel/internal/match"
)

const EnvPrefix = "DUEL_"

type Config struct {
	CatalogPath string `yaml:"catalog_path" env:"CATALOG_PATH"`
	// WarmStartLimit caps how many persisted outcomes are replayed at
	// startup; 0 replays everything retained, negative disables warm start.
	WarmStartLimit int `yaml:"warm_start_limit" env:"WARM_START_LIMIT"`

	Engine  duel.Config       `yaml:"engine" envPrefix:"ENGINE_"`
	Backend backend.Config    `yaml:"backend" envPrefix:"BACKEND_"`
	Ledger  ledger.Config     `yaml:"ledger" envPrefix:"LEDGER_"`
	Game    gameclient.Config `yaml:"game" envPrefix:"GAME_"`
	Diag    diag.Config       `yaml:"diag" envPrefix:"DIAG_"`

	Simulate []match.ScriptedRound `yaml:"simulate"`
}

func Default() Config {
	return Config{
		CatalogPath: "data/words.json",
		Engine:      duel.DefaultConfig(),
		Backend:     backend.Config{Kind: backend.KindNone},
		Ledger:      ledger.Config{Mode: ledger.ModeSQLite},
		Game:        gameclient.DefaultConfig(),
		Diag:        diag.DefaultConfig(),
		Simulate:    match.DemoScript(),
	}
}

// Load builds the configuration. An empty path skips the file; a missing
// file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path = strings.TrimSpace(path); path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := decodeYAML(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.CatalogPath) == "" {
		return errors.New("catalog_path is required")
	}
	if err := c.Engine.Validate(); err != nil {
		return err
	}
	if err := c.Game.Validate(); err != nil {
		return fmt.Errorf("game: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(c.Backend.Kind)) {
	case "", backend.KindNone:
	case backend.KindTable:
		if c.Backend.TablePath == "" {
			return errors.New("backend.table_path is required for the table backend")
		}
	case backend.KindONNX:
		if c.Backend.IndexesPath == "" || c.Backend.ONNX.ModelPath == "" {
			return errors.New("backend.indexes_path and backend.onnx.model_path are required for the onnx backend")
		}
	default:
		return fmt.Errorf("unknown backend kind %q", c.Backend.Kind)
	}
	return nil
}
