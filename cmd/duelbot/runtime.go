package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"wordduel/duel"
	"wordduel/duel/backend"
	"wordduel/internal/config"
	"wordduel/internal/ledger"
	"wordduel/internal/match"
	"wordduel/word"
)

// runtime is everything a subcommand needs, opened from one config.
type runtime struct {
	cfg        config.Config
	catalog    *word.Catalog
	engine     *duel.Engine
	backend    backend.Closer
	ledger     ledger.Service
	ledgerMode string
}

type runtimeOptions struct {
	// memoryLedger swaps the configured store for a process-local one.
	memoryLedger bool
	warmStart    bool
}

func openRuntime(ctx context.Context, opts runtimeOptions) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg}

	rt.catalog, err = word.LoadCatalogFile(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	rt.backend, err = backend.Open(cfg.Backend)
	if err != nil {
		return nil, fmt.Errorf("open backend: %w", err)
	}
	var predictor duel.Backend
	if rt.backend != nil {
		predictor = rt.backend
	}

	rt.engine, err = duel.New(rt.catalog, predictor, cfg.Engine, logger)
	if err != nil {
		rt.Close()
		return nil, err
	}

	ledgerCfg := cfg.Ledger
	if opts.memoryLedger {
		ledgerCfg.Mode = ledger.ModeMemory
	}
	rt.ledger, rt.ledgerMode, err = ledger.NewService(ledgerCfg, logger)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	if opts.warmStart && cfg.WarmStartLimit >= 0 {
		if _, err := match.WarmStart(ctx, rt.engine, rt.ledger, cfg.WarmStartLimit, logger); err != nil {
			logger.Warn("warm start failed", zap.Error(err))
		}
	}

	logger.Info("runtime ready",
		zap.String("mode", string(rt.engine.Mode())),
		zap.String("ledger", rt.ledgerMode),
		zap.Int("catalog", rt.catalog.Len()))
	return rt, nil
}

func (rt *runtime) Close() {
	if rt.ledger != nil {
		if err := rt.ledger.Close(); err != nil {
			logger.Warn("close ledger", zap.Error(err))
		}
	}
	if rt.backend != nil {
		if err := rt.backend.Close(); err != nil {
			logger.Warn("close backend", zap.Error(err))
		}
	}
}
