package cmd

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/abhisek/codecoach/internal/config"
	"github.com/abhisek/codecoach/internal/pipeline"
	"github.com/abhisek/codecoach/internal/store"
)

// app holds the dependencies shared by the model-backed commands.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *store.Store
	pipeline *pipeline.Pipeline
}

func (a *app) Close() error {
	return a.store.Close()
}

// openApp loads configuration, opens the store and builds the pipeline.
// reg receives the pipeline metrics; nil uses the default registry.
func openApp(cmd *cobra.Command, reg prometheus.Registerer) (*app, error) {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger := newLogger(cmd, cfg)

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	p, err := pipeline.Open(ctx, cfg.LLM, cfg.Pipeline, st.EventRepo(),
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(pipeline.MustNewMetrics(reg)),
	)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	logger.Debug("pipeline ready", "provider", cfg.LLM.Provider, "model", p.Model(), "db", dbPath)
	return &app{cfg: cfg, logger: logger, store: st, pipeline: p}, nil
}
