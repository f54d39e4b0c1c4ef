package commands

import (
	"context"
	"fmt"

	"github.com/wonny/esgproxy/backend/internal/marketdata"
	"github.com/wonny/esgproxy/backend/internal/metrics"
	"github.com/wonny/esgproxy/backend/internal/pipeline"
	"github.com/wonny/esgproxy/backend/internal/regression"
	"github.com/wonny/esgproxy/backend/internal/scoring"
	"github.com/wonny/esgproxy/backend/pkg/config"
	"github.com/wonny/esgproxy/backend/pkg/logger"
)

// app is the wired component graph shared by every command
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	metrics  *metrics.Recorder
	schemes  *scoring.Registry
	models   *regression.Cache
	source   *marketdata.Source
	features *pipeline.FeaturePipeline
	market   *pipeline.MarketPipeline
}

// loadConfig reads config and applies global flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFrom(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if provider != "" {
		cfg.MarketData.Provider = provider
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// newApp wires config → logger → schemes → provider → pipelines
// withMarket=false skips opening provider connections.
func newApp(ctx context.Context, withMarket bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg)

	registry, err := buildRegistry(cfg)
	if err != nil {
		return nil, fmt.Errorf("load schemes: %w", err)
	}
	a := &app{cfg: cfg, log: log, schemes: registry}
	if cfg.MetricsEnabled {
		a.metrics = metrics.New()
	}
	log.WithField("schemes", len(registry.List())).Debug("Weighting schemes registered")

	if _, _, err := a.schemes.Get(cfg.Scoring.DefaultScheme); err != nil {
		return nil, fmt.Errorf("SCORING_DEFAULT_SCHEME: %w", err)
	}

	train := regression.DefaultTrainConfig()
	train.Seed = cfg.Model.Seed
	train.Epochs = cfg.Model.Epochs
	train.LearningRate = cfg.Model.LearningRate
	train.BatchSize = cfg.Model.BatchSize
	if err := train.Validate(); err != nil {
		return nil, err
	}
	a.models = regression.NewCache(train, log)
	a.features = pipeline.NewFeaturePipeline(a.models, a.metrics, log)

	if withMarket {
		src, err := marketdata.Open(ctx, cfg, log, a.metrics)
		if err != nil {
			return nil, err
		}
		a.source = src
		a.market = pipeline.NewMarketPipeline(a.schemes, src.Provider, pipeline.MarketConfig{
			DefaultScheme: cfg.Scoring.DefaultScheme,
			LookbackDays:  cfg.MarketData.LookbackDays,
		}, a.metrics, log)
	}
	return a, nil
}

// Close releases provider connections
func (a *app) Close() {
	if a.source != nil {
		a.source.Close()
	}
}
