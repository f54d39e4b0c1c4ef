package config_test

import (
	"fmt"

	"github.com/wonny/esgproxy/backend/pkg/config"
)

// Example_loadFrom loads an explicit .env file and switches on the provider
func Example_loadFrom() {
	cfg, err := config.LoadFrom("./deploy/esgproxy.env")
	if err != nil {
		fmt.Printf("config: %v\n", err)
		return
	}

	switch cfg.MarketData.Provider {
	case config.ProviderPostgres:
		fmt.Printf("reading closes from %d-conn pool\n", cfg.Database.MaxConns)
	case config.ProviderEODHD:
		fmt.Printf("EODHD at %s, %.0f req/s\n", cfg.EODHD.BaseURL, cfg.MarketData.RateLimit)
	default:
		fmt.Printf("provider %s, lookback %dd, scheme %s\n",
			cfg.MarketData.Provider, cfg.MarketData.LookbackDays, cfg.Scoring.DefaultScheme)
	}
}

// Example_override applies a CLI flag on top of the environment, then re-validates
func Example_override() {
	cfg, err := config.Load()
	if err != nil {
		return
	}
	cfg.MarketData.Provider = config.ProviderStatic
	if err := cfg.Validate(); err != nil {
		fmt.Printf("invalid override: %v\n", err)
	}
}
