// Package config loads the marketsim YAML configuration and applies
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the marketsim server.
type Config struct {
	Server  Server  `yaml:"server"`
	Market  Market  `yaml:"market"`
	Storage Storage `yaml:"storage"`
	Logging Logging `yaml:"logging"`
}

// Server holds network listener configuration.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Market holds the simulation parameters fixed at startup.
type Market struct {
	TotalAssetUnits float64 `yaml:"total_asset_units"`
	TotalCash       float64 `yaml:"total_cash"`
	FundingRate     float64 `yaml:"funding_rate"`
	DividendRate    float64 `yaml:"dividend_rate"`

	// InitialPositions allocates the asset float across the startup roster,
	// in the "NAME:UNITS,NAME:UNITS" form.
	InitialPositions string `yaml:"initial_positions"`

	// MarketMakerSpread is the quote width for every market maker.
	MarketMakerSpread float64 `yaml:"market_maker_spread"`

	// TickIntervalMS is the tick trigger period in milliseconds.
	TickIntervalMS int `yaml:"tick_interval_ms"`

	// ExtraAgents are appended to the default MM1/MM2/RT1/RT2 roster.
	ExtraAgents []AgentSpec `yaml:"extra_agents"`
}

// AgentSpec names one extra startup-roster agent.
type AgentSpec struct {
	Kind string `yaml:"kind"`
	Name string `yaml:"name"`
}

// Storage holds paths for data persistence. An empty SQLitePath disables
// tick-history recording.
type Storage struct {
	SQLitePath string `yaml:"sqlite_path"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration: the classic four-agent world
// on port 8080 with no persistence.
func Default() *Config {
	return &Config{
		Server: Server{Host: "0.0.0.0", Port: 8080},
		Market: Market{
			TotalAssetUnits:   100,
			TotalCash:         10000,
			FundingRate:       0.01,
			DividendRate:      0.02,
			InitialPositions:  "MM1:100,RT1:0",
			MarketMakerSpread: 2.0,
			TickIntervalMS:    1000,
		},
		Logging: Logging{Level: "info", Format: "json"},
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path into the defaults
// and then applies environment variable overrides. A missing file is not an
// error: the defaults plus environment apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MARKET_TOTAL_ASSET_UNITS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Market.TotalAssetUnits = f
		}
	}
	if v := os.Getenv("MARKET_TOTAL_CASH"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Market.TotalCash = f
		}
	}
	if v := os.Getenv("MARKET_FUNDING_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Market.FundingRate = f
		}
	}
	if v := os.Getenv("MARKET_DIVIDEND_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Market.DividendRate = f
		}
	}
	if v := os.Getenv("MARKET_INITIAL_POSITIONS"); v != "" {
		cfg.Market.InitialPositions = v
	}
	if v := os.Getenv("MARKET_TICK_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Market.TickIntervalMS = n
		}
	}

	if v := os.Getenv("HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}

	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
