package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Market.TotalAssetUnits != 100 {
		t.Errorf("TotalAssetUnits = %v, want 100", cfg.Market.TotalAssetUnits)
	}
	if cfg.Market.InitialPositions != "MM1:100,RT1:0" {
		t.Errorf("InitialPositions = %q", cfg.Market.InitialPositions)
	}
	if cfg.Storage.SQLitePath != "" {
		t.Errorf("SQLitePath = %q, want empty", cfg.Storage.SQLitePath)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marketsim.yaml")
	data := `
server:
  host: 127.0.0.1
  port: 9999
market:
  total_asset_units: 500
  total_cash: 50000
  funding_rate: 0.005
  dividend_rate: 0
  initial_positions: "MM1:250,MM2:250"
  market_maker_spread: 4.0
  tick_interval_ms: 250
  extra_agents:
    - kind: MOMENTUM
      name: trend1
storage:
  sqlite_path: /tmp/ticks.db
logging:
  level: debug
  format: text
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9999 {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Market.TotalAssetUnits != 500 || cfg.Market.TotalCash != 50000 {
		t.Errorf("Market totals = %+v", cfg.Market)
	}
	if cfg.Market.DividendRate != 0 {
		t.Errorf("DividendRate = %v, want 0", cfg.Market.DividendRate)
	}
	if cfg.Market.TickIntervalMS != 250 {
		t.Errorf("TickIntervalMS = %d", cfg.Market.TickIntervalMS)
	}
	if len(cfg.Market.ExtraAgents) != 1 || cfg.Market.ExtraAgents[0].Name != "trend1" {
		t.Errorf("ExtraAgents = %+v", cfg.Market.ExtraAgents)
	}
	if cfg.Storage.SQLitePath != "/tmp/ticks.db" {
		t.Errorf("SQLitePath = %q", cfg.Storage.SQLitePath)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MARKET_TOTAL_CASH", "77777")
	t.Setenv("MARKET_FUNDING_RATE", "0.03")
	t.Setenv("MARKET_INITIAL_POSITIONS", "MM1:50,MM2:50")
	t.Setenv("PORT", "3000")
	t.Setenv("SQLITE_PATH", "/data/market.db")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Market.TotalCash != 77777 {
		t.Errorf("TotalCash = %v", cfg.Market.TotalCash)
	}
	if cfg.Market.FundingRate != 0.03 {
		t.Errorf("FundingRate = %v", cfg.Market.FundingRate)
	}
	if cfg.Market.InitialPositions != "MM1:50,MM2:50" {
		t.Errorf("InitialPositions = %q", cfg.Market.InitialPositions)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
	if cfg.Storage.SQLitePath != "/data/market.db" {
		t.Errorf("SQLitePath = %q", cfg.Storage.SQLitePath)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Level = %q", cfg.Logging.Level)
	}
}

func TestEnvIgnoresUnparsable(t *testing.T) {
	t.Setenv("MARKET_TOTAL_CASH", "lots")
	t.Setenv("PORT", "eighty")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Market.TotalCash != 10000 {
		t.Errorf("TotalCash = %v, want default 10000", cfg.Market.TotalCash)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want default 8080", cfg.Server.Port)
	}
}
