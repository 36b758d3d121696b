// Command marketsim-server runs the market simulation engine and serves its
// HTTP and WebSocket API.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketsim/internal/agent"
	"marketsim/internal/api"
	"marketsim/internal/config"
	"marketsim/internal/engine"
	"marketsim/internal/store"
	"marketsim/internal/util"
)

func main() {
	// Load config.
	cfgPath := "config/marketsim.yaml"
	if p := os.Getenv("MARKETSIM_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// Setup logging.
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	// Build the simulation.
	var extras []engine.Spec
	for _, a := range cfg.Market.ExtraAgents {
		extras = append(extras, engine.Spec{Kind: agent.Kind(a.Kind), Name: a.Name})
	}
	sim := engine.New(engine.Options{
		TotalAssetUnits:   cfg.Market.TotalAssetUnits,
		TotalCash:         cfg.Market.TotalCash,
		FundingRate:       cfg.Market.FundingRate,
		DividendRate:      cfg.Market.DividendRate,
		MarketMakerSpread: cfg.Market.MarketMakerSpread,
		InitialPositions:  engine.ParseAllocation(cfg.Market.InitialPositions),
		ExtraAgents:       extras,
		Logger:            logger,
	})

	// Optional tick history recording.
	var ts *store.TickStore
	if cfg.Storage.SQLitePath != "" {
		ts, err = store.NewTickStore(cfg.Storage.SQLitePath, logger)
		if err != nil {
			log.Fatalf("opening tick store: %v", err)
		}
		defer ts.Close()
		sim.AddSink(ts)
		logger.Info("tick history enabled", "path", cfg.Storage.SQLitePath)
	}

	// WebSocket fan-out.
	hub := api.NewHub(logger)
	go hub.Run()
	sim.AddSink(hub)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Tick loop.
	interval := time.Duration(cfg.Market.TickIntervalMS) * time.Millisecond
	if interval <= 0 {
		interval = engine.DefaultTickInterval
	}
	go sim.Run(ctx, interval)

	// HTTP server.
	srv := api.NewServer(sim, ts, hub, logger)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: srv.Handler(),
	}

	go func() {
		logger.Info("marketsim server listening", "addr", httpServer.Addr, "tick_interval", interval)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down marketsim server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
