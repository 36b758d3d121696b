// Package engine implements the per-tick market simulation core: order
// collection, carrying-cost accrual, double-auction matching and settlement,
// insolvency handling, and snapshot publication.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"marketsim/internal/agent"
	"marketsim/internal/domain"
)

// ErrInvalidArgument marks admission and configuration requests rejected for
// bad input. Transport layers map it to a client error.
var ErrInvalidArgument = errors.New("invalid argument")

// Startup defaults, matching the long-standing simulator configuration.
const (
	DefaultInitialPrice      = 100.0
	DefaultTotalAssetUnits   = 100.0
	DefaultTotalCash         = 10000.0
	DefaultFundingRate       = 0.01
	DefaultDividendRate      = 0.02
	DefaultMarketMakerSpread = 2.0
	DefaultTickInterval      = time.Second

	// DefaultAllocation gives the whole asset float to MM1.
	DefaultAllocation = "MM1:100,RT1:0"
)

// Sink receives each completed tick's snapshot. Publish must not block:
// a slow or absent consumer never delays the tick loop.
type Sink interface {
	Publish(snap *domain.MarketSnapshot)
}

// Spec names an extra agent to place in the startup roster, beyond the
// default MM1/MM2/RT1/RT2 set.
type Spec struct {
	Kind agent.Kind
	Name string
}

// Options configures a Simulation. Zero values select the defaults above;
// rates are taken as-is because zero legitimately disables an accrual.
type Options struct {
	InitialPrice      float64
	TotalAssetUnits   float64
	TotalCash         float64
	FundingRate       float64
	DividendRate      float64
	MarketMakerSpread float64

	// InitialPositions allocates TotalAssetUnits across the startup roster.
	// It is normalised at construction; see NormalizeAllocation.
	InitialPositions map[string]float64

	// ExtraAgents are appended to the default roster at startup.
	ExtraAgents []Spec

	Logger *slog.Logger
}

// Simulation owns the whole market state: price, agent registry, ledger,
// rates, and counters. One mutex serialises ticks against admissions and
// configuration changes, so a tick is atomic to every observer.
type Simulation struct {
	mu  sync.Mutex
	log *slog.Logger

	opts Options

	price            float64
	agents           []agent.Agent
	ledger           *Ledger
	totalAssetUnits  float64
	totalCash        float64
	fundingRate      float64
	dividendRate     float64
	initialPositions map[string]float64
	mmCounter        int
	rtCounter        int
	paused           bool
	latest           *domain.MarketSnapshot

	sinkMu sync.Mutex
	sinks  []Sink
}

// New creates a Simulation with the default roster (MM1, MM2, RT1, RT2 plus
// any extras), the normalised initial allocation, and total cash split
// equally across the startup roster.
func New(opts Options) *Simulation {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.InitialPrice <= 0 {
		opts.InitialPrice = DefaultInitialPrice
	}
	if opts.TotalAssetUnits <= 0 {
		opts.TotalAssetUnits = DefaultTotalAssetUnits
	}
	if opts.TotalCash <= 0 {
		opts.TotalCash = DefaultTotalCash
	}
	if opts.MarketMakerSpread <= 0 {
		opts.MarketMakerSpread = DefaultMarketMakerSpread
	}
	if opts.InitialPositions == nil {
		opts.InitialPositions = ParseAllocation(DefaultAllocation)
	}

	s := &Simulation{opts: opts, log: opts.Logger}
	s.initLocked()
	return s
}

// initLocked (re)builds the startup world. Caller holds the mutex, or is
// the constructor.
func (s *Simulation) initLocked() {
	s.price = s.opts.InitialPrice
	s.totalAssetUnits = s.opts.TotalAssetUnits
	s.totalCash = s.opts.TotalCash
	s.fundingRate = s.opts.FundingRate
	s.dividendRate = s.opts.DividendRate
	s.paused = false
	s.latest = nil
	s.mmCounter, s.rtCounter = 3, 3

	roster := []agent.Agent{
		agent.NewMarketMaker("MM1", s.opts.MarketMakerSpread),
		agent.NewMarketMaker("MM2", s.opts.MarketMakerSpread),
		agent.NewRandomTrader("RT1"),
		agent.NewRandomTrader("RT2"),
	}
	for _, spec := range s.opts.ExtraAgents {
		a, err := agent.New(spec.Kind, spec.Name, s.opts.MarketMakerSpread)
		if err != nil {
			s.log.Warn("skipping invalid roster agent", "name", spec.Name, "kind", string(spec.Kind), "error", err)
			continue
		}
		roster = append(roster, a)
	}
	s.agents = roster

	s.initialPositions = NormalizeAllocation(s.opts.InitialPositions, s.totalAssetUnits, roster[0].Name())
	s.ledger = NewLedger()
	cashPerAgent := s.totalCash / float64(len(roster))
	for _, a := range roster {
		s.ledger.Admit(a.Name(), s.initialPositions[a.Name()], cashPerAgent)
	}
}

// AddSink subscribes a snapshot consumer. Sinks are invoked after each tick
// completes, outside the state lock.
func (s *Simulation) AddSink(sink Sink) {
	s.sinkMu.Lock()
	defer s.sinkMu.Unlock()
	s.sinks = append(s.sinks, sink)
}

// Run executes one tick per interval until the context is cancelled. Ticks
// never overlap: the ticker drops triggers that fire while a tick is still
// running, and the state mutex serialises ticks against API calls.
func (s *Simulation) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Info("tick loop started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("tick loop stopped")
			return
		case <-ticker.C:
			s.RunTick()
		}
	}
}

// RunTick executes one full simulation tick: collect orders from every
// agent, accrue carrying costs from pre-tick state, match and settle, handle
// insolvency, then build and publish the snapshot. The whole sequence runs
// under the state mutex; publication happens after it is released.
func (s *Simulation) RunTick() {
	s.mu.Lock()
	if s.paused {
		s.mu.Unlock()
		return
	}

	var pool []domain.Order
	for _, a := range s.agents {
		pool = append(pool, a.Decide(s.price)...)
	}

	s.applyFundingRate()
	s.applyDividendRate()

	if price, ok := s.matchAndSettle(pool); ok {
		s.price = price
	}

	evicted := s.detectAndLiquidate(pool)

	snap := s.buildSnapshotLocked(pool)
	s.latest = snap
	s.mu.Unlock()

	for _, name := range evicted {
		s.log.Info("insolvent agent evicted", "agent", name)
	}

	s.sinkMu.Lock()
	sinks := make([]Sink, len(s.sinks))
	copy(sinks, s.sinks)
	s.sinkMu.Unlock()
	for _, sink := range sinks {
		sink.Publish(snap)
	}
}

// buildSnapshotLocked assembles the immutable snapshot from post-tick state.
// Each agent's lastOrders is the subset of the pool it submitted, in
// submission order. Caller holds the mutex.
func (s *Simulation) buildSnapshotLocked(pool []domain.Order) *domain.MarketSnapshot {
	states := make([]domain.AgentState, 0, len(s.agents))
	for _, a := range s.agents {
		name := a.Name()
		orders := make([]domain.Order, 0, 2)
		for _, o := range pool {
			if o.AgentName == name {
				orders = append(orders, o)
			}
		}
		states = append(states, domain.AgentState{
			Name:          name,
			LastOrders:    orders,
			PositionUnits: s.ledger.Position(name),
			CashBalance:   s.ledger.Cash(name),
			InitialCash:   s.ledger.InitialCash(name),
		})
	}

	currentAssets, currentCash := s.ledger.Totals()
	alloc := make(map[string]float64, len(s.initialPositions))
	for name, units := range s.initialPositions {
		alloc[name] = units
	}
	return &domain.MarketSnapshot{
		Price:  s.price,
		Agents: states,
		Config: domain.MarketConfig{
			TotalAssetUnits:    s.totalAssetUnits,
			TotalCash:          s.totalCash,
			FundingRate:        s.fundingRate,
			DividendRate:       s.dividendRate,
			CurrentTotalAssets: currentAssets,
			CurrentTotalCash:   currentCash,
			InitialPositions:   alloc,
		},
	}
}

// LatestSnapshot returns the most recently published snapshot, or nil before
// the first tick completes.
func (s *Simulation) LatestSnapshot() *domain.MarketSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// AddAgent admits a new agent of the given kind with a cash deposit. An
// empty or colliding requested name is replaced by the next unused MM<n> or
// RT<n>; counter names are never reused even after evictions. Takes effect
// at the start of the next tick.
func (s *Simulation) AddAgent(kind, requestedName string, initialCash float64) (string, error) {
	if initialCash < 0 {
		return "", fmt.Errorf("%w: initialCash must be >= 0", ErrInvalidArgument)
	}
	k, err := agent.ParseKind(kind)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if k != agent.KindMarketMaker && k != agent.KindRandomTrader {
		return "", fmt.Errorf("%w: kind must be MM or RT", ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[string]bool, len(s.agents))
	for _, a := range s.agents {
		existing[a.Name()] = true
	}
	resolved := strings.TrimSpace(requestedName)
	if resolved == "" || existing[resolved] {
		if k == agent.KindMarketMaker {
			for existing[fmt.Sprintf("MM%d", s.mmCounter)] {
				s.mmCounter++
			}
			resolved = fmt.Sprintf("MM%d", s.mmCounter)
			s.mmCounter++
		} else {
			for existing[fmt.Sprintf("RT%d", s.rtCounter)] {
				s.rtCounter++
			}
			resolved = fmt.Sprintf("RT%d", s.rtCounter)
			s.rtCounter++
		}
	}

	a, err := agent.New(k, resolved, s.opts.MarketMakerSpread)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	s.agents = append(s.agents, a)
	s.ledger.Admit(resolved, 0, initialCash)
	s.totalCash += initialCash

	s.log.Info("agent admitted", "name", resolved, "kind", string(k), "initialCash", initialCash)
	return resolved, nil
}

// UpdateRates changes the funding and/or dividend rate for subsequent ticks.
// Nil leaves a rate unchanged; zero disables the accrual; negative rates are
// rejected.
func (s *Simulation) UpdateRates(fundingRate, dividendRate *float64) error {
	if fundingRate != nil && *fundingRate < 0 {
		return fmt.Errorf("%w: fundingRate must be >= 0", ErrInvalidArgument)
	}
	if dividendRate != nil && *dividendRate < 0 {
		return fmt.Errorf("%w: dividendRate must be >= 0", ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if fundingRate != nil {
		s.fundingRate = *fundingRate
	}
	if dividendRate != nil {
		s.dividendRate = *dividendRate
	}
	s.log.Info("rates updated", "fundingRate", s.fundingRate, "dividendRate", s.dividendRate)
	return nil
}

// Pause stops tick execution on trigger until Resume is called.
func (s *Simulation) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
	s.log.Info("simulation paused")
}

// Resume re-enables tick execution.
func (s *Simulation) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
	s.log.Info("simulation resumed")
}

// Reset reinitialises price, ledger, and agent registry to the startup
// defaults, discarding admissions and rate changes.
func (s *Simulation) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initLocked()
	s.log.Info("simulation reset")
}
