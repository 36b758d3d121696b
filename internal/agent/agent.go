// Package agent defines the Agent interface implemented by all trading
// strategies and a factory for constructing agents by kind.
package agent

import (
	"fmt"
	"strings"

	"marketsim/internal/domain"
)

// defaultOrderQty is the fixed order size every built-in strategy quotes.
const defaultOrderQty = 10

// Agent is the single capability the engine requires of a market
// participant: given the current price, produce the orders it wants to
// submit this tick. Implementations may keep private strategy memory but
// must not touch engine state.
type Agent interface {
	// Name returns the unique identifier for this agent.
	Name() string

	// Decide returns the orders this agent submits at the given price,
	// in submission order. It is invoked exactly once per tick.
	Decide(price float64) []domain.Order
}

// Kind identifies a strategy implementation.
type Kind string

// Recognised agent kinds. MarketMaker and RandomTrader are admissible at
// runtime; the remaining kinds can only be placed in the startup roster.
const (
	KindMarketMaker   Kind = "MARKET_MAKER"
	KindRandomTrader  Kind = "RANDOM_TRADER"
	KindMomentum      Kind = "MOMENTUM"
	KindMeanReversion Kind = "MEAN_REVERSION"
)

// ParseKind normalises a kind string, accepting the short spellings the
// admission API has always taken ("MM", "RT") alongside the long forms.
func ParseKind(s string) (Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MM", string(KindMarketMaker):
		return KindMarketMaker, nil
	case "RT", string(KindRandomTrader):
		return KindRandomTrader, nil
	case string(KindMomentum):
		return KindMomentum, nil
	case "MEAN_REVERSION", "MEANREVERSION":
		return KindMeanReversion, nil
	default:
		return "", fmt.Errorf("unknown agent kind %q", s)
	}
}

// New constructs an agent of the given kind. spread only applies to market
// makers; other kinds ignore it.
func New(kind Kind, name string, spread float64) (Agent, error) {
	switch kind {
	case KindMarketMaker:
		return NewMarketMaker(name, spread), nil
	case KindRandomTrader:
		return NewRandomTrader(name), nil
	case KindMomentum:
		return NewMomentumTrader(name), nil
	case KindMeanReversion:
		return NewMeanReversionTrader(name, 0), nil
	default:
		return nil, fmt.Errorf("unknown agent kind %q", kind)
	}
}
