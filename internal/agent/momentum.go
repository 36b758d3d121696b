package agent

import "marketsim/internal/domain"

// Compile-time interface check.
var _ Agent = (*MomentumTrader)(nil)

// MomentumTrader chases the trend: it buys after the price rose since the
// previous tick, sells after it fell, and defaults to buying on the first
// tick or when the price is flat.
type MomentumTrader struct {
	name      string
	lastPrice float64
	seen      bool
}

// NewMomentumTrader creates a momentum trader with no price history.
func NewMomentumTrader(name string) *MomentumTrader {
	return &MomentumTrader{name: name}
}

// Name returns the agent's identifier.
func (m *MomentumTrader) Name() string { return m.name }

// Decide returns one order at the current price in the direction of the most
// recent price move.
func (m *MomentumTrader) Decide(price float64) []domain.Order {
	side := domain.SideBuy
	if m.seen && price < m.lastPrice {
		side = domain.SideSell
	}
	m.lastPrice = price
	m.seen = true
	return []domain.Order{
		{AgentName: m.name, Price: price, Quantity: defaultOrderQty, Side: side},
	}
}
