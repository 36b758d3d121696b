package agent

import "marketsim/internal/domain"

// Compile-time interface check.
var _ Agent = (*MarketMaker)(nil)

// MarketMaker quotes both sides of the book every tick: a bid at
// mid - spread/2 and an ask at mid + spread/2. Market makers are also the
// counterparties of last resort during forced liquidation, sourced by the
// "MM" name prefix.
type MarketMaker struct {
	name   string
	spread float64
}

// NewMarketMaker creates a market maker quoting around the current price
// with the given spread.
func NewMarketMaker(name string, spread float64) *MarketMaker {
	return &MarketMaker{name: name, spread: spread}
}

// Name returns the agent's identifier.
func (m *MarketMaker) Name() string { return m.name }

// Decide returns a two-sided quote around the current price.
func (m *MarketMaker) Decide(price float64) []domain.Order {
	half := m.spread / 2
	return []domain.Order{
		{AgentName: m.name, Price: price - half, Quantity: defaultOrderQty, Side: domain.SideBuy},
		{AgentName: m.name, Price: price + half, Quantity: defaultOrderQty, Side: domain.SideSell},
	}
}
