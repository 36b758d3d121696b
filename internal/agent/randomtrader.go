package agent

import (
	"math/rand"

	"marketsim/internal/domain"
)

// Compile-time interface check.
var _ Agent = (*RandomTrader)(nil)

// RandomTrader submits one order per tick at a uniformly random price within
// ±5 of the current price, buying or selling with equal probability. It is
// the noise source that keeps the market moving.
type RandomTrader struct {
	name string
	rng  *rand.Rand
}

// NewRandomTrader creates a random trader with its own RNG stream.
func NewRandomTrader(name string) *RandomTrader {
	return &RandomTrader{
		name: name,
		rng:  rand.New(rand.NewSource(rand.Int63())),
	}
}

// Name returns the agent's identifier.
func (r *RandomTrader) Name() string { return r.name }

// Decide returns a single randomly priced order around the current price.
func (r *RandomTrader) Decide(price float64) []domain.Order {
	offset := (r.rng.Float64() - 0.5) * 10
	side := domain.SideBuy
	if r.rng.Intn(2) == 0 {
		side = domain.SideSell
	}
	return []domain.Order{
		{AgentName: r.name, Price: price + offset, Quantity: defaultOrderQty, Side: side},
	}
}
