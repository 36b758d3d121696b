package engine

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketsim/internal/domain"
)

// newBareSim returns a Simulation with an empty ledger and no agents, for
// exercising the matching and settlement internals directly.
func newBareSim() *Simulation {
	return &Simulation{
		log:    slog.Default(),
		ledger: NewLedger(),
		price:  DefaultInitialPrice,
	}
}

func buy(agent string, price, qty float64) domain.Order {
	return domain.Order{AgentName: agent, Price: price, Quantity: qty, Side: domain.SideBuy}
}

func sell(agent string, price, qty float64) domain.Order {
	return domain.Order{AgentName: agent, Price: price, Quantity: qty, Side: domain.SideSell}
}

func TestMatchAndSettleMidpointExecution(t *testing.T) {
	s := newBareSim()
	s.ledger.Admit("B", 0, 1010)
	s.ledger.Admit("S", 10, 0)

	price, ok := s.matchAndSettle([]domain.Order{
		buy("B", 101, 10),
		sell("S", 99, 10),
	})

	require.True(t, ok, "crossed orders must trade")
	assert.Equal(t, 100.0, price)
	assert.Equal(t, 10.0, s.ledger.Position("B"))
	assert.Equal(t, 0.0, s.ledger.Position("S"))
	assert.Equal(t, 10.0, s.ledger.Cash("B"))
	assert.Equal(t, 1000.0, s.ledger.Cash("S"))
}

func TestMatchAndSettleNoCrossIsNoOp(t *testing.T) {
	s := newBareSim()
	s.ledger.Admit("B", 0, 1000)
	s.ledger.Admit("S", 10, 0)

	_, ok := s.matchAndSettle([]domain.Order{
		buy("B", 100, 5),
		sell("S", 105, 5),
	})

	assert.False(t, ok, "max buy below min sell must not trade")
	assert.Equal(t, 0.0, s.ledger.Position("B"))
	assert.Equal(t, 10.0, s.ledger.Position("S"))
	assert.Equal(t, 1000.0, s.ledger.Cash("B"))
	assert.Equal(t, 0.0, s.ledger.Cash("S"))
}

func TestMatchAndSettleEmptyPool(t *testing.T) {
	s := newBareSim()
	_, ok := s.matchAndSettle(nil)
	assert.False(t, ok)
}

func TestMatchAndSettleBuyerCashClampsFill(t *testing.T) {
	s := newBareSim()
	s.ledger.Admit("B", 0, 50)
	s.ledger.Admit("S", 10, 0)

	price, ok := s.matchAndSettle([]domain.Order{
		buy("B", 100, 10),
		sell("S", 100, 10),
	})

	require.True(t, ok)
	assert.Equal(t, 100.0, price)
	// tradable = min(10, 10, 10, 50/100) = 0.5 units.
	assert.InDelta(t, 0.5, s.ledger.Position("B"), 1e-9)
	assert.InDelta(t, 9.5, s.ledger.Position("S"), 1e-9)
	assert.InDelta(t, 0.0, s.ledger.Cash("B"), 1e-9)
	assert.InDelta(t, 50.0, s.ledger.Cash("S"), 1e-9)
}

func TestMatchAndSettleSellerInventoryClampsFill(t *testing.T) {
	s := newBareSim()
	s.ledger.Admit("B", 0, 10000)
	s.ledger.Admit("S", 3, 0)

	price, ok := s.matchAndSettle([]domain.Order{
		buy("B", 100, 10),
		sell("S", 100, 10),
	})

	require.True(t, ok)
	assert.Equal(t, 100.0, price)
	assert.InDelta(t, 3.0, s.ledger.Position("B"), 1e-9)
	assert.InDelta(t, 0.0, s.ledger.Position("S"), 1e-9)
}

func TestMatchAndSettleZeroCapacityTerminates(t *testing.T) {
	s := newBareSim()
	// Seller has nothing to deliver and buyer has no cash: prices cross but
	// nothing can trade. The cursor advancement rule must still terminate.
	s.ledger.Admit("B", 0, 0)
	s.ledger.Admit("S", 0, 0)

	_, ok := s.matchAndSettle([]domain.Order{
		buy("B", 101, 10),
		sell("S", 99, 10),
	})

	assert.False(t, ok)
	assert.Equal(t, 0.0, s.ledger.Position("B"))
	assert.Equal(t, 0.0, s.ledger.Position("S"))
}

func TestMatchAndSettlePricePriority(t *testing.T) {
	s := newBareSim()
	s.ledger.Admit("B1", 0, 10000)
	s.ledger.Admit("B2", 0, 10000)
	s.ledger.Admit("S1", 100, 0)

	// The higher bidder must fill first.
	price, ok := s.matchAndSettle([]domain.Order{
		buy("B2", 100, 5),
		buy("B1", 102, 5),
		sell("S1", 98, 10),
	})

	require.True(t, ok)
	// B1 fills at (102+98)/2 = 100, then B2 at (100+98)/2 = 99.
	assert.Equal(t, 99.0, price, "last trade price comes from the lower bid")
	assert.Equal(t, 5.0, s.ledger.Position("B1"))
	assert.Equal(t, 5.0, s.ledger.Position("B2"))
	assert.Equal(t, 90.0, s.ledger.Position("S1"))
	assert.InDelta(t, 10000-5*100, s.ledger.Cash("B1"), 1e-9)
	assert.InDelta(t, 10000-5*99, s.ledger.Cash("B2"), 1e-9)
	assert.InDelta(t, 5*100+5*99, s.ledger.Cash("S1"), 1e-9)
}

func TestMatchAndSettleConservesUnitsAndCash(t *testing.T) {
	s := newBareSim()
	s.ledger.Admit("A", 40, 2000)
	s.ledger.Admit("B", 30, 500)
	s.ledger.Admit("C", 30, 7500)

	unitsBefore, cashBefore := s.ledger.Totals()

	_, _ = s.matchAndSettle([]domain.Order{
		buy("A", 103, 7),
		sell("B", 97, 12),
		buy("C", 101, 20),
		sell("A", 99, 5),
		buy("B", 96, 3),
	})

	unitsAfter, cashAfter := s.ledger.Totals()
	assert.InDelta(t, unitsBefore, unitsAfter, 1e-9, "trades move units, never create or destroy them")
	assert.InDelta(t, cashBefore, cashAfter, 1e-9, "trades move cash, never create or destroy it")

	// Capacity respect: nobody oversold or overspent.
	for _, name := range []string{"A", "B", "C"} {
		assert.GreaterOrEqual(t, s.ledger.Position(name), -1e-9, "%s position went negative", name)
		assert.GreaterOrEqual(t, s.ledger.Cash(name), -1e-9, "%s cash went negative", name)
	}
}
