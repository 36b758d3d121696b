package engine

import (
	"math"
	"sort"

	"marketsim/internal/domain"
)

// workingOrder is the matching engine's mutable copy of a submitted order.
// Submitted orders themselves are never modified.
type workingOrder struct {
	agentName string
	price     float64
	remaining float64
}

// matchAndSettle clears the tick's order pool as a double auction. Buys are
// walked highest-price-first, sells lowest-price-first; all orders within a
// tick count as simultaneous, so price is the only priority. Each crossable
// pair executes at the midpoint of the two limit prices, clamped by the
// seller's inventory and the buyer's cash, and settles into the ledger
// immediately. Returns the last executed trade price; ok is false when no
// trade happened.
func (s *Simulation) matchAndSettle(orders []domain.Order) (lastTradePrice float64, ok bool) {
	var buys, sells []workingOrder
	for _, o := range orders {
		w := workingOrder{agentName: o.AgentName, price: o.Price, remaining: o.Quantity}
		if o.Side == domain.SideBuy {
			buys = append(buys, w)
		} else {
			sells = append(sells, w)
		}
	}
	sort.SliceStable(buys, func(i, j int) bool { return buys[i].price > buys[j].price })
	sort.SliceStable(sells, func(i, j int) bool { return sells[i].price < sells[j].price })

	bi, si := 0, 0
	for bi < len(buys) && si < len(sells) {
		buy, sell := &buys[bi], &sells[si]
		if buy.price < sell.price {
			// Sorted cursors: no further pair can cross.
			break
		}
		tradePrice := (buy.price + sell.price) / 2
		sellerPosition := s.ledger.Position(sell.agentName)
		buyerCash := s.ledger.Cash(buy.agentName)
		maxByCash := 0.0
		if tradePrice > 0 {
			maxByCash = buyerCash / tradePrice
		}

		tradable := math.Min(
			math.Min(buy.remaining, sell.remaining),
			math.Min(sellerPosition, maxByCash),
		)
		if tradable <= 0 {
			// Capacity-exhausted pair. Advance the seller cursor only when
			// the seller cannot deliver (no inventory or no remaining
			// quantity); in every other case the buyer is the binding
			// constraint. Skipping the stuck side is what keeps this loop
			// finite when prices cross but capacity is zero.
			if sellerPosition <= 0 || sell.remaining <= 0 {
				si++
			} else {
				bi++
			}
			continue
		}

		s.ledger.AddPosition(buy.agentName, tradable)
		s.ledger.AddPosition(sell.agentName, -tradable)
		s.ledger.AddCash(buy.agentName, -tradable*tradePrice)
		s.ledger.AddCash(sell.agentName, tradable*tradePrice)
		buy.remaining -= tradable
		sell.remaining -= tradable
		lastTradePrice, ok = tradePrice, true

		if buy.remaining <= 0 {
			bi++
		}
		if sell.remaining <= 0 {
			si++
		}
	}
	return lastTradePrice, ok
}
