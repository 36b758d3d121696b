package engine

import (
	"math"
	"strings"

	"marketsim/internal/agent"
	"marketsim/internal/domain"
)

// marketMakerPrefix identifies liquidation counterparties by naming
// convention.
const marketMakerPrefix = "MM"

// detectAndLiquidate scans the ledger for insolvent agents (negative net
// worth at the current price), force-sells their long positions to market
// makers at the bids those makers quoted this tick, and evicts any agent
// whose net worth is still negative afterwards. Returns the evicted names.
//
// Liquidation is best effort: an agent whose position no market maker can
// absorb is evicted with its residual negative-worth ledger discarded. That
// loss is accepted, not an error.
func (s *Simulation) detectAndLiquidate(orders []domain.Order) []string {
	var candidates []agent.Agent
	for _, a := range s.agents {
		if s.ledger.NetWorth(a.Name(), s.price) < 0 {
			candidates = append(candidates, a)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	// Liquidation bid book: each market maker's highest buy quote from this
	// tick's pool. Non-positive quotes are unusable and end up skipped below
	// either way.
	mmBids := make(map[string]float64)
	for _, o := range orders {
		if o.Side == domain.SideBuy && strings.HasPrefix(o.AgentName, marketMakerPrefix) {
			if o.Price > mmBids[o.AgentName] {
				mmBids[o.AgentName] = o.Price
			}
		}
	}

	s.liquidate(candidates, mmBids)

	var evicted []string
	for _, a := range candidates {
		if s.ledger.NetWorth(a.Name(), s.price) < 0 {
			evicted = append(evicted, a.Name())
		}
	}
	for _, name := range evicted {
		s.removeAgentLocked(name)
	}
	return evicted
}

// liquidate transfers each candidate's long position to willing market
// makers in registration order, at each maker's quoted bid, until the
// position is exhausted or no maker can absorb more. Short or flat
// candidates have nothing to sell and are skipped.
func (s *Simulation) liquidate(candidates []agent.Agent, mmBids map[string]float64) {
	var makers []agent.Agent
	for _, a := range s.agents {
		if strings.HasPrefix(a.Name(), marketMakerPrefix) {
			makers = append(makers, a)
		}
	}
	for _, cand := range candidates {
		remaining := s.ledger.Position(cand.Name())
		if remaining <= 0 {
			continue
		}
		for _, mm := range makers {
			if mm.Name() == cand.Name() {
				continue
			}
			bid := mmBids[mm.Name()]
			if bid <= 0 {
				continue
			}
			mmCash := s.ledger.Cash(mm.Name())
			maxBuy := mmCash / bid
			if maxBuy <= 0 {
				continue
			}
			units := math.Min(remaining, maxBuy)
			if units <= 0 {
				continue
			}
			s.ledger.AddPosition(cand.Name(), -units)
			s.ledger.AddPosition(mm.Name(), units)
			s.ledger.AddCash(cand.Name(), units*bid)
			s.ledger.AddCash(mm.Name(), -units*bid)
			remaining -= units
			if remaining <= 0 {
				break
			}
		}
	}
}

// removeAgentLocked drops an agent from the registry and the ledger. Caller
// holds the simulation mutex.
func (s *Simulation) removeAgentLocked(name string) {
	for i, a := range s.agents {
		if a.Name() == name {
			s.agents = append(s.agents[:i], s.agents[i+1:]...)
			break
		}
	}
	s.ledger.Evict(name)
}
