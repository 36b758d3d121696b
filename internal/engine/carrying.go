package engine

// Carrying costs accrue once per tick for every registered agent, whether or
// not it traded. Both passes run before matching, so they always read the
// position and cash state as of the start of the tick.

// applyFundingRate subtracts initialCash * fundingRate from every agent's
// cash balance. A rate of zero or less disables funding entirely.
func (s *Simulation) applyFundingRate() {
	if s.fundingRate <= 0 {
		return
	}
	for _, a := range s.agents {
		name := a.Name()
		s.ledger.AddCash(name, -s.ledger.InitialCash(name)*s.fundingRate)
	}
}

// applyDividendRate adds positionUnits * price * dividendRate to every
// agent's cash balance. A rate of zero or less disables dividends entirely.
func (s *Simulation) applyDividendRate() {
	if s.dividendRate <= 0 {
		return
	}
	for _, a := range s.agents {
		name := a.Name()
		s.ledger.AddCash(name, s.ledger.Position(name)*s.price*s.dividendRate)
	}
}
