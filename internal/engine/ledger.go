package engine

// Ledger tracks per-agent position units, cash balance, and the initial cash
// basis fixed at admission time. Exactly one entry exists per registered
// agent; entries are created on admission and removed only on eviction.
// Missing agents read as zero, so callers never need existence checks.
type Ledger struct {
	positions   map[string]float64
	cash        map[string]float64
	initialCash map[string]float64
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		positions:   make(map[string]float64),
		cash:        make(map[string]float64),
		initialCash: make(map[string]float64),
	}
}

// Admit creates the ledger entry for a newly registered agent. The cash
// deposit becomes the agent's initial cash basis for funding accrual.
func (l *Ledger) Admit(name string, position, cash float64) {
	l.positions[name] = position
	l.cash[name] = cash
	l.initialCash[name] = cash
}

// Evict permanently removes an agent's entry.
func (l *Ledger) Evict(name string) {
	delete(l.positions, name)
	delete(l.cash, name)
	delete(l.initialCash, name)
}

// Position returns the agent's asset units (negative means short).
func (l *Ledger) Position(name string) float64 { return l.positions[name] }

// Cash returns the agent's cash balance.
func (l *Ledger) Cash(name string) float64 { return l.cash[name] }

// InitialCash returns the cash basis fixed at admission.
func (l *Ledger) InitialCash(name string) float64 { return l.initialCash[name] }

// AddPosition moves the agent's position by delta.
func (l *Ledger) AddPosition(name string, delta float64) {
	l.positions[name] += delta
}

// AddCash moves the agent's cash balance by delta.
func (l *Ledger) AddCash(name string, delta float64) {
	l.cash[name] += delta
}

// NetWorth returns cash plus the mark-to-market position value. An agent
// with negative net worth is insolvent.
func (l *Ledger) NetWorth(name string, price float64) float64 {
	return l.cash[name] + l.positions[name]*price
}

// Totals returns the sums of all position units and cash balances.
func (l *Ledger) Totals() (units, cash float64) {
	for _, p := range l.positions {
		units += p
	}
	for _, c := range l.cash {
		cash += c
	}
	return units, cash
}
