// Package domain defines the value types shared across the market simulator:
// orders, per-agent state, and the per-tick market snapshot.
package domain

// Side indicates whether an order buys or sells the asset.
type Side string

// Order sides. The wire values match what the dashboard expects in the
// snapshot feed.
const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Order is an intent to buy or sell a quantity of the asset at a limit
// price, tagged with the agent that submitted it. Orders are immutable;
// the matching engine tracks remaining quantity on its own working copies.
type Order struct {
	AgentName string  `json:"agentName"`
	Price     float64 `json:"price"`
	Quantity  float64 `json:"quantity"`
	Side      Side    `json:"type"`
}

// AgentState is one agent's entry in a snapshot: the orders it submitted
// this tick plus its post-tick ledger balances.
type AgentState struct {
	Name          string  `json:"name"`
	LastOrders    []Order `json:"lastOrders"`
	PositionUnits float64 `json:"positionUnits"`
	CashBalance   float64 `json:"cashBalance"`
	InitialCash   float64 `json:"initialCash"`
}

// MarketConfig carries the aggregate configuration and totals published with
// every snapshot. TotalAssetUnits and the rates are fixed at startup;
// TotalCash grows when a new agent is admitted with a cash deposit.
// CurrentTotalAssets and CurrentTotalCash are the sums over the live ledger
// at snapshot time.
type MarketConfig struct {
	TotalAssetUnits    float64            `json:"totalAssetUnits"`
	TotalCash          float64            `json:"totalCash"`
	FundingRate        float64            `json:"fundingRate"`
	DividendRate       float64            `json:"dividendRate"`
	CurrentTotalAssets float64            `json:"currentTotalAssets"`
	CurrentTotalCash   float64            `json:"currentTotalCash"`
	InitialPositions   map[string]float64 `json:"initialPositions"`
}

// MarketSnapshot is the immutable result of one completed tick. The engine
// keeps only the most recent snapshot; history, if wanted, is recorded by a
// store subscribed to the snapshot stream.
type MarketSnapshot struct {
	Price  float64      `json:"price"`
	Agents []AgentState `json:"agents"`
	Config MarketConfig `json:"config"`
}
