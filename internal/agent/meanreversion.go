package agent

import "marketsim/internal/domain"

// Compile-time interface check.
var _ Agent = (*MeanReversionTrader)(nil)

// defaultMeanReversionWindow is the rolling-average length used when no
// explicit window is requested.
const defaultMeanReversionWindow = 5

// MeanReversionTrader bets the price returns to its recent average: it sells
// when the current price is above the rolling mean and buys otherwise.
type MeanReversionTrader struct {
	name       string
	window     []float64
	windowSize int
	sum        float64
}

// NewMeanReversionTrader creates a mean-reversion trader with the given
// rolling-window length. A window of 0 or less selects the default.
func NewMeanReversionTrader(name string, windowSize int) *MeanReversionTrader {
	if windowSize <= 0 {
		windowSize = defaultMeanReversionWindow
	}
	return &MeanReversionTrader{name: name, windowSize: windowSize}
}

// Name returns the agent's identifier.
func (m *MeanReversionTrader) Name() string { return m.name }

// Decide updates the rolling window with the current price and returns one
// order at the current price against the deviation from the mean.
func (m *MeanReversionTrader) Decide(price float64) []domain.Order {
	m.window = append(m.window, price)
	m.sum += price
	if len(m.window) > m.windowSize {
		m.sum -= m.window[0]
		m.window = m.window[1:]
	}
	avg := m.sum / float64(len(m.window))

	side := domain.SideBuy
	if price > avg {
		side = domain.SideSell
	}
	return []domain.Order{
		{AgentName: m.name, Price: price, Quantity: defaultOrderQty, Side: side},
	}
}
