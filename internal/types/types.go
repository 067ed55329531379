package types

// Action is the final verdict of the advisor for an instrument.
type Action string

const (
	Buy  Action = "BUY"
	Sell Action = "SELL"
	Hold Action = "HOLD"
)

// Direction describes where the current price sits relative to its moving average.
type Direction string

const (
	Up   Direction = "UP"
	Down Direction = "DOWN"
	Flat Direction = "FLAT"
)

// PricePoint is a single timestamped price from a market-data provider.
type PricePoint struct {
	Ts    int64   `json:"ts"`
	Price float64 `json:"price"`
}

// ModelSignal is the external model's opinion: a label plus a confidence in [0,1].
type ModelSignal struct {
	Label      Action  `json:"label"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source,omitempty"`
}

// TrendSignal is the deterministic moving-average read of the price series.
type TrendSignal struct {
	Direction     Direction `json:"direction"`
	MovingAverage float64   `json:"moving_average"`
}

// Levels are the computed exit prices for a non-HOLD action.
type Levels struct {
	TakeProfit float64 `json:"take_profit"`
	StopLoss   float64 `json:"stop_loss"`
}

// Report is the terminal artifact of one advisor run. Levels is nil for HOLD.
// Degraded marks that the remote model was unavailable and the heuristic
// fallback supplied the signal.
type Report struct {
	Symbol        string  `json:"symbol"`
	Action        Action  `json:"action"`
	Confidence    float64 `json:"confidence"`
	Price         float64 `json:"price"`
	MovingAverage float64 `json:"moving_average"`
	Levels        *Levels `json:"levels,omitempty"`
	Degraded      bool    `json:"degraded,omitempty"`
	Reason        string  `json:"reason,omitempty"`
	Time          int64   `json:"time"`
}

// Closes extracts the prices of a series in order.
func Closes(points []PricePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Price
	}
	return out
}
