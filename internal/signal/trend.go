package signal

import (
	"math"

	"ai-trade-advisor/internal/ta"
	"ai-trade-advisor/internal/types"
)

// Trend derives the moving-average trend for the series. With no history
// the trend degrades to FLAT anchored at the current price; a series
// shorter than the window still averages over what exists.
func Trend(prices []float64, current float64, window int, epsilon float64) types.TrendSignal {
	avg, err := ta.MovingAverage(prices, window)
	if err != nil {
		return types.TrendSignal{Direction: types.Flat, MovingAverage: current}
	}

	dir := types.Flat
	switch {
	case math.Abs(current-avg) <= epsilon:
		dir = types.Flat
	case current > avg:
		dir = types.Up
	default:
		dir = types.Down
	}
	return types.TrendSignal{Direction: dir, MovingAverage: avg}
}
