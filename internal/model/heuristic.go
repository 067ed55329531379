package model

import (
	"context"
	"math"

	"ai-trade-advisor/internal/logger"
	"ai-trade-advisor/internal/types"
)

// heuristicConfidence is fixed: the heuristic consults no external
// evidence, so it never claims more than a moderate conviction.
const heuristicConfidence = 0.5

// Heuristic is the no-network fallback signaler. It compares the current
// price against the moving average it was constructed with and votes with
// the trend. Always available; used when no remote model is configured or
// the remote model fails.
type Heuristic struct {
	movingAverage float64
	epsilon       float64
}

func NewHeuristic(movingAverage, epsilon float64) *Heuristic {
	return &Heuristic{movingAverage: movingAverage, epsilon: epsilon}
}

func (h *Heuristic) ProduceSignal(ctx context.Context, price float64, _ string) (types.ModelSignal, error) {
	label := types.Hold
	switch {
	case math.Abs(price-h.movingAverage) <= h.epsilon:
		label = types.Hold
	case price > h.movingAverage:
		label = types.Buy
	default:
		label = types.Sell
	}

	logger.Debug(ctx, "Heuristic signal produced", "price", price, "moving_average", h.movingAverage, "label", label)
	return types.ModelSignal{Label: label, Confidence: heuristicConfidence, Source: "heuristic"}, nil
}
