package model

import (
	"context"
	"errors"
	"strings"

	"ai-trade-advisor/internal/types"
)

// ErrUnavailable means the remote model could not produce a usable signal.
// Callers recover by switching to the heuristic signaler; it never aborts
// a run on its own.
var ErrUnavailable = errors.New("model unavailable")

// Signaler turns a price plus optional context text into a labeled signal.
type Signaler interface {
	ProduceSignal(ctx context.Context, price float64, newsContext string) (types.ModelSignal, error)
}

// normalizeSignal coerces free-form model output into the BUY/SELL/HOLD
// vocabulary and clamps confidence into [0,1].
func normalizeSignal(s *types.ModelSignal) {
	label := types.Action(strings.ToUpper(strings.TrimSpace(string(s.Label))))
	switch label {
	case types.Buy, types.Sell, types.Hold:
		s.Label = label
	default:
		s.Label = types.Hold
	}
	if s.Confidence < 0 {
		s.Confidence = 0
	}
	if s.Confidence > 1 {
		s.Confidence = 1
	}
}
