package signal

import (
	"ai-trade-advisor/internal/types"
)

// FusionConfig carries the tunable constants of the merge policy. Their
// exact values shape behavior, not correctness, so they live in config
// rather than as literals.
type FusionConfig struct {
	// MinConfidence gates the model's opinion: anything below it is
	// treated as insufficient evidence.
	MinConfidence float64
	// DisagreementPenalty scales the confidence down when trend and
	// model point in opposite directions.
	DisagreementPenalty float64
}

// Fuse merges the moving-average trend with the model's signal into one
// action. The policy is deterministic:
//
//  1. weak model confidence forces HOLD
//  2. agreement takes the model label, averaged with the trend strength
//  3. disagreement forces HOLD with a penalized confidence
//  4. a FLAT trend defers entirely to the model
func Fuse(trend types.TrendSignal, model types.ModelSignal, cfg FusionConfig) (types.Action, float64) {
	if model.Confidence < cfg.MinConfidence {
		return types.Hold, clamp01(model.Confidence)
	}

	if trend.Direction == types.Flat {
		return model.Label, clamp01(model.Confidence)
	}

	if agrees(trend.Direction, model.Label) {
		const trendStrength = 1.0
		return model.Label, clamp01((model.Confidence + trendStrength) / 2)
	}

	return types.Hold, clamp01(model.Confidence * cfg.DisagreementPenalty)
}

func agrees(dir types.Direction, label types.Action) bool {
	return (dir == types.Up && label == types.Buy) ||
		(dir == types.Down && label == types.Sell)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
