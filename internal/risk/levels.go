package risk

import (
	"errors"
	"fmt"

	"ai-trade-advisor/internal/types"
)

// ErrInvalidPercentage flags misconfigured risk bands. The run must abort:
// levels computed from nonsense percentages are worse than no levels.
var ErrInvalidPercentage = errors.New("invalid percentage")

// ComputeLevels derives take-profit and stop-loss prices from the action
// and the current price. HOLD carries no levels. Percentages are fractions
// (0.02 for 2%) and must sit in [0,1).
func ComputeLevels(action types.Action, price, takeProfitPct, stopLossPct float64) (*types.Levels, error) {
	if err := validatePct("take_profit_pct", takeProfitPct); err != nil {
		return nil, err
	}
	if err := validatePct("stop_loss_pct", stopLossPct); err != nil {
		return nil, err
	}

	switch action {
	case types.Buy:
		return &types.Levels{
			TakeProfit: price * (1 + takeProfitPct),
			StopLoss:   price * (1 - stopLossPct),
		}, nil
	case types.Sell:
		return &types.Levels{
			TakeProfit: price * (1 - takeProfitPct),
			StopLoss:   price * (1 + stopLossPct),
		}, nil
	default:
		return nil, nil
	}
}

func validatePct(name string, pct float64) error {
	if pct < 0 || pct >= 1 {
		return fmt.Errorf("%w: %s=%.4f must be in [0,1)", ErrInvalidPercentage, name, pct)
	}
	return nil
}
