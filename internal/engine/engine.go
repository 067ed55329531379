package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"ai-trade-advisor/internal/decisionlog"
	"ai-trade-advisor/internal/logger"
	"ai-trade-advisor/internal/marketdata"
	"ai-trade-advisor/internal/model"
	"ai-trade-advisor/internal/news"
	"ai-trade-advisor/internal/risk"
	"ai-trade-advisor/internal/signal"
	"ai-trade-advisor/internal/store"
	"ai-trade-advisor/internal/ta"
	"ai-trade-advisor/internal/types"
)

// Advisor runs the full decision pipeline for one symbol: fetch prices,
// derive the trend, obtain a model signal, fuse, compute risk levels and
// assemble the report.
type Advisor struct {
	cfg      *store.Config
	provider marketdata.Provider
	signaler model.Signaler // nil means heuristic-only
	news     *news.Service  // nil means no headline context
}

func New(cfg *store.Config, provider marketdata.Provider, signaler model.Signaler, newsSvc *news.Service) *Advisor {
	return &Advisor{cfg: cfg, provider: provider, signaler: signaler, news: newsSvc}
}

// Analyze produces the decision report for symbol. Market-data failures
// and invalid risk percentages abort the run; a failing remote model does
// not, it degrades to the heuristic signaler.
func (a *Advisor) Analyze(ctx context.Context, symbol string) (*types.Report, error) {
	op := logger.StartOperation(ctx, "advisor-analyze")
	ctx = op.GetContext()

	price, err := a.provider.CurrentPrice(ctx, symbol)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to fetch current price", err, "symbol", symbol)
		op.EndWithError(err)
		return nil, fmt.Errorf("current price for %s: %w", symbol, err)
	}

	history, err := a.provider.HistoricalPrices(ctx, symbol, a.cfg.HistoryDays)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to fetch historical prices", err, "symbol", symbol)
		op.EndWithError(err)
		return nil, fmt.Errorf("historical prices for %s: %w", symbol, err)
	}
	if len(history) == 0 {
		err := fmt.Errorf("%w: empty history for %s", ta.ErrInsufficientData, symbol)
		logger.ErrorWithErr(ctx, "No historical prices returned", err, "symbol", symbol)
		op.EndWithError(err)
		return nil, err
	}

	closes := types.Closes(history)
	trend := signal.Trend(closes, price, a.cfg.Trend.Window, a.cfg.Trend.Epsilon)
	logger.Debug(ctx, "Trend derived",
		"symbol", symbol,
		"direction", trend.Direction,
		"moving_average", trend.MovingAverage,
		"price", price,
	)

	modelCtx := a.buildModelContext(ctx, symbol, closes)

	sig, degraded := a.produceSignal(ctx, symbol, price, trend, modelCtx)

	action, confidence := signal.Fuse(trend, sig, signal.FusionConfig{
		MinConfidence:       a.cfg.Fusion.MinConfidence,
		DisagreementPenalty: a.cfg.Fusion.DisagreementPenalty,
	})

	levels, err := risk.ComputeLevels(action, price, a.cfg.Risk.TakeProfitPct, a.cfg.Risk.StopLossPct)
	if err != nil {
		logger.ErrorWithErr(ctx, "Risk level computation failed", err, "symbol", symbol)
		op.EndWithError(err)
		return nil, err
	}

	report := &types.Report{
		Symbol:        symbol,
		Action:        action,
		Confidence:    confidence,
		Price:         price,
		MovingAverage: trend.MovingAverage,
		Levels:        levels,
		Degraded:      degraded,
		Reason:        fuseReason(trend, sig, degraded),
		Time:          time.Now().Unix(),
	}

	logger.Decision(ctx, symbol, string(action), confidence, report.Reason,
		"price", price,
		"moving_average", trend.MovingAverage,
		"model_source", sig.Source,
	)

	if a.cfg.LogDecisions {
		if err := decisionlog.Append(report); err != nil {
			logger.Warn(ctx, "Failed to append decision log", "symbol", symbol, "error", err)
		}
	}

	op.End()
	return report, nil
}

// produceSignal asks the configured signaler, falling back to the
// heuristic when the remote model is unavailable. The fallback marks the
// report as degraded; it is never a run failure.
func (a *Advisor) produceSignal(ctx context.Context, symbol string, price float64, trend types.TrendSignal, modelCtx string) (types.ModelSignal, bool) {
	heuristic := model.NewHeuristic(trend.MovingAverage, a.cfg.Trend.Epsilon)

	if a.signaler == nil {
		sig, _ := heuristic.ProduceSignal(ctx, price, modelCtx)
		return sig, false
	}

	sig, err := a.signaler.ProduceSignal(ctx, price, modelCtx)
	if err != nil {
		if !errors.Is(err, model.ErrUnavailable) {
			logger.ErrorWithErr(ctx, "Unexpected model error, degrading to heuristic", err, "symbol", symbol)
		} else {
			logger.Warn(ctx, "Remote model unavailable, degrading to heuristic", "symbol", symbol, "error", err)
		}
		sig, _ = heuristic.ProduceSignal(ctx, price, modelCtx)
		return sig, true
	}
	return sig, false
}

// buildModelContext assembles the optional text handed to remote models:
// recent headlines plus an RSI reading when enough history exists.
func (a *Advisor) buildModelContext(ctx context.Context, symbol string, closes []float64) string {
	var parts []string

	if a.news != nil {
		if digest, ok := a.news.Headlines(ctx, symbol); ok {
			parts = append(parts, "Recent headlines:\n"+digest)
		}
	}

	if rsi := ta.RSI(closes, 14); !math.IsNaN(rsi) {
		parts = append(parts, fmt.Sprintf("RSI(14)=%.1f", rsi))
	}

	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "\n"
		}
		out += p
	}
	return out
}

func fuseReason(trend types.TrendSignal, sig types.ModelSignal, degraded bool) string {
	reason := fmt.Sprintf("trend=%s model=%s(%.2f)", trend.Direction, sig.Label, sig.Confidence)
	if degraded {
		reason += " reduced_evidence=heuristic_fallback"
	}
	return reason
}
