package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"ai-trade-advisor/internal/marketdata"
	"ai-trade-advisor/internal/model"
	"ai-trade-advisor/internal/risk"
	"ai-trade-advisor/internal/store"
	"ai-trade-advisor/internal/ta"
	"ai-trade-advisor/internal/types"
)

type fakeProvider struct {
	price   float64
	history []types.PricePoint
	err     error
}

func (f *fakeProvider) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.price, nil
}

func (f *fakeProvider) HistoricalPrices(ctx context.Context, symbol string, days int) ([]types.PricePoint, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.history, nil
}

type fakeSignaler struct {
	sig types.ModelSignal
	err error
}

func (f *fakeSignaler) ProduceSignal(ctx context.Context, price float64, _ string) (types.ModelSignal, error) {
	if f.err != nil {
		return types.ModelSignal{}, f.err
	}
	return f.sig, nil
}

func testConfig() *store.Config {
	cfg := &store.Config{}
	cfg.Currency = "usd"
	cfg.HistoryDays = 7
	cfg.Trend.Window = 7
	cfg.Trend.Epsilon = 1e-6
	cfg.Fusion.MinConfidence = 0.3
	cfg.Fusion.DisagreementPenalty = 0.5
	cfg.Risk.TakeProfitPct = 0.05
	cfg.Risk.StopLossPct = 0.02
	return cfg
}

func sevenDayHistory() []types.PricePoint {
	prices := []float64{90, 92, 94, 96, 98, 100, 102}
	points := make([]types.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = types.PricePoint{Ts: int64(i), Price: p}
	}
	return points
}

func TestAnalyzeAgreementProducesBuyWithLevels(t *testing.T) {
	provider := &fakeProvider{price: 100, history: sevenDayHistory()}
	signaler := &fakeSignaler{sig: types.ModelSignal{Label: types.Buy, Confidence: 0.8, Source: "fake"}}

	adv := New(testConfig(), provider, signaler, nil)
	report, err := adv.Analyze(context.Background(), "bitcoin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Action != types.Buy {
		t.Fatalf("want BUY, got %s", report.Action)
	}
	if math.Abs(report.Confidence-0.9) > 1e-9 {
		t.Fatalf("want confidence 0.9, got %v", report.Confidence)
	}
	if report.MovingAverage != 96 {
		t.Fatalf("want moving average 96, got %v", report.MovingAverage)
	}
	if report.Levels == nil {
		t.Fatal("BUY must carry levels")
	}
	if math.Abs(report.Levels.TakeProfit-105) > 1e-9 || math.Abs(report.Levels.StopLoss-98) > 1e-9 {
		t.Fatalf("want levels 105/98, got %v/%v", report.Levels.TakeProfit, report.Levels.StopLoss)
	}
	if report.Degraded {
		t.Fatal("healthy model must not mark the report degraded")
	}
}

func TestAnalyzeDisagreementHoldsWithoutLevels(t *testing.T) {
	provider := &fakeProvider{price: 100, history: sevenDayHistory()} // trend UP
	signaler := &fakeSignaler{sig: types.ModelSignal{Label: types.Sell, Confidence: 0.8}}

	adv := New(testConfig(), provider, signaler, nil)
	report, err := adv.Analyze(context.Background(), "bitcoin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Action != types.Hold {
		t.Fatalf("disagreement: want HOLD, got %s", report.Action)
	}
	if math.Abs(report.Confidence-0.4) > 1e-9 {
		t.Fatalf("want penalized confidence 0.4, got %v", report.Confidence)
	}
	if report.Levels != nil {
		t.Fatalf("HOLD must not carry levels, got %+v", report.Levels)
	}
}

func TestAnalyzeModelUnavailableFallsBackToHeuristic(t *testing.T) {
	provider := &fakeProvider{price: 100, history: sevenDayHistory()}
	signaler := &fakeSignaler{err: fmt.Errorf("%w: connection refused", model.ErrUnavailable)}

	adv := New(testConfig(), provider, signaler, nil)
	report, err := adv.Analyze(context.Background(), "bitcoin")
	if err != nil {
		t.Fatalf("fallback must not fail the run: %v", err)
	}

	if !report.Degraded {
		t.Fatal("fallback must mark the report degraded")
	}
	// heuristic says BUY (100 > 96) at 0.5 confidence, trend agrees: (0.5+1)/2
	if report.Action != types.Buy {
		t.Fatalf("want heuristic BUY, got %s", report.Action)
	}
	if math.Abs(report.Confidence-0.75) > 1e-9 {
		t.Fatalf("want confidence 0.75, got %v", report.Confidence)
	}
}

func TestAnalyzeNilSignalerUsesHeuristicTransparently(t *testing.T) {
	provider := &fakeProvider{price: 100, history: sevenDayHistory()}

	adv := New(testConfig(), provider, nil, nil)
	report, err := adv.Analyze(context.Background(), "bitcoin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Action != types.Buy {
		t.Fatalf("want BUY, got %s", report.Action)
	}
	if report.Degraded {
		t.Fatal("an unconfigured model is not degradation")
	}
}

func TestAnalyzeEmptyHistoryAborts(t *testing.T) {
	provider := &fakeProvider{price: 100, history: nil}

	adv := New(testConfig(), provider, nil, nil)
	_, err := adv.Analyze(context.Background(), "bitcoin")
	if !errors.Is(err, ta.ErrInsufficientData) {
		t.Fatalf("want ErrInsufficientData, got %v", err)
	}
}

func TestAnalyzeProviderFailureAborts(t *testing.T) {
	provider := &fakeProvider{err: fmt.Errorf("%w: timeout", marketdata.ErrUnavailable)}

	adv := New(testConfig(), provider, nil, nil)
	_, err := adv.Analyze(context.Background(), "bitcoin")
	if !errors.Is(err, marketdata.ErrUnavailable) {
		t.Fatalf("want ErrUnavailable, got %v", err)
	}
}

func TestAnalyzeInvalidPercentagesAbort(t *testing.T) {
	cfg := testConfig()
	cfg.Risk.TakeProfitPct = 1.5

	provider := &fakeProvider{price: 100, history: sevenDayHistory()}
	signaler := &fakeSignaler{sig: types.ModelSignal{Label: types.Buy, Confidence: 0.8}}

	adv := New(cfg, provider, signaler, nil)
	_, err := adv.Analyze(context.Background(), "bitcoin")
	if !errors.Is(err, risk.ErrInvalidPercentage) {
		t.Fatalf("want ErrInvalidPercentage, got %v", err)
	}
}
