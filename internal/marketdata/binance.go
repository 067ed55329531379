package marketdata

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/adshao/go-binance/v2"
	"golang.org/x/time/rate"

	"ai-trade-advisor/internal/logger"
	"ai-trade-advisor/internal/trace"
	"ai-trade-advisor/internal/types"
)

// Binance fetches spot prices via the official REST client. Symbols are
// exchange pairs ("BTCUSDT"); lowercase input is normalized.
type Binance struct {
	client  *binance.Client
	limiter *rate.Limiter
}

func NewBinance(apiKey, secretKey string) *Binance {
	return &Binance{
		client: binance.NewClient(apiKey, secretKey),
		// public endpoints tolerate far more, this keeps bursts polite
		limiter: rate.NewLimiter(rate.Limit(10), 20),
	}
}

func (b *Binance) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	ctx, span := trace.StartSpan(ctx, "binance-price-fetch")
	defer span.End()

	if err := b.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	prices, err := b.client.NewListPricesService().Symbol(strings.ToUpper(symbol)).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: binance ticker: %v", ErrUnavailable, err)
	}
	if len(prices) == 0 {
		return 0, fmt.Errorf("%w: binance has no ticker for %s", ErrUnavailable, symbol)
	}

	price, err := strconv.ParseFloat(prices[0].Price, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: binance price parse: %v", ErrUnavailable, err)
	}

	logger.Debug(ctx, "Fetched current price", "provider", "binance", "symbol", symbol, "price", price)
	return price, nil
}

func (b *Binance) HistoricalPrices(ctx context.Context, symbol string, days int) ([]types.PricePoint, error) {
	ctx, span := trace.StartSpan(ctx, "binance-history-fetch")
	defer span.End()

	if err := b.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	klines, err := b.client.NewKlinesService().
		Symbol(strings.ToUpper(symbol)).
		Interval("1d").
		Limit(days).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: binance klines: %v", ErrUnavailable, err)
	}

	points := make([]types.PricePoint, 0, len(klines))
	for _, k := range klines {
		close, err := strconv.ParseFloat(k.Close, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: binance kline parse: %v", ErrUnavailable, err)
		}
		points = append(points, types.PricePoint{Ts: k.CloseTime / 1000, Price: close})
	}

	logger.Debug(ctx, "Fetched historical prices", "provider", "binance", "symbol", symbol, "points", len(points))
	return points, nil
}
