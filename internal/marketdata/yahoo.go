package marketdata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"

	"ai-trade-advisor/internal/logger"
	"ai-trade-advisor/internal/trace"
	"ai-trade-advisor/internal/types"
)

// Yahoo fetches quotes and daily bars from Yahoo Finance. Symbols are
// Yahoo tickers ("BTC-USD", "AAPL").
type Yahoo struct{}

func NewYahoo() *Yahoo {
	return &Yahoo{}
}

func (y *Yahoo) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	_, span := trace.StartSpan(ctx, "yahoo-price-fetch")
	defer span.End()

	q, err := quote.Get(strings.ToUpper(symbol))
	if err != nil {
		return 0, fmt.Errorf("%w: yahoo quote: %v", ErrUnavailable, err)
	}
	if q == nil || q.RegularMarketPrice <= 0 {
		return 0, fmt.Errorf("%w: yahoo has no quote for %s", ErrUnavailable, symbol)
	}

	logger.Debug(ctx, "Fetched current price", "provider", "yahoo", "symbol", symbol, "price", q.RegularMarketPrice)
	return q.RegularMarketPrice, nil
}

func (y *Yahoo) HistoricalPrices(ctx context.Context, symbol string, days int) ([]types.PricePoint, error) {
	_, span := trace.StartSpan(ctx, "yahoo-history-fetch")
	defer span.End()

	end := time.Now()
	start := end.AddDate(0, 0, -days)

	iter := chart.Get(&chart.Params{
		Symbol:   strings.ToUpper(symbol),
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	})

	var points []types.PricePoint
	for iter.Next() {
		bar := iter.Bar()
		close, _ := bar.Close.Float64()
		points = append(points, types.PricePoint{Ts: int64(bar.Timestamp), Price: close})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: yahoo chart: %v", ErrUnavailable, err)
	}

	logger.Debug(ctx, "Fetched historical prices", "provider", "yahoo", "symbol", symbol, "points", len(points))
	return points, nil
}
