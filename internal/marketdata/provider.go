package marketdata

import (
	"context"
	"errors"

	"ai-trade-advisor/internal/types"
)

// ErrUnavailable wraps every provider failure: the caller cannot price the
// instrument and the run must stop.
var ErrUnavailable = errors.New("market data provider unavailable")

// Provider fetches current and historical prices for one instrument.
// Implementations own symbol conventions (CoinGecko ids, Binance pairs,
// Yahoo tickers).
type Provider interface {
	CurrentPrice(ctx context.Context, symbol string) (float64, error)
	HistoricalPrices(ctx context.Context, symbol string, days int) ([]types.PricePoint, error)
}
