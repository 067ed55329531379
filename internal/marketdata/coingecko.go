package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"ai-trade-advisor/internal/logger"
	"ai-trade-advisor/internal/trace"
	"ai-trade-advisor/internal/types"
)

const defaultCoinGeckoURL = "https://api.coingecko.com/api/v3"

// CoinGecko fetches spot and daily prices from the CoinGecko public API.
// Symbols are CoinGecko coin ids ("bitcoin", "ethereum").
type CoinGecko struct {
	client   *resty.Client
	currency string
}

func NewCoinGecko(baseURL, currency string) *CoinGecko {
	if baseURL == "" {
		baseURL = defaultCoinGeckoURL
	}
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(10 * time.Second)

	return &CoinGecko{client: client, currency: currency}
}

func (cg *CoinGecko) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	ctx, span := trace.StartSpan(ctx, "coingecko-price-fetch")
	defer span.End()

	resp, err := cg.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"ids":           symbol,
			"vs_currencies": cg.currency,
		}).
		Get("/simple/price")
	if err != nil {
		return 0, fmt.Errorf("%w: coingecko simple/price: %v", ErrUnavailable, err)
	}
	if resp.StatusCode() != 200 {
		return 0, fmt.Errorf("%w: coingecko http %d", ErrUnavailable, resp.StatusCode())
	}

	var body map[string]map[string]float64
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return 0, fmt.Errorf("%w: coingecko parse: %v", ErrUnavailable, err)
	}
	price, ok := body[symbol][cg.currency]
	if !ok || price <= 0 {
		return 0, fmt.Errorf("%w: no %s price for %s", ErrUnavailable, cg.currency, symbol)
	}

	logger.Debug(ctx, "Fetched current price", "provider", "coingecko", "symbol", symbol, "price", price)
	return price, nil
}

func (cg *CoinGecko) HistoricalPrices(ctx context.Context, symbol string, days int) ([]types.PricePoint, error) {
	ctx, span := trace.StartSpan(ctx, "coingecko-history-fetch")
	defer span.End()

	resp, err := cg.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"vs_currency": cg.currency,
			"days":        fmt.Sprintf("%d", days),
			"interval":    "daily",
		}).
		Get("/coins/" + symbol + "/market_chart")
	if err != nil {
		return nil, fmt.Errorf("%w: coingecko market_chart: %v", ErrUnavailable, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("%w: coingecko http %d", ErrUnavailable, resp.StatusCode())
	}

	// prices come as [[ms_timestamp, price], ...]
	var body struct {
		Prices [][2]float64 `json:"prices"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("%w: coingecko parse: %v", ErrUnavailable, err)
	}

	points := make([]types.PricePoint, 0, len(body.Prices))
	for _, p := range body.Prices {
		points = append(points, types.PricePoint{Ts: int64(p[0]) / 1000, Price: p[1]})
	}

	logger.Debug(ctx, "Fetched historical prices", "provider", "coingecko", "symbol", symbol, "points", len(points))
	return points, nil
}
