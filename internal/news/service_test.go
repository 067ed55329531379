package news

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-trade-advisor/internal/store"
)

type fakeFetcher struct {
	headlines []string
	err       error
	calls     int
}

func (f *fakeFetcher) Fetch(ctx context.Context, symbol string, limit int) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.headlines, nil
}

func TestHeadlinesJoinsAndCaches(t *testing.T) {
	fetcher := &fakeFetcher{headlines: []string{"Bitcoin rallies", "ETF inflows continue"}}
	svc := &Service{fetcher: fetcher, cache: newHeadlineCache(time.Hour), limit: 5}

	digest, ok := svc.Headlines(context.Background(), "bitcoin")
	if !ok {
		t.Fatal("want headlines, got none")
	}
	if digest != "Bitcoin rallies\nETF inflows continue" {
		t.Fatalf("unexpected digest: %q", digest)
	}

	// second call within the TTL must come from the cache
	svc.Headlines(context.Background(), "bitcoin")
	if fetcher.calls != 1 {
		t.Fatalf("want 1 fetch, got %d", fetcher.calls)
	}

	// a different symbol is a separate cache entry
	svc.Headlines(context.Background(), "ethereum")
	if fetcher.calls != 2 {
		t.Fatalf("want 2 fetches, got %d", fetcher.calls)
	}
}

func TestHeadlinesCacheExpires(t *testing.T) {
	fetcher := &fakeFetcher{headlines: []string{"headline"}}
	svc := &Service{fetcher: fetcher, cache: newHeadlineCache(time.Nanosecond), limit: 5}

	svc.Headlines(context.Background(), "bitcoin")
	time.Sleep(time.Millisecond)
	svc.Headlines(context.Background(), "bitcoin")

	if fetcher.calls != 2 {
		t.Fatalf("expired entry must refetch, got %d calls", fetcher.calls)
	}
}

func TestHeadlinesFetchFailureIsAbsence(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("api down")}
	svc := &Service{fetcher: fetcher, cache: newHeadlineCache(time.Hour), limit: 5}

	digest, ok := svc.Headlines(context.Background(), "bitcoin")
	if ok || digest != "" {
		t.Fatalf("failed fetch must yield absence, got %q/%v", digest, ok)
	}
}

func TestHeadlinesEmptyResultIsAbsence(t *testing.T) {
	fetcher := &fakeFetcher{headlines: nil}
	svc := &Service{fetcher: fetcher, cache: newHeadlineCache(time.Hour), limit: 5}

	_, ok := svc.Headlines(context.Background(), "bitcoin")
	if ok {
		t.Fatal("no headlines must yield absence")
	}
}

func TestNewServiceUnconfiguredIsNil(t *testing.T) {
	cfg := &store.Config{}
	cfg.News.Source = "OFF"
	if svc := NewService(cfg); svc != nil {
		t.Fatal("OFF must yield a nil service")
	}

	cfg.News.Source = "API" // no key
	if svc := NewService(cfg); svc != nil {
		t.Fatal("API without key must yield a nil service")
	}
}

func TestNewServiceConfiguredVariants(t *testing.T) {
	cfg := &store.Config{}
	cfg.News.Source = "API"
	cfg.News.APIKey = "k"
	cfg.News.Limit = 5
	cfg.News.CacheMinutes = 60
	if svc := NewService(cfg); svc == nil {
		t.Fatal("API with key must yield a service")
	}

	cfg.News.Source = "SCRAPE"
	cfg.News.APIKey = ""
	if svc := NewService(cfg); svc == nil {
		t.Fatal("SCRAPE must yield a service")
	}
}
