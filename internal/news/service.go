package news

import (
	"context"
	"strings"
	"sync"
	"time"

	"ai-trade-advisor/internal/logger"
	"ai-trade-advisor/internal/store"
)

// Fetcher returns recent headlines for a symbol.
type Fetcher interface {
	Fetch(ctx context.Context, symbol string, limit int) ([]string, error)
}

// Service provides a headline digest for the model context, with caching
// so repeated symbols within one invocation don't refetch.
type Service struct {
	fetcher Fetcher
	cache   *headlineCache
	limit   int
}

// NewService wires the configured headline source. Returns nil when news
// is unconfigured; callers treat a nil service as "no context available".
func NewService(cfg *store.Config) *Service {
	if !cfg.NewsConfigured() {
		return nil
	}

	var fetcher Fetcher
	switch cfg.News.Source {
	case "SCRAPE":
		fetcher = NewScraper(30 * time.Second)
	default:
		fetcher = NewClient(cfg.News.BaseURL, cfg.News.APIKey)
	}

	return &Service{
		fetcher: fetcher,
		cache:   newHeadlineCache(time.Duration(cfg.News.CacheMinutes) * time.Minute),
		limit:   cfg.News.Limit,
	}
}

// Headlines returns a newline-joined digest of recent headlines. The
// second return is false when nothing could be fetched; a failed news
// fetch never fails the run, it just removes the context.
func (s *Service) Headlines(ctx context.Context, symbol string) (string, bool) {
	if cached, ok := s.cache.get(symbol); ok {
		logger.Debug(ctx, "Using cached headlines", "symbol", symbol)
		return cached, true
	}

	headlines, err := s.fetcher.Fetch(ctx, symbol, s.limit)
	if err != nil {
		logger.Warn(ctx, "Headline fetch failed, continuing without news", "symbol", symbol, "error", err)
		return "", false
	}
	if len(headlines) == 0 {
		return "", false
	}

	digest := strings.Join(headlines, "\n")
	s.cache.set(symbol, digest)

	logger.Info(ctx, "Headlines fetched", "symbol", symbol, "count", len(headlines))
	return digest, true
}

// headlineCache stores digests temporarily.
type headlineCache struct {
	mu   sync.RWMutex
	data map[string]cacheEntry
	ttl  time.Duration
}

type cacheEntry struct {
	digest    string
	timestamp time.Time
}

func newHeadlineCache(ttl time.Duration) *headlineCache {
	return &headlineCache{
		data: make(map[string]cacheEntry),
		ttl:  ttl,
	}
}

func (c *headlineCache) get(symbol string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.data[symbol]
	if !exists || time.Since(entry.timestamp) > c.ttl {
		return "", false
	}
	return entry.digest, true
}

func (c *headlineCache) set(symbol, digest string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[symbol] = cacheEntry{digest: digest, timestamp: time.Now()}
}
