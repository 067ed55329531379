package news

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"ai-trade-advisor/internal/logger"
)

const scraperUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Scraper collects headlines from public crypto news sites. Keyless
// alternative to the API client.
type Scraper struct {
	sources []Source
	timeout time.Duration
}

// Source describes one site to scrape.
type Source struct {
	Name      string
	BaseURL   string
	TagPath   string // "{symbol}" is replaced with the lowercased symbol
	Container string // CSS selector for a headline element
	Title     string // CSS selector for the title inside the container
	RateLimit time.Duration
}

func NewScraper(timeout time.Duration) *Scraper {
	return &Scraper{sources: defaultSources(), timeout: timeout}
}

func defaultSources() []Source {
	return []Source{
		{
			Name:      "CoinDesk",
			BaseURL:   "https://www.coindesk.com",
			TagPath:   "/tag/{symbol}",
			Container: "div.article-card, article",
			Title:     "h2, h3, h6",
			RateLimit: 2 * time.Second,
		},
		{
			Name:      "Cointelegraph",
			BaseURL:   "https://cointelegraph.com",
			TagPath:   "/tags/{symbol}",
			Container: "article",
			Title:     "span.post-card-inline__title, h2",
			RateLimit: 2 * time.Second,
		},
	}
}

// Fetch scrapes up to limit headlines across all sources, splitting the
// count between them. The lead paragraphs of the first article found are
// appended to give remote models more than bare titles.
func (s *Scraper) Fetch(ctx context.Context, symbol string, limit int) ([]string, error) {
	perSource := limit / len(s.sources)
	if perSource < 1 {
		perSource = 1
	}

	var all []string
	var topArticle string
	for _, source := range s.sources {
		headlines, firstURL, err := s.scrapeSource(ctx, source, symbol, perSource)
		if err != nil {
			logger.Warn(ctx, "Source scrape failed", "source", source.Name, "symbol", symbol, "error", err)
			continue
		}
		if topArticle == "" {
			topArticle = firstURL
		}
		all = append(all, headlines...)
		if len(all) >= limit {
			all = all[:limit]
			break
		}
		time.Sleep(source.RateLimit)
	}

	if len(all) == 0 {
		return nil, fmt.Errorf("no headlines scraped for %s", symbol)
	}

	if topArticle != "" {
		if summary, err := s.ArticleSummary(ctx, topArticle, 2); err == nil && summary != "" {
			all = append(all, summary)
		}
	}
	return all, nil
}

func (s *Scraper) scrapeSource(ctx context.Context, source Source, symbol string, max int) ([]string, string, error) {
	var headlines []string
	var firstURL string

	c := colly.NewCollector(
		colly.AllowedDomains(hostOf(source.BaseURL)),
		colly.MaxDepth(1),
		colly.UserAgent(scraperUserAgent),
	)
	c.SetRequestTimeout(s.timeout)

	c.OnHTML(source.Container, func(e *colly.HTMLElement) {
		if len(headlines) >= max {
			return
		}
		title := strings.TrimSpace(e.ChildText(source.Title))
		if title != "" {
			headlines = append(headlines, title)
			if firstURL == "" {
				if href := e.ChildAttr("a", "href"); href != "" {
					firstURL = e.Request.AbsoluteURL(href)
				}
			}
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.Debug(ctx, "Scrape request failed", "source", source.Name, "url", r.Request.URL.String(), "error", err)
	})

	tagURL := source.BaseURL + strings.ReplaceAll(source.TagPath, "{symbol}", strings.ToLower(symbol))
	if err := c.Visit(tagURL); err != nil {
		return nil, "", fmt.Errorf("visit %s: %w", tagURL, err)
	}
	c.Wait()

	return headlines, firstURL, nil
}

// ArticleSummary pulls the leading paragraphs of an article page, used to
// give remote models more than a bare headline.
func (s *Scraper) ArticleSummary(ctx context.Context, articleURL string, maxParagraphs int) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", articleURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", scraperUserAgent)

	client := &http.Client{Timeout: s.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("article fetch http %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	var paragraphs []string
	doc.Find("article p, div.article-body p, div.post-content p").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if len(text) > 20 {
			paragraphs = append(paragraphs, text)
		}
		return len(paragraphs) < maxParagraphs
	})

	return strings.Join(paragraphs, "\n\n"), nil
}

func hostOf(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
