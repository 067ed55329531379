package news

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultNewsAPIURL = "https://cryptonews-api.com"

// Client fetches headlines from a CryptoNews-style JSON API, keyed by
// NEWS_API_KEY.
type Client struct {
	client *resty.Client
	apiKey string
}

func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = defaultNewsAPIURL
	}
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(10 * time.Second)

	return &Client{client: client, apiKey: apiKey}
}

func (c *Client) Fetch(ctx context.Context, symbol string, limit int) ([]string, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"section": "general",
			"items":   strconv.Itoa(limit),
			"apiKey":  c.apiKey,
		}).
		Get("/api/v1/category")
	if err != nil {
		return nil, fmt.Errorf("news api: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("news api http %d", resp.StatusCode())
	}

	var body struct {
		Data []struct {
			Title string `json:"title"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("news api parse: %w", err)
	}

	headlines := make([]string, 0, len(body.Data))
	for _, article := range body.Data {
		if article.Title != "" {
			headlines = append(headlines, article.Title)
		}
	}
	return headlines, nil
}
