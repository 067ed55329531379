package store

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is built once at startup from config.yaml plus environment
// overlays. The rest of the program only ever sees this struct; no other
// package reads environment variables.
type Config struct {
	Currency    string `yaml:"currency"`
	HistoryDays int    `yaml:"history_days"`

	Provider struct {
		Source    string `yaml:"source"` // COINGECKO, BINANCE or YAHOO
		BaseURL   string `yaml:"base_url"`
		APIKey    string `yaml:"-"`
		SecretKey string `yaml:"-"`
	} `yaml:"provider"`

	Model struct {
		Variant     string  `yaml:"variant"` // DEFAULT, OPENAI or HUGGINGFACE
		Name        string  `yaml:"name"`
		URL         string  `yaml:"-"`
		Key         string  `yaml:"-"`
		System      string  `yaml:"system"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float32 `yaml:"temperature"`
		TimeoutSecs int     `yaml:"timeout_seconds"`
	} `yaml:"model"`

	News struct {
		Source       string `yaml:"source"` // API, SCRAPE or OFF
		BaseURL      string `yaml:"base_url"`
		APIKey       string `yaml:"-"`
		Limit        int    `yaml:"limit"`
		CacheMinutes int    `yaml:"cache_minutes"`
	} `yaml:"news"`

	Trend struct {
		Window  int     `yaml:"window"`
		Epsilon float64 `yaml:"epsilon"`
	} `yaml:"trend"`

	Fusion struct {
		MinConfidence       float64 `yaml:"min_confidence"`
		DisagreementPenalty float64 `yaml:"disagreement_penalty"`
	} `yaml:"fusion"`

	Risk struct {
		TakeProfitPct float64 `yaml:"take_profit_pct"`
		StopLossPct   float64 `yaml:"stop_loss_pct"`
	} `yaml:"risk"`

	LogDecisions bool `yaml:"log_decisions"`
}

func (c *Config) Validate() error {
	switch c.Provider.Source {
	case "COINGECKO", "BINANCE", "YAHOO":
	default:
		return fmt.Errorf("invalid provider.source '%s': must be COINGECKO, BINANCE or YAHOO", c.Provider.Source)
	}
	switch c.Model.Variant {
	case "DEFAULT", "OPENAI", "HUGGINGFACE":
	default:
		return fmt.Errorf("invalid model.variant '%s': must be DEFAULT, OPENAI or HUGGINGFACE", c.Model.Variant)
	}
	switch c.News.Source {
	case "API", "SCRAPE", "OFF":
	default:
		return fmt.Errorf("invalid news.source '%s': must be API, SCRAPE or OFF", c.News.Source)
	}
	if c.Trend.Window <= 0 {
		return fmt.Errorf("trend.window must be positive, got %d", c.Trend.Window)
	}
	if c.Fusion.MinConfidence < 0 || c.Fusion.MinConfidence > 1 {
		return fmt.Errorf("fusion.min_confidence must be in [0,1], got %.2f", c.Fusion.MinConfidence)
	}
	if c.Fusion.DisagreementPenalty < 0 || c.Fusion.DisagreementPenalty > 1 {
		return fmt.Errorf("fusion.disagreement_penalty must be in [0,1], got %.2f", c.Fusion.DisagreementPenalty)
	}
	return nil
}

// LoadConfig reads the yaml config at path (a missing file yields pure
// defaults), overlays credentials from the environment and validates the
// result. Defaults are filled in before the file is parsed, so an
// explicit zero in the file stays zero; only absent keys inherit defaults.
func LoadConfig(path string) (*Config, error) {
	c := defaultConfig()
	if b, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	c.Provider.Source = strings.ToUpper(c.Provider.Source)
	c.Model.Variant = strings.ToUpper(c.Model.Variant)
	c.News.Source = strings.ToUpper(c.News.Source)
	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return c, nil
}

func defaultConfig() *Config {
	c := &Config{
		Currency:    "usd",
		HistoryDays: 7,
	}
	c.Provider.Source = "COINGECKO"
	c.Model.Variant = "DEFAULT"
	c.Model.MaxTokens = 256
	c.Model.TimeoutSecs = 10
	c.News.Source = "API"
	c.News.Limit = 5
	c.News.CacheMinutes = 60
	c.Trend.Window = 7
	c.Trend.Epsilon = 1e-6
	c.Fusion.MinConfidence = 0.3
	c.Fusion.DisagreementPenalty = 0.5
	c.Risk.TakeProfitPct = 0.02
	c.Risk.StopLossPct = 0.01
	return c
}

// applyEnv overlays credentials and endpoints. Variant-specific variables
// win over the generic MODEL_API_* pair.
func (c *Config) applyEnv() {
	c.Model.URL = os.Getenv("MODEL_API_URL")
	c.Model.Key = os.Getenv("MODEL_API_KEY")
	switch c.Model.Variant {
	case "OPENAI":
		if v := os.Getenv("OPENAI_API_URL"); v != "" {
			c.Model.URL = v
		}
		if v := os.Getenv("OPENAI_API_KEY"); v != "" {
			c.Model.Key = v
		}
	case "HUGGINGFACE":
		if v := os.Getenv("HUGGINGFACE_API_URL"); v != "" {
			c.Model.URL = v
		}
		if v := os.Getenv("HUGGINGFACE_API_KEY"); v != "" {
			c.Model.Key = v
		}
	}

	c.News.APIKey = os.Getenv("NEWS_API_KEY")
	c.Provider.APIKey = os.Getenv("BINANCE_API_KEY")
	c.Provider.SecretKey = os.Getenv("BINANCE_SECRET_KEY")
}

// ModelConfigured reports whether a remote model endpoint is usable.
// Without both URL and key the advisor falls back to the heuristic signaler.
func (c *Config) ModelConfigured() bool {
	return c.Model.URL != "" && c.Model.Key != ""
}

// NewsConfigured reports whether headlines can be fetched at all.
func (c *Config) NewsConfigured() bool {
	switch c.News.Source {
	case "SCRAPE":
		return true
	case "API":
		return c.News.APIKey != ""
	default:
		return false
	}
}
