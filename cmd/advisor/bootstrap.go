package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ai-trade-advisor/internal/decisionlog"
	"ai-trade-advisor/internal/engine"
	"ai-trade-advisor/internal/logger"
	"ai-trade-advisor/internal/marketdata"
	"ai-trade-advisor/internal/model"
	"ai-trade-advisor/internal/news"
	"ai-trade-advisor/internal/store"
	"ai-trade-advisor/internal/trace"
	"ai-trade-advisor/internal/types"
)

// initializeSystem loads the environment and brings up logging and tracing.
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := trace.Init("ai-trade-advisor", appVersion); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	compressOldLogs(context.Background())
	return nil
}

// compressOldLogs gzips old decision files if retention is configured.
func compressOldLogs(ctx context.Context) {
	if v := os.Getenv("ADVISOR_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := decisionlog.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old logs", "error", err)
		}
	}
}

// initializeProvider selects the configured market-data source.
func initializeProvider(ctx context.Context, cfg *store.Config) marketdata.Provider {
	switch cfg.Provider.Source {
	case "BINANCE":
		logger.Info(ctx, "Using Binance market data")
		return marketdata.NewBinance(cfg.Provider.APIKey, cfg.Provider.SecretKey)
	case "YAHOO":
		logger.Info(ctx, "Using Yahoo Finance market data")
		return marketdata.NewYahoo()
	default:
		logger.Info(ctx, "Using CoinGecko market data")
		return marketdata.NewCoinGecko(cfg.Provider.BaseURL, cfg.Currency)
	}
}

// initializeSignaler selects the model variant. A nil return means the
// advisor runs heuristic-only.
func initializeSignaler(ctx context.Context, cfg *store.Config) model.Signaler {
	if !cfg.ModelConfigured() {
		logger.Warn(ctx, "No model endpoint configured - using heuristic signaler")
		return nil
	}

	switch cfg.Model.Variant {
	case "HUGGINGFACE":
		logger.Info(ctx, "Using HuggingFace model", "url", cfg.Model.URL)
		return model.NewHuggingFace(cfg)
	case "OPENAI", "DEFAULT":
		logger.Info(ctx, "Using OpenAI-style model", "url", cfg.Model.URL, "name", cfg.Model.Name)
		return model.NewOpenAI(cfg)
	default:
		logger.Warn(ctx, "Unknown model variant - using heuristic signaler", "variant", cfg.Model.Variant)
		return nil
	}
}

func runAnalyze(cmd *cobra.Command, symbolsArg string) error {
	if err := initializeSystem(); err != nil {
		return err
	}
	ctx := context.Background()
	defer func() { _ = trace.Shutdown(ctx) }()

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := store.LoadConfig(configPath)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return err
	}
	applyFlags(cmd, cfg)

	symbols := splitSymbols(symbolsArg)
	if len(symbols) == 0 {
		return fmt.Errorf("no symbols given")
	}

	provider := initializeProvider(ctx, cfg)
	signaler := initializeSignaler(ctx, cfg)
	newsSvc := news.NewService(cfg)
	if newsSvc == nil {
		logger.Info(ctx, "News unconfigured - model runs without headline context")
	}

	adv := engine.New(cfg, provider, signaler, newsSvc)

	var firstErr error
	for _, symbol := range symbols {
		report, err := adv.Analyze(ctx, symbol)
		if err != nil {
			logger.ErrorWithErr(ctx, "Analysis failed", err, "symbol", symbol)
			fmt.Fprintf(os.Stderr, "%s: %v\n", symbol, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		printReport(cfg, report)
	}
	return firstErr
}

// applyFlags lets CLI flags override file-level configuration. Overrides
// key off the flag being set, not its value, so an explicit zero applies.
func applyFlags(cmd *cobra.Command, cfg *store.Config) {
	if v, _ := cmd.Flags().GetString("currency"); v != "" {
		cfg.Currency = strings.ToLower(v)
	}
	if cmd.Flags().Changed("days") {
		cfg.HistoryDays, _ = cmd.Flags().GetInt("days")
	}
	if cmd.Flags().Changed("take-profit") {
		cfg.Risk.TakeProfitPct, _ = cmd.Flags().GetFloat64("take-profit")
	}
	if cmd.Flags().Changed("stop-loss") {
		cfg.Risk.StopLossPct, _ = cmd.Flags().GetFloat64("stop-loss")
	}
	if v, _ := cmd.Flags().GetBool("logfile"); v {
		cfg.LogDecisions = true
	}
}

func splitSymbols(arg string) []string {
	var out []string
	for _, s := range strings.Split(arg, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func printReport(cfg *store.Config, r *types.Report) {
	cur := strings.ToUpper(cfg.Currency)
	fmt.Printf("%s price: %.2f %s\n", r.Symbol, r.Price, cur)
	fmt.Printf("%d-day moving average: %.2f %s\n", cfg.HistoryDays, r.MovingAverage, cur)
	fmt.Printf("Signal: %s (confidence %.2f)\n", r.Action, r.Confidence)
	if r.Levels != nil {
		fmt.Printf("Take-profit at: %.2f %s, Stop-loss at: %.2f %s\n",
			r.Levels.TakeProfit, cur, r.Levels.StopLoss, cur)
	}
	if r.Degraded {
		fmt.Println("Note: remote model unavailable, decision based on reduced evidence")
	}
	fmt.Println(strings.Repeat("-", 40))
}
