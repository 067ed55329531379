package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ai-trade-advisor/internal/logger"
	"ai-trade-advisor/internal/store"
	"ai-trade-advisor/internal/trace"
	"ai-trade-advisor/internal/types"
)

// HuggingFace calls an inference-endpoint shaped sentiment model and maps
// its labels onto trade actions.
type HuggingFace struct {
	cfg    *store.Config
	client *http.Client
}

func NewHuggingFace(cfg *store.Config) *HuggingFace {
	return &HuggingFace{
		cfg:    cfg,
		client: &http.Client{Timeout: time.Duration(cfg.Model.TimeoutSecs) * time.Second},
	}
}

func (h *HuggingFace) ProduceSignal(ctx context.Context, price float64, newsContext string) (types.ModelSignal, error) {
	ctx, span := trace.StartSpan(ctx, "huggingface-api-call")
	defer span.End()

	input := fmt.Sprintf("Current price %.4f. %s", price, newsContext)
	bb, _ := json.Marshal(map[string]string{"inputs": input})

	req, err := http.NewRequestWithContext(ctx, "POST", h.cfg.Model.URL, bytes.NewReader(bb))
	if err != nil {
		return types.ModelSignal{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+h.cfg.Model.Key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return types.ModelSignal{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return types.ModelSignal{}, fmt.Errorf("%w: huggingface http %d", ErrUnavailable, resp.StatusCode)
	}

	// classification output comes as [[{"label":..., "score":...}, ...]]
	var nested [][]struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&nested); err != nil {
		return types.ModelSignal{}, fmt.Errorf("%w: huggingface decode: %v", ErrUnavailable, err)
	}
	if len(nested) == 0 || len(nested[0]) == 0 {
		return types.ModelSignal{}, fmt.Errorf("%w: huggingface returned no labels", ErrUnavailable)
	}

	best := nested[0][0]
	for _, cand := range nested[0][1:] {
		if cand.Score > best.Score {
			best = cand
		}
	}

	sig := types.ModelSignal{
		Label:      mapSentimentLabel(best.Label),
		Confidence: best.Score,
		Source:     "huggingface",
	}
	normalizeSignal(&sig)

	logger.Debug(ctx, "HuggingFace signal produced", "raw_label", best.Label, "label", sig.Label, "confidence", sig.Confidence)
	return sig, nil
}

// mapSentimentLabel translates common sentiment vocabularies (positive /
// negative / neutral, LABEL_0..2, bullish / bearish) into actions.
func mapSentimentLabel(label string) types.Action {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "POSITIVE", "BULLISH", "BUY", "LABEL_2":
		return types.Buy
	case "NEGATIVE", "BEARISH", "SELL", "LABEL_0":
		return types.Sell
	default:
		return types.Hold
	}
}
