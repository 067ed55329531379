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

const signalSchema = `{"label":"BUY|SELL|HOLD","confidence":0.0}`

// OpenAI calls a chat-completions shaped endpoint and parses the reply
// content as a JSON signal.
type OpenAI struct {
	cfg    *store.Config
	client *http.Client
}

func NewOpenAI(cfg *store.Config) *OpenAI {
	return &OpenAI{
		cfg:    cfg,
		client: &http.Client{Timeout: time.Duration(cfg.Model.TimeoutSecs) * time.Second},
	}
}

func (o *OpenAI) ProduceSignal(ctx context.Context, price float64, newsContext string) (types.ModelSignal, error) {
	ctx, span := trace.StartSpan(ctx, "openai-api-call")
	defer span.End()

	system := o.cfg.Model.System
	if system == "" {
		system = "You are a disciplined trader. Output STRICT JSON with BUY/SELL/HOLD."
	}

	state := map[string]any{"price": price, "context": newsContext}
	sb, _ := json.Marshal(state)
	prompt := fmt.Sprintf("You will receive state as JSON. Respond ONLY with compact JSON matching the schema.\nSchema:%s\nState:%s", signalSchema, string(sb))

	body := map[string]any{
		"model":       o.cfg.Model.Name,
		"messages":    []map[string]string{{"role": "system", "content": system}, {"role": "user", "content": prompt}},
		"temperature": o.cfg.Model.Temperature,
		"max_tokens":  o.cfg.Model.MaxTokens,
	}
	bb, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, "POST", o.cfg.Model.URL, bytes.NewReader(bb))
	if err != nil {
		return types.ModelSignal{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+o.cfg.Model.Key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return types.ModelSignal{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return types.ModelSignal{}, fmt.Errorf("%w: openai http %d", ErrUnavailable, resp.StatusCode)
	}

	var r struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return types.ModelSignal{}, fmt.Errorf("%w: openai decode: %v", ErrUnavailable, err)
	}
	if len(r.Choices) == 0 {
		return types.ModelSignal{}, fmt.Errorf("%w: openai returned no choices", ErrUnavailable)
	}

	sig, err := parseSignalFromText(r.Choices[0].Message.Content)
	if err != nil {
		return types.ModelSignal{}, err
	}
	sig.Source = "openai"

	logger.Debug(ctx, "OpenAI signal produced", "label", sig.Label, "confidence", sig.Confidence)
	return sig, nil
}

// parseSignalFromText locates a JSON object in text and unmarshals it as a
// signal. Models occasionally wrap the JSON in prose or code fences.
func parseSignalFromText(text string) (types.ModelSignal, error) {
	t := strings.TrimSpace(text)

	var raw struct {
		Label      string  `json:"label"`
		Confidence float64 `json:"confidence"`
	}
	if strings.HasPrefix(t, "{") {
		if err := json.Unmarshal([]byte(t), &raw); err == nil {
			sig := types.ModelSignal{Label: types.Action(raw.Label), Confidence: raw.Confidence}
			normalizeSignal(&sig)
			return sig, nil
		}
	}

	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(t[start:end+1]), &raw); err == nil {
			sig := types.ModelSignal{Label: types.Action(raw.Label), Confidence: raw.Confidence}
			normalizeSignal(&sig)
			return sig, nil
		}
	}

	return types.ModelSignal{}, fmt.Errorf("%w: unparseable model output", ErrUnavailable)
}
