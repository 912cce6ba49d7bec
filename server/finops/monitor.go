// Package finops tracks AI usage: token counts, dollar cost and latency per
// proxy action, persisted as usage records and aggregated into reports.
package finops

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkoukk/tiktoken-go"

	"github.com/satchelhq/satchel/store"
)

// modelPrice is the provider price in USD per one million tokens.
type modelPrice struct {
	prompt     float64
	completion float64
}

// Published provider prices. Unknown models fall back to the default entry so
// accounting keeps working when a new model name shows up.
var modelPrices = map[string]modelPrice{
	"gpt-4o-mini": {prompt: 0.15, completion: 0.60},
	"gpt-4o":      {prompt: 2.50, completion: 10.00},
	"gpt-4.1":     {prompt: 2.00, completion: 8.00},
}

var defaultPrice = modelPrice{prompt: 0.15, completion: 0.60}

// Monitor records per-call AI usage into the store and aggregates it into
// summaries. Token counts come from tiktoken when the model's encoding is
// available and degrade to a character-based estimate otherwise.
type Monitor struct {
	store *store.Store

	mu       sync.Mutex
	encoders map[string]*tiktoken.Tiktoken
}

// NewMonitor creates a usage monitor writing through the given store.
func NewMonitor(s *store.Store) *Monitor {
	return &Monitor{
		store:    s,
		encoders: make(map[string]*tiktoken.Tiktoken),
	}
}

// Record persists one usage row for a token-billed call. Recording failures
// are logged, never propagated: accounting must not fail the request that
// produced it.
func (m *Monitor) Record(ctx context.Context, action, model, prompt, completion string, duration time.Duration) {
	promptTokens := m.CountTokens(model, prompt)
	completionTokens := m.CountTokens(model, completion)

	record := &store.UsageRecord{
		Action:           action,
		Model:            model,
		PromptTokens:     int32(promptTokens),
		CompletionTokens: int32(completionTokens),
		CostUSD:          costUSD(model, promptTokens, completionTokens),
		DurationMs:       duration.Milliseconds(),
	}

	if _, err := m.store.CreateUsageRecord(ctx, record); err != nil {
		slog.Error("failed to record usage",
			"action", action,
			"model", model,
			"error", err)
		return
	}

	slog.Debug("recorded usage",
		"action", action,
		"model", model,
		"prompt_tokens", promptTokens,
		"completion_tokens", completionTokens,
		"cost_usd", record.CostUSD)
}

// RecordFlatCost persists one usage row for a call billed per request rather
// than per token (image generation, speech synthesis).
func (m *Monitor) RecordFlatCost(ctx context.Context, action, model string, costUSD float64, duration time.Duration) {
	record := &store.UsageRecord{
		Action:     action,
		Model:      model,
		CostUSD:    costUSD,
		DurationMs: duration.Milliseconds(),
	}

	if _, err := m.store.CreateUsageRecord(ctx, record); err != nil {
		slog.Error("failed to record usage",
			"action", action,
			"model", model,
			"error", err)
	}
}

// CountTokens returns the token count of text under the model's encoding.
// When the encoding cannot be loaded (unknown model, no tokenizer data) the
// count degrades to the usual four-characters-per-token estimate.
func (m *Monitor) CountTokens(model, text string) int {
	if text == "" {
		return 0
	}

	if enc := m.encoderFor(model); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return (len(text) + 3) / 4
}

func (m *Monitor) encoderFor(model string) *tiktoken.Tiktoken {
	m.mu.Lock()
	defer m.mu.Unlock()

	if enc, ok := m.encoders[model]; ok {
		return enc
	}

	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			slog.Warn("token encoding unavailable, falling back to character estimate",
				"model", model,
				"error", err)
			m.encoders[model] = nil
			return nil
		}
	}

	m.encoders[model] = enc
	return enc
}

// costUSD converts token counts into dollars for the given model.
func costUSD(model string, promptTokens, completionTokens int) float64 {
	price, ok := modelPrices[model]
	if !ok {
		// Versioned model names like gpt-4o-2024-08-06 bill as their base model.
		for name, p := range modelPrices {
			if strings.HasPrefix(model, name+"-") {
				price, ok = p, true
				break
			}
		}
	}
	if !ok {
		price = defaultPrice
	}

	return float64(promptTokens)*price.prompt/1e6 + float64(completionTokens)*price.completion/1e6
}

// ActionStats aggregates the usage of one action within a summary period.
type ActionStats struct {
	Action           string  `json:"action"`
	Requests         int     `json:"requests"`
	PromptTokens     int64   `json:"promptTokens"`
	CompletionTokens int64   `json:"completionTokens"`
	CostUSD          float64 `json:"costUsd"`
	AvgDurationMs    float64 `json:"avgDurationMs"`
}

// Summary is a usage report for one period.
type Summary struct {
	Period           string        `json:"period"`
	Since            int64         `json:"since"`
	Requests         int           `json:"requests"`
	PromptTokens     int64         `json:"promptTokens"`
	CompletionTokens int64         `json:"completionTokens"`
	CostUSD          float64       `json:"costUsd"`
	ByAction         []ActionStats `json:"byAction"`
}

// Summarize aggregates the usage rows recorded since the period start.
// Accepted periods: "day", "week", "month"; anything else means day.
func (m *Monitor) Summarize(ctx context.Context, period string) (*Summary, error) {
	since := periodStart(period, time.Now()).Unix()

	records, err := m.store.ListUsageRecords(ctx, &store.FindUsageRecord{CreatedAfter: &since})
	if err != nil {
		return nil, err
	}

	summary := &Summary{Period: normalizePeriod(period), Since: since}
	byAction := make(map[string]*ActionStats)
	totalDuration := make(map[string]int64)

	for _, r := range records {
		summary.Requests++
		summary.PromptTokens += int64(r.PromptTokens)
		summary.CompletionTokens += int64(r.CompletionTokens)
		summary.CostUSD += r.CostUSD

		stats, ok := byAction[r.Action]
		if !ok {
			stats = &ActionStats{Action: r.Action}
			byAction[r.Action] = stats
		}
		stats.Requests++
		stats.PromptTokens += int64(r.PromptTokens)
		stats.CompletionTokens += int64(r.CompletionTokens)
		stats.CostUSD += r.CostUSD
		totalDuration[r.Action] += r.DurationMs
	}

	for action, stats := range byAction {
		if stats.Requests > 0 {
			stats.AvgDurationMs = float64(totalDuration[action]) / float64(stats.Requests)
		}
		summary.ByAction = append(summary.ByAction, *stats)
	}
	sort.Slice(summary.ByAction, func(i, j int) bool {
		return summary.ByAction[i].CostUSD > summary.ByAction[j].CostUSD
	})

	return summary, nil
}

// Prune deletes usage rows older than the retention window.
func (m *Monitor) Prune(ctx context.Context, retention time.Duration) error {
	cutoff := time.Now().Add(-retention).Unix()
	return m.store.DeleteUsageRecords(ctx, &store.DeleteUsageRecords{CreatedBefore: &cutoff})
}

func normalizePeriod(period string) string {
	switch period {
	case "week", "month":
		return period
	default:
		return "day"
	}
}

func periodStart(period string, now time.Time) time.Time {
	switch period {
	case "week":
		return now.AddDate(0, 0, -7)
	case "month":
		return now.AddDate(0, -1, 0)
	default:
		return now.AddDate(0, 0, -1)
	}
}
