package components

import (
	"fmt"
	"sync"
	"time"
)

// ModelPricing gives USD-per-million-token rates for a model.
type ModelPricing struct {
	InputPer1M  float64
	OutputPer1M float64
}

// defaultModelPricing covers the models components.LLMRelay is likely
// to be configured with. Update as providers change pricing.
var defaultModelPricing = map[string]ModelPricing{
	"gpt-4o":                     {InputPer1M: 2.50, OutputPer1M: 10.00},
	"gpt-4o-mini":                {InputPer1M: 0.15, OutputPer1M: 0.60},
	"gpt-4-turbo":                {InputPer1M: 10.00, OutputPer1M: 30.00},
	"gpt-3.5-turbo":              {InputPer1M: 0.50, OutputPer1M: 1.50},
	"claude-3-5-sonnet-20241022": {InputPer1M: 3.00, OutputPer1M: 15.00},
	"claude-3-opus-20240229":     {InputPer1M: 15.00, OutputPer1M: 75.00},
	"claude-3-sonnet-20240229":   {InputPer1M: 3.00, OutputPer1M: 15.00},
	"claude-3-haiku-20240307":    {InputPer1M: 0.25, OutputPer1M: 1.25},
	"gemini-1.5-pro":             {InputPer1M: 1.25, OutputPer1M: 5.00},
	"gemini-1.5-flash":           {InputPer1M: 0.075, OutputPer1M: 0.30},
}

// LLMCall is a single recorded LLMRelay invocation.
type LLMCall struct {
	Model        string
	InputTokens  int
	OutputTokens int
	CostUSD      float64
	Timestamp    time.Time
	NodeID       string
}

// CostTracker accumulates token usage and USD cost across the
// invocations an LLMRelay component makes over its lifetime.
type CostTracker struct {
	Currency string
	Pricing  map[string]ModelPricing

	mu           sync.RWMutex
	calls        []LLMCall
	totalCost    float64
	modelCosts   map[string]float64
	inputTokens  int64
	outputTokens int64
	enabled      bool
}

// NewCostTracker creates a tracker seeded with defaultModelPricing.
func NewCostTracker(currency string) *CostTracker {
	return &CostTracker{
		Currency:   currency,
		Pricing:    defaultModelPricing,
		modelCosts: make(map[string]float64),
		enabled:    true,
	}
}

// RecordLLMCall logs one call's token usage and adds its cost to the
// running totals. Unknown models are recorded at zero cost rather than
// rejected, so tracking never blocks delivery.
func (ct *CostTracker) RecordLLMCall(model string, inputTokens, outputTokens int, nodeID string) {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	if !ct.enabled {
		return
	}

	pricing := ct.Pricing[model]
	cost := (float64(inputTokens)/1_000_000.0)*pricing.InputPer1M +
		(float64(outputTokens)/1_000_000.0)*pricing.OutputPer1M

	ct.calls = append(ct.calls, LLMCall{
		Model: model, InputTokens: inputTokens, OutputTokens: outputTokens,
		CostUSD: cost, Timestamp: time.Now(), NodeID: nodeID,
	})
	ct.totalCost += cost
	ct.modelCosts[model] += cost
	ct.inputTokens += int64(inputTokens)
	ct.outputTokens += int64(outputTokens)
}

func (ct *CostTracker) TotalCost() float64 {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return ct.totalCost
}

func (ct *CostTracker) CostByModel() map[string]float64 {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	out := make(map[string]float64, len(ct.modelCosts))
	for k, v := range ct.modelCosts {
		out[k] = v
	}
	return out
}

func (ct *CostTracker) TokenUsage() (input, output int64) {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return ct.inputTokens, ct.outputTokens
}

func (ct *CostTracker) Disable() { ct.mu.Lock(); ct.enabled = false; ct.mu.Unlock() }
func (ct *CostTracker) Enable()  { ct.mu.Lock(); ct.enabled = true; ct.mu.Unlock() }

func (ct *CostTracker) String() string {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return fmt.Sprintf("CostTracker{calls: %d, total: $%.4f %s, in: %d, out: %d}",
		len(ct.calls), ct.totalCost, ct.Currency, ct.inputTokens, ct.outputTokens)
}
