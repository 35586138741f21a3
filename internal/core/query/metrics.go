package query

import (
	"sort"
	"sync"
)

// Pricing per one million tokens for the chat model.
const (
	promptCostPerMTok     = 0.60
	completionCostPerMTok = 2.40
)

// maxLatencySamples bounds the percentile window; older samples roll off.
const maxLatencySamples = 1024

// Stats is a point-in-time snapshot of query activity since process start.
type Stats struct {
	QuestionCount    int64   `json:"question_count"`
	PromptTokens     int64   `json:"prompt_tokens"`
	CompletionTokens int64   `json:"completion_tokens"`
	TotalCostUSD     float64 `json:"total_cost_usd"`
	LatencyP50MS     float64 `json:"latency_p50_ms"`
	LatencyP95MS     float64 `json:"latency_p95_ms"`
	ActiveSessions   int     `json:"active_sessions"`
}

type metricsState struct {
	mu               sync.Mutex
	questionCount    int64
	promptTokens     int64
	completionTokens int64
	costUSD          float64
	latenciesMS      []float64
}

var metrics metricsState

// chatCost converts a token spend into USD.
func chatCost(promptTokens, completionTokens int) float64 {
	return float64(promptTokens)*promptCostPerMTok/1e6 +
		float64(completionTokens)*completionCostPerMTok/1e6
}

func recordQuery(u Usage, latencyMS int64) {
	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	metrics.questionCount++
	metrics.promptTokens += int64(u.PromptTokens)
	metrics.completionTokens += int64(u.CompletionTokens)
	metrics.costUSD += u.CostUSD
	metrics.latenciesMS = append(metrics.latenciesMS, float64(latencyMS))
	if len(metrics.latenciesMS) > maxLatencySamples {
		metrics.latenciesMS = metrics.latenciesMS[len(metrics.latenciesMS)-maxLatencySamples:]
	}
}

// Snapshot returns current metrics with latency percentiles.
func Snapshot() Stats {
	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	return Stats{
		QuestionCount:    metrics.questionCount,
		PromptTokens:     metrics.promptTokens,
		CompletionTokens: metrics.completionTokens,
		TotalCostUSD:     metrics.costUSD,
		LatencyP50MS:     percentile(metrics.latenciesMS, 0.50),
		LatencyP95MS:     percentile(metrics.latenciesMS, 0.95),
		ActiveSessions:   activeSessions(),
	}
}

func percentile(samples []float64, p float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}
