package query

import (
	"math"
	"testing"
)

func TestChatCost(t *testing.T) {
	// 1M prompt tokens and 1M completion tokens at the posted rates.
	if got := chatCost(1_000_000, 1_000_000); math.Abs(got-3.00) > 1e-9 {
		t.Errorf("cost = %f, want 3.00", got)
	}
	if got := chatCost(0, 0); got != 0 {
		t.Errorf("zero usage cost = %f, want 0", got)
	}
	if got := chatCost(500_000, 0); math.Abs(got-0.30) > 1e-9 {
		t.Errorf("prompt-only cost = %f, want 0.30", got)
	}
}

func TestPercentile(t *testing.T) {
	samples := []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	if got := percentile(samples, 0.50); got != 50 {
		t.Errorf("p50 = %f, want 50", got)
	}
	if got := percentile(samples, 0.95); got != 90 {
		t.Errorf("p95 = %f, want 90", got)
	}
	if got := percentile(nil, 0.50); got != 0 {
		t.Errorf("empty p50 = %f, want 0", got)
	}
	if got := percentile([]float64{42}, 0.95); got != 42 {
		t.Errorf("single-sample p95 = %f, want 42", got)
	}
}

func TestRecordQuery_Accumulates(t *testing.T) {
	before := Snapshot()
	recordQuery(Usage{PromptTokens: 100, CompletionTokens: 40, CostUSD: chatCost(100, 40)}, 120)
	recordQuery(Usage{PromptTokens: 50, CompletionTokens: 10, CostUSD: chatCost(50, 10)}, 80)
	after := Snapshot()

	if after.QuestionCount != before.QuestionCount+2 {
		t.Errorf("question count delta = %d, want 2", after.QuestionCount-before.QuestionCount)
	}
	if after.PromptTokens != before.PromptTokens+150 {
		t.Errorf("prompt tokens delta = %d, want 150", after.PromptTokens-before.PromptTokens)
	}
	if after.CompletionTokens != before.CompletionTokens+50 {
		t.Errorf("completion tokens delta = %d, want 50", after.CompletionTokens-before.CompletionTokens)
	}
	wantCost := chatCost(150, 50)
	if math.Abs((after.TotalCostUSD-before.TotalCostUSD)-wantCost) > 1e-9 {
		t.Errorf("cost delta = %f, want %f", after.TotalCostUSD-before.TotalCostUSD, wantCost)
	}
	if after.LatencyP50MS == 0 {
		t.Errorf("latency p50 should be non-zero after samples")
	}
}
