package components

import "testing"

func TestCostTracker_RecordLLMCall(t *testing.T) {
	ct := NewCostTracker("USD")
	ct.RecordLLMCall("gpt-4o-mini", 1_000_000, 1_000_000, "n1")

	want := 0.15 + 0.60
	if got := ct.TotalCost(); got != want {
		t.Errorf("got total cost %v, want %v", got, want)
	}

	input, output := ct.TokenUsage()
	if input != 1_000_000 || output != 1_000_000 {
		t.Errorf("got token usage (%d, %d), want (1000000, 1000000)", input, output)
	}
}

func TestCostTracker_UnknownModelIsZeroCost(t *testing.T) {
	ct := NewCostTracker("USD")
	ct.RecordLLMCall("some-future-model", 1000, 1000, "n1")

	if ct.TotalCost() != 0 {
		t.Errorf("expected zero cost for an unpriced model, got %v", ct.TotalCost())
	}
}

func TestCostTracker_CostByModel(t *testing.T) {
	ct := NewCostTracker("USD")
	ct.RecordLLMCall("gpt-4o-mini", 1_000_000, 0, "n1")
	ct.RecordLLMCall("gpt-4o-mini", 1_000_000, 0, "n2")
	ct.RecordLLMCall("gpt-4o", 1_000_000, 0, "n3")

	byModel := ct.CostByModel()
	if got := byModel["gpt-4o-mini"]; got != 0.30 {
		t.Errorf("got gpt-4o-mini cost %v, want 0.30", got)
	}
	if got := byModel["gpt-4o"]; got != 2.50 {
		t.Errorf("got gpt-4o cost %v, want 2.50", got)
	}
}

func TestCostTracker_DisableStopsRecording(t *testing.T) {
	ct := NewCostTracker("USD")
	ct.Disable()
	ct.RecordLLMCall("gpt-4o", 1_000_000, 1_000_000, "n1")

	if ct.TotalCost() != 0 {
		t.Error("expected no cost to be recorded while disabled")
	}

	ct.Enable()
	ct.RecordLLMCall("gpt-4o", 1_000_000, 0, "n1")
	if ct.TotalCost() != 2.50 {
		t.Errorf("got %v after re-enabling, want 2.50", ct.TotalCost())
	}
}
