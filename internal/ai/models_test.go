package ai

import (
	"errors"
	"testing"
)

func TestMenuOrderAndDefault(t *testing.T) {
	m := Menu()
	if len(m) != 9 {
		t.Fatalf("expected 9 menu entries, got %d", len(m))
	}
	if m[0].ID != DefaultModel {
		t.Fatalf("default model should lead the menu, got %s", m[0].ID)
	}
	if m[len(m)-1].ID != "openrouter/auto" {
		t.Fatalf("auto routing should be last, got %s", m[len(m)-1].ID)
	}
	m[0].ID = "mutated"
	if Menu()[0].ID != DefaultModel {
		t.Fatalf("Menu must return a copy")
	}
}

func TestResolveModel(t *testing.T) {
	if id, err := ResolveModel(""); err != nil || id != DefaultModel {
		t.Fatalf("empty should resolve to default: %s %v", id, err)
	}
	if id, err := ResolveModel("Llama 3 70B Instruct (Meta)"); err != nil || id != "meta-llama/llama-3-70b-instruct" {
		t.Fatalf("label lookup failed: %s %v", id, err)
	}
	if _, err := ResolveModel("openai/gpt-4o-mini"); !errors.Is(err, ErrUnknownModel) {
		t.Fatalf("expected ErrUnknownModel, got %v", err)
	}
}

func TestEstimateCostUSD(t *testing.T) {
	cost, ok := EstimateCostUSD("openai/gpt-4o", 1000, 1000)
	if !ok {
		t.Fatalf("expected pricing for gpt-4o")
	}
	if cost < 0.0199 || cost > 0.0201 {
		t.Fatalf("unexpected cost %f", cost)
	}
	if _, ok := EstimateCostUSD("unknown/model", 10, 10); ok {
		t.Fatalf("unknown model should not be priced")
	}
}
