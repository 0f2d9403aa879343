package agents

import (
	"context"
	"strings"
	"testing"
)

func TestMockGeneratorBranches(t *testing.T) {
	gen := MockGenerator{}

	enhanced, err := gen.Generate(context.Background(), EnhancePrompt("Plan my trip to Paris"))
	if err != nil {
		t.Fatalf("enhance: %v", err)
	}
	if !strings.Contains(enhanced, "Goals:") {
		t.Errorf("enhance response should carry goal bullets: %q", enhanced)
	}

	plan, err := gen.Generate(context.Background(), PlanPrompt(enhanced, "Paris", "2026-09-15", "2026-09-20", 5))
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if !strings.Contains(plan, "Day 1") || !strings.Contains(plan, "Day 5") {
		t.Errorf("plan response should span the requested days: %q", plan)
	}

	refined, err := gen.Generate(context.Background(), RefinePrompt(plan, []string{"FLIGHTS:\n1. AA100"}))
	if err != nil {
		t.Fatalf("refine: %v", err)
	}
	if !strings.Contains(refined, "Refined Itinerary") {
		t.Errorf("refine response unexpected: %q", refined)
	}
}

func TestOutlinePlanShape(t *testing.T) {
	outline := OutlinePlan(4)
	for _, want := range []string{"Day 1: Arrival", "Day 2: Exploration", "Day 3: Exploration", "Day 4: Departure"} {
		if !strings.Contains(outline, want) {
			t.Errorf("outline missing %q:\n%s", want, outline)
		}
	}

	if OutlinePlan(4) != outline {
		t.Error("outline must be deterministic")
	}

	single := OutlinePlan(0)
	if !strings.Contains(single, "3 days") {
		t.Errorf("non-positive duration should default to 3 days: %q", single)
	}
}
