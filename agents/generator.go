// Package agents defines the LLM collaborator boundary for the planner.
// The planner only depends on the Generate operation; any client (OpenAI,
// Bedrock, a local model) can sit behind it. MockGenerator produces
// context-aware offline responses so the full pipeline runs without keys.
package agents

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Generator produces text for the enhance and plan stages. Failures are
// caught by the orchestrator and trigger degrade-and-continue; they never
// abort a run.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a plain function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// MockGenerator is an offline Generator that inspects the prompt and returns
// a sensible canned response, allowing the whole pipeline to execute without
// an LLM configured.
type MockGenerator struct{}

func (MockGenerator) Generate(_ context.Context, prompt string) (string, error) {
	lower := strings.ToLower(prompt)

	switch {
	case strings.Contains(lower, "clarify"):
		return "Clarified Travel Request\n" +
			"• Goals: Experience local culture, visit major landmarks, enjoy local cuisine\n" +
			"• Constraints: Standard budget, flexible timing\n" +
			"• Preferences: Mix of relaxation and exploration, comfortable accommodations", nil

	// Refine prompts also mention "itinerary", so this case comes first.
	case strings.Contains(lower, "refine"), strings.Contains(lower, "real data"):
		return "Refined Itinerary\n" +
			"Day 1: Arrival — check in, evening walk, welcome dinner\n" +
			"Following days: attractions and local experiences from the research data\n" +
			"Last day: morning leisure, departure", nil

	case strings.Contains(lower, "itinerary"), strings.Contains(lower, "day-by-day"):
		duration := extractDuration(lower)
		return OutlinePlan(duration), nil
	}
	return "Acknowledged: " + prompt, nil
}

// OutlinePlan builds the deterministic day-by-day fallback outline used when
// the LLM collaborator is unavailable during the plan stage.
func OutlinePlan(duration int) string {
	if duration < 1 {
		duration = 3
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Day-by-Day Itinerary (%d days)\n", duration)
	for day := 1; day <= duration; day++ {
		switch {
		case day == 1:
			fmt.Fprintf(&b, "Day %d: Arrival & Orientation — settle in, evening neighborhood walk, welcome dinner\n", day)
		case day == duration && duration > 1:
			fmt.Fprintf(&b, "Day %d: Departure — morning leisure time, last-minute shopping, depart for home\n", day)
		default:
			fmt.Fprintf(&b, "Day %d: Exploration — morning attractions, afternoon cultural experiences, evening local dining\n", day)
		}
	}
	return b.String()
}

func extractDuration(prompt string) int {
	for _, word := range strings.Fields(prompt) {
		word = strings.Trim(word, ".,()")
		word = strings.TrimSuffix(word, "-day")
		if n, err := strconv.Atoi(word); err == nil && n > 0 && n < 60 {
			return n
		}
	}
	return 3
}
