package agents

import (
	"fmt"
	"strings"
)

// Prompt builders for the enhance and plan stages. The orchestrator passes
// the rendered prompt through the Generator boundary; the prompts themselves
// carry no client configuration.

// EnhancePrompt asks the model to clarify a raw travel request.
func EnhancePrompt(request string) string {
	return fmt.Sprintf(
		"Clarify and enhance this travel request. Provide 3 bullet points:\n"+
			"• Goals: What does the traveler want to accomplish?\n"+
			"• Constraints: Budget, time, visa, mobility, etc.\n"+
			"• Preferences: Climate, accommodation style, pace, etc.\n\n"+
			"Request: %s", request)
}

// PlanPrompt asks for a day-by-day itinerary outline from the enhanced
// request and whatever structured fields are known.
func PlanPrompt(enhanced, destination, departDate, returnDate string, duration int) string {
	if destination == "" {
		destination = "Unknown"
	}
	if departDate == "" {
		departDate = "TBD"
	}
	if returnDate == "" {
		returnDate = "TBD"
	}
	return fmt.Sprintf(
		"Create a %d-day travel itinerary outline for a traveler with these goals:\n%s\n\n"+
			"Destination: %s\nDepart: %s\nReturn: %s\n\n"+
			"Provide day-by-day outline (actual flight/hotel data will be added later).\n"+
			"Format as numbered days with activities.",
		duration, enhanced, destination, departDate, returnDate)
}

// RefinePrompt asks for the final itinerary with tool data folded in.
func RefinePrompt(draft string, toolSections []string) string {
	context := ""
	if len(toolSections) > 0 {
		context = "Real data available:\n" + strings.Join(toolSections, "\n")
	}
	return fmt.Sprintf(
		"Refine the itinerary using the real data below.\n\n"+
			"Original draft:\n%s\n\n%s\n\n"+
			"Create a detailed final itinerary with actual prices, times, and booking info where available.",
		draft, context)
}
