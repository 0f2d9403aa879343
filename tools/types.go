package tools

import (
	"fmt"
	"strings"
)

// Capability identifies one external travel data need.
type Capability string

const (
	CapabilityFlights     Capability = "flights"
	CapabilityHotels      Capability = "hotels"
	CapabilityWeather     Capability = "weather"
	CapabilityAttractions Capability = "attractions"
)

// Provider tags how a Result was produced.
type Provider string

const (
	ProviderLive Provider = "live"
	ProviderMock Provider = "mock"
)

// Item is the common itemized schema all capabilities normalize into.
type Item struct {
	Name   string `json:"name" yaml:"name"`
	Detail string `json:"detail" yaml:"detail"`
	Price  string `json:"price,omitempty" yaml:"price,omitempty"`
	When   string `json:"when,omitempty" yaml:"when,omitempty"`
}

// Result is what a tool invocation hands back to the orchestrator. An
// invoked capability always yields a Result; a failed or skipped live call
// yields the deterministic mock instead of nothing.
type Result struct {
	Provider  Provider `json:"provider" yaml:"provider"`
	Items     []Item   `json:"items" yaml:"items"`
	LatencyMS int64    `json:"latency_ms" yaml:"latency_ms"`
}

// Summary renders items as one line each, for plan refinement and CLI output.
func (r *Result) Summary() string {
	lines := make([]string, 0, len(r.Items))
	for i, item := range r.Items {
		line := fmt.Sprintf("%d. %s — %s", i+1, item.Name, item.Detail)
		if item.Price != "" {
			line += " — " + item.Price
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// FlightQuery holds the parameters for a flight search.
type FlightQuery struct {
	Origin     Location `json:"origin" yaml:"origin"`
	Dest       Location `json:"destination" yaml:"destination"`
	DepartDate string   `json:"depart_date" yaml:"depart_date"`
	ReturnDate string   `json:"return_date,omitempty" yaml:"return_date,omitempty"`
	Adults     int      `json:"adults" yaml:"adults"`
}

// Key returns the canonical parameter string used to seed mock generation.
func (q FlightQuery) Key() string {
	return fmt.Sprintf("flights:%s:%s:%s:%s", q.Origin.Code, q.Dest.Code, q.DepartDate, q.ReturnDate)
}

func (q FlightQuery) liveEligible() bool {
	return q.Origin.Translated && q.Dest.Translated
}

// HotelQuery holds the parameters for a hotel search.
type HotelQuery struct {
	Dest     Location `json:"destination" yaml:"destination"`
	CheckIn  string   `json:"check_in" yaml:"check_in"`
	CheckOut string   `json:"check_out" yaml:"check_out"`
}

func (q HotelQuery) Key() string {
	return fmt.Sprintf("hotels:%s:%s:%s", q.Dest.Code, q.CheckIn, q.CheckOut)
}

func (q HotelQuery) liveEligible() bool {
	return q.Dest.Translated && SandboxSupported(q.Dest.Code)
}

// WeatherQuery holds the parameters for a weather lookup. Date may be empty
// for current conditions.
type WeatherQuery struct {
	Dest Location `json:"destination" yaml:"destination"`
	Date string   `json:"date,omitempty" yaml:"date,omitempty"`
}

func (q WeatherQuery) Key() string {
	date := q.Date
	if date == "" {
		date = "now"
	}
	return fmt.Sprintf("weather:%s:%s", q.Dest.City, date)
}

// AttractionQuery holds the parameters for an attraction lookup.
type AttractionQuery struct {
	Dest      Location `json:"destination" yaml:"destination"`
	Interests []string `json:"interests,omitempty" yaml:"interests,omitempty"`
}

func (q AttractionQuery) Key() string {
	return fmt.Sprintf("attractions:%s:%s", q.Dest.City, strings.Join(q.Interests, ","))
}

// ErrorKind classifies why a tool invocation degraded to mock data.
type ErrorKind string

const (
	ErrProviderUnavailable ErrorKind = "provider_unavailable" // no credentials configured
	ErrProviderFailure     ErrorKind = "provider_failure"     // live call failed (timeout, bad status, bad payload)
)

// CallError records a degraded tool invocation. It never aborts a run; the
// orchestrator appends it to the run's error log.
type CallError struct {
	Capability Capability `json:"capability" yaml:"capability"`
	Kind       ErrorKind  `json:"kind" yaml:"kind"`
	Message    string     `json:"message" yaml:"message"`
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Capability, e.Kind, e.Message)
}
