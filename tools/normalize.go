package tools

import (
	"strings"
	"time"
)

// cityEntry maps a canonical city to its sandbox IATA code.
type cityEntry struct {
	IATA string
	Name string
}

// sandboxCities is the set of cities the sandboxed hotel/flight provider
// actually carries inventory for. Lookups outside this table still run, but
// the resolver treats them as untranslated and skips sandboxed live calls.
var sandboxCities = map[string]cityEntry{
	"paris":     {IATA: "PAR", Name: "Paris"},
	"london":    {IATA: "LON", Name: "London"},
	"new york":  {IATA: "NYC", Name: "New York"},
	"berlin":    {IATA: "BER", Name: "Berlin"},
	"rome":      {IATA: "ROM", Name: "Rome"},
	"madrid":    {IATA: "MAD", Name: "Madrid"},
	"barcelona": {IATA: "BCN", Name: "Barcelona"},
}

// codeAliases collapses common code variants and typos onto one canonical
// 3-letter code. Keys are uppercase.
var codeAliases = map[string]string{
	"NYK": "NYC",
	"NY":  "NYC",
	"PAR": "PAR",
	"LON": "LON",
	"LDN": "LON",
	"ROM": "ROM",
	"FCO": "FCO",
	"JFK": "JFK",
	"BER": "BER",
	"MAD": "MAD",
	"BCN": "BCN",
	"NYC": "NYC",
}

// Location is the result of normalizing a free-text location input.
type Location struct {
	Code       string `json:"code" yaml:"code"`             // canonical 3-letter code, or raw input when untranslated
	City       string `json:"city" yaml:"city"`             // best-effort city name for downstream lookups
	Translated bool   `json:"translated" yaml:"translated"` // false when the input could not be resolved
}

// NormalizeLocation resolves a free-form origin/destination string to a
// canonical code. City names and known aliases collapse to one code;
// unresolvable input passes through unchanged with Translated=false.
func NormalizeLocation(raw string) Location {
	txt := strings.TrimSpace(raw)
	if txt == "" {
		return Location{}
	}
	base := txt
	if i := strings.Index(txt, ","); i >= 0 {
		base = strings.TrimSpace(txt[:i])
	}

	upper := strings.ToUpper(base)
	if canonical, ok := codeAliases[upper]; ok {
		return Location{Code: canonical, City: iataToCity(canonical), Translated: true}
	}
	if len(base) == 3 && isAlpha(base) {
		// Looks like an IATA code we don't know; honor it as-is.
		return Location{Code: upper, City: iataToCity(upper), Translated: true}
	}
	if entry, ok := sandboxCities[strings.ToLower(base)]; ok {
		return Location{Code: entry.IATA, City: entry.Name, Translated: true}
	}
	return Location{Code: base, City: base, Translated: false}
}

func iataToCity(code string) string {
	for _, entry := range sandboxCities {
		if entry.IATA == code {
			return entry.Name
		}
	}
	return code
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return len(s) > 0
}

// SandboxSupported reports whether the code is part of the sandboxed
// provider's inventory.
func SandboxSupported(code string) bool {
	for _, entry := range sandboxCities {
		if entry.IATA == code {
			return true
		}
	}
	return false
}

// ValidDate reports whether s is a YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
