package tools

import "testing"

func TestNormalizeLocationCityNames(t *testing.T) {
	tests := []struct {
		input string
		code  string
		city  string
	}{
		{"paris", "PAR", "Paris"},
		{"Paris", "PAR", "Paris"},
		{"  london ", "LON", "London"},
		{"new york", "NYC", "New York"},
		{"New York, USA", "NYC", "New York"},
		{"barcelona", "BCN", "Barcelona"},
	}
	for _, tt := range tests {
		loc := NormalizeLocation(tt.input)
		if !loc.Translated {
			t.Errorf("NormalizeLocation(%q): expected translated", tt.input)
		}
		if loc.Code != tt.code || loc.City != tt.city {
			t.Errorf("NormalizeLocation(%q) = (%s, %s), want (%s, %s)",
				tt.input, loc.Code, loc.City, tt.code, tt.city)
		}
	}
}

func TestNormalizeLocationAliases(t *testing.T) {
	// NYK is a common typo for NYC and must land on the same canonical code.
	for _, input := range []string{"NYK", "NY", "NYC", "nyk"} {
		loc := NormalizeLocation(input)
		if loc.Code != "NYC" {
			t.Errorf("NormalizeLocation(%q).Code = %s, want NYC", input, loc.Code)
		}
		if !loc.Translated {
			t.Errorf("NormalizeLocation(%q): expected translated", input)
		}
	}

	if loc := NormalizeLocation("LDN"); loc.Code != "LON" {
		t.Errorf("NormalizeLocation(LDN).Code = %s, want LON", loc.Code)
	}
}

func TestNormalizeLocationUnknownCode(t *testing.T) {
	// Unknown but well-formed codes pass through uppercased.
	loc := NormalizeLocation("hnd")
	if loc.Code != "HND" || !loc.Translated {
		t.Errorf("NormalizeLocation(hnd) = %+v, want code HND translated", loc)
	}
}

func TestNormalizeLocationUntranslated(t *testing.T) {
	loc := NormalizeLocation("Springfield")
	if loc.Translated {
		t.Errorf("NormalizeLocation(Springfield): expected untranslated, got %+v", loc)
	}
	if loc.Code != "Springfield" || loc.City != "Springfield" {
		t.Errorf("untranslated input must pass through unchanged, got %+v", loc)
	}

	if loc := NormalizeLocation(""); loc.Translated || loc.Code != "" {
		t.Errorf("NormalizeLocation(\"\") = %+v, want zero value", loc)
	}
}

func TestSandboxSupported(t *testing.T) {
	if !SandboxSupported("PAR") {
		t.Error("PAR should be in sandbox inventory")
	}
	if SandboxSupported("JFK") {
		t.Error("JFK is not in sandbox inventory")
	}
}

func TestValidDate(t *testing.T) {
	if !ValidDate("2026-09-15") {
		t.Error("2026-09-15 should be valid")
	}
	for _, bad := range []string{"", "2026-13-01", "15/09/2026", "tomorrow"} {
		if ValidDate(bad) {
			t.Errorf("ValidDate(%q) should be false", bad)
		}
	}
}
