package tools

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/rand"
	"time"
)

// Deterministic substitute data. Every generator derives its randomness from
// a SHA-256 of the canonical query key, so identical queries always yield
// identical items across runs and processes.

func seededRand(key string) *rand.Rand {
	sum := sha256.Sum256([]byte(key))
	seed := int64(binary.BigEndian.Uint64(sum[:8]) & 0x7fffffffffffffff)
	return rand.New(rand.NewSource(seed))
}

var mockCarriers = []string{"AA", "DL", "UA", "BA", "LH", "AF", "KL"}

// mockFlights fabricates three flight offers for the query.
func mockFlights(q FlightQuery) []Item {
	rnd := seededRand(q.Key())
	basePrice := 200 + rnd.Intn(601)
	items := make([]Item, 0, 3)
	for i := 0; i < 3; i++ {
		carrier := mockCarriers[rnd.Intn(len(mockCarriers))]
		flightNum := 100 + rnd.Intn(900)
		price := basePrice - 100 + rnd.Intn(301)
		depTime := fmt.Sprintf("%sT%02d:%02d:00", q.DepartDate, 6+rnd.Intn(15), rnd.Intn(60))
		arrTime := fmt.Sprintf("%sT%02d:%02d:00", q.DepartDate, 10+rnd.Intn(14), rnd.Intn(60))
		detail := fmt.Sprintf("%s%d: %s %s -> %s %s", carrier, flightNum, q.Origin.Code, depTime, q.Dest.Code, arrTime)
		if q.ReturnDate != "" {
			retDep := fmt.Sprintf("%sT%02d:%02d:00", q.ReturnDate, 6+rnd.Intn(15), rnd.Intn(60))
			retArr := fmt.Sprintf("%sT%02d:%02d:00", q.ReturnDate, 10+rnd.Intn(14), rnd.Intn(60))
			detail += fmt.Sprintf(" | %s%d: %s %s -> %s %s", carrier, flightNum+1, q.Dest.Code, retDep, q.Origin.Code, retArr)
		}
		items = append(items, Item{
			Name:   fmt.Sprintf("%s%d", carrier, flightNum),
			Detail: detail,
			Price:  fmt.Sprintf("$%d", price),
			When:   q.DepartDate,
		})
	}
	return items
}

type mockHotelTier struct {
	name     string
	tier     string
	minPrice int
	maxPrice int
}

var mockHotelTiers = []mockHotelTier{
	{"Grand Hotel", "luxury", 200, 400},
	{"Comfort Inn", "mid-range", 80, 150},
	{"Budget Hostel", "budget", 30, 60},
	{"Boutique Suites", "mid-range", 120, 200},
	{"Downtown Lodge", "budget", 50, 90},
}

// mockHotels fabricates five hotel offers spanning price tiers.
func mockHotels(q HotelQuery) []Item {
	rnd := seededRand(q.Key())
	nights := nightsBetween(q.CheckIn, q.CheckOut)
	if nights < 1 {
		nights = 1
	}
	items := make([]Item, 0, len(mockHotelTiers))
	for _, tier := range mockHotelTiers {
		perNight := tier.minPrice + rnd.Intn(tier.maxPrice-tier.minPrice+1)
		total := perNight * nights
		address := fmt.Sprintf("%d Main St, %s", 1+rnd.Intn(999), q.Dest.City)
		items = append(items, Item{
			Name:   fmt.Sprintf("%s %s", tier.name, q.Dest.City),
			Detail: fmt.Sprintf("%s — %d nights @ $%d/night — %s", address, nights, perNight, tier.tier),
			Price:  fmt.Sprintf("$%d", total),
			When:   q.CheckIn,
		})
	}
	return items
}

func nightsBetween(checkIn, checkOut string) int {
	in, err1 := time.Parse("2006-01-02", checkIn)
	out, err2 := time.Parse("2006-01-02", checkOut)
	if err1 != nil || err2 != nil {
		return 1
	}
	return int(out.Sub(in).Hours() / 24)
}

var mockWeatherDescriptions = []string{
	"clear sky",
	"few clouds",
	"scattered clouds",
	"light rain",
	"moderate rain",
	"overcast clouds",
	"thunderstorm",
	"snow",
}

// mockWeather fabricates a single representative forecast entry.
func mockWeather(q WeatherQuery) []Item {
	rnd := seededRand(q.Key())
	desc := mockWeatherDescriptions[rnd.Intn(len(mockWeatherDescriptions))]
	temp := 5.0 + rnd.Float64()*25.0
	feels := temp + (rnd.Float64()*6.0 - 3.0)
	humidity := 30 + rnd.Intn(61)
	when := q.Date
	label := fmt.Sprintf("Forecast for %s on %s", q.Dest.City, q.Date)
	if q.Date == "" {
		when = "now"
		label = fmt.Sprintf("Current weather in %s", q.Dest.City)
	}
	return []Item{{
		Name:   label,
		Detail: fmt.Sprintf("%s, %.1f°C (feels like %.1f°C), humidity %d%%", desc, temp, feels, humidity),
		When:   when,
	}}
}

// mockAttractions fabricates five general recommendations for the city.
func mockAttractions(q AttractionQuery) []Item {
	city := q.Dest.City
	items := []Item{
		{Name: fmt.Sprintf("Historic city center of %s", city), Detail: "Old town walking area and landmarks"},
		{Name: fmt.Sprintf("Museums of %s", city), Detail: "Local museums and cultural sites"},
		{Name: fmt.Sprintf("Food districts of %s", city), Detail: "Popular restaurants and markets"},
		{Name: fmt.Sprintf("Parks of %s", city), Detail: "Parks and scenic viewpoints"},
		{Name: fmt.Sprintf("Shopping in %s", city), Detail: "Shopping districts and local markets"},
	}
	if len(q.Interests) > 0 {
		// Interest-specific entry leads the list so refinement picks it up first.
		lead := Item{
			Name:   fmt.Sprintf("%s highlights in %s", q.Interests[0], city),
			Detail: fmt.Sprintf("Curated picks for %s", q.Interests[0]),
		}
		items = append([]Item{lead}, items[:4]...)
	}
	return items
}

// MockResult produces the deterministic substitute for a capability and its
// canonical query. Exposed for tests and demo drivers.
func MockResult(capability Capability, q any) *Result {
	var items []Item
	switch capability {
	case CapabilityFlights:
		items = mockFlights(q.(FlightQuery))
	case CapabilityHotels:
		items = mockHotels(q.(HotelQuery))
	case CapabilityWeather:
		items = mockWeather(q.(WeatherQuery))
	case CapabilityAttractions:
		items = mockAttractions(q.(AttractionQuery))
	}
	return &Result{Provider: ProviderMock, Items: items}
}
