package tools

import (
	"context"
)

// Toolkit exposes one operation per travel data capability. Each operation
// normalizes its location input, then delegates fetch-or-fallback to the
// Resolver. Operations are idempotent and side-effect-free beyond the
// network call; degradation is reported through the returned CallError.
type Toolkit struct {
	resolver *Resolver
	live     *liveClient
}

// NewToolkit wires a Toolkit against the provider configuration.
func NewToolkit(cfg Config) *Toolkit {
	return &Toolkit{
		resolver: NewResolver(cfg),
		live:     newLiveClient(cfg),
	}
}

// SearchFlights looks up flight offers between two locations.
func (t *Toolkit) SearchFlights(ctx context.Context, origin, destination, departDate, returnDate string) (*Result, *CallError) {
	q := FlightQuery{
		Origin:     NormalizeLocation(origin),
		Dest:       NormalizeLocation(destination),
		DepartDate: departDate,
		ReturnDate: returnDate,
		Adults:     1,
	}
	return t.resolver.Resolve(ctx, CapabilityFlights, q, longTimeout, func(ctx context.Context) ([]Item, error) {
		return t.live.fetchFlights(ctx, q)
	})
}

// SearchHotels looks up hotel offers at the destination for a stay window.
func (t *Toolkit) SearchHotels(ctx context.Context, destination, checkIn, checkOut string) (*Result, *CallError) {
	q := HotelQuery{
		Dest:     NormalizeLocation(destination),
		CheckIn:  checkIn,
		CheckOut: checkOut,
	}
	return t.resolver.Resolve(ctx, CapabilityHotels, q, longTimeout, func(ctx context.Context) ([]Item, error) {
		return t.live.fetchHotels(ctx, q)
	})
}

// GetWeather looks up current conditions or a dated forecast.
func (t *Toolkit) GetWeather(ctx context.Context, destination, date string) (*Result, *CallError) {
	q := WeatherQuery{
		Dest: NormalizeLocation(destination),
		Date: date,
	}
	return t.resolver.Resolve(ctx, CapabilityWeather, q, shortTimeout, func(ctx context.Context) ([]Item, error) {
		return t.live.fetchWeather(ctx, q)
	})
}

// GetAttractions looks up attractions at the destination, optionally biased
// by interest tags.
func (t *Toolkit) GetAttractions(ctx context.Context, destination string, interests []string) (*Result, *CallError) {
	q := AttractionQuery{
		Dest:      NormalizeLocation(destination),
		Interests: interests,
	}
	return t.resolver.Resolve(ctx, CapabilityAttractions, q, shortTimeout, func(ctx context.Context) ([]Item, error) {
		return t.live.fetchAttractions(ctx, q)
	})
}
