package tools

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestResolveNoCredentialsUsesMock(t *testing.T) {
	resolver := NewResolver(Config{})
	q := WeatherQuery{Dest: NormalizeLocation("paris"), Date: "2026-09-15"}

	called := false
	result, callErr := resolver.Resolve(context.Background(), CapabilityWeather, q, time.Second,
		func(ctx context.Context) ([]Item, error) {
			called = true
			return nil, nil
		})

	if called {
		t.Error("live function must not run without credentials")
	}
	if result == nil || result.Provider != ProviderMock {
		t.Fatalf("expected mock result, got %+v", result)
	}
	if callErr == nil || callErr.Kind != ErrProviderUnavailable {
		t.Fatalf("expected provider_unavailable, got %+v", callErr)
	}
	if !reflect.DeepEqual(result.Items, MockResult(CapabilityWeather, q).Items) {
		t.Error("fallback items must match the deterministic mock")
	}
}

func TestResolveLiveFailureFallsBack(t *testing.T) {
	resolver := NewResolver(Config{OpenWeatherAPIKey: "test-key"})
	q := WeatherQuery{Dest: NormalizeLocation("paris"), Date: "2026-09-15"}

	calls := 0
	result, callErr := resolver.Resolve(context.Background(), CapabilityWeather, q, time.Second,
		func(ctx context.Context) ([]Item, error) {
			calls++
			return nil, errors.New("boom")
		})

	if calls != 1 {
		t.Errorf("non-retryable error should not retry, got %d calls", calls)
	}
	if result.Provider != ProviderMock {
		t.Errorf("failed live call must fall back to mock, got %s", result.Provider)
	}
	if callErr == nil || callErr.Kind != ErrProviderFailure {
		t.Fatalf("expected provider_failure, got %+v", callErr)
	}
}

func TestResolveRetriesRetryableErrors(t *testing.T) {
	resolver := NewResolver(Config{OpenWeatherAPIKey: "test-key"})
	q := WeatherQuery{Dest: NormalizeLocation("paris")}

	calls := 0
	start := time.Now()
	_, callErr := resolver.Resolve(context.Background(), CapabilityWeather, q, time.Second,
		func(ctx context.Context) ([]Item, error) {
			calls++
			return nil, Retryable(errors.New("rate limited"))
		})

	if calls != maxRetries {
		t.Errorf("expected %d attempts, got %d", maxRetries, calls)
	}
	if callErr == nil || callErr.Kind != ErrProviderFailure {
		t.Fatalf("expected provider_failure after retries, got %+v", callErr)
	}
	// Linear backoff: 1.5s then 3s between the three attempts.
	if elapsed := time.Since(start); elapsed < 4*time.Second {
		t.Errorf("expected backoff delays, finished in %v", elapsed)
	}
}

func TestResolveLiveSuccess(t *testing.T) {
	resolver := NewResolver(Config{OpenWeatherAPIKey: "test-key"})
	q := WeatherQuery{Dest: NormalizeLocation("paris")}

	want := []Item{{Name: "Current weather in Paris", Detail: "clear sky, 20.0°C"}}
	result, callErr := resolver.Resolve(context.Background(), CapabilityWeather, q, time.Second,
		func(ctx context.Context) ([]Item, error) {
			return want, nil
		})

	if callErr != nil {
		t.Fatalf("unexpected call error: %v", callErr)
	}
	if result.Provider != ProviderLive {
		t.Errorf("provider = %s, want live", result.Provider)
	}
	if !reflect.DeepEqual(result.Items, want) {
		t.Errorf("items = %+v, want %+v", result.Items, want)
	}
}

func TestResolveEmptyLiveResultIsFailure(t *testing.T) {
	resolver := NewResolver(Config{OpenWeatherAPIKey: "test-key"})
	q := WeatherQuery{Dest: NormalizeLocation("paris")}

	result, callErr := resolver.Resolve(context.Background(), CapabilityWeather, q, time.Second,
		func(ctx context.Context) ([]Item, error) {
			return []Item{}, nil
		})

	if callErr == nil || callErr.Kind != ErrProviderFailure {
		t.Fatalf("empty live payload should degrade, got %+v", callErr)
	}
	if result.Provider != ProviderMock {
		t.Errorf("provider = %s, want mock", result.Provider)
	}
}

func TestResolveUntranslatedLocationSkipsLive(t *testing.T) {
	resolver := NewResolver(Config{AmadeusClientID: "id", AmadeusClientSecret: "secret"})
	q := FlightQuery{
		Origin:     NormalizeLocation("paris"),
		Dest:       NormalizeLocation("Springfield"),
		DepartDate: "2026-09-15",
	}

	called := false
	result, callErr := resolver.Resolve(context.Background(), CapabilityFlights, q, time.Second,
		func(ctx context.Context) ([]Item, error) {
			called = true
			return nil, errors.New("should not run")
		})

	if called {
		t.Error("live call must not be attempted for an untranslated destination")
	}
	if result.Provider != ProviderMock {
		t.Errorf("provider = %s, want mock", result.Provider)
	}
	if callErr == nil || callErr.Kind != ErrProviderUnavailable {
		t.Fatalf("expected provider_unavailable, got %+v", callErr)
	}
}

func TestResolveHotelsOutsideSandboxSkipsLive(t *testing.T) {
	resolver := NewResolver(Config{AmadeusClientID: "id", AmadeusClientSecret: "secret"})
	// FCO translates as a code but is outside the sandbox hotel inventory.
	q := HotelQuery{Dest: NormalizeLocation("FCO"), CheckIn: "2026-09-15", CheckOut: "2026-09-18"}

	called := false
	result, callErr := resolver.Resolve(context.Background(), CapabilityHotels, q, time.Second,
		func(ctx context.Context) ([]Item, error) {
			called = true
			return nil, errors.New("should not run")
		})

	if called {
		t.Error("live call must not be attempted outside sandbox inventory")
	}
	if result.Provider != ProviderMock || callErr == nil || callErr.Kind != ErrProviderUnavailable {
		t.Fatalf("expected mock + provider_unavailable, got %+v / %+v", result, callErr)
	}
}

func TestLiveEnabledPerCapability(t *testing.T) {
	cfg := Config{AmadeusClientID: "id", AmadeusClientSecret: "secret"}
	if !cfg.LiveEnabled(CapabilityFlights) || !cfg.LiveEnabled(CapabilityHotels) {
		t.Error("amadeus credentials should enable flights and hotels")
	}
	if cfg.LiveEnabled(CapabilityWeather) {
		t.Error("weather should stay mock without an OpenWeather key")
	}
	if cfg.LiveEnabled(CapabilityAttractions) {
		t.Error("attractions should stay mock unless network access is allowed")
	}

	if (Config{AllowNetwork: true}).LiveEnabled(CapabilityAttractions) != true {
		t.Error("AllowNetwork should enable attractions")
	}
}
