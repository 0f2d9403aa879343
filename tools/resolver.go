package tools

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// Timeouts and retry budget for live provider calls.
const (
	shortTimeout = 10 * time.Second
	longTimeout  = 15 * time.Second

	maxRetries = 3
	retryDelay = 1500 * time.Millisecond
)

// Config toggles live provider access per capability. Each flag is derived
// from the presence of the corresponding credential; a missing credential
// means the resolver never attempts the live call for that capability.
type Config struct {
	AmadeusClientID     string `yaml:"amadeusClientId" json:"amadeus_client_id"`
	AmadeusClientSecret string `yaml:"amadeusClientSecret" json:"amadeus_client_secret"`
	OpenWeatherAPIKey   string `yaml:"openWeatherApiKey" json:"openweather_api_key"`
	AllowNetwork        bool   `yaml:"allowNetwork" json:"allow_network"` // gates keyless providers (Wikipedia)
}

// LiveEnabled reports whether the capability's live integration is configured.
func (c Config) LiveEnabled(capability Capability) bool {
	switch capability {
	case CapabilityFlights, CapabilityHotels:
		return c.AmadeusClientID != "" && c.AmadeusClientSecret != ""
	case CapabilityWeather:
		return c.OpenWeatherAPIKey != ""
	case CapabilityAttractions:
		return c.AllowNetwork
	}
	return false
}

// LiveFunc performs the real network call for one capability. It is injected
// by the tool layer so the resolver carries no provider SDK dependency.
type LiveFunc func(ctx context.Context) ([]Item, error)

// liveGated is implemented by queries whose parameters can rule out the live
// call before it is attempted (untranslated locations, sandbox inventory).
type liveGated interface {
	liveEligible() bool
}

// retryableError marks failures worth another attempt (rate limits, 5xx,
// transient network errors).
type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// Retryable wraps err so the resolver will retry the live call.
func Retryable(err error) error { return &retryableError{err: err} }

// Resolver decides, per invocation, between a live provider call and the
// deterministic substitute. It never returns an absent result: every
// resolution yields either live items or the mock.
type Resolver struct {
	cfg Config
}

// NewResolver creates a Resolver with the given provider configuration.
func NewResolver(cfg Config) *Resolver {
	return &Resolver{cfg: cfg}
}

// Resolve runs liveFn when the capability is configured, falling back to the
// deterministic substitute on any failure. The returned CallError is nil for
// a successful live call and otherwise classifies the degradation; it is
// recorded by the caller, never raised.
func (r *Resolver) Resolve(ctx context.Context, capability Capability, query any, timeout time.Duration, liveFn LiveFunc) (*Result, *CallError) {
	start := time.Now()

	if !r.cfg.LiveEnabled(capability) {
		log.Printf("[TOOLS] %s credentials not set — using mock data", capability)
		result := MockResult(capability, query)
		result.LatencyMS = time.Since(start).Milliseconds()
		return result, &CallError{
			Capability: capability,
			Kind:       ErrProviderUnavailable,
			Message:    fmt.Sprintf("no credentials configured for %s", capability),
		}
	}

	// Sandboxed capabilities refuse locations the live provider cannot
	// serve; the call would fail anyway, so skip straight to the mock.
	if gated, ok := query.(liveGated); ok && !gated.liveEligible() {
		log.Printf("[TOOLS] %s location outside live coverage — using mock data", capability)
		result := MockResult(capability, query)
		result.LatencyMS = time.Since(start).Milliseconds()
		return result, &CallError{
			Capability: capability,
			Kind:       ErrProviderUnavailable,
			Message:    fmt.Sprintf("location not covered by the live %s provider", capability),
		}
	}

	items, err := r.callWithRetry(ctx, capability, timeout, liveFn)
	if err != nil {
		log.Printf("[TOOLS] %s live call failed, falling back to mock: %v", capability, err)
		result := MockResult(capability, query)
		result.LatencyMS = time.Since(start).Milliseconds()
		return result, &CallError{
			Capability: capability,
			Kind:       ErrProviderFailure,
			Message:    err.Error(),
		}
	}

	return &Result{
		Provider:  ProviderLive,
		Items:     items,
		LatencyMS: time.Since(start).Milliseconds(),
	}, nil
}

// callWithRetry bounds every attempt with its own timeout and retries only
// failures marked retryable, with linear backoff as in the upstream provider
// guidelines.
func (r *Resolver) callWithRetry(ctx context.Context, capability Capability, timeout time.Duration, liveFn LiveFunc) ([]Item, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(retryDelay * time.Duration(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			log.Printf("[TOOLS] %s retry %d/%d", capability, attempt+1, maxRetries)
		}

		callCtx, cancel := context.WithTimeout(ctx, timeout)
		items, err := liveFn(callCtx)
		cancel()

		if err == nil {
			if len(items) == 0 {
				return nil, fmt.Errorf("%s returned no items", capability)
			}
			return items, nil
		}
		lastErr = err

		var retry *retryableError
		if !errors.As(err, &retry) {
			break
		}
	}
	return nil, lastErr
}
