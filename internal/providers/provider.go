package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/roadpulse/roadpulse/internal/models"
)

// TrafficProvider answers one routing query for a route at a point in time.
// Implementations must request a traffic-aware duration with a best-guess
// traffic model and ask for alternative routes, so the observation can carry
// the alternative count and toll presence.
type TrafficProvider interface {
	Query(ctx context.Context, route models.Route, at time.Time) (*models.TrafficObservation, error)
}

// WeatherProvider answers one current-conditions query for a city.
type WeatherProvider interface {
	Query(ctx context.Context, city string) (*models.WeatherObservation, error)
}

type ErrorKind string

const (
	NoRoute         ErrorKind = "no_route"
	NetworkError    ErrorKind = "network_error"
	InvalidResponse ErrorKind = "invalid_response"
)

// ProviderError classifies a failed provider call. The scheduler only acts on
// which provider failed, never on credentials or payloads.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func newProviderError(provider string, kind ErrorKind, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kind, Err: err}
}
