package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/roadpulse/roadpulse/internal/models"
	"github.com/sony/gobreaker"
)

// GoogleDirectionsProvider implements TrafficProvider against the Google Maps
// Directions API: driving mode, best-guess traffic model, alternatives on.
type GoogleDirectionsProvider struct {
	name    string
	apiKey  string
	country string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewGoogleDirectionsProvider(client *http.Client, apiKey, country string) *GoogleDirectionsProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "google-directions",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &GoogleDirectionsProvider{
		name:    "google-directions",
		apiKey:  apiKey,
		country: country,
		baseURL: "https://maps.googleapis.com/maps/api/directions/json",
		client:  client,
		circuit: cb,
	}
}

func (p *GoogleDirectionsProvider) Query(ctx context.Context, route models.Route, at time.Time) (*models.TrafficObservation, error) {
	if p.apiKey == "" {
		return nil, newProviderError(p.name, InvalidResponse, fmt.Errorf("google api key is not configured"))
	}

	values := url.Values{}
	values.Set("origin", p.qualify(route.Origin, route.City))
	values.Set("destination", p.qualify(route.Destination, route.City))
	values.Set("mode", "driving")
	values.Set("departure_time", strconv.FormatInt(at.Unix(), 10))
	values.Set("traffic_model", "best_guess")
	values.Set("alternatives", "true")
	values.Set("key", p.apiKey)

	body, err := fetch(ctx, p.client, p.circuit, fmt.Sprintf("%s?%s", p.baseURL, values.Encode()))
	if err != nil {
		return nil, newProviderError(p.name, classify(err), err)
	}

	var payload struct {
		Status string `json:"status"`
		Routes []struct {
			Legs []struct {
				Distance struct {
					Value int `json:"value"`
				} `json:"distance"`
				Duration struct {
					Value int `json:"value"`
				} `json:"duration"`
				DurationInTraffic struct {
					Value int `json:"value"`
				} `json:"duration_in_traffic"`
				Steps []struct {
					HTMLInstructions string `json:"html_instructions"`
				} `json:"steps"`
			} `json:"legs"`
		} `json:"routes"`
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, newProviderError(p.name, InvalidResponse, err)
	}

	switch payload.Status {
	case "OK":
	case "ZERO_RESULTS", "NOT_FOUND":
		return nil, newProviderError(p.name, NoRoute,
			fmt.Errorf("no route between %s and %s", route.Origin, route.Destination))
	default:
		return nil, newProviderError(p.name, InvalidResponse,
			fmt.Errorf("directions status %s", payload.Status))
	}

	if len(payload.Routes) == 0 || len(payload.Routes[0].Legs) == 0 {
		return nil, newProviderError(p.name, NoRoute,
			fmt.Errorf("no route between %s and %s", route.Origin, route.Destination))
	}

	leg := payload.Routes[0].Legs[0]
	if leg.Distance.Value <= 0 {
		return nil, newProviderError(p.name, InvalidResponse,
			fmt.Errorf("non-positive distance %d", leg.Distance.Value))
	}

	hasTolls := false
	for _, step := range leg.Steps {
		if strings.Contains(strings.ToLower(step.HTMLInstructions), "toll") {
			hasTolls = true
			break
		}
	}

	numAlternatives := 0
	if len(payload.Routes) > 1 {
		numAlternatives = len(payload.Routes) - 1
	}

	return &models.TrafficObservation{
		DistanceMeters:    leg.Distance.Value,
		DurationNoTraffic: leg.Duration.Value,
		DurationInTraffic: leg.DurationInTraffic.Value,
		StepCount:         len(leg.Steps),
		NumAlternatives:   numAlternatives,
		HasTolls:          hasTolls,
	}, nil
}

func (p *GoogleDirectionsProvider) qualify(place, city string) string {
	if p.country == "" {
		return fmt.Sprintf("%s, %s", place, city)
	}
	return fmt.Sprintf("%s, %s, %s", place, city, p.country)
}
