package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/roadpulse/roadpulse/internal/models"
)

const directionsPayload = `{
	"status": "OK",
	"routes": [
		{
			"legs": [
				{
					"distance": {"value": 6000},
					"duration": {"value": 1800},
					"duration_in_traffic": {"value": 2700},
					"steps": [
						{"html_instructions": "Head north"},
						{"html_instructions": "Continue onto the Toll road"},
						{"html_instructions": "Turn left"}
					]
				}
			]
		},
		{"legs": [{"distance": {"value": 7000}, "duration": {"value": 2000}, "duration_in_traffic": {"value": 2400}, "steps": []}]}
	]
}`

func testRoute() models.Route {
	return models.Route{Name: "lagos_lekki_vi", Origin: "Lekki Phase 1", Destination: "Victoria Island", City: "Lagos"}
}

func TestGoogleDirectionsQuery(t *testing.T) {
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(directionsPayload))
	}))
	defer server.Close()

	p := NewGoogleDirectionsProvider(server.Client(), "test-key", "Nigeria")
	p.baseURL = server.URL

	obs, err := p.Query(context.Background(), testRoute(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if obs.DistanceMeters != 6000 || obs.DurationNoTraffic != 1800 || obs.DurationInTraffic != 2700 {
		t.Errorf("observation = %+v", obs)
	}
	if obs.StepCount != 3 {
		t.Errorf("StepCount = %d, want 3", obs.StepCount)
	}
	if obs.NumAlternatives != 1 {
		t.Errorf("NumAlternatives = %d, want 1", obs.NumAlternatives)
	}
	if !obs.HasTolls {
		t.Error("expected toll detection from step instructions")
	}

	if got := gotQuery["origin"]; len(got) != 1 || got[0] != "Lekki Phase 1, Lagos, Nigeria" {
		t.Errorf("origin = %v", got)
	}
	if got := gotQuery["traffic_model"]; len(got) != 1 || got[0] != "best_guess" {
		t.Errorf("traffic_model = %v", got)
	}
	if got := gotQuery["alternatives"]; len(got) != 1 || got[0] != "true" {
		t.Errorf("alternatives = %v", got)
	}
}

func TestGoogleDirectionsNoRoute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ZERO_RESULTS", "routes": []}`))
	}))
	defer server.Close()

	p := NewGoogleDirectionsProvider(server.Client(), "test-key", "Nigeria")
	p.baseURL = server.URL

	_, err := p.Query(context.Background(), testRoute(), time.Now())
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected a ProviderError, got %v", err)
	}
	if pe.Kind != NoRoute {
		t.Errorf("error kind = %s, want %s", pe.Kind, NoRoute)
	}
}

func TestGoogleDirectionsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	p := NewGoogleDirectionsProvider(server.Client(), "test-key", "Nigeria")
	p.baseURL = server.URL

	_, err := p.Query(context.Background(), testRoute(), time.Now())
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected a ProviderError, got %v", err)
	}
	if pe.Kind != NetworkError {
		t.Errorf("error kind = %s, want %s", pe.Kind, NetworkError)
	}
}

func TestOpenWeatherQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "Lagos,Nigeria" {
			t.Errorf("q = %q, want Lagos,Nigeria", got)
		}
		if got := r.URL.Query().Get("units"); got != "metric" {
			t.Errorf("units = %q, want metric", got)
		}
		// wind direction, clouds, visibility and rain are deliberately absent
		w.Write([]byte(`{
			"main": {"temp": 31.2, "feels_like": 35.8, "humidity": 74, "pressure": 1011},
			"weather": [{"main": "Clouds", "description": "scattered clouds"}],
			"wind": {"speed": 3.6}
		}`))
	}))
	defer server.Close()

	p := NewOpenWeatherProvider(server.Client(), "test-key", "Nigeria")
	p.baseURL = server.URL

	obs, err := p.Query(context.Background(), "Lagos")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if obs.TemperatureC != 31.2 || obs.FeelsLikeC != 35.8 {
		t.Errorf("temperatures = %v / %v", obs.TemperatureC, obs.FeelsLikeC)
	}
	if obs.Condition != "Clouds" || obs.Description != "scattered clouds" {
		t.Errorf("condition = %q / %q", obs.Condition, obs.Description)
	}
	if obs.WindDirectionDeg != 0 || obs.CloudCoveragePct != 0 || obs.VisibilityMeters != 0 || obs.Rain1hMm != 0 || obs.Rain3hMm != 0 {
		t.Errorf("absent fields should default to zero: %+v", obs)
	}
}

func TestOpenWeatherMissingKey(t *testing.T) {
	p := NewOpenWeatherProvider(http.DefaultClient, "", "Nigeria")
	if _, err := p.Query(context.Background(), "Lagos"); err == nil {
		t.Fatal("expected an error without an api key")
	}
}

func TestSimulatedProviders(t *testing.T) {
	traffic := NewSimulatedTrafficProvider()
	obs, err := traffic.Query(context.Background(), testRoute(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obs.DistanceMeters <= 0 || obs.DurationNoTraffic <= 0 {
		t.Errorf("implausible simulated traffic: %+v", obs)
	}
	if obs.DurationInTraffic < obs.DurationNoTraffic {
		t.Errorf("simulated congestion below free flow: %+v", obs)
	}

	weather := NewSimulatedWeatherProvider()
	wobs, err := weather.Query(context.Background(), "Lagos")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wobs.Condition == "" {
		t.Error("expected a simulated condition")
	}
}
