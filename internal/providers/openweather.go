package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/roadpulse/roadpulse/internal/models"
	"github.com/sony/gobreaker"
)

// OpenWeatherProvider implements WeatherProvider for the OpenWeatherMap
// current-conditions endpoint. Optional response fields (wind direction,
// clouds, visibility, rain) default to zero here, at the adapter boundary.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	country string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey, country string) *OpenWeatherProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		country: country,
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		client:  client,
		circuit: cb,
	}
}

func (p *OpenWeatherProvider) Query(ctx context.Context, city string) (*models.WeatherObservation, error) {
	if p.apiKey == "" {
		return nil, newProviderError(p.name, InvalidResponse, fmt.Errorf("openweather api key is not configured"))
	}

	q := city
	if p.country != "" {
		q = fmt.Sprintf("%s,%s", city, p.country)
	}

	values := url.Values{}
	values.Set("q", q)
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")

	body, err := fetch(ctx, p.client, p.circuit, fmt.Sprintf("%s?%s", p.baseURL, values.Encode()))
	if err != nil {
		return nil, newProviderError(p.name, classify(err), err)
	}

	var payload struct {
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Humidity  float64 `json:"humidity"`
			Pressure  float64 `json:"pressure"`
		} `json:"main"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
		Wind struct {
			Speed float64 `json:"speed"`
			Deg   float64 `json:"deg"`
		} `json:"wind"`
		Clouds struct {
			All float64 `json:"all"`
		} `json:"clouds"`
		Visibility float64 `json:"visibility"`
		Rain       struct {
			OneH   float64 `json:"1h"`
			ThreeH float64 `json:"3h"`
		} `json:"rain"`
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, newProviderError(p.name, InvalidResponse, err)
	}

	obs := &models.WeatherObservation{
		TemperatureC:     payload.Main.Temp,
		FeelsLikeC:       payload.Main.FeelsLike,
		HumidityPct:      payload.Main.Humidity,
		PressureHpa:      payload.Main.Pressure,
		WindSpeedMS:      payload.Wind.Speed,
		WindDirectionDeg: payload.Wind.Deg,
		CloudCoveragePct: payload.Clouds.All,
		VisibilityMeters: payload.Visibility,
		Rain1hMm:         payload.Rain.OneH,
		Rain3hMm:         payload.Rain.ThreeH,
	}
	if len(payload.Weather) > 0 {
		obs.Condition = payload.Weather[0].Main
		obs.Description = payload.Weather[0].Description
	}

	return obs, nil
}
