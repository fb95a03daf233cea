package providers

import (
	"context"
	"time"

	"github.com/jaswdr/faker"
	"github.com/roadpulse/roadpulse/internal/models"
)

var fake = faker.New()

// SimulatedTrafficProvider generates plausible traffic observations without
// touching any external API. Used for dry runs and local development where no
// credentials are available.
type SimulatedTrafficProvider struct{}

func NewSimulatedTrafficProvider() *SimulatedTrafficProvider {
	return &SimulatedTrafficProvider{}
}

func (p *SimulatedTrafficProvider) Query(_ context.Context, _ models.Route, at time.Time) (*models.TrafficObservation, error) {
	distance := fake.IntBetween(3000, 42000)
	// free-flow speed between 10 and 18 m/s
	base := distance / fake.IntBetween(10, 18)

	// congestion between 1.0x and 2.5x, heavier in peak hours
	ratioPct := fake.IntBetween(100, 180)
	hour := at.Hour()
	if (hour >= 6 && hour <= 10) || (hour >= 16 && hour <= 20) {
		ratioPct = fake.IntBetween(130, 250)
	}

	return &models.TrafficObservation{
		DistanceMeters:    distance,
		DurationNoTraffic: base,
		DurationInTraffic: base * ratioPct / 100,
		StepCount:         fake.IntBetween(5, 40),
		NumAlternatives:   fake.IntBetween(0, 3),
		HasTolls:          fake.Boolean().Bool(),
	}, nil
}

// SimulatedWeatherProvider generates plausible tropical weather conditions.
type SimulatedWeatherProvider struct{}

func NewSimulatedWeatherProvider() *SimulatedWeatherProvider {
	return &SimulatedWeatherProvider{}
}

func (p *SimulatedWeatherProvider) Query(_ context.Context, _ string) (*models.WeatherObservation, error) {
	condition := fake.RandomStringElement([]string{"Clear", "Clouds", "Rain", "Thunderstorm", "Haze"})

	temp := fake.Float64(1, 21, 37)
	rain1h := 0.0
	if condition == "Rain" || condition == "Thunderstorm" {
		rain1h = fake.Float64(1, 0, 25)
	}

	return &models.WeatherObservation{
		TemperatureC:     temp,
		FeelsLikeC:       temp + fake.Float64(1, 0, 6),
		HumidityPct:      float64(fake.IntBetween(40, 97)),
		PressureHpa:      float64(fake.IntBetween(1005, 1018)),
		Condition:        condition,
		Description:      condition,
		WindSpeedMS:      fake.Float64(1, 0, 12),
		WindDirectionDeg: float64(fake.IntBetween(0, 359)),
		CloudCoveragePct: float64(fake.IntBetween(0, 100)),
		VisibilityMeters: float64(fake.IntBetween(2000, 10000)),
		Rain1hMm:         rain1h,
		Rain3hMm:         rain1h * 2,
	}, nil
}
