package enrich

import (
	"strings"
	"testing"
	"time"

	"github.com/roadpulse/roadpulse/internal/models"
)

func TestIsPeakHour(t *testing.T) {
	peak := map[int]bool{6: true, 7: true, 8: true, 9: true, 10: true, 16: true, 17: true, 18: true, 19: true, 20: true}
	for hour := 0; hour < 24; hour++ {
		if got := IsPeakHour(hour); got != peak[hour] {
			t.Errorf("IsPeakHour(%d) = %v, want %v", hour, got, peak[hour])
		}
	}
}

func TestTimePeriodBoundaries(t *testing.T) {
	cases := map[int]string{
		4:  "Night",
		5:  "Morning",
		11: "Morning",
		12: "Afternoon",
		15: "Afternoon",
		16: "Evening",
		19: "Evening",
		20: "Night",
		0:  "Night",
		23: "Night",
	}
	for hour, want := range cases {
		if got := TimePeriod(hour); got != want {
			t.Errorf("TimePeriod(%d) = %q, want %q", hour, got, want)
		}
	}
}

func TestTrafficRatio(t *testing.T) {
	ratio := TrafficRatio(2700, 1800)
	if ratio == nil {
		t.Fatal("expected a ratio, got nil")
	}
	if *ratio != 1.5 {
		t.Errorf("TrafficRatio(2700, 1800) = %v, want 1.5", *ratio)
	}

	if got := TrafficRatio(2700, 0); got != nil {
		t.Errorf("TrafficRatio with zero free-flow duration = %v, want nil", *got)
	}
}

func TestRouteComplexity(t *testing.T) {
	if got := RouteComplexity(12, 6000); got != 2.0 {
		t.Errorf("RouteComplexity(12, 6000) = %v, want 2.0", got)
	}
}

func testRoute() models.Route {
	return models.Route{
		Name:        "lagos_mainland_island",
		Origin:      "Ikeja",
		Destination: "Victoria Island",
		City:        "Lagos",
	}
}

func testTraffic() *models.TrafficObservation {
	return &models.TrafficObservation{
		DistanceMeters:    6000,
		DurationNoTraffic: 1800,
		DurationInTraffic: 2700,
		StepCount:         12,
		NumAlternatives:   2,
		HasTolls:          true,
	}
}

func TestEnrich(t *testing.T) {
	loc, err := time.LoadLocation("Africa/Lagos")
	if err != nil {
		t.Fatalf("failed to load zone: %v", err)
	}
	engine := NewEngine(loc)

	// Tuesday 2025-03-04 17:30 UTC is 18:30 in Lagos (+01:00).
	captureTime := time.Date(2025, 3, 4, 17, 30, 0, 0, time.UTC)
	weather := &models.WeatherObservation{TemperatureC: 31.2, Condition: "Clouds"}

	rec, err := engine.Enrich(testRoute(), testTraffic(), weather, captureTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.RecordID == "" {
		t.Error("expected a record ID")
	}
	if rec.HourOfDay != 18 {
		t.Errorf("HourOfDay = %d, want 18", rec.HourOfDay)
	}
	if !strings.HasSuffix(rec.Timestamp, "+01:00") {
		t.Errorf("Timestamp = %q, want +01:00 offset", rec.Timestamp)
	}
	if rec.DayOfWeek != "Tuesday" {
		t.Errorf("DayOfWeek = %q, want Tuesday", rec.DayOfWeek)
	}
	if rec.IsWeekend {
		t.Error("Tuesday should not be a weekend")
	}
	if !rec.IsPeakHour {
		t.Error("18:30 should be a peak hour")
	}
	if rec.TimePeriod != "Evening" {
		t.Errorf("TimePeriod = %q, want Evening", rec.TimePeriod)
	}
	if rec.TrafficRatio == nil || *rec.TrafficRatio != 1.5 {
		t.Errorf("TrafficRatio = %v, want 1.5", rec.TrafficRatio)
	}
	if rec.RouteComplexity != 2.0 {
		t.Errorf("RouteComplexity = %v, want 2.0", rec.RouteComplexity)
	}
	if rec.Weather == nil || rec.Weather.TemperatureC != 31.2 {
		t.Errorf("weather not carried onto record: %+v", rec.Weather)
	}
}

func TestEnrichWeekend(t *testing.T) {
	engine := NewEngine(time.UTC)

	// Saturday 2025-03-08 03:00 UTC.
	captureTime := time.Date(2025, 3, 8, 3, 0, 0, 0, time.UTC)
	rec, err := engine.Enrich(testRoute(), testTraffic(), nil, captureTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !rec.IsWeekend {
		t.Error("Saturday should be a weekend")
	}
	if rec.IsPeakHour {
		t.Error("03:00 should not be a peak hour")
	}
	if rec.TimePeriod != "Night" {
		t.Errorf("TimePeriod = %q, want Night", rec.TimePeriod)
	}
}

func TestEnrichMissingTraffic(t *testing.T) {
	engine := NewEngine(time.UTC)

	if _, err := engine.Enrich(testRoute(), nil, nil, time.Now()); err != ErrMissingTraffic {
		t.Fatalf("expected ErrMissingTraffic, got %v", err)
	}
}

func TestEnrichZeroFreeFlowDuration(t *testing.T) {
	engine := NewEngine(time.UTC)

	traffic := testTraffic()
	traffic.DurationNoTraffic = 0

	rec, err := engine.Enrich(testRoute(), traffic, nil, time.Now())
	if err != nil {
		t.Fatalf("expected a record despite zero free-flow duration, got %v", err)
	}
	if rec.TrafficRatio != nil {
		t.Errorf("TrafficRatio = %v, want nil", *rec.TrafficRatio)
	}
}

func TestEnrichWithoutWeather(t *testing.T) {
	engine := NewEngine(time.UTC)

	rec, err := engine.Enrich(testRoute(), testTraffic(), nil, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Weather != nil {
		t.Errorf("expected absent weather, got %+v", rec.Weather)
	}
}
