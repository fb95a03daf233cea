package models

// TrafficObservation is the result of one routing query at a point in time.
// Durations are in seconds; the adapter validates DistanceMeters > 0 before
// handing an observation to the pipeline.
type TrafficObservation struct {
	DistanceMeters    int  `json:"distance_meters"`
	DurationNoTraffic int  `json:"duration_no_traffic_secs"`
	DurationInTraffic int  `json:"duration_in_traffic_secs"`
	StepCount         int  `json:"steps_count"`
	NumAlternatives   int  `json:"num_alternative_routes"`
	HasTolls          bool `json:"has_tolls"`
}

// WeatherObservation is the result of one current-conditions query for a city.
// Fields the upstream response omits are zero; that defaulting happens once, in
// the provider adapter, never in the enrichment logic.
type WeatherObservation struct {
	TemperatureC     float64 `json:"temperature_c"`
	FeelsLikeC       float64 `json:"feels_like_c"`
	HumidityPct      float64 `json:"humidity_percent"`
	PressureHpa      float64 `json:"pressure_hpa"`
	Condition        string  `json:"weather_condition"`
	Description      string  `json:"weather_description"`
	WindSpeedMS      float64 `json:"wind_speed_ms"`
	WindDirectionDeg float64 `json:"wind_direction_degrees"`
	CloudCoveragePct float64 `json:"cloud_coverage_percent"`
	VisibilityMeters float64 `json:"visibility_meters"`
	Rain1hMm         float64 `json:"rain_1h_mm"`
	Rain3hMm         float64 `json:"rain_3h_mm"`
}

// ObservationRecord is the persisted unit: route identity, the traffic
// observation, the weather observation when one was available, and the derived
// temporal and congestion features. Records are immutable once built.
//
// Weather is nil when the weather query failed for the cycle; TrafficRatio is
// nil when the free-flow duration was zero. Both stay in the persisted schema
// as empty cells.
type ObservationRecord struct {
	RecordID string              `json:"record_id"`
	Route    Route               `json:"route"`
	Traffic  TrafficObservation  `json:"traffic"`
	Weather  *WeatherObservation `json:"weather,omitempty"`

	Timestamp       string   `json:"timestamp"`
	DayOfWeek       string   `json:"day_of_week"`
	IsWeekend       bool     `json:"is_weekend"`
	HourOfDay       int      `json:"hour_of_day"`
	IsPeakHour      bool     `json:"is_peak_hour"`
	TimePeriod      string   `json:"time_period"`
	TrafficRatio    *float64 `json:"traffic_ratio,omitempty"`
	RouteComplexity float64  `json:"route_complexity"`
}
