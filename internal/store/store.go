// Package store persists observation records to durable per-city datasets.
// The CSV dataset is the primary target; Parquet, Postgres and Kafka sinks
// share the same flat row schema.
package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/roadpulse/roadpulse/internal/models"
)

// RecordStore appends one observation record to the dataset for a city.
// Appends never reorder, merge or deduplicate prior rows.
type RecordStore interface {
	Append(ctx context.Context, city string, rec *models.ObservationRecord) error
}

type ErrorKind string

const (
	IOFailure      ErrorKind = "io_failure"
	SchemaMismatch ErrorKind = "schema_mismatch"
)

type StoreError struct {
	Kind ErrorKind
	City string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s for %s: %v", e.Kind, e.City, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// CityKey is the stable, filesystem-safe dataset identifier for a city.
func CityKey(city string) string {
	return strings.ReplaceAll(strings.ToLower(city), " ", "_")
}

// row is the flat persisted shape of an observation record. Optional fields
// are pointers; a nil pointer serializes as an empty cell, a NULL column or an
// omitted Parquet value, never as zero.
type row struct {
	RecordID          string   `json:"record_id" parquet:"name=record_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	RouteName         string   `json:"route_name" parquet:"name=route_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	City              string   `json:"city" parquet:"name=city, type=BYTE_ARRAY, convertedtype=UTF8"`
	Origin            string   `json:"origin" parquet:"name=origin, type=BYTE_ARRAY, convertedtype=UTF8"`
	Destination       string   `json:"destination" parquet:"name=destination, type=BYTE_ARRAY, convertedtype=UTF8"`
	DistanceMeters    int64    `json:"distance_meters" parquet:"name=distance_meters, type=INT64"`
	DurationNoTraffic int64    `json:"duration_no_traffic_secs" parquet:"name=duration_no_traffic_secs, type=INT64"`
	DurationInTraffic int64    `json:"duration_in_traffic_secs" parquet:"name=duration_in_traffic_secs, type=INT64"`
	TrafficRatio      *float64 `json:"traffic_ratio" parquet:"name=traffic_ratio, type=DOUBLE, repetitiontype=OPTIONAL"`
	Timestamp         string   `json:"timestamp" parquet:"name=timestamp, type=BYTE_ARRAY, convertedtype=UTF8"`
	DayOfWeek         string   `json:"day_of_week" parquet:"name=day_of_week, type=BYTE_ARRAY, convertedtype=UTF8"`
	IsWeekend         bool     `json:"is_weekend" parquet:"name=is_weekend, type=BOOLEAN"`
	HourOfDay         int64    `json:"hour_of_day" parquet:"name=hour_of_day, type=INT64"`
	IsPeakHour        bool     `json:"is_peak_hour" parquet:"name=is_peak_hour, type=BOOLEAN"`
	TimePeriod        string   `json:"time_period" parquet:"name=time_period, type=BYTE_ARRAY, convertedtype=UTF8"`
	NumAlternatives   int64    `json:"num_alternative_routes" parquet:"name=num_alternative_routes, type=INT64"`
	StepsCount        int64    `json:"steps_count" parquet:"name=steps_count, type=INT64"`
	HasTolls          bool     `json:"has_tolls" parquet:"name=has_tolls, type=BOOLEAN"`
	RouteComplexity   float64  `json:"route_complexity" parquet:"name=route_complexity, type=DOUBLE"`

	TemperatureC     *float64 `json:"temperature_c" parquet:"name=temperature_c, type=DOUBLE, repetitiontype=OPTIONAL"`
	FeelsLikeC       *float64 `json:"feels_like_c" parquet:"name=feels_like_c, type=DOUBLE, repetitiontype=OPTIONAL"`
	HumidityPct      *float64 `json:"humidity_percent" parquet:"name=humidity_percent, type=DOUBLE, repetitiontype=OPTIONAL"`
	PressureHpa      *float64 `json:"pressure_hpa" parquet:"name=pressure_hpa, type=DOUBLE, repetitiontype=OPTIONAL"`
	Condition        *string  `json:"weather_condition" parquet:"name=weather_condition, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Description      *string  `json:"weather_description" parquet:"name=weather_description, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	WindSpeedMS      *float64 `json:"wind_speed_ms" parquet:"name=wind_speed_ms, type=DOUBLE, repetitiontype=OPTIONAL"`
	WindDirectionDeg *float64 `json:"wind_direction_degrees" parquet:"name=wind_direction_degrees, type=DOUBLE, repetitiontype=OPTIONAL"`
	CloudCoveragePct *float64 `json:"cloud_coverage_percent" parquet:"name=cloud_coverage_percent, type=DOUBLE, repetitiontype=OPTIONAL"`
	VisibilityMeters *float64 `json:"visibility_meters" parquet:"name=visibility_meters, type=DOUBLE, repetitiontype=OPTIONAL"`
	Rain1hMm         *float64 `json:"rain_1h_mm" parquet:"name=rain_1h_mm, type=DOUBLE, repetitiontype=OPTIONAL"`
	Rain3hMm         *float64 `json:"rain_3h_mm" parquet:"name=rain_3h_mm, type=DOUBLE, repetitiontype=OPTIONAL"`
}

// Columns is the canonical dataset header, in persisted order.
func Columns() []string {
	return []string{
		"record_id", "route_name", "city", "origin", "destination",
		"distance_meters", "duration_no_traffic_secs", "duration_in_traffic_secs",
		"traffic_ratio", "timestamp", "day_of_week", "is_weekend", "hour_of_day",
		"is_peak_hour", "time_period", "num_alternative_routes", "steps_count",
		"has_tolls", "route_complexity",
		"temperature_c", "feels_like_c", "humidity_percent", "pressure_hpa",
		"weather_condition", "weather_description", "wind_speed_ms",
		"wind_direction_degrees", "cloud_coverage_percent", "visibility_meters",
		"rain_1h_mm", "rain_3h_mm",
	}
}

func newRow(rec *models.ObservationRecord) *row {
	r := &row{
		RecordID:          rec.RecordID,
		RouteName:         rec.Route.Name,
		City:              rec.Route.City,
		Origin:            rec.Route.Origin,
		Destination:       rec.Route.Destination,
		DistanceMeters:    int64(rec.Traffic.DistanceMeters),
		DurationNoTraffic: int64(rec.Traffic.DurationNoTraffic),
		DurationInTraffic: int64(rec.Traffic.DurationInTraffic),
		TrafficRatio:      rec.TrafficRatio,
		Timestamp:         rec.Timestamp,
		DayOfWeek:         rec.DayOfWeek,
		IsWeekend:         rec.IsWeekend,
		HourOfDay:         int64(rec.HourOfDay),
		IsPeakHour:        rec.IsPeakHour,
		TimePeriod:        rec.TimePeriod,
		NumAlternatives:   int64(rec.Traffic.NumAlternatives),
		StepsCount:        int64(rec.Traffic.StepCount),
		HasTolls:          rec.Traffic.HasTolls,
		RouteComplexity:   rec.RouteComplexity,
	}

	if w := rec.Weather; w != nil {
		r.TemperatureC = &w.TemperatureC
		r.FeelsLikeC = &w.FeelsLikeC
		r.HumidityPct = &w.HumidityPct
		r.PressureHpa = &w.PressureHpa
		r.Condition = &w.Condition
		r.Description = &w.Description
		r.WindSpeedMS = &w.WindSpeedMS
		r.WindDirectionDeg = &w.WindDirectionDeg
		r.CloudCoveragePct = &w.CloudCoveragePct
		r.VisibilityMeters = &w.VisibilityMeters
		r.Rain1hMm = &w.Rain1hMm
		r.Rain3hMm = &w.Rain3hMm
	}

	return r
}

// valueMap renders every cell as text keyed by column name, with absent
// optionals as empty strings.
func (r *row) valueMap() map[string]string {
	m := map[string]string{
		"record_id":                r.RecordID,
		"route_name":               r.RouteName,
		"city":                     r.City,
		"origin":                   r.Origin,
		"destination":              r.Destination,
		"distance_meters":          strconv.FormatInt(r.DistanceMeters, 10),
		"duration_no_traffic_secs": strconv.FormatInt(r.DurationNoTraffic, 10),
		"duration_in_traffic_secs": strconv.FormatInt(r.DurationInTraffic, 10),
		"traffic_ratio":            formatOptFloat(r.TrafficRatio),
		"timestamp":                r.Timestamp,
		"day_of_week":              r.DayOfWeek,
		"is_weekend":               strconv.FormatBool(r.IsWeekend),
		"hour_of_day":              strconv.FormatInt(r.HourOfDay, 10),
		"is_peak_hour":             strconv.FormatBool(r.IsPeakHour),
		"time_period":              r.TimePeriod,
		"num_alternative_routes":   strconv.FormatInt(r.NumAlternatives, 10),
		"steps_count":              strconv.FormatInt(r.StepsCount, 10),
		"has_tolls":                strconv.FormatBool(r.HasTolls),
		"route_complexity":         strconv.FormatFloat(r.RouteComplexity, 'f', -1, 64),
		"temperature_c":            formatOptFloat(r.TemperatureC),
		"feels_like_c":             formatOptFloat(r.FeelsLikeC),
		"humidity_percent":         formatOptFloat(r.HumidityPct),
		"pressure_hpa":             formatOptFloat(r.PressureHpa),
		"weather_condition":        formatOptString(r.Condition),
		"weather_description":      formatOptString(r.Description),
		"wind_speed_ms":            formatOptFloat(r.WindSpeedMS),
		"wind_direction_degrees":   formatOptFloat(r.WindDirectionDeg),
		"cloud_coverage_percent":   formatOptFloat(r.CloudCoveragePct),
		"visibility_meters":        formatOptFloat(r.VisibilityMeters),
		"rain_1h_mm":               formatOptFloat(r.Rain1hMm),
		"rain_3h_mm":               formatOptFloat(r.Rain3hMm),
	}
	return m
}

// cells projects the row onto the given header.
func (r *row) cells(columns []string) []string {
	values := r.valueMap()
	out := make([]string, len(columns))
	for i, col := range columns {
		out[i] = values[col]
	}
	return out
}

func formatOptFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatOptString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
