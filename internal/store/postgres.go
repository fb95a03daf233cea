package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/roadpulse/roadpulse/internal/models"
)

const observationsSchema = `
CREATE TABLE IF NOT EXISTS observations (
    record_id                TEXT PRIMARY KEY,
    route_name               TEXT NOT NULL,
    city                     TEXT NOT NULL,
    origin                   TEXT NOT NULL,
    destination              TEXT NOT NULL,
    distance_meters          BIGINT NOT NULL,
    duration_no_traffic_secs BIGINT NOT NULL,
    duration_in_traffic_secs BIGINT NOT NULL,
    traffic_ratio            DOUBLE PRECISION,
    captured_at              TIMESTAMPTZ NOT NULL,
    day_of_week              TEXT NOT NULL,
    is_weekend               BOOLEAN NOT NULL,
    hour_of_day              INT NOT NULL,
    is_peak_hour             BOOLEAN NOT NULL,
    time_period              TEXT NOT NULL,
    num_alternative_routes   INT NOT NULL,
    steps_count              INT NOT NULL,
    has_tolls                BOOLEAN NOT NULL,
    route_complexity         DOUBLE PRECISION NOT NULL,
    temperature_c            DOUBLE PRECISION,
    feels_like_c             DOUBLE PRECISION,
    humidity_percent         DOUBLE PRECISION,
    pressure_hpa             DOUBLE PRECISION,
    weather_condition        TEXT,
    weather_description      TEXT,
    wind_speed_ms            DOUBLE PRECISION,
    wind_direction_degrees   DOUBLE PRECISION,
    cloud_coverage_percent   DOUBLE PRECISION,
    visibility_meters        DOUBLE PRECISION,
    rain_1h_mm               DOUBLE PRECISION,
    rain_3h_mm               DOUBLE PRECISION
)`

// PostgresStore appends observation records to a single observations table;
// the city stays a column rather than a table per dataset.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, config models.DatabaseConfig) (*PostgresStore, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode,
	)

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}
	if _, err := pool.Exec(ctx, observationsSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error ensuring observations table: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Append(ctx context.Context, city string, rec *models.ObservationRecord) error {
	r := newRow(rec)

	capturedAt, err := time.Parse(time.RFC3339, r.Timestamp)
	if err != nil {
		return &StoreError{Kind: SchemaMismatch, City: city, Err: fmt.Errorf("bad record timestamp %q: %w", r.Timestamp, err)}
	}

	query := `
        INSERT INTO observations (
            record_id, route_name, city, origin, destination,
            distance_meters, duration_no_traffic_secs, duration_in_traffic_secs,
            traffic_ratio, captured_at, day_of_week, is_weekend, hour_of_day,
            is_peak_hour, time_period, num_alternative_routes, steps_count,
            has_tolls, route_complexity,
            temperature_c, feels_like_c, humidity_percent, pressure_hpa,
            weather_condition, weather_description, wind_speed_ms,
            wind_direction_degrees, cloud_coverage_percent, visibility_meters,
            rain_1h_mm, rain_3h_mm
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
            $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28,
            $29, $30, $31
        )
    `

	_, err = s.pool.Exec(ctx, query,
		r.RecordID, r.RouteName, r.City, r.Origin, r.Destination,
		r.DistanceMeters, r.DurationNoTraffic, r.DurationInTraffic,
		r.TrafficRatio, capturedAt, r.DayOfWeek, r.IsWeekend, r.HourOfDay,
		r.IsPeakHour, r.TimePeriod, r.NumAlternatives, r.StepsCount,
		r.HasTolls, r.RouteComplexity,
		r.TemperatureC, r.FeelsLikeC, r.HumidityPct, r.PressureHpa,
		r.Condition, r.Description, r.WindSpeedMS,
		r.WindDirectionDeg, r.CloudCoveragePct, r.VisibilityMeters,
		r.Rain1hMm, r.Rain3hMm,
	)
	if err != nil {
		return &StoreError{Kind: IOFailure, City: city, Err: err}
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
